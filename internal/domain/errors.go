package domain

import (
	"errors"
	"net/http"
)

// Machine-readable denial and conflict codes. These are part of the API
// contract; clients branch on them.
const (
	CodeUnauthorized           = "UNAUTHORIZED"
	CodeFeatureDisabled        = "FEATURE_DISABLED"
	CodeCreatorNotFound        = "CREATOR_NOT_FOUND"
	CodeUserNotFound           = "USER_NOT_FOUND"
	CodeCreatorUnavailable     = "CREATOR_UNAVAILABLE"
	CodeCreatorSuspended       = "CREATOR_SUSPENDED"
	CodeUserComplianceRequired = "USER_COMPLIANCE_REQUIRED"
	CodeBanned                 = "BANNED"
	CodeRateLimited            = "RATE_LIMITED"
	CodeRoomNotFound           = "ROOM_NOT_FOUND"
	CodeRoomInactive           = "ROOM_INACTIVE"
	CodeAccessCodeRequired     = "ACCESS_CODE_REQUIRED"
	CodeRoomCapReached         = "ROOM_CAP_REACHED"
	CodeDuplicatePending       = "DUPLICATE_PENDING_REQUEST"
	CodeAlreadyDecided         = "ALREADY_DECIDED"
	CodeForbidden              = "FORBIDDEN"
	CodeNotFound               = "NOT_FOUND"
	CodeInvalidRequest         = "INVALID_REQUEST"
	CodeMintFailed             = "TOKEN_MINT_FAILED"
	CodeInternal               = "INTERNAL"
)

// Error is a policy outcome with a machine-readable code and the HTTP
// status it maps to. Infrastructure failures use ordinary wrapped errors;
// only deliberate denials and conflicts use this type.
type Error struct {
	Code    string `json:"code"`
	Status  int    `json:"-"`
	Message string `json:"message"`
	// RequiresAcceptance is set on USER_COMPLIANCE_REQUIRED so clients can
	// route the user to the attestation flow.
	RequiresAcceptance bool `json:"requires_acceptance,omitempty"`
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}

func NewError(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// AsError unwraps a *domain.Error from err, or wraps err as an opaque
// internal error for the HTTP layer.
func AsError(err error) *Error {
	var de *Error
	if errors.As(err, &de) {
		return de
	}
	return &Error{Code: CodeInternal, Status: http.StatusInternalServerError, Message: "internal error"}
}

var (
	ErrUnauthorized    = NewError(CodeUnauthorized, http.StatusUnauthorized, "authentication required")
	ErrFeatureDisabled = NewError(CodeFeatureDisabled, http.StatusForbidden, "join requests are currently disabled")
	ErrCreatorNotFound = NewError(CodeCreatorNotFound, http.StatusNotFound, "creator not found")
	ErrUserNotFound    = NewError(CodeUserNotFound, http.StatusNotFound, "user profile not found")
	ErrCreatorUnavailable = NewError(CodeCreatorUnavailable, http.StatusForbidden, "creator is not accepting join requests")
	ErrCreatorSuspended   = NewError(CodeCreatorSuspended, http.StatusForbidden, "creator account is suspended")
	ErrComplianceRequired = &Error{
		Code:               CodeUserComplianceRequired,
		Status:             http.StatusForbidden,
		Message:            "age attestation and terms acceptance are required",
		RequiresAcceptance: true,
	}
	ErrRateLimited        = NewError(CodeRateLimited, http.StatusTooManyRequests, "too many join requests, retry later")
	ErrRoomNotFound       = NewError(CodeRoomNotFound, http.StatusNotFound, "room not found")
	ErrRoomInactive       = NewError(CodeRoomInactive, http.StatusNotFound, "room is not active")
	ErrAccessCodeRequired = NewError(CodeAccessCodeRequired, http.StatusForbidden, "a valid access code is required")
	ErrRoomCapReached     = NewError(CodeRoomCapReached, http.StatusForbidden, "room is at capacity")
	ErrDuplicatePending   = NewError(CodeDuplicatePending, http.StatusConflict, "a pending request already exists for this room")
	ErrAlreadyDecided     = NewError(CodeAlreadyDecided, http.StatusConflict, "request has already been decided")
	ErrForbidden          = NewError(CodeForbidden, http.StatusForbidden, "not allowed")
	ErrNotFound           = NewError(CodeNotFound, http.StatusNotFound, "not found")
)

// ErrBanned builds the BANNED denial. Only the creator-authored reason is
// surfaced; which facet matched is never revealed.
func ErrBanned(creatorReason string) *Error {
	msg := "you are not allowed to join this creator's rooms"
	if creatorReason != "" {
		msg = msg + ": " + creatorReason
	}
	return NewError(CodeBanned, http.StatusForbidden, msg)
}
