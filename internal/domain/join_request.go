package domain

import "time"

type JoinRequestStatus string

const (
	JoinRequestStatusPending  JoinRequestStatus = "PENDING"
	JoinRequestStatusApproved JoinRequestStatus = "APPROVED"
	JoinRequestStatusDenied   JoinRequestStatus = "DENIED"
)

// JoinRequest is one attempt by a requester to enter one room. Denied and
// expired requests are kept for audit and duplicate-suppression history,
// never deleted.
type JoinRequest struct {
	ID                   string            `json:"id"`
	CreatorID            int32             `json:"creator_id"`
	RoomID               int32             `json:"room_id"`
	RequesterUserID      int32             `json:"requester_user_id"`
	RequesterEmail       string            `json:"requester_email"`
	Status               JoinRequestStatus `json:"status"`
	AccessModeAtCreation JoinMode          `json:"access_mode_at_creation"`
	CreatedOn            time.Time         `json:"created_on"`
	DecidedOn            *time.Time        `json:"decided_on,omitempty"`
	DecisionReason       string            `json:"decision_reason,omitempty"`
	AccessToken          string            `json:"access_token,omitempty"`
	TokenExpiresOn       *time.Time        `json:"token_expires_on,omitempty"`
}

// TokenExpired reports whether an approved request's token has lapsed at
// the given instant. Expiry is derived at read time; the stored status
// stays APPROVED.
func (r *JoinRequest) TokenExpired(now time.Time) bool {
	return r.Status == JoinRequestStatusApproved &&
		r.TokenExpiresOn != nil &&
		now.After(*r.TokenExpiresOn)
}
