package http

import (
	"net/http"
	"time"

	"roomgate-backend/internal/domain"
	"roomgate-backend/internal/service"
)

// JoinHandler serves the join request lifecycle: creation, creator
// decisions, and requester polling.
type JoinHandler struct {
	engine    service.AccessDecisionService
	lifecycle service.LifecycleService
}

func NewJoinHandler(engine service.AccessDecisionService, lifecycle service.LifecycleService) *JoinHandler {
	return &JoinHandler{engine: engine, lifecycle: lifecycle}
}

type createJoinRequestBody struct {
	CreatorSlug string `json:"creator_slug"`
	RoomSlug    string `json:"room_slug,omitempty"`
	AccessCode  string `json:"access_code,omitempty"`
}

type createJoinRequestResponse struct {
	RequestID      string                   `json:"request_id"`
	Status         domain.JoinRequestStatus `json:"status"`
	AccessToken    string                   `json:"access_token,omitempty"`
	TokenExpiresOn *time.Time               `json:"token_expires_on,omitempty"`
}

// CreateJoinRequest handles POST /join-request. Authentication here is
// optional at the middleware level: the engine's identity gate decides
// UNAUTHORIZED so that gate order stays in one place.
func (h *JoinHandler) CreateJoinRequest(w http.ResponseWriter, r *http.Request) {
	var body createJoinRequestBody
	if !decodeBody(w, r, &body) {
		return
	}
	if body.CreatorSlug == "" {
		writeError(w, domain.NewError(domain.CodeInvalidRequest, http.StatusBadRequest, "creator_slug is required"))
		return
	}

	in := service.EvaluateInput{
		CreatorSlug: body.CreatorSlug,
		RoomSlug:    body.RoomSlug,
		AccessCode:  body.AccessCode,
		ClientIP:    clientIP(r),
		DeviceID:    r.Header.Get("X-Device-Id"),
	}
	if claims := ClaimsFromContext(r.Context()); claims != nil {
		in.UserID = claims.UserID
	}

	decision, err := h.engine.Evaluate(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := createJoinRequestResponse{
		RequestID: decision.Request.ID,
		Status:    decision.Request.Status,
	}
	if decision.AutoApproved {
		resp.AccessToken = decision.Request.AccessToken
		resp.TokenExpiresOn = decision.Request.TokenExpiresOn
	}
	// 201 whether the request was auto-approved or left pending; the
	// status field tells the caller which.
	writeJSON(w, http.StatusCreated, resp)
}

type decideBody struct {
	RequestID string `json:"request_id"`
	Reason    string `json:"reason,omitempty"`
}

type decideResponse struct {
	Status         domain.JoinRequestStatus `json:"status"`
	AccessToken    string                   `json:"access_token,omitempty"`
	TokenExpiresOn *time.Time               `json:"token_expires_on,omitempty"`
	Reason         string                   `json:"reason,omitempty"`
}

// Approve handles POST /join-approve.
func (h *JoinHandler) Approve(w http.ResponseWriter, r *http.Request) {
	creatorID, ok := requireCreator(w, r)
	if !ok {
		return
	}
	var body decideBody
	if !decodeBody(w, r, &body) {
		return
	}
	if body.RequestID == "" {
		writeError(w, domain.NewError(domain.CodeInvalidRequest, http.StatusBadRequest, "request_id is required"))
		return
	}

	req, err := h.lifecycle.Approve(r.Context(), creatorID, body.RequestID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, decideResponse{
		Status:         req.Status,
		AccessToken:    req.AccessToken,
		TokenExpiresOn: req.TokenExpiresOn,
	})
}

// Deny handles POST /join-deny.
func (h *JoinHandler) Deny(w http.ResponseWriter, r *http.Request) {
	creatorID, ok := requireCreator(w, r)
	if !ok {
		return
	}
	var body decideBody
	if !decodeBody(w, r, &body) {
		return
	}
	if body.RequestID == "" {
		writeError(w, domain.NewError(domain.CodeInvalidRequest, http.StatusBadRequest, "request_id is required"))
		return
	}

	req, err := h.lifecycle.Deny(r.Context(), creatorID, body.RequestID, body.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, decideResponse{
		Status: req.Status,
		Reason: req.DecisionReason,
	})
}

// Status handles GET /join-status?request_id=.
func (h *JoinHandler) Status(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, domain.ErrUnauthorized)
		return
	}
	requestID := r.URL.Query().Get("request_id")
	if requestID == "" {
		writeError(w, domain.NewError(domain.CodeInvalidRequest, http.StatusBadRequest, "request_id is required"))
		return
	}

	view, err := h.lifecycle.Poll(r.Context(), claims.UserID, requestID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// requireCreator extracts the acting creator from the session. Sessions
// without a creator grant cannot decide requests.
func requireCreator(w http.ResponseWriter, r *http.Request) (int32, bool) {
	claims := ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, domain.ErrUnauthorized)
		return 0, false
	}
	if claims.CreatorID == 0 {
		writeError(w, domain.ErrForbidden)
		return 0, false
	}
	return claims.CreatorID, true
}
