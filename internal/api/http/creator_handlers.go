package http

import (
	"net/http"
	"strconv"

	"roomgate-backend/internal/domain"
	"roomgate-backend/internal/service"

	"github.com/gorilla/mux"
)

// CreatorHandler serves the creator dashboard surface: listing join
// requests and managing the ban list.
type CreatorHandler struct {
	lifecycle service.LifecycleService
	bans      service.BanService
}

func NewCreatorHandler(lifecycle service.LifecycleService, bans service.BanService) *CreatorHandler {
	return &CreatorHandler{lifecycle: lifecycle, bans: bans}
}

// ListJoinRequests handles GET /creator/join-requests?status=.
func (h *CreatorHandler) ListJoinRequests(w http.ResponseWriter, r *http.Request) {
	creatorID, ok := requireCreator(w, r)
	if !ok {
		return
	}
	status := domain.JoinRequestStatus(r.URL.Query().Get("status"))
	switch status {
	case "", domain.JoinRequestStatusPending, domain.JoinRequestStatusApproved, domain.JoinRequestStatusDenied:
	default:
		writeError(w, domain.NewError(domain.CodeInvalidRequest, http.StatusBadRequest, "unknown status filter"))
		return
	}

	reqs, err := h.lifecycle.ListForCreator(r.Context(), creatorID, status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"requests": reqs,
		"total":    len(reqs),
	})
}

type createBanBody struct {
	UserID     *int32 `json:"user_id,omitempty"`
	Email      string `json:"email,omitempty"`
	IPHash     string `json:"ip_hash,omitempty"`
	DeviceHash string `json:"device_hash,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

// ListBans handles GET /creator/bans.
func (h *CreatorHandler) ListBans(w http.ResponseWriter, r *http.Request) {
	creatorID, ok := requireCreator(w, r)
	if !ok {
		return
	}
	bans, err := h.bans.ListBans(r.Context(), creatorID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"bans":  bans,
		"total": len(bans),
	})
}

// CreateBan handles POST /creator/bans.
func (h *CreatorHandler) CreateBan(w http.ResponseWriter, r *http.Request) {
	creatorID, ok := requireCreator(w, r)
	if !ok {
		return
	}
	var body createBanBody
	if !decodeBody(w, r, &body) {
		return
	}

	ban := &domain.Ban{
		UserID:     body.UserID,
		Email:      body.Email,
		IPHash:     body.IPHash,
		DeviceHash: body.DeviceHash,
		Reason:     body.Reason,
	}
	if err := h.bans.CreateBan(r.Context(), creatorID, ban); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ban)
}

// RemoveBan handles DELETE /creator/bans/{id}.
func (h *CreatorHandler) RemoveBan(w http.ResponseWriter, r *http.Request) {
	creatorID, ok := requireCreator(w, r)
	if !ok {
		return
	}
	banID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		writeError(w, domain.NewError(domain.CodeInvalidRequest, http.StatusBadRequest, "invalid ban id"))
		return
	}

	if err := h.bans.RemoveBan(r.Context(), creatorID, int32(banID)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}
