package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"roomgate-backend/internal/domain"
	"roomgate-backend/internal/logger"
	"roomgate-backend/internal/repository"
	"roomgate-backend/internal/security"

	"github.com/google/uuid"
)

// EngineConfig holds the tunables the decision engine reads per request.
type EngineConfig struct {
	// JoinRequestsEnabled is the platform kill switch (gate 2).
	JoinRequestsEnabled bool
	// RateLimitMax and RateLimitWindow bound join attempts per
	// (requester, creator) pair (gate 9).
	RateLimitMax    int32
	RateLimitWindow time.Duration
}

type accessDecisionEngine struct {
	creatorRepo repository.CreatorRepository
	userRepo    repository.UserRepository
	roomRepo    repository.RoomRepository
	joinRepo    repository.JoinRequestRepository
	noteRepo    repository.NotificationRepository
	bans        BanService
	limiter     RateLimiter
	billing     BillingService
	lifecycle   LifecycleService
	emailSvc    EmailService
	cfg         EngineConfig
}

func NewAccessDecisionEngine(
	creatorRepo repository.CreatorRepository,
	userRepo repository.UserRepository,
	roomRepo repository.RoomRepository,
	joinRepo repository.JoinRequestRepository,
	noteRepo repository.NotificationRepository,
	bans BanService,
	limiter RateLimiter,
	billing BillingService,
	lifecycle LifecycleService,
	emailSvc EmailService,
	cfg EngineConfig,
) AccessDecisionService {
	return &accessDecisionEngine{
		creatorRepo: creatorRepo,
		userRepo:    userRepo,
		roomRepo:    roomRepo,
		joinRepo:    joinRepo,
		noteRepo:    noteRepo,
		bans:        bans,
		limiter:     limiter,
		billing:     billing,
		lifecycle:   lifecycle,
		emailSvc:    emailSvc,
		cfg:         cfg,
	}
}

// evalState accumulates what the gates resolve while the pipeline runs.
type evalState struct {
	in          EvaluateInput
	creator     *domain.Creator
	user        *domain.User
	room        *domain.Room
	autoApprove bool
}

type gate struct {
	name  string
	check func(ctx context.Context, st *evalState) error
}

// gates declares the pipeline once, in its fixed order. Each gate either
// passes or returns the denial for its failure mode; the runner stops at
// the first failure, so nothing is persisted unless every gate passes.
func (e *accessDecisionEngine) gates() []gate {
	return []gate{
		{"identity", e.gateIdentity},
		{"kill-switch", e.gateKillSwitch},
		{"creator-lookup", e.gateCreatorLookup},
		{"user-lookup", e.gateUserLookup},
		{"subscription", e.gateSubscription},
		{"creator-status", e.gateCreatorStatus},
		{"compliance", e.gateCompliance},
		{"ban-list", e.gateBanList},
		{"rate-limit", e.gateRateLimit},
		{"room-lookup", e.gateRoomLookup},
		{"access-mode", e.gateAccessMode},
		{"capacity", e.gateCapacity},
		{"duplicate-pending", e.gateDuplicatePending},
	}
}

func (e *accessDecisionEngine) Evaluate(ctx context.Context, in EvaluateInput) (*Decision, error) {
	st := &evalState{in: in}

	for _, g := range e.gates() {
		if err := g.check(ctx, st); err != nil {
			var de *domain.Error
			if errors.As(err, &de) {
				logger.Debug("Join request denied", "gate", g.name, "code", de.Code,
					"creator_slug", in.CreatorSlug, "user_id", in.UserID)
			}
			return nil, err
		}
	}

	now := time.Now()
	req := &domain.JoinRequest{
		ID:                   uuid.NewString(),
		CreatorID:            st.creator.ID,
		RoomID:               st.room.ID,
		RequesterUserID:      st.user.ID,
		RequesterEmail:       st.user.Email,
		Status:               domain.JoinRequestStatusPending,
		AccessModeAtCreation: st.room.JoinMode,
		CreatedOn:            now,
	}
	if err := e.joinRepo.Create(ctx, req); err != nil {
		// The storage constraint is the authoritative duplicate guard; a
		// concurrent request can slip past the advisory pre-check.
		if errors.Is(err, repository.ErrDuplicatePending) {
			return nil, domain.ErrDuplicatePending
		}
		return nil, fmt.Errorf("failed to create join request: %w", err)
	}

	if st.autoApprove {
		approved, err := e.lifecycle.AutoApprove(ctx, req)
		if err != nil {
			// Mint failure must not surface as a failed join: the request
			// exists and stays pending, and approval can be retried.
			logger.Error("Auto-approval failed, request left pending",
				"request_id", req.ID, "error", err)
			return &Decision{Request: req, AutoApproved: false}, nil
		}
		return &Decision{Request: approved, AutoApproved: true}, nil
	}

	e.notifyCreator(ctx, st, req)
	return &Decision{Request: req, AutoApproved: false}, nil
}

func (e *accessDecisionEngine) gateIdentity(ctx context.Context, st *evalState) error {
	if st.in.UserID == 0 {
		return domain.ErrUnauthorized
	}
	return nil
}

func (e *accessDecisionEngine) gateKillSwitch(ctx context.Context, st *evalState) error {
	if !e.cfg.JoinRequestsEnabled {
		return domain.ErrFeatureDisabled
	}
	return nil
}

func (e *accessDecisionEngine) gateCreatorLookup(ctx context.Context, st *evalState) error {
	creator, err := e.creatorRepo.GetBySlug(ctx, st.in.CreatorSlug)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.ErrCreatorNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to look up creator: %w", err)
	}
	st.creator = creator
	return nil
}

func (e *accessDecisionEngine) gateUserLookup(ctx context.Context, st *evalState) error {
	user, err := e.userRepo.GetByID(ctx, st.in.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}
	st.user = user
	return nil
}

func (e *accessDecisionEngine) gateSubscription(ctx context.Context, st *evalState) error {
	active, err := e.billing.IsSubscriptionActive(ctx, st.creator.ID)
	if err != nil {
		return fmt.Errorf("failed to check subscription: %w", err)
	}
	if !active {
		return domain.ErrCreatorUnavailable
	}
	return nil
}

func (e *accessDecisionEngine) gateCreatorStatus(ctx context.Context, st *evalState) error {
	if st.creator.Status != domain.CreatorStatusActive {
		return domain.ErrCreatorSuspended
	}
	return nil
}

func (e *accessDecisionEngine) gateCompliance(ctx context.Context, st *evalState) error {
	if !st.user.Compliant() {
		return domain.ErrComplianceRequired
	}
	return nil
}

func (e *accessDecisionEngine) gateBanList(ctx context.Context, st *evalState) error {
	identity := domain.RequesterIdentity{
		UserID:     st.user.ID,
		Email:      st.user.Email,
		IPHash:     domain.HashIdentity(st.in.ClientIP),
		DeviceHash: domain.HashIdentity(st.in.DeviceID),
	}
	match, err := e.bans.IsBanned(ctx, st.creator.ID, identity)
	if err != nil {
		return fmt.Errorf("failed to evaluate bans: %w", err)
	}
	if match.Banned {
		// Only the creator-authored reason leaves the system; the matched
		// facet stays hidden from would-be evaders.
		return domain.ErrBanned(match.Reason)
	}
	return nil
}

func (e *accessDecisionEngine) gateRateLimit(ctx context.Context, st *evalState) error {
	key := RateLimitKey("join-request", st.creator.ID, st.user.ID)
	allowed, _, err := e.limiter.Consume(ctx, key, e.cfg.RateLimitMax, e.cfg.RateLimitWindow)
	if err != nil {
		return fmt.Errorf("failed to check rate limit: %w", err)
	}
	if !allowed {
		return domain.ErrRateLimited
	}
	return nil
}

func (e *accessDecisionEngine) gateRoomLookup(ctx context.Context, st *evalState) error {
	slug := st.in.RoomSlug
	if slug == "" {
		slug = domain.DefaultRoomSlug
	}
	room, err := e.roomRepo.GetBySlug(ctx, st.creator.ID, slug)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.ErrRoomNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to look up room: %w", err)
	}
	if !room.Joinable() {
		return domain.ErrRoomInactive
	}
	st.room = room
	return nil
}

func (e *accessDecisionEngine) gateAccessMode(ctx context.Context, st *evalState) error {
	codeOK := false
	if st.room.JoinMode == domain.JoinModeKeyed {
		codeOK = security.VerifyAccessCode(st.room.AccessCodeHash, st.in.AccessCode)
	}
	decision := ResolveAccessMode(st.room.JoinMode, codeOK)
	if !decision.Allow {
		return domain.ErrAccessCodeRequired
	}
	st.autoApprove = decision.AutoApprove
	return nil
}

func (e *accessDecisionEngine) gateCapacity(ctx context.Context, st *evalState) error {
	// Counted at decision time, never cached: approved-but-expired tokens
	// must free their slot immediately.
	count, err := e.joinRepo.CountApprovedActive(ctx, st.room.ID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to count room occupancy: %w", err)
	}
	if count >= st.room.MaxParticipants {
		return domain.ErrRoomCapReached
	}
	return nil
}

func (e *accessDecisionEngine) gateDuplicatePending(ctx context.Context, st *evalState) error {
	_, err := e.joinRepo.GetPendingByRoomAndUser(ctx, st.room.ID, st.user.ID)
	if err == nil {
		return domain.ErrDuplicatePending
	}
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	return fmt.Errorf("failed to check for pending request: %w", err)
}

// notifyCreator records an in-app notification and sends an email for a
// newly pending request. Neither is allowed to fail the join.
func (e *accessDecisionEngine) notifyCreator(ctx context.Context, st *evalState, req *domain.JoinRequest) {
	_ = e.emailSvc.SendJoinRequestNotice(ctx, st.creator.Email, st.creator.Name, st.user.DisplayName, st.room.Slug)

	note := &domain.Notification{
		UserID:  st.creator.UserID,
		Title:   "New join request",
		Message: fmt.Sprintf("%s requested to join %s", st.user.DisplayName, st.room.Slug),
		Attributes: map[string]string{
			"type":       "JOIN_REQUEST",
			"request_id": req.ID,
		},
	}
	if err := e.noteRepo.Create(ctx, note); err != nil {
		logger.Warn("Failed to record creator notification", "error", err)
	}
}
