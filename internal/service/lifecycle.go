package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"roomgate-backend/internal/domain"
	"roomgate-backend/internal/logger"
	"roomgate-backend/internal/repository"
)

type lifecycleController struct {
	joinRepo    repository.JoinRequestRepository
	creatorRepo repository.CreatorRepository
	userRepo    repository.UserRepository
	roomRepo    repository.RoomRepository
	noteRepo    repository.NotificationRepository
	video       VideoProvider
	emailSvc    EmailService
	tokenTTL    time.Duration
}

func NewLifecycleController(
	joinRepo repository.JoinRequestRepository,
	creatorRepo repository.CreatorRepository,
	userRepo repository.UserRepository,
	roomRepo repository.RoomRepository,
	noteRepo repository.NotificationRepository,
	video VideoProvider,
	emailSvc EmailService,
	tokenTTL time.Duration,
) LifecycleService {
	return &lifecycleController{
		joinRepo:    joinRepo,
		creatorRepo: creatorRepo,
		userRepo:    userRepo,
		roomRepo:    roomRepo,
		noteRepo:    noteRepo,
		video:       video,
		emailSvc:    emailSvc,
		tokenTTL:    tokenTTL,
	}
}

func (s *lifecycleController) Approve(ctx context.Context, actorCreatorID int32, requestID string) (*domain.JoinRequest, error) {
	req, err := s.getOwned(ctx, actorCreatorID, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != domain.JoinRequestStatusPending {
		return nil, domain.ErrAlreadyDecided
	}
	approved, err := s.finalizeApproval(ctx, req)
	if err != nil {
		return nil, err
	}
	s.notifyRequester(ctx, approved, "")
	return approved, nil
}

// AutoApprove is the engine's path for open rooms: the freshly created
// request skips the ownership check and goes straight to approval.
func (s *lifecycleController) AutoApprove(ctx context.Context, req *domain.JoinRequest) (*domain.JoinRequest, error) {
	return s.finalizeApproval(ctx, req)
}

// finalizeApproval mints a token and applies the pending→approved CAS.
// The order is load-bearing: nothing is persisted until the mint has
// succeeded, so a provider failure leaves the request pending and the
// approval retryable.
func (s *lifecycleController) finalizeApproval(ctx context.Context, req *domain.JoinRequest) (*domain.JoinRequest, error) {
	roomName, displayName, err := s.mintIdentity(ctx, req)
	if err != nil {
		return nil, err
	}

	minted, err := s.video.Mint(ctx, roomName, displayName, s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to mint video token: %w", err)
	}

	now := time.Now()
	expiresOn := minted.ExpiresOn
	decided, err := s.joinRepo.Decide(ctx, req.ID, domain.JoinRequestStatusApproved, repository.DecisionPatch{
		DecidedOn:      now,
		AccessToken:    minted.Token,
		TokenExpiresOn: &expiresOn,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to persist approval: %w", err)
	}
	if !decided {
		// A concurrent decision won the CAS. The minted token is unused
		// and simply ages out.
		return nil, domain.ErrAlreadyDecided
	}

	approved := *req
	approved.Status = domain.JoinRequestStatusApproved
	approved.DecidedOn = &now
	approved.AccessToken = minted.Token
	approved.TokenExpiresOn = &expiresOn
	logger.Info("Join request approved", "request_id", req.ID, "room_id", req.RoomID,
		"token_expires_on", expiresOn)
	return &approved, nil
}

func (s *lifecycleController) Deny(ctx context.Context, actorCreatorID int32, requestID, reason string) (*domain.JoinRequest, error) {
	req, err := s.getOwned(ctx, actorCreatorID, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != domain.JoinRequestStatusPending {
		return nil, domain.ErrAlreadyDecided
	}

	now := time.Now()
	decided, err := s.joinRepo.Decide(ctx, req.ID, domain.JoinRequestStatusDenied, repository.DecisionPatch{
		DecidedOn:      now,
		DecisionReason: reason,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to persist denial: %w", err)
	}
	if !decided {
		return nil, domain.ErrAlreadyDecided
	}

	denied := *req
	denied.Status = domain.JoinRequestStatusDenied
	denied.DecidedOn = &now
	denied.DecisionReason = reason
	logger.Info("Join request denied", "request_id", req.ID, "room_id", req.RoomID)
	s.notifyRequester(ctx, &denied, reason)
	return &denied, nil
}

func (s *lifecycleController) Poll(ctx context.Context, actorUserID int32, requestID string) (*StatusView, error) {
	req, err := s.joinRepo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get join request: %w", err)
	}
	if req.RequesterUserID != actorUserID {
		return nil, domain.ErrForbidden
	}

	view := &StatusView{
		RequestID:      req.ID,
		Status:         req.Status,
		TokenExpiresOn: req.TokenExpiresOn,
		Reason:         req.DecisionReason,
	}
	if req.Status == domain.JoinRequestStatusApproved {
		// Expiry is a pure function of time; the stored record is not
		// touched.
		if req.TokenExpired(time.Now()) {
			view.TokenExpired = true
		} else {
			view.AccessToken = req.AccessToken
		}
	}
	return view, nil
}

func (s *lifecycleController) ListForCreator(ctx context.Context, creatorID int32, status domain.JoinRequestStatus) ([]domain.JoinRequest, error) {
	return s.joinRepo.ListByCreator(ctx, creatorID, status)
}

// getOwned fetches a request and enforces that the acting creator owns it.
func (s *lifecycleController) getOwned(ctx context.Context, actorCreatorID int32, requestID string) (*domain.JoinRequest, error) {
	req, err := s.joinRepo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get join request: %w", err)
	}
	if req.CreatorID != actorCreatorID {
		return nil, domain.ErrForbidden
	}
	return req, nil
}

// mintIdentity resolves the provider-facing room name and participant
// display name for a request.
func (s *lifecycleController) mintIdentity(ctx context.Context, req *domain.JoinRequest) (string, string, error) {
	creator, err := s.creatorRepo.GetByID(ctx, req.CreatorID)
	if err != nil {
		return "", "", fmt.Errorf("failed to get creator: %w", err)
	}
	room, err := s.roomRepo.GetByID(ctx, req.RoomID)
	if err != nil {
		return "", "", fmt.Errorf("failed to get room: %w", err)
	}
	user, err := s.userRepo.GetByID(ctx, req.RequesterUserID)
	if err != nil {
		return "", "", fmt.Errorf("failed to get requester: %w", err)
	}
	return fmt.Sprintf("%s-%s", creator.Slug, room.Slug), user.DisplayName, nil
}

// notifyRequester records the decision for the requester. Failures are
// logged, never surfaced: the decision already happened.
func (s *lifecycleController) notifyRequester(ctx context.Context, req *domain.JoinRequest, reason string) {
	creator, err := s.creatorRepo.GetByID(ctx, req.CreatorID)
	if err != nil {
		logger.Warn("Failed to load creator for decision notice", "error", err)
		return
	}
	user, err := s.userRepo.GetByID(ctx, req.RequesterUserID)
	if err != nil {
		logger.Warn("Failed to load requester for decision notice", "error", err)
		return
	}

	_ = s.emailSvc.SendDecisionNotice(ctx, user.Email, user.DisplayName, creator.Name, req.Status, reason)

	note := &domain.Notification{
		UserID:  user.ID,
		Title:   fmt.Sprintf("Join request %s", decisionWord(req.Status)),
		Message: fmt.Sprintf("Your request to join %s's room was %s", creator.Name, decisionWord(req.Status)),
		Attributes: map[string]string{
			"type":       "JOIN_DECISION",
			"request_id": req.ID,
			"status":     string(req.Status),
		},
	}
	if err := s.noteRepo.Create(ctx, note); err != nil {
		logger.Warn("Failed to record requester notification", "error", err)
	}
}
