package service

import (
	"context"
	"time"

	"roomgate-backend/internal/domain"
)

// EvaluateInput is everything the decision engine needs about one join
// attempt. UserID is zero when the caller presented no valid session.
type EvaluateInput struct {
	UserID      int32
	CreatorSlug string
	RoomSlug    string
	AccessCode  string
	// ClientIP and DeviceID are raw values; the engine hashes them before
	// any comparison or storage.
	ClientIP string
	DeviceID string
}

// Decision is the successful outcome of an evaluation: a created request,
// either left pending or already auto-approved.
type Decision struct {
	Request      *domain.JoinRequest
	AutoApproved bool
}

type AccessDecisionService interface {
	// Evaluate runs the gate pipeline in order, short-circuiting on the
	// first failing gate. No record is persisted unless every gate passes.
	Evaluate(ctx context.Context, in EvaluateInput) (*Decision, error)
}

// StatusView is what a requester sees when polling a request.
type StatusView struct {
	RequestID      string                   `json:"request_id"`
	Status         domain.JoinRequestStatus `json:"status"`
	AccessToken    string                   `json:"access_token,omitempty"`
	TokenExpiresOn *time.Time               `json:"token_expires_on,omitempty"`
	// TokenExpired is derived at read time from TokenExpiresOn; the stored
	// status stays APPROVED.
	TokenExpired bool   `json:"token_expired,omitempty"`
	Reason       string `json:"reason,omitempty"`
}

type LifecycleService interface {
	Approve(ctx context.Context, actorCreatorID int32, requestID string) (*domain.JoinRequest, error)
	// AutoApprove transitions a freshly created request to approved on
	// behalf of the engine (open rooms). Minting failure leaves the
	// request pending.
	AutoApprove(ctx context.Context, req *domain.JoinRequest) (*domain.JoinRequest, error)
	Deny(ctx context.Context, actorCreatorID int32, requestID, reason string) (*domain.JoinRequest, error)
	Poll(ctx context.Context, actorUserID int32, requestID string) (*StatusView, error)
	ListForCreator(ctx context.Context, creatorID int32, status domain.JoinRequestStatus) ([]domain.JoinRequest, error)
}

// BanMatch is the outcome of evaluating a requester against a creator's
// ban list.
type BanMatch struct {
	Banned bool
	Reason string // creator-authored; the matching facet is never exposed
}

type BanService interface {
	IsBanned(ctx context.Context, creatorID int32, identity domain.RequesterIdentity) (*BanMatch, error)
	CreateBan(ctx context.Context, creatorID int32, ban *domain.Ban) error
	RemoveBan(ctx context.Context, creatorID, banID int32) error
	ListBans(ctx context.Context, creatorID int32) ([]domain.Ban, error)
}

type RateLimiter interface {
	// Consume records one hit for key and reports whether it is allowed
	// under max hits per window.
	Consume(ctx context.Context, key string, max int32, window time.Duration) (allowed bool, remaining int32, err error)
}

type BillingService interface {
	IsSubscriptionActive(ctx context.Context, creatorID int32) (bool, error)
}

// MintedToken is a short-lived video room access credential.
type MintedToken struct {
	Token     string
	ExpiresOn time.Time
}

// VideoProvider mints room access tokens against an external video
// conferencing provider. Implementations are selected once at startup
// from validated config, never per call.
type VideoProvider interface {
	Mint(ctx context.Context, roomName, displayName string, ttl time.Duration) (*MintedToken, error)
}

type EmailService interface {
	SendJoinRequestNotice(ctx context.Context, creatorEmail, creatorName, requesterName, roomSlug string) error
	SendDecisionNotice(ctx context.Context, requesterEmail, requesterName, creatorName string, status domain.JoinRequestStatus, reason string) error
	SendPendingDigest(ctx context.Context, creatorEmail, creatorName string, pendingCount int, oldest time.Time) error
}

type NotificationService interface {
	GetNotifications(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, userID, notificationID int32) error
}
