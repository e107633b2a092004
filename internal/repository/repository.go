package repository

import (
	"context"
	"errors"
	"time"

	"roomgate-backend/internal/domain"
)

// Sentinel errors shared by all storage backends. Postgres and memory
// implementations both return these so services never branch on the
// backend in use.
var (
	ErrNotFound = errors.New("record not found")
	// ErrDuplicatePending maps the partial unique index on
	// (room_id, requester_user_id) WHERE status='PENDING'. The index is
	// the authoritative duplicate-suppression guard; the engine's
	// pre-check is advisory.
	ErrDuplicatePending = errors.New("pending join request already exists")
)

type CreatorRepository interface {
	Create(ctx context.Context, creator *domain.Creator) error
	GetByID(ctx context.Context, id int32) (*domain.Creator, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Creator, error)
	Update(ctx context.Context, creator *domain.Creator) error
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int32) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

type RoomRepository interface {
	Create(ctx context.Context, room *domain.Room) error
	GetByID(ctx context.Context, id int32) (*domain.Room, error)
	GetBySlug(ctx context.Context, creatorID int32, slug string) (*domain.Room, error)
	Update(ctx context.Context, room *domain.Room) error
	ListByCreator(ctx context.Context, creatorID int32) ([]domain.Room, error)
}

type JoinRequestRepository interface {
	Create(ctx context.Context, req *domain.JoinRequest) error
	GetByID(ctx context.Context, id string) (*domain.JoinRequest, error)
	// GetPendingByRoomAndUser returns the live pending request for the
	// pair, or ErrNotFound.
	GetPendingByRoomAndUser(ctx context.Context, roomID, userID int32) (*domain.JoinRequest, error)
	// CountApprovedActive counts approved requests whose token is still
	// valid at now. Approved-but-expired tokens free their capacity slot.
	CountApprovedActive(ctx context.Context, roomID int32, now time.Time) (int32, error)
	// Decide applies a pending→decided transition as a single conditional
	// update. Returns ErrNotFound when no row has the id, ErrAlreadyDecided
	// semantics are signalled by (false, nil): the row exists but was not
	// pending.
	Decide(ctx context.Context, id string, status domain.JoinRequestStatus, patch DecisionPatch) (bool, error)
	ListByCreator(ctx context.Context, creatorID int32, status domain.JoinRequestStatus) ([]domain.JoinRequest, error)
	// ListPendingOlderThan returns pending requests created before cutoff,
	// across all creators (reminder digest job).
	ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]domain.JoinRequest, error)
}

// DecisionPatch carries the fields written alongside a status transition.
type DecisionPatch struct {
	DecidedOn      time.Time
	DecisionReason string
	AccessToken    string
	TokenExpiresOn *time.Time
}

type BanRepository interface {
	Create(ctx context.Context, ban *domain.Ban) error
	GetByID(ctx context.Context, id int32) (*domain.Ban, error)
	ListByCreator(ctx context.Context, creatorID int32) ([]domain.Ban, error)
	// Delete hard-deletes a ban. Bans are denial rules, not audit records.
	Delete(ctx context.Context, id int32) error
}

type RateLimitRepository interface {
	// Consume atomically advances the counter for key within a fixed
	// window: an elapsed window restarts at 1, a live window increments,
	// and the count clamps at max+1 so a saturated counter stops growing.
	// Returns the post-consume counter state.
	Consume(ctx context.Context, key string, max int32, window time.Duration, now time.Time) (*domain.RateLimitCounter, error)
	// PurgeExpired removes counters whose window ended before cutoff.
	PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id, userID int32) error
}
