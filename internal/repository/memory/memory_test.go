package memory

import (
	"context"
	"testing"
	"time"

	"roomgate-backend/internal/domain"
	"roomgate-backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimitConsume(t *testing.T) {
	ctx := context.Background()
	limits := NewStore().RateLimits()
	window := time.Minute
	now := time.Now()

	t.Run("counts within a window and clamps past the limit", func(t *testing.T) {
		var counter *domain.RateLimitCounter
		var err error
		for i := 0; i < 10; i++ {
			counter, err = limits.Consume(ctx, "k", 3, window, now.Add(time.Duration(i)*time.Second))
			require.NoError(t, err)
		}
		// 10 hits against max 3: the counter stops at 4, not 10.
		assert.Equal(t, int32(4), counter.Count)
	})

	t.Run("an elapsed window restarts the count", func(t *testing.T) {
		counter, err := limits.Consume(ctx, "k", 3, window, now.Add(2*window))
		require.NoError(t, err)
		assert.Equal(t, int32(1), counter.Count)
		assert.Equal(t, now.Add(2*window), counter.WindowStart)
	})

	t.Run("keys are independent", func(t *testing.T) {
		counter, err := limits.Consume(ctx, "other", 3, window, now)
		require.NoError(t, err)
		assert.Equal(t, int32(1), counter.Count)
	})
}

func TestRateLimitPurgeExpired(t *testing.T) {
	ctx := context.Background()
	limits := NewStore().RateLimits()
	now := time.Now()

	_, err := limits.Consume(ctx, "old", 3, time.Minute, now.Add(-time.Hour))
	require.NoError(t, err)
	_, err = limits.Consume(ctx, "live", 3, time.Minute, now)
	require.NoError(t, err)

	purged, err := limits.PurgeExpired(ctx, now.Add(-2*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	// The live counter keeps counting where it left off.
	counter, err := limits.Consume(ctx, "live", 3, time.Minute, now.Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, int32(2), counter.Count)
}

func TestJoinRequestDuplicatePending(t *testing.T) {
	ctx := context.Background()
	reqs := NewStore().JoinRequests()

	first := &domain.JoinRequest{
		ID:              "a",
		CreatorID:       1,
		RoomID:          5,
		RequesterUserID: 42,
		Status:          domain.JoinRequestStatusPending,
		CreatedOn:       time.Now(),
	}
	require.NoError(t, reqs.Create(ctx, first))

	dup := *first
	dup.ID = "b"
	assert.ErrorIs(t, reqs.Create(ctx, &dup), repository.ErrDuplicatePending)

	// A pending request for a different room is fine.
	other := *first
	other.ID = "c"
	other.RoomID = 6
	assert.NoError(t, reqs.Create(ctx, &other))

	// Once the first is decided, the pair may request again.
	decided, err := reqs.Decide(ctx, "a", domain.JoinRequestStatusDenied, repository.DecisionPatch{DecidedOn: time.Now()})
	require.NoError(t, err)
	require.True(t, decided)
	again := *first
	again.ID = "d"
	assert.NoError(t, reqs.Create(ctx, &again))
}

func TestJoinRequestDecideCAS(t *testing.T) {
	ctx := context.Background()
	reqs := NewStore().JoinRequests()

	req := &domain.JoinRequest{
		ID:              "a",
		CreatorID:       1,
		RoomID:          5,
		RequesterUserID: 42,
		Status:          domain.JoinRequestStatusPending,
		CreatedOn:       time.Now(),
	}
	require.NoError(t, reqs.Create(ctx, req))

	expiresOn := time.Now().Add(15 * time.Minute)
	decided, err := reqs.Decide(ctx, "a", domain.JoinRequestStatusApproved, repository.DecisionPatch{
		DecidedOn:      time.Now(),
		AccessToken:    "tok",
		TokenExpiresOn: &expiresOn,
	})
	require.NoError(t, err)
	assert.True(t, decided)

	// The losing decision neither errors nor overwrites.
	decided, err = reqs.Decide(ctx, "a", domain.JoinRequestStatusDenied, repository.DecisionPatch{DecidedOn: time.Now()})
	require.NoError(t, err)
	assert.False(t, decided)

	got, err := reqs.GetByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, domain.JoinRequestStatusApproved, got.Status)
	assert.Equal(t, "tok", got.AccessToken)

	_, err = reqs.Decide(ctx, "missing", domain.JoinRequestStatusDenied, repository.DecisionPatch{})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCountApprovedActive(t *testing.T) {
	ctx := context.Background()
	reqs := NewStore().JoinRequests()
	now := time.Now()

	add := func(id string, userID int32, status domain.JoinRequestStatus, expiresOn *time.Time) {
		require.NoError(t, reqs.Create(ctx, &domain.JoinRequest{
			ID: id, CreatorID: 1, RoomID: 5, RequesterUserID: userID,
			Status: domain.JoinRequestStatusPending, CreatedOn: now,
		}))
		if status != domain.JoinRequestStatusPending {
			decided, err := reqs.Decide(ctx, id, status, repository.DecisionPatch{
				DecidedOn: now, TokenExpiresOn: expiresOn,
			})
			require.NoError(t, err)
			require.True(t, decided)
		}
	}

	live := now.Add(10 * time.Minute)
	lapsed := now.Add(-time.Minute)
	add("live-1", 1, domain.JoinRequestStatusApproved, &live)
	add("live-2", 2, domain.JoinRequestStatusApproved, &live)
	add("lapsed", 3, domain.JoinRequestStatusApproved, &lapsed)
	add("denied", 4, domain.JoinRequestStatusDenied, nil)
	add("pending", 5, domain.JoinRequestStatusPending, nil)

	count, err := reqs.CountApprovedActive(ctx, 5, now)
	require.NoError(t, err)
	// Only approvals with unexpired tokens hold a capacity slot.
	assert.Equal(t, int32(2), count)
}

func TestNotificationList(t *testing.T) {
	ctx := context.Background()
	notes := NewStore().Notifications()

	for i := 0; i < 5; i++ {
		require.NoError(t, notes.Create(ctx, &domain.Notification{UserID: 1, Title: "t"}))
	}
	require.NoError(t, notes.Create(ctx, &domain.Notification{UserID: 2, Title: "other"}))

	listed, total, err := notes.List(ctx, 1, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, int32(5), total)
	assert.Len(t, listed, 2)

	listed, total, err = notes.List(ctx, 1, 2, 4)
	require.NoError(t, err)
	assert.Equal(t, int32(5), total)
	assert.Len(t, listed, 1)

	assert.NoError(t, notes.MarkAsRead(ctx, listed[0].ID, 1))
	assert.ErrorIs(t, notes.MarkAsRead(ctx, listed[0].ID, 2), repository.ErrNotFound)
}
