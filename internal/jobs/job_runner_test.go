package jobs

import (
	"context"
	"testing"
	"time"

	"roomgate-backend/internal/config"
	"roomgate-backend/internal/domain"
	"roomgate-backend/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockEmail struct {
	mock.Mock
}

func (m *mockEmail) SendJoinRequestNotice(ctx context.Context, creatorEmail, creatorName, requesterName, roomSlug string) error {
	args := m.Called(ctx, creatorEmail, creatorName, requesterName, roomSlug)
	return args.Error(0)
}
func (m *mockEmail) SendDecisionNotice(ctx context.Context, requesterEmail, requesterName, creatorName string, status domain.JoinRequestStatus, reason string) error {
	args := m.Called(ctx, requesterEmail, requesterName, creatorName, status, reason)
	return args.Error(0)
}
func (m *mockEmail) SendPendingDigest(ctx context.Context, creatorEmail, creatorName string, pendingCount int, oldest time.Time) error {
	args := m.Called(ctx, creatorEmail, creatorName, pendingCount, oldest)
	return args.Error(0)
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Scheduler.PendingReminderAgeHours = 12
	cfg.RateLimit.JoinWindowSeconds = 60
	return cfg
}

func TestRemindPendingRequests(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	email := new(mockEmail)

	creators := store.Creators()
	casey := &domain.Creator{Slug: "casey", Name: "Casey", Email: "casey@example.com"}
	require.NoError(t, creators.Create(ctx, casey))
	drew := &domain.Creator{Slug: "drew", Name: "Drew", Email: "drew@example.com"}
	require.NoError(t, creators.Create(ctx, drew))

	reqs := store.JoinRequests()
	stale := time.Now().Add(-24 * time.Hour)
	seed := func(id string, creatorID, userID int32, createdOn time.Time) {
		require.NoError(t, reqs.Create(ctx, &domain.JoinRequest{
			ID: id, CreatorID: creatorID, RoomID: creatorID, RequesterUserID: userID,
			Status: domain.JoinRequestStatusPending, CreatedOn: createdOn,
		}))
	}
	// Two stale requests for Casey, one for Drew, one too fresh to count.
	seed("a", casey.ID, 1, stale)
	seed("b", casey.ID, 2, stale.Add(time.Hour))
	seed("c", drew.ID, 3, stale)
	seed("fresh", drew.ID, 4, time.Now())

	email.On("SendPendingDigest", mock.Anything, "casey@example.com", "Casey", 2, mock.MatchedBy(func(oldest time.Time) bool {
		return oldest.Equal(stale)
	})).Return(nil).Once()
	email.On("SendPendingDigest", mock.Anything, "drew@example.com", "Drew", 1, mock.Anything).Return(nil).Once()

	runner := NewJobRunner(Repos{
		JoinRequests: reqs,
		Creators:     creators,
		RateLimits:   store.RateLimits(),
	}, email, testConfig())
	runner.RemindPendingRequests()

	email.AssertExpectations(t)
}

func TestPurgeRateLimitCounters(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	limits := store.RateLimits()

	_, err := limits.Consume(ctx, "stale", 5, time.Minute, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	_, err = limits.Consume(ctx, "live", 5, time.Minute, time.Now())
	require.NoError(t, err)

	runner := NewJobRunner(Repos{
		JoinRequests: store.JoinRequests(),
		Creators:     store.Creators(),
		RateLimits:   limits,
	}, new(mockEmail), testConfig())
	runner.PurgeRateLimitCounters()

	// The stale counter is gone, so its next consume starts a new window.
	counter, err := limits.Consume(ctx, "stale", 5, time.Minute, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int32(1), counter.Count)

	counter, err = limits.Consume(ctx, "live", 5, time.Minute, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int32(2), counter.Count)
}
