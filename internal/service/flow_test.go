package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomgate-backend/internal/domain"
	"roomgate-backend/internal/repository/memory"
)

type stubVideo struct{}

func (stubVideo) Mint(_ context.Context, roomName, _ string, ttl time.Duration) (*MintedToken, error) {
	return &MintedToken{Token: "tok-" + roomName, ExpiresOn: time.Now().Add(ttl)}, nil
}

type stubEmail struct{}

func (stubEmail) SendJoinRequestNotice(context.Context, string, string, string, string) error {
	return nil
}

func (stubEmail) SendDecisionNotice(context.Context, string, string, string, domain.JoinRequestStatus, string) error {
	return nil
}

func (stubEmail) SendPendingDigest(context.Context, string, string, int, time.Time) error {
	return nil
}

func buildFlowServices(store *memory.Store) (LifecycleService, AccessDecisionService) {
	lifecycle := NewLifecycleController(
		store.JoinRequests(), store.Creators(), store.Users(), store.Rooms(),
		store.Notifications(), stubVideo{}, stubEmail{}, 15*time.Minute)
	engine := NewAccessDecisionEngine(
		store.Creators(), store.Users(), store.Rooms(), store.JoinRequests(),
		store.Notifications(),
		NewBanService(store.Bans()),
		NewRateLimiter(store.RateLimits()),
		NewBillingService(store.Creators()),
		lifecycle, stubEmail{},
		EngineConfig{JoinRequestsEnabled: true, RateLimitMax: 5, RateLimitWindow: time.Minute})
	return lifecycle, engine
}

func seedUser(ctx context.Context, t *testing.T, store *memory.Store, name string) *domain.User {
	t.Helper()
	accepted := time.Now().Add(-24 * time.Hour)
	u := &domain.User{
		Email:           name + "@example.com",
		DisplayName:     name,
		AgeAttested:     true,
		TermsAcceptedOn: &accepted,
	}
	require.NoError(t, store.Users().Create(ctx, u))
	return u
}

func seedCreator(ctx context.Context, t *testing.T, store *memory.Store, ownerID int32, slug string) *domain.Creator {
	t.Helper()
	periodEnd := time.Now().Add(30 * 24 * time.Hour)
	c := &domain.Creator{
		UserID:                ownerID,
		Slug:                  slug,
		Name:                  "Casey",
		Email:                 slug + "@example.com",
		Status:                domain.CreatorStatusActive,
		SubscriptionStatus:    domain.SubscriptionStatusActive,
		SubscriptionPeriodEnd: &periodEnd,
	}
	require.NoError(t, store.Creators().Create(ctx, c))
	return c
}

// TestJoinLifecycleFlow walks one knock room with a single slot through a
// full request/approve cycle against the in-memory backend and real
// services: pending requests do not occupy capacity, approval does not
// re-check capacity, and a new request against a full room is refused.
func TestJoinLifecycleFlow(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	owner := seedUser(ctx, t, store, "casey")
	creator := seedCreator(ctx, t, store, owner.ID, "casey")
	alice := seedUser(ctx, t, store, "alice")
	bob := seedUser(ctx, t, store, "bob")
	carol := seedUser(ctx, t, store, "carol")

	room := &domain.Room{
		CreatorID:       creator.ID,
		Slug:            domain.DefaultRoomSlug,
		JoinMode:        domain.JoinModeKnock,
		Enabled:         true,
		Active:          true,
		MaxParticipants: 1,
	}
	require.NoError(t, store.Rooms().Create(ctx, room))

	lifecycle, engine := buildFlowServices(store)

	request := func(u *domain.User) (*Decision, error) {
		return engine.Evaluate(ctx, EvaluateInput{
			UserID:      u.ID,
			CreatorSlug: creator.Slug,
			ClientIP:    "203.0.113.7",
			DeviceID:    fmt.Sprintf("device-%d", u.ID),
		})
	}

	// Alice and Bob both knock while the room is empty.
	aliceDec, err := request(alice)
	require.NoError(t, err)
	assert.False(t, aliceDec.AutoApproved)
	assert.Equal(t, domain.JoinRequestStatusPending, aliceDec.Request.Status)

	bobDec, err := request(bob)
	require.NoError(t, err)
	assert.Equal(t, domain.JoinRequestStatusPending, bobDec.Request.Status)

	// Approving Alice fills the single slot and mints her token.
	approved, err := lifecycle.Approve(ctx, creator.ID, aliceDec.Request.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JoinRequestStatusApproved, approved.Status)
	require.NotNil(t, approved.TokenExpiresOn)
	assert.Equal(t, "tok-casey-main", approved.AccessToken)

	view, err := lifecycle.Poll(ctx, alice.ID, aliceDec.Request.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JoinRequestStatusApproved, view.Status)
	assert.False(t, view.TokenExpired)
	assert.NotEmpty(t, view.AccessToken)

	// Bob's request predates the fill, and approval never re-checks
	// capacity, so the creator may still let him in.
	bobApproved, err := lifecycle.Approve(ctx, creator.ID, bobDec.Request.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JoinRequestStatusApproved, bobApproved.Status)

	// A fresh knock now finds the room full.
	_, err = request(carol)
	var de *domain.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, domain.CodeRoomCapReached, de.Code)

	// The full room also blocks a repeat attempt from someone already in.
	_, err = request(alice)
	require.ErrorAs(t, err, &de)
	assert.Equal(t, domain.CodeRoomCapReached, de.Code)
}

// TestJoinRequestNoticeRecipient pins the notice for a new knock to the
// creator's account id. Creator ids and user ids come from independent
// sequences, so a notice keyed by creator id would land on whichever
// unrelated user happens to share the number.
func TestJoinRequestNoticeRecipient(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	// bystander takes users.id 1, the same number the creator gets in the
	// creators sequence.
	bystander := seedUser(ctx, t, store, "bystander")
	owner := seedUser(ctx, t, store, "casey")
	requester := seedUser(ctx, t, store, "alice")

	creator := seedCreator(ctx, t, store, owner.ID, "casey")
	require.Equal(t, bystander.ID, creator.ID)

	room := &domain.Room{
		CreatorID:       creator.ID,
		Slug:            domain.DefaultRoomSlug,
		JoinMode:        domain.JoinModeKnock,
		Enabled:         true,
		Active:          true,
		MaxParticipants: 8,
	}
	require.NoError(t, store.Rooms().Create(ctx, room))

	_, engine := buildFlowServices(store)
	_, err := engine.Evaluate(ctx, EvaluateInput{
		UserID:      requester.ID,
		CreatorSlug: creator.Slug,
		ClientIP:    "203.0.113.7",
		DeviceID:    "device-req",
	})
	require.NoError(t, err)

	ownerNotes, _, err := store.Notifications().List(ctx, owner.ID, 20, 0)
	require.NoError(t, err)
	require.Len(t, ownerNotes, 1)
	assert.Equal(t, "New join request", ownerNotes[0].Title)

	bystanderNotes, _, err := store.Notifications().List(ctx, bystander.ID, 20, 0)
	require.NoError(t, err)
	assert.Empty(t, bystanderNotes)
}
