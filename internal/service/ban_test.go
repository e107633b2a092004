package service

import (
	"context"
	"testing"

	"roomgate-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func int32Ptr(v int32) *int32 { return &v }

func TestBanService_IsBanned_FacetMatching(t *testing.T) {
	ctx := context.Background()

	identity := domain.RequesterIdentity{
		UserID:     42,
		Email:      "viewer@example.com",
		IPHash:     domain.HashIdentity("203.0.113.7"),
		DeviceHash: domain.HashIdentity("device-abc"),
	}

	tests := []struct {
		name   string
		ban    domain.Ban
		banned bool
	}{
		{"user id facet matches", domain.Ban{UserID: int32Ptr(42), Reason: "spam"}, true},
		{"user id facet differs", domain.Ban{UserID: int32Ptr(43)}, false},
		{"email facet matches", domain.Ban{Email: "viewer@example.com"}, true},
		{"email facet differs", domain.Ban{Email: "other@example.com"}, false},
		{"ip hash facet matches", domain.Ban{IPHash: domain.HashIdentity("203.0.113.7")}, true},
		{"device hash facet matches", domain.Ban{DeviceHash: domain.HashIdentity("device-abc")}, true},
		{"unset facets never match", domain.Ban{Reason: "empty rule"}, false},
		{"any one matching facet suffices", domain.Ban{UserID: int32Ptr(99), Email: "viewer@example.com"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			banRepo := new(MockBanRepo)
			banRepo.On("ListByCreator", ctx, int32(1)).Return([]domain.Ban{tt.ban}, nil)
			svc := NewBanService(banRepo)

			match, err := svc.IsBanned(ctx, 1, identity)
			assert.NoError(t, err)
			assert.Equal(t, tt.banned, match.Banned)
		})
	}
}

func TestBanService_IsBanned_NormalizesEmail(t *testing.T) {
	ctx := context.Background()
	banRepo := new(MockBanRepo)
	banRepo.On("ListByCreator", ctx, int32(1)).Return([]domain.Ban{
		{Email: "viewer@example.com", Reason: "abuse"},
	}, nil)
	svc := NewBanService(banRepo)

	match, err := svc.IsBanned(ctx, 1, domain.RequesterIdentity{
		Email: "  Viewer@Example.COM  ",
	})
	assert.NoError(t, err)
	assert.True(t, match.Banned)
	assert.Equal(t, "abuse", match.Reason)
}

func TestBanService_IsBanned_ZeroUserIDNeverMatches(t *testing.T) {
	// An anonymous requester must not match a user-id ban for user 0.
	ctx := context.Background()
	banRepo := new(MockBanRepo)
	banRepo.On("ListByCreator", ctx, int32(1)).Return([]domain.Ban{
		{UserID: int32Ptr(0)},
	}, nil)
	svc := NewBanService(banRepo)

	match, err := svc.IsBanned(ctx, 1, domain.RequesterIdentity{UserID: 0})
	assert.NoError(t, err)
	assert.False(t, match.Banned)
}

func TestBanService_CreateBan(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects a ban with no facet", func(t *testing.T) {
		banRepo := new(MockBanRepo)
		svc := NewBanService(banRepo)

		err := svc.CreateBan(ctx, 1, &domain.Ban{Reason: "no facets"})
		de := domain.AsError(err)
		assert.Equal(t, domain.CodeInvalidRequest, de.Code)
		banRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("normalizes facets before storing", func(t *testing.T) {
		banRepo := new(MockBanRepo)
		banRepo.On("Create", ctx, mock.MatchedBy(func(b *domain.Ban) bool {
			return b.CreatorID == 1 && b.Email == "troll@example.com"
		})).Return(nil).Once()
		svc := NewBanService(banRepo)

		err := svc.CreateBan(ctx, 1, &domain.Ban{Email: " Troll@Example.com "})
		assert.NoError(t, err)
		banRepo.AssertExpectations(t)
	})
}

func TestBanService_RemoveBan(t *testing.T) {
	ctx := context.Background()

	t.Run("owner deletes", func(t *testing.T) {
		banRepo := new(MockBanRepo)
		banRepo.On("GetByID", ctx, int32(7)).Return(&domain.Ban{ID: 7, CreatorID: 1}, nil).Once()
		banRepo.On("Delete", ctx, int32(7)).Return(nil).Once()
		svc := NewBanService(banRepo)

		assert.NoError(t, svc.RemoveBan(ctx, 1, 7))
		banRepo.AssertExpectations(t)
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		banRepo := new(MockBanRepo)
		banRepo.On("GetByID", ctx, int32(7)).Return(&domain.Ban{ID: 7, CreatorID: 2}, nil).Once()
		svc := NewBanService(banRepo)

		err := svc.RemoveBan(ctx, 1, 7)
		assert.ErrorIs(t, err, domain.ErrForbidden)
		banRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}
