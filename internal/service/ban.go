package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"roomgate-backend/internal/domain"
	"roomgate-backend/internal/repository"
)

type banService struct {
	banRepo repository.BanRepository
}

func NewBanService(banRepo repository.BanRepository) BanService {
	return &banService{banRepo: banRepo}
}

// IsBanned matches the requester's identity facets against the creator's
// ban list. A ban matches when ANY of its populated facets equals the
// corresponding requester facet; unset facets on a ban never match.
func (s *banService) IsBanned(ctx context.Context, creatorID int32, identity domain.RequesterIdentity) (*BanMatch, error) {
	bans, err := s.banRepo.ListByCreator(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bans: %w", err)
	}

	identity.Email = domain.NormalizeEmail(identity.Email)
	identity.IPHash = strings.ToLower(identity.IPHash)
	identity.DeviceHash = strings.ToLower(identity.DeviceHash)

	for _, ban := range bans {
		if matchesBan(&ban, identity) {
			return &BanMatch{Banned: true, Reason: ban.Reason}, nil
		}
	}
	return &BanMatch{}, nil
}

func matchesBan(ban *domain.Ban, identity domain.RequesterIdentity) bool {
	if ban.UserID != nil && identity.UserID != 0 && *ban.UserID == identity.UserID {
		return true
	}
	if ban.Email != "" && identity.Email != "" && ban.Email == identity.Email {
		return true
	}
	if ban.IPHash != "" && identity.IPHash != "" && ban.IPHash == identity.IPHash {
		return true
	}
	if ban.DeviceHash != "" && identity.DeviceHash != "" && ban.DeviceHash == identity.DeviceHash {
		return true
	}
	return false
}

func (s *banService) CreateBan(ctx context.Context, creatorID int32, ban *domain.Ban) error {
	ban.CreatorID = creatorID
	ban.Email = domain.NormalizeEmail(ban.Email)
	ban.IPHash = strings.ToLower(ban.IPHash)
	ban.DeviceHash = strings.ToLower(ban.DeviceHash)
	if !ban.HasFacet() {
		return domain.NewError(domain.CodeInvalidRequest, http.StatusBadRequest, "a ban needs at least one identity facet")
	}
	if err := s.banRepo.Create(ctx, ban); err != nil {
		return fmt.Errorf("failed to create ban: %w", err)
	}
	return nil
}

func (s *banService) RemoveBan(ctx context.Context, creatorID, banID int32) error {
	ban, err := s.banRepo.GetByID(ctx, banID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("failed to get ban: %w", err)
	}
	if ban.CreatorID != creatorID {
		return domain.ErrForbidden
	}
	// Bans are denial rules, not decision records; unban is a hard delete.
	if err := s.banRepo.Delete(ctx, banID); err != nil {
		return fmt.Errorf("failed to delete ban: %w", err)
	}
	return nil
}

func (s *banService) ListBans(ctx context.Context, creatorID int32) ([]domain.Ban, error) {
	return s.banRepo.ListByCreator(ctx, creatorID)
}
