package service

import (
	"context"
	"fmt"
	"time"

	"roomgate-backend/internal/domain"
	"roomgate-backend/internal/repository"
)

// billingService derives subscription standing from the creator record.
// A real billing API can replace it behind the same interface.
type billingService struct {
	creatorRepo repository.CreatorRepository
}

func NewBillingService(creatorRepo repository.CreatorRepository) BillingService {
	return &billingService{creatorRepo: creatorRepo}
}

func (s *billingService) IsSubscriptionActive(ctx context.Context, creatorID int32) (bool, error) {
	creator, err := s.creatorRepo.GetByID(ctx, creatorID)
	if err != nil {
		return false, fmt.Errorf("failed to get creator: %w", err)
	}
	if creator.SubscriptionStatus != domain.SubscriptionStatusActive {
		return false, nil
	}
	if creator.SubscriptionPeriodEnd != nil && creator.SubscriptionPeriodEnd.Before(time.Now()) {
		return false, nil
	}
	return true, nil
}
