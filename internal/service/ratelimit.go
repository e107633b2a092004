package service

import (
	"context"
	"fmt"
	"time"

	"roomgate-backend/internal/repository"
)

type rateLimiter struct {
	repo repository.RateLimitRepository
}

// NewRateLimiter builds a fixed-window limiter on top of a durable
// counter store. The store, not process memory, holds the counters, so
// limits hold across restarts and horizontally scaled replicas.
func NewRateLimiter(repo repository.RateLimitRepository) RateLimiter {
	return &rateLimiter{repo: repo}
}

func (l *rateLimiter) Consume(ctx context.Context, key string, max int32, window time.Duration) (bool, int32, error) {
	counter, err := l.repo.Consume(ctx, key, max, window, time.Now())
	if err != nil {
		return false, 0, fmt.Errorf("failed to consume rate limit counter: %w", err)
	}
	remaining := max - counter.Count
	if remaining < 0 {
		remaining = 0
	}
	return counter.Count <= max, remaining, nil
}

// RateLimitKey builds the counter key for an endpoint and actor pair.
// Scoping is the caller's responsibility: per requester+creator pair for
// join requests, so one hot creator cannot exhaust a user's budget
// elsewhere.
func RateLimitKey(endpoint string, actorIDs ...int32) string {
	key := endpoint
	for _, id := range actorIDs {
		key = fmt.Sprintf("%s:%d", key, id)
	}
	return key
}
