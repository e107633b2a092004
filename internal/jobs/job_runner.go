package jobs

import (
	"context"
	"time"

	"roomgate-backend/internal/config"
	"roomgate-backend/internal/logger"
	"roomgate-backend/internal/repository"
	"roomgate-backend/internal/service"
)

// Repos holds the repositories the jobs touch. Interfaces so the runner
// works against either storage backend.
type Repos struct {
	JoinRequests repository.JoinRequestRepository
	Creators     repository.CreatorRepository
	RateLimits   repository.RateLimitRepository
}

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	repos  Repos
	email  service.EmailService
	config *config.Config
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(repos Repos, email service.EmailService, cfg *config.Config) *JobRunner {
	return &JobRunner{
		repos:  repos,
		email:  email,
		config: cfg,
	}
}

// Config exposes the loaded configuration for schedule registration
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}

// RemindPendingRequests emails each creator a digest of join requests
// that have been waiting longer than the configured age.
func (jr *JobRunner) RemindPendingRequests() {
	jr.runWithRecovery("RemindPendingRequests", func() {
		ctx := context.Background()

		age := time.Duration(jr.config.Scheduler.PendingReminderAgeHours) * time.Hour
		cutoff := time.Now().UTC().Add(-age)

		pending, err := jr.repos.JoinRequests.ListPendingOlderThan(ctx, cutoff)
		if err != nil {
			logger.Error("Failed to list stale pending requests", "error", err)
			return
		}
		if len(pending) == 0 {
			logger.Info("No stale pending requests to remind about")
			return
		}

		// Group by creator: one digest per creator, not one email per request.
		type digest struct {
			count  int
			oldest time.Time
		}
		byCreator := make(map[int32]*digest)
		for _, req := range pending {
			d := byCreator[req.CreatorID]
			if d == nil {
				d = &digest{oldest: req.CreatedOn}
				byCreator[req.CreatorID] = d
			}
			d.count++
			if req.CreatedOn.Before(d.oldest) {
				d.oldest = req.CreatedOn
			}
		}

		sent := 0
		for creatorID, d := range byCreator {
			creator, err := jr.repos.Creators.GetByID(ctx, creatorID)
			if err != nil {
				logger.Error("Failed to load creator for reminder digest",
					"creator_id", creatorID,
					"error", err)
				continue
			}
			if err := jr.email.SendPendingDigest(ctx, creator.Email, creator.Name, d.count, d.oldest); err != nil {
				logger.Error("Failed to send pending digest",
					"creator_id", creatorID,
					"error", err)
				continue
			}
			sent++
		}

		logger.Info("Pending request reminders sent",
			"creators_notified", sent,
			"stale_requests", len(pending))
	})
}

// PurgeRateLimitCounters deletes rate limit counters whose window closed
// before the retention cutoff. Counters are only read within their own
// window, so anything older is dead weight.
func (jr *JobRunner) PurgeRateLimitCounters() {
	jr.runWithRecovery("PurgeRateLimitCounters", func() {
		ctx := context.Background()

		// Keep one extra window of history so a purge racing a live window
		// never deletes a counter still in use.
		cutoff := time.Now().UTC().Add(-2 * jr.config.RateLimit.JoinWindow())

		purged, err := jr.repos.RateLimits.PurgeExpired(ctx, cutoff)
		if err != nil {
			logger.Error("Failed to purge rate limit counters", "error", err)
			return
		}

		logger.Info("Rate limit counters purged", "count", purged)
	})
}

// RunAllJobs runs every job once (for manual execution)
func (jr *JobRunner) RunAllJobs() {
	jr.RemindPendingRequests()
	jr.PurgeRateLimitCounters()
}
