package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"streamfinder-backend/internal/repository"

	"github.com/sirupsen/logrus"
)

// ErrQuotaExceeded is returned when a reservation would push the monthly
// Watchmode request counter past the configured limit. It is never retried
// within a run; the orchestrator aborts and returns a partial result.
var ErrQuotaExceeded = errors.New("monthly watchmode request quota exceeded")

// QuotaTracker gates every Watchmode request against the shared monthly
// counter. Reserve must be called, and must succeed, before a request is
// issued.
type QuotaTracker interface {
	Reserve(ctx context.Context, n int) error
	Usage(ctx context.Context) (used, limit int, err error)
}

type quotaTracker struct {
	usageRepo repository.UsageRepository
	limit     int
	logger    *logrus.Logger

	// Serializes in-process callers; cross-instance safety comes from the
	// conditional UPDATE inside IncrementIfUnderLimit.
	mu sync.Mutex
}

func NewQuotaTracker(usageRepo repository.UsageRepository, monthlyLimit int, logger *logrus.Logger) QuotaTracker {
	return &quotaTracker{
		usageRepo: usageRepo,
		limit:     monthlyLimit,
		logger:    logger,
	}
}

func (t *quotaTracker) Reserve(ctx context.Context, n int) error {
	if n < 1 {
		n = 1
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	granted, err := t.usageRepo.IncrementIfUnderLimit(ctx, n, t.limit)
	if err != nil {
		return fmt.Errorf("failed to reserve api quota: %w", err)
	}
	if !granted {
		t.logger.WithFields(logrus.Fields{
			"requested": n,
			"limit":     t.limit,
		}).Warn("Watchmode monthly quota exhausted")
		return ErrQuotaExceeded
	}
	return nil
}

func (t *quotaTracker) Usage(ctx context.Context) (int, int, error) {
	used, err := t.usageRepo.GetCurrentMonthUsage(ctx)
	if err != nil {
		return 0, 0, err
	}
	return used, t.limit, nil
}
