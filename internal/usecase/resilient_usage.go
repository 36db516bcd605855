package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net"
	"strings"
	"time"

	"aeye-server/internal/domain/repository"
)

// ResilientUsage fronts the shared usage store (Redis) with retries and keeps
// counting locally when the store stays unreachable.
type ResilientUsage struct {
	primary    repository.UsageCounter
	fallback   repository.UsageCounter // local, never fails
	maxRetries int
	baseDelay  time.Duration
	timeout    time.Duration
	log        *slog.Logger
}

func NewResilientUsage(primary, fallback repository.UsageCounter, log *slog.Logger) *ResilientUsage {
	if log == nil {
		log = slog.Default()
	}
	return &ResilientUsage{
		primary:    primary,
		fallback:   fallback,
		maxRetries: 2, // 3 attempts in total
		baseDelay:  100 * time.Millisecond,
		timeout:    3 * time.Second,
		log:        log,
	}
}

func (r *ResilientUsage) Increment(ctx context.Context, deviceID string) error {
	resCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	err := r.executeWithRetry(resCtx, func(ctx context.Context) error {
		return r.primary.Increment(ctx, deviceID)
	})
	if err == nil {
		return nil
	}

	r.log.Warn("usage store unavailable, counting locally", "device_id", deviceID, "error", err)
	if ferr := r.fallback.Increment(ctx, deviceID); ferr != nil {
		return fmt.Errorf("both primary and fallback usage counters failed: %w", errors.Join(err, ferr))
	}
	return nil
}

// Count adds whatever was counted locally while the store was down.
func (r *ResilientUsage) Count(ctx context.Context, deviceID string) (int64, error) {
	return r.sum(ctx, func(c repository.UsageCounter) (int64, error) {
		return c.Count(ctx, deviceID)
	})
}

func (r *ResilientUsage) Total(ctx context.Context) (int64, error) {
	return r.sum(ctx, func(c repository.UsageCounter) (int64, error) {
		return c.Total(ctx)
	})
}

func (r *ResilientUsage) sum(ctx context.Context, read func(repository.UsageCounter) (int64, error)) (int64, error) {
	local, err := read(r.fallback)
	if err != nil {
		return 0, err
	}
	var remote int64
	err = r.executeWithRetry(ctx, func(context.Context) error {
		var rerr error
		remote, rerr = read(r.primary)
		return rerr
	})
	if err != nil {
		r.log.Warn("usage store unavailable, reporting local counts only", "error", err)
		return local, nil
	}
	return remote + local, nil
}

func (r *ResilientUsage) executeWithRetry(ctx context.Context, op func(context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !isRetryable(err) || attempt == r.maxRetries {
			break
		}

		select {
		case <-time.After(r.calculateBackoff(attempt)):
			continue
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}

func isRetryable(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "pool timeout") ||
		strings.Contains(msg, "loading") ||
		strings.Contains(msg, "tryagain")
}

func (r *ResilientUsage) calculateBackoff(attempt int) time.Duration {
	backoff := float64(r.baseDelay) * float64(int(1)<<attempt)
	jitter := (rand.Float64() * 0.2) * backoff // 20% jitter
	return time.Duration(backoff + jitter)
}
