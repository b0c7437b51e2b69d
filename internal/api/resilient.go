package api

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/fortify/circuitbreaker"
	"github.com/felixgeelhaar/fortify/retry"

	"github.com/cortexhq/cortex/internal/domain"
)

// Resilient wraps a Client with retry and circuit-breaker patterns from
// fortify. Only read operations go through the resilience pipeline:
// POST /responses must never be retried automatically (a duplicate
// submission is worse than a failed one), and the workspace controller
// owns submit idempotency.
type Resilient struct {
	*Client
	breaker circuitbreaker.CircuitBreaker[any]
	retrier retry.Retry[any]
	logger  *slog.Logger
}

// ResilientConfig holds tuning for the resilience wrapper
type ResilientConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Logger       *slog.Logger
}

// DefaultResilientConfig returns sensible defaults for an interactive client
func DefaultResilientConfig() ResilientConfig {
	return ResilientConfig{
		MaxAttempts:  3,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     5 * time.Second,
	}
}

// NewResilient wraps a client with retry and circuit breaking
func NewResilient(client *Client, cfg ResilientConfig) *Resilient {
	r := &Resilient{
		Client: client,
		logger: cfg.Logger,
	}

	r.breaker = circuitbreaker.New[any](circuitbreaker.Config{
		MaxRequests: 2,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts circuitbreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(from, to circuitbreaker.State) {
			if r.logger != nil {
				r.logger.Warn("circuit breaker state change",
					"from", from.String(),
					"to", to.String())
			}
		},
	})

	r.retrier = retry.New[any](retry.Config{
		MaxAttempts:   cfg.MaxAttempts,
		InitialDelay:  cfg.InitialDelay,
		MaxDelay:      cfg.MaxDelay,
		Multiplier:    2.0,
		BackoffPolicy: retry.BackoffExponential,
		Jitter:        true,
		IsRetryable:   isRetryable,
	})

	return r
}

// isRetryable allows retries on transport failures and retryable server
// statuses. Business errors (cooldown, validation) and auth failures pass
// straight through.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, domain.ErrUnauthorized) {
		return false
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Retryable()
	}
	// Transport-level failure
	return true
}

func (r *Resilient) read(ctx context.Context, op func(context.Context) (any, error)) (any, error) {
	return r.breaker.Execute(ctx, func(ctx context.Context) (any, error) {
		return r.retrier.Do(ctx, op)
	})
}

// Me fetches the signed-in identity with retries
func (r *Resilient) Me(ctx context.Context) (*domain.User, error) {
	v, err := r.read(ctx, func(ctx context.Context) (any, error) {
		return r.Client.Me(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.User), nil
}

// ListTasks fetches tasks with retries
func (r *Resilient) ListTasks(ctx context.Context, role, difficulty string) ([]domain.Task, error) {
	v, err := r.read(ctx, func(ctx context.Context) (any, error) {
		return r.Client.ListTasks(ctx, role, difficulty)
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Task), nil
}

// GetTask fetches a task with retries
func (r *Resilient) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	v, err := r.read(ctx, func(ctx context.Context) (any, error) {
		return r.Client.GetTask(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Task), nil
}

// RandomTask fetches the daily challenge with retries
func (r *Resilient) RandomTask(ctx context.Context) (*domain.Task, error) {
	v, err := r.read(ctx, func(ctx context.Context) (any, error) {
		return r.Client.RandomTask(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Task), nil
}

// GetResponse fetches a submission with retries
func (r *Resilient) GetResponse(ctx context.Context, id string) (*domain.TaskResponse, error) {
	v, err := r.read(ctx, func(ctx context.Context) (any, error) {
		return r.Client.GetResponse(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.TaskResponse), nil
}

// History fetches the submission history with retries
func (r *Resilient) History(ctx context.Context) ([]domain.TaskResponse, error) {
	v, err := r.read(ctx, func(ctx context.Context) (any, error) {
		return r.Client.History(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.TaskResponse), nil
}

// ProgressStats fetches progress counters with retries
func (r *Resilient) ProgressStats(ctx context.Context) (*domain.ProgressStats, error) {
	v, err := r.read(ctx, func(ctx context.Context) (any, error) {
		return r.Client.ProgressStats(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.ProgressStats), nil
}

// ListDrills fetches drills with retries
func (r *Resilient) ListDrills(ctx context.Context) ([]domain.Drill, error) {
	v, err := r.read(ctx, func(ctx context.Context) (any, error) {
		return r.Client.ListDrills(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Drill), nil
}
