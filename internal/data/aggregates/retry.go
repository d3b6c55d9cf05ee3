package aggregates

import (
	"context"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	domainagg "github.com/yungbote/lms-backend/internal/domain/aggregates"
)

// RetryPolicy bounds how often a write that lost a race is re-run.
type RetryPolicy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryPolicy is used for zero fields.
var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts:     3,
	InitialInterval: 25 * time.Millisecond,
	MaxInterval:     500 * time.Millisecond,
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultRetryPolicy.MaxAttempts
	}
	if p.InitialInterval <= 0 {
		p.InitialInterval = DefaultRetryPolicy.InitialInterval
	}
	if p.MaxInterval <= 0 {
		p.MaxInterval = DefaultRetryPolicy.MaxInterval
	}
	if p.MaxInterval < p.InitialInterval {
		p.MaxInterval = p.InitialInterval
	}
	return p
}

// RetryConflicts runs fn until it succeeds, fails with a code other than
// retryable, or runs out of attempts. fn must redo the whole operation
// (re-count, re-plan) on every call. Exhausted retries surface as conflict.
func RetryConflicts[T any](ctx context.Context, policy RetryPolicy, hooks Hooks, op string, fn func() (T, error)) (T, error) {
	policy = policy.withDefaults()
	if hooks == nil {
		hooks = noopHooks{}
	}
	op = strings.TrimSpace(op)

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = policy.InitialInterval
	exp.MaxInterval = policy.MaxInterval

	out, err := backoff.Retry(ctx, func() (T, error) {
		res, err := fn()
		if err == nil {
			return res, nil
		}
		if domainagg.IsCode(err, domainagg.CodeRetryable) {
			return res, err
		}
		return res, backoff.Permanent(err)
	},
		backoff.WithBackOff(exp),
		backoff.WithMaxTries(uint(policy.MaxAttempts)),
	)
	if err == nil {
		return out, nil
	}
	if domainagg.IsCode(err, domainagg.CodeRetryable) {
		hooks.IncConflict(op)
		return out, domainagg.NewError(domainagg.CodeConflict, op, "gave up after concurrent modification", err)
	}
	if _, ok := err.(*domainagg.Error); !ok {
		err = MapError(op, err)
	}
	return out, err
}
