package fetcher

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/quantmind-br/offsync/internal/domain"
)

const defaultRetries = 3

// RetryPolicy bounds how transient download failures are repeated.
// MaxRetries counts attempts after the first one: zero disables retries
// and a negative value selects the default.
type RetryPolicy struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
}

// DefaultRetryPolicy returns the policy used by NewClient
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:      defaultRetries,
		InitialInterval: time.Second,
		MaxInterval:     30 * time.Second,
		Multiplier:      2.0,
	}
}

func (p RetryPolicy) normalized() RetryPolicy {
	def := DefaultRetryPolicy()
	if p.MaxRetries < 0 {
		p.MaxRetries = def.MaxRetries
	}
	if p.InitialInterval <= 0 {
		p.InitialInterval = def.InitialInterval
	}
	if p.MaxInterval <= 0 {
		p.MaxInterval = def.MaxInterval
	}
	if p.Multiplier <= 0 {
		p.Multiplier = def.Multiplier
	}
	return p
}

func (p RetryPolicy) schedule(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = p.InitialInterval
	exp.MaxInterval = p.MaxInterval
	exp.Multiplier = p.Multiplier
	exp.RandomizationFactor = 0.5
	exp.MaxElapsedTime = 0
	exp.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(p.MaxRetries)), ctx)
}

// Retry runs op until it succeeds, returns a non-retryable error or the
// policy runs out. The last error from op is returned. A server-supplied
// Retry-After stretches the wait before the next attempt.
func Retry[T any](ctx context.Context, policy RetryPolicy, op func() (T, error)) (T, error) {
	var zero T
	sched := policy.normalized().schedule(ctx)

	for {
		result, err := op()
		if err == nil {
			return result, nil
		}
		if !domain.IsRetryable(err) {
			return zero, err
		}

		wait := sched.NextBackOff()
		if wait == backoff.Stop {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return zero, ctxErr
			}
			return zero, err
		}
		if hint := retryAfterHint(err); hint > wait {
			wait = hint
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
}

func retryAfterHint(err error) time.Duration {
	var retryable *domain.RetryableError
	if errors.As(err, &retryable) && retryable.RetryAfter > 0 {
		return time.Duration(retryable.RetryAfter) * time.Second
	}
	return 0
}

// ShouldRetryStatus reports whether a response status is worth another attempt
func ShouldRetryStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusTooManyRequests, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	// CDN origin errors
	return statusCode >= 520 && statusCode <= 530
}

// ParseRetryAfter parses a Retry-After header given either as
// delta-seconds or as an HTTP date
func ParseRetryAfter(retryAfter string) time.Duration {
	retryAfter = strings.TrimSpace(retryAfter)
	if retryAfter == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(retryAfter); err == nil {
		if seconds <= 0 {
			return 0
		}
		return time.Duration(seconds) * time.Second
	}

	if at, err := http.ParseTime(retryAfter); err == nil {
		if d := time.Until(at); d > 0 {
			return d.Round(time.Second)
		}
	}
	return 0
}
