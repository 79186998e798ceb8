// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package resilience

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryConfig holds retry configuration.
type RetryConfig struct {
	MaxRetries      int                          // Maximum number of retry attempts after the first call
	InitialInterval time.Duration                // Initial retry interval
	MaxInterval     time.Duration                // Maximum retry interval
	Multiplier      float64                      // Exponential backoff multiplier (e.g. 2.0 doubles each attempt)
	MaxElapsedTime  time.Duration                // Maximum total time for all retries, 0 for no limit
	Jitter          bool                         // Randomize each interval by up to 25%
	OnRetry         func(attempt int, err error) // Optional callback invoked before each retry
}

// DefaultRetryConfig returns the defaults used for both collaborators.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:      2,
		InitialInterval: 200 * time.Millisecond,
		MaxInterval:     2 * time.Second,
		Multiplier:      2.0,
		MaxElapsedTime:  30 * time.Second,
		Jitter:          true,
	}
}

// RetryableOperation represents an operation that can be retried.
type RetryableOperation func(ctx context.Context) error

func (c RetryConfig) backOff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = c.InitialInterval
	exp.Multiplier = c.Multiplier
	exp.MaxElapsedTime = c.MaxElapsedTime
	if c.MaxInterval > 0 {
		exp.MaxInterval = c.MaxInterval
	}
	exp.RandomizationFactor = 0
	if c.Jitter {
		exp.RandomizationFactor = 0.25
	}

	var b backoff.BackOff = exp
	if c.MaxRetries >= 0 {
		b = backoff.WithMaxRetries(b, uint64(c.MaxRetries))
	}
	return backoff.WithContext(b, ctx)
}

// RetryWithBackoff executes operation until it succeeds, returns a
// non-retryable error (see ClassifyError), the retry budget runs out, or ctx
// is done. The error of the last attempt is returned unwrapped.
func RetryWithBackoff(ctx context.Context, config RetryConfig, operation RetryableOperation) error {
	attempt := 0
	op := func() error {
		err := operation(ctx)
		if err == nil {
			return nil
		}
		if !IsRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, _ time.Duration) {
		attempt++
		if config.OnRetry != nil {
			config.OnRetry(attempt, err)
		}
	}

	return backoff.RetryNotify(op, config.backOff(ctx), notify)
}

// Policy couples a retry configuration with an optional circuit breaker. It
// is what the collaborator clients wrap their remote calls in.
type Policy struct {
	Retry   RetryConfig
	Breaker *CircuitBreaker
}

// Do runs operation under the policy. Each attempt passes through the
// breaker; an open breaker fails the attempt without calling operation and is
// not retried.
func (p Policy) Do(ctx context.Context, operation RetryableOperation) error {
	if p.Breaker == nil {
		return RetryWithBackoff(ctx, p.Retry, operation)
	}
	return RetryWithBackoff(ctx, p.Retry, func(ctx context.Context) error {
		return p.Breaker.Execute(ctx, operation)
	})
}
