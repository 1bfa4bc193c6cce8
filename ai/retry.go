// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ai

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// ErrInvalidMaxAttempts is returned when a retry budget is not positive.
var ErrInvalidMaxAttempts = errors.New("maxAttempts must be positive")

// RetryWithBackoff retries an operation with exponential backoff, stopping
// early on permanent errors (per IsTransient). The delay doubles on each
// retry: baseDelay * 2^(attempt-1).
//
// On failure the returned error is an *EmbeddingError recording the attempt
// count, the last HTTP status if any, and the failure class. Context
// cancellation is returned as-is.
func RetryWithBackoff(ctx context.Context, operation func() error, maxAttempts int, baseDelay time.Duration) error {
	if maxAttempts <= 0 {
		return ErrInvalidMaxAttempts
	}

	var lastErr error
	attempt := 1
	for ; attempt <= maxAttempts; attempt++ {
		// Check context before attempting
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		lastErr = operation()
		if lastErr == nil {
			if attempt > 1 {
				slog.Debug("operation succeeded after retry", "attempt", attempt)
			}
			return nil
		}
		if errors.Is(lastErr, context.Canceled) || errors.Is(lastErr, context.DeadlineExceeded) {
			return lastErr
		}

		if !IsTransient(lastErr) {
			slog.Debug("operation failed permanently, not retrying", "attempt", attempt, "error", lastErr)
			return wrapEmbeddingError(lastErr, attempt, false)
		}

		slog.Debug("operation failed, will retry", "attempt", attempt, "maxAttempts", maxAttempts, "error", lastErr)

		// Don't sleep after the last attempt
		if attempt == maxAttempts {
			break
		}

		delay := baseDelay
		for i := 1; i < attempt; i++ {
			delay *= 2
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return wrapEmbeddingError(lastErr, maxAttempts, true)
}

func wrapEmbeddingError(err error, attempts int, transient bool) error {
	code := 0
	var status *StatusError
	if errors.As(err, &status) {
		code = status.Code
	}
	return &EmbeddingError{
		Attempts:   attempts,
		StatusCode: code,
		Transient:  transient,
		Err:        err,
	}
}
