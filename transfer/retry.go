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


package transfer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/poiesic/blobstore/storage"
)

// retryable reports whether a failed copy is worth another attempt.
// Missing keys and decode problems will not go away on their own.
func retryable(err error) bool {
	return errors.Is(err, storage.ErrIOFailure)
}

// withBackoff runs op up to attempts times, doubling the delay after each
// retryable failure. The error from the last attempt is returned.
func withBackoff(ctx context.Context, logger *slog.Logger, attempts int, baseDelay time.Duration, op func() error) error {
	if attempts <= 0 {
		return ErrInvalidAttempts
	}

	var lastErr error
	delay := baseDelay
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = op()
		if lastErr == nil {
			if attempt > 1 {
				logger.Debug("copy succeeded after retry", "attempt", attempt)
			}
			return nil
		}
		if !retryable(lastErr) || attempt == attempts {
			break
		}

		logger.Debug("copy failed, will retry", "attempt", attempt, "attempts", attempts, "err", lastErr)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}

	return lastErr
}
