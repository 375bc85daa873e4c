package reconciler

import (
	"context"
	"log"
	"time"

	"colecta_engine/internal/models"
)

const maxReadAttempts = 3

// withRetry re-runs an idempotent read on transient storage errors, backing
// off a little more each attempt. Writes never go through here: retrying a
// partially applied multi-row write could double-apply.
func withRetry(ctx context.Context, op string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= maxReadAttempts; attempt++ {
		err = fn()
		if err == nil || !models.IsTransientStorage(err) {
			return err
		}
		log.Printf("[RECON][RETRY] %s attempt=%d: %v", op, attempt, err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * 200 * time.Millisecond):
		}
	}
	return err
}
