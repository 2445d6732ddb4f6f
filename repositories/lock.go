package repositories

import (
	"OPDQueue/database"
	"context"
	"log"
	"time"

	"github.com/google/uuid"
)

const (
	lockExpiry     = 10 * time.Second
	lockMaxRetries = 4
	lockRetryDelay = 500 * time.Millisecond
)

// withLock runs fn while holding the named Redis lock. Acquisition retries a
// few times (bounded at ~2s total) and then gives up with ErrResourceBusy so
// contended requests fail fast instead of queueing indefinitely.
func withLock(ctx context.Context, key string, fn func() error) error {
	lockValue := uuid.New().String()

	var locked bool
	var err error
	for i := 0; i < lockMaxRetries; i++ {
		locked, err = database.NewLock(ctx, key, lockValue, lockExpiry)
		if err == nil && locked {
			break
		}
		if i < lockMaxRetries-1 {
			time.Sleep(lockRetryDelay)
		}
	}
	if !locked {
		if err != nil {
			log.Printf("Lock %s unavailable: %v", key, err)
		}
		return ErrResourceBusy
	}
	defer func() {
		if err := database.ReleaseLock(ctx, key, lockValue); err != nil {
			log.Printf("Failed to release lock %s: %v", key, err)
		}
	}()

	return fn()
}
