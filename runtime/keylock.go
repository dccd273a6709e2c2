package runtime

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/rubentanahara/chat-net-8/errors"
)

// KeyedLocks serializes mutations per room ID while letting unrelated
// rooms proceed in parallel. Each key owns a one-slot channel semaphore,
// which makes acquisition interruptible: a caller that times out walks
// away without holding anything, and the entry is reference-counted so
// idle keys are reclaimed instead of accumulating forever.
type KeyedLocks struct {
	mu      sync.Mutex
	timeout time.Duration
	entries map[uuid.UUID]*lockEntry
}

type lockEntry struct {
	slot chan struct{}
	refs int
}

func NewKeyedLocks(timeout time.Duration) *KeyedLocks {
	return &KeyedLocks{
		timeout: timeout,
		entries: make(map[uuid.UUID]*lockEntry),
	}
}

// Acquire blocks until the key's lock is held, the context is done, or the
// configured timeout elapses. On success the returned release function must
// be called exactly once.
func (k *KeyedLocks) Acquire(ctx context.Context, key uuid.UUID) (func(), error) {
	k.mu.Lock()
	entry, ok := k.entries[key]
	if !ok {
		entry = &lockEntry{slot: make(chan struct{}, 1)}
		k.entries[key] = entry
	}
	entry.refs++
	k.mu.Unlock()

	timer := time.NewTimer(k.timeout)
	defer timer.Stop()

	select {
	case entry.slot <- struct{}{}:
		return func() {
			<-entry.slot
			k.release(key, entry)
		}, nil
	case <-ctx.Done():
		k.release(key, entry)
		return nil, apperrors.Timeout("lock acquisition canceled for %s", key)
	case <-timer.C:
		k.release(key, entry)
		return nil, apperrors.Timeout("lock acquisition exceeded %s for %s", k.timeout, key)
	}
}

func (k *KeyedLocks) release(key uuid.UUID, entry *lockEntry) {
	k.mu.Lock()
	defer k.mu.Unlock()
	entry.refs--
	if entry.refs == 0 {
		delete(k.entries, key)
	}
}
