package locker

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

var ErrLockNotAcquired = errors.New("doctor lock not acquired")

// Locker guards the check-then-write critical section of booking and
// rescheduling. The contended resource is a single doctor's calendar, so
// locks are keyed by doctor id.
type Locker interface {
	WithDoctorLock(ctx context.Context, doctorID uuid.UUID, fn func(ctx context.Context) error) error
}

type memoryLocker struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

// NewMemoryLocker returns an in-process locker. Sufficient for a single
// API instance and for tests; multi-instance deployments use the Redis
// locker instead.
func NewMemoryLocker() Locker {
	return &memoryLocker{locks: make(map[uuid.UUID]*sync.Mutex)}
}

func (l *memoryLocker) WithDoctorLock(ctx context.Context, doctorID uuid.UUID, fn func(ctx context.Context) error) error {
	l.mu.Lock()
	m, ok := l.locks[doctorID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[doctorID] = m
	}
	l.mu.Unlock()

	m.Lock()
	defer m.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}
