// services/booklock.go
package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrSlotContended is returned when another booking attempt holds the
// lock for an involved staff/day; the caller should retry.
var ErrSlotContended = errors.New("another booking for this staff is in progress, please retry")

// Sized to cover a full payment capture including the provider
// round-trip, so a live holder's key does not expire mid-capture.
const lockTTL = 2 * time.Minute

// unlockScript deletes a lock key only when it still holds this
// acquisition's token, so a holder whose key expired cannot remove a
// competitor's lock.
const unlockScript = `if redis.call("get", KEYS[1]) == ARGV[1] then return redis.call("del", KEYS[1]) else return 0 end`

// lockStore is the slice of the redis client the lock uses. *redis.Client
// satisfies it; tests substitute an in-memory fake.
type lockStore interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// BookingLock serializes validate-and-commit per staff per day, closing
// the check-then-act window between conflict validation and persistence.
// Backed by redis SET NX when a client is configured, otherwise by an
// in-process table (sufficient for single-node deployments).
type BookingLock struct {
	store lockStore

	mu   sync.Mutex
	held map[string]bool
}

func NewBookingLock(rdb *redis.Client) *BookingLock {
	lock := &BookingLock{held: make(map[string]bool)}
	if rdb != nil {
		lock.store = rdb
	}
	return lock
}

// Acquire takes the lock for every staff/day pair in the proposed set.
// Keys are sorted so concurrent acquirers collide instead of
// deadlocking. The returned release function must be called after
// persistence.
func (l *BookingLock) Acquire(ctx context.Context, proposed []ProposedAppointment) (func(), error) {
	keys := lockKeys(proposed)
	if l.store != nil {
		return l.acquireRedis(ctx, keys)
	}
	return l.acquireLocal(keys)
}

func lockKeys(proposed []ProposedAppointment) []string {
	seen := make(map[string]bool, len(proposed))
	for _, p := range proposed {
		key := "booklock:" + p.StaffID.String() + ":" + p.Start.Format("2006-01-02")
		seen[key] = true
	}
	keys := make([]string, 0, len(seen))
	for key := range seen {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (l *BookingLock) acquireRedis(ctx context.Context, keys []string) (func(), error) {
	token := uuid.NewString()
	acquired := make([]string, 0, len(keys))
	release := func() {
		ctx := context.Background()
		for _, key := range acquired {
			l.store.Eval(ctx, unlockScript, []string{key}, token)
		}
	}

	for _, key := range keys {
		ok, err := l.store.SetNX(ctx, key, token, lockTTL).Result()
		if err != nil {
			release()
			return nil, err
		}
		if !ok {
			release()
			return nil, ErrSlotContended
		}
		acquired = append(acquired, key)
	}
	return release, nil
}

func (l *BookingLock) acquireLocal(keys []string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, key := range keys {
		if l.held[key] {
			return nil, ErrSlotContended
		}
	}
	for _, key := range keys {
		l.held[key] = true
	}

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		for _, key := range keys {
			delete(l.held, key)
		}
	}, nil
}
