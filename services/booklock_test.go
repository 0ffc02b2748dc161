package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLockStore implements the lock's redis surface in memory so the
// token ownership protocol can be exercised without a server.
type fakeLockStore struct {
	mu     sync.Mutex
	values map[string]string
}

func newFakeLockStore() *fakeLockStore {
	return &fakeLockStore{values: make(map[string]string)}
}

func (f *fakeLockStore) SetNX(_ context.Context, key string, value interface{}, _ time.Duration) *redis.BoolCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, held := f.values[key]; held {
		return redis.NewBoolResult(false, nil)
	}
	f.values[key] = value.(string)
	return redis.NewBoolResult(true, nil)
}

func (f *fakeLockStore) Eval(_ context.Context, _ string, keys []string, args ...interface{}) *redis.Cmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.values[keys[0]] == args[0].(string) {
		delete(f.values, keys[0])
		return redis.NewCmdResult(int64(1), nil)
	}
	return redis.NewCmdResult(int64(0), nil)
}

// expireKey simulates the TTL elapsing on a held key.
func (f *fakeLockStore) expireKey(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.values, key)
}

func (f *fakeLockStore) holder(key string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values[key]
}

func TestLockKeysDedupeAndSort(t *testing.T) {
	staffA := uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000000")
	staffB := uuid.MustParse("bbbbbbbb-0000-0000-0000-000000000000")
	day := time.Date(2026, 9, 7, 10, 0, 0, 0, time.Local)

	keys := lockKeys([]ProposedAppointment{
		{StaffID: staffB, Start: day},
		{StaffID: staffA, Start: day},
		{StaffID: staffA, Start: day.Add(2 * time.Hour)}, // same staff, same day
	})

	assert.Equal(t, []string{
		"booklock:" + staffA.String() + ":2026-09-07",
		"booklock:" + staffB.String() + ":2026-09-07",
	}, keys)
}

func TestBookingLockLocal(t *testing.T) {
	lock := NewBookingLock(nil)
	ctx := context.Background()
	staff := uuid.New()
	start := time.Date(2026, 9, 7, 10, 0, 0, 0, time.Local)
	proposed := []ProposedAppointment{{StaffID: staff, Start: start}}

	release, err := lock.Acquire(ctx, proposed)
	require.NoError(t, err)

	// Same staff/day is contended, even at a different time.
	_, err = lock.Acquire(ctx, []ProposedAppointment{
		{StaffID: staff, Start: start.Add(3 * time.Hour)},
	})
	assert.ErrorIs(t, err, ErrSlotContended)

	// A different day or a different staff member is independent.
	otherRelease, err := lock.Acquire(ctx, []ProposedAppointment{
		{StaffID: staff, Start: start.AddDate(0, 0, 1)},
		{StaffID: uuid.New(), Start: start},
	})
	require.NoError(t, err)
	otherRelease()

	release()
	release2, err := lock.Acquire(ctx, proposed)
	require.NoError(t, err)
	release2()
}

func TestBookingLockRedisTokenOwnership(t *testing.T) {
	store := newFakeLockStore()
	lock := &BookingLock{store: store}
	ctx := context.Background()
	staff := uuid.New()
	start := time.Date(2026, 9, 7, 10, 0, 0, 0, time.Local)
	proposed := []ProposedAppointment{{StaffID: staff, Start: start}}
	key := lockKeys(proposed)[0]

	release, err := lock.Acquire(ctx, proposed)
	require.NoError(t, err)
	firstToken := store.holder(key)
	require.NotEmpty(t, firstToken)

	// The key expires while the first holder is still mid-capture, and a
	// competitor takes the lock.
	store.expireKey(key)
	competitorRelease, err := lock.Acquire(ctx, proposed)
	require.NoError(t, err)
	competitorToken := store.holder(key)
	require.NotEqual(t, firstToken, competitorToken)

	// The stale holder's release must not remove the competitor's lock.
	release()
	assert.Equal(t, competitorToken, store.holder(key))

	competitorRelease()
	assert.Empty(t, store.holder(key))
}

func TestBookingLockRedisReleaseAndRollback(t *testing.T) {
	store := newFakeLockStore()
	lock := &BookingLock{store: store}
	ctx := context.Background()
	staffA, staffB := uuid.New(), uuid.New()
	start := time.Date(2026, 9, 7, 10, 0, 0, 0, time.Local)

	release, err := lock.Acquire(ctx, []ProposedAppointment{{StaffID: staffA, Start: start}})
	require.NoError(t, err)
	keyA := lockKeys([]ProposedAppointment{{StaffID: staffA, Start: start}})[0]
	keyB := lockKeys([]ProposedAppointment{{StaffID: staffB, Start: start}})[0]

	// A multi-key acquisition that collides on A must roll back whatever
	// it already took, and only what it took.
	_, err = lock.Acquire(ctx, []ProposedAppointment{
		{StaffID: staffA, Start: start},
		{StaffID: staffB, Start: start},
	})
	require.ErrorIs(t, err, ErrSlotContended)
	assert.Empty(t, store.holder(keyB))
	assert.NotEmpty(t, store.holder(keyA))

	release()
	assert.Empty(t, store.holder(keyA))

	release2, err := lock.Acquire(ctx, []ProposedAppointment{{StaffID: staffA, Start: start}})
	require.NoError(t, err)
	release2()
}

func TestBookingLockContendedLeavesNothingHeld(t *testing.T) {
	lock := NewBookingLock(nil)
	ctx := context.Background()
	staffA, staffB := uuid.New(), uuid.New()
	start := time.Date(2026, 9, 7, 10, 0, 0, 0, time.Local)

	releaseB, err := lock.Acquire(ctx, []ProposedAppointment{{StaffID: staffB, Start: start}})
	require.NoError(t, err)

	// A multi-staff acquisition that collides on B must not leave A held.
	_, err = lock.Acquire(ctx, []ProposedAppointment{
		{StaffID: staffA, Start: start},
		{StaffID: staffB, Start: start},
	})
	require.ErrorIs(t, err, ErrSlotContended)

	releaseA, err := lock.Acquire(ctx, []ProposedAppointment{{StaffID: staffA, Start: start}})
	require.NoError(t, err)
	releaseA()
	releaseB()
}
