package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// seatLockTTL bounds how long a booking attempt may hold the
// distributed seat lock; a crashed instance releases its locks within
// this window.
const seatLockTTL = 10 * time.Second

// SeatLocker serializes reservation creation for one seat across
// instances with a Redis SetNX lock.  A nil client disables the lock;
// the store mutex alone then covers single-instance deployments.
type SeatLocker struct {
	rdb *redis.Client
}

// NewSeatLocker wraps the given client; rdb may be nil.
func NewSeatLocker(rdb *redis.Client) *SeatLocker {
	return &SeatLocker{rdb: rdb}
}

// Acquire takes the per-seat lock and returns a release func.  It
// returns ErrSeatUnavailable when another booking attempt holds the
// lock, so concurrent creates for the same seat resolve to exactly one
// winner.
func (l *SeatLocker) Acquire(ctx context.Context, seatID, userID uint64) (func(), error) {
	if l == nil || l.rdb == nil {
		return func() {}, nil
	}
	key := fmt.Sprintf("lock:seat:%d", seatID)
	ok, err := l.rdb.SetNX(ctx, key, fmt.Sprintf("%d", userID), seatLockTTL).Result()
	if err != nil {
		// Redis trouble must not take booking down; fall back to the
		// store mutex.
		return func() {}, nil
	}
	if !ok {
		return nil, ErrSeatUnavailable
	}
	return func() { l.rdb.Del(context.Background(), key) }, nil
}
