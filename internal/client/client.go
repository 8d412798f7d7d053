// Package client implements the synchronization layer that keeps a
// connected client's view of its reservation and the seat pool
// consistent with server-authoritative truth.  Two reconciliation
// paths must agree: push (applying broadcast and private events
// incrementally) and pull (a full resync that replaces the local
// projection).  The pull path always wins over stale push state and is
// idempotent; it runs on cold start and after every reconnect.
package client

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/iliyamo/library-seat-reservation/internal/event"
	"github.com/iliyamo/library-seat-reservation/internal/model"
)

// Fetcher is the authoritative pull surface.  The reservation store
// satisfies it directly; a remote deployment would back it with the
// sync/active-reservation query.
type Fetcher interface {
	ActiveByUser(userID uint64) *model.Reservation
	SeatStatuses() map[uint64]model.SeatStatus
}

// Source hands out event subscriptions.  The broadcaster satisfies it.
type Source interface {
	Subscribe(userID uint64, topics ...string) *event.Subscriber
	Unsubscribe(*event.Subscriber)
}

// Syncer maintains the local cached projection for one user.  The
// cache is never a source of truth: Resync overwrites it wholesale
// from the Fetcher, and a pull that finds no active reservation clears
// it.
type Syncer struct {
	userID  uint64
	fetcher Fetcher
	source  Source

	mu          sync.Mutex
	reservation *model.Reservation
	seats       map[uint64]model.SeatStatus
	connected   bool
}

// New returns a syncer with an empty projection.
func New(userID uint64, fetcher Fetcher, source Source) *Syncer {
	return &Syncer{
		userID:  userID,
		fetcher: fetcher,
		source:  source,
		seats:   make(map[uint64]model.SeatStatus),
	}
}

// Resync is the pull path: it fetches authoritative state and fully
// replaces the local projection.  Calling it any number of times, with
// or without interleaved pushes, converges to the same state.
func (c *Syncer) Resync() {
	res := c.fetcher.ActiveByUser(c.userID)
	seats := c.fetcher.SeatStatuses()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.reservation = res
	c.seats = seats
}

// Apply is the push path: it folds one received event into the local
// projection.  Events for other users or unknown kinds are ignored.
func (c *Syncer) Apply(ev event.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch payload := ev.Payload.(type) {
	case event.SeatUpdate:
		c.seats[payload.SeatID] = payload.Status
	case event.ReservationUpdate:
		if ev.UserID != c.userID || payload.Reservation == nil {
			return
		}
		if payload.Reservation.State.Active() {
			c.reservation = payload.Reservation.Clone()
			return
		}
		// Our reservation reached a terminal state; drop it from the
		// cache.
		if c.reservation != nil && c.reservation.ID == payload.Reservation.ID {
			c.reservation = nil
		}
	}
}

// Reservation returns the cached reservation, nil when none.
func (c *Syncer) Reservation() *model.Reservation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reservation.Clone()
}

// Seats returns a copy of the cached seat status projection.
func (c *Syncer) Seats() map[uint64]model.SeatStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[uint64]model.SeatStatus, len(c.seats))
	for id, st := range c.seats {
		out[id] = st
	}
	return out
}

// Connected reports whether the push subscription is currently live.
// While false the client should show a transient "reconnecting"
// indicator; no error is surfaced to the user.
func (c *Syncer) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *Syncer) setConnected(v bool) {
	c.mu.Lock()
	c.connected = v
	c.mu.Unlock()
}

// Run subscribes, resyncs, then applies pushes until ctx is cancelled.
// If the subscription channel closes (server shutdown, dropped client)
// it reconnects with exponential backoff and resyncs before trusting
// further pushes.  Cancelling ctx tears down the subscription without
// altering server-side state.
func (c *Syncer) Run(ctx context.Context) {
	backoff := time.Second
	for {
		sub := c.source.Subscribe(c.userID, event.TopicSeats, event.TopicStats, event.TopicUserSeatStatus)
		c.Resync()
		c.setConnected(true)
		backoff = time.Second

		if done := c.consume(ctx, sub); done {
			c.source.Unsubscribe(sub)
			c.setConnected(false)
			return
		}

		// Subscription lost; back off before reconnecting.
		c.setConnected(false)
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		if backoff < 30*time.Second {
			backoff *= 2
		}
		log.Printf("client: subscription lost for user %d, reconnecting", c.userID)
	}
}

// consume drains the subscription.  It returns true when ctx ended and
// false when the channel closed under us.
func (c *Syncer) consume(ctx context.Context, sub *event.Subscriber) bool {
	for {
		select {
		case <-ctx.Done():
			return true
		case ev, ok := <-sub.C:
			if !ok {
				return false
			}
			c.Apply(ev)
		}
	}
}
