// Package monitor hosts the background occupancy evaluator.  It runs on
// a fixed cadence over every active reservation, expires overdue ones,
// escalates absent occupants from normal to warning to
// occupied-violation, and sends pre-deadline reminders.  The tick never
// blocks user-facing requests; all mutations go through the store's
// serialized operations.
package monitor

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/iliyamo/library-seat-reservation/internal/clock"
	"github.com/iliyamo/library-seat-reservation/internal/config"
	"github.com/iliyamo/library-seat-reservation/internal/event"
	"github.com/iliyamo/library-seat-reservation/internal/model"
	"github.com/iliyamo/library-seat-reservation/internal/store"
)

// reminderLead is how far before a deadline the reminder alert fires.
const reminderLead = 5 * time.Minute

// Monitor periodically evaluates active reservations.  A new tick is
// suppressed while the previous one is still walking the snapshot, so
// away minutes are never double-counted.
type Monitor struct {
	store    *store.Store
	settings config.Settings
	events   event.Sink
	interval time.Duration
	now      func() time.Time

	tickMu sync.Mutex
}

// Option customizes a Monitor.
type Option func(*Monitor)

// WithClock substitutes the time source for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) { m.now = now }
}

// New returns a monitor over the given store.  interval is the tick
// cadence; sink may be nil to disable reminder/warning events.
func New(st *store.Store, settings config.Settings, sink event.Sink, interval time.Duration, opts ...Option) *Monitor {
	m := &Monitor{
		store:    st,
		settings: settings,
		events:   sink,
		interval: interval,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run drives the tick loop until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	log.Printf("monitor: started, interval=%s", m.interval)
	for {
		select {
		case <-ctx.Done():
			log.Printf("monitor: stopped")
			return
		case <-ticker.C:
			m.Tick()
		}
	}
}

// CheckNow triggers an immediate evaluation pass.  Elevated roles only.
func (m *Monitor) CheckNow(actor store.Actor) error {
	if !actor.Elevated() {
		return store.ErrAuthorizationDenied
	}
	m.Tick()
	return nil
}

// Tick walks a snapshot of the active reservations.  If the previous
// tick is still running the new one is skipped entirely; a half-applied
// pass risks double-incrementing away counters.  Per-reservation errors
// are logged and the reservation is retried on the next tick.
func (m *Monitor) Tick() {
	if !m.tickMu.TryLock() {
		log.Printf("monitor: previous tick still running, skipping")
		return
	}
	defer m.tickMu.Unlock()

	now := m.now()
	entries := m.store.ActiveSnapshot()
	for _, entry := range entries {
		if err := m.evaluate(entry, now); err != nil {
			log.Printf("monitor: reservation %s: %v", entry.Reservation.ID, err)
		}
	}
}

func (m *Monitor) evaluate(entry store.ActiveEntry, now time.Time) error {
	res := entry.Reservation
	switch res.State {
	case model.StatePendingCheckIn, model.StateAway:
		if clock.Overdue(now, res.Deadline) {
			_, err := m.store.ExpireIfOverdue(res.ID)
			return err
		}
		m.maybeRemind(res, now)
		return nil
	case model.StateCheckedIn:
		return m.evaluateOccupancy(res, entry.Occupancy, now)
	default:
		return nil
	}
}

// evaluateOccupancy applies the escalation policy to a checked-in
// reservation: normal -> warning at the warning threshold, warning ->
// occupied-violation (auto checkout) at the occupancy threshold.
func (m *Monitor) evaluateOccupancy(res model.Reservation, rec *model.OccupancyRecord, now time.Time) error {
	if rec == nil {
		// Record missing; the store recreates it on the next presence
		// signal, nothing to evaluate yet.
		return nil
	}
	awayMinutes := clock.MinutesSince(now, rec.LastDetectedTime)

	switch {
	case awayMinutes >= m.settings.OccupancyThreshold:
		_, err := m.store.ExpireOccupancy(res.ID)
		return err
	case awayMinutes >= m.settings.OccupancyWarningTime:
		updated, escalated := m.store.EscalateWarning(res.ID, awayMinutes)
		if escalated {
			m.warn(res, updated, awayMinutes)
		} else {
			m.store.RecordAway(res.ID, awayMinutes)
		}
		return nil
	default:
		m.store.RecordAway(res.ID, awayMinutes)
		return nil
	}
}

func (m *Monitor) warn(res model.Reservation, rec model.OccupancyRecord, awayMinutes int) {
	log.Printf("monitor: occupancy warning for reservation %s (away %dm)", res.ID, awayMinutes)
	m.publish(event.Event{
		Kind:   event.KindAlert,
		UserID: res.UserID,
		Queue:  event.QueueAlerts,
		Payload: event.Alert{
			Type:          "occupancy_warning",
			ReservationID: res.ID,
			SeatNo:        res.SeatNo,
			AwayMinutes:   awayMinutes,
			Threshold:     m.settings.OccupancyThreshold,
			Message: fmt.Sprintf(
				"You have been away from seat %s for %d minutes; after %d minutes the seat is released automatically.",
				res.SeatNo, awayMinutes, m.settings.OccupancyThreshold),
		},
	})
	m.publish(event.Event{
		Kind:   event.KindNotification,
		UserID: res.UserID,
		Queue:  event.QueueNotifications,
		Payload: event.Notification{
			Title:   "Occupancy warning",
			Content: fmt.Sprintf("Please return to seat %s soon or it will be released.", res.SeatNo),
			Level:   "warning",
		},
	})
}

// maybeRemind alerts the owner shortly before a check-in or return
// deadline passes.
func (m *Monitor) maybeRemind(res model.Reservation, now time.Time) {
	if res.Deadline == nil {
		return
	}
	remaining := res.Deadline.Sub(now)
	if remaining <= 0 || remaining > reminderLead {
		return
	}
	msg := "Your reservation expires in a few minutes; please check in soon."
	if res.State == model.StateAway {
		msg = "Your grace period expires in a few minutes; please return soon."
	}
	m.publish(event.Event{
		Kind:   event.KindAlert,
		UserID: res.UserID,
		Queue:  event.QueueAlerts,
		Payload: event.Alert{
			Type:          "deadline_reminder",
			ReservationID: res.ID,
			SeatNo:        res.SeatNo,
			Message:       msg,
		},
	})
}

// ClosingSweep ends every active reservation at closing time: pending
// ones are cancelled, occupied ones completed without penalty.
func (m *Monitor) ClosingSweep() {
	sys := store.System()
	for _, entry := range m.store.ActiveSnapshot() {
		var err error
		switch entry.Reservation.State {
		case model.StateCheckedIn, model.StateAway:
			err = m.store.ManualCheckout(sys, entry.Reservation.ID, "closing_time")
		default:
			err = m.store.Release(sys, entry.Reservation.ID)
		}
		if err != nil {
			log.Printf("monitor: closing sweep, reservation %s: %v", entry.Reservation.ID, err)
		}
	}
}

// Monitoring returns the occupancy records of active reservations for
// the administrative dashboard.  Elevated roles only.
func (m *Monitor) Monitoring(actor store.Actor) ([]store.ActiveEntry, error) {
	if !actor.Elevated() {
		return nil, store.ErrAuthorizationDenied
	}
	return m.store.ActiveSnapshot(), nil
}

func (m *Monitor) publish(ev event.Event) {
	if m.events != nil {
		m.events.Publish(ev)
	}
}
