package monitor_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/library-seat-reservation/internal/config"
	"github.com/iliyamo/library-seat-reservation/internal/event"
	"github.com/iliyamo/library-seat-reservation/internal/model"
	"github.com/iliyamo/library-seat-reservation/internal/monitor"
	"github.com/iliyamo/library-seat-reservation/internal/store"
)

var slotStart = time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time { c.mu.Lock(); defer c.mu.Unlock(); return c.t }
func (c *fakeClock) Set(t time.Time) { c.mu.Lock(); c.t = t; c.mu.Unlock() }

// recordingSink captures everything published for assertions.
type recordingSink struct {
	mu  sync.Mutex
	evs []event.Event
}

func (r *recordingSink) Publish(ev event.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evs = append(r.evs, ev)
}

func (r *recordingSink) byKind(k event.Kind) []event.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []event.Event
	for _, ev := range r.evs {
		if ev.Kind == k {
			out = append(out, ev)
		}
	}
	return out
}

var student = store.Actor{UserID: 21, Role: store.RoleStudent}

func setup(t *testing.T) (*store.Store, *monitor.Monitor, *fakeClock, *recordingSink) {
	t.Helper()
	clk := &fakeClock{t: slotStart}
	sink := &recordingSink{}
	st := store.New(config.DefaultSettings(), store.NewMemoryLedger(), sink, store.WithClock(clk.Now))
	st.AddSeat(model.Seat{ID: 1, SeatNo: "A-01", Area: "A"})
	mon := monitor.New(st, config.DefaultSettings(), sink, time.Second, monitor.WithClock(clk.Now))
	return st, mon, clk, sink
}

func checkedInReservation(t *testing.T, st *store.Store, clk *fakeClock) *model.Reservation {
	t.Helper()
	slot := model.Slot{Start: slotStart, End: slotStart.Add(4 * time.Hour)}
	res, err := st.Create(context.Background(), student, 1, slot)
	require.NoError(t, err)
	lat, lon := 0.0, 0.0
	require.NoError(t, st.CheckIn(student, res.ID, store.CheckInProof{Latitude: &lat, Longitude: &lon}))
	return res
}

func TestTickExpiresNoShow(t *testing.T) {
	st, mon, clk, _ := setup(t)
	slot := model.Slot{Start: slotStart, End: slotStart.Add(4 * time.Hour)}
	res, err := st.Create(context.Background(), student, 1, slot)
	require.NoError(t, err)

	clk.Set(slotStart.Add(16 * time.Minute))
	mon.Tick()

	got, _ := st.Get(res.ID)
	assert.Equal(t, model.StateViolation, got.State)
	assert.Equal(t, model.SeatAvailable, st.SeatStatuses()[1])
}

func TestTickExpiresAwayTimeout(t *testing.T) {
	st, mon, clk, _ := setup(t)
	res := checkedInReservation(t, st, clk)
	require.NoError(t, st.TemporaryLeave(student, res.ID))

	clk.Set(slotStart.Add(31 * time.Minute))
	mon.Tick()

	got, _ := st.Get(res.ID)
	assert.Equal(t, model.StateViolation, got.State)
	assert.Equal(t, model.SeatAvailable, st.SeatStatuses()[1])
}

func TestEscalationWarningThenViolation(t *testing.T) {
	st, mon, clk, sink := setup(t)
	res := checkedInReservation(t, st, clk)

	// Under the warning threshold: nothing but the away counter moves.
	clk.Set(slotStart.Add(30 * time.Minute))
	mon.Tick()
	assert.Empty(t, sink.byKind(event.KindAlert))

	// Past the warning threshold (45m): exactly one warning escalation,
	// even across repeated ticks.
	clk.Set(slotStart.Add(46 * time.Minute))
	mon.Tick()
	mon.Tick()
	warnings := 0
	for _, ev := range sink.byKind(event.KindAlert) {
		if ev.Payload.(event.Alert).Type == "occupancy_warning" {
			warnings++
		}
	}
	assert.Equal(t, 1, warnings, "warningCount increments once per escalation")

	// Past the occupancy threshold (60m): auto checkout into violation.
	clk.Set(slotStart.Add(61 * time.Minute))
	mon.Tick()
	got, _ := st.Get(res.ID)
	assert.Equal(t, model.StateViolation, got.State)
	assert.Equal(t, model.SeatAvailable, st.SeatStatuses()[1])
}

func TestPresenceSignalResetsEscalation(t *testing.T) {
	st, mon, clk, _ := setup(t)
	res := checkedInReservation(t, st, clk)

	clk.Set(slotStart.Add(46 * time.Minute))
	mon.Tick()

	require.NoError(t, st.MarkPresence(student.UserID))

	// Far past the original threshold, but presence was just confirmed.
	clk.Set(slotStart.Add(70 * time.Minute))
	mon.Tick()
	got, _ := st.Get(res.ID)
	assert.Equal(t, model.StateCheckedIn, got.State, "presence signal resets the absence clock")
}

func TestDeadlineReminder(t *testing.T) {
	st, mon, clk, sink := setup(t)
	slot := model.Slot{Start: slotStart, End: slotStart.Add(4 * time.Hour)}
	_, err := st.Create(context.Background(), student, 1, slot)
	require.NoError(t, err)

	// Deadline is slotStart+15m; at +12m the reminder window is open.
	clk.Set(slotStart.Add(12 * time.Minute))
	mon.Tick()

	var reminders []event.Alert
	for _, ev := range sink.byKind(event.KindAlert) {
		if a := ev.Payload.(event.Alert); a.Type == "deadline_reminder" {
			reminders = append(reminders, a)
		}
	}
	require.Len(t, reminders, 1)
}

func TestCheckNowRequiresElevatedRole(t *testing.T) {
	_, mon, _, _ := setup(t)

	assert.ErrorIs(t, mon.CheckNow(student), store.ErrAuthorizationDenied)
	assert.NoError(t, mon.CheckNow(store.Actor{UserID: 1, Role: store.RoleAdmin}))
}

func TestMonitoringRequiresElevatedRole(t *testing.T) {
	st, mon, clk, _ := setup(t)
	checkedInReservation(t, st, clk)

	_, err := mon.Monitoring(student)
	assert.ErrorIs(t, err, store.ErrAuthorizationDenied)

	entries, err := mon.Monitoring(store.Actor{UserID: 1, Role: store.RoleLibrarian})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].Occupancy)
	assert.Equal(t, model.OccupancyNormal, entries[0].Occupancy.OccupancyStatus)
}

func TestClosingSweep(t *testing.T) {
	st, mon, clk, _ := setup(t)
	res := checkedInReservation(t, st, clk)

	mon.ClosingSweep()

	got, _ := st.Get(res.ID)
	assert.Equal(t, model.StateCompleted, got.State)
	assert.Equal(t, model.SeatAvailable, st.SeatStatuses()[1])
}
