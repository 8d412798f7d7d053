package store_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/library-seat-reservation/internal/config"
	"github.com/iliyamo/library-seat-reservation/internal/model"
	"github.com/iliyamo/library-seat-reservation/internal/store"
)

var slotStart = time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

func slot() model.Slot {
	return model.Slot{Start: slotStart, End: slotStart.Add(4 * time.Hour)}
}

// fakeClock lets tests drive the store's notion of now.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

func geoProof() store.CheckInProof {
	lat, lon := 0.0001, 0.0001 // ~15m from the configured library origin
	return store.CheckInProof{Latitude: &lat, Longitude: &lon}
}

func newStore(t *testing.T) (*store.Store, *fakeClock, *store.MemoryLedger) {
	t.Helper()
	clk := &fakeClock{t: slotStart.Add(-30 * time.Minute)}
	ledger := store.NewMemoryLedger()
	st := store.New(config.DefaultSettings(), ledger, nil, store.WithClock(clk.Now))
	st.AddSeat(model.Seat{ID: 1, SeatNo: "A-01", Area: "A"})
	st.AddSeat(model.Seat{ID: 2, SeatNo: "A-02", Area: "A"})
	return st, clk, ledger
}

var (
	alice = store.Actor{UserID: 11, Role: store.RoleStudent}
	bob   = store.Actor{UserID: 12, Role: store.RoleStudent}
	staff = store.Actor{UserID: 99, Role: store.RoleLibrarian}
)

func TestCreateHoldsSeatAndSetsDeadline(t *testing.T) {
	st, _, _ := newStore(t)

	res, err := st.Create(context.Background(), alice, 1, slot())
	require.NoError(t, err)

	assert.Equal(t, model.StatePendingCheckIn, res.State)
	require.NotNil(t, res.Deadline)
	assert.Equal(t, slotStart.Add(15*time.Minute), *res.Deadline)

	statuses := st.SeatStatuses()
	assert.Equal(t, model.SeatOccupied, statuses[1])
}

func TestCreateConflicts(t *testing.T) {
	st, _, _ := newStore(t)
	ctx := context.Background()

	_, err := st.Create(ctx, alice, 1, slot())
	require.NoError(t, err)

	_, err = st.Create(ctx, bob, 1, slot())
	assert.ErrorIs(t, err, store.ErrSeatUnavailable, "one active reservation per seat")

	_, err = st.Create(ctx, alice, 2, slot())
	assert.ErrorIs(t, err, store.ErrUserAlreadyActive, "one active reservation per user")
}

func TestCreateConcurrentSameSeat(t *testing.T) {
	st, _, _ := newStore(t)
	ctx := context.Background()

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			actor := store.Actor{UserID: uint64(100 + i), Role: store.RoleStudent}
			_, errs[i] = st.Create(ctx, actor, 1, slot())
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, store.ErrSeatUnavailable)
		}
	}
	assert.Equal(t, 1, wins, "exactly one concurrent create may win")
}

func TestCreateRejectsLowCredit(t *testing.T) {
	st, _, ledger := newStore(t)

	ledger.Adjust(alice.UserID, -50, "test setup") // 100 -> 50, below min 60
	_, err := st.Create(context.Background(), alice, 1, slot())
	assert.ErrorIs(t, err, store.ErrCreditTooLow)
}

func TestCheckInWindow(t *testing.T) {
	st, clk, _ := newStore(t)
	res, err := st.Create(context.Background(), alice, 1, slot())
	require.NoError(t, err)

	clk.Set(slotStart.Add(-20 * time.Minute))
	assert.ErrorIs(t, st.CheckIn(alice, res.ID, geoProof()), store.ErrWindowExpired)

	clk.Set(slotStart.Add(10 * time.Minute))
	require.NoError(t, st.CheckIn(alice, res.ID, geoProof()))

	got, err := st.Get(res.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StateCheckedIn, got.State)
	assert.Nil(t, got.Deadline)
}

func TestCheckInProofValidation(t *testing.T) {
	st, clk, _ := newStore(t)
	res, err := st.Create(context.Background(), alice, 1, slot())
	require.NoError(t, err)
	clk.Set(slotStart)

	assert.ErrorIs(t, st.CheckIn(alice, res.ID, store.CheckInProof{}),
		store.ErrProofInvalid, "no proof supplied")

	farLat, farLon := 10.0, 10.0
	outOfRange := store.CheckInProof{Latitude: &farLat, Longitude: &farLon}
	assert.ErrorIs(t, st.CheckIn(alice, res.ID, outOfRange), store.ErrProofInvalid)

	assert.ErrorIs(t, st.CheckIn(alice, res.ID, store.CheckInProof{QRToken: "junk"}),
		store.ErrProofInvalid, "no QR verifier installed")
}

func TestCheckInTwiceFails(t *testing.T) {
	st, clk, _ := newStore(t)
	res, _ := st.Create(context.Background(), alice, 1, slot())
	clk.Set(slotStart)

	require.NoError(t, st.CheckIn(alice, res.ID, geoProof()))
	assert.ErrorIs(t, st.CheckIn(alice, res.ID, geoProof()), store.ErrInvalidState)
}

func TestTemporaryLeaveAndReturn(t *testing.T) {
	st, clk, _ := newStore(t)
	res, _ := st.Create(context.Background(), alice, 1, slot())
	clk.Set(slotStart)
	require.NoError(t, st.CheckIn(alice, res.ID, geoProof()))

	assert.ErrorIs(t, st.TemporaryLeave(bob, res.ID), store.ErrAuthorizationDenied)
	require.NoError(t, st.TemporaryLeave(alice, res.ID))

	got, _ := st.Get(res.ID)
	assert.Equal(t, model.StateAway, got.State)
	require.NotNil(t, got.Deadline)
	assert.Equal(t, clk.Now().Add(30*time.Minute), *got.Deadline)

	// Returning within the grace window checks the user back in.
	clk.Set(slotStart.Add(20 * time.Minute))
	require.NoError(t, st.CheckIn(alice, res.ID, geoProof()))
	got, _ = st.Get(res.ID)
	assert.Equal(t, model.StateCheckedIn, got.State)
}

func TestAwayGraceExpiry(t *testing.T) {
	st, clk, _ := newStore(t)
	res, _ := st.Create(context.Background(), alice, 1, slot())
	clk.Set(slotStart)
	require.NoError(t, st.CheckIn(alice, res.ID, geoProof()))
	require.NoError(t, st.TemporaryLeave(alice, res.ID))

	// Grace window is 30 minutes; the tick at +31 expires it.
	clk.Set(slotStart.Add(31 * time.Minute))
	changed, err := st.ExpireIfOverdue(res.ID)
	require.NoError(t, err)
	assert.True(t, changed)

	got, _ := st.Get(res.ID)
	assert.Equal(t, model.StateViolation, got.State)
	assert.Equal(t, model.SeatAvailable, st.SeatStatuses()[1], "seat freed on violation")

	// Returning after the deadline would have failed anyway.
	assert.ErrorIs(t, st.CheckIn(alice, res.ID, geoProof()), store.ErrInvalidState)
}

func TestExpireIfOverdueIdempotent(t *testing.T) {
	st, clk, ledger := newStore(t)
	res, _ := st.Create(context.Background(), alice, 1, slot())

	clk.Set(slotStart.Add(16 * time.Minute)) // past the check-in deadline
	changed, err := st.ExpireIfOverdue(res.ID)
	require.NoError(t, err)
	assert.True(t, changed)
	after := ledger.Score(alice.UserID)
	assert.Equal(t, 90, after, "no-show deducts 10 credit")

	changed, err = st.ExpireIfOverdue(res.ID)
	require.NoError(t, err)
	assert.False(t, changed, "second expiry is a no-op")
	assert.Equal(t, after, ledger.Score(alice.UserID), "no double penalty")
}

func TestExpireNotYetDue(t *testing.T) {
	st, clk, _ := newStore(t)
	res, _ := st.Create(context.Background(), alice, 1, slot())

	clk.Set(slotStart.Add(5 * time.Minute))
	changed, err := st.ExpireIfOverdue(res.ID)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestReleaseBeforeCheckInCancels(t *testing.T) {
	st, _, ledger := newStore(t)
	res, _ := st.Create(context.Background(), alice, 1, slot())

	require.NoError(t, st.Release(alice, res.ID))

	got, _ := st.Get(res.ID)
	assert.Equal(t, model.StateCancelled, got.State)
	assert.Equal(t, model.SeatAvailable, st.SeatStatuses()[1])
	assert.Equal(t, 100, ledger.Score(alice.UserID), "no reward for a cancel")
}

func TestReleaseAfterCheckInCompletes(t *testing.T) {
	st, clk, ledger := newStore(t)
	res, _ := st.Create(context.Background(), alice, 1, slot())
	clk.Set(slotStart)
	require.NoError(t, st.CheckIn(alice, res.ID, geoProof()))

	require.NoError(t, st.Release(alice, res.ID))

	got, _ := st.Get(res.ID)
	assert.Equal(t, model.StateCompleted, got.State)
	assert.Equal(t, 100, ledger.Score(alice.UserID), "mid-session release earns no reward")

	assert.ErrorIs(t, st.Release(alice, res.ID), store.ErrInvalidState, "terminal state")
}

func TestReleaseRewardOnlyNearSlotEnd(t *testing.T) {
	st, clk, ledger := newStore(t)
	ledger.Adjust(alice.UserID, -20, "test setup") // 80, leaves headroom to observe rewards

	res, err := st.Create(context.Background(), alice, 1, slot())
	require.NoError(t, err)
	clk.Set(slotStart)
	require.NoError(t, st.CheckIn(alice, res.ID, geoProof()))

	// Releasing an hour into a four-hour slot completes without the
	// reward; the buffer is 15 minutes.
	clk.Set(slotStart.Add(time.Hour))
	require.NoError(t, st.Release(alice, res.ID))
	assert.Equal(t, 80, ledger.Score(alice.UserID), "early release, no reward")

	// A session released inside the buffer before slot end earns it.
	slot2 := model.Slot{Start: slotStart.Add(time.Hour), End: slotStart.Add(2 * time.Hour)}
	res2, err := st.Create(context.Background(), alice, 1, slot2)
	require.NoError(t, err)
	require.NoError(t, st.CheckIn(alice, res2.ID, geoProof()))

	clk.Set(slot2.End.Add(-10 * time.Minute))
	require.NoError(t, st.Release(alice, res2.ID))
	assert.Equal(t, 82, ledger.Score(alice.UserID), "release within the buffer rewards credit")
}

func TestConcurrentCheckInAndExpire(t *testing.T) {
	st, clk, _ := newStore(t)
	res, err := st.Create(context.Background(), alice, 1, slot())
	require.NoError(t, err)
	clk.Set(slotStart.Add(10 * time.Minute)) // inside the check-in window

	start := make(chan struct{})
	var wg sync.WaitGroup
	var checkInErr error
	var expired bool
	wg.Add(2)
	go func() {
		defer wg.Done()
		<-start
		checkInErr = st.CheckIn(alice, res.ID, geoProof())
	}()
	go func() {
		defer wg.Done()
		<-start
		clk.Set(slotStart.Add(16 * time.Minute)) // past the deadline
		expired, _ = st.ExpireIfOverdue(res.ID)
	}()
	close(start)
	wg.Wait()

	// Whichever reached the store first wins; the loser fails cleanly
	// and the reservation never lands in a mixed state.
	got, err := st.Get(res.ID)
	require.NoError(t, err)
	switch got.State {
	case model.StateCheckedIn:
		require.NoError(t, checkInErr)
		assert.False(t, expired, "expiry after a successful check-in is a no-op")
	case model.StateViolation:
		assert.True(t, expired)
		assert.Error(t, checkInErr)
	default:
		t.Fatalf("unexpected state %s", got.State)
	}
}

func TestReleaseAuthorization(t *testing.T) {
	st, _, _ := newStore(t)
	res, _ := st.Create(context.Background(), alice, 1, slot())

	assert.ErrorIs(t, st.Release(bob, res.ID), store.ErrAuthorizationDenied)
	require.NoError(t, st.Release(staff, res.ID), "elevated roles may release any reservation")
}

func TestManualCheckout(t *testing.T) {
	st, clk, _ := newStore(t)
	res, _ := st.Create(context.Background(), alice, 1, slot())
	clk.Set(slotStart)
	require.NoError(t, st.CheckIn(alice, res.ID, geoProof()))

	assert.ErrorIs(t, st.ManualCheckout(alice, res.ID, "noise complaint"),
		store.ErrAuthorizationDenied)
	require.NoError(t, st.ManualCheckout(staff, res.ID, "noise complaint"))

	got, _ := st.Get(res.ID)
	assert.Equal(t, model.StateCompleted, got.State)
	assert.Equal(t, model.SeatAvailable, st.SeatStatuses()[1])
}

func TestResolveViolation(t *testing.T) {
	st, clk, _ := newStore(t)
	res, _ := st.Create(context.Background(), alice, 1, slot())
	clk.Set(slotStart.Add(16 * time.Minute))
	_, err := st.ExpireIfOverdue(res.ID)
	require.NoError(t, err)

	require.NoError(t, st.ResolveViolation(res.ID))
	got, _ := st.Get(res.ID)
	assert.Equal(t, model.StateCompleted, got.State)

	assert.ErrorIs(t, st.ResolveViolation(res.ID), store.ErrInvalidState,
		"only a violation can be resolved")
}

func TestSeatMaintenance(t *testing.T) {
	st, _, _ := newStore(t)

	assert.ErrorIs(t, st.SetSeatStatus(alice, 1, model.SeatMaintenance),
		store.ErrAuthorizationDenied)
	assert.ErrorIs(t, st.SetSeatStatus(staff, 1, model.SeatOccupied),
		store.ErrInvalidState, "occupied is a projection, never set directly")

	require.NoError(t, st.SetSeatStatus(staff, 1, model.SeatMaintenance))
	_, err := st.Create(context.Background(), alice, 1, slot())
	assert.ErrorIs(t, err, store.ErrSeatUnavailable)

	res, err := st.Create(context.Background(), alice, 2, slot())
	require.NoError(t, err)
	assert.ErrorIs(t, st.SetSeatStatus(staff, 2, model.SeatMaintenance),
		store.ErrSeatUnavailable, "cannot edit a seat with an active reservation")
	_ = res
}

func TestActiveByUserAndHistory(t *testing.T) {
	st, _, _ := newStore(t)

	assert.Nil(t, st.ActiveByUser(alice.UserID))

	res, _ := st.Create(context.Background(), alice, 1, slot())
	active := st.ActiveByUser(alice.UserID)
	require.NotNil(t, active)
	assert.Equal(t, res.ID, active.ID)

	require.NoError(t, st.Release(alice, res.ID))
	assert.Nil(t, st.ActiveByUser(alice.UserID))
	assert.Len(t, st.History(alice.UserID), 1)
}
