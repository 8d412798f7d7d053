package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/library-seat-reservation/internal/clock"
	"github.com/iliyamo/library-seat-reservation/internal/config"
	"github.com/iliyamo/library-seat-reservation/internal/event"
	"github.com/iliyamo/library-seat-reservation/internal/model"
)

// CheckInProof carries one of the two accepted presence proofs: a QR
// token scanned at the seat, or the client's geolocation checked
// against the library geofence.
type CheckInProof struct {
	QRToken   string   `json:"qr_token,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// Store is the authoritative, serialized owner of seats, reservations
// and occupancy records.  Every operation runs under the store mutex so
// check-then-mutate sequences are single steps: concurrent check-in and
// deadline expiry on the same reservation cannot both succeed, and
// concurrent creates for one seat resolve to exactly one winner.
//
// Seat status is a projection of reservation state; nothing sets a seat
// occupied except an active reservation.  Committed transitions emit
// events after the mutation; publishing is non-blocking and can never
// roll back or delay a transition.
type Store struct {
	mu           sync.Mutex
	seats        map[uint64]*model.Seat
	reservations map[uuid.UUID]*model.Reservation
	activeBySeat map[uint64]uuid.UUID
	activeByUser map[uint64]uuid.UUID
	occupancy    map[uuid.UUID]*model.OccupancyRecord

	settings config.Settings
	credit   CreditLedger
	events   event.Sink
	locker   *SeatLocker
	verifyQR func(token string, seatID uint64) error
	now      func() time.Time
}

// Option customizes a Store at construction time.
type Option func(*Store)

// WithClock substitutes the time source, used by tests to drive
// deadlines deterministically.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithSeatLocker installs the distributed per-seat booking lock.
func WithSeatLocker(l *SeatLocker) Option {
	return func(s *Store) { s.locker = l }
}

// WithQRVerifier installs the QR proof validator.  Without one, QR
// check-ins fail ErrProofInvalid and only geolocation proofs work.
func WithQRVerifier(verify func(token string, seatID uint64) error) Option {
	return func(s *Store) { s.verifyQR = verify }
}

// New returns an empty store.  sink may be nil to disable event
// emission (tests).
func New(settings config.Settings, credit CreditLedger, sink event.Sink, opts ...Option) *Store {
	s := &Store{
		seats:        make(map[uint64]*model.Seat),
		reservations: make(map[uuid.UUID]*model.Reservation),
		activeBySeat: make(map[uint64]uuid.UUID),
		activeByUser: make(map[uint64]uuid.UUID),
		occupancy:    make(map[uuid.UUID]*model.OccupancyRecord),
		settings:     settings,
		credit:       credit,
		events:       sink,
		now:          func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddSeat registers a seat in the pool.  New seats start available
// unless a status is already set.
func (s *Store) AddSeat(seat model.Seat) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seat.Status == "" {
		seat.Status = model.SeatAvailable
	}
	seat.UpdatedAt = s.now()
	cp := seat
	s.seats[seat.ID] = &cp
}

// Seats returns a snapshot of the seat pool.
func (s *Store) Seats() []model.Seat {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Seat, 0, len(s.seats))
	for _, seat := range s.seats {
		out = append(out, *seat)
	}
	return out
}

// SetSeatStatus toggles a seat between available and maintenance.
// Elevated roles only.  Occupied is a projection and cannot be set
// directly; a seat with an active reservation cannot be edited.
func (s *Store) SetSeatStatus(actor Actor, seatID uint64, status model.SeatStatus) error {
	if !actor.Elevated() {
		return ErrAuthorizationDenied
	}
	if status == model.SeatOccupied {
		return ErrInvalidState
	}
	s.mu.Lock()
	seat, ok := s.seats[seatID]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	if _, active := s.activeBySeat[seatID]; active {
		s.mu.Unlock()
		return ErrSeatUnavailable
	}
	seat.Status = status
	seat.UpdatedAt = s.now()
	evs := []event.Event{s.seatEventLocked(seat), s.statsEventLocked()}
	s.mu.Unlock()

	s.emit(evs)
	return nil
}

// Create books a seat for the given slot.  The whole check-then-create
// sequence is one serialized step under the seat lock and store mutex,
// so concurrent creates for the same seat yield exactly one winner; the
// loser fails ErrSeatUnavailable.  On success the reservation starts in
// pending-checkin with an absolute check-in deadline and the seat is
// soft-held as occupied.
func (s *Store) Create(ctx context.Context, actor Actor, seatID uint64, slot model.Slot) (*model.Reservation, error) {
	release, err := s.locker.Acquire(ctx, seatID, actor.UserID)
	if err != nil {
		return nil, err
	}
	defer release()

	if s.credit.Score(actor.UserID) < s.settings.MinCreditScore {
		return nil, ErrCreditTooLow
	}

	s.mu.Lock()
	seat, ok := s.seats[seatID]
	if !ok {
		s.mu.Unlock()
		return nil, ErrNotFound
	}
	if seat.Status != model.SeatAvailable {
		s.mu.Unlock()
		return nil, ErrSeatUnavailable
	}
	if s.seatHasOverlapLocked(seatID, slot) {
		s.mu.Unlock()
		return nil, ErrSeatUnavailable
	}
	if _, active := s.activeByUser[actor.UserID]; active {
		s.mu.Unlock()
		return nil, ErrUserAlreadyActive
	}

	now := s.now()
	deadline := clock.CheckInDeadline(slot.Start, s.settings.CheckinAfterWindow)
	res := &model.Reservation{
		ID:        uuid.New(),
		UserID:    actor.UserID,
		SeatID:    seatID,
		SeatNo:    seat.SeatNo,
		Slot:      slot,
		StartTime: slot.Start,
		Deadline:  &deadline,
		State:     model.StatePendingCheckIn,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.reservations[res.ID] = res
	s.activeBySeat[seatID] = res.ID
	s.activeByUser[actor.UserID] = res.ID
	seat.Status = model.SeatOccupied
	seat.UpdatedAt = now

	evs := []event.Event{
		s.reservationEventLocked(res, "reservation_success", ""),
		s.notifyEvent(res.UserID, "Reservation confirmed",
			fmt.Sprintf("Seat %s is held for you; please check in before %s.",
				seat.SeatNo, deadline.Format("15:04")), "success"),
		s.seatEventLocked(seat),
		s.userSeatEventLocked(res.UserID),
		s.statsEventLocked(),
	}
	out := res.Clone()
	s.mu.Unlock()

	s.emit(evs)
	return out, nil
}

// CheckIn validates the proof and moves a pending reservation to
// checked-in, creating its occupancy record.  It also accepts the
// return leg of a temporary leave: an away reservation checks back in
// before its grace deadline.  A reservation that is already checked in
// fails ErrInvalidState, as does any terminal state.
func (s *Store) CheckIn(actor Actor, id uuid.UUID, proof CheckInProof) error {
	s.mu.Lock()
	res, ok := s.reservations[id]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	if res.UserID != actor.UserID && !actor.Elevated() {
		s.mu.Unlock()
		return ErrAuthorizationDenied
	}

	now := s.now()
	switch res.State {
	case model.StatePendingCheckIn:
		if !clock.InCheckInWindow(now, res.StartTime,
			s.settings.CheckinBeforeWindow, s.settings.CheckinAfterWindow) {
			s.mu.Unlock()
			return ErrWindowExpired
		}
	case model.StateAway:
		if clock.Overdue(now, res.Deadline) {
			s.mu.Unlock()
			return ErrWindowExpired
		}
	default:
		s.mu.Unlock()
		return ErrInvalidState
	}

	if err := s.validateProofLocked(res.SeatID, proof); err != nil {
		s.mu.Unlock()
		return err
	}

	returning := res.State == model.StateAway
	res.State = model.StateCheckedIn
	res.Deadline = nil
	res.UpdatedAt = now

	if rec, ok := s.occupancy[id]; ok {
		rec.LastDetectedTime = now
		rec.TotalAwayMinutes = 0
		if rec.OccupancyStatus == model.OccupancyWarning {
			rec.OccupancyStatus = model.OccupancyNormal
		}
	} else {
		s.occupancy[id] = &model.OccupancyRecord{
			ReservationID:    id,
			UserID:           res.UserID,
			SeatID:           res.SeatID,
			CheckInTime:      now,
			LastDetectedTime: now,
			OccupancyStatus:  model.OccupancyNormal,
		}
	}

	evName, title, body := "checked_in", "Checked in", "You are checked in. Enjoy your study session!"
	if returning {
		evName, title, body = "returned", "Welcome back", "Your return has been recorded."
	}
	evs := []event.Event{
		s.reservationEventLocked(res, evName, ""),
		s.notifyEvent(res.UserID, title, body, "success"),
	}
	s.mu.Unlock()

	s.emit(evs)
	return nil
}

// TemporaryLeave moves a checked-in reservation to away and arms the
// grace deadline.  The occupancy record survives; its away counter is
// driven by the monitor.
func (s *Store) TemporaryLeave(actor Actor, id uuid.UUID) error {
	s.mu.Lock()
	res, ok := s.reservations[id]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	if res.UserID != actor.UserID && !actor.Elevated() {
		s.mu.Unlock()
		return ErrAuthorizationDenied
	}
	if res.State != model.StateCheckedIn {
		s.mu.Unlock()
		return ErrInvalidState
	}

	now := s.now()
	deadline := clock.GraceDeadline(now, s.settings.ViolationTime)
	res.State = model.StateAway
	res.Deadline = &deadline
	res.UpdatedAt = now

	evs := []event.Event{s.reservationEventLocked(res, "away", "")}
	s.mu.Unlock()

	s.emit(evs)
	return nil
}

// Release ends a reservation on the owner's (or an elevated actor's)
// initiative.  A never-checked-in reservation becomes cancelled; one
// that saw a check-in becomes completed.  A completed release earns the
// credit reward only when it lands within ReleaseBufferTime of the slot
// end, so bailing out mid-session closes cleanly without the
// completion bonus.  The seat is freed and the occupancy record
// destroyed.
func (s *Store) Release(actor Actor, id uuid.UUID) error {
	s.mu.Lock()
	res, ok := s.reservations[id]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	if res.UserID != actor.UserID && !actor.Elevated() {
		s.mu.Unlock()
		return ErrAuthorizationDenied
	}
	if !res.State.Active() {
		s.mu.Unlock()
		return ErrInvalidState
	}

	now := s.now()
	checkedIn := res.State != model.StatePendingCheckIn
	rewardFrom := res.Slot.End.Add(-time.Duration(s.settings.ReleaseBufferTime) * time.Minute)
	rewarded := checkedIn && !now.Before(rewardFrom)
	if checkedIn {
		res.State = model.StateCompleted
	} else {
		res.State = model.StateCancelled
	}
	end := now
	res.EndTime = &end
	res.Deadline = nil
	res.UpdatedAt = now
	seat := s.freeSeatLocked(res)
	delete(s.occupancy, id)

	evName := "cancelled"
	if checkedIn {
		evName = "completed"
	}
	evs := []event.Event{
		s.reservationEventLocked(res, evName, ""),
		s.notifyEvent(res.UserID, "Reservation closed", "Your seat has been released.", "info"),
		s.userSeatEventLocked(res.UserID),
		s.statsEventLocked(),
	}
	if seat != nil {
		evs = append(evs, s.seatEventLocked(seat))
	}
	userID := res.UserID
	s.mu.Unlock()

	if rewarded {
		s.credit.Adjust(userID, s.settings.ReleaseReward, "completed release")
	}
	s.emit(evs)
	return nil
}

// ExpireIfOverdue transitions an overdue reservation to violation: a
// pending reservation past its check-in deadline (no-show), or an away
// reservation past its grace deadline (absence timeout).  Invoked by
// the occupancy monitor, never by users.  Idempotent: a reservation
// already in violation (or otherwise not overdue) is left untouched and
// the call reports no change.
func (s *Store) ExpireIfOverdue(id uuid.UUID) (bool, error) {
	s.mu.Lock()
	res, ok := s.reservations[id]
	if !ok {
		s.mu.Unlock()
		return false, ErrNotFound
	}

	now := s.now()
	var reason string
	switch {
	case res.State == model.StatePendingCheckIn && clock.Overdue(now, res.Deadline):
		reason = "no_show"
	case res.State == model.StateAway && clock.Overdue(now, res.Deadline):
		reason = "away_timeout"
	default:
		s.mu.Unlock()
		return false, nil
	}

	evs := s.violateLocked(res, reason, s.settings.ViolationDeduct, now)
	userID := res.UserID
	s.mu.Unlock()

	s.credit.Adjust(userID, -s.settings.ViolationDeduct, reason)
	s.emit(evs)
	return true, nil
}

// ExpireOccupancy is the monitor's escalation endpoint for a checked-in
// reservation whose accumulated absence crossed the occupancy
// threshold: auto checkout into violation with the occupancy credit
// penalty.  No-op if the reservation has left the checked-in state.
func (s *Store) ExpireOccupancy(id uuid.UUID) (bool, error) {
	s.mu.Lock()
	res, ok := s.reservations[id]
	if !ok {
		s.mu.Unlock()
		return false, ErrNotFound
	}
	if res.State != model.StateCheckedIn {
		s.mu.Unlock()
		return false, nil
	}

	if rec, ok := s.occupancy[id]; ok {
		rec.OccupancyStatus = model.OccupancyViolation
	}
	evs := s.violateLocked(res, "occupancy_violation", s.settings.OccupancyDeduct, s.now())
	userID := res.UserID
	s.mu.Unlock()

	s.credit.Adjust(userID, -s.settings.OccupancyDeduct, "occupancy violation")
	s.emit(evs)
	return true, nil
}

// violateLocked applies the shared violation transition: state change,
// seat freed, occupancy destroyed, one event per observable fact.
// Callers hold the mutex and apply the credit penalty after unlocking.
func (s *Store) violateLocked(res *model.Reservation, reason string, deduct int, now time.Time) []event.Event {
	res.State = model.StateViolation
	res.CreditPenalty = deduct
	end := now
	res.EndTime = &end
	res.Deadline = nil
	res.UpdatedAt = now
	seat := s.freeSeatLocked(res)
	delete(s.occupancy, res.ID)

	evs := []event.Event{
		s.reservationEventLocked(res, "reservation_ended", reason),
		{
			Kind:   event.KindAlert,
			UserID: res.UserID,
			Queue:  event.QueueAlerts,
			Payload: event.Alert{
				Type:           "auto_checkout",
				ReservationID:  res.ID,
				SeatNo:         res.SeatNo,
				Message:        "Your reservation was cancelled for a rule violation: " + reason,
				CreditDeducted: deduct,
			},
		},
		s.notifyEvent(res.UserID, "Violation recorded",
			fmt.Sprintf("Your seat %s was released (%s) and %d credit points were deducted.",
				res.SeatNo, reason, deduct), "error"),
		s.userSeatEventLocked(res.UserID),
		s.statsEventLocked(),
	}
	if seat != nil {
		evs = append(evs, s.seatEventLocked(seat))
	}
	return evs
}

// ManualCheckout lets an elevated actor immediately close a checked-in
// or away reservation, recording the reason.  The reservation completes
// without penalty; thresholds do not apply.
func (s *Store) ManualCheckout(actor Actor, id uuid.UUID, reason string) error {
	if !actor.Elevated() {
		return ErrAuthorizationDenied
	}
	s.mu.Lock()
	res, ok := s.reservations[id]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	if res.State != model.StateCheckedIn && res.State != model.StateAway {
		s.mu.Unlock()
		return ErrInvalidState
	}

	now := s.now()
	res.State = model.StateCompleted
	end := now
	res.EndTime = &end
	res.Deadline = nil
	res.UpdatedAt = now
	seat := s.freeSeatLocked(res)
	delete(s.occupancy, id)

	evs := []event.Event{
		s.reservationEventLocked(res, "reservation_ended", "manual_checkout"),
		s.notifyEvent(res.UserID, "Seat released",
			"Your seat was released by a librarian. Reason: "+reason, "warning"),
		s.userSeatEventLocked(res.UserID),
		s.statsEventLocked(),
	}
	if seat != nil {
		evs = append(evs, s.seatEventLocked(seat))
	}
	s.mu.Unlock()

	s.emit(evs)
	return nil
}

// ForceRelease lets an elevated actor end any active reservation,
// including one still pending check-in.  Used for seat administration.
func (s *Store) ForceRelease(actor Actor, id uuid.UUID, reason string) error {
	if !actor.Elevated() {
		return ErrAuthorizationDenied
	}
	return s.Release(actor, id)
}

// ResolveViolation is the appeal workflow's edge: an approved appeal
// moves the reservation from violation to completed.  No seat changes;
// the seat was freed when the violation was recorded.
func (s *Store) ResolveViolation(id uuid.UUID) error {
	s.mu.Lock()
	res, ok := s.reservations[id]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	if res.State != model.StateViolation {
		s.mu.Unlock()
		return ErrInvalidState
	}
	res.State = model.StateCompleted
	res.UpdatedAt = s.now()

	evs := []event.Event{
		s.reservationEventLocked(res, "violation_reversed", "appeal_approved"),
		s.notifyEvent(res.UserID, "Appeal approved",
			"Your violation has been reversed and the credit penalty returned.", "success"),
	}
	s.mu.Unlock()

	s.emit(evs)
	return nil
}

// MarkPresence records a positive presence signal (liveness ping,
// QR re-scan) for the user's active reservation, resetting the absence
// counter and clearing a warning.
func (s *Store) MarkPresence(userID uint64) error {
	s.mu.Lock()
	id, ok := s.activeByUser[userID]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	rec, ok := s.occupancy[id]
	if !ok {
		s.mu.Unlock()
		return ErrInvalidState
	}
	rec.LastDetectedTime = s.now()
	rec.TotalAwayMinutes = 0
	if rec.OccupancyStatus == model.OccupancyWarning {
		rec.OccupancyStatus = model.OccupancyNormal
	}
	s.mu.Unlock()
	return nil
}

// EscalateWarning moves a normal occupancy record to warning and bumps
// its counter.  Returns the updated record, or false when the record is
// missing or already at warning or beyond (escalation fires once per
// step).
func (s *Store) EscalateWarning(id uuid.UUID, awayMinutes int) (model.OccupancyRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.occupancy[id]
	if !ok || rec.OccupancyStatus != model.OccupancyNormal {
		return model.OccupancyRecord{}, false
	}
	rec.OccupancyStatus = model.OccupancyWarning
	rec.WarningCount++
	rec.TotalAwayMinutes = awayMinutes
	return *rec, true
}

// RecordAway updates the accumulated absence on a record without
// changing its escalation step.
func (s *Store) RecordAway(id uuid.UUID, awayMinutes int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.occupancy[id]; ok {
		rec.TotalAwayMinutes = awayMinutes
	}
}

// Get returns a copy of the reservation.
func (s *Store) Get(id uuid.UUID) (*model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, ok := s.reservations[id]
	if !ok {
		return nil, ErrNotFound
	}
	return res.Clone(), nil
}

// ActiveByUser returns the user's active reservation, or nil when they
// have none.
func (s *Store) ActiveByUser(userID uint64) *model.Reservation {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.activeByUser[userID]
	if !ok {
		return nil
	}
	return s.reservations[id].Clone()
}

// History returns all of a user's reservations, newest first.
func (s *Store) History(userID uint64) []model.Reservation {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Reservation
	for _, res := range s.reservations {
		if res.UserID == userID {
			out = append(out, *res.Clone())
		}
	}
	sortByCreatedDesc(out)
	return out
}

// ActiveSnapshot returns clones of every active reservation together
// with its occupancy record (nil while pending check-in).  The monitor
// walks this snapshot outside the store lock.
func (s *Store) ActiveSnapshot() []ActiveEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ActiveEntry, 0, len(s.activeBySeat))
	for _, id := range s.activeBySeat {
		res := s.reservations[id]
		entry := ActiveEntry{Reservation: *res.Clone()}
		if rec, ok := s.occupancy[id]; ok {
			r := *rec
			entry.Occupancy = &r
		}
		out = append(out, entry)
	}
	return out
}

// ActiveEntry pairs a reservation with its occupancy record for
// monitoring.
type ActiveEntry struct {
	Reservation model.Reservation
	Occupancy   *model.OccupancyRecord
}

// Stats summarizes the seat pool.
func (s *Store) Stats() event.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statsLocked()
}

// SeatStatuses returns the current status projection keyed by seat id,
// for the client synchronization layer's pull path.
func (s *Store) SeatStatuses() map[uint64]model.SeatStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[uint64]model.SeatStatus, len(s.seats))
	for id, seat := range s.seats {
		out[id] = seat.Status
	}
	return out
}

// --- internals; callers hold s.mu ---

// seatHasOverlapLocked reports whether any reservation on the seat is
// active, or pending for a slot that overlaps the requested one.
func (s *Store) seatHasOverlapLocked(seatID uint64, slot model.Slot) bool {
	if _, active := s.activeBySeat[seatID]; active {
		return true
	}
	for _, res := range s.reservations {
		if res.SeatID == seatID && res.State.Active() && res.Slot.Overlaps(slot) {
			return true
		}
	}
	return false
}

func (s *Store) freeSeatLocked(res *model.Reservation) *model.Seat {
	delete(s.activeBySeat, res.SeatID)
	delete(s.activeByUser, res.UserID)
	seat, ok := s.seats[res.SeatID]
	if !ok || seat.Status != model.SeatOccupied {
		return nil
	}
	seat.Status = model.SeatAvailable
	seat.UpdatedAt = s.now()
	return seat
}

func (s *Store) validateProofLocked(seatID uint64, proof CheckInProof) error {
	if proof.QRToken != "" {
		if s.verifyQR == nil {
			return ErrProofInvalid
		}
		if err := s.verifyQR(proof.QRToken, seatID); err != nil {
			return ErrProofInvalid
		}
		return nil
	}
	if proof.Latitude != nil && proof.Longitude != nil {
		if clock.WithinGeofence(*proof.Latitude, *proof.Longitude,
			s.settings.LibraryLatitude, s.settings.LibraryLongitude,
			s.settings.GeofenceRadiusMeters) {
			return nil
		}
		return ErrProofInvalid
	}
	return ErrProofInvalid
}

func (s *Store) statsLocked() event.Stats {
	st := event.Stats{TotalSeats: len(s.seats), ActiveReservations: len(s.activeBySeat)}
	for _, seat := range s.seats {
		switch seat.Status {
		case model.SeatAvailable:
			st.AvailableSeats++
		case model.SeatOccupied:
			st.OccupiedSeats++
		}
	}
	return st
}

func (s *Store) seatEventLocked(seat *model.Seat) event.Event {
	return event.Event{
		Kind:  event.KindSeatUpdate,
		Topic: event.TopicSeats,
		Payload: event.SeatUpdate{
			SeatID: seat.ID,
			SeatNo: seat.SeatNo,
			Status: seat.Status,
		},
	}
}

func (s *Store) statsEventLocked() event.Event {
	return event.Event{
		Kind:    event.KindStatsUpdate,
		Topic:   event.TopicStats,
		Payload: s.statsLocked(),
	}
}

func (s *Store) userSeatEventLocked(userID uint64) event.Event {
	payload := event.UserSeatStatus{UserID: userID}
	if id, ok := s.activeByUser[userID]; ok {
		payload.SeatNo = s.reservations[id].SeatNo
	}
	return event.Event{
		Kind:    event.KindUserSeatStatus,
		Topic:   event.TopicUserSeatStatus,
		Payload: payload,
	}
}

func (s *Store) reservationEventLocked(res *model.Reservation, name, reason string) event.Event {
	return event.Event{
		Kind:   event.KindReservationUpdate,
		UserID: res.UserID,
		Queue:  event.QueueReservationUpdates,
		Payload: event.ReservationUpdate{
			Event:       name,
			Reason:      reason,
			Reservation: res.Clone(),
		},
	}
}

func (s *Store) notifyEvent(userID uint64, title, content, level string) event.Event {
	return event.Event{
		Kind:    event.KindNotification,
		UserID:  userID,
		Queue:   event.QueueNotifications,
		Payload: event.Notification{Title: title, Content: content, Level: level},
	}
}

func (s *Store) emit(evs []event.Event) {
	if s.events == nil {
		return
	}
	for _, ev := range evs {
		s.events.Publish(ev)
	}
}

func sortByCreatedDesc(list []model.Reservation) {
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
}
