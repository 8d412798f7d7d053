package model

import (
	"time"

	"github.com/google/uuid"
)

// ReservationState enumerates the lifecycle states of a reservation.
// PendingCheckIn, CheckedIn and Away are the active states; a seat and a
// user may each hold at most one reservation in an active state at any
// time.  Completed, Cancelled and Violation are terminal, except that an
// approved appeal moves Violation to Completed.
type ReservationState string

const (
	StatePendingCheckIn ReservationState = "pending-checkin"
	StateCheckedIn      ReservationState = "checked-in"
	StateAway           ReservationState = "away"
	StateCompleted      ReservationState = "completed"
	StateCancelled      ReservationState = "cancelled"
	StateViolation      ReservationState = "violation"
)

// Active reports whether the state counts against the one-active-
// reservation-per-seat and per-user invariants.
func (s ReservationState) Active() bool {
	return s == StatePendingCheckIn || s == StateCheckedIn || s == StateAway
}

// Terminal reports whether no further user command can move the
// reservation (an approved appeal may still move violation to completed).
func (s ReservationState) Terminal() bool {
	return s == StateCompleted || s == StateCancelled || s == StateViolation
}

// Slot is a discrete bookable time window for a seat.
type Slot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Overlaps reports whether two slots share any instant.
func (s Slot) Overlaps(o Slot) bool {
	return s.Start.Before(o.End) && o.Start.Before(s.End)
}

// Reservation records a user's time-bounded occupancy of a seat.
// Deadline holds the absolute timestamp the current state must be acted
// on by: the check-in deadline while pending, the grace deadline while
// away, and zero otherwise.  Deadlines are computed once at the
// triggering transition and never silently recomputed.
//
// Fields:
//  ID           – unique identifier.
//  UserID       – owner of the reservation.
//  SeatID       – reserved seat.
//  SeatNo       – denormalized seat label for client display.
//  Slot         – booked time window.
//  StartTime    – slot start, kept for deadline arithmetic.
//  EndTime      – actual end (set when the reservation closes).
//  Deadline     – absolute check-in or return deadline, nil when none.
//  State        – current lifecycle state.
//  CreditPenalty – credit deducted when the reservation entered
//                 violation; the amount an approved appeal returns.
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last transition timestamp.
type Reservation struct {
	ID            uuid.UUID        `json:"id"`
	UserID        uint64           `json:"user_id"`
	SeatID        uint64           `json:"seat_id"`
	SeatNo        string           `json:"seat_no"`
	Slot          Slot             `json:"slot"`
	StartTime     time.Time        `json:"start_time"`
	EndTime       *time.Time       `json:"end_time,omitempty"`
	Deadline      *time.Time       `json:"deadline,omitempty"`
	State         ReservationState `json:"state"`
	CreditPenalty int              `json:"credit_penalty,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// Clone returns a deep copy so callers can hand reservations across
// goroutine boundaries without aliasing store-owned memory.
func (r *Reservation) Clone() *Reservation {
	if r == nil {
		return nil
	}
	cp := *r
	if r.EndTime != nil {
		t := *r.EndTime
		cp.EndTime = &t
	}
	if r.Deadline != nil {
		t := *r.Deadline
		cp.Deadline = &t
	}
	return &cp
}
