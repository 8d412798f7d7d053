// Package appeal implements the dispute workflow for violation-state
// reservations.  A user may file one appeal per reservation; a reviewer
// resolves it exactly once.  Approval returns the credit penalty and
// moves the reservation from violation to completed through the store.
package appeal

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/library-seat-reservation/internal/event"
	"github.com/iliyamo/library-seat-reservation/internal/model"
	"github.com/iliyamo/library-seat-reservation/internal/store"
)

// ErrDuplicateAppeal is returned when the reservation already has an
// appeal.  Resubmission after rejection is deliberately disallowed.
var ErrDuplicateAppeal = errors.New("appeal already exists for this reservation")

// ErrAlreadyReviewed is returned when a resolved appeal is reviewed
// again.  The first decision stands; credit is returned at most once.
var ErrAlreadyReviewed = errors.New("appeal already reviewed")

// Reservations is the slice of the store the workflow needs.
type Reservations interface {
	Get(id uuid.UUID) (*model.Reservation, error)
	ResolveViolation(id uuid.UUID) error
}

// Workflow owns the appeal table.  All operations are serialized under
// its mutex.
type Workflow struct {
	mu            sync.Mutex
	appeals       map[uuid.UUID]*model.Appeal
	byReservation map[uuid.UUID]uuid.UUID

	reservations Reservations
	credit       store.CreditLedger
	events       event.Sink
	now          func() time.Time
}

// NewWorkflow returns an empty workflow.  sink may be nil.
func NewWorkflow(reservations Reservations, credit store.CreditLedger, sink event.Sink) *Workflow {
	return &Workflow{
		appeals:       make(map[uuid.UUID]*model.Appeal),
		byReservation: make(map[uuid.UUID]uuid.UUID),
		reservations:  reservations,
		credit:        credit,
		events:        sink,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// WithClock substitutes the time source for tests.
func (w *Workflow) WithClock(now func() time.Time) *Workflow {
	w.now = now
	return w
}

// Submit files an appeal against the caller's violation reservation.
// The reservation must currently be in violation, and must not have
// been appealed before.
func (w *Workflow) Submit(actor store.Actor, reservationID uuid.UUID, kind model.AppealType, reason string, evidence []string) (*model.Appeal, error) {
	res, err := w.reservations.Get(reservationID)
	if err != nil {
		return nil, err
	}
	if res.UserID != actor.UserID {
		return nil, store.ErrAuthorizationDenied
	}
	if res.State != model.StateViolation {
		return nil, store.ErrInvalidState
	}

	w.mu.Lock()
	if _, exists := w.byReservation[reservationID]; exists {
		w.mu.Unlock()
		return nil, ErrDuplicateAppeal
	}
	now := w.now()
	ap := &model.Appeal{
		ID:            uuid.New(),
		ReservationID: reservationID,
		UserID:        res.UserID,
		Type:          kind,
		Reason:        reason,
		Evidence:      evidence,
		Status:        model.AppealPending,
		CreditAmount:  res.CreditPenalty,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	w.appeals[ap.ID] = ap
	w.byReservation[reservationID] = ap.ID
	out := *ap
	w.mu.Unlock()

	w.notify(res.UserID, "Appeal submitted",
		"Your appeal has been received and is awaiting review.", "info")
	return &out, nil
}

// Review resolves a pending appeal.  Elevated roles only; decision is
// approved or rejected.  Approval returns the credit penalty exactly
// once and reverses the reservation's violation; a second review
// attempt fails ErrAlreadyReviewed regardless of decision.
func (w *Workflow) Review(actor store.Actor, appealID uuid.UUID, decision model.AppealStatus, reply string) error {
	if !actor.Elevated() {
		return store.ErrAuthorizationDenied
	}
	if decision != model.AppealApproved && decision != model.AppealRejected {
		return store.ErrInvalidState
	}

	w.mu.Lock()
	ap, ok := w.appeals[appealID]
	if !ok {
		w.mu.Unlock()
		return store.ErrNotFound
	}
	if ap.Status != model.AppealPending {
		w.mu.Unlock()
		return ErrAlreadyReviewed
	}
	ap.Status = decision
	ap.Reply = reply
	ap.UpdatedAt = w.now()
	approved := decision == model.AppealApproved
	if approved {
		ap.CreditReturned = true
	}
	userID, reservationID, amount := ap.UserID, ap.ReservationID, ap.CreditAmount
	w.mu.Unlock()

	if approved {
		w.credit.Adjust(userID, amount, "appeal approved")
		// The reservation may have been resolved by an administrator in
		// the meantime; the appeal decision stands either way.
		if err := w.reservations.ResolveViolation(reservationID); err != nil &&
			!errors.Is(err, store.ErrInvalidState) {
			return err
		}
	} else {
		w.notify(userID, "Appeal rejected", "Your appeal was rejected: "+reply, "warning")
	}
	return nil
}

// Get returns a copy of the appeal.
func (w *Workflow) Get(id uuid.UUID) (*model.Appeal, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	ap, ok := w.appeals[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := *ap
	return &out, nil
}

// ByUser returns the user's appeals, newest first.
func (w *Workflow) ByUser(userID uint64) []model.Appeal {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []model.Appeal
	for _, ap := range w.appeals {
		if ap.UserID == userID {
			out = append(out, *ap)
		}
	}
	sortNewestFirst(out)
	return out
}

// Pending returns every unresolved appeal for the review queue.
// Elevated roles only.
func (w *Workflow) Pending(actor store.Actor) ([]model.Appeal, error) {
	if !actor.Elevated() {
		return nil, store.ErrAuthorizationDenied
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []model.Appeal
	for _, ap := range w.appeals {
		if ap.Status == model.AppealPending {
			out = append(out, *ap)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (w *Workflow) notify(userID uint64, title, content, level string) {
	if w.events == nil {
		return
	}
	w.events.Publish(event.Event{
		Kind:    event.KindNotification,
		UserID:  userID,
		Queue:   event.QueueNotifications,
		Payload: event.Notification{Title: title, Content: content, Level: level},
	})
}

func sortNewestFirst(list []model.Appeal) {
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
}
