// Package event defines the typed envelopes distributed by the
// broadcaster and relayed to the message broker.  Every externally
// observable state transition emits exactly one event per changed fact:
// a reservation that expires into violation produces both a private
// reservation update for its owner and a broadcast seat update, so
// subscribers interested in only one fact never parse the other.
package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/library-seat-reservation/internal/model"
)

// Kind tags the payload type carried by an envelope.
type Kind string

const (
	KindSeatUpdate        Kind = "seat_update"
	KindStatsUpdate       Kind = "stats_update"
	KindUserSeatStatus    Kind = "user_seat_status"
	KindMessage           Kind = "new_message"
	KindOnlineStatus      Kind = "online_status"
	KindAlert             Kind = "alert"
	KindReservationUpdate Kind = "reservation_update"
	KindNotification      Kind = "notification"
)

// Broadcast topics, visible to every subscribed client.  TopicMessages
// carries no server-side producer: message-square posts are published
// by the external message-square collaborator; the topic exists here so
// the feature gate and fan-out live in one place.
const (
	TopicSeats          = "seats"
	TopicStats          = "stats"
	TopicUserSeatStatus = "user_seat_status"
	TopicMessages       = "messages"
	TopicOnlineStatus   = "online_status"
)

// Private per-user queues, visible only to the owning identity.
const (
	QueueAlerts             = "alerts"
	QueueReservationUpdates = "reservation_update"
	QueueNotifications      = "notifications"
)

// Event is the envelope fanned out by the broadcaster.  Broadcast events
// carry a Topic and no UserID; private events carry the owning UserID
// and the Queue they address.
type Event struct {
	Kind      Kind      `json:"kind"`
	Topic     string    `json:"topic,omitempty"`
	UserID    uint64    `json:"user_id,omitempty"`
	Queue     string    `json:"queue,omitempty"`
	Payload   any       `json:"payload,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Private reports whether the event addresses a per-user queue.
func (e Event) Private() bool { return e.UserID != 0 }

// Sink accepts events for distribution.  Publishing is fire-and-forget:
// implementations must never block or fail the state transition that
// produced the event.
type Sink interface {
	Publish(ev Event)
}

// SeatUpdate announces a seat status change on the seats topic.
type SeatUpdate struct {
	SeatID uint64           `json:"seat_id"`
	SeatNo string           `json:"seat_no"`
	Status model.SeatStatus `json:"status"`
}

// ReservationUpdate is pushed on the owner's private queue whenever
// their reservation changes state.  Reason is a machine-readable cause
// (e.g. "no_show", "manual_checkout") for transitions the user did not
// initiate.
type ReservationUpdate struct {
	Event       string             `json:"event"`
	Reason      string             `json:"reason,omitempty"`
	Reservation *model.Reservation `json:"reservation,omitempty"`
}

// Alert is an urgent private message: deadline reminders, occupancy
// warnings and auto-checkout notices.
type Alert struct {
	Type           string    `json:"type"`
	ReservationID  uuid.UUID `json:"reservation_id"`
	SeatNo         string    `json:"seat_no,omitempty"`
	Message        string    `json:"message"`
	AwayMinutes    int       `json:"away_minutes,omitempty"`
	Threshold      int       `json:"threshold,omitempty"`
	CreditDeducted int       `json:"credit_deducted,omitempty"`
}

// Notification is a persistent-style private message with a severity
// level (success, info, warning, error).
type Notification struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Level   string `json:"level"`
}

// Stats summarizes the seat pool for dashboard subscribers.
type Stats struct {
	TotalSeats         int `json:"total_seats"`
	AvailableSeats     int `json:"available_seats"`
	OccupiedSeats      int `json:"occupied_seats"`
	ActiveReservations int `json:"active_reservations"`
}

// UserSeatStatus announces which seat a user currently holds, for the
// message square's live presence display.
type UserSeatStatus struct {
	UserID uint64 `json:"user_id"`
	SeatNo string `json:"seat_no,omitempty"`
}

// OnlineStatus announces a client attaching to or leaving the event
// stream.  Online carries the subscriber count after the change.
type OnlineStatus struct {
	UserID uint64 `json:"user_id,omitempty"`
	Status string `json:"status"`
	Online int    `json:"online"`
}

// OccupancyUpdate is carried on alerts and monitoring views when the
// monitor escalates a record.
type OccupancyUpdate struct {
	Record model.OccupancyRecord `json:"record"`
}
