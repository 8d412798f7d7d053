package model

import (
	"time"

	"github.com/google/uuid"
)

// OccupancyStatus enumerates the monitor's escalation steps for an
// occupied seat: normal (presence recently confirmed), warning (absence
// detected but under the violation threshold) and occupied-violation
// (absence exceeded the threshold, auto checkout performed).
type OccupancyStatus string

const (
	OccupancyNormal    OccupancyStatus = "normal"
	OccupancyWarning   OccupancyStatus = "warning"
	OccupancyViolation OccupancyStatus = "occupied-violation"
)

// OccupancyRecord tracks presence for a reservation in the checked-in or
// away state.  It is created on check-in, updated on every monitor tick
// and presence signal, and destroyed when the reservation leaves the
// checked-in/away states.
//
// Fields:
//  ReservationID    – reservation being tracked.
//  UserID, SeatID   – denormalized for monitoring views.
//  CheckInTime      – when the user checked in.
//  LastDetectedTime – most recent positive presence signal.
//  TotalAwayMinutes – accumulated absence since the last signal.
//  OccupancyStatus  – current escalation step.
//  WarningCount     – number of warning escalations issued.
type OccupancyRecord struct {
	ReservationID    uuid.UUID       `json:"reservation_id"`
	UserID           uint64          `json:"user_id"`
	SeatID           uint64          `json:"seat_id"`
	CheckInTime      time.Time       `json:"check_in_time"`
	LastDetectedTime time.Time       `json:"last_detected_time"`
	TotalAwayMinutes int             `json:"total_away_minutes"`
	OccupancyStatus  OccupancyStatus `json:"occupancy_status"`
	WarningCount     int             `json:"warning_count"`
}
