package model

import "time"

// SeatStatus enumerates the externally visible states of a seat.  A seat
// is only ever marked occupied as a projection of an active reservation;
// maintenance is set directly by administrators and excludes the seat
// from booking.
type SeatStatus string

const (
	SeatAvailable   SeatStatus = "available"
	SeatOccupied    SeatStatus = "occupied"
	SeatMaintenance SeatStatus = "maintenance"
)

// Seat describes a physical seat in the library.  Seats are uniquely
// identified by their number within an area.  The X/Y coordinates are
// used only by the client seat-map layout and carry no server-side
// meaning.
//
// Fields:
//  ID      – primary key identifier.
//  SeatNo  – human readable label, e.g. "A-01".
//  Area    – reading area the seat belongs to.
//  X, Y    – physical layout coordinates.
//  Status  – available, occupied or maintenance.
type Seat struct {
	ID        uint64     `json:"id"`
	SeatNo    string     `json:"seat_no"`
	Area      string     `json:"area"`
	X         int        `json:"x"`
	Y         int        `json:"y"`
	Status    SeatStatus `json:"status"`
	UpdatedAt time.Time  `json:"updated_at"`
}
