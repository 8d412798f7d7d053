// Package clock holds the pure deadline and distance arithmetic used by
// the reservation lifecycle.  Everything here is a function of its
// arguments; the package keeps no state and reads no configuration.
package clock

import (
	"math"
	"time"
)

// CheckInWindow returns the absolute bounds inside which a check-in is
// accepted for a slot starting at start.  Both windows are expressed in
// minutes and are inclusive on both ends.
func CheckInWindow(start time.Time, beforeMin, afterMin int) (time.Time, time.Time) {
	return start.Add(-time.Duration(beforeMin) * time.Minute),
		start.Add(time.Duration(afterMin) * time.Minute)
}

// InCheckInWindow reports whether now falls inside the check-in window
// around start.
func InCheckInWindow(now, start time.Time, beforeMin, afterMin int) bool {
	lo, hi := CheckInWindow(start, beforeMin, afterMin)
	return !now.Before(lo) && !now.After(hi)
}

// CheckInDeadline returns the absolute timestamp by which a pending
// reservation must have checked in.
func CheckInDeadline(start time.Time, afterMin int) time.Time {
	return start.Add(time.Duration(afterMin) * time.Minute)
}

// GraceDeadline returns the absolute timestamp by which an away user
// must have returned.  It is computed from the instant the user left,
// not from the slot.
func GraceDeadline(leftAt time.Time, graceMin int) time.Time {
	return leftAt.Add(time.Duration(graceMin) * time.Minute)
}

// Overdue reports whether now is strictly past the deadline.  A nil
// deadline is never overdue.
func Overdue(now time.Time, deadline *time.Time) bool {
	return deadline != nil && now.After(*deadline)
}

// MinutesSince returns the whole minutes elapsed between then and now,
// never negative.
func MinutesSince(now, then time.Time) int {
	d := now.Sub(then)
	if d < 0 {
		return 0
	}
	return int(d / time.Minute)
}

const earthRadiusMeters = 6371000

// DistanceMeters returns the great-circle distance between two
// coordinate pairs using the haversine formula.
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	rad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := rad(lat2 - lat1)
	dLon := rad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(a))
}

// WithinGeofence reports whether the given position lies within
// radiusMeters of the library coordinates.
func WithinGeofence(lat, lon, libLat, libLon, radiusMeters float64) bool {
	return DistanceMeters(lat, lon, libLat, libLon) <= radiusMeters
}
