package model

import "time"

// Reservation records one committed booking: a binding of one user to one
// (court, date, slot). Records are never mutated after commit; they are
// removed only by an explicit cancellation keyed on (court, date, slot,
// user), which cannot disturb other records.
//
// The booking user is referenced only by its numeric identifier. User
// profiles and roles live in an external identity service and are resolved
// there when bookings are displayed; no role logic exists in this core.
//
// Fields:
//  ID        – primary key identifier.
//  CourtID   – court being reserved.
//  UserID    – user who made the booking (opaque reference, not owned).
//  Date      – UTC calendar date of the booking (midnight, no time of day).
//  Slot      – one value from the calendar.AllSlots enumeration.
//  CreatedAt – creation timestamp.
type Reservation struct {
	ID        uint64    `json:"id"`         // reservations.id
	CourtID   uint64    `json:"court_id"`   // reservations.court_id
	UserID    uint64    `json:"user_id"`    // reservations.user_id
	Date      time.Time `json:"date"`       // reservations.res_date (DATE, UTC)
	Slot      string    `json:"slot"`       // reservations.slot
	CreatedAt time.Time `json:"created_at"` // reservations.created_at
}
