// Package repository defines error types that are reused across the
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between failure scenarios without string
// matching. For example, ErrSlotAlreadyReserved signals that a commit
// lost the race for a (court, date, slot) key, while ErrCourtNotFound
// maps to a plain 404.
package repository

import "errors"

// ErrCourtNotFound is returned when a court id does not resolve to a
// row. Handlers should translate this into an HTTP 404 response.
var ErrCourtNotFound = errors.New("court not found")

// ErrSlotAlreadyReserved is returned when a reservation commit collides
// with an existing record for the same (court, date, slot). Handlers
// should translate this into an HTTP 409 response; retrying without
// re-querying availability is never correct.
var ErrSlotAlreadyReserved = errors.New("slot already reserved")

// ErrReservationNotFound is returned when a cancellation targets a
// (court, date, slot, user) tuple with no matching record.
var ErrReservationNotFound = errors.New("reservation not found")

// ErrCourtHasReservations is returned when a court delete cannot
// proceed because reservations still reference it. Handlers should
// translate this into an HTTP 409 response.
var ErrCourtHasReservations = errors.New("court has reservations")
