// Package queue defines message payloads exchanged over the message broker.
package queue

// CourtReservedEvent is published when a reservation is successfully
// committed. It carries enough information for downstream consumers to
// log, notify, or feed analytics without querying the primary database.
type CourtReservedEvent struct {
	ReservationID uint64 `json:"reservation_id"`
	UserID        uint64 `json:"user_id"`
	CourtID       uint64 `json:"court_id"`
	CourtName     string `json:"court_name"`
	CourtType     string `json:"court_type"`
	Date          string `json:"date"` // YYYY-MM-DD, UTC
	Slot          string `json:"slot"`
	ReservedAt    string `json:"reserved_at"` // RFC3339, UTC
}
