package model

import "time"

// Court types supported by the platform. The values are stored verbatim in
// the courts.type column.
const (
	CourtTypeTennis     = "tennis"
	CourtTypeBasketball = "basketball"
	CourtTypeFootball   = "football"
)

// ValidCourtType reports whether t is one of the supported court types.
func ValidCourtType(t string) bool {
	switch t {
	case CourtTypeTennis, CourtTypeBasketball, CourtTypeFootball:
		return true
	}
	return false
}

// Court represents a physical bookable court. Each court owns a collection
// of reservations (rows in the reservations table referencing courts.id);
// at most one reservation may exist per (date, slot) pair on a court.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – unique human-friendly name (e.g. "North Tennis 1").
//  Type      – one of the CourtType* constants.
//  CreatedAt – timestamp when the row was created.
//  UpdatedAt – timestamp of last update.
type Court struct {
	ID        uint64    `json:"id"`         // courts.id
	Name      string    `json:"name"`       // courts.name
	Type      string    `json:"type"`       // courts.type
	CreatedAt time.Time `json:"created_at"` // courts.created_at
	UpdatedAt time.Time `json:"updated_at"` // courts.updated_at
}
