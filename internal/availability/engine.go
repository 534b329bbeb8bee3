// Package availability computes which slots are free on a court for a
// given date. The computation is pure: the engine only reads from its
// collaborators and never mutates anything, so querying twice without an
// intervening booking yields identical results.
package availability

import (
	"context"
	"strconv"
	"time"

	"github.com/campuslife/court-reservation/internal/calendar"
	"github.com/campuslife/court-reservation/internal/model"
	"github.com/campuslife/court-reservation/internal/repository"
)

// CourtFinder resolves court ids. Implemented by repository.CourtRepo.
type CourtFinder interface {
	GetByID(ctx context.Context, id uint64) (*model.Court, error)
}

// ReservationReader reports the reserved slot set for a court and date.
// Implemented by repository.ReservationRepo.
type ReservationReader interface {
	SlotsForDate(ctx context.Context, courtID uint64, date time.Time) (map[string]bool, error)
}

// Result is the derived, non-persisted view of a court's calendar on one
// date. AvailableSlots and ReservedSlots partition the slot enumeration
// and both follow calendar order; the counts always sum to
// calendar.SlotCount.
type Result struct {
	AvailableSlots []string `json:"availableSlots"`
	ReservedSlots  []string `json:"reservedSlots"`
	TotalAvailable int      `json:"totalAvailable"`
	TotalReserved  int      `json:"totalReserved"`
}

// Engine answers availability queries. It is safe for concurrent use.
type Engine struct {
	courts       CourtFinder
	reservations ReservationReader
}

// NewEngine constructs an Engine and panics if a collaborator is nil.
func NewEngine(courts CourtFinder, reservations ReservationReader) *Engine {
	if courts == nil || reservations == nil {
		panic("nil collaborator passed to NewEngine")
	}
	return &Engine{courts: courts, reservations: reservations}
}

// Check validates the inputs and computes the availability view for one
// court and date. The date format is checked before any store access, so
// a malformed date can never cost a database round trip. A fully booked
// date is a valid result with zero available slots, not an error; whether
// that constitutes a failure is a caller-level decision.
//
// Errors: calendar.ErrInvalidDateFormat for a malformed courtID or date,
// repository.ErrCourtNotFound for an unknown court, otherwise the
// underlying store error.
func (e *Engine) Check(ctx context.Context, courtID, date string) (*Result, error) {
	day, err := calendar.ParseDate(date)
	if err != nil {
		return nil, err
	}
	id, err := strconv.ParseUint(courtID, 10, 64)
	if err != nil || id == 0 {
		return nil, repository.ErrCourtNotFound
	}
	court, err := e.courts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	reserved, err := e.reservations.SlotsForDate(ctx, court.ID, day)
	if err != nil {
		return nil, err
	}
	// Project the unordered reserved set into calendar order and take the
	// complement in a single pass over the enumeration.
	res := &Result{
		AvailableSlots: make([]string, 0, calendar.SlotCount),
		ReservedSlots:  make([]string, 0, len(reserved)),
	}
	for _, slot := range calendar.AllSlots() {
		if reserved[slot] {
			res.ReservedSlots = append(res.ReservedSlots, slot)
		} else {
			res.AvailableSlots = append(res.AvailableSlots, slot)
		}
	}
	res.TotalAvailable = len(res.AvailableSlots)
	res.TotalReserved = len(res.ReservedSlots)
	return res, nil
}
