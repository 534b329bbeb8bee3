package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/campuslife/court-reservation/internal/availability"
	"github.com/campuslife/court-reservation/internal/booking"
	"github.com/campuslife/court-reservation/internal/calendar"
	"github.com/campuslife/court-reservation/internal/model"
	"github.com/campuslife/court-reservation/internal/queue"
	"github.com/campuslife/court-reservation/internal/repository"
)

// ReservationStore covers the reservation operations the booking handler
// needs besides the coordinated commit. Implemented by
// repository.ReservationRepo.
type ReservationStore interface {
	Delete(ctx context.Context, courtID uint64, date time.Time, slot string, userID uint64) error
	ListByUser(ctx context.Context, userID uint64) ([]repository.ReservationDetail, error)
}

// BookingHandler serves the authenticated booking endpoints: committing a
// reservation, cancelling one, and listing the caller's bookings. All
// methods assume JWT middleware has placed user_id in the context.
type BookingHandler struct {
	Courts       availability.CourtFinder
	Coordinator  *booking.Coordinator
	Reservations ReservationStore
	// Publish is invoked after a successful commit, off the request path.
	// It may be nil; publishing failures never fail the booking.
	Publish func(ctx context.Context, ev queue.CourtReservedEvent) error
}

// NewBookingHandler constructs a BookingHandler. publish may be nil.
func NewBookingHandler(courts availability.CourtFinder, coord *booking.Coordinator, reservations ReservationStore, publish func(context.Context, queue.CourtReservedEvent) error) *BookingHandler {
	if courts == nil || coord == nil || reservations == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Courts: courts, Coordinator: coord, Reservations: reservations, Publish: publish}
}

// bookingRequest is the body of create and cancel requests.
type bookingRequest struct {
	Date string `json:"date"`
	Slot string `json:"slot"`
}

// bind parses the :id path parameter and the JSON body shared by the
// booking endpoints, returning typed values or a client error message.
func (h *BookingHandler) bind(c echo.Context) (courtID uint64, date time.Time, slot string, errMsg string) {
	id, err := courtIDParam(c)
	if err != nil {
		return 0, time.Time{}, "", "invalid court id"
	}
	var body bookingRequest
	if err := c.Bind(&body); err != nil {
		return 0, time.Time{}, "", "invalid request body"
	}
	day, err := calendar.ParseDate(body.Date)
	if err != nil {
		return 0, time.Time{}, "", "invalid date, expected YYYY-MM-DD"
	}
	if !calendar.IsValidSlot(body.Slot) {
		return 0, time.Time{}, "", "invalid slot"
	}
	return id, day, body.Slot, ""
}

// CreateReservation handles POST /v1/courts/:id/reservations. On success
// the committed record is returned with 201. A lost race for the slot is
// a 409; the client must re-query availability rather than retry blindly.
func (h *BookingHandler) CreateReservation(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	courtID, date, slot, errMsg := h.bind(c)
	if errMsg != "" {
		return fail(c, http.StatusBadRequest, errMsg)
	}
	ctx := c.Request().Context()
	court, err := h.Courts.GetByID(ctx, courtID)
	if err != nil {
		if errors.Is(err, repository.ErrCourtNotFound) {
			return fail(c, http.StatusNotFound, "court not found")
		}
		return fail(c, http.StatusInternalServerError, "database error")
	}
	res, err := h.Coordinator.Reserve(ctx, court.ID, date, slot, userID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrSlotAlreadyReserved):
			return fail(c, http.StatusConflict, "slot "+slot+" on "+calendar.FormatDate(date)+" is no longer available")
		case errors.Is(err, booking.ErrBusy):
			return fail(c, http.StatusServiceUnavailable, "slot is being booked by another request, try again")
		case errors.Is(err, booking.ErrInvalidSlot):
			return fail(c, http.StatusBadRequest, "invalid slot")
		default:
			return fail(c, http.StatusInternalServerError, "could not create reservation")
		}
	}
	h.publishReserved(res, court)
	return respond(c, http.StatusCreated, res, "reservation created")
}

// CancelReservation handles DELETE /v1/courts/:id/reservations. Only the
// booking user can cancel their own record; the (court, date, slot, user)
// key makes it impossible to touch anyone else's booking.
func (h *BookingHandler) CancelReservation(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	courtID, date, slot, errMsg := h.bind(c)
	if errMsg != "" {
		return fail(c, http.StatusBadRequest, errMsg)
	}
	if err := h.Reservations.Delete(c.Request().Context(), courtID, date, slot, userID); err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return fail(c, http.StatusNotFound, "reservation not found")
		}
		return fail(c, http.StatusInternalServerError, "could not cancel reservation")
	}
	return respond(c, http.StatusOK, nil, "reservation cancelled")
}

// ListMyReservations handles GET /v1/my-reservations and returns the
// caller's bookings, newest first.
func (h *BookingHandler) ListMyReservations(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	items, err := h.Reservations.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "could not list reservations")
	}
	return respond(c, http.StatusOK, echo.Map{"reservations": items}, "reservations retrieved")
}

// publishReserved emits the court.reserved event in the background so the
// response never waits on the broker.
func (h *BookingHandler) publishReserved(res *model.Reservation, court *model.Court) {
	if h.Publish == nil {
		return
	}
	ev := queue.CourtReservedEvent{
		ReservationID: res.ID,
		UserID:        res.UserID,
		CourtID:       court.ID,
		CourtName:     court.Name,
		CourtType:     court.Type,
		Date:          calendar.FormatDate(res.Date),
		Slot:          res.Slot,
		ReservedAt:    res.CreatedAt.UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.Publish(ctx, ev); err != nil {
			log.Printf("booking: publish court.reserved failed: %v", err)
		}
	}()
}
