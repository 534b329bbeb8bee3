package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/campuslife/court-reservation/internal/availability"
	"github.com/campuslife/court-reservation/internal/calendar"
	"github.com/campuslife/court-reservation/internal/model"
	"github.com/campuslife/court-reservation/internal/repository"
)

// CourtLister returns the court catalog. Implemented by repository.CourtRepo.
type CourtLister interface {
	List(ctx context.Context) ([]*model.Court, error)
}

// CourtHandler serves the public, read-only court endpoints: the court
// catalog and per-date slot availability. Both are side-effect free and
// require no authentication.
type CourtHandler struct {
	Courts CourtLister
	Engine *availability.Engine
}

// NewCourtHandler constructs a CourtHandler and panics if a dependency is nil.
func NewCourtHandler(courts CourtLister, engine *availability.Engine) *CourtHandler {
	if courts == nil || engine == nil {
		panic("nil dependency passed to NewCourtHandler")
	}
	return &CourtHandler{Courts: courts, Engine: engine}
}

// ListCourts handles GET /v1/courts and returns all courts.
func (h *CourtHandler) ListCourts(c echo.Context) error {
	courts, err := h.Courts.List(c.Request().Context())
	if err != nil {
		return fail(c, http.StatusInternalServerError, "could not list courts")
	}
	return respond(c, http.StatusOK, echo.Map{"courts": courts}, "courts retrieved")
}

// AvailableSlots handles GET /v1/courts/:id/available-slots?date=YYYY-MM-DD.
// It returns the free and reserved slot sets for the court on that date,
// both in calendar order. A fully booked date is a normal 200 response
// with an empty availableSlots array; only a missing court or a malformed
// date is an error.
func (h *CourtHandler) AvailableSlots(c echo.Context) error {
	date := c.QueryParam("date")
	if date == "" {
		return fail(c, http.StatusBadRequest, "date query parameter is required")
	}
	result, err := h.Engine.Check(c.Request().Context(), c.Param("id"), date)
	if err != nil {
		switch {
		case errors.Is(err, calendar.ErrInvalidDateFormat):
			return fail(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		case errors.Is(err, repository.ErrCourtNotFound):
			return fail(c, http.StatusNotFound, "court not found")
		default:
			return fail(c, http.StatusInternalServerError, "could not compute availability")
		}
	}
	return respond(c, http.StatusOK, result, "available slots retrieved")
}
