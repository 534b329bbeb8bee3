package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/campuslife/court-reservation/internal/model"
	"github.com/campuslife/court-reservation/internal/repository"
)

// CourtAdminStore covers the mutating court-catalog operations.
// Implemented by repository.CourtRepo.
type CourtAdminStore interface {
	Create(ctx context.Context, court *model.Court) error
	Delete(ctx context.Context, id uint64) error
}

// AdminHandler serves court-catalog management. Routes using it are
// guarded by the ADMIN role; facilities staff register and retire
// physical courts here.
type AdminHandler struct {
	Courts CourtAdminStore
}

// NewAdminHandler constructs an AdminHandler and panics on a nil store.
func NewAdminHandler(courts CourtAdminStore) *AdminHandler {
	if courts == nil {
		panic("nil store passed to NewAdminHandler")
	}
	return &AdminHandler{Courts: courts}
}

// CreateCourt handles POST /v1/courts.
func (h *AdminHandler) CreateCourt(c echo.Context) error {
	var body struct {
		Name string `json:"name"`
		Type string `json:"type"`
	}
	if err := c.Bind(&body); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return fail(c, http.StatusBadRequest, "name is required")
	}
	courtType := strings.ToLower(strings.TrimSpace(body.Type))
	if !model.ValidCourtType(courtType) {
		return fail(c, http.StatusBadRequest, "type must be tennis, basketball or football")
	}
	court := &model.Court{Name: name, Type: courtType}
	if err := h.Courts.Create(c.Request().Context(), court); err != nil {
		if strings.Contains(err.Error(), "1062") {
			return fail(c, http.StatusConflict, "court name already exists")
		}
		return fail(c, http.StatusInternalServerError, "could not create court")
	}
	return respond(c, http.StatusCreated, court, "court created")
}

// DeleteCourt handles DELETE /v1/courts/:id. A court with existing
// reservations cannot be deleted; cancel the bookings first.
func (h *AdminHandler) DeleteCourt(c echo.Context) error {
	id, err := courtIDParam(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid court id")
	}
	if err := h.Courts.Delete(c.Request().Context(), id); err != nil {
		switch {
		case errors.Is(err, repository.ErrCourtNotFound):
			return fail(c, http.StatusNotFound, "court not found")
		case errors.Is(err, repository.ErrCourtHasReservations):
			return fail(c, http.StatusConflict, "court still has reservations")
		default:
			return fail(c, http.StatusInternalServerError, "could not delete court")
		}
	}
	return respond(c, http.StatusOK, nil, "court deleted")
}
