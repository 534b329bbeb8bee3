package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/campuslife/court-reservation/internal/booking"
	"github.com/campuslife/court-reservation/internal/calendar"
	"github.com/campuslife/court-reservation/internal/model"
	"github.com/campuslife/court-reservation/internal/queue"
	"github.com/campuslife/court-reservation/internal/repository"
)

// fakeReservationStore implements both the coordinator's committer and
// the handler's ReservationStore over an in-memory map that enforces the
// same per-key uniqueness the database index would.
type fakeReservationStore struct {
	mu   sync.Mutex
	rows map[string]*model.Reservation
	next uint64
}

func newFakeReservationStore() *fakeReservationStore {
	return &fakeReservationStore{rows: make(map[string]*model.Reservation)}
}

func (s *fakeReservationStore) key(courtID uint64, date time.Time, slot string) string {
	return strconv.FormatUint(courtID, 10) + "|" + calendar.FormatDate(date) + "|" + slot
}

func (s *fakeReservationStore) Commit(_ context.Context, res *model.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := s.key(res.CourtID, res.Date, res.Slot)
	if _, taken := s.rows[k]; taken {
		return repository.ErrSlotAlreadyReserved
	}
	s.next++
	res.ID = s.next
	res.CreatedAt = time.Now().UTC()
	s.rows[k] = res
	return nil
}

func (s *fakeReservationStore) Delete(_ context.Context, courtID uint64, date time.Time, slot string, userID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := s.key(courtID, date, slot)
	if res, ok := s.rows[k]; ok && res.UserID == userID {
		delete(s.rows, k)
		return nil
	}
	return repository.ErrReservationNotFound
}

func (s *fakeReservationStore) ListByUser(_ context.Context, userID uint64) ([]repository.ReservationDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]repository.ReservationDetail, 0)
	for _, res := range s.rows {
		if res.UserID == userID {
			out = append(out, repository.ReservationDetail{
				ID: res.ID, CourtID: res.CourtID,
				Date: calendar.FormatDate(res.Date), Slot: res.Slot,
			})
		}
	}
	return out, nil
}

func newBookingFixture() (*BookingHandler, *fakeReservationStore) {
	store := newFakeReservationStore()
	courts := &fakeCourtStore{court: &model.Court{ID: 1, Name: "C1", Type: model.CourtTypeTennis}}
	coord := booking.NewCoordinator(store, nil, time.Second, 0)
	return NewBookingHandler(courts, coord, store, nil), store
}

// doBookingRequest issues a booking-shaped request with user 42 already
// authenticated in the context.
func doBookingRequest(h echo.HandlerFunc, method, courtID, body string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(method, "/v1/courts/"+courtID+"/reservations", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/courts/:id/reservations")
	c.SetParamNames("id")
	c.SetParamValues(courtID)
	c.Set("user_id", uint64(42))
	_ = h(c)
	return rec
}

func TestCreateReservation(t *testing.T) {
	t.Run("Commit Returns 201", func(t *testing.T) {
		h, store := newBookingFixture()
		rec := doBookingRequest(h.CreateReservation, http.MethodPost, "1", `{"date":"2024-11-15","slot":"10:00-11:00"}`)
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Len(t, store.rows, 1)
		assert.Contains(t, rec.Body.String(), `"slot":"10:00-11:00"`)
	})

	t.Run("Double Booking Returns 409 And Keeps One Record", func(t *testing.T) {
		h, store := newBookingFixture()
		first := doBookingRequest(h.CreateReservation, http.MethodPost, "1", `{"date":"2024-11-15","slot":"10:00-11:00"}`)
		assert.Equal(t, http.StatusCreated, first.Code)

		second := doBookingRequest(h.CreateReservation, http.MethodPost, "1", `{"date":"2024-11-15","slot":"10:00-11:00"}`)
		assert.Equal(t, http.StatusConflict, second.Code)
		assert.Contains(t, second.Body.String(), "no longer available")
		assert.Len(t, store.rows, 1, "the losing request must not add a record")
	})

	t.Run("Invalid Date Returns 400", func(t *testing.T) {
		h, _ := newBookingFixture()
		rec := doBookingRequest(h.CreateReservation, http.MethodPost, "1", `{"date":"2024-1-5","slot":"10:00-11:00"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Invalid Slot Returns 400", func(t *testing.T) {
		h, _ := newBookingFixture()
		rec := doBookingRequest(h.CreateReservation, http.MethodPost, "1", `{"date":"2024-11-15","slot":"22:00-23:00"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Unknown Court Returns 404", func(t *testing.T) {
		h, _ := newBookingFixture()
		rec := doBookingRequest(h.CreateReservation, http.MethodPost, "9", `{"date":"2024-11-15","slot":"10:00-11:00"}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Missing Identity Returns 401", func(t *testing.T) {
		h, _ := newBookingFixture()
		e := echo.New()
		req := httptest.NewRequest(http.MethodPost, "/v1/courts/1/reservations", strings.NewReader(`{"date":"2024-11-15","slot":"10:00-11:00"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("1")
		_ = h.CreateReservation(c)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Publishes Event After Commit", func(t *testing.T) {
		h, _ := newBookingFixture()
		published := make(chan queue.CourtReservedEvent, 1)
		h.Publish = func(_ context.Context, ev queue.CourtReservedEvent) error {
			published <- ev
			return nil
		}
		rec := doBookingRequest(h.CreateReservation, http.MethodPost, "1", `{"date":"2024-11-15","slot":"10:00-11:00"}`)
		assert.Equal(t, http.StatusCreated, rec.Code)
		select {
		case ev := <-published:
			assert.Equal(t, "2024-11-15", ev.Date)
			assert.Equal(t, "10:00-11:00", ev.Slot)
			assert.Equal(t, uint64(42), ev.UserID)
			assert.Equal(t, "C1", ev.CourtName)
		case <-time.After(time.Second):
			t.Fatal("event was not published")
		}
	})
}

func TestCancelReservation(t *testing.T) {
	t.Run("Cancel Own Booking", func(t *testing.T) {
		h, store := newBookingFixture()
		create := doBookingRequest(h.CreateReservation, http.MethodPost, "1", `{"date":"2024-11-15","slot":"10:00-11:00"}`)
		assert.Equal(t, http.StatusCreated, create.Code)

		cancel := doBookingRequest(h.CancelReservation, http.MethodDelete, "1", `{"date":"2024-11-15","slot":"10:00-11:00"}`)
		assert.Equal(t, http.StatusOK, cancel.Code)
		assert.Empty(t, store.rows)
	})

	t.Run("Cancel Missing Booking Returns 404", func(t *testing.T) {
		h, _ := newBookingFixture()
		rec := doBookingRequest(h.CancelReservation, http.MethodDelete, "1", `{"date":"2024-11-15","slot":"10:00-11:00"}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestListMyReservations(t *testing.T) {
	h, _ := newBookingFixture()
	created := doBookingRequest(h.CreateReservation, http.MethodPost, "1", `{"date":"2024-11-15","slot":"10:00-11:00"}`)
	assert.Equal(t, http.StatusCreated, created.Code)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/my-reservations", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", uint64(42))
	_ = h.ListMyReservations(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"slot":"10:00-11:00"`)
}
