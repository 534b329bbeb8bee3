package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/campuslife/court-reservation/internal/calendar"
	"github.com/campuslife/court-reservation/internal/model"
	"github.com/campuslife/court-reservation/internal/repository"
)

// memStore mimics the reservations table including its compound unique
// index: the first commit for a key wins, later commits get
// ErrSlotAlreadyReserved. An optional gate channel lets tests hold a
// commit open to observe lock behaviour.
type memStore struct {
	mu   sync.Mutex
	rows map[string]uint64 // key -> winning user
	next uint64
	gate     chan struct{} // when non-nil, matching commits block until the channel is closed
	gateSlot string        // when set, only commits for this slot hit the gate
	err      error         // when non-nil, Commit fails with this error
}

func newMemStore() *memStore { return &memStore{rows: make(map[string]uint64)} }

func (s *memStore) Commit(_ context.Context, res *model.Reservation) error {
	if s.gate != nil && (s.gateSlot == "" || s.gateSlot == res.Slot) {
		<-s.gate
	}
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := fmt.Sprintf("%d|%s|%s", res.CourtID, calendar.FormatDate(res.Date), res.Slot)
	if _, taken := s.rows[key]; taken {
		return repository.ErrSlotAlreadyReserved
	}
	s.rows[key] = res.UserID
	s.next++
	res.ID = s.next
	res.CreatedAt = time.Now().UTC()
	return nil
}

var testDate = time.Date(2024, 11, 15, 0, 0, 0, 0, time.UTC)

func TestReserve(t *testing.T) {
	ctx := context.Background()

	t.Run("Commits And Populates Record", func(t *testing.T) {
		c := NewCoordinator(newMemStore(), nil, 0, 0)
		res, err := c.Reserve(ctx, 1, testDate, "10:00-11:00", 42)
		assert.NoError(t, err)
		assert.Equal(t, uint64(1), res.ID)
		assert.Equal(t, uint64(42), res.UserID)
		assert.Equal(t, testDate, res.Date)
	})

	t.Run("Truncates Date To UTC Midnight", func(t *testing.T) {
		c := NewCoordinator(newMemStore(), nil, 0, 0)
		late := time.Date(2024, 11, 15, 23, 59, 0, 0, time.UTC)
		res, err := c.Reserve(ctx, 1, late, "10:00-11:00", 42)
		assert.NoError(t, err)
		assert.Equal(t, testDate, res.Date)
	})

	t.Run("Rejects Unknown Slot", func(t *testing.T) {
		store := newMemStore()
		c := NewCoordinator(store, nil, 0, 0)
		_, err := c.Reserve(ctx, 1, testDate, "21:00-22:00", 42)
		assert.ErrorIs(t, err, ErrInvalidSlot)
		assert.Empty(t, store.rows, "nothing may be written for an invalid slot")
	})

	t.Run("Second Booking Of Same Key Conflicts", func(t *testing.T) {
		c := NewCoordinator(newMemStore(), nil, 0, 0)
		_, err := c.Reserve(ctx, 1, testDate, "10:00-11:00", 42)
		assert.NoError(t, err)
		_, err = c.Reserve(ctx, 1, testDate, "10:00-11:00", 43)
		assert.ErrorIs(t, err, repository.ErrSlotAlreadyReserved)
	})

	t.Run("Concurrent Requests One Winner", func(t *testing.T) {
		store := newMemStore()
		c := NewCoordinator(store, nil, 5*time.Second, 0)
		const attempts = 16
		errs := make([]error, attempts)
		var wg sync.WaitGroup
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = c.Reserve(ctx, 1, testDate, "10:00-11:00", uint64(100+i))
			}(i)
		}
		wg.Wait()
		wins, conflicts := 0, 0
		for _, err := range errs {
			switch {
			case err == nil:
				wins++
			case errors.Is(err, repository.ErrSlotAlreadyReserved):
				conflicts++
			default:
				t.Fatalf("unexpected error: %v", err)
			}
		}
		assert.Equal(t, 1, wins, "exactly one request may commit")
		assert.Equal(t, attempts-1, conflicts)
		assert.Len(t, store.rows, 1)
	})

	t.Run("Bounded Wait Returns Busy", func(t *testing.T) {
		store := newMemStore()
		store.gate = make(chan struct{})
		c := NewCoordinator(store, nil, 100*time.Millisecond, 0)

		started := make(chan struct{})
		done := make(chan struct{})
		go func() {
			close(started)
			_, _ = c.Reserve(ctx, 1, testDate, "10:00-11:00", 1)
			close(done)
		}()
		<-started
		time.Sleep(20 * time.Millisecond) // let the holder take the key

		_, err := c.Reserve(ctx, 1, testDate, "10:00-11:00", 2)
		assert.ErrorIs(t, err, ErrBusy)

		close(store.gate)
		<-done
	})

	t.Run("Unrelated Keys Do Not Contend", func(t *testing.T) {
		store := newMemStore()
		store.gate = make(chan struct{})
		store.gateSlot = "10:00-11:00"
		c := NewCoordinator(store, nil, time.Second, 0)

		started := make(chan struct{})
		done := make(chan struct{})
		go func() {
			close(started)
			_, _ = c.Reserve(ctx, 1, testDate, "10:00-11:00", 1)
			close(done)
		}()
		<-started
		time.Sleep(20 * time.Millisecond)

		// A different slot on the same court books immediately even though
		// the first key's commit is still in flight.
		other := make(chan error, 1)
		go func() {
			_, err := c.Reserve(ctx, 1, testDate, "11:00-12:00", 2)
			other <- err
		}()
		select {
		case err := <-other:
			assert.NoError(t, err)
		case <-time.After(500 * time.Millisecond):
			t.Fatal("unrelated key was blocked")
		}

		close(store.gate)
		<-done
	})

	t.Run("Key Released After Failure", func(t *testing.T) {
		store := newMemStore()
		store.err = errors.New("io failure")
		c := NewCoordinator(store, nil, 100*time.Millisecond, 0)
		_, err := c.Reserve(ctx, 1, testDate, "10:00-11:00", 1)
		assert.EqualError(t, err, "io failure")

		// The failed attempt must not leave the key pending: the next
		// attempt acquires immediately and succeeds.
		store.err = nil
		_, err = c.Reserve(ctx, 1, testDate, "10:00-11:00", 2)
		assert.NoError(t, err)
	})

	t.Run("Key Map Does Not Leak", func(t *testing.T) {
		c := NewCoordinator(newMemStore(), nil, 0, 0)
		for i := 0; i < 5; i++ {
			_, _ = c.Reserve(ctx, uint64(i+1), testDate, "10:00-11:00", 1)
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		assert.Empty(t, c.keys, "idle key locks must be removed")
	})

	t.Run("Cancelled Context Reported", func(t *testing.T) {
		store := newMemStore()
		store.gate = make(chan struct{})
		c := NewCoordinator(store, nil, 5*time.Second, 0)

		started := make(chan struct{})
		done := make(chan struct{})
		go func() {
			close(started)
			_, _ = c.Reserve(ctx, 1, testDate, "10:00-11:00", 1)
			close(done)
		}()
		<-started
		time.Sleep(20 * time.Millisecond)

		cctx, cancel := context.WithCancel(ctx)
		go func() {
			time.Sleep(30 * time.Millisecond)
			cancel()
		}()
		_, err := c.Reserve(cctx, 1, testDate, "10:00-11:00", 2)
		assert.ErrorIs(t, err, context.Canceled)

		close(store.gate)
		<-done
	})
}
