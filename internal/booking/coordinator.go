// Package booking serializes reservation attempts per (court, date, slot)
// key and delegates the actual commit to the reservation store. The lock
// granularity is one key per court+date+slot, so bookings for different
// courts, days or hours never contend with each other.
//
// The locks are an optimization, not the correctness mechanism: the
// store's compound unique index is the final arbiter of who wins a key,
// even across service instances that share no memory. The in-process
// keyed mutex keeps racing requests in one instance from both reaching
// the database, and the optional Redis advisory lock does the same for
// requests landing on different instances behind a load balancer.
package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/campuslife/court-reservation/internal/calendar"
	"github.com/campuslife/court-reservation/internal/model"
)

// ErrBusy is returned when a booking attempt cannot acquire its key
// within the configured wait. Handlers should translate this into an
// HTTP 503 response; the client may retry after re-querying availability.
var ErrBusy = errors.New("slot is being booked by another request, try again")

// ErrInvalidSlot is returned when the requested slot is not part of the
// calendar enumeration. Handlers should translate this into an HTTP 400.
var ErrInvalidSlot = errors.New("invalid slot")

// ReservationCommitter performs the atomic check-and-insert. Implemented
// by repository.ReservationRepo.
type ReservationCommitter interface {
	Commit(ctx context.Context, res *model.Reservation) error
}

// keyLock is a one-token semaphore for a single (court, date, slot) key.
// refs counts waiters plus the holder so idle entries can be removed.
type keyLock struct {
	ch   chan struct{}
	refs int
}

// Coordinator moves each booking request through Free -> Pending ->
// Committed, releasing the key on every failure path so no key is ever
// left permanently pending. It is safe for concurrent use.
type Coordinator struct {
	store   ReservationCommitter
	rdb     *redis.Client // optional cross-instance advisory lock; may be nil
	wait    time.Duration // bounded wait for key acquisition
	lockTTL time.Duration // TTL on the Redis lock so a crashed holder cannot wedge a key

	mu   sync.Mutex
	keys map[string]*keyLock
}

// NewCoordinator constructs a Coordinator. rdb may be nil, in which case
// only the in-process lock applies. wait and lockTTL fall back to sane
// defaults when non-positive.
func NewCoordinator(store ReservationCommitter, rdb *redis.Client, wait, lockTTL time.Duration) *Coordinator {
	if store == nil {
		panic("nil store passed to NewCoordinator")
	}
	if wait <= 0 {
		wait = 3 * time.Second
	}
	if lockTTL <= 0 {
		lockTTL = 10 * time.Second
	}
	return &Coordinator{
		store:   store,
		rdb:     rdb,
		wait:    wait,
		lockTTL: lockTTL,
		keys:    make(map[string]*keyLock),
	}
}

// Reserve books one slot for one user. The date is truncated to its UTC
// calendar date. Exactly one of the following happens: the reservation is
// committed and returned, or a typed error is returned and no write took
// place. A store-level conflict surfaces as the store's error (typically
// repository.ErrSlotAlreadyReserved) with no retry; the caller must
// re-query availability and pick another slot.
func (c *Coordinator) Reserve(ctx context.Context, courtID uint64, date time.Time, slot string, userID uint64) (*model.Reservation, error) {
	if !calendar.IsValidSlot(slot) {
		return nil, ErrInvalidSlot
	}
	date = calendar.Truncate(date)
	key := fmt.Sprintf("%d|%s|%s", courtID, calendar.FormatDate(date), slot)

	release, err := c.acquire(ctx, key) // Free -> Pending
	if err != nil {
		return nil, err
	}
	defer release() // Pending -> Free on every non-committed path

	res := &model.Reservation{
		CourtID: courtID,
		UserID:  userID,
		Date:    date,
		Slot:    slot,
	}
	if err := c.store.Commit(ctx, res); err != nil {
		return nil, err
	}
	return res, nil // Committed
}

// acquire takes the in-process token for key and, when Redis is
// configured, the distributed advisory lock as well. It blocks at most
// c.wait before giving up with ErrBusy. The returned release function is
// idempotent in effect: it must be called exactly once.
func (c *Coordinator) acquire(ctx context.Context, key string) (func(), error) {
	deadline := time.Now().Add(c.wait)

	lk := c.ref(key)
	timer := time.NewTimer(c.wait)
	defer timer.Stop()
	select {
	case lk.ch <- struct{}{}:
	case <-timer.C:
		c.unref(key)
		return nil, ErrBusy
	case <-ctx.Done():
		c.unref(key)
		return nil, ctx.Err()
	}

	localRelease := func() {
		<-lk.ch
		c.unref(key)
	}

	if c.rdb == nil {
		return localRelease, nil
	}

	// Cross-instance lock: SET NX with a TTL, polled until the deadline.
	// The TTL guarantees a crashed instance cannot hold a key forever.
	redisKey := "booking:lock:" + key
	for {
		ok, err := c.rdb.SetNX(ctx, redisKey, "1", c.lockTTL).Result()
		if err != nil {
			// Redis being down must not take bookings down with it; the
			// unique index still protects the data.
			return localRelease, nil
		}
		if ok {
			return func() {
				bg, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				_ = c.rdb.Del(bg, redisKey).Err()
				localRelease()
			}, nil
		}
		if time.Now().After(deadline) {
			localRelease()
			return nil, ErrBusy
		}
		select {
		case <-time.After(50 * time.Millisecond):
		case <-ctx.Done():
			localRelease()
			return nil, ctx.Err()
		}
	}
}

// ref returns the keyLock for key, creating it when absent, and bumps
// its reference count.
func (c *Coordinator) ref(key string) *keyLock {
	c.mu.Lock()
	defer c.mu.Unlock()
	lk, ok := c.keys[key]
	if !ok {
		lk = &keyLock{ch: make(chan struct{}, 1)}
		c.keys[key] = lk
	}
	lk.refs++
	return lk
}

// unref drops one reference and removes the entry once nobody holds or
// waits on it, so the key map does not grow with every court/date/slot
// ever booked.
func (c *Coordinator) unref(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	lk, ok := c.keys[key]
	if !ok {
		return
	}
	lk.refs--
	if lk.refs <= 0 {
		delete(c.keys, key)
	}
}
