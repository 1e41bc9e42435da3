// Package bookingsync keeps a local mirror of a customer's bookings in
// sync with the server. It polls on a fixed interval, supports optimistic
// mutations that roll back on failure, and exposes derived views computed
// from the mirrored collection. Transport is abstracted behind Fetcher and
// Mutator so the store works against HTTP, a test double, or anything else.
package bookingsync

import (
	"context"
	"sort"
	"sync"
	"time"

	"detailbook/internal/domain"
)

const (
	minInterval     = 5 * time.Second
	maxInterval     = 30 * time.Second
	defaultInterval = 10 * time.Second
	defaultTimeout  = 10 * time.Second
)

// Fetcher retrieves the current booking collection from the server.
type Fetcher interface {
	FetchBookings(ctx context.Context) ([]domain.Booking, error)
}

// Mutator performs a server-side mutation of a single booking and
// returns the authoritative post-mutation record.
type Mutator func(ctx context.Context) (*domain.Booking, error)

// Config tunes the store. Zero values fall back to defaults; Interval is
// clamped into the supported polling range.
type Config struct {
	Interval time.Duration
	Timeout  time.Duration
}

// Store is a polling cache of bookings. All methods are safe for
// concurrent use.
type Store struct {
	fetcher  Fetcher
	interval time.Duration
	timeout  time.Duration
	now      func() time.Time

	mu       sync.RWMutex
	bookings map[int64]domain.Booking
	lastSync time.Time
	paused   bool

	kick   chan struct{}
	stopCh chan struct{}
	once   sync.Once
}

// New creates a store around the given fetcher.
func New(fetcher Fetcher, cfg Config) *Store {
	interval := cfg.Interval
	if interval == 0 {
		interval = defaultInterval
	}
	if interval < minInterval {
		interval = minInterval
	}
	if interval > maxInterval {
		interval = maxInterval
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Store{
		fetcher:  fetcher,
		interval: interval,
		timeout:  timeout,
		now:      time.Now,
		bookings: make(map[int64]domain.Booking),
		kick:     make(chan struct{}, 1),
		stopCh:   make(chan struct{}),
	}
}

// Run polls until the context is cancelled or Stop is called. It performs
// an initial refresh immediately, then refreshes on every tick unless the
// store is paused.
func (s *Store) Run(ctx context.Context) {
	_ = s.Refresh(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-s.kick:
			_ = s.Refresh(ctx)
		case <-ticker.C:
			if s.isPaused() {
				continue
			}
			_ = s.Refresh(ctx)
		}
	}
}

// Stop terminates a running Run loop.
func (s *Store) Stop() {
	s.once.Do(func() { close(s.stopCh) })
}

// Refresh fetches the server collection and replaces the local mirror.
// The server copy always wins over local state.
func (s *Store) Refresh(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	fetched, err := s.fetcher.FetchBookings(ctx)
	if err != nil {
		return err
	}

	next := make(map[int64]domain.Booking, len(fetched))
	for _, b := range fetched {
		next[b.ID] = b
	}

	s.mu.Lock()
	s.bookings = next
	s.lastSync = s.now()
	s.mu.Unlock()
	return nil
}

// Pause suppresses interval refreshes, e.g. while the client is hidden.
// Already-started refreshes are not interrupted.
func (s *Store) Pause() {
	s.mu.Lock()
	s.paused = true
	s.mu.Unlock()
}

// Resume re-enables interval refreshes and requests an immediate one so
// the mirror catches up right away.
func (s *Store) Resume() {
	s.mu.Lock()
	s.paused = false
	s.mu.Unlock()

	select {
	case s.kick <- struct{}{}:
	default:
	}
}

func (s *Store) isPaused() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.paused
}

// LastSync reports when the mirror last matched the server. The zero time
// means no refresh has succeeded yet.
func (s *Store) LastSync() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSync
}

// Get returns a booking by id from the local mirror.
func (s *Store) Get(id int64) (domain.Booking, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[id]
	return b, ok
}

// All returns the mirrored bookings ordered by scheduled start.
func (s *Store) All() []domain.Booking {
	s.mu.RLock()
	out := make([]domain.Booking, 0, len(s.bookings))
	for _, b := range s.bookings {
		out = append(out, b)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].ScheduledStart.Before(out[j].ScheduledStart)
	})
	return out
}

// Today returns the mirrored bookings scheduled for the current day,
// ordered by start time.
func (s *Store) Today() []domain.Booking {
	today := s.now().UTC().Format("2006-01-02")

	var out []domain.Booking
	for _, b := range s.All() {
		if b.ScheduledDate.UTC().Format("2006-01-02") == today {
			out = append(out, b)
		}
	}
	return out
}

// ByStatus returns the mirrored bookings in the given status, ordered by
// start time.
func (s *Store) ByStatus(status domain.BookingStatus) []domain.Booking {
	var out []domain.Booking
	for _, b := range s.All() {
		if b.Status == status {
			out = append(out, b)
		}
	}
	return out
}

// Mutate applies an optimistic update. The local record is snapshotted,
// apply rewrites it in place so readers see the expected outcome right
// away, then the mutator runs against the server. On failure the snapshot
// is restored; on success the server's copy replaces the optimistic one.
func (s *Store) Mutate(ctx context.Context, id int64, apply func(domain.Booking) domain.Booking, mutate Mutator) error {
	s.mu.Lock()
	prior, existed := s.bookings[id]
	if existed {
		s.bookings[id] = apply(prior)
	}
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	updated, err := mutate(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		if existed {
			s.bookings[id] = prior
		}
		return err
	}
	if updated != nil {
		s.bookings[updated.ID] = *updated
	}
	return nil
}
