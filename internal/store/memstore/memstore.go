// Package memstore is an in-memory store backend.  A single store-wide
// write lock serialises transactions, which trivially satisfies the
// serializable-isolation contract; reads copy records so callers never
// alias store-owned memory.  It backs the engine tests and works as a
// standalone backend for single-process deployments.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/iliyamo/library-seat-reservation/internal/model"
	"github.com/iliyamo/library-seat-reservation/internal/store"
)

// MemStore holds all collections in maps guarded by one RWMutex.  Snapshot
// feeds publish after each committed transaction while the write lock is
// still held, so feed snapshots are internally consistent.
type MemStore struct {
	mu       sync.RWMutex
	seats    map[string]model.Seat
	bookings map[string]model.Booking
	users    map[string]model.User

	seatFeed    *store.Feed[[]model.Seat]
	bookingFeed *store.Feed[[]model.Booking]
}

// New returns a store seeded with the fixed seat catalog, every seat
// available.
func New() *MemStore {
	s := &MemStore{
		seats:       make(map[string]model.Seat),
		bookings:    make(map[string]model.Booking),
		users:       make(map[string]model.User),
		seatFeed:    store.NewFeed[[]model.Seat](),
		bookingFeed: store.NewFeed[[]model.Booking](),
	}
	for _, id := range model.Catalog() {
		s.seats[id] = model.Seat{ID: id, Status: model.SeatAvailable}
	}
	return s
}

// GetSeat returns a copy of the seat record.
func (s *MemStore) GetSeat(ctx context.Context, id string) (*model.Seat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seat, ok := s.seats[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrSeatNotFound, id)
	}
	return &seat, nil
}

// ListSeats returns every seat ordered by catalog position.
func (s *MemStore) ListSeats(ctx context.Context) ([]model.Seat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seatSnapshotLocked(), nil
}

// GetBooking returns a copy of the booking record.
func (s *MemStore) GetBooking(ctx context.Context, id string) (*model.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrBookingNotFound, id)
	}
	return &b, nil
}

// ListBookings returns every booking, newest first.
func (s *MemStore) ListBookings(ctx context.Context) ([]model.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bookingSnapshotLocked(), nil
}

// BookingsByUser returns all of the user's bookings, newest first.
func (s *MemStore) BookingsByUser(ctx context.Context, userID string) ([]model.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Booking
	for _, b := range s.bookings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	sortBookings(out)
	return out, nil
}

// ActiveBookingsByUser returns the user's pending and confirmed bookings.
func (s *MemStore) ActiveBookingsByUser(ctx context.Context, userID string) ([]model.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return activeByUser(s.bookings, nil, userID), nil
}

// BookingsByStatus returns every booking currently in the given status,
// newest first.
func (s *MemStore) BookingsByStatus(ctx context.Context, status model.BookingStatus) ([]model.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Booking
	for _, b := range s.bookings {
		if b.Status == status {
			out = append(out, b)
		}
	}
	sortBookings(out)
	return out, nil
}

// GetUser returns a copy of the user record.
func (s *MemStore) GetUser(ctx context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrUserNotFound, id)
	}
	return &u, nil
}

// GetUserByEmail returns the user with the given login email.
func (s *MemStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", store.ErrUserNotFound, email)
}

// CreateUser inserts a new user; ids and emails must be unique.
func (s *MemStore) CreateUser(ctx context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; ok {
		return fmt.Errorf("%w: user %s", store.ErrDuplicateRecord, u.ID)
	}
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return fmt.Errorf("%w: email %s", store.ErrDuplicateRecord, u.Email)
		}
	}
	s.users[u.ID] = *u
	return nil
}

// ListUsers returns every user record.
func (s *MemStore) ListUsers(ctx context.Context) ([]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// RunTx executes fn under the store write lock.  Writes are staged in the
// transaction and applied only when fn returns nil, so a failing body
// leaves no partial state.  Committed changes are published to the
// collection feeds before the lock is released.
func (s *MemStore) RunTx(ctx context.Context, fn func(tx store.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{
		store:        s,
		stagedSeats:  make(map[string]model.Seat),
		stagedBooked: make(map[string]model.Booking),
		created:      make(map[string]bool),
	}
	if err := fn(tx); err != nil {
		return err
	}

	for id, seat := range tx.stagedSeats {
		s.seats[id] = seat
	}
	for id, b := range tx.stagedBooked {
		s.bookings[id] = b
	}
	if len(tx.stagedSeats) > 0 {
		s.seatFeed.Publish(s.seatSnapshotLocked())
	}
	if len(tx.stagedBooked) > 0 {
		s.bookingFeed.Publish(s.bookingSnapshotLocked())
	}
	return nil
}

// SubscribeSeats implements the store change feed: the current seat
// collection immediately, then a fresh snapshot after every commit that
// touched a seat.
func (s *MemStore) SubscribeSeats(ctx context.Context) <-chan []model.Seat {
	ch := s.seatFeed.Subscribe(ctx)
	s.mu.RLock()
	s.seatFeed.Publish(s.seatSnapshotLocked())
	s.mu.RUnlock()
	return ch
}

// SubscribeBookings is the booking counterpart of SubscribeSeats.
func (s *MemStore) SubscribeBookings(ctx context.Context) <-chan []model.Booking {
	ch := s.bookingFeed.Subscribe(ctx)
	s.mu.RLock()
	s.bookingFeed.Publish(s.bookingSnapshotLocked())
	s.mu.RUnlock()
	return ch
}

func (s *MemStore) seatSnapshotLocked() []model.Seat {
	out := make([]model.Seat, 0, len(s.seats))
	for _, id := range model.Catalog() {
		if seat, ok := s.seats[id]; ok {
			out = append(out, seat)
		}
	}
	return out
}

func (s *MemStore) bookingSnapshotLocked() []model.Booking {
	out := make([]model.Booking, 0, len(s.bookings))
	for _, b := range s.bookings {
		out = append(out, b)
	}
	sortBookings(out)
	return out
}

// memTx stages writes until the surrounding RunTx commits.  It runs with
// the store write lock held, so ForUpdate reads need no additional
// locking.
type memTx struct {
	store        *MemStore
	stagedSeats  map[string]model.Seat
	stagedBooked map[string]model.Booking
	created      map[string]bool
}

// SeatForUpdate reads a seat, observing staged writes first.
func (t *memTx) SeatForUpdate(ctx context.Context, id string) (*model.Seat, error) {
	if seat, ok := t.stagedSeats[id]; ok {
		return &seat, nil
	}
	seat, ok := t.store.seats[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrSeatNotFound, id)
	}
	return &seat, nil
}

// PutSeat stages a seat overwrite.
func (t *memTx) PutSeat(ctx context.Context, s *model.Seat) error {
	if _, ok := t.stagedSeats[s.ID]; !ok {
		if _, exists := t.store.seats[s.ID]; !exists {
			return fmt.Errorf("%w: %s", store.ErrSeatNotFound, s.ID)
		}
	}
	t.stagedSeats[s.ID] = *s
	return nil
}

// BookingForUpdate reads a booking, observing staged writes first.
func (t *memTx) BookingForUpdate(ctx context.Context, id string) (*model.Booking, error) {
	if b, ok := t.stagedBooked[id]; ok {
		return &b, nil
	}
	b, ok := t.store.bookings[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrBookingNotFound, id)
	}
	return &b, nil
}

// PutBooking stages a booking overwrite.
func (t *memTx) PutBooking(ctx context.Context, b *model.Booking) error {
	if _, ok := t.stagedBooked[b.ID]; !ok {
		if _, exists := t.store.bookings[b.ID]; !exists {
			return fmt.Errorf("%w: %s", store.ErrBookingNotFound, b.ID)
		}
	}
	t.stagedBooked[b.ID] = *b
	return nil
}

// CreateBooking stages insertion of a new booking record.
func (t *memTx) CreateBooking(ctx context.Context, b *model.Booking) error {
	if _, exists := t.store.bookings[b.ID]; exists || t.created[b.ID] {
		return fmt.Errorf("%w: booking %s", store.ErrDuplicateRecord, b.ID)
	}
	t.created[b.ID] = true
	t.stagedBooked[b.ID] = *b
	return nil
}

// ActiveBookingsByUser queries committed and staged bookings together, so
// a booking created earlier in the same transaction is visible.
func (t *memTx) ActiveBookingsByUser(ctx context.Context, userID string) ([]model.Booking, error) {
	return activeByUser(t.store.bookings, t.stagedBooked, userID), nil
}

// activeByUser merges the committed map with staged overrides and returns
// the user's active bookings, newest first.
func activeByUser(committed, staged map[string]model.Booking, userID string) []model.Booking {
	var out []model.Booking
	for id, b := range committed {
		if override, ok := staged[id]; ok {
			b = override
		}
		if b.UserID == userID && b.Status.Active() {
			out = append(out, b)
		}
	}
	for id, b := range staged {
		if _, ok := committed[id]; ok {
			continue
		}
		if b.UserID == userID && b.Status.Active() {
			out = append(out, b)
		}
	}
	sortBookings(out)
	return out
}

// sortBookings orders newest first with the id as a tiebreak for
// deterministic output.
func sortBookings(bs []model.Booking) {
	sort.Slice(bs, func(i, j int) bool {
		if !bs[i].CreatedAt.Equal(bs[j].CreatedAt) {
			return bs[i].CreatedAt.After(bs[j].CreatedAt)
		}
		return bs[i].ID < bs[j].ID
	})
}
