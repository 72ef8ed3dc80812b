// Package mysqlstore implements the store contract on MySQL through
// database/sql.  Row locks taken with SELECT ... FOR UPDATE serialise
// concurrent transactions over the same seats and bookings, which is what
// the reservation engine relies on for its conflict detection.
package mysqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/library-seat-reservation/internal/model"
	"github.com/iliyamo/library-seat-reservation/internal/store"
)

// MySQLStore is a store backed by a MySQL database.  Change feeds are
// fed by re-querying the affected collection after each commit, so
// subscribers of one process see that process's writes; cross-process
// fan-out is out of scope here.
type MySQLStore struct {
	db          *sql.DB
	seatFeed    *store.Feed[[]model.Seat]
	bookingFeed *store.Feed[[]model.Booking]
}

// New returns a store bound to the given database handle.  The schema
// must already exist (see schema.sql); EnsureCatalog seeds the seats.
func New(db *sql.DB) *MySQLStore {
	return &MySQLStore{
		db:          db,
		seatFeed:    store.NewFeed[[]model.Seat](),
		bookingFeed: store.NewFeed[[]model.Booking](),
	}
}

// EnsureCatalog inserts any catalog seat that is not yet present.
// Existing rows keep their current state, so restarts never release
// live holds.
func (s *MySQLStore) EnsureCatalog(ctx context.Context) error {
	const q = `INSERT IGNORE INTO seats (id, status) VALUES (?, ?)`
	for _, id := range model.Catalog() {
		if _, err := s.db.ExecContext(ctx, q, id, string(model.SeatAvailable)); err != nil {
			return wrapErr(err)
		}
	}
	return nil
}

const seatColumns = `id, status, booked_by, booked_at, end_time, approved`

func scanSeat(row interface{ Scan(...any) error }) (*model.Seat, error) {
	var seat model.Seat
	var status string
	var bookedBy, endTime sql.NullString
	var bookedAt sql.NullTime
	if err := row.Scan(&seat.ID, &status, &bookedBy, &bookedAt, &endTime, &seat.Approved); err != nil {
		return nil, err
	}
	seat.Status = model.SeatStatus(status)
	seat.BookedBy = bookedBy.String
	seat.EndTime = endTime.String
	if bookedAt.Valid {
		seat.BookedAt = bookedAt.Time
	}
	return &seat, nil
}

// GetSeat returns the seat with the given code or store.ErrSeatNotFound.
func (s *MySQLStore) GetSeat(ctx context.Context, id string) (*model.Seat, error) {
	q := `SELECT ` + seatColumns + ` FROM seats WHERE id = ?`
	seat, err := scanSeat(s.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrSeatNotFound
	}
	if err != nil {
		return nil, wrapErr(err)
	}
	return seat, nil
}

// ListSeats returns every seat ordered by code.
func (s *MySQLStore) ListSeats(ctx context.Context) ([]model.Seat, error) {
	q := `SELECT ` + seatColumns + ` FROM seats ORDER BY id`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer rows.Close()

	var out []model.Seat
	for rows.Next() {
		seat, err := scanSeat(rows)
		if err != nil {
			return nil, wrapErr(err)
		}
		out = append(out, *seat)
	}
	return out, wrapErr(rows.Err())
}

const bookingColumns = `id, user_id, user_email, seat_id, booking_date, start_time, end_time, hours, status, created_at, closed_at, completed_at`

func scanBooking(row interface{ Scan(...any) error }) (*model.Booking, error) {
	var b model.Booking
	var status string
	var closedAt, completedAt sql.NullTime
	if err := row.Scan(&b.ID, &b.UserID, &b.UserEmail, &b.SeatID, &b.Date, &b.StartTime,
		&b.EndTime, &b.Hours, &status, &b.CreatedAt, &closedAt, &completedAt); err != nil {
		return nil, err
	}
	b.Status = model.BookingStatus(status)
	if closedAt.Valid {
		t := closedAt.Time
		b.ClosedAt = &t
	}
	if completedAt.Valid {
		t := completedAt.Time
		b.CompletedAt = &t
	}
	return &b, nil
}

// GetBooking returns the booking with the given id or store.ErrBookingNotFound.
func (s *MySQLStore) GetBooking(ctx context.Context, id string) (*model.Booking, error) {
	q := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	b, err := scanBooking(s.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrBookingNotFound
	}
	if err != nil {
		return nil, wrapErr(err)
	}
	return b, nil
}

func (s *MySQLStore) queryBookings(ctx context.Context, q string, args ...any) ([]model.Booking, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer rows.Close()

	var out []model.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, wrapErr(err)
		}
		out = append(out, *b)
	}
	return out, wrapErr(rows.Err())
}

// ListBookings returns every booking, newest first.
func (s *MySQLStore) ListBookings(ctx context.Context) ([]model.Booking, error) {
	return s.queryBookings(ctx,
		`SELECT `+bookingColumns+` FROM bookings ORDER BY created_at DESC, id`)
}

// BookingsByUser returns the user's full booking history, newest first.
func (s *MySQLStore) BookingsByUser(ctx context.Context, userID string) ([]model.Booking, error) {
	return s.queryBookings(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE user_id = ? ORDER BY created_at DESC, id`, userID)
}

// ActiveBookingsByUser returns the user's pending and confirmed bookings.
func (s *MySQLStore) ActiveBookingsByUser(ctx context.Context, userID string) ([]model.Booking, error) {
	return s.queryBookings(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE user_id = ? AND status IN ('pending','confirmed') ORDER BY created_at DESC, id`, userID)
}

// BookingsByStatus returns all bookings currently in the given status.
func (s *MySQLStore) BookingsByStatus(ctx context.Context, status model.BookingStatus) ([]model.Booking, error) {
	return s.queryBookings(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE status = ? ORDER BY created_at DESC, id`, string(status))
}

const userColumns = `id, full_name, email, student_id, role, password_hash, created_at`

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.StudentID, &u.Role, &u.PasswordHash, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUser returns the user record or store.ErrUserNotFound.
func (s *MySQLStore) GetUser(ctx context.Context, id string) (*model.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	u, err := scanUser(s.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrUserNotFound
	}
	if err != nil {
		return nil, wrapErr(err)
	}
	return u, nil
}

// GetUserByEmail returns the user with the given login email or store.ErrUserNotFound.
func (s *MySQLStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	u, err := scanUser(s.db.QueryRowContext(ctx, q, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrUserNotFound
	}
	if err != nil {
		return nil, wrapErr(err)
	}
	return u, nil
}

// CreateUser inserts a new user row.  A duplicate email surfaces as
// store.ErrDuplicateRecord through the unique index on email.
func (s *MySQLStore) CreateUser(ctx context.Context, u *model.User) error {
	const q = `INSERT INTO users (id, full_name, email, student_id, role, password_hash, created_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, q, u.ID, u.FullName, u.Email, u.StudentID, u.Role, u.PasswordHash, u.CreatedAt)
	if err != nil {
		if isDuplicateKey(err) {
			return store.ErrDuplicateRecord
		}
		return wrapErr(err)
	}
	return nil
}

// ListUsers returns every user record.
func (s *MySQLStore) ListUsers(ctx context.Context) ([]model.User, error) {
	q := `SELECT ` + userColumns + ` FROM users ORDER BY created_at, id`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, wrapErr(err)
		}
		out = append(out, *u)
	}
	return out, wrapErr(rows.Err())
}

// RunTx executes fn inside one database transaction.  The body's
// ForUpdate reads take row locks, so two transactions over the same seat
// serialise and the second re-reads the first's committed state.  After a
// successful commit the affected collections are re-queried and pushed to
// the feeds.
func (s *MySQLStore) RunTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapErr(err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(&sqlTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return wrapErr(err)
	}
	committed = true

	s.publishSnapshots(ctx)
	return nil
}

func (s *MySQLStore) publishSnapshots(ctx context.Context) {
	if seats, err := s.ListSeats(ctx); err == nil {
		s.seatFeed.Publish(seats)
	}
	if bookings, err := s.ListBookings(ctx); err == nil {
		s.bookingFeed.Publish(bookings)
	}
}

// SubscribeSeats delivers the seat collection after every commit made
// through this store, starting with the current contents.
func (s *MySQLStore) SubscribeSeats(ctx context.Context) <-chan []model.Seat {
	ch := s.seatFeed.Subscribe(ctx)
	if seats, err := s.ListSeats(ctx); err == nil {
		s.seatFeed.Publish(seats)
	}
	return ch
}

// SubscribeBookings is the booking counterpart of SubscribeSeats.
func (s *MySQLStore) SubscribeBookings(ctx context.Context) <-chan []model.Booking {
	ch := s.bookingFeed.Subscribe(ctx)
	if bookings, err := s.ListBookings(ctx); err == nil {
		s.bookingFeed.Publish(bookings)
	}
	return ch
}

// wrapErr marks any database failure as a transport-level error.  Sentinels
// from the store contract pass through untouched.
func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, store.ErrSeatNotFound),
		errors.Is(err, store.ErrBookingNotFound),
		errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrDuplicateRecord):
		return err
	default:
		return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
}
