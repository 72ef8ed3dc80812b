package mysqlstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/library-seat-reservation/internal/model"
	"github.com/iliyamo/library-seat-reservation/internal/store"
)

// sqlTx adapts one *sql.Tx to the store.Tx contract.  Reads inside the
// transaction naturally see writes executed earlier on the same tx, which
// gives the read-your-writes semantics the engine expects.
type sqlTx struct {
	tx *sql.Tx
}

// SeatForUpdate reads a seat under a row lock held until commit or rollback.
func (t *sqlTx) SeatForUpdate(ctx context.Context, id string) (*model.Seat, error) {
	q := `SELECT ` + seatColumns + ` FROM seats WHERE id = ? FOR UPDATE`
	seat, err := scanSeat(t.tx.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrSeatNotFound
	}
	if err != nil {
		return nil, wrapErr(err)
	}
	return seat, nil
}

// PutSeat overwrites a seat row.  Empty hold fields are stored as NULL so
// a released seat carries no residue.
func (t *sqlTx) PutSeat(ctx context.Context, s *model.Seat) error {
	const q = `UPDATE seats SET status = ?, booked_by = ?, booked_at = ?, end_time = ?, approved = ? WHERE id = ?`
	_, err := t.tx.ExecContext(ctx, q,
		string(s.Status), nullString(s.BookedBy), nullTime(s.BookedAt), nullString(s.EndTime), s.Approved, s.ID)
	return wrapErr(err)
}

// BookingForUpdate reads a booking under a row lock held until commit or rollback.
func (t *sqlTx) BookingForUpdate(ctx context.Context, id string) (*model.Booking, error) {
	q := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ? FOR UPDATE`
	b, err := scanBooking(t.tx.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrBookingNotFound
	}
	if err != nil {
		return nil, wrapErr(err)
	}
	return b, nil
}

// PutBooking overwrites a booking row.
func (t *sqlTx) PutBooking(ctx context.Context, b *model.Booking) error {
	const q = `UPDATE bookings SET status = ?, closed_at = ?, completed_at = ? WHERE id = ?`
	_, err := t.tx.ExecContext(ctx, q,
		string(b.Status), nullTimePtr(b.ClosedAt), nullTimePtr(b.CompletedAt), b.ID)
	return wrapErr(err)
}

// CreateBooking inserts a new booking row.
func (t *sqlTx) CreateBooking(ctx context.Context, b *model.Booking) error {
	const q = `INSERT INTO bookings (id, user_id, user_email, seat_id, booking_date, start_time, end_time, hours, status, created_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := t.tx.ExecContext(ctx, q,
		b.ID, b.UserID, b.UserEmail, b.SeatID, b.Date, b.StartTime, b.EndTime, b.Hours, string(b.Status), b.CreatedAt)
	if err != nil {
		if isDuplicateKey(err) {
			return store.ErrDuplicateRecord
		}
		return wrapErr(err)
	}
	return nil
}

// ActiveBookingsByUser queries the user's pending and confirmed bookings
// inside the transaction.  The read locks the matching index range, so a
// transaction that found no active bookings blocks a concurrent insert of
// one for the same user until it commits.  Two simultaneous reservations
// by one user therefore cannot both pass this check and commit: one wins,
// the other aborts inside the store and rolls back cleanly.
func (t *sqlTx) ActiveBookingsByUser(ctx context.Context, userID string) ([]model.Booking, error) {
	q := `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = ? AND status IN ('pending','confirmed') ORDER BY created_at DESC, id FOR UPDATE`
	rows, err := t.tx.QueryContext(ctx, q, userID)
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

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

func nullTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

// isDuplicateKey reports whether the error is MySQL error 1062 (duplicate
// entry for a unique index).
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
