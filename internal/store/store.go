// Package store defines the persistence contract consumed by the
// reservation engine.  The engine requires point reads, filtered queries,
// serializable multi-record transactions with read-your-writes semantics,
// and a push-based change feed that delivers the live contents of a
// collection on every committed change.  Concrete backends live in the
// memstore and mysqlstore subpackages.
package store

import (
	"context"

	"github.com/iliyamo/library-seat-reservation/internal/model"
)

// Store is the full persistence surface.  All mutation of seats and
// bookings goes through RunTx; the plain read methods observe only
// committed state.
type Store interface {
	// GetSeat returns the seat with the given code or ErrSeatNotFound.
	GetSeat(ctx context.Context, id string) (*model.Seat, error)
	// ListSeats returns every seat in the catalog.
	ListSeats(ctx context.Context) ([]model.Seat, error)

	// GetBooking returns the booking with the given id or ErrBookingNotFound.
	GetBooking(ctx context.Context, id string) (*model.Booking, error)
	// ListBookings returns every booking record.
	ListBookings(ctx context.Context) ([]model.Booking, error)
	// BookingsByUser returns all bookings ever created by the user, newest first.
	BookingsByUser(ctx context.Context, userID string) ([]model.Booking, error)
	// ActiveBookingsByUser returns the user's pending and confirmed bookings.
	ActiveBookingsByUser(ctx context.Context, userID string) ([]model.Booking, error)
	// BookingsByStatus returns all bookings currently in the given status.
	BookingsByStatus(ctx context.Context, status model.BookingStatus) ([]model.Booking, error)

	// GetUser returns the user record or ErrUserNotFound.
	GetUser(ctx context.Context, id string) (*model.User, error)
	// GetUserByEmail returns the user with the given login email or ErrUserNotFound.
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	// CreateUser inserts a new user record.
	CreateUser(ctx context.Context, u *model.User) error
	// ListUsers returns every user record.
	ListUsers(ctx context.Context) ([]model.User, error)

	// RunTx executes fn inside one atomic transaction.  Either every write
	// staged through the Tx is committed, or none is.  Transactions on the
	// same records are isolated from each other; a fn error aborts with no
	// partial state.  Transport failures surface as ErrUnavailable.
	RunTx(ctx context.Context, fn func(tx Tx) error) error

	// SubscribeSeats delivers the full seat collection after every
	// committed change, starting with the current contents.  The channel
	// closes when ctx is cancelled.  Slow receivers miss intermediate
	// snapshots, never commits.
	SubscribeSeats(ctx context.Context) <-chan []model.Seat
	// SubscribeBookings is the booking-collection counterpart of
	// SubscribeSeats.  No ordering is guaranteed across the two feeds.
	SubscribeBookings(ctx context.Context) <-chan []model.Booking
}

// Tx is the handle passed to a RunTx body.  Reads through a Tx observe
// writes staged earlier in the same transaction, and ForUpdate reads take
// locks that serialise concurrent transactions touching the same record.
type Tx interface {
	// SeatForUpdate reads a seat and locks it for the rest of the transaction.
	SeatForUpdate(ctx context.Context, id string) (*model.Seat, error)
	// PutSeat stages a full overwrite of a seat record.
	PutSeat(ctx context.Context, s *model.Seat) error
	// BookingForUpdate reads a booking and locks it for the rest of the transaction.
	BookingForUpdate(ctx context.Context, id string) (*model.Booking, error)
	// PutBooking stages an update of a booking's lifecycle fields: Status,
	// ClosedAt, and CompletedAt.  Identity and window fields are immutable
	// after CreateBooking and backends may ignore changes to them.
	PutBooking(ctx context.Context, b *model.Booking) error
	// CreateBooking stages insertion of a new booking record.
	CreateBooking(ctx context.Context, b *model.Booking) error
	// ActiveBookingsByUser queries the user's pending and confirmed
	// bookings inside the transaction, including staged writes.
	ActiveBookingsByUser(ctx context.Context, userID string) ([]model.Booking, error)
}
