package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"screening-booking/internal/data/entity"
	"screening-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

const uniqueViolation = "23505"

type BookingRepository interface {
	// Create runs the whole booking transaction: event lock, duplicate
	// check, slot reservation and insert commit together or not at all.
	Create(ctx context.Context, booking *entity.Booking) error

	// Cancel flips an owned confirmed booking to cancelled and returns
	// the slot to the event ledger in the same transaction.
	Cancel(ctx context.Context, bookingID, participantID uuid.UUID) (*entity.Booking, error)

	// CheckIn marks a confirmed booking as checked in. No capacity effect.
	CheckIn(ctx context.Context, bookingID uuid.UUID) (*entity.Booking, error)

	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	FindByParticipantID(ctx context.Context, participantID uuid.UUID) ([]*entity.Booking, error)
	FindByEventID(ctx context.Context, eventID uuid.UUID) ([]*entity.Booking, error)
}

type bookingRepository struct {
	db     database.PgxIface
	ledger *SlotLedger
	log    *zap.Logger
}

func NewBookingRepository(db database.PgxIface, ledger *SlotLedger, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:     db,
		ledger: ledger,
		log:    log.With(zap.String("repository", "booking")),
	}
}

const bookingColumns = `id, reference, participant_id, event_id, status, booked_at, cancelled_at`

func scanBooking(row pgx.Row) (*entity.Booking, error) {
	var b entity.Booking
	err := row.Scan(
		&b.ID,
		&b.Reference,
		&b.ParticipantID,
		&b.EventID,
		&b.Status,
		&b.BookedAt,
		&b.CancelledAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin booking transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Lock the event row first. Every check below happens under this
	// lock, so a concurrent booking or cancellation for the same event
	// waits here until we commit or roll back.
	var lockedID uuid.UUID
	err = tx.QueryRow(ctx,
		`SELECT id FROM events WHERE id = $1 FOR UPDATE`,
		booking.EventID,
	).Scan(&lockedID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrEventNotFound
	}
	if err != nil {
		return fmt.Errorf("lock event row %s: %w", booking.EventID.String(), err)
	}

	// One active booking per (participant, event). Checked inside the
	// transaction, not just by the partial unique index, so the caller
	// gets a clean domain error instead of a constraint violation.
	var active bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE participant_id = $1 AND event_id = $2 AND status <> 'cancelled'
		)`,
		booking.ParticipantID, booking.EventID,
	).Scan(&active)
	if err != nil {
		return fmt.Errorf("check duplicate booking: %w", err)
	}
	if active {
		return ErrDuplicateBooking
	}

	if err := r.ledger.Reserve(ctx, tx, booking.EventID); err != nil {
		return err
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO bookings (id, reference, participant_id, event_id, status, booked_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		booking.ID,
		booking.Reference,
		booking.ParticipantID,
		booking.EventID,
		booking.Status,
		booking.BookedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			// The rollback undoes the slot reservation too, so a
			// reference collision leaks nothing.
			if pgErr.ConstraintName == "bookings_reference_key" {
				return ErrReferenceTaken
			}
			return ErrDuplicateBooking
		}
		return fmt.Errorf("insert booking %s: %w", booking.Reference, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit booking transaction: %w", err)
	}

	return nil
}

func (r *bookingRepository) Cancel(ctx context.Context, bookingID, participantID uuid.UUID) (*entity.Booking, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin cancel transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	booking, err := scanBooking(tx.QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1 FOR UPDATE`,
		bookingID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock booking row %s: %w", bookingID.String(), err)
	}

	if booking.ParticipantID != participantID {
		return nil, ErrForbidden
	}

	switch booking.Status {
	case entity.BookingStatusCancelled:
		return nil, ErrAlreadyCancelled
	case entity.BookingStatusCheckedIn:
		return nil, ErrAlreadyCheckedIn
	}

	if err := r.ledger.Release(ctx, tx, booking.EventID); err != nil {
		return nil, err
	}

	now := time.Now()
	_, err = tx.Exec(ctx,
		`UPDATE bookings SET status = $2, cancelled_at = $3 WHERE id = $1`,
		bookingID, entity.BookingStatusCancelled, now,
	)
	if err != nil {
		return nil, fmt.Errorf("mark booking %s cancelled: %w", bookingID.String(), err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit cancel transaction: %w", err)
	}

	booking.Status = entity.BookingStatusCancelled
	booking.CancelledAt = &now
	return booking, nil
}

func (r *bookingRepository) CheckIn(ctx context.Context, bookingID uuid.UUID) (*entity.Booking, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin check-in transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	booking, err := scanBooking(tx.QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1 FOR UPDATE`,
		bookingID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock booking row %s: %w", bookingID.String(), err)
	}

	switch booking.Status {
	case entity.BookingStatusCheckedIn:
		return nil, ErrAlreadyCheckedIn
	case entity.BookingStatusCancelled:
		return nil, ErrBookingCancelled
	}

	_, err = tx.Exec(ctx,
		`UPDATE bookings SET status = $2 WHERE id = $1`,
		bookingID, entity.BookingStatusCheckedIn,
	)
	if err != nil {
		return nil, fmt.Errorf("mark booking %s checked in: %w", bookingID.String(), err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit check-in transaction: %w", err)
	}

	booking.Status = entity.BookingStatusCheckedIn
	return booking, nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	booking, err := scanBooking(r.db.QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1`,
		id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find booking by ID %s: %w", id.String(), err)
	}
	return booking, nil
}

func (r *bookingRepository) FindByParticipantID(ctx context.Context, participantID uuid.UUID) ([]*entity.Booking, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+bookingColumns+` FROM bookings
		 WHERE participant_id = $1
		 ORDER BY booked_at DESC`,
		participantID,
	)
	if err != nil {
		return nil, fmt.Errorf("find bookings by participant %s: %w", participantID.String(), err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

func (r *bookingRepository) FindByEventID(ctx context.Context, eventID uuid.UUID) ([]*entity.Booking, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+bookingColumns+` FROM bookings
		 WHERE event_id = $1
		 ORDER BY booked_at`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("find bookings by event %s: %w", eventID.String(), err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

func collectBookings(rows pgx.Rows) ([]*entity.Booking, error) {
	var bookings []*entity.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, booking)
	}
	return bookings, rows.Err()
}
