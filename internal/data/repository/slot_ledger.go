package repository

import (
	"context"
	"errors"
	"fmt"

	"screening-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// SlotLedger owns every mutation of events.available_slots. Both
// operations take the caller's transaction as a Querier and lock the
// event row with SELECT ... FOR UPDATE, so two requests racing for the
// last slot serialize on the row instead of both reading stale
// capacity. The lock is per event: bookings against different events
// never block each other.
type SlotLedger struct {
	log *zap.Logger
}

func NewSlotLedger(log *zap.Logger) *SlotLedger {
	return &SlotLedger{
		log: log.With(zap.String("component", "slot_ledger")),
	}
}

// Reserve decrements available_slots by one while holding the row
// lock. Returns ErrEventNotFound or ErrSoldOut without mutating.
func (l *SlotLedger) Reserve(ctx context.Context, tx database.Querier, eventID uuid.UUID) error {
	var total, available int
	err := tx.QueryRow(ctx,
		`SELECT total_slots, available_slots FROM events WHERE id = $1 FOR UPDATE`,
		eventID,
	).Scan(&total, &available)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrEventNotFound
	}
	if err != nil {
		return fmt.Errorf("lock event row %s: %w", eventID.String(), err)
	}

	if available <= 0 {
		return ErrSoldOut
	}

	if _, err := tx.Exec(ctx,
		`UPDATE events SET available_slots = available_slots - 1, updated_at = NOW() WHERE id = $1`,
		eventID,
	); err != nil {
		return fmt.Errorf("decrement available slots for event %s: %w", eventID.String(), err)
	}

	return nil
}

// Resize sets a new total capacity while holding the row lock. The
// active booking count is taken inside the same transaction, so a
// booking that lands mid-edit is either counted here or blocked on
// the row lock until the resize commits. Shrinking below the active
// count fails with ErrSlotsBelowBooked and mutates nothing.
func (l *SlotLedger) Resize(ctx context.Context, tx database.Querier, eventID uuid.UUID, newTotal int) (int, error) {
	var total, available int
	err := tx.QueryRow(ctx,
		`SELECT total_slots, available_slots FROM events WHERE id = $1 FOR UPDATE`,
		eventID,
	).Scan(&total, &available)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrEventNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("lock event row %s: %w", eventID.String(), err)
	}

	var booked int
	if err := tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM bookings WHERE event_id = $1 AND status <> 'cancelled'`,
		eventID,
	).Scan(&booked); err != nil {
		return 0, fmt.Errorf("count active bookings for event %s: %w", eventID.String(), err)
	}

	if newTotal < booked {
		l.log.Warn("Rejected capacity shrink below booked count",
			zap.String("event_id", eventID.String()),
			zap.Int("requested_total", newTotal),
			zap.Int("booked", booked),
		)
		return 0, ErrSlotsBelowBooked
	}

	newAvailable := newTotal - booked
	if _, err := tx.Exec(ctx,
		`UPDATE events SET total_slots = $2, available_slots = $3, updated_at = NOW() WHERE id = $1`,
		eventID, newTotal, newAvailable,
	); err != nil {
		return 0, fmt.Errorf("resize slots for event %s: %w", eventID.String(), err)
	}

	return newAvailable, nil
}

// Release increments available_slots by one while holding the row
// lock. If the increment would exceed total_slots the ledger has
// already lost a slot somewhere (double release, lost update); the
// call fails with ErrInconsistentSlots and mutates nothing.
func (l *SlotLedger) Release(ctx context.Context, tx database.Querier, eventID uuid.UUID) error {
	var total, available int
	err := tx.QueryRow(ctx,
		`SELECT total_slots, available_slots FROM events WHERE id = $1 FOR UPDATE`,
		eventID,
	).Scan(&total, &available)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrEventNotFound
	}
	if err != nil {
		return fmt.Errorf("lock event row %s: %w", eventID.String(), err)
	}

	if available >= total {
		l.log.Error("Slot release would exceed total capacity",
			zap.String("event_id", eventID.String()),
			zap.Int("total_slots", total),
			zap.Int("available_slots", available),
		)
		return ErrInconsistentSlots
	}

	if _, err := tx.Exec(ctx,
		`UPDATE events SET available_slots = available_slots + 1, updated_at = NOW() WHERE id = $1`,
		eventID,
	); err != nil {
		return fmt.Errorf("increment available slots for event %s: %w", eventID.String(), err)
	}

	return nil
}
