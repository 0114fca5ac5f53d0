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
	"go.uber.org/zap"
)

type EventRepository interface {
	Create(ctx context.Context, event *entity.Event) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Event, error)
	List(ctx context.Context, publishedOnly bool, limit, offset int) ([]*entity.Event, error)
	Count(ctx context.Context, publishedOnly bool) (int64, error)
	Update(ctx context.Context, event *entity.Event) error
	Delete(ctx context.Context, id uuid.UUID) error

	// FindDuplicate returns a different event with the same name, date
	// and address, or nil.
	FindDuplicate(ctx context.Context, name string, date time.Time, address string, excludeID uuid.UUID) (*entity.Event, error)
}

type eventRepository struct {
	db     database.PgxIface
	ledger *SlotLedger
	log    *zap.Logger
}

func NewEventRepository(db database.PgxIface, ledger *SlotLedger, log *zap.Logger) EventRepository {
	return &eventRepository{
		db:     db,
		ledger: ledger,
		log:    log.With(zap.String("repository", "event")),
	}
}

const eventColumns = `id, name, event_date, to_char(event_time, 'HH24:MI'), address,
	latitude, longitude, total_slots, available_slots,
	COALESCE(additional_info, ''), status, created_by, created_at, updated_at`

func scanEvent(row pgx.Row) (*entity.Event, error) {
	var e entity.Event
	err := row.Scan(
		&e.ID,
		&e.Name,
		&e.EventDate,
		&e.EventTime,
		&e.Address,
		&e.Latitude,
		&e.Longitude,
		&e.TotalSlots,
		&e.AvailableSlots,
		&e.AdditionalInfo,
		&e.Status,
		&e.CreatedBy,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *eventRepository) Create(ctx context.Context, event *entity.Event) error {
	now := time.Now()
	event.CreatedAt = now
	event.UpdatedAt = now

	_, err := r.db.Exec(ctx,
		`INSERT INTO events (id, name, event_date, event_time, address, latitude, longitude,
			total_slots, available_slots, additional_info, status, created_by, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		event.ID,
		event.Name,
		event.EventDate,
		event.EventTime,
		event.Address,
		event.Latitude,
		event.Longitude,
		event.TotalSlots,
		event.AvailableSlots,
		event.AdditionalInfo,
		event.Status,
		event.CreatedBy,
		event.CreatedAt,
		event.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create event",
			zap.Error(err),
			zap.String("name", event.Name),
		)
		return fmt.Errorf("insert event %s: %w", event.Name, err)
	}
	return nil
}

func (r *eventRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Event, error) {
	event, err := scanEvent(r.db.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`,
		id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find event by ID %s: %w", id.String(), err)
	}
	return event, nil
}

func (r *eventRepository) List(ctx context.Context, publishedOnly bool, limit, offset int) ([]*entity.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events`
	args := []any{}
	if publishedOnly {
		query += ` WHERE status = $1`
		args = append(args, entity.EventStatusPublished)
	}
	query += fmt.Sprintf(` ORDER BY event_date, event_time LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []*entity.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

func (r *eventRepository) Count(ctx context.Context, publishedOnly bool) (int64, error) {
	query := `SELECT COUNT(*) FROM events`
	args := []any{}
	if publishedOnly {
		query += ` WHERE status = $1`
		args = append(args, entity.EventStatusPublished)
	}

	var total int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return total, nil
}

// Update rewrites event metadata and resizes capacity in a single
// transaction. The ledger holds the row lock across the active-booking
// count and the counter write, so a booking racing the edit cannot be
// overwritten with stale slot numbers. On success event.AvailableSlots
// carries the recomputed value.
func (r *eventRepository) Update(ctx context.Context, event *entity.Event) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin update event tx: %w", err)
	}
	defer tx.Rollback(ctx)

	available, err := r.ledger.Resize(ctx, tx, event.ID, event.TotalSlots)
	if err != nil {
		return err
	}
	event.AvailableSlots = available
	event.UpdatedAt = time.Now()

	if _, err := tx.Exec(ctx,
		`UPDATE events
		 SET name = $2, event_date = $3, event_time = $4, address = $5,
		     latitude = $6, longitude = $7, additional_info = $8, status = $9, updated_at = $10
		 WHERE id = $1`,
		event.ID,
		event.Name,
		event.EventDate,
		event.EventTime,
		event.Address,
		event.Latitude,
		event.Longitude,
		event.AdditionalInfo,
		event.Status,
		event.UpdatedAt,
	); err != nil {
		r.log.Error("Failed to update event",
			zap.Error(err),
			zap.String("event_id", event.ID.String()),
		)
		return fmt.Errorf("update event %s: %w", event.ID.String(), err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit update event tx: %w", err)
	}
	return nil
}

// Delete removes an event that has never been booked. Any booking row,
// cancelled included, keeps the event around for audit; those events
// stay editable but cannot disappear from under their history.
func (r *eventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete event tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var lockedID uuid.UUID
	err = tx.QueryRow(ctx,
		`SELECT id FROM events WHERE id = $1 FOR UPDATE`,
		id,
	).Scan(&lockedID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrEventNotFound
	}
	if err != nil {
		return fmt.Errorf("lock event row %s: %w", id.String(), err)
	}

	var bookings int
	if err := tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM bookings WHERE event_id = $1`,
		id,
	).Scan(&bookings); err != nil {
		return fmt.Errorf("count bookings for event %s: %w", id.String(), err)
	}
	if bookings > 0 {
		return ErrEventHasBookings
	}

	if _, err := tx.Exec(ctx, `DELETE FROM events WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete event %s: %w", id.String(), err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit delete event tx: %w", err)
	}

	r.log.Info("Event deleted", zap.String("event_id", id.String()))
	return nil
}

func (r *eventRepository) FindDuplicate(ctx context.Context, name string, date time.Time, address string, excludeID uuid.UUID) (*entity.Event, error) {
	event, err := scanEvent(r.db.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events
		 WHERE id <> $4 AND lower(name) = lower($1) AND event_date = $2 AND lower(address) = lower($3)
		 LIMIT 1`,
		name, date, address, excludeID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find duplicate event: %w", err)
	}
	return event, nil
}
