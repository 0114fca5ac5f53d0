package repository

import (
	"context"
	"errors"
	"fmt"

	"screening-booking/internal/data/entity"
	"screening-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type ResultRepository interface {
	// Upsert inserts the result for a booking, or replaces category,
	// notes and file URL when one already exists.
	Upsert(ctx context.Context, result *entity.TestResult) error

	FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*entity.TestResult, error)
	MarkSMSSent(ctx context.Context, id uuid.UUID) error
}

type resultRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewResultRepository(db database.PgxIface, log *zap.Logger) ResultRepository {
	return &resultRepository{
		db:  db,
		log: log.With(zap.String("repository", "result")),
	}
}

func (r *resultRepository) Upsert(ctx context.Context, result *entity.TestResult) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO test_results (id, booking_id, result_category, result_notes, result_file_url,
			uploaded_by, uploaded_at, sms_sent)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE)
		 ON CONFLICT (booking_id) DO UPDATE
		 SET result_category = EXCLUDED.result_category,
		     result_notes = EXCLUDED.result_notes,
		     result_file_url = EXCLUDED.result_file_url,
		     uploaded_by = EXCLUDED.uploaded_by,
		     uploaded_at = EXCLUDED.uploaded_at,
		     sms_sent = FALSE,
		     sms_sent_at = NULL`,
		result.ID,
		result.BookingID,
		result.Category,
		result.Notes,
		result.FileURL,
		result.UploadedBy,
		result.UploadedAt,
	)
	if err != nil {
		r.log.Error("Failed to upsert test result",
			zap.Error(err),
			zap.String("booking_id", result.BookingID.String()),
		)
		return fmt.Errorf("upsert test result: %w", err)
	}
	return nil
}

func (r *resultRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*entity.TestResult, error) {
	var t entity.TestResult
	err := r.db.QueryRow(ctx,
		`SELECT id, booking_id, result_category, COALESCE(result_notes, ''),
			COALESCE(result_file_url, ''), uploaded_by, uploaded_at, sms_sent, sms_sent_at
		 FROM test_results
		 WHERE booking_id = $1`,
		bookingID,
	).Scan(&t.ID, &t.BookingID, &t.Category, &t.Notes, &t.FileURL, &t.UploadedBy, &t.UploadedAt, &t.SMSSent, &t.SMSSentAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrResultNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find result for booking %s: %w", bookingID.String(), err)
	}
	return &t, nil
}

func (r *resultRepository) MarkSMSSent(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx,
		`UPDATE test_results SET sms_sent = TRUE, sms_sent_at = NOW() WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("mark result sms sent: %w", err)
	}
	return nil
}
