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

type OTPRepository interface {
	Create(ctx context.Context, otp *entity.OTP) error

	// FindLatestActive returns the newest unverified, unexpired code
	// for the phone number and purpose.
	FindLatestActive(ctx context.Context, phone string, purpose entity.OTPPurpose) (*entity.OTP, error)

	IncrementAttempts(ctx context.Context, id uuid.UUID) error
	MarkVerified(ctx context.Context, id uuid.UUID) error
}

type otpRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewOTPRepository(db database.PgxIface, log *zap.Logger) OTPRepository {
	return &otpRepository{
		db:  db,
		log: log.With(zap.String("repository", "otp")),
	}
}

func (r *otpRepository) Create(ctx context.Context, otp *entity.OTP) error {
	otp.CreatedAt = time.Now()

	_, err := r.db.Exec(ctx,
		`INSERT INTO otp_codes (id, phone_number, code, purpose, expires_at, verified, attempts, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		otp.ID,
		otp.PhoneNumber,
		otp.Code,
		otp.Purpose,
		otp.ExpiresAt,
		otp.Verified,
		otp.Attempts,
		otp.CreatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create OTP", zap.Error(err), zap.String("purpose", string(otp.Purpose)))
		return fmt.Errorf("insert otp: %w", err)
	}
	return nil
}

func (r *otpRepository) FindLatestActive(ctx context.Context, phone string, purpose entity.OTPPurpose) (*entity.OTP, error) {
	var o entity.OTP
	err := r.db.QueryRow(ctx,
		`SELECT id, phone_number, code, purpose, expires_at, verified, attempts, created_at
		 FROM otp_codes
		 WHERE phone_number = $1 AND purpose = $2 AND verified = FALSE AND expires_at > NOW()
		 ORDER BY created_at DESC
		 LIMIT 1`,
		phone, purpose,
	).Scan(&o.ID, &o.PhoneNumber, &o.Code, &o.Purpose, &o.ExpiresAt, &o.Verified, &o.Attempts, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOTPNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find active otp: %w", err)
	}
	return &o, nil
}

func (r *otpRepository) IncrementAttempts(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx,
		`UPDATE otp_codes SET attempts = attempts + 1 WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("increment otp attempts: %w", err)
	}
	return nil
}

func (r *otpRepository) MarkVerified(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx,
		`UPDATE otp_codes SET verified = TRUE WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("mark otp verified: %w", err)
	}
	return nil
}
