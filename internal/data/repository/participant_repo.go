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

type ParticipantRepository interface {
	Create(ctx context.Context, participant *entity.Participant) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Participant, error)
	FindByPhone(ctx context.Context, phone string) (*entity.Participant, error)
	FindByMyKad(ctx context.Context, mykadID string) (*entity.Participant, error)
	MarkPhoneVerified(ctx context.Context, id uuid.UUID) error
}

type participantRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewParticipantRepository(db database.PgxIface, log *zap.Logger) ParticipantRepository {
	return &participantRepository{
		db:  db,
		log: log.With(zap.String("repository", "participant")),
	}
}

const participantColumns = `id, name, phone_number, mykad_id, phone_verified, created_at, updated_at`

func scanParticipant(row pgx.Row) (*entity.Participant, error) {
	var p entity.Participant
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.PhoneNumber,
		&p.MyKadID,
		&p.PhoneVerified,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *participantRepository) Create(ctx context.Context, participant *entity.Participant) error {
	now := time.Now()
	participant.CreatedAt = now
	participant.UpdatedAt = now

	_, err := r.db.Exec(ctx,
		`INSERT INTO participants (id, name, phone_number, mykad_id, phone_verified, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		participant.ID,
		participant.Name,
		participant.PhoneNumber,
		participant.MyKadID,
		participant.PhoneVerified,
		participant.CreatedAt,
		participant.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create participant",
			zap.Error(err),
			zap.String("phone", participant.PhoneNumber),
		)
		return fmt.Errorf("insert participant: %w", err)
	}
	return nil
}

func (r *participantRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Participant, error) {
	participant, err := scanParticipant(r.db.QueryRow(ctx,
		`SELECT `+participantColumns+` FROM participants WHERE id = $1`,
		id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrParticipantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find participant by ID %s: %w", id.String(), err)
	}
	return participant, nil
}

func (r *participantRepository) FindByPhone(ctx context.Context, phone string) (*entity.Participant, error) {
	participant, err := scanParticipant(r.db.QueryRow(ctx,
		`SELECT `+participantColumns+` FROM participants WHERE phone_number = $1`,
		phone,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find participant by phone: %w", err)
	}
	return participant, nil
}

func (r *participantRepository) FindByMyKad(ctx context.Context, mykadID string) (*entity.Participant, error) {
	participant, err := scanParticipant(r.db.QueryRow(ctx,
		`SELECT `+participantColumns+` FROM participants WHERE mykad_id = $1`,
		mykadID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find participant by mykad: %w", err)
	}
	return participant, nil
}

func (r *participantRepository) MarkPhoneVerified(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx,
		`UPDATE participants SET phone_verified = TRUE, updated_at = NOW() WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("mark participant %s verified: %w", id.String(), err)
	}
	if result.RowsAffected() == 0 {
		return ErrParticipantNotFound
	}
	return nil
}
