package repository

import (
	"screening-booking/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	Admin       AdminRepository
	Participant ParticipantRepository
	Session     SessionRepository
	OTP         OTPRepository
	Event       EventRepository
	Booking     BookingRepository
	Result      ResultRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	ledger := NewSlotLedger(log)

	return &Repository{
		Admin:       NewAdminRepository(db, log),
		Participant: NewParticipantRepository(db, log),
		Session:     NewSessionRepository(db, log),
		OTP:         NewOTPRepository(db, log),
		Event:       NewEventRepository(db, ledger, log),
		Booking:     NewBookingRepository(db, ledger, log),
		Result:      NewResultRepository(db, log),
	}
}
