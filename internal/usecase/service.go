package usecase

import (
	"screening-booking/internal/data/repository"
	"screening-booking/internal/notification"
	"screening-booking/pkg/utils"

	"go.uber.org/zap"
)

// Service bundles every use case behind one constructor for wiring.
type Service struct {
	Auth    AuthService
	Event   EventService
	Booking BookingService
	Result  ResultService
}

func NewService(
	repo *repository.Repository,
	sms notification.Sender,
	config *utils.Config,
	log *zap.Logger,
) *Service {
	return &Service{
		Auth:    NewAuthService(repo, sms, config, log),
		Event:   NewEventService(repo, log),
		Booking: NewBookingService(repo, sms, config, log),
		Result:  NewResultService(repo, sms, log),
	}
}
