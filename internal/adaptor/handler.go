package adaptor

import (
	"errors"
	"net/http"
	"strings"

	"screening-booking/internal/data/repository"
	"screening-booking/internal/usecase"
	"screening-booking/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Auth    *AuthHandler
	Event   *EventHandler
	Booking *BookingHandler
	Result  *ResultHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Auth:    NewAuthHandler(service.Auth, log),
		Event:   NewEventHandler(service.Event, log),
		Booking: NewBookingHandler(service.Booking, log),
		Result:  NewResultHandler(service.Result, log),
	}
}

// handleServiceError maps service and repository errors onto HTTP
// status codes. Anything unmapped is a 500 with a generic message so
// internals never leak to clients.
func handleServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	switch {
	case errors.Is(err, repository.ErrEventNotFound),
		errors.Is(err, repository.ErrParticipantNotFound),
		errors.Is(err, repository.ErrAdminNotFound),
		errors.Is(err, repository.ErrBookingNotFound),
		errors.Is(err, repository.ErrResultNotFound),
		errors.Is(err, repository.ErrOTPNotFound):
		log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, err.Error())

	case errors.Is(err, repository.ErrSoldOut),
		errors.Is(err, repository.ErrDuplicateBooking),
		errors.Is(err, repository.ErrAlreadyCancelled),
		errors.Is(err, repository.ErrAlreadyCheckedIn),
		errors.Is(err, repository.ErrBookingCancelled),
		errors.Is(err, repository.ErrPhoneTaken),
		errors.Is(err, repository.ErrMyKadTaken),
		errors.Is(err, repository.ErrEmailTaken),
		errors.Is(err, repository.ErrDuplicateEvent),
		errors.Is(err, repository.ErrEventHasBookings):
		log.Warn(operation+" failed - conflict", zap.Error(err))
		utils.ResponseConflict(w, err.Error())

	case errors.Is(err, repository.ErrForbidden),
		errors.Is(err, usecase.ErrNotEventOwner),
		errors.Is(err, usecase.ErrPhoneNotVerified):
		log.Warn(operation+" failed - forbidden", zap.Error(err))
		utils.ResponseForbidden(w, err.Error())

	case errors.Is(err, usecase.ErrInvalidCredentials),
		errors.Is(err, usecase.ErrInvalidOTP),
		errors.Is(err, usecase.ErrTooManyAttempts):
		log.Warn(operation+" failed - unauthorized", zap.Error(err))
		utils.ResponseUnauthorized(w, err.Error())

	case errors.Is(err, usecase.ErrEventNotOpen),
		errors.Is(err, usecase.ErrEventInPast),
		errors.Is(err, repository.ErrSlotsBelowBooked):
		log.Warn(operation+" failed - rejected", zap.Error(err))
		utils.ResponseBadRequest(w, err.Error(), nil)

	case strings.Contains(err.Error(), "validation failed"),
		strings.Contains(err.Error(), "invalid"):
		log.Warn(operation+" failed - bad input", zap.Error(err))
		utils.ResponseBadRequest(w, err.Error(), nil)

	default:
		log.Error(operation+" failed", zap.Error(err))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
