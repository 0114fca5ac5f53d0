package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"screening-booking/internal/data/entity"
	"screening-booking/internal/data/repository"
	"screening-booking/internal/dto/request"
	"screening-booking/internal/dto/response"
	"screening-booking/internal/monitoring"
	"screening-booking/internal/notification"
	"screening-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingService interface {
	// Participant endpoints
	Book(ctx context.Context, participantID string, req *request.CreateBookingRequest) (*response.BookingResponse, error)
	Cancel(ctx context.Context, participantID, bookingID string) (*response.CancelBookingResponse, error)
	ListByParticipant(ctx context.Context, participantID string) ([]response.BookingResponse, error)

	// Admin endpoints
	GetByID(ctx context.Context, bookingID string) (*response.BookingResponse, error)
	CheckIn(ctx context.Context, bookingID string) (*response.BookingResponse, error)
}

type bookingService struct {
	repo   *repository.Repository
	sms    notification.Sender
	config *utils.Config
	log    *zap.Logger

	// newReference is swapped out in tests to force collisions.
	newReference func() string
}

func NewBookingService(
	repo *repository.Repository,
	sms notification.Sender,
	config *utils.Config,
	log *zap.Logger,
) BookingService {
	prefix := config.Booking.ReferencePrefix
	return &bookingService{
		repo:   repo,
		sms:    sms,
		config: config,
		log:    log.With(zap.String("service", "booking")),
		newReference: func() string {
			return utils.GenerateBookingReference(prefix)
		},
	}
}

// Book reserves one slot for the participant and persists a confirmed
// booking, all in one store transaction. A reference collision rolls
// the whole attempt back (reservation included) and is retried with a
// fresh code a bounded number of times.
func (s *bookingService) Book(ctx context.Context, participantID string, req *request.CreateBookingRequest) (*response.BookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create booking validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	participantUUID, err := uuid.Parse(participantID)
	if err != nil {
		return nil, fmt.Errorf("invalid participant ID format %s: %w", participantID, err)
	}

	eventUUID, err := uuid.Parse(req.EventID)
	if err != nil {
		return nil, fmt.Errorf("invalid event ID format %s: %w", req.EventID, err)
	}

	participant, err := s.repo.Participant.FindByID(ctx, participantUUID)
	if err != nil {
		return nil, err
	}
	if !participant.PhoneVerified {
		return nil, ErrPhoneNotVerified
	}

	event, err := s.repo.Event.FindByID(ctx, eventUUID)
	if err != nil {
		return nil, err
	}
	if event.Status != entity.EventStatusPublished {
		return nil, ErrEventNotOpen
	}

	attempts := s.config.Booking.ReferenceAttempts
	if attempts <= 0 {
		attempts = 5
	}

	var booking *entity.Booking
	for i := 0; i < attempts; i++ {
		candidate := &entity.Booking{
			ID:            uuid.New(),
			Reference:     s.newReference(),
			ParticipantID: participantUUID,
			EventID:       eventUUID,
			Status:        entity.BookingStatusConfirmed,
			BookedAt:      time.Now(),
		}

		err = s.repo.Booking.Create(ctx, candidate)
		if errors.Is(err, repository.ErrReferenceTaken) {
			monitoring.ObserveReferenceRetry()
			s.log.Warn("Booking reference collision, retrying",
				zap.String("reference", candidate.Reference),
				zap.Int("attempt", i+1),
			)
			continue
		}
		if err != nil {
			monitoring.ObserveBooking("book", "rejected")
			return nil, err
		}

		booking = candidate
		break
	}

	if booking == nil {
		// Five collisions in a row points at a corrupted uniqueness
		// index or a broken random source, not bad luck.
		monitoring.ObserveBooking("book", "reference_exhausted")
		s.log.Error("Booking reference generation exhausted",
			zap.String("participant_id", participantID),
			zap.String("event_id", req.EventID),
			zap.Int("attempts", attempts),
		)
		return nil, repository.ErrReferenceExhausted
	}

	monitoring.ObserveBooking("book", "confirmed")
	s.log.Info("Booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("reference", booking.Reference),
		zap.String("participant_id", participantID),
		zap.String("event_id", req.EventID),
	)

	// Notify strictly after commit; delivery failure never unwinds the
	// booking.
	go s.sendConfirmationSMS(context.WithoutCancel(ctx), participant, event, booking)

	resp := response.BookingToResponse(booking, event)
	return &resp, nil
}

// Cancel flips an owned booking to cancelled and returns its slot to
// the event. Cancelling twice yields ErrAlreadyCancelled with no
// ledger effect.
func (s *bookingService) Cancel(ctx context.Context, participantID, bookingID string) (*response.CancelBookingResponse, error) {
	participantUUID, err := uuid.Parse(participantID)
	if err != nil {
		return nil, fmt.Errorf("invalid participant ID format %s: %w", participantID, err)
	}

	bookingUUID, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, fmt.Errorf("invalid booking ID format %s: %w", bookingID, err)
	}

	booking, err := s.repo.Booking.Cancel(ctx, bookingUUID, participantUUID)
	if err != nil {
		monitoring.ObserveBooking("cancel", "rejected")
		return nil, err
	}

	monitoring.ObserveBooking("cancel", "cancelled")
	s.log.Info("Booking cancelled",
		zap.String("booking_id", bookingID),
		zap.String("reference", booking.Reference),
		zap.String("participant_id", participantID),
	)

	go s.sendCancellationSMS(context.WithoutCancel(ctx), participantUUID, booking)

	return &response.CancelBookingResponse{
		Message:       "Booking cancelled successfully.",
		Reference:     booking.Reference,
		SlotsReleased: 1,
	}, nil
}

func (s *bookingService) ListByParticipant(ctx context.Context, participantID string) ([]response.BookingResponse, error) {
	participantUUID, err := uuid.Parse(participantID)
	if err != nil {
		return nil, fmt.Errorf("invalid participant ID format %s: %w", participantID, err)
	}

	bookings, err := s.repo.Booking.FindByParticipantID(ctx, participantUUID)
	if err != nil {
		s.log.Error("Failed to list participant bookings",
			zap.Error(err),
			zap.String("participant_id", participantID),
		)
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	responses := make([]response.BookingResponse, 0, len(bookings))
	for _, booking := range bookings {
		event, err := s.repo.Event.FindByID(ctx, booking.EventID)
		if err != nil {
			// Bookings always reference an existing event; a miss here
			// is a data problem worth surfacing.
			return nil, fmt.Errorf("load event for booking %s: %w", booking.ID.String(), err)
		}
		responses = append(responses, response.BookingToResponse(booking, event))
	}

	return responses, nil
}

// ==================== ADMIN METHODS ====================

func (s *bookingService) GetByID(ctx context.Context, bookingID string) (*response.BookingResponse, error) {
	bookingUUID, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, fmt.Errorf("invalid booking ID format %s: %w", bookingID, err)
	}

	booking, err := s.repo.Booking.FindByID(ctx, bookingUUID)
	if err != nil {
		return nil, err
	}

	event, err := s.repo.Event.FindByID(ctx, booking.EventID)
	if err != nil {
		return nil, fmt.Errorf("load event for booking %s: %w", bookingID, err)
	}

	resp := response.BookingToResponse(booking, event)
	return &resp, nil
}

// CheckIn is a plain state flip with no capacity effect.
func (s *bookingService) CheckIn(ctx context.Context, bookingID string) (*response.BookingResponse, error) {
	bookingUUID, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, fmt.Errorf("invalid booking ID format %s: %w", bookingID, err)
	}

	booking, err := s.repo.Booking.CheckIn(ctx, bookingUUID)
	if err != nil {
		monitoring.ObserveBooking("check_in", "rejected")
		return nil, err
	}

	monitoring.ObserveBooking("check_in", "checked_in")
	s.log.Info("Booking checked in",
		zap.String("booking_id", bookingID),
		zap.String("reference", booking.Reference),
	)

	resp := response.BookingToResponse(booking, nil)
	return &resp, nil
}

// ==================== NOTIFICATIONS ====================

func (s *bookingService) sendConfirmationSMS(ctx context.Context, participant *entity.Participant, event *entity.Event, booking *entity.Booking) {
	msg := notification.BookingConfirmedMessage(
		event.Name,
		event.EventDate.Format("2006-01-02"),
		event.EventTime,
		booking.Reference,
	)
	err := s.sms.Send(ctx, participant.PhoneNumber, msg)
	monitoring.ObserveSMS("booking_confirmed", err)
	if err != nil {
		s.log.Error("Failed to send booking confirmation SMS",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
		)
	}
}

func (s *bookingService) sendCancellationSMS(ctx context.Context, participantID uuid.UUID, booking *entity.Booking) {
	participant, err := s.repo.Participant.FindByID(ctx, participantID)
	if err != nil {
		s.log.Error("Failed to load participant for cancellation SMS",
			zap.Error(err),
			zap.String("participant_id", participantID.String()),
		)
		return
	}

	msg := notification.BookingCancelledMessage(booking.Reference)
	err = s.sms.Send(ctx, participant.PhoneNumber, msg)
	monitoring.ObserveSMS("booking_cancelled", err)
	if err != nil {
		s.log.Error("Failed to send booking cancellation SMS",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
		)
	}
}
