package usecase

import (
	"context"
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

type ResultService interface {
	// Upload stores or replaces the screening result for a booking and
	// notifies the participant by SMS after the write commits.
	Upload(ctx context.Context, adminID, bookingID string, req *request.UploadResultRequest) (*response.ResultResponse, error)

	// GetForBooking returns the result for a booking the participant owns.
	GetForBooking(ctx context.Context, participantID, bookingID string) (*response.ResultResponse, error)
}

type resultService struct {
	repo *repository.Repository
	sms  notification.Sender
	log  *zap.Logger
}

func NewResultService(repo *repository.Repository, sms notification.Sender, log *zap.Logger) ResultService {
	return &resultService{
		repo: repo,
		sms:  sms,
		log:  log.With(zap.String("service", "result")),
	}
}

func (s *resultService) Upload(ctx context.Context, adminID, bookingID string, req *request.UploadResultRequest) (*response.ResultResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Upload result validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	adminUUID, err := uuid.Parse(adminID)
	if err != nil {
		return nil, fmt.Errorf("invalid admin ID format %s: %w", adminID, err)
	}

	bookingUUID, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, fmt.Errorf("invalid booking ID format %s: %w", bookingID, err)
	}

	booking, err := s.repo.Booking.FindByID(ctx, bookingUUID)
	if err != nil {
		return nil, err
	}
	if booking.Status == entity.BookingStatusCancelled {
		return nil, repository.ErrBookingCancelled
	}

	result := &entity.TestResult{
		ID:         uuid.New(),
		BookingID:  bookingUUID,
		Category:   entity.ResultCategory(req.Category),
		Notes:      req.Notes,
		FileURL:    req.FileURL,
		UploadedBy: adminUUID,
		UploadedAt: time.Now(),
	}

	if err := s.repo.Result.Upsert(ctx, result); err != nil {
		return nil, err
	}

	s.log.Info("Result uploaded",
		zap.String("booking_id", bookingID),
		zap.String("category", req.Category),
		zap.String("uploaded_by", adminID),
	)

	go s.sendResultSMS(context.WithoutCancel(ctx), booking)

	resp := response.ResultToResponse(result)
	return &resp, nil
}

func (s *resultService) GetForBooking(ctx context.Context, participantID, bookingID string) (*response.ResultResponse, error) {
	participantUUID, err := uuid.Parse(participantID)
	if err != nil {
		return nil, fmt.Errorf("invalid participant ID format %s: %w", participantID, err)
	}

	bookingUUID, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, fmt.Errorf("invalid booking ID format %s: %w", bookingID, err)
	}

	booking, err := s.repo.Booking.FindByID(ctx, bookingUUID)
	if err != nil {
		return nil, err
	}
	if booking.ParticipantID != participantUUID {
		return nil, repository.ErrForbidden
	}

	result, err := s.repo.Result.FindByBookingID(ctx, bookingUUID)
	if err != nil {
		return nil, err
	}

	resp := response.ResultToResponse(result)
	return &resp, nil
}

// sendResultSMS notifies the participant their result is ready. The
// message deliberately never contains the category or any clinical
// detail; those stay behind authentication.
func (s *resultService) sendResultSMS(ctx context.Context, booking *entity.Booking) {
	participant, err := s.repo.Participant.FindByID(ctx, booking.ParticipantID)
	if err != nil {
		s.log.Error("Failed to load participant for result SMS",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
		)
		return
	}

	event, err := s.repo.Event.FindByID(ctx, booking.EventID)
	if err != nil {
		s.log.Error("Failed to load event for result SMS",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
		)
		return
	}

	msg := notification.ResultReadyMessage(event.Name, booking.Reference)
	err = s.sms.Send(ctx, participant.PhoneNumber, msg)
	monitoring.ObserveSMS("result_ready", err)
	if err != nil {
		s.log.Error("Failed to send result SMS",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
		)
		return
	}

	result, err := s.repo.Result.FindByBookingID(ctx, booking.ID)
	if err != nil {
		s.log.Error("Failed to reload result after SMS", zap.Error(err))
		return
	}
	if err := s.repo.Result.MarkSMSSent(ctx, result.ID); err != nil {
		s.log.Error("Failed to mark result SMS as sent", zap.Error(err))
	}
}
