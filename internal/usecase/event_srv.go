package usecase

import (
	"context"
	"fmt"
	"time"

	"screening-booking/internal/data/entity"
	"screening-booking/internal/data/repository"
	"screening-booking/internal/dto/request"
	"screening-booking/internal/dto/response"
	"screening-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type EventService interface {
	// Admin endpoints
	Create(ctx context.Context, adminID string, req *request.CreateEventRequest) (*response.EventResponse, error)
	Update(ctx context.Context, adminID, eventID string, req *request.UpdateEventRequest) (*response.EventResponse, error)
	Delete(ctx context.Context, adminID, eventID string) error
	GetWithParticipants(ctx context.Context, eventID string) (*response.EventWithParticipantsResponse, error)

	// Public endpoints
	List(ctx context.Context, publishedOnly bool, page *request.PaginatedRequest) (*response.PaginatedResponse[response.EventResponse], error)
	GetByID(ctx context.Context, eventID string) (*response.EventResponse, error)
}

type eventService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewEventService(repo *repository.Repository, log *zap.Logger) EventService {
	return &eventService{
		repo: repo,
		log:  log.With(zap.String("service", "event")),
	}
}

// ==================== ADMIN METHODS ====================

func (s *eventService) Create(ctx context.Context, adminID string, req *request.CreateEventRequest) (*response.EventResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create event validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	adminUUID, err := uuid.Parse(adminID)
	if err != nil {
		return nil, fmt.Errorf("invalid admin ID format %s: %w", adminID, err)
	}

	eventDate, eventTime, err := parseSchedule(req.EventDate, req.EventTime)
	if err != nil {
		return nil, err
	}

	latitude, longitude, err := parseCoordinates(req.Latitude, req.Longitude)
	if err != nil {
		return nil, err
	}

	duplicate, err := s.repo.Event.FindDuplicate(ctx, req.Name, eventDate, req.Address, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if duplicate != nil {
		return nil, repository.ErrDuplicateEvent
	}

	event := &entity.Event{
		Base:           entity.Base{ID: uuid.New()},
		Name:           req.Name,
		EventDate:      eventDate,
		EventTime:      eventTime,
		Address:        req.Address,
		Latitude:       latitude,
		Longitude:      longitude,
		TotalSlots:     req.TotalSlots,
		AvailableSlots: req.TotalSlots,
		AdditionalInfo: req.AdditionalInfo,
		Status:         entity.EventStatus(req.Status),
		CreatedBy:      adminUUID,
	}

	if err := s.repo.Event.Create(ctx, event); err != nil {
		return nil, err
	}

	s.log.Info("Event created",
		zap.String("event_id", event.ID.String()),
		zap.String("name", event.Name),
		zap.Int("total_slots", event.TotalSlots),
	)

	resp := response.EventToResponse(event)
	return &resp, nil
}

// Update rewrites an owned event. Shrinking capacity below the number
// of active bookings is rejected; otherwise available slots are
// recomputed so booked count is preserved.
func (s *eventService) Update(ctx context.Context, adminID, eventID string, req *request.UpdateEventRequest) (*response.EventResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Update event validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	adminUUID, err := uuid.Parse(adminID)
	if err != nil {
		return nil, fmt.Errorf("invalid admin ID format %s: %w", adminID, err)
	}

	eventUUID, err := uuid.Parse(eventID)
	if err != nil {
		return nil, fmt.Errorf("invalid event ID format %s: %w", eventID, err)
	}

	event, err := s.repo.Event.FindByID(ctx, eventUUID)
	if err != nil {
		return nil, err
	}
	if event.CreatedBy != adminUUID {
		return nil, ErrNotEventOwner
	}

	eventDate, eventTime, err := parseSchedule(req.EventDate, req.EventTime)
	if err != nil {
		return nil, err
	}

	latitude, longitude, err := parseCoordinates(req.Latitude, req.Longitude)
	if err != nil {
		return nil, err
	}

	duplicate, err := s.repo.Event.FindDuplicate(ctx, req.Name, eventDate, req.Address, eventUUID)
	if err != nil {
		return nil, err
	}
	if duplicate != nil {
		return nil, repository.ErrDuplicateEvent
	}

	event.Name = req.Name
	event.EventDate = eventDate
	event.EventTime = eventTime
	event.Address = req.Address
	event.Latitude = latitude
	event.Longitude = longitude
	event.TotalSlots = req.TotalSlots
	event.AdditionalInfo = req.AdditionalInfo
	event.Status = entity.EventStatus(req.Status)

	// The repository resizes capacity under the event row lock and
	// fills in the recomputed available slot count.
	if err := s.repo.Event.Update(ctx, event); err != nil {
		return nil, err
	}

	s.log.Info("Event updated",
		zap.String("event_id", eventID),
		zap.Int("total_slots", event.TotalSlots),
		zap.Int("available_slots", event.AvailableSlots),
	)

	resp := response.EventToResponse(event)
	return &resp, nil
}

// Delete removes an owned event that nobody has ever booked. Once a
// booking row exists, even a cancelled one, deletion is refused so
// booking history keeps a valid event to point at.
func (s *eventService) Delete(ctx context.Context, adminID, eventID string) error {
	adminUUID, err := uuid.Parse(adminID)
	if err != nil {
		return fmt.Errorf("invalid admin ID format %s: %w", adminID, err)
	}

	eventUUID, err := uuid.Parse(eventID)
	if err != nil {
		return fmt.Errorf("invalid event ID format %s: %w", eventID, err)
	}

	event, err := s.repo.Event.FindByID(ctx, eventUUID)
	if err != nil {
		return err
	}
	if event.CreatedBy != adminUUID {
		return ErrNotEventOwner
	}

	if err := s.repo.Event.Delete(ctx, eventUUID); err != nil {
		return err
	}

	s.log.Info("Event deleted",
		zap.String("event_id", eventID),
		zap.String("admin_id", adminID),
	)
	return nil
}

func (s *eventService) GetWithParticipants(ctx context.Context, eventID string) (*response.EventWithParticipantsResponse, error) {
	eventUUID, err := uuid.Parse(eventID)
	if err != nil {
		return nil, fmt.Errorf("invalid event ID format %s: %w", eventID, err)
	}

	event, err := s.repo.Event.FindByID(ctx, eventUUID)
	if err != nil {
		return nil, err
	}

	bookings, err := s.repo.Booking.FindByEventID(ctx, eventUUID)
	if err != nil {
		return nil, err
	}

	rows := make([]response.EventParticipantResponse, 0, len(bookings))
	for _, booking := range bookings {
		participant, err := s.repo.Participant.FindByID(ctx, booking.ParticipantID)
		if err != nil {
			return nil, fmt.Errorf("load participant for booking %s: %w", booking.ID.String(), err)
		}
		rows = append(rows, response.EventParticipantResponse{
			ParticipantID: participant.ID.String(),
			Name:          participant.Name,
			PhoneNumber:   participant.PhoneNumber,
			MyKadID:       participant.MyKadID,
			BookingID:     booking.ID.String(),
			Reference:     booking.Reference,
			BookingStatus: string(booking.Status),
			BookedAt:      booking.BookedAt,
		})
	}

	return &response.EventWithParticipantsResponse{
		Event:        response.EventToResponse(event),
		Participants: rows,
	}, nil
}

// ==================== PUBLIC METHODS ====================

func (s *eventService) List(ctx context.Context, publishedOnly bool, page *request.PaginatedRequest) (*response.PaginatedResponse[response.EventResponse], error) {
	events, err := s.repo.Event.List(ctx, publishedOnly, page.Limit(), page.Offset())
	if err != nil {
		s.log.Error("Failed to list events", zap.Error(err))
		return nil, fmt.Errorf("list events: %w", err)
	}

	total, err := s.repo.Event.Count(ctx, publishedOnly)
	if err != nil {
		s.log.Error("Failed to count events", zap.Error(err))
		return nil, fmt.Errorf("count events: %w", err)
	}

	responses := make([]response.EventResponse, 0, len(events))
	for _, event := range events {
		responses = append(responses, response.EventToResponse(event))
	}

	return response.NewPaginatedResponse(responses, page.Page, page.Limit(), total), nil
}

func (s *eventService) GetByID(ctx context.Context, eventID string) (*response.EventResponse, error) {
	eventUUID, err := uuid.Parse(eventID)
	if err != nil {
		return nil, fmt.Errorf("invalid event ID format %s: %w", eventID, err)
	}

	event, err := s.repo.Event.FindByID(ctx, eventUUID)
	if err != nil {
		return nil, err
	}

	resp := response.EventToResponse(event)
	return &resp, nil
}

// ==================== HELPERS ====================

// parseSchedule validates the date and time strings and rejects
// schedules already in the past.
func parseSchedule(dateStr, timeStr string) (time.Time, string, error) {
	eventDate, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("invalid event date %q, expected YYYY-MM-DD", dateStr)
	}

	parsedTime, err := time.Parse("15:04", timeStr)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("invalid event time %q, expected HH:MM", timeStr)
	}

	startsAt := time.Date(
		eventDate.Year(), eventDate.Month(), eventDate.Day(),
		parsedTime.Hour(), parsedTime.Minute(), 0, 0, time.Local,
	)
	if startsAt.Before(time.Now()) {
		return time.Time{}, "", ErrEventInPast
	}

	return eventDate, parsedTime.Format("15:04"), nil
}

func parseCoordinates(latStr, lngStr *string) (decimal.NullDecimal, decimal.NullDecimal, error) {
	var latitude, longitude decimal.NullDecimal

	if latStr != nil && *latStr != "" {
		lat, err := decimal.NewFromString(*latStr)
		if err != nil {
			return latitude, longitude, fmt.Errorf("invalid latitude %q: %w", *latStr, err)
		}
		latitude = decimal.NullDecimal{Decimal: lat, Valid: true}
	}

	if lngStr != nil && *lngStr != "" {
		lng, err := decimal.NewFromString(*lngStr)
		if err != nil {
			return latitude, longitude, fmt.Errorf("invalid longitude %q: %w", *lngStr, err)
		}
		longitude = decimal.NullDecimal{Decimal: lng, Valid: true}
	}

	return latitude, longitude, nil
}
