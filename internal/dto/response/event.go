package response

import (
	"time"

	"screening-booking/internal/data/entity"
)

type EventResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	EventDate      string    `json:"event_date"`
	EventTime      string    `json:"event_time"`
	Address        string    `json:"address"`
	Latitude       *string   `json:"latitude,omitempty"`
	Longitude      *string   `json:"longitude,omitempty"`
	TotalSlots     int       `json:"total_slots"`
	AvailableSlots int       `json:"available_slots"`
	AdditionalInfo string    `json:"additional_info,omitempty"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

func EventToResponse(e *entity.Event) EventResponse {
	resp := EventResponse{
		ID:             e.ID.String(),
		Name:           e.Name,
		EventDate:      e.EventDate.Format("2006-01-02"),
		EventTime:      e.EventTime,
		Address:        e.Address,
		TotalSlots:     e.TotalSlots,
		AvailableSlots: e.AvailableSlots,
		AdditionalInfo: e.AdditionalInfo,
		Status:         string(e.Status),
		CreatedAt:      e.CreatedAt,
	}

	if e.Latitude.Valid {
		lat := e.Latitude.Decimal.String()
		resp.Latitude = &lat
	}
	if e.Longitude.Valid {
		lng := e.Longitude.Decimal.String()
		resp.Longitude = &lng
	}

	return resp
}

type EventWithParticipantsResponse struct {
	Event        EventResponse              `json:"event"`
	Participants []EventParticipantResponse `json:"participants"`
}
