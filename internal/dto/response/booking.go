package response

import (
	"time"

	"screening-booking/internal/data/entity"
)

type BookingResponse struct {
	ID          string         `json:"id"`
	Reference   string         `json:"booking_reference"`
	Status      string         `json:"booking_status"`
	BookedAt    time.Time      `json:"booked_at"`
	CancelledAt *time.Time     `json:"cancelled_at,omitempty"`
	Event       *EventResponse `json:"event,omitempty"`
}

func BookingToResponse(b *entity.Booking, event *entity.Event) BookingResponse {
	resp := BookingResponse{
		ID:          b.ID.String(),
		Reference:   b.Reference,
		Status:      string(b.Status),
		BookedAt:    b.BookedAt,
		CancelledAt: b.CancelledAt,
	}
	if event != nil {
		eventResp := EventToResponse(event)
		resp.Event = &eventResp
	}
	return resp
}

type CancelBookingResponse struct {
	Message       string `json:"message"`
	Reference     string `json:"booking_reference"`
	SlotsReleased int    `json:"slots_released"`
}
