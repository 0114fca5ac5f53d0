package response

import (
	"time"

	"screening-booking/internal/data/entity"
)

type ParticipantResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	PhoneNumber   string    `json:"phone_number"`
	MyKadID       string    `json:"mykad_id"`
	PhoneVerified bool      `json:"phone_verified"`
	CreatedAt     time.Time `json:"created_at"`
}

func ParticipantToResponse(p *entity.Participant) ParticipantResponse {
	return ParticipantResponse{
		ID:            p.ID.String(),
		Name:          p.Name,
		PhoneNumber:   p.PhoneNumber,
		MyKadID:       p.MyKadID,
		PhoneVerified: p.PhoneVerified,
		CreatedAt:     p.CreatedAt,
	}
}

// EventParticipantResponse is the admin view of one attendee row.
type EventParticipantResponse struct {
	ParticipantID string    `json:"participant_id"`
	Name          string    `json:"name"`
	PhoneNumber   string    `json:"phone_number"`
	MyKadID       string    `json:"mykad_id"`
	BookingID     string    `json:"booking_id"`
	Reference     string    `json:"booking_reference"`
	BookingStatus string    `json:"booking_status"`
	BookedAt      time.Time `json:"booked_at"`
}
