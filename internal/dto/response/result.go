package response

import (
	"time"

	"screening-booking/internal/data/entity"
)

type ResultResponse struct {
	ID         string     `json:"id"`
	BookingID  string     `json:"booking_id"`
	Category   string     `json:"result_category"`
	Notes      string     `json:"result_notes,omitempty"`
	FileURL    string     `json:"result_file_url,omitempty"`
	UploadedAt time.Time  `json:"uploaded_at"`
	SMSSent    bool       `json:"sms_sent"`
	SMSSentAt  *time.Time `json:"sms_sent_at,omitempty"`
}

func ResultToResponse(r *entity.TestResult) ResultResponse {
	return ResultResponse{
		ID:         r.ID.String(),
		BookingID:  r.BookingID.String(),
		Category:   string(r.Category),
		Notes:      r.Notes,
		FileURL:    r.FileURL,
		UploadedAt: r.UploadedAt,
		SMSSent:    r.SMSSent,
		SMSSentAt:  r.SMSSentAt,
	}
}
