package entity

import (
	"time"

	"github.com/google/uuid"
)

type ResultCategory string

const (
	ResultCategoryNormal   ResultCategory = "normal"
	ResultCategoryFollowUp ResultCategory = "follow_up_required"
)

type TestResult struct {
	ID             uuid.UUID      `db:"id"`
	BookingID      uuid.UUID      `db:"booking_id"`
	Category       ResultCategory `db:"result_category"`
	Notes          string         `db:"result_notes"`
	FileURL        string         `db:"result_file_url"`
	UploadedBy     uuid.UUID      `db:"uploaded_by"`
	UploadedAt     time.Time      `db:"uploaded_at"`
	SMSSent        bool           `db:"sms_sent"`
	SMSSentAt      *time.Time     `db:"sms_sent_at"`
}
