package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type EventStatus string

const (
	EventStatusDraft     EventStatus = "draft"
	EventStatusPublished EventStatus = "published"
)

// Event is a screening drive with a fixed capacity. AvailableSlots is
// mutated only through the slot ledger; the invariant
// 0 <= AvailableSlots <= TotalSlots holds at every commit point.
type Event struct {
	Base
	Name           string              `db:"name"`
	EventDate      time.Time           `db:"event_date"`
	EventTime      string              `db:"event_time"` // HH:MM
	Address        string              `db:"address"`
	Latitude       decimal.NullDecimal `db:"latitude"`
	Longitude      decimal.NullDecimal `db:"longitude"`
	TotalSlots     int                 `db:"total_slots"`
	AvailableSlots int                 `db:"available_slots"`
	AdditionalInfo string              `db:"additional_info"`
	Status         EventStatus         `db:"status"`
	CreatedBy      uuid.UUID           `db:"created_by"`
}
