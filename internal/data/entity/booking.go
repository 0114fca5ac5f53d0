package entity

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCheckedIn BookingStatus = "checked_in"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Booking links a participant to an event slot. Bookings are never
// deleted; cancellation is a status transition that returns the slot
// to the event's ledger. checked_in and cancelled are terminal.
type Booking struct {
	ID            uuid.UUID     `db:"id"`
	Reference     string        `db:"reference"`
	ParticipantID uuid.UUID     `db:"participant_id"`
	EventID       uuid.UUID     `db:"event_id"`
	Status        BookingStatus `db:"status"`
	BookedAt      time.Time     `db:"booked_at"`
	CancelledAt   *time.Time    `db:"cancelled_at"`
}

// Active reports whether the booking still holds a slot.
func (b *Booking) Active() bool {
	return b.Status != BookingStatusCancelled
}
