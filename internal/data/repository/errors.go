package repository

import "errors"

// Domain error taxonomy. Handlers map these to HTTP statuses with
// errors.Is; services wrap anything else with context.
var (
	// Not-found family (client errors, no retry)
	ErrEventNotFound       = errors.New("event not found")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrAdminNotFound       = errors.New("admin not found")
	ErrBookingNotFound     = errors.New("booking not found")
	ErrResultNotFound      = errors.New("test result not found")
	ErrOTPNotFound         = errors.New("no pending verification code")

	// Booking lifecycle guards (client errors, idempotency trips)
	ErrSoldOut          = errors.New("event has no available slots")
	ErrDuplicateBooking = errors.New("participant already has an active booking for this event")
	ErrAlreadyCancelled = errors.New("booking is already cancelled")
	ErrAlreadyCheckedIn = errors.New("booking is already checked in")
	ErrBookingCancelled = errors.New("booking has been cancelled")
	ErrForbidden        = errors.New("booking belongs to another participant")

	// Reference generation (server errors)
	ErrReferenceTaken     = errors.New("booking reference already in use")
	ErrReferenceExhausted = errors.New("could not generate a unique booking reference")

	// Ledger consistency (server error: indicates a prior bug, never clamp)
	ErrInconsistentSlots = errors.New("slot release would exceed total capacity")

	// Capacity edits (client errors)
	ErrSlotsBelowBooked = errors.New("total slots cannot be less than already booked slots")
	ErrEventHasBookings = errors.New("event has bookings and cannot be deleted")

	// Uniqueness guards outside booking
	ErrPhoneTaken     = errors.New("phone number already registered")
	ErrMyKadTaken     = errors.New("mykad id already registered")
	ErrEmailTaken     = errors.New("email already registered")
	ErrDuplicateEvent = errors.New("an event with the same name, date and address already exists")
)
