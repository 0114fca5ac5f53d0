package usecase

import "errors"

// Service-level rule violations. Store-level errors live in the
// repository package; handlers map both with errors.Is.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidOTP         = errors.New("incorrect verification code")
	ErrTooManyAttempts    = errors.New("too many verification attempts, request a new code")
	ErrPhoneNotVerified   = errors.New("phone number is not verified")
	ErrEventNotOpen       = errors.New("event is not open for booking")
	ErrEventInPast        = errors.New("event date and time cannot be in the past")
	ErrNotEventOwner      = errors.New("event belongs to another admin")
)
