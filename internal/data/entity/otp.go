package entity

import (
	"time"
)

type OTPPurpose string

const (
	OTPPurposeRegistration OTPPurpose = "registration"
	OTPPurposeLogin        OTPPurpose = "login"
	OTPPurposeResultAccess OTPPurpose = "result_access"
)

type OTP struct {
	BaseSimple
	PhoneNumber string     `db:"phone_number"`
	Code        string     `db:"code"`
	Purpose     OTPPurpose `db:"purpose"`
	ExpiresAt   time.Time  `db:"expires_at"`
	Verified    bool       `db:"verified"`
	Attempts    int        `db:"attempts"`
}
