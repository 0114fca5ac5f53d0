package utils

import (
	"crypto/rand"
	"fmt"

	"github.com/google/uuid"
)

// ==================== UUID & TOKEN ====================

func GenerateUUID() uuid.UUID {
	return uuid.New()
}

func ParseUUID(uuidStr string) (uuid.UUID, error) {
	return uuid.Parse(uuidStr)
}

func GenerateSessionToken() uuid.UUID {
	return uuid.New()
}

// ==================== OTP ====================

// GenerateOTP creates a numeric one-time code of the given length.
func GenerateOTP(length int) string {
	const charset = "0123456789"

	if length <= 0 {
		length = 6
	}

	code := make([]byte, length)
	if _, err := rand.Read(code); err != nil {
		// crypto/rand failing means the process is in serious trouble
		panic(fmt.Sprintf("read random bytes: %v", err))
	}

	for i := range code {
		code[i] = charset[int(code[i])%len(charset)]
	}

	return string(code)
}

// ==================== BOOKING REFERENCE ====================

// GenerateBookingReference creates a short human-readable code like
// ROSE-A7B9C2: the configured prefix plus 6 uppercase alphanumerics.
// Uniqueness is enforced by the store; callers retry on collision.
func GenerateBookingReference(prefix string) string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	const codeLength = 6

	code := make([]byte, codeLength)
	if _, err := rand.Read(code); err != nil {
		panic(fmt.Sprintf("read random bytes: %v", err))
	}

	for i := range code {
		code[i] = charset[int(code[i])%len(charset)]
	}

	return fmt.Sprintf("%s-%s", prefix, code)
}
