package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateBookingReferenceFormat(t *testing.T) {
	for i := 0; i < 100; i++ {
		ref := GenerateBookingReference("ROSE")
		assert.Regexp(t, `^ROSE-[A-Z0-9]{6}$`, ref)
	}
}

func TestGenerateBookingReferenceCustomPrefix(t *testing.T) {
	ref := GenerateBookingReference("SCRN")
	assert.Regexp(t, `^SCRN-[A-Z0-9]{6}$`, ref)
}

func TestGenerateBookingReferenceSpread(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		seen[GenerateBookingReference("ROSE")] = true
	}
	// 36^6 values; 1000 draws colliding would mean a broken generator.
	assert.Greater(t, len(seen), 990)
}

func TestGenerateOTP(t *testing.T) {
	for _, length := range []int{4, 6, 8} {
		code := GenerateOTP(length)
		assert.Len(t, code, length)
		assert.Regexp(t, `^[0-9]+$`, code)
	}
}

func TestGenerateSessionTokenUnique(t *testing.T) {
	a := GenerateSessionToken()
	b := GenerateSessionToken()
	assert.NotEqual(t, a, b)
}
