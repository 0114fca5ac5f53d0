package entity

import (
	"time"

	"github.com/google/uuid"
)

type SessionRole string

const (
	SessionRoleParticipant SessionRole = "participant"
	SessionRoleAdmin       SessionRole = "admin"
)

type Session struct {
	BaseSimple
	Token     string      `db:"token"`
	SubjectID uuid.UUID   `db:"subject_id"`
	Role      SessionRole `db:"role"`
	ExpiresAt time.Time   `db:"expires_at"`
	RevokedAt *time.Time  `db:"revoked_at"`
}
