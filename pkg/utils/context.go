package utils

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	SubjectIDKey contextKey = "subject_id"
	RoleKey      contextKey = "role"
	TokenKey     contextKey = "token"
)

const (
	RoleParticipant = "participant"
	RoleAdmin       = "admin"
)

// GetSubjectIDFromContext returns the authenticated participant or admin ID.
func GetSubjectIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	idVal := ctx.Value(SubjectIDKey)
	if idVal == nil {
		return uuid.Nil, false
	}

	idStr, ok := idVal.(string)
	if !ok {
		return uuid.Nil, false
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, false
	}

	return id, true
}

func GetRoleFromContext(ctx context.Context) (string, bool) {
	roleVal := ctx.Value(RoleKey)
	if roleVal == nil {
		return "", false
	}

	role, ok := roleVal.(string)
	return role, ok
}

func SetSubjectContext(ctx context.Context, subjectID uuid.UUID, role string) context.Context {
	ctx = context.WithValue(ctx, SubjectIDKey, subjectID.String())
	ctx = context.WithValue(ctx, RoleKey, role)
	return ctx
}

func GetTokenFromContext(ctx context.Context) (string, bool) {
	tokenVal := ctx.Value(TokenKey)
	if tokenVal == nil {
		return "", false
	}

	token, ok := tokenVal.(string)
	return token, ok
}

func SetTokenContext(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, TokenKey, token)
}
