package wire

import (
	"screening-booking/internal/adaptor"
	"screening-booking/internal/data/entity"
	"screening-booking/internal/data/repository"
	"screening-booking/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireResult(
	r chi.Router,
	resultHandler *adaptor.ResultHandler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	// ==================== PARTICIPANT ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, log))
		r.Use(middleware.RequireRole(entity.SessionRoleParticipant, log))

		// GET /api/bookings/{id}/result - View own screening result
		r.Get("/api/bookings/{id}/result", resultHandler.GetMyResult)
	})

	// ==================== ADMIN ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, log))
		r.Use(middleware.RequireRole(entity.SessionRoleAdmin, log))

		// PUT /api/admin/bookings/{id}/result - Upload or replace result
		r.Put("/api/admin/bookings/{id}/result", resultHandler.UploadResult)
	})
}
