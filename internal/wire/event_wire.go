package wire

import (
	"screening-booking/internal/adaptor"
	"screening-booking/internal/data/entity"
	"screening-booking/internal/data/repository"
	"screening-booking/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireEvent(
	r chi.Router,
	eventHandler *adaptor.EventHandler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	// ==================== PUBLIC ROUTES ====================
	// GET /api/events - List published events
	r.Get("/api/events", eventHandler.ListEvents)

	// GET /api/events/{id} - Event details
	r.Get("/api/events/{id}", eventHandler.GetEventByID)

	// ==================== ADMIN ROUTES ====================
	r.Route("/api/admin/events", func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, log))
		r.Use(middleware.RequireRole(entity.SessionRoleAdmin, log))

		// POST /api/admin/events - Create event
		r.Post("/", eventHandler.CreateEvent)

		// PUT /api/admin/events/{id} - Update owned event
		r.Put("/{id}", eventHandler.UpdateEvent)

		// DELETE /api/admin/events/{id} - Delete owned, never-booked event
		r.Delete("/{id}", eventHandler.DeleteEvent)

		// GET /api/admin/events/{id}/participants - Attendee list
		r.Get("/{id}/participants", eventHandler.GetEventParticipants)
	})
}
