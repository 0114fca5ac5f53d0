package wire

import (
	"screening-booking/internal/adaptor"
	"screening-booking/internal/data/entity"
	"screening-booking/internal/data/repository"
	"screening-booking/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireBooking(
	r chi.Router,
	bookingHandler *adaptor.BookingHandler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	// ==================== PARTICIPANT ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, log))
		r.Use(middleware.RequireRole(entity.SessionRoleParticipant, log))

		// POST /api/bookings - Book a slot on an event
		r.Post("/api/bookings", bookingHandler.CreateBooking)

		// GET /api/bookings - Own booking history
		r.Get("/api/bookings", bookingHandler.GetMyBookings)

		// PUT /api/bookings/{id}/cancel - Cancel own booking
		r.Put("/api/bookings/{id}/cancel", bookingHandler.CancelBooking)
	})

	// ==================== ADMIN ROUTES ====================
	r.Route("/api/admin/bookings", func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, log))
		r.Use(middleware.RequireRole(entity.SessionRoleAdmin, log))

		// GET /api/admin/bookings/{id} - View any booking
		r.Get("/{id}", bookingHandler.GetBookingByID)

		// PUT /api/admin/bookings/{id}/check-in - Mark attendance on site
		r.Put("/{id}/check-in", bookingHandler.CheckInBooking)
	})
}
