package wire

import (
	"screening-booking/internal/adaptor"
	"screening-booking/internal/data/entity"
	"screening-booking/internal/data/repository"
	"screening-booking/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireAuth(
	r chi.Router,
	authHandler *adaptor.AuthHandler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	// ==================== PUBLIC ROUTES ====================
	// POST /api/admin/register - Register organiser account
	r.Post("/api/admin/register", authHandler.RegisterAdmin)

	// POST /api/admin/login - Admin email/password login
	r.Post("/api/admin/login", authHandler.AdminLogin)

	// POST /api/register - Register participant, sends first OTP
	r.Post("/api/register", authHandler.Register)

	// POST /api/otp/request - Request a fresh verification code
	r.Post("/api/otp/request", authHandler.RequestOTP)

	// POST /api/otp/verify - Verify code, opens a session
	r.Post("/api/otp/verify", authHandler.VerifyOTP)

	// ==================== PROTECTED ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, log))

		// POST /api/logout - Revoke the current session
		r.Post("/api/logout", authHandler.Logout)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, log))
		r.Use(middleware.RequireRole(entity.SessionRoleParticipant, log))

		// GET /api/profile - Own participant profile
		r.Get("/api/profile", authHandler.Profile)
	})
}
