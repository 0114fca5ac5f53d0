package wire

import (
	"net/http"

	"screening-booking/internal/adaptor"
	"screening-booking/internal/data/repository"
	"screening-booking/internal/monitoring"
	"screening-booking/internal/notification"
	"screening-booking/internal/usecase"
	"screening-booking/pkg/middleware"
	"screening-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// App holds the wired dependency graph.
type App struct {
	Router *chi.Mux
}

// Wiring builds services, handlers and the router from the shared
// repository bundle.
func Wiring(repo *repository.Repository, config *utils.Config, logger *zap.Logger) *App {
	sms := notification.NewSender(config.SMS, logger)
	service := usecase.NewService(repo, sms, config, logger)
	handler := adaptor.NewHandler(service, logger)

	router := setupRouter(handler, repo, logger)

	return &App{
		Router: router,
	}
}

func setupRouter(
	handler *adaptor.Handler,
	repo *repository.Repository,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS())

	// Apply routes
	wireAuth(r, handler.Auth, repo, logger)
	wireEvent(r, handler.Event, repo, logger)
	wireBooking(r, handler.Booking, repo, logger)
	wireResult(r, handler.Result, repo, logger)

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Prometheus scrape endpoint
	r.Handle("/metrics", monitoring.Handler())

	return r
}
