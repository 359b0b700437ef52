package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dverna/trasferte/internal/export"
	"github.com/dverna/trasferte/internal/logging"
	"github.com/dverna/trasferte/internal/server/config"
	"github.com/dverna/trasferte/internal/server/models"
	"github.com/dverna/trasferte/internal/server/services"
)

// UserService is the slice of services.UserService the API needs.
type UserService interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
}

// TripService covers trip and expense management plus export collection.
type TripService interface {
	List(ctx context.Context, userID string) ([]models.Trip, error)
	Get(ctx context.Context, userID, tripID string) (*models.Trip, error)
	Find(ctx context.Context, userID, location, date string) (*models.Trip, error)
	Delete(ctx context.Context, userID, tripID string) error
	AddExpense(ctx context.Context, userID, location, date string, expense *models.Expense) (*models.Expense, error)
	RemoveExpense(ctx context.Context, userID, expenseID string) error
	CollectForExport(ctx context.Context, userID string, ids []string) ([]models.Trip, error)
}

// PhotoService hands out presigned upload URLs.
type PhotoService interface {
	GetPresignedPutURL(ctx context.Context) (string, string, error)
}

// ProfileService stores per-user presentation settings.
type ProfileService interface {
	Get(ctx context.Context, userID string) (*models.Profile, error)
	Save(ctx context.Context, userID string, profile *models.Profile) error
}

// Handlers bundles the API's dependencies.
type Handlers struct {
	users    UserService
	trips    TripService
	photos   PhotoService
	profiles ProfileService
	exporter *export.Exporter
	logger   logging.Logger
}

func NewHandlers(users UserService, trips TripService, photos PhotoService, profiles ProfileService, exporter *export.Exporter, logger logging.Logger) *Handlers {
	return &Handlers{
		users:    users,
		trips:    trips,
		photos:   photos,
		profiles: profiles,
		exporter: exporter,
		logger:   logger,
	}
}

// NewRouter mounts the full API surface. Everything under /api except the
// auth endpoints requires a bearer access token.
func NewRouter(h *Handlers, cfg *config.Config) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(h.logger))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.register)
			r.Post("/login", h.login)
			r.Post("/refresh", h.refresh)
			r.Post("/logout", h.logout)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticator([]byte(cfg.SecretKey)))

			r.Route("/trips", func(r chi.Router) {
				r.Get("/", h.listTrips)
				r.Get("/find", h.findTrip)
				r.Get("/{tripID}", h.getTrip)
				r.Delete("/{tripID}", h.deleteTrip)
				r.Get("/{tripID}/export", h.exportTrip)
			})

			r.Route("/expenses", func(r chi.Router) {
				r.Post("/", h.addExpense)
				r.Delete("/{expenseID}", h.removeExpense)
			})

			r.Post("/photos/upload-url", h.photoUploadURL)

			r.Route("/export", func(r chi.Router) {
				r.Post("/", h.exportSelected)
				r.Get("/csv", h.exportCSV)
			})

			r.Route("/profile", func(r chi.Router) {
				r.Get("/", h.getProfile)
				r.Put("/", h.saveProfile)
			})
		})
	})

	return r
}

// requestLogger logs one line per request after it completes.
func requestLogger(logger logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info(r.Context(), "request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start).String(),
			)
		})
	}
}
