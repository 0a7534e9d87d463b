// Package web exposes the dashboard over HTTP as a JSON API. Handlers
// never derive anything themselves: they read store snapshots, forward
// mutations to the store or the backend, and translate errors.
package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/jihun-01/scratcha-dashboard/adapters/session"
	"github.com/jihun-01/scratcha-dashboard/app"
	"github.com/jihun-01/scratcha-dashboard/ports"
)

// Handler serves the dashboard API.
type Handler struct {
	store   *app.Dashboard
	account ports.AccountAPI
	session *session.Manager
	logger  zerolog.Logger

	metricsEnabled bool
}

// Deps contains dependencies for the handler.
type Deps struct {
	Store   *app.Dashboard
	Account ports.AccountAPI
	Session *session.Manager
	Logger  zerolog.Logger

	// MetricsEnabled mounts /metrics when true.
	MetricsEnabled bool
}

// NewHandler creates the dashboard API handler.
func NewHandler(deps Deps) *Handler {
	return &Handler{
		store:          deps.Store,
		account:        deps.Account,
		session:        deps.Session,
		logger:         deps.Logger,
		metricsEnabled: deps.MetricsEnabled,
	}
}

// Router builds the chi router for the API.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.Health)
	if h.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", h.Login)
		r.Post("/auth/logout", h.Logout)
		r.Post("/auth/signup", h.Signup)
		r.Get("/auth/session", h.SessionInfo)

		r.Get("/users/me", h.Profile)
		r.Patch("/users/me", h.UpdateProfile)
		r.Delete("/users/me", h.DeleteAccount)

		r.Get("/dashboard/overview", h.Overview)
		r.Get("/dashboard/usage", h.Usage)
		r.Get("/dashboard/billing", h.Billing)
		r.Get("/dashboard/logs", h.Logs)
		r.Post("/dashboard/scenario", h.SetScenario)
		r.Post("/dashboard/plan", h.ChangePlan)

		r.Get("/applications", h.ListApplications)
		r.Post("/applications", h.CreateApplication)
		r.Delete("/applications/{id}", h.DeleteApplication)
		r.Put("/applications/{id}/toggle", h.ToggleApplication)
		r.Put("/applications/{id}/settings", h.UpdateAppSettings)

		r.Post("/api-keys", h.CreateKey)
		r.Delete("/api-keys/{id}", h.DeleteKey)
		r.Put("/api-keys/{id}/toggle", h.ToggleKey)

		r.Get("/preferences/dark-mode", h.DarkMode)
		r.Put("/preferences/dark-mode", h.SetDarkMode)
	})

	return r
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// logRequests logs one line per request.
func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		h.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Msg("http request")
	})
}
