// Package server wires the stores, services, and handlers together and
// builds the HTTP router.
package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/youthunite/youthunite/internal/auth"
	"github.com/youthunite/youthunite/internal/email"
	"github.com/youthunite/youthunite/internal/handler"
	"github.com/youthunite/youthunite/internal/middleware"
	"github.com/youthunite/youthunite/internal/store"
	ws "github.com/youthunite/youthunite/internal/websocket"
)

// Config holds the process-wide settings the server needs beyond the
// database handle.
type Config struct {
	JWTSecret []byte
	BaseURL   string
	ResendKey string
	FromEmail string
}

type Server struct {
	db          *sql.DB
	hub         *ws.Hub
	authSvc     *auth.Service
	userStore   *store.UserStore
	sessions    *store.SessionStore
	resets      *store.ResetTokenStore
	authH       *handler.AuthHandler
	eventH      *handler.EventHandler
	storyH      *handler.StoryHandler
	adminH      *handler.AdminHandler
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

func New(db *sql.DB, cfg Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	userStore := store.NewUserStore(db)
	sessionStore := store.NewSessionStore(db)
	resetStore := store.NewResetTokenStore(db)
	eventStore := store.NewEventStore(db)
	storyStore := store.NewStoryStore(db)
	registrationStore := store.NewRegistrationStore(db)

	authSvc := auth.NewService(db, userStore, sessionStore, resetStore, cfg.JWTSecret, logger.With("component", "auth"))
	emailClient := email.NewClient(cfg.ResendKey, cfg.FromEmail, cfg.BaseURL)

	return &Server{
		db:          db,
		hub:         hub,
		authSvc:     authSvc,
		userStore:   userStore,
		sessions:    sessionStore,
		resets:      resetStore,
		authH:       handler.NewAuthHandler(authSvc, userStore, emailClient, logger.With("component", "auth_handler")),
		eventH:      handler.NewEventHandler(eventStore, registrationStore, hub, logger.With("component", "event")),
		storyH:      handler.NewStoryHandler(storyStore, hub, logger.With("component", "story")),
		adminH:      handler.NewAdminHandler(userStore, eventStore, storyStore, hub, logger.With("component", "admin")),
		rateLimiter: middleware.NewRateLimiter(),
		logger:      logger,
	}
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessions
}

// ResetTokenStore returns the reset-token store for cleanup tasks.
func (s *Server) ResetTokenStore() *store.ResetTokenStore {
	return s.resets
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("POST /auth/register", s.rateLimited(s.authH.Register))
	mux.HandleFunc("POST /auth/login", s.rateLimited(s.authH.Login))
	mux.HandleFunc("POST /auth/logout", s.authH.Logout)
	mux.HandleFunc("POST /auth/forgot-password", s.rateLimited(s.authH.ForgotPassword))
	mux.HandleFunc("POST /auth/reset-password", s.rateLimited(s.authH.ResetPassword))
	mux.HandleFunc("GET /auth/validate-reset-token/{token}", s.authH.ValidateResetToken)

	mux.HandleFunc("GET /events", s.eventH.List)
	mux.HandleFunc("GET /events/{id}", s.eventH.Get)
	mux.Handle("POST /events/{id}/signup", s.maybeAuthed(s.eventH.Signup))

	mux.HandleFunc("GET /stories", s.storyH.List)
	mux.HandleFunc("GET /stories/{id}", s.storyH.Get)
	mux.HandleFunc("GET /stories/category/{category}", s.storyH.ByCategory)
	mux.HandleFunc("POST /stories/submit", s.storyH.Submit)

	mux.HandleFunc("GET /health", s.healthHandler)

	// Authenticated routes
	mux.Handle("GET /auth/me", s.authed(s.authH.Me))
	mux.Handle("POST /events/create", s.authed(s.eventH.Create))
	mux.Handle("GET /events/my-events", s.authed(s.eventH.MyEvents))
	mux.Handle("GET /events/{id}/registrations", s.authed(s.eventH.Registrations))

	// Admin routes
	mux.Handle("GET /admin/pending-events", s.admin(s.adminH.PendingEvents))
	mux.Handle("GET /admin/pending-stories", s.admin(s.adminH.PendingStories))
	mux.Handle("GET /admin/users", s.admin(s.adminH.ListUsers))
	mux.Handle("GET /admin/events", s.admin(s.adminH.ListEvents))
	mux.Handle("POST /admin/verify-event", s.admin(s.adminH.VerifyEvent))
	mux.Handle("POST /admin/verify-story", s.admin(s.adminH.VerifyStory))
	mux.Handle("POST /admin/publish-story", s.admin(s.adminH.PublishStory))
	mux.Handle("POST /admin/add-admin", s.admin(s.adminH.AddAdmin))
	mux.Handle("POST /admin/delete-user", s.admin(s.adminH.DeleteUser))
	mux.Handle("POST /admin/delete-event", s.admin(s.adminH.DeleteEvent))
	mux.Handle("POST /admin/delete-story", s.admin(s.adminH.DeleteStory))
	mux.Handle("GET /admin/ws", s.admin(ws.Handle(s.hub, s.logger.With("component", "websocket"))))

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

// authed wraps a handler with bearer-token authentication.
func (s *Server) authed(h http.HandlerFunc) http.Handler {
	return middleware.RequireAuth(s.authSvc, s.userStore)(h)
}

// maybeAuthed installs the caller's identity when a valid bearer token is
// present but never rejects; the handler works anonymously too.
func (s *Server) maybeAuthed(h http.HandlerFunc) http.Handler {
	return middleware.OptionalAuth(s.authSvc, s.userStore)(h)
}

// admin wraps a handler with authentication plus the admin-tier gate.
func (s *Server) admin(h http.HandlerFunc) http.Handler {
	return middleware.RequireAuth(s.authSvc, s.userStore)(middleware.RequireAdmin(h))
}

func (s *Server) rateLimited(h http.HandlerFunc) http.HandlerFunc {
	rl := middleware.RateLimit(s.rateLimiter, middleware.RealIP, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(h).ServeHTTP(w, r)
	}
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
