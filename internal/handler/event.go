package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/youthunite/youthunite/internal/auth"
	"github.com/youthunite/youthunite/internal/model"
	"github.com/youthunite/youthunite/internal/store"
	"github.com/youthunite/youthunite/internal/websocket"
)

type EventHandler struct {
	eventStore        *store.EventStore
	registrationStore *store.RegistrationStore
	hub               *websocket.Hub
	logger            *slog.Logger
}

func NewEventHandler(es *store.EventStore, rs *store.RegistrationStore, hub *websocket.Hub, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		eventStore:        es,
		registrationStore: rs,
		hub:               hub,
		logger:            logger,
	}
}

func (h *EventHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

type createEventRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
}

// Create submits a new event for moderation. Requires authentication; the
// caller becomes the organizer.
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if !decodeBody(w, r, &req) {
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Location = strings.TrimSpace(req.Location)
	if req.Title == "" || req.Description == "" || req.Location == "" {
		writeError(w, http.StatusBadRequest, "title, description, and location are required")
		return
	}
	if req.StartTime.IsZero() || req.EndTime.IsZero() {
		writeError(w, http.StatusBadRequest, "start_time and end_time are required")
		return
	}
	if !req.EndTime.After(req.StartTime) {
		writeError(w, http.StatusBadRequest, "end_time must be after start_time")
		return
	}

	event, err := h.eventStore.Create(req.Title, req.Description, req.Location, req.StartTime, req.EndTime, auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("create event", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create event")
		return
	}

	h.broadcast(websocket.NewMessage("event", "submitted", event.ID, map[string]any{"title": event.Title}))

	writeSuccess(w, http.StatusCreated, map[string]any{"event": event})
}

// List returns approved events, soonest first.
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	events, err := h.eventStore.ListApproved()
	if err != nil {
		h.logger.Error("list events", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list events")
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	writeSuccess(w, http.StatusOK, map[string]any{"events": events})
}

// Get returns a single event, visible only once approved.
func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	event, err := h.eventStore.GetApproved(id)
	if err != nil {
		h.logger.Error("get event", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get event")
		return
	}
	if event == nil {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"event": event})
}

// MyEvents returns the caller's own events regardless of status, including
// rejection reasons.
func (h *EventHandler) MyEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.eventStore.ListByOrganizer(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("list my events", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list events")
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	writeSuccess(w, http.StatusOK, map[string]any{"events": events})
}

type signupRequest struct {
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	Email          string  `json:"email"`
	Phone          string  `json:"phone"`
	Age            int     `json:"age"`
	AdditionalInfo *string `json:"additional_info"`
}

// Signup registers an attendee for an approved event. Anonymous; a logged-in
// caller's user id is attached when present.
func (h *EventHandler) Signup(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req signupRequest
	if !decodeBody(w, r, &req) {
		return
	}

	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.FirstName == "" || req.LastName == "" || !strings.Contains(req.Email, "@") || req.Phone == "" {
		writeError(w, http.StatusBadRequest, "first_name, last_name, email, and phone are required")
		return
	}
	if req.Age <= 0 {
		writeError(w, http.StatusBadRequest, "age must be positive")
		return
	}

	// Only approved events accept signups.
	event, err := h.eventStore.GetApproved(id)
	if err != nil {
		h.logger.Error("signup event lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to sign up")
		return
	}
	if event == nil {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}

	// Fast path for the common duplicate; the UNIQUE constraint is still the
	// source of truth on insert.
	if taken, err := h.registrationStore.EmailRegistered(id, req.Email); err != nil {
		h.logger.Error("check registration", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to sign up")
		return
	} else if taken {
		writeError(w, http.StatusConflict, "this email is already registered for this event")
		return
	}

	var userID *int64
	if uid := auth.UserID(r.Context()); uid != 0 {
		userID = &uid
	}

	reg, err := h.registrationStore.Create(id, userID, req.FirstName, req.LastName, req.Email, req.Phone, req.Age, req.AdditionalInfo)
	if errors.Is(err, store.ErrConflict) {
		writeError(w, http.StatusConflict, "this email is already registered for this event")
		return
	}
	if err != nil {
		h.logger.Error("create registration", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to sign up")
		return
	}

	writeSuccess(w, http.StatusCreated, map[string]any{"registration": reg})
}

// Registrations lists an event's signups, visible only to its organizer.
func (h *EventHandler) Registrations(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	event, err := h.eventStore.GetByID(id)
	if err != nil {
		h.logger.Error("registrations event lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list registrations")
		return
	}
	if event == nil {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}
	if event.OrganizerID != auth.UserID(r.Context()) {
		writeError(w, http.StatusForbidden, "only the organizer can view registrations")
		return
	}

	regs, err := h.registrationStore.ListByEvent(id)
	if err != nil {
		h.logger.Error("list registrations", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list registrations")
		return
	}
	if regs == nil {
		regs = []model.EventRegistration{}
	}
	writeSuccess(w, http.StatusOK, map[string]any{"registrations": regs})
}
