package handler

import (
	"log/slog"
	"net/http"

	"github.com/youthunite/youthunite/internal/auth"
	"github.com/youthunite/youthunite/internal/model"
	"github.com/youthunite/youthunite/internal/store"
	"github.com/youthunite/youthunite/internal/websocket"
)

// AdminHandler serves the moderation panel. Every route sits behind
// RequireAuth + RequireAdmin.
type AdminHandler struct {
	userStore  *store.UserStore
	eventStore *store.EventStore
	storyStore *store.StoryStore
	hub        *websocket.Hub
	logger     *slog.Logger
}

func NewAdminHandler(us *store.UserStore, es *store.EventStore, ss *store.StoryStore, hub *websocket.Hub, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		userStore:  us,
		eventStore: es,
		storyStore: ss,
		hub:        hub,
		logger:     logger,
	}
}

func (h *AdminHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

func (h *AdminHandler) PendingEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.eventStore.ListPending()
	if err != nil {
		h.logger.Error("list pending events", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list pending events")
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	writeSuccess(w, http.StatusOK, map[string]any{"events": events})
}

func (h *AdminHandler) PendingStories(w http.ResponseWriter, r *http.Request) {
	stories, err := h.storyStore.ListPending()
	if err != nil {
		h.logger.Error("list pending stories", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list pending stories")
		return
	}
	if stories == nil {
		stories = []model.Story{}
	}
	writeSuccess(w, http.StatusOK, map[string]any{"stories": stories})
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userStore.List()
	if err != nil {
		h.logger.Error("list users", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	if users == nil {
		users = []model.User{}
	}
	writeSuccess(w, http.StatusOK, map[string]any{"users": users})
}

func (h *AdminHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.eventStore.ListAll()
	if err != nil {
		h.logger.Error("list all events", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list events")
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	writeSuccess(w, http.StatusOK, map[string]any{"events": events})
}

type verifyEventRequest struct {
	EventID int64   `json:"eventId"`
	Action  string  `json:"action"`
	Reason  *string `json:"reason"`
}

func (h *AdminHandler) VerifyEvent(w http.ResponseWriter, r *http.Request) {
	var req verifyEventRequest
	if !decodeBody(w, r, &req) {
		return
	}

	status, ok := actionStatus(req.Action)
	if !ok {
		writeError(w, http.StatusBadRequest, "action must be approve or reject")
		return
	}

	existing, err := h.eventStore.GetByID(req.EventID)
	if err != nil {
		h.logger.Error("verify event lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to verify event")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}

	event, err := h.eventStore.Verify(req.EventID, status, auth.UserID(r.Context()), req.Reason)
	if err != nil {
		h.logger.Error("verify event", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to verify event")
		return
	}

	h.broadcast(websocket.NewMessage("event", statusAction(status), event.ID, map[string]any{"title": event.Title}))

	writeSuccess(w, http.StatusOK, map[string]any{"event": event})
}

type verifyStoryRequest struct {
	StoryID int64   `json:"storyId"`
	Action  string  `json:"action"`
	Reason  *string `json:"reason"`
	Publish bool    `json:"publish"`
}

func (h *AdminHandler) VerifyStory(w http.ResponseWriter, r *http.Request) {
	var req verifyStoryRequest
	if !decodeBody(w, r, &req) {
		return
	}

	status, ok := actionStatus(req.Action)
	if !ok {
		writeError(w, http.StatusBadRequest, "action must be approve or reject")
		return
	}

	existing, err := h.storyStore.GetByID(req.StoryID)
	if err != nil {
		h.logger.Error("verify story lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to verify story")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "story not found")
		return
	}

	story, err := h.storyStore.Verify(req.StoryID, status, auth.UserID(r.Context()), req.Reason, req.Publish)
	if err != nil {
		h.logger.Error("verify story", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to verify story")
		return
	}

	h.broadcast(websocket.NewMessage("story", statusAction(status), story.ID, map[string]any{"title": story.Title}))
	if story.IsPublished && status == model.StatusApproved {
		h.broadcast(websocket.NewMessage("story", "published", story.ID, nil))
	}

	writeSuccess(w, http.StatusOK, map[string]any{"story": story})
}

type publishStoryRequest struct {
	StoryID int64 `json:"storyId"`
	Publish bool  `json:"publish"`
}

// PublishStory flips a story's publication flag. Publication is not gated
// on approval here; public reads still require both.
func (h *AdminHandler) PublishStory(w http.ResponseWriter, r *http.Request) {
	var req publishStoryRequest
	if !decodeBody(w, r, &req) {
		return
	}

	existing, err := h.storyStore.GetByID(req.StoryID)
	if err != nil {
		h.logger.Error("publish story lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to publish story")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "story not found")
		return
	}

	story, err := h.storyStore.SetPublished(req.StoryID, req.Publish)
	if err != nil {
		h.logger.Error("publish story", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to publish story")
		return
	}

	action := "unpublished"
	if req.Publish {
		action = "published"
	}
	h.broadcast(websocket.NewMessage("story", action, story.ID, nil))

	writeSuccess(w, http.StatusOK, map[string]any{"story": story})
}

type idRequest struct {
	ID int64 `json:"id"`
}

// AddAdmin promotes a user to the admin tier.
func (h *AdminHandler) AddAdmin(w http.ResponseWriter, r *http.Request) {
	var req idRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.userStore.GetByID(req.ID)
	if err != nil {
		h.logger.Error("add admin lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to promote user")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	if err := h.userStore.SetTier(req.ID, model.TierAdmin); err != nil {
		h.logger.Error("add admin", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to promote user")
		return
	}
	writeSuccess(w, http.StatusOK, nil)
}

// DeleteUser removes a user; sessions, reset tokens, events, and
// registrations go with it via the schema's cascades.
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	var req idRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.userStore.GetByID(req.ID)
	if err != nil {
		h.logger.Error("delete user lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete user")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	if err := h.userStore.Delete(req.ID); err != nil {
		h.logger.Error("delete user", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete user")
		return
	}
	writeSuccess(w, http.StatusOK, nil)
}

func (h *AdminHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	var req idRequest
	if !decodeBody(w, r, &req) {
		return
	}

	event, err := h.eventStore.GetByID(req.ID)
	if err != nil {
		h.logger.Error("delete event lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete event")
		return
	}
	if event == nil {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}

	if err := h.eventStore.Delete(req.ID); err != nil {
		h.logger.Error("delete event", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete event")
		return
	}
	writeSuccess(w, http.StatusOK, nil)
}

func (h *AdminHandler) DeleteStory(w http.ResponseWriter, r *http.Request) {
	var req idRequest
	if !decodeBody(w, r, &req) {
		return
	}

	story, err := h.storyStore.GetByID(req.ID)
	if err != nil {
		h.logger.Error("delete story lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete story")
		return
	}
	if story == nil {
		writeError(w, http.StatusNotFound, "story not found")
		return
	}

	if err := h.storyStore.Delete(req.ID); err != nil {
		h.logger.Error("delete story", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete story")
		return
	}
	writeSuccess(w, http.StatusOK, nil)
}

func actionStatus(action string) (string, bool) {
	switch action {
	case "approve":
		return model.StatusApproved, true
	case "reject":
		return model.StatusRejected, true
	default:
		return "", false
	}
}

func statusAction(status string) string {
	if status == model.StatusApproved {
		return "approved"
	}
	return "rejected"
}
