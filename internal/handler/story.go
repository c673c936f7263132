package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/youthunite/youthunite/internal/model"
	"github.com/youthunite/youthunite/internal/store"
	"github.com/youthunite/youthunite/internal/websocket"
)

type StoryHandler struct {
	storyStore *store.StoryStore
	hub        *websocket.Hub
	logger     *slog.Logger
}

func NewStoryHandler(ss *store.StoryStore, hub *websocket.Hub, logger *slog.Logger) *StoryHandler {
	return &StoryHandler{storyStore: ss, hub: hub, logger: logger}
}

func (h *StoryHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

type submitStoryRequest struct {
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	AuthorName  string   `json:"author_name"`
	AuthorEmail string   `json:"author_email"`
	AuthorAge   *int     `json:"author_age"`
	Category    *string  `json:"category"`
	Tags        []string `json:"tags"`
}

// Submit accepts an anonymous story submission into the moderation queue.
// The same author email cannot submit two stories with an identical title.
func (h *StoryHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitStoryRequest
	if !decodeBody(w, r, &req) {
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	req.AuthorName = strings.TrimSpace(req.AuthorName)
	req.AuthorEmail = strings.TrimSpace(strings.ToLower(req.AuthorEmail))
	if req.Title == "" || req.Content == "" || req.AuthorName == "" {
		writeError(w, http.StatusBadRequest, "title, content, and author_name are required")
		return
	}
	if !strings.Contains(req.AuthorEmail, "@") {
		writeError(w, http.StatusBadRequest, "valid author_email is required")
		return
	}

	story, err := h.storyStore.Create(req.Title, req.Content, req.AuthorName, req.AuthorEmail, req.AuthorAge, req.Category, req.Tags)
	if errors.Is(err, store.ErrConflict) {
		writeError(w, http.StatusConflict, "you have already submitted a story with this title")
		return
	}
	if err != nil {
		h.logger.Error("submit story", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to submit story")
		return
	}

	h.broadcast(websocket.NewMessage("story", "submitted", story.ID, map[string]any{"title": story.Title}))

	writeSuccess(w, http.StatusCreated, map[string]any{"story": story})
}

// List returns published stories, newest publish first.
func (h *StoryHandler) List(w http.ResponseWriter, r *http.Request) {
	stories, err := h.storyStore.ListPublished()
	if err != nil {
		h.logger.Error("list stories", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list stories")
		return
	}
	if stories == nil {
		stories = []model.Story{}
	}
	writeSuccess(w, http.StatusOK, map[string]any{"stories": stories})
}

// Get returns a single story, visible only when approved and published.
func (h *StoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	story, err := h.storyStore.GetPublished(id)
	if err != nil {
		h.logger.Error("get story", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get story")
		return
	}
	if story == nil {
		writeError(w, http.StatusNotFound, "story not found")
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"story": story})
}

// ByCategory returns published stories in one category.
func (h *StoryHandler) ByCategory(w http.ResponseWriter, r *http.Request) {
	category := r.PathValue("category")
	if category == "" {
		writeError(w, http.StatusBadRequest, "category is required")
		return
	}

	stories, err := h.storyStore.ListPublishedByCategory(category)
	if err != nil {
		h.logger.Error("list stories by category", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list stories")
		return
	}
	if stories == nil {
		stories = []model.Story{}
	}
	writeSuccess(w, http.StatusOK, map[string]any{"stories": stories})
}
