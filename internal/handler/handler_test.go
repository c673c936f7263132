package handler

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/youthunite/youthunite/internal/auth"
	"github.com/youthunite/youthunite/internal/database"
	"github.com/youthunite/youthunite/internal/email"
	"github.com/youthunite/youthunite/internal/store"
)

type testEnv struct {
	db      *sql.DB
	authSvc *auth.Service
	users   *store.UserStore
	events  *store.EventStore
	stories *store.StoryStore
	regs    *store.RegistrationStore

	authHandler  *AuthHandler
	eventHandler *EventHandler
	storyHandler *StoryHandler
	adminHandler *AdminHandler
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	users := store.NewUserStore(db)
	events := store.NewEventStore(db)
	stories := store.NewStoryStore(db)
	regs := store.NewRegistrationStore(db)
	svc := auth.NewService(
		db, users,
		store.NewSessionStore(db),
		store.NewResetTokenStore(db),
		[]byte("test-signing-key"),
		logger,
	)
	emailClient := email.NewClient("", "noreply@test", "https://test")

	return &testEnv{
		db:      db,
		authSvc: svc,
		users:   users,
		events:  events,
		stories: stories,
		regs:    regs,

		authHandler:  NewAuthHandler(svc, users, emailClient, logger),
		eventHandler: NewEventHandler(events, regs, nil, logger),
		storyHandler: NewStoryHandler(stories, nil, logger),
		adminHandler: NewAdminHandler(users, events, stories, nil, logger),
	}
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body
}

// registerUser registers a user through the handler and returns the token.
func registerUser(t *testing.T, env *testEnv, name, emailAddr string) string {
	t.Helper()
	req := jsonRequest(t, "POST", "/auth/register", map[string]any{
		"name": name, "email": emailAddr, "password": "password123",
	})
	rec := httptest.NewRecorder()
	env.authHandler.Register(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: status = %d, body %s", name, rec.Code, rec.Body.String())
	}
	body := decodeResponse(t, rec)
	token, _ := body["jwt_token"].(string)
	if token == "" {
		t.Fatalf("register %s: no token in response", name)
	}
	return token
}

// asUser wraps a request with the AuthContext that RequireAuth would have
// attached for the given token.
func asUser(t *testing.T, env *testEnv, req *http.Request, token string) *http.Request {
	t.Helper()
	sess, err := env.authSvc.ValidateSession(token)
	if err != nil {
		t.Fatalf("validate session: %v", err)
	}
	user, err := env.users.GetByID(sess.UserID)
	if err != nil || user == nil {
		t.Fatalf("load user: %v", err)
	}
	ctx := auth.WithAuth(req.Context(), auth.AuthContext{
		UserID:    user.ID,
		Tier:      user.Tier,
		SessionID: sess.ID,
	})
	return req.WithContext(ctx)
}
