package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/youthunite/youthunite/internal/model"
)

func TestAdminVerifyEventOverwrite(t *testing.T) {
	env := setupEnv(t)
	adminToken := registerUser(t, env, "admin", "admin@example.com")
	id := createEvent(t, env, adminToken, "Beach Cleanup")

	vreq := jsonRequest(t, "POST", "/admin/verify-event", map[string]any{
		"eventId": id, "action": "reject", "reason": "needs more detail",
	})
	vreq = asUser(t, env, vreq, adminToken)
	vrec := httptest.NewRecorder()
	env.adminHandler.VerifyEvent(vrec, vreq)
	body := decodeResponse(t, vrec)
	event, _ := body["event"].(map[string]any)
	if event["verification_status"] != "rejected" {
		t.Errorf("status = %v, want rejected", event["verification_status"])
	}
	if event["rejection_reason"] != "needs more detail" {
		t.Errorf("reason = %v", event["rejection_reason"])
	}

	// Re-adjudicate to approved: single state, reason cleared.
	vreq = jsonRequest(t, "POST", "/admin/verify-event", map[string]any{
		"eventId": id, "action": "approve",
	})
	vreq = asUser(t, env, vreq, adminToken)
	vrec = httptest.NewRecorder()
	env.adminHandler.VerifyEvent(vrec, vreq)
	body = decodeResponse(t, vrec)
	event, _ = body["event"].(map[string]any)
	if event["verification_status"] != "approved" {
		t.Errorf("status = %v, want approved", event["verification_status"])
	}
	if _, hasReason := event["rejection_reason"]; hasReason && event["rejection_reason"] != nil {
		t.Errorf("reason = %v, want cleared", event["rejection_reason"])
	}
}

func TestAdminVerifyEventBadAction(t *testing.T) {
	env := setupEnv(t)
	adminToken := registerUser(t, env, "admin", "admin@example.com")
	id := createEvent(t, env, adminToken, "Beach Cleanup")

	vreq := jsonRequest(t, "POST", "/admin/verify-event", map[string]any{
		"eventId": id, "action": "maybe",
	})
	vreq = asUser(t, env, vreq, adminToken)
	vrec := httptest.NewRecorder()
	env.adminHandler.VerifyEvent(vrec, vreq)
	if vrec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", vrec.Code, http.StatusBadRequest)
	}

	// Bad action mutated nothing.
	event, _ := env.events.GetByID(id)
	if event.VerificationStatus != model.StatusPending {
		t.Errorf("status = %q, want still pending", event.VerificationStatus)
	}
}

func TestAdminVerifyEventNotFound(t *testing.T) {
	env := setupEnv(t)
	adminToken := registerUser(t, env, "admin", "admin@example.com")

	vreq := jsonRequest(t, "POST", "/admin/verify-event", map[string]any{
		"eventId": 999, "action": "approve",
	})
	vreq = asUser(t, env, vreq, adminToken)
	vrec := httptest.NewRecorder()
	env.adminHandler.VerifyEvent(vrec, vreq)
	if vrec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", vrec.Code, http.StatusNotFound)
	}
}

func TestAdminPendingListings(t *testing.T) {
	env := setupEnv(t)
	adminToken := registerUser(t, env, "admin", "admin@example.com")
	createEvent(t, env, adminToken, "Beach Cleanup")
	submitStory(t, env, "My Summer", "alice@example.com")

	req := asUser(t, env, httptest.NewRequest("GET", "/admin/pending-events", nil), adminToken)
	rec := httptest.NewRecorder()
	env.adminHandler.PendingEvents(rec, req)
	if body := decodeResponse(t, rec); len(body["events"].([]any)) != 1 {
		t.Error("expected 1 pending event")
	}

	req = asUser(t, env, httptest.NewRequest("GET", "/admin/pending-stories", nil), adminToken)
	rec = httptest.NewRecorder()
	env.adminHandler.PendingStories(rec, req)
	if body := decodeResponse(t, rec); len(body["stories"].([]any)) != 1 {
		t.Error("expected 1 pending story")
	}
}

func TestAdminAddAdmin(t *testing.T) {
	env := setupEnv(t)
	adminToken := registerUser(t, env, "admin", "admin@example.com")
	registerUser(t, env, "bob", "bob@example.com")

	bob, _ := env.users.GetByEmail("bob@example.com")
	if bob.Tier != model.TierNormal {
		t.Fatalf("bob tier = %q, want normal before promotion", bob.Tier)
	}

	req := jsonRequest(t, "POST", "/admin/add-admin", map[string]any{"id": bob.ID})
	req = asUser(t, env, req, adminToken)
	rec := httptest.NewRecorder()
	env.adminHandler.AddAdmin(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("add-admin status = %d", rec.Code)
	}

	bob, _ = env.users.GetByEmail("bob@example.com")
	if bob.Tier != model.TierAdmin {
		t.Errorf("bob tier = %q, want admin", bob.Tier)
	}
}

func TestAdminDeleteUser(t *testing.T) {
	env := setupEnv(t)
	adminToken := registerUser(t, env, "admin", "admin@example.com")
	bobToken := registerUser(t, env, "bob", "bob@example.com")
	bob, _ := env.users.GetByEmail("bob@example.com")

	req := jsonRequest(t, "POST", "/admin/delete-user", map[string]any{"id": bob.ID})
	req = asUser(t, env, req, adminToken)
	rec := httptest.NewRecorder()
	env.adminHandler.DeleteUser(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete-user status = %d", rec.Code)
	}

	if gone, _ := env.users.GetByID(bob.ID); gone != nil {
		t.Error("bob should be gone")
	}
	// Bob's sessions went with him.
	if _, err := env.authSvc.ValidateSession(bobToken); err == nil {
		t.Error("bob's session should be invalid after deletion")
	}
}

func TestAdminDeleteEventAndStory(t *testing.T) {
	env := setupEnv(t)
	adminToken := registerUser(t, env, "admin", "admin@example.com")
	eventID := createEvent(t, env, adminToken, "Beach Cleanup")
	storyID := submitStory(t, env, "My Summer", "alice@example.com")

	req := jsonRequest(t, "POST", "/admin/delete-event", map[string]any{"id": eventID})
	req = asUser(t, env, req, adminToken)
	rec := httptest.NewRecorder()
	env.adminHandler.DeleteEvent(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete-event status = %d", rec.Code)
	}
	if gone, _ := env.events.GetByID(eventID); gone != nil {
		t.Error("event should be gone")
	}

	req = jsonRequest(t, "POST", "/admin/delete-story", map[string]any{"id": storyID})
	req = asUser(t, env, req, adminToken)
	rec = httptest.NewRecorder()
	env.adminHandler.DeleteStory(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete-story status = %d", rec.Code)
	}
	if gone, _ := env.stories.GetByID(storyID); gone != nil {
		t.Error("story should be gone")
	}
}

func TestAdminListUsersAndEvents(t *testing.T) {
	env := setupEnv(t)
	adminToken := registerUser(t, env, "admin", "admin@example.com")
	registerUser(t, env, "bob", "bob@example.com")
	createEvent(t, env, adminToken, "Beach Cleanup")

	req := asUser(t, env, httptest.NewRequest("GET", "/admin/users", nil), adminToken)
	rec := httptest.NewRecorder()
	env.adminHandler.ListUsers(rec, req)
	if body := decodeResponse(t, rec); len(body["users"].([]any)) != 2 {
		t.Error("expected 2 users")
	}

	req = asUser(t, env, httptest.NewRequest("GET", "/admin/events", nil), adminToken)
	rec = httptest.NewRecorder()
	env.adminHandler.ListEvents(rec, req)
	if body := decodeResponse(t, rec); len(body["events"].([]any)) != 1 {
		t.Error("expected 1 event")
	}
}
