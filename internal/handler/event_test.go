package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func createEvent(t *testing.T, env *testEnv, token, title string) int64 {
	t.Helper()
	start := time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339)
	end := time.Now().Add(50 * time.Hour).UTC().Format(time.RFC3339)
	req := jsonRequest(t, "POST", "/events/create", map[string]any{
		"title": title, "description": "desc", "location": "Hall",
		"start_time": start, "end_time": end,
	})
	req = asUser(t, env, req, token)
	rec := httptest.NewRecorder()
	env.eventHandler.Create(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create event: status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := decodeResponse(t, rec)
	event, _ := body["event"].(map[string]any)
	return int64(event["id"].(float64))
}

func TestEventCreatePendingAndHiddenFromPublic(t *testing.T) {
	env := setupEnv(t)
	token := registerUser(t, env, "alice", "alice@example.com")
	id := createEvent(t, env, token, "Beach Cleanup")

	// Public listing is empty while the event is pending.
	rec := httptest.NewRecorder()
	env.eventHandler.List(rec, httptest.NewRequest("GET", "/events", nil))
	body := decodeResponse(t, rec)
	if events, _ := body["events"].([]any); len(events) != 0 {
		t.Errorf("public listing has %d events, want 0 while pending", len(events))
	}

	// Public get 404s too.
	req := httptest.NewRequest("GET", "/events/1", nil)
	req.SetPathValue("id", "1")
	rec = httptest.NewRecorder()
	env.eventHandler.Get(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get pending event status = %d, want %d", rec.Code, http.StatusNotFound)
	}

	// But MyEvents shows it with its status.
	myReq := asUser(t, env, httptest.NewRequest("GET", "/events/my-events", nil), token)
	rec = httptest.NewRecorder()
	env.eventHandler.MyEvents(rec, myReq)
	body = decodeResponse(t, rec)
	events, _ := body["events"].([]any)
	if len(events) != 1 {
		t.Fatalf("my-events has %d events, want 1", len(events))
	}
	e := events[0].(map[string]any)
	if e["id"] != float64(id) || e["verification_status"] != "pending" {
		t.Errorf("my-events entry = %v, want pending event %d", e, id)
	}
}

func TestEventSignupRequiresApproval(t *testing.T) {
	env := setupEnv(t)
	token := registerUser(t, env, "alice", "alice@example.com") // first user: admin
	id := createEvent(t, env, token, "Beach Cleanup")

	signup := map[string]any{
		"first_name": "Bob", "last_name": "Jones",
		"email": "bob@example.com", "phone": "555-0101", "age": 16,
	}

	req := jsonRequest(t, "POST", "/events/1/signup", signup)
	req.SetPathValue("id", "1")
	rec := httptest.NewRecorder()
	env.eventHandler.Signup(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("signup for pending event status = %d, want %d", rec.Code, http.StatusNotFound)
	}

	// Approve, then signup succeeds.
	vreq := jsonRequest(t, "POST", "/admin/verify-event", map[string]any{
		"eventId": id, "action": "approve",
	})
	vreq = asUser(t, env, vreq, token)
	vrec := httptest.NewRecorder()
	env.adminHandler.VerifyEvent(vrec, vreq)
	if vrec.Code != http.StatusOK {
		t.Fatalf("approve event status = %d", vrec.Code)
	}

	req = jsonRequest(t, "POST", "/events/1/signup", signup)
	req.SetPathValue("id", "1")
	rec = httptest.NewRecorder()
	env.eventHandler.Signup(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup status = %d, body %s", rec.Code, rec.Body.String())
	}

	// Duplicate email for the same event conflicts.
	req = jsonRequest(t, "POST", "/events/1/signup", signup)
	req.SetPathValue("id", "1")
	rec = httptest.NewRecorder()
	env.eventHandler.Signup(rec, req)
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate signup status = %d, want %d", rec.Code, http.StatusConflict)
	}
}

func TestEventRegistrationsOrganizerOnly(t *testing.T) {
	env := setupEnv(t)
	aliceToken := registerUser(t, env, "alice", "alice@example.com")
	bobToken := registerUser(t, env, "bob", "bob@example.com")
	id := createEvent(t, env, aliceToken, "Beach Cleanup")
	_ = id

	req := asUser(t, env, httptest.NewRequest("GET", "/events/1/registrations", nil), bobToken)
	req.SetPathValue("id", "1")
	rec := httptest.NewRecorder()
	env.eventHandler.Registrations(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("non-organizer status = %d, want %d", rec.Code, http.StatusForbidden)
	}

	req = asUser(t, env, httptest.NewRequest("GET", "/events/1/registrations", nil), aliceToken)
	req.SetPathValue("id", "1")
	rec = httptest.NewRecorder()
	env.eventHandler.Registrations(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("organizer status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestEventCreateRejectsBadTimes(t *testing.T) {
	env := setupEnv(t)
	token := registerUser(t, env, "alice", "alice@example.com")

	start := time.Now().Add(50 * time.Hour).UTC().Format(time.RFC3339)
	end := time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339)
	req := jsonRequest(t, "POST", "/events/create", map[string]any{
		"title": "Backwards", "description": "desc", "location": "Hall",
		"start_time": start, "end_time": end,
	})
	req = asUser(t, env, req, token)
	rec := httptest.NewRecorder()
	env.eventHandler.Create(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
