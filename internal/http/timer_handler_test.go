package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"countdown-api/internal/domain"
)

type timerResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	TargetDate  string `json:"targetDate"`
	Status      string `json:"status"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
	DeletedAt   string `json:"deletedAt"`
}

func decodeTimers(t *testing.T, rec *httptest.ResponseRecorder) []timerResponse {
	t.Helper()
	var timers []timerResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &timers); err != nil {
		t.Fatalf("decode timers: %v (%s)", err, rec.Body.String())
	}
	return timers
}

func signupAndToken(t *testing.T, r *gin.Engine) string {
	t.Helper()
	rec := performRequest(r, http.MethodPost, "/api/auth/signup", map[string]string{
		"name": "Ann", "email": "a@x.com", "password": "secret1",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	return decodeAuthResponse(t, rec).Token
}

func TestTimerHandler_RequiresBearerToken(t *testing.T) {
	r, _ := setupRouter(nil)

	if rec := performRequest(r, http.MethodGet, "/api/auth/timers", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
	if rec := performAuthedRequest(r, http.MethodGet, "/api/auth/timers", "garbage", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with invalid token, got %d", rec.Code)
	}
}

func TestTimerHandler_CreateUpdateDeleteLifecycle(t *testing.T) {
	r, _ := setupRouter(nil)
	token := signupAndToken(t, r)

	rec := performAuthedRequest(r, http.MethodPost, "/api/auth/timers", token, map[string]string{
		"title":      "Launch",
		"targetDate": "2030-01-01T00:00",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	timers := decodeTimers(t, rec)
	if len(timers) != 1 {
		t.Fatalf("expected collection of 1, got %d", len(timers))
	}
	timerID := timers[0].ID
	if timers[0].Status != domain.TimerStatusActive || timers[0].Title != "Launch" {
		t.Fatalf("unexpected timer: %+v", timers[0])
	}

	rec = performAuthedRequest(r, http.MethodPut, "/api/auth/timers/"+timerID, token, map[string]string{
		"description": "v2",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	timers = decodeTimers(t, rec)
	if timers[0].Title != "Launch" || timers[0].Description != "v2" {
		t.Fatalf("expected title unchanged and description set, got %+v", timers[0])
	}

	rec = performAuthedRequest(r, http.MethodDelete, "/api/auth/timers/"+timerID, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", rec.Code)
	}
	timers = decodeTimers(t, rec)
	if timers[0].Status != domain.TimerStatusDeleted || timers[0].DeletedAt == "" {
		t.Fatalf("expected deleted timer, got %+v", timers[0])
	}

	// El segundo delete es idempotente.
	if rec := performAuthedRequest(r, http.MethodDelete, "/api/auth/timers/"+timerID, token, nil); rec.Code != http.StatusOK {
		t.Fatalf("second delete: expected 200, got %d", rec.Code)
	}

	// Un timer borrado es inmutable.
	rec = performAuthedRequest(r, http.MethodPut, "/api/auth/timers/"+timerID, token, map[string]string{
		"title": "x",
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("update deleted: expected 404, got %d", rec.Code)
	}
}

func TestTimerHandler_CreateMissingFields(t *testing.T) {
	r, _ := setupRouter(nil)
	token := signupAndToken(t, r)

	rec := performAuthedRequest(r, http.MethodPost, "/api/auth/timers", token, map[string]string{
		"title": "sin fecha",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	rec = performAuthedRequest(r, http.MethodPost, "/api/auth/timers", token, map[string]string{
		"title":      "fecha rota",
		"targetDate": "not-a-date",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed date, got %d", rec.Code)
	}
}

func TestTimerHandler_ListStatusFilter(t *testing.T) {
	r, _ := setupRouter(nil)
	token := signupAndToken(t, r)

	for _, title := range []string{"one", "two"} {
		rec := performAuthedRequest(r, http.MethodPost, "/api/auth/timers", token, map[string]string{
			"title":      title,
			"targetDate": "2030-01-01",
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("create %s: expected 201, got %d", title, rec.Code)
		}
	}

	rec := performAuthedRequest(r, http.MethodGet, "/api/auth/timers?status=all", token, nil)
	timers := decodeTimers(t, rec)
	if len(timers) != 2 {
		t.Fatalf("expected 2 timers, got %d", len(timers))
	}
	performAuthedRequest(r, http.MethodDelete, "/api/auth/timers/"+timers[0].ID, token, nil)

	rec = performAuthedRequest(r, http.MethodGet, "/api/auth/timers", token, nil)
	if active := decodeTimers(t, rec); len(active) != 1 || active[0].Title != "two" {
		t.Fatalf("expected default filter to hide deleted, got %+v", active)
	}

	rec = performAuthedRequest(r, http.MethodGet, "/api/auth/timers?status=deleted", token, nil)
	if deleted := decodeTimers(t, rec); len(deleted) != 1 || deleted[0].Title != "one" {
		t.Fatalf("expected deleted view, got %+v", deleted)
	}

	rec = performAuthedRequest(r, http.MethodGet, "/api/auth/timers?status=all", token, nil)
	if all := decodeTimers(t, rec); len(all) != 2 {
		t.Fatalf("expected all view of 2, got %d", len(all))
	}
}

func TestTimerHandler_Search(t *testing.T) {
	r, _ := setupRouter(nil)
	token := signupAndToken(t, r)

	payloads := []map[string]string{
		{"title": "Rocket Launch", "targetDate": "2030-01-01"},
		{"title": "Birthday", "description": "launch the cake", "targetDate": "2030-06-01"},
		{"title": "Unrelated", "targetDate": "2030-12-01"},
	}
	for _, p := range payloads {
		if rec := performAuthedRequest(r, http.MethodPost, "/api/auth/timers", token, p); rec.Code != http.StatusCreated {
			t.Fatalf("create %s: expected 201, got %d", p["title"], rec.Code)
		}
	}

	rec := performAuthedRequest(r, http.MethodGet, "/api/auth/timers/search?q=LAUNCH", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("search: expected 200, got %d", rec.Code)
	}
	if matched := decodeTimers(t, rec); len(matched) != 2 {
		t.Fatalf("expected 2 case-insensitive matches, got %+v", matched)
	}

	rec = performAuthedRequest(r, http.MethodGet, "/api/auth/timers/search", token, nil)
	if all := decodeTimers(t, rec); len(all) != 3 {
		t.Fatalf("expected empty query to list all active, got %d", len(all))
	}
}

func TestTimerHandler_UnknownTimerIsNotFound(t *testing.T) {
	r, _ := setupRouter(nil)
	token := signupAndToken(t, r)

	rec := performAuthedRequest(r, http.MethodPut, "/api/auth/timers/does-not-exist", token, map[string]string{
		"title": "x",
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("update: expected 404, got %d", rec.Code)
	}
	rec = performAuthedRequest(r, http.MethodDelete, "/api/auth/timers/does-not-exist", token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("delete: expected 404, got %d", rec.Code)
	}
}
