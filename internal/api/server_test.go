package api

import (
	"encoding/json/v2"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rankdeck/rankdeck-server/internal/config"
	"github.com/rankdeck/rankdeck-server/internal/service"
	"github.com/rankdeck/rankdeck-server/internal/store"
)

// setupTestServer builds a full server against a temporary store.
func setupTestServer(t *testing.T) *Server {
	t.Helper()

	st, err := store.New(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		st.Close()
	})

	logger := slog.New(slog.DiscardHandler)
	cfg := &config.Config{
		App:    config.AppConfig{Environment: "development"},
		Logger: config.LoggerConfig{Level: "info"},
		Server: config.ServerConfig{Port: "8080"},
		CORS:   config.CORSConfig{AllowedOrigins: []string{"*"}},
		RateLimit: config.RateLimitConfig{
			Enabled: false,
		},
	}

	srv := NewServer(cfg, st,
		service.NewSessionService(st, logger),
		service.NewCardService(st, logger),
		logger,
	)
	t.Cleanup(srv.Close)

	return srv
}

// doRequest executes a request against the server and decodes the envelope.
func doRequest(t *testing.T, srv *Server, method, path, body, token string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("x-owner-token", token)
	}

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	var envelope map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	}

	return rec, envelope
}

func data(t *testing.T, envelope map[string]any) map[string]any {
	t.Helper()
	d, ok := envelope["data"].(map[string]any)
	require.True(t, ok, "envelope has no data object: %v", envelope)
	return d
}

func session(t *testing.T, envelope map[string]any) map[string]any {
	t.Helper()
	s, ok := data(t, envelope)["session"].(map[string]any)
	require.True(t, ok, "data has no session object: %v", envelope)
	return s
}

func errorCode(t *testing.T, envelope map[string]any) string {
	t.Helper()
	e, ok := envelope["error"].(map[string]any)
	require.True(t, ok, "envelope has no error object: %v", envelope)
	return e["code"].(string)
}

// createSession is a test helper that creates a session and returns its slug.
func createSession(t *testing.T, srv *Server, title, token string) string {
	t.Helper()

	rec, envelope := doRequest(t, srv, http.MethodPost, "/api/sessions", `{"title":"`+title+`"}`, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return session(t, envelope)["slug"].(string)
}

// createCard is a test helper that adds a card and returns its id.
func createCard(t *testing.T, srv *Server, slug, title, token string) string {
	t.Helper()

	rec, envelope := doRequest(t, srv, http.MethodPost, "/api/sessions/"+slug+"/cards", `{"title":"`+title+`"}`, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	card := data(t, envelope)["card"].(map[string]any)
	return card["id"].(string)
}

func TestHealthCheck(t *testing.T) {
	srv := setupTestServer(t)

	rec, envelope := doRequest(t, srv, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, envelope["ok"])
	assert.Equal(t, "healthy", data(t, envelope)["status"])
}

func TestCreateSession(t *testing.T) {
	srv := setupTestServer(t)

	rec, envelope := doRequest(t, srv, http.MethodPost, "/api/sessions",
		`{"title":"Best Movies","description":"All-time favorites"}`, "tok-owner")

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, true, envelope["ok"])

	s := session(t, envelope)
	assert.Contains(t, s["slug"], "best-movies-")
	assert.Equal(t, "Best Movies", s["title"])
	assert.Equal(t, "tok-owner", s["ownerId"])
	assert.Equal(t, []any{}, s["cardOrder"])
}

func TestCreateSession_MissingTitle(t *testing.T) {
	srv := setupTestServer(t)

	rec, envelope := doRequest(t, srv, http.MethodPost, "/api/sessions", `{"description":"no title"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, envelope["ok"])
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, envelope))
}

func TestCreateSession_MalformedBody(t *testing.T) {
	srv := setupTestServer(t)

	rec, envelope := doRequest(t, srv, http.MethodPost, "/api/sessions", `{not json`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, envelope))
}

func TestListSessions(t *testing.T) {
	srv := setupTestServer(t)

	createSession(t, srv, "One", "")
	createSession(t, srv, "Two", "")

	rec, envelope := doRequest(t, srv, http.MethodGet, "/api/sessions", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	list, ok := data(t, envelope)["sessions"].([]any)
	require.True(t, ok)
	assert.Len(t, list, 2)
}

func TestGetSession(t *testing.T) {
	srv := setupTestServer(t)

	slug := createSession(t, srv, "Best Movies", "tok-owner")
	cardID := createCard(t, srv, slug, "Alien", "tok-owner")

	rec, envelope := doRequest(t, srv, http.MethodGet, "/api/sessions/"+slug, "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	d := data(t, envelope)
	assert.Equal(t, slug, d["session"].(map[string]any)["slug"])

	cards := d["cards"].([]any)
	require.Len(t, cards, 1)
	assert.Equal(t, cardID, cards[0].(map[string]any)["id"])
}

func TestGetSession_NotFound(t *testing.T) {
	srv := setupTestServer(t)

	rec, envelope := doRequest(t, srv, http.MethodGet, "/api/sessions/no-such-slug", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(t, envelope))
}

func TestGetSession_InvalidSlug(t *testing.T) {
	srv := setupTestServer(t)

	rec, envelope := doRequest(t, srv, http.MethodGet, "/api/sessions/Not%20A%20Slug", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, envelope))
}

func TestUpdateSession(t *testing.T) {
	srv := setupTestServer(t)

	slug := createSession(t, srv, "Draft", "tok-owner")

	rec, envelope := doRequest(t, srv, http.MethodPatch, "/api/sessions/"+slug,
		`{"title":"Final"}`, "tok-owner")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Final", session(t, envelope)["title"])
}

func TestUpdateSession_EmptyTitle(t *testing.T) {
	srv := setupTestServer(t)

	slug := createSession(t, srv, "Keep Me", "tok-owner")

	rec, envelope := doRequest(t, srv, http.MethodPatch, "/api/sessions/"+slug,
		`{"title":""}`, "tok-owner")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, envelope))

	// The stored title is untouched.
	rec, envelope = doRequest(t, srv, http.MethodGet, "/api/sessions/"+slug, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Keep Me", data(t, envelope)["session"].(map[string]any)["title"])
}

func TestUpdateSession_WrongToken(t *testing.T) {
	srv := setupTestServer(t)

	slug := createSession(t, srv, "Guarded", "tok-owner")

	rec, envelope := doRequest(t, srv, http.MethodPatch, "/api/sessions/"+slug,
		`{"title":"Hijacked"}`, "tok-intruder")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, envelope))
}

func TestDeleteSession(t *testing.T) {
	srv := setupTestServer(t)

	slug := createSession(t, srv, "Doomed", "tok-owner")

	rec, envelope := doRequest(t, srv, http.MethodDelete, "/api/sessions/"+slug, "", "tok-owner")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, data(t, envelope)["message"], "deleted")

	rec, _ = doRequest(t, srv, http.MethodGet, "/api/sessions/"+slug, "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReorder(t *testing.T) {
	srv := setupTestServer(t)

	slug := createSession(t, srv, "Best Movies", "tok-owner")
	cardA := createCard(t, srv, slug, "Alien", "tok-owner")
	cardB := createCard(t, srv, slug, "Blade Runner", "tok-owner")

	rec, envelope := doRequest(t, srv, http.MethodPatch, "/api/sessions/"+slug+"/order",
		`{"cardOrder":["`+cardB+`","`+cardA+`"]}`, "tok-owner")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	order := data(t, envelope)["cardOrder"].([]any)
	assert.Equal(t, []any{cardB, cardA}, order)
}

func TestReorder_MissingEntry(t *testing.T) {
	srv := setupTestServer(t)

	slug := createSession(t, srv, "Best Movies", "tok-owner")
	cardA := createCard(t, srv, slug, "Alien", "tok-owner")
	createCard(t, srv, slug, "Blade Runner", "tok-owner")

	rec, envelope := doRequest(t, srv, http.MethodPatch, "/api/sessions/"+slug+"/order",
		`{"cardOrder":["`+cardA+`"]}`, "tok-owner")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_ORDER", errorCode(t, envelope))
}

func TestReorder_MalformedCardID(t *testing.T) {
	srv := setupTestServer(t)

	slug := createSession(t, srv, "Best Movies", "tok-owner")
	createCard(t, srv, slug, "Alien", "tok-owner")

	rec, envelope := doRequest(t, srv, http.MethodPatch, "/api/sessions/"+slug+"/order",
		`{"cardOrder":["not-a-card-id"]}`, "tok-owner")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_CARD_ID", errorCode(t, envelope))
}

func TestReorder_ForeignCardID(t *testing.T) {
	srv := setupTestServer(t)

	slugA := createSession(t, srv, "List A", "tok-owner")
	slugB := createSession(t, srv, "List B", "tok-owner")
	createCard(t, srv, slugA, "Alien", "tok-owner")
	cardB := createCard(t, srv, slugB, "Blade Runner", "tok-owner")

	// cardB is well-formed but belongs to another session.
	rec, envelope := doRequest(t, srv, http.MethodPatch, "/api/sessions/"+slugA+"/order",
		`{"cardOrder":["`+cardB+`"]}`, "tok-owner")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_CARD_ID", errorCode(t, envelope))
}

func TestReorder_MissingBody(t *testing.T) {
	srv := setupTestServer(t)

	slug := createSession(t, srv, "Best Movies", "tok-owner")

	rec, envelope := doRequest(t, srv, http.MethodPatch, "/api/sessions/"+slug+"/order", `{}`, "tok-owner")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, envelope))
}

func TestCreateCard(t *testing.T) {
	srv := setupTestServer(t)

	slug := createSession(t, srv, "Best Movies", "tok-owner")

	rec, envelope := doRequest(t, srv, http.MethodPost, "/api/sessions/"+slug+"/cards",
		`{"title":"Alien","imageUrl":"https://example.com/alien.jpg","tags":["sci-fi"]}`, "tok-owner")
	require.Equal(t, http.StatusCreated, rec.Code)

	d := data(t, envelope)
	card := d["card"].(map[string]any)
	assert.Equal(t, "Alien", card["title"])
	assert.Equal(t, "https://example.com/alien.jpg", card["imageUrl"])

	order := d["cardOrder"].([]any)
	assert.Equal(t, []any{card["id"]}, order)
}

func TestCreateCard_BadImageURL(t *testing.T) {
	srv := setupTestServer(t)

	slug := createSession(t, srv, "Best Movies", "")

	rec, envelope := doRequest(t, srv, http.MethodPost, "/api/sessions/"+slug+"/cards",
		`{"title":"Alien","imageUrl":"not a url"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, envelope))
}

func TestUpdateCard(t *testing.T) {
	srv := setupTestServer(t)

	slug := createSession(t, srv, "Best Movies", "tok-owner")
	cardID := createCard(t, srv, slug, "Alein", "tok-owner")

	rec, envelope := doRequest(t, srv, http.MethodPatch, "/api/cards/"+cardID,
		`{"title":"Alien"}`, "tok-owner")
	require.Equal(t, http.StatusOK, rec.Code)
	card := data(t, envelope)["card"].(map[string]any)
	assert.Equal(t, "Alien", card["title"])
}

func TestUpdateCard_EmptyTitle(t *testing.T) {
	srv := setupTestServer(t)

	slug := createSession(t, srv, "Best Movies", "tok-owner")
	cardID := createCard(t, srv, slug, "Alien", "tok-owner")

	rec, envelope := doRequest(t, srv, http.MethodPatch, "/api/cards/"+cardID,
		`{"title":""}`, "tok-owner")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, envelope))

	// Clearing the description is fine; the title stays required.
	rec, envelope = doRequest(t, srv, http.MethodPatch, "/api/cards/"+cardID,
		`{"description":""}`, "tok-owner")
	require.Equal(t, http.StatusOK, rec.Code)
	card := data(t, envelope)["card"].(map[string]any)
	assert.Equal(t, "Alien", card["title"])
}

func TestUpdateCard_InvalidID(t *testing.T) {
	srv := setupTestServer(t)

	rec, envelope := doRequest(t, srv, http.MethodPatch, "/api/cards/garbage", `{"title":"x"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_ID", errorCode(t, envelope))
}

func TestUpdateCard_NotFound(t *testing.T) {
	srv := setupTestServer(t)

	// Well-formed id that does not exist.
	rec, envelope := doRequest(t, srv, http.MethodPatch, "/api/cards/card-V1StGXR8_Z5jdHi6B-myT",
		`{"title":"x"}`, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(t, envelope))
}

func TestDeleteCard(t *testing.T) {
	srv := setupTestServer(t)

	slug := createSession(t, srv, "Best Movies", "tok-owner")
	cardA := createCard(t, srv, slug, "Alien", "tok-owner")
	cardB := createCard(t, srv, slug, "Blade Runner", "tok-owner")

	rec, envelope := doRequest(t, srv, http.MethodDelete, "/api/cards/"+cardA, "", "tok-owner")
	require.Equal(t, http.StatusOK, rec.Code)

	d := data(t, envelope)
	assert.Contains(t, d["message"], "deleted")
	assert.Equal(t, []any{cardB}, d["cardOrder"].([]any))
}

func TestDeleteCard_WrongToken(t *testing.T) {
	srv := setupTestServer(t)

	slug := createSession(t, srv, "Guarded", "tok-owner")
	cardID := createCard(t, srv, slug, "Alien", "tok-owner")

	rec, envelope := doRequest(t, srv, http.MethodDelete, "/api/cards/"+cardID, "", "tok-intruder")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, envelope))
}

func TestRateLimit(t *testing.T) {
	st, err := store.New(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		st.Close()
	})

	logger := slog.New(slog.DiscardHandler)
	cfg := &config.Config{
		CORS: config.CORSConfig{AllowedOrigins: []string{"*"}},
		RateLimit: config.RateLimitConfig{
			Enabled: true,
			RPS:     1,
			Burst:   2,
		},
	}

	srv := NewServer(cfg, st,
		service.NewSessionService(st, logger),
		service.NewCardService(st, logger),
		logger,
	)
	t.Cleanup(srv.Close)

	var lastCode int
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		rec, _ := doRequest(t, srv, http.MethodGet, "/health", "", "")
		lastCode = rec.Code
		if lastCode == http.StatusTooManyRequests {
			break
		}
	}
	assert.Equal(t, http.StatusTooManyRequests, lastCode)
}
