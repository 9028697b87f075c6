package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/AdamBeresnev/bracket-api/internal/bracket"
	"github.com/AdamBeresnev/bracket-api/internal/config"
	"github.com/AdamBeresnev/bracket-api/internal/httputil"
	"github.com/AdamBeresnev/bracket-api/internal/service"
	"github.com/AdamBeresnev/bracket-api/internal/store"
	users "github.com/AdamBeresnev/bracket-api/internal/user"
	"github.com/alexedwards/scs/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	handler http.Handler
	backend store.Backend
	cookies []*http.Cookie
}

func newTestServer(t *testing.T, mutate func(*config.Config)) *testServer {
	t.Helper()

	cfg := config.Config{
		StoreBackend:    config.BackendMemory,
		SessionLifetime: time.Hour,
		CORSOrigins:     []string{"*"},
	}
	if mutate != nil {
		mutate(&cfg)
	}

	backend := store.NewMemoryBackend()
	app := newApplication(cfg, backend, scs.New())
	return &testServer{handler: app.routes(), backend: backend}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	r := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		r.Header.Set("Content-Type", "application/json")
	}
	for _, c := range s.cookies {
		r.AddCookie(c)
	}

	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, r)
	if cookies := w.Result().Cookies(); len(cookies) > 0 {
		s.cookies = cookies
	}
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func assertError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()

	assert.Equal(t, status, w.Code, w.Body.String())
	assert.Equal(t, code, decode[httputil.ErrorResponse](t, w).Code)
}

type resultResponse struct {
	Match   bracket.Match   `json:"match"`
	Outcome bracket.Outcome `json:"outcome"`
}

func TestTournamentLifecycle(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodPost, "/tournaments", `{"name": "Spring Cup", "theme": "green"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	meta := decode[bracket.Meta](t, w)
	assert.Equal(t, "Spring_Cup", meta.Name)
	assert.Equal(t, bracket.RegistrationOpen, meta.Status)

	assertError(t, s.do(t, http.MethodPost, "/tournaments", `{"name": "Spring Cup"}`), http.StatusConflict, "DUPLICATE_TOURNAMENT")

	for _, name := range []string{"Alice", "Bob", "Carol"} {
		w := s.do(t, http.MethodPost, "/tournaments/Spring_Cup/participants", `{"name": "`+name+`"}`)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}
	assertError(t, s.do(t, http.MethodPost, "/tournaments/Spring_Cup/participants", `{"name": "bob"}`), http.StatusConflict, "DUPLICATE_PARTICIPANT")

	w = s.do(t, http.MethodPost, "/tournaments/Spring_Cup/bracket", `{"seedOrder": ["Alice", "Bob", "Carol"]}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	view := decode[service.BracketView](t, w)
	assert.Equal(t, 1, view.Round)
	require.Len(t, view.Bracket, 2)
	assert.Nil(t, view.Bracket[1][1])

	w = s.do(t, http.MethodPost, "/tournaments/Spring_Cup/matches/1/result", `{"winner": "Carol"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, bracket.OutcomeRecorded, decode[resultResponse](t, w).Outcome)

	assertError(t, s.do(t, http.MethodPost, "/tournaments/Spring_Cup/matches/0/result", `{"winner": "Carol"}`), http.StatusBadRequest, "INVALID_WINNER")

	w = s.do(t, http.MethodPost, "/tournaments/Spring_Cup/matches/0/result", `{"winner": "Bob", "scores": [3, 1]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, bracket.OutcomeAdvanced, decode[resultResponse](t, w).Outcome)

	w = s.do(t, http.MethodGet, "/tournaments/Spring_Cup/bracket", "")
	require.Equal(t, http.StatusOK, w.Code)
	view = decode[service.BracketView](t, w)
	assert.Equal(t, 2, view.Round)
	assert.Equal(t, bracket.NewPair("Bob", view.Bracket[0][1]), view.Bracket[0])
	assert.Equal(t, "Carol", *view.Bracket[0][1])

	w = s.do(t, http.MethodPost, "/tournaments/Spring_Cup/matches/0/result", `{"winner": "Carol"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, bracket.OutcomeFinished, decode[resultResponse](t, w).Outcome)

	assertError(t, s.do(t, http.MethodPost, "/tournaments/Spring_Cup/matches/0/result", `{"winner": "Bob"}`), http.StatusConflict, "TOURNAMENT_FINISHED")

	w = s.do(t, http.MethodGet, "/tournaments/Spring_Cup/standings", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"standings": ["Carol", "Alice", "Bob"]}`, w.Body.String())

	w = s.do(t, http.MethodGet, "/tournaments/Spring_Cup/matches?round=1", "")
	require.Equal(t, http.StatusOK, w.Code)
	matches := decode[struct {
		Matches []bracket.Match `json:"matches"`
	}](t, w).Matches
	require.Len(t, matches, 2)
	assert.Len(t, matches[0].Scores, 2)

	w = s.do(t, http.MethodGet, "/tournaments/Spring_Cup", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, bracket.Finished, decode[bracket.Meta](t, w).Status)

	assertError(t, s.do(t, http.MethodPost, "/tournaments/Spring_Cup/bracket", `{"reseed": true}`), http.StatusConflict, "TOURNAMENT_FINISHED")
}

func TestTournamentMetaRoutes(t *testing.T) {
	s := newTestServer(t, nil)

	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/tournaments", `{"name": "Cup"}`).Code)

	w := s.do(t, http.MethodPatch, "/tournaments/Cup", `{"description": "Friday nights"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Friday nights", decode[bracket.Meta](t, w).Description)

	w = s.do(t, http.MethodPost, "/tournaments/Cup/rename", `{"newName": "Big Cup"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"oldName": "Cup", "newName": "Big_Cup"}`, w.Body.String())

	w = s.do(t, http.MethodGet, "/tournaments", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"tournaments": ["Big_Cup"]}`, w.Body.String())

	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, "/tournaments/Big_Cup", "").Code)
	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, "/tournaments/Big_Cup", "").Code)

	assertError(t, s.do(t, http.MethodGet, "/tournaments/Big_Cup", ""), http.StatusNotFound, "TOURNAMENT_NOT_FOUND")

	w = s.do(t, http.MethodGet, "/tournaments", "")
	assert.JSONEq(t, `{"tournaments": []}`, w.Body.String())
}

func TestParticipantPaging(t *testing.T) {
	s := newTestServer(t, nil)

	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/tournaments", `{"name": "Cup"}`).Code)
	for _, name := range []string{"P0", "P1", "P2", "P3", "P4", "P5", "P6", "P7", "P8", "P9"} {
		require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/tournaments/Cup/participants", `{"name": "`+name+`"}`).Code)
	}

	w := s.do(t, http.MethodGet, "/tournaments/Cup/participants?page=2&perPage=4", "")
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[service.ParticipantPage](t, w)
	assert.Equal(t, 10, page.Total)
	require.Len(t, page.Participants, 4)
	assert.Equal(t, "P4", page.Participants[0].Name)
	assert.Equal(t, "P7", page.Participants[3].Name)

	w = s.do(t, http.MethodGet, "/tournaments/Cup/participants?page=5&perPage=4", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[service.ParticipantPage](t, w).Participants)

	w = s.do(t, http.MethodGet, "/tournaments/Cup/participants", "")
	require.Equal(t, http.StatusOK, w.Code)
	all := decode[struct {
		Participants []bracket.Participant `json:"participants"`
	}](t, w)
	assert.Len(t, all.Participants, 10)

	assertError(t, s.do(t, http.MethodGet, "/tournaments/Cup/participants?page=two", ""), http.StatusBadRequest, "BAD_REQUEST")
}

func TestMatchChatRoute(t *testing.T) {
	s := newTestServer(t, nil)

	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/tournaments", `{"name": "Cup"}`).Code)
	for _, name := range []string{"Alice", "Bob"} {
		require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/tournaments/Cup/participants", `{"name": "`+name+`"}`).Code)
	}
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/tournaments/Cup/bracket", "").Code)

	w := s.do(t, http.MethodPost, "/tournaments/Cup/matches/0/chat", `{"round": 1, "user": "Alice", "message": "glhf"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	chat := decode[struct {
		Chat []bracket.ChatEntry `json:"chat"`
	}](t, w).Chat
	require.Len(t, chat, 1)
	assert.Equal(t, "glhf", chat[0].Message)

	assertError(t, s.do(t, http.MethodPost, "/tournaments/Cup/matches/4/chat", `{"user": "Alice", "message": "hi"}`), http.StatusNotFound, "MATCH_NOT_FOUND")
	assertError(t, s.do(t, http.MethodPost, "/tournaments/Cup/matches/0/chat", `{"message": "hi"}`), http.StatusBadRequest, "MISSING_FIELDS")

	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/users/register", `{"username": "bob", "password": "correct horse"}`).Code)

	w = s.do(t, http.MethodPost, "/tournaments/Cup/matches/0/chat", `{"user": "Alice", "message": "gg"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	chat = decode[struct {
		Chat []bracket.ChatEntry `json:"chat"`
	}](t, w).Chat
	require.Len(t, chat, 2)
	assert.Equal(t, "bob", chat[1].User, "a logged-in user cannot post under another name")
	assert.Equal(t, "gg", chat[1].Message)
}

func TestExportImportRoutes(t *testing.T) {
	s := newTestServer(t, nil)

	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/tournaments", `{"name": "Cup"}`).Code)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/tournaments/Cup/participants", `{"name": "Alice"}`).Code)

	w := s.do(t, http.MethodGet, "/tournaments/Cup/export", "")
	require.Equal(t, http.StatusOK, w.Code)
	exported := strings.TrimSpace(w.Body.String())

	w = s.do(t, http.MethodPost, "/tournaments/import", `{"name": "Cup Copy", "document": `+exported+`}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "Cup_Copy", decode[bracket.Meta](t, w).Name)

	w = s.do(t, http.MethodGet, "/tournaments/Cup_Copy/participants", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"Alice"`)

	assertError(t, s.do(t, http.MethodPost, "/tournaments/import", `{"name": "Cup", "document": `+exported+`}`), http.StatusConflict, "DUPLICATE_TOURNAMENT")
	assertError(t, s.do(t, http.MethodPost, "/tournaments/import", `{"name": "Other"}`), http.StatusBadRequest, "MISSING_FIELDS")
}

func TestRequestValidation(t *testing.T) {
	s := newTestServer(t, nil)

	assertError(t, s.do(t, http.MethodPost, "/tournaments", `{"name": `), http.StatusBadRequest, "BAD_REQUEST")
	assertError(t, s.do(t, http.MethodPost, "/tournaments", `{"title": "Cup"}`), http.StatusBadRequest, "BAD_REQUEST")
	assertError(t, s.do(t, http.MethodPost, "/tournaments", `{"name": ""}`), http.StatusBadRequest, "MISSING_NAME")
	assertError(t, s.do(t, http.MethodPost, "/tournaments/Cup/matches/x/result", `{"winner": "Alice"}`), http.StatusBadRequest, "BAD_REQUEST")
	assertError(t, s.do(t, http.MethodGet, "/nowhere", ""), http.StatusNotFound, "NOT_FOUND")
}

func TestCorruptDocumentIsInternalError(t *testing.T) {
	s := newTestServer(t, nil)

	docs := s.backend.Collection(store.TournamentsCollection)
	require.NoError(t, docs.Put(context.Background(), "Broken", []byte(`{"meta": `)))

	w := s.do(t, http.MethodGet, "/tournaments/Broken", "")
	assertError(t, w, http.StatusInternalServerError, "INTERNAL")
	assert.NotContains(t, w.Body.String(), "corrupt")
}

func TestRequireAuthGate(t *testing.T) {
	s := newTestServer(t, func(cfg *config.Config) { cfg.RequireAuth = true })

	assertError(t, s.do(t, http.MethodPost, "/tournaments", `{"name": "Cup"}`), http.StatusUnauthorized, "UNAUTHORIZED")
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/tournaments", "").Code, "reads stay public")

	w := s.do(t, http.MethodPost, "/users/register", `{"username": "alice", "password": "correct horse"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.NotEmpty(t, s.cookies)

	assert.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/tournaments", `{"name": "Cup"}`).Code)

	w = s.do(t, http.MethodGet, "/users/me", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice", decode[users.Profile](t, w).Username)
	assert.NotContains(t, w.Body.String(), "passwordHash")

	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodPost, "/users/logout", "").Code)
	s.cookies = nil
	assertError(t, s.do(t, http.MethodGet, "/users/me", ""), http.StatusUnauthorized, "UNAUTHORIZED")

	assertError(t, s.do(t, http.MethodPost, "/users/login", `{"username": "alice", "password": "wrong horse"}`), http.StatusUnauthorized, "INVALID_CREDENTIALS")

	w = s.do(t, http.MethodPost, "/users/login", `{"username": "ALICE", "password": "correct horse"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodPatch, "/users/me", `{"displayName": "Alice L."}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Alice L.", decode[users.Profile](t, w).DisplayName)
}

func TestCommentRoutes(t *testing.T) {
	s := newTestServer(t, nil)

	assertError(t, s.do(t, http.MethodPost, "/messages/msg-1/comments", `{"body": "hi"}`), http.StatusUnauthorized, "UNAUTHORIZED")

	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/users/register", `{"username": "bob", "password": "correct horse"}`).Code)

	w := s.do(t, http.MethodPost, "/messages/msg-1/comments", `{"body": "first"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "bob", decode[service.Comment](t, w).User)

	w = s.do(t, http.MethodGet, "/messages/msg-1/comments", "")
	require.Equal(t, http.StatusOK, w.Code)
	comments := decode[struct {
		Comments []service.Comment `json:"comments"`
	}](t, w).Comments
	require.Len(t, comments, 1)
	assert.Equal(t, "first", comments[0].Body)
}

func TestGuestLogin(t *testing.T) {
	s := newTestServer(t, nil)
	assertError(t, s.do(t, http.MethodPost, "/auth/guest", ""), http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED")

	s = newTestServer(t, func(cfg *config.Config) { cfg.AllowGuest = true })
	w := s.do(t, http.MethodPost, "/auth/guest", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, service.GuestUserID, decode[users.Profile](t, w).ID)
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, nil)
	w := s.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status": "ok"}`, w.Body.String())
}
