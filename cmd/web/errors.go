package main

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/AdamBeresnev/bracket-api/internal/bracket"
	"github.com/AdamBeresnev/bracket-api/internal/httputil"
	"github.com/AdamBeresnev/bracket-api/internal/service"
	"github.com/AdamBeresnev/bracket-api/internal/store"
	"github.com/go-chi/chi/v5/middleware"
)

type errorMapping struct {
	target error
	status int
	code   string
}

// First match wins. Anything unlisted is an internal error.
var errorMappings = []errorMapping{
	{service.ErrTournamentNotFound, http.StatusNotFound, "TOURNAMENT_NOT_FOUND"},
	{bracket.ErrMatchNotFound, http.StatusNotFound, "MATCH_NOT_FOUND"},
	{service.ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND"},
	{store.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},

	{service.ErrDuplicateTournament, http.StatusConflict, "DUPLICATE_TOURNAMENT"},
	{bracket.ErrDuplicateParticipant, http.StatusConflict, "DUPLICATE_PARTICIPANT"},
	{bracket.ErrResultAlreadySet, http.StatusConflict, "RESULT_ALREADY_SET"},
	{bracket.ErrAlreadyGenerated, http.StatusConflict, "ALREADY_GENERATED"},
	{bracket.ErrTournamentFinished, http.StatusConflict, "TOURNAMENT_FINISHED"},
	{bracket.ErrRegistrationClosed, http.StatusConflict, "REGISTRATION_CLOSED"},
	{service.ErrUsernameTaken, http.StatusConflict, "USERNAME_TAKEN"},

	{bracket.ErrMissingName, http.StatusBadRequest, "MISSING_NAME"},
	{service.ErrMissingFields, http.StatusBadRequest, "MISSING_FIELDS"},
	{bracket.ErrInvalidSeedOrder, http.StatusBadRequest, "INVALID_SEED_ORDER"},
	{bracket.ErrInvalidWinner, http.StatusBadRequest, "INVALID_WINNER"},
	{bracket.ErrInsufficientParticipants, http.StatusBadRequest, "INSUFFICIENT_PARTICIPANTS"},
	{service.ErrMalformedDocument, http.StatusBadRequest, "MALFORMED_DOCUMENT"},
	{service.ErrPasswordTooShort, http.StatusBadRequest, "PASSWORD_TOO_SHORT"},
	{store.ErrInvalidKey, http.StatusBadRequest, "INVALID_KEY"},

	{service.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
}

// serviceError writes the response for an error returned by a service call.
func (app *application) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			slog.Debug("request rejected", "code", m.code, "error", err, "requestID", middleware.GetReqID(r.Context()))
			httputil.Error(w, m.status, m.code, err.Error())
			return
		}
	}

	slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "requestID", middleware.GetReqID(r.Context()), "error", err)
	httputil.Error(w, http.StatusInternalServerError, "INTERNAL", "the server encountered a problem and could not process your request")
}

func (app *application) badRequest(w http.ResponseWriter, err error) {
	httputil.BadRequest(w, err.Error(), nil)
}

func (app *application) writeJSON(w http.ResponseWriter, status int, data any) {
	if err := httputil.WriteJSON(w, status, data, nil); err != nil {
		slog.Error("write response", "error", err)
	}
}
