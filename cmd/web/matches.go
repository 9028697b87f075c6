package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/AdamBeresnev/bracket-api/internal/bracket"
	"github.com/AdamBeresnev/bracket-api/internal/httputil"
	"github.com/AdamBeresnev/bracket-api/internal/middleware"
	"github.com/AdamBeresnev/bracket-api/internal/service"
	"github.com/go-chi/chi/v5"
)

func (app *application) listMatches(w http.ResponseWriter, r *http.Request) {
	var round *int
	if r.URL.Query().Has("round") {
		v, err := queryInt(r, "round")
		if err != nil {
			app.badRequest(w, err)
			return
		}
		round = &v
	}

	matches, err := app.matches.ListMatches(r.Context(), chi.URLParam(r, "name"), round)
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	app.writeJSON(w, http.StatusOK, envelope{"matches": matches})
}

func (app *application) submitResult(w http.ResponseWriter, r *http.Request) {
	index, err := matchIndexParam(r)
	if err != nil {
		app.badRequest(w, err)
		return
	}

	var input struct {
		Winner string            `json:"winner"`
		Scores []json.RawMessage `json:"scores"`
		Notes  string            `json:"notes"`
	}
	if err := httputil.ReadJSON(w, r, &input); err != nil {
		app.badRequest(w, err)
		return
	}

	match, outcome, err := app.matches.SubmitResult(r.Context(), chi.URLParam(r, "name"), service.ResultInput{
		MatchIndex: index,
		Winner:     input.Winner,
		Scores:     input.Scores,
		Notes:      input.Notes,
	})
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	app.writeJSON(w, http.StatusOK, struct {
		Match   bracket.Match   `json:"match"`
		Outcome bracket.Outcome `json:"outcome"`
	}{match, outcome})
}

// addMatchChat posts as the logged in user unless the body names someone.
func (app *application) addMatchChat(w http.ResponseWriter, r *http.Request) {
	index, err := matchIndexParam(r)
	if err != nil {
		app.badRequest(w, err)
		return
	}

	var input struct {
		Round   int    `json:"round"`
		User    string `json:"user"`
		Message string `json:"message"`
	}
	if err := httputil.ReadJSON(w, r, &input); err != nil {
		app.badRequest(w, err)
		return
	}
	// Logged-in users always post as themselves
	if user := middleware.GetAuthenticatedUser(r.Context()); user != nil {
		input.User = user.Username
	}

	chat, err := app.matches.AddMatchChat(r.Context(), chi.URLParam(r, "name"), service.ChatInput{
		Round:      input.Round,
		MatchIndex: index,
		User:       input.User,
		Message:    input.Message,
	})
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	app.writeJSON(w, http.StatusCreated, envelope{"chat": chat})
}

func matchIndexParam(r *http.Request) (int, error) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		return 0, errors.New("match index must be a non-negative integer")
	}
	return index, nil
}
