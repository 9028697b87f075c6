package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/AdamBeresnev/bracket-api/internal/httputil"
	"github.com/AdamBeresnev/bracket-api/internal/service"
	"github.com/go-chi/chi/v5"
)

func (app *application) createTournament(w http.ResponseWriter, r *http.Request) {
	var input service.CreateTournamentInput
	if err := httputil.ReadJSON(w, r, &input); err != nil {
		app.badRequest(w, err)
		return
	}

	meta, err := app.tournaments.CreateTournament(r.Context(), input)
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	app.writeJSON(w, http.StatusCreated, meta)
}

func (app *application) listTournaments(w http.ResponseWriter, r *http.Request) {
	names, err := app.tournaments.ListTournaments(r.Context())
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	app.writeJSON(w, http.StatusOK, envelope{"tournaments": names})
}

func (app *application) getTournamentMeta(w http.ResponseWriter, r *http.Request) {
	meta, err := app.tournaments.GetMeta(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	app.writeJSON(w, http.StatusOK, meta)
}

func (app *application) patchTournamentMeta(w http.ResponseWriter, r *http.Request) {
	var patch service.MetaPatch
	if err := httputil.ReadJSON(w, r, &patch); err != nil {
		app.badRequest(w, err)
		return
	}

	meta, err := app.tournaments.PatchMeta(r.Context(), chi.URLParam(r, "name"), patch)
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	app.writeJSON(w, http.StatusOK, meta)
}

func (app *application) renameTournament(w http.ResponseWriter, r *http.Request) {
	var input struct {
		NewName string `json:"newName"`
	}
	if err := httputil.ReadJSON(w, r, &input); err != nil {
		app.badRequest(w, err)
		return
	}

	result, err := app.tournaments.RenameTournament(r.Context(), chi.URLParam(r, "name"), input.NewName)
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	app.writeJSON(w, http.StatusOK, result)
}

func (app *application) deleteTournament(w http.ResponseWriter, r *http.Request) {
	if err := app.tournaments.DeleteTournament(r.Context(), chi.URLParam(r, "name")); err != nil {
		app.serviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) signup(w http.ResponseWriter, r *http.Request) {
	var input service.ParticipantInput
	if err := httputil.ReadJSON(w, r, &input); err != nil {
		app.badRequest(w, err)
		return
	}

	participants, err := app.tournaments.Signup(r.Context(), chi.URLParam(r, "name"), input)
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	app.writeJSON(w, http.StatusCreated, envelope{"participants": participants})
}

// listParticipants pages the list when page or perPage is given.
func (app *application) listParticipants(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	query := r.URL.Query()

	if !query.Has("page") && !query.Has("perPage") {
		participants, err := app.tournaments.ListParticipants(r.Context(), name)
		if err != nil {
			app.serviceError(w, r, err)
			return
		}
		app.writeJSON(w, http.StatusOK, envelope{"participants": participants})
		return
	}

	page, err := queryInt(r, "page")
	if err != nil {
		app.badRequest(w, err)
		return
	}
	perPage, err := queryInt(r, "perPage")
	if err != nil {
		app.badRequest(w, err)
		return
	}

	result, err := app.tournaments.PagedParticipants(r.Context(), name, page, perPage)
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	app.writeJSON(w, http.StatusOK, result)
}

func (app *application) generateBracket(w http.ResponseWriter, r *http.Request) {
	var input service.GenerateInput
	// An empty body means a shuffled draw
	if r.ContentLength != 0 {
		if err := httputil.ReadJSON(w, r, &input); err != nil {
			app.badRequest(w, err)
			return
		}
	}

	view, err := app.tournaments.GenerateBracket(r.Context(), chi.URLParam(r, "name"), input)
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	app.writeJSON(w, http.StatusCreated, view)
}

func (app *application) getBracket(w http.ResponseWriter, r *http.Request) {
	view, err := app.tournaments.GetBracket(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	app.writeJSON(w, http.StatusOK, view)
}

func (app *application) getStandings(w http.ResponseWriter, r *http.Request) {
	standings, err := app.tournaments.GetStandings(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	app.writeJSON(w, http.StatusOK, envelope{"standings": standings})
}

func (app *application) exportTournament(w http.ResponseWriter, r *http.Request) {
	tournament, err := app.tournaments.ExportTournament(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	app.writeJSON(w, http.StatusOK, tournament)
}

func (app *application) importTournament(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name     string          `json:"name"`
		Document json.RawMessage `json:"document"`
	}
	if err := httputil.ReadJSON(w, r, &input); err != nil {
		app.badRequest(w, err)
		return
	}

	meta, err := app.tournaments.ImportTournament(r.Context(), input.Name, input.Document)
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	app.writeJSON(w, http.StatusCreated, meta)
}

// queryInt returns 0 for an absent parameter.
func queryInt(r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("query parameter %q must be an integer", key)
	}
	return v, nil
}
