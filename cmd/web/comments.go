package main

import (
	"net/http"

	"github.com/AdamBeresnev/bracket-api/internal/httputil"
	"github.com/AdamBeresnev/bracket-api/internal/middleware"
	"github.com/go-chi/chi/v5"
)

func (app *application) listComments(w http.ResponseWriter, r *http.Request) {
	comments, err := app.comments.ListComments(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	app.writeJSON(w, http.StatusOK, envelope{"comments": comments})
}

// addComment always posts as the logged in user.
func (app *application) addComment(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Body string `json:"body"`
	}
	if err := httputil.ReadJSON(w, r, &input); err != nil {
		app.badRequest(w, err)
		return
	}

	user := middleware.GetAuthenticatedUser(r.Context())
	comment, err := app.comments.AddComment(r.Context(), chi.URLParam(r, "id"), user.Username, input.Body)
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	app.writeJSON(w, http.StatusCreated, comment)
}
