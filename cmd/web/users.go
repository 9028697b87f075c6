package main

import (
	"net/http"

	"github.com/AdamBeresnev/bracket-api/internal/httputil"
	"github.com/AdamBeresnev/bracket-api/internal/middleware"
	"github.com/AdamBeresnev/bracket-api/internal/service"
	users "github.com/AdamBeresnev/bracket-api/internal/user"
	"github.com/go-chi/chi/v5"
	"github.com/markbates/goth/gothic"
)

func (app *application) startSession(w http.ResponseWriter, r *http.Request, user *users.User) bool {
	// New token on privilege change to avoid session fixation
	if err := app.sessionManager.RenewToken(r.Context()); err != nil {
		httputil.InternalServerError(w, "Failed to renew session token", err)
		return false
	}
	app.sessionManager.Put(r.Context(), middleware.SessionUserIDKey, user.ID.String())
	return true
}

func (app *application) register(w http.ResponseWriter, r *http.Request) {
	var input service.RegisterInput
	if err := httputil.ReadJSON(w, r, &input); err != nil {
		app.badRequest(w, err)
		return
	}

	user, err := app.users.Register(r.Context(), input)
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	if !app.startSession(w, r, user) {
		return
	}
	app.writeJSON(w, http.StatusCreated, user.Profile())
}

func (app *application) login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := httputil.ReadJSON(w, r, &input); err != nil {
		app.badRequest(w, err)
		return
	}

	user, err := app.users.Login(r.Context(), input.Username, input.Password)
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	if !app.startSession(w, r, user) {
		return
	}
	app.writeJSON(w, http.StatusOK, user.Profile())
}

func (app *application) logout(w http.ResponseWriter, r *http.Request) {
	if err := app.sessionManager.Destroy(r.Context()); err != nil {
		httputil.InternalServerError(w, "Failed to destroy session", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) getProfile(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetAuthenticatedUser(r.Context())
	app.writeJSON(w, http.StatusOK, user.Profile())
}

func (app *application) updateProfile(w http.ResponseWriter, r *http.Request) {
	var patch service.ProfilePatch
	if err := httputil.ReadJSON(w, r, &patch); err != nil {
		app.badRequest(w, err)
		return
	}

	userID, _ := middleware.GetUserIDFromContext(r.Context())
	user, err := app.users.UpdateProfile(r.Context(), userID, patch)
	if err != nil {
		app.serviceError(w, r, err)
		return
	}
	app.writeJSON(w, http.StatusOK, user.Profile())
}

func (app *application) guestLogin(w http.ResponseWriter, r *http.Request) {
	user, err := app.users.EnsureGuestUser(r.Context())
	if err != nil {
		httputil.InternalServerError(w, "Failed to login as guest", err)
		return
	}
	if !app.startSession(w, r, user) {
		return
	}
	app.writeJSON(w, http.StatusOK, user.Profile())
}

// withProvider exposes the chi provider param where gothic looks for it.
func withProvider(r *http.Request) *http.Request {
	query := r.URL.Query()
	query.Set("provider", chi.URLParam(r, "provider"))
	r.URL.RawQuery = query.Encode()
	return r
}

func (app *application) beginOAuth(w http.ResponseWriter, r *http.Request) {
	gothic.BeginAuthHandler(w, withProvider(r))
}

func (app *application) completeOAuth(w http.ResponseWriter, r *http.Request) {
	gothUser, err := gothic.CompleteUserAuth(w, withProvider(r))
	if err != nil {
		httputil.BadRequest(w, "Authentication failure", err)
		return
	}

	user, err := app.users.FindOrCreateUserByProvider(r.Context(), gothUser)
	if err != nil {
		httputil.InternalServerError(w, "Failed to find or create user", err)
		return
	}
	if !app.startSession(w, r, user) {
		return
	}
	app.writeJSON(w, http.StatusOK, user.Profile())
}
