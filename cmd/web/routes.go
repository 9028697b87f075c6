package main

import (
	"net/http"

	"github.com/AdamBeresnev/bracket-api/internal/config"
	"github.com/AdamBeresnev/bracket-api/internal/httputil"
	"github.com/AdamBeresnev/bracket-api/internal/middleware"
	"github.com/AdamBeresnev/bracket-api/internal/service"
	"github.com/AdamBeresnev/bracket-api/internal/store"
	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type envelope map[string]any

type application struct {
	cfg            config.Config
	sessionManager *scs.SessionManager

	tournaments *service.TournamentService
	matches     *service.MatchService
	users       *service.UserService
	comments    *service.CommentService
}

func newApplication(cfg config.Config, backend store.Backend, sessionManager *scs.SessionManager) *application {
	// One lock table, so tournament and match writes on the same key serialize
	locks := service.NewKeyLocks()
	tournamentStore := store.NewTournamentStore(backend.Collection(store.TournamentsCollection))

	return &application{
		cfg:            cfg,
		sessionManager: sessionManager,
		tournaments:    service.NewTournamentService(tournamentStore, locks),
		matches:        service.NewMatchService(tournamentStore, locks),
		users:          service.NewUserService(store.NewUserStore(backend.Collection(store.UsersCollection)), locks),
		comments:       service.NewCommentService(backend.Collection(store.CommentsCollection), locks),
	}
}

func (app *application) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   app.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(app.sessionManager.LoadAndSave)
	r.Use(middleware.LoadAuthenticatedUser(app.sessionManager, app.users))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httputil.NotFound(w, "the requested resource could not be found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httputil.Error(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		app.writeJSON(w, http.StatusOK, envelope{"status": "ok"})
	})

	r.Route("/tournaments", func(r chi.Router) {
		r.Get("/", app.listTournaments)
		r.Get("/{name}", app.getTournamentMeta)
		r.Get("/{name}/participants", app.listParticipants)
		r.Get("/{name}/bracket", app.getBracket)
		r.Get("/{name}/matches", app.listMatches)
		r.Get("/{name}/standings", app.getStandings)
		r.Get("/{name}/export", app.exportTournament)

		r.Group(func(r chi.Router) {
			if app.cfg.RequireAuth {
				r.Use(middleware.RequireAuth)
			}

			r.Post("/", app.createTournament)
			r.Post("/import", app.importTournament)
			r.Patch("/{name}", app.patchTournamentMeta)
			r.Delete("/{name}", app.deleteTournament)
			r.Post("/{name}/rename", app.renameTournament)
			r.Post("/{name}/participants", app.signup)
			r.Post("/{name}/bracket", app.generateBracket)
			r.Post("/{name}/matches/{index}/result", app.submitResult)
			r.Post("/{name}/matches/{index}/chat", app.addMatchChat)
		})
	})

	r.Route("/messages/{id}/comments", func(r chi.Router) {
		r.Get("/", app.listComments)
		r.With(middleware.RequireAuth).Post("/", app.addComment)
	})

	r.Route("/users", func(r chi.Router) {
		r.Post("/register", app.register)
		r.Post("/login", app.login)
		r.Post("/logout", app.logout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/me", app.getProfile)
			r.Patch("/me", app.updateProfile)
		})
	})

	r.Route("/auth", func(r chi.Router) {
		if app.cfg.AllowGuest {
			r.Post("/guest", app.guestLogin)
		}
		r.Get("/{provider}", app.beginOAuth)
		r.Get("/{provider}/callback", app.completeOAuth)
	})

	return r
}
