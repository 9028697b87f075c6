package service

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/AdamBeresnev/bracket-api/internal/db"
	"github.com/AdamBeresnev/bracket-api/internal/store"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)

type testServices struct {
	tournaments *TournamentService
	matches     *MatchService
	users       *UserService
	comments    *CommentService
	docs        store.Backend
}

// setupTestDB creates an in-memory SQLite database and applies migrations
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := sqlx.Connect("sqlite3", "file::memory:")
	require.NoError(t, err, "Failed to connect to in-memory DB")
	database.SetMaxOpenConns(1)

	require.NoError(t, db.RunMigrations(database.DB, db.DriverSQLite), "Failed to apply migrations")

	t.Cleanup(func() { database.Close() })
	return database
}

func setupServices(t *testing.T) *testServices {
	t.Helper()
	return newTestServices(store.NewSQLBackend(setupTestDB(t)))
}

func newTestServices(backend store.Backend) *testServices {
	locks := NewKeyLocks()
	tournamentStore := store.NewTournamentStore(backend.Collection(store.TournamentsCollection))

	clock := func() time.Time { return testNow }

	tournaments := NewTournamentService(tournamentStore, locks)
	tournaments.now = clock
	tournaments.rng = rand.New(rand.NewPCG(1, 2))

	matches := NewMatchService(tournamentStore, locks)
	matches.now = clock

	users := NewUserService(store.NewUserStore(backend.Collection(store.UsersCollection)), locks)
	users.now = clock

	comments := NewCommentService(backend.Collection(store.CommentsCollection), locks)
	comments.now = clock

	return &testServices{
		tournaments: tournaments,
		matches:     matches,
		users:       users,
		comments:    comments,
		docs:        backend,
	}
}
