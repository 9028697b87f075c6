package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/AdamBeresnev/bracket-api/internal/bracket"
	"github.com/AdamBeresnev/bracket-api/internal/store"
)

const defaultPerPage = 10

// tournamentDocs is the load -> mutate -> save cycle shared by the tournament
// and match services.
type tournamentDocs struct {
	store *store.TournamentStore
	locks *KeyLocks
	now   func() time.Time
}

func (d *tournamentDocs) load(ctx context.Context, name string) (*bracket.Tournament, error) {
	key := store.SanitizeKey(name)
	if key == "" {
		return nil, fmt.Errorf("%w: %q", ErrTournamentNotFound, name)
	}
	tournament, err := d.store.GetTournament(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %q", ErrTournamentNotFound, key)
	}
	if err != nil {
		return nil, err
	}
	return tournament, nil
}

// update holds the tournament's lock for the whole cycle. Nothing is saved when fn fails.
func (d *tournamentDocs) update(ctx context.Context, name string, fn func(*bracket.Tournament) error) (*bracket.Tournament, error) {
	key := store.SanitizeKey(name)
	unlock := d.locks.Lock(key)
	defer unlock()

	tournament, err := d.load(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := fn(tournament); err != nil {
		return nil, err
	}

	tournament.Meta.UpdatedAt = d.now()
	if err := d.store.PutTournament(ctx, key, tournament); err != nil {
		return nil, fmt.Errorf("save tournament %q: %w", key, err)
	}
	return tournament, nil
}

type TournamentService struct {
	tournamentDocs

	// Shuffle source for tests, nil in production
	rng *rand.Rand
}

func NewTournamentService(store *store.TournamentStore, locks *KeyLocks) *TournamentService {
	return &TournamentService{
		tournamentDocs: tournamentDocs{store: store, locks: locks, now: time.Now},
	}
}

type CreateTournamentInput struct {
	Name         string                     `json:"name"`
	Description  string                     `json:"description"`
	Theme        string                     `json:"theme"`
	Banner       string                     `json:"banner"`
	Sponsor      map[string]json.RawMessage `json:"sponsor"`
	CustomFields map[string]json.RawMessage `json:"customFields"`
}

// MetaPatch fields left nil stay unchanged. Maps are replaced wholesale.
type MetaPatch struct {
	Description  *string                    `json:"description"`
	Theme        *string                    `json:"theme"`
	Banner       *string                    `json:"banner"`
	Sponsor      map[string]json.RawMessage `json:"sponsor"`
	CustomFields map[string]json.RawMessage `json:"customFields"`
}

type RenameResult struct {
	OldName string `json:"oldName"`
	NewName string `json:"newName"`
}

type ParticipantInput struct {
	Name  string                     `json:"name"`
	Email string                     `json:"email"`
	Team  string                     `json:"team"`
	Extra map[string]json.RawMessage `json:"extra"`
}

type GenerateInput struct {
	SeedOrder []string `json:"seedOrder"`
	Reseed    bool     `json:"reseed"`
}

type BracketView struct {
	Name    string         `json:"name"`
	Round   int            `json:"round"`
	Status  bracket.Status `json:"status"`
	Bracket []bracket.Pair `json:"bracket"`
}

type ParticipantPage struct {
	Participants []bracket.Participant `json:"participants"`
	Total        int                   `json:"total"`
	Page         int                   `json:"page"`
	PerPage      int                   `json:"perPage"`
}

func (s *TournamentService) CreateTournament(ctx context.Context, input CreateTournamentInput) (bracket.Meta, error) {
	key := store.SanitizeKey(input.Name)
	if key == "" {
		return bracket.Meta{}, bracket.ErrMissingName
	}

	unlock := s.locks.Lock(key)
	defer unlock()

	exists, err := s.store.Exists(ctx, key)
	if err != nil {
		return bracket.Meta{}, err
	}
	if exists {
		return bracket.Meta{}, fmt.Errorf("%w: %q", ErrDuplicateTournament, key)
	}

	tournament := bracket.New(key, s.now())
	tournament.Meta.Description = input.Description
	tournament.Meta.Theme = input.Theme
	tournament.Meta.Banner = input.Banner
	tournament.Meta.Sponsor = input.Sponsor
	tournament.Meta.CustomFields = input.CustomFields

	if err := s.store.PutTournament(ctx, key, tournament); err != nil {
		return bracket.Meta{}, fmt.Errorf("save tournament %q: %w", key, err)
	}
	return tournament.Meta, nil
}

func (s *TournamentService) ListTournaments(ctx context.Context) ([]string, error) {
	return s.store.ListTournaments(ctx)
}

func (s *TournamentService) GetMeta(ctx context.Context, name string) (bracket.Meta, error) {
	tournament, err := s.load(ctx, name)
	if err != nil {
		return bracket.Meta{}, err
	}
	return tournament.Meta, nil
}

func (s *TournamentService) PatchMeta(ctx context.Context, name string, patch MetaPatch) (bracket.Meta, error) {
	tournament, err := s.update(ctx, name, func(t *bracket.Tournament) error {
		if patch.Description != nil {
			t.Meta.Description = *patch.Description
		}
		if patch.Theme != nil {
			t.Meta.Theme = *patch.Theme
		}
		if patch.Banner != nil {
			t.Meta.Banner = *patch.Banner
		}
		if patch.Sponsor != nil {
			t.Meta.Sponsor = patch.Sponsor
		}
		if patch.CustomFields != nil {
			t.Meta.CustomFields = patch.CustomFields
		}
		return nil
	})
	if err != nil {
		return bracket.Meta{}, err
	}
	return tournament.Meta, nil
}

// RenameTournament moves the document to the new key and rewrites meta.name.
func (s *TournamentService) RenameTournament(ctx context.Context, oldName, newName string) (RenameResult, error) {
	oldKey := store.SanitizeKey(oldName)
	newKey := store.SanitizeKey(newName)
	if newKey == "" {
		return RenameResult{}, bracket.ErrMissingName
	}
	result := RenameResult{OldName: oldKey, NewName: newKey}

	unlock := s.locks.Lock(oldKey, newKey)
	defer unlock()

	tournament, err := s.load(ctx, oldKey)
	if err != nil {
		return RenameResult{}, err
	}
	if oldKey == newKey {
		return result, nil
	}

	exists, err := s.store.Exists(ctx, newKey)
	if err != nil {
		return RenameResult{}, err
	}
	if exists {
		return RenameResult{}, fmt.Errorf("%w: %q", ErrDuplicateTournament, newKey)
	}

	if err := s.store.RenameTournament(ctx, oldKey, newKey); err != nil {
		return RenameResult{}, fmt.Errorf("rename tournament %q: %w", oldKey, err)
	}

	tournament.Meta.Name = newKey
	tournament.Meta.UpdatedAt = s.now()
	if err := s.store.PutTournament(ctx, newKey, tournament); err != nil {
		return RenameResult{}, fmt.Errorf("save tournament %q: %w", newKey, err)
	}
	return result, nil
}

// DeleteTournament succeeds whether or not the tournament exists.
func (s *TournamentService) DeleteTournament(ctx context.Context, name string) error {
	key := store.SanitizeKey(name)
	if key == "" {
		return nil
	}

	unlock := s.locks.Lock(key)
	defer unlock()

	return s.store.DeleteTournament(ctx, key)
}

func (s *TournamentService) Signup(ctx context.Context, name string, input ParticipantInput) ([]bracket.Participant, error) {
	tournament, err := s.update(ctx, name, func(t *bracket.Tournament) error {
		return t.AddParticipant(bracket.Participant{
			Name:       input.Name,
			Email:      input.Email,
			Team:       input.Team,
			Extra:      input.Extra,
			SignedUpAt: s.now(),
		})
	})
	if err != nil {
		return nil, err
	}
	return tournament.Participants, nil
}

func (s *TournamentService) ListParticipants(ctx context.Context, name string) ([]bracket.Participant, error) {
	tournament, err := s.load(ctx, name)
	if err != nil {
		return nil, err
	}
	return tournament.Participants, nil
}

// PagedParticipants is 1-indexed. Pages past the end come back empty.
func (s *TournamentService) PagedParticipants(ctx context.Context, name string, page, perPage int) (ParticipantPage, error) {
	tournament, err := s.load(ctx, name)
	if err != nil {
		return ParticipantPage{}, err
	}

	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}

	// Bounds are computed so huge page or perPage values cannot overflow
	total := len(tournament.Participants)
	start := total
	if page-1 <= (total-1)/perPage {
		start = (page - 1) * perPage
	}
	end := start + min(perPage, total-start)

	return ParticipantPage{
		Participants: tournament.Participants[start:end],
		Total:        total,
		Page:         page,
		PerPage:      perPage,
	}, nil
}

func (s *TournamentService) GenerateBracket(ctx context.Context, name string, input GenerateInput) (BracketView, error) {
	tournament, err := s.update(ctx, name, func(t *bracket.Tournament) error {
		return bracket.Generate(t, bracket.GenerateOptions{
			SeedOrder: input.SeedOrder,
			Reseed:    input.Reseed,
			Rand:      s.rng,
		})
	})
	if err != nil {
		return BracketView{}, err
	}
	return bracketView(tournament), nil
}

func (s *TournamentService) GetBracket(ctx context.Context, name string) (BracketView, error) {
	tournament, err := s.load(ctx, name)
	if err != nil {
		return BracketView{}, err
	}
	return bracketView(tournament), nil
}

func (s *TournamentService) GetStandings(ctx context.Context, name string) ([]string, error) {
	tournament, err := s.load(ctx, name)
	if err != nil {
		return nil, err
	}
	return tournament.Standings, nil
}

func (s *TournamentService) ExportTournament(ctx context.Context, name string) (*bracket.Tournament, error) {
	return s.load(ctx, name)
}

// ImportTournament stores a previously exported document under a new name.
func (s *TournamentService) ImportTournament(ctx context.Context, name string, doc []byte) (bracket.Meta, error) {
	key := store.SanitizeKey(name)
	doc = bytes.TrimSpace(doc)
	if key == "" || len(doc) == 0 || bytes.Equal(doc, []byte("null")) {
		return bracket.Meta{}, fmt.Errorf("%w: name and document", ErrMissingFields)
	}

	var tournament bracket.Tournament
	if err := json.Unmarshal(doc, &tournament); err != nil {
		return bracket.Meta{}, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	tournament.Normalize()
	if err := tournament.Validate(); err != nil {
		return bracket.Meta{}, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	tournament.Meta.Name = key

	unlock := s.locks.Lock(key)
	defer unlock()

	exists, err := s.store.Exists(ctx, key)
	if err != nil {
		return bracket.Meta{}, err
	}
	if exists {
		return bracket.Meta{}, fmt.Errorf("%w: %q", ErrDuplicateTournament, key)
	}

	if err := s.store.PutTournament(ctx, key, &tournament); err != nil {
		return bracket.Meta{}, fmt.Errorf("save tournament %q: %w", key, err)
	}
	return tournament.Meta, nil
}

func bracketView(t *bracket.Tournament) BracketView {
	return BracketView{
		Name:    t.Meta.Name,
		Round:   t.RoundNumber,
		Status:  t.Meta.Status,
		Bracket: t.Bracket,
	}
}
