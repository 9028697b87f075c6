package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/AdamBeresnev/bracket-api/internal/bracket"
)

// TournamentStore encodes tournaments as JSON documents keyed by sanitized name.
type TournamentStore struct {
	docs DocumentStore
}

func NewTournamentStore(docs DocumentStore) *TournamentStore {
	return &TournamentStore{docs: docs}
}

// GetTournament returns ErrNotFound for a missing key and ErrCorruptDocument
// when the stored JSON cannot be decoded.
func (s *TournamentStore) GetTournament(ctx context.Context, key string) (*bracket.Tournament, error) {
	doc, err := s.docs.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	var tournament bracket.Tournament
	if err := json.Unmarshal(doc, &tournament); err != nil {
		return nil, fmt.Errorf("%w: tournament %q: %v", ErrCorruptDocument, key, err)
	}
	tournament.Normalize()
	return &tournament, nil
}

func (s *TournamentStore) PutTournament(ctx context.Context, key string, tournament *bracket.Tournament) error {
	doc, err := json.Marshal(tournament)
	if err != nil {
		return fmt.Errorf("marshal tournament %q: %w", key, err)
	}
	return s.docs.Put(ctx, key, doc)
}

func (s *TournamentStore) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.docs.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *TournamentStore) DeleteTournament(ctx context.Context, key string) error {
	return s.docs.Delete(ctx, key)
}

func (s *TournamentStore) ListTournaments(ctx context.Context) ([]string, error) {
	return s.docs.ListKeys(ctx)
}

func (s *TournamentStore) RenameTournament(ctx context.Context, oldKey, newKey string) error {
	return s.docs.Rename(ctx, oldKey, newKey)
}
