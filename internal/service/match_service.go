package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/AdamBeresnev/bracket-api/internal/bracket"
	"github.com/AdamBeresnev/bracket-api/internal/store"
)

type MatchService struct {
	tournamentDocs
}

func NewMatchService(store *store.TournamentStore, locks *KeyLocks) *MatchService {
	return &MatchService{
		tournamentDocs: tournamentDocs{store: store, locks: locks, now: time.Now},
	}
}

type ResultInput struct {
	MatchIndex int               `json:"matchIndex"`
	Winner     string            `json:"winner"`
	Scores     []json.RawMessage `json:"scores"`
	Notes      string            `json:"notes"`
}

type ChatInput struct {
	// Zero means the current round
	Round      int    `json:"round"`
	MatchIndex int    `json:"matchIndex"`
	User       string `json:"user"`
	Message    string `json:"message"`
}

// ListMatches returns every match played so far, or only those of one round.
func (s *MatchService) ListMatches(ctx context.Context, name string, round *int) ([]bracket.Match, error) {
	tournament, err := s.load(ctx, name)
	if err != nil {
		return nil, err
	}
	if round != nil {
		return tournament.MatchesInRound(*round), nil
	}
	return tournament.Matches, nil
}

// SubmitResult decides a match of the current round. The outcome tells the
// caller whether that closed the round or the whole tournament.
func (s *MatchService) SubmitResult(ctx context.Context, name string, input ResultInput) (bracket.Match, bracket.Outcome, error) {
	var (
		decided bracket.Match
		outcome bracket.Outcome
	)
	_, err := s.update(ctx, name, func(t *bracket.Tournament) error {
		var err error
		decided, outcome, err = bracket.ApplyResult(t, bracket.Result{
			MatchIndex: input.MatchIndex,
			Winner:     input.Winner,
			Scores:     input.Scores,
			Notes:      input.Notes,
		})
		return err
	})
	if err != nil {
		return bracket.Match{}, "", err
	}
	return decided, outcome, nil
}

func (s *MatchService) AddMatchChat(ctx context.Context, name string, input ChatInput) ([]bracket.ChatEntry, error) {
	user := strings.TrimSpace(input.User)
	message := strings.TrimSpace(input.Message)
	if user == "" || message == "" {
		return nil, fmt.Errorf("%w: user and message", ErrMissingFields)
	}

	var chat []bracket.ChatEntry
	_, err := s.update(ctx, name, func(t *bracket.Tournament) error {
		round := input.Round
		if round == 0 {
			round = t.RoundNumber
		}

		var err error
		chat, err = t.AddChat(round, input.MatchIndex, bracket.ChatEntry{
			User:      user,
			Message:   message,
			Timestamp: s.now(),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return chat, nil
}
