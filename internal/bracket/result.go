package bracket

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/AdamBeresnev/bracket-api/internal/utils"
)

type Outcome string

const (
	// Result stored, round still has pending matches
	OutcomeRecorded Outcome = "recorded"
	// Round complete, next round generated
	OutcomeAdvanced Outcome = "advanced"
	// Final decided, standings published
	OutcomeFinished Outcome = "finished"
)

type Result struct {
	MatchIndex int
	Winner     string

	// Empty values leave the stored ones untouched
	Scores []json.RawMessage
	Notes  string
}

// ApplyResult decides a match of the current round and advances the
// tournament when that was the last pending match.
func ApplyResult(t *Tournament, r Result) (Match, Outcome, error) {
	if t.Meta.Status == Finished {
		return Match{}, "", ErrTournamentFinished
	}

	match := t.FindMatch(t.RoundNumber, r.MatchIndex)
	if match == nil {
		return Match{}, "", matchNotFound(t.RoundNumber, r.MatchIndex)
	}

	if match.IsDecided() {
		return *match, "", fmt.Errorf("%w: round %d match %d was won by %q", ErrResultAlreadySet, match.Round, match.MatchIndex, *match.Winner)
	}

	winner := strings.TrimSpace(r.Winner)
	if winner == "" || !match.Players.Has(winner) {
		return *match, "", fmt.Errorf("%w: %q", ErrInvalidWinner, r.Winner)
	}

	match.Winner = utils.Ptr(winner)
	if len(r.Scores) > 0 {
		match.Scores = r.Scores
	}
	if r.Notes != "" {
		match.Notes = r.Notes
	}

	// Copy before advancing, appending the next round may move the backing array
	decided := *match

	return decided, t.advance(), nil
}

func (t *Tournament) advance() Outcome {
	current := t.CurrentMatches()
	winners := make([]string, 0, len(current))
	for _, m := range current {
		if !m.IsDecided() {
			return OutcomeRecorded
		}
		winners = append(winners, *m.Winner)
	}

	if len(winners) > 1 {
		// Winners keep their match order, no reshuffle between rounds
		pairs := PairSeeds(winners)
		t.RoundNumber++
		t.Bracket = pairs
		t.Matches = append(t.Matches, newRound(t.RoundNumber, pairs)...)
		return OutcomeAdvanced
	}

	t.finish(winners[0])
	return OutcomeFinished
}

// Champion first, everyone else in registration order. Not a ranking by elimination round.
func (t *Tournament) finish(champion string) {
	standings := make([]string, 0, len(t.Participants))
	standings = append(standings, champion)
	for _, p := range t.Participants {
		if p.Name != champion {
			standings = append(standings, p.Name)
		}
	}
	t.Standings = standings
	t.setStatus(Finished)
}
