package bracket

import "fmt"

type matchKey struct {
	round, index int
}

// Validate checks that a decoded document could have been produced by the
// engine. It expects Normalize to have run.
func (t *Tournament) Validate() error {
	if !t.Meta.Status.Valid() {
		return inconsistent("unknown status %q", t.Meta.Status)
	}

	seen := make(map[matchKey]bool, len(t.Matches))
	maxRound := 0
	for _, m := range t.Matches {
		key := matchKey{m.Round, m.MatchIndex}
		if m.Round < 1 || m.MatchIndex < 0 {
			return inconsistent("round %d match %d is out of range", m.Round, m.MatchIndex)
		}
		if seen[key] {
			return inconsistent("round %d match %d appears twice", m.Round, m.MatchIndex)
		}
		seen[key] = true

		if m.Players[0] == nil {
			return inconsistent("round %d match %d has no first player", m.Round, m.MatchIndex)
		}
		if m.Winner != nil && !m.Players.Has(*m.Winner) {
			return inconsistent("round %d match %d winner %q did not play", m.Round, m.MatchIndex, *m.Winner)
		}
		maxRound = max(maxRound, m.Round)
	}

	if t.RoundNumber != maxRound {
		return inconsistent("roundNumber is %d but the last round played is %d", t.RoundNumber, maxRound)
	}

	switch t.Meta.Status {
	case RegistrationOpen:
		if len(t.Matches) > 0 {
			return inconsistent("registration is open but matches exist")
		}
	case InProgress:
		if len(t.Matches) == 0 {
			return inconsistent("tournament is in progress without matches")
		}
		if !hasPending(t.CurrentMatches()) {
			return inconsistent("round %d is complete but was never advanced", t.RoundNumber)
		}
	}

	if t.Meta.Status != Finished {
		if len(t.Standings) > 0 {
			return inconsistent("standings are set on a %s tournament", t.Meta.Status)
		}
		return nil
	}

	current := t.CurrentMatches()
	if len(current) != 1 || !current[0].IsDecided() {
		return inconsistent("finished tournament has no decided final")
	}
	if len(t.Standings) == 0 || t.Standings[0] != *current[0].Winner {
		return inconsistent("standings do not start with the champion %q", *current[0].Winner)
	}
	return nil
}

func hasPending(matches []Match) bool {
	for _, m := range matches {
		if !m.IsDecided() {
			return true
		}
	}
	return false
}

func inconsistent(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInconsistentState}, args...)...)
}
