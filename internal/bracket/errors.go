package bracket

import (
	"errors"
	"fmt"
)

var (
	ErrMissingName              = errors.New("name is required")
	ErrDuplicateParticipant     = errors.New("participant name is already registered")
	ErrRegistrationClosed       = errors.New("tournament registration is closed")
	ErrInsufficientParticipants = errors.New("at least 2 participants are required")
	ErrInvalidSeedOrder         = errors.New("seed order must list every participant exactly once")
	ErrAlreadyGenerated         = errors.New("bracket has already been generated")
	ErrTournamentFinished       = errors.New("tournament is finished")
	ErrMatchNotFound            = errors.New("match not found")
	ErrInvalidWinner            = errors.New("winner is not part of this match")
	ErrResultAlreadySet         = errors.New("match result is already set")
	ErrInconsistentState        = errors.New("tournament state is inconsistent")
)

func matchNotFound(round, matchIndex int) error {
	return fmt.Errorf("%w: round %d has no match %d", ErrMatchNotFound, round, matchIndex)
}
