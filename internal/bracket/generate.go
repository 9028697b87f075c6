package bracket

import (
	"fmt"
	"math/rand/v2"

	"github.com/AdamBeresnev/bracket-api/internal/utils"
)

type GenerateOptions struct {
	// Explicit seed order. Empty means shuffle.
	SeedOrder []string

	// Allows throwing away an in-progress bracket and starting over at round 1
	Reseed bool

	// Source for the shuffle, nil uses the package-level generator
	Rand *rand.Rand
}

// Generate seeds the participants and creates round 1.
func Generate(t *Tournament, opts GenerateOptions) error {
	switch t.Meta.Status {
	case Finished:
		return ErrTournamentFinished
	case InProgress:
		if !opts.Reseed {
			return fmt.Errorf("%w: round %d is in progress", ErrAlreadyGenerated, t.RoundNumber)
		}
	}

	if len(t.Participants) < 2 {
		return fmt.Errorf("%w: have %d", ErrInsufficientParticipants, len(t.Participants))
	}

	var seeds []string
	if len(opts.SeedOrder) > 0 {
		resolved, err := t.resolveSeedOrder(opts.SeedOrder)
		if err != nil {
			return err
		}
		seeds = resolved
	} else {
		seeds = shuffle(t.ParticipantNames(), opts.Rand)
	}

	pairs := PairSeeds(seeds)
	t.Bracket = pairs
	t.Matches = newRound(1, pairs)
	t.RoundNumber = 1
	t.Standings = []string{}
	t.setStatus(InProgress)

	return nil
}

// PairSeeds pairs consecutive seeds. With an odd count the last seed gets a bye.
func PairSeeds(seeds []string) []Pair {
	pairs := make([]Pair, 0, (len(seeds)+1)/2)
	for i := 0; i < len(seeds); i += 2 {
		var away *string
		if i+1 < len(seeds) {
			away = utils.Ptr(seeds[i+1])
		}
		pairs = append(pairs, NewPair(seeds[i], away))
	}
	return pairs
}

// Fisher-Yates, every permutation equally likely
func shuffle(names []string, rng *rand.Rand) []string {
	swap := func(i, j int) { names[i], names[j] = names[j], names[i] }
	if rng != nil {
		rng.Shuffle(len(names), swap)
	} else {
		rand.Shuffle(len(names), swap)
	}
	return names
}

// resolveSeedOrder maps the requested order onto registered names, rejecting
// anything that is not a permutation of the participant list.
func (t *Tournament) resolveSeedOrder(order []string) ([]string, error) {
	if len(order) != len(t.Participants) {
		return nil, fmt.Errorf("%w: got %d names for %d participants", ErrInvalidSeedOrder, len(order), len(t.Participants))
	}

	seen := make(map[int]bool, len(order))
	seeds := make([]string, 0, len(order))
	for _, name := range order {
		i, ok := t.FindParticipant(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q is not registered", ErrInvalidSeedOrder, name)
		}
		if seen[i] {
			return nil, fmt.Errorf("%w: %q is listed twice", ErrInvalidSeedOrder, name)
		}
		seen[i] = true
		seeds = append(seeds, t.Participants[i].Name)
	}
	return seeds, nil
}
