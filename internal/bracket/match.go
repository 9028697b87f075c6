package bracket

import (
	"encoding/json"
	"time"

	"github.com/AdamBeresnev/bracket-api/internal/utils"
)

// Pair holds two player names. A nil second slot is a bye.
type Pair [2]*string

func NewPair(home string, away *string) Pair {
	return Pair{utils.Ptr(home), away}
}

func (p Pair) Has(name string) bool {
	for _, slot := range p {
		if slot != nil && *slot == name {
			return true
		}
	}
	return false
}

func (p Pair) IsBye() bool {
	return p[1] == nil
}

type ChatEntry struct {
	User      string    `json:"user"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type Match struct {
	Round      int  `json:"round"`
	MatchIndex int  `json:"matchIndex"`
	Players    Pair `json:"players"`

	// Set once, never overwritten
	Winner *string `json:"winner"`

	Scores []json.RawMessage `json:"scores"`
	Chat   []ChatEntry       `json:"chat"`
	Notes  string            `json:"notes"`
}

func (m *Match) IsDecided() bool {
	return m.Winner != nil
}

func (m *Match) normalize() {
	if m.Scores == nil {
		m.Scores = []json.RawMessage{}
	}
	if m.Chat == nil {
		m.Chat = []ChatEntry{}
	}
}

func newRound(round int, pairs []Pair) []Match {
	matches := make([]Match, 0, len(pairs))
	for i, pair := range pairs {
		matches = append(matches, Match{
			Round:      round,
			MatchIndex: i,
			Players:    pair,
			Scores:     []json.RawMessage{},
			Chat:       []ChatEntry{},
		})
	}
	return matches
}
