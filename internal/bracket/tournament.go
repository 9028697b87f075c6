package bracket

import (
	"encoding/json"
	"sort"
	"time"
)

type Status string

const (
	RegistrationOpen Status = "registration_open"
	InProgress       Status = "in_progress"
	Finished         Status = "finished"
)

var statusOrder = map[Status]int{
	RegistrationOpen: 0,
	InProgress:       1,
	Finished:         2,
}

func (s Status) Valid() bool {
	_, ok := statusOrder[s]
	return ok
}

type Meta struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Theme       string `json:"theme"`
	Banner      string `json:"banner"`
	Status      Status `json:"status"`

	// Caller-supplied metadata, kept opaque
	Sponsor      map[string]json.RawMessage `json:"sponsor,omitempty"`
	CustomFields map[string]json.RawMessage `json:"customFields,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Tournament is the whole persisted state of one tournament.
type Tournament struct {
	Meta         Meta          `json:"meta"`
	Participants []Participant `json:"participants"`

	// Pairings of the current round only
	Bracket []Pair `json:"bracket"`

	// Every round generated so far, in creation order
	Matches     []Match  `json:"matches"`
	RoundNumber int      `json:"roundNumber"`
	Standings   []string `json:"standings"`
}

func New(name string, now time.Time) *Tournament {
	return &Tournament{
		Meta: Meta{
			Name:      name,
			Status:    RegistrationOpen,
			CreatedAt: now,
			UpdatedAt: now,
		},
		Participants: []Participant{},
		Bracket:      []Pair{},
		Matches:      []Match{},
		Standings:    []string{},
	}
}

// Normalize replaces nil collections with empty ones so a decoded document
// serializes the same way a freshly created one does.
func (t *Tournament) Normalize() {
	if t.Participants == nil {
		t.Participants = []Participant{}
	}
	if t.Bracket == nil {
		t.Bracket = []Pair{}
	}
	if t.Matches == nil {
		t.Matches = []Match{}
	}
	if t.Standings == nil {
		t.Standings = []string{}
	}
	if t.Meta.Status == "" {
		t.Meta.Status = RegistrationOpen
	}
	for i := range t.Matches {
		t.Matches[i].normalize()
	}
}

// setStatus only ever moves the status forward.
func (t *Tournament) setStatus(to Status) {
	if statusOrder[to] > statusOrder[t.Meta.Status] {
		t.Meta.Status = to
	}
}

// MatchesInRound returns copies of the matches of a round ordered by match index.
func (t *Tournament) MatchesInRound(round int) []Match {
	matches := make([]Match, 0)
	for _, m := range t.Matches {
		if m.Round == round {
			matches = append(matches, m)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].MatchIndex < matches[j].MatchIndex })
	return matches
}

func (t *Tournament) CurrentMatches() []Match {
	return t.MatchesInRound(t.RoundNumber)
}

// FindMatch returns a pointer into the match log, or nil.
func (t *Tournament) FindMatch(round, matchIndex int) *Match {
	for i := range t.Matches {
		if t.Matches[i].Round == round && t.Matches[i].MatchIndex == matchIndex {
			return &t.Matches[i]
		}
	}
	return nil
}

// AddChat appends a chat entry to a match anywhere in the history.
func (t *Tournament) AddChat(round, matchIndex int, entry ChatEntry) ([]ChatEntry, error) {
	m := t.FindMatch(round, matchIndex)
	if m == nil {
		return nil, matchNotFound(round, matchIndex)
	}
	m.Chat = append(m.Chat, entry)
	return m.Chat, nil
}
