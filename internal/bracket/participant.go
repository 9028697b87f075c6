package bracket

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type Participant struct {
	Name       string                     `json:"name"`
	Email      string                     `json:"email"`
	Team       string                     `json:"team"`
	Extra      map[string]json.RawMessage `json:"extra,omitempty"`
	SignedUpAt time.Time                  `json:"signedUpAt"`
}

// SameName compares participant names the way registration does: trimmed and case-insensitive.
func SameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func (t *Tournament) FindParticipant(name string) (int, bool) {
	for i, p := range t.Participants {
		if SameName(p.Name, name) {
			return i, true
		}
	}
	return -1, false
}

// AddParticipant registers p while registration is open.
func (t *Tournament) AddParticipant(p Participant) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return ErrMissingName
	}
	if t.Meta.Status != RegistrationOpen {
		return fmt.Errorf("%w: tournament is %s", ErrRegistrationClosed, t.Meta.Status)
	}
	if _, exists := t.FindParticipant(p.Name); exists {
		return fmt.Errorf("%w: %q", ErrDuplicateParticipant, p.Name)
	}
	t.Participants = append(t.Participants, p)
	return nil
}

func (t *Tournament) ParticipantNames() []string {
	names := make([]string, 0, len(t.Participants))
	for _, p := range t.Participants {
		names = append(names, p.Name)
	}
	return names
}
