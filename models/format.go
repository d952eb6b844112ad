package models

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// FormatSettings holds the match-format options of a tournament, stored as
// JSON in tournaments.settings_json.
type FormatSettings struct {
	DoubleRoundRobin bool `json:"double_round_robin"`
	// GroupLegsToWin, when positive, is the leg count a group fixture winner must reach.
	GroupLegsToWin int `json:"group_legs_to_win,omitempty"`
	// KnockoutLegsToWin maps a knockout round number ("1", "2", ...) to its legs to win.
	KnockoutLegsToWin map[string]int `json:"knockout_legs_to_win,omitempty"`
}

// ParseFormatSettings decodes settings_json. A nil or empty value yields the defaults.
func ParseFormatSettings(raw *string) (*FormatSettings, error) {
	settings := &FormatSettings{}
	if raw == nil || *raw == "" {
		return settings, nil
	}
	if err := json.Unmarshal([]byte(*raw), settings); err != nil {
		return nil, fmt.Errorf("invalid settings json: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

func (s *FormatSettings) Validate() error {
	if s.GroupLegsToWin < 0 {
		return fmt.Errorf("group_legs_to_win must not be negative, got %d", s.GroupLegsToWin)
	}
	for round, legs := range s.KnockoutLegsToWin {
		r, err := strconv.Atoi(round)
		if err != nil || r < 1 {
			return fmt.Errorf("knockout round %q is not a positive number", round)
		}
		if legs < 1 {
			return fmt.Errorf("knockout round %d: legs to win must be positive, got %d", r, legs)
		}
	}
	return nil
}

// KnockoutRounds returns the per-round legs to win keyed by round number.
func (s *FormatSettings) KnockoutRounds() map[int]int {
	out := make(map[int]int, len(s.KnockoutLegsToWin))
	for round, legs := range s.KnockoutLegsToWin {
		if r, err := strconv.Atoi(round); err == nil {
			out[r] = legs
		}
	}
	return out
}

func (s *FormatSettings) Marshal() (*string, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	str := string(raw)
	return &str, nil
}
