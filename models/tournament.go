package models

import "time"

// TournamentStatus tracks where a tournament is in its lifecycle.
type TournamentStatus string

const (
	StatusRegistration TournamentStatus = "registration"
	StatusGroupsDrawn  TournamentStatus = "groups_drawn"
	StatusGroupStage   TournamentStatus = "group_stage"
	StatusKnockout     TournamentStatus = "knockout"
	StatusCompleted    TournamentStatus = "completed"
)

type Tournament struct {
	ID                int              `json:"id" db:"id"`
	Name              string           `json:"name" db:"name"`
	GroupCount        int              `json:"group_count" db:"group_count"`
	AdvanceCount      int              `json:"advance_count" db:"advance_count"`
	Boards            []int            `json:"boards" db:"boards_json"`
	SettingsJSON      *string          `json:"-" db:"settings_json"`
	Status            TournamentStatus `json:"status" db:"status"`
	BracketSize       *int             `json:"bracket_size,omitempty" db:"bracket_size"`
	ChampionEntrantID *int             `json:"champion_entrant_id,omitempty" db:"champion_entrant_id"`
	CreatedAt         time.Time        `json:"created_at" db:"created_at"`

	// Populated by the service, not stored directly.
	Settings *FormatSettings `json:"settings,omitempty" db:"-"`
	Entrants []Entrant       `json:"entrants,omitempty" db:"-"`
	Fixtures []Fixture       `json:"fixtures,omitempty" db:"-"`
	Knockout []KnockoutMatch `json:"knockout,omitempty" db:"-"`
}
