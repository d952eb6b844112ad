package models

type Entrant struct {
	ID            int     `json:"id" db:"id"`
	TournamentID  int     `json:"tournament_id" db:"tournament_id"`
	Name          string  `json:"name" db:"name"`
	TeamKey       *string `json:"team_key,omitempty" db:"team_key"`
	Seed          int     `json:"seed" db:"seed"`
	GroupID       *int    `json:"group_id,omitempty" db:"group_id"`
	GroupPosition *int    `json:"group_position,omitempty" db:"group_position"`
}
