package models

// KnockoutMatch is the stored form of one bracket match. Slot names, group
// names and labels are rebuilt from entrants when the bracket is loaded.
type KnockoutMatch struct {
	ID              int     `json:"id" db:"id"`
	TournamentID    int     `json:"tournament_id" db:"tournament_id"`
	Round           int     `json:"round" db:"round"`
	MatchNumber     int     `json:"match_number" db:"match_number"`
	UpperState      string  `json:"upper_state" db:"upper_state"`
	UpperEntrantID  *int    `json:"upper_entrant_id,omitempty" db:"upper_entrant_id"`
	UpperSeed       *int    `json:"upper_seed,omitempty" db:"upper_seed"`
	UpperRank       *int    `json:"upper_rank,omitempty" db:"upper_rank"`
	LowerState      string  `json:"lower_state" db:"lower_state"`
	LowerEntrantID  *int    `json:"lower_entrant_id,omitempty" db:"lower_entrant_id"`
	LowerSeed       *int    `json:"lower_seed,omitempty" db:"lower_seed"`
	LowerRank       *int    `json:"lower_rank,omitempty" db:"lower_rank"`
	Score1          *int    `json:"score1,omitempty" db:"score1"`
	Score2          *int    `json:"score2,omitempty" db:"score2"`
	WinnerEntrantID *int    `json:"winner_entrant_id,omitempty" db:"winner_entrant_id"`
	Status          string  `json:"status" db:"status"`
	IsBye           bool    `json:"is_bye" db:"is_bye"`
	NextRound       *int    `json:"next_round,omitempty" db:"next_round"`
	NextMatchNumber *int    `json:"next_match_number,omitempty" db:"next_match_number"`
	NextSlot        *string `json:"next_slot,omitempty" db:"next_slot"`
}
