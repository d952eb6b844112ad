package models

type MatchStatus string

const (
	MatchStatusScheduled MatchStatus = "scheduled"
	MatchStatusCompleted MatchStatus = "completed"
	MatchStatusBye       MatchStatus = "bye"
)

// Fixture is a stored group-stage match. A bye is stored as a fixture with
// IsBye set, no second entrant and no board.
type Fixture struct {
	ID           int         `json:"id" db:"id"`
	TournamentID int         `json:"tournament_id" db:"tournament_id"`
	GroupID      int         `json:"group_id" db:"group_id"`
	Round        int         `json:"round" db:"round"`
	Leg          int         `json:"leg" db:"leg"`
	Board        int         `json:"board" db:"board"`
	MatchOrder   int         `json:"match_order" db:"match_order"`
	EntrantAID   int         `json:"entrant_a_id" db:"entrant_a_id"`
	EntrantBID   *int        `json:"entrant_b_id,omitempty" db:"entrant_b_id"`
	IsBye        bool        `json:"is_bye" db:"is_bye"`
	ScoreA       *int        `json:"score_a,omitempty" db:"score_a"`
	ScoreB       *int        `json:"score_b,omitempty" db:"score_b"`
	Status       MatchStatus `json:"status" db:"status"`
}
