package models

// Standing is a computed group table row; it is never stored.
type Standing struct {
	EntrantID     int    `json:"entrant_id"`
	Name          string `json:"name"`
	GroupID       int    `json:"group_id"`
	Played        int    `json:"played"`
	Wins          int    `json:"wins"`
	Draws         int    `json:"draws"`
	Losses        int    `json:"losses"`
	LegsFor       int    `json:"legs_for"`
	LegsAgainst   int    `json:"legs_against"`
	LegDifference int    `json:"leg_difference"`
	Points        int    `json:"points"`
	Rank          int    `json:"rank"`
}

type GroupTable struct {
	GroupID   int        `json:"group_id"`
	GroupName string     `json:"group_name"`
	Complete  bool       `json:"complete"`
	Standings []Standing `json:"standings"`
}
