package repositories

import (
	"context"
	"database/sql"
	"fmt"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS tournaments (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		group_count INTEGER NOT NULL,
		advance_count INTEGER NOT NULL,
		boards_json TEXT NOT NULL,
		settings_json TEXT,
		status TEXT NOT NULL,
		bracket_size INTEGER,
		champion_entrant_id INTEGER,
		created_at_ms BIGINT NOT NULL,
		CONSTRAINT tournaments_name_key UNIQUE (name)
	)`,
	`CREATE TABLE IF NOT EXISTS entrants (
		id SERIAL PRIMARY KEY,
		tournament_id INTEGER NOT NULL REFERENCES tournaments(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		team_key TEXT,
		seed INTEGER NOT NULL,
		group_id INTEGER,
		group_position INTEGER,
		CONSTRAINT entrants_tournament_id_name_key UNIQUE (tournament_id, name)
	)`,
	`CREATE TABLE IF NOT EXISTS fixtures (
		id SERIAL PRIMARY KEY,
		tournament_id INTEGER NOT NULL REFERENCES tournaments(id) ON DELETE CASCADE,
		group_id INTEGER NOT NULL,
		round INTEGER NOT NULL,
		leg INTEGER NOT NULL,
		board INTEGER NOT NULL,
		match_order INTEGER NOT NULL,
		entrant_a_id INTEGER NOT NULL REFERENCES entrants(id) ON DELETE CASCADE,
		entrant_b_id INTEGER REFERENCES entrants(id) ON DELETE CASCADE,
		is_bye BOOLEAN NOT NULL DEFAULT FALSE,
		score_a INTEGER,
		score_b INTEGER,
		status TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS fixtures_tournament_idx ON fixtures (tournament_id, group_id, round)`,
	`CREATE TABLE IF NOT EXISTS knockout_matches (
		id SERIAL PRIMARY KEY,
		tournament_id INTEGER NOT NULL REFERENCES tournaments(id) ON DELETE CASCADE,
		round INTEGER NOT NULL,
		match_number INTEGER NOT NULL,
		upper_state TEXT NOT NULL,
		upper_entrant_id INTEGER,
		upper_seed INTEGER,
		upper_rank INTEGER,
		lower_state TEXT NOT NULL,
		lower_entrant_id INTEGER,
		lower_seed INTEGER,
		lower_rank INTEGER,
		score1 INTEGER,
		score2 INTEGER,
		winner_entrant_id INTEGER,
		status TEXT NOT NULL,
		is_bye BOOLEAN NOT NULL DEFAULT FALSE,
		next_round INTEGER,
		next_match_number INTEGER,
		next_slot TEXT,
		CONSTRAINT knockout_matches_position_key UNIQUE (tournament_id, round, match_number)
	)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS tournaments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		group_count INTEGER NOT NULL,
		advance_count INTEGER NOT NULL,
		boards_json TEXT NOT NULL,
		settings_json TEXT,
		status TEXT NOT NULL,
		bracket_size INTEGER,
		champion_entrant_id INTEGER,
		created_at_ms INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS entrants (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tournament_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		team_key TEXT,
		seed INTEGER NOT NULL,
		group_id INTEGER,
		group_position INTEGER,
		UNIQUE (tournament_id, name),
		FOREIGN KEY(tournament_id) REFERENCES tournaments(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS fixtures (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tournament_id INTEGER NOT NULL,
		group_id INTEGER NOT NULL,
		round INTEGER NOT NULL,
		leg INTEGER NOT NULL,
		board INTEGER NOT NULL,
		match_order INTEGER NOT NULL,
		entrant_a_id INTEGER NOT NULL,
		entrant_b_id INTEGER,
		is_bye INTEGER NOT NULL DEFAULT 0,
		score_a INTEGER,
		score_b INTEGER,
		status TEXT NOT NULL,
		FOREIGN KEY(tournament_id) REFERENCES tournaments(id) ON DELETE CASCADE,
		FOREIGN KEY(entrant_a_id) REFERENCES entrants(id) ON DELETE CASCADE,
		FOREIGN KEY(entrant_b_id) REFERENCES entrants(id) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS fixtures_tournament_idx ON fixtures (tournament_id, group_id, round)`,
	`CREATE TABLE IF NOT EXISTS knockout_matches (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tournament_id INTEGER NOT NULL,
		round INTEGER NOT NULL,
		match_number INTEGER NOT NULL,
		upper_state TEXT NOT NULL,
		upper_entrant_id INTEGER,
		upper_seed INTEGER,
		upper_rank INTEGER,
		lower_state TEXT NOT NULL,
		lower_entrant_id INTEGER,
		lower_seed INTEGER,
		lower_rank INTEGER,
		score1 INTEGER,
		score2 INTEGER,
		winner_entrant_id INTEGER,
		status TEXT NOT NULL,
		is_bye INTEGER NOT NULL DEFAULT 0,
		next_round INTEGER,
		next_match_number INTEGER,
		next_slot TEXT,
		UNIQUE (tournament_id, round, match_number),
		FOREIGN KEY(tournament_id) REFERENCES tournaments(id) ON DELETE CASCADE
	)`,
}

// EnsureSchema creates the tables used by the repositories if they are missing.
func EnsureSchema(ctx context.Context, db *sql.DB, dialect Dialect) error {
	statements := postgresSchema
	if dialect == DialectSQLite {
		statements = sqliteSchema
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
