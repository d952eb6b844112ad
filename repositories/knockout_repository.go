package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dowdarts/CGC-Tournament-Manager-sub000/models"
)

var (
	ErrKnockoutMatchNotFound = errors.New("knockout match not found")
	ErrKnockoutMatchConflict = errors.New("knockout match already exists at this position")
)

type KnockoutRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.KnockoutMatch) error
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.KnockoutMatch, error)
	Update(ctx context.Context, exec SQLExecutor, match *models.KnockoutMatch) error
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

type sqlKnockoutRepository struct {
	baseRepository
}

func NewKnockoutRepository(db *sql.DB, dialect Dialect) KnockoutRepository {
	return &sqlKnockoutRepository{baseRepository{db: db, dialect: dialect}}
}

func (r *sqlKnockoutRepository) Create(ctx context.Context, exec SQLExecutor, m *models.KnockoutMatch) error {
	query := `
		INSERT INTO knockout_matches (
			tournament_id, round, match_number,
			upper_state, upper_entrant_id, upper_seed, upper_rank,
			lower_state, lower_entrant_id, lower_seed, lower_rank,
			score1, score2, winner_entrant_id, status, is_bye,
			next_round, next_match_number, next_slot
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING id`
	err := r.getExecutor(exec).QueryRowContext(ctx, r.q(query),
		m.TournamentID, m.Round, m.MatchNumber,
		m.UpperState, m.UpperEntrantID, m.UpperSeed, m.UpperRank,
		m.LowerState, m.LowerEntrantID, m.LowerSeed, m.LowerRank,
		m.Score1, m.Score2, m.WinnerEntrantID, m.Status, m.IsBye,
		m.NextRound, m.NextMatchNumber, m.NextSlot,
	).Scan(&m.ID)
	if unique, _ := isUniqueViolation(err); unique {
		return ErrKnockoutMatchConflict
	}
	return err
}

func (r *sqlKnockoutRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.KnockoutMatch, error) {
	query := `
		SELECT id, tournament_id, round, match_number,
			upper_state, upper_entrant_id, upper_seed, upper_rank,
			lower_state, lower_entrant_id, lower_seed, lower_rank,
			score1, score2, winner_entrant_id, status, is_bye,
			next_round, next_match_number, next_slot
		FROM knockout_matches
		WHERE tournament_id = $1
		ORDER BY round ASC, match_number ASC`

	rows, err := r.getExecutor(exec).QueryContext(ctx, r.q(query), tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]*models.KnockoutMatch, 0)
	for rows.Next() {
		m := &models.KnockoutMatch{}
		if err := rows.Scan(
			&m.ID, &m.TournamentID, &m.Round, &m.MatchNumber,
			&m.UpperState, &m.UpperEntrantID, &m.UpperSeed, &m.UpperRank,
			&m.LowerState, &m.LowerEntrantID, &m.LowerSeed, &m.LowerRank,
			&m.Score1, &m.Score2, &m.WinnerEntrantID, &m.Status, &m.IsBye,
			&m.NextRound, &m.NextMatchNumber, &m.NextSlot,
		); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return matches, nil
}

// Update rewrites the mutable columns of the match at (tournament, round, match_number).
func (r *sqlKnockoutRepository) Update(ctx context.Context, exec SQLExecutor, m *models.KnockoutMatch) error {
	query := `
		UPDATE knockout_matches SET
			upper_state = $1, upper_entrant_id = $2, upper_seed = $3, upper_rank = $4,
			lower_state = $5, lower_entrant_id = $6, lower_seed = $7, lower_rank = $8,
			score1 = $9, score2 = $10, winner_entrant_id = $11, status = $12
		WHERE tournament_id = $13 AND round = $14 AND match_number = $15`
	result, err := r.getExecutor(exec).ExecContext(ctx, r.q(query),
		m.UpperState, m.UpperEntrantID, m.UpperSeed, m.UpperRank,
		m.LowerState, m.LowerEntrantID, m.LowerSeed, m.LowerRank,
		m.Score1, m.Score2, m.WinnerEntrantID, m.Status,
		m.TournamentID, m.Round, m.MatchNumber,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrKnockoutMatchNotFound)
}

func (r *sqlKnockoutRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	query := `DELETE FROM knockout_matches WHERE tournament_id = $1`
	_, err := r.getExecutor(exec).ExecContext(ctx, r.q(query), tournamentID)
	return err
}
