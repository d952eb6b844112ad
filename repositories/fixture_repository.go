package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dowdarts/CGC-Tournament-Manager-sub000/models"
)

var ErrFixtureNotFound = errors.New("fixture not found")

type FixtureRepository interface {
	Create(ctx context.Context, exec SQLExecutor, fixture *models.Fixture) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Fixture, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, groupID *int) ([]*models.Fixture, error)
	UpdateResult(ctx context.Context, exec SQLExecutor, id int, scoreA, scoreB int) error
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

type sqlFixtureRepository struct {
	baseRepository
}

func NewFixtureRepository(db *sql.DB, dialect Dialect) FixtureRepository {
	return &sqlFixtureRepository{baseRepository{db: db, dialect: dialect}}
}

const fixtureColumns = `id, tournament_id, group_id, round, leg, board, match_order,
	entrant_a_id, entrant_b_id, is_bye, score_a, score_b, status`

func scanFixture(row rowScanner) (*models.Fixture, error) {
	f := &models.Fixture{}
	err := row.Scan(
		&f.ID, &f.TournamentID, &f.GroupID, &f.Round, &f.Leg, &f.Board, &f.MatchOrder,
		&f.EntrantAID, &f.EntrantBID, &f.IsBye, &f.ScoreA, &f.ScoreB, &f.Status,
	)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (r *sqlFixtureRepository) Create(ctx context.Context, exec SQLExecutor, f *models.Fixture) error {
	query := `
		INSERT INTO fixtures (
			tournament_id, group_id, round, leg, board, match_order,
			entrant_a_id, entrant_b_id, is_bye, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`
	return r.getExecutor(exec).QueryRowContext(ctx, r.q(query),
		f.TournamentID, f.GroupID, f.Round, f.Leg, f.Board, f.MatchOrder,
		f.EntrantAID, f.EntrantBID, f.IsBye, f.Status,
	).Scan(&f.ID)
}

func (r *sqlFixtureRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Fixture, error) {
	query := `SELECT ` + fixtureColumns + ` FROM fixtures WHERE id = $1`
	f, err := scanFixture(r.getExecutor(exec).QueryRowContext(ctx, r.q(query), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFixtureNotFound
		}
		return nil, err
	}
	return f, nil
}

func (r *sqlFixtureRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, groupID *int) ([]*models.Fixture, error) {
	query := `SELECT ` + fixtureColumns + ` FROM fixtures WHERE tournament_id = $1`
	args := []interface{}{tournamentID}
	if groupID != nil {
		query += ` AND group_id = $2`
		args = append(args, *groupID)
	}
	query += ` ORDER BY group_id ASC, match_order ASC, is_bye ASC, id ASC`

	rows, err := r.getExecutor(exec).QueryContext(ctx, r.q(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fixtures := make([]*models.Fixture, 0)
	for rows.Next() {
		f, err := scanFixture(rows)
		if err != nil {
			return nil, err
		}
		fixtures = append(fixtures, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return fixtures, nil
}

func (r *sqlFixtureRepository) UpdateResult(ctx context.Context, exec SQLExecutor, id int, scoreA, scoreB int) error {
	query := `UPDATE fixtures SET score_a = $1, score_b = $2, status = $3 WHERE id = $4 AND is_bye = $5`
	result, err := r.getExecutor(exec).ExecContext(ctx, r.q(query), scoreA, scoreB, models.MatchStatusCompleted, id, false)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrFixtureNotFound)
}

func (r *sqlFixtureRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	query := `DELETE FROM fixtures WHERE tournament_id = $1`
	_, err := r.getExecutor(exec).ExecContext(ctx, r.q(query), tournamentID)
	return err
}
