package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dowdarts/CGC-Tournament-Manager-sub000/models"
)

var (
	ErrEntrantNotFound     = errors.New("entrant not found")
	ErrEntrantNameConflict = errors.New("entrant name already registered for this tournament")
	ErrEntrantTournament   = errors.New("entrant references an unknown tournament")
)

type EntrantRepository interface {
	Create(ctx context.Context, exec SQLExecutor, entrant *models.Entrant) error
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.Entrant, error)
	UpdateGroup(ctx context.Context, exec SQLExecutor, entrantID int, groupID *int, position *int) error
}

type sqlEntrantRepository struct {
	baseRepository
}

func NewEntrantRepository(db *sql.DB, dialect Dialect) EntrantRepository {
	return &sqlEntrantRepository{baseRepository{db: db, dialect: dialect}}
}

func (r *sqlEntrantRepository) Create(ctx context.Context, exec SQLExecutor, e *models.Entrant) error {
	query := `
		INSERT INTO entrants (tournament_id, name, team_key, seed, group_id, group_position)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	err := r.getExecutor(exec).QueryRowContext(ctx, r.q(query),
		e.TournamentID, e.Name, e.TeamKey, e.Seed, e.GroupID, e.GroupPosition,
	).Scan(&e.ID)
	return r.handleEntrantError(err)
}

func (r *sqlEntrantRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]*models.Entrant, error) {
	query := `
		SELECT id, tournament_id, name, team_key, seed, group_id, group_position
		FROM entrants
		WHERE tournament_id = $1
		ORDER BY seed ASC, id ASC`

	rows, err := r.getExecutor(exec).QueryContext(ctx, r.q(query), tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entrants := make([]*models.Entrant, 0)
	for rows.Next() {
		e := &models.Entrant{}
		if err := rows.Scan(&e.ID, &e.TournamentID, &e.Name, &e.TeamKey, &e.Seed, &e.GroupID, &e.GroupPosition); err != nil {
			return nil, err
		}
		entrants = append(entrants, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entrants, nil
}

func (r *sqlEntrantRepository) UpdateGroup(ctx context.Context, exec SQLExecutor, entrantID int, groupID *int, position *int) error {
	query := `UPDATE entrants SET group_id = $1, group_position = $2 WHERE id = $3`
	result, err := r.getExecutor(exec).ExecContext(ctx, r.q(query), groupID, position, entrantID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrEntrantNotFound)
}

func (r *sqlEntrantRepository) handleEntrantError(err error) error {
	if err == nil {
		return nil
	}
	if unique, _ := isUniqueViolation(err); unique {
		return ErrEntrantNameConflict
	}
	if isForeignKeyViolation(err) {
		return ErrEntrantTournament
	}
	return err
}
