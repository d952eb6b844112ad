package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dowdarts/CGC-Tournament-Manager-sub000/models"
)

var (
	ErrTournamentNotFound     = errors.New("tournament not found")
	ErrTournamentNameConflict = errors.New("tournament name already exists")
)

type ListTournamentsFilter struct {
	Status *models.TournamentStatus
	Limit  int
	Offset int
}

type TournamentRepository interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error)
	List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error
	UpdateBracket(ctx context.Context, exec SQLExecutor, id int, bracketSize *int, championEntrantID *int) error
}

type sqlTournamentRepository struct {
	baseRepository
}

func NewTournamentRepository(db *sql.DB, dialect Dialect) TournamentRepository {
	return &sqlTournamentRepository{baseRepository{db: db, dialect: dialect}}
}

const tournamentColumns = `id, name, group_count, advance_count, boards_json, settings_json,
	status, bracket_size, champion_entrant_id, created_at_ms`

func (r *sqlTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	boards, err := json.Marshal(t.Boards)
	if err != nil {
		return fmt.Errorf("failed to encode boards: %w", err)
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO tournaments (
			name, group_count, advance_count, boards_json, settings_json, status, created_at_ms
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	err = r.db.QueryRowContext(ctx, r.q(query),
		t.Name, t.GroupCount, t.AdvanceCount, string(boards), t.SettingsJSON, t.Status, t.CreatedAt.UnixMilli(),
	).Scan(&t.ID)
	return r.handleTournamentError(err)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTournament(row rowScanner) (*models.Tournament, error) {
	var (
		t         models.Tournament
		boards    string
		createdMs int64
	)
	if err := row.Scan(
		&t.ID, &t.Name, &t.GroupCount, &t.AdvanceCount, &boards, &t.SettingsJSON,
		&t.Status, &t.BracketSize, &t.ChampionEntrantID, &createdMs,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(boards), &t.Boards); err != nil {
		return nil, fmt.Errorf("tournament %d: corrupt boards_json: %w", t.ID, err)
	}
	t.CreatedAt = time.UnixMilli(createdMs).UTC()
	return &t, nil
}

func (r *sqlTournamentRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = $1`
	t, err := scanTournament(r.getExecutor(exec).QueryRowContext(ctx, r.q(query), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *sqlTournamentRepository) List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE 1=1`
	args := []interface{}{}
	argID := 1

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argID)
		args = append(args, *filter.Status)
		argID++
	}

	query += " ORDER BY created_at_ms DESC, id DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, filter.Limit)
		argID++
		if filter.Offset > 0 {
			query += fmt.Sprintf(" OFFSET $%d", argID)
			args = append(args, filter.Offset)
		}
	}

	rows, err := r.db.QueryContext(ctx, r.q(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tournaments := make([]models.Tournament, 0)
	for rows.Next() {
		t, scanErr := scanTournament(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		tournaments = append(tournaments, *t)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return tournaments, nil
}

func (r *sqlTournamentRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error {
	query := `UPDATE tournaments SET status = $1 WHERE id = $2`
	result, err := r.getExecutor(exec).ExecContext(ctx, r.q(query), status, id)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *sqlTournamentRepository) UpdateBracket(ctx context.Context, exec SQLExecutor, id int, bracketSize *int, championEntrantID *int) error {
	query := `UPDATE tournaments SET bracket_size = $1, champion_entrant_id = $2 WHERE id = $3`
	result, err := r.getExecutor(exec).ExecContext(ctx, r.q(query), bracketSize, championEntrantID, id)
	if err != nil {
		return fmt.Errorf("failed to update bracket of tournament %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *sqlTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	if unique, _ := isUniqueViolation(err); unique {
		return ErrTournamentNameConflict
	}
	return err
}
