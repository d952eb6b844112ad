package services

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dowdarts/CGC-Tournament-Manager-sub000/models"
)

// Publisher pushes live updates to viewers of a tournament. *live.Hub
// implements it.
type Publisher interface {
	Publish(tournamentID int, msgType string, payload interface{})
}

type noopPublisher struct{}

func (noopPublisher) Publish(int, string, interface{}) {}

func publisherOrNoop(p Publisher) Publisher {
	if p == nil {
		return noopPublisher{}
	}
	return p
}

func loggerOrDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}

// runInTx runs fn inside a transaction, committing when fn returns nil and
// rolling back otherwise.
func runInTx(ctx context.Context, db *sql.DB, logger *slog.Logger, fn func(tx *sql.Tx) error) (txErr error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if txErr != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.ErrorContext(ctx, "rollback failed", slog.Any("error", rbErr), slog.Any("cause", txErr))
				txErr = fmt.Errorf("transaction processing error: %w (rollback also failed: %v)", txErr, rbErr)
			}
		} else if cErr := tx.Commit(); cErr != nil {
			txErr = fmt.Errorf("failed to commit transaction: %w", cErr)
		}
	}()
	return fn(tx)
}

// TournamentLocks serializes writes per tournament. The group and knockout
// services share one instance so result entry and bracket generation for the
// same tournament never interleave.
type TournamentLocks struct {
	mu    sync.Mutex
	locks map[int]*sync.Mutex
}

func NewTournamentLocks() *TournamentLocks {
	return &TournamentLocks{locks: make(map[int]*sync.Mutex)}
}

func locksOrNew(l *TournamentLocks) *TournamentLocks {
	if l == nil {
		return NewTournamentLocks()
	}
	return l
}

func (l *TournamentLocks) lock(tournamentID int) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[int]*sync.Mutex)
	}
	m, ok := l.locks[tournamentID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[tournamentID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

func requireStatus(t *models.Tournament, allowed ...models.TournamentStatus) error {
	for _, s := range allowed {
		if t.Status == s {
			return nil
		}
	}
	return fmt.Errorf("%w: tournament %d is %s", ErrTournamentInvalidStatus, t.ID, t.Status)
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func intPtr(v int) *int { return &v }

func dereferenceEntrants(slice []*models.Entrant) []models.Entrant {
	result := make([]models.Entrant, 0, len(slice))
	for _, e := range slice {
		if e != nil {
			result = append(result, *e)
		}
	}
	return result
}

func dereferenceFixtures(slice []*models.Fixture) []models.Fixture {
	result := make([]models.Fixture, 0, len(slice))
	for _, f := range slice {
		if f != nil {
			result = append(result, *f)
		}
	}
	return result
}

func dereferenceKnockout(slice []*models.KnockoutMatch) []models.KnockoutMatch {
	result := make([]models.KnockoutMatch, 0, len(slice))
	for _, m := range slice {
		if m != nil {
			result = append(result, *m)
		}
	}
	return result
}
