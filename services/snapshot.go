package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dowdarts/CGC-Tournament-Manager-sub000/brackets"
	"github.com/dowdarts/CGC-Tournament-Manager-sub000/storage"
	"github.com/google/uuid"
)

// SnapshotPublisher stores a JSON copy of a bracket each time it changes, so
// a static page or CDN can serve it without hitting the API.
type SnapshotPublisher interface {
	PublishBracket(ctx context.Context, tournamentID int, bracket *brackets.Bracket) (string, error)
}

type bracketSnapshot struct {
	TournamentID int               `json:"tournament_id"`
	Bracket      *brackets.Bracket `json:"bracket"`
}

type snapshotPublisher struct {
	store  storage.ObjectStore
	logger *slog.Logger

	mu     sync.Mutex
	latest map[int]string
}

func NewSnapshotPublisher(store storage.ObjectStore, logger *slog.Logger) SnapshotPublisher {
	return &snapshotPublisher{store: store, logger: loggerOrDefault(logger), latest: make(map[int]string)}
}

// SnapshotKey is the object key of one published bracket version.
func SnapshotKey(tournamentID int, id uuid.UUID) string {
	return fmt.Sprintf("brackets/%d/%s.json", tournamentID, id)
}

func (p *snapshotPublisher) PublishBracket(ctx context.Context, tournamentID int, bracket *brackets.Bracket) (string, error) {
	if p.store == nil {
		return "", nil
	}
	body, err := json.Marshal(bracketSnapshot{TournamentID: tournamentID, Bracket: bracket})
	if err != nil {
		return "", fmt.Errorf("failed to encode bracket snapshot: %w", err)
	}

	key := SnapshotKey(tournamentID, uuid.New())
	res, err := p.store.Put(ctx, key, "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	p.logger.InfoContext(ctx, "bracket snapshot published", slog.Int("tournament_id", tournamentID), slog.String("key", res.Key))

	p.mu.Lock()
	previous := p.latest[tournamentID]
	p.latest[tournamentID] = res.Key
	p.mu.Unlock()
	if previous != "" {
		if err := p.store.Delete(ctx, previous); err != nil {
			p.logger.WarnContext(ctx, "failed to delete superseded bracket snapshot",
				slog.Int("tournament_id", tournamentID), slog.String("key", previous), slog.Any("error", err))
		}
	}
	return res.Location, nil
}
