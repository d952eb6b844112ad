package services

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dowdarts/CGC-Tournament-Manager-sub000/models"
	"github.com/dowdarts/CGC-Tournament-Manager-sub000/repositories"
	"golang.org/x/sync/errgroup"
)

type CreateTournamentInput struct {
	Name         string                 `json:"name"`
	GroupCount   int                    `json:"group_count"`
	AdvanceCount int                    `json:"advance_count"`
	Boards       []int                  `json:"boards"`
	Settings     *models.FormatSettings `json:"settings,omitempty"`
}

type EntrantInput struct {
	Name    string  `json:"name"`
	TeamKey *string `json:"team_key,omitempty"`
}

type RegisterEntrantsInput struct {
	Entrants []EntrantInput `json:"entrants"`
}

type TournamentService interface {
	CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	GetTournament(ctx context.Context, id int) (*models.Tournament, error)
	ListTournaments(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error)
	RegisterEntrants(ctx context.Context, tournamentID int, input RegisterEntrantsInput) ([]models.Entrant, error)
}

type tournamentService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	entrantRepo    repositories.EntrantRepository
	fixtureRepo    repositories.FixtureRepository
	knockoutRepo   repositories.KnockoutRepository
	logger         *slog.Logger
}

func NewTournamentService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	entrantRepo repositories.EntrantRepository,
	fixtureRepo repositories.FixtureRepository,
	knockoutRepo repositories.KnockoutRepository,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		db:             db,
		tournamentRepo: tournamentRepo,
		entrantRepo:    entrantRepo,
		fixtureRepo:    fixtureRepo,
		knockoutRepo:   knockoutRepo,
		logger:         loggerOrDefault(logger),
	}
}

func validateCreateTournament(input *CreateTournamentInput) error {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return ErrTournamentNameRequired
	}
	if input.GroupCount < 1 {
		return fmt.Errorf("%w: group_count must be at least 1, got %d", ErrValidationFailed, input.GroupCount)
	}
	if input.AdvanceCount < 1 {
		return fmt.Errorf("%w: advance_count must be at least 1, got %d", ErrValidationFailed, input.AdvanceCount)
	}
	if len(input.Boards) == 0 {
		return fmt.Errorf("%w: at least one board is required", ErrValidationFailed)
	}
	seen := make(map[int]bool, len(input.Boards))
	for _, b := range input.Boards {
		if b <= 0 {
			return fmt.Errorf("%w: board numbers must be positive, got %d", ErrValidationFailed, b)
		}
		if seen[b] {
			return fmt.Errorf("%w: board %d listed twice", ErrValidationFailed, b)
		}
		seen[b] = true
	}
	if input.Settings != nil {
		if err := input.Settings.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrValidationFailed, err)
		}
	}
	return nil
}

func (s *tournamentService) CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	if err := validateCreateTournament(&input); err != nil {
		return nil, err
	}

	settings := input.Settings
	if settings == nil {
		settings = &models.FormatSettings{}
	}
	raw, err := settings.Marshal()
	if err != nil {
		return nil, fmt.Errorf("failed to encode settings: %w", err)
	}

	tournament := &models.Tournament{
		Name:         input.Name,
		GroupCount:   input.GroupCount,
		AdvanceCount: input.AdvanceCount,
		Boards:       input.Boards,
		SettingsJSON: raw,
		Status:       models.StatusRegistration,
	}
	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		return nil, handleRepositoryError(err)
	}
	tournament.Settings = settings

	s.logger.InfoContext(ctx, "tournament created", slog.Int("tournament_id", tournament.ID), slog.String("name", tournament.Name))
	return tournament, nil
}

func (s *tournamentService) loadTournament(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, exec, id)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	settings, err := models.ParseFormatSettings(tournament.SettingsJSON)
	if err != nil {
		return nil, fmt.Errorf("tournament %d: %w", id, err)
	}
	tournament.Settings = settings
	return tournament, nil
}

// GetTournament returns the tournament with its entrants, fixtures and
// knockout matches.
func (s *tournamentService) GetTournament(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.loadTournament(ctx, nil, id)
	if err != nil {
		return nil, err
	}

	var (
		entrants []*models.Entrant
		fixtures []*models.Fixture
		knockout []*models.KnockoutMatch
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		entrants, err = s.entrantRepo.ListByTournament(gctx, nil, id)
		return err
	})
	g.Go(func() error {
		var err error
		fixtures, err = s.fixtureRepo.ListByTournament(gctx, nil, id, nil)
		return err
	})
	g.Go(func() error {
		var err error
		knockout, err = s.knockoutRepo.ListByTournament(gctx, nil, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load details of tournament %d: %w", id, err)
	}

	tournament.Entrants = dereferenceEntrants(entrants)
	tournament.Fixtures = dereferenceFixtures(fixtures)
	tournament.Knockout = dereferenceKnockout(knockout)
	return tournament, nil
}

func (s *tournamentService) ListTournaments(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	tournaments, err := s.tournamentRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	if tournaments == nil {
		return []models.Tournament{}, nil
	}
	return tournaments, nil
}

// RegisterEntrants adds entrants while registration is open. Seeds follow
// registration order, continuing after the entrants already registered.
func (s *tournamentService) RegisterEntrants(ctx context.Context, tournamentID int, input RegisterEntrantsInput) ([]models.Entrant, error) {
	if len(input.Entrants) == 0 {
		return nil, fmt.Errorf("%w: no entrants given", ErrValidationFailed)
	}
	for i := range input.Entrants {
		input.Entrants[i].Name = strings.TrimSpace(input.Entrants[i].Name)
		if input.Entrants[i].Name == "" {
			return nil, fmt.Errorf("%w: entrant %d has no name", ErrValidationFailed, i+1)
		}
		if input.Entrants[i].TeamKey != nil && strings.TrimSpace(*input.Entrants[i].TeamKey) == "" {
			input.Entrants[i].TeamKey = nil
		}
	}

	var created []models.Entrant
	err := runInTx(ctx, s.db, s.logger, func(tx *sql.Tx) error {
		tournament, err := s.tournamentRepo.GetByID(ctx, tx, tournamentID)
		if err != nil {
			return handleRepositoryError(err)
		}
		if err := requireStatus(tournament, models.StatusRegistration); err != nil {
			return err
		}
		existing, err := s.entrantRepo.ListByTournament(ctx, tx, tournamentID)
		if err != nil {
			return err
		}

		nextSeed := len(existing) + 1
		for _, in := range input.Entrants {
			e := &models.Entrant{
				TournamentID: tournamentID,
				Name:         in.Name,
				TeamKey:      in.TeamKey,
				Seed:         nextSeed,
			}
			if err := s.entrantRepo.Create(ctx, tx, e); err != nil {
				return handleRepositoryError(err)
			}
			created = append(created, *e)
			nextSeed++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "entrants registered", slog.Int("tournament_id", tournamentID), slog.Int("count", len(created)))
	return created, nil
}
