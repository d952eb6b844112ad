package services

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"

	"github.com/dowdarts/CGC-Tournament-Manager-sub000/brackets"
	"github.com/dowdarts/CGC-Tournament-Manager-sub000/live"
	"github.com/dowdarts/CGC-Tournament-Manager-sub000/models"
	"github.com/dowdarts/CGC-Tournament-Manager-sub000/repositories"
	"golang.org/x/sync/errgroup"
)

type GenerateGroupsInput struct {
	Shuffle bool `json:"shuffle"`
	// RandomSeed makes a shuffled draw reproducible.
	RandomSeed *int64 `json:"random_seed,omitempty"`
}

type FixtureResultInput struct {
	ScoreA int `json:"score_a"`
	ScoreB int `json:"score_b"`
}

type GroupService interface {
	GenerateGroups(ctx context.Context, tournamentID int, input GenerateGroupsInput) ([]brackets.Group, error)
	GenerateFixtures(ctx context.Context, tournamentID int) ([]models.Fixture, error)
	ListFixtures(ctx context.Context, tournamentID int, groupID *int) ([]models.Fixture, error)
	RecordFixtureResult(ctx context.Context, tournamentID, fixtureID int, input FixtureResultInput) (*models.Fixture, error)
	Standings(ctx context.Context, tournamentID int) ([]models.GroupTable, error)
}

type groupService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	entrantRepo    repositories.EntrantRepository
	fixtureRepo    repositories.FixtureRepository
	publisher      Publisher
	locks          *TournamentLocks
	logger         *slog.Logger
}

func NewGroupService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	entrantRepo repositories.EntrantRepository,
	fixtureRepo repositories.FixtureRepository,
	publisher Publisher,
	locks *TournamentLocks,
	logger *slog.Logger,
) GroupService {
	return &groupService{
		db:             db,
		tournamentRepo: tournamentRepo,
		entrantRepo:    entrantRepo,
		fixtureRepo:    fixtureRepo,
		publisher:      publisherOrNoop(publisher),
		locks:          locksOrNew(locks),
		logger:         loggerOrDefault(logger),
	}
}

func (s *groupService) loadTournament(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Tournament, error) {
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

// GenerateGroups draws the registered entrants into the tournament's groups.
// A draw may be repeated until fixtures are generated.
func (s *groupService) GenerateGroups(ctx context.Context, tournamentID int, input GenerateGroupsInput) ([]brackets.Group, error) {
	unlock := s.locks.lock(tournamentID)
	defer unlock()

	var groups []brackets.Group
	err := runInTx(ctx, s.db, s.logger, func(tx *sql.Tx) error {
		tournament, err := s.loadTournament(ctx, tx, tournamentID)
		if err != nil {
			return err
		}
		if err := requireStatus(tournament, models.StatusRegistration, models.StatusGroupsDrawn); err != nil {
			return err
		}
		entrants, err := s.entrantRepo.ListByTournament(ctx, tx, tournamentID)
		if err != nil {
			return err
		}

		core := make([]brackets.Entrant, len(entrants))
		for i, e := range entrants {
			core[i] = brackets.Entrant{ID: e.ID, Name: e.Name, TeamKey: derefString(e.TeamKey)}
		}
		var opts []brackets.DistributeOption
		if input.Shuffle {
			var rng *rand.Rand
			if input.RandomSeed != nil {
				rng = rand.New(rand.NewSource(*input.RandomSeed))
			}
			opts = append(opts, brackets.WithShuffle(rng))
		}
		groups, err = brackets.DistributeGroups(core, tournament.GroupCount, opts...)
		if err != nil {
			return err
		}

		for _, g := range groups {
			for pos, e := range g.Entrants {
				if err := s.entrantRepo.UpdateGroup(ctx, tx, e.ID, intPtr(g.ID), intPtr(pos+1)); err != nil {
					return handleRepositoryError(err)
				}
			}
		}
		return handleRepositoryError(s.tournamentRepo.UpdateStatus(ctx, tx, tournamentID, models.StatusGroupsDrawn))
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "groups drawn", slog.Int("tournament_id", tournamentID), slog.Int("groups", len(groups)))
	s.publisher.Publish(tournamentID, live.TypeGroupsDrawn, groups)
	return groups, nil
}

// boardsForGroup deals the tournament boards round-robin across groups so
// groups play on disjoint boards. With more groups than boards, a group
// shares the board at its position modulo the board count.
func boardsForGroup(boards []int, groupCount, groupIndex int) []int {
	var out []int
	for i, b := range boards {
		if i%groupCount == groupIndex {
			out = append(out, b)
		}
	}
	if len(out) == 0 && len(boards) > 0 {
		out = []int{boards[groupIndex%len(boards)]}
	}
	return out
}

type groupMembers struct {
	id  int
	ids []int
}

func membersByGroup(entrants []*models.Entrant) []groupMembers {
	type member struct {
		id, position int
	}
	byGroup := make(map[int][]member)
	for _, e := range entrants {
		if e.GroupID == nil {
			continue
		}
		pos := e.Seed
		if e.GroupPosition != nil {
			pos = *e.GroupPosition
		}
		byGroup[*e.GroupID] = append(byGroup[*e.GroupID], member{id: e.ID, position: pos})
	}

	out := make([]groupMembers, 0, len(byGroup))
	for gid, ms := range byGroup {
		sort.Slice(ms, func(i, j int) bool { return ms[i].position < ms[j].position })
		ids := make([]int, len(ms))
		for i, m := range ms {
			ids[i] = m.id
		}
		out = append(out, groupMembers{id: gid, ids: ids})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// GenerateFixtures schedules every group's round robin and stores the
// fixtures, byes included, replacing any earlier schedule.
func (s *groupService) GenerateFixtures(ctx context.Context, tournamentID int) ([]models.Fixture, error) {
	unlock := s.locks.lock(tournamentID)
	defer unlock()

	tournament, err := s.loadTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, err
	}
	if err := requireStatus(tournament, models.StatusGroupsDrawn); err != nil {
		return nil, err
	}
	entrants, err := s.entrantRepo.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, err
	}
	groups := membersByGroup(entrants)
	if len(groups) == 0 {
		return nil, fmt.Errorf("%w: no entrant has been drawn into a group", ErrTournamentInvalidStatus)
	}

	var opts []brackets.RoundRobinOption
	if tournament.Settings.DoubleRoundRobin {
		opts = append(opts, brackets.WithDoubleRound())
	}

	schedules := make([]*brackets.RoundRobinSchedule, len(groups))
	g, gctx := errgroup.WithContext(ctx)
	for i, grp := range groups {
		i, grp := i, grp
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			sched, err := brackets.ScheduleRoundRobin(grp.ids, boardsForGroup(tournament.Boards, len(groups), i), opts...)
			if err != nil {
				return fmt.Errorf("group %s: %w", brackets.GroupName(grp.id), err)
			}
			schedules[i] = sched
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var stored []models.Fixture
	err = runInTx(ctx, s.db, s.logger, func(tx *sql.Tx) error {
		if err := s.fixtureRepo.DeleteByTournament(ctx, tx, tournamentID); err != nil {
			return err
		}
		for i, grp := range groups {
			for _, f := range schedules[i].Fixtures {
				row := &models.Fixture{
					TournamentID: tournamentID,
					GroupID:      grp.id,
					Round:        f.Round,
					Leg:          f.Leg,
					Board:        f.Board,
					MatchOrder:   f.Order,
					EntrantAID:   f.EntrantA,
					EntrantBID:   intPtr(f.EntrantB),
					Status:       models.MatchStatusScheduled,
				}
				if err := s.fixtureRepo.Create(ctx, tx, row); err != nil {
					return err
				}
				stored = append(stored, *row)
			}
			for _, b := range schedules[i].Byes {
				row := &models.Fixture{
					TournamentID: tournamentID,
					GroupID:      grp.id,
					Round:        b.Round,
					Leg:          b.Leg,
					EntrantAID:   b.EntrantID,
					IsBye:        true,
					Status:       models.MatchStatusBye,
				}
				if err := s.fixtureRepo.Create(ctx, tx, row); err != nil {
					return err
				}
				stored = append(stored, *row)
			}
		}
		return handleRepositoryError(s.tournamentRepo.UpdateStatus(ctx, tx, tournamentID, models.StatusGroupStage))
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "fixtures generated", slog.Int("tournament_id", tournamentID), slog.Int("count", len(stored)))
	s.publisher.Publish(tournamentID, live.TypeFixturesGenerated, stored)
	return stored, nil
}

func (s *groupService) ListFixtures(ctx context.Context, tournamentID int, groupID *int) ([]models.Fixture, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID); err != nil {
		return nil, handleRepositoryError(err)
	}
	fixtures, err := s.fixtureRepo.ListByTournament(ctx, nil, tournamentID, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list fixtures of tournament %d: %w", tournamentID, err)
	}
	return dereferenceFixtures(fixtures), nil
}

func validateFixtureScore(settings *models.FormatSettings, a, b int) error {
	if a < 0 || b < 0 {
		return fmt.Errorf("%w: scores must not be negative (%d-%d)", ErrValidationFailed, a, b)
	}
	if settings == nil || settings.GroupLegsToWin == 0 {
		return nil
	}
	legs := settings.GroupLegsToWin
	hi, lo := a, b
	if lo > hi {
		hi, lo = lo, hi
	}
	if hi != legs || lo >= legs {
		return fmt.Errorf("%w: a first-to-%d fixture cannot end %d-%d", ErrValidationFailed, legs, a, b)
	}
	return nil
}

// RecordFixtureResult stores or corrects a group fixture's score.
func (s *groupService) RecordFixtureResult(ctx context.Context, tournamentID, fixtureID int, input FixtureResultInput) (*models.Fixture, error) {
	unlock := s.locks.lock(tournamentID)
	defer unlock()

	var fixture *models.Fixture
	err := runInTx(ctx, s.db, s.logger, func(tx *sql.Tx) error {
		tournament, err := s.loadTournament(ctx, tx, tournamentID)
		if err != nil {
			return err
		}
		if err := requireStatus(tournament, models.StatusGroupStage); err != nil {
			return err
		}
		fixture, err = s.fixtureRepo.GetByID(ctx, tx, fixtureID)
		if err != nil {
			return handleRepositoryError(err)
		}
		if fixture.TournamentID != tournamentID {
			return fmt.Errorf("%w: fixture %d does not belong to tournament %d", ErrFixtureNotFound, fixtureID, tournamentID)
		}
		if fixture.IsBye {
			return fmt.Errorf("%w: fixture %d is a bye", ErrValidationFailed, fixtureID)
		}
		if err := validateFixtureScore(tournament.Settings, input.ScoreA, input.ScoreB); err != nil {
			return err
		}
		if err := s.fixtureRepo.UpdateResult(ctx, tx, fixtureID, input.ScoreA, input.ScoreB); err != nil {
			return handleRepositoryError(err)
		}
		fixture.ScoreA, fixture.ScoreB = intPtr(input.ScoreA), intPtr(input.ScoreB)
		fixture.Status = models.MatchStatusCompleted
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "fixture result recorded",
		slog.Int("tournament_id", tournamentID), slog.Int("fixture_id", fixtureID),
		slog.Int("score_a", input.ScoreA), slog.Int("score_b", input.ScoreB))
	s.publisher.Publish(tournamentID, live.TypeFixtureUpdated, fixture)
	return fixture, nil
}

func (s *groupService) Standings(ctx context.Context, tournamentID int) ([]models.GroupTable, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID); err != nil {
		return nil, handleRepositoryError(err)
	}
	return loadGroupTables(ctx, s.entrantRepo, s.fixtureRepo, tournamentID)
}

func loadGroupTables(ctx context.Context, entrantRepo repositories.EntrantRepository, fixtureRepo repositories.FixtureRepository, tournamentID int) ([]models.GroupTable, error) {
	var (
		entrants []*models.Entrant
		fixtures []*models.Fixture
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		entrants, err = entrantRepo.ListByTournament(gctx, nil, tournamentID)
		return err
	})
	g.Go(func() error {
		var err error
		fixtures, err = fixtureRepo.ListByTournament(gctx, nil, tournamentID, nil)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load group stage of tournament %d: %w", tournamentID, err)
	}
	return computeGroupTables(entrants, fixtures), nil
}
