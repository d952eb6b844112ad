package services

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math/bits"

	"github.com/dowdarts/CGC-Tournament-Manager-sub000/brackets"
	"github.com/dowdarts/CGC-Tournament-Manager-sub000/live"
	"github.com/dowdarts/CGC-Tournament-Manager-sub000/models"
	"github.com/dowdarts/CGC-Tournament-Manager-sub000/repositories"
	"golang.org/x/sync/errgroup"
)

type GenerateBracketInput struct {
	// Standings overrides the computed group tables, e.g. after a manual
	// tie-break.
	Standings []brackets.GroupStandings `json:"standings,omitempty"`
}

type MatchResultInput struct {
	Score1 int `json:"score1"`
	Score2 int `json:"score2"`
}

type BracketView struct {
	TournamentID int                      `json:"tournament_id"`
	Bracket      *brackets.Bracket        `json:"bracket"`
	Seeded       []brackets.SeededEntrant `json:"seeded,omitempty"`
	SnapshotURL  string                   `json:"snapshot_url,omitempty"`
}

type ResultView struct {
	TournamentID int                   `json:"tournament_id"`
	Advancement  *brackets.Advancement `json:"advancement"`
	Bracket      *brackets.Bracket     `json:"bracket"`
	SnapshotURL  string                `json:"snapshot_url,omitempty"`
}

type TournamentWinnerPayload struct {
	TournamentID int           `json:"tournament_id"`
	Winner       brackets.Slot `json:"winner"`
	Message      string        `json:"message"`
}

type KnockoutService interface {
	GenerateBracket(ctx context.Context, tournamentID int, input GenerateBracketInput) (*BracketView, error)
	GetBracket(ctx context.Context, tournamentID int) (*BracketView, error)
	RecordResult(ctx context.Context, tournamentID, round, number int, input MatchResultInput) (*ResultView, error)
}

type knockoutService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	entrantRepo    repositories.EntrantRepository
	fixtureRepo    repositories.FixtureRepository
	knockoutRepo   repositories.KnockoutRepository
	generator      brackets.BracketGenerator
	publisher      Publisher
	snapshots      SnapshotPublisher
	logger         *slog.Logger
	locks          *TournamentLocks
}

func NewKnockoutService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	entrantRepo repositories.EntrantRepository,
	fixtureRepo repositories.FixtureRepository,
	knockoutRepo repositories.KnockoutRepository,
	publisher Publisher,
	snapshots SnapshotPublisher,
	locks *TournamentLocks,
	logger *slog.Logger,
) KnockoutService {
	return &knockoutService{
		db:             db,
		tournamentRepo: tournamentRepo,
		entrantRepo:    entrantRepo,
		fixtureRepo:    fixtureRepo,
		knockoutRepo:   knockoutRepo,
		generator:      brackets.NewSingleEliminationGenerator(),
		publisher:      publisherOrNoop(publisher),
		snapshots:      snapshots,
		locks:          locksOrNew(locks),
		logger:         loggerOrDefault(logger),
	}
}

func (s *knockoutService) loadTournament(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Tournament, error) {
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

// knockoutFormats keeps the configured formats of rounds the bracket has.
func knockoutFormats(settings *models.FormatSettings, rounds int) map[int]brackets.MatchFormat {
	formats := make(map[int]brackets.MatchFormat)
	if settings == nil {
		return formats
	}
	for round, legs := range settings.KnockoutRounds() {
		if round >= 1 && round <= rounds {
			formats[round] = brackets.MatchFormat{LegsToWin: legs}
		}
	}
	return formats
}

func roundsFor(size int) int {
	if size < 1 {
		return 0
	}
	return bits.Len(uint(size)) - 1
}

func qualifierCount(standings []brackets.GroupStandings, advance int) int {
	n := 0
	for _, g := range standings {
		n += min(advance, len(g.Standings))
	}
	return n
}

// GenerateBracket seeds the group qualifiers into a fresh knockout bracket.
// Without explicit standings every group must have finished its fixtures.
func (s *knockoutService) GenerateBracket(ctx context.Context, tournamentID int, input GenerateBracketInput) (*BracketView, error) {
	unlock := s.locks.lock(tournamentID)
	defer unlock()

	tournament, err := s.loadTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, err
	}
	if err := requireStatus(tournament, models.StatusGroupStage); err != nil {
		return nil, err
	}

	entrants, err := s.entrantRepo.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, err
	}

	standings := input.Standings
	if len(standings) == 0 {
		fixtures, err := s.fixtureRepo.ListByTournament(ctx, nil, tournamentID, nil)
		if err != nil {
			return nil, err
		}
		tables := computeGroupTables(entrants, fixtures)
		for _, t := range tables {
			if !t.Complete {
				return nil, fmt.Errorf("%w: group %s", ErrGroupStageIncomplete, t.GroupName)
			}
		}
		standings = toGroupStandings(tables)
	} else {
		known := make(map[int]*models.Entrant, len(entrants))
		for _, e := range entrants {
			known[e.ID] = e
		}
		for gi := range standings {
			for si := range standings[gi].Standings {
				st := &standings[gi].Standings[si]
				e, ok := known[st.EntrantID]
				if !ok {
					return nil, fmt.Errorf("%w: entrant %d is not registered for tournament %d", ErrValidationFailed, st.EntrantID, tournamentID)
				}
				if e.GroupID == nil || *e.GroupID != standings[gi].GroupID {
					return nil, fmt.Errorf("%w: entrant %d was not drawn into group %d", ErrValidationFailed, st.EntrantID, standings[gi].GroupID)
				}
				if st.Name == "" {
					st.Name = e.Name
				}
			}
			if standings[gi].GroupName == "" {
				standings[gi].GroupName = brackets.GroupName(standings[gi].GroupID)
			}
		}
	}

	n := qualifierCount(standings, tournament.AdvanceCount)
	if n == 0 {
		return nil, fmt.Errorf("%w: no qualifiers for the knockout stage", ErrValidationFailed)
	}
	params := brackets.KnockoutParams{
		Standings: standings,
		Advance:   tournament.AdvanceCount,
		Formats:   knockoutFormats(tournament.Settings, roundsFor(brackets.NextPowerOfTwo(n))),
	}
	bracket, seeded, err := s.generator.GenerateBracket(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to generate bracket for tournament %d: %w", tournamentID, err)
	}

	err = runInTx(ctx, s.db, s.logger, func(tx *sql.Tx) error {
		if err := s.knockoutRepo.DeleteByTournament(ctx, tx, tournamentID); err != nil {
			return err
		}
		for _, m := range bracket.Matches {
			if err := s.knockoutRepo.Create(ctx, tx, matchToRow(tournamentID, m)); err != nil {
				return handleRepositoryError(err)
			}
		}
		status := models.StatusKnockout
		var champion *int
		if bracket.IsComplete() {
			champion = intPtr(bracket.Champion.EntrantID)
			status = models.StatusCompleted
		}
		if err := s.tournamentRepo.UpdateBracket(ctx, tx, tournamentID, intPtr(bracket.Size), champion); err != nil {
			return handleRepositoryError(err)
		}
		return handleRepositoryError(s.tournamentRepo.UpdateStatus(ctx, tx, tournamentID, status))
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "knockout bracket generated",
		slog.Int("tournament_id", tournamentID), slog.String("generator", s.generator.GetName()),
		slog.Int("size", bracket.Size), slog.Int("entrants", bracket.Entrants), slog.Int("byes", bracket.Byes))

	view := &BracketView{TournamentID: tournamentID, Bracket: bracket, Seeded: seeded}
	view.SnapshotURL = s.publishSnapshot(ctx, tournamentID, bracket)
	s.publisher.Publish(tournamentID, live.TypeBracketGenerated, view)
	if bracket.IsComplete() {
		s.announceWinner(tournamentID, *bracket.Champion)
	}
	return view, nil
}

func (s *knockoutService) GetBracket(ctx context.Context, tournamentID int) (*BracketView, error) {
	tournament, err := s.loadTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, err
	}
	bracket, err := s.loadBracket(ctx, tournament)
	if err != nil {
		return nil, err
	}
	return &BracketView{TournamentID: tournamentID, Bracket: bracket}, nil
}

// RecordResult scores a knockout match and moves the winner on. Results for
// one tournament are applied one at a time.
func (s *knockoutService) RecordResult(ctx context.Context, tournamentID, round, number int, input MatchResultInput) (*ResultView, error) {
	unlock := s.locks.lock(tournamentID)
	defer unlock()

	tournament, err := s.loadTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, err
	}
	if err := requireStatus(tournament, models.StatusKnockout, models.StatusCompleted); err != nil {
		return nil, err
	}
	bracket, err := s.loadBracket(ctx, tournament)
	if err != nil {
		return nil, err
	}

	adv, err := bracket.RecordResult(round, number, input.Score1, input.Score2)
	if err != nil {
		return nil, err
	}

	err = runInTx(ctx, s.db, s.logger, func(tx *sql.Tx) error {
		if err := s.knockoutRepo.Update(ctx, tx, matchToRow(tournamentID, adv.Match)); err != nil {
			return handleRepositoryError(err)
		}
		if adv.Next != nil {
			if err := s.knockoutRepo.Update(ctx, tx, matchToRow(tournamentID, adv.Next)); err != nil {
				return handleRepositoryError(err)
			}
		}
		if !adv.Champion {
			return nil
		}
		if err := s.tournamentRepo.UpdateBracket(ctx, tx, tournamentID, intPtr(bracket.Size), intPtr(adv.Winner.EntrantID)); err != nil {
			return handleRepositoryError(err)
		}
		return handleRepositoryError(s.tournamentRepo.UpdateStatus(ctx, tx, tournamentID, models.StatusCompleted))
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "knockout result recorded",
		slog.Int("tournament_id", tournamentID), slog.String("match", adv.Match.Key.String()),
		slog.Int("winner_entrant_id", adv.Winner.EntrantID), slog.Bool("champion", adv.Champion))

	view := &ResultView{TournamentID: tournamentID, Advancement: adv, Bracket: bracket}
	view.SnapshotURL = s.publishSnapshot(ctx, tournamentID, bracket)
	s.publisher.Publish(tournamentID, live.TypeMatchUpdated, adv)
	if adv.Champion {
		s.announceWinner(tournamentID, adv.Winner)
	}
	return view, nil
}

func (s *knockoutService) announceWinner(tournamentID int, winner brackets.Slot) {
	s.publisher.Publish(tournamentID, live.TypeTournamentWinner, TournamentWinnerPayload{
		TournamentID: tournamentID,
		Winner:       winner,
		Message:      fmt.Sprintf("%s wins the tournament", winner.Name),
	})
}

// publishSnapshot is best effort: a storage failure never fails the request.
func (s *knockoutService) publishSnapshot(ctx context.Context, tournamentID int, bracket *brackets.Bracket) string {
	if s.snapshots == nil {
		return ""
	}
	location, err := s.snapshots.PublishBracket(ctx, tournamentID, bracket)
	if err != nil {
		s.logger.WarnContext(ctx, "bracket snapshot failed", slog.Int("tournament_id", tournamentID), slog.Any("error", err))
		return ""
	}
	return location
}

func (s *knockoutService) loadBracket(ctx context.Context, tournament *models.Tournament) (*brackets.Bracket, error) {
	if tournament.BracketSize == nil {
		return nil, fmt.Errorf("%w: tournament %d", ErrBracketNotGenerated, tournament.ID)
	}

	var (
		entrants []*models.Entrant
		rows     []*models.KnockoutMatch
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		entrants, err = s.entrantRepo.ListByTournament(gctx, nil, tournament.ID)
		return err
	})
	g.Go(func() error {
		var err error
		rows, err = s.knockoutRepo.ListByTournament(gctx, nil, tournament.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load bracket of tournament %d: %w", tournament.ID, err)
	}

	byID := make(map[int]*models.Entrant, len(entrants))
	for _, e := range entrants {
		byID[e.ID] = e
	}

	size := *tournament.BracketSize
	if size == 1 {
		b := &brackets.Bracket{Size: 1, Entrants: 1, Matches: []*brackets.BracketMatch{}, Formats: map[int]brackets.MatchFormat{}}
		if tournament.ChampionEntrantID != nil {
			champion := entrantSlot(*tournament.ChampionEntrantID, intPtr(1), nil, byID)
			b.Champion = &champion
		}
		return b, nil
	}

	matches := make([]*brackets.BracketMatch, len(rows))
	for i, row := range rows {
		matches[i] = rowToMatch(row, byID)
	}
	bracket, err := brackets.RestoreBracket(size, matches, knockoutFormats(tournament.Settings, roundsFor(size)))
	if err != nil {
		return nil, fmt.Errorf("stored bracket of tournament %d is inconsistent: %w", tournament.ID, err)
	}
	return bracket, nil
}

func slotColumns(s brackets.Slot) (state string, entrantID, seed, rank *int) {
	state = string(s.State)
	if s.State == brackets.SlotEntrant {
		entrantID = intPtr(s.EntrantID)
	}
	if s.Seed > 0 {
		seed = intPtr(s.Seed)
	}
	if s.Rank > 0 {
		rank = intPtr(s.Rank)
	}
	return state, entrantID, seed, rank
}

func matchToRow(tournamentID int, m *brackets.BracketMatch) *models.KnockoutMatch {
	row := &models.KnockoutMatch{
		TournamentID:    tournamentID,
		Round:           m.Key.Round,
		MatchNumber:     m.Key.Number,
		Score1:          m.Score1,
		Score2:          m.Score2,
		WinnerEntrantID: m.WinnerID,
		Status:          string(m.Status),
		IsBye:           m.IsBye,
	}
	row.UpperState, row.UpperEntrantID, row.UpperSeed, row.UpperRank = slotColumns(m.Upper)
	row.LowerState, row.LowerEntrantID, row.LowerSeed, row.LowerRank = slotColumns(m.Lower)
	if m.Next != nil {
		next := string(m.NextSlot)
		row.NextRound = intPtr(m.Next.Round)
		row.NextMatchNumber = intPtr(m.Next.Number)
		row.NextSlot = &next
	}
	return row
}

func entrantSlot(entrantID int, seed, rank *int, entrants map[int]*models.Entrant) brackets.Slot {
	s := brackets.Slot{State: brackets.SlotEntrant, EntrantID: entrantID}
	if seed != nil {
		s.Seed = *seed
	}
	if rank != nil {
		s.Rank = *rank
	}
	if e, ok := entrants[entrantID]; ok {
		s.Name = e.Name
		if e.GroupID != nil {
			s.GroupID = *e.GroupID
			s.GroupName = brackets.GroupName(*e.GroupID)
		}
	}
	return s
}

func rowSlot(state string, entrantID, seed, rank *int, entrants map[int]*models.Entrant) brackets.Slot {
	if brackets.SlotState(state) == brackets.SlotEntrant && entrantID != nil {
		return entrantSlot(*entrantID, seed, rank, entrants)
	}
	s := brackets.Slot{State: brackets.SlotState(state)}
	if seed != nil {
		s.Seed = *seed
	}
	return s
}

func rowToMatch(row *models.KnockoutMatch, entrants map[int]*models.Entrant) *brackets.BracketMatch {
	return &brackets.BracketMatch{
		Key:      brackets.MatchKey{Round: row.Round, Number: row.MatchNumber},
		Upper:    rowSlot(row.UpperState, row.UpperEntrantID, row.UpperSeed, row.UpperRank, entrants),
		Lower:    rowSlot(row.LowerState, row.LowerEntrantID, row.LowerSeed, row.LowerRank, entrants),
		Score1:   row.Score1,
		Score2:   row.Score2,
		WinnerID: row.WinnerEntrantID,
		Status:   brackets.MatchStatus(row.Status),
		IsBye:    row.IsBye,
	}
}
