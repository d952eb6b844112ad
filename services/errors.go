package services

import (
	"errors"
	"fmt"

	"github.com/dowdarts/CGC-Tournament-Manager-sub000/repositories"
)

// Errors shared by the services and mapped to HTTP statuses by the handlers.
var (
	ErrNotFound         = errors.New("requested resource not found")
	ErrValidationFailed = errors.New("validation failed")

	ErrTournamentNotFound     = errors.New("tournament not found")
	ErrTournamentNameConflict = errors.New("tournament name already exists")
	ErrTournamentNameRequired = errors.New("tournament name is required")
	ErrEntrantConflict        = errors.New("entrant name is already registered for this tournament")
	ErrFixtureNotFound        = errors.New("fixture not found")
	ErrBracketNotGenerated    = errors.New("knockout bracket has not been generated")
	ErrBracketConflict        = errors.New("knockout bracket changed concurrently")

	// Wrong lifecycle stage for the requested operation.
	ErrTournamentInvalidStatus = errors.New("operation not allowed in the tournament's current status")
	ErrGroupStageIncomplete    = errors.New("group stage still has fixtures without a result")

	ErrAuthInvalidCredentials = errors.New("invalid credentials")
)

// handleRepositoryError translates repository sentinels into service errors
// while keeping the original error in the chain.
func handleRepositoryError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return fmt.Errorf("%w: %w", ErrTournamentNotFound, err)
	case errors.Is(err, repositories.ErrTournamentNameConflict):
		return fmt.Errorf("%w: %w", ErrTournamentNameConflict, err)
	case errors.Is(err, repositories.ErrEntrantNameConflict):
		return fmt.Errorf("%w: %w", ErrEntrantConflict, err)
	case errors.Is(err, repositories.ErrEntrantTournament):
		return fmt.Errorf("%w: %w", ErrTournamentNotFound, err)
	case errors.Is(err, repositories.ErrEntrantNotFound),
		errors.Is(err, repositories.ErrKnockoutMatchNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, repositories.ErrFixtureNotFound):
		return fmt.Errorf("%w: %w", ErrFixtureNotFound, err)
	case errors.Is(err, repositories.ErrKnockoutMatchConflict):
		return fmt.Errorf("%w: %w", ErrBracketConflict, err)
	default:
		return err
	}
}
