package brackets

import (
	"context"
	"fmt"
)

type KnockoutParams struct {
	Standings []GroupStandings
	Advance   int
	Formats   map[int]MatchFormat
}

// BracketGenerator turns final group standings into a knockout bracket.
type BracketGenerator interface {
	GenerateBracket(ctx context.Context, params KnockoutParams) (*Bracket, []SeededEntrant, error)

	GetName() string
}

type SingleEliminationGenerator struct{}

func NewSingleEliminationGenerator() BracketGenerator {
	return &SingleEliminationGenerator{}
}

func (g *SingleEliminationGenerator) GetName() string {
	return "SingleElimination"
}

func (g *SingleEliminationGenerator) GenerateBracket(ctx context.Context, params KnockoutParams) (*Bracket, []SeededEntrant, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	return GenerateKnockout(params)
}

// GenerateKnockout seeds the qualifiers and builds the bracket in one step.
func GenerateKnockout(params KnockoutParams) (*Bracket, []SeededEntrant, error) {
	seeded, err := SeedFromStandings(params.Standings, params.Advance)
	if err != nil {
		return nil, nil, fmt.Errorf("seeding: %w", err)
	}
	b, err := BuildBracket(seeded, WithRoundFormats(params.Formats))
	if err != nil {
		return nil, nil, fmt.Errorf("building bracket: %w", err)
	}
	return b, seeded, nil
}
