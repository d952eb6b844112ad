package brackets

import (
	"fmt"
	"math/rand"
	"time"
)

// Entrant is a player, or a doubles pair, as seen by the scheduling core.
// Entrants sharing a non-empty TeamKey are kept together as one unit.
type Entrant struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	TeamKey string `json:"team_key,omitempty"`
}

type Group struct {
	ID       int       `json:"id"`
	Name     string    `json:"name"`
	Entrants []Entrant `json:"entrants"`
}

type distributeConfig struct {
	shuffle bool
	rng     *rand.Rand
}

type DistributeOption func(*distributeConfig)

// WithShuffle draws the units in random order before dealing them into groups.
// A nil rng falls back to a time-seeded source.
func WithShuffle(rng *rand.Rand) DistributeOption {
	return func(c *distributeConfig) {
		c.shuffle = true
		c.rng = rng
	}
}

// GroupName returns the letter label for a 1-based group number: A..Z, then AA, AB...
func GroupName(n int) string {
	if n <= 0 {
		return ""
	}
	name := ""
	for n > 0 {
		n--
		name = string(rune('A'+n%26)) + name
		n /= 26
	}
	return name
}

// DistributeGroups deals seed-ordered entrants into groupCount groups so that
// group sizes differ by at most one unit and the earlier groups take the
// remainder. Unit i lands in group i mod groupCount.
func DistributeGroups(entrants []Entrant, groupCount int, opts ...DistributeOption) ([]Group, error) {
	if groupCount <= 0 {
		return nil, fmt.Errorf("group count must be positive, got %d: %w", groupCount, ErrInvalidInput)
	}
	if len(entrants) == 0 {
		return nil, fmt.Errorf("no entrants to distribute: %w", ErrInvalidInput)
	}

	cfg := distributeConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	units, err := collectUnits(entrants)
	if err != nil {
		return nil, err
	}
	if groupCount > len(units) {
		return nil, fmt.Errorf("group count %d exceeds %d entrant units: %w", groupCount, len(units), ErrInvalidInput)
	}

	if cfg.shuffle {
		rng := cfg.rng
		if rng == nil {
			rng = rand.New(rand.NewSource(time.Now().UnixNano()))
		}
		rng.Shuffle(len(units), func(i, j int) { units[i], units[j] = units[j], units[i] })
	}

	groups := make([]Group, groupCount)
	for g := range groups {
		groups[g] = Group{ID: g + 1, Name: GroupName(g + 1)}
	}
	for i, unit := range units {
		g := i % groupCount
		groups[g].Entrants = append(groups[g].Entrants, unit...)
	}
	return groups, nil
}

func collectUnits(entrants []Entrant) ([][]Entrant, error) {
	seen := make(map[int]struct{}, len(entrants))
	teamIndex := make(map[string]int)
	units := make([][]Entrant, 0, len(entrants))

	for _, e := range entrants {
		if _, dup := seen[e.ID]; dup {
			return nil, fmt.Errorf("duplicate entrant id %d: %w", e.ID, ErrInvalidInput)
		}
		seen[e.ID] = struct{}{}

		if e.TeamKey == "" {
			units = append(units, []Entrant{e})
			continue
		}
		if idx, ok := teamIndex[e.TeamKey]; ok {
			units[idx] = append(units[idx], e)
			continue
		}
		teamIndex[e.TeamKey] = len(units)
		units = append(units, []Entrant{e})
	}
	return units, nil
}
