package brackets

import (
	"fmt"
	"math/bits"
	"sort"
)

// Standing is one entrant's final position in a group. Only Rank drives
// seeding; the rest travels along for display.
type Standing struct {
	EntrantID     int    `json:"entrant_id"`
	Name          string `json:"name"`
	Rank          int    `json:"rank"`
	Wins          int    `json:"wins"`
	Losses        int    `json:"losses"`
	LegDifference int    `json:"leg_difference"`
}

type GroupStandings struct {
	GroupID   int        `json:"group_id"`
	GroupName string     `json:"group_name"`
	Standings []Standing `json:"standings"`
}

type SeededEntrant struct {
	EntrantID int    `json:"entrant_id"`
	Name      string `json:"name"`
	GroupID   int    `json:"group_id"`
	GroupName string `json:"group_name"`
	Rank      int    `json:"rank"`
	Seed      int    `json:"seed"`
}

// NextPowerOfTwo returns the smallest power of two >= n (1 for n <= 1).
func NextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}

// SeedOrder lists seeds 1..size in bracket slot order. Consecutive pairs are
// the round-1 matches, so seed i meets seed size+1-i and seeds 1 and 2 end up
// in opposite halves. size must be a power of two.
func SeedOrder(size int) []int {
	if size < 1 || size&(size-1) != 0 {
		return nil
	}
	order := []int{1}
	for len(order) < size {
		cur := len(order)
		next := make([]int, 0, cur*2)
		for _, s := range order {
			next = append(next, s, 2*cur+1-s)
		}
		order = next
	}
	return order
}

type finisher struct {
	group    int
	standing Standing
}

// SeedFromStandings turns group standings into a bracket seed list. The best
// advance finishers of each group qualify and are numbered rank-major,
// group-minor: every group winner in group order, then every runner-up, and
// so on. SeedOrder then places seed i against seed size+1-i. When that would
// pair two entrants of the same group in round 1 the standings are rejected
// with ErrUnsupportedSeedingShape.
func SeedFromStandings(groups []GroupStandings, advance int) ([]SeededEntrant, error) {
	if advance <= 0 {
		return nil, fmt.Errorf("advancement count must be positive, got %d: %w", advance, ErrInvalidInput)
	}
	if len(groups) == 0 {
		return nil, fmt.Errorf("no group standings supplied: %w", ErrInvalidInput)
	}

	qualified, err := qualifiers(groups, advance)
	if err != nil {
		return nil, err
	}

	total := 0
	contributing := 0
	maxFromGroup := 0
	for _, q := range qualified {
		total += len(q)
		if len(q) > 0 {
			contributing++
		}
		if len(q) > maxFromGroup {
			maxFromGroup = len(q)
		}
	}
	if total == 0 {
		return nil, fmt.Errorf("no qualifiers in standings: %w", ErrInvalidInput)
	}

	seeded := make([]SeededEntrant, 0, total)
	if contributing == 1 {
		for gi, q := range qualified {
			for _, f := range q {
				seeded = append(seeded, toSeeded(groups[gi], f.standing, len(seeded)+1))
			}
		}
		return seeded, nil
	}

	groupOfSeed := make([]int, 0, total)
	for tier := 0; tier < maxFromGroup; tier++ {
		for gi, q := range qualified {
			if tier >= len(q) {
				continue
			}
			groupOfSeed = append(groupOfSeed, q[tier].group)
			seeded = append(seeded, toSeeded(groups[gi], q[tier].standing, len(seeded)+1))
		}
	}

	size := NextPowerOfTwo(total)
	for i := 1; i <= total; i++ {
		j := size + 1 - i
		if j <= total && j > i && groupOfSeed[i-1] == groupOfSeed[j-1] {
			return nil, fmt.Errorf("seeds %d and %d from group %s would meet in round 1: %w",
				i, j, seeded[i-1].GroupName, ErrUnsupportedSeedingShape)
		}
	}
	return seeded, nil
}

func qualifiers(groups []GroupStandings, advance int) ([][]finisher, error) {
	ids := make(map[int]struct{})
	out := make([][]finisher, len(groups))

	for gi, g := range groups {
		ranks := make(map[int]struct{}, len(g.Standings))
		list := make([]finisher, 0, len(g.Standings))
		for _, s := range g.Standings {
			if s.Rank <= 0 {
				return nil, fmt.Errorf("group %s: rank must be positive, got %d: %w", g.GroupName, s.Rank, ErrInvalidInput)
			}
			if _, dup := ranks[s.Rank]; dup {
				return nil, fmt.Errorf("group %s: rank %d appears twice: %w", g.GroupName, s.Rank, ErrInvalidInput)
			}
			ranks[s.Rank] = struct{}{}
			if _, dup := ids[s.EntrantID]; dup {
				return nil, fmt.Errorf("entrant %d appears in more than one standing: %w", s.EntrantID, ErrInvalidInput)
			}
			ids[s.EntrantID] = struct{}{}
			list = append(list, finisher{group: gi, standing: s})
		}

		sort.Slice(list, func(i, j int) bool { return list[i].standing.Rank < list[j].standing.Rank })
		if len(list) > advance {
			list = list[:advance]
		}
		out[gi] = list
	}
	return out, nil
}

func toSeeded(g GroupStandings, s Standing, seed int) SeededEntrant {
	return SeededEntrant{
		EntrantID: s.EntrantID,
		Name:      s.Name,
		GroupID:   g.GroupID,
		GroupName: g.GroupName,
		Rank:      s.Rank,
		Seed:      seed,
	}
}
