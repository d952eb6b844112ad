package brackets

import (
	"errors"
	"reflect"
	"testing"
)

// groupsOf builds n groups of the given size. Entrant ids are 100*group+rank
// so the origin of every seed is easy to read in failures.
func groupsOf(n, size int) []GroupStandings {
	out := make([]GroupStandings, n)
	for g := range out {
		out[g] = GroupStandings{GroupID: g + 1, GroupName: GroupName(g + 1)}
		for r := 1; r <= size; r++ {
			out[g].Standings = append(out[g].Standings, Standing{
				EntrantID: 100*(g+1) + r,
				Name:      GroupName(g+1) + string(rune('0'+r)),
				Rank:      r,
			})
		}
	}
	return out
}

func seedIDs(seeded []SeededEntrant) []int {
	out := make([]int, len(seeded))
	for i, s := range seeded {
		if s.Seed != i+1 {
			panic("seeds out of order")
		}
		out[i] = s.EntrantID
	}
	return out
}

func TestSeedOrder(t *testing.T) {
	tests := map[int][]int{
		1: {1},
		2: {1, 2},
		4: {1, 4, 2, 3},
		8: {1, 8, 4, 5, 2, 7, 3, 6},
	}
	for size, want := range tests {
		if got := SeedOrder(size); !reflect.DeepEqual(got, want) {
			t.Errorf("SeedOrder(%d) = %v; want %v", size, got, want)
		}
	}
	for _, size := range []int{0, 3, 6, -4} {
		if got := SeedOrder(size); got != nil {
			t.Errorf("SeedOrder(%d) = %v; want nil", size, got)
		}
	}
}

func TestSeedOrderPairsAreSymmetric(t *testing.T) {
	for size := 2; size <= 64; size *= 2 {
		order := SeedOrder(size)
		for i := 0; i < size; i += 2 {
			if order[i]+order[i+1] != size+1 {
				t.Errorf("size %d: slot pair %d,%d sums to %d", size, order[i], order[i+1], order[i]+order[i+1])
			}
		}
	}
}

func TestNextPowerOfTwo(t *testing.T) {
	tests := map[int]int{0: 1, 1: 1, 2: 2, 3: 4, 4: 4, 5: 8, 8: 8, 9: 16, 17: 32}
	for n, want := range tests {
		if got := NextPowerOfTwo(n); got != want {
			t.Errorf("NextPowerOfTwo(%d) = %d; want %d", n, got, want)
		}
	}
}

func TestSeedFromStandingsTwoGroups(t *testing.T) {
	tests := []struct {
		advance int
		want    []int
	}{
		{1, []int{101, 201}},
		{2, []int{101, 201, 102, 202}},
		{4, []int{101, 201, 102, 202, 103, 203, 104, 204}},
	}
	for _, tt := range tests {
		seeded, err := SeedFromStandings(groupsOf(2, 4), tt.advance)
		if err != nil {
			t.Fatalf("advance %d: %v", tt.advance, err)
		}
		if got := seedIDs(seeded); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("advance %d: got %v; want %v", tt.advance, got, tt.want)
		}
	}
}

func TestSeedFromStandingsCrossesGroupsInRoundOne(t *testing.T) {
	for _, advance := range []int{2, 4} {
		seeded, err := SeedFromStandings(groupsOf(2, 4), advance)
		if err != nil {
			t.Fatalf("advance %d: %v", advance, err)
		}
		b, err := BuildBracket(seeded)
		if err != nil {
			t.Fatalf("advance %d: %v", advance, err)
		}
		for _, m := range b.Round(1) {
			if m.Upper.GroupID == m.Lower.GroupID {
				t.Errorf("advance %d: %s pairs two entrants of group %s", advance, m.Key, m.Upper.GroupName)
			}
			if m.Upper.Rank+m.Lower.Rank != advance+1 {
				t.Errorf("advance %d: %s pairs rank %d with rank %d", advance, m.Key, m.Upper.Rank, m.Lower.Rank)
			}
		}
	}
}

func TestSeedFromStandingsRankMajorGroupMinor(t *testing.T) {
	tests := []struct {
		name            string
		groups, advance int
		want            []int
	}{
		{"three groups of one", 3, 1, []int{101, 201, 301}},
		{"four groups of two", 4, 2, []int{101, 201, 301, 401, 102, 202, 302, 402}},
		{"three groups of three", 3, 3, []int{101, 201, 301, 102, 202, 302, 103, 203, 303}},
		{"four groups of three", 4, 3, []int{101, 201, 301, 401, 102, 202, 302, 402, 103, 203, 303, 403}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seeded, err := SeedFromStandings(groupsOf(tt.groups, 4), tt.advance)
			if err != nil {
				t.Fatalf("SeedFromStandings: %v", err)
			}
			if got := seedIDs(seeded); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v; want %v", got, tt.want)
			}

			b, err := BuildBracket(seeded)
			if err != nil {
				t.Fatalf("BuildBracket: %v", err)
			}
			for _, m := range b.Round(1) {
				if m.Upper.Filled() && m.Lower.Filled() && m.Upper.GroupID == m.Lower.GroupID {
					t.Errorf("%s pairs two entrants of group %s", m.Key, m.Upper.GroupName)
				}
			}
		})
	}
}

func TestSeedFromStandingsFourGroupsOfTwoPairings(t *testing.T) {
	seeded, err := SeedFromStandings(groupsOf(4, 3), 2)
	if err != nil {
		t.Fatalf("SeedFromStandings: %v", err)
	}
	b, err := BuildBracket(seeded)
	if err != nil {
		t.Fatalf("BuildBracket: %v", err)
	}
	want := [][2]int{{101, 402}, {401, 102}, {201, 302}, {301, 202}}
	for i, m := range b.Round(1) {
		if got := [2]int{m.Upper.EntrantID, m.Lower.EntrantID}; got != want[i] {
			t.Errorf("%s: got %v; want %v", m.Key, got, want[i])
		}
	}
}

func TestSeedFromStandingsRoundOneClashIsUnsupported(t *testing.T) {
	// Three groups of two: seeds 3 and 6 are both from group C.
	_, err := SeedFromStandings(groupsOf(3, 4), 2)
	if !errors.Is(err, ErrUnsupportedSeedingShape) {
		t.Fatalf("got %v; want ErrUnsupportedSeedingShape", err)
	}
}

func TestSeedFromStandingsSingleGroupUsesRankOrder(t *testing.T) {
	groups := []GroupStandings{{GroupID: 1, GroupName: "A", Standings: []Standing{
		{EntrantID: 7, Rank: 3},
		{EntrantID: 5, Rank: 1},
		{EntrantID: 9, Rank: 2},
		{EntrantID: 4, Rank: 4},
	}}}
	seeded, err := SeedFromStandings(groups, 3)
	if err != nil {
		t.Fatalf("SeedFromStandings: %v", err)
	}
	if got, want := seedIDs(seeded), []int{5, 9, 7}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %v; want %v", got, want)
	}
}

func TestSeedFromStandingsIdempotent(t *testing.T) {
	groups := groupsOf(4, 4)
	first, err := SeedFromStandings(groups, 3)
	if err != nil {
		t.Fatalf("SeedFromStandings: %v", err)
	}
	second, err := SeedFromStandings(groups, 3)
	if err != nil {
		t.Fatalf("SeedFromStandings: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("seed order changed between calls: %v vs %v", seedIDs(first), seedIDs(second))
	}
}

func TestSeedFromStandingsUnsupportedShape(t *testing.T) {
	groups := groupsOf(2, 3)
	groups[1].Standings = groups[1].Standings[:1]
	_, err := SeedFromStandings(groups, 3)
	if !errors.Is(err, ErrUnsupportedSeedingShape) {
		t.Fatalf("got %v; want ErrUnsupportedSeedingShape", err)
	}
}

func TestSeedFromStandingsErrors(t *testing.T) {
	dupRank := groupsOf(2, 2)
	dupRank[0].Standings[1].Rank = 1
	zeroRank := groupsOf(2, 2)
	zeroRank[1].Standings[0].Rank = 0
	dupID := groupsOf(2, 2)
	dupID[1].Standings[0].EntrantID = dupID[0].Standings[0].EntrantID

	tests := []struct {
		name    string
		groups  []GroupStandings
		advance int
	}{
		{"zero advance", groupsOf(2, 2), 0},
		{"no groups", nil, 2},
		{"empty groups", []GroupStandings{{GroupID: 1}, {GroupID: 2}}, 2},
		{"duplicate rank", dupRank, 2},
		{"zero rank", zeroRank, 2},
		{"entrant in two groups", dupID, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := SeedFromStandings(tt.groups, tt.advance); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("got %v; want ErrInvalidInput", err)
			}
		})
	}
}
