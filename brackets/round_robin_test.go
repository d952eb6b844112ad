package brackets

import (
	"errors"
	"reflect"
	"testing"
)

func ids(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func roundFixtures(s *RoundRobinSchedule, round int) []Fixture {
	var out []Fixture
	for _, f := range s.Fixtures {
		if f.Round == round {
			out = append(out, f)
		}
	}
	return out
}

type pair struct{ a, b int }

func unordered(a, b int) pair {
	if a > b {
		a, b = b, a
	}
	return pair{a, b}
}

func TestScheduleRoundRobinProperties(t *testing.T) {
	for k := 2; k <= 11; k++ {
		s, err := ScheduleRoundRobin(ids(k), []int{1, 2, 3})
		if err != nil {
			t.Fatalf("k=%d: %v", k, err)
		}
		if got, want := len(s.Fixtures), k*(k-1)/2; got != want {
			t.Errorf("k=%d: got %d fixtures; want %d", k, got, want)
		}

		pairs := map[pair]bool{}
		perRound := map[int]map[int]bool{}
		for _, f := range s.Fixtures {
			p := unordered(f.EntrantA, f.EntrantB)
			if pairs[p] {
				t.Errorf("k=%d: pair %v scheduled twice", k, p)
			}
			pairs[p] = true
			if perRound[f.Round] == nil {
				perRound[f.Round] = map[int]bool{}
			}
			for _, id := range []int{f.EntrantA, f.EntrantB} {
				if perRound[f.Round][id] {
					t.Errorf("k=%d: entrant %d plays twice in round %d", k, id, f.Round)
				}
				perRound[f.Round][id] = true
			}
		}

		if k%2 == 1 {
			byes := map[int]int{}
			for _, b := range s.Byes {
				byes[b.EntrantID]++
			}
			for id := 1; id <= k; id++ {
				if byes[id] != 1 {
					t.Errorf("k=%d: entrant %d has %d byes; want 1", k, id, byes[id])
				}
			}
		} else if len(s.Byes) != 0 {
			t.Errorf("k=%d: got %d byes for an even group", k, len(s.Byes))
		}
	}
}

func TestScheduleRoundRobinArbitraryIDs(t *testing.T) {
	tests := []struct {
		name string
		ids  []int
	}{
		{"negative one", []int{-1, 2, 3}},
		{"zero and negatives", []int{0, -1, -2, -3, 7}},
		{"even with negative one", []int{5, -1, 9, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := len(tt.ids)
			s, err := ScheduleRoundRobin(tt.ids, []int{1})
			if err != nil {
				t.Fatalf("ScheduleRoundRobin: %v", err)
			}
			if got, want := len(s.Fixtures), k*(k-1)/2; got != want {
				t.Fatalf("got %d fixtures; want %d", got, want)
			}
			pairs := map[pair]bool{}
			for _, f := range s.Fixtures {
				pairs[unordered(f.EntrantA, f.EntrantB)] = true
			}
			for i := 0; i < k; i++ {
				for j := i + 1; j < k; j++ {
					if !pairs[unordered(tt.ids[i], tt.ids[j])] {
						t.Errorf("%d vs %d never scheduled", tt.ids[i], tt.ids[j])
					}
				}
			}
			byes := map[int]int{}
			for _, b := range s.Byes {
				byes[b.EntrantID]++
			}
			wantByes := 0
			if k%2 == 1 {
				wantByes = 1
			}
			if len(s.Byes) != wantByes*k {
				t.Errorf("got %d byes; want %d", len(s.Byes), wantByes*k)
			}
			for _, id := range tt.ids {
				if byes[id] != wantByes {
					t.Errorf("entrant %d has %d byes; want %d", id, byes[id], wantByes)
				}
			}
		})
	}
}

func TestScheduleRoundRobinSixEntrantsTwoBoards(t *testing.T) {
	s, err := ScheduleRoundRobin(ids(6), []int{1, 2})
	if err != nil {
		t.Fatalf("ScheduleRoundRobin: %v", err)
	}
	if s.Rounds != 5 {
		t.Errorf("got %d rounds; want 5", s.Rounds)
	}
	if len(s.Fixtures) != 15 {
		t.Errorf("got %d fixtures; want 15", len(s.Fixtures))
	}
	for r := 1; r <= 5; r++ {
		if got := len(roundFixtures(s, r)); got != 3 {
			t.Errorf("round %d: got %d fixtures; want 3", r, got)
		}
	}
	for i, f := range s.Fixtures {
		want := 1 + i%2
		if f.Board != want {
			t.Errorf("fixture %d: got board %d; want %d", i+1, f.Board, want)
		}
		if f.Order != i+1 {
			t.Errorf("fixture %d: got order %d", i+1, f.Order)
		}
	}
}

func TestScheduleRoundRobinFiveEntrants(t *testing.T) {
	s, err := ScheduleRoundRobin(ids(5), []int{4})
	if err != nil {
		t.Fatalf("ScheduleRoundRobin: %v", err)
	}
	if s.Rounds != 5 {
		t.Errorf("got %d rounds; want 5 (six-slot schedule)", s.Rounds)
	}
	if len(s.Fixtures) != 10 {
		t.Errorf("got %d fixtures; want 10", len(s.Fixtures))
	}
	if len(s.Byes) != 5 {
		t.Fatalf("got %d byes; want 5", len(s.Byes))
	}
	rounds := map[int]bool{}
	for _, b := range s.Byes {
		if rounds[b.Round] {
			t.Errorf("two byes in round %d", b.Round)
		}
		rounds[b.Round] = true
	}
	for _, f := range s.Fixtures {
		if f.Board != 4 {
			t.Errorf("fixture %d: got board %d; want 4", f.Order, f.Board)
		}
	}
}

func TestScheduleRoundRobinFirstRoundPairsEnds(t *testing.T) {
	s, err := ScheduleRoundRobin([]int{10, 20, 30, 40}, []int{1})
	if err != nil {
		t.Fatalf("ScheduleRoundRobin: %v", err)
	}
	got := roundFixtures(s, 1)
	want := []Fixture{
		{Order: 1, Round: 1, Leg: 1, Board: 1, EntrantA: 10, EntrantB: 40},
		{Order: 2, Round: 1, Leg: 1, Board: 1, EntrantA: 20, EntrantB: 30},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round 1: got %+v; want %+v", got, want)
	}
	second := roundFixtures(s, 2)
	if second[0].EntrantA != 10 || second[0].EntrantB != 30 {
		t.Errorf("round 2 first fixture: got %d vs %d; want 10 vs 30", second[0].EntrantA, second[0].EntrantB)
	}
}

func TestScheduleRoundRobinDoubleRound(t *testing.T) {
	s, err := ScheduleRoundRobin(ids(4), []int{1, 2}, WithDoubleRound())
	if err != nil {
		t.Fatalf("ScheduleRoundRobin: %v", err)
	}
	if s.Rounds != 6 {
		t.Errorf("got %d rounds; want 6", s.Rounds)
	}
	if len(s.Fixtures) != 12 {
		t.Fatalf("got %d fixtures; want 12", len(s.Fixtures))
	}
	for i := 0; i < 6; i++ {
		first, second := s.Fixtures[i], s.Fixtures[i+6]
		if second.Leg != 2 || second.Round != first.Round+3 {
			t.Errorf("fixture %d: got leg %d round %d", second.Order, second.Leg, second.Round)
		}
		if first.EntrantA != second.EntrantB || first.EntrantB != second.EntrantA {
			t.Errorf("fixture %d: second leg not swapped: %+v vs %+v", second.Order, first, second)
		}
	}
	if s.Fixtures[6].Board != 1 || s.Fixtures[7].Board != 2 {
		t.Errorf("board rotation should continue into the second leg")
	}
}

func TestScheduleRoundRobinDoubleRoundByes(t *testing.T) {
	s, err := ScheduleRoundRobin(ids(3), []int{1}, WithDoubleRound())
	if err != nil {
		t.Fatalf("ScheduleRoundRobin: %v", err)
	}
	if len(s.Byes) != 6 {
		t.Fatalf("got %d byes; want 6", len(s.Byes))
	}
	for _, b := range s.Byes {
		wantLeg := 1
		if b.Round > 3 {
			wantLeg = 2
		}
		if b.Leg != wantLeg {
			t.Errorf("bye in round %d: got leg %d; want %d", b.Round, b.Leg, wantLeg)
		}
	}
}

func TestScheduleRoundRobinDeterministic(t *testing.T) {
	a, _ := ScheduleRoundRobin(ids(7), []int{1, 2, 3})
	b, _ := ScheduleRoundRobin(ids(7), []int{1, 2, 3})
	if !reflect.DeepEqual(a, b) {
		t.Error("identical input produced different schedules")
	}
}

func TestScheduleRoundRobinSmallGroups(t *testing.T) {
	for _, in := range [][]int{nil, {1}} {
		s, err := ScheduleRoundRobin(in, nil)
		if err != nil {
			t.Fatalf("%v: unexpected error %v", in, err)
		}
		if len(s.Fixtures) != 0 || len(s.Byes) != 0 {
			t.Errorf("%v: got %d fixtures %d byes; want none", in, len(s.Fixtures), len(s.Byes))
		}
	}
}

func TestScheduleRoundRobinErrors(t *testing.T) {
	tests := []struct {
		name   string
		ids    []int
		boards []int
	}{
		{"no boards", ids(4), nil},
		{"zero board", ids(4), []int{1, 0}},
		{"negative board", ids(4), []int{-3}},
		{"duplicate entrant", []int{1, 2, 2}, []int{1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ScheduleRoundRobin(tt.ids, tt.boards); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("got %v; want ErrInvalidInput", err)
			}
		})
	}
}
