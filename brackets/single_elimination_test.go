package brackets

import (
	"context"
	"errors"
	"testing"
)

func seedList(n int) []SeededEntrant {
	out := make([]SeededEntrant, n)
	for i := range out {
		out[i] = SeededEntrant{EntrantID: 1000 + i + 1, Seed: i + 1}
	}
	return out
}

func TestBuildBracketSizesAndByes(t *testing.T) {
	for n := 2; n <= 33; n++ {
		b, err := BuildBracket(seedList(n))
		if err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}
		size := NextPowerOfTwo(n)
		if b.Size != size || b.Byes != size-n || b.Entrants != n {
			t.Errorf("n=%d: got size %d byes %d entrants %d", n, b.Size, b.Byes, b.Entrants)
		}
		if len(b.Matches) != size-1 {
			t.Errorf("n=%d: got %d matches; want %d", n, len(b.Matches), size-1)
		}

		byes := 0
		for _, m := range b.Round(1) {
			if m.Upper.Seed+m.Lower.Seed != size+1 {
				t.Errorf("n=%d: %s pairs seed %d with seed %d", n, m.Key, m.Upper.Seed, m.Lower.Seed)
			}
			if !m.IsBye {
				continue
			}
			byes++
			if m.Status != MatchCompleted || m.WinnerID == nil || m.Score1 != nil {
				t.Errorf("n=%d: bye %s not auto-resolved: %+v", n, m.Key, m)
			}
			next := b.Match(m.Next.Round, m.Next.Number)
			landed := next.Upper
			if m.NextSlot == NextSlotLower {
				landed = next.Lower
			}
			if !landed.Filled() || landed.EntrantID != *m.WinnerID {
				t.Errorf("n=%d: bye winner of %s missing from %s", n, m.Key, next.Key)
			}
		}
		if byes != size-n {
			t.Errorf("n=%d: got %d bye matches; want %d", n, byes, size-n)
		}
	}
}

func TestBuildBracketMatchOrderSplitsTopSeeds(t *testing.T) {
	b, err := BuildBracket(seedList(8))
	if err != nil {
		t.Fatalf("BuildBracket: %v", err)
	}
	want := [][2]int{{1, 8}, {4, 5}, {2, 7}, {3, 6}}
	for i, m := range b.Round(1) {
		if m.Upper.Seed != want[i][0] || m.Lower.Seed != want[i][1] {
			t.Errorf("%s: got %d vs %d; want %d vs %d", m.Key, m.Upper.Seed, m.Lower.Seed, want[i][0], want[i][1])
		}
	}
}

func TestBuildBracketRoutesWinners(t *testing.T) {
	b, err := BuildBracket(seedList(8))
	if err != nil {
		t.Fatalf("BuildBracket: %v", err)
	}
	checked := 0
	for r := 1; r < b.Rounds; r++ {
		for _, m := range b.Round(r) {
			wantNext := MatchKey{Round: r + 1, Number: (m.Key.Number + 1) / 2}
			if m.Next == nil || *m.Next != wantNext {
				t.Errorf("%s: got next %v; want %v", m.Key, m.Next, wantNext)
			}
			wantSlot := NextSlotUpper
			if m.Key.Number%2 == 0 {
				wantSlot = NextSlotLower
			}
			if m.NextSlot != wantSlot {
				t.Errorf("%s: got slot %q; want %q", m.Key, m.NextSlot, wantSlot)
			}
			checked++
		}
	}
	if checked != 6 {
		t.Errorf("checked %d non-final matches; want 6", checked)
	}
	if f := b.Final(); f.Next != nil || f.Label != "Final" {
		t.Errorf("final: got next %v label %q", f.Next, f.Label)
	}

	// play every match with the upper slot winning and check where winners land
	for r := 1; r < b.Rounds; r++ {
		for _, m := range b.Round(r) {
			adv, err := b.RecordResult(r, m.Key.Number, 3, 1)
			if err != nil {
				t.Fatalf("%s: %v", m.Key, err)
			}
			if adv.Next.Key != *m.Next {
				t.Errorf("%s: winner went to %s; want %s", m.Key, adv.Next.Key, m.Next)
			}
		}
	}
	final := b.Final()
	if final.Upper.Seed != 1 || final.Lower.Seed != 2 {
		t.Errorf("final: got seeds %d and %d; want 1 and 2", final.Upper.Seed, final.Lower.Seed)
	}
}

func TestBuildBracketLabels(t *testing.T) {
	b, err := BuildBracket(seedList(16))
	if err != nil {
		t.Fatalf("BuildBracket: %v", err)
	}
	want := []string{"Round of 16", "Quarter-Final", "Semi-Final", "Final"}
	for r := 1; r <= b.Rounds; r++ {
		for _, m := range b.Round(r) {
			if m.Label != want[r-1] {
				t.Errorf("%s: got label %q; want %q", m.Key, m.Label, want[r-1])
			}
		}
	}
	if got := RoundLabel(32); got != "Round of 64" {
		t.Errorf("RoundLabel(32) = %q", got)
	}
}

func TestGenerateKnockoutTwoGroupsOfFour(t *testing.T) {
	b, seeded, err := NewSingleEliminationGenerator().GenerateBracket(context.Background(), KnockoutParams{
		Standings: groupsOf(2, 4),
		Advance:   2,
	})
	if err != nil {
		t.Fatalf("GenerateBracket: %v", err)
	}
	if len(seeded) != 4 || b.Size != 4 || b.Byes != 0 {
		t.Fatalf("got %d seeds size %d byes %d; want 4, 4, 0", len(seeded), b.Size, b.Byes)
	}
	m1, m2 := b.Match(1, 1), b.Match(1, 2)
	if m1.Upper.Seed != 1 || m1.Lower.Seed != 4 {
		t.Errorf("R1M1: got %d vs %d; want 1 vs 4", m1.Upper.Seed, m1.Lower.Seed)
	}
	if m2.Upper.Seed != 2 || m2.Lower.Seed != 3 {
		t.Errorf("R1M2: got %d vs %d; want 2 vs 3", m2.Upper.Seed, m2.Lower.Seed)
	}
	if m1.Upper.GroupName != "A" || m1.Upper.Rank != 1 {
		t.Errorf("top half should hold the winner of A, got %+v", m1.Upper)
	}
	if m2.Upper.GroupName != "B" || m2.Upper.Rank != 1 {
		t.Errorf("bottom half should hold the winner of B, got %+v", m2.Upper)
	}
	if *m1.Next == *m2.Next && m1.NextSlot == m2.NextSlot {
		t.Error("group winners share a half")
	}
}

func TestBuildBracketThreeEntrants(t *testing.T) {
	b, err := BuildBracket(seedList(3))
	if err != nil {
		t.Fatalf("BuildBracket: %v", err)
	}
	if b.Size != 4 || b.Byes != 1 {
		t.Fatalf("got size %d byes %d; want 4 and 1", b.Size, b.Byes)
	}
	bye := b.Match(1, 1)
	if !bye.IsBye || bye.Upper.Seed != 1 || bye.Lower.State != SlotBye {
		t.Errorf("R1M1 should be seed 1's bye, got %+v", bye)
	}
	final := b.Final()
	if !final.Upper.Filled() || final.Upper.Seed != 1 || final.Score1 != nil {
		t.Errorf("seed 1 should already sit in the final, got %+v", final.Upper)
	}
	if final.Lower.State != SlotUnresolved {
		t.Errorf("lower slot of final: got %q; want unresolved", final.Lower.State)
	}
}

func TestBuildBracketSingleEntrant(t *testing.T) {
	b, err := BuildBracket(seedList(1))
	if err != nil {
		t.Fatalf("BuildBracket: %v", err)
	}
	if b.Size != 1 || len(b.Matches) != 0 || b.Rounds != 0 {
		t.Errorf("got size %d matches %d rounds %d", b.Size, len(b.Matches), b.Rounds)
	}
	if !b.IsComplete() || b.Champion.EntrantID != 1001 {
		t.Errorf("lone entrant should be champion, got %+v", b.Champion)
	}
}

func TestBuildBracketErrors(t *testing.T) {
	dupSeed := seedList(4)
	dupSeed[3].Seed = 1
	gap := seedList(4)
	gap[3].Seed = 6
	dupID := seedList(4)
	dupID[2].EntrantID = dupID[0].EntrantID

	tests := []struct {
		name   string
		seeded []SeededEntrant
		opts   []BracketOption
	}{
		{"empty", nil, nil},
		{"duplicate seed", dupSeed, nil},
		{"seed out of range", gap, nil},
		{"duplicate entrant", dupID, nil},
		{"format for missing round", seedList(4), []BracketOption{WithRoundFormats(map[int]MatchFormat{3: {LegsToWin: 3}})}},
		{"non-positive legs", seedList(4), []BracketOption{WithRoundFormats(map[int]MatchFormat{1: {LegsToWin: 0}})}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := BuildBracket(tt.seeded, tt.opts...); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("got %v; want ErrInvalidInput", err)
			}
		})
	}
}

func TestBracketLookupOutOfRange(t *testing.T) {
	b, err := BuildBracket(seedList(4))
	if err != nil {
		t.Fatalf("BuildBracket: %v", err)
	}
	for _, k := range []MatchKey{{0, 1}, {1, 0}, {1, 3}, {2, 2}, {3, 1}} {
		if m := b.Match(k.Round, k.Number); m != nil {
			t.Errorf("Match(%d, %d) = %s; want nil", k.Round, k.Number, m.Key)
		}
	}
	if got := b.Round(3); got != nil {
		t.Errorf("Round(3) = %v; want nil", got)
	}
}

func TestRestoreBracket(t *testing.T) {
	b, err := BuildBracket(seedList(4), WithRoundFormats(map[int]MatchFormat{2: {LegsToWin: 4}}))
	if err != nil {
		t.Fatalf("BuildBracket: %v", err)
	}
	if _, err := b.RecordResult(1, 1, 3, 0); err != nil {
		t.Fatalf("RecordResult: %v", err)
	}

	stored := make([]*BracketMatch, len(b.Matches))
	for i := range b.Matches {
		m := *b.Matches[len(b.Matches)-1-i]
		m.Next, m.NextSlot = nil, ""
		stored[i] = &m
	}

	restored, err := RestoreBracket(4, stored, b.Formats)
	if err != nil {
		t.Fatalf("RestoreBracket: %v", err)
	}
	if restored.Entrants != 4 || restored.Rounds != 2 {
		t.Errorf("got entrants %d rounds %d", restored.Entrants, restored.Rounds)
	}
	if got := restored.Match(1, 2); got.NextSlot != NextSlotLower || got.Next.Round != 2 {
		t.Errorf("links not rebuilt: %+v", got)
	}
	if restored.Final().Upper.EntrantID != 1001 {
		t.Errorf("recorded winner lost on restore")
	}
	if _, err := restored.RecordResult(1, 2, 3, 2); err != nil {
		t.Fatalf("RecordResult on restored bracket: %v", err)
	}
	adv, err := restored.RecordResult(2, 1, 4, 1)
	if err != nil {
		t.Fatalf("RecordResult final: %v", err)
	}
	if !adv.Champion || restored.Champion.EntrantID != 1001 {
		t.Errorf("got champion %+v", restored.Champion)
	}

	again, err := RestoreBracket(4, restored.Matches, restored.Formats)
	if err != nil {
		t.Fatalf("RestoreBracket: %v", err)
	}
	if again.Champion == nil || again.Champion.EntrantID != 1001 {
		t.Errorf("champion not recovered: %+v", again.Champion)
	}
}

func TestRestoreBracketErrors(t *testing.T) {
	b, _ := BuildBracket(seedList(4))
	if _, err := RestoreBracket(3, b.Matches, nil); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("size 3: got %v; want ErrInvalidInput", err)
	}
	if _, err := RestoreBracket(4, b.Matches[:2], nil); !errors.Is(err, ErrStructuralInconsistency) {
		t.Errorf("missing match: got %v; want ErrStructuralInconsistency", err)
	}
	dup := []*BracketMatch{b.Matches[0], b.Matches[0], b.Matches[2]}
	if _, err := RestoreBracket(4, dup, nil); !errors.Is(err, ErrStructuralInconsistency) {
		t.Errorf("duplicate match: got %v; want ErrStructuralInconsistency", err)
	}
}
