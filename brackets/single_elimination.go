package brackets

import (
	"fmt"
	"math/bits"
)

type SlotState string

const (
	SlotEntrant    SlotState = "entrant"
	SlotBye        SlotState = "bye"
	SlotUnresolved SlotState = "unresolved"
)

// Slot is one side of a bracket match.
type Slot struct {
	State     SlotState `json:"state"`
	EntrantID int       `json:"entrant_id,omitempty"`
	Name      string    `json:"name,omitempty"`
	Seed      int       `json:"seed,omitempty"`
	GroupID   int       `json:"group_id,omitempty"`
	GroupName string    `json:"group_name,omitempty"`
	Rank      int       `json:"rank,omitempty"`
}

func (s Slot) Filled() bool { return s.State == SlotEntrant }

func slotFor(e SeededEntrant) Slot {
	return Slot{
		State:     SlotEntrant,
		EntrantID: e.EntrantID,
		Name:      e.Name,
		Seed:      e.Seed,
		GroupID:   e.GroupID,
		GroupName: e.GroupName,
		Rank:      e.Rank,
	}
}

type MatchKey struct {
	Round  int `json:"round"`
	Number int `json:"number"`
}

func (k MatchKey) String() string { return fmt.Sprintf("R%dM%d", k.Round, k.Number) }

type MatchStatus string

const (
	MatchPending   MatchStatus = "pending"
	MatchCompleted MatchStatus = "completed"
)

type NextSlot string

const (
	NextSlotUpper NextSlot = "upper"
	NextSlotLower NextSlot = "lower"
)

type BracketMatch struct {
	Key      MatchKey    `json:"key"`
	Label    string      `json:"label"`
	Upper    Slot        `json:"upper"`
	Lower    Slot        `json:"lower"`
	Score1   *int        `json:"score1,omitempty"`
	Score2   *int        `json:"score2,omitempty"`
	WinnerID *int        `json:"winner_id,omitempty"`
	Status   MatchStatus `json:"status"`
	IsBye    bool        `json:"is_bye"`
	Next     *MatchKey   `json:"next,omitempty"`
	NextSlot NextSlot    `json:"next_slot,omitempty"`
}

// MatchFormat is the per-round match length, e.g. best of 5 legs = LegsToWin 3.
type MatchFormat struct {
	LegsToWin int `json:"legs_to_win"`
}

// Bracket is a single-elimination bracket stored as a flat arena: round r,
// match m sits at index Size - Size>>(r-1) + m - 1.
type Bracket struct {
	Size     int                 `json:"size"`
	Entrants int                 `json:"entrants"`
	Byes     int                 `json:"byes"`
	Rounds   int                 `json:"rounds"`
	Matches  []*BracketMatch     `json:"matches"`
	Formats  map[int]MatchFormat `json:"formats,omitempty"`
	Champion *Slot               `json:"champion,omitempty"`
}

type bracketConfig struct {
	formats map[int]MatchFormat
}

type BracketOption func(*bracketConfig)

func WithRoundFormats(formats map[int]MatchFormat) BracketOption {
	return func(c *bracketConfig) { c.formats = formats }
}

// RoundLabel names a round by how many matches it holds.
func RoundLabel(matchesInRound int) string {
	switch matchesInRound {
	case 1:
		return "Final"
	case 2:
		return "Semi-Final"
	case 4:
		return "Quarter-Final"
	default:
		return fmt.Sprintf("Round of %d", matchesInRound*2)
	}
}

func (b *Bracket) index(round, number int) (int, bool) {
	if round < 1 || round > b.Rounds {
		return 0, false
	}
	if number < 1 || number > b.Size>>round {
		return 0, false
	}
	return b.Size - b.Size>>(round-1) + number - 1, true
}

// Match returns the match at (round, number), or nil.
func (b *Bracket) Match(round, number int) *BracketMatch {
	i, ok := b.index(round, number)
	if !ok {
		return nil
	}
	return b.Matches[i]
}

// Round returns the matches of one round in match-number order.
func (b *Bracket) Round(round int) []*BracketMatch {
	start, ok := b.index(round, 1)
	if !ok {
		return nil
	}
	return b.Matches[start : start+b.Size>>round]
}

func (b *Bracket) Final() *BracketMatch {
	return b.Match(b.Rounds, 1)
}

func (b *Bracket) IsComplete() bool { return b.Champion != nil }

func (b *Bracket) Format(round int) (MatchFormat, bool) {
	f, ok := b.Formats[round]
	return f, ok
}

// BuildBracket lays out a single-elimination bracket for seeds 1..N. The
// bracket is padded to the next power of two, seed i meets seed S+1-i in
// round 1, and entrants without an opponent advance straight to round 2.
func BuildBracket(seeded []SeededEntrant, opts ...BracketOption) (*Bracket, error) {
	n := len(seeded)
	if n == 0 {
		return nil, fmt.Errorf("cannot build a bracket with no entrants: %w", ErrInvalidInput)
	}

	cfg := bracketConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	bySeed := make([]*SeededEntrant, n+1)
	ids := make(map[int]struct{}, n)
	for i := range seeded {
		e := &seeded[i]
		if e.Seed < 1 || e.Seed > n {
			return nil, fmt.Errorf("seed %d out of range 1..%d: %w", e.Seed, n, ErrInvalidInput)
		}
		if bySeed[e.Seed] != nil {
			return nil, fmt.Errorf("seed %d assigned twice: %w", e.Seed, ErrInvalidInput)
		}
		if _, dup := ids[e.EntrantID]; dup {
			return nil, fmt.Errorf("entrant %d seeded twice: %w", e.EntrantID, ErrInvalidInput)
		}
		ids[e.EntrantID] = struct{}{}
		bySeed[e.Seed] = e
	}

	size := NextPowerOfTwo(n)
	b := &Bracket{
		Size:     size,
		Entrants: n,
		Byes:     size - n,
		Rounds:   bits.Len(uint(size)) - 1,
		Matches:  make([]*BracketMatch, 0, size-1),
		Formats:  map[int]MatchFormat{},
	}

	for round, f := range cfg.formats {
		if round < 1 || round > b.Rounds {
			return nil, fmt.Errorf("format given for round %d, bracket has %d rounds: %w", round, b.Rounds, ErrInvalidInput)
		}
		if f.LegsToWin <= 0 {
			return nil, fmt.Errorf("round %d: legs to win must be positive: %w", round, ErrInvalidInput)
		}
		b.Formats[round] = f
	}

	if n == 1 {
		champion := slotFor(*bySeed[1])
		b.Champion = &champion
		return b, nil
	}

	for r := 1; r <= b.Rounds; r++ {
		count := size >> r
		label := RoundLabel(count)
		for m := 1; m <= count; m++ {
			bm := &BracketMatch{
				Key:    MatchKey{Round: r, Number: m},
				Label:  label,
				Upper:  Slot{State: SlotUnresolved},
				Lower:  Slot{State: SlotUnresolved},
				Status: MatchPending,
			}
			linkNext(bm, b.Rounds)
			b.Matches = append(b.Matches, bm)
		}
	}

	order := SeedOrder(size)
	for m, bm := range b.Round(1) {
		bm.Upper = seedSlot(bySeed, order[2*m])
		bm.Lower = seedSlot(bySeed, order[2*m+1])

		if bm.Upper.State == SlotBye || bm.Lower.State == SlotBye {
			winner := bm.Upper
			if winner.State == SlotBye {
				winner = bm.Lower
			}
			bm.IsBye = true
			bm.Status = MatchCompleted
			id := winner.EntrantID
			bm.WinnerID = &id
			b.propagate(bm, winner)
		}
	}
	return b, nil
}

func seedSlot(bySeed []*SeededEntrant, seed int) Slot {
	if seed >= len(bySeed) {
		return Slot{State: SlotBye, Seed: seed}
	}
	return slotFor(*bySeed[seed])
}

func linkNext(bm *BracketMatch, rounds int) {
	bm.Next, bm.NextSlot = nil, ""
	if bm.Key.Round >= rounds {
		return
	}
	bm.Next = &MatchKey{Round: bm.Key.Round + 1, Number: (bm.Key.Number + 1) / 2}
	if bm.Key.Number%2 == 1 {
		bm.NextSlot = NextSlotUpper
	} else {
		bm.NextSlot = NextSlotLower
	}
}

// propagate moves a winner into the linked slot of the next match, or crowns
// the champion when bm is the final.
func (b *Bracket) propagate(bm *BracketMatch, winner Slot) *BracketMatch {
	if bm.Next == nil {
		champion := winner
		b.Champion = &champion
		return nil
	}
	next := b.Match(bm.Next.Round, bm.Next.Number)
	if bm.NextSlot == NextSlotUpper {
		next.Upper = winner
	} else {
		next.Lower = winner
	}
	return next
}

// RestoreBracket rebuilds a Bracket from previously persisted matches. Every
// position of the arena must be present exactly once; next-match links are
// recomputed from the keys and the champion is taken from a completed final.
func RestoreBracket(size int, matches []*BracketMatch, formats map[int]MatchFormat) (*Bracket, error) {
	if size < 2 || size&(size-1) != 0 {
		return nil, fmt.Errorf("bracket size %d is not a power of two: %w", size, ErrInvalidInput)
	}
	if len(matches) != size-1 {
		return nil, fmt.Errorf("bracket of size %d needs %d matches, got %d: %w", size, size-1, len(matches), ErrStructuralInconsistency)
	}

	b := &Bracket{
		Size:    size,
		Rounds:  bits.Len(uint(size)) - 1,
		Matches: make([]*BracketMatch, size-1),
		Formats: map[int]MatchFormat{},
	}
	for round, f := range formats {
		b.Formats[round] = f
	}

	for _, m := range matches {
		i, ok := b.index(m.Key.Round, m.Key.Number)
		if !ok {
			return nil, fmt.Errorf("match %s does not fit a bracket of size %d: %w", m.Key, size, ErrStructuralInconsistency)
		}
		if b.Matches[i] != nil {
			return nil, fmt.Errorf("match %s appears twice: %w", m.Key, ErrStructuralInconsistency)
		}
		linkNext(m, b.Rounds)
		m.Label = RoundLabel(size >> m.Key.Round)
		b.Matches[i] = m
	}

	for _, m := range b.Round(1) {
		for _, s := range []Slot{m.Upper, m.Lower} {
			switch s.State {
			case SlotEntrant:
				b.Entrants++
			case SlotBye:
				b.Byes++
			}
		}
	}

	final := b.Final()
	if final.Status == MatchCompleted && final.WinnerID != nil {
		winner := final.Upper
		if final.Lower.EntrantID == *final.WinnerID {
			winner = final.Lower
		}
		b.Champion = &winner
	}
	return b, nil
}
