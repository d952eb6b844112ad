package brackets

import "fmt"

// Advancement describes the effect of a recorded result.
type Advancement struct {
	Match    *BracketMatch `json:"match"`
	Winner   Slot          `json:"winner"`
	Next     *BracketMatch `json:"next,omitempty"`
	Champion bool          `json:"champion"`
}

// RecordResult completes a pending match with the given scores and moves the
// winner forward. Results are final; a completed match cannot be re-scored.
func (b *Bracket) RecordResult(round, number, score1, score2 int) (*Advancement, error) {
	bm := b.Match(round, number)
	if bm == nil {
		return nil, fmt.Errorf("match R%dM%d not found: %w", round, number, ErrInvalidInput)
	}
	if score1 < 0 || score2 < 0 {
		return nil, fmt.Errorf("match %s: scores must not be negative: %w", bm.Key, ErrInvalidInput)
	}
	if bm.Status == MatchCompleted {
		return nil, fmt.Errorf("match %s is already completed: %w", bm.Key, ErrStructuralInconsistency)
	}
	if !bm.Upper.Filled() || !bm.Lower.Filled() {
		return nil, fmt.Errorf("match %s is waiting for an entrant: %w", bm.Key, ErrStructuralInconsistency)
	}
	if score1 == score2 {
		return nil, fmt.Errorf("match %s: %d-%d: %w", bm.Key, score1, score2, ErrTiedScore)
	}
	if f, ok := b.Format(round); ok {
		hi, lo := score1, score2
		if lo > hi {
			hi, lo = lo, hi
		}
		if hi != f.LegsToWin {
			return nil, fmt.Errorf("match %s: winner must reach exactly %d legs, got %d-%d: %w",
				bm.Key, f.LegsToWin, score1, score2, ErrInvalidInput)
		}
	}

	winner := bm.Upper
	if score2 > score1 {
		winner = bm.Lower
	}

	s1, s2, id := score1, score2, winner.EntrantID
	bm.Score1, bm.Score2 = &s1, &s2
	bm.WinnerID = &id
	bm.Status = MatchCompleted

	next := b.propagate(bm, winner)
	return &Advancement{
		Match:    bm,
		Winner:   winner,
		Next:     next,
		Champion: next == nil,
	}, nil
}
