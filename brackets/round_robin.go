package brackets

import "fmt"

// Fixture is one scheduled group-stage match. Order is the 1-based position
// of the fixture across the whole schedule.
type Fixture struct {
	Order    int `json:"order"`
	Round    int `json:"round"`
	Leg      int `json:"leg"`
	Board    int `json:"board"`
	EntrantA int `json:"entrant_a"`
	EntrantB int `json:"entrant_b"`
}

type Bye struct {
	Round     int `json:"round"`
	Leg       int `json:"leg"`
	EntrantID int `json:"entrant_id"`
}

type RoundRobinSchedule struct {
	Rounds   int       `json:"rounds"`
	Fixtures []Fixture `json:"fixtures"`
	Byes     []Bye     `json:"byes"`
}

type roundRobinConfig struct {
	legs int
}

type RoundRobinOption func(*roundRobinConfig)

// WithDoubleRound schedules a second leg with home and away swapped.
func WithDoubleRound() RoundRobinOption {
	return func(c *roundRobinConfig) { c.legs = 2 }
}

// ScheduleRoundRobin builds a circle-method schedule for one group. Odd groups
// get a phantom opponent and the entrant drawn against it sits out that round.
// Boards are handed out by cycling through boards in fixture order.
func ScheduleRoundRobin(entrantIDs []int, boards []int, opts ...RoundRobinOption) (*RoundRobinSchedule, error) {
	cfg := roundRobinConfig{legs: 1}
	for _, opt := range opts {
		opt(&cfg)
	}

	seen := make(map[int]struct{}, len(entrantIDs))
	for _, id := range entrantIDs {
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("duplicate entrant id %d: %w", id, ErrInvalidInput)
		}
		seen[id] = struct{}{}
	}

	k := len(entrantIDs)
	if k < 2 {
		return &RoundRobinSchedule{Fixtures: []Fixture{}, Byes: []Bye{}}, nil
	}
	if len(boards) == 0 {
		return nil, fmt.Errorf("at least one board is required: %w", ErrInvalidInput)
	}
	for _, b := range boards {
		if b <= 0 {
			return nil, fmt.Errorf("board number must be positive, got %d: %w", b, ErrInvalidInput)
		}
	}

	// The circle runs over positions; position k is the phantom when k is odd.
	m := k
	if m%2 == 1 {
		m++
	}
	phantom := k
	slots := make([]int, m)
	for i := range slots {
		slots[i] = i
	}
	roundsPerLeg := m - 1

	schedule := &RoundRobinSchedule{
		Rounds:   roundsPerLeg * cfg.legs,
		Fixtures: make([]Fixture, 0, cfg.legs*k*(k-1)/2),
		Byes:     []Bye{},
	}

	boardIdx := 0
	for leg := 1; leg <= cfg.legs; leg++ {
		p := make([]int, m)
		copy(p, slots)

		for r := 1; r <= roundsPerLeg; r++ {
			round := (leg-1)*roundsPerLeg + r
			for i := 0; i < m/2; i++ {
				a, b := p[i], p[m-1-i]
				if a == phantom || b == phantom {
					sitter := a
					if a == phantom {
						sitter = b
					}
					schedule.Byes = append(schedule.Byes, Bye{Round: round, Leg: leg, EntrantID: entrantIDs[sitter]})
					continue
				}
				if leg%2 == 0 {
					a, b = b, a
				}
				schedule.Fixtures = append(schedule.Fixtures, Fixture{
					Order:    len(schedule.Fixtures) + 1,
					Round:    round,
					Leg:      leg,
					Board:    boards[boardIdx%len(boards)],
					EntrantA: entrantIDs[a],
					EntrantB: entrantIDs[b],
				})
				boardIdx++
			}
			p = rotate(p)
		}
	}
	return schedule, nil
}

// rotate keeps the first position fixed and moves every other position one
// step clockwise: [p0, pM-1, p1, ..., pM-2].
func rotate(p []int) []int {
	m := len(p)
	next := make([]int, m)
	next[0] = p[0]
	next[1] = p[m-1]
	copy(next[2:], p[1:m-1])
	return next
}
