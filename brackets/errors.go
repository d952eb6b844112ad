package brackets

import "errors"

var (
	// ErrInvalidInput covers malformed arguments: bad counts, duplicate ids,
	// empty board lists, unknown matches, negative scores.
	ErrInvalidInput = errors.New("invalid input")

	// ErrTiedScore is returned when a knockout result has equal scores.
	ErrTiedScore = errors.New("tied score is not allowed in a knockout match")

	// ErrUnsupportedSeedingShape is returned when the qualifiers cannot be
	// seeded so that entrants from the same group avoid each other in round 1.
	ErrUnsupportedSeedingShape = errors.New("unsupported seeding shape")

	// ErrStructuralInconsistency means the bracket is not in a state that
	// allows the requested operation (match already completed, slot not yet filled).
	ErrStructuralInconsistency = errors.New("structural inconsistency")
)
