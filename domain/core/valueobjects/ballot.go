package valueobjects

import (
	pkgerrors "pollboard/pkg/errors"
)

// Ballot is a voter's submitted selection of option indices. It guarantees
// the structural properties every ballot must have (non-empty, no negative
// indices, no duplicates); range and single-vs-multi checks belong to the
// poll that receives it, since only the poll knows its option count and
// voting mode.
type Ballot struct {
	indices []int
}

// NewBallot builds a ballot from raw option indices.
func NewBallot(indices []int) (Ballot, error) {
	if len(indices) == 0 {
		return Ballot{}, pkgerrors.NewInvalidSelectionError("at least one option must be selected")
	}

	seen := make(map[int]struct{}, len(indices))
	for _, i := range indices {
		if i < 0 {
			return Ballot{}, pkgerrors.NewInvalidSelectionError("option index cannot be negative")
		}
		if _, dup := seen[i]; dup {
			return Ballot{}, pkgerrors.NewInvalidSelectionError("option selected more than once")
		}
		seen[i] = struct{}{}
	}

	// Copy to keep the ballot immutable against caller mutation.
	own := make([]int, len(indices))
	copy(own, indices)
	return Ballot{indices: own}, nil
}

// Indices returns the selected option indices.
func (b Ballot) Indices() []int {
	out := make([]int, len(b.indices))
	copy(out, b.indices)
	return out
}

// Size returns how many options the ballot selects.
func (b Ballot) Size() int {
	return len(b.indices)
}

// IsZero checks if the ballot is the zero value.
func (b Ballot) IsZero() bool {
	return len(b.indices) == 0
}
