package valueobjects

import (
	"errors"

	"github.com/google/uuid"
)

// PollID is a value object identifying a poll. Immutable; assigned once at
// creation.
type PollID struct {
	value string
}

// NewPollID creates a new random PollID
func NewPollID() PollID {
	return PollID{value: uuid.New().String()}
}

// NewPollIDFromString creates a PollID from an existing string
func NewPollIDFromString(id string) (PollID, error) {
	if id == "" {
		return PollID{}, errors.New("poll ID cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return PollID{}, errors.New("poll ID must be a valid UUID")
	}
	return PollID{value: id}, nil
}

// String returns the string representation of the PollID
func (id PollID) String() string {
	return id.value
}

// Equals checks if two PollIDs are equal
func (id PollID) Equals(other PollID) bool {
	return id.value == other.value
}

// IsZero checks if the PollID is the zero value
func (id PollID) IsZero() bool {
	return id.value == ""
}

// MarshalJSON implements json.Marshaler
func (id PollID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + id.value + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (id *PollID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return errors.New("PollID must be a string")
	}
	id.value = string(data[1 : len(data)-1])
	return nil
}
