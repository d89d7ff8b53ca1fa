package utils

import (
	"time"

	pkgerrors "pollboard/pkg/errors"
)

// ParseOptionalTime parses an optional RFC3339 timestamp from request
// input. Empty input yields nil.
func ParseOptionalTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, pkgerrors.NewValidationError("invalid timestamp, expected RFC3339")
	}
	return &t, nil
}
