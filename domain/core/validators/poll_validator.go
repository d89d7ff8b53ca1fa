package validators

import (
	"fmt"
	"strings"
	"time"

	"pollboard/domain/core/aggregates"
	"pollboard/pkg/errors"
)

// PollValidator validates poll creation input before it reaches the aggregate
type PollValidator struct {
	titleMinLength  int
	titleMaxLength  int
	descMaxLength   int
	optionMaxLength int
}

// NewPollValidator creates a new poll validator with default rules
func NewPollValidator() *PollValidator {
	return &PollValidator{
		titleMinLength:  1,
		titleMaxLength:  255,
		descMaxLength:   2000,
		optionMaxLength: 255,
	}
}

// NormalizeOptions trims each option and drops blank rows. The creation form
// submits empty trailing rows routinely, so they are cleaned up rather than
// rejected.
func (v *PollValidator) NormalizeOptions(options []string) []string {
	out := make([]string, 0, len(options))
	for _, text := range options {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		out = append(out, text)
	}
	return out
}

// ValidateTitle validates the poll title
func (v *PollValidator) ValidateTitle(title string) error {
	title = strings.TrimSpace(title)

	if len(title) < v.titleMinLength {
		return errors.NewValidationError("title is required")
	}

	if len(title) > v.titleMaxLength {
		return errors.NewValidationError(
			fmt.Sprintf("title exceeds maximum length of %d characters", v.titleMaxLength))
	}

	return nil
}

// ValidateDescription validates the poll description
func (v *PollValidator) ValidateDescription(desc string) error {
	desc = strings.TrimSpace(desc)

	if desc == "" {
		return errors.NewValidationError("description is required")
	}

	if len(desc) > v.descMaxLength {
		return errors.NewValidationError(
			fmt.Sprintf("description exceeds maximum length of %d characters", v.descMaxLength))
	}

	return nil
}

// ValidateOptions validates normalized options. Callers should run
// NormalizeOptions first so blank rows don't count toward the minimum.
func (v *PollValidator) ValidateOptions(options []string) error {
	if len(options) < aggregates.MinOptions || len(options) > aggregates.MaxOptions {
		return errors.NewValidationError(
			fmt.Sprintf("polls require between %d and %d options",
				aggregates.MinOptions, aggregates.MaxOptions))
	}

	for _, text := range options {
		if len(text) > v.optionMaxLength {
			return errors.NewValidationError(
				fmt.Sprintf("option %q exceeds maximum length of %d characters",
					text, v.optionMaxLength))
		}
	}

	return nil
}

// ValidateExpiration validates an optional expiration instant
func (v *PollValidator) ValidateExpiration(expiresAt *time.Time, now time.Time) error {
	if expiresAt == nil {
		return nil
	}

	if !expiresAt.After(now) {
		return errors.NewValidationError("expiration must be in the future")
	}

	return nil
}
