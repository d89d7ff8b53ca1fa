package commands

import (
	"pollboard/pkg/errors"
)

// CastVoteCommand represents the command to record a user's ballot on a poll
type CastVoteCommand struct {
	PollID     string `json:"poll_id" validate:"required,uuid4"`
	UserID     string `json:"user_id" validate:"required"`
	Selections []int  `json:"selections" validate:"required,min=1"`
}

// Validate validates the command
func (cmd CastVoteCommand) Validate() error {
	if cmd.PollID == "" {
		return errors.NewValidationError("poll ID is required")
	}
	if cmd.UserID == "" {
		return errors.NewValidationError("user ID is required")
	}
	if len(cmd.Selections) == 0 {
		return errors.NewInvalidSelectionError("at least one option must be selected")
	}
	return nil
}

// RetractVoteCommand represents the command to withdraw a user's ballot
type RetractVoteCommand struct {
	PollID string `json:"poll_id" validate:"required,uuid4"`
	UserID string `json:"user_id" validate:"required"`
}

// Validate validates the command
func (cmd RetractVoteCommand) Validate() error {
	if cmd.PollID == "" {
		return errors.NewValidationError("poll ID is required")
	}
	if cmd.UserID == "" {
		return errors.NewValidationError("user ID is required")
	}
	return nil
}
