package commands

import (
	"pollboard/pkg/errors"
)

// DeletePollCommand represents the command to delete a poll. Only the
// poll's author may delete it; the handler enforces ownership.
type DeletePollCommand struct {
	PollID string `json:"poll_id" validate:"required,uuid4"`
	UserID string `json:"user_id" validate:"required"`
}

// Validate validates the command
func (cmd DeletePollCommand) Validate() error {
	if cmd.PollID == "" {
		return errors.NewValidationError("poll ID is required")
	}
	if cmd.UserID == "" {
		return errors.NewValidationError("user ID is required")
	}
	return nil
}
