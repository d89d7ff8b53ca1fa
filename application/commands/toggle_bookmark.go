package commands

import (
	"pollboard/pkg/errors"
)

// ToggleBookmarkCommand flips a user's bookmark on a poll. The command is
// dispatched as a pointer so the handler can report the resulting state in
// Bookmarked.
type ToggleBookmarkCommand struct {
	PollID string `json:"poll_id" validate:"required,uuid4"`
	UserID string `json:"user_id" validate:"required"`

	// Bookmarked is set by the handler: true when the toggle added the
	// bookmark, false when it removed it.
	Bookmarked bool `json:"-"`
}

// Validate validates the command
func (cmd *ToggleBookmarkCommand) Validate() error {
	if cmd.PollID == "" {
		return errors.NewValidationError("poll ID is required")
	}
	if cmd.UserID == "" {
		return errors.NewValidationError("user ID is required")
	}
	return nil
}
