package commands

import (
	"time"

	"pollboard/pkg/errors"
)

// CreatePollCommand represents the command to create a new poll
type CreatePollCommand struct {
	PollID             string     `json:"poll_id" validate:"required,uuid4"`
	UserID             string     `json:"user_id" validate:"required"`
	UserName           string     `json:"user_name"`
	Title              string     `json:"title" validate:"required,max=255"`
	Description        string     `json:"description" validate:"required,max=2000"`
	Options            []string   `json:"options" validate:"required"`
	ExpiresAt          *time.Time `json:"expires_at,omitempty"`
	IsPublic           bool       `json:"is_public"`
	AllowMultipleVotes bool       `json:"allow_multiple_votes"`
	AllowComments      bool       `json:"allow_comments"`
}

// Validate validates the command
func (cmd CreatePollCommand) Validate() error {
	if cmd.PollID == "" {
		return errors.NewValidationError("poll ID is required")
	}
	if cmd.UserID == "" {
		return errors.NewValidationError("user ID is required")
	}
	if cmd.Title == "" {
		return errors.NewValidationError("title is required")
	}
	if cmd.Description == "" {
		return errors.NewValidationError("description is required")
	}
	if len(cmd.Options) == 0 {
		return errors.NewValidationError("options are required")
	}
	return nil
}
