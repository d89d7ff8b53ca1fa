package queries

import (
	"time"

	"pollboard/domain/results"
	"pollboard/pkg/errors"
)

// GetPollQuery requests a single poll's full view for a user
type GetPollQuery struct {
	PollID string `json:"poll_id" validate:"required,uuid4"`
	UserID string `json:"user_id" validate:"required"`
}

// Validate validates the query
func (q GetPollQuery) Validate() error {
	if q.PollID == "" {
		return errors.NewValidationError("poll ID is required")
	}
	if q.UserID == "" {
		return errors.NewValidationError("user ID is required")
	}
	return nil
}

// PollView is the full read model of one poll, personalized for the
// requesting user. Status and percentages are derived at read time.
type PollView struct {
	ID                 string                 `json:"id"`
	Title              string                 `json:"title"`
	Description        string                 `json:"description"`
	Options            []results.OptionResult `json:"options"`
	TotalVotes         int                    `json:"totalVotes"`
	Participants       int                    `json:"participants"`
	Status             string                 `json:"status"`
	CreatedAt          time.Time              `json:"createdAt"`
	ExpiresAt          *time.Time             `json:"expiresAt,omitempty"`
	IsPublic           bool                   `json:"isPublic"`
	AllowMultipleVotes bool                   `json:"allowMultipleVotes"`
	AllowComments      bool                   `json:"allowComments"`
	Author             string                 `json:"author"`
	AuthorID           string                 `json:"authorId"`

	HasVoted     bool  `json:"hasVoted"`
	UserVote     []int `json:"userVote,omitempty"`
	IsOwner      bool  `json:"isOwner"`
	IsBookmarked bool  `json:"isBookmarked"`
}
