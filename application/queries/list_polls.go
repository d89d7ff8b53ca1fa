package queries

import (
	"fmt"
	"time"

	"pollboard/pkg/errors"
)

// ListView selects which slice of polls a listing returns.
type ListView string

const (
	ViewPublic     ListView = "public"
	ViewMine       ListView = "mine"
	ViewVoted      ListView = "voted"
	ViewBookmarked ListView = "bookmarked"
)

// StatusFilter narrows a listing by lifecycle status.
type StatusFilter string

const (
	StatusFilterAll     StatusFilter = "all"
	StatusFilterActive  StatusFilter = "active"
	StatusFilterExpired StatusFilter = "expired"
)

// ListPollsQuery requests a filtered listing of polls for a user
type ListPollsQuery struct {
	UserID string       `json:"user_id" validate:"required"`
	View   ListView     `json:"view"`
	Status StatusFilter `json:"status"`
}

// Validate validates the query. Empty view and status fall back to the
// public/all defaults.
func (q ListPollsQuery) Validate() error {
	if q.UserID == "" {
		return errors.NewValidationError("user ID is required")
	}
	switch q.View {
	case "", ViewPublic, ViewMine, ViewVoted, ViewBookmarked:
	default:
		return errors.NewValidationError(fmt.Sprintf("unknown view %q", q.View))
	}
	switch q.Status {
	case "", StatusFilterAll, StatusFilterActive, StatusFilterExpired:
	default:
		return errors.NewValidationError(fmt.Sprintf("unknown status filter %q", q.Status))
	}
	return nil
}

// PollSummary is the listing row for one poll. It omits per-option counts;
// clients fetch the full view for those.
type PollSummary struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	OptionCount  int        `json:"optionCount"`
	TotalVotes   int        `json:"totalVotes"`
	Participants int        `json:"participants"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"createdAt"`
	ExpiresAt    *time.Time `json:"expiresAt,omitempty"`
	IsPublic     bool       `json:"isPublic"`
	Author       string     `json:"author"`
	AuthorID     string     `json:"authorId"`
	HasVoted     bool       `json:"hasVoted"`
	IsOwner      bool       `json:"isOwner"`
	IsBookmarked bool       `json:"isBookmarked"`
}

// ListPollsResult is the listing response
type ListPollsResult struct {
	Polls []PollSummary `json:"polls"`
	Total int           `json:"total"`
}
