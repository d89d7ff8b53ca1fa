package queries

import (
	"pollboard/pkg/errors"
)

// DashboardStatsQuery requests aggregate counts for a user's dashboard
type DashboardStatsQuery struct {
	UserID string `json:"user_id" validate:"required"`
}

// Validate validates the query
func (q DashboardStatsQuery) Validate() error {
	if q.UserID == "" {
		return errors.NewValidationError("user ID is required")
	}
	return nil
}

// DashboardStats summarizes a user's activity
type DashboardStats struct {
	PollsCreated    int `json:"pollsCreated"`
	ActivePolls     int `json:"activePolls"`
	ExpiredPolls    int `json:"expiredPolls"`
	VotesReceived   int `json:"votesReceived"`
	PollsVotedOn    int `json:"pollsVotedOn"`
	PollsBookmarked int `json:"pollsBookmarked"`
}
