package handlers

import (
	"context"
	"time"

	"go.uber.org/zap"

	"pollboard/application/ports"
	"pollboard/application/queries"
	"pollboard/domain/core/aggregates"
)

// DashboardStatsHandler computes a user's dashboard counters
type DashboardStatsHandler struct {
	pollRepo     ports.PollRepository
	bookmarkRepo ports.BookmarkRepository
	logger       *zap.Logger
	now          func() time.Time
}

// NewDashboardStatsHandler creates a new dashboard stats handler
func NewDashboardStatsHandler(
	pollRepo ports.PollRepository,
	bookmarkRepo ports.BookmarkRepository,
	logger *zap.Logger,
) *DashboardStatsHandler {
	return &DashboardStatsHandler{
		pollRepo:     pollRepo,
		bookmarkRepo: bookmarkRepo,
		logger:       logger,
		now:          time.Now,
	}
}

// Handle executes the dashboard stats query
func (h *DashboardStatsHandler) Handle(ctx context.Context, query queries.DashboardStatsQuery) (*queries.DashboardStats, error) {
	now := h.now()
	stats := &queries.DashboardStats{}

	mine, err := h.pollRepo.GetByAuthor(ctx, query.UserID)
	if err != nil {
		return nil, err
	}
	stats.PollsCreated = len(mine)
	for _, poll := range mine {
		if poll.StatusAt(now) == aggregates.StatusActive {
			stats.ActivePolls++
		} else {
			stats.ExpiredPolls++
		}
		stats.VotesReceived += poll.TotalVotes()
	}

	all, err := h.pollRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, poll := range all {
		if poll.HasVoted(query.UserID) {
			stats.PollsVotedOn++
		}
	}

	bookmarks, err := h.bookmarkRepo.ListForUser(ctx, query.UserID)
	if err != nil {
		h.logger.Warn("failed to count bookmarks", zap.Error(err))
	} else {
		stats.PollsBookmarked = len(bookmarks)
	}

	return stats, nil
}
