package handlers

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"pollboard/application/ports"
	"pollboard/application/queries"
	"pollboard/domain/core/aggregates"
	pkgerrors "pollboard/pkg/errors"
)

// ListPollsHandler handles poll listings across the supported views.
// Results are sorted newest first.
type ListPollsHandler struct {
	pollRepo     ports.PollRepository
	bookmarkRepo ports.BookmarkRepository
	logger       *zap.Logger
	now          func() time.Time
}

// NewListPollsHandler creates a new list polls handler
func NewListPollsHandler(
	pollRepo ports.PollRepository,
	bookmarkRepo ports.BookmarkRepository,
	logger *zap.Logger,
) *ListPollsHandler {
	return &ListPollsHandler{
		pollRepo:     pollRepo,
		bookmarkRepo: bookmarkRepo,
		logger:       logger,
		now:          time.Now,
	}
}

// Handle executes the list polls query
func (h *ListPollsHandler) Handle(ctx context.Context, query queries.ListPollsQuery) (*queries.ListPollsResult, error) {
	polls, err := h.collect(ctx, query)
	if err != nil {
		return nil, err
	}

	now := h.now()
	polls = filterByStatus(polls, query.Status, now)

	sort.Slice(polls, func(i, j int) bool {
		return polls[i].CreatedAt().After(polls[j].CreatedAt())
	})

	bookmarked, err := h.bookmarkSet(ctx, query.UserID)
	if err != nil {
		h.logger.Warn("failed to load bookmark set", zap.Error(err))
		bookmarked = map[string]struct{}{}
	}

	summaries := make([]queries.PollSummary, 0, len(polls))
	for _, poll := range polls {
		_, isBookmarked := bookmarked[poll.ID().String()]
		summaries = append(summaries, queries.PollSummary{
			ID:           poll.ID().String(),
			Title:        poll.Title(),
			Description:  poll.Description(),
			OptionCount:  len(poll.Options()),
			TotalVotes:   poll.TotalVotes(),
			Participants: poll.ParticipantCount(),
			Status:       string(poll.StatusAt(now)),
			CreatedAt:    poll.CreatedAt(),
			ExpiresAt:    poll.ExpiresAt(),
			IsPublic:     poll.IsPublic(),
			Author:       poll.Author(),
			AuthorID:     poll.AuthorID(),
			HasVoted:     poll.HasVoted(query.UserID),
			IsOwner:      poll.AuthorID() == query.UserID,
			IsBookmarked: isBookmarked,
		})
	}

	return &queries.ListPollsResult{
		Polls: summaries,
		Total: len(summaries),
	}, nil
}

// collect gathers the raw aggregates for the requested view.
func (h *ListPollsHandler) collect(ctx context.Context, query queries.ListPollsQuery) ([]*aggregates.Poll, error) {
	switch query.View {
	case queries.ViewMine:
		return h.pollRepo.GetByAuthor(ctx, query.UserID)

	case queries.ViewVoted:
		all, err := h.pollRepo.GetAll(ctx)
		if err != nil {
			return nil, err
		}
		voted := make([]*aggregates.Poll, 0)
		for _, poll := range all {
			if poll.HasVoted(query.UserID) {
				voted = append(voted, poll)
			}
		}
		return voted, nil

	case queries.ViewBookmarked:
		ids, err := h.bookmarkRepo.ListForUser(ctx, query.UserID)
		if err != nil {
			return nil, err
		}
		polls := make([]*aggregates.Poll, 0, len(ids))
		for _, id := range ids {
			poll, err := h.pollRepo.GetByID(ctx, id)
			if err != nil {
				// A bookmark can outlive its poll if a cascade was
				// interrupted. Skip the dangling reference.
				if pkgerrors.IsNotFound(err) {
					continue
				}
				return nil, err
			}
			polls = append(polls, poll)
		}
		return polls, nil

	default: // ViewPublic
		all, err := h.pollRepo.GetAll(ctx)
		if err != nil {
			return nil, err
		}
		// Public means isPublic, regardless of author. Authors reach
		// their private polls through the mine view.
		public := make([]*aggregates.Poll, 0, len(all))
		for _, poll := range all {
			if poll.IsPublic() {
				public = append(public, poll)
			}
		}
		return public, nil
	}
}

func (h *ListPollsHandler) bookmarkSet(ctx context.Context, userID string) (map[string]struct{}, error) {
	ids, err := h.bookmarkRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id.String()] = struct{}{}
	}
	return set, nil
}

func filterByStatus(polls []*aggregates.Poll, filter queries.StatusFilter, now time.Time) []*aggregates.Poll {
	if filter == "" || filter == queries.StatusFilterAll {
		return polls
	}

	want := aggregates.StatusActive
	if filter == queries.StatusFilterExpired {
		want = aggregates.StatusExpired
	}

	out := make([]*aggregates.Poll, 0, len(polls))
	for _, poll := range polls {
		if poll.StatusAt(now) == want {
			out = append(out, poll)
		}
	}
	return out
}
