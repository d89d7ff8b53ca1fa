package handlers

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"pollboard/application/ports"
	"pollboard/application/queries"
	"pollboard/domain/core/aggregates"
	"pollboard/domain/core/valueobjects"
	"pollboard/domain/results"
)

// pollSnapshot is the cacheable, user-neutral state of one poll. The
// per-user fields of PollView are derived from it on every request, so one
// cached entry serves all users without leaking read-your-writes.
type pollSnapshot struct {
	ID                 string              `json:"id"`
	Title              string              `json:"title"`
	Description        string              `json:"description"`
	Options            []aggregates.Option `json:"options"`
	CreatedAt          time.Time           `json:"created_at"`
	ExpiresAt          *time.Time          `json:"expires_at,omitempty"`
	IsPublic           bool                `json:"is_public"`
	AllowMultipleVotes bool                `json:"allow_multiple_votes"`
	AllowComments      bool                `json:"allow_comments"`
	Author             string              `json:"author"`
	AuthorID           string              `json:"author_id"`
	TotalVotes         int                 `json:"total_votes"`
	Ballots            map[string][]int    `json:"ballots"`
}

func snapshotFromPoll(poll *aggregates.Poll) pollSnapshot {
	ballots := make(map[string][]int)
	for _, voter := range poll.Voters() {
		ballots[voter] = poll.BallotOf(voter)
	}
	return pollSnapshot{
		ID:                 poll.ID().String(),
		Title:              poll.Title(),
		Description:        poll.Description(),
		Options:            poll.Options(),
		CreatedAt:          poll.CreatedAt(),
		ExpiresAt:          poll.ExpiresAt(),
		IsPublic:           poll.IsPublic(),
		AllowMultipleVotes: poll.AllowMultipleVotes(),
		AllowComments:      poll.AllowComments(),
		Author:             poll.Author(),
		AuthorID:           poll.AuthorID(),
		TotalVotes:         poll.TotalVotes(),
		Ballots:            ballots,
	}
}

// GetPollHandler handles single-poll reads with a short-lived cache in
// front of the repository. Writers invalidate the cache key, so a hit is
// always at least as fresh as the last committed mutation.
type GetPollHandler struct {
	pollRepo     ports.PollRepository
	bookmarkRepo ports.BookmarkRepository
	cache        ports.Cache
	cacheTTL     int
	logger       *zap.Logger
	now          func() time.Time
}

// NewGetPollHandler creates a new get poll handler
func NewGetPollHandler(
	pollRepo ports.PollRepository,
	bookmarkRepo ports.BookmarkRepository,
	cache ports.Cache,
	cacheTTL int,
	logger *zap.Logger,
) *GetPollHandler {
	return &GetPollHandler{
		pollRepo:     pollRepo,
		bookmarkRepo: bookmarkRepo,
		cache:        cache,
		cacheTTL:     cacheTTL,
		logger:       logger,
		now:          time.Now,
	}
}

// Handle executes the get poll query
func (h *GetPollHandler) Handle(ctx context.Context, query queries.GetPollQuery) (*queries.PollView, error) {
	pollID, err := valueobjects.NewPollIDFromString(query.PollID)
	if err != nil {
		return nil, err
	}

	snapshot, err := h.loadSnapshot(ctx, pollID)
	if err != nil {
		return nil, err
	}

	bookmarked, err := h.bookmarkRepo.Exists(ctx, query.UserID, pollID)
	if err != nil {
		// Bookmark state is decoration on the view; don't fail the read.
		h.logger.Warn("failed to load bookmark state",
			zap.String("pollID", query.PollID),
			zap.Error(err),
		)
		bookmarked = false
	}

	return h.buildView(snapshot, query.UserID, bookmarked), nil
}

func (h *GetPollHandler) loadSnapshot(ctx context.Context, pollID valueobjects.PollID) (pollSnapshot, error) {
	key := ports.PollCacheKey(pollID)

	if data, ok := h.cache.Get(ctx, key); ok {
		var snapshot pollSnapshot
		if err := json.Unmarshal(data, &snapshot); err == nil {
			return snapshot, nil
		}
		// Corrupt entry: fall through to the repository and overwrite.
		h.cache.Delete(ctx, key)
	}

	poll, err := h.pollRepo.GetByID(ctx, pollID)
	if err != nil {
		return pollSnapshot{}, err
	}

	snapshot := snapshotFromPoll(poll)
	if data, err := json.Marshal(snapshot); err == nil {
		h.cache.Set(ctx, key, data, h.cacheTTL)
	}

	return snapshot, nil
}

func (h *GetPollHandler) buildView(s pollSnapshot, userID string, bookmarked bool) *queries.PollView {
	options := make([]results.OptionResult, len(s.Options))
	for i, opt := range s.Options {
		options[i] = results.OptionResult{
			Index:      i,
			Text:       opt.Text,
			Votes:      opt.Votes,
			Percentage: results.Percentage(opt.Votes, s.TotalVotes),
		}
	}

	userVote, hasVoted := s.Ballots[userID]

	return &queries.PollView{
		ID:                 s.ID,
		Title:              s.Title,
		Description:        s.Description,
		Options:            options,
		TotalVotes:         s.TotalVotes,
		Participants:       len(s.Ballots),
		Status:             string(aggregates.ResolveStatus(s.ExpiresAt, h.now())),
		CreatedAt:          s.CreatedAt,
		ExpiresAt:          s.ExpiresAt,
		IsPublic:           s.IsPublic,
		AllowMultipleVotes: s.AllowMultipleVotes,
		AllowComments:      s.AllowComments,
		Author:             s.Author,
		AuthorID:           s.AuthorID,
		HasVoted:           hasVoted,
		UserVote:           userVote,
		IsOwner:            s.AuthorID == userID,
		IsBookmarked:       bookmarked,
	}
}
