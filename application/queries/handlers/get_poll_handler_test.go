package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pollboard/application/ports"
	"pollboard/application/queries"
	"pollboard/domain/core/aggregates"
	"pollboard/domain/core/valueobjects"
	"pollboard/infrastructure/cache"
	"pollboard/infrastructure/persistence/memory"
	"pollboard/pkg/errors"
)

// countingPollRepo counts GetByID calls so tests can observe cache hits.
type countingPollRepo struct {
	ports.PollRepository
	loads int
}

func (r *countingPollRepo) GetByID(ctx context.Context, id valueobjects.PollID) (*aggregates.Poll, error) {
	r.loads++
	return r.PollRepository.GetByID(ctx, id)
}

// failingBookmarkRepo simulates a bookmark store outage.
type failingBookmarkRepo struct {
	ports.BookmarkRepository
}

func (failingBookmarkRepo) Exists(ctx context.Context, userID string, pollID valueobjects.PollID) (bool, error) {
	return false, errors.NewDatabaseError("get_item", context.DeadlineExceeded)
}

func (failingBookmarkRepo) ListForUser(ctx context.Context, userID string) ([]valueobjects.PollID, error) {
	return nil, errors.NewDatabaseError("query", context.DeadlineExceeded)
}

func seedVotedPoll(t *testing.T, repo ports.PollRepository) valueobjects.PollID {
	t.Helper()

	id := valueobjects.NewPollID()
	poll, err := aggregates.NewPoll(id, aggregates.PollSpec{
		Title:       "Best editor?",
		Description: "The eternal question",
		Options:     []string{"vim", "emacs", "vscode"},
		IsPublic:    true,
		Author:      "Test Author",
		AuthorID:    "author-1",
	}, time.Now())
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), poll))

	ballot, err := valueobjects.NewBallot([]int{0})
	require.NoError(t, err)
	require.NoError(t, poll.ApplyVote("voter-1", ballot, time.Now()))

	require.NoError(t, repo.Save(context.Background(), poll))
	return id
}

func TestGetPollHandler_CachedSnapshotIsPersonalizedPerUser(t *testing.T) {
	ctx := context.Background()
	repo := &countingPollRepo{PollRepository: memory.NewPollRepository()}
	handler := NewGetPollHandler(repo, memory.NewBookmarkRepository(), cache.NewMemoryCache(), 60, zap.NewNop())

	pollID := seedVotedPoll(t, repo)

	// First read populates the cache.
	view, err := handler.Handle(ctx, queries.GetPollQuery{PollID: pollID.String(), UserID: "voter-1"})
	require.NoError(t, err)
	assert.True(t, view.HasVoted)
	assert.Equal(t, []int{0}, view.UserVote)
	assert.False(t, view.IsOwner)
	assert.Equal(t, 1, repo.loads)

	// Second read for a different user hits the cache but still derives
	// that user's own fields.
	view, err = handler.Handle(ctx, queries.GetPollQuery{PollID: pollID.String(), UserID: "author-1"})
	require.NoError(t, err)
	assert.False(t, view.HasVoted)
	assert.Empty(t, view.UserVote)
	assert.True(t, view.IsOwner)
	assert.Equal(t, 1, repo.loads)

	assert.Equal(t, 1, view.TotalVotes)
	assert.Equal(t, 1, view.Participants)
	assert.Equal(t, 100, view.Options[0].Percentage)
}

func TestGetPollHandler_BookmarkStateIsNeverCached(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewPollRepository()
	bookmarkRepo := memory.NewBookmarkRepository()
	handler := NewGetPollHandler(repo, bookmarkRepo, cache.NewMemoryCache(), 60, zap.NewNop())

	pollID := seedVotedPoll(t, repo)

	view, err := handler.Handle(ctx, queries.GetPollQuery{PollID: pollID.String(), UserID: "reader-1"})
	require.NoError(t, err)
	assert.False(t, view.IsBookmarked)

	require.NoError(t, bookmarkRepo.Add(ctx, "reader-1", pollID))

	// The snapshot is still cached, but bookmark state reflects the add.
	view, err = handler.Handle(ctx, queries.GetPollQuery{PollID: pollID.String(), UserID: "reader-1"})
	require.NoError(t, err)
	assert.True(t, view.IsBookmarked)
}

func TestGetPollHandler_CorruptCacheEntryFallsBackToRepository(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewPollRepository()
	pollCache := cache.NewMemoryCache()
	handler := NewGetPollHandler(repo, memory.NewBookmarkRepository(), pollCache, 60, zap.NewNop())

	pollID := seedVotedPoll(t, repo)
	key := ports.PollCacheKey(pollID)
	require.NoError(t, pollCache.Set(ctx, key, []byte("not json"), 60))

	view, err := handler.Handle(ctx, queries.GetPollQuery{PollID: pollID.String(), UserID: "voter-1"})
	require.NoError(t, err)
	assert.Equal(t, "Best editor?", view.Title)

	// The corrupt entry was replaced with a fresh snapshot.
	data, found := pollCache.Get(ctx, key)
	require.True(t, found)
	assert.Contains(t, string(data), "Best editor?")
}

func TestGetPollHandler_BookmarkOutageDoesNotFailTheRead(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewPollRepository()
	handler := NewGetPollHandler(repo, failingBookmarkRepo{}, cache.NewMemoryCache(), 60, zap.NewNop())

	pollID := seedVotedPoll(t, repo)

	// Bookmark state is decoration; the view is served without it.
	view, err := handler.Handle(ctx, queries.GetPollQuery{PollID: pollID.String(), UserID: "voter-1"})
	require.NoError(t, err)
	assert.False(t, view.IsBookmarked)
	assert.Equal(t, 1, view.TotalVotes)
}

func TestGetPollHandler_UnknownPoll(t *testing.T) {
	ctx := context.Background()
	handler := NewGetPollHandler(memory.NewPollRepository(), memory.NewBookmarkRepository(), cache.NewMemoryCache(), 60, zap.NewNop())

	_, err := handler.Handle(ctx, queries.GetPollQuery{
		PollID: valueobjects.NewPollID().String(),
		UserID: "reader-1",
	})
	assert.True(t, errors.IsNotFound(err))
}
