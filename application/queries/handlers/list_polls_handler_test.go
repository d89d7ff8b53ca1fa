package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pollboard/application/queries"
	"pollboard/domain/core/aggregates"
	"pollboard/domain/core/valueobjects"
	"pollboard/infrastructure/persistence/memory"
)

var listTestNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func storePoll(t *testing.T, repo *memory.PollRepository, createdAt time.Time, mutate func(*aggregates.PollSpec)) valueobjects.PollID {
	t.Helper()

	spec := aggregates.PollSpec{
		Title:       "Topic of the day",
		Description: "Daily discussion topic",
		Options:     []string{"yes", "no"},
		IsPublic:    true,
		Author:      "Test Author",
		AuthorID:    "author-1",
	}
	if mutate != nil {
		mutate(&spec)
	}

	id := valueobjects.NewPollID()
	poll, err := aggregates.NewPoll(id, spec, createdAt)
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), poll))
	return id
}

func newListHandler(pollRepo *memory.PollRepository, bookmarkRepo *memory.BookmarkRepository, now time.Time) *ListPollsHandler {
	h := NewListPollsHandler(pollRepo, bookmarkRepo, zap.NewNop())
	h.now = func() time.Time { return now }
	return h
}

func TestListPollsHandler_SkipsDanglingBookmarks(t *testing.T) {
	ctx := context.Background()
	pollRepo := memory.NewPollRepository()
	bookmarkRepo := memory.NewBookmarkRepository()

	liveID := storePoll(t, pollRepo, listTestNow, nil)
	deadID := valueobjects.NewPollID()

	require.NoError(t, bookmarkRepo.Add(ctx, "reader-1", liveID))
	require.NoError(t, bookmarkRepo.Add(ctx, "reader-1", deadID))

	handler := newListHandler(pollRepo, bookmarkRepo, listTestNow)
	result, err := handler.Handle(ctx, queries.ListPollsQuery{
		UserID: "reader-1", View: queries.ViewBookmarked,
	})
	require.NoError(t, err)

	require.Equal(t, 1, result.Total)
	assert.Equal(t, liveID.String(), result.Polls[0].ID)
	assert.True(t, result.Polls[0].IsBookmarked)
}

func TestListPollsHandler_StatusFilter(t *testing.T) {
	ctx := context.Background()
	pollRepo := memory.NewPollRepository()
	bookmarkRepo := memory.NewBookmarkRepository()

	soon := listTestNow.Add(1 * time.Hour)
	expiringID := storePoll(t, pollRepo, listTestNow, func(spec *aggregates.PollSpec) {
		spec.Title = "Closing soon"
		spec.ExpiresAt = &soon
	})
	openID := storePoll(t, pollRepo, listTestNow, func(spec *aggregates.PollSpec) {
		spec.Title = "Always open"
	})

	// Two hours later the first poll has expired.
	handler := newListHandler(pollRepo, bookmarkRepo, listTestNow.Add(2*time.Hour))

	active, err := handler.Handle(ctx, queries.ListPollsQuery{
		UserID: "reader-1", Status: queries.StatusFilterActive,
	})
	require.NoError(t, err)
	require.Equal(t, 1, active.Total)
	assert.Equal(t, openID.String(), active.Polls[0].ID)
	assert.Equal(t, "active", active.Polls[0].Status)

	expired, err := handler.Handle(ctx, queries.ListPollsQuery{
		UserID: "reader-1", Status: queries.StatusFilterExpired,
	})
	require.NoError(t, err)
	require.Equal(t, 1, expired.Total)
	assert.Equal(t, expiringID.String(), expired.Polls[0].ID)
	assert.Equal(t, "expired", expired.Polls[0].Status)

	all, err := handler.Handle(ctx, queries.ListPollsQuery{
		UserID: "reader-1", Status: queries.StatusFilterAll,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, all.Total)
}

func TestListPollsHandler_NewestFirst(t *testing.T) {
	ctx := context.Background()
	pollRepo := memory.NewPollRepository()
	bookmarkRepo := memory.NewBookmarkRepository()

	oldID := storePoll(t, pollRepo, listTestNow.Add(-48*time.Hour), nil)
	midID := storePoll(t, pollRepo, listTestNow.Add(-24*time.Hour), nil)
	newID := storePoll(t, pollRepo, listTestNow, nil)

	handler := newListHandler(pollRepo, bookmarkRepo, listTestNow)
	result, err := handler.Handle(ctx, queries.ListPollsQuery{UserID: "reader-1"})
	require.NoError(t, err)

	require.Equal(t, 3, result.Total)
	assert.Equal(t, newID.String(), result.Polls[0].ID)
	assert.Equal(t, midID.String(), result.Polls[1].ID)
	assert.Equal(t, oldID.String(), result.Polls[2].ID)
}

func TestListPollsHandler_PublicViewExcludesPrivatePolls(t *testing.T) {
	ctx := context.Background()
	pollRepo := memory.NewPollRepository()
	bookmarkRepo := memory.NewBookmarkRepository()

	privateID := storePoll(t, pollRepo, listTestNow, func(spec *aggregates.PollSpec) {
		spec.IsPublic = false
	})
	publicID := storePoll(t, pollRepo, listTestNow, nil)

	handler := newListHandler(pollRepo, bookmarkRepo, listTestNow)

	// A private poll is hidden from the public view even for its author.
	asAuthor, err := handler.Handle(ctx, queries.ListPollsQuery{UserID: "author-1"})
	require.NoError(t, err)
	require.Equal(t, 1, asAuthor.Total)
	assert.Equal(t, publicID.String(), asAuthor.Polls[0].ID)

	asStranger, err := handler.Handle(ctx, queries.ListPollsQuery{UserID: "someone-else"})
	require.NoError(t, err)
	require.Equal(t, 1, asStranger.Total)
	assert.Equal(t, publicID.String(), asStranger.Polls[0].ID)

	// The author still reaches the private poll through the mine view.
	mine, err := handler.Handle(ctx, queries.ListPollsQuery{UserID: "author-1", View: queries.ViewMine})
	require.NoError(t, err)
	require.Equal(t, 2, mine.Total)
	ids := []string{mine.Polls[0].ID, mine.Polls[1].ID}
	assert.Contains(t, ids, privateID.String())
}

func TestListPollsHandler_BookmarkOutage(t *testing.T) {
	ctx := context.Background()
	pollRepo := memory.NewPollRepository()
	storePoll(t, pollRepo, listTestNow, nil)

	handler := NewListPollsHandler(pollRepo, failingBookmarkRepo{}, zap.NewNop())

	// Listings still render; only the bookmark flags degrade.
	result, err := handler.Handle(ctx, queries.ListPollsQuery{UserID: "reader-1"})
	require.NoError(t, err)
	require.Equal(t, 1, result.Total)
	assert.False(t, result.Polls[0].IsBookmarked)

	// The bookmarked view depends on the store for its contents, so there
	// the failure surfaces.
	_, err = handler.Handle(ctx, queries.ListPollsQuery{
		UserID: "reader-1", View: queries.ViewBookmarked,
	})
	assert.Error(t, err)
}

func TestListPollsHandler_RejectsUnknownView(t *testing.T) {
	query := queries.ListPollsQuery{UserID: "reader-1", View: "trending"}
	assert.Error(t, query.Validate())
}
