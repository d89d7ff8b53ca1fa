package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pollboard/application/commands"
	commandbus "pollboard/application/commands/bus"
	"pollboard/application/queries"
	querybus "pollboard/application/queries/bus"
	"pollboard/domain/core/valueobjects"
	"pollboard/infrastructure/cache"
	"pollboard/infrastructure/config"
	"pollboard/infrastructure/di"
	"pollboard/infrastructure/messaging/eventbridge"
	"pollboard/infrastructure/persistence/memory"
	"pollboard/pkg/errors"
	"pollboard/pkg/observability"
)

// testBuses wires the full command and query stack over in-memory
// infrastructure, using the same providers production uses.
func testBuses(t *testing.T) (*commandbus.CommandBus, *querybus.QueryBus) {
	t.Helper()

	pollRepo := memory.NewPollRepository()
	bookmarkRepo := memory.NewBookmarkRepository()
	pollCache := cache.NewMemoryCache()
	publisher := eventbridge.NewNoopPublisher()
	metrics := observability.NewMetrics("", nil)
	logger := zap.NewNop()
	cfg := &config.Config{PollCacheTTL: 60}

	cmdBus := di.ProvideCommandBus(pollRepo, bookmarkRepo, pollCache, publisher, metrics, logger)
	qryBus := di.ProvideQueryBus(pollRepo, bookmarkRepo, pollCache, cfg, logger)
	return cmdBus, qryBus
}

func createPoll(t *testing.T, cmdBus *commandbus.CommandBus, userID string, mutate func(*commands.CreatePollCommand)) string {
	t.Helper()

	cmd := commands.CreatePollCommand{
		PollID:      valueobjects.NewPollID().String(),
		UserID:      userID,
		UserName:    "Test Author",
		Title:       "Favorite language?",
		Description: "Pick your favorite language",
		Options:     []string{"Go", "Rust", "Zig"},
		IsPublic:    true,
	}
	if mutate != nil {
		mutate(&cmd)
	}
	require.NoError(t, cmdBus.Send(context.Background(), cmd))
	return cmd.PollID
}

func pollView(t *testing.T, qryBus *querybus.QueryBus, pollID, userID string) *queries.PollView {
	t.Helper()

	result, err := qryBus.Ask(context.Background(), queries.GetPollQuery{PollID: pollID, UserID: userID})
	require.NoError(t, err)
	view, ok := result.(*queries.PollView)
	require.True(t, ok)
	return view
}

func TestPollLifecycle(t *testing.T) {
	ctx := context.Background()
	cmdBus, qryBus := testBuses(t)

	pollID := createPoll(t, cmdBus, "author-1", nil)

	view := pollView(t, qryBus, pollID, "author-1")
	assert.Equal(t, "active", view.Status)
	assert.True(t, view.IsOwner)
	assert.Equal(t, 0, view.TotalVotes)
	require.Len(t, view.Options, 3)

	// Cast votes from two users.
	require.NoError(t, cmdBus.Send(ctx, commands.CastVoteCommand{
		PollID: pollID, UserID: "voter-1", Selections: []int{0},
	}))
	require.NoError(t, cmdBus.Send(ctx, commands.CastVoteCommand{
		PollID: pollID, UserID: "voter-2", Selections: []int{1},
	}))

	view = pollView(t, qryBus, pollID, "voter-1")
	assert.Equal(t, 2, view.TotalVotes)
	assert.Equal(t, 2, view.Participants)
	assert.True(t, view.HasVoted)
	assert.Equal(t, []int{0}, view.UserVote)
	assert.False(t, view.IsOwner)
	assert.Equal(t, 50, view.Options[0].Percentage)
	assert.Equal(t, 50, view.Options[1].Percentage)
	assert.Equal(t, 0, view.Options[2].Percentage)

	// A second ballot from the same voter is rejected without changing counts.
	err := cmdBus.Send(ctx, commands.CastVoteCommand{
		PollID: pollID, UserID: "voter-1", Selections: []int{2},
	})
	assert.True(t, errors.IsAlreadyVoted(err))
	view = pollView(t, qryBus, pollID, "voter-1")
	assert.Equal(t, 2, view.TotalVotes)

	// Retraction restores the pre-vote tallies and allows a fresh ballot.
	require.NoError(t, cmdBus.Send(ctx, commands.RetractVoteCommand{PollID: pollID, UserID: "voter-1"}))
	view = pollView(t, qryBus, pollID, "voter-1")
	assert.Equal(t, 1, view.TotalVotes)
	assert.False(t, view.HasVoted)
	assert.Equal(t, 0, view.Options[0].Votes)

	require.NoError(t, cmdBus.Send(ctx, commands.CastVoteCommand{
		PollID: pollID, UserID: "voter-1", Selections: []int{2},
	}))
	view = pollView(t, qryBus, pollID, "voter-1")
	assert.Equal(t, []int{2}, view.UserVote)
	assert.Equal(t, 2, view.TotalVotes)
}

func TestPollDeletionCascadesBookmarks(t *testing.T) {
	ctx := context.Background()
	cmdBus, qryBus := testBuses(t)

	pollID := createPoll(t, cmdBus, "author-1", nil)

	toggle := &commands.ToggleBookmarkCommand{PollID: pollID, UserID: "reader-1"}
	require.NoError(t, cmdBus.Send(ctx, toggle))
	assert.True(t, toggle.Bookmarked)

	// Only the owner may delete.
	err := cmdBus.Send(ctx, commands.DeletePollCommand{PollID: pollID, UserID: "reader-1"})
	assert.True(t, errors.IsNotOwner(err))

	require.NoError(t, cmdBus.Send(ctx, commands.DeletePollCommand{PollID: pollID, UserID: "author-1"}))

	_, err = qryBus.Ask(ctx, queries.GetPollQuery{PollID: pollID, UserID: "reader-1"})
	assert.True(t, errors.IsNotFound(err))

	// The bookmark listing no longer references the deleted poll.
	result, err := qryBus.Ask(ctx, queries.ListPollsQuery{
		UserID: "reader-1", View: queries.ViewBookmarked,
	})
	require.NoError(t, err)
	listing, ok := result.(*queries.ListPollsResult)
	require.True(t, ok)
	assert.Empty(t, listing.Polls)
}

func TestListViewsAndDashboard(t *testing.T) {
	ctx := context.Background()
	cmdBus, qryBus := testBuses(t)

	publicID := createPoll(t, cmdBus, "author-1", nil)
	privateID := createPoll(t, cmdBus, "author-1", func(cmd *commands.CreatePollCommand) {
		cmd.Title = "Team retro topics"
		cmd.IsPublic = false
	})
	otherID := createPoll(t, cmdBus, "author-2", func(cmd *commands.CreatePollCommand) {
		cmd.Title = "Lunch spot"
	})

	require.NoError(t, cmdBus.Send(ctx, commands.CastVoteCommand{
		PollID: otherID, UserID: "author-1", Selections: []int{0},
	}))
	require.NoError(t, cmdBus.Send(ctx, &commands.ToggleBookmarkCommand{PollID: publicID, UserID: "author-2"}))

	list := func(userID string, view queries.ListView) *queries.ListPollsResult {
		result, err := qryBus.Ask(ctx, queries.ListPollsQuery{UserID: userID, View: view})
		require.NoError(t, err)
		listing, ok := result.(*queries.ListPollsResult)
		require.True(t, ok)
		return listing
	}

	// Private polls stay out of the public view, the author's included.
	assert.Equal(t, 2, list("author-1", queries.ViewPublic).Total)
	assert.Equal(t, 2, list("author-2", queries.ViewPublic).Total)

	mine := list("author-1", queries.ViewMine)
	require.Equal(t, 2, mine.Total)
	ids := []string{mine.Polls[0].ID, mine.Polls[1].ID}
	assert.Contains(t, ids, publicID)
	assert.Contains(t, ids, privateID)

	voted := list("author-1", queries.ViewVoted)
	require.Equal(t, 1, voted.Total)
	assert.Equal(t, otherID, voted.Polls[0].ID)
	assert.True(t, voted.Polls[0].HasVoted)

	bookmarked := list("author-2", queries.ViewBookmarked)
	require.Equal(t, 1, bookmarked.Total)
	assert.True(t, bookmarked.Polls[0].IsBookmarked)

	result, err := qryBus.Ask(ctx, queries.DashboardStatsQuery{UserID: "author-1"})
	require.NoError(t, err)
	stats, ok := result.(*queries.DashboardStats)
	require.True(t, ok)
	assert.Equal(t, 2, stats.PollsCreated)
	assert.Equal(t, 2, stats.ActivePolls)
	assert.Equal(t, 0, stats.ExpiredPolls)
	assert.Equal(t, 1, stats.PollsVotedOn)
}
