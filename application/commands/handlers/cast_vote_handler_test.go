package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pollboard/application/commands"
	"pollboard/application/ports"
	"pollboard/domain/core/aggregates"
	"pollboard/domain/core/valueobjects"
	"pollboard/infrastructure/cache"
	"pollboard/infrastructure/messaging/eventbridge"
	"pollboard/infrastructure/persistence/memory"
	pkgerrors "pollboard/pkg/errors"
)

// conflictingPollRepo fails Save with a version conflict a fixed number of
// times before delegating, simulating concurrent writers losing the race.
type conflictingPollRepo struct {
	ports.PollRepository
	conflicts int
	saves     int
}

func (r *conflictingPollRepo) Save(ctx context.Context, poll *aggregates.Poll) error {
	r.saves++
	if r.conflicts > 0 {
		r.conflicts--
		return pkgerrors.NewVersionConflictError(poll.ID().String())
	}
	return r.PollRepository.Save(ctx, poll)
}

func seedPoll(t *testing.T, repo ports.PollRepository) valueobjects.PollID {
	t.Helper()

	id := valueobjects.NewPollID()
	poll, err := aggregates.NewPoll(id, aggregates.PollSpec{
		Title:       "Deploy day?",
		Description: "Pick the deploy day",
		Options:     []string{"Monday", "Thursday"},
		IsPublic:    true,
		Author:      "Test Author",
		AuthorID:    "author-1",
	}, time.Now())
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), poll))
	return id
}

func TestCastVoteHandler_RetriesOnVersionConflict(t *testing.T) {
	ctx := context.Background()
	inner := memory.NewPollRepository()
	repo := &conflictingPollRepo{PollRepository: inner, conflicts: 2}
	handler := NewCastVoteHandler(repo, cache.NewMemoryCache(), eventbridge.NewNoopPublisher(), zap.NewNop())

	pollID := seedPoll(t, inner)

	err := handler.Handle(ctx, commands.CastVoteCommand{
		PollID: pollID.String(), UserID: "voter-1", Selections: []int{1},
	})
	require.NoError(t, err)
	// Two conflicted attempts plus the successful third.
	assert.Equal(t, 3, repo.saves)

	poll, err := inner.GetByID(ctx, pollID)
	require.NoError(t, err)
	assert.Equal(t, 1, poll.TotalVotes())
	assert.True(t, poll.HasVoted("voter-1"))
}

func TestCastVoteHandler_GivesUpAfterMaxAttempts(t *testing.T) {
	ctx := context.Background()
	inner := memory.NewPollRepository()
	repo := &conflictingPollRepo{PollRepository: inner, conflicts: maxVoteAttempts}
	handler := NewCastVoteHandler(repo, cache.NewMemoryCache(), eventbridge.NewNoopPublisher(), zap.NewNop())

	pollID := seedPoll(t, inner)

	err := handler.Handle(ctx, commands.CastVoteCommand{
		PollID: pollID.String(), UserID: "voter-1", Selections: []int{0},
	})
	assert.True(t, pkgerrors.IsVersionConflict(err))

	poll, err := inner.GetByID(ctx, pollID)
	require.NoError(t, err)
	assert.Equal(t, 0, poll.TotalVotes())
}

func TestCastVoteHandler_InvalidatesCachedSnapshot(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewPollRepository()
	pollCache := cache.NewMemoryCache()
	handler := NewCastVoteHandler(repo, pollCache, eventbridge.NewNoopPublisher(), zap.NewNop())

	pollID := seedPoll(t, repo)
	key := ports.PollCacheKey(pollID)
	require.NoError(t, pollCache.Set(ctx, key, []byte(`{"stale":true}`), 300))

	require.NoError(t, handler.Handle(ctx, commands.CastVoteCommand{
		PollID: pollID.String(), UserID: "voter-1", Selections: []int{0},
	}))

	_, found := pollCache.Get(ctx, key)
	assert.False(t, found)
}

func TestCastVoteHandler_DomainErrorsDoNotRetry(t *testing.T) {
	ctx := context.Background()
	inner := memory.NewPollRepository()
	repo := &conflictingPollRepo{PollRepository: inner}
	handler := NewCastVoteHandler(repo, cache.NewMemoryCache(), eventbridge.NewNoopPublisher(), zap.NewNop())

	pollID := seedPoll(t, inner)

	err := handler.Handle(ctx, commands.CastVoteCommand{
		PollID: pollID.String(), UserID: "voter-1", Selections: []int{5},
	})
	assert.True(t, pkgerrors.IsInvalidSelection(err))
	assert.Equal(t, 0, repo.saves)
}

func TestRetractVoteHandler_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewPollRepository()
	pollCache := cache.NewMemoryCache()
	cast := NewCastVoteHandler(repo, pollCache, eventbridge.NewNoopPublisher(), zap.NewNop())
	retract := NewRetractVoteHandler(repo, pollCache, eventbridge.NewNoopPublisher(), zap.NewNop())

	pollID := seedPoll(t, repo)

	require.NoError(t, cast.Handle(ctx, commands.CastVoteCommand{
		PollID: pollID.String(), UserID: "voter-1", Selections: []int{0},
	}))
	require.NoError(t, retract.Handle(ctx, commands.RetractVoteCommand{
		PollID: pollID.String(), UserID: "voter-1",
	}))

	poll, err := repo.GetByID(ctx, pollID)
	require.NoError(t, err)
	assert.Equal(t, 0, poll.TotalVotes())
	assert.False(t, poll.HasVoted("voter-1"))

	// Retracting again reports the missing vote.
	err = retract.Handle(ctx, commands.RetractVoteCommand{
		PollID: pollID.String(), UserID: "voter-1",
	})
	assert.True(t, pkgerrors.IsNotFound(err))
}
