package aggregates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pollboard/domain/core/valueobjects"
	pkgerrors "pollboard/pkg/errors"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestPoll(t *testing.T, mutate func(*PollSpec)) *Poll {
	t.Helper()
	spec := PollSpec{
		Title:       "Favorite language",
		Description: "Pick your favorite",
		Options:     []string{"Go", "Rust", "Python"},
		IsPublic:    true,
		Author:      "Alice",
		AuthorID:    "user-1",
	}
	if mutate != nil {
		mutate(&spec)
	}
	poll, err := NewPoll(valueobjects.NewPollID(), spec, testNow)
	require.NoError(t, err)
	poll.MarkEventsAsCommitted()
	return poll
}

func mustBallot(t *testing.T, indices ...int) valueobjects.Ballot {
	t.Helper()
	b, err := valueobjects.NewBallot(indices)
	require.NoError(t, err)
	return b
}

func TestNewPoll(t *testing.T) {
	t.Run("creates poll with zeroed counters", func(t *testing.T) {
		poll := newTestPoll(t, nil)

		assert.Equal(t, 0, poll.TotalVotes())
		assert.Equal(t, 0, poll.ParticipantCount())
		assert.Equal(t, 1, poll.Version())
		for _, opt := range poll.Options() {
			assert.Equal(t, 0, opt.Votes)
		}
	})

	t.Run("trims and drops blank options", func(t *testing.T) {
		spec := PollSpec{
			Title:       "Lunch",
			Description: "Where to eat",
			Options:     []string{" Tacos ", "", "  ", "Sushi"},
			AuthorID:    "user-1",
		}
		poll, err := NewPoll(valueobjects.NewPollID(), spec, testNow)
		require.NoError(t, err)

		options := poll.Options()
		require.Len(t, options, 2)
		assert.Equal(t, "Tacos", options[0].Text)
		assert.Equal(t, "Sushi", options[1].Text)
	})

	t.Run("rejects too few options after dropping blanks", func(t *testing.T) {
		spec := PollSpec{
			Title:       "Lunch",
			Description: "Where to eat",
			Options:     []string{"Tacos", "", "  "},
			AuthorID:    "user-1",
		}
		_, err := NewPoll(valueobjects.NewPollID(), spec, testNow)
		require.Error(t, err)
		assert.True(t, pkgerrors.IsValidation(err))
	})

	t.Run("rejects more than ten options", func(t *testing.T) {
		options := make([]string, 11)
		for i := range options {
			options[i] = "opt"
		}
		spec := PollSpec{
			Title:       "Big poll",
			Description: "Too many choices",
			Options:     options,
			AuthorID:    "user-1",
		}
		_, err := NewPoll(valueobjects.NewPollID(), spec, testNow)
		require.Error(t, err)
		assert.True(t, pkgerrors.IsValidation(err))
	})

	t.Run("rejects expiration in the past", func(t *testing.T) {
		past := testNow.Add(-time.Hour)
		spec := PollSpec{
			Title:       "Stale",
			Description: "Already over",
			Options:     []string{"a", "b"},
			ExpiresAt:   &past,
			AuthorID:    "user-1",
		}
		_, err := NewPoll(valueobjects.NewPollID(), spec, testNow)
		require.Error(t, err)
		assert.True(t, pkgerrors.IsValidation(err))
	})

	t.Run("emits created event", func(t *testing.T) {
		spec := PollSpec{
			Title:       "Eventful",
			Description: "With events",
			Options:     []string{"a", "b"},
			AuthorID:    "user-1",
		}
		poll, err := NewPoll(valueobjects.NewPollID(), spec, testNow)
		require.NoError(t, err)

		evts := poll.GetUncommittedEvents()
		require.Len(t, evts, 1)
		assert.Equal(t, "poll.created", evts[0].GetEventType())
	})
}

func TestResolveStatus(t *testing.T) {
	future := testNow.Add(time.Hour)
	past := testNow.Add(-time.Hour)

	tests := []struct {
		name      string
		expiresAt *time.Time
		want      Status
	}{
		{"no expiry is active", nil, StatusActive},
		{"future expiry is active", &future, StatusActive},
		{"past expiry is expired", &past, StatusExpired},
		{"expiry at now is expired", &testNow, StatusExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveStatus(tt.expiresAt, testNow))
		})
	}
}

func TestPollApplyVote(t *testing.T) {
	t.Run("single selection updates counts", func(t *testing.T) {
		poll := newTestPoll(t, nil)

		err := poll.ApplyVote("voter-1", mustBallot(t, 1), testNow)
		require.NoError(t, err)

		assert.Equal(t, 1, poll.TotalVotes())
		assert.Equal(t, 1, poll.Options()[1].Votes)
		assert.Equal(t, 0, poll.Options()[0].Votes)
		assert.True(t, poll.HasVoted("voter-1"))
		assert.Equal(t, 2, poll.Version())
	})

	t.Run("multi-select ballot counts each selection", func(t *testing.T) {
		poll := newTestPoll(t, func(s *PollSpec) { s.AllowMultipleVotes = true })

		err := poll.ApplyVote("voter-1", mustBallot(t, 0, 2), testNow)
		require.NoError(t, err)

		assert.Equal(t, 2, poll.TotalVotes())
		assert.Equal(t, 1, poll.Options()[0].Votes)
		assert.Equal(t, 1, poll.Options()[2].Votes)
		assert.Equal(t, 1, poll.ParticipantCount())
	})

	t.Run("rejects second vote from same user", func(t *testing.T) {
		poll := newTestPoll(t, nil)
		require.NoError(t, poll.ApplyVote("voter-1", mustBallot(t, 0), testNow))

		err := poll.ApplyVote("voter-1", mustBallot(t, 1), testNow)
		require.Error(t, err)
		assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeAlreadyVoted))

		// counts unchanged
		assert.Equal(t, 1, poll.TotalVotes())
		assert.Equal(t, 0, poll.Options()[1].Votes)
		assert.Equal(t, 2, poll.Version())
	})

	t.Run("rejects multiple selections on single-select poll", func(t *testing.T) {
		poll := newTestPoll(t, nil)

		err := poll.ApplyVote("voter-1", mustBallot(t, 0, 1), testNow)
		require.Error(t, err)
		assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInvalidSelection))
		assert.Equal(t, 0, poll.TotalVotes())
	})

	t.Run("rejects out-of-range index without partial mutation", func(t *testing.T) {
		poll := newTestPoll(t, func(s *PollSpec) { s.AllowMultipleVotes = true })

		err := poll.ApplyVote("voter-1", mustBallot(t, 0, 7), testNow)
		require.Error(t, err)
		assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeInvalidSelection))

		assert.Equal(t, 0, poll.TotalVotes())
		assert.Equal(t, 0, poll.Options()[0].Votes)
		assert.False(t, poll.HasVoted("voter-1"))
	})

	t.Run("rejects vote on expired poll", func(t *testing.T) {
		expiry := testNow.Add(time.Hour)
		poll := newTestPoll(t, func(s *PollSpec) { s.ExpiresAt = &expiry })

		err := poll.ApplyVote("voter-1", mustBallot(t, 0), testNow.Add(2*time.Hour))
		require.Error(t, err)
		assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodePollClosed))
	})

	t.Run("total equals sum of option votes across voters", func(t *testing.T) {
		poll := newTestPoll(t, func(s *PollSpec) { s.AllowMultipleVotes = true })

		require.NoError(t, poll.ApplyVote("voter-1", mustBallot(t, 0, 1), testNow))
		require.NoError(t, poll.ApplyVote("voter-2", mustBallot(t, 1), testNow))
		require.NoError(t, poll.ApplyVote("voter-3", mustBallot(t, 0, 1, 2), testNow))

		sum := 0
		for _, opt := range poll.Options() {
			sum += opt.Votes
		}
		assert.Equal(t, poll.TotalVotes(), sum)
		assert.Equal(t, 6, poll.TotalVotes())
		assert.Equal(t, 3, poll.ParticipantCount())
	})

	t.Run("emits vote cast event", func(t *testing.T) {
		poll := newTestPoll(t, nil)
		require.NoError(t, poll.ApplyVote("voter-1", mustBallot(t, 0), testNow))

		evts := poll.GetUncommittedEvents()
		require.Len(t, evts, 1)
		assert.Equal(t, "poll.vote_cast", evts[0].GetEventType())
	})
}

func TestPollRetractVote(t *testing.T) {
	t.Run("restores counts exactly", func(t *testing.T) {
		poll := newTestPoll(t, func(s *PollSpec) { s.AllowMultipleVotes = true })
		require.NoError(t, poll.ApplyVote("voter-1", mustBallot(t, 0, 2), testNow))
		require.NoError(t, poll.ApplyVote("voter-2", mustBallot(t, 0), testNow))

		err := poll.RetractVote("voter-1", testNow)
		require.NoError(t, err)

		assert.Equal(t, 1, poll.TotalVotes())
		assert.Equal(t, 1, poll.Options()[0].Votes)
		assert.Equal(t, 0, poll.Options()[2].Votes)
		assert.False(t, poll.HasVoted("voter-1"))
		assert.True(t, poll.HasVoted("voter-2"))
	})

	t.Run("retract then revote succeeds", func(t *testing.T) {
		poll := newTestPoll(t, nil)
		require.NoError(t, poll.ApplyVote("voter-1", mustBallot(t, 0), testNow))
		require.NoError(t, poll.RetractVote("voter-1", testNow))

		err := poll.ApplyVote("voter-1", mustBallot(t, 2), testNow)
		require.NoError(t, err)
		assert.Equal(t, 1, poll.TotalVotes())
		assert.Equal(t, 1, poll.Options()[2].Votes)
	})

	t.Run("not found when user has not voted", func(t *testing.T) {
		poll := newTestPoll(t, nil)

		err := poll.RetractVote("voter-1", testNow)
		require.Error(t, err)
		assert.True(t, pkgerrors.IsNotFound(err))
	})

	t.Run("bumps version", func(t *testing.T) {
		poll := newTestPoll(t, nil)
		require.NoError(t, poll.ApplyVote("voter-1", mustBallot(t, 0), testNow))
		require.NoError(t, poll.RetractVote("voter-1", testNow))

		assert.Equal(t, 3, poll.Version())
	})
}

func TestReconstructPoll(t *testing.T) {
	t.Run("rebuilds voter set from ballots", func(t *testing.T) {
		id := valueobjects.NewPollID()
		poll, err := ReconstructPoll(
			id,
			"Restored", "From storage",
			[]Option{{Text: "a", Votes: 2}, {Text: "b", Votes: 1}},
			testNow, nil,
			true, false, false,
			"Alice", "user-1",
			3,
			map[string][]int{"voter-1": {0}, "voter-2": {0}, "voter-3": {1}},
			5,
		)
		require.NoError(t, err)

		assert.Equal(t, 3, poll.ParticipantCount())
		assert.True(t, poll.HasVoted("voter-2"))
		assert.Equal(t, []int{1}, poll.BallotOf("voter-3"))
		assert.Equal(t, 5, poll.Version())
		assert.Empty(t, poll.GetUncommittedEvents())
	})

	t.Run("option slice is defensively copied", func(t *testing.T) {
		options := []Option{{Text: "a"}, {Text: "b"}}
		poll, err := ReconstructPoll(
			valueobjects.NewPollID(), "t", "d", options, testNow, nil,
			true, false, false, "Alice", "user-1", 0, nil, 1,
		)
		require.NoError(t, err)

		options[0].Votes = 99
		assert.Equal(t, 0, poll.Options()[0].Votes)
	})
}
