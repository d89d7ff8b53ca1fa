// Package memory provides map-backed repository implementations for local
// development and tests. They enforce the same version discipline as the
// DynamoDB implementations so concurrency behavior matches production.
package memory

import (
	"context"
	"sync"

	"pollboard/application/ports"
	"pollboard/domain/core/aggregates"
	"pollboard/domain/core/valueobjects"
	pkgerrors "pollboard/pkg/errors"
)

// PollRepository is an in-memory ports.PollRepository
type PollRepository struct {
	mu    sync.RWMutex
	polls map[string]*aggregates.Poll
}

// NewPollRepository creates a new in-memory poll repository
func NewPollRepository() *PollRepository {
	return &PollRepository{
		polls: make(map[string]*aggregates.Poll),
	}
}

// clone rebuilds an independent copy so callers can't mutate stored state
// without going through Save.
func clone(poll *aggregates.Poll) (*aggregates.Poll, error) {
	ballots := make(map[string][]int)
	for _, voter := range poll.Voters() {
		ballots[voter] = poll.BallotOf(voter)
	}
	return aggregates.ReconstructPoll(
		poll.ID(),
		poll.Title(),
		poll.Description(),
		poll.Options(),
		poll.CreatedAt(),
		poll.ExpiresAt(),
		poll.IsPublic(),
		poll.AllowMultipleVotes(),
		poll.AllowComments(),
		poll.Author(),
		poll.AuthorID(),
		poll.TotalVotes(),
		ballots,
		poll.Version(),
	)
}

// Save persists a poll with an optimistic concurrency check
func (r *PollRepository) Save(ctx context.Context, poll *aggregates.Poll) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := poll.ID().String()
	stored, exists := r.polls[key]

	if poll.Version() == 1 {
		if exists {
			return pkgerrors.NewVersionConflictError(key)
		}
	} else {
		if !exists || stored.Version() != poll.Version()-1 {
			return pkgerrors.NewVersionConflictError(key)
		}
	}

	copied, err := clone(poll)
	if err != nil {
		return err
	}
	r.polls[key] = copied
	return nil
}

// GetByID loads a poll by its identifier
func (r *PollRepository) GetByID(ctx context.Context, id valueobjects.PollID) (*aggregates.Poll, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, exists := r.polls[id.String()]
	if !exists {
		return nil, pkgerrors.NewNotFoundError("poll")
	}
	return clone(stored)
}

// GetAll returns every stored poll
func (r *PollRepository) GetAll(ctx context.Context) ([]*aggregates.Poll, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	polls := make([]*aggregates.Poll, 0, len(r.polls))
	for _, stored := range r.polls {
		copied, err := clone(stored)
		if err != nil {
			return nil, err
		}
		polls = append(polls, copied)
	}
	return polls, nil
}

// GetByAuthor returns all polls created by the given author
func (r *PollRepository) GetByAuthor(ctx context.Context, authorID string) ([]*aggregates.Poll, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	polls := make([]*aggregates.Poll, 0)
	for _, stored := range r.polls {
		if stored.AuthorID() != authorID {
			continue
		}
		copied, err := clone(stored)
		if err != nil {
			return nil, err
		}
		polls = append(polls, copied)
	}
	return polls, nil
}

// Delete removes a poll
func (r *PollRepository) Delete(ctx context.Context, id valueobjects.PollID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.polls, id.String())
	return nil
}

var _ ports.PollRepository = (*PollRepository)(nil)
