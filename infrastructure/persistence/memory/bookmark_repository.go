package memory

import (
	"context"
	"sync"

	"pollboard/application/ports"
	"pollboard/domain/core/valueobjects"
)

// BookmarkRepository is an in-memory ports.BookmarkRepository
type BookmarkRepository struct {
	mu sync.RWMutex
	// userID -> set of poll IDs
	bookmarks map[string]map[string]struct{}
}

// NewBookmarkRepository creates a new in-memory bookmark repository
func NewBookmarkRepository() *BookmarkRepository {
	return &BookmarkRepository{
		bookmarks: make(map[string]map[string]struct{}),
	}
}

// ListForUser returns the IDs of every poll the user has bookmarked
func (r *BookmarkRepository) ListForUser(ctx context.Context, userID string) ([]valueobjects.PollID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]valueobjects.PollID, 0, len(r.bookmarks[userID]))
	for raw := range r.bookmarks[userID] {
		id, err := valueobjects.NewPollIDFromString(raw)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Exists reports whether the user has bookmarked the poll
func (r *BookmarkRepository) Exists(ctx context.Context, userID string, pollID valueobjects.PollID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.bookmarks[userID][pollID.String()]
	return ok, nil
}

// Add stores a bookmark, idempotently
func (r *BookmarkRepository) Add(ctx context.Context, userID string, pollID valueobjects.PollID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.bookmarks[userID] == nil {
		r.bookmarks[userID] = make(map[string]struct{})
	}
	r.bookmarks[userID][pollID.String()] = struct{}{}
	return nil
}

// Remove deletes a bookmark, idempotently
func (r *BookmarkRepository) Remove(ctx context.Context, userID string, pollID valueobjects.PollID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.bookmarks[userID], pollID.String())
	return nil
}

// RemoveAllForPoll deletes every user's bookmark of the poll
func (r *BookmarkRepository) RemoveAllForPoll(ctx context.Context, pollID valueobjects.PollID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := pollID.String()
	for _, set := range r.bookmarks {
		delete(set, key)
	}
	return nil
}

var _ ports.BookmarkRepository = (*BookmarkRepository)(nil)
