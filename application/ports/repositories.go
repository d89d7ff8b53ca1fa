// Package ports defines the interfaces the application layer depends on.
// Infrastructure supplies the implementations.
package ports

import (
	"context"

	"pollboard/domain/core/aggregates"
	"pollboard/domain/core/valueobjects"
	"pollboard/domain/events"
)

// PollRepository persists poll aggregates.
//
// Save enforces optimistic concurrency: the write succeeds only when the
// stored version is exactly one behind the aggregate's, or when the
// aggregate is at version 1 and no record exists yet. A lost race returns a
// VERSION_CONFLICT error so callers can reload and retry.
type PollRepository interface {
	Save(ctx context.Context, poll *aggregates.Poll) error
	GetByID(ctx context.Context, id valueobjects.PollID) (*aggregates.Poll, error)
	GetAll(ctx context.Context) ([]*aggregates.Poll, error)
	GetByAuthor(ctx context.Context, authorID string) ([]*aggregates.Poll, error)
	Delete(ctx context.Context, id valueobjects.PollID) error
}

// BookmarkRepository persists the user-to-poll bookmark relation.
// Add and Remove are idempotent.
type BookmarkRepository interface {
	ListForUser(ctx context.Context, userID string) ([]valueobjects.PollID, error)
	Exists(ctx context.Context, userID string, pollID valueobjects.PollID) (bool, error)
	Add(ctx context.Context, userID string, pollID valueobjects.PollID) error
	Remove(ctx context.Context, userID string, pollID valueobjects.PollID) error
	RemoveAllForPoll(ctx context.Context, pollID valueobjects.PollID) error
}

// EventPublisher delivers domain events to interested consumers.
// Publishing is best-effort: a failed publish must not fail the command.
type EventPublisher interface {
	Publish(ctx context.Context, event events.DomainEvent) error
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}

// Cache is a byte-oriented cache with per-key TTLs in seconds.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
