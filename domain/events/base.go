package events

import (
	"time"

	"pollboard/domain/core/valueobjects"
)

// DomainEvent is the base interface for all domain events.
// Events represent something that has happened in the past.
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

// Poll events

// PollCreated is raised when a new poll is created
type PollCreated struct {
	BaseEvent
	PollID      valueobjects.PollID `json:"poll_id"`
	AuthorID    string              `json:"author_id"`
	Title       string              `json:"title"`
	OptionCount int                 `json:"option_count"`
	IsPublic    bool                `json:"is_public"`
	ExpiresAt   *time.Time          `json:"expires_at,omitempty"`
}

// NewPollCreated creates a PollCreated event
func NewPollCreated(pollID valueobjects.PollID, authorID, title string, optionCount int, isPublic bool, expiresAt *time.Time, timestamp time.Time) PollCreated {
	return PollCreated{
		BaseEvent: BaseEvent{
			AggregateID: pollID.String(),
			EventType:   "poll.created",
			Timestamp:   timestamp,
			Version:     1,
		},
		PollID:      pollID,
		AuthorID:    authorID,
		Title:       title,
		OptionCount: optionCount,
		IsPublic:    isPublic,
		ExpiresAt:   expiresAt,
	}
}

// VoteCast is raised when a ballot is applied to a poll
type VoteCast struct {
	BaseEvent
	PollID     valueobjects.PollID `json:"poll_id"`
	VoterID    string              `json:"voter_id"`
	Selections []int               `json:"selections"`
	TotalVotes int                 `json:"total_votes"`
}

// NewVoteCast creates a VoteCast event
func NewVoteCast(pollID valueobjects.PollID, voterID string, selections []int, totalVotes int, timestamp time.Time) VoteCast {
	return VoteCast{
		BaseEvent: BaseEvent{
			AggregateID: pollID.String(),
			EventType:   "poll.vote_cast",
			Timestamp:   timestamp,
			Version:     1,
		},
		PollID:     pollID,
		VoterID:    voterID,
		Selections: selections,
		TotalVotes: totalVotes,
	}
}

// VoteRetracted is raised when a voter withdraws their ballot
type VoteRetracted struct {
	BaseEvent
	PollID     valueobjects.PollID `json:"poll_id"`
	VoterID    string              `json:"voter_id"`
	TotalVotes int                 `json:"total_votes"`
}

// NewVoteRetracted creates a VoteRetracted event
func NewVoteRetracted(pollID valueobjects.PollID, voterID string, totalVotes int, timestamp time.Time) VoteRetracted {
	return VoteRetracted{
		BaseEvent: BaseEvent{
			AggregateID: pollID.String(),
			EventType:   "poll.vote_retracted",
			Timestamp:   timestamp,
			Version:     1,
		},
		PollID:     pollID,
		VoterID:    voterID,
		TotalVotes: totalVotes,
	}
}

// PollDeleted is raised when the owner removes a poll
type PollDeleted struct {
	BaseEvent
	PollID   valueobjects.PollID `json:"poll_id"`
	AuthorID string              `json:"author_id"`
}

// NewPollDeleted creates a PollDeleted event
func NewPollDeleted(pollID valueobjects.PollID, authorID string, timestamp time.Time) PollDeleted {
	return PollDeleted{
		BaseEvent: BaseEvent{
			AggregateID: pollID.String(),
			EventType:   "poll.deleted",
			Timestamp:   timestamp,
			Version:     1,
		},
		PollID:   pollID,
		AuthorID: authorID,
	}
}

// BookmarkToggled is raised when a user bookmarks or unbookmarks a poll
type BookmarkToggled struct {
	BaseEvent
	PollID     valueobjects.PollID `json:"poll_id"`
	UserID     string              `json:"user_id"`
	Bookmarked bool                `json:"bookmarked"`
}

// NewBookmarkToggled creates a BookmarkToggled event
func NewBookmarkToggled(pollID valueobjects.PollID, userID string, bookmarked bool, timestamp time.Time) BookmarkToggled {
	return BookmarkToggled{
		BaseEvent: BaseEvent{
			AggregateID: pollID.String(),
			EventType:   "poll.bookmark_toggled",
			Timestamp:   timestamp,
			Version:     1,
		},
		PollID:     pollID,
		UserID:     userID,
		Bookmarked: bookmarked,
	}
}
