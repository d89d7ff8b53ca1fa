package aggregates

import (
	"fmt"
	"strings"
	"time"

	"pollboard/domain/core/valueobjects"
	"pollboard/domain/events"
	pkgerrors "pollboard/pkg/errors"
)

// Status is the derived lifecycle label of a poll. It is computed from the
// expiration timestamp and the current instant on every read, never stored.
type Status string

const (
	StatusActive  Status = "active"
	StatusExpired Status = "expired"
)

const (
	MinOptions = 2
	MaxOptions = 10
)

// ResolveStatus computes a poll's lifecycle status at the given instant.
// A nil expiry means the poll never expires.
func ResolveStatus(expiresAt *time.Time, now time.Time) Status {
	if expiresAt == nil || expiresAt.After(now) {
		return StatusActive
	}
	return StatusExpired
}

// Option is one answer a poll offers, together with its running vote count.
// Order is significant: ballots reference options by index.
type Option struct {
	Text  string `json:"text"`
	Votes int    `json:"votes"`
}

// Poll is the aggregate root of the voting domain. All vote mutations go
// through it so the counting invariants hold on every committed write:
// totalVotes equals the sum of option votes, and a voter appears at most
// once regardless of how many options they selected.
type Poll struct {
	id                 valueobjects.PollID
	title              string
	description        string
	options            []Option
	createdAt          time.Time
	expiresAt          *time.Time
	isPublic           bool
	allowMultipleVotes bool
	allowComments      bool
	author             string
	authorID           string
	totalVotes         int
	voters             map[string]struct{}
	ballots            map[string][]int
	version            int

	// Domain events that occurred during this aggregate's lifetime
	events []events.DomainEvent
}

// PollSpec carries the caller-supplied attributes for a new poll.
type PollSpec struct {
	Title              string
	Description        string
	Options            []string
	ExpiresAt          *time.Time
	IsPublic           bool
	AllowMultipleVotes bool
	AllowComments      bool
	Author             string
	AuthorID           string
}

// NewPoll creates a poll with all counters zero and an empty voter set.
func NewPoll(id valueobjects.PollID, spec PollSpec, now time.Time) (*Poll, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("poll ID cannot be empty")
	}
	if spec.AuthorID == "" {
		return nil, pkgerrors.NewValidationError("author ID cannot be empty")
	}
	if strings.TrimSpace(spec.Title) == "" {
		return nil, pkgerrors.NewValidationError("title cannot be empty")
	}
	if strings.TrimSpace(spec.Description) == "" {
		return nil, pkgerrors.NewValidationError("description cannot be empty")
	}

	options := make([]Option, 0, len(spec.Options))
	for _, text := range spec.Options {
		text = strings.TrimSpace(text)
		if text == "" {
			// Blank option rows from the creation form are dropped, not
			// rejected.
			continue
		}
		options = append(options, Option{Text: text})
	}
	if len(options) < MinOptions || len(options) > MaxOptions {
		return nil, pkgerrors.NewValidationError(
			fmt.Sprintf("polls require between %d and %d options", MinOptions, MaxOptions))
	}

	if spec.ExpiresAt != nil && !spec.ExpiresAt.After(now) {
		return nil, pkgerrors.NewValidationError("expiration must be in the future")
	}

	poll := &Poll{
		id:                 id,
		title:              strings.TrimSpace(spec.Title),
		description:        strings.TrimSpace(spec.Description),
		options:            options,
		createdAt:          now,
		expiresAt:          spec.ExpiresAt,
		isPublic:           spec.IsPublic,
		allowMultipleVotes: spec.AllowMultipleVotes,
		allowComments:      spec.AllowComments,
		author:             spec.Author,
		authorID:           spec.AuthorID,
		voters:             make(map[string]struct{}),
		ballots:            make(map[string][]int),
		version:            1,
		events:             []events.DomainEvent{},
	}

	poll.addEvent(events.NewPollCreated(
		id, spec.AuthorID, poll.title, len(options), spec.IsPublic, spec.ExpiresAt, now,
	))

	return poll, nil
}

// ReconstructPoll rebuilds a poll from repository data with preserved state.
// No validation beyond structural sanity: stored records are trusted.
func ReconstructPoll(
	id valueobjects.PollID,
	title, description string,
	options []Option,
	createdAt time.Time,
	expiresAt *time.Time,
	isPublic, allowMultipleVotes, allowComments bool,
	author, authorID string,
	totalVotes int,
	ballots map[string][]int,
	version int,
) (*Poll, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("poll ID cannot be empty")
	}
	if authorID == "" {
		return nil, pkgerrors.NewValidationError("author ID cannot be empty")
	}

	voters := make(map[string]struct{}, len(ballots))
	ownBallots := make(map[string][]int, len(ballots))
	for voter, indices := range ballots {
		voters[voter] = struct{}{}
		own := make([]int, len(indices))
		copy(own, indices)
		ownBallots[voter] = own
	}

	ownOptions := make([]Option, len(options))
	copy(ownOptions, options)

	return &Poll{
		id:                 id,
		title:              title,
		description:        description,
		options:            ownOptions,
		createdAt:          createdAt,
		expiresAt:          expiresAt,
		isPublic:           isPublic,
		allowMultipleVotes: allowMultipleVotes,
		allowComments:      allowComments,
		author:             author,
		authorID:           authorID,
		totalVotes:         totalVotes,
		voters:             voters,
		ballots:            ownBallots,
		version:            version,
		events:             []events.DomainEvent{},
	}, nil
}

// ID returns the poll's unique identifier
func (p *Poll) ID() valueobjects.PollID { return p.id }

// Title returns the poll's title
func (p *Poll) Title() string { return p.title }

// Description returns the poll's description
func (p *Poll) Description() string { return p.description }

// Options returns a copy of the poll's options in ballot order.
func (p *Poll) Options() []Option {
	options := make([]Option, len(p.options))
	copy(options, p.options)
	return options
}

// CreatedAt returns when the poll was created
func (p *Poll) CreatedAt() time.Time { return p.createdAt }

// ExpiresAt returns the poll's expiration instant, nil when it never expires.
func (p *Poll) ExpiresAt() *time.Time { return p.expiresAt }

// IsPublic reports whether the poll appears in the public listing
func (p *Poll) IsPublic() bool { return p.isPublic }

// AllowMultipleVotes reports whether a ballot may select several options
func (p *Poll) AllowMultipleVotes() bool { return p.allowMultipleVotes }

// AllowComments is a rendering-only flag carried through untouched.
func (p *Poll) AllowComments() bool { return p.allowComments }

// Author returns the creator's display name
func (p *Poll) Author() string { return p.author }

// AuthorID returns the creator's identifier
func (p *Poll) AuthorID() string { return p.authorID }

// TotalVotes returns the number of individual option selections recorded.
func (p *Poll) TotalVotes() int { return p.totalVotes }

// ParticipantCount returns how many distinct users have voted.
func (p *Poll) ParticipantCount() int { return len(p.voters) }

// Version returns the poll's version for optimistic locking
func (p *Poll) Version() int { return p.version }

// StatusAt resolves the poll's lifecycle status at the given instant.
func (p *Poll) StatusAt(now time.Time) Status {
	return ResolveStatus(p.expiresAt, now)
}

// HasVoted reports whether the user has a recorded ballot.
func (p *Poll) HasVoted(userID string) bool {
	_, ok := p.voters[userID]
	return ok
}

// BallotOf returns the option indices the user selected, nil if they have
// not voted.
func (p *Poll) BallotOf(userID string) []int {
	indices, ok := p.ballots[userID]
	if !ok {
		return nil
	}
	out := make([]int, len(indices))
	copy(out, indices)
	return out
}

// Voters returns the identifiers of everyone who has voted.
func (p *Poll) Voters() []string {
	out := make([]string, 0, len(p.voters))
	for voter := range p.voters {
		out = append(out, voter)
	}
	return out
}

// ApplyVote applies a ballot to the poll. The whole ballot is validated
// before any counter moves, so a rejected vote leaves the poll unchanged.
func (p *Poll) ApplyVote(userID string, ballot valueobjects.Ballot, now time.Time) error {
	if userID == "" {
		return pkgerrors.NewValidationError("voter ID cannot be empty")
	}
	if p.StatusAt(now) == StatusExpired {
		return pkgerrors.NewPollClosedError()
	}
	if p.HasVoted(userID) {
		return pkgerrors.NewAlreadyVotedError(userID)
	}

	indices := ballot.Indices()
	if len(indices) == 0 {
		return pkgerrors.NewInvalidSelectionError("at least one option must be selected")
	}
	if !p.allowMultipleVotes && len(indices) > 1 {
		return pkgerrors.NewInvalidSelectionError("this poll accepts a single selection")
	}
	for _, i := range indices {
		if i >= len(p.options) {
			return pkgerrors.NewInvalidSelectionError(
				fmt.Sprintf("option index %d is out of range", i))
		}
	}

	for _, i := range indices {
		p.options[i].Votes++
	}
	p.totalVotes += len(indices)
	p.voters[userID] = struct{}{}
	p.ballots[userID] = indices
	p.version++

	p.addEvent(events.NewVoteCast(p.id, userID, indices, p.totalVotes, now))

	return nil
}

// RetractVote withdraws a user's ballot. The stored ballot is replayed in
// reverse so the counts return exactly to their pre-vote values.
func (p *Poll) RetractVote(userID string, now time.Time) error {
	indices, ok := p.ballots[userID]
	if !ok {
		return pkgerrors.NewNotFoundError("vote")
	}

	for _, i := range indices {
		if i < len(p.options) && p.options[i].Votes > 0 {
			p.options[i].Votes--
		}
	}
	p.totalVotes -= len(indices)
	if p.totalVotes < 0 {
		p.totalVotes = 0
	}
	delete(p.voters, userID)
	delete(p.ballots, userID)
	p.version++

	p.addEvent(events.NewVoteRetracted(p.id, userID, p.totalVotes, now))

	return nil
}

// MarkDeleted records the deletion event; the repository performs the actual
// removal and the bookmark cascade follows in the command handler.
func (p *Poll) MarkDeleted(now time.Time) {
	p.addEvent(events.NewPollDeleted(p.id, p.authorID, now))
}

// GetUncommittedEvents returns all uncommitted domain events
func (p *Poll) GetUncommittedEvents() []events.DomainEvent {
	return p.events
}

// MarkEventsAsCommitted clears the uncommitted events
func (p *Poll) MarkEventsAsCommitted() {
	p.events = []events.DomainEvent{}
}

func (p *Poll) addEvent(event events.DomainEvent) {
	p.events = append(p.events, event)
}
