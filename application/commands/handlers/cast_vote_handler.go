package handlers

import (
	"context"
	"time"

	"go.uber.org/zap"

	"pollboard/application/commands"
	"pollboard/application/ports"
	"pollboard/domain/core/valueobjects"
	pkgerrors "pollboard/pkg/errors"
)

// maxVoteAttempts bounds the reload-and-retry loop on version conflicts.
const maxVoteAttempts = 3

// CastVoteHandler handles vote casting with optimistic concurrency. A save
// that loses the version race reloads the poll and reapplies the ballot, so
// concurrent voters never clobber each other's counts.
type CastVoteHandler struct {
	pollRepo ports.PollRepository
	cache    ports.Cache
	eventBus ports.EventPublisher
	logger   *zap.Logger
	now      func() time.Time
}

// NewCastVoteHandler creates a new cast vote handler
func NewCastVoteHandler(
	pollRepo ports.PollRepository,
	cache ports.Cache,
	eventBus ports.EventPublisher,
	logger *zap.Logger,
) *CastVoteHandler {
	return &CastVoteHandler{
		pollRepo: pollRepo,
		cache:    cache,
		eventBus: eventBus,
		logger:   logger,
		now:      time.Now,
	}
}

// Handle executes the cast vote command
func (h *CastVoteHandler) Handle(ctx context.Context, cmd commands.CastVoteCommand) error {
	pollID, err := valueobjects.NewPollIDFromString(cmd.PollID)
	if err != nil {
		return err
	}

	ballot, err := valueobjects.NewBallot(cmd.Selections)
	if err != nil {
		return err
	}

	var lastErr error
	for attempt := 1; attempt <= maxVoteAttempts; attempt++ {
		poll, err := h.pollRepo.GetByID(ctx, pollID)
		if err != nil {
			return err
		}

		if err := poll.ApplyVote(cmd.UserID, ballot, h.now()); err != nil {
			return err
		}

		err = h.pollRepo.Save(ctx, poll)
		if err == nil {
			h.cache.Delete(ctx, ports.PollCacheKey(pollID))

			if err := h.eventBus.PublishBatch(ctx, poll.GetUncommittedEvents()); err != nil {
				h.logger.Warn("failed to publish vote events",
					zap.String("pollID", cmd.PollID),
					zap.Error(err),
				)
			}
			poll.MarkEventsAsCommitted()

			h.logger.Info("vote cast",
				zap.String("pollID", cmd.PollID),
				zap.String("voterID", cmd.UserID),
				zap.Int("attempt", attempt),
			)
			return nil
		}

		if !pkgerrors.HasCode(err, pkgerrors.CodeVersionConflict) {
			return err
		}

		lastErr = err
		h.logger.Debug("vote save lost version race, retrying",
			zap.String("pollID", cmd.PollID),
			zap.Int("attempt", attempt),
		)
	}

	return lastErr
}

// RetractVoteHandler handles vote retraction with the same retry discipline
// as casting.
type RetractVoteHandler struct {
	pollRepo ports.PollRepository
	cache    ports.Cache
	eventBus ports.EventPublisher
	logger   *zap.Logger
	now      func() time.Time
}

// NewRetractVoteHandler creates a new retract vote handler
func NewRetractVoteHandler(
	pollRepo ports.PollRepository,
	cache ports.Cache,
	eventBus ports.EventPublisher,
	logger *zap.Logger,
) *RetractVoteHandler {
	return &RetractVoteHandler{
		pollRepo: pollRepo,
		cache:    cache,
		eventBus: eventBus,
		logger:   logger,
		now:      time.Now,
	}
}

// Handle executes the retract vote command
func (h *RetractVoteHandler) Handle(ctx context.Context, cmd commands.RetractVoteCommand) error {
	pollID, err := valueobjects.NewPollIDFromString(cmd.PollID)
	if err != nil {
		return err
	}

	var lastErr error
	for attempt := 1; attempt <= maxVoteAttempts; attempt++ {
		poll, err := h.pollRepo.GetByID(ctx, pollID)
		if err != nil {
			return err
		}

		if err := poll.RetractVote(cmd.UserID, h.now()); err != nil {
			return err
		}

		err = h.pollRepo.Save(ctx, poll)
		if err == nil {
			h.cache.Delete(ctx, ports.PollCacheKey(pollID))

			if err := h.eventBus.PublishBatch(ctx, poll.GetUncommittedEvents()); err != nil {
				h.logger.Warn("failed to publish retraction events",
					zap.String("pollID", cmd.PollID),
					zap.Error(err),
				)
			}
			poll.MarkEventsAsCommitted()

			h.logger.Info("vote retracted",
				zap.String("pollID", cmd.PollID),
				zap.String("voterID", cmd.UserID),
			)
			return nil
		}

		if !pkgerrors.HasCode(err, pkgerrors.CodeVersionConflict) {
			return err
		}
		lastErr = err
	}

	return lastErr
}
