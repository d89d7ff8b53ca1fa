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

// DeletePollHandler handles poll deletion. Deleting a poll removes every
// bookmark pointing at it so listings never surface dangling references.
type DeletePollHandler struct {
	pollRepo     ports.PollRepository
	bookmarkRepo ports.BookmarkRepository
	cache        ports.Cache
	eventBus     ports.EventPublisher
	logger       *zap.Logger
	now          func() time.Time
}

// NewDeletePollHandler creates a new delete poll handler
func NewDeletePollHandler(
	pollRepo ports.PollRepository,
	bookmarkRepo ports.BookmarkRepository,
	cache ports.Cache,
	eventBus ports.EventPublisher,
	logger *zap.Logger,
) *DeletePollHandler {
	return &DeletePollHandler{
		pollRepo:     pollRepo,
		bookmarkRepo: bookmarkRepo,
		cache:        cache,
		eventBus:     eventBus,
		logger:       logger,
		now:          time.Now,
	}
}

// Handle executes the delete poll command
func (h *DeletePollHandler) Handle(ctx context.Context, cmd commands.DeletePollCommand) error {
	pollID, err := valueobjects.NewPollIDFromString(cmd.PollID)
	if err != nil {
		return err
	}

	poll, err := h.pollRepo.GetByID(ctx, pollID)
	if err != nil {
		return err
	}

	if poll.AuthorID() != cmd.UserID {
		return pkgerrors.NewNotOwnerError()
	}

	if err := h.pollRepo.Delete(ctx, pollID); err != nil {
		return err
	}

	// Cascade: drop every user's bookmark of this poll. A failure here
	// leaves orphaned bookmark rows; list queries tolerate them, so log
	// and continue rather than surfacing a half-deleted state.
	if err := h.bookmarkRepo.RemoveAllForPoll(ctx, pollID); err != nil {
		h.logger.Error("failed to cascade bookmark removal",
			zap.String("pollID", cmd.PollID),
			zap.Error(err),
		)
	}

	h.cache.Delete(ctx, ports.PollCacheKey(pollID))

	poll.MarkDeleted(h.now())
	if err := h.eventBus.PublishBatch(ctx, poll.GetUncommittedEvents()); err != nil {
		h.logger.Warn("failed to publish deletion events",
			zap.String("pollID", cmd.PollID),
			zap.Error(err),
		)
	}
	poll.MarkEventsAsCommitted()

	h.logger.Info("poll deleted",
		zap.String("pollID", cmd.PollID),
		zap.String("authorID", cmd.UserID),
	)

	return nil
}
