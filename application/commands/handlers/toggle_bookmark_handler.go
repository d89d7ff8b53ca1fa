package handlers

import (
	"context"
	"time"

	"go.uber.org/zap"

	"pollboard/application/commands"
	"pollboard/application/ports"
	"pollboard/domain/core/valueobjects"
	"pollboard/domain/events"
)

// ToggleBookmarkHandler flips a user's bookmark on a poll. The toggle is
// idempotent at the storage level: adding an existing bookmark or removing
// a missing one settles on the same state.
type ToggleBookmarkHandler struct {
	pollRepo     ports.PollRepository
	bookmarkRepo ports.BookmarkRepository
	eventBus     ports.EventPublisher
	logger       *zap.Logger
	now          func() time.Time
}

// NewToggleBookmarkHandler creates a new toggle bookmark handler
func NewToggleBookmarkHandler(
	pollRepo ports.PollRepository,
	bookmarkRepo ports.BookmarkRepository,
	eventBus ports.EventPublisher,
	logger *zap.Logger,
) *ToggleBookmarkHandler {
	return &ToggleBookmarkHandler{
		pollRepo:     pollRepo,
		bookmarkRepo: bookmarkRepo,
		eventBus:     eventBus,
		logger:       logger,
		now:          time.Now,
	}
}

// Handle executes the toggle bookmark command and records the resulting
// state in cmd.Bookmarked.
func (h *ToggleBookmarkHandler) Handle(ctx context.Context, cmd *commands.ToggleBookmarkCommand) error {
	pollID, err := valueobjects.NewPollIDFromString(cmd.PollID)
	if err != nil {
		return err
	}

	// Bookmarking a deleted poll must fail, not silently create a
	// dangling reference.
	if _, err := h.pollRepo.GetByID(ctx, pollID); err != nil {
		return err
	}

	exists, err := h.bookmarkRepo.Exists(ctx, cmd.UserID, pollID)
	if err != nil {
		return err
	}

	if exists {
		if err := h.bookmarkRepo.Remove(ctx, cmd.UserID, pollID); err != nil {
			return err
		}
		cmd.Bookmarked = false
	} else {
		if err := h.bookmarkRepo.Add(ctx, cmd.UserID, pollID); err != nil {
			return err
		}
		cmd.Bookmarked = true
	}

	event := events.NewBookmarkToggled(pollID, cmd.UserID, cmd.Bookmarked, h.now())
	if err := h.eventBus.Publish(ctx, event); err != nil {
		h.logger.Warn("failed to publish bookmark event",
			zap.String("pollID", cmd.PollID),
			zap.Error(err),
		)
	}

	h.logger.Info("bookmark toggled",
		zap.String("pollID", cmd.PollID),
		zap.String("userID", cmd.UserID),
		zap.Bool("bookmarked", cmd.Bookmarked),
	)

	return nil
}
