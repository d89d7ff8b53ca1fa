package handlers

import (
	"context"
	"time"

	"go.uber.org/zap"

	"pollboard/application/commands"
	"pollboard/application/ports"
	"pollboard/domain/core/aggregates"
	"pollboard/domain/core/validators"
	"pollboard/domain/core/valueobjects"
)

// CreatePollHandler handles poll creation commands
type CreatePollHandler struct {
	pollRepo  ports.PollRepository
	eventBus  ports.EventPublisher
	validator *validators.PollValidator
	logger    *zap.Logger
	now       func() time.Time
}

// NewCreatePollHandler creates a new create poll handler
func NewCreatePollHandler(
	pollRepo ports.PollRepository,
	eventBus ports.EventPublisher,
	validator *validators.PollValidator,
	logger *zap.Logger,
) *CreatePollHandler {
	return &CreatePollHandler{
		pollRepo:  pollRepo,
		eventBus:  eventBus,
		validator: validator,
		logger:    logger,
		now:       time.Now,
	}
}

// Handle executes the create poll command
func (h *CreatePollHandler) Handle(ctx context.Context, cmd commands.CreatePollCommand) (*aggregates.Poll, error) {
	now := h.now()

	if err := h.validator.ValidateTitle(cmd.Title); err != nil {
		return nil, err
	}
	if err := h.validator.ValidateDescription(cmd.Description); err != nil {
		return nil, err
	}
	options := h.validator.NormalizeOptions(cmd.Options)
	if err := h.validator.ValidateOptions(options); err != nil {
		return nil, err
	}
	if err := h.validator.ValidateExpiration(cmd.ExpiresAt, now); err != nil {
		return nil, err
	}

	pollID, err := valueobjects.NewPollIDFromString(cmd.PollID)
	if err != nil {
		return nil, err
	}

	poll, err := aggregates.NewPoll(pollID, aggregates.PollSpec{
		Title:              cmd.Title,
		Description:        cmd.Description,
		Options:            options,
		ExpiresAt:          cmd.ExpiresAt,
		IsPublic:           cmd.IsPublic,
		AllowMultipleVotes: cmd.AllowMultipleVotes,
		AllowComments:      cmd.AllowComments,
		Author:             cmd.UserName,
		AuthorID:           cmd.UserID,
	}, now)
	if err != nil {
		return nil, err
	}

	if err := h.pollRepo.Save(ctx, poll); err != nil {
		return nil, err
	}

	// Events are best-effort: the poll is already durable.
	if err := h.eventBus.PublishBatch(ctx, poll.GetUncommittedEvents()); err != nil {
		h.logger.Warn("failed to publish poll created events",
			zap.String("pollID", cmd.PollID),
			zap.Error(err),
		)
	}
	poll.MarkEventsAsCommitted()

	h.logger.Info("poll created",
		zap.String("pollID", cmd.PollID),
		zap.String("authorID", cmd.UserID),
		zap.Int("options", len(options)),
	)

	return poll, nil
}
