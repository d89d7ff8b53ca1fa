package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"pollboard/application/commands"
	"pollboard/application/commands/bus"
	"pollboard/pkg/auth"
	"pollboard/pkg/common"
)

// BookmarkHandler handles bookmark HTTP endpoints
type BookmarkHandler struct {
	commandBus *bus.CommandBus
	logger     *zap.Logger
}

// NewBookmarkHandler creates a new bookmark handler
func NewBookmarkHandler(commandBus *bus.CommandBus, logger *zap.Logger) *BookmarkHandler {
	return &BookmarkHandler{
		commandBus: commandBus,
		logger:     logger,
	}
}

// ToggleBookmark handles POST /polls/{pollID}/bookmark
func (h *BookmarkHandler) ToggleBookmark(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	cmd := &commands.ToggleBookmarkCommand{
		PollID: chi.URLParam(r, "pollID"),
		UserID: user.UserID,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]bool{
		"bookmarked": cmd.Bookmarked,
	})
}
