package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"pollboard/application/commands"
	"pollboard/application/commands/bus"
	"pollboard/application/queries"
	querybus "pollboard/application/queries/bus"
	"pollboard/domain/core/valueobjects"
	"pollboard/pkg/auth"
	"pollboard/pkg/common"
	pkgerrors "pollboard/pkg/errors"
	"pollboard/pkg/utils"
)

// maxBodyBytes caps request body sizes.
const maxBodyBytes = 1 << 20

// PollHandler handles poll HTTP endpoints
type PollHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	logger     *zap.Logger
}

// NewPollHandler creates a new poll handler
func NewPollHandler(commandBus *bus.CommandBus, queryBus *querybus.QueryBus, logger *zap.Logger) *PollHandler {
	return &PollHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		logger:     logger,
	}
}

type createPollRequest struct {
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Options            []string `json:"options"`
	ExpiresAt          string   `json:"expiresAt"`
	IsPublic           bool     `json:"isPublic"`
	AllowMultipleVotes bool     `json:"allowMultipleVotes"`
	AllowComments      bool     `json:"allowComments"`
}

type castVoteRequest struct {
	Selections []int `json:"selections"`
}

// CreatePoll handles POST /polls
func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	var req createPollRequest
	if err := common.ParseJSONBody(w, r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}

	expiresAt, err := utils.ParseOptionalTime(req.ExpiresAt)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	pollID := valueobjects.NewPollID()
	cmd := commands.CreatePollCommand{
		PollID:             pollID.String(),
		UserID:             user.UserID,
		UserName:           user.Name,
		Title:              req.Title,
		Description:        req.Description,
		Options:            req.Options,
		ExpiresAt:          expiresAt,
		IsPublic:           req.IsPublic,
		AllowMultipleVotes: req.AllowMultipleVotes,
		AllowComments:      req.AllowComments,
	}
	if err := utils.ValidateStruct(cmd); err != nil {
		common.RespondAppError(w, err)
		return
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		common.RespondAppError(w, err)
		return
	}

	view, err := h.fetchView(r, pollID.String(), user.UserID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, view)
}

// GetPoll handles GET /polls/{pollID}
func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	view, err := h.fetchView(r, chi.URLParam(r, "pollID"), user.UserID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, view)
}

// ListPolls handles GET /polls
func (h *PollHandler) ListPolls(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	// Listings are always newest first; "recent" is accepted for
	// compatibility with clients that pass it explicitly.
	if sort := r.URL.Query().Get("sort"); sort != "" && sort != "recent" {
		common.RespondAppError(w, pkgerrors.NewValidationError(fmt.Sprintf("unknown sort %q", sort)))
		return
	}

	query := queries.ListPollsQuery{
		UserID: user.UserID,
		View:   queries.ListView(r.URL.Query().Get("view")),
		Status: queries.StatusFilter(r.URL.Query().Get("status")),
	}

	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}

// DeletePoll handles DELETE /polls/{pollID}
func (h *PollHandler) DeletePoll(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	cmd := commands.DeletePollCommand{
		PollID: chi.URLParam(r, "pollID"),
		UserID: user.UserID,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		common.RespondAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CastVote handles POST /polls/{pollID}/votes
func (h *PollHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	var req castVoteRequest
	if err := common.ParseJSONBody(w, r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}

	pollID := chi.URLParam(r, "pollID")
	cmd := commands.CastVoteCommand{
		PollID:     pollID,
		UserID:     user.UserID,
		Selections: req.Selections,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		common.RespondAppError(w, err)
		return
	}

	view, err := h.fetchView(r, pollID, user.UserID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, view)
}

// RetractVote handles DELETE /polls/{pollID}/votes
func (h *PollHandler) RetractVote(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	pollID := chi.URLParam(r, "pollID")
	cmd := commands.RetractVoteCommand{
		PollID: pollID,
		UserID: user.UserID,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		common.RespondAppError(w, err)
		return
	}

	view, err := h.fetchView(r, pollID, user.UserID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, view)
}

func (h *PollHandler) fetchView(r *http.Request, pollID, userID string) (*queries.PollView, error) {
	result, err := h.queryBus.Ask(r.Context(), queries.GetPollQuery{
		PollID: pollID,
		UserID: userID,
	})
	if err != nil {
		return nil, err
	}
	view, ok := result.(*queries.PollView)
	if !ok {
		h.logger.Error("unexpected query result type", zap.String("pollID", pollID))
		return nil, pkgerrors.NewInternalError("unexpected query result")
	}
	return view, nil
}
