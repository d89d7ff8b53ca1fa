package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"pollboard/application/queries"
	querybus "pollboard/application/queries/bus"
	"pollboard/pkg/auth"
	"pollboard/pkg/common"
)

// DashboardHandler handles dashboard HTTP endpoints
type DashboardHandler struct {
	queryBus *querybus.QueryBus
	logger   *zap.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(queryBus *querybus.QueryBus, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		queryBus: queryBus,
		logger:   logger,
	}
}

// GetStats handles GET /dashboard/stats
func (h *DashboardHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	stats, err := h.queryBus.Ask(r.Context(), queries.DashboardStatsQuery{UserID: user.UserID})
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, stats)
}
