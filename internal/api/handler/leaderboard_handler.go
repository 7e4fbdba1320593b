package handler

import (
	"net/http"

	"codemaster/internal/app/service"
	"codemaster/internal/common"
)

type LeaderboardHandler struct {
	leaderboardService *service.LeaderboardService
}

func NewLeaderboardHandler(leaderboardService *service.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboardService: leaderboardService}
}

// Top serves GET /api/v1/leaderboard.
func (h *LeaderboardHandler) Top(w http.ResponseWriter, r *http.Request) {
	limit, _ := pagination(r, 0)
	entries, err := h.leaderboardService.Top(r.Context(), limit)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, entries)
}
