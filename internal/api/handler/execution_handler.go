package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"codemaster/internal/api/middleware"
	"codemaster/internal/app/service"
	"codemaster/internal/app/simulator"
	"codemaster/internal/common"

	"go.uber.org/zap"
)

type ExecutionHandler struct {
	executionService *service.ExecutionService
	logger           *zap.Logger
}

func NewExecutionHandler(executionService *service.ExecutionService, logger *zap.Logger) *ExecutionHandler {
	return &ExecutionHandler{executionService: executionService, logger: logger}
}

type executeCodeRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
	Input    string `json:"input,omitempty"`
}

type executeCodeResponse struct {
	Output        string           `json:"output"`
	Error         *string          `json:"error"`
	ExecutionTime int64            `json:"executionTime"`
	MemoryUsed    int              `json:"memoryUsed"`
	Status        simulator.Status `json:"status"`
}

// Execute serves POST /execute-code. Simulated execution failures come back
// as 200 responses with status "error"; only an unexpected internal failure
// produces the 500 shape.
func (h *ExecutionHandler) Execute(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error("code execution panicked", zap.Any("panic", rec))
			common.RespondWithJSON(w, http.StatusInternalServerError, map[string]string{
				"error":  "Internal server error",
				"output": "",
				"status": "error",
			})
		}
	}()

	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Authorization required")
		return
	}

	var req executeCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	if req.Code == "" || req.Language == "" {
		common.RespondWithError(w, http.StatusBadRequest, "Code and language are required")
		return
	}

	result := h.executionService.Execute(r.Context(), userID, simulator.Request{
		Code:     req.Code,
		Language: req.Language,
		Input:    req.Input,
	})

	common.RespondWithJSON(w, http.StatusOK, executeCodeResponse{
		Output:        result.Output,
		Error:         result.Error,
		ExecutionTime: result.ExecutionTimeMs,
		MemoryUsed:    result.MemoryUsedKb,
		Status:        result.Status,
	})
}

// History serves GET /api/v1/executions for the signed-in user.
func (h *ExecutionHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Authorization required")
		return
	}

	limit, offset := pagination(r, 20)
	executions, err := h.executionService.History(r.Context(), userID, limit, offset)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, executions)
}

func pagination(r *http.Request, defaultLimit int) (limit, offset int) {
	limit = defaultLimit
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 100 {
		limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v >= 0 {
		offset = v
	}
	return limit, offset
}
