package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"codemaster/internal/api/middleware"
	"codemaster/internal/app/service"
	"codemaster/internal/common"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type AssistantHandler struct {
	assistantService *service.AssistantService
	logger           *zap.Logger
}

func NewAssistantHandler(assistantService *service.AssistantService, logger *zap.Logger) *AssistantHandler {
	return &AssistantHandler{assistantService: assistantService, logger: logger}
}

// Chat serves POST /ai-assistant.
func (h *AssistantHandler) Chat(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Authorization required")
		return
	}

	var req service.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	if req.Message == "" {
		common.RespondWithError(w, http.StatusBadRequest, "Message is required")
		return
	}

	resp, err := h.assistantService.Chat(r.Context(), userID, req)
	if err != nil {
		if errors.Is(err, common.ErrValidation) {
			common.RespondWithError(w, http.StatusBadRequest, "Message is required")
			return
		}
		h.logger.Error("assistant chat failed", zap.String("user_id", userID), zap.Error(err))
		common.RespondWithJSON(w, http.StatusInternalServerError, map[string]string{
			"error":    "Failed to process AI request",
			"response": "I'm having trouble right now. Please try again later!",
		})
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *AssistantHandler) RegisterConversationRoutes(r chi.Router) {
	r.Get("/", h.listConversations)
	r.Get("/{conversationID}", h.getConversation)
}

func (h *AssistantHandler) listConversations(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Authorization required")
		return
	}

	limit, offset := pagination(r, 20)
	conversations, err := h.assistantService.Conversations(r.Context(), userID, limit, offset)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, conversations)
}

func (h *AssistantHandler) getConversation(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Authorization required")
		return
	}

	conversationID := chi.URLParam(r, "conversationID")
	conversation, err := h.assistantService.Conversation(r.Context(), userID, conversationID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, conversation)
}
