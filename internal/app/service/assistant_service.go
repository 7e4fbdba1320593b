package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"codemaster/internal/common"
	"codemaster/internal/domain/model"
	"codemaster/internal/domain/repository"
	"codemaster/internal/platform/config"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const tutorSystemPrompt = `You are CodeMaster AI, an expert programming tutor and code reviewer. You help students learn programming by:

1. Explaining concepts clearly and simply
2. Reviewing code and providing constructive feedback
3. Helping debug issues and errors
4. Suggesting best practices and improvements
5. Providing step-by-step guidance for learning

Always be encouraging, patient, and educational in your responses. Focus on helping the user understand WHY something works or doesn't work, not just WHAT to do.`

const demoNote = "This is a demo response. Configure OpenAI API key for full AI capabilities."

// AssistantService proxies tutor chat to an OpenAI-style completion API and
// persists conversation history verbatim. Without an API key it serves a
// canned demo reply instead.
type AssistantService struct {
	convRepo repository.ConversationRepository
	client   *http.Client
	logger   *zap.Logger
}

func NewAssistantService(convRepo repository.ConversationRepository, logger *zap.Logger) *AssistantService {
	return &AssistantService{
		convRepo: convRepo,
		client:   &http.Client{Timeout: config.AppConfig.ChatTimeout},
		logger:   logger,
	}
}

type ChatRequest struct {
	Message        string  `json:"message"`
	ConversationID *string `json:"conversationId,omitempty"`
	Code           string  `json:"code,omitempty"`
	Language       string  `json:"language,omitempty"`
}

type ChatResponse struct {
	Response string `json:"response"`
	Note     string `json:"note,omitempty"`
}

func (s *AssistantService) Chat(ctx context.Context, userID string, req ChatRequest) (*ChatResponse, error) {
	if req.Message == "" {
		return nil, common.ErrValidation
	}

	systemPrompt := tutorSystemPrompt
	if req.Code != "" && req.Language != "" {
		systemPrompt += fmt.Sprintf(`

The user has provided %s code for review. Analyze it for:
- Syntax errors
- Logic issues
- Performance improvements
- Best practices
- Learning opportunities

Code to review:
`+"```%s\n%s\n```", req.Language, req.Language, req.Code)
	}

	if config.AppConfig.OpenAIAPIKey == "" {
		return &ChatResponse{Response: demoReply(req.Code, req.Language), Note: demoNote}, nil
	}

	aiResponse, err := s.complete(ctx, systemPrompt, req.Message)
	if err != nil {
		return nil, err
	}

	// History persistence is best effort; a write failure must not eat the
	// reply the user already paid an upstream call for.
	s.persist(ctx, userID, req.ConversationID, req.Message, aiResponse)

	return &ChatResponse{Response: aiResponse}, nil
}

func (s *AssistantService) Conversations(ctx context.Context, userID string, limit, offset int) ([]model.Conversation, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.convRepo.ListByUser(ctx, userID, limit, offset)
}

func (s *AssistantService) Conversation(ctx context.Context, userID, conversationID string) (*model.Conversation, error) {
	return s.convRepo.FindByIDAndUser(ctx, conversationID, userID)
}

type chatCompletionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string                  `json:"model"`
	Messages    []chatCompletionMessage `json:"messages"`
	MaxTokens   int                     `json:"max_tokens"`
	Temperature float64                 `json:"temperature"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatCompletionMessage `json:"message"`
	} `json:"choices"`
}

func (s *AssistantService) complete(ctx context.Context, systemPrompt, message string) (string, error) {
	payload := chatCompletionRequest{
		Model: config.AppConfig.ChatModel,
		Messages: []chatCompletionMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: message},
		},
		MaxTokens:   1000,
		Temperature: 0.7,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal completion request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, config.AppConfig.ChatCompletionsURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build completion request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+config.AppConfig.OpenAIAPIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("completion API request failed: %w", common.ErrServiceUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("completion API error: %s: %w", resp.Status, common.ErrServiceUnavailable)
	}

	var completion chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", fmt.Errorf("failed to decode completion response: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("completion response contained no choices")
	}
	return completion.Choices[0].Message.Content, nil
}

func (s *AssistantService) persist(ctx context.Context, userID string, conversationID *string, userMessage, aiResponse string) {
	now := time.Now().UTC()
	turn := []model.ChatMessage{
		{Role: model.ChatRoleUser, Content: userMessage, Timestamp: now},
		{Role: model.ChatRoleAssistant, Content: aiResponse, Timestamp: now},
	}

	if conversationID != nil && *conversationID != "" {
		conv, err := s.convRepo.FindByIDAndUser(ctx, *conversationID, userID)
		if err != nil {
			s.logger.Warn("conversation lookup failed", zap.String("conversation_id", *conversationID), zap.Error(err))
			return
		}
		if err := s.convRepo.UpdateMessages(ctx, conv.ID, append(conv.Messages, turn...)); err != nil {
			s.logger.Warn("failed to append conversation messages", zap.String("conversation_id", conv.ID), zap.Error(err))
		}
		return
	}

	title := userMessage
	// Truncate on runes so a multi-byte first message can't leave an
	// invalid-UTF-8 title.
	if runes := []rune(title); len(runes) > 50 {
		title = string(runes[:50]) + "..."
	}
	conv := &model.Conversation{
		ID:       uuid.NewString(),
		UserID:   userID,
		Title:    &title,
		Messages: turn,
	}
	if err := s.convRepo.Create(ctx, conv); err != nil {
		s.logger.Warn("failed to create conversation", zap.String("user_id", userID), zap.Error(err))
	}
}

func demoReply(code, language string) string {
	reply := "Hello! I'm CodeMaster AI. I'd love to help you with your programming questions! "
	if code != "" && language != "" {
		reply += fmt.Sprintf(`I can see you've shared some %s code. Here are some general tips for %s development:

1. **Code Structure**: Make sure your code is well-organized and readable
2. **Error Handling**: Always consider edge cases and potential errors
3. **Best Practices**: Follow %s conventions and style guidelines
4. **Testing**: Test your code with different inputs to ensure it works correctly

For specific code review, I would need the OpenAI API key to be configured to provide detailed analysis.`, language, language, language)
	} else {
		reply += `Here are some ways I can help you:

🔍 **Code Review**: Share your code and I'll help you improve it
🐛 **Debugging**: Having issues? Let's figure out what's wrong together
📚 **Learning**: Ask me about programming concepts, algorithms, or best practices
💡 **Problem Solving**: Stuck on a coding challenge? I can guide you through it

What would you like to work on today?`
	}
	return reply
}
