package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kotoba-labs/kotoba-api/internal/ai"
	"github.com/kotoba-labs/kotoba-api/internal/models"
	appErrors "github.com/kotoba-labs/kotoba-api/pkg/errors"
)

const chatPersona = "あなたは日本のコンビニの店員です。お客様に日本語で丁寧に応対してください。返答は20文字以内にしてください。"

// chatApology is returned whenever the AI call fails. The caller always gets
// a usable reply, never an error.
const chatApology = "すみません、エラーが発生しました。"

// ChatRequest carries the user's message and their prior turns.
type ChatRequest struct {
	Message string               `json:"message" validate:"required,max=500"`
	History []models.ChatMessage `json:"history"`
}

// ChatResponse is the persona's reply.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// ChatService proxies conversation turns to the AI persona.
type ChatService struct {
	completer     ai.Completer
	usage         aiUsageRecorder
	validator     *validator.Validate
	logger        *zap.Logger
	historyWindow int
}

// NewChatService constructs a ChatService. historyWindow bounds how many
// prior turns are forwarded with each message.
func NewChatService(completer ai.Completer, usage aiUsageRecorder, validate *validator.Validate, logger *zap.Logger, historyWindow int) *ChatService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if historyWindow <= 0 {
		historyWindow = 5
	}
	return &ChatService{completer: completer, usage: usage, validator: validate, logger: logger, historyWindow: historyWindow}
}

// Reply sends the message to the persona with a bounded slice of history.
// Failures degrade to a fixed apology so the conversation never breaks.
func (s *ChatService) Reply(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid chat request")
	}

	messages := make([]models.ChatMessage, 0, s.historyWindow+2)
	messages = append(messages, models.ChatMessage{Role: openai.ChatMessageRoleSystem, Content: chatPersona})

	history := req.History
	if len(history) > s.historyWindow {
		history = history[len(history)-s.historyWindow:]
	}
	for _, turn := range history {
		if turn.Role != openai.ChatMessageRoleUser && turn.Role != openai.ChatMessageRoleAssistant {
			continue
		}
		messages = append(messages, turn)
	}
	messages = append(messages, models.ChatMessage{Role: openai.ChatMessageRoleUser, Content: strings.TrimSpace(req.Message)})

	start := time.Now()
	raw, err := s.completer.Complete(ctx, ai.Request{Messages: messages, Temperature: 0.7})
	s.observeLatency("chat", time.Since(start))
	if err != nil {
		s.observe("chat", "error")
		s.logger.Warn("chat completion failed, returning apology", zap.Error(err))
		return &ChatResponse{Reply: chatApology}, nil
	}

	s.observe("chat", "ok")
	return &ChatResponse{Reply: strings.TrimSpace(raw)}, nil
}

func (s *ChatService) observe(operation, outcome string) {
	if s.usage != nil {
		s.usage.RecordAICall(operation, outcome)
	}
}

func (s *ChatService) observeLatency(operation string, d time.Duration) {
	if s.usage != nil {
		s.usage.ObserveAILatency(operation, d)
	}
}
