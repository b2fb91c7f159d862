package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kotoba-labs/kotoba-api/internal/ai"
	"github.com/kotoba-labs/kotoba-api/internal/models"
	appErrors "github.com/kotoba-labs/kotoba-api/pkg/errors"
)

const quizPromptTemplate = `You are a Japanese language quiz item writer. Create one JLPT %s multiple-choice question.
Return a JSON object with exactly these keys:
- "question": the question text in Japanese
- "options": an array of exactly four answer choices
- "answer": the full text of the correct choice, copied verbatim from "options" (never a letter or number)
- "explanation": a short explanation of the correct answer`

type learningLogWriter interface {
	Create(ctx context.Context, log *models.LearningLog) error
}

type cacheInvalidator interface {
	Delete(ctx context.Context, key string) error
}

type aiUsageRecorder interface {
	RecordAICall(operation, outcome string)
	ObserveAILatency(operation string, duration time.Duration)
}

// GenerateQuizRequest selects the proficiency level for a fresh question.
type GenerateQuizRequest struct {
	Level string `json:"level" validate:"required,oneof=N1 N2 N3 N4 N5"`
}

// SaveQuizResultRequest records a finished quiz attempt.
type SaveQuizResultRequest struct {
	Level string `json:"level" validate:"required,oneof=N1 N2 N3 N4 N5"`
	Score int    `json:"score"`
}

// QuizService generates AI quiz questions and records results.
type QuizService struct {
	completer ai.Completer
	logs      learningLogWriter
	cache     cacheInvalidator
	usage     aiUsageRecorder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewQuizService constructs a QuizService.
func NewQuizService(completer ai.Completer, logs learningLogWriter, cache cacheInvalidator, usage aiUsageRecorder, validate *validator.Validate, logger *zap.Logger) *QuizService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuizService{completer: completer, logs: logs, cache: cache, usage: usage, validator: validate, logger: logger}
}

// Generate asks the model for one multiple-choice question at the requested
// level. The model must return a JSON object whose answer field repeats one
// option verbatim; anything else is surfaced as an AI error.
func (s *QuizService) Generate(ctx context.Context, req GenerateQuizRequest) (*models.QuizItem, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid quiz request")
	}

	start := time.Now()
	raw, err := s.completer.Complete(ctx, ai.Request{
		Messages: []models.ChatMessage{
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(quizPromptTemplate, req.Level)},
		},
		JSONObject:  true,
		Temperature: 0.7,
	})
	s.observeLatency("quiz_generate", time.Since(start))
	if err != nil {
		s.observe("quiz_generate", "error")
		return nil, classifyAIError(err)
	}

	var item models.QuizItem
	if err := json.Unmarshal([]byte(raw), &item); err != nil {
		s.observe("quiz_generate", "malformed")
		s.logger.Warn("quiz response was not valid JSON", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrAI.Code, appErrors.ErrAI.Status, "AI returned a malformed quiz")
	}
	if item.Question == "" || len(item.Options) != 4 || !item.HasAnswer() {
		s.observe("quiz_generate", "malformed")
		s.logger.Warn("quiz response violated the item contract",
			zap.Int("options", len(item.Options)),
			zap.Bool("answer_in_options", item.HasAnswer()))
		return nil, appErrors.Clone(appErrors.ErrAI, "AI returned a malformed quiz")
	}

	s.observe("quiz_generate", "ok")
	return &item, nil
}

// SaveResult appends a learning log row for the attempt and drops the user's
// cached dashboard so the next load reflects it.
func (s *QuizService) SaveResult(ctx context.Context, userID string, req SaveQuizResultRequest) (*models.LearningLog, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid quiz result")
	}

	log := &models.LearningLog{
		UserID:       userID,
		ActivityType: fmt.Sprintf("%s Quiz", req.Level),
		Score:        req.Score,
		Details:      "AI Quiz",
	}
	if err := s.logs.Create(ctx, log); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save quiz result")
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, dashboardCacheKey(userID)); err != nil {
			s.logger.Warn("failed to invalidate dashboard cache", zap.String("user_id", userID), zap.Error(err))
		}
	}

	return log, nil
}

func (s *QuizService) observe(operation, outcome string) {
	if s.usage != nil {
		s.usage.RecordAICall(operation, outcome)
	}
}

func (s *QuizService) observeLatency(operation string, d time.Duration) {
	if s.usage != nil {
		s.usage.ObserveAILatency(operation, d)
	}
}

// classifyAIError maps provider failures onto the two user-facing AI error
// categories. Quota exhaustion is detected by substring because the provider
// reports it inside an opaque error body.
func classifyAIError(err error) error {
	if strings.Contains(strings.ToLower(err.Error()), "quota") {
		return appErrors.Wrap(err, appErrors.ErrQuotaExceeded.Code, appErrors.ErrQuotaExceeded.Status, appErrors.ErrQuotaExceeded.Message)
	}
	return appErrors.Wrap(err, appErrors.ErrAI.Code, appErrors.ErrAI.Status, "AI request failed")
}
