package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kotoba-labs/kotoba-api/internal/ai"
	"github.com/kotoba-labs/kotoba-api/internal/models"
	appErrors "github.com/kotoba-labs/kotoba-api/pkg/errors"
)

type fakeCompleter struct {
	response string
	err      error
	requests []ai.Request
}

func (f *fakeCompleter) Complete(ctx context.Context, req ai.Request) (string, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

type fakeLogWriter struct {
	logs []*models.LearningLog
	err  error
}

func (f *fakeLogWriter) Create(ctx context.Context, log *models.LearningLog) error {
	if f.err != nil {
		return f.err
	}
	f.logs = append(f.logs, log)
	return nil
}

type fakeInvalidator struct {
	deleted []string
}

func (f *fakeInvalidator) Delete(ctx context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

type fakeUsageRecorder struct {
	calls     []string
	durations map[string][]time.Duration
}

func (f *fakeUsageRecorder) RecordAICall(operation, outcome string) {
	f.calls = append(f.calls, operation+"/"+outcome)
}

func (f *fakeUsageRecorder) ObserveAILatency(operation string, d time.Duration) {
	if f.durations == nil {
		f.durations = make(map[string][]time.Duration)
	}
	f.durations[operation] = append(f.durations[operation], d)
}

const wellFormedQuiz = `{
	"question": "「ありがとう」の意味は？",
	"options": ["thank you", "good morning", "excuse me", "goodbye"],
	"answer": "thank you",
	"explanation": "「ありがとう」 means thank you."
}`

func TestGenerateQuiz(t *testing.T) {
	completer := &fakeCompleter{response: wellFormedQuiz}
	svc := NewQuizService(completer, &fakeLogWriter{}, nil, nil, nil, nil)

	item, err := svc.Generate(context.Background(), GenerateQuizRequest{Level: "N3"})
	require.NoError(t, err)
	assert.Len(t, item.Options, 4)
	assert.Contains(t, item.Options, item.Answer)
	assert.NotEmpty(t, item.Explanation)

	require.Len(t, completer.requests, 1)
	req := completer.requests[0]
	assert.True(t, req.JSONObject)
	assert.InDelta(t, 0.7, req.Temperature, 0.001)
	require.Len(t, req.Messages, 1)
	assert.Contains(t, req.Messages[0].Content, "N3")
}

func TestGenerateQuizMalformedResponses(t *testing.T) {
	cases := []struct {
		name     string
		response string
	}{
		{"not json", "here is your quiz!"},
		{"three options", `{"question":"q","options":["a","b","c"],"answer":"a","explanation":"e"}`},
		{"answer not in options", `{"question":"q","options":["a","b","c","d"],"answer":"e","explanation":"x"}`},
		{"letter answer", `{"question":"q","options":["tokyo","kyoto","osaka","nara"],"answer":"A","explanation":"x"}`},
		{"empty question", `{"question":"","options":["a","b","c","d"],"answer":"a","explanation":"x"}`},
	}
	for _, tc := range cases {
		svc := NewQuizService(&fakeCompleter{response: tc.response}, &fakeLogWriter{}, nil, nil, nil, nil)
		_, err := svc.Generate(context.Background(), GenerateQuizRequest{Level: "N5"})
		require.Error(t, err, tc.name)
		assert.Equal(t, appErrors.ErrAI.Code, appErrors.FromError(err).Code, tc.name)
	}
}

func TestGenerateQuizQuotaClassification(t *testing.T) {
	svc := NewQuizService(&fakeCompleter{err: errors.New("429: You exceeded your current QUOTA, please check billing")}, &fakeLogWriter{}, nil, nil, nil, nil)

	_, err := svc.Generate(context.Background(), GenerateQuizRequest{Level: "N2"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrQuotaExceeded.Code, appErrors.FromError(err).Code)

	svc = NewQuizService(&fakeCompleter{err: errors.New("connection reset by peer")}, &fakeLogWriter{}, nil, nil, nil, nil)
	_, err = svc.Generate(context.Background(), GenerateQuizRequest{Level: "N2"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrAI.Code, appErrors.FromError(err).Code)
}

func TestGenerateQuizRecordsUsage(t *testing.T) {
	usage := &fakeUsageRecorder{}
	svc := NewQuizService(&fakeCompleter{response: wellFormedQuiz}, &fakeLogWriter{}, nil, usage, nil, nil)

	_, err := svc.Generate(context.Background(), GenerateQuizRequest{Level: "N4"})
	require.NoError(t, err)
	assert.Equal(t, []string{"quiz_generate/ok"}, usage.calls)
	require.Len(t, usage.durations["quiz_generate"], 1)
	assert.GreaterOrEqual(t, usage.durations["quiz_generate"][0], time.Duration(0))

	usage = &fakeUsageRecorder{}
	svc = NewQuizService(&fakeCompleter{err: errors.New("connection reset by peer")}, &fakeLogWriter{}, nil, usage, nil, nil)
	_, err = svc.Generate(context.Background(), GenerateQuizRequest{Level: "N4"})
	require.Error(t, err)
	assert.Equal(t, []string{"quiz_generate/error"}, usage.calls)
	assert.Len(t, usage.durations["quiz_generate"], 1)
}

func TestGenerateQuizRejectsUnknownLevel(t *testing.T) {
	svc := NewQuizService(&fakeCompleter{response: wellFormedQuiz}, &fakeLogWriter{}, nil, nil, nil, nil)

	_, err := svc.Generate(context.Background(), GenerateQuizRequest{Level: "N9"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSaveResult(t *testing.T) {
	logs := &fakeLogWriter{}
	cache := &fakeInvalidator{}
	svc := NewQuizService(&fakeCompleter{}, logs, cache, nil, nil, nil)

	log, err := svc.SaveResult(context.Background(), "u2", SaveQuizResultRequest{Level: "N3", Score: 8})
	require.NoError(t, err)
	assert.Equal(t, "N3 Quiz", log.ActivityType)
	assert.Equal(t, 8, log.Score)
	assert.Equal(t, "AI Quiz", log.Details)
	assert.Equal(t, "u2", log.UserID)

	require.Len(t, logs.logs, 1)
	require.Len(t, cache.deleted, 1)
	assert.Equal(t, dashboardCacheKey("u2"), cache.deleted[0])
}
