// Package ai wraps the third-party chat-completion API behind a small
// interface so services stay testable and no package holds a global client.
package ai

import (
	"context"
	"errors"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kotoba-labs/kotoba-api/internal/models"
	"github.com/kotoba-labs/kotoba-api/pkg/config"
)

// Completer issues one chat-completion round trip.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Request describes a single completion call.
type Request struct {
	Messages    []models.ChatMessage
	JSONObject  bool
	Temperature float32
}

// Client calls the OpenAI chat-completion endpoint.
type Client struct {
	api     *openai.Client
	model   string
	timeout time.Duration
}

// NewClient builds a client from injected configuration. Constructed once in
// main and passed to whichever service needs it.
func NewClient(cfg config.OpenAIConfig) *Client {
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	return &Client{api: openai.NewClientWithConfig(apiCfg), model: model, timeout: cfg.Timeout}
}

// Complete sends the messages and returns the first choice's content.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	apiReq := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: req.Temperature,
	}
	if req.JSONObject {
		apiReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}
	for _, m := range req.Messages {
		apiReq.Messages = append(apiReq.Messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	resp, err := c.api.CreateChatCompletion(ctx, apiReq)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
