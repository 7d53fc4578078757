package groq

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/softclay/ana-bridge/internal/biz/repo"
)

const (
	groqBaseURL = "https://api.groq.com/openai/v1"

	defaultModel = "openai/gpt-oss-120b"
)

// Client is the Groq API client using the OpenAI-compatible interface
type Client struct {
	client *openai.Client
	model  string
}

// NewClient creates a new Groq client
func NewClient(apiKey, model string) *Client {
	if model == "" {
		model = defaultModel
	}

	config := openai.DefaultConfig(apiKey)
	config.BaseURL = groqBaseURL

	return &Client{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

// Generate sends the system instruction and user message and returns
// the trimmed completion. Timeout is governed by the caller's context.
func (c *Client) Generate(ctx context.Context, req *repo.GenerateRequest) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.User},
		},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response choices")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
