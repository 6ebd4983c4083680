package client

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"github.com/Aashish23092/invoice-ocr-ar/logging"
)

// GroqClient talks to Groq's OpenAI-compatible chat completions API in
// JSON mode.
type GroqClient struct {
	api         *openai.Client
	model       string
	temperature float32
	log         zerolog.Logger
}

func NewGroqClient(apiKey, baseURL, model string) *GroqClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	return &GroqClient{
		api:         openai.NewClientWithConfig(cfg),
		model:       model,
		temperature: 0.1,
		log:         logging.Component("groq"),
	}
}

func (c *GroqClient) Name() string { return "groq" }

// Complete sends one system+user exchange and returns the raw JSON content
// of the first choice.
func (c *GroqClient) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", fmt.Errorf("groq chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("groq returned no choices")
	}

	c.log.Debug().
		Str("model", c.model).
		Int("prompt_tokens", resp.Usage.PromptTokens).
		Int("completion_tokens", resp.Usage.CompletionTokens).
		Msg("groq completion received")

	return resp.Choices[0].Message.Content, nil
}
