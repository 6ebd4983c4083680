package client

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"github.com/Aashish23092/invoice-ocr-ar/logging"
)

// GeminiClient asks a Gemini model for a JSON answer. It opens a new API
// client per call.
type GeminiClient struct {
	apiKey string
	model  string
	log    zerolog.Logger
}

func NewGeminiClient(apiKey, model string) *GeminiClient {
	return &GeminiClient{
		apiKey: apiKey,
		model:  model,
		log:    logging.Component("gemini"),
	}
}

func (c *GeminiClient) Name() string { return "gemini" }

func (c *GeminiClient) Complete(ctx context.Context, system, user string) (string, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(c.apiKey))
	if err != nil {
		return "", fmt.Errorf("failed to create Gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(c.model)
	model.SetTemperature(0.1)
	model.ResponseMIMEType = "application/json"
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}

	resp, err := model.GenerateContent(ctx, genai.Text(user))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("no response from Gemini API")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", errors.New("empty response from Gemini API")
	}

	if resp.UsageMetadata != nil {
		c.log.Debug().
			Str("model", c.model).
			Int32("prompt_tokens", resp.UsageMetadata.PromptTokenCount).
			Int32("candidate_tokens", resp.UsageMetadata.CandidatesTokenCount).
			Msg("gemini completion received")
	}

	return sb.String(), nil
}
