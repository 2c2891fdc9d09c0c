package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// DefaultModelName is the Gemini model used for all prompting unless
// overridden via configuration.
const DefaultModelName = "gemini-2.5-flash"

// Generator is the single-call text generation interface every prompting
// component consumes. Implementations must return the raw model text;
// callers own JSON cleanup and decoding.
type Generator interface {
	Generate(ctx context.Context, prompt string, temperature float32) (string, error)
}

// GeminiClient implements Generator on top of google.golang.org/genai.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a Gemini-backed generator. model may be empty, in
// which case DefaultModelName is used. Credentials come from the environment
// (GEMINI_API_KEY / GOOGLE_API_KEY), same as the rest of the genai tooling.
func NewGeminiClient(ctx context.Context, model string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("NewGeminiClient: create genai client: %w", err)
	}
	if model == "" {
		model = DefaultModelName
	}
	return &GeminiClient{client: client, model: model}, nil
}

// Generate sends one text prompt and returns the model's text response.
func (g *GeminiClient) Generate(ctx context.Context, prompt string, temperature float32) (string, error) {
	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: prompt},
			},
		},
	}

	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(temperature),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("Generate: generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("Generate: empty response from model")
	}
	return text, nil
}

var _ Generator = (*GeminiClient)(nil)
