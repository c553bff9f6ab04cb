package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// ErrNotConfigured is returned when an LLM feature is used without an API key.
var ErrNotConfigured = errors.New("llm: no API key configured")

// ErrEmptyResponse is returned when the model produced no usable text.
var ErrEmptyResponse = errors.New("llm: empty response")

// Client generates text for a prompt.
type Client interface {
	GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error)
	// GenerateJSON asks for an application/json response and strips any code fence.
	GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error)
	Close() error
}

// NewClient returns a Gemini client, or ErrNotConfigured when apiKey is empty.
func NewClient(ctx context.Context, cfg *Config, apiKey string) (Client, error) {
	return NewGemini(ctx, cfg, apiKey)
}

// Gemini is the Google Gemini implementation of Client.
type Gemini struct {
	genai *genai.Client
	cfg   *Config
}

// NewGemini connects to the Gemini API with apiKey.
func NewGemini(ctx context.Context, cfg *Config, apiKey string) (*Gemini, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrNotConfigured
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	gc, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Gemini{genai: gc, cfg: cfg}, nil
}

func (g *Gemini) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	return g.generate(ctx, prompt, tier, "")
}

func (g *Gemini) GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	text, err := g.generate(ctx, prompt, tier, "application/json")
	if err != nil {
		return "", err
	}
	return CleanJSONBlock(text), nil
}

func (g *Gemini) generate(ctx context.Context, prompt string, tier ModelTier, mime string) (string, error) {
	name := g.cfg.GetModel(tier)
	if name == "" {
		return "", fmt.Errorf("llm: no model for tier %q", tier)
	}
	model := g.genai.GenerativeModel(name)
	model.SetTemperature(g.cfg.Temperature)
	if mime != "" {
		model.ResponseMIMEType = mime
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return responseText(resp)
}

func (g *Gemini) Close() error {
	if g.genai == nil {
		return nil
	}
	return g.genai.Close()
}

// responseText joins the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", ErrEmptyResponse
	}
	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != genai.BlockReasonUnspecified {
		return "", fmt.Errorf("llm: prompt blocked (%s)", fb.BlockReason)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}

	cand := resp.Candidates[0]
	var b strings.Builder
	for _, part := range cand.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if b.Len() == 0 {
		if cand.FinishReason != genai.FinishReasonStop && cand.FinishReason != genai.FinishReasonUnspecified {
			return "", fmt.Errorf("%w: finish reason %s", ErrEmptyResponse, cand.FinishReason)
		}
		return "", ErrEmptyResponse
	}
	return b.String(), nil
}
