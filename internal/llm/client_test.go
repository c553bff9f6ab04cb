package llm

import (
	"context"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_RequiresKey(t *testing.T) {
	for _, key := range []string{"", "   "} {
		_, err := NewClient(context.Background(), nil, key)
		assert.ErrorIs(t, err, ErrNotConfigured)
	}
}

func candidate(reason genai.FinishReason, parts ...genai.Part) *genai.Candidate {
	return &genai.Candidate{Content: &genai.Content{Parts: parts}, FinishReason: reason}
}

func TestResponseText(t *testing.T) {
	t.Run("joins text parts", func(t *testing.T) {
		resp := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
			candidate(genai.FinishReasonStop, genai.Text("Analytical "), genai.Blob{MIMEType: "image/png"}, genai.Text("engine")),
		}}
		text, err := responseText(resp)
		require.NoError(t, err)
		assert.Equal(t, "Analytical engine", text)
	})

	t.Run("blocked prompt", func(t *testing.T) {
		resp := &genai.GenerateContentResponse{PromptFeedback: &genai.PromptFeedback{BlockReason: genai.BlockReasonSafety}}
		_, err := responseText(resp)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "blocked")
	})

	t.Run("empty", func(t *testing.T) {
		tests := []*genai.GenerateContentResponse{
			nil,
			{},
			{Candidates: []*genai.Candidate{{}}},
			{Candidates: []*genai.Candidate{candidate(genai.FinishReasonStop)}},
		}
		for _, resp := range tests {
			_, err := responseText(resp)
			assert.ErrorIs(t, err, ErrEmptyResponse)
		}
	})

	t.Run("truncated with no text", func(t *testing.T) {
		resp := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{candidate(genai.FinishReasonMaxTokens)}}
		_, err := responseText(resp)
		assert.ErrorIs(t, err, ErrEmptyResponse)
		assert.Contains(t, err.Error(), "finish reason")
	})
}
