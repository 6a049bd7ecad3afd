package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"legalhelp-backend/models"

	"github.com/google/generative-ai-go/genai"
)

// Completion is an answer obtained from the completion provider
type Completion struct {
	Text       string
	Confidence float64
	Sources    models.Sources
}

// CompletionProvider produces an answer for a prompt. The production
// implementation calls Gemini; tests use a fake.
type CompletionProvider interface {
	Complete(ctx context.Context, prompt string) (*Completion, error)
}

// ErrEmptyCompletion is returned when the model produces no usable text
var ErrEmptyCompletion = errors.New("completion provider returned no content")

const defaultGeminiModel = "gemini-2.5-flash"

// Confidence heuristics: the Gemini API does not expose a calibrated answer
// confidence, so we derive one from how cleanly the generation finished.
const (
	completionConfidence = 0.8
	truncatedConfidence  = 0.5
)

// GeminiProvider generates answers using the Gemini API
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider creates a Gemini-backed completion provider
func NewGeminiProvider(client *genai.Client, model string) *GeminiProvider {
	if model == "" {
		model = defaultGeminiModel
	}
	return &GeminiProvider{client: client, model: model}
}

// Complete generates an answer for the given prompt
func (p *GeminiProvider) Complete(ctx context.Context, prompt string) (*Completion, error) {
	model := p.client.GenerativeModel(p.model)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, ErrEmptyCompletion
	}
	candidate := resp.Candidates[0]

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return nil, ErrEmptyCompletion
	}

	confidence := completionConfidence
	if candidate.FinishReason != genai.FinishReasonStop {
		confidence = truncatedConfidence
	}

	sources := make(models.Sources, 0)
	if candidate.CitationMetadata != nil {
		for _, cs := range candidate.CitationMetadata.CitationSources {
			if cs.URI != nil {
				sources = append(sources, models.Source{
					Title: *cs.URI,
					URL:   *cs.URI,
				})
			}
		}
	}

	return &Completion{
		Text:       text,
		Confidence: confidence,
		Sources:    sources,
	}, nil
}
