package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"legalhelp-backend/models"
)

// RAGService orchestrates the query pipeline: classify the question, check
// the response cache, fall through to the completion provider on a miss, run
// the answer through compliance, and cache compliant answers for future
// callers.
type RAGService struct {
	processor  *QueryProcessor
	compliance *ComplianceFilter
	cache      *ResponseCache
	provider   CompletionProvider
}

// RAGServiceOption is a functional option for RAGService
type RAGServiceOption func(*RAGService)

// RAGWithQueryProcessor sets the query processor
func RAGWithQueryProcessor(processor *QueryProcessor) RAGServiceOption {
	return func(s *RAGService) {
		s.processor = processor
	}
}

// RAGWithComplianceFilter sets the compliance filter
func RAGWithComplianceFilter(filter *ComplianceFilter) RAGServiceOption {
	return func(s *RAGService) {
		s.compliance = filter
	}
}

// RAGWithResponseCache sets the response cache
func RAGWithResponseCache(cache *ResponseCache) RAGServiceOption {
	return func(s *RAGService) {
		s.cache = cache
	}
}

// RAGWithCompletionProvider sets the completion provider
func RAGWithCompletionProvider(provider CompletionProvider) RAGServiceOption {
	return func(s *RAGService) {
		s.provider = provider
	}
}

// NewRAGService creates a new RAG service
func NewRAGService(opts ...RAGServiceOption) *RAGService {
	s := &RAGService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var ErrEmptyQuestion = errors.New("question must not be empty")

// fallbackAnswer is returned when no answer can be produced. It must itself
// satisfy the disclaimer requirements applied to generated answers.
const fallbackAnswer = "We are unable to answer your question right now. " +
	"This service provides general information about Singapore law only and " +
	"its responses are not legal advice. For help with your situation, " +
	"please consult a qualified lawyer directly."

// AnswerRequest represents a request to answer a legal question
type AnswerRequest struct {
	Question string
	Category string // optional practice-area hint
}

// AnswerResult represents the outcome of answering a question
type AnswerResult struct {
	Answer       string                 `json:"answer"`
	Query        *models.ProcessedQuery `json:"query"`
	Confidence   float64                `json:"confidence"`
	Sources      models.Sources         `json:"sources"`
	Cached       bool                   `json:"cached"`
	QualityScore int                    `json:"quality_score"`
	RiskLevel    models.RiskLevel       `json:"risk_level"`
	Escalate     bool                   `json:"escalate"`
}

// AnswerQuestion runs the full pipeline for one question
func (s *RAGService) AnswerQuestion(ctx context.Context, req AnswerRequest) (*AnswerResult, error) {
	if s.processor == nil || s.compliance == nil || s.cache == nil {
		return nil, errors.New("rag service not fully configured")
	}
	if strings.TrimSpace(req.Question) == "" {
		return nil, ErrEmptyQuestion
	}

	processed := s.processor.Process(req.Question)

	category := req.Category
	if category == "" {
		category = processed.Intent.Category
	}

	// Compliance wrapping is re-applied on every read rather than baked into
	// the cached payload, so disclaimer policy can evolve without
	// invalidating the cache.
	if entry, ok := s.cache.Get(ctx, req.Question, category); ok {
		verdict := s.compliance.CheckCompliance(entry.Response, req.Question)
		validation := s.compliance.ValidateResponse(entry.Response, req.Question, entry.Confidence)

		return &AnswerResult{
			Answer:       s.compliance.EnhanceResponseWithCompliance(entry.Response, verdict),
			Query:        processed,
			Confidence:   entry.Confidence,
			Sources:      entry.Sources,
			Cached:       true,
			QualityScore: validation.QualityScore,
			RiskLevel:    verdict.RiskLevel,
			Escalate:     s.compliance.RequiresHumanEscalation(req.Question, entry.Confidence),
		}, nil
	}

	if s.provider == nil {
		return s.fallbackResult(req.Question, processed), nil
	}

	completion, err := s.provider.Complete(ctx, s.buildPrompt(processed))
	if err != nil {
		log.Printf("Warning: completion provider failed, returning fallback answer: %v", err)
		return s.fallbackResult(req.Question, processed), nil
	}

	validation := s.compliance.ValidateResponse(completion.Text, req.Question, completion.Confidence)
	verdict := s.compliance.CheckCompliance(completion.Text, req.Question)

	if !verdict.IsCompliant {
		log.Printf("Blocked non-compliant answer for category %s (risk %s)", category, verdict.RiskLevel)
		result := s.fallbackResult(req.Question, processed)
		result.RiskLevel = verdict.RiskLevel
		result.Escalate = true
		return result, nil
	}

	// The put must survive caller cancellation so the answer benefits
	// future callers.
	s.cache.Put(context.WithoutCancel(ctx), req.Question, completion.Text,
		completion.Confidence, completion.Sources, category, 0)

	return &AnswerResult{
		Answer:       s.compliance.EnhanceResponseWithCompliance(completion.Text, verdict),
		Query:        processed,
		Confidence:   completion.Confidence,
		Sources:      completion.Sources,
		Cached:       false,
		QualityScore: validation.QualityScore,
		RiskLevel:    verdict.RiskLevel,
		Escalate:     s.compliance.RequiresHumanEscalation(req.Question, completion.Confidence),
	}, nil
}

func (s *RAGService) fallbackResult(question string, processed *models.ProcessedQuery) *AnswerResult {
	verdict := s.compliance.CheckCompliance(fallbackAnswer, question)

	return &AnswerResult{
		Answer:       s.compliance.EnhanceResponseWithCompliance(fallbackAnswer, verdict),
		Query:        processed,
		Confidence:   0,
		Sources:      make(models.Sources, 0),
		Cached:       false,
		QualityScore: 0,
		RiskLevel:    verdict.RiskLevel,
		Escalate:     true,
	}
}

// buildPrompt assembles the generation prompt from the processed query
func (s *RAGService) buildPrompt(processed *models.ProcessedQuery) string {
	var sb strings.Builder

	sb.WriteString("You are a legal information assistant for Singapore. ")
	sb.WriteString("Provide general information about Singapore law only. ")
	sb.WriteString("Never give direct legal advice, never guarantee outcomes, ")
	sb.WriteString("and never imply that you are a lawyer or can represent the user.\n\n")

	fmt.Fprintf(&sb, "Practice area: %s\n", processed.Intent.Category)
	fmt.Fprintf(&sb, "Question type: %s\n", processed.Intent.Type)
	if len(processed.Intent.Entities) > 0 {
		fmt.Fprintf(&sb, "Relevant bodies: %s\n", strings.Join(processed.Intent.Entities, ", "))
	}
	fmt.Fprintf(&sb, "\nQuestion: %s\n", processed.OriginalQuery)

	sb.WriteString("\nAnswer with general information, cite the relevant Singapore statutes or government agencies where possible, and remind the user to consult a qualified lawyer for advice on their specific situation.")

	return sb.String()
}
