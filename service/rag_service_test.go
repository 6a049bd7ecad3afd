package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"legalhelp-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider is a scripted CompletionProvider
type fakeProvider struct {
	completion *Completion
	err        error
	calls      int
}

func (p *fakeProvider) Complete(ctx context.Context, prompt string) (*Completion, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.completion, nil
}

func newTestRAGService(store CacheStore, provider CompletionProvider) *RAGService {
	return NewRAGService(
		RAGWithQueryProcessor(NewQueryProcessor()),
		RAGWithComplianceFilter(NewComplianceFilter()),
		RAGWithResponseCache(newTestCache(store, DefaultCacheConfig())),
		RAGWithCompletionProvider(provider),
	)
}

func TestAnswerQuestionMissThenHit(t *testing.T) {
	store := newFakeStore()
	provider := &fakeProvider{completion: &Completion{
		Text:       compliantAnswer,
		Confidence: 0.85,
		Sources:    models.Sources{{Title: "Employment Act"}},
	}}
	s := newTestRAGService(store, provider)
	ctx := context.Background()

	req := AnswerRequest{Question: "What notice period is required for employment termination in Singapore?"}

	first, err := s.AnswerQuestion(ctx, req)
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, 1, provider.calls)
	assert.Equal(t, "employment_law", first.Query.Intent.Category)
	assert.Equal(t, models.RiskLow, first.RiskLevel)
	assert.False(t, first.Escalate)
	assert.True(t, strings.HasPrefix(first.Answer, compliantAnswer))

	second, err := s.AnswerQuestion(ctx, req)
	require.NoError(t, err)
	assert.True(t, second.Cached, "second ask should be served from the cache")
	assert.Equal(t, 1, provider.calls, "provider must not be called on a cache hit")
	assert.Equal(t, first.Answer, second.Answer)
}

func TestAnswerQuestionNonCompliantNotCached(t *testing.T) {
	store := newFakeStore()
	provider := &fakeProvider{completion: &Completion{
		Text:       "I guarantee you will win this case.",
		Confidence: 0.9,
	}}
	s := newTestRAGService(store, provider)
	ctx := context.Background()

	req := AnswerRequest{Question: "Will I win my tenancy dispute?"}

	result, err := s.AnswerQuestion(ctx, req)
	require.NoError(t, err)

	assert.NotContains(t, result.Answer, "I guarantee")
	assert.Equal(t, models.RiskHigh, result.RiskLevel)
	assert.True(t, result.Escalate)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count, "non-compliant answers must not be cached")

	// The fallback still satisfies the disclaimer requirements.
	lower := strings.ToLower(result.Answer)
	assert.Contains(t, lower, "general information")
	assert.Contains(t, lower, "not legal advice")
	assert.Contains(t, lower, "consult")
}

func TestAnswerQuestionProviderFailureFallsBack(t *testing.T) {
	store := newFakeStore()
	provider := &fakeProvider{err: errors.New("provider down")}
	s := newTestRAGService(store, provider)

	result, err := s.AnswerQuestion(context.Background(), AnswerRequest{
		Question: "What are tenant rights in Singapore?",
	})
	require.NoError(t, err, "a provider outage must not surface as an error")

	assert.False(t, result.Cached)
	assert.True(t, result.Escalate)

	lower := strings.ToLower(result.Answer)
	assert.Contains(t, lower, "unable to answer")
	assert.Contains(t, lower, "general information")
	assert.Contains(t, lower, "not legal advice")
	assert.Contains(t, lower, "consult a qualified lawyer")
}

func TestAnswerQuestionEmptyQuestion(t *testing.T) {
	s := newTestRAGService(newFakeStore(), &fakeProvider{})

	_, err := s.AnswerQuestion(context.Background(), AnswerRequest{Question: "   "})
	assert.ErrorIs(t, err, ErrEmptyQuestion)
}

func TestAnswerQuestionUrgentEscalation(t *testing.T) {
	store := newFakeStore()
	provider := &fakeProvider{completion: &Completion{
		Text:       compliantAnswer,
		Confidence: 0.9,
	}}
	s := newTestRAGService(store, provider)

	result, err := s.AnswerQuestion(context.Background(), AnswerRequest{
		Question: "I was arrested and have a court hearing tomorrow",
	})
	require.NoError(t, err)

	assert.True(t, result.Escalate)
	assert.Equal(t, models.UrgencyHigh, result.Query.Intent.Urgency)
}

func TestAnswerQuestionNearDuplicateServedFromCache(t *testing.T) {
	store := newFakeStore()
	provider := &fakeProvider{completion: &Completion{
		Text:       compliantAnswer,
		Confidence: 0.9,
	}}
	s := newTestRAGService(store, provider)
	ctx := context.Background()

	_, err := s.AnswerQuestion(ctx, AnswerRequest{
		Question: "How to register a company in Singapore?",
	})
	require.NoError(t, err)
	require.Equal(t, 1, provider.calls)

	// A rephrased question falls through exact lookup but matches by
	// token-set similarity, with its confidence discounted.
	result, err := s.AnswerQuestion(ctx, AnswerRequest{
		Question: "What is the process to register a business in Singapore?",
	})
	require.NoError(t, err)
	assert.True(t, result.Cached)
	assert.Equal(t, 1, provider.calls)
	assert.InDelta(t, 0.81, result.Confidence, 1e-9)
}
