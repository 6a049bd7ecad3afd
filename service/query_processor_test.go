package service

import (
	"strings"
	"testing"

	"legalhelp-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanIsIdempotent(t *testing.T) {
	p := NewQueryProcessor()

	inputs := []string{
		"What are my rights?",
		"  Hello,   WORLD!!  ",
		"can i sue my (ex) employer???",
		"",
		"already clean text",
	}

	for _, input := range inputs {
		once := p.Clean(input)
		twice := p.Clean(once)
		assert.Equal(t, once, twice, "cleaning %q twice changed the result", input)
	}
}

func TestCleanStripsPunctuationKeepsQuestionMarks(t *testing.T) {
	p := NewQueryProcessor()

	cleaned := p.Clean("Can I sue my employer, or not?!")
	assert.Equal(t, "can i sue my employer or not?", cleaned)
}

func TestProcessIsDeterministic(t *testing.T) {
	p := NewQueryProcessor()

	query := "How do I register a company with ACRA?"
	first := p.Process(query)
	second := p.Process(query)

	assert.Equal(t, first, second)
}

func TestConfidenceBounds(t *testing.T) {
	p := NewQueryProcessor()

	queries := []string{
		"",
		"x",
		"What is the process and procedure and steps to apply and file and submit everything, how do I do it?",
		"asdf qwerty zxcv",
		"What are employment rights in Singapore?",
	}

	for _, q := range queries {
		result := p.Process(q)
		assert.Greater(t, result.Intent.Confidence, 0.0, "query %q", q)
		assert.LessOrEqual(t, result.Intent.Confidence, 0.95, "query %q", q)
	}
}

func TestCategoryDefaultsToGeneral(t *testing.T) {
	p := NewQueryProcessor()

	result := p.Process("hello friend nice weather we having")
	assert.Equal(t, "general", result.Intent.Category)
}

func TestHappyPathEmploymentQuestion(t *testing.T) {
	p := NewQueryProcessor()

	result := p.Process("What notice period is required for employment termination in Singapore?")

	assert.Equal(t, "employment_law", result.Intent.Category)
	assert.Equal(t, models.IntentQuestion, result.Intent.Type)
	assert.Contains(t, result.Keywords, "notice")
	assert.Contains(t, result.Keywords, "termination")
	assert.Contains(t, result.SuggestedCategories, "employment_law")
}

func TestUrgencyDetection(t *testing.T) {
	p := NewQueryProcessor()

	tests := []struct {
		query string
		want  models.Urgency
	}{
		{"I was arrested and have a court hearing tomorrow", models.UrgencyHigh},
		{"My employer terminated me last week over a dispute", models.UrgencyMedium},
		{"I am wondering about leasehold titles", models.UrgencyLow},
		{"Tell me something", models.UrgencyLow},
	}

	for _, tc := range tests {
		result := p.Process(tc.query)
		assert.Equal(t, tc.want, result.Intent.Urgency, "query %q", tc.query)
	}
}

func TestEntityExtraction(t *testing.T) {
	p := NewQueryProcessor()

	result := p.Process("Do I report this to the Ministry of Manpower or the State Courts?")

	assert.Contains(t, result.Intent.Entities, "ministry of manpower")
	assert.Contains(t, result.Intent.Entities, "state courts")
}

func TestSynonymExpansion(t *testing.T) {
	p := NewQueryProcessor()

	result := p.Process("Do I need a lawyer to review this contract?")

	assert.Contains(t, result.Synonyms, "solicitor")
	assert.Contains(t, result.Synonyms, "agreement")
}

func TestContextTags(t *testing.T) {
	p := NewQueryProcessor()

	base := p.Process("What are my rights?")
	assert.Equal(t, []string{"singapore_law", "sg_jurisdiction"}, base.Context)

	court := p.Process("When is my court hearing?")
	assert.Contains(t, court.Context, "court_related")

	govt := p.Process("Which ministry handles work passes?")
	assert.Contains(t, govt.Context, "government_agency")
}

func TestIntentTypes(t *testing.T) {
	p := NewQueryProcessor()

	tests := []struct {
		query string
		want  models.IntentType
	}{
		{"How do I apply for probate", models.IntentProcedure},
		{"how much does incorporation cost", models.IntentCost},
		{"how long does a divorce take", models.IntentTimeline},
		{"What are employment rights in Singapore?", models.IntentQuestion},
	}

	for _, tc := range tests {
		result := p.Process(tc.query)
		assert.Equal(t, tc.want, result.Intent.Type, "query %q", tc.query)
	}
}

func TestEdgeInputs(t *testing.T) {
	p := NewQueryProcessor()

	inputs := []string{
		"",
		"a",
		strings.Repeat("z", 1000),
	}

	for _, input := range inputs {
		result := p.Process(input)
		require.NotNil(t, result)

		assert.Equal(t, input, result.OriginalQuery)
		assert.Greater(t, result.Intent.Confidence, 0.0)
		assert.LessOrEqual(t, result.Intent.Confidence, 0.95)
		assert.NotEmpty(t, result.Intent.Category)
		assert.NotEmpty(t, result.Intent.Urgency)
		assert.NotNil(t, result.Keywords)
		assert.NotNil(t, result.Synonyms)
		assert.NotEmpty(t, result.Context)
	}
}

func TestKeywordLimit(t *testing.T) {
	p := NewQueryProcessor()

	long := strings.Repeat("employment termination salary dispute contract tribunal appeal evidence witness hearing ", 5)
	result := p.Process(long)

	assert.LessOrEqual(t, len(result.Keywords), 15)
}
