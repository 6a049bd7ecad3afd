package service

import (
	"strings"
	"testing"

	"legalhelp-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const compliantAnswer = "Under the Employment Act, the notice period for termination in Singapore " +
	"depends on the length of service and the terms of the employment contract. " +
	"This is general information only and not legal advice; please consult a qualified lawyer " +
	"about your specific situation."

func TestCheckComplianceBlocksGuarantees(t *testing.T) {
	f := NewComplianceFilter()

	responses := []string{
		"I guarantee you will get your deposit back.",
		"As your lawyer, I suggest filing immediately.",
	}

	for _, response := range responses {
		verdict := f.CheckCompliance(response, "Can I get my deposit back?")

		assert.False(t, verdict.IsCompliant, "response %q should not be compliant", response)
		assert.Equal(t, models.RiskHigh, verdict.RiskLevel, "response %q", response)
	}
}

func TestCheckComplianceCleanAnswer(t *testing.T) {
	f := NewComplianceFilter()

	verdict := f.CheckCompliance(compliantAnswer,
		"What notice period is required for employment termination in Singapore?")

	assert.True(t, verdict.IsCompliant)
	assert.Equal(t, models.RiskLow, verdict.RiskLevel)
	assert.Empty(t, verdict.Issues)
	assert.Contains(t, verdict.Recommendations, "response meets compliance standards")
}

func TestCheckComplianceSensitiveTopic(t *testing.T) {
	f := NewComplianceFilter()

	verdict := f.CheckCompliance(compliantAnswer, "My brother was arrested last night, what happens now?")

	assert.False(t, verdict.IsCompliant)
	assert.Equal(t, models.RiskHigh, verdict.RiskLevel)

	var found bool
	for _, issue := range verdict.Issues {
		if issue.Type == models.IssuePrivacyConcern {
			found = true
			assert.Equal(t, models.SeverityError, issue.Severity)
		}
	}
	assert.True(t, found, "expected a privacy_concern issue")
	assert.Contains(t, verdict.Recommendations, "consider human review before publication")
}

func TestCheckComplianceMissingDisclaimerIsWarning(t *testing.T) {
	f := NewComplianceFilter()

	verdict := f.CheckCompliance(
		"The Employment Act sets out minimum notice periods based on length of service in Singapore.",
		"What notice period applies?")

	// Advisory only: the answer is still publishable once the disclaimer is appended.
	assert.True(t, verdict.IsCompliant)
	assert.Equal(t, models.RiskMedium, verdict.RiskLevel)
	require.Len(t, verdict.Issues, 1)
	assert.Equal(t, models.IssueMissingDisclaimer, verdict.Issues[0].Type)
	assert.Equal(t, models.SeverityWarning, verdict.Issues[0].Severity)
}

func TestEnhanceAppendsDisclaimer(t *testing.T) {
	f := NewComplianceFilter()

	bare := "The Employment Act sets out minimum notice periods based on length of service."
	verdict := f.CheckCompliance(bare, "What notice period applies in Singapore?")

	enhanced := f.EnhanceResponseWithCompliance(bare, verdict)

	// Append-only: the original text survives untouched.
	assert.True(t, strings.HasPrefix(enhanced, bare))

	lower := strings.ToLower(enhanced)
	assert.Contains(t, lower, "general information")
	assert.Contains(t, lower, "not legal advice")
	assert.Contains(t, lower, "consult")
	assert.Contains(t, lower, "lawyer")

	// The enhanced text passes validation's disclaimer check.
	validation := f.ValidateResponse(enhanced, "What notice period applies in Singapore?", 0.9)
	assert.True(t, validation.IsValid)
}

func TestEnhanceHighRiskAddsUrgentNotice(t *testing.T) {
	f := NewComplianceFilter()

	verdict := &models.ComplianceVerdict{RiskLevel: models.RiskHigh}
	enhanced := f.EnhanceResponseWithCompliance("Some answer text.", verdict)

	assert.Contains(t, enhanced, "urgent")
	assert.Contains(t, enhanced, "Source:")
}

func TestEnhanceDoesNotDuplicateDisclaimer(t *testing.T) {
	f := NewComplianceFilter()

	verdict := &models.ComplianceVerdict{RiskLevel: models.RiskLow}
	enhanced := f.EnhanceResponseWithCompliance(compliantAnswer, verdict)

	assert.Equal(t, 1, strings.Count(strings.ToLower(enhanced), "not legal advice"))
}

func TestValidateResponsePenalties(t *testing.T) {
	f := NewComplianceFilter()

	t.Run("prohibited phrase", func(t *testing.T) {
		v := f.ValidateResponse(compliantAnswer+" I guarantee it.", "question about employment in Singapore", 0.9)
		assert.False(t, v.IsValid)
		assert.Equal(t, 70, v.QualityScore)
	})

	t.Run("missing disclaimer", func(t *testing.T) {
		v := f.ValidateResponse(
			"The Employment Act in Singapore covers notice periods for most employees in detail.",
			"notice period question", 0.9)
		assert.False(t, v.IsValid)
		assert.Equal(t, 80, v.QualityScore)
	})

	t.Run("too short", func(t *testing.T) {
		v := f.ValidateResponse("This is general information, not legal advice.", "singapore question", 0.9)
		assert.False(t, v.IsValid)
		assert.Equal(t, 85, v.QualityScore)
	})

	t.Run("too long is only an enhancement", func(t *testing.T) {
		long := compliantAnswer + strings.Repeat(" More detail about Singapore employment law.", 50)
		v := f.ValidateResponse(long, "singapore question", 0.9)
		assert.True(t, v.IsValid)
		assert.Equal(t, 95, v.QualityScore)
		assert.NotEmpty(t, v.Enhancements)
	})

	t.Run("low confidence", func(t *testing.T) {
		v := f.ValidateResponse(compliantAnswer, "singapore question", 0.3)
		assert.False(t, v.IsValid)
		assert.Equal(t, 75, v.QualityScore)
	})

	t.Run("moderate confidence", func(t *testing.T) {
		v := f.ValidateResponse(compliantAnswer, "singapore question", 0.6)
		assert.True(t, v.IsValid)
		assert.Equal(t, 90, v.QualityScore)
	})

	t.Run("missing jurisdiction context", func(t *testing.T) {
		v := f.ValidateResponse(
			"Notice periods depend on the employment contract and the length of service. "+
				"This is general information, not legal advice; consult a qualified lawyer.",
			"what notice period applies to me", 0.9)
		assert.True(t, v.IsValid)
		assert.Equal(t, 90, v.QualityScore)
	})

	t.Run("clean answer keeps full score", func(t *testing.T) {
		v := f.ValidateResponse(compliantAnswer, "employment question for Singapore", 0.9)
		assert.True(t, v.IsValid)
		assert.Equal(t, 100, v.QualityScore)
	})

	t.Run("score never drops below zero", func(t *testing.T) {
		v := f.ValidateResponse("I guarantee a win.", "random question", 0.1)
		assert.False(t, v.IsValid)
		assert.Equal(t, 0, v.QualityScore)
	})
}

func TestGenerateStandardDisclaimerEscalates(t *testing.T) {
	f := NewComplianceFilter()

	low := f.GenerateStandardDisclaimer(models.RiskLow)
	medium := f.GenerateStandardDisclaimer(models.RiskMedium)
	high := f.GenerateStandardDisclaimer(models.RiskHigh)

	for _, d := range []string{low, medium, high} {
		lower := strings.ToLower(d)
		assert.Contains(t, lower, "general information")
		assert.Contains(t, lower, "not legal advice")
		assert.Contains(t, lower, "consult")
		assert.Contains(t, lower, "lawyer")
	}

	assert.Contains(t, strings.ToLower(high), "urgent")
	assert.NotEqual(t, low, medium)
	assert.NotEqual(t, medium, high)
}

func TestRequiresHumanEscalation(t *testing.T) {
	f := NewComplianceFilter()

	assert.True(t, f.RequiresHumanEscalation("I was arrested and have a court hearing tomorrow", 0.9))
	assert.True(t, f.RequiresHumanEscalation("I received a summons today", 0.9))
	assert.True(t, f.RequiresHumanEscalation("how do trademarks work", 0.2))
	assert.False(t, f.RequiresHumanEscalation("how do trademarks work", 0.9))
}
