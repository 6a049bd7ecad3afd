package service

import (
	"strings"

	"legalhelp-backend/models"
)

// ComplianceConfig holds the penalty magnitudes and length bounds used during
// response validation. The defaults are empirical and kept configurable so
// they can be recalibrated against real query logs.
type ComplianceConfig struct {
	ProhibitedPenalty         int
	MissingDisclaimerPenalty  int
	TooShortPenalty           int
	TooLongPenalty            int
	NoJurisdictionPenalty     int
	LowConfidencePenalty      int
	ModerateConfidencePenalty int

	MinResponseLength       int
	MaxResponseLength       int
	LowConfidenceThreshold  float64
	ModerateConfidenceLevel float64
	EscalationConfidence    float64
}

// DefaultComplianceConfig returns the standard penalty and threshold values
func DefaultComplianceConfig() ComplianceConfig {
	return ComplianceConfig{
		ProhibitedPenalty:         30,
		MissingDisclaimerPenalty:  20,
		TooShortPenalty:           15,
		TooLongPenalty:            5,
		NoJurisdictionPenalty:     10,
		LowConfidencePenalty:      25,
		ModerateConfidencePenalty: 10,
		MinResponseLength:         50,
		MaxResponseLength:         2000,
		LowConfidenceThreshold:    0.5,
		ModerateConfidenceLevel:   0.7,
		EscalationConfidence:      0.4,
	}
}

// ComplianceFilter scans generated answers for legal-advice risk,
// unauthorized-practice language and missing disclaimers. All checks are
// pure functions over fixed phrase tables; the filter never calls external
// services and never fails. Violations are data, not errors: only error and
// critical severities block publication.
type ComplianceFilter struct {
	cfg ComplianceConfig

	prohibitedPhrases     []string
	disclaimerMarkers     []string
	jurisdictionTerms     []string
	directAdvicePhrases   []string
	guaranteePhrases      []string
	sensitiveTopics       []string
	unauthorizedPhrases   []string
	urgentKeywords        []string
	sourceAttributionNote string
}

// NewComplianceFilter creates a compliance filter with default configuration
func NewComplianceFilter() *ComplianceFilter {
	return NewComplianceFilterWithConfig(DefaultComplianceConfig())
}

// NewComplianceFilterWithConfig creates a compliance filter with the given
// penalty configuration
func NewComplianceFilterWithConfig(cfg ComplianceConfig) *ComplianceFilter {
	return &ComplianceFilter{
		cfg: cfg,
		prohibitedPhrases: []string{
			"you should definitely", "i guarantee", "you will win",
			"you will lose", "this is legal advice", "as your lawyer",
			"i am your lawyer", "as your attorney", "i am your attorney",
			"you must sue", "definitely sue", "guaranteed outcome",
			"guaranteed to win", "100% certain", "cannot lose",
			"i can represent you", "we can represent you",
			"we will represent you", "you have no case", "trust me",
		},
		disclaimerMarkers: []string{
			"general information", "not legal advice",
			"informational purposes", "consult a lawyer",
			"consult a qualified lawyer", "seek professional legal advice",
		},
		jurisdictionTerms: []string{
			"singapore", "singaporean", "ministry of manpower", "mom",
			"cpf", "acra", "iras", "hdb", "ica", "state courts",
			"high court",
		},
		directAdvicePhrases: []string{
			"you should", "you must", "i recommend", "my advice",
			"i advise you", "do not sign", "refuse to pay",
		},
		guaranteePhrases: []string{
			"i guarantee", "guaranteed outcome", "guaranteed to win",
			"you will win", "you will lose", "100% certain", "cannot lose",
			"you have no case",
		},
		sensitiveTopics: []string{
			"criminal charge", "arrested", "arrest warrant", "deportation",
			"deported", "domestic violence", "abuse", "police investigation",
			"jail", "prison", "self-harm",
		},
		unauthorizedPhrases: []string{
			"as your lawyer", "i am your lawyer", "as your attorney",
			"i am your attorney", "i can represent you",
			"we can represent you", "we will represent you",
			"acting as your legal counsel",
		},
		urgentKeywords: []string{
			"court date", "court hearing", "arrest", "arrested",
			"deportation", "deported", "lawsuit", "being sued", "summons",
			"bail", "eviction notice", "police report", "urgent",
		},
		sourceAttributionNote: "\n\nSource: LegalHelp SG knowledge base and official Singapore government resources.",
	}
}

func riskRank(level models.RiskLevel) int {
	switch level {
	case models.RiskHigh:
		return 2
	case models.RiskMedium:
		return 1
	default:
		return 0
	}
}

// escalateRisk raises the verdict's risk level; it never lowers it
func escalateRisk(verdict *models.ComplianceVerdict, level models.RiskLevel) {
	if riskRank(level) > riskRank(verdict.RiskLevel) {
		verdict.RiskLevel = level
	}
}

func containsAny(text string, phrases []string) (string, bool) {
	lower := strings.ToLower(text)
	for _, phrase := range phrases {
		if strings.Contains(lower, phrase) {
			return phrase, true
		}
	}
	return "", false
}

// ValidateResponse checks a generated answer for quality defects, each check
// accumulating a fixed penalty against a starting quality score of 100.
func (f *ComplianceFilter) ValidateResponse(response, query string, confidence float64) *models.ResponseValidation {
	validation := &models.ResponseValidation{
		Confidence:   confidence,
		QualityScore: 100,
		Issues:       make([]string, 0),
		Enhancements: make([]string, 0),
	}

	if phrase, found := containsAny(response, f.prohibitedPhrases); found {
		validation.Issues = append(validation.Issues,
			"response contains prohibited phrase: "+phrase)
		validation.QualityScore -= f.cfg.ProhibitedPenalty
	}

	if _, found := containsAny(response, f.disclaimerMarkers); !found {
		validation.Issues = append(validation.Issues,
			"response is missing a legal disclaimer")
		validation.QualityScore -= f.cfg.MissingDisclaimerPenalty
	}

	if len(response) < f.cfg.MinResponseLength {
		validation.Issues = append(validation.Issues,
			"response is too short to be helpful")
		validation.QualityScore -= f.cfg.TooShortPenalty
	} else if len(response) > f.cfg.MaxResponseLength {
		validation.Enhancements = append(validation.Enhancements,
			"consider shortening the response for readability")
		validation.QualityScore -= f.cfg.TooLongPenalty
	}

	_, inResponse := containsAny(response, f.jurisdictionTerms)
	_, inQuery := containsAny(query, f.jurisdictionTerms)
	if !inResponse && !inQuery {
		validation.Enhancements = append(validation.Enhancements,
			"add Singapore jurisdiction context to the response")
		validation.QualityScore -= f.cfg.NoJurisdictionPenalty
	}

	if confidence < f.cfg.LowConfidenceThreshold {
		validation.Issues = append(validation.Issues,
			"low confidence in generated response")
		validation.QualityScore -= f.cfg.LowConfidencePenalty
	} else if confidence < f.cfg.ModerateConfidenceLevel {
		validation.Enhancements = append(validation.Enhancements,
			"moderate confidence, consider adding caveats")
		validation.QualityScore -= f.cfg.ModerateConfidencePenalty
	}

	if validation.QualityScore < 0 {
		validation.QualityScore = 0
	}
	validation.IsValid = len(validation.Issues) == 0

	return validation
}

// CheckCompliance scans a response and its originating query for
// legal-advice risk. The verdict's risk level is monotonically escalated by
// the worst issue found.
func (f *ComplianceFilter) CheckCompliance(response, query string) *models.ComplianceVerdict {
	verdict := &models.ComplianceVerdict{
		Issues:          make([]models.ComplianceIssue, 0),
		RiskLevel:       models.RiskLow,
		Recommendations: make([]string, 0),
	}

	if phrase, found := containsAny(response, f.directAdvicePhrases); found {
		verdict.Issues = append(verdict.Issues, models.ComplianceIssue{
			Type:       models.IssueLegalAdvice,
			Severity:   models.SeverityWarning,
			Message:    "response contains direct-advice language: " + phrase,
			Suggestion: "rephrase as general information about the law",
		})
		escalateRisk(verdict, models.RiskMedium)
	}

	if phrase, found := containsAny(response, f.guaranteePhrases); found {
		verdict.Issues = append(verdict.Issues, models.ComplianceIssue{
			Type:       models.IssueLegalAdvice,
			Severity:   models.SeverityError,
			Message:    "response guarantees a legal outcome: " + phrase,
			Suggestion: "remove outcome guarantees; outcomes depend on the facts of each case",
		})
		escalateRisk(verdict, models.RiskHigh)
	}

	_, sensitiveInQuery := containsAny(query, f.sensitiveTopics)
	_, sensitiveInResponse := containsAny(response, f.sensitiveTopics)
	if sensitiveInQuery || sensitiveInResponse {
		verdict.Issues = append(verdict.Issues, models.ComplianceIssue{
			Type:       models.IssuePrivacyConcern,
			Severity:   models.SeverityError,
			Message:    "query or response touches a sensitive legal topic",
			Suggestion: "advise the user to seek immediate professional consultation",
		})
		escalateRisk(verdict, models.RiskHigh)
		verdict.Recommendations = append(verdict.Recommendations,
			"recommend immediate consultation with a qualified lawyer")
	}

	if phrase, found := containsAny(response, f.unauthorizedPhrases); found {
		verdict.Issues = append(verdict.Issues, models.ComplianceIssue{
			Type:       models.IssueUnauthorizedPractice,
			Severity:   models.SeverityCritical,
			Message:    "response implies the system is acting as a lawyer: " + phrase,
			Suggestion: "remove any language implying legal representation",
		})
		escalateRisk(verdict, models.RiskHigh)
	}

	if !f.hasStrictDisclaimer(response) {
		verdict.Issues = append(verdict.Issues, models.ComplianceIssue{
			Type:       models.IssueMissingDisclaimer,
			Severity:   models.SeverityWarning,
			Message:    "response lacks the full three-part disclaimer",
			Suggestion: "append the standard disclaimer before publication",
		})
		escalateRisk(verdict, models.RiskMedium)
	}

	verdict.IsCompliant = true
	for _, issue := range verdict.Issues {
		if issue.Severity == models.SeverityError || issue.Severity == models.SeverityCritical {
			verdict.IsCompliant = false
			break
		}
	}

	if len(verdict.Issues) == 0 {
		verdict.Recommendations = append(verdict.Recommendations,
			"response meets compliance standards")
	} else {
		verdict.Recommendations = append(verdict.Recommendations,
			"review and address the identified compliance issues")
	}
	if verdict.RiskLevel == models.RiskHigh {
		verdict.Recommendations = append(verdict.Recommendations,
			"consider human review before publication")
	}

	return verdict
}

// hasStrictDisclaimer requires all three disclaimer parts: a general
// information marker, a not-legal-advice marker, and a consult-a-lawyer
// co-occurrence.
func (f *ComplianceFilter) hasStrictDisclaimer(response string) bool {
	lower := strings.ToLower(response)
	hasGeneral := strings.Contains(lower, "general information")
	hasNotAdvice := strings.Contains(lower, "not legal advice")
	hasConsult := strings.Contains(lower, "consult") &&
		(strings.Contains(lower, "lawyer") || strings.Contains(lower, "attorney"))
	return hasGeneral && hasNotAdvice && hasConsult
}

// GenerateStandardDisclaimer returns the disclaimer template for a risk level
func (f *ComplianceFilter) GenerateStandardDisclaimer(risk models.RiskLevel) string {
	switch risk {
	case models.RiskHigh:
		return "\n\n---\nImportant: This response provides general information about Singapore law only and is not legal advice. Your situation may require urgent attention. Please consult a qualified lawyer as soon as possible to protect your rights."
	case models.RiskMedium:
		return "\n\n---\nDisclaimer: This response provides general information about Singapore law and is not legal advice. Laws change and individual circumstances vary, so please consult a qualified lawyer about your specific situation."
	default:
		return "\n\n---\nDisclaimer: This response provides general information about Singapore law and is not legal advice. For advice on your specific situation, please consult a qualified lawyer."
	}
}

// EnhanceResponseWithCompliance appends the required disclaimers to a
// response. It is append-only: existing text is never altered or removed.
func (f *ComplianceFilter) EnhanceResponseWithCompliance(response string, verdict *models.ComplianceVerdict) string {
	enhanced := response

	if !f.hasStrictDisclaimer(enhanced) {
		enhanced += f.GenerateStandardDisclaimer(verdict.RiskLevel)
	}

	if verdict.RiskLevel == models.RiskHigh {
		enhanced += "\n\nGiven the urgency of your situation, we strongly recommend speaking with a lawyer directly. You can contact the Law Society of Singapore's Pro Bono Services for assistance."
	}

	enhanced += f.sourceAttributionNote

	return enhanced
}

// RequiresHumanEscalation reports whether a query should be routed to a human:
// either it mentions an urgent legal situation or the system's confidence is
// too low to answer safely.
func (f *ComplianceFilter) RequiresHumanEscalation(query string, confidence float64) bool {
	if _, found := containsAny(query, f.urgentKeywords); found {
		return true
	}
	return confidence < f.cfg.EscalationConfidence
}
