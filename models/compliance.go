package models

// IssueSeverity represents how serious a compliance issue is
type IssueSeverity string

const (
	SeverityWarning  IssueSeverity = "warning"
	SeverityError    IssueSeverity = "error"
	SeverityCritical IssueSeverity = "critical"
)

// IssueType classifies a compliance issue
type IssueType string

const (
	IssueLegalAdvice          IssueType = "legal_advice"
	IssuePrivacyConcern       IssueType = "privacy_concern"
	IssueUnauthorizedPractice IssueType = "unauthorized_practice"
	IssueMissingDisclaimer    IssueType = "missing_disclaimer"
)

// RiskLevel represents the overall legal-advice risk of a response
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// ComplianceIssue is a single problem found during a compliance check
type ComplianceIssue struct {
	Type       IssueType     `json:"type"`
	Severity   IssueSeverity `json:"severity"`
	Message    string        `json:"message"`
	Suggestion string        `json:"suggestion,omitempty"`
}

// ComplianceVerdict is the result of a full compliance check.
// A response is compliant only when no issue reaches error or critical severity.
type ComplianceVerdict struct {
	IsCompliant     bool              `json:"is_compliant"`
	Issues          []ComplianceIssue `json:"issues"`
	RiskLevel       RiskLevel         `json:"risk_level"`
	Recommendations []string          `json:"recommendations"`
}

// ResponseValidation is the result of quality validation of a generated response
type ResponseValidation struct {
	IsValid      bool     `json:"is_valid"`
	Confidence   float64  `json:"confidence"`
	QualityScore int      `json:"quality_score"`
	Issues       []string `json:"issues"`
	Enhancements []string `json:"enhancements"`
}
