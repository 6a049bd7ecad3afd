package models

// IntentType represents the classified purpose of a user question
type IntentType string

const (
	IntentQuestion    IntentType = "question"
	IntentProcedure   IntentType = "procedure"
	IntentDefinition  IntentType = "definition"
	IntentRequirement IntentType = "requirement"
	IntentCost        IntentType = "cost"
	IntentTimeline    IntentType = "timeline"
	IntentDocument    IntentType = "document"
)

// Urgency represents how urgent a question is
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// QueryIntent represents the classified intent of a query
type QueryIntent struct {
	Type       IntentType `json:"type"`
	Confidence float64    `json:"confidence"`
	Category   string     `json:"category"`
	Entities   []string   `json:"entities"`
	Urgency    Urgency    `json:"urgency"`
}

// ProcessedQuery is the full analysis result for a single user question.
// It is derived data: produced once per request and never mutated.
type ProcessedQuery struct {
	OriginalQuery       string      `json:"original_query"`
	CleanedQuery        string      `json:"cleaned_query"`
	Intent              QueryIntent `json:"intent"`
	Keywords            []string    `json:"keywords"`
	Synonyms            []string    `json:"synonyms"`
	Context             []string    `json:"context"`
	SuggestedCategories []string    `json:"suggested_categories"`
}
