package service

import (
	"regexp"
	"sort"
	"strings"

	"legalhelp-backend/models"
)

// QueryProcessor classifies free-text legal questions into intent, practice
// area, urgency and keyword sets. It is a pure function of its lookup tables:
// no I/O, no side effects, and every branch has a default, so Process never
// fails even on empty or garbage input.
type QueryProcessor struct {
	intentPatterns   []intentPattern
	stopWords        map[string]bool
	categoryKeywords []categoryEntry
	entities         []string
	urgencyBuckets   []urgencyBucket
	synonyms         map[string][]string

	cleanStrip    *regexp.Regexp
	cleanCollapse *regexp.Regexp
}

type intentPattern struct {
	intentType models.IntentType
	patterns   []*regexp.Regexp
}

type categoryEntry struct {
	name     string
	keywords []string
}

type urgencyBucket struct {
	level    models.Urgency
	keywords []string
}

const (
	intentMatchIncrement = 0.3
	intentConfidenceCap  = 0.95
	maxKeywords          = 15
	maxSuggestions       = 3
)

// NewQueryProcessor creates a query processor with its classification tables
// compiled. Tables are declarative data so they can be extended without
// touching the matching algorithm.
func NewQueryProcessor() *QueryProcessor {
	p := &QueryProcessor{
		cleanStrip:    regexp.MustCompile(`[^\w\s?]+`),
		cleanCollapse: regexp.MustCompile(`\s+`),
	}

	// Order matters: ties between intents are broken by first-declared-wins.
	p.intentPatterns = []intentPattern{
		{models.IntentQuestion, compileAll(
			`^(what|who|when|where|why|which)\b`,
			`\?`,
		)},
		{models.IntentProcedure, compileAll(
			`^how\s+(do|can|to|should)\b`,
			`\b(procedure|process|steps)\b`,
			`\b(apply|applying|file|filing|submit)\b`,
		)},
		{models.IntentDefinition, compileAll(
			`^what\s+(is|are|does)\b`,
			`\b(meaning|definition|define|explain)\b`,
		)},
		{models.IntentRequirement, compileAll(
			`\b(requirement|requirements|required|eligible|eligibility|qualify|criteria)\b`,
			`\b(must|need to|necessary)\b`,
		)},
		{models.IntentCost, compileAll(
			`\bhow much\b`,
			`\b(cost|costs|fee|fees|price|charges|expensive|afford)\b`,
		)},
		{models.IntentTimeline, compileAll(
			`\bhow long\b`,
			`\b(duration|deadline|timeline|when will|when can)\b`,
		)},
		{models.IntentDocument, compileAll(
			`\b(form|forms|document|documents|paperwork|certificate|contract|agreement)\b`,
			`\bwhich form\b`,
		)},
	}

	p.stopWords = toSet(
		"the", "and", "for", "are", "but", "not", "you", "all", "can", "her",
		"was", "one", "our", "out", "day", "get", "has", "him", "his", "how",
		"man", "new", "now", "old", "see", "two", "way", "who", "its", "did",
		"what", "when", "where", "why", "which", "does", "have", "this",
		"that", "with", "from", "they", "will", "would", "there", "their",
		"about", "should", "could", "them", "than", "then", "been", "were",
	)

	p.categoryKeywords = []categoryEntry{
		{"employment_law", []string{
			"employment", "employee", "employer", "salary", "cpf",
			"termination", "notice period", "retrenchment", "work pass",
			"workplace", "dismissal", "overtime",
		}},
		{"business_law", []string{
			"business", "company", "acra", "incorporation", "shareholder",
			"director", "startup", "partnership", "sole proprietor",
			"register a company", "annual return",
		}},
		{"property_law", []string{
			"property", "hdb", "tenant", "landlord", "lease", "rental",
			"condo", "conveyancing", "mortgage", "en bloc", "stamp duty",
		}},
		{"family_law", []string{
			"divorce", "custody", "marriage", "matrimonial", "adoption",
			"maintenance", "prenuptial", "separation", "guardianship",
		}},
		{"criminal_law", []string{
			"criminal", "arrest", "police", "offence", "charge", "bail",
			"prosecution", "sentence", "remand",
		}},
		{"intellectual_property", []string{
			"trademark", "patent", "copyright", "intellectual property",
			"infringement", "licensing", "trade secret",
		}},
		{"immigration_law", []string{
			"visa", "immigration", "work permit", "citizenship",
			"employment pass", "ica", "deportation", "permanent resident",
			"pr application",
		}},
		{"tax_law", []string{
			"tax", "iras", "gst", "income tax", "tax relief", "withholding",
		}},
	}

	p.entities = []string{
		"ministry of manpower", "mom", "cpf board", "acra", "iras", "hdb",
		"ica", "mas", "ipos", "state courts", "high court",
		"court of appeal", "family justice courts", "small claims tribunal",
		"employment claims tribunal", "syariah court",
	}

	// Checked in priority order; first bucket with a hit wins.
	p.urgencyBuckets = []urgencyBucket{
		{models.UrgencyHigh, []string{
			"urgent", "immediately", "emergency", "asap", "arrest",
			"detained", "deport", "eviction", "court hearing", "court date",
			"summons", "tomorrow", "today",
		}},
		{models.UrgencyMedium, []string{
			"soon", "this week", "deadline", "dispute", "terminated",
			"fired", "owed", "breach",
		}},
		{models.UrgencyLow, []string{
			"wondering", "curious", "general", "information", "someday",
		}},
	}

	p.synonyms = map[string][]string{
		"lawyer":      {"attorney", "solicitor", "advocate", "legal counsel"},
		"company":     {"business", "corporation", "firm", "enterprise"},
		"employee":    {"worker", "staff"},
		"terminate":   {"dismiss", "fire", "retrench"},
		"termination": {"dismissal", "retrenchment"},
		"salary":      {"wages", "pay", "remuneration"},
		"rent":        {"lease", "tenancy"},
		"divorce":     {"separation", "dissolution"},
		"visa":        {"pass", "permit"},
		"cost":        {"fee", "price", "charges"},
		"contract":    {"agreement"},
		"sue":         {"claim", "legal action"},
	}

	return p
}

func compileAll(patterns ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, pat := range patterns {
		compiled = append(compiled, regexp.MustCompile(pat))
	}
	return compiled
}

func toSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

// Process analyzes a question and returns its full classification.
// It always returns a well-formed result, even for empty input.
func (p *QueryProcessor) Process(query string) *models.ProcessedQuery {
	cleaned := p.Clean(query)
	keywords := p.extractKeywords(cleaned)

	intentType, confidence := p.detectIntent(cleaned)
	category := p.detectCategory(cleaned)
	entities := p.extractEntities(cleaned)
	urgency := p.detectUrgency(cleaned)

	return &models.ProcessedQuery{
		OriginalQuery: query,
		CleanedQuery:  cleaned,
		Intent: models.QueryIntent{
			Type:       intentType,
			Confidence: confidence,
			Category:   category,
			Entities:   entities,
			Urgency:    urgency,
		},
		Keywords:            keywords,
		Synonyms:            p.expandSynonyms(keywords),
		Context:             p.contextTags(cleaned),
		SuggestedCategories: p.suggestCategories(cleaned, keywords),
	}
}

// Clean normalizes a query: lowercase, punctuation stripped except question
// marks, whitespace collapsed. Cleaning is idempotent.
func (p *QueryProcessor) Clean(query string) string {
	cleaned := strings.ToLower(strings.TrimSpace(query))
	cleaned = p.cleanStrip.ReplaceAllString(cleaned, "")
	cleaned = p.cleanCollapse.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}

func (p *QueryProcessor) extractKeywords(cleaned string) []string {
	keywords := make([]string, 0, maxKeywords)
	for _, token := range strings.Fields(cleaned) {
		token = strings.Trim(token, "?")
		if len(token) <= 2 || p.stopWords[token] {
			continue
		}
		keywords = append(keywords, token)
		if len(keywords) == maxKeywords {
			break
		}
	}
	return keywords
}

func (p *QueryProcessor) detectIntent(cleaned string) (models.IntentType, float64) {
	bestType := models.IntentQuestion
	bestScore := 0.0

	for _, entry := range p.intentPatterns {
		score := 0.0
		for _, pattern := range entry.patterns {
			if pattern.MatchString(cleaned) {
				score += intentMatchIncrement
			}
		}
		if score > bestScore {
			bestType = entry.intentType
			bestScore = score
		}
	}

	if bestScore == 0 {
		return models.IntentQuestion, intentMatchIncrement
	}
	if bestScore > intentConfidenceCap {
		bestScore = intentConfidenceCap
	}
	return bestType, bestScore
}

func (p *QueryProcessor) detectCategory(cleaned string) string {
	best := "general"
	bestScore := 0.0

	for _, entry := range p.categoryKeywords {
		matches := 0
		for _, kw := range entry.keywords {
			if strings.Contains(cleaned, kw) {
				matches++
			}
		}
		score := float64(matches) / float64(len(entry.keywords))
		if score > bestScore {
			best = entry.name
			bestScore = score
		}
	}

	return best
}

func (p *QueryProcessor) extractEntities(cleaned string) []string {
	entities := make([]string, 0)
	seen := make(map[string]bool)
	for _, entity := range p.entities {
		if strings.Contains(cleaned, entity) && !seen[entity] {
			entities = append(entities, entity)
			seen[entity] = true
		}
	}
	return entities
}

func (p *QueryProcessor) detectUrgency(cleaned string) models.Urgency {
	for _, bucket := range p.urgencyBuckets {
		for _, kw := range bucket.keywords {
			if strings.Contains(cleaned, kw) {
				return bucket.level
			}
		}
	}
	return models.UrgencyLow
}

func (p *QueryProcessor) expandSynonyms(keywords []string) []string {
	expanded := make([]string, 0)
	seen := make(map[string]bool)
	for _, kw := range keywords {
		for _, syn := range p.synonyms[kw] {
			if !seen[syn] {
				expanded = append(expanded, syn)
				seen[syn] = true
			}
		}
	}
	return expanded
}

func (p *QueryProcessor) contextTags(cleaned string) []string {
	tags := []string{"singapore_law", "sg_jurisdiction"}
	if strings.Contains(cleaned, "court") {
		tags = append(tags, "court_related")
	}
	if strings.Contains(cleaned, "government") || strings.Contains(cleaned, "ministry") {
		tags = append(tags, "government_agency")
	}
	return tags
}

// suggestCategories scores every category by exact keyword membership (2x)
// plus substring matches (1x) and returns the top scorers, best first.
func (p *QueryProcessor) suggestCategories(cleaned string, keywords []string) []string {
	keywordSet := make(map[string]bool, len(keywords))
	for _, kw := range keywords {
		keywordSet[kw] = true
	}

	type scored struct {
		name  string
		score int
	}
	var results []scored

	for _, entry := range p.categoryKeywords {
		score := 0
		for _, kw := range entry.keywords {
			if keywordSet[kw] {
				score += 2
			}
			if strings.Contains(cleaned, kw) {
				score++
			}
		}
		if score > 0 {
			results = append(results, scored{entry.name, score})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})

	suggestions := make([]string, 0, maxSuggestions)
	for _, r := range results {
		suggestions = append(suggestions, r.name)
		if len(suggestions) == maxSuggestions {
			break
		}
	}
	return suggestions
}
