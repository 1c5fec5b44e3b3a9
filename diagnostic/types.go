package diagnostic

// SymptomKey is the canonical identifier of a symptom (e.g. "headache").
type SymptomKey string

// Urgency represents how quickly a reported case should be looked at.
type Urgency string

const (
	// UrgencyLow is returned when confidence is at most 60 and no red-flag symptom is present.
	UrgencyLow Urgency = "low"
	// UrgencyModerate is returned when confidence is above 60.
	UrgencyModerate Urgency = "moderate"
	// UrgencyHigh is returned above 80 confidence or when a red-flag symptom was reported.
	UrgencyHigh Urgency = "high"
)

// Result is a single ranked diagnosis candidate.
//
// MatchedSymptoms is the number of recognized symptoms in the whole request,
// not the number matched by this condition. Use Explain for per-condition counts.
type Result struct {
	Condition       string  `json:"condition"`
	Confidence      int     `json:"confidence"`
	Urgency         Urgency `json:"urgency"`
	MatchedSymptoms int     `json:"matched_symptoms"`
}

// ResultRow holds the ranked results for a single input text.
type ResultRow struct {
	Text         string       `json:"text"`
	Recognized   []SymptomKey `json:"recognized"`
	Unrecognized []string     `json:"unrecognized,omitempty"`
	Results      []Result     `json:"results"`
}

// ConditionScore is the detailed evaluation of one condition against a symptom set.
type ConditionScore struct {
	Condition    string       `json:"condition"`
	Score        float64      `json:"score"`
	MinScore     float64      `json:"min_score"`
	Matched      []SymptomKey `json:"matched"`
	MatchedCount int          `json:"matched_count"`
	Bonus        bool         `json:"bonus"`
	Qualifies    bool         `json:"qualifies"`
}

// Explanation exposes every intermediate step of a diagnosis.
type Explanation struct {
	Text         string           `json:"text"`
	Recognized   []SymptomKey     `json:"recognized"`
	Unrecognized []string         `json:"unrecognized"`
	Conditions   []ConditionScore `json:"conditions"`
	Results      []Result         `json:"results"`
}

// InputRecord represents one symptom list optionally accompanied by metadata.
type InputRecord struct {
	Index   string `json:"index,omitempty"`
	Patient string `json:"patient,omitempty"`
	Text    string `json:"text"`
}
