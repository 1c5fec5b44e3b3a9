package diagnostic

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// Service ranks candidate conditions for free-text symptom lists.
// It holds no per-call state and is safe for concurrent use.
type Service struct {
	kb     *KnowledgeBase
	cfg    Config
	logger *zap.SugaredLogger
}

// NewService constructs a service over the given knowledge base. A nil knowledge
// base selects the compiled-in table; a nil logger disables logging.
func NewService(kb *KnowledgeBase, cfg Config, logger *zap.SugaredLogger) *Service {
	if kb == nil {
		kb = DefaultKnowledgeBase()
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	cfg.ApplyDefaults()
	return &Service{kb: kb, cfg: cfg, logger: logger.With("component", "diagnostic")}
}

// KnowledgeBase returns the read-only table the service scores against.
func (s *Service) KnowledgeBase() *KnowledgeBase {
	return s.kb
}

// Config returns a copy of the service configuration.
func (s *Service) Config() Config {
	return s.cfg
}

// ParseSymptoms splits text on commas and returns the recognized symptoms.
// Unknown tokens are dropped and duplicates collapse.
func (s *Service) ParseSymptoms(text string) SymptomSet {
	set, _ := s.parse(text)
	return set
}

// RecognizedSymptoms returns the distinct canonical keys found in text, sorted.
func (s *Service) RecognizedSymptoms(text string) []SymptomKey {
	return s.ParseSymptoms(text).Keys()
}

// UnrecognizedTokens returns the normalized tokens that match no synonym, in input order.
func (s *Service) UnrecognizedTokens(text string) []string {
	_, unknown := s.parse(text)
	return unknown
}

func (s *Service) parse(text string) (SymptomSet, []string) {
	set := make(SymptomSet)
	var unknown []string
	for _, token := range SplitSymptoms(text) {
		key, ok := s.kb.Normalize(token)
		if !ok {
			unknown = append(unknown, token)
			continue
		}
		set.Add(key)
	}
	return set, unknown
}

// Diagnose returns at most three qualifying conditions sorted by decreasing
// confidence. An input without any qualifying condition yields an empty slice.
func (s *Service) Diagnose(text string) []Result {
	set := s.ParseSymptoms(text)
	results := s.rank(set)
	s.logger.Debugw("diagnosis complete",
		"recognized", set.Len(),
		"count", len(results))
	return results
}

func (s *Service) rank(set SymptomSet) []Result {
	results := make([]Result, 0, s.kb.ConditionCount())
	for _, cond := range s.kb.conditions {
		score := Score(set, cond)
		if score < cond.MinScore {
			continue
		}
		confidence := toConfidence(score)
		results = append(results, Result{
			Condition:       cond.Name,
			Confidence:      confidence,
			Urgency:         ClassifyUrgency(confidence, set),
			MatchedSymptoms: set.Len(),
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Confidence > results[j].Confidence
	})
	return limitResults(results, s.cfg.TopK)
}

// Explain runs a diagnosis and returns every intermediate score, including
// conditions that did not reach their threshold.
func (s *Service) Explain(text string) Explanation {
	set, unknown := s.parse(text)
	exp := Explanation{
		Text:         text,
		Recognized:   set.Keys(),
		Unrecognized: unknown,
		Conditions:   make([]ConditionScore, 0, s.kb.ConditionCount()),
		Results:      s.rank(set),
	}
	if exp.Unrecognized == nil {
		exp.Unrecognized = []string{}
	}
	for _, cond := range s.kb.conditions {
		exp.Conditions = append(exp.Conditions, Evaluate(set, cond))
	}
	return exp
}

// DiagnoseAll diagnoses every text in order, reporting progress after each one.
func (s *Service) DiagnoseAll(ctx context.Context, texts []string, progress func(done, total int)) ([]ResultRow, error) {
	rows := make([]ResultRow, 0, len(texts))
	total := len(texts)
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return rows, errors.Wrapf(err, "diagnosis interrupted after %d of %d", i, total)
		}
		rows = append(rows, s.DiagnoseRow(text))
		if progress != nil {
			progress(i+1, total)
		}
	}
	s.logger.Infow("batch diagnosis complete", "count", total)
	return rows, nil
}

// DiagnoseRow diagnoses a single text and keeps the recognized and unknown tokens alongside.
func (s *Service) DiagnoseRow(text string) ResultRow {
	set, unknown := s.parse(text)
	return ResultRow{
		Text:         strings.TrimSpace(text),
		Recognized:   set.Keys(),
		Unrecognized: unknown,
		Results:      s.rank(set),
	}
}

func toConfidence(score float64) int {
	confidence := int(math.Floor(score * 100))
	if confidence > ConfidenceCap {
		return ConfidenceCap
	}
	if confidence < 0 {
		return 0
	}
	return confidence
}

func limitResults(results []Result, k int) []Result {
	if k <= 0 || k > MaxResults {
		k = MaxResults
	}
	if len(results) <= k {
		return results
	}
	return results[:k]
}
