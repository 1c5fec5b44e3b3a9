package diagnostic

import "sort"

const (
	bonusMinMatches = 3
	bonusFactor     = 1.2
)

// redFlagSymptoms raise urgency for every result of a request, whatever the condition.
var redFlagSymptoms = []SymptomKey{"chest_pain", "shortness_of_breath"}

// SymptomSet is a deduplicated collection of canonical symptoms for one request.
type SymptomSet map[SymptomKey]struct{}

// NewSymptomSet builds a set from the given keys.
func NewSymptomSet(keys ...SymptomKey) SymptomSet {
	set := make(SymptomSet, len(keys))
	for _, k := range keys {
		set.Add(k)
	}
	return set
}

// Add inserts a key; adding an existing key is a no-op.
func (s SymptomSet) Add(key SymptomKey) {
	s[key] = struct{}{}
}

// Has reports whether key is in the set.
func (s SymptomSet) Has(key SymptomKey) bool {
	_, ok := s[key]
	return ok
}

// Len returns the number of distinct symptoms.
func (s SymptomSet) Len() int {
	return len(s)
}

// Keys returns the symptoms sorted alphabetically.
func (s SymptomSet) Keys() []SymptomKey {
	out := make([]SymptomKey, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Score sums the weights of the condition's symptoms present in set and applies
// the breadth bonus when at least three of them matched.
func Score(set SymptomSet, cond Condition) float64 {
	return Evaluate(set, cond).Score
}

// Evaluate scores a condition and reports which of its symptoms matched.
func Evaluate(set SymptomSet, cond Condition) ConditionScore {
	res := ConditionScore{
		Condition: cond.Name,
		MinScore:  cond.MinScore,
	}
	var score float64
	for i, key := range cond.Symptoms {
		if i >= len(cond.Weights) {
			break
		}
		if set.Has(key) {
			score += cond.Weights[i]
			res.Matched = append(res.Matched, key)
		}
	}
	res.MatchedCount = len(res.Matched)
	if res.MatchedCount >= bonusMinMatches {
		score *= bonusFactor
		res.Bonus = true
	}
	res.Score = score
	res.Qualifies = score >= cond.MinScore
	return res
}

// ClassifyUrgency applies the urgency rules in priority order: red-flag symptom,
// then confidence above 80, then above 60.
func ClassifyUrgency(confidence int, set SymptomSet) Urgency {
	for _, key := range redFlagSymptoms {
		if set.Has(key) {
			return UrgencyHigh
		}
	}
	switch {
	case confidence > 80:
		return UrgencyHigh
	case confidence > 60:
		return UrgencyModerate
	default:
		return UrgencyLow
	}
}
