package diagnostic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCondition(t *testing.T, name string) Condition {
	t.Helper()
	cond, ok := DefaultKnowledgeBase().Condition(name)
	require.Truef(t, ok, "condition %s missing", name)
	return cond
}

func TestScoreEmptySetIsZero(t *testing.T) {
	for _, cond := range DefaultKnowledgeBase().Conditions() {
		assert.Zerof(t, Score(NewSymptomSet(), cond), "condition %s", cond.Name)
		assert.False(t, Evaluate(NewSymptomSet(), cond).Qualifies)
	}
}

func TestScoreAppliesBonusFromThreeMatches(t *testing.T) {
	grippe := mustCondition(t, "Grippe")
	hypertension := mustCondition(t, "Hypertension")

	tests := []struct {
		name  string
		set   SymptomSet
		cond  Condition
		want  float64
		bonus bool
	}{
		{
			name: "two matches no bonus",
			set:  NewSymptomSet("headache", "dizziness"),
			cond: hypertension,
			want: 0.6,
		},
		{
			name:  "three matches bonus",
			set:   NewSymptomSet("headache", "dizziness", "chest_pain"),
			cond:  hypertension,
			want:  1.2,
			bonus: true,
		},
		{
			name:  "all five flu symptoms",
			set:   NewSymptomSet("fever", "fatigue", "muscle_pain", "headache", "cough"),
			cond:  grippe,
			want:  1.2,
			bonus: true,
		},
		{
			name: "unrelated symptoms ignored",
			set:  NewSymptomSet("fever", "stomach_pain", "runny_nose"),
			cond: grippe,
			want: 0.3,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.set, tt.cond)
			assert.InDelta(t, tt.want, got.Score, 1e-9)
			assert.InDelta(t, tt.want, Score(tt.set, tt.cond), 1e-9)
			assert.Equal(t, tt.bonus, got.Bonus)
		})
	}
}

func TestEvaluateReportsMatchedInConditionOrder(t *testing.T) {
	got := Evaluate(NewSymptomSet("cough", "fever", "chills"), mustCondition(t, "Pneumonie"))
	assert.Equal(t, []SymptomKey{"fever", "cough"}, got.Matched)
	assert.Equal(t, 2, got.MatchedCount)
	assert.True(t, got.Qualifies)
	assert.InDelta(t, 0.5, got.MinScore, 1e-9)
}

func TestClassifyUrgency(t *testing.T) {
	tests := []struct {
		name       string
		confidence int
		set        SymptomSet
		want       Urgency
	}{
		{name: "chest pain overrides low confidence", confidence: 10, set: NewSymptomSet("chest_pain"), want: UrgencyHigh},
		{name: "breathlessness overrides low confidence", confidence: 45, set: NewSymptomSet("fever", "shortness_of_breath"), want: UrgencyHigh},
		{name: "above 80", confidence: 81, set: NewSymptomSet("fever"), want: UrgencyHigh},
		{name: "exactly 80", confidence: 80, set: NewSymptomSet("fever"), want: UrgencyModerate},
		{name: "above 60", confidence: 61, set: NewSymptomSet("fever"), want: UrgencyModerate},
		{name: "exactly 60", confidence: 60, set: NewSymptomSet("fever"), want: UrgencyLow},
		{name: "empty set", confidence: 0, set: NewSymptomSet(), want: UrgencyLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyUrgency(tt.confidence, tt.set))
		})
	}
}

func TestSymptomSet(t *testing.T) {
	set := NewSymptomSet("fever", "cough", "fever")
	set.Add("cough")
	assert.Equal(t, 2, set.Len())
	assert.True(t, set.Has("fever"))
	assert.False(t, set.Has("chills"))
	assert.Equal(t, []SymptomKey{"cough", "fever"}, set.Keys())
}
