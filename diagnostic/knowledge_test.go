package diagnostic

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultKnowledgeBase(t *testing.T) {
	kb := DefaultKnowledgeBase()
	assert.Equal(t, 15, kb.SymptomCount())
	assert.Equal(t, 6, kb.ConditionCount())

	names := make([]string, 0, kb.ConditionCount())
	for _, c := range kb.Conditions() {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Hypertension", "Infection Respiratoire", "Migraine", "Pneumonie", "Grippe", "Gastro-entérite"}, names)

	migraine, ok := kb.Condition("Migraine")
	require.True(t, ok)
	assert.Equal(t, []SymptomKey{"headache", "nausea", "dizziness", "fatigue"}, migraine.Symptoms)
	assert.Equal(t, []float64{0.4, 0.2, 0.2, 0.2}, migraine.Weights)
	assert.InDelta(t, 0.6, migraine.MinScore, 1e-9)

	_, ok = kb.Condition("Varicelle")
	assert.False(t, ok)
}

func TestDefaultKnowledgeBaseIsValid(t *testing.T) {
	kb := DefaultKnowledgeBase()
	_, err := NewKnowledgeBase(kb.Symptoms(), kb.Conditions())
	require.NoError(t, err)
}

func TestKnowledgeBaseAccessorsReturnCopies(t *testing.T) {
	kb := DefaultKnowledgeBase()
	conds := kb.Conditions()
	conds[0].Weights[0] = 42
	conds[0].Name = "changed"
	syms := kb.Symptoms()
	syms[0].Synonyms[0] = "changed"

	fresh := kb.Conditions()
	assert.Equal(t, "Hypertension", fresh[0].Name)
	assert.InDelta(t, 0.3, fresh[0].Weights[0], 1e-9)
	assert.Equal(t, "maux de tête", kb.Symptoms()[0].Synonyms[0])
}

func TestNewKnowledgeBaseCopiesInput(t *testing.T) {
	symptoms := []SymptomSynonyms{{Key: "itch", Synonyms: []string{"itch"}}}
	conditions := []Condition{{Name: "Eczéma", Symptoms: []SymptomKey{"itch"}, Weights: []float64{1}, MinScore: 0.5}}
	kb, err := NewKnowledgeBase(symptoms, conditions)
	require.NoError(t, err)

	symptoms[0].Synonyms[0] = "rash"
	conditions[0].Weights[0] = 0.1

	key, ok := kb.Normalize("itch")
	assert.True(t, ok)
	assert.Equal(t, SymptomKey("itch"), key)
	cond, _ := kb.Condition("Eczéma")
	assert.InDelta(t, 1.0, cond.Weights[0], 1e-9)
}

func TestNewKnowledgeBaseFirstSynonymWins(t *testing.T) {
	kb, err := NewKnowledgeBase(
		[]SymptomSynonyms{
			{Key: "headache", Synonyms: []string{"pain", "headache"}},
			{Key: "stomach_pain", Synonyms: []string{"PAIN ", "stomach pain"}},
		},
		[]Condition{{Name: "X", Symptoms: []SymptomKey{"headache"}, Weights: []float64{1}, MinScore: 1}},
	)
	require.NoError(t, err)

	key, ok := kb.Normalize("pain")
	require.True(t, ok)
	assert.Equal(t, SymptomKey("headache"), key)
}

func TestNewKnowledgeBaseValidation(t *testing.T) {
	validSymptoms := []SymptomSynonyms{
		{Key: "fever", Synonyms: []string{"fever"}},
		{Key: "cough", Synonyms: []string{"cough"}},
	}
	validCondition := Condition{Name: "Cold", Symptoms: []SymptomKey{"fever", "cough"}, Weights: []float64{0.5, 0.5}, MinScore: 0.5}

	tests := []struct {
		name       string
		symptoms   []SymptomSynonyms
		conditions []Condition
	}{
		{name: "no symptoms", conditions: []Condition{validCondition}},
		{name: "no conditions", symptoms: validSymptoms},
		{
			name:       "empty symptom key",
			symptoms:   append([]SymptomSynonyms{{Synonyms: []string{"x"}}}, validSymptoms...),
			conditions: []Condition{validCondition},
		},
		{
			name:       "duplicate symptom key",
			symptoms:   append([]SymptomSynonyms{{Key: "fever", Synonyms: []string{"fièvre"}}}, validSymptoms...),
			conditions: []Condition{validCondition},
		},
		{
			name:       "symptom without usable synonyms",
			symptoms:   append([]SymptomSynonyms{{Key: "chills", Synonyms: []string{" ", ""}}}, validSymptoms...),
			conditions: []Condition{validCondition},
		},
		{
			name:       "duplicate condition",
			symptoms:   validSymptoms,
			conditions: []Condition{validCondition, validCondition},
		},
		{
			name:       "empty condition name",
			symptoms:   validSymptoms,
			conditions: []Condition{{Symptoms: []SymptomKey{"fever"}, Weights: []float64{1}, MinScore: 0.5}},
		},
		{
			name:       "condition without symptoms",
			symptoms:   validSymptoms,
			conditions: []Condition{{Name: "Empty", MinScore: 0.5}},
		},
		{
			name:       "weights length mismatch",
			symptoms:   validSymptoms,
			conditions: []Condition{{Name: "Cold", Symptoms: []SymptomKey{"fever", "cough"}, Weights: []float64{0.5}, MinScore: 0.5}},
		},
		{
			name:       "unknown symptom",
			symptoms:   validSymptoms,
			conditions: []Condition{{Name: "Cold", Symptoms: []SymptomKey{"fever", "sneeze"}, Weights: []float64{0.5, 0.5}, MinScore: 0.5}},
		},
		{
			name:       "zero weight",
			symptoms:   validSymptoms,
			conditions: []Condition{{Name: "Cold", Symptoms: []SymptomKey{"fever", "cough"}, Weights: []float64{0.5, 0}, MinScore: 0.5}},
		},
		{
			name:       "zero threshold",
			symptoms:   validSymptoms,
			conditions: []Condition{{Name: "Cold", Symptoms: []SymptomKey{"fever"}, Weights: []float64{0.5}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kb, err := NewKnowledgeBase(tt.symptoms, tt.conditions)
			require.Error(t, err)
			assert.Nil(t, kb)
			assert.True(t, errors.Is(err, ErrInvalidKnowledgeBase), "got %v", err)
		})
	}
}

func TestNewKnowledgeBaseHints(t *testing.T) {
	_, err := NewKnowledgeBase(
		[]SymptomSynonyms{{Key: "fever", Synonyms: []string{"fever"}}},
		[]Condition{{Name: "Cold", Symptoms: []SymptomKey{"fever"}, Weights: []float64{0.5, 0.5}, MinScore: 0.5}},
	)
	require.Error(t, err)
	assert.Contains(t, errors.FlattenHints(err), "paired with symptoms by position")
}
