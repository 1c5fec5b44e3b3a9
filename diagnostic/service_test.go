package diagnostic

import (
	"context"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(nil, DefaultConfig(), nil)
}

func TestDiagnoseEmptyInput(t *testing.T) {
	svc := newTestService(t)
	for _, input := range []string{"", "   ", " , ,, ", "xyzzy, plugh"} {
		got := svc.Diagnose(input)
		assert.NotNilf(t, got, "input %q", input)
		assert.Emptyf(t, got, "input %q", input)
	}
}

func TestDiagnoseExamples(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Result
	}{
		{
			name:  "canonical key is not a synonym",
			input: "fever, fatigue, muscle_pain, headache, cough",
			want: []Result{
				{Condition: "Infection Respiratoire", Confidence: 95, Urgency: UrgencyHigh, MatchedSymptoms: 4},
				{Condition: "Grippe", Confidence: 95, Urgency: UrgencyHigh, MatchedSymptoms: 4},
				{Condition: "Pneumonie", Confidence: 72, Urgency: UrgencyModerate, MatchedSymptoms: 4},
			},
		},
		{
			name:  "french flu symptoms",
			input: "Fièvre, fatigue, courbatures, maux de tête, toux",
			want: []Result{
				{Condition: "Infection Respiratoire", Confidence: 95, Urgency: UrgencyHigh, MatchedSymptoms: 5},
				{Condition: "Grippe", Confidence: 95, Urgency: UrgencyHigh, MatchedSymptoms: 5},
				{Condition: "Pneumonie", Confidence: 72, Urgency: UrgencyModerate, MatchedSymptoms: 5},
			},
		},
		{
			name:  "chest pain forces high urgency",
			input: "douleur thoracique, vertiges, maux de tête",
			want: []Result{
				{Condition: "Hypertension", Confidence: 95, Urgency: UrgencyHigh, MatchedSymptoms: 3},
				{Condition: "Migraine", Confidence: 60, Urgency: UrgencyHigh, MatchedSymptoms: 3},
			},
		},
		{
			name:  "red flags below every threshold",
			input: "douleur thoracique, essoufflement",
			want:  []Result{},
		},
	}
	svc := newTestService(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, svc.Diagnose(tt.input))
		})
	}
}

func TestDiagnoseCountsDistinctSymptoms(t *testing.T) {
	svc := newTestService(t)
	got := svc.Diagnose("toux, cough, TOUX SÈCHE, fièvre, fever")
	require.Len(t, got, 3)
	for _, r := range got {
		assert.Equal(t, 2, r.MatchedSymptoms)
	}
}

func TestDiagnoseResultProperties(t *testing.T) {
	inputs := []string{
		"fever",
		"fever, cough",
		"nausée, mal au ventre, fièvre, fatigue, perte d'appétit",
		"headache, nausea, dizziness, fatigue",
		"chest pain, fever, cough, fatigue, shortness of breath",
		"sore throat, runny nose, fever, cough",
		"frissons, douleurs articulaires",
		"maux de tête, vertiges, douleur thoracique, nausée, fièvre, toux, fatigue, courbatures",
	}
	svc := newTestService(t)
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			got := svc.Diagnose(input)
			assert.LessOrEqual(t, len(got), MaxResults)
			set := svc.ParseSymptoms(input)
			for i, r := range got {
				assert.GreaterOrEqual(t, r.Confidence, 0)
				assert.LessOrEqual(t, r.Confidence, ConfidenceCap)
				assert.Equal(t, set.Len(), r.MatchedSymptoms)
				if i > 0 {
					assert.GreaterOrEqual(t, got[i-1].Confidence, r.Confidence)
				}
				if set.Has("chest_pain") || set.Has("shortness_of_breath") {
					assert.Equal(t, UrgencyHigh, r.Urgency)
				}
			}
			assert.Equal(t, got, svc.Diagnose(input))
		})
	}
}

func TestDiagnoseHonorsTopK(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TopK = 1
	svc := NewService(nil, cfg, nil)

	got := svc.Diagnose("fever, fatigue, headache, cough")
	require.Len(t, got, 1)
	assert.Equal(t, "Infection Respiratoire", got[0].Condition)
}

func TestDiagnoseWithCustomKnowledgeBase(t *testing.T) {
	kb, err := NewKnowledgeBase(
		[]SymptomSynonyms{
			{Key: "itch", Synonyms: []string{"itch", "démangeaison"}},
			{Key: "rash", Synonyms: []string{"rash", "éruption"}},
		},
		[]Condition{
			{Name: "Eczéma", Symptoms: []SymptomKey{"itch", "rash"}, Weights: []float64{0.5, 0.5}, MinScore: 0.5},
		},
	)
	require.NoError(t, err)
	svc := NewService(kb, DefaultConfig(), nil)

	assert.Equal(t, []Result{
		{Condition: "Eczéma", Confidence: 50, Urgency: UrgencyLow, MatchedSymptoms: 1},
	}, svc.Diagnose("Démangeaison"))
	assert.Empty(t, svc.Diagnose("fever"))
}

func TestDiagnoseConcurrentCallers(t *testing.T) {
	svc := newTestService(t)
	input := "douleur thoracique, vertiges, maux de tête"
	want := svc.Diagnose(input)

	var wg sync.WaitGroup
	results := make([][]Result, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = svc.Diagnose(input)
		}(i)
	}
	wg.Wait()
	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestExplain(t *testing.T) {
	svc := newTestService(t)
	exp := svc.Explain("fever, fatigue, muscle_pain, headache, cough")

	assert.Equal(t, []SymptomKey{"cough", "fatigue", "fever", "headache"}, exp.Recognized)
	assert.Equal(t, []string{"muscle_pain"}, exp.Unrecognized)
	require.Len(t, exp.Conditions, DefaultKnowledgeBase().ConditionCount())
	assert.Len(t, exp.Results, 3)

	byName := make(map[string]ConditionScore, len(exp.Conditions))
	for _, c := range exp.Conditions {
		byName[c.Condition] = c
	}
	migraine := byName["Migraine"]
	assert.True(t, migraine.Qualifies)
	assert.Equal(t, []SymptomKey{"headache", "fatigue"}, migraine.Matched)
	assert.False(t, migraine.Bonus)

	gastro := byName["Gastro-entérite"]
	assert.False(t, gastro.Qualifies)
	assert.InDelta(t, 0.3, gastro.Score, 1e-9)
}

func TestExplainEmptyInput(t *testing.T) {
	exp := newTestService(t).Explain("")
	assert.Empty(t, exp.Recognized)
	assert.NotNil(t, exp.Unrecognized)
	assert.Empty(t, exp.Results)
	assert.Len(t, exp.Conditions, 6)
}

func TestDiagnoseAll(t *testing.T) {
	svc := newTestService(t)
	texts := []string{"fever, cough", " ", "douleur thoracique, essoufflement"}
	var calls []int
	rows, err := svc.DiagnoseAll(context.Background(), texts, func(done, total int) {
		assert.Equal(t, len(texts), total)
		calls = append(calls, done)
	})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []int{1, 2, 3}, calls)

	assert.Equal(t, "fever, cough", rows[0].Text)
	assert.Equal(t, []SymptomKey{"cough", "fever"}, rows[0].Recognized)
	assert.Len(t, rows[0].Results, 3)
	assert.Empty(t, rows[1].Results)
	assert.Equal(t, []SymptomKey{"chest_pain", "shortness_of_breath"}, rows[2].Recognized)
	assert.Empty(t, rows[2].Results)
}

func TestDiagnoseAllCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rows, err := newTestService(t).DiagnoseAll(ctx, []string{"fever"}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, rows)
}

func TestToConfidence(t *testing.T) {
	assert.Equal(t, 0, toConfidence(-0.2))
	assert.Equal(t, 45, toConfidence(0.459))
	assert.Equal(t, 95, toConfidence(0.95))
	assert.Equal(t, 95, toConfidence(1.44))
}

func TestRecognizedAndUnrecognized(t *testing.T) {
	svc := newTestService(t)
	text := "Toux, fever, xyzzy, toux sèche, , Plugh"

	assert.Equal(t, []SymptomKey{"cough", "fever"}, svc.RecognizedSymptoms(text))
	assert.Equal(t, []string{"xyzzy", "plugh"}, svc.UnrecognizedTokens(text))
	assert.Empty(t, svc.RecognizedSymptoms(""))
	assert.Empty(t, svc.UnrecognizedTokens(""))
}

func TestServiceTagsLogsWithComponentOnce(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	svc := NewService(nil, DefaultConfig(), zap.New(core).Sugar())
	svc.Diagnose("fever, cough")

	entries := logs.All()
	require.NotEmpty(t, entries)
	for _, entry := range entries {
		count := 0
		for _, field := range entry.Context {
			if field.Key == "component" {
				count++
				assert.Equal(t, "diagnostic", field.String)
			}
		}
		assert.Equal(t, 1, count, entry.Message)
	}
}
