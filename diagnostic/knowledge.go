package diagnostic

import (
	"github.com/cockroachdb/errors"
)

// ErrInvalidKnowledgeBase is wrapped by every validation failure of NewKnowledgeBase.
var ErrInvalidKnowledgeBase = errors.New("invalid knowledge base")

// SymptomSynonyms lists the surface forms that map to a canonical symptom.
type SymptomSynonyms struct {
	Key      SymptomKey `json:"key" yaml:"key" toml:"key"`
	Synonyms []string   `json:"synonyms" yaml:"synonyms" toml:"synonyms"`
}

// Condition pairs symptoms with positional weights and a minimum qualifying score.
type Condition struct {
	Name     string       `json:"name" yaml:"name" toml:"name"`
	Symptoms []SymptomKey `json:"symptoms" yaml:"symptoms" toml:"symptoms"`
	Weights  []float64    `json:"weights" yaml:"weights" toml:"weights"`
	MinScore float64      `json:"min_score" yaml:"min_score" toml:"min_score"`
}

// KnowledgeBase is the immutable symptom and condition table shared by all diagnoses.
type KnowledgeBase struct {
	symptoms   []SymptomSynonyms
	conditions []Condition
	index      map[string]SymptomKey
}

var defaultSymptoms = []SymptomSynonyms{
	{Key: "headache", Synonyms: []string{"maux de tête", "migraine", "céphalée", "mal à la tête", "headache"}},
	{Key: "fever", Synonyms: []string{"fièvre", "température élevée", "hyperthermie", "chaud", "température", "fever"}},
	{Key: "cough", Synonyms: []string{"toux", "toux sèche", "toux grasse", "tousser", "cough"}},
	{Key: "fatigue", Synonyms: []string{"fatigue", "épuisement", "faiblesse", "fatigué", "épuisé", "fatigue"}},
	{Key: "dizziness", Synonyms: []string{"vertiges", "étourdissements", "vertige", "étourdi", "dizziness"}},
	{Key: "nausea", Synonyms: []string{"nausée", "envie de vomir", "mal au coeur", "vomissement", "nausea"}},
	{Key: "chest_pain", Synonyms: []string{"douleur thoracique", "douleur poitrine", "mal à la poitrine", "chest pain"}},
	{Key: "shortness_of_breath", Synonyms: []string{"essoufflement", "difficulté à respirer", "souffle court", "shortness of breath"}},
	{Key: "sore_throat", Synonyms: []string{"mal à la gorge", "gorge irritée", "pharyngite", "sore throat"}},
	{Key: "runny_nose", Synonyms: []string{"nez qui coule", "rhinorrhée", "écoulement nasal", "runny nose"}},
	{Key: "muscle_pain", Synonyms: []string{"douleurs musculaires", "courbatures", "mal aux muscles", "muscle pain"}},
	{Key: "joint_pain", Synonyms: []string{"douleurs articulaires", "mal aux articulations", "joint pain"}},
	{Key: "chills", Synonyms: []string{"frissons", "tremblements", "froid", "chills"}},
	{Key: "loss_of_appetite", Synonyms: []string{"perte d'appétit", "manque d'appétit", "loss of appetite"}},
	{Key: "stomach_pain", Synonyms: []string{"mal au ventre", "douleur abdominale", "crampes", "stomach pain"}},
}

var defaultConditions = []Condition{
	{
		Name:     "Hypertension",
		Symptoms: []SymptomKey{"headache", "dizziness", "chest_pain"},
		Weights:  []float64{0.3, 0.3, 0.4},
		MinScore: 0.5,
	},
	{
		Name:     "Infection Respiratoire",
		Symptoms: []SymptomKey{"fever", "cough", "fatigue", "sore_throat", "runny_nose"},
		Weights:  []float64{0.3, 0.3, 0.2, 0.1, 0.1},
		MinScore: 0.4,
	},
	{
		Name:     "Migraine",
		Symptoms: []SymptomKey{"headache", "nausea", "dizziness", "fatigue"},
		Weights:  []float64{0.4, 0.2, 0.2, 0.2},
		MinScore: 0.6,
	},
	{
		Name:     "Pneumonie",
		Symptoms: []SymptomKey{"fever", "cough", "shortness_of_breath", "chest_pain", "fatigue"},
		Weights:  []float64{0.25, 0.25, 0.25, 0.15, 0.1},
		MinScore: 0.5,
	},
	{
		Name:     "Grippe",
		Symptoms: []SymptomKey{"fever", "fatigue", "muscle_pain", "headache", "cough"},
		Weights:  []float64{0.3, 0.2, 0.2, 0.15, 0.15},
		MinScore: 0.4,
	},
	{
		Name:     "Gastro-entérite",
		Symptoms: []SymptomKey{"nausea", "stomach_pain", "fever", "fatigue", "loss_of_appetite"},
		Weights:  []float64{0.3, 0.3, 0.15, 0.15, 0.1},
		MinScore: 0.4,
	},
}

// DefaultKnowledgeBase returns the compiled-in French/English table.
func DefaultKnowledgeBase() *KnowledgeBase {
	return buildKnowledgeBase(defaultSymptoms, defaultConditions)
}

// NewKnowledgeBase validates the given tables and builds an immutable knowledge base.
// The inputs are copied; later changes by the caller are not observed.
func NewKnowledgeBase(symptoms []SymptomSynonyms, conditions []Condition) (*KnowledgeBase, error) {
	if err := validateTables(symptoms, conditions); err != nil {
		return nil, err
	}
	return buildKnowledgeBase(symptoms, conditions), nil
}

func buildKnowledgeBase(symptoms []SymptomSynonyms, conditions []Condition) *KnowledgeBase {
	kb := &KnowledgeBase{
		symptoms:   cloneSymptoms(symptoms),
		conditions: cloneConditions(conditions),
		index:      make(map[string]SymptomKey),
	}
	// First registered key wins when synonym lists overlap.
	for _, entry := range kb.symptoms {
		for _, syn := range entry.Synonyms {
			normalized := NormalizeText(syn)
			if normalized == "" {
				continue
			}
			if _, taken := kb.index[normalized]; taken {
				continue
			}
			kb.index[normalized] = entry.Key
		}
	}
	return kb
}

func validateTables(symptoms []SymptomSynonyms, conditions []Condition) error {
	if len(symptoms) == 0 {
		return errors.WithHint(errors.Wrap(ErrInvalidKnowledgeBase, "no symptoms defined"),
			"declare at least one symptom with its synonyms")
	}
	if len(conditions) == 0 {
		return errors.WithHint(errors.Wrap(ErrInvalidKnowledgeBase, "no conditions defined"),
			"declare at least one condition")
	}
	keys := make(map[SymptomKey]struct{}, len(symptoms))
	for i, entry := range symptoms {
		if entry.Key == "" {
			return errors.Wrapf(ErrInvalidKnowledgeBase, "symptom #%d has an empty key", i+1)
		}
		if _, dup := keys[entry.Key]; dup {
			return errors.Wrapf(ErrInvalidKnowledgeBase, "symptom %q declared twice", entry.Key)
		}
		keys[entry.Key] = struct{}{}
		usable := 0
		for _, syn := range entry.Synonyms {
			if NormalizeText(syn) != "" {
				usable++
			}
		}
		if usable == 0 {
			return errors.WithHintf(errors.Wrapf(ErrInvalidKnowledgeBase, "symptom %q has no synonyms", entry.Key),
				"include at least the English word for %q", entry.Key)
		}
	}
	names := make(map[string]struct{}, len(conditions))
	for i, cond := range conditions {
		if cond.Name == "" {
			return errors.Wrapf(ErrInvalidKnowledgeBase, "condition #%d has an empty name", i+1)
		}
		if _, dup := names[cond.Name]; dup {
			return errors.Wrapf(ErrInvalidKnowledgeBase, "condition %q declared twice", cond.Name)
		}
		names[cond.Name] = struct{}{}
		if len(cond.Symptoms) == 0 {
			return errors.Wrapf(ErrInvalidKnowledgeBase, "condition %q has no symptoms", cond.Name)
		}
		if len(cond.Symptoms) != len(cond.Weights) {
			return errors.WithHint(
				errors.Wrapf(ErrInvalidKnowledgeBase, "condition %q has %d symptoms but %d weights",
					cond.Name, len(cond.Symptoms), len(cond.Weights)),
				"weights are paired with symptoms by position")
		}
		for j, key := range cond.Symptoms {
			if _, ok := keys[key]; !ok {
				return errors.Wrapf(ErrInvalidKnowledgeBase, "condition %q references unknown symptom %q", cond.Name, key)
			}
			if cond.Weights[j] <= 0 {
				return errors.Wrapf(ErrInvalidKnowledgeBase, "condition %q has non-positive weight for %q", cond.Name, key)
			}
		}
		if cond.MinScore <= 0 {
			return errors.WithHint(
				errors.Wrapf(ErrInvalidKnowledgeBase, "condition %q has non-positive min score", cond.Name),
				"a zero threshold would qualify the condition for an empty symptom list")
		}
	}
	return nil
}

// Symptoms returns a copy of the ordered synonym table.
func (kb *KnowledgeBase) Symptoms() []SymptomSynonyms {
	return cloneSymptoms(kb.symptoms)
}

// Conditions returns a copy of the condition catalog in insertion order.
func (kb *KnowledgeBase) Conditions() []Condition {
	return cloneConditions(kb.conditions)
}

// Condition looks up a condition by name.
func (kb *KnowledgeBase) Condition(name string) (Condition, bool) {
	for _, c := range kb.conditions {
		if c.Name == name {
			return cloneCondition(c), true
		}
	}
	return Condition{}, false
}

// SymptomCount returns how many canonical symptoms are declared.
func (kb *KnowledgeBase) SymptomCount() int {
	return len(kb.symptoms)
}

// ConditionCount returns how many conditions are declared.
func (kb *KnowledgeBase) ConditionCount() int {
	return len(kb.conditions)
}

func cloneSymptoms(src []SymptomSynonyms) []SymptomSynonyms {
	out := make([]SymptomSynonyms, len(src))
	for i, s := range src {
		out[i] = SymptomSynonyms{Key: s.Key, Synonyms: cloneStrings(s.Synonyms)}
	}
	return out
}

func cloneConditions(src []Condition) []Condition {
	out := make([]Condition, len(src))
	for i, c := range src {
		out[i] = cloneCondition(c)
	}
	return out
}

func cloneCondition(c Condition) Condition {
	return Condition{
		Name:     c.Name,
		Symptoms: append([]SymptomKey(nil), c.Symptoms...),
		Weights:  append([]float64(nil), c.Weights...),
		MinScore: c.MinScore,
	}
}

func cloneStrings(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}
