package diagnostic

// ColumnCandidates defines possible header names for auto-detecting CSV/TSV columns.
type ColumnCandidates struct {
	Text    []string `json:"text" yaml:"text" toml:"text" mapstructure:"text"`
	Index   []string `json:"index" yaml:"index" toml:"index" mapstructure:"index"`
	Patient []string `json:"patient" yaml:"patient" toml:"patient" mapstructure:"patient"`
}

// DefaultColumnCandidates returns the built-in column detection candidates.
func DefaultColumnCandidates() ColumnCandidates {
	return ColumnCandidates{
		Text:    []string{"symptoms", "symptômes", "symptomes", "symptoms_text", "text", "description"},
		Index:   []string{"id", "index", "no", "numéro", "numero"},
		Patient: []string{"patient", "name", "nom"},
	}
}

// WithDefaults fills nil fields from DefaultColumnCandidates.
func (c ColumnCandidates) WithDefaults() ColumnCandidates {
	defaults := DefaultColumnCandidates()
	return ColumnCandidates{
		Text:    pickStrings(c.Text, defaults.Text),
		Index:   pickStrings(c.Index, defaults.Index),
		Patient: pickStrings(c.Patient, defaults.Patient),
	}
}

// isKnownHeader reports whether any cell of header names a candidate column.
func (c ColumnCandidates) isKnownHeader(header []string) bool {
	return findColumn(header, c.Text) >= 0 ||
		findColumn(header, c.Index) >= 0 ||
		findColumn(header, c.Patient) >= 0
}

func pickStrings(custom, fallback []string) []string {
	if custom == nil {
		return cloneStrings(fallback)
	}
	return cloneStrings(custom)
}
