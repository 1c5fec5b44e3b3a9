package app

import (
	"fmt"
	"strings"

	"yashubustudio/symptomcheck/diagnostic"
	"yashubustudio/symptomcheck/internal/i18n"
)

const caseColumnChars = 80

func resultAt(r []diagnostic.Result, idx int) (diagnostic.Result, bool) {
	if idx < 0 || idx >= len(r) {
		return diagnostic.Result{}, false
	}
	return r[idx], true
}

func urgencyLabel(manager *i18n.Manager, lang string, urgency diagnostic.Urgency) string {
	return manager.Translate(lang, "urgency."+string(urgency))
}

func tableHeader(manager *i18n.Manager, lang string, topK int) []string {
	header := []string{manager.Translate(lang, "ui.col_case")}
	for i := 1; i <= topK; i++ {
		header = append(header,
			fmt.Sprintf("%s %d", manager.Translate(lang, "ui.col_condition"), i),
			manager.Translate(lang, "ui.col_confidence"),
			manager.Translate(lang, "ui.col_urgency"))
	}
	return header
}

// buildTableData lays out a header line followed by one line per case with
// topK condition/confidence/urgency triples.
func buildTableData(manager *i18n.Manager, lang string, records []diagnostic.InputRecord, rows []diagnostic.ResultRow, topK int) [][]string {
	header := tableHeader(manager, lang, topK)
	data := make([][]string, 1, len(rows)+1)
	data[0] = header
	for i, row := range rows {
		line := make([]string, len(header))
		rec := diagnostic.InputRecord{Text: row.Text}
		if i < len(records) {
			rec = records[i]
		}
		line[0] = caseLabel(rec, caseColumnChars)
		idx := 1
		for j := 0; j < topK; j++ {
			if r, ok := resultAt(row.Results, j); ok {
				line[idx] = r.Condition
				line[idx+1] = fmt.Sprintf("%d%%", r.Confidence)
				line[idx+2] = urgencyLabel(manager, lang, r.Urgency)
			}
			idx += 3
		}
		data = append(data, line)
	}
	return data
}

func columnWidths(topK int) []float32 {
	widths := []float32{320}
	for i := 0; i < topK; i++ {
		widths = append(widths, 180, 90, 90)
	}
	return widths
}

// formatResultDetails renders the report shown when a case is selected.
func formatResultDetails(manager *i18n.Manager, lang string, row diagnostic.ResultRow) string {
	var b strings.Builder
	recognized := make([]string, len(row.Recognized))
	for i, key := range row.Recognized {
		recognized[i] = string(key)
	}
	b.WriteString(manager.Translatef(lang, "report.based_on", row.Text))
	b.WriteString("\n")
	if len(recognized) > 0 {
		fmt.Fprintf(&b, "[%s]\n", strings.Join(recognized, ", "))
	}
	if len(row.Unrecognized) > 0 {
		b.WriteString(manager.Translatef(lang, "report.unrecognized", strings.Join(row.Unrecognized, ", ")))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	if len(row.Results) == 0 {
		b.WriteString(manager.Translate(lang, "report.no_result"))
		b.WriteString("\n")
		return b.String()
	}
	for i, r := range row.Results {
		fmt.Fprintf(&b, "[%d] %s\n", i+1, manager.Translatef(lang, "report.result_line",
			r.Condition, r.Confidence, urgencyLabel(manager, lang, r.Urgency)))
	}
	b.WriteString("\n")
	b.WriteString(manager.Translate(lang, "report.disclaimer"))
	b.WriteString("\n")
	return b.String()
}
