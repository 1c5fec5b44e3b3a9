package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"yashubustudio/symptomcheck/diagnostic"
	"yashubustudio/symptomcheck/internal/i18n"
)

var (
	titleColor    = color.New(color.Bold)
	urgencyColors = map[diagnostic.Urgency]*color.Color{
		diagnostic.UrgencyHigh:     color.New(color.FgRed, color.Bold),
		diagnostic.UrgencyModerate: color.New(color.FgYellow),
		diagnostic.UrgencyLow:      color.New(color.FgGreen),
	}
)

// writeReport prints the human readable analysis of one symptom list.
func writeReport(w io.Writer, manager *i18n.Manager, lang, text string, results []diagnostic.Result, unrecognized []string) error {
	var b strings.Builder
	b.WriteString(titleColor.Sprint(manager.Translate(lang, "report.title")))
	b.WriteByte('\n')
	b.WriteString(manager.Translatef(lang, "report.based_on", strings.TrimSpace(text)))
	b.WriteByte('\n')
	if len(unrecognized) > 0 {
		b.WriteString(manager.Translatef(lang, "report.unrecognized", strings.Join(unrecognized, ", ")))
		b.WriteByte('\n')
	}
	b.WriteByte('\n')

	if len(results) == 0 {
		b.WriteString(manager.Translate(lang, "report.no_result"))
		b.WriteByte('\n')
	}
	for _, r := range results {
		b.WriteString(manager.Translatef(lang, "report.result_line",
			r.Condition, r.Confidence, urgencyLabel(manager, lang, r.Urgency)))
		b.WriteByte('\n')
	}
	if len(results) > 0 {
		b.WriteByte('\n')
		b.WriteString(manager.Translate(lang, "report.disclaimer"))
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func urgencyLabel(manager *i18n.Manager, lang string, urgency diagnostic.Urgency) string {
	label := manager.Translate(lang, "urgency."+string(urgency))
	if c, ok := urgencyColors[urgency]; ok {
		return c.Sprint(label)
	}
	return label
}

// summarizeRecord describes a batch record by index and patient, or by a shortened text.
func summarizeRecord(rec diagnostic.InputRecord) string {
	var parts []string
	if index := strings.TrimSpace(rec.Index); index != "" {
		parts = append(parts, "#"+index)
	}
	if patient := strings.TrimSpace(rec.Patient); patient != "" {
		parts = append(parts, patient)
	}
	if len(parts) > 0 {
		return strings.Join(parts, " ")
	}
	runes := []rune(strings.TrimSpace(rec.Text))
	if len(runes) > 60 {
		return string(runes[:60]) + "…"
	}
	return string(runes)
}

func printSummary(w io.Writer, manager *i18n.Manager, lang string, records []diagnostic.InputRecord, rows []diagnostic.ResultRow) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "==== %s ====\n", manager.Translate(lang, "report.title"))
	for i := range records {
		fmt.Fprintf(w, "%d. %s\n", i+1, summarizeRecord(records[i]))
		if len(rows[i].Results) == 0 {
			fmt.Fprintf(w, "    %s\n", manager.Translate(lang, "report.no_result"))
			continue
		}
		for _, r := range rows[i].Results {
			fmt.Fprintf(w, "    - %s\n", manager.Translatef(lang, "report.result_line",
				r.Condition, r.Confidence, urgencyLabel(manager, lang, r.Urgency)))
		}
	}
}
