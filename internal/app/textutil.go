package app

import (
	"strconv"
	"strings"

	"yashubustudio/symptomcheck/diagnostic"
)

func parseInputTexts(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

func truncateText(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "…"
}

// recordsFromInput turns the editor content into records. Records loaded from a
// file are reused while the editor still shows exactly their texts, so patient
// and index columns survive into the export.
func recordsFromInput(text string, loaded []diagnostic.InputRecord) []diagnostic.InputRecord {
	lines := parseInputTexts(text)
	if len(lines) == len(loaded) {
		same := true
		for i, line := range lines {
			if strings.TrimSpace(loaded[i].Text) != line {
				same = false
				break
			}
		}
		if same {
			out := make([]diagnostic.InputRecord, len(loaded))
			copy(out, loaded)
			return out
		}
	}
	out := make([]diagnostic.InputRecord, len(lines))
	for i, line := range lines {
		out[i] = diagnostic.InputRecord{Index: strconv.Itoa(i + 1), Text: line}
	}
	return out
}

func recordTexts(records []diagnostic.InputRecord) []string {
	texts := make([]string, len(records))
	for i, rec := range records {
		texts[i] = rec.Text
	}
	return texts
}

func caseLabel(rec diagnostic.InputRecord, max int) string {
	text := truncateText(rec.Text, max)
	switch {
	case rec.Patient != "" && rec.Index != "":
		return rec.Index + " " + rec.Patient + ": " + text
	case rec.Patient != "":
		return rec.Patient + ": " + text
	case rec.Index != "":
		return rec.Index + ": " + text
	}
	return text
}
