package diagnostic

import (
	"bufio"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrEmptyInput is returned when an input file holds no symptom list at all.
var ErrEmptyInput = errors.New("input contains no symptom lists")

// InputParseOptions selects which CSV columns map to record fields.
// Columns are given by header name or as a 1-based "#n" index. Candidates
// drives auto-detection; nil fields use the built-in names.
type InputParseOptions struct {
	IndexColumn   string
	PatientColumn string
	TextColumn    string
	Candidates    ColumnCandidates
}

// InputFileMetadata provides header information and automatic column suggestions.
type InputFileMetadata struct {
	Columns   []string
	Suggested InputParseOptions
}

// ParseInputRecords reads a file using automatic column detection.
func ParseInputRecords(path string) ([]InputRecord, error) {
	return ParseInputRecordsWithOptions(path, InputParseOptions{})
}

// ParseInputRecordsWithOptions reads .csv/.tsv files by column, anything else as
// plain text with one symptom list per line.
func ParseInputRecordsWithOptions(path string, opts InputParseOptions) ([]InputRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", filepath.Base(path))
	}
	defer f.Close()
	var records []InputRecord
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		records, err = ReadDelimitedRecords(f, ',', opts)
	case ".tsv":
		records, err = ReadDelimitedRecords(f, '\t', opts)
	default:
		records, err = ReadPlainTextRecords(f)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", filepath.Base(path))
	}
	if len(records) == 0 {
		return nil, errors.Wrapf(ErrEmptyInput, "%s", filepath.Base(path))
	}
	return records, nil
}

// ReadPlainTextRecords returns one record per non-empty line.
func ReadPlainTextRecords(r io.Reader) ([]InputRecord, error) {
	var out []InputRecord
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 2*1024*1024)
	for scanner.Scan() {
		line := cleanCell(scanner.Text())
		if line == "" {
			continue
		}
		out = append(out, InputRecord{Index: strconv.Itoa(len(out) + 1), Text: line})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "scan text")
	}
	return out, nil
}

// ReadDelimitedRecords reads CSV/TSV rows. When no header matches a known
// column name, the first row is data and the first column holds the symptoms.
func ReadDelimitedRecords(r io.Reader, comma rune, opts InputParseOptions) ([]InputRecord, error) {
	reader := csv.NewReader(r)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "parse delimited rows")
	}
	if len(rows) == 0 {
		return nil, nil
	}
	header := make([]string, len(rows[0]))
	for i, cell := range rows[0] {
		header[i] = cleanCell(cell)
	}
	resolved, skipHeader, err := resolveInputColumns(header, opts)
	if err != nil {
		return nil, err
	}
	start := 0
	if skipHeader {
		start = 1
	}
	records := make([]InputRecord, 0, len(rows)-start)
	for n, row := range rows[start:] {
		rec := InputRecord{}
		if idx := resolved.Text.Index; idx >= 0 && idx < len(row) {
			rec.Text = cleanCell(row[idx])
		}
		if rec.Text == "" {
			continue
		}
		if idx := resolved.Index.Index; idx >= 0 && idx < len(row) {
			rec.Index = cleanCell(row[idx])
		}
		if rec.Index == "" {
			rec.Index = strconv.Itoa(n + 1)
		}
		if idx := resolved.Patient.Index; idx >= 0 && idx < len(row) {
			rec.Patient = cleanCell(row[idx])
		}
		records = append(records, rec)
	}
	return records, nil
}

// ReadInputFileMetadata returns the header of a structured file with the columns
// auto-detection would pick using candidates.
func ReadInputFileMetadata(path string, candidates ColumnCandidates) (InputFileMetadata, error) {
	meta := InputFileMetadata{}
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".csv" && ext != ".tsv" {
		return meta, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return meta, errors.Wrapf(err, "open %s", filepath.Base(path))
	}
	defer f.Close()
	reader := csv.NewReader(f)
	if ext == ".tsv" {
		reader.Comma = '\t'
	}
	reader.FieldsPerRecord = -1
	row, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return meta, nil
		}
		return meta, errors.Wrapf(err, "read %s", filepath.Base(path))
	}
	header := make([]string, len(row))
	for i, cell := range row {
		header[i] = cleanCell(cell)
	}
	meta.Columns = header
	if resolved, _, err := resolveInputColumns(header, InputParseOptions{Candidates: candidates}); err == nil {
		meta.Suggested = InputParseOptions{
			IndexColumn:   resolved.Index.HeaderName,
			PatientColumn: resolved.Patient.HeaderName,
			TextColumn:    resolved.Text.HeaderName,
		}
	}
	return meta, nil
}

func cleanCell(v string) string {
	v = strings.TrimPrefix(v, "\ufeff")
	return strings.TrimSpace(v)
}

func findColumn(header []string, candidates []string) int {
	for i, col := range header {
		normalized := NormalizeText(col)
		for _, cand := range candidates {
			if normalized == NormalizeText(cand) {
				return i
			}
		}
	}
	return -1
}

type columnResult struct {
	Index      int
	FromHeader bool
	HeaderName string
}

type resolvedColumns struct {
	Index   columnResult
	Patient columnResult
	Text    columnResult
}

func resolveInputColumns(header []string, opts InputParseOptions) (resolvedColumns, bool, error) {
	res := resolvedColumns{
		Index:   columnResult{Index: -1},
		Patient: columnResult{Index: -1},
		Text:    columnResult{Index: -1},
	}
	var err error
	candidates := opts.Candidates.WithDefaults()
	if res.Index, err = pickColumn(header, opts.IndexColumn, candidates.Index); err != nil {
		return res, false, err
	}
	if res.Patient, err = pickColumn(header, opts.PatientColumn, candidates.Patient); err != nil {
		return res, false, err
	}
	if res.Text, err = pickColumn(header, opts.TextColumn, candidates.Text); err != nil {
		return res, false, err
	}
	// positional selectors say nothing about the first row, so a recognised
	// column name anywhere in it still marks it as a header
	skipHeader := res.Index.FromHeader || res.Patient.FromHeader || res.Text.FromHeader ||
		candidates.isKnownHeader(header)
	if res.Text.Index < 0 && len(header) > 0 {
		res.Text.Index = 0
		res.Text.FromHeader = false
	}
	res.Index.HeaderName = headerNameForIndex(header, res.Index.Index, res.Index.FromHeader)
	res.Patient.HeaderName = headerNameForIndex(header, res.Patient.Index, res.Patient.FromHeader)
	res.Text.HeaderName = headerNameForIndex(header, res.Text.Index, res.Text.FromHeader)
	return res, skipHeader, nil
}

func pickColumn(header []string, explicit string, candidates []string) (columnResult, error) {
	res := columnResult{Index: -1}
	if strings.TrimSpace(explicit) != "" {
		idx, fromHeader, err := matchExplicitColumn(header, explicit)
		if err != nil {
			return res, err
		}
		res.Index = idx
		res.FromHeader = fromHeader
		return res, nil
	}
	if idx := findColumn(header, candidates); idx >= 0 {
		res.Index = idx
		res.FromHeader = true
	}
	return res, nil
}

func matchExplicitColumn(header []string, explicit string) (int, bool, error) {
	trimmed := strings.TrimSpace(explicit)
	for i, col := range header {
		if strings.EqualFold(col, trimmed) {
			return i, true, nil
		}
	}
	if strings.HasPrefix(trimmed, "#") {
		idx, err := parseColumnIndex(trimmed)
		if err != nil {
			return -1, false, err
		}
		if idx >= len(header) {
			return -1, false, errors.Newf("column index %s is out of range", trimmed)
		}
		return idx, false, nil
	}
	return -1, false, errors.Newf("column %q not found", explicit)
}

func parseColumnIndex(token string) (int, error) {
	trimmed := strings.TrimSpace(strings.TrimPrefix(token, "#"))
	idx, err := strconv.Atoi(trimmed)
	if err != nil {
		return -1, errors.Newf("invalid column index %q", token)
	}
	if idx <= 0 {
		return -1, errors.WithHint(errors.Newf("invalid column index %q", token), "column indices are 1-based")
	}
	return idx - 1, nil
}

func headerNameForIndex(header []string, idx int, fromHeader bool) string {
	if idx < 0 {
		return ""
	}
	if fromHeader && idx < len(header) {
		if name := header[idx]; name != "" {
			return name
		}
	}
	return "#" + strconv.Itoa(idx+1)
}
