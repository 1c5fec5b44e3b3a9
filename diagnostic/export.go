package diagnostic

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// ResultCSVHeader returns the header written by WriteResultCSV for topK result columns.
func ResultCSVHeader(topK int) []string {
	header := []string{"index", "patient", "symptoms", "recognized"}
	for i := 1; i <= topK; i++ {
		header = append(header,
			fmt.Sprintf("condition%d", i),
			fmt.Sprintf("confidence%d", i),
			fmt.Sprintf("urgency%d", i))
	}
	return header
}

// WriteResultCSV writes one line per record with its ranked results spread over columns.
func WriteResultCSV(w io.Writer, records []InputRecord, rows []ResultRow, topK int) error {
	if len(records) != len(rows) {
		return errors.Newf("records/results length mismatch: %d vs %d", len(records), len(rows))
	}
	if topK <= 0 || topK > MaxResults {
		topK = MaxResults
	}
	writer := csv.NewWriter(w)
	if err := writer.Write(ResultCSVHeader(topK)); err != nil {
		return errors.Wrap(err, "write header")
	}
	for i, rec := range records {
		row := rows[i]
		recognized := make([]string, len(row.Recognized))
		for j, key := range row.Recognized {
			recognized[j] = string(key)
		}
		line := []string{rec.Index, rec.Patient, rec.Text, strings.Join(recognized, ";")}
		for j := 0; j < topK; j++ {
			if j < len(row.Results) {
				r := row.Results[j]
				line = append(line, r.Condition, strconv.Itoa(r.Confidence), string(r.Urgency))
			} else {
				line = append(line, "", "", "")
			}
		}
		if err := writer.Write(line); err != nil {
			return errors.Wrapf(err, "write row %d", i)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return errors.Wrap(err, "flush results")
	}
	return nil
}
