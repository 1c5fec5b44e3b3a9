package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"yashubustudio/symptomcheck/diagnostic"
)

type batchOptions struct {
	inputPath  string
	outputPath string
	outputDir  string
	inputOpts  diagnostic.InputParseOptions
	language   string
	stdout     bool
}

func newBatchCmd(env *environment) *cobra.Command {
	opts := &batchOptions{}
	cmd := &cobra.Command{
		Use:   "batch --input FILE [--output FILE]",
		Short: "Diagnose every symptom list of a CSV/TSV/text file and write a result CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, env, opts)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&opts.inputPath, "input", "", "CSV/TSV/text file with one symptom list per row")
	flags.StringVar(&opts.outputPath, "output", "", "CSV file to write results (default uses --output-dir/result_*.csv)")
	flags.StringVar(&opts.outputDir, "output-dir", "csv", "Directory where result CSVs are written when --output is omitted")
	flags.StringVar(&opts.inputOpts.IndexColumn, "index-column", "", "Column name or #index for the case index column")
	flags.StringVar(&opts.inputOpts.PatientColumn, "patient-column", "", "Column name or #index for the patient column")
	flags.StringVar(&opts.inputOpts.TextColumn, "text-column", "", "Column name or #index for the symptom list column")
	flags.StringVar(&opts.language, "lang", "", "Summary language (fr|en)")
	flags.BoolVar(&opts.stdout, "stdout", false, "Print a summary of the results to STDOUT")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func runBatch(cmd *cobra.Command, env *environment, opts *batchOptions) error {
	inputOpts := opts.inputOpts
	inputOpts.Candidates = env.cfg.Columns
	records, err := diagnostic.ParseInputRecordsWithOptions(strings.TrimSpace(opts.inputPath), inputOpts)
	if err != nil {
		return errors.Wrap(err, "read input records")
	}

	rows, err := diagnoseRecords(cmd.Context(), env.service, records)
	if err != nil {
		return errors.Wrap(err, "diagnose")
	}

	outputPath, err := resolveOutputPath(strings.TrimSpace(opts.outputPath), strings.TrimSpace(opts.outputDir), time.Now())
	if err != nil {
		return err
	}
	if err := writeResultFile(outputPath, records, rows, env.cfg.TopK); err != nil {
		return err
	}

	lang := env.language(opts.language)
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, env.i18n.Translatef(lang, "report.batch_done", len(records), outputPath))
	if opts.stdout {
		printSummary(out, env.i18n, lang, records, rows)
	}
	return nil
}

func diagnoseRecords(ctx context.Context, service *diagnostic.Service, records []diagnostic.InputRecord) ([]diagnostic.ResultRow, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	texts := make([]string, len(records))
	for i, rec := range records {
		texts[i] = rec.Text
	}
	return service.DiagnoseAll(ctx, texts, nil)
}

func resolveOutputPath(path, dir string, now time.Time) (string, error) {
	if path != "" {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", errors.Wrap(err, "resolve output path")
		}
		if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
			return "", errors.Wrap(err, "create output directory")
		}
		return absPath, nil
	}
	if dir == "" {
		dir = "csv"
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.Wrap(err, "resolve output dir")
	}
	if err := os.MkdirAll(absDir, 0o755); err != nil {
		return "", errors.Wrap(err, "create output dir")
	}
	filename := fmt.Sprintf("result_%s.csv", now.Format("20060102150405"))
	return filepath.Join(absDir, filename), nil
}

func writeResultFile(path string, records []diagnostic.InputRecord, rows []diagnostic.ResultRow, topK int) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create result file")
	}
	if err := diagnostic.WriteResultCSV(f, records, rows, topK); err != nil {
		f.Close()
		return err
	}
	return errors.Wrap(f.Close(), "close result file")
}
