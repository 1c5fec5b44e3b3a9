package main

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

type diagnoseOptions struct {
	jsonOutput bool
	explain    bool
	language   string
}

func newDiagnoseCmd(env *environment) *cobra.Command {
	opts := &diagnoseOptions{}
	cmd := &cobra.Command{
		Use:   "diagnose [symptoms...]",
		Short: "Rank likely conditions for a comma separated symptom list",
		Long: `Rank likely conditions for a comma separated symptom list.

Arguments are joined with commas, so both forms below are equivalent.
Without arguments one symptom list per line is read from stdin.

  symptomcheck diagnose "maux de tête, vertiges"
  symptomcheck diagnose "maux de tête" vertiges`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := symptomText(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch {
			case opts.explain:
				return writeJSON(out, env.service.Explain(text))
			case opts.jsonOutput:
				return writeJSON(out, env.service.Diagnose(text))
			}
			return writeReport(out, env.i18n, env.language(opts.language), text,
				env.service.Diagnose(text), env.service.UnrecognizedTokens(text))
		},
	}
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Print results as JSON")
	cmd.Flags().BoolVar(&opts.explain, "explain", false, "Print every condition score as JSON")
	cmd.Flags().StringVar(&opts.language, "lang", "", "Report language (fr|en)")
	return cmd
}

// symptomText joins arguments, or non-empty stdin lines, into one comma separated list.
func symptomText(stdin io.Reader, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, ", "), nil
	}
	var parts []string
	scanner := bufio.NewScanner(stdin)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			parts = append(parts, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return "", errors.Wrap(err, "read stdin")
	}
	return strings.Join(parts, ", "), nil
}

func writeJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(value); err != nil {
		return errors.Wrap(err, "encode json")
	}
	return nil
}
