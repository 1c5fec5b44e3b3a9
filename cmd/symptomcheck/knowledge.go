package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"yashubustudio/symptomcheck/diagnostic"
)

func newKnowledgeCmd(env *environment) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "knowledge",
		Short: "Inspect or export the symptom and condition table",
	}
	cmd.AddCommand(newKnowledgeShowCmd(env))
	cmd.AddCommand(newKnowledgeExportCmd(env))
	cmd.AddCommand(newKnowledgeInitCmd())
	return cmd
}

func newKnowledgeShowCmd(env *environment) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the active table (text, yaml, toml or json)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kb := env.service.KnowledgeBase()
			format = strings.ToLower(strings.TrimSpace(format))
			if format == "" || format == "text" {
				printKnowledge(cmd.OutOrStdout(), kb)
				return nil
			}
			data, err := diagnostic.EncodeKnowledge("knowledge."+format, kb)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "Output format (text|yaml|toml|json)")
	return cmd
}

func newKnowledgeExportCmd(env *environment) *cobra.Command {
	var output string
	var force bool
	cmd := &cobra.Command{
		Use:   "export --output FILE",
		Short: "Write the active table to a .yaml, .toml or .json file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				if _, err := os.Stat(output); err == nil {
					return errors.WithHint(errors.Newf("%s already exists", output), "pass --force to overwrite it")
				}
			}
			if err := diagnostic.WriteKnowledgeFile(output, env.service.KnowledgeBase()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), output)
			return nil
		},
	}
	cmd.Flags().StringVar(&output, "output", "", "Destination file")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func newKnowledgeInitCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "init --output FILE",
		Short: "Write the built-in table to FILE unless it already exists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			created, err := diagnostic.EnsureKnowledgeFile(output)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", output)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s already exists\n", output)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&output, "output", "", "Destination file")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func printKnowledge(w io.Writer, kb *diagnostic.KnowledgeBase) {
	fmt.Fprintf(w, "Symptoms (%d)\n", kb.SymptomCount())
	for _, s := range kb.Symptoms() {
		fmt.Fprintf(w, "  %-20s %s\n", s.Key, strings.Join(s.Synonyms, ", "))
	}
	fmt.Fprintf(w, "\nConditions (%d)\n", kb.ConditionCount())
	for _, c := range kb.Conditions() {
		parts := make([]string, len(c.Symptoms))
		for i, key := range c.Symptoms {
			parts[i] = fmt.Sprintf("%s=%.2f", key, c.Weights[i])
		}
		fmt.Fprintf(w, "  %-24s min=%.2f  %s\n", c.Name, c.MinScore, strings.Join(parts, " "))
	}
}
