package main

import (
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"yashubustudio/symptomcheck/diagnostic"
	"yashubustudio/symptomcheck/internal/i18n"
	"yashubustudio/symptomcheck/internal/logger"
)

// environment carries what every subcommand needs once flags and config are resolved.
type environment struct {
	configPath string
	logJSON    bool
	logLevel   string

	cfg     diagnostic.Config
	logger  *zap.SugaredLogger
	i18n    *i18n.Manager
	service *diagnostic.Service
}

func newRootCmd() *cobra.Command {
	env := &environment{}
	root := &cobra.Command{
		Use:   "symptomcheck",
		Short: "Rule-based symptom checker for French and English symptom lists",
		Long: `symptomcheck matches free-text symptoms against a weighted condition table
and reports up to three likely conditions with a confidence and an urgency.

Examples:
  symptomcheck diagnose "fièvre, toux, fatigue"
  symptomcheck batch --input cases.csv --output results.csv
  symptomcheck knowledge export --output knowledge.yaml
  symptomcheck serve --addr :8080

Results are indicative only and never replace a medical opinion.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return env.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync(env.logger)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&env.configPath, "config", "", "Path to symptomcheck.{yaml,toml,json} (default: ./symptomcheck.*)")
	flags.BoolVar(&env.logJSON, "log-json", false, "Emit logs as JSON")
	flags.StringVar(&env.logLevel, "log-level", "", "Log level (debug|info|warn|error)")

	root.AddCommand(newDiagnoseCmd(env))
	root.AddCommand(newBatchCmd(env))
	root.AddCommand(newKnowledgeCmd(env))
	root.AddCommand(newServeCmd(env))
	return root
}

func (env *environment) init(cmd *cobra.Command) error {
	cfg, err := diagnostic.LoadConfig(env.configPath)
	if err != nil {
		return errors.Wrap(err, "load config")
	}
	if cmd.Flags().Changed("log-json") {
		cfg.Log.JSON = env.logJSON
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = env.logLevel
	}

	log, err := logger.New(cfg.Log.JSON, cfg.Log.Level)
	if err != nil {
		return errors.Wrap(err, "init logger")
	}
	manager, err := i18n.NewManager(cfg.Language)
	if err != nil {
		return errors.Wrap(err, "init i18n")
	}
	kb, err := diagnostic.LoadKnowledgeBase(cfg)
	if err != nil {
		return errors.Wrap(err, "load knowledge base")
	}

	env.cfg = cfg
	env.logger = log
	env.i18n = manager
	env.service = diagnostic.NewService(kb, cfg, log)
	log.Debugw("configuration loaded",
		"language", cfg.Language,
		"topK", cfg.TopK,
		"knowledge_base", cfg.KnowledgeBasePath,
		"conditions", kb.ConditionCount())
	return nil
}

// language returns the override when set, else the configured language.
func (env *environment) language(override string) string {
	if override == "" {
		return env.cfg.Language
	}
	return env.i18n.NormalizeLanguage(override)
}
