// Package cmd wires the CLI surface: flag parsing, component construction,
// and command dispatch. All build semantics live in the internal packages
// this one assembles.
package cmd

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/codeloom/codeloom/internal/config"
	"github.com/codeloom/codeloom/internal/generate"
	"github.com/codeloom/codeloom/internal/gitrepo"
	"github.com/codeloom/codeloom/internal/log"
	"github.com/codeloom/codeloom/internal/metrics"
	"github.com/codeloom/codeloom/internal/plan"
	"github.com/codeloom/codeloom/internal/procexec"
	"github.com/codeloom/codeloom/internal/workflow"
)

var rootCmd = &cobra.Command{
	Use:   "codeloom",
	Short: "Document-driven build orchestrator",
	Long: `codeloom turns a structured design-document summary into a dependency-ordered
execution plan and drives it through environment setup, code generation,
testing, and publishing to a version-control branch.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var cfgFile string

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with the given context
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "codeloom.yaml", "configuration file")
}

// app bundles the constructed components for one command invocation
type app struct {
	cfg     config.Config
	logger  *log.Logger
	metrics *metrics.Metrics
	planner *plan.Planner
	repo    *gitrepo.Controller
	engine  *workflow.Engine
}

// buildApp loads configuration, applies any overrides, and constructs the
// component graph
func buildApp(overrides ...func(*config.Config)) (*app, error) {
	cfg, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return nil, err
	}
	for _, override := range overrides {
		override(&cfg)
	}

	logger := log.New(log.Config{
		Level:       log.ParseLevel(cfg.LogLevel),
		Format:      log.ParseFormat(cfg.LogFormat),
		Output:      log.OutputStderr(),
		ServiceName: "codeloom",
	})
	log.SetDefaultLogger(logger)

	m := metrics.NewMetrics(prometheus.NewRegistry())
	runner := procexec.NewLocalRunner()

	planner := plan.NewPlanner(cfg, logger, m)
	repo := gitrepo.NewController(cfg, runner, logger, m)

	var generator generate.Generator
	if len(cfg.GeneratorCommand) > 0 {
		generator = generate.NewCommandGenerator(cfg.GeneratorCommand, runner, logger)
	} else {
		generator = generate.NewScaffoldGenerator(logger)
	}

	return &app{
		cfg:     cfg,
		logger:  logger,
		metrics: m,
		planner: planner,
		repo:    repo,
		engine:  workflow.NewEngine(cfg, planner, repo, generator, logger, m),
	}, nil
}
