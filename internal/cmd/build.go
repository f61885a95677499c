package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codeloom/codeloom/internal/config"
	"github.com/codeloom/codeloom/internal/errors"
	"github.com/codeloom/codeloom/internal/report"
	"github.com/codeloom/codeloom/internal/summary"
	"github.com/codeloom/codeloom/internal/workflow"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Run a full build from a document summary",
	Long: `Run the complete build workflow: plan the work from a document summary,
prepare the project working directory, generate code and tests, and commit
the result to the build branch.

Use --resume to re-enter a previously planned build by plan id; completed
tasks are not attempted again.`,
	RunE: runBuild,
}

var (
	buildDoc    string
	buildResume string
	buildName   string
	buildNoPush bool
)

func init() {
	buildCmd.Flags().StringVar(&buildDoc, "doc", "", "path to the document summary JSON")
	buildCmd.Flags().StringVar(&buildResume, "resume", "", "plan id of a previous build to resume")
	buildCmd.Flags().StringVar(&buildName, "name", "", "explicit project name, overrides derivation")
	buildCmd.Flags().BoolVar(&buildNoPush, "no-push", false, "commit locally without pushing")
	buildCmd.MarkFlagsMutuallyExclusive("doc", "resume")

	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, _ []string) error {
	if buildDoc == "" && buildResume == "" {
		return errors.New(errors.ErrCodeConfigInvalid, "either --doc or --resume is required").
			WithSuggestion("Pass --doc <summary.json> to start a build").
			WithSuggestion("Pass --resume <plan-id> to continue one")
	}

	a, err := buildApp(func(cfg *config.Config) {
		if buildNoPush {
			cfg.Push = false
		}
	})
	if err != nil {
		return err
	}

	a.engine.SetCallbacks(workflow.Callbacks{
		OnPhaseTransition: func(from, to workflow.State) {
			a.logger.Info("phase", "from", from, "to", to)
		},
	})

	var result *workflow.Report
	var runErr error
	if buildResume != "" {
		result, runErr = a.engine.ResumePlan(cmd.Context(), buildResume)
	} else {
		doc, err := summary.Load(buildDoc)
		if err != nil {
			return err
		}
		result, runErr = a.engine.Run(cmd.Context(), doc, buildName)
	}

	if result != nil {
		fmt.Fprintln(cmd.OutOrStdout(), report.Render(result))
	}
	return runErr
}
