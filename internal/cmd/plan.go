package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codeloom/codeloom/internal/summary"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Create and inspect execution plans",
}

var planCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an execution plan from a document summary",
	Long: `Create a dependency-ordered execution plan from a document summary and
persist its artifacts without running the build.`,
	RunE: runPlanCreate,
}

var planShowCmd = &cobra.Command{
	Use:   "show <plan-id>",
	Short: "Show a stored execution plan",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlanShow,
}

var planListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored execution plans",
	Args:  cobra.NoArgs,
	RunE:  runPlanList,
}

var (
	planDoc  string
	planName string
	planJSON bool
)

func init() {
	planCreateCmd.Flags().StringVar(&planDoc, "doc", "", "path to the document summary JSON")
	planCreateCmd.Flags().StringVar(&planName, "name", "", "explicit project name, overrides derivation")
	_ = planCreateCmd.MarkFlagRequired("doc")

	planShowCmd.Flags().BoolVar(&planJSON, "json", false, "print the raw plan JSON")

	planCmd.AddCommand(planCreateCmd, planShowCmd, planListCmd)
	rootCmd.AddCommand(planCmd)
}

func runPlanCreate(cmd *cobra.Command, _ []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}

	doc, err := summary.Load(planDoc)
	if err != nil {
		return err
	}

	created, err := a.planner.CreateExecutionPlan(doc, planName)
	if err != nil {
		return err
	}
	planDir, err := a.planner.SaveExecutionPlan(created)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Plan %s created for %s\n", created.PlanID, created.ProjectName)
	fmt.Fprintf(out, "Branch: %s\n", created.BranchName)
	fmt.Fprintf(out, "Tasks: %d\n", len(created.Tasks))
	fmt.Fprintf(out, "Artifacts: %s\n", planDir)
	return nil
}

func runPlanShow(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}

	loaded, err := a.planner.LoadExecutionPlan(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if planJSON {
		data, err := json.MarshalIndent(loaded, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	fmt.Fprintf(out, "Plan %s\n", loaded.PlanID)
	fmt.Fprintf(out, "Project: %s\n", loaded.ProjectName)
	fmt.Fprintf(out, "Branch: %s\n", loaded.BranchName)
	fmt.Fprintf(out, "Created: %s\n", loaded.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintln(out)
	for i, id := range loaded.ExecutionOrder {
		task := loaded.TaskByID(id)
		if task == nil {
			continue
		}
		fmt.Fprintf(out, "%2d. [%s] %s", i+1, task.Category, task.Name)
		if len(task.Dependencies) > 0 {
			fmt.Fprintf(out, " (after %d)", len(task.Dependencies))
		}
		fmt.Fprintln(out)
	}

	if progress, err := a.planner.Store().LoadProgress(loaded.PlanID); err == nil {
		fmt.Fprintf(out, "\nProgress: %d/%d (%.0f%%)\n",
			progress.CompletedTasks, progress.TotalTasks, progress.Percentage)
	}
	return nil
}

func runPlanList(cmd *cobra.Command, _ []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}

	ids, err := a.planner.Store().List()
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No plans stored")
		return nil
	}
	for _, id := range ids {
		fmt.Fprintln(cmd.OutOrStdout(), id)
	}
	return nil
}
