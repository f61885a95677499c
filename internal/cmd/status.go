package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status <project>",
	Short: "Show the repository state of a project working directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}

	projectPath := filepath.Join(a.cfg.WorkspaceRoot, args[0])
	status, err := a.repo.GetRepositoryStatus(cmd.Context(), projectPath)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !status.IsRepo {
		fmt.Fprintf(out, "%s is not under version control\n", projectPath)
		return nil
	}

	fmt.Fprintf(out, "Path: %s\n", projectPath)
	fmt.Fprintf(out, "Branch: %s\n", status.CurrentBranch)
	if status.RemoteURL != "" {
		fmt.Fprintf(out, "Remote: %s\n", status.RemoteURL)
		fmt.Fprintf(out, "Ahead/behind: %d/%d\n", status.Ahead, status.Behind)
	}
	if status.LastCommit != "" {
		fmt.Fprintf(out, "Last commit: %s\n", status.LastCommit)
	}
	if status.HasUncommittedChanges {
		fmt.Fprintln(out, "Working tree: dirty")
	} else {
		fmt.Fprintln(out, "Working tree: clean")
	}
	return nil
}
