package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codeloom/codeloom/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE:  runVersion,
}

var (
	versionVerbose bool
	versionJSON    bool
)

func init() {
	versionCmd.Flags().BoolVarP(&versionVerbose, "verbose", "v", false, "show detailed version information")
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "output version information as JSON")

	rootCmd.AddCommand(versionCmd)
}

func runVersion(cmd *cobra.Command, _ []string) error {
	info := version.GetInfo()
	out := cmd.OutOrStdout()

	if versionJSON {
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal version info: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	if versionVerbose {
		fmt.Fprintln(out, info.String())
		return nil
	}

	fmt.Fprintf(out, "codeloom %s\n", info.Short())
	return nil
}
