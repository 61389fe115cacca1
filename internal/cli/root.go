package cli

import (
	"fmt"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/spf13/cobra"
)

// BuildInfo contains build-time information
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

var buildInfo BuildInfo

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "boards-sync",
	Short: "Sync GitHub issues to Azure Boards work items",
	Long: `Boards Sync - A tool for synchronizing GitHub issues into Azure Boards.

This tool reads GitHub issues (including Projects v2 board fields) and
creates or updates the corresponding work items, mapping states, labels,
assignees and sprints along the way. Every issue maps to at most one
work item; re-running a sync updates rather than duplicates.`,
	Version: buildInfo.Version,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute(info BuildInfo) error {
	buildInfo = info
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", info.Version, info.Commit, info.Date)
	return rootCmd.Execute()
}

// newLogger builds the CLI logger from the persistent logging flags.
func newLogger(cmd *cobra.Command) logr.Logger {
	level, _ := cmd.Flags().GetString("log-level")
	verbosity := 0
	if level == "debug" {
		verbosity = 1
	}

	return funcr.New(func(prefix, args string) {
		if prefix != "" {
			fmt.Fprintf(os.Stderr, "%s: %s\n", prefix, args)
			return
		}
		fmt.Fprintln(os.Stderr, args)
	}, funcr.Options{Verbosity: verbosity})
}

func init() {
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format (text, json)")
}
