package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version information (set by build flags)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "reqwest",
	Short: "Fluent HTTP client with deferred error handling",
	Long: `reqwest - Fluent HTTP client with deferred error handling

A command-line HTTP client built on the reqwest library. Requests are
described through a chainable builder: any construction error (a malformed
header, a bad URL) is captured and reported once, at dispatch, instead of
aborting the chain mid-way.

Responses can be cached locally in a SQLite database and served back
according to the standard fetch cache modes (default, no-store, reload,
no-cache, force-cache, only-if-cached).`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(versionCmd)

	// Flags shared by the fetch and cache commands
	rootCmd.PersistentFlags().IntP("verbose", "v", 0, "Verbosity level (0-2)")
	rootCmd.PersistentFlags().String("cache-db", "", "SQLite response cache path (empty disables caching)")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("reqwest %s (commit: %s, built: %s)\n", version, commit, date)
	},
}
