package cli

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rhysd/reqwest/cache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and prune the response cache",
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached responses",
	RunE:  runCacheList,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove cached responses",
	RunE:  runCacheClear,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cacheClearCmd)

	cacheClearCmd.Flags().Duration("older-than", 0, "Only remove entries older than this (0 removes everything)")
}

// openStore opens the cache database named by --cache-db.
func openStore(cmd *cobra.Command) (*cache.SQLiteStore, error) {
	cacheDB, _ := cmd.Flags().GetString("cache-db")
	if cacheDB == "" {
		return nil, fmt.Errorf("cache database path is required (use --cache-db)")
	}
	store, err := cache.NewSQLiteStore(cacheDB)
	if err != nil {
		return nil, fmt.Errorf("failed to open response cache %q: %w", cacheDB, err)
	}
	return store, nil
}

func runCacheList(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	summaries, err := store.List(cmd.Context())
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		fmt.Println("Cache is empty.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMETHOD\tSTATUS\tSIZE\tAGE\tURL")
	for _, s := range summaries {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%s\n",
			s.ID, s.Method, s.StatusCode, s.Size,
			time.Since(s.StoredAt).Round(time.Second), s.URL)
	}
	return w.Flush()
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	olderThan, _ := cmd.Flags().GetDuration("older-than")
	deleted, err := store.Cleanup(cmd.Context(), olderThan)
	if err != nil {
		return err
	}

	fmt.Printf("Removed %d cached response(s).\n", deleted)
	return nil
}
