package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/penwyp/remi-timeline/internal/presentation/formatter"
)

var (
	// Configuration
	cfgFile string

	// Data location
	dataDir string
	dbPath  string
	sphere  string

	// Output related
	outputFormat string
	timezone     string

	// System and debugging
	debug bool
	reset bool

	rootCmd = &cobra.Command{
		Use:   "remi-timeline [flags]",
		Short: "Month and day timeline for REMI sphere posts",
		Long: `remi-timeline indexes diary posts by the month they were taken and lets you
navigate them the way the REMI story timeline does.

Posts are read from JSONL exports in a directory (--dir) or from a SQLite
database filled by the import command (--db).

Examples:
  remi-timeline                                 # List populated months
  remi-timeline --dir ./export --output json    # Months of an export as JSON
  remi-timeline days 2024-03                    # Day buckets of March 2024
  remi-timeline days 2024-02 --closest          # Closest populated month instead
  remi-timeline browse                          # Interactive timeline and feed
  remi-timeline serve --addr :8080              # HTTP API
  remi-timeline import ./export --db posts.db   # Load an export into SQLite`,
		SilenceUsage: true,
		RunE:         runMonths,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"Config file (default ~/.remi-timeline/config.yaml)")

	// Input data configuration
	rootCmd.PersistentFlags().StringVar(&dataDir, "dir", "",
		"Directory of JSONL post exports (default ~/.remi-timeline/posts)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "",
		"SQLite post database; takes precedence over --dir")
	rootCmd.PersistentFlags().StringVar(&sphere, "sphere", "",
		"Only include posts of this sphere")

	// Output configuration
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table",
		"Output format (table, json, csv, summary)")
	rootCmd.PersistentFlags().StringVar(&timezone, "timezone", "",
		"Timezone for month boundaries (e.g., Asia/Tokyo, UTC; default Local)")

	// System and debugging
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"Enable debug logging to stderr")
	rootCmd.PersistentFlags().BoolVarP(&reset, "reset", "r", false,
		"Clear the parse cache before loading")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func runMonths(cmd *cobra.Command, args []string) error {
	f, err := formatter.New(outputFormat, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	env, err := setup(cmd, true)
	if err != nil {
		return err
	}
	defer env.Close()

	posts, err := env.loader.Load(context.Background())
	if err != nil {
		return fmt.Errorf("failed to load posts: %w", err)
	}
	return f.Months(formatter.BuildMonthRows(posts, env.loc))
}
