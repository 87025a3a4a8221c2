package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/penwyp/remi-timeline/internal/config"
	"github.com/penwyp/remi-timeline/internal/data/loader"
	"github.com/penwyp/remi-timeline/internal/data/store"
	"github.com/penwyp/remi-timeline/internal/util"
)

var importCmd = &cobra.Command{
	Use:   "import <dir>",
	Short: "Load JSONL post exports into the SQLite database",
	Long: `Reads every *.jsonl export below <dir> and upserts the posts into the database
given by --db (or db_path in the config). Posts without an id get a stable id
derived from their file and line, so importing the same export twice does not
duplicate posts. With --sphere, posts that carry no sphere are assigned to it.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if !cfg.UsesDatabase() {
		return errors.New("import needs a database: pass --db or set db_path")
	}
	loc, err := initRuntime(cfg, true)
	if err != nil {
		return err
	}

	dir := config.ExpandPath(args[0])
	ctx := context.Background()
	posts, err := loader.New(loader.NewDirSource(dir, cfg.Concurrency, nil), "", loc).Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", dir, err)
	}
	if cfg.Sphere != "" {
		for i := range posts {
			if posts[i].SphereID == "" {
				posts[i].SphereID = cfg.Sphere
			}
		}
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	saved, err := st.SavePosts(ctx, posts)
	if err != nil {
		return fmt.Errorf("failed to save posts: %w", err)
	}
	total, err := st.Count(ctx)
	if err != nil {
		return err
	}

	util.LogInfo("Import finished", util.F("dir", dir), util.F("saved", saved), util.F("total", total))
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %s from %s into %s (%s stored)\n",
		util.Plural(saved, "post", "posts"), dir, cfg.DBPath, util.FormatCount(total))
	return nil
}
