package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/penwyp/remi-timeline/internal/data/watcher"
	"github.com/penwyp/remi-timeline/internal/presentation/api"
	"github.com/penwyp/remi-timeline/internal/util"
)

const shutdownTimeout = 10 * time.Second

var (
	serveAddr    string
	serveNoWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the timeline over HTTP",
	Long: `Starts an HTTP server exposing the month index and day buckets:

  GET /health
  GET /api/months
  GET /api/months/{YYYY-MM}/days[?closest=true]
  GET /api/closest?month=YYYY-MM

Posts are reloaded when the data changes unless --no-watch is set.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "",
		"Listen address (default 127.0.0.1:8080)")
	serveCmd.Flags().BoolVar(&serveNoWatch, "no-watch", false,
		"Do not reload when the post data changes")
}

func runServe(cmd *cobra.Command, args []string) error {
	env, err := setup(cmd, true)
	if err != nil {
		return err
	}
	defer env.Close()

	addr := env.cfg.Serve.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	posts, err := env.loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load posts: %w", err)
	}
	server := api.NewServer(posts, env.loc)

	if !serveNoWatch {
		if changes := env.watchChanges(ctx); changes != nil {
			go env.reloadInto(ctx, server, changes)
		}
	}

	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Router(env.cfg.Serve.CORSOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		util.LogInfo("Listening", util.F("addr", addr), util.F("posts", len(posts)))
		fmt.Fprintf(cmd.OutOrStdout(), "Serving %d posts on http://%s\n", len(posts), addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	util.LogInfo("Server stopped")
	return nil
}

// reloadInto swaps the served posts after every data change. A failed
// reload keeps the previous posts.
func (e *runtimeEnv) reloadInto(ctx context.Context, server *api.Server, changes <-chan watcher.Change) {
	for change := range changes {
		posts, err := e.loader.Load(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			util.LogWarnf("Reload failed, keeping previous posts: %v", err)
			continue
		}
		server.SetPosts(posts)
		util.LogInfo("Posts reloaded", util.F("changed", len(change.Paths)), util.F("posts", len(posts)))
	}
}
