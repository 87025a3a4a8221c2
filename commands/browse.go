package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/penwyp/remi-timeline/internal/core/constants"
	"github.com/penwyp/remi-timeline/internal/core/model"
	"github.com/penwyp/remi-timeline/internal/core/timeline"
	"github.com/penwyp/remi-timeline/internal/data/watcher"
	"github.com/penwyp/remi-timeline/internal/presentation/tui"
	"github.com/penwyp/remi-timeline/internal/util"
)

var (
	browseNoWatch bool
	browseNoMouse bool
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse posts with the interactive timeline",
	Long: `Opens a two-pane browser: the month timeline on the left and the post feed
on the right. Scrolling the feed moves the timeline to the month of the post
under the cursor; navigating the timeline scrolls the feed.

Keys:
  h/←  l/→   previous/next populated month
  y  m       edit year / month (enter to apply, esc to cancel)
  j/k        scroll the focused pane
  tab        switch focus between feed and timeline
  enter      on a day: jump the feed to its first post
  q          quit`,
	RunE: runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)

	browseCmd.Flags().BoolVar(&browseNoWatch, "no-watch", false,
		"Do not reload when the post data changes")
	browseCmd.Flags().BoolVar(&browseNoMouse, "no-mouse", false,
		"Disable mouse wheel support")
}

func runBrowse(cmd *cobra.Command, args []string) error {
	env, err := setup(cmd, false)
	if err != nil {
		return err
	}
	defer env.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	posts, err := env.loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load posts: %w", err)
	}
	util.LogInfo("Browsing posts", util.F("posts", len(posts)), util.F("source", env.loader.Source().Describe()))

	var changes <-chan watcher.Change
	if !browseNoWatch {
		changes = env.watchChanges(ctx)
	}

	m := tui.NewModel(tui.Options{
		Posts:    posts,
		Location: env.loc,
		Timeline: timeline.Options{
			DecayWindow:  env.cfg.DecayWindow,
			WheelLimiter: wheelLimiter(env.cfg.WheelRatePerSecond),
		},
		Reload: func(ctx context.Context) ([]model.Post, error) {
			return env.loader.Load(ctx)
		},
		Changes: changes,
	})
	defer m.Controller().Close()

	opts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if !browseNoMouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	p := tea.NewProgram(m, opts...)
	m.SetSender(p.Send)

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("browser failed: %w", err)
	}
	return nil
}

// wheelLimiter paces wheel navigation; a zero rate disables pacing.
func wheelLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(perSecond), constants.DefaultWheelBurst)
}

// watchChanges forwards coalesced data changes after dropping stale cache
// entries. A watcher that cannot start leaves the caller without live
// reload.
func (e *runtimeEnv) watchChanges(ctx context.Context) <-chan watcher.Change {
	raw, err := e.newWatcher().Watch(ctx)
	if err != nil {
		util.LogWarnf("Live reload disabled: %v", err)
		return nil
	}

	out := make(chan watcher.Change, 1)
	go func() {
		defer close(out)
		for change := range raw {
			e.invalidate(change)
			select {
			case out <- change:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
