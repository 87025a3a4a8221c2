package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/penwyp/remi-timeline/internal/core/model"
	"github.com/penwyp/remi-timeline/internal/core/timeline"
	"github.com/penwyp/remi-timeline/internal/presentation/formatter"
	"github.com/penwyp/remi-timeline/internal/util"
)

// errNoPosts is returned when there is nothing to bucket.
var errNoPosts = errors.New("no dated posts found")

var daysClosest bool

var daysCmd = &cobra.Command{
	Use:   "days [YYYY-MM]",
	Short: "List the populated days of a month",
	Long: `Lists the days of a month that have posts, most recent day first, with the
first post of each day. Without an argument the newest populated month is used.

A month without posts is an error unless --closest is given, in which case the
closest populated month is shown instead (ties go to the earlier month).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDays,
}

func init() {
	rootCmd.AddCommand(daysCmd)

	daysCmd.Flags().BoolVar(&daysClosest, "closest", false,
		"Fall back to the closest populated month")
}

func runDays(cmd *cobra.Command, args []string) error {
	f, err := formatter.New(outputFormat, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	var requested timeline.Month
	if len(args) == 1 {
		if requested, err = timeline.ParseMonth(args[0]); err != nil {
			return err
		}
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

	report, err := dayReport(posts, requested, daysClosest, env.loc)
	if err != nil {
		return err
	}
	return f.Days(report)
}

// dayReport picks the month to show and buckets its days. A zero requested
// month means the newest populated one.
func dayReport(posts []model.Post, requested timeline.Month, closest bool, loc *time.Location) (formatter.DayReport, error) {
	month, err := resolveMonth(timeline.BuildMonthIndex(posts, loc), requested, closest)
	if err != nil {
		return formatter.DayReport{}, err
	}
	report := formatter.BuildDayReport(posts, month, loc)
	if !requested.IsZero() && month != requested {
		report.Requested = requested.String()
	}
	return report, nil
}

func resolveMonth(months []timeline.Month, requested timeline.Month, closest bool) (timeline.Month, error) {
	if len(months) == 0 {
		return timeline.Month{}, errNoPosts
	}
	if requested.IsZero() {
		return months[len(months)-1], nil
	}
	if timeline.Contains(months, requested) {
		return requested, nil
	}
	if !closest {
		return timeline.Month{}, fmt.Errorf("no posts in %s (use --closest to show the nearest month)", requested.Label())
	}
	resolved, _ := timeline.ResolveClosestMonth(requested, months)
	util.LogDebugf("Resolved %s to closest populated month %s", requested, resolved)
	return resolved, nil
}
