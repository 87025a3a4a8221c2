package formatter

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/penwyp/remi-timeline/internal/core/model"
	"github.com/penwyp/remi-timeline/internal/core/timeline"
)

// MonthRow is one populated month.
type MonthRow struct {
	Month string `json:"month"`
	Label string `json:"label"`
	Posts int    `json:"posts"`
	Days  int    `json:"days"`
}

// DayRow is one populated day of a month.
type DayRow struct {
	Day            int    `json:"day"`
	Date           string `json:"date"`
	Posts          int    `json:"posts"`
	FirstPostID    string `json:"firstPostId"`
	FirstPostTitle string `json:"firstPostTitle"`
}

// DayReport lists the days of one month. Requested is set when the month
// was resolved from a different, unpopulated one.
type DayReport struct {
	Month     string   `json:"month"`
	Requested string   `json:"requested,omitempty"`
	Days      []DayRow `json:"days"`
}

// Formatter renders timeline reports.
type Formatter interface {
	Months(rows []MonthRow) error
	Days(report DayReport) error
}

// Formats lists the accepted --output values.
var Formats = []string{"table", "json", "csv", "summary"}

// New returns the formatter for format writing to w.
func New(format string, w io.Writer) (Formatter, error) {
	switch strings.ToLower(format) {
	case "", "table":
		return NewTableFormatter(w), nil
	case "json":
		return NewJSONFormatter(w), nil
	case "csv":
		return NewCSVFormatter(w), nil
	case "summary":
		return NewSummaryFormatter(w), nil
	}
	return nil, fmt.Errorf("unknown output format %q (want one of %s)", format, strings.Join(Formats, ", "))
}

// BuildMonthRows summarizes posts per populated month, oldest first.
func BuildMonthRows(posts []model.Post, loc *time.Location) []MonthRow {
	counts := timeline.MonthCounts(posts, loc)
	months := timeline.BuildMonthIndex(posts, loc)
	rows := make([]MonthRow, 0, len(months))
	for _, m := range months {
		rows = append(rows, MonthRow{
			Month: m.String(),
			Label: m.Label(),
			Posts: counts[m],
			Days:  len(timeline.BucketDays(posts, m, loc)),
		})
	}
	return rows
}

// BuildDayReport lists the days of month, most recent first.
func BuildDayReport(posts []model.Post, month timeline.Month, loc *time.Location) DayReport {
	titles := make(map[string]string, len(posts))
	for _, p := range posts {
		titles[p.ID] = p.Title()
	}

	items := timeline.BucketDays(posts, month, loc)
	report := DayReport{Month: month.String(), Days: make([]DayRow, 0, len(items))}
	for _, item := range items {
		report.Days = append(report.Days, DayRow{
			Day:            item.Day,
			Date:           fmt.Sprintf("%s-%02d", month, item.Day),
			Posts:          item.PostCount,
			FirstPostID:    item.FirstPostID,
			FirstPostTitle: titles[item.FirstPostID],
		})
	}
	return report
}

// terminalWidth reports the width of w when it is a terminal, else
// fallback.
func terminalWidth(w io.Writer, fallback int) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return fallback
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width < 40 {
		return fallback
	}
	return width
}
