package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/penwyp/remi-timeline/internal/util"
)

// SummaryFormatter prints a histogram of posts per month or day.
type SummaryFormatter struct {
	w     io.Writer
	width int
}

func NewSummaryFormatter(w io.Writer) *SummaryFormatter {
	return &SummaryFormatter{w: w, width: terminalWidth(w, 80)}
}

func (f *SummaryFormatter) Months(rows []MonthRow) error {
	var b strings.Builder
	b.WriteString(util.FormatHeaderTitle("Posts per month"))
	b.WriteByte('\n')
	if len(rows) == 0 {
		b.WriteString("No dated posts yet.\n")
		_, err := io.WriteString(f.w, b.String())
		return err
	}

	max, total := 0, 0
	for _, r := range rows {
		if r.Posts > max {
			max = r.Posts
		}
		total += r.Posts
	}
	for _, r := range rows {
		f.bar(&b, r.Month, r.Posts, max)
	}
	fmt.Fprintf(&b, "%s across %s, %s to %s\n",
		util.Plural(total, "post", "posts"),
		util.Plural(len(rows), "month", "months"),
		rows[0].Label, rows[len(rows)-1].Label)

	_, err := io.WriteString(f.w, b.String())
	return err
}

func (f *SummaryFormatter) Days(report DayReport) error {
	var b strings.Builder
	b.WriteString(util.FormatHeaderTitle("Posts per day, " + report.Month))
	b.WriteByte('\n')
	if report.Requested != "" {
		b.WriteString(util.FormatMuted(fmt.Sprintf("(closest populated month to %s)", report.Requested)))
		b.WriteByte('\n')
	}

	max := 0
	for _, d := range report.Days {
		if d.Posts > max {
			max = d.Posts
		}
	}
	for _, d := range report.Days {
		f.bar(&b, d.Date, d.Posts, max)
	}
	if len(report.Days) == 0 {
		b.WriteString("No posts this month.\n")
	}

	_, err := io.WriteString(f.w, b.String())
	return err
}

func (f *SummaryFormatter) bar(b *strings.Builder, label string, value, max int) {
	barWidth := f.width - util.GetDisplayWidth(label) - 12
	if barWidth < 10 {
		barWidth = 10
	}
	fmt.Fprintf(b, "%s %s %s\n", label, util.PadRight(util.Bar(value, max, barWidth), barWidth), util.PadLeft(util.FormatCount(value), 6))
}
