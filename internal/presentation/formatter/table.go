package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/penwyp/remi-timeline/internal/util"
)

type align int

const (
	alignLeft align = iota
	alignRight
)

type TableFormatter struct {
	w     io.Writer
	width int
}

// NewTableFormatter draws box tables, fitting text columns to the terminal
// when w is one.
func NewTableFormatter(w io.Writer) *TableFormatter {
	return &TableFormatter{w: w, width: terminalWidth(w, 100)}
}

func (f *TableFormatter) Months(rows []MonthRow) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(f.w, "No dated posts yet.")
		return err
	}

	body := make([][]string, 0, len(rows))
	totalPosts, totalDays := 0, 0
	for _, r := range rows {
		body = append(body, []string{r.Month, r.Label, util.FormatCount(r.Posts), util.FormatCount(r.Days)})
		totalPosts += r.Posts
		totalDays += r.Days
	}
	footer := []string{"Total", util.Plural(len(rows), "month", "months"), util.FormatCount(totalPosts), util.FormatCount(totalDays)}

	return f.render(
		[]string{"Month", "Label", "Posts", "Days"},
		[]align{alignLeft, alignLeft, alignRight, alignRight},
		body, footer, -1)
}

func (f *TableFormatter) Days(report DayReport) error {
	if report.Requested != "" {
		fmt.Fprintf(f.w, "No posts in %s, showing closest month %s\n", report.Requested, report.Month)
	}
	if len(report.Days) == 0 {
		_, err := fmt.Fprintf(f.w, "No posts in %s.\n", report.Month)
		return err
	}

	body := make([][]string, 0, len(report.Days))
	total := 0
	for _, d := range report.Days {
		body = append(body, []string{d.Date, util.FormatCount(d.Posts), d.FirstPostTitle, d.FirstPostID})
		total += d.Posts
	}
	footer := []string{"Total", util.FormatCount(total), "", ""}

	return f.render(
		[]string{"Date", "Posts", "First post", "Post ID"},
		[]align{alignLeft, alignRight, alignLeft, alignLeft},
		body, footer, 2)
}

// render prints the table. flex is the column shrunk to fit the width,
// or -1 for none.
func (f *TableFormatter) render(headers []string, aligns []align, body [][]string, footer []string, flex int) error {
	widths := make([]int, len(headers))
	measure := func(row []string) {
		for i, cell := range row {
			if w := util.GetDisplayWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	measure(headers)
	for _, row := range body {
		measure(row)
	}
	measure(footer)

	if flex >= 0 {
		// Each column costs its width plus three cells of padding and rule.
		used := 1
		for _, w := range widths {
			used += w + 3
		}
		if over := used - f.width; over > 0 {
			widths[flex] -= over
			if widths[flex] < 8 {
				widths[flex] = 8
			}
		}
	}

	var b strings.Builder
	f.border(&b, widths, "┌", "┬", "┐")
	f.row(&b, headers, widths, nil)
	f.border(&b, widths, "├", "┼", "┤")
	for _, row := range body {
		f.row(&b, row, widths, aligns)
	}
	f.border(&b, widths, "├", "┼", "┤")
	f.row(&b, footer, widths, aligns)
	f.border(&b, widths, "└", "┴", "┘")

	_, err := io.WriteString(f.w, b.String())
	return err
}

func (f *TableFormatter) border(b *strings.Builder, widths []int, left, mid, right string) {
	b.WriteString(left)
	for i, w := range widths {
		b.WriteString(strings.Repeat("─", w+2))
		if i < len(widths)-1 {
			b.WriteString(mid)
		}
	}
	b.WriteString(right)
	b.WriteByte('\n')
}

func (f *TableFormatter) row(b *strings.Builder, cells []string, widths []int, aligns []align) {
	b.WriteString("│")
	for i, cell := range cells {
		cell = util.Truncate(cell, widths[i])
		b.WriteByte(' ')
		if aligns != nil && aligns[i] == alignRight {
			b.WriteString(util.PadLeft(cell, widths[i]))
		} else {
			b.WriteString(util.PadRight(cell, widths[i]))
		}
		b.WriteString(" │")
	}
	b.WriteByte('\n')
}
