package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/penwyp/remi-timeline/internal/core/model"
	"github.com/penwyp/remi-timeline/internal/core/timeline"
	"github.com/penwyp/remi-timeline/internal/util"
)

const defaultWidth = 100

// View renders both panes and the status bar.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	snap := m.ctrl.Snapshot()
	rows := m.feedRows()

	left := m.renderTimeline(snap, rows)
	right := m.renderFeed(rows)

	leftStyle, rightStyle := PaneStyle, FocusedPaneStyle
	if m.focus == paneTimeline {
		leftStyle, rightStyle = FocusedPaneStyle, PaneStyle
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		leftStyle.Width(timelineWidth-2).Height(rows).Render(left),
		rightStyle.Width(m.feedWidth()).Height(rows).Render(right),
	)
	return lipgloss.JoinVertical(lipgloss.Left, body, m.renderStatusBar(snap))
}

func (m *Model) feedWidth() int {
	width := m.width
	if width <= 0 {
		width = defaultWidth
	}
	w := width - timelineWidth - 2
	if w < 20 {
		w = 20
	}
	return w
}

func (m *Model) renderTimeline(snap timeline.Snapshot, rows int) string {
	var b strings.Builder

	prev := ArrowStyle.Render("◀")
	if snap.PrevDisabled {
		prev = DisabledArrowStyle.Render("◁")
	}
	next := ArrowStyle.Render("▶")
	if snap.NextDisabled {
		next = DisabledArrowStyle.Render("▷")
	}

	year := HeaderStyle.Render(snap.YearText)
	if m.editing == editYear {
		year = EditingField.Render(m.input.View())
	}
	month := HeaderStyle.Render(snap.MonthText)
	if m.editing == editMonth {
		month = EditingField.Render(m.input.View())
	}
	fmt.Fprintf(&b, "%s %s %s %s\n", prev, year, month, next)

	state := "following feed"
	switch {
	case snap.Interacting:
		state = "navigating"
	case !snap.FeedDrives:
		state = "holding"
	}
	b.WriteString(MutedItem.Render(fmt.Sprintf("%s · %s", util.Plural(snap.PostCount, "post", "posts"), state)))
	b.WriteString("\n\n")

	if snap.Empty {
		b.WriteString(NormalItem.Render("No posts yet"))
		b.WriteString("\n")
		b.WriteString(MutedItem.Render("Import a sphere export to begin."))
		return b.String()
	}

	cursor := m.dayCursor
	if cursor >= len(snap.Days) {
		cursor = len(snap.Days) - 1
	}
	limit := rows - 3
	start := 0
	if cursor >= limit && limit > 0 {
		start = cursor - limit + 1
	}
	for i := start; i < len(snap.Days) && i-start < limit; i++ {
		d := snap.Days[i]
		date := time.Date(snap.Current.Year, snap.Current.Month, d.Day, 0, 0, 0, 0, m.loc)
		line := fmt.Sprintf("%s %02d  %s", date.Format("Mon"), d.Day,
			util.PadLeft(util.Plural(d.PostCount, "post", "posts"), 9))
		line = util.PadRight(line, timelineWidth-4)
		if i == cursor && m.focus == paneTimeline {
			b.WriteString(SelectedItem.Render(line))
		} else {
			b.WriteString(NormalItem.Render(line))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) renderFeed(rows int) string {
	if len(m.posts) == 0 {
		return MutedItem.Render("Feed is empty")
	}

	width := m.feedWidth()
	var b strings.Builder
	end := m.offset + rows
	if end > len(m.posts) {
		end = len(m.posts)
	}
	for i := m.offset; i < end; i++ {
		line := util.PadRight(util.Truncate(m.feedLine(m.posts[i]), width), width)
		if i == m.cursor {
			b.WriteString(SelectedItem.Render(line))
		} else {
			b.WriteString(NormalItem.Render(line))
		}
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m *Model) feedLine(p model.Post) string {
	date := "undated   "
	if t, ok := p.TakenAt(m.loc); ok {
		date = t.Format("2006-01-02")
	}
	line := date + "  " + p.DisplayName
	if p.Caption != "" {
		line += " · " + p.Caption
	}
	return line
}

func (m *Model) renderStatusBar(snap timeline.Snapshot) string {
	var parts []string
	for _, k := range keys.hints() {
		h := k.Help()
		parts = append(parts, StatusBarKey.Render(h.Key)+" "+h.Desc)
	}
	left := strings.Join(parts, "  ")
	if m.err != nil {
		left = ErrorStyle.Render("reload failed: "+m.err.Error()) + "  " + left
	}
	right := fmt.Sprintf("%s · %d months", snap.Current.Label(), len(snap.Available))

	width := m.width
	if width <= 0 {
		width = defaultWidth
	}
	gap := width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return StatusBar.Render(left + strings.Repeat(" ", gap) + right)
}
