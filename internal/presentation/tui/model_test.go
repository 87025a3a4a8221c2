package tui

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/remi-timeline/internal/core/model"
	"github.com/penwyp/remi-timeline/internal/core/timeline"
	"github.com/penwyp/remi-timeline/internal/data/watcher"
)

// stepScheduler holds timers until the test fires them.
type stepScheduler struct {
	mu     sync.Mutex
	timers []*stepTimer
}

type stepTimer struct {
	f       func()
	stopped bool
}

func (t *stepTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

func (s *stepScheduler) AfterFunc(_ time.Duration, f func()) timeline.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &stepTimer{f: f}
	s.timers = append(s.timers, t)
	return t
}

func (s *stepScheduler) FireAll() {
	s.mu.Lock()
	timers := s.timers
	s.timers = nil
	s.mu.Unlock()
	for _, t := range timers {
		if !t.stopped {
			t.stopped = true
			t.f()
		}
	}
}

// Feed order, newest first.
func feedPosts() []model.Post {
	return []model.Post{
		{ID: "jul", DateTaken: "2024-07-01T10:00:00Z", DisplayName: "Beach"},
		{ID: "mar-c", DateTaken: "2024-03-20T10:00:00Z", DisplayName: "Park"},
		{ID: "mar-a", DateTaken: "2024-03-05T09:00:00Z", DisplayName: "Lunch"},
		{ID: "mar-b", DateTaken: "2024-03-05T08:00:00Z", DisplayName: "Breakfast"},
		{ID: "jan", DateTaken: "2024-01-10T10:00:00Z", DisplayName: "Snow", Caption: "first snow"},
	}
}

func newTestModel(t *testing.T, posts []model.Post) (*Model, *stepScheduler) {
	t.Helper()
	sched := &stepScheduler{}
	m := NewModel(Options{
		Posts:    posts,
		Location: time.UTC,
		Timeline: timeline.Options{
			Now:       func() time.Time { return time.Date(2026, time.October, 17, 12, 0, 0, 0, time.UTC) },
			Scheduler: sched,
		},
	})
	t.Cleanup(func() { m.Controller().Close() })
	return m, sched
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m *Model, msgs ...tea.Msg) {
	for _, msg := range msgs {
		m.Update(msg)
	}
}

func ym(y int, mo time.Month) timeline.Month {
	return timeline.Month{Year: y, Month: mo}
}

func TestNewModelFollowsFeed(t *testing.T) {
	m, _ := newTestModel(t, feedPosts())

	snap := m.Controller().Snapshot()
	assert.Equal(t, ym(2024, time.July), snap.Current)
	assert.True(t, snap.FeedDrives)
	assert.False(t, snap.Interacting)
	assert.Equal(t, "2024", snap.YearText)
	assert.Equal(t, "July", snap.MonthText)
}

func TestFeedScrollDrivesTimeline(t *testing.T) {
	m, _ := newTestModel(t, feedPosts())

	press(m, runes("j"))
	assert.Equal(t, 1, m.cursor)
	snap := m.Controller().Snapshot()
	assert.Equal(t, ym(2024, time.March), snap.Current)
	assert.Equal(t, "March", snap.MonthText)

	press(m, tea.KeyMsg{Type: tea.KeyEnd})
	assert.Equal(t, 4, m.cursor)
	assert.Equal(t, ym(2024, time.January), m.Controller().Snapshot().Current)
}

func TestTimelineInteractionSuppressesMirrorsUntilDecay(t *testing.T) {
	m, sched := newTestModel(t, feedPosts())
	var sent []tea.Msg
	m.SetSender(func(msg tea.Msg) { sent = append(sent, msg) })

	press(m, runes("h"))
	snap := m.Controller().Snapshot()
	assert.Equal(t, ym(2024, time.March), snap.Current)
	assert.False(t, snap.FeedDrives, "timeline interaction takes control from the feed")
	assert.True(t, snap.Interacting)

	// Scrolling the feed hands control back while the window is open.
	press(m, runes("j"), runes("j"), runes("j"), runes("j"))
	snap = m.Controller().Snapshot()
	assert.Equal(t, ym(2024, time.January), snap.Current)
	assert.Equal(t, "March", snap.MonthText, "mirrors hold during the window")

	sched.FireAll()
	snap = m.Controller().Snapshot()
	assert.False(t, snap.Interacting)
	assert.Equal(t, "January", snap.MonthText)
	require.Len(t, sent, 1)
	assert.IsType(t, decayMsg{}, sent[0])

	_, cmd := m.Update(sent[0])
	assert.Nil(t, cmd)
}

func TestSelectDayScrollsFeed(t *testing.T) {
	m, _ := newTestModel(t, feedPosts())

	press(m, runes("h"), tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, paneTimeline, m.focus)

	days := m.Controller().Snapshot().Days
	require.Len(t, days, 2)
	assert.Equal(t, 20, days[0].Day)

	press(m, runes("j"), tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, 1, m.dayCursor)
	assert.Equal(t, 3, m.cursor, "day 5 starts with the earliest post")
	snap := m.Controller().Snapshot()
	assert.Equal(t, ym(2024, time.March), snap.Current)
	assert.False(t, snap.FeedDrives)

	// Day cursor does not run past the list.
	press(m, runes("j"))
	assert.Equal(t, 1, m.dayCursor)
}

func TestYearEdit(t *testing.T) {
	m, _ := newTestModel(t, feedPosts())

	t.Run("commit moves to closest month", func(t *testing.T) {
		_, cmd := m.Update(runes("y"))
		assert.NotNil(t, cmd)
		require.Equal(t, editYear, m.editing)
		assert.Equal(t, "2024", m.input.Value())

		for i := 0; i < 4; i++ {
			press(m, tea.KeyMsg{Type: tea.KeyBackspace})
		}
		press(m, runes("2"), runes("0"), runes("2"), runes("3"))
		assert.Equal(t, "2023", m.Controller().Snapshot().YearText)

		press(m, tea.KeyMsg{Type: tea.KeyEnter})
		snap := m.Controller().Snapshot()
		assert.Equal(t, editNone, m.editing)
		assert.False(t, snap.EditingYear)
		assert.Equal(t, ym(2024, time.January), snap.Current)
		assert.Equal(t, "2024", snap.YearText)
		assert.Equal(t, "January", snap.MonthText)
	})

	t.Run("escape reverts", func(t *testing.T) {
		press(m, runes("m"), tea.KeyMsg{Type: tea.KeyBackspace})
		require.Equal(t, editMonth, m.editing)
		assert.Equal(t, "Januar", m.Controller().Snapshot().MonthText)

		press(m, tea.KeyMsg{Type: tea.KeyEsc})
		assert.Equal(t, editNone, m.editing)
		assert.Equal(t, "January", m.Controller().Snapshot().MonthText)
	})

	t.Run("quit keys stay inert while typing", func(t *testing.T) {
		press(m, runes("m"), runes("q"))
		assert.False(t, m.quitting)
		press(m, tea.KeyMsg{Type: tea.KeyEsc})
	})
}

func TestMouseWheel(t *testing.T) {
	m, _ := newTestModel(t, feedPosts())

	press(m, tea.MouseMsg{X: 3, Y: 4, Action: tea.MouseActionPress, Button: tea.MouseButtonWheelUp})
	assert.Equal(t, ym(2024, time.March), m.Controller().Snapshot().Current)

	press(m, tea.MouseMsg{X: 3, Y: 4, Action: tea.MouseActionPress, Button: tea.MouseButtonWheelDown})
	assert.Equal(t, ym(2024, time.July), m.Controller().Snapshot().Current)

	press(m, tea.MouseMsg{X: timelineWidth + 5, Y: 4, Action: tea.MouseActionPress, Button: tea.MouseButtonWheelDown})
	assert.Equal(t, 1, m.cursor)

	press(m, tea.MouseMsg{X: 3, Y: 4, Action: tea.MouseActionRelease, Button: tea.MouseButtonWheelUp})
	assert.Equal(t, 1, m.cursor)
}

func TestReloadKeepsCursorOnPost(t *testing.T) {
	m, _ := newTestModel(t, feedPosts())
	press(m, runes("j"), runes("j"))
	require.Equal(t, "mar-a", m.posts[m.cursor].ID)

	fresh := append([]model.Post{{ID: "aug", DateTaken: "2024-08-02T10:00:00Z", DisplayName: "Hike"}}, feedPosts()...)
	press(m, postsMsg{posts: fresh})
	assert.Equal(t, "mar-a", m.posts[m.cursor].ID)
	assert.Equal(t, 3, m.cursor)
	assert.Len(t, m.Controller().Snapshot().Available, 4)

	press(m, postsMsg{err: errors.New("disk gone")})
	assert.Contains(t, m.View(), "reload failed")
	assert.Len(t, m.posts, 6, "failed reload keeps the previous feed")
}

func TestReloadCommands(t *testing.T) {
	changes := make(chan watcher.Change, 1)
	reloaded := 0
	sched := &stepScheduler{}
	m := NewModel(Options{
		Location: time.UTC,
		Timeline: timeline.Options{Scheduler: sched},
		Changes:  changes,
		Reload: func(ctx context.Context) ([]model.Post, error) {
			reloaded++
			return feedPosts(), nil
		},
	})
	defer m.Controller().Close()

	cmd := m.Init()
	require.NotNil(t, cmd)
	changes <- watcher.Change{Paths: []string{"a.jsonl"}}
	msg := cmd()
	assert.Equal(t, changeMsg{Paths: []string{"a.jsonl"}}, msg)

	_, cmd = m.Update(msg)
	assert.NotNil(t, cmd)

	got := m.reloadCmd()()
	require.IsType(t, postsMsg{}, got)
	assert.Equal(t, 1, reloaded)
	press(m, got)
	assert.Len(t, m.posts, 5)
	assert.Equal(t, ym(2024, time.July), m.Controller().Snapshot().Current)

	close(changes)
	assert.Nil(t, waitForChange(changes)())
	assert.Nil(t, waitForChange(nil))
}

func TestEmptyState(t *testing.T) {
	m, _ := newTestModel(t, nil)

	snap := m.Controller().Snapshot()
	assert.True(t, snap.Empty)
	assert.True(t, snap.PrevDisabled)
	assert.True(t, snap.NextDisabled)
	assert.Equal(t, ym(2026, time.October), snap.Current)

	view := m.View()
	assert.Contains(t, view, "No posts yet")
	assert.Contains(t, view, "Feed is empty")

	press(m, runes("j"), runes("l"), tea.KeyMsg{Type: tea.KeyTab}, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, ym(2026, time.October), m.Controller().Snapshot().Current)
}

func TestViewAndQuit(t *testing.T) {
	m, _ := newTestModel(t, feedPosts())
	press(m, tea.WindowSizeMsg{Width: 120, Height: 30})

	view := m.View()
	assert.Contains(t, view, "July")
	assert.Contains(t, view, "2024-03-20")
	assert.Contains(t, view, "first snow")

	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())
}
