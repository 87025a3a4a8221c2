package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/penwyp/remi-timeline/internal/core/model"
	"github.com/penwyp/remi-timeline/internal/core/timeline"
	"github.com/penwyp/remi-timeline/internal/data/watcher"
	"github.com/penwyp/remi-timeline/internal/util"
)

const (
	timelineWidth     = 34
	defaultFeedHeight = 20
	reloadTimeout     = 30 * time.Second
)

type pane int

const (
	paneFeed pane = iota
	paneTimeline
)

type editField int

const (
	editNone editField = iota
	editYear
	editMonth
)

// decayMsg is sent when the timeline interaction window elapses.
type decayMsg struct{}

// changeMsg carries a coalesced file change from the watcher.
type changeMsg watcher.Change

// postsMsg delivers a reloaded post set.
type postsMsg struct {
	posts []model.Post
	err   error
}

// Options configures the browser.
type Options struct {
	Posts    []model.Post
	Location *time.Location

	// Timeline carries decay window, scheduler and wheel limiter settings.
	// Its callbacks are owned by the browser and are overwritten.
	Timeline timeline.Options

	// Reload fetches a fresh post set after Changes fires.
	Reload  func(ctx context.Context) ([]model.Post, error)
	Changes <-chan watcher.Change
}

// Model is the bubbletea model for the two-pane browser: the timeline
// widget on the left and the post feed on the right. The feed decides
// when it may drive the timeline: scrolling it hands control to the feed,
// any timeline interaction takes it back.
type Model struct {
	ctrl *timeline.Controller
	loc  *time.Location

	posts  []model.Post
	index  map[string]int
	cursor int
	offset int

	focus     pane
	dayCursor int
	editing   editField
	input     textinput.Model

	width  int
	height int

	send    func(tea.Msg)
	reload  func(ctx context.Context) ([]model.Post, error)
	changes <-chan watcher.Change

	err      error
	quitting bool
}

// NewModel builds the browser and seeds the timeline with opts.Posts.
func NewModel(opts Options) *Model {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	ti := textinput.New()
	ti.Prompt = ""
	ti.Width = 10

	m := &Model{
		loc:     loc,
		input:   ti,
		reload:  opts.Reload,
		changes: opts.Changes,
	}

	tlOpts := opts.Timeline
	tlOpts.Location = loc
	tlOpts.OnUserInteraction = m.onTimelineUserInteraction
	tlOpts.OnScrollToPost = m.scrollToPost
	tlOpts.OnChange = m.onTimelineChange
	m.ctrl = timeline.NewController(tlOpts)

	m.setPosts(opts.Posts)
	m.ctrl.SetFeedDrive(true)
	m.reportFeedDate()
	return m
}

// SetSender wires asynchronous timeline updates into a running program.
// Call it with tea.Program.Send before Run.
func (m *Model) SetSender(send func(tea.Msg)) {
	m.send = send
}

// Controller exposes the timeline controller.
func (m *Model) Controller() *timeline.Controller {
	return m.ctrl
}

// Init starts listening for file changes.
func (m *Model) Init() tea.Cmd {
	return waitForChange(m.changes)
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ensureVisible()
		return m, nil

	case decayMsg:
		return m, nil

	case changeMsg:
		util.LogDebugf("browse: %d changed path(s), reloading", len(msg.Paths))
		return m, tea.Batch(m.reloadCmd(), waitForChange(m.changes))

	case postsMsg:
		if msg.err != nil {
			m.err = msg.err
			util.LogWarnf("browse: reload failed: %v", msg.err)
			return m, nil
		}
		m.err = nil
		m.setPosts(msg.posts)
		m.reportFeedDate()
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		if m.editing != editNone {
			return m.handleEditKey(msg)
		}
		return m.handleKey(msg)
	}

	if m.editing != editNone {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		m.quitting = true
		m.ctrl.Close()
		return m, tea.Quit

	case key.Matches(msg, keys.Prev):
		m.ctrl.Previous()
		m.dayCursor = 0

	case key.Matches(msg, keys.Next):
		m.ctrl.Next()
		m.dayCursor = 0

	case key.Matches(msg, keys.EditYear):
		snap := m.ctrl.Snapshot()
		m.ctrl.BeginYearEdit()
		return m, m.startEditing(editYear, snap.YearText, 4)

	case key.Matches(msg, keys.EditMonth):
		snap := m.ctrl.Snapshot()
		m.ctrl.BeginMonthEdit()
		return m, m.startEditing(editMonth, snap.MonthText, 9)

	case key.Matches(msg, keys.Focus):
		if m.focus == paneFeed {
			m.focus = paneTimeline
		} else {
			m.focus = paneFeed
		}

	case key.Matches(msg, keys.Up):
		m.move(-1)

	case key.Matches(msg, keys.Down):
		m.move(1)

	case key.Matches(msg, keys.Top):
		if m.focus == paneFeed {
			m.moveFeed(-m.cursor)
		}

	case key.Matches(msg, keys.Bottom):
		if m.focus == paneFeed {
			m.moveFeed(len(m.posts) - 1 - m.cursor)
		}

	case key.Matches(msg, keys.Enter):
		if m.focus == paneTimeline {
			days := m.ctrl.Snapshot().Days
			if m.dayCursor < len(days) {
				m.ctrl.SelectDay(days[m.dayCursor].Day)
			}
		}
	}
	return m, nil
}

func (m *Model) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		m.quitting = true
		m.ctrl.Close()
		return m, tea.Quit

	case key.Matches(msg, keys.Enter):
		if m.editing == editYear {
			m.ctrl.CommitYear()
		} else {
			m.ctrl.CommitMonth()
		}
		m.stopEditing()
		return m, nil

	case key.Matches(msg, keys.Escape):
		if m.editing == editYear {
			m.ctrl.CancelYearEdit()
		} else {
			m.ctrl.CancelMonthEdit()
		}
		m.stopEditing()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.editing == editYear {
		m.ctrl.SetYearText(m.input.Value())
	} else {
		m.ctrl.SetMonthText(m.input.Value())
	}
	return m, cmd
}

func (m *Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress {
		return m, nil
	}
	delta := 0
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		delta = -1
	case tea.MouseButtonWheelDown:
		delta = 1
	default:
		return m, nil
	}

	if msg.X < timelineWidth {
		if m.ctrl.Wheel(delta) {
			m.dayCursor = 0
		}
		return m, nil
	}
	m.moveFeed(delta)
	return m, nil
}

func (m *Model) startEditing(field editField, value string, limit int) tea.Cmd {
	m.editing = field
	m.input.CharLimit = limit
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *Model) stopEditing() {
	m.editing = editNone
	m.input.Blur()
	m.input.SetValue("")
}

func (m *Model) move(delta int) {
	if m.focus == paneFeed {
		m.moveFeed(delta)
		return
	}
	days := len(m.ctrl.Snapshot().Days)
	next := m.dayCursor + delta
	if next < 0 || next >= days {
		return
	}
	m.dayCursor = next
}

// moveFeed scrolls the feed cursor. A user scroll lets the feed drive the
// timeline again.
func (m *Model) moveFeed(delta int) {
	if len(m.posts) == 0 {
		return
	}
	next := m.cursor + delta
	if next < 0 {
		next = 0
	}
	if next > len(m.posts)-1 {
		next = len(m.posts) - 1
	}
	if next == m.cursor {
		return
	}
	m.cursor = next
	m.ensureVisible()
	m.reportFeedDate()
	m.ctrl.SetFeedDrive(true)
}

func (m *Model) onTimelineUserInteraction() {
	m.ctrl.SetFeedDrive(false)
}

func (m *Model) onTimelineChange() {
	if m.send != nil {
		m.send(decayMsg{})
	}
}

func (m *Model) scrollToPost(postID string) {
	idx, ok := m.index[postID]
	if !ok {
		util.LogDebugf("browse: post %s not in feed", postID)
		return
	}
	m.cursor = idx
	m.ensureVisible()
	m.reportFeedDate()
}

// reportFeedDate tells the timeline which date sits under the feed cursor.
func (m *Model) reportFeedDate() {
	if m.cursor >= len(m.posts) {
		m.ctrl.SetActiveFeedDate(nil)
		return
	}
	t, ok := m.posts[m.cursor].TakenAt(m.loc)
	if !ok {
		m.ctrl.SetActiveFeedDate(nil)
		return
	}
	m.ctrl.SetActiveFeedDate(&t)
}

// setPosts swaps the feed, keeping the cursor on the same post when it
// survives the reload.
func (m *Model) setPosts(posts []model.Post) {
	var selected string
	if m.cursor < len(m.posts) {
		selected = m.posts[m.cursor].ID
	}

	m.posts = posts
	m.index = make(map[string]int, len(posts))
	for i, p := range posts {
		if _, dup := m.index[p.ID]; !dup {
			m.index[p.ID] = i
		}
	}

	m.cursor = 0
	if idx, ok := m.index[selected]; ok && selected != "" {
		m.cursor = idx
	}
	m.ensureVisible()
	m.ctrl.SetPosts(posts)
}

func (m *Model) feedRows() int {
	if m.height <= 0 {
		return defaultFeedHeight
	}
	rows := m.height - 4
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (m *Model) ensureVisible() {
	rows := m.feedRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

func (m *Model) reloadCmd() tea.Cmd {
	if m.reload == nil {
		return nil
	}
	reload := m.reload
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), reloadTimeout)
		defer cancel()
		posts, err := reload(ctx)
		return postsMsg{posts: posts, err: err}
	}
}

func waitForChange(ch <-chan watcher.Change) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		change, ok := <-ch
		if !ok {
			return nil
		}
		return changeMsg(change)
	}
}
