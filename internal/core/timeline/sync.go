package timeline

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/penwyp/remi-timeline/internal/core/constants"
	"github.com/penwyp/remi-timeline/internal/core/model"
	"github.com/penwyp/remi-timeline/internal/util"
)

// Inputs are the competing sources for the displayed month.
type Inputs struct {
	Current      Month
	Available    []Month
	FeedDrives   bool
	FeedMonth    Month
	HasFeedMonth bool
	Interacting  bool
}

// Decision is the outcome of one arbitration round.
type Decision struct {
	Month       Month
	FromFeed    bool
	SyncMirrors bool
}

// Arbitrate picks the authoritative month. The feed wins only when it is
// allowed to drive and reports a date; otherwise the current month holds.
// Mirrors follow unless a timeline interaction is still within its window.
func Arbitrate(in Inputs) Decision {
	d := Decision{Month: in.Current, SyncMirrors: !in.Interacting}
	if !in.FeedDrives || !in.HasFeedMonth {
		return d
	}
	resolved, ok := ResolveClosestMonth(in.FeedMonth, in.Available)
	if !ok {
		return d
	}
	if resolved != in.Current {
		d.Month = resolved
		d.FromFeed = true
	}
	return d
}

// Options configures a Controller.
type Options struct {
	Location    *time.Location
	Now         func() time.Time
	DecayWindow time.Duration
	Scheduler   Scheduler

	// WheelLimiter paces wheel navigation; nil means unlimited.
	WheelLimiter *rate.Limiter

	// OnUserInteraction lets the feed suppress its own updates.
	OnUserInteraction func()
	// OnScrollToPost asks the feed to scroll to a post.
	OnScrollToPost func(postID string)
	// OnChange fires after asynchronous state changes (decay).
	OnChange func()
}

// Snapshot is a read-only copy of the navigator state for renderers.
type Snapshot struct {
	Current      Month
	YearText     string
	MonthText    string
	EditingYear  bool
	EditingMonth bool
	Interacting  bool
	PrevDisabled bool
	NextDisabled bool
	FeedDrives   bool
	Available    []Month
	Days         []DayItem
	Empty        bool
	PostCount    int
}

// Controller reconciles user-driven navigation with feed-driven scroll
// position. It is safe for concurrent use; callbacks run without the lock.
type Controller struct {
	mu      sync.Mutex
	loc     *time.Location
	now     func() time.Time
	posts   []model.Post
	nav     *Navigator
	mirror  Mirror
	tracker *InteractionTracker
	limiter *rate.Limiter
	days    []DayItem

	feedDrives   bool
	feedMonth    Month
	hasFeedMonth bool

	onUserInteraction func()
	onScrollToPost    func(string)
	onChange          func()
}

// NewController creates a controller showing the current real-world month
// until posts arrive.
func NewController(opts Options) *Controller {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	window := opts.DecayWindow
	if window <= 0 {
		window = constants.InteractionDecayWindow
	}

	c := &Controller{
		loc:               loc,
		now:               now,
		limiter:           opts.WheelLimiter,
		onUserInteraction: opts.OnUserInteraction,
		onScrollToPost:    opts.OnScrollToPost,
		onChange:          opts.OnChange,
	}
	c.tracker = NewInteractionTracker(window, opts.Scheduler)
	c.tracker.OnDecay(c.handleDecay)
	// userAction marks the interaction, so the navigator does not notify.
	c.nav = NewNavigator(c.today(), nil)
	c.mirror.Sync(c.nav.Current())
	return c
}

// SetPosts replaces the post set and recomputes the buckets.
func (c *Controller) SetPosts(posts []model.Post) {
	c.mu.Lock()
	c.posts = make([]model.Post, len(posts))
	copy(c.posts, posts)
	available := BuildMonthIndex(c.posts, c.loc)
	if c.nav.SetAvailable(available, c.today()) {
		util.LogDebugf("timeline: displayed month moved to %s after post reload", c.nav.Current())
	}
	c.reconcileLocked()
	if len(available) == 0 {
		c.mirror.Sync(c.nav.Current())
	}
	c.mu.Unlock()
}

// SetFeedDrive toggles whether the feed may drive the displayed month.
func (c *Controller) SetFeedDrive(enabled bool) {
	c.mu.Lock()
	c.feedDrives = enabled
	c.reconcileLocked()
	c.mu.Unlock()
}

// SetActiveFeedDate reports the date centered in the feed; nil means the
// feed position is indeterminate and the displayed month holds.
func (c *Controller) SetActiveFeedDate(t *time.Time) {
	c.mu.Lock()
	if t == nil {
		c.hasFeedMonth = false
		c.feedMonth = Month{}
	} else {
		c.hasFeedMonth = true
		c.feedMonth = MonthOf(t.In(c.loc))
	}
	c.reconcileLocked()
	c.mu.Unlock()
}

// Previous moves to the previous populated month.
func (c *Controller) Previous() bool {
	return c.userAction(func() bool { return c.nav.Previous() })
}

// Next moves to the next populated month.
func (c *Controller) Next() bool {
	return c.userAction(func() bool { return c.nav.Next() })
}

// Wheel steps one month per call: negative delta is previous, positive is
// next. Calls beyond the limiter budget are dropped.
func (c *Controller) Wheel(delta int) bool {
	if delta == 0 {
		return false
	}
	if c.limiter != nil && !c.limiter.Allow() {
		return false
	}
	if delta < 0 {
		return c.Previous()
	}
	return c.Next()
}

// BeginYearEdit marks the year field as being edited.
func (c *Controller) BeginYearEdit() {
	c.mu.Lock()
	c.mirror.EditingYear = true
	c.mu.Unlock()
}

// SetYearText updates the year field while editing.
func (c *Controller) SetYearText(s string) {
	c.mu.Lock()
	c.mirror.YearText = s
	c.mu.Unlock()
}

// CommitYear applies the typed year, moving to the closest populated month
// in that year. Invalid input reverts the field.
func (c *Controller) CommitYear() bool {
	return c.userAction(func() bool {
		year, ok := ParseYearInput(c.mirror.YearText)
		c.mirror.EditingYear = false
		if !ok {
			util.LogDebugf("timeline: rejected year input %q", c.mirror.YearText)
			return false
		}
		return c.nav.JumpTo(Month{Year: year, Month: c.nav.Current().Month})
	})
}

// CancelYearEdit abandons the edit and reverts the field.
func (c *Controller) CancelYearEdit() {
	c.mu.Lock()
	c.mirror.EditingYear = false
	c.mirror.Sync(c.nav.Current())
	c.mu.Unlock()
}

// BeginMonthEdit marks the month field as being edited.
func (c *Controller) BeginMonthEdit() {
	c.mu.Lock()
	c.mirror.EditingMonth = true
	c.mu.Unlock()
}

// SetMonthText updates the month field while editing.
func (c *Controller) SetMonthText(s string) {
	c.mu.Lock()
	c.mirror.MonthText = s
	c.mu.Unlock()
}

// CommitMonth applies the typed month name within the displayed year.
func (c *Controller) CommitMonth() bool {
	return c.userAction(func() bool {
		month, ok := ParseMonthInput(c.mirror.MonthText)
		c.mirror.EditingMonth = false
		if !ok {
			util.LogDebugf("timeline: rejected month input %q", c.mirror.MonthText)
			return false
		}
		return c.nav.JumpTo(Month{Year: c.nav.Current().Year, Month: month})
	})
}

// CancelMonthEdit abandons the edit and reverts the field.
func (c *Controller) CancelMonthEdit() {
	c.mu.Lock()
	c.mirror.EditingMonth = false
	c.mirror.Sync(c.nav.Current())
	c.mu.Unlock()
}

// SelectDay asks the feed to scroll to the first post of day in the
// displayed month.
func (c *Controller) SelectDay(day int) bool {
	c.mu.Lock()
	item, ok := FindDay(c.days, day)
	if ok {
		c.tracker.Touch()
	}
	c.mu.Unlock()

	if !ok {
		return false
	}
	if c.onUserInteraction != nil {
		c.onUserInteraction()
	}
	if c.onScrollToPost != nil {
		c.onScrollToPost(item.FirstPostID)
	}
	return true
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	days := make([]DayItem, len(c.days))
	copy(days, c.days)
	available := c.nav.Available()
	return Snapshot{
		Current:      c.nav.Current(),
		YearText:     c.mirror.YearText,
		MonthText:    c.mirror.MonthText,
		EditingYear:  c.mirror.EditingYear,
		EditingMonth: c.mirror.EditingMonth,
		Interacting:  c.tracker.Active(),
		PrevDisabled: c.nav.PrevDisabled(),
		NextDisabled: c.nav.NextDisabled(),
		FeedDrives:   c.feedDrives,
		Available:    available,
		Days:         days,
		Empty:        len(available) == 0,
		PostCount:    len(c.posts),
	}
}

// Close cancels the decay timer.
func (c *Controller) Close() {
	c.tracker.Close()
}

// userAction runs a navigation step under the lock, marks the interaction,
// resyncs the mirrors and then notifies the parent.
func (c *Controller) userAction(step func() bool) bool {
	c.mu.Lock()
	changed := step()
	c.tracker.Touch()
	c.days = BucketDays(c.posts, c.nav.Current(), c.loc)
	c.mirror.Sync(c.nav.Current())
	c.mu.Unlock()

	if c.onUserInteraction != nil {
		c.onUserInteraction()
	}
	return changed
}

// today is the real-world month shown while there are no posts.
func (c *Controller) today() Month {
	return MonthOf(c.now().In(c.loc))
}

func (c *Controller) reconcileLocked() {
	d := Arbitrate(Inputs{
		Current:      c.nav.Current(),
		Available:    c.nav.available,
		FeedDrives:   c.feedDrives,
		FeedMonth:    c.feedMonth,
		HasFeedMonth: c.hasFeedMonth,
		Interacting:  c.tracker.Active(),
	})
	if d.FromFeed {
		c.nav.set(d.Month)
	}
	c.days = BucketDays(c.posts, c.nav.Current(), c.loc)
	if d.SyncMirrors {
		c.mirror.Sync(c.nav.Current())
	}
}

func (c *Controller) handleDecay() {
	c.mu.Lock()
	c.reconcileLocked()
	c.mu.Unlock()

	if c.onChange != nil {
		c.onChange()
	}
}
