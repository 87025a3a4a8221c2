package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/penwyp/remi-timeline/internal/core/model"
)

func TestArbitrate(t *testing.T) {
	available := []Month{ym(2024, time.January), ym(2024, time.June), ym(2024, time.July)}

	tests := []struct {
		name string
		in   Inputs
		want Decision
	}{
		{
			name: "user controlled ignores feed",
			in: Inputs{
				Current: ym(2024, time.July), Available: available,
				FeedMonth: ym(2024, time.January), HasFeedMonth: true,
			},
			want: Decision{Month: ym(2024, time.July), SyncMirrors: true},
		},
		{
			name: "feed without date holds",
			in: Inputs{
				Current: ym(2024, time.July), Available: available, FeedDrives: true,
			},
			want: Decision{Month: ym(2024, time.July), SyncMirrors: true},
		},
		{
			name: "feed month resolved to closest bucket",
			in: Inputs{
				Current: ym(2024, time.July), Available: available, FeedDrives: true,
				FeedMonth: ym(2024, time.March), HasFeedMonth: true,
			},
			want: Decision{Month: ym(2024, time.January), FromFeed: true, SyncMirrors: true},
		},
		{
			name: "feed agrees with current",
			in: Inputs{
				Current: ym(2024, time.June), Available: available, FeedDrives: true,
				FeedMonth: ym(2024, time.June), HasFeedMonth: true,
			},
			want: Decision{Month: ym(2024, time.June), SyncMirrors: true},
		},
		{
			name: "interaction suppresses mirrors but not the month",
			in: Inputs{
				Current: ym(2024, time.January), Available: available, FeedDrives: true,
				FeedMonth: ym(2024, time.July), HasFeedMonth: true, Interacting: true,
			},
			want: Decision{Month: ym(2024, time.July), FromFeed: true},
		},
		{
			name: "no buckets",
			in: Inputs{
				Current: ym(2026, time.October), FeedDrives: true,
				FeedMonth: ym(2024, time.July), HasFeedMonth: true,
			},
			want: Decision{Month: ym(2026, time.October), SyncMirrors: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Arbitrate(tt.in))
		})
	}
}

type controllerHarness struct {
	c            *Controller
	sched        *manualScheduler
	interactions int
	scrolledTo   []string
	changes      int
}

func newHarness(t *testing.T, now time.Time, limiter *rate.Limiter) *controllerHarness {
	t.Helper()
	h := &controllerHarness{sched: &manualScheduler{}}
	h.c = NewController(Options{
		Location:          time.UTC,
		Now:               func() time.Time { return now },
		DecayWindow:       window,
		Scheduler:         h.sched,
		WheelLimiter:      limiter,
		OnUserInteraction: func() { h.interactions++ },
		OnScrollToPost:    func(id string) { h.scrolledTo = append(h.scrolledTo, id) },
		OnChange:          func() { h.changes++ },
	})
	t.Cleanup(h.c.Close)
	return h
}

func samplePosts() []model.Post {
	return []model.Post{
		{ID: "jan", DateTaken: "2024-01-10T10:00:00Z"},
		{ID: "mar-a", DateTaken: "2024-03-05T09:00:00Z"},
		{ID: "mar-b", DateTaken: "2024-03-05T08:00:00Z"},
		{ID: "mar-c", DateTaken: "2024-03-20T08:00:00Z"},
		{ID: "jul", DateTaken: "2024-07-01T08:00:00Z"},
	}
}

func TestControllerEmptyState(t *testing.T) {
	h := newHarness(t, time.Date(2026, time.October, 17, 9, 0, 0, 0, time.UTC), nil)
	h.c.SetPosts(nil)
	h.c.SetFeedDrive(true)
	h.c.SetActiveFeedDate(nil)

	s := h.c.Snapshot()
	assert.True(t, s.Empty)
	assert.Equal(t, ym(2026, time.October), s.Current)
	assert.Equal(t, "2026", s.YearText)
	assert.Equal(t, "October", s.MonthText)
	assert.True(t, s.PrevDisabled)
	assert.True(t, s.NextDisabled)
	assert.Empty(t, s.Days)
	assert.Empty(t, s.Available)
}

func TestControllerInitialMonthResolvesToData(t *testing.T) {
	h := newHarness(t, time.Date(2024, time.August, 3, 0, 0, 0, 0, time.UTC), nil)
	h.c.SetPosts(samplePosts())

	s := h.c.Snapshot()
	assert.Equal(t, ym(2024, time.July), s.Current)
	assert.Equal(t, "July", s.MonthText)
	assert.Equal(t, []DayItem{{Day: 1, FirstPostID: "jul", PostCount: 1}}, s.Days)
	assert.Equal(t, 5, s.PostCount)
	assert.Zero(t, h.interactions)
}

func TestControllerFeedWithoutDateHolds(t *testing.T) {
	h := newHarness(t, time.Date(2024, time.July, 3, 0, 0, 0, 0, time.UTC), nil)
	h.c.SetPosts(samplePosts())
	require.Equal(t, ym(2024, time.July), h.c.Snapshot().Current)

	h.c.SetFeedDrive(true)
	h.c.SetActiveFeedDate(nil)
	assert.Equal(t, ym(2024, time.July), h.c.Snapshot().Current)
}

func TestControllerFeedDrives(t *testing.T) {
	h := newHarness(t, time.Date(2024, time.July, 3, 0, 0, 0, 0, time.UTC), nil)
	h.c.SetPosts(samplePosts())

	feed := time.Date(2024, time.March, 27, 0, 0, 0, 0, time.UTC)
	h.c.SetActiveFeedDate(&feed)
	assert.Equal(t, ym(2024, time.July), h.c.Snapshot().Current, "feed may not drive yet")

	h.c.SetFeedDrive(true)
	s := h.c.Snapshot()
	assert.Equal(t, ym(2024, time.March), s.Current)
	assert.Equal(t, "March", s.MonthText)
	assert.Equal(t, []DayItem{
		{Day: 20, FirstPostID: "mar-c", PostCount: 1},
		{Day: 5, FirstPostID: "mar-b", PostCount: 2},
	}, s.Days)
}

func TestControllerFeedBetweenBucketsTiesToEarlier(t *testing.T) {
	h := newHarness(t, time.Date(2024, time.July, 3, 0, 0, 0, 0, time.UTC), nil)
	h.c.SetPosts(samplePosts())
	h.c.SetFeedDrive(true)

	feed := time.Date(2024, time.February, 27, 0, 0, 0, 0, time.UTC)
	h.c.SetActiveFeedDate(&feed)
	s := h.c.Snapshot()
	assert.Equal(t, ym(2024, time.January), s.Current)
	assert.Equal(t, "January", s.MonthText)
	assert.Equal(t, []DayItem{{Day: 10, FirstPostID: "jan", PostCount: 1}}, s.Days)
}

func TestControllerPostsRemovedFallsBackToToday(t *testing.T) {
	h := newHarness(t, time.Date(2026, time.October, 17, 9, 0, 0, 0, time.UTC), nil)
	h.c.SetPosts(samplePosts())
	require.Equal(t, ym(2024, time.July), h.c.Snapshot().Current)

	h.c.SetPosts(nil)
	s := h.c.Snapshot()
	assert.True(t, s.Empty)
	assert.Equal(t, ym(2026, time.October), s.Current)
	assert.Equal(t, "2026", s.YearText)
	assert.Equal(t, "October", s.MonthText)
	assert.True(t, s.PrevDisabled)
	assert.True(t, s.NextDisabled)
	assert.Empty(t, s.Days)

	h.c.SetPosts(samplePosts())
	assert.Equal(t, ym(2024, time.July), h.c.Snapshot().Current)
}

func TestControllerNavigationSchedulesOneTimer(t *testing.T) {
	h := newHarness(t, time.Date(2024, time.July, 3, 0, 0, 0, 0, time.UTC), nil)
	h.c.SetPosts(samplePosts())
	require.Zero(t, h.sched.Scheduled())

	h.c.Previous()
	assert.Equal(t, 1, h.sched.Scheduled())
	h.c.Next()
	assert.Equal(t, 2, h.sched.Scheduled())
	h.c.Wheel(-1)
	assert.Equal(t, 3, h.sched.Scheduled())
	assert.Equal(t, 1, h.sched.Pending())
}

func TestControllerSuppressesMirrorsWhileInteracting(t *testing.T) {
	h := newHarness(t, time.Date(2024, time.July, 3, 0, 0, 0, 0, time.UTC), nil)
	h.c.SetPosts(samplePosts())

	assert.True(t, h.c.Previous())
	assert.Equal(t, 1, h.interactions)
	s := h.c.Snapshot()
	assert.Equal(t, ym(2024, time.March), s.Current)
	assert.Equal(t, "March", s.MonthText)
	assert.True(t, s.Interacting)

	h.c.SetFeedDrive(true)
	feed := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)
	h.c.SetActiveFeedDate(&feed)
	s = h.c.Snapshot()
	assert.Equal(t, ym(2024, time.January), s.Current)
	assert.Equal(t, "March", s.MonthText, "mirror holds during the decay window")

	h.sched.Advance(window)
	s = h.c.Snapshot()
	assert.False(t, s.Interacting)
	assert.Equal(t, "January", s.MonthText)
	assert.Equal(t, 1, h.changes)
}

func TestControllerNextTwiceWithinWindow(t *testing.T) {
	h := newHarness(t, time.Date(2024, time.January, 3, 0, 0, 0, 0, time.UTC), nil)
	h.c.SetPosts(samplePosts())

	h.c.Next()
	h.sched.Advance(time.Second)
	h.c.Next()
	assert.Equal(t, ym(2024, time.July), h.c.Snapshot().Current)
	assert.Equal(t, 1, h.sched.Pending())

	h.sched.Advance(time.Second)
	assert.True(t, h.c.Snapshot().Interacting)
	h.sched.Advance(500 * time.Millisecond)
	assert.False(t, h.c.Snapshot().Interacting)
	assert.Equal(t, 1, h.changes)
}

func TestControllerNavigationAtBoundaryStillInteracts(t *testing.T) {
	h := newHarness(t, time.Date(2024, time.July, 3, 0, 0, 0, 0, time.UTC), nil)
	h.c.SetPosts(samplePosts())

	assert.False(t, h.c.Next())
	assert.Equal(t, 1, h.interactions)
	s := h.c.Snapshot()
	assert.True(t, s.Interacting)
	assert.True(t, s.NextDisabled)
	assert.False(t, s.PrevDisabled)
}

func TestControllerYearEdit(t *testing.T) {
	posts := append(samplePosts(), model.Post{ID: "old", DateTaken: "2019-11-02"})
	h := newHarness(t, time.Date(2024, time.July, 3, 0, 0, 0, 0, time.UTC), nil)
	h.c.SetPosts(posts)

	h.c.BeginYearEdit()
	h.c.SetYearText("20")
	feed := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	h.c.SetFeedDrive(true)
	h.c.SetActiveFeedDate(&feed)
	s := h.c.Snapshot()
	assert.Equal(t, "20", s.YearText, "feed must not clobber an in-flight edit")
	assert.Equal(t, "March", s.MonthText)
	h.c.SetFeedDrive(false)

	h.c.SetYearText("abc")
	assert.False(t, h.c.CommitYear())
	s = h.c.Snapshot()
	assert.Equal(t, "2024", s.YearText, "invalid input reverts")
	assert.False(t, s.EditingYear)
	assert.Equal(t, ym(2024, time.March), s.Current)

	h.c.BeginYearEdit()
	h.c.SetYearText("2019")
	assert.True(t, h.c.CommitYear())
	s = h.c.Snapshot()
	assert.Equal(t, ym(2019, time.November), s.Current)
	assert.Equal(t, "2019", s.YearText)
	assert.Equal(t, "November", s.MonthText)
	assert.True(t, s.Interacting)

	h.c.BeginYearEdit()
	h.c.SetYearText("1850")
	h.c.CancelYearEdit()
	assert.Equal(t, "2019", h.c.Snapshot().YearText)
}

func TestControllerMonthEdit(t *testing.T) {
	h := newHarness(t, time.Date(2024, time.July, 3, 0, 0, 0, 0, time.UTC), nil)
	h.c.SetPosts(samplePosts())

	h.c.BeginMonthEdit()
	h.c.SetMonthText("feb")
	assert.True(t, h.c.CommitMonth())
	s := h.c.Snapshot()
	assert.Equal(t, ym(2024, time.January), s.Current, "February ties January and March, the passed bucket wins")
	assert.Equal(t, "January", s.MonthText)

	h.c.BeginMonthEdit()
	h.c.SetMonthText("nope")
	assert.False(t, h.c.CommitMonth())
	assert.Equal(t, "January", h.c.Snapshot().MonthText)

	h.c.BeginMonthEdit()
	h.c.SetMonthText("Ma")
	h.c.CancelMonthEdit()
	s = h.c.Snapshot()
	assert.False(t, s.EditingMonth)
	assert.Equal(t, "January", s.MonthText)
}

func TestControllerSelectDay(t *testing.T) {
	h := newHarness(t, time.Date(2024, time.March, 3, 0, 0, 0, 0, time.UTC), nil)
	h.c.SetPosts(samplePosts())

	assert.True(t, h.c.SelectDay(5))
	assert.Equal(t, []string{"mar-b"}, h.scrolledTo)
	assert.Equal(t, 1, h.interactions)
	assert.True(t, h.c.Snapshot().Interacting)

	assert.False(t, h.c.SelectDay(6))
	assert.Equal(t, []string{"mar-b"}, h.scrolledTo)
}

func TestControllerWheelIsRateLimited(t *testing.T) {
	limiter := rate.NewLimiter(rate.Every(time.Hour), 1)
	h := newHarness(t, time.Date(2024, time.July, 3, 0, 0, 0, 0, time.UTC), limiter)
	h.c.SetPosts(samplePosts())

	assert.False(t, h.c.Wheel(0))
	assert.True(t, h.c.Wheel(-3))
	assert.Equal(t, ym(2024, time.March), h.c.Snapshot().Current)
	assert.False(t, h.c.Wheel(-1), "second tick exceeds the budget")
	assert.Equal(t, ym(2024, time.March), h.c.Snapshot().Current)
	assert.Equal(t, 1, h.interactions)
}

func TestControllerCloseCancelsDecay(t *testing.T) {
	h := newHarness(t, time.Date(2024, time.July, 3, 0, 0, 0, 0, time.UTC), nil)
	h.c.SetPosts(samplePosts())
	h.c.Previous()
	h.c.Close()

	h.sched.Advance(2 * window)
	assert.Zero(t, h.changes)
}
