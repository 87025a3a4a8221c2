package timeline

import (
	"sort"
	"time"

	"github.com/penwyp/remi-timeline/internal/core/model"
)

// DayItem is one populated day of the displayed month.
type DayItem struct {
	Day         int    `json:"day"`
	FirstPostID string `json:"firstPostId"`
	PostCount   int    `json:"postCount"`
}

// BucketDays groups the posts of the displayed month by day of month. The
// first post of a day is the earliest one, ties keeping input order. Items
// are ordered most recent day first.
func BucketDays(posts []model.Post, displayed Month, loc *time.Location) []DayItem {
	type dayAcc struct {
		first   time.Time
		firstID string
		count   int
	}

	byDay := make(map[int]*dayAcc)
	for _, post := range posts {
		taken, ok := post.TakenAt(loc)
		if !ok || MonthOf(taken) != displayed {
			continue
		}
		acc, exists := byDay[taken.Day()]
		if !exists {
			byDay[taken.Day()] = &dayAcc{first: taken, firstID: post.ID, count: 1}
			continue
		}
		acc.count++
		if taken.Before(acc.first) {
			acc.first = taken
			acc.firstID = post.ID
		}
	}

	items := make([]DayItem, 0, len(byDay))
	for day, acc := range byDay {
		items = append(items, DayItem{Day: day, FirstPostID: acc.firstID, PostCount: acc.count})
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].Day > items[j].Day
	})
	return items
}

// FindDay returns the item for day, if populated.
func FindDay(items []DayItem, day int) (DayItem, bool) {
	for _, item := range items {
		if item.Day == day {
			return item, true
		}
	}
	return DayItem{}, false
}
