package timeline

import (
	"sort"
	"time"

	"github.com/penwyp/remi-timeline/internal/core/model"
)

// BuildMonthIndex returns the distinct months containing at least one dated
// post, strictly ascending. Posts without a parseable date are skipped.
func BuildMonthIndex(posts []model.Post, loc *time.Location) []Month {
	seen := make(map[Month]struct{})
	months := make([]Month, 0)

	for _, post := range posts {
		taken, ok := post.TakenAt(loc)
		if !ok {
			continue
		}
		key := MonthOf(taken)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		months = append(months, key)
	}

	sort.Slice(months, func(i, j int) bool {
		return months[i].Before(months[j])
	})
	return months
}

// MonthCounts returns the number of dated posts per month.
func MonthCounts(posts []model.Post, loc *time.Location) map[Month]int {
	counts := make(map[Month]int)
	for _, post := range posts {
		if taken, ok := post.TakenAt(loc); ok {
			counts[MonthOf(taken)]++
		}
	}
	return counts
}

// indexOf returns the position of m in the ascending slice, or -1.
func indexOf(available []Month, m Month) int {
	i := sort.Search(len(available), func(i int) bool {
		return !available[i].Before(m)
	})
	if i < len(available) && available[i] == m {
		return i
	}
	return -1
}

// Contains reports whether m is one of the available buckets.
func Contains(available []Month, m Month) bool {
	return indexOf(available, m) >= 0
}
