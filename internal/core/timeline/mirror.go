package timeline

import (
	"strconv"
	"strings"
	"time"

	"github.com/penwyp/remi-timeline/internal/core/constants"
)

// Mirror is the loosely typed text shadow of the displayed month used while
// the year or month field is edited. Canonical state flows into the mirror
// through Sync; the mirror flows back only through an explicit commit.
type Mirror struct {
	YearText     string
	MonthText    string
	EditingYear  bool
	EditingMonth bool
}

// Sync copies month into each field that is not being edited.
func (m *Mirror) Sync(month Month) {
	if !m.EditingYear {
		m.YearText = strconv.Itoa(month.Year)
	}
	if !m.EditingMonth {
		m.MonthText = month.Month.String()
	}
}

// Reset ends both edits and restores the texts from month.
func (m *Mirror) Reset(month Month) {
	m.EditingYear = false
	m.EditingMonth = false
	m.Sync(month)
}

// ParseYearInput accepts a base-10 year within the supported range.
func ParseYearInput(s string) (int, bool) {
	year, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	if year < constants.MinYear || year > constants.MaxYear {
		return 0, false
	}
	return year, true
}

// ParseMonthInput accepts an English month name, an unambiguous prefix of at
// least three letters, or a number 1-12.
func ParseMonthInput(s string) (time.Month, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 || n > 12 {
			return 0, false
		}
		return time.Month(n), true
	}
	if len(s) < 3 {
		return 0, false
	}

	var match time.Month
	for m := time.January; m <= time.December; m++ {
		name := strings.ToLower(m.String())
		if name == s {
			return m, true
		}
		if strings.HasPrefix(name, s) {
			if match != 0 {
				return 0, false
			}
			match = m
		}
	}
	return match, match != 0
}
