package timeline

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/penwyp/remi-timeline/internal/core/constants"
)

// Month is a normalized (year, month) bucket.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the month containing t, in t's location.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// Start returns the first instant of the month in loc.
func (m Month) Start(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, loc)
}

// IsZero reports whether m is the zero Month.
func (m Month) IsZero() bool {
	return m.Year == 0 && m.Month == 0
}

// index counts months from year zero so that distances are month-granular.
func (m Month) index() int {
	return m.Year*12 + int(m.Month) - 1
}

func monthFromIndex(idx int) Month {
	year := idx / 12
	month := idx % 12
	if month < 0 {
		month += 12
		year--
	}
	return Month{Year: year, Month: time.Month(month + 1)}
}

// Compare returns -1, 0 or +1 ordering m against o chronologically.
func (m Month) Compare(o Month) int {
	a, b := m.index(), o.index()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Before reports whether m is chronologically before o.
func (m Month) Before(o Month) bool { return m.Compare(o) < 0 }

// After reports whether m is chronologically after o.
func (m Month) After(o Month) bool { return m.Compare(o) > 0 }

// AddMonths shifts m by n calendar months.
func (m Month) AddMonths(n int) Month {
	return monthFromIndex(m.index() + n)
}

// Distance is the absolute number of calendar months between m and o.
func (m Month) Distance(o Month) int {
	d := m.index() - o.index()
	if d < 0 {
		return -d
	}
	return d
}

// String formats the month as YYYY-MM.
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Label formats the month for display, e.g. "March 2024".
func (m Month) Label() string {
	return fmt.Sprintf("%s %d", m.Month.String(), m.Year)
}

// MarshalText encodes the month as YYYY-MM.
func (m Month) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText decodes a YYYY-MM month.
func (m *Month) UnmarshalText(b []byte) error {
	parsed, err := ParseMonth(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ParseMonth parses "YYYY-MM" (or "YYYY-M").
func ParseMonth(s string) (Month, error) {
	s = strings.TrimSpace(s)
	yearStr, monthStr, ok := strings.Cut(s, "-")
	if !ok {
		return Month{}, fmt.Errorf("invalid month %q: expected YYYY-MM", s)
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return Month{}, fmt.Errorf("invalid year in %q: %w", s, err)
	}
	month, err := strconv.Atoi(monthStr)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month in %q: %w", s, err)
	}
	if month < 1 || month > 12 {
		return Month{}, fmt.Errorf("invalid month in %q: must be 1-12", s)
	}
	if year < constants.MinYear || year > constants.MaxYear {
		return Month{}, fmt.Errorf("invalid year in %q: must be %d-%d", s, constants.MinYear, constants.MaxYear)
	}
	return Month{Year: year, Month: time.Month(month)}, nil
}
