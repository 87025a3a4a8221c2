package model

import (
	"strings"
	"time"
)

// Post is a dated diary record as exported from a sphere feed.
// The timeline never mutates posts.
type Post struct {
	ID          string `json:"id"`
	DateTaken   string `json:"dateTaken,omitempty"`
	DisplayName string `json:"displayName"`
	SphereID    string `json:"sphereId,omitempty"`
	Caption     string `json:"caption,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

// Layouts accepted for DateTaken. Zone-less layouts are read in the
// caller's location.
var dateTakenLayouts = []struct {
	layout string
	zoned  bool
}{
	{time.RFC3339Nano, true},
	{time.RFC3339, true},
	{"2006-01-02T15:04:05", false},
	{"2006-01-02 15:04:05", false},
	{"2006-01-02", false},
}

// ParseDateTaken parses an ISO-8601 date-taken value into loc.
// The boolean is false for empty or malformed values.
func ParseDateTaken(value string, loc *time.Location) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}

	for _, l := range dateTakenLayouts {
		if l.zoned {
			t, err := time.Parse(l.layout, value)
			if err == nil {
				return t.In(loc), true
			}
			continue
		}
		t, err := time.ParseInLocation(l.layout, value, loc)
		if err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// TakenAt returns when the post was taken, in loc.
func (p Post) TakenAt(loc *time.Location) (time.Time, bool) {
	return ParseDateTaken(p.DateTaken, loc)
}

// HasDate reports whether the post is eligible for the timeline.
func (p Post) HasDate() bool {
	_, ok := ParseDateTaken(p.DateTaken, time.UTC)
	return ok
}

// Title returns the display name, falling back to the id.
func (p Post) Title() string {
	if name := strings.TrimSpace(p.DisplayName); name != "" {
		return name
	}
	return p.ID
}
