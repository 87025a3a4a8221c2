package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMirrorSyncSkipsEditedFields(t *testing.T) {
	var m Mirror
	m.Sync(ym(2024, time.March))
	assert.Equal(t, "2024", m.YearText)
	assert.Equal(t, "March", m.MonthText)

	m.EditingYear = true
	m.YearText = "20"
	m.Sync(ym(2025, time.June))
	assert.Equal(t, "20", m.YearText)
	assert.Equal(t, "June", m.MonthText)

	m.Reset(ym(2025, time.June))
	assert.False(t, m.EditingYear)
	assert.Equal(t, "2025", m.YearText)
}

func TestParseYearInput(t *testing.T) {
	tests := []struct {
		input  string
		want   int
		wantOK bool
	}{
		{"2024", 2024, true},
		{" 1999 ", 1999, true},
		{"1900", 1900, true},
		{"2100", 2100, true},
		{"1899", 0, false},
		{"2101", 0, false},
		{"20x4", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseYearInput(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseMonthInput(t *testing.T) {
	tests := []struct {
		input  string
		want   time.Month
		wantOK bool
	}{
		{"March", time.March, true},
		{"march", time.March, true},
		{"sep", time.September, true},
		{"Sept", time.September, true},
		{"12", time.December, true},
		{"1", time.January, true},
		{"ju", 0, false},
		{"jun", time.June, true},
		{"13", 0, false},
		{"0", 0, false},
		{"smarch", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseMonthInput(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
