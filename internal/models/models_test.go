package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBusyInterval_Overlaps(t *testing.T) {
	loc := time.UTC
	at := func(h int) time.Time {
		return time.Date(2025, 3, 10, h, 0, 0, 0, loc)
	}
	busy := BusyInterval{Start: at(13), End: at(14)}

	tests := []struct {
		name       string
		start, end time.Time
		want       bool
	}{
		{"inside", at(13), at(14), true},
		{"straddles start", at(12), at(14), true},
		{"straddles end", at(13), at(15), true},
		{"touches start", at(12), at(13), false},
		{"touches end", at(14), at(15), false},
		{"disjoint before", at(10), at(11), false},
		{"disjoint after", at(16), at(17), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, busy.Overlaps(tt.start, tt.end))
		})
	}
}

func TestDayPolicy_Closed(t *testing.T) {
	assert.True(t, DayPolicy{Kind: PolicyClosed}.Closed())
	assert.True(t, DayPolicy{Kind: PolicyStandard, OpenHour: 10, CloseHour: 10}.Closed())
	assert.True(t, DayPolicy{Kind: PolicyStandard, OpenHour: 12, CloseHour: 10}.Closed())
	assert.False(t, DayPolicy{Kind: PolicyStandard, OpenHour: 10, CloseHour: 19}.Closed())
	assert.False(t, DayPolicy{Kind: PolicySpecial, OpenHour: 10, CloseHour: 13}.Closed())
}

func TestSameDate(t *testing.T) {
	mx, err := time.LoadLocation("America/Mexico_City")
	if err != nil {
		t.Skip("tzdata not available")
	}

	a := time.Date(2025, 3, 10, 23, 30, 0, 0, mx)
	b := time.Date(2025, 3, 10, 1, 0, 0, 0, mx)
	assert.True(t, SameDate(a, b))

	// The UTC instant falls on the next calendar day; comparison happens
	// in a's zone.
	utc := time.Date(2025, 3, 11, 4, 0, 0, 0, time.UTC)
	assert.True(t, SameDate(a, utc))

	assert.False(t, SameDate(a, b.AddDate(0, 0, 1)))
}

func TestStartOfDay(t *testing.T) {
	loc := time.FixedZone("X", -6*3600)
	got := StartOfDay(time.Date(2025, 3, 10, 17, 45, 12, 99, loc))
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, loc), got)
}
