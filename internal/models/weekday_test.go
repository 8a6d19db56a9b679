package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWeekdayOf(t *testing.T) {
	// 2025-03-10 is a Monday.
	base := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	for i, want := range []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday} {
		assert.Equal(t, want, WeekdayOf(base.AddDate(0, 0, i)))
	}
}

func TestParseWeekday(t *testing.T) {
	tests := []struct {
		in      string
		want    Weekday
		wantErr bool
	}{
		{"1", Monday, false},
		{"7", Sunday, false},
		{" 3 ", Wednesday, false},
		{"LUNES", Monday, false},
		{"lunes", Monday, false},
		{"Miércoles", Wednesday, false},
		{"MIÉRCOLES", Wednesday, false},
		{"SÁBADO", Saturday, false},
		{"sabado", Saturday, false},
		{"0", 0, true},
		{"8", 0, true},
		{"FUNDAY", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseWeekday(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFoldDayName(t *testing.T) {
	assert.Equal(t, "MIERCOLES", FoldDayName("Miércoles"))
	assert.Equal(t, "SABADO", FoldDayName("  sábado  "))
	assert.Equal(t, "LUNES", FoldDayName("LUNES"))
}

func TestMatchesDay(t *testing.T) {
	assert.True(t, MatchesDay("3", Wednesday))
	assert.True(t, MatchesDay("Miércoles", Wednesday))
	assert.False(t, MatchesDay("3", Thursday))
	assert.False(t, MatchesDay("garbage", Wednesday))
}
