package slots

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCapacity(t *testing.T) {
	tests := []struct {
		name                 string
		open, close, dur     int
		want                 int
	}{
		{"standard day hourly", 10, 19, 60, 9},
		{"saturday half hour", 10, 13, 30, 6},
		{"duration exceeds day", 10, 12, 180, 0},
		{"ninety minutes", 10, 19, 90, 6},
		{"zero duration", 10, 19, 0, 0},
		{"inverted hours", 19, 10, 60, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Capacity(tt.open, tt.close, tt.dur))
		})
	}
}

func TestOccupancy(t *testing.T) {
	occupied, pct := Occupancy(9, 8)
	assert.Equal(t, 1, occupied)
	assert.Equal(t, 11, pct) // round(1/9*100)

	occupied, pct = Occupancy(9, 0)
	assert.Equal(t, 9, occupied)
	assert.Equal(t, 100, pct)

	occupied, pct = Occupancy(6, 3)
	assert.Equal(t, 3, occupied)
	assert.Equal(t, 50, pct)

	// The lunch hour can leave fewer bookable slots than the raw span
	// suggests; the difference must not read as negative occupancy.
	occupied, pct = Occupancy(6, 8)
	assert.Equal(t, 0, occupied)
	assert.Equal(t, 0, pct)

	occupied, pct = Occupancy(0, 0)
	assert.Equal(t, 0, occupied)
	assert.Equal(t, 0, pct)
}
