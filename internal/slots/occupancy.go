package slots

import "math"

// Capacity is the occupancy denominator: the raw open-to-close span
// divided by the slot duration. The lunch window is not subtracted, which
// understates occupancy on lunch-bearing days; that skew is the observed
// behavior and is kept.
func Capacity(openHour, closeHour, durationMin int) int {
	if durationMin <= 0 || closeHour <= openHour {
		return 0
	}
	return (closeHour - openHour) * 60 / durationMin
}

// Occupancy derives the occupied count and the rounded occupation
// percentage. A negative occupied count (capacity accounting and the
// generator can diverge) is reported as zero occupied, full availability.
func Occupancy(totalCapacity, availableCount int) (occupied, percentage int) {
	occupied = totalCapacity - availableCount
	if occupied < 0 {
		occupied = 0
	}
	if totalCapacity > 0 {
		percentage = int(math.Round(float64(occupied) / float64(totalCapacity) * 100))
	}
	return occupied, percentage
}
