// Package slots generates bookable start times for one resource-day.
package slots

import (
	"time"

	"valgop/internal/models"
)

// Generator walks a day in fixed duration-sized steps and emits the start
// times that survive the lunch, busy-interval and lead-time checks.
type Generator struct {
	leadTime time.Duration
}

func NewGenerator(leadTime time.Duration) *Generator {
	if leadTime <= 0 {
		leadTime = time.Hour
	}
	return &Generator{leadTime: leadTime}
}

// Generate returns the ordered "HH:MM" slots for the date. The cursor
// starts at the open hour and advances by exactly the slot duration; when
// a step collides with a busy interval, the cursor jumps to the interval's
// end instead of re-testing sub-ranges, so back-to-back events can leave
// an unbookable gap smaller than one slot. Partial slots are never offered.
//
// now must already be in the date's time zone; it gates slots only when
// the date is "today".
func (g *Generator) Generate(policy models.DayPolicy, date time.Time, durationMin int, busy []models.BusyInterval, now time.Time) []string {
	if policy.Closed() || durationMin <= 0 {
		return nil
	}

	loc := date.Location()
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), policy.OpenHour, 0, 0, 0, loc)
	dayEnd := time.Date(date.Year(), date.Month(), date.Day(), policy.CloseHour, 0, 0, 0, loc)

	var lunchStart, lunchEnd time.Time
	if policy.HasLunch {
		lunchStart = time.Date(date.Year(), date.Month(), date.Day(), policy.LunchStart, 0, 0, 0, loc)
		lunchEnd = time.Date(date.Year(), date.Month(), date.Day(), policy.LunchEnd, 0, 0, 0, loc)
	}

	step := time.Duration(durationMin) * time.Minute
	isToday := models.SameDate(dayStart, now)
	cutoff := now.Add(g.leadTime)

	var out []string
	seen := make(map[string]bool)

	for cursor := dayStart; !cursor.Add(step).After(dayEnd); {
		slotEnd := cursor.Add(step)

		if policy.HasLunch && overlaps(cursor, slotEnd, lunchStart, lunchEnd) {
			cursor = slotEnd
			continue
		}

		if blocking, ok := firstOverlap(busy, cursor, slotEnd); ok {
			// Skip ahead to the end of the occupied range.
			if blocking.End.After(cursor) {
				cursor = blocking.End
			} else {
				cursor = slotEnd
			}
			continue
		}

		if isToday && cursor.Before(cutoff) {
			cursor = slotEnd
			continue
		}

		key := cursor.Format("15:04")
		if !seen[key] {
			seen[key] = true
			out = append(out, key)
		}
		cursor = slotEnd
	}

	return out
}

func firstOverlap(busy []models.BusyInterval, start, end time.Time) (models.BusyInterval, bool) {
	for _, b := range busy {
		if b.Overlaps(start, end) {
			return b, true
		}
	}
	return models.BusyInterval{}, false
}

func overlaps(start1, end1, start2, end2 time.Time) bool {
	return start1.Before(end2) && start2.Before(end1)
}
