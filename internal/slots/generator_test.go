package slots

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"valgop/internal/models"
)

var loc = time.FixedZone("CST", -6*3600)

func standardDay() models.DayPolicy {
	return models.DayPolicy{
		Kind:       models.PolicyStandard,
		OpenHour:   10,
		CloseHour:  19,
		LunchStart: 14,
		LunchEnd:   15,
		HasLunch:   true,
	}
}

func date() time.Time {
	return time.Date(2025, 3, 11, 0, 0, 0, 0, loc)
}

func at(h, m int) time.Time {
	return time.Date(2025, 3, 11, h, m, 0, 0, loc)
}

// now on a different date so the lead-time gate stays out of the way.
func otherDay() time.Time {
	return time.Date(2025, 3, 1, 9, 0, 0, 0, loc)
}

func TestGenerate_FullStandardDay(t *testing.T) {
	g := NewGenerator(time.Hour)
	got := g.Generate(standardDay(), date(), 60, nil, otherDay())
	assert.Equal(t, []string{"10:00", "11:00", "12:00", "13:00", "15:00", "16:00", "17:00", "18:00"}, got)
}

func TestGenerate_BusyIntervalRemovesSlot(t *testing.T) {
	g := NewGenerator(time.Hour)
	busy := []models.BusyInterval{{Start: at(13, 0), End: at(14, 0)}}
	got := g.Generate(standardDay(), date(), 60, busy, otherDay())
	assert.Equal(t, []string{"10:00", "11:00", "12:00", "15:00", "16:00", "17:00", "18:00"}, got)
}

func TestGenerate_SkipAheadPastBusyEnd(t *testing.T) {
	g := NewGenerator(time.Hour)
	// A 90-minute event starting at 10:30 consumes the 10:00 and 11:00
	// grid slots; the walk resumes at the event's end.
	busy := []models.BusyInterval{{Start: at(10, 30), End: at(12, 0)}}
	got := g.Generate(standardDay(), date(), 60, busy, otherDay())
	assert.Equal(t, []string{"12:00", "13:00", "15:00", "16:00", "17:00", "18:00"}, got)
}

func TestGenerate_OffGridBusyLeavesUnbookableGap(t *testing.T) {
	g := NewGenerator(time.Hour)
	// Resuming at 12:30 shifts the grid off the hour: 13:30 collides with
	// lunch, so the walk picks up again at 15:30.
	busy := []models.BusyInterval{{Start: at(12, 0), End: at(12, 30)}}
	got := g.Generate(standardDay(), date(), 60, busy, otherDay())
	assert.Equal(t, []string{"10:00", "11:00", "12:30", "15:30", "16:30", "17:30"}, got)
}

func TestGenerate_SaturdayShortDayNoLunch(t *testing.T) {
	g := NewGenerator(time.Hour)
	policy := models.DayPolicy{Kind: models.PolicySpecial, OpenHour: 10, CloseHour: 13}
	got := g.Generate(policy, date(), 30, nil, otherDay())
	assert.Equal(t, []string{"10:00", "10:30", "11:00", "11:30", "12:00", "12:30"}, got)
}

func TestGenerate_PartialSlotNeverOffered(t *testing.T) {
	g := NewGenerator(time.Hour)
	policy := models.DayPolicy{Kind: models.PolicyStandard, OpenHour: 10, CloseHour: 12}
	// 90-minute service in a 2-hour day: only 10:00 fits.
	got := g.Generate(policy, date(), 90, nil, otherDay())
	assert.Equal(t, []string{"10:00"}, got)
}

func TestGenerate_LeadTimeAppliesOnlyToday(t *testing.T) {
	g := NewGenerator(time.Hour)

	now := at(11, 30) // same date as the generated day
	got := g.Generate(standardDay(), date(), 60, nil, now)
	// 10:00, 11:00 and 12:00 are inside now+1h; first offered is 13:00.
	assert.Equal(t, []string{"13:00", "15:00", "16:00", "17:00", "18:00"}, got)

	// The same wall-clock instant on another date gates nothing.
	got = g.Generate(standardDay(), date(), 60, nil, otherDay())
	assert.Len(t, got, 8)
}

func TestGenerate_ClosedOrDegenerate(t *testing.T) {
	g := NewGenerator(time.Hour)

	assert.Nil(t, g.Generate(models.DayPolicy{Kind: models.PolicyClosed}, date(), 60, nil, otherDay()))
	assert.Nil(t, g.Generate(standardDay(), date(), 0, nil, otherDay()))

	degenerate := models.DayPolicy{Kind: models.PolicyStandard, OpenHour: 15, CloseHour: 15}
	assert.Nil(t, g.Generate(degenerate, date(), 60, nil, otherDay()))
}

func TestGenerate_FullyBookedDay(t *testing.T) {
	g := NewGenerator(time.Hour)
	busy := []models.BusyInterval{{Start: at(10, 0), End: at(19, 0)}}
	got := g.Generate(standardDay(), date(), 60, busy, otherDay())
	assert.Empty(t, got)
}

func TestGenerate_Deterministic(t *testing.T) {
	g := NewGenerator(time.Hour)
	busy := []models.BusyInterval{
		{Start: at(11, 0), End: at(12, 0)},
		{Start: at(16, 0), End: at(17, 0)},
	}
	first := g.Generate(standardDay(), date(), 60, busy, otherDay())
	second := g.Generate(standardDay(), date(), 60, busy, otherDay())
	assert.Equal(t, first, second)
}
