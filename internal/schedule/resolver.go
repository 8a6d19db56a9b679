// Package schedule resolves the effective working-hours policy for a
// resource on a calendar date.
package schedule

import (
	"context"
	"fmt"

	"time"

	"valgop/internal/config"
	"valgop/internal/models"

	"github.com/rs/zerolog"
)

// HoursProvider supplies the weekly-hours table rows for a resource.
type HoursProvider interface {
	WeeklyHours(ctx context.Context, resourceID string) ([]models.HoursRow, error)
}

// Resolver turns (resource, date) into an effective DayPolicy.
type Resolver struct {
	hours  HoursProvider
	cfg    *config.Config
	logger *zerolog.Logger
}

func NewResolver(hours HoursProvider, cfg *config.Config, logger *zerolog.Logger) *Resolver {
	return &Resolver{hours: hours, cfg: cfg, logger: logger}
}

// Resolve returns the effective policy for the date. A closed day is a
// valid terminal outcome, reported via DayPolicy.Closed(), not an error.
//
// Resolution order: Sunday is closed regardless of table contents (unless
// explicitly enabled); Saturday uses its dedicated shortened hours with no
// lunch window; the forced-schedule override replaces whatever the table
// says for regular weekdays; otherwise the table row for (resource, day)
// applies, with the open hour clamped to the global floor.
func (r *Resolver) Resolve(ctx context.Context, resourceID string, date time.Time) (models.DayPolicy, error) {
	day := models.WeekdayOf(date)
	wh := r.cfg.WorkingHours

	if day == models.Sunday && !wh.SundayEnabled {
		return models.DayPolicy{Kind: models.PolicyClosed}, nil
	}

	if day == models.Saturday {
		if !wh.Saturday.Enabled {
			return models.DayPolicy{Kind: models.PolicyClosed}, nil
		}
		return models.DayPolicy{
			Kind:      models.PolicySpecial,
			OpenHour:  clampOpen(wh.Saturday.StartHour),
			CloseHour: wh.Saturday.EndHour,
		}, nil
	}

	if wh.ForceFixedSchedule {
		return r.withLunch(models.DayPolicy{
			Kind:      models.PolicyStandard,
			OpenHour:  clampOpen(wh.StartHour),
			CloseHour: wh.EndHour,
		}), nil
	}

	rows, err := r.hours.WeeklyHours(ctx, resourceID)
	if err != nil {
		return models.DayPolicy{}, fmt.Errorf("weekly hours for %s: %w", resourceID, err)
	}

	row, ok := findHoursRow(rows, resourceID, day)
	if !ok {
		r.logger.Debug().
			Str("resource", resourceID).
			Stringer("day", day).
			Msg("no hours row, day closed")
		return models.DayPolicy{Kind: models.PolicyClosed}, nil
	}

	return r.withLunch(models.DayPolicy{
		Kind:      models.PolicyStandard,
		OpenHour:  clampOpen(row.OpenHour),
		CloseHour: row.CloseHour,
	}), nil
}

func (r *Resolver) withLunch(p models.DayPolicy) models.DayPolicy {
	wh := r.cfg.WorkingHours
	if wh.LunchStartHour < wh.LunchEndHour {
		p.HasLunch = true
		p.LunchStart = wh.LunchStartHour
		p.LunchEnd = wh.LunchEndHour
	}
	return p
}

func clampOpen(hour int) int {
	if hour < config.MinOpenHour {
		return config.MinOpenHour
	}
	return hour
}

// findHoursRow matches a row by resource id and day, accepting either the
// numeric day or the localized day name in the day cell.
func findHoursRow(rows []models.HoursRow, resourceID string, day models.Weekday) (models.HoursRow, bool) {
	for _, row := range rows {
		if row.Resource != resourceID {
			continue
		}
		if models.MatchesDay(row.Day, day) {
			return row, true
		}
	}
	return models.HoursRow{}, false
}
