// Package search finds nearby days with enough open capacity when the
// requested day has none.
package search

import (
	"context"
	"sort"
	"time"

	"valgop/internal/metrics"
	"valgop/internal/models"

	"github.com/rs/zerolog"
)

// backwardPriorityOffset guarantees forward candidates always outrank
// backward ones, regardless of distance.
const backwardPriorityOffset = 100

// enoughCandidates stops the scan early once this many days are accepted.
const enoughCandidates = 2

// DayProber computes availability for a single day. A closed day is
// (nil, nil).
type DayProber interface {
	ProbeDay(ctx context.Context, resourceID, serviceID string, date time.Time) (*models.DayAvailability, error)
}

// Options bound the scan.
type Options struct {
	// MinSlots is the minimum open-slot count for a day to qualify. Days
	// below it are excluded even though they are technically bookable; a
	// single stray slot is noise, not an alternative.
	MinSlots     int
	ForwardDays  int
	BackwardDays int
	MaxResults   int
}

// Searcher scans outward from a requested date, forward-biased.
type Searcher struct {
	prober DayProber
	opts   Options
	logger *zerolog.Logger
}

func NewSearcher(prober DayProber, opts Options, logger *zerolog.Logger) *Searcher {
	if opts.MinSlots <= 0 {
		opts.MinSlots = 2
	}
	if opts.ForwardDays <= 0 {
		opts.ForwardDays = 14
	}
	if opts.BackwardDays <= 0 {
		opts.BackwardDays = 7
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = 3
	}
	return &Searcher{prober: prober, opts: opts, logger: logger}
}

// Find scans day-by-day from requested+1 forward, then (if fewer than two
// candidates were found) from requested-1 backward down to today. Probe
// failures are isolated per day: a bad day is treated as having no
// availability and the scan continues. Deterministic given identical
// backing data and now.
func (s *Searcher) Find(ctx context.Context, resourceID, serviceID string, requested, now time.Time) []models.AlternativeDay {
	today := models.StartOfDay(now)
	var found []models.AlternativeDay

	for dist := 1; dist <= s.opts.ForwardDays && len(found) < enoughCandidates; dist++ {
		date := requested.AddDate(0, 0, dist)
		if cand := s.probe(ctx, resourceID, serviceID, date); cand != nil {
			cand.DistanceDays = dist
			cand.Direction = models.DirectionPosterior
			cand.Priority = dist
			found = append(found, *cand)
		}
	}

	for dist := 1; dist <= s.opts.BackwardDays && len(found) < enoughCandidates; dist++ {
		date := requested.AddDate(0, 0, -dist)
		if date.Before(today) {
			break
		}
		if cand := s.probe(ctx, resourceID, serviceID, date); cand != nil {
			cand.DistanceDays = dist
			cand.Direction = models.DirectionAnterior
			cand.Priority = dist + backwardPriorityOffset
			found = append(found, *cand)
		}
	}

	sort.SliceStable(found, func(i, j int) bool {
		return found[i].Priority < found[j].Priority
	})
	if len(found) > s.opts.MaxResults {
		found = found[:s.opts.MaxResults]
	}
	return found
}

func (s *Searcher) probe(ctx context.Context, resourceID, serviceID string, date time.Time) *models.AlternativeDay {
	metrics.IncSearchProbe()

	avail, err := s.prober.ProbeDay(ctx, resourceID, serviceID, date)
	if err != nil {
		// One bad day must not abort the whole search.
		s.logger.Warn().Err(err).
			Str("resource", resourceID).
			Str("date", date.Format("2006-01-02")).
			Msg("probe failed, skipping day")
		return nil
	}
	if avail == nil {
		return nil
	}
	if len(avail.Slots) < s.opts.MinSlots {
		s.logger.Debug().
			Str("date", avail.Date).
			Int("slots", len(avail.Slots)).
			Int("min", s.opts.MinSlots).
			Msg("day below threshold")
		return nil
	}
	return &models.AlternativeDay{DayAvailability: *avail}
}
