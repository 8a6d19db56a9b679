// Package availability composes the policy resolver, the slot generator
// and the alternative-day search into the engine's query boundary.
package availability

import (
	"context"
	"fmt"
	"time"

	"valgop/internal/config"
	"valgop/internal/metrics"
	"valgop/internal/models"
	"valgop/internal/schedule"
	"valgop/internal/search"
	"valgop/internal/slots"

	"github.com/rs/zerolog"
)

// ConfigProvider supplies the sheet-backed configuration the query path
// needs: service durations and resource existence.
type ConfigProvider interface {
	ServiceDuration(ctx context.Context, serviceID string) (int, error)
	ResourceCalendarID(ctx context.Context, resourceID string) (string, error)
}

// BusyProvider lists occupied intervals on a resource calendar.
type BusyProvider interface {
	ListBusy(ctx context.Context, calendarID string, from, to time.Time) ([]models.BusyInterval, error)
}

// Result is the availability response: the requested-day window plus, when
// the window is empty, nearby alternative days.
type Result struct {
	Days         []models.DayAvailability `json:"days"`
	Alternatives []models.AlternativeDay  `json:"alternatives"`
}

// Service answers availability queries for one business.
type Service struct {
	cfg      *config.Config
	provider ConfigProvider
	busy     BusyProvider
	resolver *schedule.Resolver
	gen      *slots.Generator
	searcher *search.Searcher
	clock    models.Clock
	loc      *time.Location
	logger   *zerolog.Logger
}

func NewService(
	cfg *config.Config,
	provider ConfigProvider,
	busy BusyProvider,
	resolver *schedule.Resolver,
	gen *slots.Generator,
	clock models.Clock,
	loc *time.Location,
	logger *zerolog.Logger,
) *Service {
	s := &Service{
		cfg:      cfg,
		provider: provider,
		busy:     busy,
		resolver: resolver,
		gen:      gen,
		clock:    clock,
		loc:      loc,
		logger:   logger,
	}
	s.searcher = search.NewSearcher(s, search.Options{
		MinSlots:     cfg.Search.MinSlots,
		ForwardDays:  cfg.Search.ForwardDays,
		BackwardDays: cfg.Search.BackwardDays,
		MaxResults:   cfg.Search.MaxResults,
	}, logger)
	return s
}

// GetAvailability inspects the requested date and its two calendar
// neighbors (past days skipped), and falls back to the alternative-day
// search when that whole window is empty.
func (s *Service) GetAvailability(ctx context.Context, resourceID, serviceID string, date string) (*Result, error) {
	metrics.IncAvailabilityRequest()

	requested, err := time.ParseInLocation("2006-01-02", date, s.loc)
	if err != nil {
		return nil, fmt.Errorf("%w: date %q, expected YYYY-MM-DD", models.ErrInvalidInput, date)
	}

	// Surface missing configuration before probing any day.
	if _, err := s.provider.ResourceCalendarID(ctx, resourceID); err != nil {
		return nil, err
	}
	if _, err := s.provider.ServiceDuration(ctx, serviceID); err != nil {
		return nil, err
	}

	now := s.clock.Now(s.loc)
	today := models.StartOfDay(now)

	// Window order mirrors the presentation priority: the day before the
	// requested one first (an earlier opening is an opportunity), then the
	// requested day, then the day after.
	window := []time.Time{
		requested.AddDate(0, 0, -1),
		requested,
		requested.AddDate(0, 0, 1),
	}

	result := &Result{}
	for _, day := range window {
		if day.Before(today) {
			continue
		}
		avail, err := s.ProbeDay(ctx, resourceID, serviceID, day)
		if err != nil {
			return nil, err
		}
		if avail == nil || len(avail.Slots) == 0 {
			continue
		}
		result.Days = append(result.Days, *avail)
	}

	if len(result.Days) == 0 {
		result.Alternatives = s.searcher.Find(ctx, resourceID, serviceID, requested, now)
	}

	return result, nil
}

// ProbeDay computes availability for a single resource-day. A closed day
// yields (nil, nil). A day with zero open slots still yields a value; the
// caller decides whether to surface it.
func (s *Service) ProbeDay(ctx context.Context, resourceID, serviceID string, date time.Time) (*models.DayAvailability, error) {
	policy, err := s.resolver.Resolve(ctx, resourceID, date)
	if err != nil {
		return nil, err
	}
	if policy.Closed() {
		return nil, nil
	}

	duration, err := s.provider.ServiceDuration(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	calendarID, err := s.provider.ResourceCalendarID(ctx, resourceID)
	if err != nil {
		return nil, err
	}

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), policy.OpenHour, 0, 0, 0, s.loc)
	dayEnd := time.Date(date.Year(), date.Month(), date.Day(), policy.CloseHour, 0, 0, 0, s.loc)

	busy, err := s.busy.ListBusy(ctx, calendarID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("list busy for %s: %w", resourceID, err)
	}

	now := s.clock.Now(s.loc)
	open := s.gen.Generate(policy, date, duration, busy, now)

	capacity := slots.Capacity(policy.OpenHour, policy.CloseHour, duration)
	occupied, pct := slots.Occupancy(capacity, len(open))
	metrics.AddSlotsServed(len(open))

	s.logger.Debug().
		Str("resource", resourceID).
		Str("date", date.Format("2006-01-02")).
		Int("slots", len(open)).
		Int("occupation_pct", pct).
		Msg("day probed")

	return &models.DayAvailability{
		Date:                 date.Format("2006-01-02"),
		Resource:             resourceID,
		Slots:                open,
		TotalCapacity:        capacity,
		OccupiedCount:        occupied,
		OccupationPercentage: pct,
	}, nil
}
