package schedule

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"valgop/internal/config"
	"valgop/internal/models"
)

type staticHours struct {
	rows []models.HoursRow
	err  error
}

func (s staticHours) WeeklyHours(ctx context.Context, resourceID string) ([]models.HoursRow, error) {
	return s.rows, s.err
}

func newTestResolver(hours HoursProvider, mutate func(*config.Config)) *Resolver {
	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}
	logger := zerolog.New(io.Discard)
	return NewResolver(hours, cfg, &logger)
}

// Dates in March 2025: the 10th is a Monday.
var (
	monday   = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	saturday = time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	sunday   = time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC)
)

func TestResolve_SundayClosed(t *testing.T) {
	r := newTestResolver(staticHours{rows: []models.HoursRow{
		{Resource: "juan", Day: "7", OpenHour: 10, CloseHour: 19},
	}}, nil)

	policy, err := r.Resolve(context.Background(), "juan", sunday)
	require.NoError(t, err)
	// A table row for Sunday does not reopen the day.
	assert.True(t, policy.Closed())
}

func TestResolve_SundayEnabledFallsThrough(t *testing.T) {
	r := newTestResolver(staticHours{rows: []models.HoursRow{
		{Resource: "juan", Day: "DOMINGO", OpenHour: 11, CloseHour: 15},
	}}, func(cfg *config.Config) {
		cfg.WorkingHours.SundayEnabled = true
	})

	policy, err := r.Resolve(context.Background(), "juan", sunday)
	require.NoError(t, err)
	assert.False(t, policy.Closed())
	assert.Equal(t, 11, policy.OpenHour)
	assert.Equal(t, 15, policy.CloseHour)
}

func TestResolve_SaturdaySpecial(t *testing.T) {
	r := newTestResolver(staticHours{}, nil)

	policy, err := r.Resolve(context.Background(), "juan", saturday)
	require.NoError(t, err)

	assert.Equal(t, models.PolicySpecial, policy.Kind)
	assert.Equal(t, 10, policy.OpenHour)
	assert.Equal(t, 13, policy.CloseHour)
	assert.False(t, policy.HasLunch)
}

func TestResolve_SaturdayDisabled(t *testing.T) {
	r := newTestResolver(staticHours{}, func(cfg *config.Config) {
		cfg.WorkingHours.Saturday.Enabled = false
	})

	policy, err := r.Resolve(context.Background(), "juan", saturday)
	require.NoError(t, err)
	assert.True(t, policy.Closed())
}

func TestResolve_ForcedScheduleSkipsTable(t *testing.T) {
	hours := staticHours{err: context.DeadlineExceeded}
	r := newTestResolver(hours, func(cfg *config.Config) {
		cfg.WorkingHours.ForceFixedSchedule = true
	})

	// The table is never consulted, so its error cannot surface.
	policy, err := r.Resolve(context.Background(), "juan", monday)
	require.NoError(t, err)

	assert.Equal(t, models.PolicyStandard, policy.Kind)
	assert.Equal(t, 10, policy.OpenHour)
	assert.Equal(t, 19, policy.CloseHour)
	assert.True(t, policy.HasLunch)
	assert.Equal(t, 14, policy.LunchStart)
	assert.Equal(t, 15, policy.LunchEnd)
}

func TestResolve_TableRowByNumberAndName(t *testing.T) {
	rows := []models.HoursRow{
		{Resource: "maria", Day: "1", OpenHour: 11, CloseHour: 18},
		{Resource: "juan", Day: "Lunes", OpenHour: 12, CloseHour: 20},
	}
	r := newTestResolver(staticHours{rows: rows}, nil)

	policy, err := r.Resolve(context.Background(), "juan", monday)
	require.NoError(t, err)
	assert.Equal(t, 12, policy.OpenHour)
	assert.Equal(t, 20, policy.CloseHour)
	assert.True(t, policy.HasLunch)

	policy, err = r.Resolve(context.Background(), "maria", monday)
	require.NoError(t, err)
	assert.Equal(t, 11, policy.OpenHour)
}

func TestResolve_OpenHourClampedToFloor(t *testing.T) {
	r := newTestResolver(staticHours{rows: []models.HoursRow{
		{Resource: "juan", Day: "1", OpenHour: 8, CloseHour: 19},
	}}, nil)

	policy, err := r.Resolve(context.Background(), "juan", monday)
	require.NoError(t, err)
	assert.Equal(t, config.MinOpenHour, policy.OpenHour)
}

func TestResolve_NoRowMeansClosed(t *testing.T) {
	r := newTestResolver(staticHours{rows: []models.HoursRow{
		{Resource: "otro", Day: "1", OpenHour: 10, CloseHour: 19},
	}}, nil)

	policy, err := r.Resolve(context.Background(), "juan", monday)
	require.NoError(t, err)
	assert.True(t, policy.Closed())
}

func TestResolve_ProviderError(t *testing.T) {
	r := newTestResolver(staticHours{err: context.DeadlineExceeded}, nil)

	_, err := r.Resolve(context.Background(), "juan", monday)
	assert.Error(t, err)
}
