package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "America/Mexico_City", cfg.Timezone)
	assert.Equal(t, "CALENDARIOS", cfg.Sheets.Calendars)
	assert.Equal(t, "HORARIOS", cfg.Sheets.Hours)
	assert.Equal(t, "SERVICIOS", cfg.Sheets.Services)
	assert.Equal(t, "CLIENTES", cfg.Sheets.Clients)

	assert.Equal(t, MinOpenHour, cfg.WorkingHours.StartHour)
	assert.Equal(t, 19, cfg.WorkingHours.EndHour)
	assert.Equal(t, 14, cfg.WorkingHours.LunchStartHour)
	assert.Equal(t, 15, cfg.WorkingHours.LunchEndHour)
	assert.Equal(t, 60, cfg.WorkingHours.SlotIntervalMinutes)
	assert.True(t, cfg.WorkingHours.Saturday.Enabled)
	assert.Equal(t, 10, cfg.WorkingHours.Saturday.StartHour)
	assert.Equal(t, 13, cfg.WorkingHours.Saturday.EndHour)
	assert.False(t, cfg.WorkingHours.SundayEnabled)

	assert.Equal(t, 60, cfg.Booking.LeadTimeMinutes)
	assert.Equal(t, 90, cfg.Booking.MaxDaysAhead)
	assert.Equal(t, 2, cfg.Search.MinSlots)
	assert.Equal(t, 14, cfg.Search.ForwardDays)
	assert.Equal(t, 7, cfg.Search.BackwardDays)
	assert.Equal(t, 3, cfg.Search.MaxResults)
}

func TestLoad_ExpandsEnvAndFloorsOpenHour(t *testing.T) {
	t.Setenv("TEST_SHEET_ID", "sheet-123")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `
business:
  sheet_id: "${TEST_SHEET_ID}"
working_hours:
  start_hour: 8
  end_hour: 18
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sheet-123", cfg.Business.SheetID)
	// Opening before the floor gets clamped regardless of the file.
	assert.Equal(t, MinOpenHour, cfg.WorkingHours.StartHour)
	assert.Equal(t, 18, cfg.WorkingHours.EndHour)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_CreatesDatabaseDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	dbPath := filepath.Join(dir, "data", "nested", "app.db")
	data := "database:\n  path: " + dbPath + "\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	_, err := Load(path)
	require.NoError(t, err)

	info, err := os.Stat(filepath.Dir(dbPath))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestDurationHelpers(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "1h0m0s", cfg.LeadTime().String())

	cfg.Redis.CacheTTLSeconds = 300
	assert.Equal(t, "5m0s", cfg.CacheTTL().String())
}
