package google

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/sheets/v4"

	"valgop/internal/cache"
	"valgop/internal/config"
	"valgop/internal/models"
)

// Column layout of the CLIENTES tab.
var clientHeaders = []interface{}{
	"Fecha Registro", "Código", "Nombre", "Teléfono", "Email",
	"Especialista", "Fecha", "Hora", "Servicio", "Estado",
}

const (
	recordTimeLayout = "2006-01-02 15:04:05"
	statusColumn     = "J" // Estado, last column of a client row
)

// SheetsService reads resource/service configuration and maintains the
// client log, all backed by one spreadsheet. Config tabs are read through
// an optional short-TTL cache; the client log is always read live.
type SheetsService struct {
	svc     *sheets.Service
	sheetID string
	cfg     config.Config
	cache   *cache.Cache
	logger  zerolog.Logger

	// rowCache maps reservation code to its 1-based sheet row so status
	// updates skip a rescan.
	cacheMu  sync.RWMutex
	rowCache map[string]int

	ensureOnce sync.Once
	ensureErr  error
}

func NewSheetsService(svc *sheets.Service, cfg *config.Config, c *cache.Cache, logger zerolog.Logger) *SheetsService {
	return &SheetsService{
		svc:      svc,
		sheetID:  cfg.Business.SheetID,
		cfg:      *cfg,
		cache:    c,
		logger:   logger.With().Str("component", "sheets").Logger(),
		rowCache: make(map[string]int),
	}
}

// readRange fetches a tab range, translating API failures into the
// backend-unavailable sentinel so callers can map them uniformly.
func (s *SheetsService) readRange(ctx context.Context, rng string) ([][]interface{}, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.sheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, wrapAPIError("read %s", rng, err)
	}
	return resp.Values, nil
}

// findData scans a tab for the first row whose first cell equals key
// (case-insensitive, trimmed). Returns nil when no row matches.
func (s *SheetsService) findData(ctx context.Context, tab, key string) ([]interface{}, error) {
	rows, err := s.readRange(ctx, tab+"!A2:Z")
	if err != nil {
		return nil, err
	}
	want := strings.ToUpper(strings.TrimSpace(key))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		if strings.ToUpper(strings.TrimSpace(cellString(row[0]))) == want {
			return row, nil
		}
	}
	return nil, nil
}

// ResourceCalendarID resolves a resource to its Google Calendar id from
// the calendars tab (id, label, calendar id).
func (s *SheetsService) ResourceCalendarID(ctx context.Context, resourceID string) (string, error) {
	key := "sheets:calendar:" + resourceID
	var cached string
	if s.cache.Read(ctx, key, &cached) {
		return cached, nil
	}

	row, err := s.findData(ctx, s.cfg.Sheets.Calendars, resourceID)
	if err != nil {
		return "", err
	}
	if row == nil || len(row) < 3 || cellString(row[2]) == "" {
		return "", fmt.Errorf("resource %q: %w", resourceID, models.ErrConfigurationMissing)
	}
	id := strings.TrimSpace(cellString(row[2]))
	s.cache.Write(ctx, key, id)
	return id, nil
}

// ResourceLabel resolves the human label of a resource. Missing labels
// fall back to the id rather than erroring.
func (s *SheetsService) ResourceLabel(ctx context.Context, resourceID string) (string, error) {
	row, err := s.findData(ctx, s.cfg.Sheets.Calendars, resourceID)
	if err != nil {
		return "", err
	}
	if row == nil || len(row) < 2 || cellString(row[1]) == "" {
		return resourceID, nil
	}
	return strings.TrimSpace(cellString(row[1])), nil
}

// ServiceDuration resolves a service to its duration in minutes from the
// services tab (id, label, duration).
func (s *SheetsService) ServiceDuration(ctx context.Context, serviceID string) (int, error) {
	key := "sheets:duration:" + serviceID
	var cached int
	if s.cache.Read(ctx, key, &cached) {
		return cached, nil
	}

	row, err := s.findData(ctx, s.cfg.Sheets.Services, serviceID)
	if err != nil {
		return 0, err
	}
	if row == nil {
		return 0, fmt.Errorf("service %q: %w", serviceID, models.ErrConfigurationMissing)
	}
	var dur int
	if len(row) >= 3 {
		dur, _ = cellInt(row[2])
	}
	if dur <= 0 {
		// Known service without an explicit duration: fall back to the
		// configured default interval.
		dur = s.cfg.SlotInterval()
	}
	if dur <= 0 {
		return 0, fmt.Errorf("service %q has no duration: %w", serviceID, models.ErrConfigurationMissing)
	}
	s.cache.Write(ctx, key, dur)
	return dur, nil
}

// ServiceLabel resolves the display name of a service, falling back to
// the id when the sheet has no label.
func (s *SheetsService) ServiceLabel(ctx context.Context, serviceID string) (string, error) {
	row, err := s.findData(ctx, s.cfg.Sheets.Services, serviceID)
	if err != nil {
		return "", err
	}
	if row == nil || len(row) < 2 || cellString(row[1]) == "" {
		return serviceID, nil
	}
	return strings.TrimSpace(cellString(row[1])), nil
}

// WeeklyHours returns all hours rows for a resource from the hours tab
// (resource, day, open, close). Rows with unparsable hours are skipped
// with a log line instead of failing the whole read.
func (s *SheetsService) WeeklyHours(ctx context.Context, resourceID string) ([]models.HoursRow, error) {
	key := "sheets:hours:" + resourceID
	var cached []models.HoursRow
	if s.cache.Read(ctx, key, &cached) {
		return cached, nil
	}

	rows, err := s.readRange(ctx, s.cfg.Sheets.Hours+"!A2:D")
	if err != nil {
		return nil, err
	}

	want := strings.ToUpper(strings.TrimSpace(resourceID))
	var out []models.HoursRow
	for i, row := range rows {
		if len(row) < 4 {
			continue
		}
		if strings.ToUpper(strings.TrimSpace(cellString(row[0]))) != want {
			continue
		}
		open, err1 := cellInt(row[2])
		closeHour, err2 := cellInt(row[3])
		if err1 != nil || err2 != nil {
			s.logger.Warn().Int("row", i+2).Str("resource", resourceID).
				Msg("hours row has non-numeric open/close, skipping")
			continue
		}
		out = append(out, models.HoursRow{
			Resource:  strings.TrimSpace(cellString(row[0])),
			Day:       strings.TrimSpace(cellString(row[1])),
			OpenHour:  open,
			CloseHour: closeHour,
		})
	}
	s.cache.Write(ctx, key, out)
	return out, nil
}

// ensureClientsTab creates the clients tab with its header row the first
// time the log is touched. Races with another instance are benign: the
// duplicate-sheet error is ignored.
func (s *SheetsService) ensureClientsTab(ctx context.Context) error {
	s.ensureOnce.Do(func() {
		tab := s.cfg.Sheets.Clients
		meta, err := s.svc.Spreadsheets.Get(s.sheetID).Fields("sheets.properties.title").Context(ctx).Do()
		if err != nil {
			s.ensureErr = wrapAPIError("inspect %s", tab, err)
			return
		}
		for _, sh := range meta.Sheets {
			if sh.Properties.Title == tab {
				return
			}
		}

		req := &sheets.BatchUpdateSpreadsheetRequest{
			Requests: []*sheets.Request{{
				AddSheet: &sheets.AddSheetRequest{
					Properties: &sheets.SheetProperties{Title: tab},
				},
			}},
		}
		if _, err := s.svc.Spreadsheets.BatchUpdate(s.sheetID, req).Context(ctx).Do(); err != nil {
			var gerr *googleapi.Error
			if !errors.As(err, &gerr) || gerr.Code != 400 {
				s.ensureErr = wrapAPIError("create %s", tab, err)
				return
			}
		}
		_, err = s.svc.Spreadsheets.Values.Update(
			s.sheetID, tab+"!A1",
			&sheets.ValueRange{Values: [][]interface{}{clientHeaders}},
		).ValueInputOption("RAW").Context(ctx).Do()
		if err != nil {
			s.ensureErr = wrapAPIError("write headers to %s", tab, err)
		}
	})
	return s.ensureErr
}

// Append adds one record to the end of the client log.
func (s *SheetsService) Append(ctx context.Context, rec models.ClientRecord) error {
	if err := s.ensureClientsTab(ctx); err != nil {
		return err
	}
	tab := s.cfg.Sheets.Clients
	resp, err := s.svc.Spreadsheets.Values.Append(
		s.sheetID, tab+"!A:J",
		&sheets.ValueRange{Values: [][]interface{}{recordRowValues(&rec)}},
	).ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return wrapAPIError("append to %s", tab, err)
	}
	if row, ok := appendedRow(resp); ok {
		s.setCachedRow(rec.Code, row)
	}
	return nil
}

// UpdateStatus rewrites the Estado column of the record with the given
// reservation code.
func (s *SheetsService) UpdateStatus(ctx context.Context, code, status string) error {
	row, ok := s.getCachedRow(code)
	if !ok {
		var err error
		if row, _, err = s.scanForCode(ctx, code); err != nil {
			return err
		}
		if row == 0 {
			return fmt.Errorf("record %q: %w", code, models.ErrNotFound)
		}
	}

	tab := s.cfg.Sheets.Clients
	rng := fmt.Sprintf("%s!%s%d", tab, statusColumn, row)
	_, err := s.svc.Spreadsheets.Values.Update(
		s.sheetID, rng,
		&sheets.ValueRange{Values: [][]interface{}{{status}}},
	).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		s.deleteCachedRow(code)
		return wrapAPIError("update %s", rng, err)
	}
	return nil
}

// FindByCode returns the client record for a reservation code, or
// ErrNotFound.
func (s *SheetsService) FindByCode(ctx context.Context, code string) (*models.ClientRecord, error) {
	row, rec, err := s.scanForCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if row == 0 {
		return nil, fmt.Errorf("record %q: %w", code, models.ErrNotFound)
	}
	return rec, nil
}

// scanForCode walks the client log looking for a code. Returns the
// 1-based row (0 when absent) and the parsed record, caching the row on
// a hit.
func (s *SheetsService) scanForCode(ctx context.Context, code string) (int, *models.ClientRecord, error) {
	rows, err := s.readRange(ctx, s.cfg.Sheets.Clients+"!A2:J")
	if err != nil {
		return 0, nil, err
	}
	want := strings.ToUpper(strings.TrimSpace(code))
	for i, row := range rows {
		if len(row) < 2 {
			continue
		}
		if strings.ToUpper(strings.TrimSpace(cellString(row[1]))) != want {
			continue
		}
		sheetRow := i + 2
		s.setCachedRow(want, sheetRow)
		return sheetRow, parseRecordRow(row), nil
	}
	return 0, nil, nil
}

func (s *SheetsService) getCachedRow(code string) (int, bool) {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	row, ok := s.rowCache[strings.ToUpper(code)]
	return row, ok
}

func (s *SheetsService) setCachedRow(code string, row int) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.rowCache[strings.ToUpper(code)] = row
}

func (s *SheetsService) deleteCachedRow(code string) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	delete(s.rowCache, strings.ToUpper(code))
}

// ClearCache drops all cached row positions.
func (s *SheetsService) ClearCache() {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.rowCache = make(map[string]int)
}

func recordRowValues(rec *models.ClientRecord) []interface{} {
	return []interface{}{
		rec.RegisteredAt.Format(recordTimeLayout),
		rec.Code,
		rec.ClientName,
		rec.Phone,
		rec.Email,
		rec.ResourceLabel,
		rec.Date,
		rec.Time,
		rec.ServiceLabel,
		rec.Status,
	}
}

func parseRecordRow(row []interface{}) *models.ClientRecord {
	rec := &models.ClientRecord{}
	get := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(cellString(row[i]))
		}
		return ""
	}
	if t, err := parseRecordTime(get(0)); err == nil {
		rec.RegisteredAt = t
	}
	rec.Code = get(1)
	rec.ClientName = get(2)
	rec.Phone = get(3)
	rec.Email = get(4)
	rec.ResourceLabel = get(5)
	rec.Date = get(6)
	rec.Time = get(7)
	rec.ServiceLabel = get(8)
	rec.Status = get(9)
	return rec
}

// appendedRow extracts the 1-based row of the appended record from the
// A1 range the API echoes back, e.g. "CLIENTES!A7:J7".
func appendedRow(resp *sheets.AppendValuesResponse) (int, bool) {
	if resp == nil || resp.Updates == nil {
		return 0, false
	}
	rng := resp.Updates.UpdatedRange
	idx := strings.LastIndexByte(rng, 'A')
	if idx < 0 {
		return 0, false
	}
	rest := rng[idx+1:]
	if colon := strings.IndexByte(rest, ':'); colon >= 0 {
		rest = rest[:colon]
	}
	row, err := strconv.Atoi(rest)
	if err != nil || row <= 0 {
		return 0, false
	}
	return row, true
}

func cellString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func cellInt(v interface{}) (int, error) {
	switch t := v.(type) {
	case float64:
		return int(t), nil
	case string:
		return strconv.Atoi(strings.TrimSpace(t))
	default:
		return 0, fmt.Errorf("cell %v is not numeric", v)
	}
}

func parseRecordTime(s string) (t time.Time, err error) {
	return time.ParseInLocation(recordTimeLayout, s, time.Local)
}

func wrapAPIError(format, arg string, err error) error {
	msg := fmt.Sprintf(format, arg)
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code >= 500 {
		return fmt.Errorf("%s: %w: %v", msg, models.ErrBackendUnavailable, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
