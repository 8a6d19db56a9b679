package google

import (
	"testing"
	"time"

	"google.golang.org/api/sheets/v4"

	"valgop/internal/models"
)

func TestRecordRowValues(t *testing.T) {
	rec := &models.ClientRecord{
		RegisteredAt:  time.Date(2025, 3, 11, 10, 30, 0, 0, time.UTC),
		Code:          "ABC123",
		ClientName:    "Ana García",
		Phone:         "5512345678",
		Email:         "ana@example.com",
		ResourceLabel: "Juan",
		Date:          "2025-03-12",
		Time:          "11:00",
		ServiceLabel:  "Corte de cabello",
		Status:        models.StatusConfirmed,
	}

	values := recordRowValues(rec)

	expected := []interface{}{
		"2025-03-11 10:30:00",
		"ABC123",
		"Ana García",
		"5512345678",
		"ana@example.com",
		"Juan",
		"2025-03-12",
		"11:00",
		"Corte de cabello",
		"CONFIRMADA",
	}

	if len(values) != len(expected) {
		t.Fatalf("Expected %d values, got %d", len(expected), len(values))
	}
	for i, v := range values {
		if v != expected[i] {
			t.Errorf("At index %d: expected %v, got %v", i, expected[i], v)
		}
	}
}

func TestParseRecordRow_RoundTrip(t *testing.T) {
	rec := &models.ClientRecord{
		RegisteredAt:  time.Date(2025, 3, 11, 10, 30, 0, 0, time.Local),
		Code:          "ABC123",
		ClientName:    "Ana García",
		Phone:         "5512345678",
		Email:         "ana@example.com",
		ResourceLabel: "Juan",
		Date:          "2025-03-12",
		Time:          "11:00",
		ServiceLabel:  "Corte",
		Status:        models.StatusCancelled,
	}

	got := parseRecordRow(recordRowValues(rec))

	if got.Code != rec.Code || got.ClientName != rec.ClientName || got.Status != rec.Status {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if !got.RegisteredAt.Equal(rec.RegisteredAt) {
		t.Errorf("Expected %v, got %v", rec.RegisteredAt, got.RegisteredAt)
	}
}

func TestParseRecordRow_ShortRow(t *testing.T) {
	got := parseRecordRow([]interface{}{"", "ABC123", "Ana"})
	if got.Code != "ABC123" || got.ClientName != "Ana" {
		t.Errorf("unexpected record: %+v", got)
	}
	if got.Status != "" {
		t.Errorf("Expected empty status, got %q", got.Status)
	}
}

func TestRowCacheOperations(t *testing.T) {
	s := &SheetsService{rowCache: make(map[string]int)}

	s.setCachedRow("abc123", 5)
	row, ok := s.getCachedRow("ABC123")
	if !ok || row != 5 {
		t.Errorf("Expected row 5, got %d (ok=%v)", row, ok)
	}

	s.deleteCachedRow("ABC123")
	if _, ok = s.getCachedRow("abc123"); ok {
		t.Errorf("Expected row to be deleted from cache")
	}

	s.setCachedRow("DEF456", 10)
	s.ClearCache()
	if _, ok = s.getCachedRow("DEF456"); ok {
		t.Errorf("Expected cache to be cleared")
	}
}

func TestAppendedRow(t *testing.T) {
	resp := &sheets.AppendValuesResponse{
		Updates: &sheets.UpdateValuesResponse{UpdatedRange: "CLIENTES!A7:J7"},
	}
	row, ok := appendedRow(resp)
	if !ok || row != 7 {
		t.Errorf("Expected row 7, got %d (ok=%v)", row, ok)
	}

	if _, ok := appendedRow(nil); ok {
		t.Error("Expected no row from nil response")
	}
	if _, ok := appendedRow(&sheets.AppendValuesResponse{}); ok {
		t.Error("Expected no row without updates")
	}
}

func TestCellHelpers(t *testing.T) {
	if got := cellString("hola"); got != "hola" {
		t.Errorf("Expected hola, got %q", got)
	}
	if got := cellString(float64(12)); got != "12" {
		t.Errorf("Expected 12, got %q", got)
	}

	if n, err := cellInt(float64(14)); err != nil || n != 14 {
		t.Errorf("Expected 14, got %d (%v)", n, err)
	}
	if n, err := cellInt(" 19 "); err != nil || n != 19 {
		t.Errorf("Expected 19, got %d (%v)", n, err)
	}
	if _, err := cellInt("diez"); err == nil {
		t.Error("Expected error for non-numeric cell")
	}
}
