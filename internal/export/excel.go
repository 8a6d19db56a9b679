// Package export renders the client log as an Excel workbook for
// download or offline archiving.
package export

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"valgop/internal/models"
)

// RecordLister supplies records for export; satisfied by the SQLite store.
type RecordLister interface {
	ListAll(ctx context.Context) ([]models.ClientRecord, error)
}

var exportColumns = []string{
	"Fecha Registro", "Código", "Nombre", "Teléfono", "Email",
	"Especialista", "Fecha", "Hora", "Servicio", "Estado",
}

// ClientLogExporter writes the full client log into one sheet per status.
type ClientLogExporter struct {
	records RecordLister
}

func NewClientLogExporter(records RecordLister) *ClientLogExporter {
	return &ClientLogExporter{records: records}
}

// Write streams the workbook to w. Records are split into one sheet for
// confirmed reservations and one for cancelled ones.
func (e *ClientLogExporter) Write(ctx context.Context, w io.Writer) error {
	records, err := e.records.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("load records: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheets := []struct {
		name   string
		status string
	}{
		{"Confirmadas", models.StatusConfirmed},
		{"Canceladas", models.StatusCancelled},
	}

	for i, sh := range sheets {
		if i == 0 {
			f.SetSheetName("Sheet1", sh.name)
		} else if _, err := f.NewSheet(sh.name); err != nil {
			return fmt.Errorf("create sheet %s: %w", sh.name, err)
		}
		if err := writeSheet(f, sh.name, filterByStatus(records, sh.status)); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, records []models.ClientRecord) error {
	for i, col := range exportColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, col); err != nil {
			return err
		}
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		start, _ := excelize.CoordinatesToCellName(1, 1)
		end, _ := excelize.CoordinatesToCellName(len(exportColumns), 1)
		_ = f.SetCellStyle(sheet, start, end, style)
	}

	for r, rec := range records {
		values := recordValues(rec)
		for c, val := range values {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, val); err != nil {
				return err
			}
		}
	}
	return nil
}

func recordValues(rec models.ClientRecord) []interface{} {
	registered := ""
	if !rec.RegisteredAt.IsZero() {
		registered = rec.RegisteredAt.Format(time.DateTime)
	}
	return []interface{}{
		registered, rec.Code, rec.ClientName, rec.Phone, rec.Email,
		rec.ResourceLabel, rec.Date, rec.Time, rec.ServiceLabel, rec.Status,
	}
}

func filterByStatus(records []models.ClientRecord, status string) []models.ClientRecord {
	out := make([]models.ClientRecord, 0, len(records))
	for _, rec := range records {
		if rec.Status == status {
			out = append(out, rec)
		}
	}
	return out
}
