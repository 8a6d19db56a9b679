package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"valgop/internal/booking"
	"valgop/internal/metrics"
	"valgop/internal/models"
)

// handleAvailability answers the main availability query.
// GET /api/availability?resource=ID&service=ID&date=YYYY-MM-DD
func (s *HTTPServer) handleAvailability(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("availability")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	q := r.URL.Query()
	resource := strings.TrimSpace(q.Get("resource"))
	service := strings.TrimSpace(q.Get("service"))
	date := strings.TrimSpace(q.Get("date"))
	if resource == "" || service == "" || date == "" {
		writeError(w, http.StatusBadRequest, "resource, service and date are required")
		return
	}

	result, err := s.availability.GetAvailability(r.Context(), resource, service, date)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// BookingRequest is the request body for POST /api/bookings.
type BookingRequest struct {
	Resource    string `json:"resource"`
	Service     string `json:"service"`
	Date        string `json:"date"` // Format: YYYY-MM-DD
	Time        string `json:"time"` // Format: HH:MM
	ClientName  string `json:"client_name"`
	ClientEmail string `json:"client_email"`
	ClientPhone string `json:"client_phone"`
	ServiceName string `json:"service_name,omitempty"`
}

// BookingResponse is the response for a created booking.
type BookingResponse struct {
	Code    string              `json:"code"`
	EventID string              `json:"event_id"`
	Record  models.ClientRecord `json:"record"`
}

// handleBookings creates a reservation.
// POST /api/bookings
func (s *HTTPServer) handleBookings(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("bookings")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use POST")
		return
	}

	var req BookingRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	result, err := s.transactor.Book(r.Context(), booking.Request{
		ResourceID:  req.Resource,
		ServiceID:   req.Service,
		Date:        req.Date,
		Time:        req.Time,
		ClientName:  req.ClientName,
		ClientEmail: req.ClientEmail,
		ClientPhone: req.ClientPhone,
		ServiceName: req.ServiceName,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, BookingResponse{
		Code:    result.Code,
		EventID: result.EventID,
		Record:  result.Record,
	})
}

// handleBookingByCode looks up or cancels a reservation by code.
// GET    /api/bookings/{code}
// DELETE /api/bookings/{code}?resource=ID
func (s *HTTPServer) handleBookingByCode(w http.ResponseWriter, r *http.Request) {
	code := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/bookings/"), "/")
	if code == "" || strings.Contains(code, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		metrics.IncHTTP("booking_lookup")
		rec, err := s.transactor.Lookup(r.Context(), code)
		if err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)

	case http.MethodDelete:
		metrics.IncHTTP("booking_cancel")
		resource := strings.TrimSpace(r.URL.Query().Get("resource"))
		if resource == "" {
			writeError(w, http.StatusBadRequest, "resource is required")
			return
		}
		if err := s.transactor.Cancel(r.Context(), resource, code); err != nil {
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"code":   strings.ToUpper(code),
			"status": models.StatusCancelled,
		})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleNow reports the engine's current business-time instant, mostly for
// client-side clock sanity checks.
// GET /api/now
func (s *HTTPServer) handleNow(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("now")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	now := s.clock.Now(s.loc)
	writeJSON(w, http.StatusOK, map[string]string{
		"now":      now.Format(time.RFC3339),
		"date":     now.Format("2006-01-02"),
		"time":     now.Format("15:04"),
		"timezone": s.loc.String(),
	})
}

// handleExportClients streams the client log workbook.
// GET /api/export/clients
func (s *HTTPServer) handleExportClients(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("export_clients")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	filename := fmt.Sprintf("clientes_%s.xlsx", s.clock.Now(s.loc).Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := s.exporter.Write(r.Context(), w); err != nil {
		s.logger.Error().Err(err).Msg("export failed")
	}
}
