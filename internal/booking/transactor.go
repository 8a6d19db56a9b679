// Package booking turns a chosen slot into a confirmed reservation and
// handles cancellation by reservation code.
package booking

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"valgop/internal/config"
	"valgop/internal/metrics"
	"valgop/internal/models"

	"github.com/rs/zerolog"
)

// State of a booking transaction.
type State string

const (
	StateRequested       State = "requested"
	StateConflictChecked State = "conflict_checked"
	StateCreated         State = "created"
	StateRejected        State = "rejected"
)

// Cancellation scan bounds around "now".
const (
	cancelScanBack    = 30 * 24 * time.Hour
	cancelScanForward = 90 * 24 * time.Hour
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ConfigProvider supplies the sheet-backed configuration used on the
// booking path.
type ConfigProvider interface {
	ServiceDuration(ctx context.Context, serviceID string) (int, error)
	ResourceCalendarID(ctx context.Context, resourceID string) (string, error)
	ResourceLabel(ctx context.Context, resourceID string) (string, error)
	ServiceLabel(ctx context.Context, serviceID string) (string, error)
}

// PolicyResolver reports the effective working-hours policy for a day, so
// bookings on closed days are rejected before touching the calendar.
type PolicyResolver interface {
	Resolve(ctx context.Context, resourceID string, date time.Time) (models.DayPolicy, error)
}

// EventRef identifies one calendar event for the cancellation scan.
type EventRef struct {
	ID      string
	Summary string
	Start   time.Time
}

// Calendar is the event backend the transactor writes to.
type Calendar interface {
	ListBusy(ctx context.Context, calendarID string, from, to time.Time) ([]models.BusyInterval, error)
	ListEvents(ctx context.Context, calendarID string, from, to time.Time) ([]EventRef, error)
	InsertEvent(ctx context.Context, calendarID string, start, end time.Time, title, description string) (string, error)
	DeleteEvent(ctx context.Context, calendarID, eventID string) error
}

// RecordStore persists the append-only client log.
type RecordStore interface {
	Append(ctx context.Context, rec models.ClientRecord) error
	UpdateStatus(ctx context.Context, code, status string) error
	FindByCode(ctx context.Context, code string) (*models.ClientRecord, error)
}

// Notifier delivers confirmations. Delivery failures never fail a booking.
type Notifier interface {
	SendConfirmation(ctx context.Context, rec models.ClientRecord) error
	SendCancellation(ctx context.Context, rec models.ClientRecord) error
}

// Request carries one booking attempt.
type Request struct {
	ResourceID  string
	ServiceID   string
	Date        string // YYYY-MM-DD
	Time        string // HH:MM
	ClientName  string
	ClientEmail string
	ClientPhone string
	ServiceName string // optional display override
}

// Result reports the outcome of a booking attempt.
type Result struct {
	State   State
	Code    string
	EventID string
	Record  models.ClientRecord
}

// Transactor executes the conflict-check-then-insert transition under a
// per-resource lock.
type Transactor struct {
	cfg      *config.Config
	provider ConfigProvider
	calendar Calendar
	records  RecordStore
	notifier Notifier
	policies PolicyResolver
	clock    models.Clock
	loc      *time.Location
	locks    *keyedMutex
	logger   *zerolog.Logger
}

func NewTransactor(
	cfg *config.Config,
	provider ConfigProvider,
	calendar Calendar,
	records RecordStore,
	notifier Notifier,
	policies PolicyResolver,
	clock models.Clock,
	loc *time.Location,
	logger *zerolog.Logger,
) *Transactor {
	return &Transactor{
		cfg:      cfg,
		provider: provider,
		calendar: calendar,
		records:  records,
		notifier: notifier,
		policies: policies,
		clock:    clock,
		loc:      loc,
		locks:    newKeyedMutex(),
		logger:   logger,
	}
}

// Book validates the request, checks for conflicts and inserts the event.
// Exactly one of two concurrent attempts at the same slot can succeed: the
// check and the insert run under the resource's lock.
func (t *Transactor) Book(ctx context.Context, req Request) (*Result, error) {
	if err := t.validate(req); err != nil {
		return &Result{State: StateRejected}, err
	}

	start, err := time.ParseInLocation("2006-01-02 15:04", req.Date+" "+req.Time, t.loc)
	if err != nil {
		return &Result{State: StateRejected}, fmt.Errorf("%w: date/time %q %q", models.ErrInvalidInput, req.Date, req.Time)
	}

	policy, err := t.policies.Resolve(ctx, req.ResourceID, start)
	if err != nil {
		return &Result{State: StateRejected}, err
	}
	if policy.Closed() {
		return &Result{State: StateRejected}, fmt.Errorf("%w: %s", models.ErrDayClosed, req.Date)
	}

	now := t.clock.Now(t.loc)
	if models.SameDate(start, now) && start.Before(now.Add(t.cfg.LeadTime())) {
		return &Result{State: StateRejected},
			fmt.Errorf("%w: bookings require %d minutes notice", models.ErrInvalidInput, t.cfg.Booking.LeadTimeMinutes)
	}
	if start.After(now.AddDate(0, 0, t.cfg.Booking.MaxDaysAhead)) {
		return &Result{State: StateRejected},
			fmt.Errorf("%w: date beyond %d days ahead", models.ErrInvalidInput, t.cfg.Booking.MaxDaysAhead)
	}

	calendarID, err := t.provider.ResourceCalendarID(ctx, req.ResourceID)
	if err != nil {
		return &Result{State: StateRejected}, err
	}
	duration, err := t.provider.ServiceDuration(ctx, req.ServiceID)
	if err != nil {
		return &Result{State: StateRejected}, err
	}
	resourceLabel, err := t.provider.ResourceLabel(ctx, req.ResourceID)
	if err != nil {
		resourceLabel = "Especialista"
	}
	serviceLabel := req.ServiceName
	if serviceLabel == "" {
		if label, err := t.provider.ServiceLabel(ctx, req.ServiceID); err == nil {
			serviceLabel = label
		} else {
			serviceLabel = "Servicio"
		}
	}

	end := start.Add(time.Duration(duration) * time.Minute)

	unlock := t.locks.Lock(req.ResourceID)
	defer unlock()

	busy, err := t.calendar.ListBusy(ctx, calendarID, start, end)
	if err != nil {
		return &Result{State: StateRequested}, fmt.Errorf("conflict check: %w", err)
	}
	if len(busy) > 0 {
		metrics.IncBookingOutcome("conflict")
		t.logger.Info().
			Str("resource", req.ResourceID).
			Str("start", start.Format(time.RFC3339)).
			Int("conflicts", len(busy)).
			Msg("booking rejected, slot taken")
		return &Result{State: StateRejected}, models.ErrConflict
	}

	title := fmt.Sprintf("Cita: %s (%s)", req.ClientName, resourceLabel)
	description := fmt.Sprintf(
		"Cliente: %s\nEmail: %s\nTeléfono: %s\nServicio: %s\nDuración: %d min.",
		req.ClientName, req.ClientEmail, req.ClientPhone, serviceLabel, duration,
	)

	eventID, err := t.calendar.InsertEvent(ctx, calendarID, start, end, title, description)
	if err != nil {
		metrics.IncBookingOutcome("error")
		return &Result{State: StateConflictChecked}, fmt.Errorf("insert event: %w", err)
	}

	code := ReservationCode(eventID)
	metrics.IncBookingOutcome("created")

	rec := models.ClientRecord{
		RegisteredAt:  now,
		Code:          code,
		ClientName:    req.ClientName,
		Phone:         req.ClientPhone,
		Email:         req.ClientEmail,
		ResourceLabel: resourceLabel,
		Date:          req.Date,
		Time:          req.Time,
		ServiceLabel:  serviceLabel,
		Status:        models.StatusConfirmed,
	}

	if err := t.records.Append(ctx, rec); err != nil {
		// The reservation exists in the calendar; losing the log row is
		// recoverable and must not fail the booking.
		t.logger.Error().Err(err).Str("code", code).Msg("append client record failed")
	}

	if t.notifier != nil {
		if err := t.notifier.SendConfirmation(ctx, rec); err != nil {
			t.logger.Warn().Err(err).Str("code", code).Msg("confirmation not sent")
		}
	}

	t.logger.Info().
		Str("resource", req.ResourceID).
		Str("code", code).
		Str("start", start.Format(time.RFC3339)).
		Msg("booking created")

	return &Result{State: StateCreated, Code: code, EventID: eventID, Record: rec}, nil
}

// Cancel finds the event whose id prefix matches the code within a bounded
// window around now, deletes it and marks the client record CANCELADA. A
// miss reports not-found without side effects.
func (t *Transactor) Cancel(ctx context.Context, resourceID, code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return fmt.Errorf("%w: empty reservation code", models.ErrInvalidInput)
	}

	calendarID, err := t.provider.ResourceCalendarID(ctx, resourceID)
	if err != nil {
		return err
	}

	now := t.clock.Now(t.loc)
	events, err := t.calendar.ListEvents(ctx, calendarID, now.Add(-cancelScanBack), now.Add(cancelScanForward))
	if err != nil {
		return fmt.Errorf("list events: %w", err)
	}

	for _, ev := range events {
		if !matchesCode(ev.ID, code) {
			continue
		}
		if err := t.calendar.DeleteEvent(ctx, calendarID, ev.ID); err != nil {
			return fmt.Errorf("delete event %s: %w", ev.ID, err)
		}
		metrics.IncBookingCancelled()

		if err := t.records.UpdateStatus(ctx, code, models.StatusCancelled); err != nil {
			if errors.Is(err, models.ErrNotFound) {
				t.logger.Warn().Str("code", code).Msg("no client record for code")
			} else {
				t.logger.Error().Err(err).Str("code", code).Msg("status update failed")
			}
		}

		if t.notifier != nil {
			if rec, err := t.records.FindByCode(ctx, code); err == nil && rec != nil {
				if err := t.notifier.SendCancellation(ctx, *rec); err != nil {
					t.logger.Warn().Err(err).Str("code", code).Msg("cancellation notice not sent")
				}
			}
		}

		t.logger.Info().Str("code", code).Str("event", ev.ID).Msg("reservation cancelled")
		return nil
	}

	return fmt.Errorf("%w: reservation %s", models.ErrNotFound, code)
}

// Lookup returns the client record behind a reservation code.
func (t *Transactor) Lookup(ctx context.Context, code string) (*models.ClientRecord, error) {
	if strings.TrimSpace(code) == "" {
		return nil, fmt.Errorf("%w: empty reservation code", models.ErrInvalidInput)
	}
	return t.records.FindByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
}

func (t *Transactor) validate(req Request) error {
	var missing []string
	if strings.TrimSpace(req.ResourceID) == "" {
		missing = append(missing, "calendar")
	}
	if strings.TrimSpace(req.ServiceID) == "" {
		missing = append(missing, "service")
	}
	if strings.TrimSpace(req.Date) == "" {
		missing = append(missing, "date")
	}
	if strings.TrimSpace(req.Time) == "" {
		missing = append(missing, "time")
	}
	if strings.TrimSpace(req.ClientName) == "" {
		missing = append(missing, "clientName")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", models.ErrInvalidInput, strings.Join(missing, ", "))
	}

	if !emailPattern.MatchString(req.ClientEmail) {
		return fmt.Errorf("%w: email %q", models.ErrInvalidInput, req.ClientEmail)
	}
	if len(req.ClientPhone) < t.cfg.Booking.PhoneMinLength {
		return fmt.Errorf("%w: phone too short", models.ErrInvalidInput)
	}
	return nil
}
