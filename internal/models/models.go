// Package models holds the domain types shared across the availability
// engine and its collaborators.
package models

import (
	"time"
)

// PolicyKind tags the resolved day policy.
type PolicyKind int

const (
	// PolicyClosed means the day is not bookable at all (e.g. Sunday,
	// or no hours row matched).
	PolicyClosed PolicyKind = iota
	// PolicySpecial is a dedicated shortened schedule (Saturday).
	PolicySpecial
	// PolicyStandard is the regular weekday schedule.
	PolicyStandard
)

// DayPolicy is the effective working-hours policy for one resource on one
// date, resolved fresh per request. Hours are whole 24h-clock integers.
type DayPolicy struct {
	Kind       PolicyKind
	OpenHour   int
	CloseHour  int
	LunchStart int
	LunchEnd   int
	HasLunch   bool
}

// Closed reports whether the day is non-bookable.
func (p DayPolicy) Closed() bool {
	return p.Kind == PolicyClosed || p.CloseHour-p.OpenHour <= 0
}

/// HoursRow is one raw row of the weekly-hours table: resource id, a day
// cell (numeric or localized name), and open/close hours.
type HoursRow struct {
	Resource  string
	Day       string
	OpenHour  int
	CloseHour int
}

// BusyInterval is an occupied half-open interval [Start, End) on a
// resource calendar. Read-only to the engine.
type BusyInterval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether the half-open intervals [b.Start, b.End) and
// [start, end) intersect.
func (b BusyInterval) Overlaps(start, end time.Time) bool {
	return b.Start.Before(end) && start.Before(b.End)
}

// DayAvailability is the computed availability for one resource-day.
// TotalCapacity is derived from the raw open/close span and the service
// duration; it deliberately does not subtract the lunch window.
type DayAvailability struct {
	Date                 string   `json:"date"`
	Resource             string   `json:"resource"`
	Slots                []string `json:"slots"`
	TotalCapacity        int      `json:"total_capacity"`
	OccupiedCount        int      `json:"occupied_count"`
	OccupationPercentage int      `json:"occupation_percentage"`
}

// Direction of an alternative day relative to the requested date.
const (
	DirectionPosterior = "posterior"
	DirectionAnterior  = "anterior"
)

// AlternativeDay is a candidate produced by the alternative-day search.
// Backward candidates carry priorities offset by a large constant so
// forward days always sort first.
type AlternativeDay struct {
	DayAvailability
	DistanceDays int    `json:"distance_days"`
	Direction    string `json:"direction"`
	Priority     int    `json:"priority"`
}

// Client record statuses as stored in the CLIENTES sheet.
const (
	StatusConfirmed = "CONFIRMADA"
	StatusCancelled = "CANCELADA"
)

// ClientRecord is one append-only row of the client log.
type ClientRecord struct {
	RegisteredAt  time.Time `json:"registered_at"`
	Code          string    `json:"reservation_code"`
	ClientName    string    `json:"client_name"`
	Phone         string    `json:"phone"`
	Email         string    `json:"email"`
	ResourceLabel string    `json:"resource_label"`
	Date          string    `json:"date"`
	Time          string    `json:"time"`
	ServiceLabel  string    `json:"service_label"`
	Status        string    `json:"status"`
}

// Clock supplies the current instant in a given time zone. Injectable so
// lead-time and "is today" checks are deterministic in tests.
type Clock interface {
	Now(loc *time.Location) time.Time
}

// SystemClock is the production Clock.
type SystemClock struct{}

func (SystemClock) Now(loc *time.Location) time.Time {
	return time.Now().In(loc)
}

// SameDate reports whether two instants fall on the same calendar date in
// a's location.
func SameDate(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.In(a.Location()).Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// StartOfDay truncates an instant to midnight in its location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
