package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Weekday numbers days Monday=1 .. Sunday=7, matching the HORARIOS sheet
// convention rather than time.Weekday (Sunday=0).
type Weekday int

const (
	Monday    Weekday = 1
	Tuesday   Weekday = 2
	Wednesday Weekday = 3
	Thursday  Weekday = 4
	Friday    Weekday = 5
	Saturday  Weekday = 6
	Sunday    Weekday = 7
)

var weekdayNames = map[Weekday]string{
	Monday:    "LUNES",
	Tuesday:   "MARTES",
	Wednesday: "MIERCOLES",
	Thursday:  "JUEVES",
	Friday:    "VIERNES",
	Saturday:  "SABADO",
	Sunday:    "DOMINGO",
}

var weekdayByName = func() map[string]Weekday {
	m := make(map[string]Weekday, len(weekdayNames))
	for d, name := range weekdayNames {
		m[name] = d
	}
	return m
}()

// WeekdayOf converts a calendar date to the 1..7 scheme.
func WeekdayOf(date time.Time) Weekday {
	d := int(date.Weekday())
	if d == 0 {
		return Sunday
	}
	return Weekday(d)
}

// Name returns the canonical upper-cased Spanish day name.
func (d Weekday) Name() string {
	return weekdayNames[d]
}

func (d Weekday) String() string {
	return d.Name()
}

// Valid reports whether d is within 1..7.
func (d Weekday) Valid() bool {
	return d >= Monday && d <= Sunday
}

var foldTransform = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// FoldDayName upper-cases a day label and strips diacritics, so
// "Miércoles" and "MIERCOLES" compare equal.
func FoldDayName(s string) string {
	folded, _, err := transform.String(foldTransform, strings.TrimSpace(s))
	if err != nil {
		folded = strings.TrimSpace(s)
	}
	return strings.ToUpper(folded)
}

// ParseWeekday accepts either the numeric form ("1".."7") or a localized
// day name in any casing, with or without accents.
func ParseWeekday(s string) (Weekday, error) {
	trimmed := strings.TrimSpace(s)
	if n, err := strconv.Atoi(trimmed); err == nil {
		d := Weekday(n)
		if !d.Valid() {
			return 0, fmt.Errorf("weekday number out of range: %d", n)
		}
		return d, nil
	}
	if d, ok := weekdayByName[FoldDayName(trimmed)]; ok {
		return d, nil
	}
	return 0, fmt.Errorf("unknown weekday: %q", s)
}

// MatchesDay reports whether a raw sheet cell refers to the given weekday,
// by number or by name.
func MatchesDay(cell string, day Weekday) bool {
	parsed, err := ParseWeekday(cell)
	return err == nil && parsed == day
}
