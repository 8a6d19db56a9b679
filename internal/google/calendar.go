package google

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/api/calendar/v3"

	"valgop/internal/booking"
	"valgop/internal/models"
)

// CalendarService adapts the Google Calendar API to the busy-interval
// reads and event writes the engine needs.
type CalendarService struct {
	svc    *calendar.Service
	loc    *time.Location
	logger zerolog.Logger
}

func NewCalendarService(svc *calendar.Service, loc *time.Location, logger zerolog.Logger) *CalendarService {
	return &CalendarService{
		svc:    svc,
		loc:    loc,
		logger: logger.With().Str("component", "calendar").Logger(),
	}
}

// ListBusy queries free/busy for one calendar over [from, to).
func (c *CalendarService) ListBusy(ctx context.Context, calendarID string, from, to time.Time) ([]models.BusyInterval, error) {
	req := &calendar.FreeBusyRequest{
		TimeMin: from.Format(time.RFC3339),
		TimeMax: to.Format(time.RFC3339),
		Items:   []*calendar.FreeBusyRequestItem{{Id: calendarID}},
	}
	resp, err := c.svc.Freebusy.Query(req).Context(ctx).Do()
	if err != nil {
		return nil, wrapAPIError("freebusy %s", calendarID, err)
	}

	cal, ok := resp.Calendars[calendarID]
	if !ok {
		return nil, nil
	}
	busy := make([]models.BusyInterval, 0, len(cal.Busy))
	for _, p := range cal.Busy {
		start, err1 := time.Parse(time.RFC3339, p.Start)
		end, err2 := time.Parse(time.RFC3339, p.End)
		if err1 != nil || err2 != nil {
			c.logger.Warn().Str("calendar", calendarID).Str("start", p.Start).Str("end", p.End).
				Msg("unparsable busy period, skipping")
			continue
		}
		busy = append(busy, models.BusyInterval{
			Start: start.In(c.loc),
			End:   end.In(c.loc),
		})
	}
	return busy, nil
}

// ListEvents returns event references over [from, to), expanded for the
// cancellation scan.
func (c *CalendarService) ListEvents(ctx context.Context, calendarID string, from, to time.Time) ([]booking.EventRef, error) {
	call := c.svc.Events.List(calendarID).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(2500)

	var refs []booking.EventRef
	for {
		resp, err := call.Context(ctx).Do()
		if err != nil {
			return nil, wrapAPIError("list events %s", calendarID, err)
		}
		for _, ev := range resp.Items {
			if ev.Status == "cancelled" {
				continue
			}
			refs = append(refs, booking.EventRef{
				ID:      ev.Id,
				Summary: ev.Summary,
				Start:   eventStart(ev, c.loc),
			})
		}
		if resp.NextPageToken == "" {
			return refs, nil
		}
		call = call.PageToken(resp.NextPageToken)
	}
}

// InsertEvent creates a timed event and returns its id.
func (c *CalendarService) InsertEvent(ctx context.Context, calendarID string, start, end time.Time, title, description string) (string, error) {
	ev := &calendar.Event{
		Summary:     title,
		Description: description,
		Start:       &calendar.EventDateTime{DateTime: start.Format(time.RFC3339), TimeZone: c.loc.String()},
		End:         &calendar.EventDateTime{DateTime: end.Format(time.RFC3339), TimeZone: c.loc.String()},
	}
	created, err := c.svc.Events.Insert(calendarID, ev).Context(ctx).Do()
	if err != nil {
		return "", wrapAPIError("insert event into %s", calendarID, err)
	}
	return created.Id, nil
}

// DeleteEvent removes an event by id.
func (c *CalendarService) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	if err := c.svc.Events.Delete(calendarID, eventID).Context(ctx).Do(); err != nil {
		return wrapAPIError("delete event from %s", calendarID, err)
	}
	return nil
}

func eventStart(ev *calendar.Event, loc *time.Location) time.Time {
	if ev.Start == nil {
		return time.Time{}
	}
	if ev.Start.DateTime != "" {
		if t, err := time.Parse(time.RFC3339, ev.Start.DateTime); err == nil {
			return t.In(loc)
		}
	}
	if ev.Start.Date != "" {
		if t, err := time.ParseInLocation("2006-01-02", ev.Start.Date, loc); err == nil {
			return t
		}
	}
	return time.Time{}
}
