package main

import (
	"context"
	"time"
)

// Booker books a single event on the shared calendar.
type Booker interface {
	BookEvent(ctx context.Context, start, end time.Time, timezone, summary, description string) (*Event, error)
}

// CalendarBooker books onto one calendar of a CalendarProvider.
type CalendarBooker struct {
	provider   CalendarProvider
	calendarID string
}

func NewCalendarBooker(provider CalendarProvider, calendarID string) *CalendarBooker {
	return &CalendarBooker{provider: provider, calendarID: calendarID}
}

func (b *CalendarBooker) BookEvent(ctx context.Context, start, end time.Time, timezone, summary, description string) (*Event, error) {
	return b.provider.AddEvent(ctx, b.calendarID, &Event{
		Summary:     summary,
		Description: description,
		Start:       start,
		End:         end,
		TimeZone:    timezone,
	})
}
