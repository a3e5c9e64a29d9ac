package main

import (
	"context"
	"time"
)

type CalendarProvider interface {
	GetCalendar(ctx context.Context, calendarID string) error
	AddEvent(ctx context.Context, calendarID string, event *Event) (*Event, error)
	DeleteEvent(ctx context.Context, calendarID string, eventID string) error
	ListEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]*Event, error)
}

type Event struct {
	ID          string
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	TimeZone    string
	Link        string
	Status      string
}
