package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

type GoogleCalendarProvider struct {
	service     *calendar.Service
	sendUpdates string
}

func NewGoogleCalendarProvider(ctx context.Context, client *http.Client, opts ...option.ClientOption) (*GoogleCalendarProvider, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(client)}, opts...)
	service, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	return &GoogleCalendarProvider{
		service:     service,
		sendUpdates: "all",
	}, nil
}

func (g *GoogleCalendarProvider) GetCalendar(ctx context.Context, calendarID string) error {
	_, err := g.service.CalendarList.Get(calendarID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to get calendar: %w", err)
	}
	return nil
}

// AddEvent inserts the event and asks Google to mail any attendees.
func (g *GoogleCalendarProvider) AddEvent(ctx context.Context, calendarID string, event *Event) (*Event, error) {
	googleEvent := &calendar.Event{
		Summary:     event.Summary,
		Description: event.Description,
		Start: &calendar.EventDateTime{
			DateTime: event.Start.Format(time.RFC3339),
			TimeZone: event.TimeZone,
		},
		End: &calendar.EventDateTime{
			DateTime: event.End.Format(time.RFC3339),
			TimeZone: event.TimeZone,
		},
	}

	call := g.service.Events.Insert(calendarID, googleEvent).Context(ctx)
	if g.sendUpdates != "" {
		call = call.SendUpdates(g.sendUpdates)
	}
	created, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	return fromGoogleEvent(created), nil
}

func (g *GoogleCalendarProvider) DeleteEvent(ctx context.Context, calendarID string, eventID string) error {
	err := g.service.Events.Delete(calendarID, eventID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

func (g *GoogleCalendarProvider) ListEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]*Event, error) {
	events, err := g.service.Events.List(calendarID).
		TimeMin(timeMin.Format(time.RFC3339)).
		TimeMax(timeMax.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()

	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	var result []*Event
	for _, item := range events.Items {
		result = append(result, fromGoogleEvent(item))
	}

	return result, nil
}

func fromGoogleEvent(item *calendar.Event) *Event {
	event := &Event{
		ID:          item.Id,
		Summary:     item.Summary,
		Description: item.Description,
		Link:        item.HtmlLink,
		Status:      item.Status,
	}
	if item.Start != nil {
		event.Start, _ = time.Parse(time.RFC3339, item.Start.DateTime)
		event.TimeZone = item.Start.TimeZone
	}
	if item.End != nil {
		event.End, _ = time.Parse(time.RFC3339, item.End.DateTime)
	}
	return event
}
