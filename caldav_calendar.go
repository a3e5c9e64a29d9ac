package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav"
	"github.com/emersion/go-webdav/caldav"
	"github.com/google/uuid"
)

type CalDAVProvider struct {
	client    *caldav.Client
	serverURL *url.URL
}

func NewCalDAVProvider(ctx context.Context, serverURL, username, password string) (*CalDAVProvider, error) {
	baseURL, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("invalid CalDAV server URL: %w", err)
	}

	var httpClient webdav.HTTPClient = http.DefaultClient
	if username != "" && password != "" {
		httpClient = webdav.HTTPClientWithBasicAuth(httpClient, username, password)
	}

	c, err := caldav.NewClient(httpClient, baseURL.String())
	if err != nil {
		return nil, fmt.Errorf("failed to create CalDAV client: %w", err)
	}

	// Empty path means server root
	if _, err := c.FindCalendars(ctx, ""); err != nil {
		return nil, fmt.Errorf("failed to connect to CalDAV server: %w", err)
	}

	return &CalDAVProvider{
		client:    c,
		serverURL: baseURL,
	}, nil
}

func (c *CalDAVProvider) GetCalendar(ctx context.Context, calendarID string) error {
	calURL, err := url.Parse(calendarID)
	if err != nil {
		return fmt.Errorf("invalid calendar URL: %w", err)
	}

	// The home set is usually the parent path of the calendar
	homeSetPath := "/"
	if calPath := strings.TrimRight(calURL.Path, "/"); calPath != "" {
		homeSetPath = strings.TrimRight(path.Dir(calPath), "/") + "/"
	}

	calendars, err := c.client.FindCalendars(ctx, homeSetPath)
	if err != nil {
		return fmt.Errorf("failed to find calendars: %w", err)
	}

	for _, cal := range calendars {
		if strings.TrimRight(cal.Path, "/") == strings.TrimRight(calURL.Path, "/") {
			return nil
		}
	}

	return fmt.Errorf("calendar not found at path: %s", calURL.Path)
}

func (c *CalDAVProvider) AddEvent(ctx context.Context, calendarID string, event *Event) (*Event, error) {
	calURL, err := url.Parse(calendarID)
	if err != nil {
		return nil, fmt.Errorf("invalid calendar URL: %w", err)
	}

	eventUID := "slotbot-" + uuid.NewString()
	calendar := newICalCalendar(eventUID, event)

	objectPath := eventPath(calURL, eventUID)
	if _, err := c.client.PutCalendarObject(ctx, objectPath, calendar); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	created := *event
	created.ID = eventUID
	created.Status = "confirmed"
	created.Link = c.serverURL.ResolveReference(&url.URL{Path: objectPath}).String()
	return &created, nil
}

func (c *CalDAVProvider) DeleteEvent(ctx context.Context, calendarID string, eventID string) error {
	calURL, err := url.Parse(calendarID)
	if err != nil {
		return fmt.Errorf("invalid calendar URL: %w", err)
	}

	if err := c.client.RemoveAll(ctx, eventPath(calURL, eventID)); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	return nil
}

func (c *CalDAVProvider) ListEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time) ([]*Event, error) {
	calURL, err := url.Parse(calendarID)
	if err != nil {
		return nil, fmt.Errorf("invalid calendar URL: %w", err)
	}

	query := &caldav.CalendarQuery{
		CompRequest: caldav.CalendarCompRequest{
			Name:     ical.CompCalendar,
			AllProps: true,
			AllComps: true,
		},
		CompFilter: caldav.CompFilter{
			Name: ical.CompCalendar,
			Comps: []caldav.CompFilter{{
				Name:  ical.CompEvent,
				Start: timeMin,
				End:   timeMax,
			}},
		},
	}

	objects, err := c.client.QueryCalendar(ctx, calURL.Path, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	var result []*Event
	for _, obj := range objects {
		for _, comp := range obj.Data.Component.Children {
			if comp.Name != ical.CompEvent {
				continue
			}
			event := fromICalComponent(comp)
			event.Link = c.serverURL.ResolveReference(&url.URL{Path: obj.Path}).String()
			result = append(result, event)
		}
	}

	return result, nil
}

func eventPath(calURL *url.URL, eventID string) string {
	return strings.TrimRight(calURL.Path, "/") + "/" + eventID + ".ics"
}

func newICalCalendar(uid string, event *Event) *ical.Calendar {
	icalEvent := ical.NewEvent()
	icalEvent.Props.SetText(ical.PropUID, uid)
	icalEvent.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())
	icalEvent.Props.SetText(ical.PropSummary, event.Summary)
	icalEvent.Props.SetText(ical.PropDescription, event.Description)
	icalEvent.Props.SetDateTime(ical.PropDateTimeStart, event.Start.UTC())
	icalEvent.Props.SetDateTime(ical.PropDateTimeEnd, event.End.UTC())
	icalEvent.Props.SetText(ical.PropStatus, "CONFIRMED")

	calendar := ical.NewCalendar()
	calendar.Props.SetText(ical.PropVersion, "2.0")
	calendar.Props.SetText(ical.PropProductID, "-//slotbot//interview scheduler//EN")
	calendar.Children = append(calendar.Children, icalEvent.Component)
	return calendar
}

func fromICalComponent(comp *ical.Component) *Event {
	status := strings.ToLower(getTextProp(comp.Props, ical.PropStatus))
	if status == "" {
		status = "confirmed"
	}

	start, _ := comp.Props.DateTime(ical.PropDateTimeStart, time.UTC)
	end, _ := comp.Props.DateTime(ical.PropDateTimeEnd, time.UTC)

	return &Event{
		ID:          getTextProp(comp.Props, ical.PropUID),
		Summary:     getTextProp(comp.Props, ical.PropSummary),
		Description: getTextProp(comp.Props, ical.PropDescription),
		Start:       start,
		End:         end,
		Status:      status,
	}
}

func getTextProp(props ical.Props, name string) string {
	prop := props.Get(name)
	if prop == nil {
		return ""
	}
	return prop.Value
}
