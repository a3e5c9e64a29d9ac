package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

func newTestGoogleProvider(t *testing.T, handler http.HandlerFunc) *GoogleCalendarProvider {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	provider, err := NewGoogleCalendarProvider(context.Background(), srv.Client(), option.WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)
	return provider
}

func TestGoogleAddEventSendsUpdatesAndTimezone(t *testing.T) {
	t.Parallel()

	var got calendar.Event
	var sendUpdates string
	provider := newTestGoogleProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/calendars/primary/events"), r.URL.Path)
		sendUpdates = r.URL.Query().Get("sendUpdates")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		got.Id = "evt1"
		got.HtmlLink = "https://calendar.google.com/event?eid=evt1"
		got.Status = "confirmed"
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(&got)
	})

	start := time.Date(2026, 10, 20, 15, 0, 0, 0, ist)
	event, err := NewCalendarBooker(provider, "primary").
		BookEvent(context.Background(), start, start.Add(30*time.Minute), "Asia/Kolkata", "Interview", "Interview slot booked")
	require.NoError(t, err)

	assert.Equal(t, "all", sendUpdates)
	assert.Equal(t, "Interview", got.Summary)
	assert.Equal(t, "2026-10-20T15:00:00+05:30", got.Start.DateTime)
	assert.Equal(t, "2026-10-20T15:30:00+05:30", got.End.DateTime)
	assert.Equal(t, "Asia/Kolkata", got.Start.TimeZone)

	assert.Equal(t, "evt1", event.ID)
	assert.Equal(t, "https://calendar.google.com/event?eid=evt1", event.Link)
	assert.True(t, start.Equal(event.Start))
}

func TestGoogleAddEventWithoutSendUpdates(t *testing.T) {
	t.Parallel()

	provider := newTestGoogleProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, r.URL.Query().Has("sendUpdates"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"evt1"}`))
	})
	provider.sendUpdates = ""

	_, err := provider.AddEvent(context.Background(), "primary", &Event{Start: mondayMorning, End: mondayMorning.Add(time.Hour)})
	require.NoError(t, err)
}

func TestGoogleAddEventReportsAPIError(t *testing.T) {
	t.Parallel()

	provider := newTestGoogleProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"code":403,"message":"Calendar usage limits exceeded."}}`))
	})

	_, err := provider.AddEvent(context.Background(), "primary", &Event{Start: mondayMorning, End: mondayMorning.Add(time.Hour)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create event")
	assert.Contains(t, err.Error(), "Calendar usage limits exceeded")
}

func TestGoogleListEvents(t *testing.T) {
	t.Parallel()

	provider := newTestGoogleProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "true", r.URL.Query().Get("singleEvents"))
		assert.Equal(t, "startTime", r.URL.Query().Get("orderBy"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[
			{"id":"a","summary":"Interview","status":"confirmed",
			 "start":{"dateTime":"2026-10-20T10:00:00+05:30","timeZone":"Asia/Kolkata"},
			 "end":{"dateTime":"2026-10-20T10:30:00+05:30"}}
		]}`))
	})

	events, err := provider.ListEvents(context.Background(), "primary", mondayMorning, mondayMorning.Add(7*24*time.Hour))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "a", events[0].ID)
	assert.Equal(t, "Asia/Kolkata", events[0].TimeZone)
	assert.True(t, time.Date(2026, 10, 20, 10, 0, 0, 0, ist).Equal(events[0].Start))
	assert.Equal(t, 30*time.Minute, events[0].End.Sub(events[0].Start))
}

func TestGoogleGetAndDelete(t *testing.T) {
	t.Parallel()

	var deleted string
	provider := newTestGoogleProvider(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodDelete:
			deleted = r.URL.Path
			w.WriteHeader(http.StatusNoContent)
		case http.MethodGet:
			if strings.HasSuffix(r.URL.Path, "/calendarList/missing") {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusNotFound)
				w.Write([]byte(`{"error":{"code":404,"message":"Not Found"}}`))
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id":"primary"}`))
		}
	})
	ctx := context.Background()

	require.NoError(t, provider.GetCalendar(ctx, "primary"))
	assert.ErrorContains(t, provider.GetCalendar(ctx, "missing"), "failed to get calendar")

	require.NoError(t, provider.DeleteEvent(ctx, "primary", "evt1"))
	assert.True(t, strings.HasSuffix(deleted, "/calendars/primary/events/evt1"), deleted)
}
