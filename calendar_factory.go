package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
)

// CalendarFactory builds the calendar provider named in the config
type CalendarFactory struct {
	config *Config
	db     *sql.DB
}

func NewCalendarFactory(config *Config, db *sql.DB) *CalendarFactory {
	return &CalendarFactory{
		config: config,
		db:     db,
	}
}

// CreateCalendarProvider creates the configured provider
func (cf *CalendarFactory) CreateCalendarProvider(ctx context.Context) (CalendarProvider, error) {
	switch cf.config.Calendar.Provider {
	case "google":
		client, err := cf.googleClient(ctx)
		if err != nil {
			return nil, err
		}
		provider, err := NewGoogleCalendarProvider(ctx, client)
		if err != nil {
			return nil, fmt.Errorf("error creating Google calendar provider: %w", err)
		}
		provider.sendUpdates = cf.config.Calendar.SendUpdates
		return provider, nil

	case "caldav":
		server := cf.config.CalDAV
		if server.ServerURL == "" {
			return nil, fmt.Errorf("no CalDAV server_url configured")
		}
		provider, err := NewCalDAVProvider(ctx, server.ServerURL, server.Username, server.Password)
		if err != nil {
			return nil, fmt.Errorf("error connecting to CalDAV server %s: %w", server.ServerURL, err)
		}
		return provider, nil

	default:
		return nil, fmt.Errorf("unsupported provider type: %s", cf.config.Calendar.Provider)
	}
}

// googleClient prefers a service account and falls back to the cached
// OAuth token of the configured account.
func (cf *CalendarFactory) googleClient(ctx context.Context) (*http.Client, error) {
	if path := cf.config.Google.ServiceAccountFile; path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("error reading service account file: %w", err)
		}
		jwtConfig, err := google.JWTConfigFromJSON(data, calendar.CalendarScope)
		if err != nil {
			return nil, fmt.Errorf("error parsing service account file: %w", err)
		}
		return jwtConfig.Client(ctx), nil
	}

	if cf.config.Google.ClientID == "" {
		return nil, fmt.Errorf("google calendar needs service_account_file or client_id/client_secret")
	}
	if cf.db == nil {
		return nil, fmt.Errorf("google OAuth needs the token database")
	}
	return getClient(ctx, newOAuthConfig(cf.config), cf.db, cf.config.Google.AccountName)
}

// ValidateCalendarAccess checks if the provided calendar ID is accessible
func (cf *CalendarFactory) ValidateCalendarAccess(ctx context.Context, provider CalendarProvider, calendarID string) error {
	return provider.GetCalendar(ctx, calendarID)
}
