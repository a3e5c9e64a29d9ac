package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAuthCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Authorize Google Calendar access with an OAuth client and cache the token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			config, err := load()
			if err != nil {
				return err
			}
			if config.Google.ClientID == "" || config.Google.ClientSecret == "" {
				return fmt.Errorf("google client_id and client_secret are required for OAuth")
			}

			db, err := openDB(config.Database)
			if err != nil {
				return fmt.Errorf("error opening database: %w", err)
			}
			defer db.Close()

			token, err := getTokenFromWeb(newOAuthConfig(config))
			if err != nil {
				return err
			}
			if err := saveToken(db, config.Google.AccountName, token); err != nil {
				return fmt.Errorf("error saving token: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✅ Token saved for account %s\n", config.Google.AccountName)
			return nil
		},
	}
}

func newVerifyCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check that the configured calendar is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			config, err := load()
			if err != nil {
				return err
			}
			if err := config.validateCalendar(); err != nil {
				return err
			}

			db, err := openDB(config.Database)
			if err != nil {
				return fmt.Errorf("error opening database: %w", err)
			}
			defer db.Close()

			ctx := cmd.Context()
			factory := NewCalendarFactory(config, db)
			provider, err := factory.CreateCalendarProvider(ctx)
			if err != nil {
				return err
			}
			if err := factory.ValidateCalendarAccess(ctx, provider, config.Calendar.CalendarID); err != nil {
				return fmt.Errorf("error retrieving calendar %s: %w", config.Calendar.CalendarID, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✅ %s calendar %s is reachable\n", config.Calendar.Provider, config.Calendar.CalendarID)
			return nil
		},
	}
}
