package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type configLoader func() (*Config, error)

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:          "slotbot",
		Short:        "Interview slot scheduling bot for Slack",
		Long:         "slotbot offers candidate-proposed interview slots on Slack and books the chosen one on a shared Google or CalDAV calendar.",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigFile, "path to the TOML config file")

	load := func() (*Config, error) {
		return loadConfig(configPath)
	}

	rootCmd.AddCommand(
		newServeCmd(load),
		newBookCmd(load),
		newSlotsCmd(load),
		newListCmd(load),
		newCancelCmd(load),
		newCleanupCmd(load),
		newAuthCmd(load),
		newVerifyCmd(load),
	)

	return rootCmd
}

func newServeCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Connect to Slack over Socket Mode and handle scheduling commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			config, err := load()
			if err != nil {
				return err
			}
			if err := config.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			db, err := openDB(config.Database)
			if err != nil {
				return fmt.Errorf("error opening database: %w", err)
			}
			defer db.Close()

			factory := NewCalendarFactory(config, db)
			provider, err := factory.CreateCalendarProvider(ctx)
			if err != nil {
				return err
			}
			if err := factory.ValidateCalendarAccess(ctx, provider, config.Calendar.CalendarID); err != nil {
				log.Printf("slotbot: warning: calendar %s not accessible: %v", config.Calendar.CalendarID, err)
			}

			client, err := newSlackClient(config.Slack)
			if err != nil {
				return err
			}

			sessions := NewSessionStore()
			defer sessions.Clear()

			scheduler, err := newSchedulerFromConfig(config, sessions, NewSlackMessenger(client),
				NewCalendarBooker(provider, config.Calendar.CalendarID), NewBookingStore(db))
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "🚀 slotbot is listening for %s (%s mode)\n", config.Slack.Command, config.Slack.Mode)
			err = NewBot(client, config.Slack, scheduler).Run(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}

func newSchedulerFromConfig(config *Config, sessions *SessionStore, chat Messenger, booker Booker, bookings BookingRecorder) (*Scheduler, error) {
	loc, err := config.Location()
	if err != nil {
		return nil, err
	}
	return NewScheduler(SchedulerConfig{
		Mode:        config.Slack.Mode,
		Command:     config.Slack.Command,
		Summary:     config.Calendar.Summary,
		Description: config.Calendar.Description,
		Duration:    time.Duration(config.Calendar.DurationMinutes) * time.Minute,
		Location:    loc,
		CalendarID:  config.Calendar.CalendarID,
		Provider:    config.Calendar.Provider,
	}, sessions, chat, booker, bookings), nil
}
