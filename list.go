package main

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newListCmd(load configLoader) *cobra.Command {
	var all, fromCalendar bool
	var days int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List interviews booked by the bot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			config, err := load()
			if err != nil {
				return err
			}
			db, err := openDB(config.Database)
			if err != nil {
				return fmt.Errorf("error opening database: %w", err)
			}
			defer db.Close()

			if fromCalendar {
				return listCalendarEvents(cmd, config, db, days)
			}

			from := time.Now()
			if all {
				from = time.Time{}
			}
			bookings, err := NewBookingStore(db).ListBookings(cmd.Context(), from)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(bookings) == 0 {
				fmt.Fprintln(out, "📭 No interviews booked.")
				return nil
			}

			fmt.Fprintln(out, "📋 Here's the list of booked interviews:")
			for _, b := range bookings {
				who := b.CandidateID
				if who == "" {
					who = "direct booking"
				}
				fmt.Fprintf(out, "  📅 %s (%s) 👤 %s - %s [%s]\n",
					b.Slot, b.Start.Format("2006-01-02 15:04 MST"), who, b.Link, b.EventID)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "include interviews in the past")
	cmd.Flags().BoolVar(&fromCalendar, "calendar", false, "list events straight from the configured calendar")
	cmd.Flags().IntVar(&days, "days", 14, "how many days ahead to look with --calendar")
	return cmd
}

// listCalendarEvents shows what is on the shared calendar, including events
// the bot did not book.
func listCalendarEvents(cmd *cobra.Command, config *Config, db *sql.DB, days int) error {
	ctx := cmd.Context()
	provider, err := NewCalendarFactory(config, db).CreateCalendarProvider(ctx)
	if err != nil {
		return err
	}
	loc, err := config.Location()
	if err != nil {
		return err
	}

	now := time.Now()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "📥 Retrieving events for calendar: %s\n", config.Calendar.CalendarID)
	events, err := provider.ListEvents(ctx, config.Calendar.CalendarID, now, now.AddDate(0, 0, days))
	if err != nil {
		return fmt.Errorf("error retrieving events: %w", err)
	}
	if len(events) == 0 {
		fmt.Fprintln(out, "📭 Nothing on the calendar.")
		return nil
	}
	for _, event := range events {
		fmt.Fprintf(out, "  📅 %s %s [%s]\n", event.Start.In(loc).Format("Mon 2006-01-02 15:04 MST"), event.Summary, event.ID)
	}
	return nil
}
