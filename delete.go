package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newCancelCmd(load configLoader) *cobra.Command {
	var yes bool
	var calendarID string

	cmd := &cobra.Command{
		Use:   "cancel <event-id>",
		Short: "Delete a booked interview from the calendar and the booking log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eventID := args[0]
			config, err := load()
			if err != nil {
				return err
			}
			db, err := openDB(config.Database)
			if err != nil {
				return fmt.Errorf("error opening database: %w", err)
			}
			defer db.Close()

			if calendarID == "" {
				calendarID = config.Calendar.CalendarID
			}

			ctx := cmd.Context()
			bookings := NewBookingStore(db)
			booking, err := bookings.GetBooking(ctx, calendarID, eventID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !yes {
				fmt.Fprintf(out, "⚠️  Are you sure you want to cancel the interview on %s? (y/N): ", booking.Slot)
				answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				answer = strings.TrimSpace(answer)
				if answer != "y" && answer != "Y" {
					fmt.Fprintln(out, "❌ Cancellation aborted")
					return nil
				}
			}

			if booking.Provider != "" {
				config.Calendar.Provider = booking.Provider
			}
			provider, err := NewCalendarFactory(config, db).CreateCalendarProvider(ctx)
			if err != nil {
				return err
			}
			if err := provider.DeleteEvent(ctx, booking.CalendarID, booking.EventID); err != nil {
				return err
			}
			if err := bookings.DeleteBooking(ctx, booking.CalendarID, booking.EventID); err != nil {
				return err
			}

			fmt.Fprintf(out, "✅ Interview %s cancelled\n", eventID)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	cmd.Flags().StringVar(&calendarID, "calendar", "", "calendar the event was booked on (defaults to calendar.calendar_id)")
	return cmd
}
