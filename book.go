package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func newBookCmd(load configLoader) *cobra.Command {
	var summary, description string

	cmd := &cobra.Command{
		Use:   "book <slot>",
		Short: "Book a single slot such as \"Friday 1 PM\" right away",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := load()
			if err != nil {
				return err
			}
			if summary != "" {
				config.Calendar.Summary = summary
			}
			if description != "" {
				config.Calendar.Description = description
			}
			if err := config.validateCalendar(); err != nil {
				return err
			}

			ctx := cmd.Context()
			db, err := openDB(config.Database)
			if err != nil {
				return fmt.Errorf("error opening database: %w", err)
			}
			defer db.Close()

			provider, err := NewCalendarFactory(config, db).CreateCalendarProvider(ctx)
			if err != nil {
				return err
			}

			scheduler, err := newSchedulerFromConfig(config, NewSessionStore(), nil,
				NewCalendarBooker(provider, config.Calendar.CalendarID), NewBookingStore(db))
			if err != nil {
				return err
			}

			slot, event, err := scheduler.BookDirect(ctx, "", strings.Join(args, " "))
			if err != nil {
				return fmt.Errorf("failed to schedule interview: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✅ Event created for %s (%s)\n", slot, event.Start.Format(time.RFC1123))
			fmt.Fprintf(out, "📅 Link: %s\n", event.Link)
			return nil
		},
	}

	cmd.Flags().StringVar(&summary, "summary", "", "event summary (defaults to calendar.summary)")
	cmd.Flags().StringVar(&description, "description", "", "event description (defaults to calendar.description)")
	return cmd
}

// newSlotsCmd shows how a scheduling command would be understood, without
// talking to Slack or the calendar.
func newSlotsCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "slots <text>",
		Short: "Preview the slots extracted from a scheduling command",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := load()
			if err != nil {
				return err
			}
			loc, err := config.Location()
			if err != nil {
				return err
			}

			text := strings.Join(args, " ")
			out := cmd.OutOrStdout()
			if candidate, rest, err := extractMention(text); err == nil {
				fmt.Fprintf(out, "👤 Candidate: %s\n", candidate)
				text = rest
			}

			slots := RegexSlotParser{}.Parse(text)
			if len(slots) == 0 {
				return fmt.Errorf("no slots found in %q", text)
			}

			now := time.Now()
			for i, slot := range slots {
				start, err := slotStart(slot, now, loc)
				if err != nil {
					fmt.Fprintf(out, "  %d. %q ❌ %v\n", i+1, slot, err)
					continue
				}
				fmt.Fprintf(out, "  %d. %s → %s\n", i+1, slot, start.Format("Mon 2006-01-02 15:04 MST"))
			}
			if len(slots) != slotsPerOffer {
				fmt.Fprintf(out, "⚠️  %d slot(s) found, an offer needs exactly %d\n", len(slots), slotsPerOffer)
			}
			return nil
		},
	}
}
