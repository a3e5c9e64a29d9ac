package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newCleanupCmd(load configLoader) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Drop booking log entries for interviews that are over",
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

			removed, err := NewBookingStore(db).PruneBefore(cmd.Context(), time.Now().Add(-olderThan))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "🗑 Removed %d past booking(s)\n", removed)
			return nil
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "keep interviews that ended within this window")
	return cmd
}
