package main

import (
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"blogdesk/internal/countdown"
)

func newCountdownCmd(jsonOutput *bool) *cobra.Command {
	var tz string

	cmd := &cobra.Command{
		Use:   "countdown <registration time>",
		Short: `Show time left until registration opens, e.g. "March 3rd 2025, 5:00:00 pm"`,
		Args:  requireExactlyArgs(1, "registration time is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc := time.Local
			if tz != "" {
				var err error
				if loc, err = time.LoadLocation(tz); err != nil {
					return err
				}
			}
			start, err := countdown.ParseRegistrationTime(args[0], loc)
			if err != nil {
				// An unreadable time shows no countdown at all.
				slog.Debug("skipping countdown", "error", err)
				return nil
			}
			label := countdown.Remaining(start, time.Now())
			if *jsonOutput {
				return writeJSON(map[string]any{"starts_at": start, "label": label})
			}
			return writePlain("%s\n", label)
		},
	}

	cmd.Flags().StringVar(&tz, "tz", "", "IANA time zone of the registration time (default local)")
	return cmd
}
