package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"blogdesk/internal/config"
	"blogdesk/internal/format"
)

func newRootCmd(cfg *config.Config) *cobra.Command {
	var (
		jsonOutput bool
		output     string
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:           "blogdesk",
		Short:         "Blogdesk manages the blog portal from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			warning, err := configureLoggerForCLI(logLevel, cfg.LogLevel)
			if err != nil {
				return err
			}
			if warning != "" {
				fmt.Fprintln(os.Stderr, warning)
			}
			if output != "" {
				formatter, err := format.ForName(output)
				if err != nil {
					return err
				}
				outputFormatter = formatter
				jsonOutput = true
			}
			return nil
		},
	}

	cmd.Version = version
	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output JSON")
	cmd.PersistentFlags().StringVarP(&output, "output", "o", "", "structured output format: json or yaml")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")

	adminCmd := &cobra.Command{
		Use:   "admin",
		Short: "Administrative commands",
	}
	adminCmd.AddCommand(newAdminUserCmd(cfg, &jsonOutput))

	cmd.AddCommand(
		newSrvCmd(cfg),
		newListCmd(cfg, &jsonOutput),
		newShowCmd(cfg, &jsonOutput),
		newCreateCmd(cfg, &jsonOutput),
		newUpdateCmd(cfg, &jsonOutput),
		newDeleteCmd(cfg, &jsonOutput),
		newAutofillCmd(cfg, &jsonOutput),
		newSummaryCmd(cfg, &jsonOutput),
		newWatchCmd(cfg, &jsonOutput),
		newLoginCmd(cfg, &jsonOutput),
		newLogoutCmd(cfg),
		newWhoamiCmd(cfg, &jsonOutput),
		newCountdownCmd(&jsonOutput),
		newConfigCmd(cfg),
		newMigrateCmd(cfg, &jsonOutput),
		adminCmd,
	)

	return cmd
}
