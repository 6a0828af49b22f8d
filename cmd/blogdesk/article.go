package main

import (
	"github.com/spf13/cobra"

	"blogdesk/internal/api"
	"blogdesk/internal/config"
)

func newAutofillCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "autofill <link>",
		Short: "Extract title, author, description, image and date from an article",
		Args:  requireExactlyArgs(1, "article link is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				result, err := client.Autofill(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(result)
				}
				if result.Empty() {
					return writePlain("nothing could be extracted from %s\n", args[0])
				}
				fields := []struct{ name, value string }{
					{"title", result.Title},
					{"author", result.Author},
					{"description", result.Description},
					{"thumbnail", result.Thumbnail},
					{"published", result.PublishedDate},
				}
				for _, f := range fields {
					if f.value == "" {
						continue
					}
					if err := writePlain("%s: %s\n", f.name, f.value); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func newSummaryCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "summary <link>",
		Short: "Summarize an article",
		Args:  requireExactlyArgs(1, "article link is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				summary, err := client.Summary(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(api.SummaryResponse{Summary: summary})
				}
				if summary == "" {
					return writePlain("no summary could be made from %s\n", args[0])
				}
				return writePlain("%s\n", summary)
			})
		},
	}
}
