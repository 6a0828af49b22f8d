package main

import (
	"time"

	"github.com/spf13/cobra"

	"blogdesk/internal/api"
	"blogdesk/internal/blog"
	"blogdesk/internal/config"
)

func newCreateCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var opts draftOptions

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a blog from flags or a markdown file",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := opts.apply(cmd, blog.NewDraft(time.Now()))
			if err != nil {
				return err
			}

			return withClient(cfg, func(client *api.Client) error {
				d, err := opts.enrich(cmd, client, d)
				if err != nil {
					return err
				}
				created, err := client.CreateBlog(cmd.Context(), d)
				if err != nil {
					return err
				}
				return writeSubmittedBlog("created", created, *jsonOutput)
			})
		},
	}

	opts.register(cmd)
	return cmd
}

func newUpdateCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var opts draftOptions

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit a blog; unset flags keep their current value",
		Args:  requireExactlyArgs(1, "blog id is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				current, err := findBlog(cmd, client, args[0])
				if err != nil {
					return err
				}
				d, err := blog.DraftFromBlog(current)
				if err != nil {
					return err
				}
				if d, err = opts.apply(cmd, d); err != nil {
					return err
				}
				if d, err = opts.enrich(cmd, client, d); err != nil {
					return err
				}

				updated, err := client.UpdateBlog(cmd.Context(), d)
				if err != nil {
					return err
				}
				return writeSubmittedBlog("updated", updated, *jsonOutput)
			})
		},
	}

	opts.register(cmd)
	return cmd
}

func newDeleteCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete one or more blogs",
		Args:  requireAtLeastOneID,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				deleted := make([]string, 0, len(args))
				for _, id := range args {
					if err := client.DeleteBlog(cmd.Context(), id); err != nil {
						return err
					}
					deleted = append(deleted, id)
				}
				if *jsonOutput {
					return writeJSON(map[string]any{"deleted": deleted})
				}
				for _, id := range deleted {
					if err := writePlain("deleted blog %s\n", id); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}
