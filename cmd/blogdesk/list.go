package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"blogdesk/internal/api"
	"blogdesk/internal/blog"
	"blogdesk/internal/config"
	"blogdesk/internal/models"
)

func newListCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var (
		query      string
		visibility string
		card       string
		raw        bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List blogs, optionally filtered by a search query and visibility",
		RunE: func(cmd *cobra.Command, args []string) error {
			sel, err := blog.ParseVisibilitySelector(visibility)
			if err != nil {
				return err
			}
			cardType, err := blog.ParseCardType(card)
			if err != nil {
				return err
			}

			return withClient(cfg, func(client *api.Client) error {
				if raw {
					records, err := client.ListRaw(cmd.Context())
					if err != nil {
						return err
					}
					return writeJSON(records)
				}

				blogs, err := client.ListBlogs(cmd.Context())
				if err != nil {
					return err
				}
				visible := blog.Filter(blogs, query, sel)
				if *jsonOutput {
					return writeJSON(visible)
				}
				return writeBlogList(visible, cardType)
			})
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "case-insensitive search over title, description, author and visibility")
	cmd.Flags().StringVar(&visibility, "visibility", "all", "all, public or private")
	cmd.Flags().StringVar(&card, "card", "default", "title shortening: default, trending, recent or see-all")
	cmd.Flags().BoolVar(&raw, "raw", false, "print records exactly as the API returned them")
	return cmd
}

func newShowCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one blog",
		Args:  requireExactlyArgs(1, "blog id is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				b, err := findBlog(cmd, client, args[0])
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(b)
				}
				return writeBlogDetail(b)
			})
		},
	}
}

// findBlog looks a blog up in the normalized list. The API has no
// single-record read.
func findBlog(cmd *cobra.Command, client *api.Client, id string) (models.Blog, error) {
	blogs, err := client.ListBlogs(cmd.Context())
	if err != nil {
		return models.Blog{}, err
	}
	for _, b := range blogs {
		if b.ID == id {
			return b, nil
		}
	}
	return models.Blog{}, fmt.Errorf("blog %q not found", id)
}
