package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"blogdesk/internal/api"
	"blogdesk/internal/blog"
	"blogdesk/internal/config"
	"blogdesk/internal/feed"
	"blogdesk/internal/models"
)

func newWatchCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var (
		query      string
		visibility string
		card       string
		interval   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep the blog list on screen, refreshing it periodically",
		RunE: func(cmd *cobra.Command, args []string) error {
			sel, err := blog.ParseVisibilitySelector(visibility)
			if err != nil {
				return err
			}
			cardType, err := blog.ParseCardType(card)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("interval") {
				interval = cfg.RefreshEvery()
			}

			return withClient(cfg, func(client *api.Client) error {
				f := feed.New(client.ListBlogs, func(err error) {
					for _, line := range formatCLIError(err) {
						fmt.Fprintln(os.Stderr, line)
					}
				})
				return watchFeed(cmd.Context(), f, interval, func(blogs []models.Blog) error {
					visible := blog.Filter(blogs, query, sel)
					if *jsonOutput {
						return writeJSON(visible)
					}
					if err := writePlain("-- %s: %d blogs\n", time.Now().Format(time.TimeOnly), len(visible)); err != nil {
						return err
					}
					return writeBlogList(visible, cardType)
				})
			})
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "case-insensitive search over title, description, author and visibility")
	cmd.Flags().StringVar(&visibility, "visibility", "all", "all, public or private")
	cmd.Flags().StringVar(&card, "card", "default", "title shortening: default, trending, recent or see-all")
	cmd.Flags().DurationVar(&interval, "interval", feed.DefaultInterval, "refresh interval (default from refresh_interval)")
	return cmd
}

// watchFeed runs f until ctx is done and renders every newly applied list.
// Failed refreshes keep the previous list on screen.
func watchFeed(ctx context.Context, f *feed.Feed, interval time.Duration, render func([]models.Blog) error) error {
	go f.Run(ctx, interval)

	poll := time.NewTicker(200 * time.Millisecond)
	defer poll.Stop()

	var shown time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-poll.C:
			updated := f.UpdatedAt()
			if updated.IsZero() || !updated.After(shown) {
				continue
			}
			shown = updated
			if err := render(f.Snapshot()); err != nil {
				return err
			}
		}
	}
}
