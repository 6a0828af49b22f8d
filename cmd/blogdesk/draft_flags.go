package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"blogdesk/internal/api"
	"blogdesk/internal/blog"
	"blogdesk/internal/models"
)

// draftOptions are the flags shared by create and update.
type draftOptions struct {
	from        string
	title       string
	description string
	image       string
	date        string
	author      string
	department  string
	link        string
	visibility  string
	autofill    bool
	summarize   bool
}

func (o *draftOptions) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&o.from, "from", "", "read the draft from a markdown file with YAML front matter")
	flags.StringVar(&o.title, "title", "", "blog title")
	flags.StringVar(&o.description, "description", "", "meta description")
	flags.StringVar(&o.image, "image", "", "cover image link or local image file")
	flags.StringVar(&o.date, "date", "", "publication date (YYYY-MM-DD)")
	flags.StringVar(&o.author, "author", "", "author name")
	flags.StringVar(&o.department, "department", "", "author department")
	flags.StringVar(&o.link, "link", "", "external article link")
	flags.StringVar(&o.visibility, "visibility", "", "public or private")
	flags.BoolVar(&o.autofill, "autofill", false, "fill title, author, description, image and date from the article link")
	flags.BoolVar(&o.summarize, "summarize", false, "replace the description with a summary of the article link")
}

// apply layers the post file and then explicitly set flags over d.
func (o *draftOptions) apply(cmd *cobra.Command, d blog.Draft) (blog.Draft, error) {
	if o.from != "" {
		data, err := os.ReadFile(o.from)
		if err != nil {
			return d, err
		}
		front, body, err := parseMarkdown(string(data))
		if err != nil {
			return d, fmt.Errorf("%s: %w", o.from, err)
		}
		if d, err = applyDraftFile(d, front, body); err != nil {
			return d, err
		}
	}

	changed := cmd.Flags().Changed
	if changed("title") {
		d.Title = o.title
	}
	if changed("description") {
		d.Description = o.description
	}
	if changed("image") {
		d = setDraftImage(d, o.image)
	}
	if changed("date") {
		d.Date = o.date
	}
	if changed("author") {
		d.AuthorName = o.author
	}
	if changed("department") {
		d.Department = o.department
	}
	if changed("link") {
		d.ExternalLink = o.link
	}
	if changed("visibility") {
		v, err := models.ParseVisibility(o.visibility)
		if err != nil {
			return d, err
		}
		d.Published = v == models.VisibilityPublic
	}
	return d, nil
}

// enrich runs the article helpers the flags ask for. Both need a link.
func (o *draftOptions) enrich(cmd *cobra.Command, client *api.Client, d blog.Draft) (blog.Draft, error) {
	if !o.autofill && !o.summarize {
		return d, nil
	}
	link := strings.TrimSpace(d.ExternalLink)
	if link == "" {
		return d, &blog.ValidationError{Field: "link", Message: "An article link is required for --autofill and --summarize."}
	}
	if o.autofill {
		result, err := client.Autofill(cmd.Context(), link)
		if err != nil {
			return d, fmt.Errorf("autofill: %w", err)
		}
		if result.Empty() {
			slog.Warn("autofill found nothing in the article", "link", link)
		}
		d = d.ApplyAutofill(result)
	}
	if o.summarize {
		summary, err := client.Summary(cmd.Context(), link)
		if err != nil {
			return d, fmt.Errorf("summarize: %w", err)
		}
		if summary == "" {
			slog.Warn("no summary could be made from the article", "link", link)
		}
		d = d.ApplySummary(summary)
	}
	return d, nil
}

func writeSubmittedBlog(action string, b models.Blog, jsonOutput bool) error {
	if jsonOutput {
		return writeJSON(b)
	}
	return writePlain("%s blog %s: %s\n", action, b.ID, b.Title)
}
