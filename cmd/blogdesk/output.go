package main

import (
	"fmt"
	"os"
	"strings"

	"blogdesk/internal/blog"
	"blogdesk/internal/format"
	"blogdesk/internal/models"
)

var outputFormatter format.Formatter = format.JSONFormatter{}

func writeJSON(payload any) error {
	return outputFormatter.Write(os.Stdout, payload)
}

func writePlain(format string, args ...any) error {
	_, err := fmt.Fprintf(os.Stdout, format, args...)
	return err
}

func writeBlogList(blogs []models.Blog, card blog.CardType) error {
	for _, b := range blogs {
		if err := writePlain("%s\n", formatBlogLine(b, card)); err != nil {
			return err
		}
	}
	return nil
}

func formatBlogLine(b models.Blog, card blog.CardType) string {
	marker := "○"
	if b.Visibility == models.VisibilityPublic {
		marker = "●"
	}
	return fmt.Sprintf("%s %s [%s] %s - %s (%s)", marker, b.ID, blog.FormatDisplayDate(b.PublishedAt), blog.TruncateTitle(b.Title, card), b.Author.Name, b.Author.Department)
}

func writeBlogDetail(b models.Blog) error {
	lines := []string{
		fmt.Sprintf("id: %s", b.ID),
		fmt.Sprintf("title: %s", b.Title),
		fmt.Sprintf("date: %s", blog.FormatDisplayDate(b.PublishedAt)),
		fmt.Sprintf("author: %s", b.Author.Name),
		fmt.Sprintf("department: %s", b.Author.Department),
		fmt.Sprintf("visibility: %s", b.Visibility),
		fmt.Sprintf("image: %s", b.ImageURL),
		fmt.Sprintf("link: %s", b.ExternalLink),
	}
	if b.Category != "" {
		lines = append(lines, fmt.Sprintf("category: %s", b.Category))
	}
	if b.Description != "" {
		lines = append(lines, fmt.Sprintf("description: %s", b.Description))
	}
	if b.Summary != "" && b.Summary != b.Description {
		lines = append(lines, fmt.Sprintf("summary: %s", b.Summary))
	}
	return writePlain("%s\n", strings.Join(lines, "\n"))
}
