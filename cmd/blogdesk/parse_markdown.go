package main

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"blogdesk/internal/blog"
	"blogdesk/internal/models"
)

// draftFile is the YAML front matter of a post file. Absent keys leave the
// draft unchanged.
type draftFile struct {
	Title       *string `yaml:"title"`
	Description *string `yaml:"description"`
	Image       *string `yaml:"image"`
	Date        *string `yaml:"date"`
	Author      *string `yaml:"author"`
	Department  *string `yaml:"department"`
	Link        *string `yaml:"link"`
	Visibility  *string `yaml:"visibility"`
	Published   *bool   `yaml:"published"`
}

// parseMarkdown splits a post file into front matter and body.
func parseMarkdown(input string) (draftFile, string, error) {
	var front draftFile
	content := input

	lines := strings.Split(strings.ReplaceAll(input, "\r\n", "\n"), "\n")
	if len(lines) >= 2 && strings.TrimSpace(lines[0]) == "---" {
		end := -1
		for i := 1; i < len(lines); i++ {
			if strings.TrimSpace(lines[i]) == "---" {
				end = i
				break
			}
		}
		if end == -1 {
			return front, "", fmt.Errorf("front matter not closed")
		}
		frontText := strings.Join(lines[1:end], "\n")
		if err := yaml.Unmarshal([]byte(frontText), &front); err != nil {
			return front, "", fmt.Errorf("parse front matter: %w", err)
		}
		content = strings.Join(lines[end+1:], "\n")
	}

	return front, strings.TrimSpace(content), nil
}

// applyDraftFile overlays a post file on d. The body becomes the
// description unless the front matter sets one.
func applyDraftFile(d blog.Draft, front draftFile, body string) (blog.Draft, error) {
	if front.Title != nil {
		d.Title = *front.Title
	}
	if front.Description != nil {
		d.Description = *front.Description
	} else if body != "" {
		d.Description = body
	}
	if front.Image != nil {
		d = setDraftImage(d, *front.Image)
	}
	if front.Date != nil {
		d.Date = *front.Date
	}
	if front.Author != nil {
		d.AuthorName = *front.Author
	}
	if front.Department != nil {
		d.Department = *front.Department
	}
	if front.Link != nil {
		d.ExternalLink = *front.Link
	}
	if front.Published != nil {
		d.Published = *front.Published
	}
	if front.Visibility != nil {
		v, err := models.ParseVisibility(*front.Visibility)
		if err != nil {
			return d, err
		}
		d.Published = v == models.VisibilityPublic
	}
	return d, nil
}

// setDraftImage treats http(s) values as image links and anything else as
// a local file to upload.
func setDraftImage(d blog.Draft, value string) blog.Draft {
	value = strings.TrimSpace(value)
	lower := strings.ToLower(value)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		d.ImageURL = value
		d.ImageFile = ""
		return d
	}
	d.ImageFile = value
	d.ImageURL = ""
	return d
}
