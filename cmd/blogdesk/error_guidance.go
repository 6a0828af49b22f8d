package main

import (
	"context"
	"errors"
	"fmt"
	"net"

	"blogdesk/internal/api"
	"blogdesk/internal/blog"
)

func formatCLIError(err error) []string {
	if err == nil {
		return nil
	}

	lines := []string{err.Error()}

	var validationErr *blog.ValidationError
	if errors.As(err, &validationErr) {
		lines = append(lines, fmt.Sprintf("hint: fix the %s field and submit again.", validationErr.Field))
		return uniqueLines(lines)
	}

	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case "unauthorized":
			lines = append(lines, "hint: sign in with: blogdesk login <email> --password-stdin, or set BLOGDESK_API_TOKEN.")
		case "forbidden":
			lines = append(lines, "hint: managing blogs and users needs an admin account.")
		case "resource_exhausted":
			lines = append(lines, "hint: retry shortly; too many uploads or article fetches are running.")
		case "request_too_large":
			lines = append(lines, "hint: use a smaller cover image or raise uploads.max_upload_bytes on the server.")
		case "upstream":
			lines = append(lines, "hint: the article could not be fetched; check the link in a browser.")
		}
		if apiErr.Code == "" {
			lines = append(lines, "hint: verify BLOGDESK_API_URL points to a blog API.")
		}
		if apiErr.Status >= 500 && apiErr.Code != "upstream" {
			lines = append(lines, "hint: server returned an internal error; check server logs for details.")
		}
		return uniqueLines(lines)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		lines = append(lines, "hint: request timed out; check server health or increase BLOGDESK_HTTP_TIMEOUT.")
		return uniqueLines(lines)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		lines = append(lines,
			"hint: ensure the blog API is reachable at BLOGDESK_API_URL.",
			"hint: start a local server manually with: blogdesk srv",
			"hint: you can increase BLOGDESK_HTTP_TIMEOUT for slower networks.",
		)
		return uniqueLines(lines)
	}

	return uniqueLines(lines)
}

func uniqueLines(lines []string) []string {
	seen := make(map[string]struct{}, len(lines))
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line == "" {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		out = append(out, line)
	}
	return out
}
