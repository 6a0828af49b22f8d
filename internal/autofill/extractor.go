// Package autofill reads a published article page and extracts the fields
// the blog form needs: title, author, description, thumbnail and date.
package autofill

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/PuerkitoBio/goquery"

	"blogdesk/internal/models"
)

const (
	defaultFetchTimeout = 15 * time.Second
	maxPageBytes        = 5 * 1024 * 1024
	userAgent           = "blogdesk-autofill/1.0"

	// summaryMaxSentences bounds the extractive summary length.
	summaryMaxSentences = 3
	summaryMaxRunes     = 400
)

var (
	// ErrInvalidLink is returned for links that are not absolute http(s) URLs.
	ErrInvalidLink = errors.New("article link must be an absolute http(s) URL")
	// ErrNothingFound is returned when a page carries none of the fields.
	ErrNothingFound = errors.New("could not extract blog data from the article")
)

// Extractor fetches article pages over HTTP.
type Extractor struct {
	http *http.Client
}

// NewExtractor returns an extractor using client, or a default client with
// a bounded timeout when client is nil.
func NewExtractor(client *http.Client) *Extractor {
	if client == nil {
		client = &http.Client{Timeout: defaultFetchTimeout}
	}
	return &Extractor{http: client}
}

// ValidateLink checks that raw is an absolute http(s) URL.
func ValidateLink(raw string) (string, error) {
	link := strings.TrimSpace(raw)
	if link == "" {
		return "", ErrInvalidLink
	}
	u, err := url.Parse(link)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", ErrInvalidLink
	}
	return link, nil
}

// Autofill fetches link and extracts the form fields.
func (e *Extractor) Autofill(ctx context.Context, link string) (models.AutofillResult, error) {
	doc, err := e.fetch(ctx, link)
	if err != nil {
		return models.AutofillResult{}, err
	}
	result := ExtractMetadata(doc)
	if result.Empty() {
		return result, ErrNothingFound
	}
	return result, nil
}

// Summary fetches link and builds a short summary of the article.
func (e *Extractor) Summary(ctx context.Context, link string) (string, error) {
	doc, err := e.fetch(ctx, link)
	if err != nil {
		return "", err
	}
	summary := Summarize(doc)
	if summary == "" {
		return "", ErrNothingFound
	}
	return summary, nil
}

func (e *Extractor) fetch(ctx context.Context, raw string) (*goquery.Document, error) {
	link, err := ValidateLink(raw)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := e.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch article: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("fetch article: %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("parse article: %w", err)
	}
	return doc, nil
}

// ExtractMetadata reads Open Graph, article and standard meta tags.
func ExtractMetadata(doc *goquery.Document) models.AutofillResult {
	result := models.AutofillResult{
		Title:         firstMeta(doc, "og:title", "twitter:title"),
		Author:        firstMeta(doc, "author", "article:author", "twitter:creator"),
		Description:   firstMeta(doc, "og:description", "description", "twitter:description"),
		Thumbnail:     firstMeta(doc, "og:image", "og:image:url", "twitter:image"),
		PublishedDate: firstMeta(doc, "article:published_time", "datePublished"),
	}
	if result.Title == "" {
		result.Title = cleanText(doc.Find("title").First().Text())
	}
	if result.PublishedDate == "" {
		if datetime, ok := doc.Find("time[datetime]").First().Attr("datetime"); ok {
			result.PublishedDate = strings.TrimSpace(datetime)
		}
	}
	return result
}

// Summarize returns the description meta tag when present, otherwise the
// leading sentences of the article body.
func Summarize(doc *goquery.Document) string {
	if desc := firstMeta(doc, "og:description", "description"); desc != "" {
		return desc
	}

	scope := doc.Find("article").First()
	if scope.Length() == 0 {
		scope = doc.Find("body")
	}

	var sentences []string
	scope.Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		for _, s := range splitSentences(cleanText(p.Text())) {
			sentences = append(sentences, s)
			if len(sentences) == summaryMaxSentences {
				return false
			}
		}
		return true
	})
	return truncateRunes(strings.Join(sentences, " "), summaryMaxRunes)
}

func firstMeta(doc *goquery.Document, names ...string) string {
	for _, name := range names {
		var value string
		doc.Find("meta").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			key := s.AttrOr("property", "")
			if key == "" {
				key = s.AttrOr("name", "")
			}
			if key == "" {
				key = s.AttrOr("itemprop", "")
			}
			if !strings.EqualFold(key, name) {
				return true
			}
			value = cleanText(s.AttrOr("content", ""))
			return value == ""
		})
		if value != "" {
			return value
		}
	}
	return ""
}

func cleanText(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}

func splitSentences(text string) []string {
	var out []string
	start := 0
	runes := []rune(text)
	for i, r := range runes {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			continue
		}
		if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
			out = append(out, s)
		}
		start = i + 1
	}
	if rest := strings.TrimSpace(string(runes[start:])); rest != "" {
		out = append(out, rest)
	}
	return out
}

func truncateRunes(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return strings.TrimSpace(string(runes[:limit])) + "..."
}
