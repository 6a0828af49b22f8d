package autofill

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

const articlePage = `<!doctype html>
<html><head>
<title>Fallback title</title>
<meta property="og:title" content="  Building   a Blog Desk ">
<meta name="author" content="Jane Doe">
<meta property="og:description" content="How we built it.">
<meta property="og:image" content="https://cdn.example.com/cover.png">
<meta property="article:published_time" content="2024-03-05T10:00:00Z">
</head><body><article><p>Ignored.</p></article></body></html>`

const bareArticle = `<html><head><title> Bare page </title></head>
<body><article>
<p>First sentence here. Second one follows! Third? Fourth sentence is dropped.</p>
<time datetime="2023-01-02">Jan 2</time>
</article></body></html>`

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

func TestExtractMetadata(t *testing.T) {
	got := ExtractMetadata(mustDoc(t, articlePage))
	if got.Title != "Building a Blog Desk" {
		t.Fatalf("unexpected title %q", got.Title)
	}
	if got.Author != "Jane Doe" || got.Description != "How we built it." {
		t.Fatalf("unexpected author/description %+v", got)
	}
	if got.Thumbnail != "https://cdn.example.com/cover.png" || got.PublishedDate != "2024-03-05T10:00:00Z" {
		t.Fatalf("unexpected thumbnail/date %+v", got)
	}
}

func TestExtractMetadataFallbacks(t *testing.T) {
	got := ExtractMetadata(mustDoc(t, bareArticle))
	if got.Title != "Bare page" {
		t.Fatalf("expected <title> fallback, got %q", got.Title)
	}
	if got.PublishedDate != "2023-01-02" {
		t.Fatalf("expected <time> fallback, got %q", got.PublishedDate)
	}
	if got.Author != "" || got.Thumbnail != "" {
		t.Fatalf("missing fields must stay empty: %+v", got)
	}
}

func TestSummarize(t *testing.T) {
	if got := Summarize(mustDoc(t, articlePage)); got != "How we built it." {
		t.Fatalf("expected description summary, got %q", got)
	}
	want := "First sentence here. Second one follows! Third?"
	if got := Summarize(mustDoc(t, bareArticle)); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	long := "<html><body><p>" + strings.Repeat("word ", 200) + "</p></body></html>"
	if got := Summarize(mustDoc(t, long)); len([]rune(got)) > summaryMaxRunes+3 || !strings.HasSuffix(got, "...") {
		t.Fatalf("expected truncated summary, got %d runes", len([]rune(got)))
	}
}

func TestValidateLink(t *testing.T) {
	for _, raw := range []string{"", "  ", "medium.com/x", "ftp://example.com/a", "https://"} {
		if _, err := ValidateLink(raw); !errors.Is(err, ErrInvalidLink) {
			t.Fatalf("expected ErrInvalidLink for %q, got %v", raw, err)
		}
	}
	if got, err := ValidateLink(" https://medium.com/@fedkiit/post "); err != nil || got != "https://medium.com/@fedkiit/post" {
		t.Fatalf("unexpected %q (err: %v)", got, err)
	}
}

func TestExtractorAgainstServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/post":
			_, _ = w.Write([]byte(articlePage))
		case "/empty":
			_, _ = w.Write([]byte("<html><body></body></html>"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	ex := NewExtractor(srv.Client())
	ctx := context.Background()

	result, err := ex.Autofill(ctx, srv.URL+"/post")
	if err != nil {
		t.Fatalf("autofill: %v", err)
	}
	if result.Title != "Building a Blog Desk" {
		t.Fatalf("unexpected result %+v", result)
	}

	if _, err := ex.Autofill(ctx, srv.URL+"/empty"); !errors.Is(err, ErrNothingFound) {
		t.Fatalf("expected ErrNothingFound, got %v", err)
	}
	if _, err := ex.Summary(ctx, srv.URL+"/empty"); !errors.Is(err, ErrNothingFound) {
		t.Fatalf("expected ErrNothingFound for summary, got %v", err)
	}
	if _, err := ex.Summary(ctx, srv.URL+"/missing"); err == nil {
		t.Fatal("expected error for 404 page")
	}
}
