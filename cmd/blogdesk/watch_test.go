package main

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"blogdesk/internal/feed"
	"blogdesk/internal/models"
)

func TestWatchFeedRendersAppliedLists(t *testing.T) {
	var calls atomic.Int32
	f := feed.New(func(context.Context) ([]models.Blog, error) {
		if calls.Add(1) == 2 {
			return nil, errors.New("temporary outage")
		}
		return []models.Blog{{ID: "b1", Title: "Hello"}}, nil
	}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var renders atomic.Int32
	err := watchFeed(ctx, f, 50*time.Millisecond, func(blogs []models.Blog) error {
		if len(blogs) != 1 || blogs[0].ID != "b1" {
			t.Errorf("unexpected render %+v", blogs)
		}
		if renders.Add(1) == 2 {
			cancel()
		}
		return nil
	})
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	if renders.Load() < 1 {
		t.Fatal("expected at least one render")
	}
	if calls.Load() < 2 {
		t.Fatalf("expected periodic refresh, got %d fetches", calls.Load())
	}
}

func TestWatchFeedStopsOnRenderError(t *testing.T) {
	f := feed.New(func(context.Context) ([]models.Blog, error) {
		return []models.Blog{}, nil
	}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	want := errors.New("stdout closed")
	err := watchFeed(ctx, f, time.Hour, func([]models.Blog) error { return want })
	if !errors.Is(err, want) {
		t.Fatalf("expected render error, got %v", err)
	}
}
