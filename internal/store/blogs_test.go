package store

import (
	"errors"
	"testing"
	"time"

	"blogdesk/internal/models"
)

func TestBlogCRUD(t *testing.T) {
	st, ctx := openTestStore(t)

	rec := &models.BlogRecord{
		Title:      "Hello",
		Date:       "2025-01-02",
		Author:     `{"name":"Jane","department":"Eng"}`,
		Visibility: "public",
	}
	if err := st.CreateBlog(ctx, rec); err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(rec.ID) != 36 {
		t.Fatalf("expected generated uuid, got %q", rec.ID)
	}
	exists, err := st.BlogExists(rec.ID)
	if err != nil || !exists {
		t.Fatalf("expected blog to exist (err: %v)", err)
	}

	older := &models.BlogRecord{ID: "fixed-id", Title: "Older", Date: "2024-06-01", Visibility: "private"}
	if err := st.CreateBlog(ctx, older); err != nil {
		t.Fatalf("create older: %v", err)
	}

	list, err := st.ListBlogs(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != rec.ID || list[1].ID != "fixed-id" {
		t.Fatalf("expected newest first, got %+v", list)
	}
	if list[0].Author != rec.Author {
		t.Fatalf("author JSON must round trip, got %q", list[0].Author)
	}

	updated := *rec
	updated.Title = "Hello again"
	updated.UpdatedAt = time.Time{}
	if err := st.UpdateBlog(ctx, &updated); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := st.GetBlog(ctx, rec.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Hello again" || !got.CreatedAt.Equal(rec.CreatedAt) {
		t.Fatalf("unexpected updated blog %+v", got)
	}

	missing := models.BlogRecord{ID: "nope", Title: "x"}
	if err := st.UpdateBlog(ctx, &missing); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on update, got %v", err)
	}

	if err := st.DeleteBlog(ctx, rec.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := st.DeleteBlog(ctx, rec.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
	if got, err := st.GetBlog(ctx, rec.ID); err != nil || got != nil {
		t.Fatalf("expected nil after delete, got %+v (err: %v)", got, err)
	}
}

func TestImageMetadata(t *testing.T) {
	st, ctx := openTestStore(t)

	img := ImageRecord{BlobKey: "sha256/ab/cd/abcd", SHA256: "abcd", MediaType: "image/png", SizeBytes: 42}
	if err := st.PutImage(ctx, img); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := st.PutImage(ctx, img); err != nil {
		t.Fatalf("put duplicate: %v", err)
	}
	got, err := st.GetImage(ctx, img.BlobKey)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.MediaType != "image/png" || got.SizeBytes != 42 {
		t.Fatalf("unexpected image %+v", got)
	}
	if missing, err := st.GetImage(ctx, "sha256/none"); err != nil || missing != nil {
		t.Fatalf("expected nil for unknown key, got %+v (err: %v)", missing, err)
	}
}

func TestGenerateBlogIDRetriesOnCollision(t *testing.T) {
	calls := 0
	id, err := GenerateBlogID(func(string) (bool, error) {
		calls++
		return calls == 1, nil
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if calls != 2 || id == "" {
		t.Fatalf("expected one retry, calls=%d id=%q", calls, id)
	}

	if _, err := GenerateBlogID(func(string) (bool, error) { return true, nil }); err == nil {
		t.Fatal("expected error when every id collides")
	}
}
