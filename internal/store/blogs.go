package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"blogdesk/internal/models"
)

const blogColumns = `id, title, description, summary, image, date, author, blog_link, visibility, category, approval, created_at, updated_at`

// BlogExists checks whether a blog exists by id.
func (s *Store) BlogExists(id string) (bool, error) {
	var exists int
	err := s.db.QueryRow("SELECT 1 FROM blogs WHERE id = ? LIMIT 1", id).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CreateBlog inserts a blog. An empty id is replaced by a generated one.
func (s *Store) CreateBlog(ctx context.Context, rec *models.BlogRecord) error {
	if rec == nil {
		return fmt.Errorf("blog is required")
	}
	if strings.TrimSpace(rec.ID) == "" {
		id, err := GenerateBlogID(s.BlogExists)
		if err != nil {
			return err
		}
		rec.ID = id
	}
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = rec.CreatedAt
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO blogs (`+blogColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.Title, rec.Description, rec.Summary, rec.Image, rec.Date, rec.Author,
		rec.BlogLink, rec.Visibility, rec.Category, rec.Approval,
		dbFormatTime(rec.CreatedAt), dbFormatTime(rec.UpdatedAt))
	return err
}

// GetBlog returns one blog by id, or nil when it does not exist.
func (s *Store) GetBlog(ctx context.Context, id string) (*models.BlogRecord, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+blogColumns+" FROM blogs WHERE id = ? LIMIT 1", id)
	rec, err := scanBlog(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return rec, err
}

// ListBlogs returns every blog, newest publication date first.
func (s *Store) ListBlogs(ctx context.Context) ([]models.BlogRecord, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+blogColumns+" FROM blogs ORDER BY date DESC, created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	blogs := make([]models.BlogRecord, 0)
	for rows.Next() {
		rec, err := scanBlog(rows)
		if err != nil {
			return nil, err
		}
		blogs = append(blogs, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return blogs, nil
}

// UpdateBlog replaces every field of an existing blog. The last write wins.
func (s *Store) UpdateBlog(ctx context.Context, rec *models.BlogRecord) error {
	if rec == nil || strings.TrimSpace(rec.ID) == "" {
		return fmt.Errorf("blog id is required")
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now().UTC()
	}
	result, err := s.db.ExecContext(ctx, `
		UPDATE blogs
		SET title = ?, description = ?, summary = ?, image = ?, date = ?, author = ?,
		    blog_link = ?, visibility = ?, category = ?, approval = ?, updated_at = ?
		WHERE id = ?
	`, rec.Title, rec.Description, rec.Summary, rec.Image, rec.Date, rec.Author,
		rec.BlogLink, rec.Visibility, rec.Category, rec.Approval, dbFormatTime(rec.UpdatedAt), rec.ID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteBlog removes one blog.
func (s *Store) DeleteBlog(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM blogs WHERE id = ?", id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanBlog(scanner interface {
	Scan(dest ...any) error
}) (*models.BlogRecord, error) {
	var rec models.BlogRecord
	var createdAt, updatedAt string
	if err := scanner.Scan(&rec.ID, &rec.Title, &rec.Description, &rec.Summary, &rec.Image, &rec.Date,
		&rec.Author, &rec.BlogLink, &rec.Visibility, &rec.Category, &rec.Approval, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	var err error
	if rec.CreatedAt, err = dbParseTime(createdAt); err != nil {
		return nil, err
	}
	if rec.UpdatedAt, err = dbParseTime(updatedAt); err != nil {
		return nil, err
	}
	return &rec, nil
}
