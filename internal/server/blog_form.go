package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"slices"
	"strings"

	"blogdesk/internal/blobstore"
	"blogdesk/internal/blog"
	"blogdesk/internal/models"
	"blogdesk/internal/store"
)

// formOverheadBytes is the allowance for text fields and multipart framing
// on top of the image upload limit.
const formOverheadBytes = 1 << 20

const imageRoutePrefix = "/api/blog/images/"

var imageExtensions = map[string]string{
	"image/gif":     ".gif",
	"image/jpeg":    ".jpg",
	"image/png":     ".png",
	"image/svg+xml": ".svg",
	"image/webp":    ".webp",
}

// blogForm is one parsed create or update submission.
type blogForm struct {
	record      models.BlogRecord
	imageURL    string
	imageHeader *multipart.FileHeader
}

func (f *blogForm) hasImage() bool {
	return f.imageHeader != nil || f.imageURL != ""
}

func (s *Server) parseBlogForm(w http.ResponseWriter, r *http.Request) (*blogForm, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.uploads.MaxUploadBytes+formOverheadBytes)
	if err := r.ParseMultipartForm(s.uploads.MultipartMaxMemory); err != nil {
		var maxBytesErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxBytesErr):
			return nil, tooLarge(fmt.Errorf("request body too large"))
		case errors.Is(err, http.ErrNotMultipart):
			return nil, badRequestCode(fmt.Errorf("expected multipart/form-data body"), ErrCodeInvalidForm)
		default:
			return nil, badRequestCode(fmt.Errorf("invalid form: %w", err), ErrCodeInvalidForm)
		}
	}

	value := func(key string) string {
		return strings.TrimSpace(r.FormValue(key))
	}

	form := &blogForm{
		record: models.BlogRecord{
			Title:       value("title"),
			Description: value("desc"),
			Summary:     value("summary"),
			Date:        value("date"),
			Author:      value("author"),
			BlogLink:    value("blogLink"),
			Visibility:  value("visibility"),
			Category:    value("category"),
			Approval:    value("approval"),
		},
		imageURL: value("image"),
	}
	if r.MultipartForm != nil {
		if files := r.MultipartForm.File["image"]; len(files) > 0 {
			form.imageHeader = files[0]
		}
	}
	return form, nil
}

// validate checks required fields in the order the admin form asks for
// them. requireImage is false on update, where the stored image is kept.
func (f *blogForm) validate(requireImage bool) error {
	rec := &f.record
	switch {
	case rec.Title == "":
		return badRequestCode(fmt.Errorf("blog title is required"), ErrCodeMissingRequired)
	case requireImage && !f.hasImage():
		return badRequestCode(fmt.Errorf("blog featured image is required"), ErrCodeMissingRequired)
	case f.imageHeader == nil && f.imageURL != "" && !blog.IsImageURL(f.imageURL):
		return badRequestCode(fmt.Errorf("image must be an http(s) link to an image file"), ErrCodeInvalidImage)
	case rec.Date == "":
		return badRequestCode(fmt.Errorf("blog publication date is required"), ErrCodeMissingRequired)
	case rec.Author == "":
		return badRequestCode(fmt.Errorf("blog author is required"), ErrCodeMissingRequired)
	case rec.Description == "":
		return badRequestCode(fmt.Errorf("meta description is required"), ErrCodeMissingRequired)
	}

	if _, ok := blog.ParseDate(rec.Date); !ok {
		return badRequestCode(fmt.Errorf("invalid date %q", rec.Date), ErrCodeInvalidArgument)
	}
	if err := validateAuthorField(rec.Author); err != nil {
		return err
	}
	if rec.BlogLink != "" && !isHTTPURL(rec.BlogLink) {
		return badRequestCode(fmt.Errorf("blog link must be an http(s) URL"), ErrCodeInvalidLink)
	}

	visibility := models.VisibilityPrivate
	if rec.Visibility != "" {
		parsed, err := models.ParseVisibility(rec.Visibility)
		if err != nil {
			return badRequestCode(err, ErrCodeInvalidVisibility)
		}
		visibility = parsed
	}
	rec.Visibility = visibility.String()

	if rec.Approval != "" {
		var approval models.Approval
		if err := json.Unmarshal([]byte(rec.Approval), &approval); err != nil {
			return badRequestCode(fmt.Errorf("approval must be a JSON object: %w", err), ErrCodeInvalidApproval)
		}
	}
	if rec.Summary == "" {
		rec.Summary = rec.Description
	}
	return nil
}

// validateAuthorField accepts a plain author name or the JSON object the
// admin form submits, which must carry a name.
func validateAuthorField(raw string) error {
	if !strings.HasPrefix(raw, "{") {
		return nil
	}
	var author models.Author
	if err := json.Unmarshal([]byte(raw), &author); err != nil {
		return badRequestCode(fmt.Errorf("author must be a name or a JSON object: %w", err), ErrCodeInvalidAuthor)
	}
	if strings.TrimSpace(author.Name) == "" {
		return badRequestCode(fmt.Errorf("author name is required"), ErrCodeInvalidAuthor)
	}
	return nil
}

func isHTTPURL(raw string) bool {
	lower := strings.ToLower(raw)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// resolveImage stores an uploaded file and returns its public URL, or
// returns the submitted image URL unchanged.
func (s *Server) resolveImage(ctx context.Context, r *http.Request, form *blogForm) (string, error) {
	if form.imageHeader == nil {
		return form.imageURL, nil
	}
	if s.blobs == nil {
		return "", notImplemented(fmt.Errorf("image uploads are not configured"))
	}
	if form.imageHeader.Size > s.uploads.MaxUploadBytes {
		return "", tooLarge(fmt.Errorf("image exceeds %d bytes", s.uploads.MaxUploadBytes))
	}

	file, err := form.imageHeader.Open()
	if err != nil {
		return "", badRequestCode(fmt.Errorf("read image: %w", err), ErrCodeInvalidImage)
	}
	defer file.Close()

	var result blobstore.PutResult
	err = s.uploadLimiterDo(ctx, func() error {
		var putErr error
		result, putErr = s.blobs.Put(ctx, file, s.uploads.MaxUploadBytes)
		return putErr
	})
	if err != nil {
		if errors.Is(err, blobstore.ErrTooLarge) {
			return "", tooLarge(err)
		}
		return "", blobFailure(err)
	}

	if !slices.Contains(s.uploads.AllowedMediaTypes, result.MediaType) {
		s.discardOrphanBlob(ctx, result.Key)
		return "", badRequestCode(fmt.Errorf("unsupported image type %q", result.MediaType), ErrCodeInvalidImage)
	}

	if err := s.store.PutImage(ctx, store.ImageRecord{
		BlobKey:   result.Key,
		SHA256:    result.SHA256,
		MediaType: result.MediaType,
		SizeBytes: result.SizeBytes,
		CreatedAt: s.clock(),
	}); err != nil {
		return "", storeFailure(err)
	}

	s.log().Debug("stored cover image", "key", result.Key, "media_type", result.MediaType, "size_bytes", result.SizeBytes)
	return requestBaseURL(r) + imageRoutePrefix + result.Key + imageExtensions[result.MediaType], nil
}

// uploadLimiterDo bounds concurrent blob writes. Callers queue until a
// slot frees up or ctx ends.
func (s *Server) uploadLimiterDo(ctx context.Context, fn func() error) error {
	if s.uploadLimiter == nil {
		return fn()
	}
	select {
	case s.uploadLimiter <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer s.releaseLimiter(s.uploadLimiter)
	return fn()
}

// discardOrphanBlob removes bytes that no image record points at. Content
// addressing means an identical, accepted upload may already own the key.
func (s *Server) discardOrphanBlob(ctx context.Context, key string) {
	existing, err := s.store.GetImage(ctx, key)
	if err != nil || existing != nil {
		return
	}
	if err := s.blobs.Delete(ctx, key); err != nil {
		s.log().Warn("discard rejected image", "key", key, "error", err)
	}
}

func requestBaseURL(r *http.Request) string {
	return requestScheme(r) + "://" + r.Host
}

func requestScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if proto := strings.ToLower(strings.TrimSpace(r.Header.Get("X-Forwarded-Proto"))); proto == "https" || proto == "http" {
		return proto
	}
	return "http"
}

// imageKeyFromPath strips the display extension from an image route key.
func imageKeyFromPath(raw string) string {
	key := strings.TrimSpace(raw)
	for _, ext := range imageExtensions {
		if strings.HasSuffix(key, ext) {
			return strings.TrimSuffix(key, ext)
		}
	}
	return key
}
