package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"blogdesk/internal/api"
	"blogdesk/internal/models"
	"blogdesk/internal/store"
)

func (s *Server) handleListBlogs(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.ListBlogs(r.Context())
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	// Anonymous readers only see what the public site shows.
	if _, ok := authPrincipalFromContext(r.Context()); !ok {
		public := records[:0]
		for _, rec := range records {
			if rec.Visibility == models.VisibilityPublic.String() {
				public = append(public, rec)
			}
		}
		records = public
	}

	raws := make([]json.RawMessage, 0, len(records))
	for _, rec := range records {
		raw, err := json.Marshal(rec)
		if err != nil {
			s.writeErrorReq(w, r, http.StatusInternalServerError, err)
			return
		}
		raws = append(raws, raw)
	}

	w.Header().Set("Cache-Control", "no-store")
	s.writeJSON(w, http.StatusOK, api.ListBlogsResponse{Blogs: raws})
}

func (s *Server) handleCreateBlog(w http.ResponseWriter, r *http.Request) {
	form, err := s.parseBlogForm(w, r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if err := form.validate(true); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	image, err := s.resolveImage(r.Context(), r, form)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	rec := form.record
	rec.Image = image
	now := s.clock()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	if err := s.store.CreateBlog(r.Context(), &rec); err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	s.log().Info("blog created", "id", rec.ID, "visibility", rec.Visibility)
	s.writeBlog(w, r, http.StatusCreated, "Blog created successfully", rec)
}

// handleUpdateBlog replaces every field of a blog. The stored image is kept
// when the submission carries none. Concurrent updates are last write wins.
func (s *Server) handleUpdateBlog(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathIDOrBadRequest(w, r)
	if !ok {
		return
	}

	form, err := s.parseBlogForm(w, r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if err := form.validate(false); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	existing, err := s.store.GetBlog(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	if existing == nil {
		s.writeErrorReq(w, r, http.StatusNotFound, notFoundCode(fmt.Errorf("blog not found"), ErrCodeBlogNotFound))
		return
	}

	image, err := s.resolveImage(r.Context(), r, form)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if image == "" {
		image = existing.Image
	}

	rec := form.record
	rec.ID = id
	rec.Image = image
	rec.CreatedAt = existing.CreatedAt
	rec.UpdatedAt = s.clock()
	if err := s.store.UpdateBlog(r.Context(), &rec); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.writeErrorReq(w, r, http.StatusNotFound, notFoundCode(fmt.Errorf("blog not found"), ErrCodeBlogNotFound))
			return
		}
		s.writeStoreError(w, r, err)
		return
	}

	s.log().Info("blog updated", "id", rec.ID, "visibility", rec.Visibility)
	s.writeBlog(w, r, http.StatusOK, "Blog updated successfully", rec)
}

func (s *Server) handleDeleteBlog(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathIDOrBadRequest(w, r)
	if !ok {
		return
	}

	if err := s.store.DeleteBlog(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.writeErrorReq(w, r, http.StatusNotFound, notFoundCode(fmt.Errorf("blog not found"), ErrCodeBlogNotFound))
			return
		}
		s.writeStoreError(w, r, err)
		return
	}

	s.log().Info("blog deleted", "id", id)
	s.writeJSON(w, http.StatusOK, api.MessageResponse{Message: "Blog deleted successfully"})
}

func (s *Server) handleGetImage(w http.ResponseWriter, r *http.Request) {
	key := imageKeyFromPath(r.PathValue("key"))
	if key == "" {
		s.writeErrorReq(w, r, http.StatusBadRequest, badRequestCode(fmt.Errorf("image key is required"), ErrCodeInvalidImageKey))
		return
	}

	meta, err := s.store.GetImage(r.Context(), key)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	if meta == nil || s.blobs == nil {
		s.writeErrorReq(w, r, http.StatusNotFound, notFoundCode(fmt.Errorf("image not found"), ErrCodeImageNotFound))
		return
	}

	body, err := s.blobs.Open(r.Context(), meta.BlobKey)
	if err != nil {
		s.writeErrorReq(w, r, http.StatusInternalServerError, blobFailure(err))
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", meta.MediaType)
	w.Header().Set("Content-Length", strconv.FormatInt(meta.SizeBytes, 10))
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	if meta.MediaType == "image/svg+xml" {
		w.Header().Set("Content-Security-Policy", "default-src 'none'; style-src 'unsafe-inline'; sandbox")
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		s.log().Warn("stream image", "key", meta.BlobKey, "error", err)
	}
}

func (s *Server) writeBlog(w http.ResponseWriter, r *http.Request, status int, message string, rec models.BlogRecord) {
	raw, err := json.Marshal(rec)
	if err != nil {
		s.writeErrorReq(w, r, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, status, api.BlogResponse{Message: message, Blog: raw})
}
