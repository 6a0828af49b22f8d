package server

import (
	"errors"
	"fmt"
	"net/http"

	"blogdesk/internal/api"
	"blogdesk/internal/autofill"
	"blogdesk/internal/models"
)

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	link, ok := s.decodeLinkReq(w, r)
	if !ok {
		return
	}
	s.withLimiter(w, r, s.extractLimiter, "article", func() {
		summary, err := s.extractor.Summary(r.Context(), link)
		if errors.Is(err, autofill.ErrNothingFound) {
			s.log().Debug("article has no summary text", "link", link)
			summary, err = "", nil
		}
		if err != nil {
			s.writeServiceError(w, r, classifyExtractError(err))
			return
		}
		s.writeJSON(w, http.StatusOK, api.SummaryResponse{Summary: summary})
	})
}

func (s *Server) handleAutofill(w http.ResponseWriter, r *http.Request) {
	link, ok := s.decodeLinkReq(w, r)
	if !ok {
		return
	}
	s.withLimiter(w, r, s.extractLimiter, "article", func() {
		result, err := s.extractor.Autofill(r.Context(), link)
		// An empty result is a valid answer; every field is optional.
		if errors.Is(err, autofill.ErrNothingFound) {
			s.log().Debug("article has no metadata", "link", link)
			result, err = models.AutofillResult{}, nil
		}
		if err != nil {
			s.writeServiceError(w, r, classifyExtractError(err))
			return
		}
		s.writeJSON(w, http.StatusOK, result)
	})
}

func (s *Server) decodeLinkReq(w http.ResponseWriter, r *http.Request) (string, bool) {
	if s.extractor == nil {
		s.writeErrorReq(w, r, http.StatusNotImplemented, notImplemented(fmt.Errorf("article helpers are not configured")))
		return "", false
	}
	var req api.LinkRequest
	if !s.decodeJSONReq(w, r, &req) {
		return "", false
	}
	link, err := autofill.ValidateLink(req.MediumLink)
	if err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, badRequestCode(err, ErrCodeInvalidLink))
		return "", false
	}
	return link, true
}

func classifyExtractError(err error) error {
	switch {
	case errors.Is(err, autofill.ErrInvalidLink):
		return badRequestCode(err, ErrCodeInvalidLink)
	default:
		return makeAPIError(http.StatusBadGateway, "upstream", ErrCodeArticleFetch, fmt.Errorf("fetch article: %w", err))
	}
}
