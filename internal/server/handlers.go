package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/google/uuid"
	"github.com/ppiankov/vitalscan/internal/model"
	"github.com/ppiankov/vitalscan/internal/pipeline"
	"go.uber.org/zap"
)

// AssessResponse is returned by POST /api/assess
type AssessResponse struct {
	Success     bool                   `json:"success"`
	Report      *model.CanonicalReport `json:"report,omitempty"`
	Document    *model.Document        `json:"document,omitempty"`
	RedirectURL string                 `json:"redirect_url,omitempty"`
	Error       string                 `json:"error,omitempty"`
}

// ResultsResponse is returned by GET /results
type ResultsResponse struct {
	HasResults bool            `json:"has_results"`
	Document   *model.Document `json:"document,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleNormalize normalizes the request body as a raw report document
func (s *Server) handleNormalize(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, s.maxBody))
	if err != nil {
		s.respondJSON(w, http.StatusBadRequest, AssessResponse{Error: fmt.Sprintf("read body: %v", err)})
		return
	}

	doc := s.assessor.NormalizeBytes(r.Context(), body, r.Header.Get("Content-Type"), "request")
	s.respondJSON(w, http.StatusOK, doc)
}

// handleAssess forwards a questionnaire to the scoring service and keeps the
// result in the caller's session for GET /results
func (s *Server) handleAssess(w http.ResponseWriter, r *http.Request) {
	form, err := s.decodeForm(r)
	if err != nil {
		s.respondJSON(w, http.StatusBadRequest, AssessResponse{Error: err.Error()})
		return
	}

	doc, err := s.assessor.Assess(r.Context(), form)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, pipeline.ErrUpstreamFailed) {
			status = http.StatusBadGateway
		}
		s.logger.Warn("assessment failed", zap.Error(err))
		s.respondJSON(w, status, AssessResponse{Error: fmt.Sprintf("Assessment failed: %v", err)})
		return
	}

	sessionID := s.sessionID(r)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	if err := s.sessions.Put(sessionID, doc); err != nil {
		s.logger.Error("failed to store session", zap.Error(err))
	} else {
		http.SetCookie(w, &http.Cookie{
			Name:     s.cookieName,
			Value:    sessionID,
			Path:     "/",
			MaxAge:   int(s.cookieTTL.Seconds()),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}

	s.respondJSON(w, http.StatusOK, AssessResponse{
		Success:     true,
		Report:      &doc.Report,
		Document:    doc,
		RedirectURL: "/results",
	})
}

// handleResults returns the document stored in the caller's session
func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	sessionID := s.sessionID(r)
	if sessionID == "" {
		s.respondJSON(w, http.StatusNotFound, ResultsResponse{HasResults: false})
		return
	}

	var doc model.Document
	ok, err := s.sessions.Load(sessionID, &doc)
	if err != nil {
		s.logger.Warn("failed to load session", zap.Error(err))
	}
	if !ok || err != nil {
		s.respondJSON(w, http.StatusNotFound, ResultsResponse{HasResults: false})
		return
	}

	s.respondJSON(w, http.StatusOK, ResultsResponse{HasResults: true, Document: &doc})
}

// decodeForm accepts a JSON object or a urlencoded/multipart form
func (s *Server) decodeForm(r *http.Request) (map[string]any, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if mediaType == "application/json" || mediaType == "" {
		var form map[string]any
		dec := json.NewDecoder(io.LimitReader(r.Body, s.maxBody))
		dec.UseNumber()
		if err := dec.Decode(&form); err != nil {
			return nil, fmt.Errorf("invalid JSON form: %w", err)
		}
		return form, nil
	}

	r.Body = http.MaxBytesReader(nil, r.Body, s.maxBody)
	if err := r.ParseMultipartForm(s.maxBody); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return nil, fmt.Errorf("invalid form: %w", err)
	}
	form := make(map[string]any, len(r.Form))
	for k, v := range r.Form {
		if len(v) > 0 {
			form[k] = v[0]
		}
	}
	return form, nil
}

func (s *Server) sessionID(r *http.Request) string {
	c, err := r.Cookie(s.cookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}
