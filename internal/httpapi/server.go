// Package httpapi exposes the tacklebox engine over a JSON HTTP API.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/anglerlog/tacklebox/pkg/tacklebox"
	"github.com/anglerlog/tacklebox/pkg/tacklebox/identity"
	"github.com/anglerlog/tacklebox/pkg/tacklebox/ingest"
	"github.com/anglerlog/tacklebox/pkg/tacklebox/internalerr"
)

// Server routes API requests to the tacklebox engine.
type Server struct {
	box        *tacklebox.Tacklebox
	identity   identity.Provider
	log        *zap.Logger
	errorLimit int
}

// New creates the API server. A nil logger disables request logging.
func New(box *tacklebox.Tacklebox, id identity.Provider, log *zap.Logger, errorLimit int) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if errorLimit <= 0 {
		errorLimit = ingest.DefaultErrorLimit
	}
	return &Server{box: box, identity: id, log: log, errorLimit: errorLimit}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/surfaces/{surface}/preview", s.handlePreview)
	mux.HandleFunc("POST /api/surfaces/{surface}/import", s.handleImport)
	mux.HandleFunc("GET /api/gear", s.handleGear)
	mux.HandleFunc("GET /api/restock", s.handleRestock)
	return s.logged(mux)
}

// pasteRequest is the body for preview and import. Format "html" runs the
// HTML table extractor over the text before parsing.
type pasteRequest struct {
	Text   string `json:"text"`
	Format string `json:"format,omitempty"`
}

// previewResponse mirrors ingest.PreviewResult with the error list bounded.
type previewResponse struct {
	Rows           []previewRow `json:"rows"`
	Errors         []string     `json:"errors"`
	HiddenErrors   int          `json:"hidden_errors,omitempty"`
	Missing        int          `json:"missing"`
	InsertEligible bool         `json:"insert_eligible"`
	Reason         string       `json:"reason,omitempty"`
}

type previewRow struct {
	Line    int                `json:"line"`
	Name    string             `json:"name"`
	Status  string             `json:"status"`
	Strings map[string]string  `json:"fields,omitempty"`
	Numbers map[string]float64 `json:"numbers,omitempty"`
	Refs    map[string]string  `json:"refs,omitempty"`
	Missing bool               `json:"missing,omitempty"`
}

type importResponse struct {
	Inserted int `json:"inserted"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	surface := r.PathValue("surface")

	req, ok := s.decodePaste(w, r)
	if !ok {
		return
	}

	// Previews don't require identity; an anonymous combo preview simply
	// resolves nothing.
	var owner string
	if user, err := s.identity.Current(r.Context(), bearerToken(r)); err == nil {
		owner = user.ID
	}

	res, err := s.box.Preview(r.Context(), owner, surface, req.Text)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toPreviewResponse(res, s.errorLimit))
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	surface := r.PathValue("surface")

	req, ok := s.decodePaste(w, r)
	if !ok {
		return
	}

	count, err := s.box.Commit(r.Context(), bearerToken(r), surface, req.Text)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, importResponse{Inserted: count})
}

func (s *Server) handleGear(w http.ResponseWriter, r *http.Request) {
	user, err := s.identity.Current(r.Context(), bearerToken(r))
	if err != nil {
		s.writeError(w, err)
		return
	}

	q := tacklebox.Query{
		Text:     r.URL.Query().Get("q"),
		Status:   r.URL.Query().Get("status"),
		Category: r.URL.Query().Get("category"),
	}
	sortKey := r.URL.Query().Get("sort")
	desc := r.URL.Query().Get("order") == "desc"

	items, err := s.box.Gear(r.Context(), user.ID, q, sortKey, desc)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleRestock(w http.ResponseWriter, r *http.Request) {
	user, err := s.identity.Current(r.Context(), bearerToken(r))
	if err != nil {
		s.writeError(w, err)
		return
	}

	restock, err := s.box.RestockFor(r.Context(), user.ID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, restock)
}

func (s *Server) decodePaste(w http.ResponseWriter, r *http.Request) (pasteRequest, bool) {
	var req pasteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return pasteRequest{}, false
	}
	if req.Format == "html" {
		req.Text = ingest.ExtractTableText(req.Text)
	}
	return req, true
}

func toPreviewResponse(res ingest.PreviewResult, limit int) previewResponse {
	visible, hidden := res.VisibleErrors(limit)
	out := previewResponse{
		Rows:           make([]previewRow, 0, len(res.Rows)),
		Errors:         make([]string, 0, len(visible)),
		HiddenErrors:   hidden,
		Missing:        res.Missing,
		InsertEligible: res.InsertEligible,
		Reason:         res.Reason,
	}
	for _, row := range res.Rows {
		out.Rows = append(out.Rows, previewRow{
			Line:    row.Line,
			Name:    row.Name,
			Status:  row.Status,
			Strings: row.Strings,
			Numbers: row.Numbers,
			Refs:    row.Refs,
			Missing: row.Missing,
		})
	}
	for _, e := range visible {
		out.Errors = append(out.Errors, e.String())
	}
	return out
}

// writeError maps engine errors onto HTTP statuses. Store failure messages
// are surfaced verbatim; the client's input is never touched.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	switch {
	case errors.Is(err, internalerr.ErrNotSignedIn):
		status = http.StatusUnauthorized
	case errors.Is(err, internalerr.ErrNotEligible):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, internalerr.ErrInvalidSchema):
		status = http.StatusNotFound
	case errors.Is(err, internalerr.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, internalerr.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("encode response", zap.Error(err))
	}
}

func (s *Server) logged(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("took", time.Since(start)),
		)
	})
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}
