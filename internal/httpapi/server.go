// Package httpapi exposes the analysis pipeline over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tiptopassets/analysis-engine/internal/analysis"
	"github.com/tiptopassets/analysis-engine/internal/contracts"
	"github.com/tiptopassets/analysis-engine/internal/report"
	"github.com/tiptopassets/analysis-engine/internal/resultcache"
)

// Runner runs one full analysis.
type Runner interface {
	Analyze(ctx context.Context, req contracts.AnalyzeRequest) (contracts.AnalyzeResponse, error)
}

// Reader serves previously completed analyses.
type Reader interface {
	GetByID(ctx context.Context, id string) (contracts.AnalyzeResponse, error)
	Get(ctx context.Context, c contracts.Coordinates) (contracts.AnalyzeResponse, error)
}

type Server struct {
	runner Runner
	reader Reader // optional
	log    zerolog.Logger
}

func NewServer(runner Runner, reader Reader, log zerolog.Logger) http.Handler {
	s := &Server{runner: runner, reader: reader, log: log}
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/analyses", s.handleAnalyses)
	mux.HandleFunc("/v1/analyses/", s.handleAnalysisByID)
	mux.HandleFunc("/v1/health", s.handleHealth)
	return s.withRequestLog(mux)
}

func (s *Server) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", reqID)
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Info().
			Str("request_id", reqID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	kind := analysis.KindOf(err)
	switch kind {
	case analysis.KindInput:
		status = http.StatusBadRequest
	case analysis.KindExternal:
		status = http.StatusBadGateway
	}
	body := map[string]any{
		"kind":    string(kind),
		"message": err.Error(),
	}
	if kind == analysis.KindExternal {
		body["stage"] = analysis.StageNameFromError(err)
	}
	writeJSON(w, status, map[string]any{"ok": false, "error": body})
}

func readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return []byte("{}"), nil
	}
	blob, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if len(blob) == 0 {
		blob = []byte("{}")
	}
	return blob, nil
}

func methodOnly(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func (s *Server) handleAnalyses(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodPost) {
		return
	}
	blob, err := readBody(r)
	if err != nil {
		writeError(w, &analysis.Error{Kind: analysis.KindInput, Op: "read body", Err: err})
		return
	}
	var req contracts.AnalyzeRequest
	if err := json.Unmarshal(blob, &req); err != nil {
		writeError(w, &analysis.Error{Kind: analysis.KindInput, Op: "decode request", Err: err})
		return
	}

	res, err := s.runner.Analyze(r.Context(), req)
	if err != nil {
		s.log.Error().Err(err).Str("address", req.Address).Msg("analysis failed")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleAnalysisByID(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodGet) {
		return
	}
	if s.reader == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/v1/analyses/")
	wantReport := false
	if strings.HasSuffix(path, "/report") {
		wantReport = true
		path = strings.TrimSuffix(path, "/report")
	}
	id := strings.Trim(path, "/")
	if id == "" || strings.Contains(id, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	res, err := s.reader.GetByID(r.Context(), id)
	if errors.Is(err, resultcache.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"ok":    false,
			"error": map[string]any{"kind": "not_found", "message": "analysis not found"},
		})
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	if wantReport {
		writeJSON(w, http.StatusOK, map[string]any{
			"id":              res.ID,
			"report_markdown": report.BuildMarkdown(res),
		})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}
