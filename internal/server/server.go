// Package server exposes the normalizer over HTTP.
//
//	GET  /health           liveness probe
//	GET  /scan?text=...    normalize a payload given in the query
//	POST /scan             normalize the request body
//	POST /submit           normalize and forward to the spreadsheet endpoint
//
// /scan answers with the scan as JSON, or with the two-line CSV block when
// called with ?format=csv.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/hejijunhao/qrsheet/internal/input"
	"github.com/hejijunhao/qrsheet/internal/normalize"
	"github.com/hejijunhao/qrsheet/internal/output"
	"github.com/hejijunhao/qrsheet/internal/pipeline"
)

const (
	defaultMaxPayload = 64 << 10
	shutdownTimeout   = 5 * time.Second
)

// Option configures a Server.
type Option func(*Server)

// WithSubmitter sets the output that /submit forwards scans to. Without one,
// /submit answers 503.
func WithSubmitter(out output.Output) Option {
	return func(s *Server) { s.submit = pipeline.New(s.proc, out) }
}

// WithMaxPayloadBytes caps request bodies. Default: 64 KiB.
func WithMaxPayloadBytes(n int64) Option {
	return func(s *Server) { s.maxBytes = n }
}

// Server routes HTTP requests to the engine.
type Server struct {
	proc     pipeline.Processor
	submit   *pipeline.Pipeline
	maxBytes int64
	router   *mux.Router
}

// New creates a Server around proc.
func New(proc pipeline.Processor, opts ...Option) *Server {
	s := &Server{
		proc:     proc,
		maxBytes: defaultMaxPayload,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(requestID, logRequests)
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "OK")
	}).Methods(http.MethodGet)
	r.HandleFunc("/scan", s.handleScan).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/submit", s.handleSubmit).Methods(http.MethodPost)
	return r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully and closes the submit output.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.Close()
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	if cerr := s.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}

// Close closes the submit output, if any.
func (s *Server) Close() error {
	if s.submit == nil {
		return nil
	}
	return s.submit.Close()
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	format, err := output.ParseFormat(formatParam(r))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	raw, status, err := s.payload(w, r)
	if err != nil {
		writeError(w, status, err.Error())
		return
	}

	scan := s.proc.Process(raw, time.Time{})
	if format == output.FormatCSV {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(scan.CSV))
		return
	}
	writeJSON(w, http.StatusOK, scan)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if s.submit == nil {
		writeError(w, http.StatusServiceUnavailable, "no spreadsheet endpoint configured")
		return
	}
	raw, status, err := s.payload(w, r)
	if err != nil {
		writeError(w, status, err.Error())
		return
	}
	if normalize.Trim(raw) == "" {
		writeError(w, http.StatusBadRequest, "empty payload")
		return
	}

	scan, err := s.submit.Handle(r.Context(), raw)
	if err != nil {
		slog.Warn("submit failed", "id", scan.ID, "error", err)
		writeError(w, http.StatusServiceUnavailable, "submission unavailable")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"id": scan.ID})
}

// payload extracts the raw text from a request. GET reads the text query
// parameter; POST reads the body, either as plain text or as {"text": ...}
// when sent as JSON.
func (s *Server) payload(w http.ResponseWriter, r *http.Request) (string, int, error) {
	if r.Method == http.MethodGet {
		q := r.URL.Query()
		if !q.Has("text") {
			return "", http.StatusBadRequest, errors.New("missing text parameter")
		}
		return q.Get("text"), 0, nil
	}

	body := http.MaxBytesReader(w, r.Body, s.maxBytes)
	raw, err := input.Read(body, s.maxBytes)
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) || errors.Is(err, input.ErrTooLarge) {
			return "", http.StatusRequestEntityTooLarge, errors.New("payload too large")
		}
		return "", http.StatusBadRequest, err
	}

	if !isJSONRequest(r) {
		return raw, 0, nil
	}
	var req struct {
		Text *string `json:"text"`
	}
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		return "", http.StatusBadRequest, fmt.Errorf("invalid JSON body: %w", err)
	}
	if req.Text == nil {
		return "", http.StatusBadRequest, errors.New(`missing "text" field`)
	}
	return *req.Text, 0, nil
}

func formatParam(r *http.Request) string {
	if f := r.URL.Query().Get("format"); f != "" {
		return f
	}
	return string(output.FormatJSON)
}

func isJSONRequest(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/json"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		slog.Warn("write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
