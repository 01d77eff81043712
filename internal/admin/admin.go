// Package admin serves the loopback operations API: health, status, policy
// introspection and Prometheus metrics.
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"tenantgate/internal/metrics"
	"tenantgate/internal/policy"
	"tenantgate/internal/proxy"
)

// Server is the admin HTTP server. It binds to loopback by default and
// carries no authentication; exposing it is the operator's call.
type Server struct {
	listen  string
	proxy   *proxy.Server
	policy  *policy.List
	logger  *slog.Logger
	version string
}

func New(listen string, p *proxy.Server, list *policy.List, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		listen:  listen,
		proxy:   p,
		policy:  list,
		logger:  logger.With("component", "admin"),
		version: version,
	}
}

// Router returns the handler with all admin routes attached.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/policy", s.handlePolicy)
	mux.Handle("/metrics", metrics.Handler())
	return mux
}

// Run serves the admin API until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.listen,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Info("admin API listening", "addr", s.listen)

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	payload := map[string]interface{}{
		"version": s.version,
		"proxy":   s.proxy.Stats(),
	}
	if s.policy != nil {
		payload["policy"] = s.policy.Snapshot()
	}
	writeJSON(w, http.StatusOK, payload)
}

// handlePolicy reports the blocked tenant list; a POST forces a reload from
// disk for operators who do not want to wait on the watcher.
func (s *Server) handlePolicy(w http.ResponseWriter, r *http.Request) {
	if s.policy == nil {
		writeJSON(w, http.StatusConflict, "no policy configured")
		return
	}
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.policy.Snapshot())
	case http.MethodPost:
		if err := s.policy.Load(); err != nil {
			metrics.PolicyReloadErrors.Inc()
			writeJSON(w, http.StatusInternalServerError, err.Error())
			return
		}
		metrics.PolicyReloads.Inc()
		s.logger.Info("policy reloaded via API", "blocked", s.policy.Count())
		writeJSON(w, http.StatusOK, s.policy.Snapshot())
	default:
		writeJSON(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	body := map[string]interface{}{}
	if status >= 400 {
		msg := payload
		if err, ok := payload.(error); ok {
			msg = err.Error()
		}
		body["ok"] = false
		body["error"] = msg
	} else {
		body["ok"] = true
		body["data"] = payload
	}

	_ = json.NewEncoder(w).Encode(body)
}
