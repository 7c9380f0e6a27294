// Package api exposes the daemon's admin HTTP surface: health/readiness
// probes, Prometheus metrics, and read/reload access to the running
// configuration. It carries no uevent traffic itself — ingestion is the
// netlink source's job — this is purely operational tooling.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gyaneshwarpardhi/uevcoalesce/internal/config"
	"github.com/gyaneshwarpardhi/uevcoalesce/internal/dispatcher"
)

// readyQueueDepthThreshold marks the daemon unready once the handoff
// queue backs up past this many events, signalling the dispatcher can't
// keep pace with the listener.
const readyQueueDepthThreshold = 4096

// Handler holds the admin HTTP handler's dependencies.
type Handler struct {
	store  *config.Store
	disp   *dispatcher.Dispatcher
	logger *slog.Logger
	mux    *http.ServeMux
}

// New creates the admin HTTP handler and registers all routes.
func New(store *config.Store, disp *dispatcher.Dispatcher, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{store: store, disp: disp, logger: logger, mux: http.NewServeMux()}

	h.mux.HandleFunc("GET /healthz", h.healthz)
	h.mux.HandleFunc("GET /readyz", h.readyz)
	h.mux.HandleFunc("GET /v1/config", h.getConfig)
	h.mux.HandleFunc("POST /v1/config/reload", h.reloadConfig)
	h.mux.Handle("GET /metrics", promhttp.Handler())

	return h.loggingMiddleware(h.mux)
}

// GET /healthz — always 200 (liveness probe).
func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /readyz — 503 once the handoff queue backs up past
// readyQueueDepthThreshold, signalling the dispatcher is falling behind.
func (h *Handler) readyz(w http.ResponseWriter, r *http.Request) {
	depth := h.disp.QueueDepth()
	body := map[string]interface{}{
		"queue_depth": depth,
		"busy":        h.disp.IsBusy(),
	}
	if depth > readyQueueDepthThreshold {
		body["status"] = "overloaded"
		writeJSON(w, http.StatusServiceUnavailable, body)
		return
	}
	body["status"] = "ready"
	writeJSON(w, http.StatusOK, body)
}

// GET /v1/config — the currently active configuration snapshot.
func (h *Handler) getConfig(w http.ResponseWriter, r *http.Request) {
	handle := h.store.Acquire()
	defer handle.Release()
	writeJSON(w, http.StatusOK, handle.Config())
}

// POST /v1/config/reload — force an immediate re-read of the config
// file from disk, bypassing the fsnotify watcher.
func (h *Handler) reloadConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.store.Reload()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reloaded": true,
		"version":  cfg.Version,
	})
}

func (h *Handler) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		h.logger.Debug("admin request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
