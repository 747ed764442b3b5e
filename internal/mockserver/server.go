// Package mockserver implements a Crawl4AI-compatible stand-in service so
// the client can be exercised without a real crawler deployment. Small URL
// batches are answered inline; larger ones go through the deferred task
// flow.
package mockserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JakeFAU/crawl4ai-client/internal/metrics"
)

// Config controls mock behavior.
type Config struct {
	// TaskDelay is how long a deferred task reports "running" before
	// flipping to "completed".
	TaskDelay time.Duration

	// AsyncThreshold is the largest URL batch still answered inline.
	// Batches above it get a task id.
	AsyncThreshold int
}

// Server wires the HTTP handlers to the in-memory task table.
type Server struct {
	router chi.Router
	cfg    Config
	logger *zap.Logger
	now    func() time.Time

	mu    sync.Mutex
	tasks map[string]*task
}

// Deferred tasks complete by clock, not by background work: the first poll
// after completeAt sees "completed".
type task struct {
	urls       []string
	completeAt time.Time
}

// New constructs a Server with middleware and routes.
func New(cfg Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics.Init()
	s := &Server{
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
		tasks:  make(map[string]*task),
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(s.observeMiddleware)
	r.Use(s.recoverMiddleware)

	r.Get("/healthz", s.healthz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	r.Post("/crawl", s.submitCrawl)
	r.Get("/task/{task_id}", s.taskStatus)

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type crawlRequest struct {
	URLs     []string `json:"urls"`
	Priority int      `json:"priority"`
}

func (s *Server) submitCrawl(w http.ResponseWriter, r *http.Request) {
	var req crawlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(req.URLs) == 0 {
		s.writeError(w, http.StatusBadRequest, "urls required")
		return
	}

	if len(req.URLs) <= s.cfg.AsyncThreshold {
		s.writeJSON(w, http.StatusOK, map[string]any{
			"results": fabricateResults(req.URLs),
		})
		return
	}

	taskID := uuid.NewString()
	s.mu.Lock()
	s.tasks[taskID] = &task{
		urls:       req.URLs,
		completeAt: s.now().Add(s.cfg.TaskDelay),
	}
	s.mu.Unlock()

	s.logger.Info("crawl task queued",
		zap.String("task_id", taskID),
		zap.Int("urls", len(req.URLs)),
		zap.Int("priority", req.Priority),
	)
	s.writeJSON(w, http.StatusOK, map[string]string{"task_id": taskID})
}

func (s *Server) taskStatus(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "task_id")

	s.mu.Lock()
	t, ok := s.tasks[taskID]
	s.mu.Unlock()
	if !ok {
		s.writeError(w, http.StatusNotFound, "task not found")
		return
	}

	if s.now().Before(t.completeAt) {
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "running"})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":  "completed",
		"results": fabricateResults(t.urls),
	})
}

// pageResult mirrors the service-side result shape with a structured
// markdown payload, so clients see both content variants from one mock.
type pageResult struct {
	URL              string           `json:"url"`
	Status           string           `json:"status"`
	Success          bool             `json:"success"`
	StatusCode       int              `json:"status_code"`
	Markdown         markdownDocument `json:"markdown"`
	ExtractedContent string           `json:"extracted_content,omitempty"`
}

type markdownDocument struct {
	RawMarkdown           string `json:"raw_markdown"`
	MarkdownWithCitations string `json:"markdown_with_citations"`
	FitMarkdown           string `json:"fit_markdown"`
	FitHTML               string `json:"fit_html"`
}

func fabricateResults(urls []string) []pageResult {
	results := make([]pageResult, 0, len(urls))
	for _, u := range urls {
		host := u
		if parsed, err := url.Parse(u); err == nil && parsed.Host != "" {
			host = parsed.Host
		}
		raw := fmt.Sprintf("# %s\n\nFetched by the mock crawl service.\n", host)
		results = append(results, pageResult{
			URL:        u,
			Status:     "ok",
			Success:    true,
			StatusCode: http.StatusOK,
			Markdown: markdownDocument{
				RawMarkdown:           raw,
				MarkdownWithCitations: raw + "\n[1]: " + u + "\n",
				FitMarkdown:           raw,
				FitHTML:               fmt.Sprintf("<h1>%s</h1>", host),
			},
		})
	}
	return results
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Request-ID", uuid.NewString())
		next.ServeHTTP(w, r)
	})
}

func (s *Server) observeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)
		route := chi.RouteContext(r.Context()).RoutePattern()
		metrics.ObserveMockRequest(r.Method, route, ww.status, time.Since(start))
		s.logger.Debug("request completed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered", zap.Any("error", rec))
				s.writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("write JSON failed", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
