package preview

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	pathpkg "path"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"cipherstudio-cli/internal/logging"
)

const DefaultAddr = "127.0.0.1:5173"

// Source is what the server reads on every request.
type Source interface {
	SourceFiles() map[string]string
	ProjectID() string
	ActiveFileID() string
	SelectedNodeID() string
}

// Reloader is implemented by sources that can re-read persisted state, so a
// server picks up edits made by other processes.
type Reloader interface {
	Reload()
}

type ServerConfig struct {
	Addr   string
	Logger *zap.Logger
	// Reload re-reads the source before each request when it supports it.
	Reload bool
}

type Server struct {
	cfg    ServerConfig
	src    Source
	logger *zap.Logger
}

func NewServer(src Source, cfg ServerConfig) (*Server, error) {
	if src == nil {
		return nil, errors.New("preview: missing source")
	}
	if strings.TrimSpace(cfg.Addr) == "" {
		cfg.Addr = DefaultAddr
	}
	return &Server{
		cfg:    cfg,
		src:    src,
		logger: logging.OrNop(cfg.Logger).Named("preview"),
	}, nil
}

func (s *Server) Addr() string { return s.cfg.Addr }

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(s.requestLogger)
	if s.cfg.Reload {
		r.Use(s.reload)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Route("/api", func(ar chi.Router) {
		ar.Get("/files", s.handleFiles)
		ar.Get("/project", s.handleProject)
	})
	r.Get("/", s.handleIndex)
	r.Get("/*", s.handleFile)
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

func (s *Server) handleFiles(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, Bundle(s.src.SourceFiles()))
}

func (s *Server) handleProject(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"projectId":      s.src.ProjectID(),
		"activeFileId":   nullable(s.src.ActiveFileID()),
		"selectedNodeId": nullable(s.src.SelectedNodeID()),
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.serveFile(w, r, "public/index.html")
}

func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	s.serveFile(w, r, chi.URLParam(r, "*"))
}

func (s *Server) serveFile(w http.ResponseWriter, _ *http.Request, p string) {
	p = strings.TrimPrefix(pathpkg.Clean("/"+p), "/")
	content, ok := Bundle(s.src.SourceFiles())[p]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found: " + p})
		return
	}
	w.Header().Set("Content-Type", ContentType(p))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(content))
}

// ContentType picks the response type for a project path. Source files the
// preview evaluates as scripts are served as JavaScript.
func ContentType(p string) string {
	switch ext := strings.ToLower(pathpkg.Ext(p)); ext {
	case ".js", ".jsx", ".mjs", ".ts", ".tsx":
		return "text/javascript; charset=utf-8"
	case ".json":
		return "application/json; charset=utf-8"
	case ".html", ".htm":
		return "text/html; charset=utf-8"
	case ".css":
		return "text/css; charset=utf-8"
	default:
		if t := mime.TypeByExtension(ext); t != "" {
			return t
		}
		return "text/plain; charset=utf-8"
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func (s *Server) reload(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl, ok := s.src.(Reloader); ok {
			rl.Reload()
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
