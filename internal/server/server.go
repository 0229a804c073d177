// Package server runs the dev preview server: it serves the built site,
// rebuilds on source changes, and pushes reload events to connected browsers
// over SSE.
package server

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/foliogen/folio/builder/config"
	"github.com/foliogen/folio/builder/run"
)

// Server serves the output dir and coordinates rebuilds with live reload.
type Server struct {
	cfg    *config.Config
	logger *slog.Logger
}

// Run starts the preview server and blocks until ctx is canceled or the
// listener fails.
func Run(ctx context.Context, cfg *config.Config, b *run.Builder, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	// Some OS mime tables miss wasm, which breaks streaming instantiation.
	_ = mime.AddExtensionType(".wasm", "application/wasm")

	s := &Server{cfg: cfg, logger: logger}
	hub := newSSEHub()

	w, err := newWatcher(cfg.DebounceDuration, logger)
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.close()

	for _, dir := range []string{cfg.ContentDir, cfg.TemplateDir, cfg.StaticDir} {
		if err := w.addRecursive(dir); err != nil {
			logger.Warn("watch failed", "dir", dir, "error", err)
		}
	}
	go w.run(ctx, func(paths []string) {
		var err error
		if len(paths) == 1 {
			err = b.BuildChanged(ctx, paths[0])
		} else {
			err = b.Build(ctx)
		}
		if err != nil {
			logger.Error("rebuild failed", "error", err)
			return
		}
		// Page render failures count as errors but do not fail the build, so
		// surface them before the browser reloads over them.
		if n := b.Metrics().Errors(); n > 0 {
			logger.Warn("rebuild finished with page errors", "errors", n)
		}
		hub.broadcast()
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/events", hub.handle)
	mux.HandleFunc("/", gzipHandler(s.serveFile))

	addr := fmt.Sprintf("localhost:%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		fmt.Println("\n🛑 Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown", "error", err)
		}
	}()

	fmt.Printf("🌐 Serving on http://%s\n", addr)
	fmt.Println("   (Auto-reload enabled via /events)")

	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	fmt.Println("✅ Server stopped.")
	return nil
}

func (s *Server) serveFile(w http.ResponseWriter, r *http.Request) {
	outputDir := s.cfg.OutputDir
	normalized := normalizeRequestPath(r.URL.Path)

	fullPath, err := validatePath(outputDir, normalized)
	if err != nil {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("403 - Forbidden: Invalid path"))
		return
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			w.WriteHeader(http.StatusNotFound)
			if content, readErr := os.ReadFile(filepath.Join(outputDir, "404.html")); readErr == nil {
				_, _ = w.Write(content)
			} else {
				_, _ = w.Write([]byte("404 - Page Not Found"))
			}
		} else {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("500 - Internal Server Error"))
		}
		return
	}

	filename := filepath.Base(normalized)
	switch {
	case isHashedAsset(filename):
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	case info.IsDir() || strings.HasSuffix(filename, ".html"):
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
	default:
		w.Header().Set("Cache-Control", "public, max-age=60")
	}

	http.FileServer(http.Dir(outputDir)).ServeHTTP(w, r)
}

// gzipResponseWriter wraps the underlying ResponseWriter to compress bodies.
type gzipResponseWriter struct {
	io.Writer
	http.ResponseWriter
}

func (w *gzipResponseWriter) Write(b []byte) (int, error) {
	return w.Writer.Write(b)
}

func (w *gzipResponseWriter) WriteHeader(code int) {
	w.Header().Del("Content-Length")
	w.ResponseWriter.WriteHeader(code)
}

func gzipHandler(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			next(w, r)
			return
		}
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		defer func() { _ = gz.Close() }()
		next(&gzipResponseWriter{Writer: gz, ResponseWriter: w}, r)
	}
}
