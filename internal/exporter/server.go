package exporter

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/muurk/opensprinkler/internal/logging"
	"github.com/muurk/opensprinkler/internal/version"
)

// DefaultListen is the default exporter listen address
const DefaultListen = ":9563"

// Config holds the exporter configuration
type Config struct {
	Listen        string        // Listen address, e.g. ":9563"
	Endpoint      string        // Controller base URL (for logging and the landing page)
	Password      string        // Controller password (md5 hex)
	ScrapeTimeout time.Duration // Per-scrape timeout for the /ja request
}

// Server serves /metrics for one controller.
type Server struct {
	config     *Config
	registry   *prometheus.Registry
	httpServer *http.Server

	mu       sync.Mutex
	listener net.Listener
}

// New creates a Server that scrapes source on every /metrics request.
func New(config *Config, source Source) *Server {
	build := version.Get()
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		NewCollector(source, config.Password, config.ScrapeTimeout),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "exporter_build_info",
			Help:        "Version of the exporter binary, always 1.",
			ConstLabels: prometheus.Labels{"version": build.Version, "commit": build.Commit, "goversion": build.GoVersion},
		}, func() float64 { return 1 }),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	s := &Server{
		config:   config,
		registry: registry,
	}
	s.httpServer = &http.Server{
		Addr:              config.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the HTTP handler serving /metrics, /healthz and a
// landing page.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{
		ErrorLog: zap.NewStdLog(logging.GetLogger()),
	}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = fmt.Fprintf(w, "<html><head><title>OpenSprinkler Exporter</title></head><body>"+
			"<h1>OpenSprinkler Exporter</h1><p>Controller: %s</p><p>Version: %s</p>"+
			"<p><a href=\"/metrics\">Metrics</a></p></body></html>\n",
			html.EscapeString(s.config.Endpoint), html.EscapeString(version.Version))
	})
	return mux
}

// Start listens and serves until SIGINT/SIGTERM or ctx is done.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.config.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Listen, err)
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	logging.Info("Starting OpenSprinkler exporter",
		zap.String("addr", listener.Addr().String()),
		zap.String("controller", s.config.Endpoint),
		zap.Duration("scrape_timeout", s.config.ScrapeTimeout),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.httpServer.Serve(listener)
	}()

	select {
	case <-sigChan:
		logging.Info("Shutdown signal received, stopping exporter...")
	case <-ctx.Done():
		logging.Info("Context cancelled, stopping exporter...")
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

// Addr returns the bound address once Start has begun listening.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return s.config.Listen
	}
	return s.listener.Addr().String()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down exporter...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		logging.Warn("Shutdown timeout, forcing close", zap.Error(err))
		return s.httpServer.Close()
	}
	logging.Sync()
	return nil
}
