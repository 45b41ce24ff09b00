// Package web implements the HTTP front end: the upload form, CAPTCHA
// verification, request-scoped artifact storage and the result page.
//
// The numeric work is delegated to the pipeline package; this package only
// decodes uploads, chooses artifact names and renders HTML.
package web

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/ironsheep/image-brightness/internal/config"
	"github.com/ironsheep/image-brightness/internal/pipeline"
)

// Processor runs the brightness pipeline for one request.
type Processor interface {
	Process(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
}

// Server serves the upload form and results.
type Server struct {
	cfg       *config.Config
	processor Processor
	store     *ArtifactStore
	verifier  Verifier
	logger    hclog.Logger
	tmpl      *template.Template
	newID     func() (string, error)
}

// New wires a Server from its collaborators. A nil verifier selects one
// from cfg: RecaptchaVerifier when a secret is configured, NopVerifier
// otherwise.
func New(cfg *config.Config, processor Processor, store *ArtifactStore, verifier Verifier, logger hclog.Logger) (*Server, error) {
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if verifier == nil {
		verifier = VerifierFromConfig(cfg.Recaptcha)
	}
	return &Server{
		cfg:       cfg,
		processor: processor,
		store:     store,
		verifier:  verifier,
		logger:    logger,
		tmpl:      tmpl,
		newID:     NewRequestID,
	}, nil
}

// VerifierFromConfig returns the verifier described by rc.
func VerifierFromConfig(rc config.Recaptcha) Verifier {
	if !rc.Enabled() {
		return NopVerifier{}
	}
	return NewRecaptchaVerifier(rc.SecretKey, rc.VerifyURL, rc.Timeout)
}

// Handler returns the HTTP handler with all routes and request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /brightness", s.handleBrightness)
	mux.HandleFunc("GET /uploads/{id}/{name}", s.handleArtifact)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return s.logRequests(mux)
}

// Run listens on cfg.ListenAddr until ctx is canceled, then shuts down
// gracefully. When artifact retention is enabled, expired request
// directories are pruned in the background.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.ListenAddr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is like Run but uses an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          s.logger.StandardLogger(&hclog.StandardLoggerOptions{InferLevels: true}),
	}

	if s.cfg.ArtifactRetention > 0 {
		go s.pruneLoop(ctx, s.cfg.ArtifactRetention)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", ln.Addr().String(), "upload_dir", s.store.Dir(),
			"recaptcha", s.cfg.Recaptcha.Enabled())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) pruneLoop(ctx context.Context, retention time.Duration) {
	interval := max(retention/4, time.Minute)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.store.Prune(retention); err != nil {
				s.logger.Warn("artifact pruning failed", "error", err)
			}
		}
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path,
			"status", rec.status, "duration", time.Since(start))
	})
}
