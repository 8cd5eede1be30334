// Package configserver serves the board's config file over HTTP so it can
// be inspected and edited from another machine on the network.
package configserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
	"gopkg.in/yaml.v3"

	"github.com/mobil-koeln/moko-board/internal/config"
	"github.com/mobil-koeln/moko-board/internal/logging"
)

const (
	// DefaultAddr is where `config serve` listens without --addr
	DefaultAddr = ":8080"

	maxBodySize     = 1 << 20
	shutdownTimeout = 5 * time.Second
	contentTypeYAML = "application/yaml"
	contentTypeJSON = "application/json"
)

// MaskedAPIKey replaces a configured API key in every response. Sending
// it back in a PUT keeps the stored key.
const MaskedAPIKey = "********"

// ErrLegacyReadOnly is returned for writes to a key=value config file
var ErrLegacyReadOnly = errors.New("legacy config files are read-only, use a .yaml file")

// Server exposes one config file
type Server struct {
	path   string
	logger *log.Logger
	router *mux.Router

	// serialises read-modify-write cycles on the file
	mu sync.Mutex
}

// Option configures a Server
type Option func(*Server)

// WithLogger sets the request logger
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// New creates a server for the config file at path
func New(path string, opts ...Option) *Server {
	s := &Server{
		path:   path,
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := mux.NewRouter()
	r.Use(s.logRequests)
	r.HandleFunc("/config", s.handleGetConfig).Methods(http.MethodGet)
	r.HandleFunc("/config", s.handlePutConfig).Methods(http.MethodPut)
	r.HandleFunc("/config/defaults", s.handleDefaults).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router = r
	return s
}

// Handler returns the routed handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Info("config server listening", "addr", addr, "path", s.path)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("config request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}

// current reads the file. A missing file yields the defaults.
func (s *Server) current() (config.Config, error) {
	cfg, err := config.Read(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, err
	}
	return cfg, nil
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	cfg, err := s.current()
	s.mu.Unlock()
	if err != nil {
		s.logger.Warn("read config", "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.write(w, r, http.StatusOK, cfg)
}

func (s *Server) handleDefaults(w http.ResponseWriter, r *http.Request) {
	s.write(w, r, http.StatusOK, config.Default())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok\n")
}

// handlePutConfig merges the request body over the current file,
// validates the result and saves it
func (s *Server) handlePutConfig(w http.ResponseWriter, r *http.Request) {
	if config.DetectFormat(s.path) == config.FormatLegacy {
		http.Error(w, ErrLegacyReadOnly.Error(), http.StatusConflict)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize+1))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(body) > maxBodySize {
		http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.current()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	storedKey := cfg.APIKey
	if err := decodeBody(r.Header.Get("Content-Type"), body, &cfg); err != nil {
		http.Error(w, fmt.Sprintf("decode config: %v", err), http.StatusBadRequest)
		return
	}
	if cfg.APIKey == MaskedAPIKey {
		cfg.APIKey = storedKey
	}
	if err := cfg.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if err := config.Save(s.path, cfg); err != nil {
		s.logger.Error("save config", "path", s.path, "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.logger.Info("config updated", "path", s.path, "from", cfg.From, "to", cfg.To)
	s.write(w, r, http.StatusOK, cfg)
}

func decodeBody(contentType string, body []byte, cfg *config.Config) error {
	if strings.HasPrefix(contentType, contentTypeJSON) {
		dec := json.NewDecoder(bytes.NewReader(body))
		dec.DisallowUnknownFields()
		return dec.Decode(cfg)
	}
	return config.DecodeYAML(body, cfg)
}

// wantsYAML reports whether the client asked for YAML by query or Accept header
func wantsYAML(r *http.Request) bool {
	if f := r.URL.Query().Get("format"); f != "" {
		return f == "yaml" || f == "yml"
	}
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "yaml")
}

func (s *Server) write(w http.ResponseWriter, r *http.Request, status int, cfg config.Config) {
	if cfg.APIKey != "" {
		cfg.APIKey = MaskedAPIKey
	}
	if wantsYAML(r) {
		data, err := yaml.Marshal(&cfg)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", contentTypeYAML)
		w.WriteHeader(status)
		_, _ = w.Write(data)
		return
	}

	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(cfg); err != nil {
		s.logger.Warn("write config response", "err", err)
	}
}
