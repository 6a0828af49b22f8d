package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"blogdesk/internal/blobstore"
	"blogdesk/internal/config"
	"blogdesk/internal/models"
	"blogdesk/internal/store"
)

const (
	apiTokenEnvKey    = "BLOGDESK_API_TOKEN"
	allowRemoteEnvKey = "BLOGDESK_ALLOW_REMOTE"
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 30 * time.Second
	writeTimeout      = 60 * time.Second
	idleTimeout       = 60 * time.Second
	shutdownTimeout   = 10 * time.Second

	uploadConcurrencyLimit  = 2
	extractConcurrencyLimit = 4

	loginMaxFailures = 5
	loginWindow      = 10 * time.Minute
	loginBlockFor    = 15 * time.Minute
)

// DataStore is the storage the server needs.
type DataStore interface {
	store.BlogStore
	store.AuthStore
	store.ImageStore
}

// Extractor reads article metadata for the AI helper endpoints.
type Extractor interface {
	Autofill(ctx context.Context, link string) (models.AutofillResult, error)
	Summary(ctx context.Context, link string) (string, error)
}

// Server wraps HTTP handlers for the blog API.
type Server struct {
	addr           string
	store          DataStore
	blobs          blobstore.BlobStore
	extractor      Extractor
	authService    *AuthService
	loginLimiter   *loginLimiter
	logger         *slog.Logger
	apiToken       string
	uploads        config.UploadConfig
	uploadLimiter  chan struct{}
	extractLimiter chan struct{}
	now            func() time.Time
}

// New creates a new server instance.
func New(addr string, dataStore DataStore, blobs blobstore.BlobStore, extractor Extractor, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		addr:           addr,
		store:          dataStore,
		blobs:          blobs,
		extractor:      extractor,
		authService:    NewAuthService(dataStore),
		loginLimiter:   newLoginLimiter(loginMaxFailures, loginWindow, loginBlockFor),
		logger:         logger,
		apiToken:       strings.TrimSpace(os.Getenv(apiTokenEnvKey)),
		uploads:        defaultUploadConfig(),
		uploadLimiter:  make(chan struct{}, uploadConcurrencyLimit),
		extractLimiter: make(chan struct{}, extractConcurrencyLimit),
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// SetAPIToken overrides the bearer token accepted for API access.
func (s *Server) SetAPIToken(token string) {
	s.apiToken = strings.TrimSpace(token)
}

// SetUploadConfig overrides the multipart and image upload limits.
func (s *Server) SetUploadConfig(cfg config.UploadConfig) {
	defaults := defaultUploadConfig()
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = defaults.MaxUploadBytes
	}
	if cfg.MultipartMaxMemory <= 0 {
		cfg.MultipartMaxMemory = defaults.MultipartMaxMemory
	}
	if len(cfg.AllowedMediaTypes) == 0 {
		cfg.AllowedMediaTypes = defaults.AllowedMediaTypes
	}
	s.uploads = cfg
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.withRequestLogging(s.withAuth(s.routes()))
}

// ListenAndServe starts the HTTP server and stops it when ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if err := s.warnOpenMode(ctx); err != nil {
		return err
	}

	s.log().Info("starting server", "addr", s.addr)
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.log().Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

func (s *Server) warnOpenMode(ctx context.Context) error {
	required, err := s.authService.AuthRequired(ctx, s.apiToken != "", s.clock())
	if err != nil {
		return fmt.Errorf("check auth mode: %w", err)
	}
	if !required {
		s.log().Warn("no api token or users configured; writes are open to any local caller")
	}
	return nil
}

// ListenAddr converts a base API URL into a listen address. Non-loopback
// hosts are refused unless allowRemote is set or BLOGDESK_ALLOW_REMOTE=true.
func ListenAddr(apiURL string, allowRemote bool) (string, error) {
	if apiURL == "" {
		return "", fmt.Errorf("api url is required")
	}
	if u, err := url.Parse(apiURL); err == nil && u.Host != "" {
		host := u.Hostname()
		if !isAllowedListenHost(host, allowRemote) {
			return "", fmt.Errorf("remote listen host %q requires %s=true", host, allowRemoteEnvKey)
		}
		return u.Host, nil
	}

	host, _, err := net.SplitHostPort(apiURL)
	if err == nil && !isAllowedListenHost(host, allowRemote) {
		return "", fmt.Errorf("remote listen host %q requires %s=true", host, allowRemoteEnvKey)
	}

	return apiURL, nil
}

func isAllowedListenHost(host string, allowRemote bool) bool {
	if host == "" || allowRemote {
		return true
	}
	if strings.EqualFold(strings.TrimSpace(os.Getenv(allowRemoteEnvKey)), "true") {
		return true
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func defaultUploadConfig() config.UploadConfig {
	return config.UploadConfig{
		MaxUploadBytes:     config.DefaultUploadMaxBytes,
		MultipartMaxMemory: config.DefaultUploadMultipartMemory,
		AllowedMediaTypes:  append([]string(nil), config.DefaultAllowedImageTypes...),
	}
}

func (s *Server) acquireLimiter(limiter chan struct{}, w http.ResponseWriter, r *http.Request, name string) bool {
	if limiter == nil {
		return true
	}
	select {
	case limiter <- struct{}{}:
		return true
	default:
		s.writeErrorReq(w, r, http.StatusTooManyRequests, exhausted(fmt.Errorf("too many concurrent %s requests", name)))
		return false
	}
}

func (s *Server) releaseLimiter(limiter chan struct{}) {
	if limiter == nil {
		return
	}
	select {
	case <-limiter:
	default:
	}
}

func (s *Server) log() *slog.Logger {
	if s != nil && s.logger != nil {
		return s.logger
	}
	return slog.Default()
}

func (s *Server) clock() time.Time {
	if s != nil && s.now != nil {
		return s.now()
	}
	return time.Now().UTC()
}
