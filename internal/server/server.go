// Package server provides the HTTP REST API for user profiles.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/jonathan/profile-builder/internal/config"
	"github.com/jonathan/profile-builder/internal/db"
	"github.com/jonathan/profile-builder/internal/documents"
	"github.com/jonathan/profile-builder/internal/profile"
	"github.com/jonathan/profile-builder/internal/server/middleware"
	"github.com/jonathan/profile-builder/internal/server/ratelimit"
	"github.com/jonathan/profile-builder/internal/types"
)

// DefaultUploadMaxBytes bounds resume uploads.
const DefaultUploadMaxBytes = 10 << 20

// maxJSONBytes bounds JSON request bodies.
const maxJSONBytes = 1 << 20

// ResumeParser turns an uploaded resume into structured profile data.
type ResumeParser interface {
	ParsePDF(ctx context.Context, data []byte) (*types.ProfileData, error)
}

// TaglineWriter drafts a one-line tagline for a profile.
type TaglineWriter interface {
	Tagline(ctx context.Context, p *types.Profile) (string, error)
}

// DocumentGenerator renders resumes and cover letters from a profile.
type DocumentGenerator interface {
	Generate(ctx context.Context, p *types.Profile, req documents.Request) (*documents.Document, error)
}

// Config holds server configuration
type Config struct {
	Port           int
	AllowedOrigins []string
	UploadMaxBytes int64
	// RateLimit defaults to ratelimit.LoadConfig() when nil.
	RateLimit *ratelimit.Config
}

// Deps are the collaborators the server is built from. Tagline may be nil,
// in which case tagline suggestions answer 503.
type Deps struct {
	Store     db.Store
	JWT       *config.JWTConfig
	Passwords *config.PasswordConfig
	Parser    ResumeParser
	Tagline   TaglineWriter
	Documents DocumentGenerator
	Logger    logrus.FieldLogger
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	handler     http.Handler
	store       db.Store
	logger      logrus.FieldLogger
	rateLimiter *ratelimit.Limiter
	tokens      *Tokens
	userService *UserService
	authHandler *AuthHandler
	parser      ResumeParser
	tagline     TaglineWriter
	documents   DocumentGenerator
	uploadMax   int64
}

// New creates a new server instance
func New(cfg Config, deps Deps) (*Server, error) {
	if deps.Store == nil {
		return nil, fmt.Errorf("server requires a store")
	}
	if deps.JWT == nil || deps.Passwords == nil {
		return nil, fmt.Errorf("server requires JWT and password configuration")
	}
	logger := deps.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	s := &Server{
		store:     deps.Store,
		logger:    logger,
		parser:    deps.Parser,
		tagline:   deps.Tagline,
		documents: deps.Documents,
		uploadMax: cfg.UploadMaxBytes,
	}
	if s.uploadMax <= 0 {
		s.uploadMax = DefaultUploadMaxBytes
	}

	rateConfig := cfg.RateLimit
	if rateConfig == nil {
		rateConfig = ratelimit.LoadConfig()
	}
	s.rateLimiter = ratelimit.NewLimiter(rateConfig)

	s.tokens = NewTokens(deps.JWT)
	s.userService = NewUserService(deps.Store, deps.Passwords)
	s.authHandler = NewAuthHandler(s.userService, s.tokens, deps.JWT)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	// Auth endpoints
	mux.HandleFunc("POST /api/auth/register", s.authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", s.authHandler.Login)
	mux.HandleFunc("POST /api/auth/logout", s.authHandler.Logout)
	mux.Handle("PUT /api/auth/password", s.authed(s.authHandler.UpdatePassword))

	// User endpoints
	mux.Handle("GET /api/users/me", s.authed(s.handleGetUser))
	mux.Handle("GET /api/users/{userId}", s.self(s.handleGetUser))
	mux.Handle("PUT /api/users/{userId}", s.self(s.handleUpdateUser))

	// Profile sections
	registerSection(s, mux, profile.Experiences, deps.Store.Experiences())
	registerSection(s, mux, profile.Education, deps.Store.Education())
	registerSection(s, mux, profile.Skills, deps.Store.Skills())
	registerSection(s, mux, profile.Certifications, deps.Store.Certifications())
	registerSection(s, mux, profile.Projects, deps.Store.Projects())
	registerSection(s, mux, profile.SocialLinks, deps.Store.SocialLinks())

	// Resume import
	mux.Handle("POST /api/resume/upload", s.authed(s.handleUploadResume))
	mux.Handle("POST /api/profile", s.authed(s.handleSaveProfile))

	// Documents and suggestions
	mux.Handle("POST /api/users/{userId}/documents", s.self(s.handleGenerateDocument))
	mux.Handle("GET /api/users/{userId}/suggestions", s.self(s.handleListSuggestions))
	mux.Handle("POST /api/users/{userId}/suggestions/tagline", s.self(s.handleSuggestTagline))

	s.handler = s.withRateLimit(s.withLogging(s.withCORS(mux, cfg.AllowedOrigins)))
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // document generation may fetch a posting with a headless browser
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start begins listening for requests and blocks until SIGINT or SIGTERM.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Infof("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		s.Close()
		return fmt.Errorf("server error: %w", err)
	case <-stop:
	}
	s.logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.Close()
	s.logger.Info("Server stopped")
	return nil
}

// Close stops background work and releases the store.
func (s *Server) Close() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	s.store.Close()
}

// authed requires a valid session token.
func (s *Server) authed(h http.HandlerFunc) http.Handler {
	return middleware.AuthMiddleware(s.tokens, s.authHandler.cookieName())(h)
}

// self requires a valid session token whose user matches the {userId} path value.
func (s *Server) self(h http.HandlerFunc) http.Handler {
	return middleware.AuthMiddleware(s.tokens, s.authHandler.cookieName())(middleware.RequireSelf(h))
}

// withCORS allows credentialed requests from the configured origins.
func (s *Server) withCORS(next http.Handler, origins []string) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		AllowCredentials: true,
	})
	return c.Handler(next)
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)

		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, clientID, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for the access log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		entry := s.logger.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).String(),
			"remote":   r.RemoteAddr,
		})
		if rec.status >= http.StatusInternalServerError {
			entry.Warn("request failed")
			return
		}
		entry.Info("request completed")
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.logger.WithError(err).Warn("[health] store ping failed")
		s.errorResponse(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.WithError(err).Error("Error encoding JSON response")
	}
}

// dataResponse writes the success envelope.
func (s *Server) dataResponse(w http.ResponseWriter, status int, data any) {
	s.jsonResponse(w, status, map[string]any{"data": data})
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, errorBody{Error: message})
}

// fail maps err to a status and writes the error envelope.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.WithError(err).WithField("path", r.URL.Path).Error("request error")
	}
	s.jsonResponse(w, status, newErrorBody(err, status))
}

// decodeJSON reads a bounded JSON body into v.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return &ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()}
	}
	return nil
}

// extractClientID extracts the client identifier from the request.
// This uses the IP address from RemoteAddr; X-Forwarded-For is not trusted.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, clientID string, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate limit exceeded",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"resetAt":   info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		retry := int(info.RetryAfter.Seconds())
		if retry < 1 {
			retry = 1
		}
		response["retryAfter"] = retry
		w.Header().Set("Retry-After", fmt.Sprintf("%d", retry))
	}

	s.logger.WithFields(logrus.Fields{
		"client": clientID,
		"limit":  info.Limit,
		"reset":  info.ResetTime.Format(time.RFC3339),
	}).Warn("[rate-limit] Rate limit exceeded")

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
