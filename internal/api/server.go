package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JakeFAU/demo-launcher/internal/config"
	"github.com/JakeFAU/demo-launcher/internal/instance"
	"github.com/JakeFAU/demo-launcher/internal/metrics"
)

// Launcher provisions a demo instance synchronously.
type Launcher interface {
	Launch(ctx context.Context) (instance.Details, error)
}

// Terminator schedules background teardown of a demo instance.
type Terminator interface {
	Schedule(instanceID string) string
}

// Server wires HTTP handlers to the launcher and terminator.
type Server struct {
	router     chi.Router
	launcher   Launcher
	terminator Terminator
	idGen      instance.IDGenerator
	cfg        config.Config
	logger     *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(
	launcher Launcher,
	terminator Terminator,
	idGen instance.IDGenerator,
	cfg config.Config,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		launcher:   launcher,
		terminator: terminator,
		idGen:      idGen,
		cfg:        cfg,
		logger:     logger,
	}
	r := chi.NewRouter()
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoverMiddleware)
	r.Use(metrics.Middleware)

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	// No timeout middleware: provisioning may legitimately run for minutes.
	r.Group(func(r chi.Router) {
		if cfg.Auth.Enabled {
			r.Use(apiKeyMiddleware(cfg.Auth.APIKey))
		}
		r.Post("/launch", s.launch)
		r.Post("/kill", s.kill)
	})

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) launch(w http.ResponseWriter, r *http.Request) {
	// A client hanging up must not abort a half-finished provisioning run.
	ctx := context.WithoutCancel(r.Context())
	details, err := s.launcher.Launch(ctx)
	if err != nil {
		s.requestLogger(r).Warn("launch request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, launchErrorDetail(err))
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (s *Server) kill(w http.ResponseWriter, r *http.Request) {
	var req instance.TerminationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	logger := s.requestLogger(r).With(zap.String("instance_id", req.InstanceID))
	logger.Info("initiating termination")
	taskID := s.terminator.Schedule(req.InstanceID)
	logger.Debug("termination scheduled", zap.String("task_id", taskID))
	writeJSON(w, http.StatusOK, instance.NewTerminationResponse(req.InstanceID))
}

// launchErrorDetail renders a launch failure as the detail string returned to callers.
func launchErrorDetail(err error) string {
	var procErr *instance.ProcessError
	var parseErr *instance.ParseError
	var missing *instance.MissingFieldError
	switch {
	case errors.As(err, &procErr):
		return "Failed to launch instance: " + procErr.Stderr
	case errors.As(err, &parseErr):
		return "Failed to parse instance details: " + parseErr.Err.Error()
	case errors.As(err, &missing):
		return fmt.Sprintf("Missing expected data in instance details: '%s'", missing.Field)
	default:
		return "Failed to launch instance: " + err.Error()
	}
}

func (s *Server) newRequestID() string {
	if s.idGen != nil {
		if id, err := s.idGen.NewID(); err == nil {
			return id
		}
	}
	return uuid.NewString()
}

func (s *Server) requestLogger(r *http.Request) *zap.Logger {
	if reqID, ok := r.Context().Value(requestIDKey{}).(string); ok {
		return s.logger.With(zap.String("request_id", reqID))
	}
	return s.logger
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Error("write JSON failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"detail": msg})
}
