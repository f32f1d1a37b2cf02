// File path: internal/api/server.go
package api

import (
	"context"
	"encoding/json"
	"expvar"
	"fmt"
	"net/http"
	"strings"
	"time"

	chi "github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/nicodishanthj/Katral_realty/internal/agent"
	"github.com/nicodishanthj/Katral_realty/internal/common"
	"github.com/nicodishanthj/Katral_realty/internal/comparables"
	"github.com/nicodishanthj/Katral_realty/internal/config"
	"github.com/nicodishanthj/Katral_realty/internal/environment"
	"github.com/nicodishanthj/Katral_realty/internal/workflow"
)

const (
	requestIDHeader = "X-Request-ID"
	maxBodyBytes    = 1 << 20
)

// ChatAgent answers one chat message.
type ChatAgent interface {
	Answer(ctx context.Context, query string) (agent.Answer, error)
}

// Analyzer runs the chained property analysis.
type Analyzer interface {
	Analyze(ctx context.Context, target comparables.Target) (workflow.Report, error)
}

// SocialWriter drafts platform copy for a property description.
type SocialWriter interface {
	Generate(ctx context.Context, description string, platforms []string) (map[string]any, error)
}

// Valuator relays a property payload to the price model.
type Valuator interface {
	Valuate(ctx context.Context, input []byte) (json.RawMessage, error)
}

// EnvironmentReporter summarizes the surroundings of an address.
type EnvironmentReporter interface {
	Report(ctx context.Context, address string, radius int) (environment.Report, error)
}

// Services bundles the request handlers' collaborators.
type Services struct {
	Agent       ChatAgent
	Analyzer    Analyzer
	Social      SocialWriter
	Valuator    Valuator
	Environment EnvironmentReporter
}

type Server struct {
	router      chi.Router
	cfg         config.Config
	agent       ChatAgent
	analyzer    Analyzer
	social      SocialWriter
	valuator    Valuator
	environment EnvironmentReporter
}

func NewServer(cfg config.Config, svc Services) (*Server, error) {
	logger := common.Logger()
	switch {
	case svc.Agent == nil:
		return nil, fmt.Errorf("chat agent required")
	case svc.Analyzer == nil:
		return nil, fmt.Errorf("analyzer required")
	case svc.Social == nil:
		return nil, fmt.Errorf("social writer required")
	case svc.Valuator == nil:
		return nil, fmt.Errorf("valuator required")
	case svc.Environment == nil:
		return nil, fmt.Errorf("environment reporter required")
	}
	srv := &Server{
		router:      chi.NewRouter(),
		cfg:         cfg,
		agent:       svc.Agent,
		analyzer:    svc.Analyzer,
		social:      svc.Social,
		valuator:    svc.Valuator,
		environment: svc.Environment,
	}
	srv.routes()
	logger.Info("api: server ready", "provider", cfg.LLM.Provider)
	return srv, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	logger := common.Logger()
	logger.Info("api: configuring routes")
	s.router.Use(requestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("request", "method", r.Method, "path", r.URL.Path, "dur", time.Since(start),
				"remote", r.RemoteAddr, "request_id", middleware.GetReqID(r.Context()))
		})
	})

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	s.router.Get("/v1/logs", s.handleLogs)
	s.router.Handle("/debug/vars", expvar.Handler())

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/chat", s.handleChat)
		r.Post("/analysis", s.handleAnalysis)
		r.Post("/social-media", s.handleSocial)
		r.Post("/valuation", s.handleValuation)
		r.Post("/environment-report", s.handleEnvironment)
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, msgMethodNotAllowed, nil)
	})
}

// requestID tags every request with a UUID unless the caller sent one, and
// exposes it through chi's request id accessor.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		ctx := context.WithValue(r.Context(), middleware.RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// guard rejects a request whose feature is missing credentials or sources.
func (s *Server) guard(w http.ResponseWriter, r *http.Request, feature config.Feature) bool {
	if err := s.cfg.Validate(feature); err != nil {
		common.Logger().Error("api: configuration incomplete", "feature", feature, "error", err,
			"request_id", middleware.GetReqID(r.Context()))
		writeError(w, http.StatusInternalServerError, msgConfiguration, nil)
		return false
	}
	return true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer body.Close()
	return json.NewDecoder(body).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		common.Logger().Error("api: failed to encode response", "status", status, "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	logger := common.Logger()
	if status >= http.StatusInternalServerError {
		logger.Error("api: request failed", "status", status, "message", message, "error", err)
	} else {
		logger.Warn("api: request rejected", "status", status, "message", message, "error", err)
	}
	writeJSON(w, status, errorResponse{Success: false, Error: message})
}
