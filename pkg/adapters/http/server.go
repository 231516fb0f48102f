package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/eventable"
	"github.com/aretw0/eventable/internal/logging"
	"github.com/aretw0/eventable/pkg/domain"
	"github.com/aretw0/eventable/pkg/ports"
	"github.com/go-chi/chi/v5"
)

// MaxBodyBytes caps the size of a call request body.
const MaxBodyBytes = 1 << 20

// Server exposes an ActionCaller over HTTP.
type Server struct {
	Caller  ports.ActionCaller
	Streams *StreamManager
	logger  *slog.Logger
}

// Option configures the server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithStreams enables GET /events, fed by sm.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.Streams = sm
	}
}

// NewHandler creates a new HTTP handler for caller.
//
//	GET  /actions          registered handler names
//	POST /actions/{action} call action with a JSON array of params
//	GET  /events           model events as SSE (with WithStreams)
//	GET  /healthz, /info
func NewHandler(caller ports.ActionCaller, opts ...Option) http.Handler {
	server := &Server{
		Caller: caller,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(server)
	}

	r := chi.NewRouter()
	r.Get("/healthz", server.GetHealth)
	r.Get("/info", server.GetInfo)
	r.Get("/actions", server.ListActions)
	r.Post("/actions/{action}", server.CallAction)
	if server.Streams != nil {
		r.Get("/events", server.SubscribeEvents)
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CallResponse is the body of a successful call.
type CallResponse struct {
	Action string `json:"action"`
	Result any    `json:"result"`
}

// ErrorResponse is the body of a failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ListActions handles GET /actions.
func (s *Server) ListActions(w http.ResponseWriter, r *http.Request) {
	names := s.Caller.Actions()
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, names, s.logger)
}

// CallAction handles POST /actions/{action}.
func (s *Server) CallAction(w http.ResponseWriter, r *http.Request) {
	action := chi.URLParam(r, "action")

	params, err := decodeParams(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		s.logger.Warn("CallAction: Invalid request body", "action", action, "error", err)
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("invalid request body: %v", err)}, s.logger)
		return
	}

	result, err := s.Caller.Call(r.Context(), action, params...)
	if err != nil {
		status := StatusFor(err)
		if status >= http.StatusInternalServerError {
			s.logger.Error("CallAction failed", "action", action, "error", err)
		} else {
			s.logger.Warn("CallAction rejected", "action", action, "status", status, "error", err)
		}
		writeJSON(w, status, ErrorResponse{Error: err.Error()}, s.logger)
		return
	}

	writeJSON(w, http.StatusOK, CallResponse{Action: action, Result: result}, s.logger)
}

// GetHealth handles the GET /healthz request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, s.logger)
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":     "eventable-http",
		"version": strings.TrimSpace(eventable.Version),
	}, s.logger)
}

// StatusFor maps a call error to an HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnsupportedAction):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrArgumentMismatch):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrEventHalted):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// decodeParams reads a JSON array. An empty body means no params.
func decodeParams(body io.Reader) ([]any, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, nil
	}
	var params []any
	if err := json.Unmarshal(data, &params); err != nil {
		return nil, err
	}
	return params, nil
}

func writeJSON(w http.ResponseWriter, status int, v any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("response encode failed", "error", err)
	}
}
