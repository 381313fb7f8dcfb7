// Package server exposes the assistant over HTTP and WebSocket.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/barracksmedia/site-assistant/internal/assistant"
	"github.com/barracksmedia/site-assistant/internal/governor"
	"github.com/barracksmedia/site-assistant/internal/metrics"
	"github.com/barracksmedia/site-assistant/internal/models"
	"github.com/gorilla/websocket"
)

// maxBodyBytes bounds request bodies and WebSocket frames. Messages are cut
// to 1500 runes anyway.
const maxBodyBytes = 64 << 10

// Responder answers a validated message.
type Responder interface {
	Respond(ctx context.Context, message string) (*models.AssistantResponse, error)
}

// Server routes requests to the assistant.
type Server struct {
	assistant Responder
	governor  *governor.Governor
	metrics   *metrics.Collector
	logger    *slog.Logger
	upgrader  websocket.Upgrader
	handler   http.Handler
	health    func(ctx context.Context) error
}

// New creates a server. logger may be nil.
func New(a Responder, g *governor.Governor, mc *metrics.Collector, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		assistant: a,
		governor:  g,
		metrics:   mc,
		logger:    logger,
		upgrader: websocket.Upgrader{
			// The widget is embedded on the marketing site and preview hosts.
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/voicebot", s.handleVoicebot)
	mux.HandleFunc("GET /api/voicebot/ws", s.handleWebSocket)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /stats", s.handleStats)

	s.handler = LoggingMiddleware(logger, RecoverMiddleware(logger, mux))
	return s
}

// SetHealthCheck makes /health report 503 when check fails. Used for the
// SurrealDB connection when the catalog or the limiter lives there.
func (s *Server) SetHealthCheck(check func(ctx context.Context) error) {
	s.health = check
}

// Handler returns the root handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) handleVoicebot(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req models.Request
	// Malformed JSON and non-string messages read as a missing message.
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		req = models.Request{}
	}

	status, payload := s.process(r.Context(), governor.ClientID(r), req)
	writeJSON(w, status, payload)
}

// process runs one request through the governor and the assistant and
// returns the HTTP status with the body to send.
func (s *Server) process(ctx context.Context, clientID string, req models.Request) (int, any) {
	start := time.Now()
	status, payload := s.dispatch(ctx, clientID, req)
	var err error
	if status >= http.StatusInternalServerError {
		err = errors.New(payload.(models.ErrorResponse).Error)
	}
	s.metrics.RecordTiming(metrics.OpRequest, time.Since(start), err)
	return status, payload
}

func (s *Server) dispatch(ctx context.Context, clientID string, req models.Request) (int, any) {
	if err := s.governor.Check(ctx, clientID); err != nil {
		s.metrics.Increment(metrics.CounterRateLimited)
		return errorStatus(err)
	}

	message, err := governor.ValidateMessage(req.Message)
	if err != nil {
		s.metrics.Increment(metrics.CounterInvalid)
		return errorStatus(err)
	}

	resp, err := s.assistant.Respond(ctx, message)
	if err != nil {
		s.logger.Error("assistant failed", "request_id", assistant.RequestID(ctx), "error", err)
		return errorStatus(err)
	}
	return http.StatusOK, resp
}

// errorStatus maps pipeline errors onto the public error contract.
func errorStatus(err error) (int, models.ErrorResponse) {
	switch {
	case errors.Is(err, governor.ErrRateLimited):
		return http.StatusTooManyRequests, models.ErrorResponse{Error: governor.RateLimitMessage}
	case errors.Is(err, governor.ErrInvalidMessage):
		return http.StatusBadRequest, models.ErrorResponse{Error: governor.PublicMessage(err)}
	case errors.Is(err, assistant.ErrSynthesis):
		return http.StatusInternalServerError, models.ErrorResponse{
			Error: strings.TrimPrefix(err.Error(), assistant.ErrSynthesis.Error()+": "),
		}
	default:
		return http.StatusInternalServerError, models.ErrorResponse{Error: "Server error"}
	}
}

// handleWebSocket serves one request per text frame on a long-lived
// connection. Every frame is rate-limited like a POST.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	header := http.Header{"X-Request-ID": {assistant.RequestID(r.Context())}}
	conn, err := s.upgrader.Upgrade(w, r, header)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		s.logger.Debug("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxBodyBytes)

	clientID := governor.ClientID(r)
	ctx := r.Context()
	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("websocket read failed", "client", clientID, "error", err)
			}
			return
		}
		if kind != websocket.TextMessage {
			continue
		}

		var req models.Request
		if err := json.Unmarshal(data, &req); err != nil {
			req = models.Request{}
		}

		_, payload := s.process(ctx, clientID, req)
		if err := conn.WriteJSON(payload); err != nil {
			s.logger.Warn("websocket write failed", "client", clientID, "error", err)
			return
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if s.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.health(ctx); err != nil {
			s.logger.Warn("health check failed", "error", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("unavailable\n"))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.metrics.Snapshot())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
