package server

import (
	"bufio"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/barracksmedia/site-assistant/internal/assistant"
	"github.com/barracksmedia/site-assistant/internal/governor"
	"github.com/barracksmedia/site-assistant/internal/models"
	"github.com/google/uuid"
)

// maxArgLogLen is the maximum length for logged header values before truncation.
const maxArgLogLen = 200

// slowRequestThreshold is the duration above which requests are logged at WARN level.
// A normal request spends most of it in generation and synthesis.
const slowRequestThreshold = 3 * time.Second

// statusRecorder captures the response status for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack lets the WebSocket upgrader take over the connection.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// LoggingMiddleware assigns every request an id and logs it with timing.
// Failures log at ERROR, slow requests (>3s) at WARN, the rest at DEBUG.
func LoggingMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		id = truncate(id, 64)
		w.Header().Set("X-Request-ID", id)
		ctx := assistant.WithRequestID(r.Context(), id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		duration := time.Since(start)
		attrs := []any{
			"request_id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"client", governor.ClientID(r),
			"duration_ms", duration.Milliseconds(),
		}
		if ua := r.UserAgent(); ua != "" {
			attrs = append(attrs, "user_agent", truncate(ua, maxArgLogLen))
		}

		switch {
		case rec.status >= http.StatusInternalServerError:
			logger.Error("request failed", attrs...)
		case duration > slowRequestThreshold:
			logger.Warn("slow request", attrs...)
		default:
			logger.Debug("request completed", attrs...)
		}
	})
}

// RecoverMiddleware turns a panic into a 500 so one bad request cannot take
// down the process.
func RecoverMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				if p == http.ErrAbortHandler {
					panic(p)
				}
				logger.Error("panic in handler", "panic", p, "path", r.URL.Path,
					"request_id", assistant.RequestID(r.Context()))
				writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Server error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen < 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
