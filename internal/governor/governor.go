// Package governor rate-limits clients and validates inbound messages.
package governor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultMax is the number of requests a client may make per window.
	DefaultMax = 12
	// DefaultWindow is the fixed window length.
	DefaultWindow = 60 * time.Second
	// MaxMessageRunes is where inbound messages are cut before trimming.
	MaxMessageRunes = 1500
	// RateLimitMessage is shown to rejected visitors.
	RateLimitMessage = "Rate limit hit. Try again in a minute."
)

var (
	// ErrRateLimited is returned when a client exceeded its window.
	ErrRateLimited = errors.New("rate limit exceeded")
	// ErrInvalidMessage wraps every message validation failure.
	ErrInvalidMessage = errors.New("invalid message")
)

// Store holds per-client fixed windows. Increment must be atomic for a key:
// concurrent calls never observe the same count.
type Store interface {
	// Increment counts one request for key at now. A window that has ended
	// starts over at 1 and ends at now+window.
	Increment(ctx context.Context, key string, window time.Duration, now time.Time) (count int, resetAt time.Time, err error)
}

// Purger is implemented by stores that can drop ended windows.
type Purger interface {
	Purge(ctx context.Context, now time.Time) (int, error)
}

// Governor enforces a fixed-window request limit per client.
type Governor struct {
	store  Store
	max    int
	window time.Duration
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Governor.
type Option func(*Governor)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(g *Governor) { g.now = now }
}

// WithLogger sets the logger used for store failures.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Governor) { g.logger = logger }
}

// New returns a Governor. max <= 0 and window <= 0 select the defaults.
func New(store Store, max int, window time.Duration, opts ...Option) *Governor {
	if max <= 0 {
		max = DefaultMax
	}
	if window <= 0 {
		window = DefaultWindow
	}
	g := &Governor{
		store:  store,
		max:    max,
		window: window,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Allow counts a request for clientID and reports whether it is within the
// limit. Rejected requests still count. A store failure lets the request
// through so an outage in a shared store does not take the site down.
func (g *Governor) Allow(ctx context.Context, clientID string) bool {
	count, _, err := g.store.Increment(ctx, clientID, g.window, g.now())
	if err != nil {
		g.logger.Warn("rate limit store failed, allowing request", "client", clientID, "error", err)
		return true
	}
	return count <= g.max
}

// Check is Allow returning ErrRateLimited on rejection.
func (g *Governor) Check(ctx context.Context, clientID string) error {
	if !g.Allow(ctx, clientID) {
		return ErrRateLimited
	}
	return nil
}

// Purge drops ended windows when the store supports it.
func (g *Governor) Purge(ctx context.Context) (int, error) {
	p, ok := g.store.(Purger)
	if !ok {
		return 0, nil
	}
	return p.Purge(ctx, g.now())
}

// RunPurger purges every interval until ctx is done. Failures are logged.
// A non-positive interval disables purging.
func (g *Governor) RunPurger(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		<-ctx.Done()
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := g.Purge(ctx)
			if err != nil {
				g.logger.Warn("rate limit purge failed", "error", err)
				continue
			}
			if n > 0 {
				g.logger.Debug("purged rate limit windows", "count", n)
			}
		}
	}
}

type window struct {
	count   int
	resetAt time.Time
}

// MemoryStore is a process-local Store. Windows do not survive restarts.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]*window
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{windows: make(map[string]*window)}
}

// Increment implements Store.
func (s *MemoryStore) Increment(_ context.Context, key string, length time.Duration, now time.Time) (int, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[key]
	if !ok || now.After(w.resetAt) {
		w = &window{resetAt: now.Add(length)}
		s.windows[key] = w
	}
	w.count++
	return w.count, w.resetAt, nil
}

// Purge drops windows that ended before now and returns how many went.
func (s *MemoryStore) Purge(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for k, w := range s.windows {
		if now.After(w.resetAt) {
			delete(s.windows, k)
			n++
		}
	}
	return n, nil
}

// Reset clears every window.
func (s *MemoryStore) Reset() {
	s.mu.Lock()
	s.windows = make(map[string]*window)
	s.mu.Unlock()
}

// Len returns the number of tracked clients.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.windows)
}

// ValidateMessage returns the message cut to MaxMessageRunes and trimmed.
// Errors wrap ErrInvalidMessage and carry the text shown to the visitor.
func ValidateMessage(message *string) (string, error) {
	if message == nil {
		return "", fmt.Errorf("%w: Missing 'message'", ErrInvalidMessage)
	}
	runes := []rune(*message)
	if len(runes) > MaxMessageRunes {
		runes = runes[:MaxMessageRunes]
	}
	text := strings.TrimSpace(string(runes))
	if text == "" {
		return "", fmt.Errorf("%w: Message is empty", ErrInvalidMessage)
	}
	return text, nil
}

// PublicMessage strips the sentinel prefix from a validation error.
func PublicMessage(err error) string {
	return strings.TrimPrefix(err.Error(), ErrInvalidMessage.Error()+": ")
}

// ClientID identifies the caller: the first X-Forwarded-For hop, then
// X-Real-IP, then the connection's remote host.
func ClientID(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}
