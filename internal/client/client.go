// Package client talks to a running site assistant server.
package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/barracksmedia/site-assistant/internal/metrics"
	"github.com/barracksmedia/site-assistant/internal/models"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// DefaultEndpoint is used when neither an endpoint nor ASSISTANT_URL is set.
const DefaultEndpoint = "http://localhost:8787"

// APIError is a non-2xx answer from the server. Message is the public error
// text from the response body.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// IsRateLimited reports whether err is a 429 from the server.
func IsRateLimited(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusTooManyRequests
}

// Client is an HTTP client for the assistant server.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// New creates a client.
// If endpoint is empty, uses ASSISTANT_URL or defaults to localhost:8787.
// The timeout can be set with ASSISTANT_CLIENT_TIMEOUT (default 30s, enough
// for generation plus synthesis).
func New(endpoint string) *Client {
	if endpoint == "" {
		endpoint = os.Getenv("ASSISTANT_URL")
	}
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	timeout := 30 * time.Second
	if t := os.Getenv("ASSISTANT_CLIENT_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil {
			timeout = d
		}
	}

	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Endpoint returns the base URL the client talks to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Ask sends one visitor message and returns the assistant's answer.
func (c *Client) Ask(ctx context.Context, message string) (*models.AssistantResponse, error) {
	reqBody, err := json.Marshal(models.Request{Message: &message})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/api/voicebot", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	var out models.AssistantResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Stats fetches the server's metrics snapshot.
func (c *Client) Stats(ctx context.Context) (*metrics.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/stats", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	var out metrics.Snapshot
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health returns nil when the server answers its health check.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/health", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.do(req, nil)
}

func (c *Client) do(req *http.Request, result any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp.StatusCode, body)
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}

func decodeError(status int, body []byte) error {
	var er models.ErrorResponse
	if err := json.Unmarshal(body, &er); err != nil || er.Error == "" {
		return &APIError{Status: status, Message: strings.TrimSpace(string(body))}
	}
	return &APIError{Status: status, Message: er.Error}
}

// DecodeAudio returns the raw audio bytes of a response.
func DecodeAudio(resp *models.AssistantResponse) ([]byte, error) {
	if resp.AudioBase64 == "" {
		return nil, errors.New("response carries no audio")
	}
	data, err := base64.StdEncoding.DecodeString(resp.AudioBase64)
	if err != nil {
		return nil, fmt.Errorf("decode audio: %w", err)
	}
	return data, nil
}

// Session is a WebSocket connection that carries one request per frame.
type Session struct {
	conn *websocket.Conn
}

// Dial opens a WebSocket session against the server.
func (c *Client) Dial(ctx context.Context) (*Session, error) {
	wsEndpoint := c.endpoint
	wsEndpoint = strings.Replace(wsEndpoint, "http://", "ws://", 1)
	wsEndpoint = strings.Replace(wsEndpoint, "https://", "wss://", 1)

	u, err := url.Parse(wsEndpoint + "/api/voicebot/ws")
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("websocket connect: %w", err)
	}
	return &Session{conn: conn}, nil
}

// Ask sends a message on the session and waits for the answer. Errors the
// server reports in-band come back as *APIError with Status 0.
func (s *Session) Ask(ctx context.Context, message string) (*models.AssistantResponse, error) {
	if deadline, ok := ctx.Deadline(); ok {
		_ = s.conn.SetWriteDeadline(deadline)
		_ = s.conn.SetReadDeadline(deadline)
	}

	if err := s.conn.WriteJSON(models.Request{Message: &message}); err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}

	_, data, err := s.conn.ReadMessage()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("read message: %w", err)
	}

	var out models.AssistantResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("unmarshal message: %w", err)
	}
	if !out.OK {
		var er models.ErrorResponse
		_ = json.Unmarshal(data, &er)
		return nil, &APIError{Message: er.Error}
	}
	return &out, nil
}

// Close sends a normal close frame and closes the connection.
func (s *Session) Close() error {
	_ = s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return s.conn.Close()
}
