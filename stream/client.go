package stream

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"

	"orbchat/protocol"
)

// Mode selects which backend chat endpoint a message goes to.
type Mode string

const (
	ModeGeneral  Mode = "general"
	ModeRealtime Mode = "realtime"
)

// Endpoint returns the streaming path for a chat mode.
func Endpoint(mode Mode) string {
	if mode == ModeRealtime {
		return "/chat/realtime/stream"
	}
	return "/chat/stream"
}

// Client talks to the assistant backend over HTTP.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	healthTimeout time.Duration
}

// NewClient creates a backend client. The HTTP client carries no overall
// timeout: a streamed response stays open for as long as the model talks.
func NewClient(baseURL string, healthTimeout time.Duration) *Client {
	return &Client{
		baseURL:       baseURL,
		httpClient:    &http.Client{},
		healthTimeout: healthTimeout,
	}
}

// Result summarizes one completed response stream.
type Result struct {
	Text      string // full accumulated response text
	SessionID string // id assigned or echoed by the backend
	Completed bool   // true when the done marker was observed
}

// StreamMessage sends one chat request and consumes the response stream,
// dispatching events to h. The caller is responsible for not starting a
// second stream while one is in flight.
func (c *Client) StreamMessage(ctx context.Context, mode Mode, req protocol.ChatRequest, h *Handler) (*Result, error) {
	body, err := sonic.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+Endpoint(mode), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, statusError(resp)
	}

	reader := NewReader()
	if err := reader.Consume(resp.Body, h); err != nil {
		return nil, err
	}

	return &Result{
		Text:      reader.Text(),
		SessionID: reader.SessionID(),
		Completed: reader.Done(),
	}, nil
}

// Healthy probes GET /health. Online means a response arrived within the
// health timeout and its body reports status "healthy"; every other outcome
// is offline.
func (c *Client) Healthy(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, c.healthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return false
	}
	var health protocol.HealthResponse
	if err := sonic.Unmarshal(body, &health); err != nil {
		return false
	}
	return health.Status == protocol.HealthyStatus
}

// statusError turns a non-2xx response into an error, preferring the
// backend's detail message when the body carries one.
func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))
	var errResp protocol.ErrorResponse
	if err := sonic.Unmarshal(body, &errResp); err == nil && errResp.Detail != "" {
		return fmt.Errorf("backend error: %s", errResp.Detail)
	}
	return fmt.Errorf("backend returned status %d", resp.StatusCode)
}
