// Package sanapi предоставляет клиент удалённого API сервиса SAN.
package sanapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"

	"github.com/mmeshcher/san-gateway/internal/metrics"
)

const maxErrorBody = 64 << 10

// Client инкапсулирует HTTP-взаимодействие с API сервиса SAN.
//
// Чтения (GET) повторяются при сетевых ошибках и ответах 5xx, изменяющие
// запросы не повторяются никогда.
type Client struct {
	baseURL string
	reads   *retryablehttp.Client
	writes  *retryablehttp.Client
}

// Option настраивает Client.
type Option func(*Client)

// WithLogger направляет журнал повторов в zap.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		l := leveledLogger{logger.Sugar()}
		c.reads.Logger = l
		c.writes.Logger = l
	}
}

// WithRetryMax задаёт число повторов для чтений.
func WithRetryMax(n int) Option {
	return func(c *Client) {
		c.reads.RetryMax = n
	}
}

// WithRetryWait задаёт границы паузы между повторами чтений.
func WithRetryWait(minWait, maxWait time.Duration) Option {
	return func(c *Client) {
		c.reads.RetryWaitMin = minWait
		c.reads.RetryWaitMax = maxWait
	}
}

// NewClient создаёт клиент API сервиса SAN по указанному адресу.
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	base := strings.TrimRight(baseURL, "/")
	if base != "" && !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}

	c := &Client{
		baseURL: base,
		reads:   newTransport(timeout, 3),
		writes:  newTransport(timeout, 0),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func newTransport(timeout time.Duration, retryMax int) *retryablehttp.Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = retryMax
	rc.RetryWaitMin = 200 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.HTTPClient.Timeout = timeout
	rc.Logger = nil
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	return rc
}

type request struct {
	op          string
	method      string
	path        string
	token       string
	body        any
	raw         []byte
	contentType string
}

func (c *Client) do(ctx context.Context, r request, out any) error {
	if c == nil || c.baseURL == "" {
		return &APIError{Kind: KindNetwork, Err: fmt.Errorf("san api client not configured")}
	}

	start := time.Now()
	err := c.send(ctx, r, out)

	result := "ok"
	if err != nil {
		result = string(KindOf(err))
	}
	metrics.ObserveUpstream(r.op, result, time.Since(start))

	return err
}

func (c *Client) send(ctx context.Context, r request, out any) error {
	var payload []byte
	contentType := r.contentType
	switch {
	case r.raw != nil:
		payload = r.raw
	case r.body != nil:
		b, err := json.Marshal(r.body)
		if err != nil {
			return &APIError{Kind: KindDecode, Err: fmt.Errorf("encode request: %w", err)}
		}
		payload = b
		contentType = "application/json"
	}

	var body any
	if payload != nil {
		body = payload
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, body)
	if err != nil {
		return &APIError{Kind: KindNetwork, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	transport := c.writes
	if r.method == http.MethodGet {
		transport = c.reads
	}

	resp, err := transport.Do(req)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return &APIError{Kind: KindNetwork, Err: fmt.Errorf("do request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return newStatusError(resp.StatusCode, b)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &APIError{Kind: KindDecode, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}

	return nil
}

// leveledLogger адаптирует zap к интерфейсу retryablehttp.LeveledLogger.
type leveledLogger struct {
	s *zap.SugaredLogger
}

func (l leveledLogger) Error(msg string, kv ...interface{}) { l.s.Errorw(msg, kv...) }
func (l leveledLogger) Info(msg string, kv ...interface{})  { l.s.Infow(msg, kv...) }
func (l leveledLogger) Debug(msg string, kv ...interface{}) { l.s.Debugw(msg, kv...) }
func (l leveledLogger) Warn(msg string, kv ...interface{})  { l.s.Warnw(msg, kv...) }

var _ retryablehttp.LeveledLogger = leveledLogger{}
