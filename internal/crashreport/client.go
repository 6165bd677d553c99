package crashreport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const (
	defaultBatchSize     = 32
	defaultFlushInterval = 2 * time.Second
	defaultHTTPTimeout   = 5 * time.Second
)

// Client buffers reports and ships them to the ingest endpoint from a
// background worker. It is safe for concurrent use.
type Client struct {
	endpoint string
	httpc    *http.Client
	buf      *ringBuffer
	logger   *slog.Logger

	flushInterval time.Duration
	batchSize     int

	wake chan struct{}
	done chan struct{}
	stop chan struct{}
}

type Option func(*Client)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithBufferSize bounds the number of reports held in memory.
func WithBufferSize(n int) Option {
	return func(c *Client) { c.buf = newRingBuffer(n) }
}

// WithHTTPClient overrides the delivery client (tests).
func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) { c.httpc = httpc }
}

// WithFlushInterval overrides how often the worker drains the buffer.
func WithFlushInterval(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.flushInterval = d
		}
	}
}

// New constructs a client and starts its delivery worker.
func New(endpoint string, opts ...Option) (*Client, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("crash report endpoint is required")
	}
	c := &Client{
		endpoint:      endpoint,
		httpc:         &http.Client{Timeout: defaultHTTPTimeout},
		buf:           newRingBuffer(0),
		logger:        slog.Default(),
		flushInterval: defaultFlushInterval,
		batchSize:     defaultBatchSize,
		wake:          make(chan struct{}, 1),
		done:          make(chan struct{}),
		stop:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	go c.run()
	return c, nil
}

// Capture enqueues a report. It never blocks and never returns an error;
// a full buffer drops the oldest pending report.
func (c *Client) Capture(r Report) {
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now()
	}
	c.buf.enqueue(r)
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// CaptureError is a convenience for reporting a plain error value.
func (c *Client) CaptureError(err error, tags map[string]string) {
	if err == nil {
		return
	}
	c.Capture(Report{Message: err.Error(), Level: "error", Tags: tags})
}

// Pending returns the number of buffered reports (tests, health surface).
func (c *Client) Pending() int {
	return c.buf.len()
}

// Dropped returns the number of reports lost to buffer overflow.
func (c *Client) Dropped() int64 {
	return c.buf.droppedCount()
}

// Close drains outstanding reports with the given context's deadline.
func (c *Client) Close(ctx context.Context) error {
	close(c.stop)
	select {
	case <-c.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	// Final synchronous drain of whatever the worker left behind.
	for {
		batch := c.buf.dequeueBatch(c.batchSize)
		if len(batch) == 0 {
			return nil
		}
		if err := c.send(ctx, batch); err != nil {
			return err
		}
	}
}

func (c *Client) run() {
	defer close(c.done)
	ticker := time.NewTicker(c.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-c.wake:
		case <-ticker.C:
		}
		c.flush()
	}
}

func (c *Client) flush() {
	for {
		batch := c.buf.dequeueBatch(c.batchSize)
		if len(batch) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), defaultHTTPTimeout)
		err := c.send(ctx, batch)
		cancel()
		if err != nil {
			// Best effort: the batch is lost, the request path was never
			// involved. Log locally and move on.
			c.logger.Error("crash report delivery failed", "count", len(batch), "error", err)
			return
		}
	}
}

func (c *Client) send(ctx context.Context, batch []Report) error {
	body, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("encode crash reports: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build crash report request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("post crash reports: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("crash report endpoint returned %d", resp.StatusCode)
	}
	return nil
}
