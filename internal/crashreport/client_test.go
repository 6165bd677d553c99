package crashreport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collector records delivered report batches.
type collector struct {
	mu      sync.Mutex
	reports []Report
}

func (c *collector) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var batch []Report
		if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		c.mu.Lock()
		c.reports = append(c.reports, batch...)
		c.mu.Unlock()
		w.WriteHeader(http.StatusAccepted)
	}
}

func (c *collector) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.reports)
}

func TestNew_RequiresEndpoint(t *testing.T) {
	_, err := New("")
	require.Error(t, err)
}

func TestClient_DeliversCapturedReports(t *testing.T) {
	col := &collector{}
	srv := httptest.NewServer(col.handler())
	defer srv.Close()

	client, err := New(srv.URL, WithFlushInterval(10*time.Millisecond))
	require.NoError(t, err)

	client.Capture(Report{Message: "boom", Level: "error"})
	client.CaptureError(errors.New("kaboom"), map[string]string{"subdomain": "my-site"})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, client.Close(ctx))

	assert.Equal(t, 2, col.count())
	col.mu.Lock()
	defer col.mu.Unlock()
	for _, r := range col.reports {
		assert.False(t, r.Timestamp.IsZero())
	}
}

func TestClient_CloseDrainsBuffer(t *testing.T) {
	col := &collector{}
	srv := httptest.NewServer(col.handler())
	defer srv.Close()

	// Long flush interval so Close does the draining, not the ticker.
	client, err := New(srv.URL, WithFlushInterval(time.Hour))
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		client.Capture(Report{Message: "pending", Level: "error"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, client.Close(ctx))

	assert.Equal(t, 10, col.count())
	assert.Equal(t, 0, client.Pending())
}

func TestClient_CaptureNeverBlocksOnOverflow(t *testing.T) {
	col := &collector{}
	srv := httptest.NewServer(col.handler())
	defer srv.Close()

	client, err := New(srv.URL, WithBufferSize(2), WithFlushInterval(time.Hour))
	require.NoError(t, err)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = client.Close(ctx)
	}()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			client.Capture(Report{Message: "flood"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("capture blocked on full buffer")
	}
	assert.Positive(t, client.Dropped())
}

func TestClient_CaptureErrorIgnoresNil(t *testing.T) {
	client, err := New("http://127.0.0.1:1", WithFlushInterval(time.Hour))
	require.NoError(t, err)

	client.CaptureError(nil, nil)
	assert.Equal(t, 0, client.Pending())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = client.Close(ctx)
}
