package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitegate/internal/analytics"
	"sitegate/internal/blocklist"
	"sitegate/internal/blocklist/store/memory"
	"sitegate/internal/classifier"
	"sitegate/internal/observability"
)

func newService(t *testing.T, blocked ...string) *classifier.Service {
	t.Helper()

	gate, err := blocklist.New(memory.New(blocked...), blocklist.PolicyEnforce, blocklist.FailClosed)
	require.NoError(t, err)

	service, err := classifier.New(2, gate, observability.NewRegistry(), analytics.NewMemoryPublisher())
	require.NoError(t, err)
	return service
}

func TestClassify_AdmittedRequestReachesNext(t *testing.T) {
	mw := New(newService(t), nil)

	var got classifier.Result
	var reached bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		result, ok := FromContext(r.Context())
		require.True(t, ok)
		got = result
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/index.html", nil)
	req.Host = "my-site.wal.app"
	rec := httptest.NewRecorder()

	mw.Classify(next).ServeHTTP(rec, req)

	assert.True(t, reached)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, got.Admit)
	assert.Equal(t, "my-site", got.Parsed.Subdomain)
}

func TestClassify_DeniedRequestGets451(t *testing.T) {
	mw := New(newService(t, "blocked-site"), nil)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("resolver must not run for denied requests")
	})

	req := httptest.NewRequest(http.MethodGet, "/index.html", nil)
	req.Host = "blocked-site.wal.app"
	rec := httptest.NewRecorder()

	mw.Classify(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnavailableForLegalReasons, rec.Code)
	assert.JSONEq(t, `{"error":"site_blocked","subdomain":"blocked-site"}`, rec.Body.String())
}

func TestClassify_CompletesAfterClientAbort(t *testing.T) {
	mw := New(newService(t), nil)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // client already gone

	req := httptest.NewRequest(http.MethodGet, "/index.html", nil).WithContext(ctx)
	req.Host = "my-site.wal.app"
	rec := httptest.NewRecorder()

	assert.NotPanics(t, func() {
		mw.Classify(next).ServeHTTP(rec, req)
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestFromContext_MissingResult(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)
}
