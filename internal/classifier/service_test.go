package classifier

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitegate/internal/analytics"
	"sitegate/internal/blocklist"
	"sitegate/internal/blocklist/store/memory"
	"sitegate/internal/observability"
)

// sinkSpy records every event fanned out by the registry.
type sinkSpy struct {
	events []observability.Event
}

func (s *sinkSpy) Deliver(ctx context.Context, event observability.Event) error {
	s.events = append(s.events, event)
	return nil
}

// failingStore always errors, simulating an unreachable blocklist backend.
type failingStore struct{}

func (failingStore) Contains(ctx context.Context, subject string) (bool, error) {
	return false, errors.New("blocklist backend unreachable")
}

type fixture struct {
	service   *Service
	sink      *sinkSpy
	publisher *analytics.MemoryPublisher
}

func newFixture(t *testing.T, store blocklist.Store, failMode blocklist.FailMode) *fixture {
	t.Helper()

	gate, err := blocklist.New(store, blocklist.PolicyEnforce, failMode)
	require.NoError(t, err)

	spy := &sinkSpy{}
	registry := observability.NewRegistry()
	registry.RegisterAll(spy)

	publisher := analytics.NewMemoryPublisher()

	service, err := New(2, gate, registry, publisher)
	require.NoError(t, err)

	return &fixture{service: service, sink: spy, publisher: publisher}
}

func TestNew_Validation(t *testing.T) {
	gate, err := blocklist.New(memory.New(), blocklist.PolicyEnforce, blocklist.FailClosed)
	require.NoError(t, err)
	registry := observability.NewRegistry()
	publisher := analytics.NewMemoryPublisher()

	_, err = New(0, gate, registry, publisher)
	assert.Error(t, err)

	_, err = New(2, nil, registry, publisher)
	assert.Error(t, err)

	_, err = New(2, gate, nil, publisher)
	assert.Error(t, err)

	_, err = New(2, gate, registry, nil)
	assert.Error(t, err)
}

func TestClassify_BlockedSiteIsDenied(t *testing.T) {
	f := newFixture(t, memory.New("blocked-site"), blocklist.FailClosed)

	result := f.service.Classify(context.Background(), Request{
		Host: "blocked-site.wal.app",
		Path: "/index.html",
	})

	assert.False(t, result.Admit)
	assert.Equal(t, StateClassified, result.State)
	require.NotNil(t, result.Decision)
	assert.True(t, result.Decision.Blocked)
	assert.Equal(t, "blocked-site", result.Decision.Subject)

	// One warn-level event referencing the blocked subdomain, no analytics.
	require.Len(t, f.sink.events, 1)
	assert.Equal(t, observability.SeverityWarn, f.sink.events[0].Severity)
	assert.Equal(t, "blocked-site", f.sink.events[0].Attrs["subdomain"])
	assert.Empty(t, f.publisher.Views())
}

func TestClassify_ApexNeverConsultsGate(t *testing.T) {
	store := &consultSpy{}
	f := newFixture(t, store, blocklist.FailClosed)

	result := f.service.Classify(context.Background(), Request{
		Host: "wal.app",
		Path: "/index.html",
	})

	assert.True(t, result.Admit)
	assert.False(t, result.Parsed.HasSubdomain())
	assert.Nil(t, result.Decision)
	assert.Zero(t, store.calls)
	require.Len(t, f.sink.events, 1)
	assert.Equal(t, observability.SeverityInfo, f.sink.events[0].Severity)
}

func TestClassify_AssetSkipsGateAndAnalytics(t *testing.T) {
	store := &consultSpy{blocked: true}
	f := newFixture(t, store, blocklist.FailClosed)

	result := f.service.Classify(context.Background(), Request{
		Host: "my-site.wal.app",
		Path: "/logo.png",
	})

	assert.True(t, result.Admit)
	assert.Nil(t, result.Decision)
	assert.Zero(t, store.calls)
	assert.Empty(t, f.publisher.Views())
	require.Len(t, f.sink.events, 1)
	assert.Equal(t, observability.SeverityDebug, f.sink.events[0].Severity)
}

func TestClassify_AdmittedPageViewEmitsOneAnalyticsEvent(t *testing.T) {
	f := newFixture(t, memory.New(), blocklist.FailClosed)

	result := f.service.Classify(context.Background(), Request{
		Host:        "my-site.wal.app",
		Path:        "/index.html",
		OriginalURL: "https://my-site.wal.app/index.html",
	})

	assert.True(t, result.Admit)
	assert.Equal(t, StateClassified, result.State)

	views := f.publisher.Views()
	require.Len(t, views, 1)
	assert.Equal(t, analytics.EventName, views[0].Name)
	assert.Equal(t, "/index.html", views[0].Properties["path"])
	assert.Equal(t, "https://my-site.wal.app/index.html", views[0].Properties["origin"])
	assert.LessOrEqual(t, len(views[0].Properties), analytics.MaxProperties)
}

func TestClassify_GateFailure(t *testing.T) {
	t.Run("fail closed denies with error event", func(t *testing.T) {
		f := newFixture(t, failingStore{}, blocklist.FailClosed)

		result := f.service.Classify(context.Background(), Request{
			Host: "my-site.wal.app",
			Path: "/index.html",
		})

		assert.False(t, result.Admit)
		assert.Equal(t, StateClassified, result.State)
		require.Len(t, f.sink.events, 1)
		assert.Equal(t, observability.SeverityError, f.sink.events[0].Severity)
		assert.Empty(t, f.publisher.Views())
	})

	t.Run("fail open admits with error event", func(t *testing.T) {
		f := newFixture(t, failingStore{}, blocklist.FailOpen)

		result := f.service.Classify(context.Background(), Request{
			Host: "my-site.wal.app",
			Path: "/index.html",
		})

		assert.True(t, result.Admit)
		require.Len(t, f.sink.events, 1)
		assert.Equal(t, observability.SeverityError, f.sink.events[0].Severity)
	})
}

func TestClassify_BotTrafficExcludedFromAnalytics(t *testing.T) {
	f := newFixture(t, memory.New(), blocklist.FailClosed)

	result := f.service.Classify(context.Background(), Request{
		Host:      "my-site.wal.app",
		Path:      "/index.html",
		UserAgent: "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)",
	})

	assert.True(t, result.Admit)
	assert.Empty(t, f.publisher.Views())
}

func TestClassify_ExactlyOneEventPerRequest(t *testing.T) {
	f := newFixture(t, memory.New("blocked-site"), blocklist.FailClosed)

	requests := []Request{
		{Host: "wal.app", Path: "/"},
		{Host: "my-site.wal.app", Path: "/index.html"},
		{Host: "my-site.wal.app", Path: "/logo.png"},
		{Host: "blocked-site.wal.app", Path: "/index.html"},
	}
	for _, req := range requests {
		f.service.Classify(context.Background(), req)
	}

	assert.Len(t, f.sink.events, len(requests))
}

func TestIsTrackablePage(t *testing.T) {
	assert.True(t, isTrackablePage("/index.html"))
	assert.True(t, isTrackablePage("/docs/guide.HTM"))
	assert.False(t, isTrackablePage("/logo.png"))
	assert.False(t, isTrackablePage("/"))
	assert.False(t, isTrackablePage("/api/data.json"))
}

// consultSpy counts gate lookups.
type consultSpy struct {
	calls   int
	blocked bool
}

func (s *consultSpy) Contains(ctx context.Context, subject string) (bool, error) {
	s.calls++
	return s.blocked, nil
}
