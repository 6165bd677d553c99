package classifier

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mssola/useragent"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"sitegate/internal/analytics"
	"sitegate/internal/blocklist"
	"sitegate/internal/classifier/metrics"
	"sitegate/internal/domain"
	"sitegate/internal/observability"
)

// Service classifies inbound requests. It owns no per-request state; the
// gate, sink, and publisher it composes are fixed at startup and shared
// across requests.
type Service struct {
	suffixLen int
	gate      *blocklist.Gate
	sink      *observability.Registry
	publisher analytics.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	tracer    trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New constructs the classifier. suffixLen is the number of trailing host
// labels reserved for the portal apex.
func New(suffixLen int, gate *blocklist.Gate, sink *observability.Registry, publisher analytics.Publisher, opts ...Option) (*Service, error) {
	if suffixLen < 1 {
		return nil, fmt.Errorf("portal domain length must be >= 1, got %d", suffixLen)
	}
	if gate == nil {
		return nil, fmt.Errorf("blocklist gate is required")
	}
	if sink == nil {
		return nil, fmt.Errorf("observability sink is required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("analytics publisher is required")
	}

	s := &Service{
		suffixLen: suffixLen,
		gate:      gate,
		sink:      sink,
		publisher: publisher,
		logger:    slog.Default(),
		tracer:    otel.Tracer("sitegate/classifier"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Classify runs the full pipeline for one request. It never fails: gate
// errors resolve to the configured fail mode and sink faults are isolated
// inside the sink, so the caller always receives a terminal Result.
func (s *Service) Classify(ctx context.Context, req Request) Result {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "classifier.Classify")
	defer span.End()

	parsed := domain.Parse(req.Host, req.Path, s.suffixLen)
	result := Result{Admit: true, Parsed: parsed, State: StateParsed}
	span.SetAttributes(
		attribute.String("site.subdomain", parsed.Subdomain),
		attribute.String("site.path", parsed.Path),
	)

	trackable := isTrackablePage(parsed.Path)

	// Asset requests skip the gate entirely: only document page views are
	// enforcement points, which bounds both lookup and analytics cost.
	if trackable && parsed.HasSubdomain() {
		decision, err := s.gate.Check(ctx, parsed.Subdomain)
		result.Decision = &decision
		result.State = StateGated
		result.Admit = !decision.Blocked

		if err != nil {
			result.State = StateClassified
			s.metrics.IncrementOutcome("gate_error")
			s.metrics.ObserveClassifyLatency(time.Since(start))
			span.SetAttributes(attribute.Bool("site.admitted", result.Admit))
			s.sink.Error(ctx, "blocklist check failed", map[string]any{
				"subdomain":  decision.Subject,
				"path":       parsed.Path,
				"admitted":   result.Admit,
				"request_id": req.RequestID,
			})
			return result
		}
	}

	result.State = StateClassified
	span.SetAttributes(attribute.Bool("site.admitted", result.Admit))

	switch {
	case result.Decision != nil && result.Decision.Blocked:
		s.metrics.IncrementOutcome("denied")
		s.sink.Warn(ctx, "blocked site requested", map[string]any{
			"subdomain":  result.Decision.Subject,
			"path":       parsed.Path,
			"client_ip":  req.ClientIP,
			"request_id": req.RequestID,
		})
	case !parsed.HasSubdomain():
		s.metrics.IncrementOutcome("apex")
		s.sink.Info(ctx, "portal request classified", map[string]any{
			"subdomain":  "",
			"path":       parsed.Path,
			"admitted":   true,
			"request_id": req.RequestID,
		})
	case !trackable:
		s.metrics.IncrementOutcome("asset")
		s.sink.Debug(ctx, "asset request classified", map[string]any{
			"subdomain":  parsed.Subdomain,
			"path":       parsed.Path,
			"request_id": req.RequestID,
		})
	default:
		s.metrics.IncrementOutcome("admitted")
		s.sink.Info(ctx, "site request classified", map[string]any{
			"subdomain":  parsed.Subdomain,
			"path":       parsed.Path,
			"admitted":   true,
			"request_id": req.RequestID,
		})
	}

	if trackable && result.Admit && !isBot(req.UserAgent) {
		s.trackPageView(ctx, parsed, req)
	}

	s.metrics.ObserveClassifyLatency(time.Since(start))
	return result
}

// trackPageView emits the single analytics event for an admitted page view.
// Publisher failures are reported as error events, never to the caller.
func (s *Service) trackPageView(ctx context.Context, parsed domain.ParsedDomain, req Request) {
	props := map[string]string{"path": parsed.Path}
	if req.OriginalURL != "" {
		props["origin"] = req.OriginalURL
	}

	view := analytics.NewPageView(props)
	if err := s.publisher.Publish(ctx, view); err != nil {
		s.sink.Error(ctx, "pageview publish failed", map[string]any{
			"subdomain":  parsed.Subdomain,
			"path":       parsed.Path,
			"request_id": req.RequestID,
		})
	}
}

// isBot filters crawler traffic out of analytics; crawlers are still
// classified and served normally.
func isBot(ua string) bool {
	if ua == "" {
		return false
	}
	return useragent.New(ua).Bot()
}
