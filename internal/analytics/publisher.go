package analytics

import "context"

// Publisher delivers pageview events to the analytics backend. Publish is
// best effort and must stay cheap: implementations either hand off to an
// internal buffer or drop.
type Publisher interface {
	Publish(ctx context.Context, view PageView) error
	Close(ctx context.Context) error
}

// NopPublisher discards all events. Used when analytics is not configured.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, view PageView) error { return nil }
func (NopPublisher) Close(ctx context.Context) error                  { return nil }
