package analytics

import (
	"context"
	"sync"
)

// MemoryPublisher records events in memory. Test double for the Kafka
// publisher.
type MemoryPublisher struct {
	mu    sync.Mutex
	views []PageView
}

// NewMemoryPublisher creates an empty in-memory publisher.
func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{}
}

// Publish records the event.
func (p *MemoryPublisher) Publish(ctx context.Context, view PageView) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.views = append(p.views, view)
	return nil
}

// Close is a no-op.
func (p *MemoryPublisher) Close(ctx context.Context) error { return nil }

// Views returns a copy of the recorded events.
func (p *MemoryPublisher) Views() []PageView {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]PageView, len(p.views))
	copy(out, p.views)
	return out
}
