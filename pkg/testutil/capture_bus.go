package testutil

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/recapd/recapd/pkg/eventbus"
	"github.com/recapd/recapd/pkg/events"
)

// CaptureEventBus records every published event for assertions. Handle
// and Subscribe are accepted but never deliver.
type CaptureEventBus struct {
	mu        sync.Mutex
	published []eventbus.Event
}

func NewCaptureEventBus() *CaptureEventBus {
	return &CaptureEventBus{}
}

func (b *CaptureEventBus) Publish(_ context.Context, _ string, event eventbus.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.published = append(b.published, event)

	return nil
}

func (b *CaptureEventBus) Handle(_ events.EventType, _ eventbus.EventHandler) error { return nil }
func (b *CaptureEventBus) Subscribe(_ context.Context) error                        { return nil }
func (b *CaptureEventBus) Close() error                                             { return nil }
func (b *CaptureEventBus) GenerateID() string                                       { return uuid.New().String() }

// Published returns a copy of the captured events in publish order.
func (b *CaptureEventBus) Published() []eventbus.Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	return append([]eventbus.Event(nil), b.published...)
}

// PublishedTypes returns the captured event types in publish order.
func (b *CaptureEventBus) PublishedTypes() []events.EventType {
	b.mu.Lock()
	defer b.mu.Unlock()

	types := make([]events.EventType, 0, len(b.published))
	for _, event := range b.published {
		types = append(types, event.GetType())
	}

	return types
}
