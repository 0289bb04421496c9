package events

import (
	"context"
	"sync"
)

type Bus interface {
	Publish(ctx context.Context, ev Event) error
	StartForwarder(ctx context.Context, onEvent func(ev Event)) error
	Close() error
}

type noopBus struct{}

// NewNoopBus drops every event. Used when REDIS_ADDR is unset.
func NewNoopBus() Bus { return noopBus{} }

func (noopBus) Publish(context.Context, Event) error                { return nil }
func (noopBus) StartForwarder(context.Context, func(ev Event)) error { return nil }
func (noopBus) Close() error                                        { return nil }

// MemoryBus delivers synchronously to in-process subscribers and keeps a copy of everything published.
type MemoryBus struct {
	mu        sync.Mutex
	published []Event
	handlers  []func(Event)
	err       error
}

func NewMemoryBus() *MemoryBus { return &MemoryBus{} }

// FailWith makes every later Publish return err.
func (b *MemoryBus) FailWith(err error) {
	b.mu.Lock()
	b.err = err
	b.mu.Unlock()
}

func (b *MemoryBus) Publish(_ context.Context, ev Event) error {
	b.mu.Lock()
	if b.err != nil {
		err := b.err
		b.mu.Unlock()
		return err
	}
	b.published = append(b.published, ev)
	handlers := append([]func(Event){}, b.handlers...)
	b.mu.Unlock()
	for _, h := range handlers {
		h(ev)
	}
	return nil
}

func (b *MemoryBus) StartForwarder(_ context.Context, onEvent func(ev Event)) error {
	if onEvent == nil {
		return nil
	}
	b.mu.Lock()
	b.handlers = append(b.handlers, onEvent)
	b.mu.Unlock()
	return nil
}

func (b *MemoryBus) Close() error { return nil }

func (b *MemoryBus) Published() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Event(nil), b.published...)
}
