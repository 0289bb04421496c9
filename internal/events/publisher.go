package events

import (
	"context"
	"time"

	"github.com/yungbote/awareness-backend/internal/observability"
	"github.com/yungbote/awareness-backend/internal/platform/logger"
)

// Publisher sends events best-effort. Failures are logged and counted, never returned.
type Publisher interface {
	Publish(ctx context.Context, ev Event)
}

type publisher struct {
	bus     Bus
	log     *logger.Logger
	metrics *observability.Metrics
	timeout time.Duration
}

func NewPublisher(bus Bus, log *logger.Logger, metrics *observability.Metrics) Publisher {
	if bus == nil {
		bus = NewNoopBus()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &publisher{
		bus:     bus,
		log:     log.With("service", "EventPublisher"),
		metrics: metrics,
		timeout: 2 * time.Second,
	}
}

func (p *publisher) Publish(ctx context.Context, ev Event) {
	// The request may already be finishing; keep its values but not its deadline.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()
	if err := p.bus.Publish(pubCtx, ev); err != nil {
		p.metrics.IncEventPublished(ev.Type, "error")
		p.log.Warn("event publish failed", "type", ev.Type, "user_id", ev.UserID, "error", err)
		return
	}
	p.metrics.IncEventPublished(ev.Type, "ok")
}
