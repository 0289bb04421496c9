package app

import (
	"fmt"
	"strings"

	"github.com/yungbote/awareness-backend/internal/events"
	"github.com/yungbote/awareness-backend/internal/platform/logger"
)

type Clients struct {
	Bus   events.Bus
	Redis *events.RedisBus
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	if strings.TrimSpace(cfg.Redis.Addr) == "" {
		log.Info("REDIS_ADDR not set; certification events stay in-process")
		return Clients{Bus: events.NewNoopBus()}, nil
	}
	rb, err := events.NewRedisBus(log, cfg.Redis)
	if err != nil {
		return Clients{}, fmt.Errorf("init redis event bus: %w", err)
	}
	return Clients{Bus: rb, Redis: rb}, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Bus != nil {
		_ = c.Bus.Close()
	}
}
