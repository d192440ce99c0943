package sink

import (
	"context"
	"sync"

	"yc/internal/domain"
)

// Collector is an unbounded in-memory sink that keeps every command it receives.
type Collector struct {
	mu       sync.RWMutex
	commands []domain.Command
}

func NewCollector() *Collector { return &Collector{} }

func (c *Collector) Put(ctx context.Context, cmd domain.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.commands = append(c.commands, cmd)
	return nil
}

// Commands returns a copy of everything collected so far, in arrival order.
func (c *Collector) Commands() []domain.Command {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Command, len(c.commands))
	copy(out, c.commands)
	return out
}
