package sink

import (
	"context"
	"sync/atomic"

	"yc/internal/domain"
)

// DefaultCapacity bounds the number of undrained commands held by a Sink.
const DefaultCapacity = 1024

// Sink is a bounded many-writer, single-reader FIFO of commands.
// Writers block while it is full and give up as soon as their context is
// cancelled, so an abandoned sink never holds a writer forever and never
// grows past its capacity.
type Sink struct {
	ch      chan domain.Command
	dropped atomic.Int64
}

func New(capacity int) *Sink {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Sink{ch: make(chan domain.Command, capacity)}
}

// Put enqueues cmd, or drops it and returns ctx.Err() once ctx is done.
func (s *Sink) Put(ctx context.Context, cmd domain.Command) error {
	if err := ctx.Err(); err != nil {
		s.dropped.Add(1)
		return err
	}
	select {
	case s.ch <- cmd:
		return nil
	case <-ctx.Done():
		s.dropped.Add(1)
		return ctx.Err()
	}
}

// Drain returns up to max queued commands without blocking.
func (s *Sink) Drain(max int) []domain.Command {
	var out []domain.Command
	for max <= 0 || len(out) < max {
		select {
		case cmd := <-s.ch:
			out = append(out, cmd)
		default:
			return out
		}
	}
	return out
}

// Len reports the number of commands waiting to be drained.
func (s *Sink) Len() int { return len(s.ch) }

// Dropped reports how many writes were discarded after cancellation.
func (s *Sink) Dropped() int64 { return s.dropped.Load() }
