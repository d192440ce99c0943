package commander

import (
	"context"
	"log"

	"github.com/sourcegraph/conc/panics"
	"golang.org/x/sync/errgroup"

	"yc/internal/domain"
	"yc/internal/sink"
)

// Func adapts an ordinary function to the Commander interface.
type Func func(ctx context.Context, keywords []string, sink domain.Sink) error

func (f Func) Order(ctx context.Context, keywords []string, sink domain.Sink) error {
	return f(ctx, keywords, sink)
}

// Sequence aggregates synchronous commanders. Results come back in
// registration order; ranking happens later, in the result view.
type Sequence struct {
	children []domain.SyncCommander
}

func NewSequence(children ...domain.SyncCommander) *Sequence {
	return &Sequence{children: children}
}

// Recruit registers another child. It must not race with a search.
func (s *Sequence) Recruit(child domain.SyncCommander) {
	s.children = append(s.children, child)
}

func (s *Sequence) Match(keywords []string) []domain.Command {
	if len(keywords) == 0 {
		return nil
	}
	var out []domain.Command
	for _, child := range s.children {
		out = append(out, child.Match(keywords)...)
	}
	return out
}

func (s *Sequence) Order(ctx context.Context, keywords []string, sink domain.Sink) error {
	if len(keywords) == 0 {
		return nil
	}
	for _, child := range s.children {
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, cmd := range child.Match(keywords) {
			if err := sink.Put(ctx, cmd); err != nil {
				return err
			}
		}
	}
	return nil
}

// Chain hands the same sink to each child in turn, so its latency is the sum
// of its children's. A failing child is logged and skipped.
type Chain struct {
	children []domain.Commander
}

func NewChain(children ...domain.Commander) *Chain {
	return &Chain{children: children}
}

// Recruit registers another child. It must not race with a search.
func (c *Chain) Recruit(child domain.Commander) {
	c.children = append(c.children, child)
}

func (c *Chain) Order(ctx context.Context, keywords []string, sink domain.Sink) error {
	if len(keywords) == 0 {
		return nil
	}
	for i, child := range c.children {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := runChild(ctx, child, keywords, sink); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("commander: chain child %d (%T) failed: %v", i, child, err)
		}
	}
	return nil
}

// Concurrent runs every child at the same time against the shared sink and
// returns once all of them have finished. Failures stay with the child that
// produced them: siblings keep running and the error is only logged.
//
// Order always joins its children, even after ctx is cancelled, so a child
// that ignores ctx delays the return until it finishes. Callers that must not
// block on a superseded search detach it instead of waiting, which is what the
// dispatcher does.
type Concurrent struct {
	children []domain.Commander
	limit    int
}

func NewConcurrent(children ...domain.Commander) *Concurrent {
	return &Concurrent{children: children}
}

// WithLimit caps how many children run at once; zero means no cap.
func (c *Concurrent) WithLimit(n int) *Concurrent {
	c.limit = n
	return c
}

// Recruit registers another child. It must not race with a search.
func (c *Concurrent) Recruit(child domain.Commander) {
	c.children = append(c.children, child)
}

func (c *Concurrent) Order(ctx context.Context, keywords []string, sink domain.Sink) error {
	if len(keywords) == 0 {
		return nil
	}
	var g errgroup.Group
	if c.limit > 0 {
		g.SetLimit(c.limit)
	}
	for i, child := range c.children {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			if err := runChild(ctx, child, keywords, sink); err != nil && ctx.Err() == nil {
				log.Printf("commander: concurrent child %d (%T) failed: %v", i, child, err)
			}
			return nil
		})
	}
	_ = g.Wait()
	return ctx.Err()
}

// runChild calls child.Order and turns a panic into an error.
func runChild(ctx context.Context, child domain.Commander, keywords []string, sink domain.Sink) error {
	var err error
	var pc panics.Catcher
	pc.Try(func() { err = child.Order(ctx, keywords, sink) })
	if r := pc.Recovered(); r != nil {
		return r.AsError()
	}
	return err
}

// Collect runs c to completion and returns what it produced, in arrival order.
func Collect(ctx context.Context, c domain.Commander, keywords []string) ([]domain.Command, error) {
	col := sink.NewCollector()
	err := c.Order(ctx, keywords, col)
	return col.Commands(), err
}
