package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"

	"yc/internal/domain"
	"yc/internal/matcher"
	"yc/internal/resultview"
	"yc/internal/sink"
)

var (
	// ErrNoCommander is returned when a search is started without a root commander.
	ErrNoCommander = errors.New("no root commander configured")
	// ErrClosed is returned when a search is started after Shutdown.
	ErrClosed = errors.New("dispatcher is shut down")
)

const DefaultBatchSize = 30

// State of the dispatcher from the foreground's point of view.
type State int

const (
	StateIdle State = iota
	StateSearching
)

func (s State) String() string {
	if s == StateSearching {
		return "searching"
	}
	return "idle"
}

// session is one in-flight search bound to one query.
type session struct {
	id       string
	keywords []string
	sink     *sink.Sink
	cancel   context.CancelFunc
	done     chan struct{}
	// fresh is set until the session first touches the view.
	fresh bool
}

func (s *session) finished() bool {
	select {
	case <-s.done:
		return true
	default:
	}
	return false
}

// Dispatcher owns the single current search session. On every change of the
// query it cancels the previous session without waiting for it and starts a
// new one against the root commander; Poll drains the current session's sink
// into the result view. Search, Poll and the view accessors belong to the
// foreground and must not be called concurrently.
type Dispatcher struct {
	root         domain.Commander
	view         *resultview.View
	batchSize    int
	sinkCapacity int

	current *session
	closed  bool
	wg      conc.WaitGroup
	running atomic.Int64
}

type Option func(*Dispatcher)

// WithBatchSize bounds how many results one Poll moves into the view.
func WithBatchSize(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.batchSize = n
		}
	}
}

// WithSinkCapacity bounds how many undrained results a session may hold.
func WithSinkCapacity(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.sinkCapacity = n
		}
	}
}

func NewDispatcher(root domain.Commander, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		root:         root,
		view:         resultview.New(),
		batchSize:    DefaultBatchSize,
		sinkCapacity: sink.DefaultCapacity,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Search reacts to new query text. Blank text cancels the current session and
// clears the view. Text with the same keywords as the current session is
// ignored. An error means no session could be started; the view is cleared.
func (d *Dispatcher) Search(text string) error {
	keywords := matcher.ParseQuery(text)
	if len(keywords) == 0 {
		d.stopCurrent()
		d.view.Clear()
		return nil
	}
	if d.current != nil && matcher.Equal(d.current.keywords, keywords) {
		return nil
	}
	d.stopCurrent()
	if err := d.launch(keywords); err != nil {
		d.view.Clear()
		log.Printf("dispatcher: cannot start search %q: %v", text, err)
		return err
	}
	return nil
}

func (d *Dispatcher) launch(keywords []string) error {
	if d.closed {
		return ErrClosed
	}
	if d.root == nil {
		return ErrNoCommander
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &session{
		id:       uuid.NewString(),
		keywords: keywords,
		sink:     sink.New(d.sinkCapacity),
		cancel:   cancel,
		done:     make(chan struct{}),
		fresh:    true,
	}
	d.current = s
	d.running.Add(1)
	root := d.root
	d.wg.Go(func() {
		defer close(s.done)
		defer d.running.Add(-1)
		defer cancel()
		d.order(ctx, root, s)
	})
	return nil
}

func (d *Dispatcher) order(ctx context.Context, root domain.Commander, s *session) {
	var err error
	var pc panics.Catcher
	pc.Try(func() { err = root.Order(ctx, s.keywords, s.sink) })
	if r := pc.Recovered(); r != nil {
		err = r.AsError()
	}
	switch {
	case err == nil:
	case ctx.Err() != nil:
		// superseded or shut down; not a failure
	default:
		log.Printf("dispatcher: session %s %v: %v", s.id, s.keywords, err)
	}
	if dropped := s.sink.Dropped(); dropped > 0 {
		log.Printf("dispatcher: session %s dropped %d results after cancellation", s.id, dropped)
	}
}

// stopCurrent cancels the current session and detaches it.
func (d *Dispatcher) stopCurrent() {
	if d.current == nil {
		return
	}
	d.current.cancel()
	d.current = nil
}

// Poll moves up to one batch of results from the current session into the
// view and reports whether the view changed. The first batch of a session
// replaces what the previous session left behind.
func (d *Dispatcher) Poll() bool {
	s := d.current
	if s == nil {
		return false
	}
	batch := s.sink.Drain(d.batchSize)
	if len(batch) > 0 {
		if s.fresh {
			d.view.Replace(batch)
			s.fresh = false
		} else {
			d.view.Update(batch)
		}
		return true
	}
	if s.fresh && s.finished() {
		d.view.Clear()
		s.fresh = false
		return true
	}
	return false
}

// Busy reports whether the current session may still deliver results.
func (d *Dispatcher) Busy() bool {
	s := d.current
	if s == nil {
		return false
	}
	return !s.finished() || s.sink.Len() > 0 || s.fresh
}

func (d *Dispatcher) State() State {
	if d.current == nil {
		return StateIdle
	}
	return StateSearching
}

// Keywords returns the query of the current session.
func (d *Dispatcher) Keywords() []string {
	if d.current == nil {
		return nil
	}
	return d.current.keywords
}

// Running reports how many background searches are alive, including
// superseded ones that have not exited yet.
func (d *Dispatcher) Running() int { return int(d.running.Load()) }

func (d *Dispatcher) View() *resultview.View { return d.view }

// Shutdown cancels the current session and waits for every background search
// to return, or for ctx to expire.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.closed = true
	d.stopCurrent()
	done := make(chan struct{})
	go func() {
		defer close(done)
		if r := d.wg.WaitAndRecover(); r != nil {
			log.Printf("dispatcher: background search panicked: %v", r.AsError())
		}
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for %d background searches: %w", d.Running(), ctx.Err())
	}
}
