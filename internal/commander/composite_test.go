package commander

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"yc/internal/domain"
	"yc/internal/sink"
)

func names(cmds []domain.Command) []string {
	out := make([]string, len(cmds))
	for i, c := range cmds {
		out[i] = c.String()
	}
	return out
}

func TestSequenceRegistrationOrder(t *testing.T) {
	seq := NewSequence(
		NewSoldier([]string{"a"}, "low", "", 1),
		NewSoldier([]string{"a"}, "high", "", 99),
	)
	seq.Recruit(NewSoldier([]string{"b"}, "other", "", 50))

	require.Equal(t, []string{"low", "high"}, names(seq.Match([]string{"a"})))
	require.Empty(t, seq.Match(nil))

	got, err := Collect(context.Background(), seq, []string{"a"})
	require.NoError(t, err)
	require.Equal(t, []string{"low", "high"}, names(got))
}

func TestSequenceNested(t *testing.T) {
	inner := NewSequence(NewSoldier([]string{"git"}, "git log", "", 50))
	outer := NewSequence(NewSoldier([]string{"git"}, "git status", "", 50), inner)
	require.Equal(t, []string{"git status", "git log"}, names(outer.Match([]string{"git"})))
}

func TestChainIsolatesFailures(t *testing.T) {
	var calls atomic.Int32
	failing := Func(func(ctx context.Context, keywords []string, s domain.Sink) error {
		calls.Add(1)
		return errors.New("malformed output")
	})
	panicking := Func(func(ctx context.Context, keywords []string, s domain.Sink) error {
		calls.Add(1)
		panic("boom")
	})
	chain := NewChain(failing, panicking, NewSoldier([]string{"ls"}, "ls", "", 50))

	got, err := Collect(context.Background(), chain, []string{"ls"})
	require.NoError(t, err)
	require.Equal(t, []string{"ls"}, names(got))
	require.EqualValues(t, 2, calls.Load())
}

func TestChainStopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var second atomic.Bool
	chain := NewChain(
		Func(func(ctx context.Context, keywords []string, s domain.Sink) error {
			cancel()
			return nil
		}),
		Func(func(ctx context.Context, keywords []string, s domain.Sink) error {
			second.Store(true)
			return nil
		}),
	)
	err := chain.Order(ctx, []string{"x"}, sink.NewCollector())
	require.ErrorIs(t, err, context.Canceled)
	require.False(t, second.Load())
}

func sleeper(d time.Duration, cmd domain.Command) Func {
	return func(ctx context.Context, keywords []string, s domain.Sink) error {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return ctx.Err()
		}
		return s.Put(ctx, cmd)
	}
}

func TestConcurrentFastResultNotHeldBackBySlow(t *testing.T) {
	slow := NewSoldier(nil, "slow", "", 30)
	fast := NewSoldier(nil, "fast", "", 50)
	conc := NewConcurrent(sleeper(200*time.Millisecond, slow), sleeper(0, fast))

	s := sink.New(10)
	done := make(chan error, 1)
	go func() { done <- conc.Order(context.Background(), []string{"q"}, s) }()

	var first []domain.Command
	require.Eventually(t, func() bool {
		first = append(first, s.Drain(30)...)
		return len(first) > 0
	}, 100*time.Millisecond, 5*time.Millisecond)
	require.Equal(t, "fast", first[0].String())

	require.NoError(t, <-done)
	rest := s.Drain(30)
	require.Equal(t, []string{"slow"}, names(rest))
}

func TestConcurrentIsolatesFailures(t *testing.T) {
	conc := NewConcurrent(
		Func(func(ctx context.Context, keywords []string, s domain.Sink) error {
			return errors.New("child failed")
		}),
		Func(func(ctx context.Context, keywords []string, s domain.Sink) error {
			panic("child panicked")
		}),
	)
	conc.Recruit(sleeper(20*time.Millisecond, NewSoldier(nil, "survivor", "", 1)))

	got, err := Collect(context.Background(), conc, []string{"q"})
	require.NoError(t, err)
	require.Equal(t, []string{"survivor"}, names(got))
}

func TestConcurrentCancelledDoesNotLaunch(t *testing.T) {
	var launched atomic.Int32
	child := Func(func(ctx context.Context, keywords []string, s domain.Sink) error {
		launched.Add(1)
		return nil
	})
	conc := NewConcurrent(child, child, child)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := conc.Order(ctx, []string{"q"}, sink.NewCollector())
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, launched.Load())
}

func TestConcurrentCancelStopsChildren(t *testing.T) {
	var running atomic.Int32
	block := Func(func(ctx context.Context, keywords []string, s domain.Sink) error {
		running.Add(1)
		defer running.Add(-1)
		<-ctx.Done()
		return ctx.Err()
	})
	conc := NewConcurrent(block, block, block)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- conc.Order(ctx, []string{"q"}, sink.New(1)) }()

	require.Eventually(t, func() bool { return running.Load() == 3 }, time.Second, time.Millisecond)
	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("concurrent commander did not return after cancellation")
	}
	require.Zero(t, running.Load())
}

func TestConcurrentJoinsChildThatIgnoresCancel(t *testing.T) {
	var finished atomic.Bool
	stubborn := Func(func(ctx context.Context, keywords []string, s domain.Sink) error {
		time.Sleep(100 * time.Millisecond)
		finished.Store(true)
		return nil
	})
	conc := NewConcurrent(stubborn)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	start := time.Now()
	err := conc.Order(ctx, []string{"q"}, sink.NewCollector())
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.True(t, finished.Load(), "order returned before its child")
	require.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
}

func TestConcurrentLimit(t *testing.T) {
	var running, peak atomic.Int32
	child := Func(func(ctx context.Context, keywords []string, s domain.Sink) error {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		running.Add(-1)
		return nil
	})
	conc := NewConcurrent(child, child, child, child, child).WithLimit(2)
	_, err := Collect(context.Background(), conc, []string{"q"})
	require.NoError(t, err)
	require.LessOrEqual(t, peak.Load(), int32(2))
}

func TestCompositesIgnoreEmptyQuery(t *testing.T) {
	called := false
	child := Func(func(ctx context.Context, keywords []string, s domain.Sink) error {
		called = true
		return nil
	})
	require.NoError(t, NewChain(child).Order(context.Background(), nil, sink.NewCollector()))
	require.NoError(t, NewConcurrent(child).Order(context.Background(), nil, sink.NewCollector()))
	require.False(t, called)
}

// Running the same query twice over an unchanged tree yields the same set
// and, once ranked by score, the same order.
func TestConcurrentIdempotent(t *testing.T) {
	tree := NewConcurrent(
		NewSoldier([]string{"git"}, "git status", "", 60),
		NewChain(NewSoldier([]string{"git"}, "git log", "", 40), sleeper(5*time.Millisecond, NewSoldier(nil, "git push", "", 50))),
		NewSequence(NewSoldier([]string{"git"}, "git diff", "", 70)),
	)
	first, err := Collect(context.Background(), tree, []string{"git"})
	require.NoError(t, err)
	second, err := Collect(context.Background(), tree, []string{"git"})
	require.NoError(t, err)
	require.ElementsMatch(t, names(first), names(second))
	require.Len(t, first, 4)
}
