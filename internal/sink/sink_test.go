package sink

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"yc/internal/domain"
)

type fakeCommand struct {
	name  string
	score int
}

func (f fakeCommand) Score() int              { return f.score }
func (f fakeCommand) String() string          { return f.name }
func (f fakeCommand) Preview() domain.Preview { return nil }
func (f fakeCommand) CopyText() string        { return f.name }
func (f fakeCommand) Execute() error          { return nil }

func TestSinkFIFO(t *testing.T) {
	s := New(10)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Put(ctx, fakeCommand{name: fmt.Sprint(i)}))
	}
	require.Equal(t, 5, s.Len())

	first := s.Drain(3)
	require.Len(t, first, 3)
	require.Equal(t, "0", first[0].String())
	require.Equal(t, "2", first[2].String())

	rest := s.Drain(30)
	require.Len(t, rest, 2)
	require.Empty(t, s.Drain(30))
}

func TestSinkDrainUnbounded(t *testing.T) {
	s := New(4)
	for i := 0; i < 4; i++ {
		require.NoError(t, s.Put(context.Background(), fakeCommand{}))
	}
	require.Len(t, s.Drain(0), 4)
}

func TestSinkCancelledPutDrops(t *testing.T) {
	s := New(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, s.Put(ctx, fakeCommand{}), context.Canceled)
	require.Equal(t, 0, s.Len())
	require.EqualValues(t, 1, s.Dropped())
}

func TestSinkFullWriterReleasedOnCancel(t *testing.T) {
	s := New(1)
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Put(ctx, fakeCommand{}))

	errc := make(chan error, 1)
	go func() { errc <- s.Put(ctx, fakeCommand{}) }()

	select {
	case <-errc:
		t.Fatal("put on a full sink should block")
	case <-time.After(30 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-errc:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("writer still blocked after cancellation")
	}
	require.Equal(t, 1, s.Len())
}

func TestSinkConcurrentWriters(t *testing.T) {
	s := New(1000)
	ctx := context.Background()
	var wg sync.WaitGroup
	for w := 0; w < 10; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				_ = s.Put(ctx, fakeCommand{score: i})
			}
		}()
	}
	wg.Wait()
	require.Len(t, s.Drain(0), 1000)
}

func TestCollector(t *testing.T) {
	c := NewCollector()
	ctx := context.Background()
	require.NoError(t, c.Put(ctx, fakeCommand{name: "a"}))
	require.NoError(t, c.Put(ctx, fakeCommand{name: "b"}))

	got := c.Commands()
	require.Len(t, got, 2)
	require.Equal(t, "a", got[0].String())
	require.Equal(t, "b", got[1].String())

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	require.Error(t, c.Put(cancelled, fakeCommand{name: "c"}))
	require.Len(t, c.Commands(), 2)

	got[0] = fakeCommand{name: "z"}
	require.Equal(t, "a", c.Commands()[0].String())
}
