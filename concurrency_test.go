package spyglass_test

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/quietwire/spyglass"
)

func TestSpy_ConcurrentDispatch(t *testing.T) {
	const goroutines = 64
	const callsEach = 25

	var hits atomic.Int64
	count := func(n int) int {
		hits.Add(1)
		return n
	}

	spy, err := spyglass.SpyOn(&count, spyglass.WithName("count"), spyglass.WithParamNames("n"))
	require.NoError(t, err)
	defer func() { require.NoError(t, spy.Unspy()) }()

	var g errgroup.Group
	for i := 0; i < goroutines; i++ {
		i := i
		g.Go(func() error {
			for j := 0; j < callsEach; j++ {
				count(i)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int64(goroutines*callsEach), hits.Load(), "every call reaches the original")
	require.Equal(t, goroutines*callsEach, spy.CallCount(), "every call is recorded exactly once")

	// Sequence indexes are dense and strictly increasing.
	for i, c := range spy.Calls() {
		assert.Equal(t, i, c.Seq())
	}
}

func TestReturnInOrder_ConcurrentConsumption(t *testing.T) {
	const n = 200

	queue := make([]any, n)
	for i := range queue {
		queue[i] = i
	}
	next := func() int { return -1 }

	spy, err := spyglass.SpyOn(&next, spyglass.WithName("next"),
		spyglass.WithOperation(spyglass.ReturnInOrder(queue...)))
	require.NoError(t, err)
	defer func() { require.NoError(t, spy.Unspy()) }()

	var seen [n]atomic.Bool
	var g errgroup.Group
	for i := 0; i < n; i++ {
		g.Go(func() error {
			v := next()
			// The queue is consumed strictly FIFO under the spy's mutex:
			// each value is handed out exactly once.
			assert.False(t, seen[v].Swap(true), "value %d handed out twice", v)
			return nil
		})
	}
	require.NoError(t, g.Wait())

	require.Equal(t, n, spy.CallCount())
	for i := range seen {
		assert.True(t, seen[i].Load(), "value %d was never handed out", i)
	}
}

func TestSpy_ReentrantFake(t *testing.T) {
	// A fake that calls back through another spied function must not
	// deadlock: the fake runs outside the spy's critical sections.
	inner := func(n int) int { return n + 1 }
	innerSpy, err := spyglass.SpyOn(&inner, spyglass.WithName("inner"), spyglass.WithParamNames("n"))
	require.NoError(t, err)
	defer func() { require.NoError(t, innerSpy.Unspy()) }()

	outer := func(n int) int { return n }
	outerSpy, err := spyglass.SpyOn(&outer,
		spyglass.WithName("outer"),
		spyglass.WithParamNames("n"),
		spyglass.WithFake(func(n int) int { return inner(n) * 10 }),
	)
	require.NoError(t, err)
	defer func() { require.NoError(t, outerSpy.Unspy()) }()

	assert.Equal(t, 30, outer(2))
	assert.Equal(t, 1, outerSpy.CallCount())
	assert.Equal(t, 1, innerSpy.CallCount(), "the nested spied call is recorded on its own spy")
	assert.True(t, innerSpy.LastCalledWith(2))
	assert.True(t, outerSpy.LastReturned(30))
}
