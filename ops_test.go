package spyglass_test

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quietwire/spyglass"
)

func TestReturn(t *testing.T) {
	t.Run("single result", func(t *testing.T) {
		identity := func() string { return "agent 7" }

		spy, err := spyglass.SpyOn(&identity,
			spyglass.WithName("identity"),
			spyglass.WithOperation(spyglass.Return("nobody...")),
		)
		require.NoError(t, err)
		defer func() { require.NoError(t, spy.Unspy()) }()

		assert.Equal(t, "nobody...", identity())
		assert.Equal(t, "nobody...", identity(), "Return is stable across calls")
		assert.True(t, spy.Returned("nobody..."))
	})

	t.Run("multiple results with implied nil error", func(t *testing.T) {
		read := func() (int, error) { return 0, errBoom }

		spy, err := spyglass.SpyOn(&read, spyglass.WithName("read"),
			spyglass.WithOperation(spyglass.Return(42)))
		require.NoError(t, err)
		defer func() { require.NoError(t, spy.Unspy()) }()

		n, callErr := read()
		assert.Equal(t, 42, n)
		assert.NoError(t, callErr, "omitted trailing error slot is implied nil")
	})

	t.Run("explicit error result", func(t *testing.T) {
		read := func() (int, error) { return 1, nil }

		spy, err := spyglass.SpyOn(&read, spyglass.WithName("read"),
			spyglass.WithOperation(spyglass.Return(0, io.EOF)))
		require.NoError(t, err)
		defer func() { require.NoError(t, spy.Unspy()) }()

		n, callErr := read()
		assert.Zero(t, n)
		assert.ErrorIs(t, callErr, io.EOF)
		assert.True(t, spy.LastRaised(io.EOF), "a non-nil error result is the call's error outcome")
	})
}

func TestReturnInOrder(t *testing.T) {
	next := func() string { return "real" }

	spy, err := spyglass.SpyOn(&next, spyglass.WithName("next"),
		spyglass.WithOperation(spyglass.ReturnInOrder("a", "b")))
	require.NoError(t, err)
	defer func() { require.NoError(t, spy.Unspy()) }()

	assert.Equal(t, "a", next())
	assert.Equal(t, "b", next())

	qe := mustPanicWith[*spyglass.QueueExhaustedError](t, func() { next() })
	assert.Equal(t, "next", qe.SpyName)
	assert.Equal(t, 2, qe.Length)
	assert.Equal(t, 2, spy.CallCount(), "the exhausted call is not appended to history")

	// The cursor does not move past exhaustion: the error repeats.
	mustPanicWith[*spyglass.QueueExhaustedError](t, func() { next() })
	assert.Equal(t, 2, spy.CallCount())
}

func TestReturnInOrder_MultiValueResults(t *testing.T) {
	read := func() (int, error) { return -1, nil }

	spy, err := spyglass.SpyOn(&read, spyglass.WithName("read"),
		spyglass.WithOperation(spyglass.ReturnInOrder(
			spyglass.Results{5, nil},
			spyglass.Results{0, io.EOF},
		)))
	require.NoError(t, err)
	defer func() { require.NoError(t, spy.Unspy()) }()

	n, callErr := read()
	assert.Equal(t, 5, n)
	assert.NoError(t, callErr)

	n, callErr = read()
	assert.Zero(t, n)
	assert.ErrorIs(t, callErr, io.EOF)
}

func TestRaise(t *testing.T) {
	t.Run("through a trailing error result", func(t *testing.T) {
		save := func(v string) error { return nil }

		spy, err := spyglass.SpyOn(&save, spyglass.WithName("save"),
			spyglass.WithParamNames("v"),
			spyglass.WithOperation(spyglass.Raise(errBoom)))
		require.NoError(t, err)
		defer func() { require.NoError(t, spy.Unspy()) }()

		callErr := save("x")
		assert.ErrorIs(t, callErr, errBoom)
		assert.True(t, spy.LastRaised(errBoom))
		assert.True(t, spy.LastRaisedMessage(errBoom, "boom"))
		assert.Equal(t, 1, spy.CallCount(), "a raised error is still a completed, recorded call")
	})

	t.Run("as a panic when there is no error result", func(t *testing.T) {
		pure := func() int { return 7 }

		spy, err := spyglass.SpyOn(&pure, spyglass.WithName("pure"),
			spyglass.WithOperation(spyglass.Raise(errBoom)))
		require.NoError(t, err)
		defer func() { require.NoError(t, spy.Unspy()) }()

		require.PanicsWithValue(t, errBoom, func() { pure() })
		assert.True(t, spy.LastRaised(errBoom))
		assert.Equal(t, 1, spy.CallCount())
	})
}

func TestRaiseInOrder(t *testing.T) {
	errFirst := errors.New("first")
	errSecond := errors.New("second")
	save := func() error { return nil }

	spy, err := spyglass.SpyOn(&save, spyglass.WithName("save"),
		spyglass.WithOperation(spyglass.RaiseInOrder(errFirst, errSecond)))
	require.NoError(t, err)
	defer func() { require.NoError(t, spy.Unspy()) }()

	assert.ErrorIs(t, save(), errFirst)
	assert.ErrorIs(t, save(), errSecond)

	qe := mustPanicWith[*spyglass.QueueExhaustedError](t, func() { _ = save() })
	assert.Equal(t, "raise", qe.Kind)
	assert.Equal(t, 2, spy.CallCount())
	assert.True(t, spy.Raised(errFirst))
	assert.True(t, spy.Raised(errSecond))
}
