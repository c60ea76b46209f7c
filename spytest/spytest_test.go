package spytest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quietwire/spyglass"
	"github.com/quietwire/spyglass/spytest"
)

func TestNewAgency_CleanupRestoresTargets(t *testing.T) {
	greet := func(name string) string { return "hi " + name }

	t.Run("scope", func(t *testing.T) {
		a := spytest.NewAgency(t)
		spy := spytest.SpyOn(t, a, &greet,
			spyglass.WithName("greet"),
			spyglass.WithParamNames("name"),
			spyglass.WithFake(func(name string) string { return "bye " + name }),
		)
		assert.Equal(t, "bye sam", greet("sam"))
		a.AssertSpyCalledWith(t, spy, spyglass.Named{"name": "sam"})
	})

	// The subtest's Cleanup has run: the original is back.
	assert.Equal(t, "hi sam", greet("sam"))
}

func TestSpyOn_FailsFastOnBadConfiguration(t *testing.T) {
	notAPointer := func() {}
	a := spytest.NewAgency(t)

	ft := &fatalTB{TB: t}
	spytest.SpyOn(ft, a, notAPointer) // missing &
	require.True(t, ft.fatal, "a configuration error must fail the test immediately")
}

// fatalTB records Fatalf instead of ending the test.
type fatalTB struct {
	testing.TB
	fatal bool
}

func (f *fatalTB) Helper() {}

func (f *fatalTB) Fatalf(format string, args ...any) { f.fatal = true }
