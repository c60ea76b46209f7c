// Package spytest binds a spyglass.Agency to a test's lifecycle.
//
// Usage:
//
//	func TestGreeter(t *testing.T) {
//	    a := spytest.NewAgency(t)
//	    spy := spytest.SpyOn(t, a, &greet, spyglass.WithParamNames("name"))
//	    ...
//	} // all spies removed by t.Cleanup
package spytest

import (
	"testing"

	"github.com/quietwire/spyglass"
)

// NewAgency creates an Agency whose UnspyAll runs via tb.Cleanup. A
// teardown failure fails the test but never masks assertions that already
// ran, and every spy is still attempted.
func NewAgency(tb testing.TB, opts ...spyglass.AgencyOption) *spyglass.Agency {
	tb.Helper()
	a := spyglass.NewAgency(opts...)
	tb.Cleanup(func() {
		if err := a.UnspyAll(); err != nil {
			tb.Errorf("spytest: teardown: %v", err)
		}
	})
	return a
}

// SpyOn creates a spy through a and fails the test immediately on a
// configuration error, so tests don't need the err-check boilerplate.
func SpyOn(tb testing.TB, a *spyglass.Agency, target any, opts ...spyglass.Option) *spyglass.Spy {
	tb.Helper()
	s, err := a.SpyOn(target, opts...)
	if err != nil {
		tb.Fatalf("spytest: %v", err)
	}
	return s
}
