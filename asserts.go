package spyglass

import (
	"fmt"
	"strings"
	"testing"

	"github.com/quietwire/spyglass/internal/render"
)

// Standalone assertion wrappers over the Spy/CallRecord predicates. They
// work on any spy regardless of agency ownership; the Agency methods add
// only an ownership check on top of these. Failures render both the
// expected pattern and the actual recorded calls.

// AssertCalled fails the test unless s was called at least once.
func AssertCalled(t testing.TB, s *Spy) {
	t.Helper()
	if !s.Called() {
		t.Fatalf("expected %s to have been called, but it was not", s.Name())
	}
}

// AssertNotCalled fails the test if s was called.
func AssertNotCalled(t testing.TB, s *Spy) {
	t.Helper()
	if s.Called() {
		t.Fatalf("expected %s not to have been called\n%s", s.Name(), renderCalls(s))
	}
}

// AssertCalledWith fails the test unless some call to s matches args: a
// positional prefix, optionally followed by one trailing Named pattern.
func AssertCalledWith(t testing.TB, s *Spy, args ...any) {
	t.Helper()
	if !s.CalledWith(args...) {
		t.Fatalf("expected %s to have been called with %s\n%s",
			s.Name(), renderPattern(args), renderCalls(s))
	}
}

// AssertNotCalledWith fails the test if some call to s matches args.
func AssertNotCalledWith(t testing.TB, s *Spy, args ...any) {
	t.Helper()
	if s.CalledWith(args...) {
		t.Fatalf("expected %s not to have been called with %s\n%s",
			s.Name(), renderPattern(args), renderCalls(s))
	}
}

// AssertLastCalledWith fails the test unless the most recent call to s
// matches args.
func AssertLastCalledWith(t testing.TB, s *Spy, args ...any) {
	t.Helper()
	if !s.LastCalledWith(args...) {
		t.Fatalf("expected the last call to %s to match %s\n%s",
			s.Name(), renderPattern(args), renderCalls(s))
	}
}

// AssertReturned fails the test unless some call to s returned value.
func AssertReturned(t testing.TB, s *Spy, value any) {
	t.Helper()
	if !s.Returned(value) {
		t.Fatalf("expected %s to have returned %s\n%s",
			s.Name(), render.Value(value), renderCalls(s))
	}
}

// AssertLastReturned fails the test unless the most recent call to s
// returned value.
func AssertLastReturned(t testing.TB, s *Spy, value any) {
	t.Helper()
	if !s.LastReturned(value) {
		t.Fatalf("expected the last call to %s to have returned %s\n%s",
			s.Name(), render.Value(value), renderCalls(s))
	}
}

// AssertRaised fails the test unless some call to s ended with an error
// outcome matching target (errors.Is semantics).
func AssertRaised(t testing.TB, s *Spy, target error) {
	t.Helper()
	if !s.Raised(target) {
		t.Fatalf("expected %s to have raised %v\n%s", s.Name(), target, renderCalls(s))
	}
}

// AssertLastRaised fails the test unless the most recent call to s ended
// with an error outcome matching target.
func AssertLastRaised(t testing.TB, s *Spy, target error) {
	t.Helper()
	if !s.LastRaised(target) {
		t.Fatalf("expected the last call to %s to have raised %v\n%s",
			s.Name(), target, renderCalls(s))
	}
}

// AssertRaisedMessage fails the test unless some call to s ended with an
// error outcome matching target and rendering exactly message.
func AssertRaisedMessage(t testing.TB, s *Spy, target error, message string) {
	t.Helper()
	if !s.RaisedMessage(target, message) {
		t.Fatalf("expected %s to have raised %v with message %q\n%s",
			s.Name(), target, message, renderCalls(s))
	}
}

func renderPattern(args []any) string {
	pos, named := splitPattern(args)
	return render.Pattern(pos, named)
}

func renderCalls(s *Spy) string {
	calls := s.Calls()
	if len(calls) == 0 {
		return "recorded calls: (none)"
	}
	var b strings.Builder
	b.WriteString("recorded calls:\n")
	for _, c := range calls {
		fmt.Fprintf(&b, "  #%d %s\n", c.Seq(), c)
	}
	return strings.TrimSuffix(b.String(), "\n")
}
