package spyglass

import (
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"

	"github.com/quietwire/spyglass/internal/render"
)

// CallRecord is an immutable snapshot of one resolved invocation of a
// spied function. Records are created by dispatch, appended to the spy's
// history in invocation order, and never mutated afterwards.
//
// Arguments are canonicalized against the target's declared parameter
// names: every value is reachable both by position (Arg) and by name
// (NamedArg), so lookups are interchangeable. A call holds either a
// return outcome or an error outcome, never both: when Err is non-nil,
// Returns is empty.
type CallRecord struct {
	spyName string
	seq     int

	args  []any
	named map[string]any
	names []string // declared parameter names, positional order

	returns  []any
	err      error
	panicked bool
}

// Seq is the record's sequence index within its spy, starting at 0 after
// each ResetCalls.
func (c *CallRecord) Seq() int { return c.seq }

// Args returns the normalized positional arguments, one per declared
// parameter (a variadic tail as one slice value).
func (c *CallRecord) Args() []any { return slices.Clone(c.args) }

// Named returns the normalized named arguments.
func (c *CallRecord) Named() map[string]any { return maps.Clone(c.named) }

// Arg returns the i-th positional argument, or nil when out of range.
func (c *CallRecord) Arg(i int) any {
	if i < 0 || i >= len(c.args) {
		return nil
	}
	return c.args[i]
}

// NamedArg returns the argument bound to the declared parameter name.
func (c *CallRecord) NamedArg(name string) (any, bool) {
	v, ok := c.named[name]
	return v, ok
}

// Returns returns the call's results, excluding a trailing error slot.
// Empty when the call ended in an error outcome.
func (c *CallRecord) Returns() []any { return slices.Clone(c.returns) }

// ReturnValue returns the call's first result, or nil when the call had
// no results or ended in an error outcome.
func (c *CallRecord) ReturnValue() any {
	if len(c.returns) == 0 {
		return nil
	}
	return c.returns[0]
}

// Err returns the call's error outcome: a non-nil trailing error result,
// a Raise operation's error, or a recovered panic value. Nil for calls
// that completed with a return outcome.
func (c *CallRecord) Err() error { return c.err }

// Panicked reports whether the error outcome was produced by a panic in
// the target or fake (and re-raised to the caller).
func (c *CallRecord) Panicked() bool { return c.panicked }

// Matches reports whether the call was made with the given positional
// prefix and named subset. pos may be shorter than the call's argument
// list; every named entry must equal the call's value for that parameter.
func (c *CallRecord) Matches(pos []any, named Named) bool {
	if len(pos) > len(c.args) {
		return false
	}
	for i, want := range pos {
		if !reflect.DeepEqual(c.args[i], want) {
			return false
		}
	}
	for name, want := range named {
		got, ok := c.named[name]
		if !ok || !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

// CalledWith reports whether the call matches the given arguments: a
// positional prefix, optionally followed by one trailing Named pattern.
func (c *CallRecord) CalledWith(args ...any) bool {
	pos, named := splitPattern(args)
	return c.Matches(pos, named)
}

// Returned reports whether the call completed with the given return
// value. A Results pattern compares the full result set; any other value
// compares against the first result.
func (c *CallRecord) Returned(value any) bool {
	if c.err != nil {
		return false
	}
	if rs, ok := value.(Results); ok {
		return reflect.DeepEqual(c.returns, []any(rs))
	}
	return len(c.returns) > 0 && reflect.DeepEqual(c.returns[0], value)
}

// Raised reports whether the call ended with an error outcome matching
// target under errors.Is semantics.
func (c *CallRecord) Raised(target error) bool {
	return c.err != nil && errors.Is(c.err, target)
}

// RaisedMessage reports whether the call ended with an error outcome
// matching target and rendering exactly message.
func (c *CallRecord) RaisedMessage(target error, message string) bool {
	return c.Raised(target) && c.err.Error() == message
}

// String renders the call for error and assertion messages, e.g.
//
//	greet(name="sam") -> "bye sam"
//	fetch("u1") -> error: connection refused
func (c *CallRecord) String() string {
	s := c.spyName + c.argsString()
	switch {
	case c.err != nil && c.panicked:
		s += fmt.Sprintf(" -> panic: %v", c.err)
	case c.err != nil:
		s += fmt.Sprintf(" -> error: %v", c.err)
	default:
		s += render.Results(c.returns)
	}
	return s
}

func (c *CallRecord) argsString() string {
	return render.CallArgs(c.names, c.args)
}

// splitPattern separates a CalledWith-style argument list into its
// positional prefix and an optional trailing Named pattern.
func splitPattern(args []any) ([]any, Named) {
	if n := len(args); n > 0 {
		if named, ok := args[n-1].(Named); ok {
			return args[:n-1], named
		}
	}
	return args, nil
}
