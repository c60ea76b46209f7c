package spyglass

import (
	"fmt"
)

// ConfigurationError reports a contradictory or invalid spy setup. It is
// always raised at SpyOn time, never deferred to dispatch: a fake together
// with an operation, an incompatible fake signature, a Return whose values
// don't fit the target's results, a target that is already spied on, and
// the like.
type ConfigurationError struct {
	// Reason describes what was wrong with the configuration.
	Reason string
	// Err optionally carries the underlying cause.
	Err error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("spyglass: configuration: %s: %v", e.Reason, e.Err)
	}
	return "spyglass: configuration: " + e.Reason
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

func configErrorf(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// UnexpectedCallError reports a call whose arguments matched no configured
// rule, or matched the wrong position of an ordered sequence. The offending
// call is carried on the error and is NOT appended to the spy's history:
// history records only calls whose behavior was actually resolved and
// executed.
//
// Dispatch panics with this error so the failure surfaces at the exact
// call site that violated the expectation, regardless of the target's
// signature.
type UnexpectedCallError struct {
	// SpyName is the display name of the spy that rejected the call.
	SpyName string
	// Call is the rejected call (never appended to history).
	Call *CallRecord
	// Expected describes what would have been accepted.
	Expected string
}

func (e *UnexpectedCallError) Error() string {
	msg := fmt.Sprintf("spyglass: unexpected call %s%s", e.SpyName, e.Call.argsString())
	if e.Expected != "" {
		msg += "; expected " + e.Expected
	}
	return msg
}

// QueueExhaustedError reports a call made after a ReturnInOrder or
// RaiseInOrder queue was fully consumed. The call is NOT appended to the
// spy's history, and the queue cursor is not advanced further.
//
// Dispatch panics with this error, for the same reason as
// UnexpectedCallError.
type QueueExhaustedError struct {
	// SpyName is the display name of the spy whose queue ran out.
	SpyName string
	// Kind is "return" or "raise".
	Kind string
	// Length is the configured queue length.
	Length int
}

func (e *QueueExhaustedError) Error() string {
	return fmt.Sprintf("spyglass: %s was called more than %d time(s); its in-order %s queue is exhausted",
		e.SpyName, e.Length, e.Kind)
}
