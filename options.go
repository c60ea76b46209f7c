package spyglass

import (
	"log/slog"
)

// Option configures one spy at SpyOn time.
type Option func(*spyConfig)

// spyConfig holds a spy's configuration after applying defaults.
// Unexported — callers use the With* functions.
type spyConfig struct {
	name         string
	owner        any
	paramNames   []string
	fake         any
	op           Operation
	callOriginal bool
	provider     Provider
	logger       *slog.Logger
}

// WithName overrides the display name derived from the runtime function
// name. Use it for closures and method values whose derived names are
// unstable or unreadable.
func WithName(name string) Option {
	return func(c *spyConfig) { c.name = name }
}

// WithOwner records the object the target belongs to, for display in
// errors and logs. Informational only.
func WithOwner(owner any) Option {
	return func(c *spyConfig) { c.owner = owner }
}

// WithParamNames declares the target's parameter names, one per declared
// parameter (a variadic tail keeps one name for the whole slice). These
// drive the named-argument view of every CallRecord; without them
// parameters are named arg0..argN.
func WithParamNames(names ...string) Option {
	return func(c *spyConfig) { c.paramNames = names }
}

// WithFake substitutes fn for the original on every call. fn must have a
// signature compatible with the target. Mutually exclusive with
// WithOperation.
func WithFake(fn any) Option {
	return func(c *spyConfig) { c.fake = fn }
}

// WithOperation resolves every call through op (Return, Raise, MatchAny,
// MatchInOrder, ...). Takes priority over any other behavior source.
// Mutually exclusive with WithFake.
func WithOperation(op Operation) Option {
	return func(c *spyConfig) { c.op = op }
}

// WithCallOriginal controls whether calls pass through to the original
// function when no fake or operation is configured. Defaults to true;
// with false the spy records the call and returns zero values.
func WithCallOriginal(callOriginal bool) Option {
	return func(c *spyConfig) { c.callOriginal = callOriginal }
}

// WithProvider replaces the default function-variable interception
// provider for this spy.
func WithProvider(p Provider) Option {
	return func(c *spyConfig) { c.provider = p }
}

// WithLogger sets the structured logger for this spy's debug logging.
// Defaults to the owning agency's logger, then slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *spyConfig) { c.logger = logger }
}

// AgencyOption configures an Agency at construction time.
type AgencyOption func(*agencyConfig)

type agencyConfig struct {
	logger   *slog.Logger
	provider Provider
}

// WithAgencyLogger sets the structured logger inherited by every spy the
// agency creates. Defaults to slog.Default().
func WithAgencyLogger(logger *slog.Logger) AgencyOption {
	return func(c *agencyConfig) { c.logger = logger }
}

// WithAgencyProvider sets the interception provider inherited by every
// spy the agency creates.
func WithAgencyProvider(p Provider) AgencyOption {
	return func(c *agencyConfig) { c.provider = p }
}
