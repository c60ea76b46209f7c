// Package render formats argument lists, call patterns, and recorded calls
// for error messages and assertion failures. Output is stable (named
// arguments sorted by key) so failure messages are deterministic.
package render

import (
	"fmt"
	"sort"
	"strings"
)

// Value renders a single argument or result for display.
func Value(v any) string {
	switch v := v.(type) {
	case nil:
		return "nil"
	case string:
		return fmt.Sprintf("%q", v)
	case error:
		return fmt.Sprintf("%v", v)
	default:
		return fmt.Sprintf("%#v", v)
	}
}

// CallArgs renders a recorded call's arguments in positional order, each
// under its declared name: "(name="sam", count=2)". Falls back to bare
// values for positions without a name.
func CallArgs(names []string, args []any) string {
	parts := make([]string, len(args))
	for i, a := range args {
		if i < len(names) && names[i] != "" {
			parts[i] = fmt.Sprintf("%s=%s", names[i], Value(a))
		} else {
			parts[i] = Value(a)
		}
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Pattern renders an argument-matching pattern: a positional prefix plus a
// named subset, e.g. "(1, 2, ..., sector="x")". The ellipsis marks that
// the pattern matches a prefix, not the full argument list.
func Pattern(pos []any, named map[string]any) string {
	parts := make([]string, 0, len(pos)+len(named)+1)
	for _, p := range pos {
		parts = append(parts, Value(p))
	}
	keys := make([]string, 0, len(named))
	for k := range named {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, Value(named[k])))
	}
	if len(parts) == 0 {
		return "(...)"
	}
	return "(" + strings.Join(parts, ", ") + ", ...)"
}

// Results renders a result list as "-> (5, nil)".
func Results(rets []any) string {
	if len(rets) == 0 {
		return ""
	}
	parts := make([]string, len(rets))
	for i, r := range rets {
		parts[i] = Value(r)
	}
	if len(parts) == 1 {
		return " -> " + parts[0]
	}
	return " -> (" + strings.Join(parts, ", ") + ")"
}
