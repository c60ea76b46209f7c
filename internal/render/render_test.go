package render_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quietwire/spyglass/internal/render"
)

func TestValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, "nil"},
		{"string quoted", "sam", `"sam"`},
		{"int", 42, "42"},
		{"error message", errors.New("boom"), "boom"},
		{"slice", []int{1, 2}, "[]int{1, 2}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, render.Value(tt.in))
		})
	}
}

func TestCallArgs(t *testing.T) {
	got := render.CallArgs([]string{"name", "count"}, []any{"sam", 2})
	assert.Equal(t, `(name="sam", count=2)`, got)

	assert.Equal(t, "()", render.CallArgs(nil, nil))
	assert.Equal(t, `("bare")`, render.CallArgs(nil, []any{"bare"}))
}

func TestPattern(t *testing.T) {
	// Named keys render sorted, so failure messages are deterministic.
	got := render.Pattern([]any{1, 2}, map[string]any{"z": true, "a": "x"})
	assert.Equal(t, `(1, 2, a="x", z=true, ...)`, got)

	assert.Equal(t, "(...)", render.Pattern(nil, nil))
}

func TestResults(t *testing.T) {
	assert.Equal(t, "", render.Results(nil))
	assert.Equal(t, ` -> "hi"`, render.Results([]any{"hi"}))
	assert.Equal(t, ` -> (1, nil)`, render.Results([]any{1, nil}))
}
