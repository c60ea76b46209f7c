package spyglass

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errTest = errors.New("test error")

func record(args []any, names []string) *CallRecord {
	named := make(map[string]any, len(args))
	for i, a := range args {
		named[names[i]] = a
	}
	return &CallRecord{spyName: "fn", args: args, named: named, names: names}
}

func TestCallRecordMatches(t *testing.T) {
	rec := record([]any{"sam", 2, true}, []string{"name", "count", "loud"})

	tests := []struct {
		name  string
		pos   []any
		named Named
		want  bool
	}{
		{"empty pattern matches anything", nil, nil, true},
		{"full positional", []any{"sam", 2, true}, nil, true},
		{"positional prefix", []any{"sam"}, nil, true},
		{"prefix mismatch", []any{"kim"}, nil, false},
		{"too many positionals", []any{"sam", 2, true, "extra"}, nil, false},
		{"named subset", nil, Named{"count": 2}, true},
		{"named full", nil, Named{"name": "sam", "count": 2, "loud": true}, true},
		{"named value mismatch", nil, Named{"count": 3}, false},
		{"unknown name", nil, Named{"volume": 11}, false},
		{"mixed prefix and named", []any{"sam"}, Named{"loud": true}, true},
		{"mixed with mismatch", []any{"sam"}, Named{"loud": false}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rec.Matches(tt.pos, tt.named))
		})
	}
}

func TestSplitPattern(t *testing.T) {
	pos, named := splitPattern([]any{1, 2, Named{"x": 3}})
	assert.Equal(t, []any{1, 2}, pos)
	assert.Equal(t, Named{"x": 3}, named)

	pos, named = splitPattern([]any{1, 2})
	assert.Equal(t, []any{1, 2}, pos)
	assert.Nil(t, named)

	pos, named = splitPattern(nil)
	assert.Empty(t, pos)
	assert.Nil(t, named)
}

func TestRulePatternMergesTrailingNamed(t *testing.T) {
	r := Rule{
		Args:  []any{"a", Named{"x": 1, "y": 2}},
		Named: Named{"y": 9, "z": 3},
	}
	pos, named := r.pattern()
	assert.Equal(t, []any{"a"}, pos)
	// The explicit Named field wins over the trailing pattern on conflict.
	assert.Equal(t, Named{"x": 1, "y": 9, "z": 3}, named)
}

func TestCallRecordString(t *testing.T) {
	rec := record([]any{"sam"}, []string{"name"})
	rec.returns = []any{"hi sam"}
	assert.Equal(t, `fn(name="sam") -> "hi sam"`, rec.String())

	rec = record(nil, nil)
	rec.err = errTest
	assert.Equal(t, "fn() -> error: test error", rec.String())

	rec = record(nil, nil)
	rec.err = errTest
	rec.panicked = true
	assert.Equal(t, "fn() -> panic: test error", rec.String())
}
