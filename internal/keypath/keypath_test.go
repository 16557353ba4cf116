package keypath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcnuttandrew/prong-sub001/internal/syntax"
)

func TestResolve(t *testing.T) {
	src := `{"a": {"b": [10, 20]}, "c": "x"}`
	tree := syntax.Parse(src)

	tests := []struct {
		name string
		pos  int
		want Path
	}{
		{name: "root object", pos: 0, want: Path{}},
		{name: "property name", pos: 8, want: Of("a", "b___key")},
		{name: "array element", pos: 18, want: Of("a", "b", 1)},
		{name: "array value via bracket", pos: 12, want: Of("a", "b___value")},
		{name: "string value", pos: 30, want: Of("c___value")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := tree.NodeAt(tt.pos)
			require.NotNil(t, n)
			got := Resolve(n, src)
			assert.Equal(t, tt.want.String(), got.String(), "node %s", n)
		})
	}
}

func TestSegmentMatches(t *testing.T) {
	assert.True(t, Key("*").Matches(Index(3)))
	assert.True(t, Key("*").Matches(Key("x")))
	assert.True(t, Index(3).Matches(Index(3)))
	assert.False(t, Index(3).Matches(Key("3")))
	assert.False(t, Key("a").Matches(Key("b")))
}

func TestFromValues(t *testing.T) {
	p, err := FromValues([]any{"a", 2, float64(3), "*"})
	require.NoError(t, err)
	assert.Equal(t, Path{Key("a"), Index(2), Index(3), Key("*")}, p)

	_, err = FromValues([]any{1.5})
	assert.Error(t, err)
	_, err = FromValues([]any{true})
	assert.Error(t, err)
}

func TestPathString(t *testing.T) {
	assert.Equal(t, `["a",5,"c"]`, Of("a", 5, "c").String())
	assert.Equal(t, `[]`, Path{}.String())
}
