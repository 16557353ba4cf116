package settings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		run  *Run
	}{
		{name: "empty", run: &Run{}},
		{name: "defaults", run: NewCliParams()},
		{
			name: "interactive",
			run: &Run{
				NoColor:    true,
				Keymap:     KeymapVim,
				ConfigFile: "/etc/prong/projections.yaml",
				StatePath:  "/tmp/prong/state.yaml",
			},
		},
		{name: "quiet warn level", run: &Run{MinLogLevel: 1, IsQuiet: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := IntoContext(context.Background(), tt.run)
			got, ok := FromContext(ctx)
			require.True(t, ok)
			assert.Same(t, tt.run, got)
			assert.Equal(t, *tt.run, *got)
		})
	}
}

func TestFromContextMissing(t *testing.T) {
	got, ok := FromContext(context.Background())
	assert.False(t, ok)
	assert.Nil(t, got)

	ctx := context.WithValue(context.Background(), contextKey("other"), &Run{NoColor: true})
	_, ok = FromContext(ctx)
	assert.False(t, ok)
}

func TestInnerContextWins(t *testing.T) {
	outer := &Run{ConfigFile: "outer.yaml"}
	inner := &Run{ConfigFile: "inner.yaml", StatePath: ""}
	ctx := IntoContext(IntoContext(context.Background(), outer), inner)

	got := FromContextOrDefault(ctx)
	assert.Equal(t, "inner.yaml", got.ConfigFile)
	assert.Empty(t, got.StatePath, "an empty state path disables persistence")
}
