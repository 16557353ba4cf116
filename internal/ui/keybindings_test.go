package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mcnuttandrew/prong-sub001/pkg/settings"
)

func TestBindings(t *testing.T) {
	def := Bindings(settings.KeymapDefault)
	assert.Equal(t, ActionQuit, def["q"])
	assert.Equal(t, ActionUseTooltip, def["tab"])
	_, ok := def["j"]
	assert.False(t, ok, "hjkl only in vim mode")

	vim := Bindings(settings.KeymapVim)
	assert.Equal(t, ActionDown, vim["j"])
	assert.Equal(t, ActionLeft, vim["h"])
	assert.Equal(t, ActionActivate, vim["enter"])

	vim["tab"] = ActionNone
	assert.Equal(t, ActionUseTooltip, DefaultKeyBindings["tab"], "presets are copied")
}
