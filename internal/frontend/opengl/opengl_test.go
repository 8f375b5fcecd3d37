package opengl

import (
	"testing"

	"github.com/c8vm/chip8/internal/emulator"
	"github.com/go-gl/glfw/v3.2/glfw"
	"github.com/retroenv/retrogolib/assert"
)

func TestKeyMapCoversKeypad(t *testing.T) {
	var seen [16]bool
	for _, k := range keyMap {
		assert.False(t, seen[k], "key 0x%X mapped twice", k)
		seen[k] = true
	}
	assert.Equal(t, 16, len(keyMap))
}

func TestOnKey(t *testing.T) {
	w := &Window{}

	w.onKey(nil, glfw.KeyV, 0, glfw.Press, 0)
	assert.True(t, w.keys[0xF])
	w.onKey(nil, glfw.KeyV, 0, glfw.Repeat, 0)
	assert.True(t, w.keys[0xF])
	w.onKey(nil, glfw.KeyV, 0, glfw.Release, 0)
	assert.False(t, w.keys[0xF])

	w.onKey(nil, glfw.KeyF1, 0, glfw.Press, 0)
	w.onKey(nil, glfw.KeyF3, 0, glfw.Press, 0)
	w.onKey(nil, glfw.KeyEscape, 0, glfw.Release, 0)
	assert.Equal(t, emulator.Controls{ToggleDebug: true, NextStep: true}, w.controls)
}
