// Package opengl presents the emulator in a GLFW window, rendering the
// framebuffer as a texture on a full screen triangle.
package opengl

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unsafe"

	"github.com/c8vm/chip8"
	"github.com/c8vm/chip8/internal/config"
	"github.com/c8vm/chip8/internal/emulator"
	"github.com/c8vm/chip8/internal/frontend"
	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/glfw/v3.2/glfw"
	"github.com/retroenv/retrogolib/log"
)

const vertexShader = `
#version 330

noperspective out vec2 TexCoord;

void main(void) {
    TexCoord.x = (gl_VertexID == 2)? 2.0: 0.0;
    TexCoord.y = (gl_VertexID == 1)? 2.0: 0.0;

	gl_Position = vec4(2.0 * TexCoord - 1.0, 0.0, 1.0);
}
`

const fragmentShader = `
#version 330

uniform sampler2D buffer;
noperspective in vec2 TexCoord;

out vec3 outColor;

void main(void) {
	outColor = texture(buffer, TexCoord).rgb;
}
`

var keyMap = map[glfw.Key]int{
	glfw.Key1: 0x1,
	glfw.Key2: 0x2,
	glfw.Key3: 0x3,
	glfw.Key4: 0xC,
	glfw.KeyQ: 0x4,
	glfw.KeyW: 0x5,
	glfw.KeyE: 0x6,
	glfw.KeyR: 0xD,
	glfw.KeyA: 0x7,
	glfw.KeyS: 0x8,
	glfw.KeyD: 0x9,
	glfw.KeyF: 0xE,
	glfw.KeyZ: 0xA,
	glfw.KeyX: 0x0,
	glfw.KeyC: 0xB,
	glfw.KeyV: 0xF,
}

// Window is the GLFW frontend. It must run on the main OS thread.
type Window struct {
	emu    *emulator.Emulator
	opts   config.Options
	logger *log.Logger

	screenData            []byte
	window                *glfw.Window
	fullScreenTriangleVAO uint32
	bufferTexture         uint32
	shaderProgram         uint32

	keys     [16]bool
	controls emulator.Controls
}

func New(emu *emulator.Emulator, opts config.Options, logger *log.Logger) *Window {
	return &Window{
		emu:        emu,
		opts:       opts,
		logger:     logger,
		screenData: make([]byte, frontend.RGBBottom.BufferSize()),
	}
}

func (w *Window) Run(ctx context.Context) error {
	if err := w.initialize(); err != nil {
		return err
	}
	defer w.terminate()

	return w.loop(ctx)
}

func (w *Window) initialize() error {
	var err error
	if err = glfw.Init(); err != nil {
		return fmt.Errorf("initializing glfw: %w", err)
	}

	// Create window
	glfw.WindowHint(glfw.Resizable, glfw.False)
	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	w.window, err = glfw.CreateWindow(chip8.GfxWidth*w.opts.Scale, chip8.GfxHeight*w.opts.Scale, "CHIP-8", nil, nil)
	if err != nil {
		glfw.Terminate()
		return fmt.Errorf("creating window: %w", err)
	}
	w.window.MakeContextCurrent()
	w.window.SetKeyCallback(w.onKey)

	// Initialize Glow
	if err := gl.Init(); err != nil {
		glfw.Terminate()
		return fmt.Errorf("initializing OpenGL: %w", err)
	}
	w.logger.Debug("OpenGL initialized", log.String("version", gl.GoStr(gl.GetString(gl.VERSION))))

	gl.ClearColor(0.0, 0.0, 0.0, 1.0)

	gl.GenVertexArrays(1, &w.fullScreenTriangleVAO)
	gl.BindVertexArray(w.fullScreenTriangleVAO)

	if err := w.createProgram(); err != nil {
		w.terminate()
		return err
	}

	frontend.Fill(w.screenData, w.emu.System().Framebuffer(), frontend.RGBBottom)

	gl.GenTextures(1, &w.bufferTexture)
	gl.BindTexture(gl.TEXTURE_2D, w.bufferTexture)

	gl.TexImage2D(
		gl.TEXTURE_2D, 0, gl.RGB,
		chip8.GfxWidth, chip8.GfxHeight, 0,
		gl.RGB, gl.UNSIGNED_BYTE, unsafe.Pointer(&w.screenData[0]))

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)

	bufferLoc := gl.GetUniformLocation(w.shaderProgram, gl.Str("buffer"+"\x00"))
	gl.Uniform1i(bufferLoc, 0)

	gl.Disable(gl.DEPTH_TEST)
	gl.UseProgram(w.shaderProgram)
	return nil
}

func (w *Window) createProgram() error {
	w.shaderProgram = gl.CreateProgram()

	vs, err := compileShader(vertexShader, gl.VERTEX_SHADER)
	if err != nil {
		return err
	}
	defer gl.DeleteShader(vs)
	gl.AttachShader(w.shaderProgram, vs)
	defer gl.DetachShader(w.shaderProgram, vs)

	fs, err := compileShader(fragmentShader, gl.FRAGMENT_SHADER)
	if err != nil {
		return err
	}
	defer gl.DeleteShader(fs)
	gl.AttachShader(w.shaderProgram, fs)
	defer gl.DetachShader(w.shaderProgram, fs)

	var status int32
	gl.LinkProgram(w.shaderProgram)
	gl.GetProgramiv(w.shaderProgram, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		return errors.New("failed to link shader program")
	}
	return nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)

	csources, free := gl.Strs(source)
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)

		infoLog := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(infoLog))

		return 0, fmt.Errorf("failed to compile %v: %v", source, infoLog)
	}

	return shader, nil
}

func (w *Window) onKey(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
	switch action {
	case glfw.Press:
		if c8Key, ok := keyMap[key]; ok {
			w.keys[c8Key] = true
			return
		}
		w.onControl(key)
	case glfw.Release:
		if c8Key, ok := keyMap[key]; ok {
			w.keys[c8Key] = false
		}
	}
}

// onControl latches a hotkey until the next frame consumes it.
func (w *Window) onControl(key glfw.Key) {
	switch key {
	case glfw.KeyF1:
		w.controls.ToggleDebug = true
	case glfw.KeyF2:
		w.controls.ToggleStep = true
	case glfw.KeyF3:
		w.controls.NextStep = true
	case glfw.KeyF5:
		w.controls.DumpMemory = true
	case glfw.KeyF8:
		w.controls.Reset = true
	case glfw.KeyEscape:
		w.controls.Exit = true
	}
}

func (w *Window) updateTexture() {
	frontend.Fill(w.screenData, w.emu.System().Framebuffer(), frontend.RGBBottom)

	gl.TexSubImage2D(
		gl.TEXTURE_2D, 0, 0, 0,
		chip8.GfxWidth, chip8.GfxHeight, gl.RGB, gl.UNSIGNED_BYTE,
		unsafe.Pointer(&w.screenData[0]))

	gl.BindVertexArray(w.fullScreenTriangleVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, 3)
}

func (w *Window) present() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	w.updateTexture()
	w.window.SwapBuffers()
}

func (w *Window) loop(ctx context.Context) error {
	slice := w.opts.FrameInterval()
	last := time.Now()
	w.present()

	for !w.window.ShouldClose() {
		if ctx.Err() != nil {
			return nil
		}
		start := time.Now()

		glfw.PollEvents()
		in := emulator.Input{Keys: w.keys, Controls: w.controls}
		w.controls = emulator.Controls{}

		res, err := w.emu.Frame(start.Sub(last), in)
		last = start
		if err != nil {
			return err
		}
		if res.Exit {
			return nil
		}
		if res.Redraw {
			w.present()
		}

		if elapsed := time.Since(start); elapsed < slice {
			time.Sleep(slice - elapsed)
		}
	}
	return nil
}

func (w *Window) terminate() {
	gl.DeleteVertexArrays(1, &w.fullScreenTriangleVAO)
	gl.DeleteTextures(1, &w.bufferTexture)
	gl.DeleteProgram(w.shaderProgram)
	glfw.Terminate()
}
