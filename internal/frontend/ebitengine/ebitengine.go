// Package ebitengine presents the emulator in an Ebitengine window.
package ebitengine

import (
	"context"
	"fmt"

	"github.com/c8vm/chip8"
	"github.com/c8vm/chip8/internal/config"
	"github.com/c8vm/chip8/internal/debugger"
	"github.com/c8vm/chip8/internal/emulator"
	"github.com/c8vm/chip8/internal/frontend"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// keypad lists the host keys in CHIP-8 key order 0 to F.
var keypad = [16]ebiten.Key{
	ebiten.KeyX, ebiten.Key1, ebiten.Key2, ebiten.Key3,
	ebiten.KeyQ, ebiten.KeyW, ebiten.KeyE, ebiten.KeyA,
	ebiten.KeyS, ebiten.KeyD, ebiten.KeyZ, ebiten.KeyC,
	ebiten.Key4, ebiten.KeyR, ebiten.KeyF, ebiten.KeyV,
}

// Game implements ebiten.Game. Every tick is one emulator frame.
type Game struct {
	ctx  context.Context
	emu  *emulator.Emulator
	opts config.Options

	img    *ebiten.Image
	pixels []byte
	err    error
}

func New(emu *emulator.Emulator, opts config.Options) *Game {
	return &Game{
		emu:    emu,
		opts:   opts,
		pixels: make([]byte, frontend.RGBA.BufferSize()),
	}
}

func (g *Game) Run(ctx context.Context) error {
	g.ctx = ctx
	g.img = ebiten.NewImage(chip8.GfxWidth, chip8.GfxHeight)
	g.refresh()

	ebiten.SetWindowSize(chip8.GfxWidth*g.opts.Scale, chip8.GfxHeight*g.opts.Scale)
	ebiten.SetWindowTitle("CHIP-8")
	ebiten.SetTPS(g.opts.FPS)

	if err := ebiten.RunGame(g); err != nil {
		return fmt.Errorf("running game: %w", err)
	}
	return g.err
}

func (g *Game) Update() error {
	if g.ctx != nil && g.ctx.Err() != nil {
		return ebiten.Termination
	}

	in := readInput(ebiten.IsKeyPressed, inpututil.IsKeyJustPressed)
	res, err := g.emu.Frame(g.opts.FrameInterval(), in)
	if err != nil {
		// RunGame swallows Termination, keep the cause for Run
		g.err = err
		return ebiten.Termination
	}
	if res.Exit {
		return ebiten.Termination
	}
	if res.Redraw {
		g.refresh()
	}
	return nil
}

func (g *Game) refresh() {
	frontend.Fill(g.pixels, g.emu.System().Framebuffer(), frontend.RGBA)
	g.img.WritePixels(g.pixels)
}

func (g *Game) Draw(screen *ebiten.Image) {
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(g.opts.Scale), float64(g.opts.Scale))
	screen.DrawImage(g.img, op)

	if g.emu.Debug() || g.emu.Stepping() {
		ebitenutil.DebugPrint(screen, debugText(g.emu.System().DebugInfo()))
	}
}

func (g *Game) Layout(_, _ int) (int, int) {
	return chip8.GfxWidth * g.opts.Scale, chip8.GfxHeight * g.opts.Scale
}

func readInput(pressed, justPressed func(ebiten.Key) bool) emulator.Input {
	var in emulator.Input
	for i, key := range keypad {
		in.Keys[i] = pressed(key)
	}

	in.Controls = emulator.Controls{
		ToggleDebug: justPressed(ebiten.KeyF1),
		ToggleStep:  justPressed(ebiten.KeyF2),
		NextStep:    justPressed(ebiten.KeyF3),
		DumpMemory:  justPressed(ebiten.KeyF5),
		Reset:       justPressed(ebiten.KeyF8),
		Exit:        justPressed(ebiten.KeyEscape),
	}
	return in
}

func debugText(info chip8.DebugInfo) string {
	return info.String() + "Next: " + debugger.Disassemble(info.Opcode)
}
