package chip8

import "math/bits"

const (
	GfxWidth  = 64
	GfxHeight = 32
)

// Framebuffer is an unpacked copy of the display, indexed [y][x].
type Framebuffer [GfxHeight][GfxWidth]bool

// Graphics keeps one 64-bit word per scanline, the leftmost pixel in bit 63.
type Graphics struct {
	rows [GfxHeight]uint64
}

func (g *Graphics) clear() {
	for i := 0; i < len(g.rows); i++ {
		g.rows[i] = 0
	}
}

func (g *Graphics) getPixel(x, y int) bool {
	x, y = wrap(x, GfxWidth), wrap(y, GfxHeight)
	return g.rows[y]>>(GfxWidth-1-x)&1 != 0
}

// draw XORs the sprite rows onto the display at (x, y), wrapping on both axes.
// It reports whether any lit pixel was switched off.
func (g *Graphics) draw(sprite []uint8, x, y uint8) bool {
	hit := false
	col := int(x) % GfxWidth
	for r, line := range sprite {
		row := (int(y) + r) % GfxHeight
		mask := bits.RotateLeft64(uint64(line)<<(GfxWidth-8), -col)
		if g.rows[row]&mask != 0 {
			hit = true
		}
		g.rows[row] ^= mask
	}
	return hit
}

func (g *Graphics) framebuffer() Framebuffer {
	var fb Framebuffer
	for y, row := range g.rows {
		for x := 0; x < GfxWidth; x++ {
			fb[y][x] = row>>(GfxWidth-1-x)&1 != 0
		}
	}
	return fb
}

func wrap(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}
