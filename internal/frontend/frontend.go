// Package frontend contains helpers shared by the display frontends.
package frontend

import (
	"context"
	"io"

	"github.com/c8vm/chip8"
)

// Frontend presents an emulator until the user exits, the machine fails or
// ctx is cancelled.
type Frontend interface {
	Run(ctx context.Context) error
}

const (
	pixelOn  = 0xFF
	pixelOff = 0x00
)

// Format describes the layout of a pixel buffer.
type Format struct {
	BytesPerPixel int  // 3 for RGB, 4 for RGBA
	FlipY         bool // first row in the buffer is the bottom screen row
}

var (
	RGBA      = Format{BytesPerPixel: 4}
	RGBBottom = Format{BytesPerPixel: 3, FlipY: true}
)

// BufferSize returns the number of bytes needed to hold one frame.
func (f Format) BufferSize() int {
	return chip8.GfxWidth * chip8.GfxHeight * f.BytesPerPixel
}

// Fill converts the framebuffer into white on black pixels in dst.
func Fill(dst []byte, fb chip8.Framebuffer, format Format) {
	for y := 0; y < chip8.GfxHeight; y++ {
		row := y
		if format.FlipY {
			row = chip8.GfxHeight - y - 1
		}

		for x := 0; x < chip8.GfxWidth; x++ {
			offset := (row*chip8.GfxWidth + x) * format.BytesPerPixel
			c := byte(pixelOff)
			if fb[y][x] {
				c = pixelOn
			}
			dst[offset], dst[offset+1], dst[offset+2] = c, c, c
			if format.BytesPerPixel == 4 {
				dst[offset+3] = 0xFF
			}
		}
	}
}

// WriteASCII prints the framebuffer with '#' for set pixels.
func WriteASCII(w io.Writer, fb chip8.Framebuffer) error {
	line := make([]byte, chip8.GfxWidth+1)
	line[chip8.GfxWidth] = '\n'

	for y := 0; y < chip8.GfxHeight; y++ {
		for x := 0; x < chip8.GfxWidth; x++ {
			if fb[y][x] {
				line[x] = '#'
			} else {
				line[x] = '.'
			}
		}
		if _, err := w.Write(line); err != nil {
			return err
		}
	}
	return nil
}
