// Package headless runs the emulator without a window, for scripted runs
// and benchmarks. Frames are advanced with a fixed frame interval.
package headless

import (
	"context"
	"fmt"
	"io"

	"github.com/c8vm/chip8/internal/config"
	"github.com/c8vm/chip8/internal/emulator"
	"github.com/c8vm/chip8/internal/frontend"
	"github.com/retroenv/retrogolib/log"
)

// Stats summarizes a headless run.
type Stats struct {
	Frames  int
	Cycles  int
	Redraws int
	Ticks   int
}

type Runner struct {
	emu    *emulator.Emulator
	opts   config.Options
	logger *log.Logger
	out    io.Writer

	stats Stats
}

// New returns a runner that prints the final machine state to out.
func New(emu *emulator.Emulator, opts config.Options, logger *log.Logger, out io.Writer) *Runner {
	return &Runner{
		emu:    emu,
		opts:   opts,
		logger: logger,
		out:    out,
	}
}

// Run executes the configured number of frames, or until ctx is cancelled
// when no frame budget is set.
func (r *Runner) Run(ctx context.Context) error {
	interval := r.opts.FrameInterval()

	for r.opts.Frames == 0 || r.stats.Frames < r.opts.Frames {
		if ctx.Err() != nil {
			break
		}

		res, err := r.emu.Frame(interval, emulator.Input{})
		if err != nil {
			r.report()
			return err
		}
		if res.Exit {
			break
		}

		r.stats.Frames++
		r.stats.Cycles += res.Cycles
		r.stats.Ticks += res.Ticks
		if res.Redraw {
			r.stats.Redraws++
		}
	}

	return r.report()
}

func (r *Runner) Stats() Stats {
	return r.stats
}

func (r *Runner) report() error {
	r.logger.Info("Headless run finished",
		log.Int("frames", r.stats.Frames),
		log.Int("cycles", r.stats.Cycles),
		log.Int("redraws", r.stats.Redraws))

	sys := r.emu.System()
	sys.DebugInfo().Print(r.out)
	if err := frontend.WriteASCII(r.out, sys.Framebuffer()); err != nil {
		return fmt.Errorf("writing screen: %w", err)
	}
	return nil
}
