// Package main implements the CHIP-8 emulator command.
package main

import (
	"context"
	"errors"
	"math/rand/v2"
	"os"
	"runtime"
	"time"

	"github.com/c8vm/chip8"
	"github.com/c8vm/chip8/internal/audio"
	"github.com/c8vm/chip8/internal/cli"
	"github.com/c8vm/chip8/internal/config"
	"github.com/c8vm/chip8/internal/debugger"
	"github.com/c8vm/chip8/internal/emulator"
	"github.com/c8vm/chip8/internal/frontend"
	"github.com/c8vm/chip8/internal/frontend/ebitengine"
	"github.com/c8vm/chip8/internal/frontend/headless"
	"github.com/c8vm/chip8/internal/frontend/opengl"
	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func init() {
	// GLFW event handling must run on the main OS thread
	runtime.LockOSThread()
}

func main() {
	ctx := app.Context()

	opts, err := cli.ParseFlags(os.Args[1:])
	if err != nil {
		logger := config.CreateLogger(opts.LogDebug, opts.Quiet)
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			printBanner(logger, opts)
			logger.Error(usageErr.Error())
			usageErr.ShowUsage(os.Stderr)
		} else {
			logger.Fatal(err.Error())
		}
		os.Exit(1)
	}

	logger := config.CreateLogger(opts.LogDebug || opts.Trace, opts.Quiet)
	printBanner(logger, opts)

	if err := run(ctx, logger, opts); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("Emulation cancelled")
			return
		}
		logger.Fatal("Emulation failed", log.Err(err))
	}
}

func run(ctx context.Context, logger *log.Logger, opts config.Options) error {
	sys, err := emulator.LoadROM(opts.ROM, chip8.WithRand(newRand(opts.Seed)))
	if err != nil {
		return err
	}
	logger.Debug("ROM loaded", log.String("file", opts.ROM))

	beeper := createBeeper(logger, opts)
	var overlay emulator.Overlay
	if opts.Frontend != config.FrontendHeadless {
		overlay = debugger.NewOverlay()
	}

	emu := emulator.New(sys, opts, logger, beeper, overlay)
	defer func() {
		if err := emu.Close(); err != nil {
			logger.Error("Closing audio failed", log.Err(err))
		}
	}()

	var fe frontend.Frontend
	switch opts.Frontend {
	case config.FrontendEbiten:
		fe = ebitengine.New(emu, opts)
	case config.FrontendHeadless:
		fe = headless.New(emu, opts, logger, os.Stdout)
	default:
		fe = opengl.New(emu, opts, logger)
	}

	if err := fe.Run(ctx); err != nil {
		return err
	}
	return ctx.Err()
}

func createBeeper(logger *log.Logger, opts config.Options) audio.Beeper {
	if opts.Mute || opts.Frontend == config.FrontendHeadless {
		return &audio.Silent{}
	}

	beeper, err := audio.NewOtoBeeper(audio.SampleRate, audio.ToneFrequency)
	if err != nil {
		logger.Warn("Audio output unavailable, sound disabled", log.Err(err))
		return &audio.Silent{}
	}
	return beeper
}

func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed>>1|1))
}

func printBanner(logger *log.Logger, opts config.Options) {
	if opts.Quiet {
		return
	}
	logger.Info("chip8", log.String("version", buildinfo.Version(version, commit, date)))
}
