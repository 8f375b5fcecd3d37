// Package config handles emulator configuration and setup
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/retroenv/retrogolib/log"
)

const (
	FrontendGL       = "gl"
	FrontendEbiten   = "ebiten"
	FrontendHeadless = "headless"
)

const (
	DefaultCPUHz    = 500
	DefaultFPS      = 60
	DefaultScale    = 10
	DefaultDumpPath = "memdump.bin"

	// MaxRate bounds CPUHz and FPS so their intervals stay well above zero.
	MaxRate = 1_000_000
)

var ErrInvalidOption = errors.New("invalid option")

// Options contains all settings of an emulator run.
type Options struct {
	ROM      string
	Frontend string

	CPUHz int
	FPS   int
	Scale int

	Debug bool // start with the debug overlay enabled
	Step  bool // start in single step mode
	Trace bool // log every executed instruction

	DumpPath string
	Frames   int // frame budget of the headless frontend, 0 runs until exit
	Seed     uint64
	Mute     bool

	Quiet    bool
	LogDebug bool
}

// Default returns the options used when no flags are given.
func Default() Options {
	return Options{
		Frontend: FrontendGL,
		CPUHz:    DefaultCPUHz,
		FPS:      DefaultFPS,
		Scale:    DefaultScale,
		DumpPath: DefaultDumpPath,
	}
}

// Validate checks option values and combinations.
func (o Options) Validate() error {
	switch o.Frontend {
	case FrontendGL, FrontendEbiten, FrontendHeadless:
	default:
		return fmt.Errorf("%w: unsupported frontend '%s'", ErrInvalidOption, o.Frontend)
	}
	if o.CPUHz <= 0 {
		return fmt.Errorf("%w: cpu rate must be positive, got %d", ErrInvalidOption, o.CPUHz)
	}
	if o.CPUHz > MaxRate {
		return fmt.Errorf("%w: cpu rate must not exceed %d, got %d", ErrInvalidOption, MaxRate, o.CPUHz)
	}
	if o.FPS <= 0 {
		return fmt.Errorf("%w: frame rate must be positive, got %d", ErrInvalidOption, o.FPS)
	}
	if o.FPS > MaxRate {
		return fmt.Errorf("%w: frame rate must not exceed %d, got %d", ErrInvalidOption, MaxRate, o.FPS)
	}
	if o.Scale <= 0 {
		return fmt.Errorf("%w: scale must be positive, got %d", ErrInvalidOption, o.Scale)
	}
	if o.Frames < 0 {
		return fmt.Errorf("%w: frame count must not be negative, got %d", ErrInvalidOption, o.Frames)
	}
	if o.DumpPath == "" {
		return fmt.Errorf("%w: memory dump path is empty", ErrInvalidOption)
	}
	return nil
}

// CPUInterval is the wall-clock duration of one instruction.
func (o Options) CPUInterval() time.Duration {
	return time.Second / time.Duration(o.CPUHz)
}

// FrameInterval is the wall-clock duration of one presented frame.
func (o Options) FrameInterval() time.Duration {
	return time.Second / time.Duration(o.FPS)
}

// CreateLogger creates a logger with appropriate settings
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}
