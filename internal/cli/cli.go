// Package cli handles command line interface logic
package cli

import (
	"flag"
	"fmt"
	"io"

	"github.com/c8vm/chip8/internal/config"
)

// ParseFlags parses the command line arguments, excluding the program name,
// and returns validated emulator options.
func ParseFlags(args []string) (config.Options, error) {
	flags := flag.NewFlagSet("chip8", flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	opts := config.Default()
	readOptionFlags(flags, &opts)

	if err := flags.Parse(args); err != nil {
		return opts, &UsageError{flags: flags, msg: err.Error()}
	}

	rest := flags.Args()
	switch {
	case len(rest) == 0:
		return opts, &UsageError{flags: flags, msg: "no ROM file given"}
	case len(rest) > 1:
		return opts, &UsageError{
			flags: flags,
			msg:   fmt.Sprintf("unexpected argument %s after ROM file, please pass the ROM file as last argument", rest[1]),
		}
	}
	opts.ROM = rest[0]

	if err := opts.Validate(); err != nil {
		return opts, err
	}
	return opts, nil
}

func readOptionFlags(flags *flag.FlagSet, opts *config.Options) {
	flags.StringVar(&opts.Frontend, "frontend", opts.Frontend, "display frontend: gl, ebiten or headless")
	flags.IntVar(&opts.CPUHz, "cpu", opts.CPUHz, "instructions executed per second")
	flags.IntVar(&opts.FPS, "fps", opts.FPS, "frames presented per second")
	flags.IntVar(&opts.Scale, "scale", opts.Scale, "window pixels per CHIP-8 pixel")
	flags.BoolVar(&opts.Debug, "debug", false, "show the register overlay")
	flags.BoolVar(&opts.Step, "step", false, "start in single step mode")
	flags.BoolVar(&opts.Trace, "trace", false, "log every executed instruction, implies -debug-log")
	flags.StringVar(&opts.DumpPath, "dump", opts.DumpPath, "file the memory dump is written to")
	flags.IntVar(&opts.Frames, "frames", 0, "number of frames to run in headless mode, 0 runs until exit")
	flags.Uint64Var(&opts.Seed, "seed", 0, "seed for the random number generator, 0 picks a random seed")
	flags.BoolVar(&opts.Mute, "mute", false, "disable sound output")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
	flags.BoolVar(&opts.LogDebug, "debug-log", false, "enable debug logging")
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

// ShowUsage prints the command usage and all flag defaults to w.
func (e *UsageError) ShowUsage(w io.Writer) {
	fmt.Fprintf(w, "usage: chip8 [options] <ROM file>\n\n")
	e.flags.SetOutput(w)
	e.flags.PrintDefaults()
	fmt.Fprintln(w)
}
