// Package emulator drives a chip8.System in wall-clock time. Frontends feed it
// the elapsed time and the current input once per presented frame.
package emulator

import (
	"fmt"
	"os"
	"time"

	"github.com/c8vm/chip8"
	"github.com/c8vm/chip8/internal/audio"
	"github.com/c8vm/chip8/internal/config"
	"github.com/c8vm/chip8/internal/debugger"
	"github.com/retroenv/retrogolib/log"
)

// maxCatchUp bounds the time that is replayed after a stall, for example
// when the window was dragged or the process was suspended.
const maxCatchUp = 250 * time.Millisecond

const timerInterval = time.Second / chip8.TimerHz

// Controls are the emulator hotkeys, each set for the frame it was pressed in.
type Controls struct {
	ToggleDebug bool
	ToggleStep  bool
	NextStep    bool
	DumpMemory  bool
	Reset       bool
	Exit        bool
}

// Input is the host input state sampled for one frame.
type Input struct {
	Keys     [16]bool
	Controls Controls
}

// FrameResult reports what happened during one frame.
type FrameResult struct {
	Redraw bool // the framebuffer changed
	Exit   bool
	Cycles int // instructions executed
	Ticks  int // 60 Hz timer periods elapsed
}

// Overlay displays the machine state while debugging.
type Overlay interface {
	Render(info chip8.DebugInfo, debug, step bool)
}

type Emulator struct {
	sys     *chip8.System
	opts    config.Options
	logger  *log.Logger
	beeper  audio.Beeper
	overlay Overlay

	cpuInterval time.Duration
	cpuAcc      time.Duration
	timerAcc    time.Duration

	debug bool
	step  bool
}

// New returns an emulator for sys. A nil beeper is replaced by a silent one,
// a nil overlay disables the debug view.
func New(sys *chip8.System, opts config.Options, logger *log.Logger, beeper audio.Beeper, overlay Overlay) *Emulator {
	if beeper == nil {
		beeper = &audio.Silent{}
	}
	return &Emulator{
		sys:         sys,
		opts:        opts,
		logger:      logger,
		beeper:      beeper,
		overlay:     overlay,
		cpuInterval: opts.CPUInterval(),
		debug:       opts.Debug,
		step:        opts.Step,
	}
}

func (e *Emulator) System() *chip8.System {
	return e.sys
}

func (e *Emulator) Debug() bool {
	return e.debug
}

func (e *Emulator) Stepping() bool {
	return e.step
}

// Frame advances the machine by elapsed wall-clock time. A returned error
// is the fatal execution error of the machine.
func (e *Emulator) Frame(elapsed time.Duration, in Input) (FrameResult, error) {
	var res FrameResult
	if in.Controls.Exit {
		res.Exit = true
		return res, nil
	}

	refresh := e.handleControls(in.Controls, &res)
	e.sys.SetKeys(in.Keys)

	cycles := e.cycleBudget(elapsed, in.Controls.NextStep)
	for i := 0; i < cycles; i++ {
		if e.opts.Trace {
			e.trace()
		}

		step, err := e.sys.Step()
		if err != nil {
			e.beeper.SetActive(false)
			return res, fmt.Errorf("running ROM: %w", err)
		}
		res.Cycles++

		if step.Beep {
			e.logger.Debug("Sound timer started", log.Int("duration", int(e.sys.SoundTimer())))
		}
		if step.Redraw {
			// present every draw, the remaining budget carries over
			res.Redraw = true
			e.cpuAcc += time.Duration(cycles-i-1) * e.cpuInterval
			break
		}
	}

	if !e.step {
		res.Ticks = e.tickTimers(elapsed)
	}
	e.beeper.SetActive(e.sys.SoundActive())

	if e.overlay != nil && (refresh || (res.Cycles > 0 && (e.debug || e.step))) {
		e.overlay.Render(e.sys.DebugInfo(), e.debug, e.step)
	}
	return res, nil
}

func (e *Emulator) handleControls(c Controls, res *FrameResult) bool {
	refresh := false

	if c.ToggleDebug {
		e.debug = !e.debug
		refresh = true
		e.logger.Debug("Debug view toggled", log.String("state", onOff(e.debug)))
	}
	if c.ToggleStep {
		e.step = !e.step
		e.cpuAcc = 0
		refresh = true
		e.logger.Debug("Step mode toggled", log.String("state", onOff(e.step)))
	}
	if c.DumpMemory {
		if err := WriteDump(e.opts.DumpPath, e.sys.MemDump()); err != nil {
			e.logger.Warn("Dumping memory failed", log.Err(err))
		} else {
			e.logger.Info("Memory dumped", log.String("file", e.opts.DumpPath))
		}
	}
	if c.Reset {
		e.sys.Reset()
		e.cpuAcc = 0
		e.timerAcc = 0
		res.Redraw = true
		refresh = true
		e.logger.Info("Machine reset")
	}
	return refresh
}

// cycleBudget converts elapsed time into a number of instructions. In step
// mode only an explicit single step request executes anything.
func (e *Emulator) cycleBudget(elapsed time.Duration, next bool) int {
	if e.step {
		if next {
			return 1
		}
		return 0
	}

	e.cpuAcc += elapsed
	if e.cpuAcc > maxCatchUp {
		e.cpuAcc = maxCatchUp
	}
	cycles := int(e.cpuAcc / e.cpuInterval)
	e.cpuAcc -= time.Duration(cycles) * e.cpuInterval
	return cycles
}

func (e *Emulator) tickTimers(elapsed time.Duration) int {
	e.timerAcc += elapsed
	if e.timerAcc > maxCatchUp {
		e.timerAcc = maxCatchUp
	}

	ticks := 0
	for e.timerAcc >= timerInterval {
		e.sys.TickTimers()
		e.timerAcc -= timerInterval
		ticks++
	}
	return ticks
}

func (e *Emulator) trace() {
	info := e.sys.DebugInfo()
	e.logger.Debug("Executing",
		log.Hex("pc", info.PC),
		log.Hex("opcode", info.Opcode),
		log.String("instruction", debugger.Disassemble(info.Opcode)))
}

// Close silences and releases the audio output.
func (e *Emulator) Close() error {
	e.beeper.SetActive(false)
	return e.beeper.Close()
}

// LoadROM reads a ROM image from disk and creates a machine for it.
func LoadROM(path string, opts ...chip8.Option) (*chip8.System, error) {
	rom, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ROM file: %w", err)
	}

	sys, err := chip8.New(rom, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading ROM '%s': %w", path, err)
	}
	return sys, nil
}

// WriteDump stores a raw memory image.
func WriteDump(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing memory dump: %w", err)
	}
	return nil
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
