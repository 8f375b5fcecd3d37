package chip8

import (
	"math/rand/v2"
	"time"
)

const TimerHz = 60

// StepResult carries the signals produced by a single instruction.
type StepResult struct {
	Redraw bool // the framebuffer changed and should be presented
	Beep   bool // the sound timer was loaded with a nonzero value
}

// System owns the complete machine state. It is not safe for concurrent use.
type System struct {
	cpu CPU
	mem Memory
	gfx Graphics

	keys [16]bool

	delayTimer uint8
	soundTimer uint8

	rom    []byte
	rand   *rand.Rand
	cycles uint64
	result StepResult
	halt   error
}

type Option func(*System)

// WithRand sets the source used by the RND instruction.
func WithRand(r *rand.Rand) Option {
	return func(sys *System) {
		sys.rand = r
	}
}

// New creates a machine with rom loaded at StartAddress.
func New(rom []byte, opts ...Option) (*System, error) {
	sys := &System{}
	for _, opt := range opts {
		opt(sys)
	}
	if sys.rand == nil {
		seed := uint64(time.Now().UnixNano())
		sys.rand = rand.New(rand.NewPCG(seed, seed>>1|1))
	}

	sys.Initialize()
	if err := sys.mem.loadROM(rom); err != nil {
		return nil, err
	}
	sys.rom = append([]byte(nil), rom...)
	return sys, nil
}

// Initialize clears all state and installs the font. The program area is left empty.
func (sys *System) Initialize() {
	sys.cpu.reset()
	sys.mem.clear()
	sys.mem.loadFont()
	sys.gfx.clear()

	for i := 0; i < len(sys.keys); i++ {
		sys.keys[i] = false
	}

	sys.delayTimer = 0
	sys.soundTimer = 0
	sys.cycles = 0
	sys.result = StepResult{}
	sys.halt = nil
}

// Reset returns the machine to its state right after New.
func (sys *System) Reset() {
	sys.Initialize()
	copy(sys.mem[StartAddress:], sys.rom)
}

// Step executes exactly one instruction. Errors are fatal: once Step failed
// the machine is halted and keeps returning the same error.
func (sys *System) Step() (StepResult, error) {
	if sys.halt != nil {
		return StepResult{}, sys.halt
	}
	sys.result = StepResult{}

	pc := sys.cpu.PC
	opc, err := sys.mem.fetchOpcode(pc)
	if err != nil {
		return sys.fail(pc, 0, err)
	}
	sys.cpu.PC += 2

	ins, err := Decode(opc)
	if err == nil {
		err = sys.execute(ins)
	}
	if err != nil {
		return sys.fail(pc, opc, err)
	}

	sys.cycles++
	return sys.result, nil
}

func (sys *System) fail(pc, opc uint16, err error) (StepResult, error) {
	sys.halt = &ExecError{PC: pc, Opcode: opc, Err: err}
	return StepResult{}, sys.halt
}

// Halted returns the error that stopped the machine, if any.
func (sys *System) Halted() error {
	return sys.halt
}

// TickTimers advances both countdown timers by one 60 Hz period.
func (sys *System) TickTimers() {
	if sys.delayTimer > 0 {
		sys.delayTimer--
	}
	if sys.soundTimer > 0 {
		sys.soundTimer--
	}
}

func (sys *System) DelayTimer() uint8 {
	return sys.delayTimer
}

func (sys *System) SoundTimer() uint8 {
	return sys.soundTimer
}

// SoundActive reports whether the buzzer should currently sound.
func (sys *System) SoundActive() bool {
	return sys.soundTimer != 0
}

func (sys *System) SetKeys(keys [16]bool) {
	sys.keys = keys
}

func (sys *System) Keys() [16]bool {
	return sys.keys
}

// KeyDown presses key 0x0-0xF. Other indices are ignored.
func (sys *System) KeyDown(key int) {
	if key >= 0 && key < len(sys.keys) {
		sys.keys[key] = true
	}
}

// KeyUp releases key 0x0-0xF. Other indices are ignored.
func (sys *System) KeyUp(key int) {
	if key >= 0 && key < len(sys.keys) {
		sys.keys[key] = false
	}
}

func (sys *System) Pixel(x, y int) bool {
	return sys.gfx.getPixel(x, y)
}

func (sys *System) Framebuffer() Framebuffer {
	return sys.gfx.framebuffer()
}
