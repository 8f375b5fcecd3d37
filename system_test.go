package chip8

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/retroenv/retrogolib/assert"
)

// assemble encodes instruction words big-endian, the way they sit in a ROM file.
func assemble(words ...uint16) []byte {
	rom := make([]byte, 0, len(words)*2)
	for _, w := range words {
		rom = append(rom, byte(w>>8), byte(w))
	}
	return rom
}

func newTestSystem(t testing.TB, words ...uint16) *System {
	t.Helper()
	sys, err := New(assemble(words...), WithRand(rand.New(rand.NewPCG(1, 2))))
	if err != nil {
		t.Fatal(err)
	}
	return sys
}

func stepN(t testing.TB, sys *System, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if _, err := sys.Step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		wantErr bool
	}{
		{"empty", 0, false},
		{"single byte", 1, false},
		{"odd length", 17, false},
		{"maximum", MaxROMSize, false},
		{"too large", MaxROMSize + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rom := make([]byte, tt.size)
			for i := range rom {
				rom[i] = byte(i*7 + 3)
			}

			sys, err := New(rom)
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, errors.Is(err, ErrROMTooLarge))
				assert.Nil(t, sys)
				return
			}
			assert.NoError(t, err)

			dump := sys.MemDump()
			if diff := cmp.Diff(rom, dump[StartAddress:StartAddress+tt.size]); diff != "" {
				t.Errorf("program memory (-want, +got)\n%s", diff)
			}
			if diff := cmp.Diff(fontSet[:], dump[FontAddress:FontAddress+len(fontSet)]); diff != "" {
				t.Errorf("font (-want, +got)\n%s", diff)
			}

			info := sys.DebugInfo()
			assert.Equal(t, uint16(StartAddress), info.PC)
			assert.Equal(t, uint8(0), info.SP)
			assert.Equal(t, uint16(0), info.I)
			assert.Equal(t, [16]uint8{}, info.V)
			assert.Equal(t, [16]bool{}, sys.Keys())
			assert.Equal(t, Framebuffer{}, sys.Framebuffer())
		})
	}
}

func TestNewCopiesROM(t *testing.T) {
	rom := assemble(0x6105)
	sys, err := New(rom)
	assert.NoError(t, err)

	rom[0] = 0xFF
	assert.Equal(t, uint8(0x61), sys.MemDump()[StartAddress])
}

func TestStepArithmeticScenario(t *testing.T) {
	sys := newTestSystem(t, 0x6105, 0x6203, 0x8124)
	stepN(t, sys, 3)

	info := sys.DebugInfo()
	assert.Equal(t, uint8(8), info.V[1])
	assert.Equal(t, uint8(3), info.V[2])
	assert.Equal(t, uint8(0), info.V[RegCarry])
	assert.Equal(t, uint16(StartAddress+6), info.PC)
	assert.Equal(t, uint64(3), info.Cycles)
}

func TestClearAndDrawScenario(t *testing.T) {
	sys := newTestSystem(t,
		0x00E0, // CLS
		0xA20A, // LD I, 0x20A
		0x6000, // LD V0, 0
		0xD001, // DRW V0, V0, 1
		0x1208, // JP 0x208
		0xB500, // sprite data at 0x20A
	)

	res, err := sys.Step()
	assert.NoError(t, err)
	assert.True(t, res.Redraw)

	stepN(t, sys, 2)
	res, err = sys.Step()
	assert.NoError(t, err)
	assert.True(t, res.Redraw)
	assert.Equal(t, uint8(0), sys.DebugInfo().V[RegCarry])

	var want Framebuffer
	for x := 0; x < 8; x++ {
		want[0][x] = 0xB5&(0x80>>x) != 0
	}
	if diff := cmp.Diff(want, sys.Framebuffer()); diff != "" {
		t.Errorf("framebuffer (-want, +got)\n%s", diff)
	}
}

func TestDrawTwiceRestoresFramebuffer(t *testing.T) {
	sys := newTestSystem(t,
		0xA000, // LD I, font glyph 0
		0x610A, // LD V1, 10
		0x6205, // LD V2, 5
		0xD125, // DRW V1, V2, 5
		0xD125, // DRW V1, V2, 5
	)
	stepN(t, sys, 3)
	before := sys.Framebuffer()

	stepN(t, sys, 1)
	assert.Equal(t, uint8(0), sys.DebugInfo().V[RegCarry])
	assert.True(t, sys.Pixel(10, 5))
	assert.False(t, sys.Pixel(14, 5))

	stepN(t, sys, 1)
	assert.Equal(t, uint8(1), sys.DebugInfo().V[RegCarry])
	if diff := cmp.Diff(before, sys.Framebuffer()); diff != "" {
		t.Errorf("framebuffer after second draw (-want, +got)\n%s", diff)
	}
}

func TestDrawWrapsAround(t *testing.T) {
	sys := newTestSystem(t,
		0xA20A, // LD I, 0x20A
		0x603E, // LD V0, 62
		0x611F, // LD V1, 31
		0xD012, // DRW V0, V1, 2
		0x1208, // JP 0x208
		0xFF81, // sprite rows
	)
	stepN(t, sys, 4)

	var want Framebuffer
	for i := 0; i < 8; i++ {
		want[31][(62+i)%GfxWidth] = true
	}
	want[0][62] = true
	want[0][(62+7)%GfxWidth] = true
	if diff := cmp.Diff(want, sys.Framebuffer()); diff != "" {
		t.Errorf("framebuffer (-want, +got)\n%s", diff)
	}
	assert.True(t, sys.Pixel(GfxWidth+62, -1))
}

func TestCallReturnRoundTrip(t *testing.T) {
	sys := newTestSystem(t,
		0x2206, // CALL 0x206
		0x6001, // LD V0, 1
		0x1204, // JP 0x204
		0x00EE, // RET
	)
	spBefore := sys.DebugInfo().SP

	stepN(t, sys, 1)
	info := sys.DebugInfo()
	assert.Equal(t, uint16(0x206), info.PC)
	assert.Equal(t, spBefore+1, info.SP)
	assert.Equal(t, uint16(0x202), info.Stack[0])

	stepN(t, sys, 1)
	info = sys.DebugInfo()
	assert.Equal(t, uint16(0x202), info.PC)
	assert.Equal(t, spBefore, info.SP)
}

func TestStackBounds(t *testing.T) {
	t.Run("overflow", func(t *testing.T) {
		sys := newTestSystem(t, 0x2200) // CALL 0x200 forever
		stepN(t, sys, StackDepth)

		_, err := sys.Step()
		assert.True(t, errors.Is(err, ErrStackOverflow))

		var execErr *ExecError
		assert.True(t, errors.As(err, &execErr))
		assert.Equal(t, uint16(0x200), execErr.PC)
		assert.Equal(t, uint16(0x2200), execErr.Opcode)
	})

	t.Run("underflow", func(t *testing.T) {
		sys := newTestSystem(t, 0x00EE)
		_, err := sys.Step()
		assert.True(t, errors.Is(err, ErrStackUnderflow))
	})
}

func TestIllegalInstructionHalts(t *testing.T) {
	sys := newTestSystem(t, 0x6001, 0x8008)
	stepN(t, sys, 1)

	_, err := sys.Step()
	assert.True(t, errors.Is(err, ErrIllegalInstruction))
	assert.Equal(t, "executing opcode 0x8008 at 0x0202: illegal instruction", err.Error())

	_, again := sys.Step()
	assert.Equal(t, err, again)
	assert.Equal(t, err, sys.Halted())

	sys.Reset()
	assert.NoError(t, sys.Halted())
	stepN(t, sys, 1)
	assert.Equal(t, uint8(1), sys.DebugInfo().V[0])
}

func TestFetchOutOfRange(t *testing.T) {
	sys := newTestSystem(t, 0x1FFF) // JP 0xFFF
	stepN(t, sys, 1)
	assert.Equal(t, uint16(0xFFF), sys.DebugInfo().PC)
	assert.Equal(t, uint16(0), sys.DebugInfo().Opcode)

	_, err := sys.Step()
	assert.True(t, errors.Is(err, ErrAddressOutOfRange))
}

func TestTimerDecay(t *testing.T) {
	const n = 7
	sys := newTestSystem(t,
		0x6000|n, // LD V0, n
		0xF015,   // LD DT, V0
		0x1204,   // JP 0x204
	)
	stepN(t, sys, 2)
	assert.Equal(t, uint8(n), sys.DelayTimer())

	stepN(t, sys, 100)
	assert.Equal(t, uint8(n), sys.DelayTimer())

	for i := 0; i < n; i++ {
		assert.Equal(t, uint8(n-i), sys.DelayTimer())
		stepN(t, sys, i*3)
		sys.TickTimers()
	}
	assert.Equal(t, uint8(0), sys.DelayTimer())

	sys.TickTimers()
	assert.Equal(t, uint8(0), sys.DelayTimer())
}

func TestSoundTimer(t *testing.T) {
	sys := newTestSystem(t,
		0x6002, // LD V0, 2
		0xF018, // LD ST, V0
		0x6100, // LD V1, 0
		0xF118, // LD ST, V1
	)
	res, err := sys.Step()
	assert.NoError(t, err)
	assert.False(t, res.Beep)

	res, err = sys.Step()
	assert.NoError(t, err)
	assert.True(t, res.Beep)
	assert.False(t, res.Redraw)
	assert.True(t, sys.SoundActive())

	sys.TickTimers()
	assert.True(t, sys.SoundActive())
	sys.TickTimers()
	assert.False(t, sys.SoundActive())

	stepN(t, sys, 1)
	res, err = sys.Step()
	assert.NoError(t, err)
	assert.False(t, res.Beep)
}

func TestWaitForKey(t *testing.T) {
	sys := newTestSystem(t, 0xF30A) // LD V3, K

	for i := 0; i < 5; i++ {
		stepN(t, sys, 1)
		assert.Equal(t, uint16(StartAddress), sys.DebugInfo().PC)
	}

	sys.KeyDown(0xB)
	sys.KeyDown(0x7)
	stepN(t, sys, 1)
	info := sys.DebugInfo()
	assert.Equal(t, uint8(0x7), info.V[3])
	assert.Equal(t, uint16(StartAddress+2), info.PC)
}

func TestDebugInfoAndDumpDoNotMutate(t *testing.T) {
	sys := newTestSystem(t, 0x6AFF, 0xA300)
	stepN(t, sys, 2)

	first := sys.DebugInfo()
	dump := sys.MemDump()
	assert.Len(t, dump, MemorySize)
	dump[StartAddress] = 0

	assert.Equal(t, first, sys.DebugInfo())
	assert.Equal(t, uint8(0x6A), sys.MemDump()[StartAddress])
	assert.Contains(t, first.String(), "VA = 0xff")
	assert.Contains(t, first.String(), "I = 0x0300")
}

// loopROM counts V0 up, draws a glyph and skips on a key, a mix of typical work.
var loopROM = []uint16{
	0x7001, // ADD V0, 1
	0xF029, // LD F, V0
	0xD125, // DRW V1, V2, 5
	0xE19E, // SKP V1
	0x8104, // ADD V1, V0
	0x1200, // JP 0x200
}

func BenchmarkSystemLoop(b *testing.B) {
	benchmarkRom(b, loopROM, 10000)
}

func benchmarkRom(b *testing.B, words []uint16, cycles int) {
	sys := newTestSystem(b, words...)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for i := 0; i < cycles; i++ {
			if _, err := sys.Step(); err != nil {
				b.Fatal(err)
			}
		}
	}
}

func TestKeyIndexOutOfRange(t *testing.T) {
	sys := newTestSystem(t)

	sys.KeyDown(16)
	sys.KeyDown(-1)
	assert.Equal(t, [16]bool{}, sys.Keys())

	sys.KeyDown(0x0)
	sys.KeyUp(16)
	assert.True(t, sys.Keys()[0x0])
	sys.KeyUp(0x0)
	assert.False(t, sys.Keys()[0x0])
}
