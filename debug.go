package chip8

import (
	"fmt"
	"io"
	"strings"
)

// DebugInfo is a snapshot of the architectural registers.
type DebugInfo struct {
	V          [16]uint8
	I          uint16
	PC         uint16
	SP         uint8
	Stack      [StackDepth]uint16
	DelayTimer uint8
	SoundTimer uint8
	Opcode     uint16 // word at PC, 0 if PC is out of range
	Cycles     uint64
}

func (sys *System) DebugInfo() DebugInfo {
	opc, _ := sys.mem.fetchOpcode(sys.cpu.PC)
	return DebugInfo{
		V:          sys.cpu.V,
		I:          sys.cpu.I,
		PC:         sys.cpu.PC,
		SP:         sys.cpu.SP,
		Stack:      sys.cpu.Stack,
		DelayTimer: sys.delayTimer,
		SoundTimer: sys.soundTimer,
		Opcode:     opc,
		Cycles:     sys.cycles,
	}
}

// MemDump returns a copy of the whole address space.
func (sys *System) MemDump() []byte {
	dump := make([]byte, MemorySize)
	copy(dump, sys.mem[:])
	return dump
}

func (info DebugInfo) Print(w io.Writer) {
	fmt.Fprintf(w, "Cycles #%d\n", info.Cycles)
	fmt.Fprintf(w, "PC = 0x%04x, SP = %d, I = 0x%04x, opcode = 0x%04x\n", info.PC, info.SP, info.I, info.Opcode)
	fmt.Fprintf(w, "DT = %d, ST = %d\n", info.DelayTimer, info.SoundTimer)
	for i := 0; i < len(info.V); i += 4 {
		fmt.Fprintf(w, "V%X = 0x%02x, V%X = 0x%02x, V%X = 0x%02x, V%X = 0x%02x\n",
			i, info.V[i], i+1, info.V[i+1], i+2, info.V[i+2], i+3, info.V[i+3])
	}
}

func (info DebugInfo) String() string {
	var sb strings.Builder
	info.Print(&sb)
	return sb.String()
}
