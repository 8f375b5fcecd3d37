// Package debugger renders the machine state for interactive inspection.
package debugger

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	tm "github.com/buger/goterm"
	"github.com/c8vm/chip8"
	chip8cpu "github.com/retroenv/retrogolib/arch/cpu/chip8"
	"golang.org/x/term"
)

// Disassemble renders a single instruction word in assembler notation.
// Words that do not decode are shown as data.
func Disassemble(opcode uint16) string {
	ins, err := chip8.Decode(opcode)
	if err != nil {
		return fmt.Sprintf("DW 0x%04x", opcode)
	}

	name := mnemonic(opcode, ins.Op)
	if ops := ins.Operands(); ops != "" {
		return name + " " + ops
	}
	return name
}

// mnemonic looks the opcode up in the retrogolib instruction table and falls
// back to the name of the decoded operation.
func mnemonic(opcode uint16, op chip8.Op) string {
	if ins := lookup(opcode); ins != nil {
		return strings.ToUpper(ins.Name)
	}
	name, _, _ := strings.Cut(op.String(), " ")
	return name
}

func lookup(opcode uint16) *chip8cpu.Instruction {
	for _, candidate := range chip8cpu.Opcodes[int(opcode>>12)] {
		if candidate.Info.Mask&opcode == candidate.Info.Value {
			return candidate.Instruction
		}
	}
	return nil
}

// IsSkip reports whether the instruction conditionally skips its successor.
func IsSkip(opcode uint16) bool {
	ins := lookup(opcode)
	return ins != nil && chip8cpu.SkipInstructions.Contains(ins.Name)
}

// Overlay prints the register state, either as a full screen terminal view
// or as plain text blocks when the output is not a terminal.
type Overlay struct {
	out io.Writer
	tty bool
}

// NewOverlay returns an overlay writing to stdout.
func NewOverlay() *Overlay {
	return &Overlay{
		out: os.Stdout,
		tty: term.IsTerminal(int(os.Stdout.Fd())),
	}
}

// NewWriterOverlay returns an overlay writing plain text to w.
func NewWriterOverlay(w io.Writer) *Overlay {
	return &Overlay{out: w}
}

func (o *Overlay) Render(info chip8.DebugInfo, debug, step bool) {
	var buf bytes.Buffer
	o.write(&buf, info, debug, step)

	if !o.tty {
		fmt.Fprintln(o.out, buf.String())
		return
	}

	tm.Clear()
	tm.MoveCursor(1, 1)
	tm.Print(buf.String())
	tm.Flush()
}

func (o *Overlay) write(w io.Writer, info chip8.DebugInfo, debug, step bool) {
	fmt.Fprintf(w, "debug: %s  step: %s\n", o.flag(debug), o.flag(step))
	info.Print(w)

	fmt.Fprint(w, "Stack:")
	for i := 0; i < int(info.SP) && i < len(info.Stack); i++ {
		fmt.Fprintf(w, " 0x%03x", info.Stack[i])
	}
	fmt.Fprintln(w)

	next := Disassemble(info.Opcode)
	if IsSkip(info.Opcode) {
		next += " [skip]"
	}
	if o.tty {
		next = tm.Bold(next)
	}
	fmt.Fprintf(w, "Next: 0x%04x  %04x  %s\n", info.PC, info.Opcode, next)
}

func (o *Overlay) flag(on bool) string {
	if !on {
		return "off"
	}
	if o.tty {
		return tm.Color("on", tm.GREEN)
	}
	return "on"
}
