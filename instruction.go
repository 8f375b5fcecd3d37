package chip8

import "fmt"

// Op identifies one of the documented CHIP-8 instructions.
type Op uint8

const (
	OpInvalid Op = iota
	OpCLS        // 00E0
	OpRET        // 00EE
	OpJP         // 1NNN
	OpCALL       // 2NNN
	OpSEVxByte   // 3XKK
	OpSNEVxByte  // 4XKK
	OpSEVxVy     // 5XY0
	OpLDVxByte   // 6XKK
	OpADDVxByte  // 7XKK
	OpLDVxVy     // 8XY0
	OpOR         // 8XY1
	OpAND        // 8XY2
	OpXOR        // 8XY3
	OpADDVxVy    // 8XY4
	OpSUB        // 8XY5
	OpSHR        // 8XY6
	OpSUBN       // 8XY7
	OpSHL        // 8XYE
	OpSNEVxVy    // 9XY0
	OpLDI        // ANNN
	OpJPV0       // BNNN
	OpRND        // CXKK
	OpDRW        // DXYN
	OpSKP        // EX9E
	OpSKNP       // EXA1
	OpLDVxDT     // FX07
	OpLDVxK      // FX0A
	OpLDDTVx     // FX15
	OpLDSTVx     // FX18
	OpADDIVx     // FX1E
	OpLDFVx      // FX29
	OpLDBVx      // FX33
	OpLDIVx      // FX55
	OpLDVxI      // FX65
)

var opNames = [...]string{
	OpInvalid:   "???",
	OpCLS:       "CLS",
	OpRET:       "RET",
	OpJP:        "JP addr",
	OpCALL:      "CALL addr",
	OpSEVxByte:  "SE Vx, byte",
	OpSNEVxByte: "SNE Vx, byte",
	OpSEVxVy:    "SE Vx, Vy",
	OpLDVxByte:  "LD Vx, byte",
	OpADDVxByte: "ADD Vx, byte",
	OpLDVxVy:    "LD Vx, Vy",
	OpOR:        "OR Vx, Vy",
	OpAND:       "AND Vx, Vy",
	OpXOR:       "XOR Vx, Vy",
	OpADDVxVy:   "ADD Vx, Vy",
	OpSUB:       "SUB Vx, Vy",
	OpSHR:       "SHR Vx",
	OpSUBN:      "SUBN Vx, Vy",
	OpSHL:       "SHL Vx",
	OpSNEVxVy:   "SNE Vx, Vy",
	OpLDI:       "LD I, addr",
	OpJPV0:      "JP V0, addr",
	OpRND:       "RND Vx, byte",
	OpDRW:       "DRW Vx, Vy, nibble",
	OpSKP:       "SKP Vx",
	OpSKNP:      "SKNP Vx",
	OpLDVxDT:    "LD Vx, DT",
	OpLDVxK:     "LD Vx, K",
	OpLDDTVx:    "LD DT, Vx",
	OpLDSTVx:    "LD ST, Vx",
	OpADDIVx:    "ADD I, Vx",
	OpLDFVx:     "LD F, Vx",
	OpLDBVx:     "LD B, Vx",
	OpLDIVx:     "LD [I], Vx",
	OpLDVxI:     "LD Vx, [I]",
}

func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return fmt.Sprintf("Op(%d)", uint8(op))
}

// Instruction is a decoded opcode. Only the fields used by Op are meaningful.
type Instruction struct {
	Op     Op
	Opcode uint16
	X      uint8  // register index, bits 8-11
	Y      uint8  // register index, bits 4-7
	N      uint8  // 4-bit immediate
	KK     uint8  // 8-bit immediate
	NNN    uint16 // 12-bit address
}

// Decode splits opcode into its operand fields and identifies the instruction.
// Bit patterns outside the documented set return ErrIllegalInstruction.
func Decode(opcode uint16) (Instruction, error) {
	ins := Instruction{
		Opcode: opcode,
		X:      uint8((opcode & 0x0F00) >> 8),
		Y:      uint8((opcode & 0x00F0) >> 4),
		N:      uint8(opcode & 0x000F),
		KK:     uint8(opcode & 0x00FF),
		NNN:    opcode & 0x0FFF,
	}

	switch opcode & 0xF000 {
	case 0x0000:
		switch opcode {
		case 0x00E0:
			ins.Op = OpCLS
		case 0x00EE:
			ins.Op = OpRET
		}
	case 0x1000:
		ins.Op = OpJP
	case 0x2000:
		ins.Op = OpCALL
	case 0x3000:
		ins.Op = OpSEVxByte
	case 0x4000:
		ins.Op = OpSNEVxByte
	case 0x5000:
		if ins.N == 0 {
			ins.Op = OpSEVxVy
		}
	case 0x6000:
		ins.Op = OpLDVxByte
	case 0x7000:
		ins.Op = OpADDVxByte
	case 0x8000:
		switch ins.N {
		case 0x0:
			ins.Op = OpLDVxVy
		case 0x1:
			ins.Op = OpOR
		case 0x2:
			ins.Op = OpAND
		case 0x3:
			ins.Op = OpXOR
		case 0x4:
			ins.Op = OpADDVxVy
		case 0x5:
			ins.Op = OpSUB
		case 0x6:
			ins.Op = OpSHR
		case 0x7:
			ins.Op = OpSUBN
		case 0xE:
			ins.Op = OpSHL
		}
	case 0x9000:
		if ins.N == 0 {
			ins.Op = OpSNEVxVy
		}
	case 0xA000:
		ins.Op = OpLDI
	case 0xB000:
		ins.Op = OpJPV0
	case 0xC000:
		ins.Op = OpRND
	case 0xD000:
		ins.Op = OpDRW
	case 0xE000:
		switch ins.KK {
		case 0x9E:
			ins.Op = OpSKP
		case 0xA1:
			ins.Op = OpSKNP
		}
	case 0xF000:
		switch ins.KK {
		case 0x07:
			ins.Op = OpLDVxDT
		case 0x0A:
			ins.Op = OpLDVxK
		case 0x15:
			ins.Op = OpLDDTVx
		case 0x18:
			ins.Op = OpLDSTVx
		case 0x1E:
			ins.Op = OpADDIVx
		case 0x29:
			ins.Op = OpLDFVx
		case 0x33:
			ins.Op = OpLDBVx
		case 0x55:
			ins.Op = OpLDIVx
		case 0x65:
			ins.Op = OpLDVxI
		}
	}

	if ins.Op == OpInvalid {
		return ins, ErrIllegalInstruction
	}
	return ins, nil
}

// Operands renders the operand list of the instruction in assembler notation.
func (ins Instruction) Operands() string {
	switch ins.Op {
	case OpCLS, OpRET, OpInvalid:
		return ""
	case OpJP, OpCALL:
		return fmt.Sprintf("0x%03x", ins.NNN)
	case OpSEVxByte, OpSNEVxByte, OpLDVxByte, OpADDVxByte, OpRND:
		return fmt.Sprintf("V%X, 0x%02x", ins.X, ins.KK)
	case OpSEVxVy, OpSNEVxVy, OpLDVxVy, OpOR, OpAND, OpXOR, OpADDVxVy, OpSUB, OpSUBN:
		return fmt.Sprintf("V%X, V%X", ins.X, ins.Y)
	case OpSHR, OpSHL, OpSKP, OpSKNP:
		return fmt.Sprintf("V%X", ins.X)
	case OpLDI:
		return fmt.Sprintf("I, 0x%03x", ins.NNN)
	case OpJPV0:
		return fmt.Sprintf("V0, 0x%03x", ins.NNN)
	case OpDRW:
		return fmt.Sprintf("V%X, V%X, %d", ins.X, ins.Y, ins.N)
	case OpLDVxDT:
		return fmt.Sprintf("V%X, DT", ins.X)
	case OpLDVxK:
		return fmt.Sprintf("V%X, K", ins.X)
	case OpLDDTVx:
		return fmt.Sprintf("DT, V%X", ins.X)
	case OpLDSTVx:
		return fmt.Sprintf("ST, V%X", ins.X)
	case OpADDIVx:
		return fmt.Sprintf("I, V%X", ins.X)
	case OpLDFVx:
		return fmt.Sprintf("F, V%X", ins.X)
	case OpLDBVx:
		return fmt.Sprintf("B, V%X", ins.X)
	case OpLDIVx:
		return fmt.Sprintf("[I], V%X", ins.X)
	case OpLDVxI:
		return fmt.Sprintf("V%X, [I]", ins.X)
	}
	return ""
}
