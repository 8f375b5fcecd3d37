package chip8

const (
	StartAddress = 0x200
	RegCarry     = 0xF
	StackDepth   = 16
)

type CPU struct {
	V     [16]uint8 // general-purpose registers
	I     uint16    // Index register
	PC    uint16    // program counter
	SP    uint8     // stack pointer
	Stack [StackDepth]uint16
}

func (cpu *CPU) reset() {
	cpu.PC = StartAddress
	cpu.I = 0
	cpu.SP = 0

	// clear stack
	for i := 0; i < len(cpu.Stack); i++ {
		cpu.Stack[i] = 0
	}

	// clear register V0-VF
	for i := 0; i < len(cpu.V); i++ {
		cpu.V[i] = 0
	}
}

func (cpu *CPU) push(addr uint16) error {
	if int(cpu.SP) >= len(cpu.Stack) {
		return ErrStackOverflow
	}
	cpu.Stack[cpu.SP] = addr
	cpu.SP++
	return nil
}

func (cpu *CPU) pop() (uint16, error) {
	if cpu.SP == 0 {
		return 0, ErrStackUnderflow
	}
	cpu.SP--
	return cpu.Stack[cpu.SP], nil
}

func (cpu *CPU) setCarry(carry uint8) {
	cpu.V[RegCarry] = carry
}

// execute runs a decoded instruction. PC already points past it.
func (sys *System) execute(ins Instruction) error {
	x, y := ins.X, ins.Y

	switch ins.Op {
	case OpCLS: // 00E0: Clears the screen
		sys.cls()
	case OpRET: // 00EE: Returns from subroutine
		return sys.ret()
	case OpJP: // 1NNN: Jumps to address NNN
		sys.jpAddr(ins.NNN)
	case OpCALL: // 2NNN: Calls subroutine at NNN
		return sys.callAddr(ins.NNN)
	case OpSEVxByte: // 3XKK: Skips the next instruction if VX equals KK
		sys.seVxByte(x, ins.KK)
	case OpSNEVxByte: // 4XKK: Skips the next instruction if VX doesn't equal KK
		sys.sneVxByte(x, ins.KK)
	case OpSEVxVy: // 5XY0: Skips the next instruction if VX equals VY
		sys.seVxVy(x, y)
	case OpLDVxByte: // 6XKK: Sets VX to KK
		sys.ldVxByte(x, ins.KK)
	case OpADDVxByte: // 7XKK: Adds KK to VX, no carry
		sys.addVxByte(x, ins.KK)
	case OpLDVxVy: // 8XY0: Sets VX to the value of VY
		sys.ldVxVy(x, y)
	case OpOR: // 8XY1: Sets VX to VX OR VY
		sys.orVxVy(x, y)
	case OpAND: // 8XY2: Sets VX to VX AND VY
		sys.andVxVy(x, y)
	case OpXOR: // 8XY3: Sets VX to VX XOR VY
		sys.xorVxVy(x, y)
	case OpADDVxVy: // 8XY4: Adds VY to VX, VF is the carry
		sys.addVxVy(x, y)
	case OpSUB: // 8XY5: VX -= VY, VF is 1 when there is no borrow
		sys.subVxVy(x, y)
	case OpSHR: // 8XY6: Shifts VX right by one, VF is the bit shifted out
		sys.shrVx(x)
	case OpSUBN: // 8XY7: VX = VY - VX, VF is 1 when there is no borrow
		sys.subnVxVy(x, y)
	case OpSHL: // 8XYE: Shifts VX left by one, VF is the bit shifted out
		sys.shlVx(x)
	case OpSNEVxVy: // 9XY0: Skips the next instruction if VX doesn't equal VY
		sys.sneVxVy(x, y)
	case OpLDI: // ANNN: Sets I to the address NNN
		sys.ldIAddr(ins.NNN)
	case OpJPV0: // BNNN: Jumps to the address NNN plus V0
		return sys.jpV0Addr(ins.NNN)
	case OpRND: // CXKK: Sets VX to a random byte AND KK
		sys.rndVxByte(x, ins.KK)
	case OpDRW: // DXYN: Draws an 8xN sprite from I at (VX, VY), VF is the collision flag
		return sys.drwVxVyNibble(x, y, ins.N)
	case OpSKP: // EX9E: Skips the next instruction if the key stored in VX is pressed
		sys.skpVx(x)
	case OpSKNP: // EXA1: Skips the next instruction if the key stored in VX isn't pressed
		sys.sknpVx(x)
	case OpLDVxDT: // FX07: Sets VX to the value of the delay timer
		sys.ldVxDT(x)
	case OpLDVxK: // FX0A: A key press is awaited, and then stored in VX
		sys.ldVxK(x)
	case OpLDDTVx: // FX15: Sets the delay timer to VX
		sys.ldDTVx(x)
	case OpLDSTVx: // FX18: Sets the sound timer to VX
		sys.ldSTVx(x)
	case OpADDIVx: // FX1E: Adds VX to I
		sys.addIVx(x)
	case OpLDFVx: // FX29: Sets I to the location of the font glyph for the low nibble of VX
		sys.ldFVx(x)
	case OpLDBVx: // FX33: Stores the BCD representation of VX at I, I+1 and I+2
		return sys.ldBVx(x)
	case OpLDIVx: // FX55: Stores V0 to VX in memory starting at address I
		return sys.ldIVx(x)
	case OpLDVxI: // FX65: Fills V0 to VX with values from memory starting at address I
		return sys.ldVxI(x)
	default:
		return ErrIllegalInstruction
	}
	return nil
}

func (sys *System) skipIf(cond bool) {
	if cond {
		sys.cpu.PC += 2
	}
}

func (sys *System) cls() {
	sys.gfx.clear()
	sys.result.Redraw = true
}

func (sys *System) ret() error {
	addr, err := sys.cpu.pop()
	if err != nil {
		return err
	}
	sys.cpu.PC = addr
	return nil
}

func (sys *System) jpAddr(addr uint16) {
	sys.cpu.PC = addr
}

func (sys *System) callAddr(addr uint16) error {
	if err := sys.cpu.push(sys.cpu.PC); err != nil {
		return err
	}
	sys.cpu.PC = addr
	return nil
}

func (sys *System) seVxByte(x, val uint8) {
	sys.skipIf(sys.cpu.V[x] == val)
}

func (sys *System) sneVxByte(x, val uint8) {
	sys.skipIf(sys.cpu.V[x] != val)
}

func (sys *System) seVxVy(x, y uint8) {
	sys.skipIf(sys.cpu.V[x] == sys.cpu.V[y])
}

func (sys *System) sneVxVy(x, y uint8) {
	sys.skipIf(sys.cpu.V[x] != sys.cpu.V[y])
}

func (sys *System) ldVxByte(x, val uint8) {
	sys.cpu.V[x] = val
}

func (sys *System) addVxByte(x, val uint8) {
	sys.cpu.V[x] += val
}

func (sys *System) ldVxVy(x, y uint8) {
	sys.cpu.V[x] = sys.cpu.V[y]
}

func (sys *System) orVxVy(x, y uint8) {
	sys.cpu.V[x] |= sys.cpu.V[y]
}

func (sys *System) andVxVy(x, y uint8) {
	sys.cpu.V[x] &= sys.cpu.V[y]
}

func (sys *System) xorVxVy(x, y uint8) {
	sys.cpu.V[x] ^= sys.cpu.V[y]
}

// The flag-producing ALU operations write VF last so that VF holds the flag
// even when it is also the destination.

func (sys *System) addVxVy(x, y uint8) {
	sum := uint16(sys.cpu.V[x]) + uint16(sys.cpu.V[y])
	sys.cpu.V[x] = uint8(sum)
	sys.cpu.setCarry(uint8(sum >> 8))
}

func (sys *System) subVxVy(x, y uint8) {
	var carry uint8
	if sys.cpu.V[x] >= sys.cpu.V[y] {
		carry = 1
	}
	sys.cpu.V[x] -= sys.cpu.V[y]
	sys.cpu.setCarry(carry)
}

func (sys *System) subnVxVy(x, y uint8) {
	var carry uint8
	if sys.cpu.V[y] >= sys.cpu.V[x] {
		carry = 1
	}
	sys.cpu.V[x] = sys.cpu.V[y] - sys.cpu.V[x]
	sys.cpu.setCarry(carry)
}

func (sys *System) shrVx(x uint8) {
	carry := sys.cpu.V[x] & 0x01
	sys.cpu.V[x] >>= 1
	sys.cpu.setCarry(carry)
}

func (sys *System) shlVx(x uint8) {
	carry := sys.cpu.V[x] >> 7
	sys.cpu.V[x] <<= 1
	sys.cpu.setCarry(carry)
}

func (sys *System) ldIAddr(addr uint16) {
	sys.cpu.I = addr
}

func (sys *System) jpV0Addr(addr uint16) error {
	target := addr + uint16(sys.cpu.V[0])
	if target >= MemorySize {
		return ErrAddressOutOfRange
	}
	sys.cpu.PC = target
	return nil
}

func (sys *System) rndVxByte(x, val uint8) {
	sys.cpu.V[x] = uint8(sys.rand.UintN(256)) & val
}

// drwVxVyNibble reads N sprite rows from I; I itself is left untouched.
func (sys *System) drwVxVyNibble(x, y, n uint8) error {
	sprite, err := sys.mem.span(sys.cpu.I, int(n))
	if err != nil {
		return err
	}
	if hit := sys.gfx.draw(sprite, sys.cpu.V[x], sys.cpu.V[y]); hit {
		sys.cpu.setCarry(1)
	} else {
		sys.cpu.setCarry(0)
	}
	sys.result.Redraw = true
	return nil
}

func (sys *System) skpVx(x uint8) {
	sys.skipIf(sys.keys[sys.cpu.V[x]&0xF])
}

func (sys *System) sknpVx(x uint8) {
	sys.skipIf(!sys.keys[sys.cpu.V[x]&0xF])
}

func (sys *System) ldVxDT(x uint8) {
	sys.cpu.V[x] = sys.delayTimer
}

// ldVxK never blocks: without a pressed key PC is moved back onto this
// instruction so the next step retries it.
func (sys *System) ldVxK(x uint8) {
	for i, pressed := range sys.keys {
		if pressed {
			sys.cpu.V[x] = uint8(i)
			return
		}
	}
	sys.cpu.PC -= 2
}

func (sys *System) ldDTVx(x uint8) {
	sys.delayTimer = sys.cpu.V[x]
}

func (sys *System) ldSTVx(x uint8) {
	sys.soundTimer = sys.cpu.V[x]
	sys.result.Beep = sys.soundTimer != 0
}

// addIVx wraps within the 12-bit address space and leaves VF alone.
func (sys *System) addIVx(x uint8) {
	sys.cpu.I = (sys.cpu.I + uint16(sys.cpu.V[x])) & 0x0FFF
}

func (sys *System) ldFVx(x uint8) {
	sys.cpu.I = FontAddress + uint16(sys.cpu.V[x]&0xF)*fontGlyphBytes
}

func (sys *System) ldBVx(x uint8) error {
	dst, err := sys.mem.span(sys.cpu.I, 3)
	if err != nil {
		return err
	}
	v := sys.cpu.V[x]
	dst[0] = v / 100
	dst[1] = (v / 10) % 10
	dst[2] = v % 10
	return nil
}

func (sys *System) ldIVx(x uint8) error {
	dst, err := sys.mem.span(sys.cpu.I, int(x)+1)
	if err != nil {
		return err
	}
	copy(dst, sys.cpu.V[:x+1])
	return nil
}

func (sys *System) ldVxI(x uint8) error {
	src, err := sys.mem.span(sys.cpu.I, int(x)+1)
	if err != nil {
		return err
	}
	copy(sys.cpu.V[:x+1], src)
	return nil
}
