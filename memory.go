package chip8

import "fmt"

const (
	MemorySize     = 4096
	FontAddress    = 0x000
	MaxROMSize     = MemorySize - StartAddress
	fontGlyphBytes = 5
)

// Memory is the flat 4K address space shared by interpreter data, the font and the program.
type Memory [MemorySize]uint8

func (mem *Memory) clear() {
	for i := 0; i < len(mem); i++ {
		mem[i] = 0
	}
}

func (mem *Memory) loadFont() {
	copy(mem[FontAddress:], fontSet[:])
}

func (mem *Memory) loadROM(rom []byte) error {
	if len(rom) > MaxROMSize {
		return fmt.Errorf("%w: %d bytes, limit is %d", ErrROMTooLarge, len(rom), MaxROMSize)
	}
	copy(mem[StartAddress:], rom)
	return nil
}

// fetchOpcode reads the big-endian instruction word at addr.
func (mem *Memory) fetchOpcode(addr uint16) (uint16, error) {
	if int(addr)+1 >= MemorySize {
		return 0, fmt.Errorf("%w: fetch at 0x%04x", ErrAddressOutOfRange, addr)
	}
	return uint16(mem[addr])<<8 | uint16(mem[addr+1]), nil
}

// span returns the n bytes starting at addr, failing if any of them lies outside memory.
func (mem *Memory) span(addr uint16, n int) ([]uint8, error) {
	if int(addr)+n > MemorySize {
		return nil, fmt.Errorf("%w: 0x%04x+%d", ErrAddressOutOfRange, addr, n)
	}
	return mem[addr : int(addr)+n], nil
}
