package chip8

import (
	"errors"
	"fmt"
)

var (
	ErrROMTooLarge        = errors.New("rom does not fit into program memory")
	ErrIllegalInstruction = errors.New("illegal instruction")
	ErrStackOverflow      = errors.New("stack overflow")
	ErrStackUnderflow     = errors.New("stack underflow")
	ErrAddressOutOfRange  = errors.New("address out of range")
)

// ExecError reports a fatal condition raised while executing the instruction at PC.
type ExecError struct {
	PC     uint16
	Opcode uint16
	Err    error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("executing opcode 0x%04x at 0x%04x: %v", e.Opcode, e.PC, e.Err)
}

func (e *ExecError) Unwrap() error {
	return e.Err
}
