package hw

import (
	"fmt"

	"github.com/Akamitori/nes-emulator-sub000/hw/hwio"
)

// OpcodeError is returned when the CPU fetches an opcode it doesn't know.
type OpcodeError struct {
	PC     uint16
	Opcode uint8
}

func (e *OpcodeError) Error() string {
	return fmt.Sprintf("unknown opcode $%02X at $%04X", e.Opcode, e.PC)
}

// HaltError is returned once the CPU executed a KIL opcode.
type HaltError struct {
	PC     uint16
	Opcode uint8
}

func (e *HaltError) Error() string {
	return fmt.Sprintf("CPU halted by opcode $%02X at $%04X", e.Opcode, e.PC)
}

// catchFault turns bus access faults into an error. Any other panic is
// propagated.
func catchFault(err *error) {
	r := recover()
	if r == nil {
		return
	}
	if aerr, ok := r.(*hwio.AccessError); ok {
		*err = aerr
		return
	}
	panic(r)
}
