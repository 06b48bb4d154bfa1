package hwio

import (
	"fmt"

	"github.com/Akamitori/nes-emulator-sub000/emu/log"
)

// AccessError reports an invalid bus access: reading a write-only register,
// writing read-only memory or touching an unmapped address.
type AccessError struct {
	Bus    string // name of the bus or device
	Op     string // "read" or "write"
	Addr   uint16
	Reason string
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("%s: invalid %s at $%04X: %s", e.Bus, e.Op, e.Addr, e.Reason)
}

// Fault aborts the current bus access. It panics with an *AccessError which
// is recovered at the instruction boundary by the CPU.
func Fault(bus, op string, addr uint16, reason string) {
	log.ModHwIo.ErrorZ("invalid bus access").
		String("bus", bus).
		String("op", op).
		Hex16("addr", addr).
		String("reason", reason).
		End()
	panic(&AccessError{Bus: bus, Op: op, Addr: addr, Reason: reason})
}
