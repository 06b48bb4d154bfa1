package hw

import (
	"fmt"

	"github.com/Akamitori/nes-emulator-sub000/hw/hwio"
)

//go:generate go tool stringer -type AddrMode

// AddrMode selects how the operand bytes of an instruction map to an
// effective address.
type AddrMode uint8

const (
	NoneAddressing AddrMode = iota // implied, accumulator, relative and JMP indirect
	Immediate
	ZeroPage
	ZeroPageX
	ZeroPageY
	Absolute
	AbsoluteX
	AbsoluteY
	IndirectX
	IndirectY
)

// resolveAddr computes the effective address for an operand starting at pc.
// Zero page indexing and indirect pointers wrap at 256. When peek is true
// the operand bytes are read without side effects.
func resolveAddr(bus hwio.BankIO8, mode AddrMode, pc uint16, x, y uint8, peek bool) uint16 {
	switch mode {
	case Immediate:
		return pc
	case ZeroPage:
		return uint16(bus.Read8(pc, peek))
	case ZeroPageX:
		return uint16(bus.Read8(pc, peek) + x)
	case ZeroPageY:
		return uint16(bus.Read8(pc, peek) + y)
	case Absolute:
		return read16(bus, pc, peek)
	case AbsoluteX:
		return read16(bus, pc, peek) + uint16(x)
	case AbsoluteY:
		return read16(bus, pc, peek) + uint16(y)
	case IndirectX:
		ptr := bus.Read8(pc, peek) + x
		return zpRead16(bus, ptr, peek)
	case IndirectY:
		base := bus.Read8(pc, peek)
		return zpRead16(bus, base, peek) + uint16(y)
	}
	panic(fmt.Sprintf("addressing mode %s has no operand", mode))
}

func read16(bus hwio.BankIO8, addr uint16, peek bool) uint16 {
	if peek {
		return hwio.Peek16(bus, addr)
	}
	return hwio.Read16(bus, addr)
}

// zpRead16 reads a little-endian word from the zero page, the high byte
// wrapping around to $00 when ptr is $FF.
func zpRead16(bus hwio.BankIO8, ptr uint8, peek bool) uint16 {
	lo := bus.Read8(uint16(ptr), peek)
	hi := bus.Read8(uint16(ptr+1), peek)
	return uint16(hi)<<8 | uint16(lo)
}
