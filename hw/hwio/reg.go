package hwio

import (
	"fmt"
)

type RWFlags uint8

const (
	ReadWriteFlag RWFlags = 0
	ReadOnlyFlag  RWFlags = (1 << iota)
	WriteOnlyFlag
)

// Reg8 is a memory-mapped 8-bit register. Without callbacks it behaves like
// a plain byte of memory.
type Reg8 struct {
	Name  string
	Value uint8
	Flags RWFlags

	ReadCb  func(val uint8) uint8
	PeekCb  func(val uint8) uint8
	WriteCb func(old uint8, val uint8)
}

func (reg Reg8) String() string {
	s := fmt.Sprintf("%s{%02x", reg.Name, reg.Value)
	if reg.ReadCb != nil {
		s += ",r!"
	}
	if reg.PeekCb != nil {
		s += ",p!"
	}
	if reg.WriteCb != nil {
		s += ",w!"
	}
	return s + "}"
}

func (reg *Reg8) Write8(addr uint16, val uint8) {
	if reg.Flags&ReadOnlyFlag != 0 {
		Fault(reg.Name, "write", addr, "read-only register")
	}
	old := reg.Value
	reg.Value = val
	if reg.WriteCb != nil {
		reg.WriteCb(old, val)
	}
}

func (reg *Reg8) Read8(addr uint16, peek bool) uint8 {
	if peek {
		return reg.Peek8(addr)
	}
	if reg.Flags&WriteOnlyFlag != 0 {
		Fault(reg.Name, "read", addr, "write-only register")
	}
	if reg.ReadCb != nil {
		return reg.ReadCb(reg.Value)
	}
	return reg.Value
}

// Peek8 returns the register value without side effects. Write-only
// registers without a peek callback read as 0.
func (reg *Reg8) Peek8(addr uint16) uint8 {
	switch {
	case reg.PeekCb != nil:
		return reg.PeekCb(reg.Value)
	case reg.Flags&WriteOnlyFlag != 0:
		return 0
	}
	return reg.Value
}
