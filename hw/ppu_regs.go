package hw

import (
	"github.com/Akamitori/nes-emulator-sub000/hw/hwio"
)

// PPURegs are the CPU-exposed memory-mapped PPU registers.
// This bank is mapped at 0x2000-0x3FFF, with mirrors.
type PPURegs struct {
	PPUCTRL   hwio.Reg8
	PPUMASK   hwio.Reg8
	PPUSTATUS hwio.Reg8
	OAMADDR   hwio.Reg8
	OAMDATA   hwio.Reg8
	PPUSCROLL hwio.Reg8
	PPUADDR   hwio.Reg8
	PPUDATA   hwio.Reg8
}

func newPPURegs(p *PPU) *PPURegs {
	return &PPURegs{
		PPUCTRL: hwio.Reg8{
			Name:    "PPUCTRL",
			Flags:   hwio.WriteOnlyFlag,
			WriteCb: func(_, val uint8) { p.WritePPUCTRL(val) },
		},
		PPUMASK: hwio.Reg8{
			Name:    "PPUMASK",
			Flags:   hwio.WriteOnlyFlag,
			WriteCb: func(_, val uint8) { p.WritePPUMASK(val) },
		},
		PPUSTATUS: hwio.Reg8{
			Name:   "PPUSTATUS",
			Flags:  hwio.ReadOnlyFlag,
			ReadCb: func(uint8) uint8 { return p.ReadPPUSTATUS() },
			PeekCb: func(uint8) uint8 { return p.STATUS },
		},
		OAMADDR: hwio.Reg8{
			Name:    "OAMADDR",
			Flags:   hwio.WriteOnlyFlag,
			WriteCb: func(_, val uint8) { p.WriteOAMADDR(val) },
		},
		OAMDATA: hwio.Reg8{
			Name:    "OAMDATA",
			ReadCb:  func(uint8) uint8 { return p.ReadOAMDATA() },
			PeekCb:  func(uint8) uint8 { return p.ReadOAMDATA() },
			WriteCb: func(_, val uint8) { p.WriteOAMDATA(val) },
		},
		PPUSCROLL: hwio.Reg8{
			Name:    "PPUSCROLL",
			Flags:   hwio.WriteOnlyFlag,
			WriteCb: func(_, val uint8) { p.WritePPUSCROLL(val) },
		},
		PPUADDR: hwio.Reg8{
			Name:    "PPUADDR",
			Flags:   hwio.WriteOnlyFlag,
			WriteCb: func(_, val uint8) { p.WritePPUADDR(val) },
		},
		PPUDATA: hwio.Reg8{
			Name:    "PPUDATA",
			ReadCb:  func(uint8) uint8 { return p.ReadPPUDATA() },
			PeekCb:  func(uint8) uint8 { return p.PeekPPUDATA() },
			WriteCb: func(_, val uint8) { p.WritePPUDATA(val) },
		},
	}
}

func (r *PPURegs) reg(addr uint16) *hwio.Reg8 {
	switch addr & 0x2007 {
	case 0x2000:
		return &r.PPUCTRL
	case 0x2001:
		return &r.PPUMASK
	case 0x2002:
		return &r.PPUSTATUS
	case 0x2003:
		return &r.OAMADDR
	case 0x2004:
		return &r.OAMDATA
	case 0x2005:
		return &r.PPUSCROLL
	case 0x2006:
		return &r.PPUADDR
	}
	return &r.PPUDATA
}

func (r *PPURegs) Read8(addr uint16, peek bool) uint8 {
	return r.reg(addr).Read8(addr, peek)
}

func (r *PPURegs) Write8(addr uint16, val uint8) {
	r.reg(addr).Write8(addr, val)
}
