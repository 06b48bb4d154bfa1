package hw

import (
	"github.com/Akamitori/nes-emulator-sub000/emu/log"
	"github.com/Akamitori/nes-emulator-sub000/hw/hwio"
	"github.com/Akamitori/nes-emulator-sub000/ines"
)

const (
	// PPUCTRL bits
	// $2000

	// VRAM address increment per CPU read/write of PPUDATA
	// (0: +1 i.e. horizontal; 1: +32 i.e. vertical)
	vramIncr = 2
)

// PPU holds the state of the picture processing unit observable through its
// registers. Rendering is not emulated.
type PPU struct {
	//	$0000-$0FFF	$1000	Pattern table 0
	//	$1000-$1FFF	$1000	Pattern table 1
	CHR []byte

	// $2000-$23FF	$0400	Nametable 0
	// $2400-$27FF	$0400	Nametable 1
	// $2800-$2BFF	$0400	Nametable 2
	// $2C00-$2FFF	$0400	Nametable 3
	// $3000-$3EFF	$0F00	Mirrors of $2000-$2EFF
	VRAM []byte

	// $3F00-$3F1F	$0020	Palette RAM indexes
	// $3F20-$3FFF	$00E0	Mirrors of $3F00-$3F1F
	Palette [32]byte

	OAM [256]byte

	Mirroring ines.NTMirroring

	CTRL    uint8
	MASK    uint8
	STATUS  uint8 // vblank and sprite flags are not emulated
	OAMADDR uint8

	addr   addrReg
	scroll scrollReg
	rbuf   uint8 // PPUDATA read buffer
}

// NewPPU creates a PPU with the given pattern tables and nametable layout.
// chr is never written.
func NewPPU(chr []byte, mirroring ines.NTMirroring) *PPU {
	vramsz := 0x800
	if mirroring == ines.FourScreen {
		vramsz = 0x1000
	}
	return &PPU{
		CHR:       chr,
		VRAM:      make([]byte, vramsz),
		Mirroring: mirroring,
	}
}

// addrReg is PPUADDR, written high byte first.
type addrReg struct {
	val uint16
	lo  bool // next write is the low byte
}

func (r *addrReg) write(val uint8) {
	if r.lo {
		r.val = r.val&0xFF00 | uint16(val)
	} else {
		r.val = uint16(val)<<8 | r.val&0x00FF
	}
	// mirror down to 14 bits
	r.val &= 0x3FFF
	r.lo = !r.lo
}

func (r *addrReg) incr(n uint16) {
	r.val = (r.val + n) & 0x3FFF
}

// scrollReg is PPUSCROLL, written X first then Y.
type scrollReg struct {
	X, Y uint8
	y    bool // next write is Y
}

func (r *scrollReg) write(val uint8) {
	if r.y {
		r.Y = val
	} else {
		r.X = val
	}
	r.y = !r.y
}

func (p *PPU) WritePPUCTRL(val uint8) {
	log.ModPPU.DebugZ("Write to PPUCTRL").
		Hex8("val", val).
		Bool("incr32", hwio.GetBit8(val, vramIncr)).
		End()
	p.CTRL = val
}

func (p *PPU) WritePPUMASK(val uint8) {
	log.ModPPU.DebugZ("Write to PPUMASK").Hex8("val", val).End()
	p.MASK = val
}

// ReadPPUSTATUS returns the status register and resets the PPUADDR and
// PPUSCROLL latches.
func (p *PPU) ReadPPUSTATUS() uint8 {
	p.addr.lo = false
	p.scroll.y = false
	return p.STATUS
}

func (p *PPU) WriteOAMADDR(val uint8) {
	p.OAMADDR = val
}

func (p *PPU) ReadOAMDATA() uint8 {
	return p.OAM[p.OAMADDR]
}

func (p *PPU) WriteOAMDATA(val uint8) {
	p.OAM[p.OAMADDR] = val
	p.OAMADDR++
}

// WriteOAMDMA copies a 256 bytes CPU page into OAM, starting at OAMADDR.
func (p *PPU) WriteOAMDMA(page []byte) {
	for i, b := range page {
		p.OAM[p.OAMADDR+uint8(i)] = b
	}
}

func (p *PPU) WritePPUSCROLL(val uint8) {
	log.ModPPU.DebugZ("Write to PPUSCROLL").Hex8("val", val).End()
	p.scroll.write(val)
}

func (p *PPU) WritePPUADDR(val uint8) {
	log.ModPPU.DebugZ("Write to PPUADDR").Hex8("val", val).End()
	p.addr.write(val)
}

// Addr returns the current VRAM address.
func (p *PPU) Addr() uint16 {
	return p.addr.val
}

func (p *PPU) incrAddr() {
	if hwio.GetBit8(p.CTRL, vramIncr) {
		p.addr.incr(32)
	} else {
		p.addr.incr(1)
	}
}

// ReadPPUDATA reads the byte at the current VRAM address. Pattern table and
// nametable reads return the previous content of the read buffer.
func (p *PPU) ReadPPUDATA() uint8 {
	addr := p.addr.val
	var val uint8

	switch {
	case addr <= 0x1FFF:
		if int(addr) >= len(p.CHR) {
			hwio.Fault("PPU", "read", addr, "no CHR ROM")
		}
		val, p.rbuf = p.rbuf, p.CHR[addr]
	case addr <= 0x2FFF:
		val, p.rbuf = p.rbuf, p.VRAM[p.MirrorVRAMAddr(addr)]
	case addr <= 0x3EFF:
		hwio.Fault("PPU", "read", addr, "unused address space")
	default:
		val = p.Palette[paletteIndex(addr)]
	}

	p.incrAddr()
	log.ModPPU.DebugZ("Read from PPUDATA").Hex16("addr", addr).Hex8("val", val).End()
	return val
}

// PeekPPUDATA returns what ReadPPUDATA would return, without side effects.
func (p *PPU) PeekPPUDATA() uint8 {
	addr := p.addr.val
	if addr >= 0x3F00 {
		return p.Palette[paletteIndex(addr)]
	}
	return p.rbuf
}

func (p *PPU) WritePPUDATA(val uint8) {
	addr := p.addr.val
	log.ModPPU.DebugZ("Write to PPUDATA").Hex16("addr", addr).Hex8("val", val).End()

	switch {
	case addr <= 0x1FFF:
		hwio.Fault("PPU", "write", addr, "CHR ROM is read-only")
	case addr <= 0x2FFF:
		p.VRAM[p.MirrorVRAMAddr(addr)] = val
	case addr <= 0x3EFF:
		hwio.Fault("PPU", "write", addr, "unused address space")
	default:
		p.Palette[paletteIndex(addr)] = val
	}

	p.incrAddr()
}

// paletteIndex maps $3F00-$3FFF to the palette table. $3F10, $3F14, $3F18
// and $3F1C are aliases of $3F00, $3F04, $3F08 and $3F0C.
func paletteIndex(addr uint16) uint16 {
	idx := addr & 0x1F
	if idx >= 0x10 && idx&0x03 == 0 {
		idx -= 0x10
	}
	return idx
}

// MirrorVRAMAddr maps a nametable address ($2000-$3EFF) to an index in VRAM,
// according to the cartridge nametable mirroring.
//
//	Horizontal:          Vertical:
//	  [ A ] [ a ]          [ A ] [ B ]
//	  [ B ] [ b ]          [ a ] [ b ]
func (p *PPU) MirrorVRAMAddr(addr uint16) uint16 {
	// $3000-$3EFF mirrors $2000-$2EFF
	idx := addr&0x2FFF - 0x2000
	nt := idx / 0x400

	switch p.Mirroring {
	case ines.VertMirroring:
		if nt >= 2 {
			idx -= 0x800
		}
	case ines.HorzMirroring:
		switch nt {
		case 1, 2:
			idx -= 0x400
		case 3:
			idx -= 0x800
		}
	}
	return idx
}
