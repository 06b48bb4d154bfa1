package hw

import (
	"errors"
	"fmt"

	"github.com/Akamitori/nes-emulator-sub000/emu/log"
	"github.com/Akamitori/nes-emulator-sub000/hw/hwio"
	"github.com/Akamitori/nes-emulator-sub000/ines"
)

// CPU memory map.
const (
	ramEnd    = 0x1FFF // 2KB internal RAM, mirrored 4 times
	ppuRegEnd = 0x3FFF // PPU registers, mirrored every 8 bytes
	oamDMA    = 0x4014
	ioRegEnd  = 0x4017 // APU and I/O registers
	prgStart  = 0x8000
)

var ErrUnsupportedMapper = errors.New("unsupported mapper")

type mapper struct {
	name string
	load func(rom *ines.Rom) (*hwio.Mem, error)
}

var mappers = map[uint8]mapper{
	0: {name: "NROM", load: loadNROM},
}

// MapperName returns the name of the given mapper, if supported.
func MapperName(id uint8) (string, bool) {
	m, ok := mappers[id]
	return m.name, ok
}

// NROM maps 16KB (mirrored) or 32KB of PRG-ROM at $8000-$FFFF.
func loadNROM(rom *ines.Rom) (*hwio.Mem, error) {
	switch len(rom.PRG) {
	case 0x4000, 0x8000:
	default:
		return nil, fmt.Errorf("NROM: unexpected PRG-ROM size %d", len(rom.PRG))
	}
	return hwio.NewMem("PRG-ROM", rom.PRG, hwio.MemFlagReadOnly), nil
}

// Bus is the CPU address space of the NES.
type Bus struct {
	RAM    *hwio.Mem
	PRG    *hwio.Mem // nil without a cartridge
	PPU    *PPU
	Regs   *PPURegs
	OAMDMA hwio.Reg8
}

// NewBus creates the CPU bus with rom inserted. rom may be nil, in which
// case the bus has no cartridge and PRG-ROM accesses fault.
func NewBus(rom *ines.Rom) (*Bus, error) {
	bus := &Bus{
		RAM: hwio.NewMem("RAM", make([]byte, 0x800), hwio.MemFlagReadWrite),
	}

	var chr []byte
	mirroring := ines.HorzMirroring
	if rom != nil {
		m, ok := mappers[rom.Mapper()]
		if !ok {
			return nil, fmt.Errorf("%w: %d", ErrUnsupportedMapper, rom.Mapper())
		}
		prg, err := m.load(rom)
		if err != nil {
			return nil, err
		}
		bus.PRG = prg
		chr = rom.CHR
		mirroring = rom.Mirroring()
		log.ModMem.InfoZ("cartridge inserted").
			String("mapper", m.name).
			Int("prg", len(rom.PRG)).
			Int("chr", len(rom.CHR)).
			Stringer("mirroring", mirroring).
			End()
	}

	bus.PPU = NewPPU(chr, mirroring)
	bus.Regs = newPPURegs(bus.PPU)
	bus.OAMDMA = hwio.Reg8{
		Name:    "OAMDMA",
		Flags:   hwio.WriteOnlyFlag,
		WriteCb: func(_, page uint8) { bus.dma(page) },
	}
	return bus, nil
}

func (b *Bus) Read8(addr uint16, peek bool) uint8 {
	switch {
	case addr <= ramEnd:
		return b.RAM.Read8(addr, peek)
	case addr <= ppuRegEnd:
		return b.Regs.Read8(addr, peek)
	case addr == oamDMA:
		return b.OAMDMA.Read8(addr, peek)
	case addr <= ioRegEnd:
		// APU and I/O are not emulated, the bus floats high.
		if !peek {
			log.ModHwIo.DebugZ("read from APU/IO register").Hex16("addr", addr).End()
		}
		return 0xFF
	case addr < prgStart:
		if !peek {
			hwio.Fault("bus", "read", addr, "unmapped address")
		}
		return 0
	}

	if b.PRG == nil {
		if !peek {
			hwio.Fault("bus", "read", addr, "no cartridge")
		}
		return 0
	}
	return b.PRG.Read8(addr, peek)
}

// Peek8 reads addr without side effects.
func (b *Bus) Peek8(addr uint16) uint8 {
	return b.Read8(addr, true)
}

func (b *Bus) Write8(addr uint16, val uint8) {
	switch {
	case addr <= ramEnd:
		b.RAM.Write8(addr, val)
	case addr <= ppuRegEnd:
		b.Regs.Write8(addr, val)
	case addr == oamDMA:
		b.OAMDMA.Write8(addr, val)
	case addr <= ioRegEnd:
		log.ModHwIo.DebugZ("ignored write to APU/IO register").
			Hex16("addr", addr).
			Hex8("val", val).
			End()
	case addr < prgStart:
		hwio.Fault("bus", "write", addr, "unmapped address")
	case b.PRG == nil:
		hwio.Fault("bus", "write", addr, "no cartridge")
	default:
		b.PRG.Write8(addr, val)
	}
}

// dma copies CPU page $XX00-$XXFF into OAM.
func (b *Bus) dma(page uint8) {
	log.ModPPU.DebugZ("OAM DMA").Hex8("page", page).End()

	var buf [256]byte
	base := uint16(page) << 8
	for i := range buf {
		buf[i] = b.Read8(base+uint16(i), false)
	}
	b.PPU.WriteOAMDMA(buf[:])
}
