package hw

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/Akamitori/nes-emulator-sub000/emu/log"
	"github.com/Akamitori/nes-emulator-sub000/ines"
)

func newTestRom(prgsize int, mapper uint8) *ines.Rom {
	buf := make([]byte, 16+prgsize+0x2000)
	copy(buf, "NES\x1a")
	buf[4] = byte(prgsize / 0x4000)
	buf[5] = 1
	buf[6] = mapper<<4 | 0x01 // vertical mirroring
	buf[7] = mapper & 0xF0

	prg := buf[16 : 16+prgsize]
	for i := range prg {
		prg[i] = byte(i >> 8)
	}
	rom, err := ines.Decode(buf)
	if err != nil {
		panic(err)
	}
	return rom
}

func TestNewBus(t *testing.T) {
	t.Run("unsupported mapper", func(t *testing.T) {
		_, err := NewBus(newTestRom(0x4000, 0x01))
		if !errors.Is(err, ErrUnsupportedMapper) {
			t.Errorf("NewBus() error = %v, want %v", err, ErrUnsupportedMapper)
		}
	})
	t.Run("bad PRG size", func(t *testing.T) {
		_, err := NewBus(newTestRom(0xC000, 0))
		if err == nil {
			t.Error("NewBus() should fail with 48KB of PRG-ROM")
		}
	})
	t.Run("mirroring", func(t *testing.T) {
		bus, err := NewBus(newTestRom(0x8000, 0))
		if err != nil {
			t.Fatal(err)
		}
		if bus.PPU.Mirroring != ines.VertMirroring {
			t.Errorf("PPU mirroring = %s, want %s", bus.PPU.Mirroring, ines.VertMirroring)
		}
		if name, ok := MapperName(0); !ok || name != "NROM" {
			t.Errorf("MapperName(0) = %q, %t", name, ok)
		}
	})
}

func TestBusRAMMirrors(t *testing.T) {
	bus, _ := NewBus(nil)

	bus.Write8(0x0012, 0xAB)
	for _, addr := range []uint16{0x0012, 0x0812, 0x1012, 0x1812} {
		if got := bus.Read8(addr, false); got != 0xAB {
			t.Errorf("Read8($%04X) = $%02X, want $AB", addr, got)
		}
	}

	bus.Write8(0x1FFF, 0xCD)
	if got := bus.Read8(0x07FF, false); got != 0xCD {
		t.Errorf("Read8($07FF) = $%02X, want $CD", got)
	}
}

func TestBusPRGROM(t *testing.T) {
	t.Run("16KB mirrored", func(t *testing.T) {
		bus, err := NewBus(newTestRom(0x4000, 0))
		if err != nil {
			t.Fatal(err)
		}
		if lo, hi := bus.Read8(0x8123, false), bus.Read8(0xC123, false); lo != 0x01 || hi != 0x01 {
			t.Errorf("got $8123=$%02X $C123=$%02X, want $01", lo, hi)
		}
		if got := bus.Read8(0xFFFF, false); got != 0x3F {
			t.Errorf("got $FFFF=$%02X, want $3F", got)
		}
	})
	t.Run("32KB", func(t *testing.T) {
		bus, err := NewBus(newTestRom(0x8000, 0))
		if err != nil {
			t.Fatal(err)
		}
		if got := bus.Read8(0xC123, false); got != 0x41 {
			t.Errorf("got $C123=$%02X, want $41", got)
		}
	})
	t.Run("read-only", func(t *testing.T) {
		rom := newTestRom(0x8000, 0)
		bus, _ := NewBus(rom)
		aerr := faultOf(func() { bus.Write8(0x8000, 0xFF) })
		if aerr == nil || aerr.Addr != 0x8000 || aerr.Op != "write" {
			t.Fatalf("got fault %v, want a write fault at $8000", aerr)
		}
		if rom.PRG[0] != 0x00 {
			t.Errorf("PRG-ROM modified")
		}
	})
}

func TestBusFaults(t *testing.T) {
	bus, _ := NewBus(nil)

	tests := []struct {
		name string
		addr uint16
		op   string
		f    func()
	}{
		{"read PPUCTRL", 0x2000, "read", func() { bus.Read8(0x2000, false) }},
		{"read PPUMASK mirror", 0x3FF9, "read", func() { bus.Read8(0x3FF9, false) }},
		{"read OAMADDR", 0x2003, "read", func() { bus.Read8(0x2003, false) }},
		{"read PPUSCROLL", 0x2005, "read", func() { bus.Read8(0x2005, false) }},
		{"read PPUADDR", 0x2006, "read", func() { bus.Read8(0x2006, false) }},
		{"write PPUSTATUS", 0x2002, "write", func() { bus.Write8(0x2002, 0) }},
		{"read OAMDMA", 0x4014, "read", func() { bus.Read8(0x4014, false) }},
		{"read unmapped", 0x5000, "read", func() { bus.Read8(0x5000, false) }},
		{"write unmapped", 0x6000, "write", func() { bus.Write8(0x6000, 0) }},
		{"read no cartridge", 0xFFFC, "read", func() { bus.Read8(0xFFFC, false) }},
		{"write no cartridge", 0x8000, "write", func() { bus.Write8(0x8000, 0) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			aerr := faultOf(tt.f)
			if aerr == nil {
				t.Fatalf("no fault")
			}
			if aerr.Addr != tt.addr || aerr.Op != tt.op {
				t.Errorf("got %s fault at $%04X, want %s at $%04X", aerr.Op, aerr.Addr, tt.op, tt.addr)
			}
		})
	}
}

func TestBusPeekNeverFaults(t *testing.T) {
	bus, _ := NewBus(nil)
	for addr := range 0x10000 {
		if yes, msg := hasPanicked(func() { bus.Peek8(uint16(addr)) }); yes {
			t.Fatalf("Peek8($%04X) panicked: %v", addr, msg)
		}
	}
}

func TestBusPeekHasNoSideEffects(t *testing.T) {
	bus, _ := NewBus(nil)
	bus.PPU.VRAM[0] = 0x11
	bus.PPU.VRAM[1] = 0x22

	bus.Write8(0x2006, 0x20)
	bus.Write8(0x2006, 0x00)

	for range 3 {
		bus.Peek8(0x2007)
		bus.Peek8(0x2002)
	}
	if addr := bus.PPU.Addr(); addr != 0x2000 {
		t.Fatalf("PPU address = $%04X after peeks, want $2000", addr)
	}

	bus.Read8(0x2007, false) // fill the buffer
	if got := bus.Read8(0x2007, false); got != 0x11 {
		t.Errorf("Read8($2007) = $%02X, want $11", got)
	}
	if got := bus.Peek8(0x2007); got != 0x22 {
		t.Errorf("Peek8($2007) = $%02X, want $22", got)
	}
}

func TestBusPPURegisterMirrors(t *testing.T) {
	bus, _ := NewBus(nil)

	// PPUADDR through $3FFE, PPUDATA through $200F
	bus.Write8(0x3FFE, 0x3F)
	bus.Write8(0x2006, 0x01)
	bus.Write8(0x200F, 0x2A)

	if got := bus.PPU.Palette[1]; got != 0x2A {
		t.Errorf("palette[1] = $%02X, want $2A", got)
	}
}

func TestBusOAMDMA(t *testing.T) {
	bus, _ := NewBus(nil)
	for i := range 256 {
		bus.Write8(0x0300+uint16(i), uint8(i))
	}

	bus.Write8(0x2003, 0x10) // OAMADDR
	bus.Write8(0x4014, 0x03)

	for i := range 256 {
		if got, want := bus.PPU.OAM[uint8(0x10+i)], uint8(i); got != want {
			t.Fatalf("OAM[$%02X] = $%02X, want $%02X", uint8(0x10+i), got, want)
		}
	}
}

func TestBusAPUIO(t *testing.T) {
	bus, _ := NewBus(nil)
	for _, addr := range []uint16{0x4000, 0x4015, 0x4016, 0x4017} {
		bus.Write8(addr, 0x00)
		if got := bus.Read8(addr, false); got != 0xFF {
			t.Errorf("Read8($%04X) = $%02X, want $FF", addr, got)
		}
	}
}

func TestBusAPUIOReadsAreLogged(t *testing.T) {
	var out bytes.Buffer
	log.SetOutput(&out)
	log.EnableDebugModules(log.ModHwIo.Mask())
	t.Cleanup(func() {
		log.SetOutput(new(bytes.Buffer))
		log.DisableDebugModules(log.ModHwIo.Mask())
	})

	bus, _ := NewBus(nil)

	bus.Peek8(0x4016)
	if out.Len() != 0 {
		t.Errorf("peek was logged: %q", out.String())
	}

	bus.Read8(0x4016, false)
	if !strings.Contains(out.String(), "read from APU/IO register") ||
		!strings.Contains(out.String(), "addr=4016") {
		t.Errorf("read not logged, got %q", out.String())
	}
}
