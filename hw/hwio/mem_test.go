package hwio

import "testing"

func TestMemMirroring(t *testing.T) {
	ram := NewMem("ram", make([]byte, 0x800), MemFlagReadWrite)

	ram.Write8(0x0012, 0xAB)
	for _, addr := range []uint16{0x0012, 0x0812, 0x1012, 0x1812} {
		if got := ram.Read8(addr, false); got != 0xAB {
			t.Errorf("ram[%04X] = %02X, want AB", addr, got)
		}
	}
}

func TestMemReadOnly(t *testing.T) {
	rom := NewMem("prg", []byte{0x01, 0x02, 0x03, 0x04}, MemFlagReadOnly)
	if err := faultOf(func() { rom.Write8(0x8001, 0xFF) }); err == nil {
		t.Fatalf("writing read-only memory should fault")
	}
	if got := rom.Read8(0x8001, false); got != 0x02 {
		t.Errorf("rom[8001] = %02X, want 02", got)
	}
}

func TestNewMemNotPow2(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("NewMem should panic with a non pow2 buffer")
		}
	}()
	NewMem("bad", make([]byte, 3), MemFlagReadWrite)
}

func TestWord(t *testing.T) {
	mem := NewMem("ram", make([]byte, 0x10000), MemFlagReadWrite)

	Write16(mem, 0x01FF, 0x1234)
	if got := mem.Data[0x01FF]; got != 0x34 {
		t.Errorf("low byte = %02X, want 34", got)
	}
	if got := mem.Data[0x0200]; got != 0x12 {
		t.Errorf("high byte = %02X, want 12", got)
	}
	if got := Read16(mem, 0x01FF); got != 0x1234 {
		t.Errorf("Read16 = %04X, want 1234", got)
	}
	if got := Peek16(mem, 0x01FF); got != 0x1234 {
		t.Errorf("Peek16 = %04X, want 1234", got)
	}

	// address wraps at 64K
	Write16(mem, 0xFFFF, 0xBEEF)
	if mem.Data[0xFFFF] != 0xEF || mem.Data[0x0000] != 0xBE {
		t.Errorf("Write16 did not wrap: %02X %02X", mem.Data[0xFFFF], mem.Data[0])
	}
}
