package hw

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/Akamitori/nes-emulator-sub000/hw/hwio"
)

func hasPanicked(f func()) (yes bool, msg any) {
	defer func() {
		msg = recover()
		if msg != nil {
			yes = true
		}
	}()
	f()
	return yes, msg
}

// faultOf returns the bus access error f panicked with, or nil.
func faultOf(f func()) *hwio.AccessError {
	_, msg := hasPanicked(f)
	if aerr, ok := msg.(*hwio.AccessError); ok {
		return aerr
	}
	return nil
}

func wantAccessError(tb testing.TB, err error, addr uint16) {
	tb.Helper()

	var aerr *hwio.AccessError
	if !errors.As(err, &aerr) {
		tb.Fatalf("got error %v, want an *hwio.AccessError", err)
	}
	if aerr.Addr != addr {
		tb.Errorf("access error at $%04X, want $%04X", aerr.Addr, addr)
	}
}

/* cpu specific testing helpers */

func wantMem8(t *testing.T, cpu *CPU, addr uint16, want uint8) {
	t.Helper()

	if got := cpu.Bus.Read8(addr, true); got != want {
		t.Errorf("$%04X = %02X want %02X", addr, got, want)
	}
}

func wantMem(t *testing.T, cpu *CPU, dl dumpline) {
	t.Helper()

	mem := []byte{}
	for i := range dl.bytes {
		mem = append(mem, cpu.Bus.Read8(dl.off+uint16(i), true))
	}

	if !bytes.Equal(mem, dl.bytes) {
		hd := hex.Dump(mem)
		got := hd[10 : 10+3*len(mem)]
		hd = hex.Dump(dl.bytes)
		want := hd[10 : 10+3*len(dl.bytes)]
		t.Errorf("mem mismatch at 0x%04x.\ngot: %s\nwant:%s", dl.off, got, want)
	}
}

// runAndCheckState runs cpu until BRK then checks its state against the
// provided name/value pairs. Values are ints, "mem" takes a memory dump.
func runAndCheckState(t *testing.T, cpu *CPU, states ...any) {
	t.Helper()

	if len(states)%2 != 0 {
		panic("odd number of states")
	}

	checkuint8 := func(name string, got uint8, want int) {
		t.Helper()
		if got != uint8(want) {
			t.Errorf("got %s=$%02X, want $%02X", name, got, want)
		}
	}

	if testing.Verbose() {
		cpu.SetTrace(tbwriter{t}, TraceText)
		defer cpu.SetTrace(nil, TraceText)
	}

	if err := cpu.Run(); err != nil {
		t.Fatalf("run: %s", err)
	}

	for i := 0; i < len(states); i += 2 {
		s := states[i].(string)
		switch {
		case s == "A":
			checkuint8("A", cpu.A, states[i+1].(int))
		case s == "X":
			checkuint8("X", cpu.X, states[i+1].(int))
		case s == "Y":
			checkuint8("Y", cpu.Y, states[i+1].(int))
		case s == "SP":
			checkuint8("SP", cpu.SP, states[i+1].(int))
		case s == "PC":
			if got, want := cpu.PC, uint16(states[i+1].(int)); got != want {
				t.Errorf("got PC=$%04X, want $%04X", got, want)
			}
		case s == "P":
			if got, want := cpu.P, P(states[i+1].(int)); got != want {
				t.Errorf("got P=$%02X(%s), want $%02X(%s)", uint8(got), got, uint8(want), want)
			}
		case len(s) > 1 && s[0] == 'P':
			for j := 1; j < len(s); j++ {
				want := states[i+1].(int) != 0
				flag := flagByName(s[j])
				if got := cpu.P.hasFlag(flag); got != want {
					t.Errorf("got P%c=%t, want %t (P=%s)", s[j], got, want, cpu.P)
				}
			}
		case s == "mem":
			lines := loadDump(t, states[i+1].(string))
			for _, line := range lines {
				wantMem(t, cpu, line)
			}
		default:
			panic("unknown state: " + s)
		}
	}

	if t.Failed() {
		t.FailNow()
	}
}

func flagByName(c byte) P {
	switch c {
	case 'n':
		return Negative
	case 'v':
		return Overflow
	case 'b':
		return Break
	case 'd':
		return Decimal
	case 'i':
		return IntDisable
	case 'z':
		return Zero
	case 'c':
		return Carry
	}
	panic("unknown P bit: " + string(c))
}

type dumpline struct {
	off   uint16
	bytes []byte
}

// loadDump parses a memory dump, one "offset: bytes..." line per memory
// area. Empty lines and lines starting with '#' are ignored.
func loadDump(tb testing.TB, dump string) []dumpline {
	tb.Helper()

	var lines []dumpline
	scan := bufio.NewScanner(strings.NewReader(dump))
	for scan.Scan() {
		line := scan.Text()
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		off, octets, ok := strings.Cut(line, ":")
		if !ok {
			tb.Fatalf("malformed line: %s", line)
		}

		ioff, err := strconv.ParseUint(strings.TrimSpace(off), 16, 16)
		if err != nil {
			tb.Fatalf("malformed offset %s: %s", off, err)
		}
		buf, err := hex.DecodeString(strings.ReplaceAll(octets, " ", ""))
		if err != nil {
			tb.Fatalf("hex decode: %s", err)
		}
		lines = append(lines, dumpline{off: uint16(ioff), bytes: buf})
	}
	if scan.Err() != nil {
		tb.Fatalf("scan error: %s", scan.Err())
	}

	return lines
}

// newFlatMem returns 64KB of read/write memory with no mapped devices.
func newFlatMem() *hwio.Mem {
	return hwio.NewMem("flat", make([]byte, 0x10000), hwio.MemFlagReadWrite)
}

// loadCPUWith returns a CPU over flat memory initialized with a memory dump,
// and PC set to the reset vector.
func loadCPUWith(tb testing.TB, dump string) *CPU {
	tb.Helper()

	mem := newFlatMem()
	for _, line := range loadDump(tb, dump) {
		copy(mem.Data[line.off:], line.bytes)
	}

	cpu := NewCPU(mem)
	if err := cpu.Reset(); err != nil {
		tb.Fatal(err)
	}
	return cpu
}

// newNESCPU returns a CPU connected to a NES bus with no cartridge, with
// program loaded at $0600.
func newNESCPU(tb testing.TB, program ...byte) (*CPU, *Bus) {
	tb.Helper()

	bus, err := NewBus(nil)
	if err != nil {
		tb.Fatal(err)
	}
	cpu := NewCPU(bus)
	if err := cpu.Load(program); err != nil {
		tb.Fatal(err)
	}
	if err := cpu.Reset(); err != nil {
		tb.Fatal(err)
	}
	return cpu, bus
}

type tbwriter struct {
	testing.TB
}

func (t tbwriter) Write(p []byte) (int, error) {
	t.TB.Helper()
	t.TB.Log(string(bytes.TrimSpace((p))))
	return len(p), nil
}

func TestLoadDump(t *testing.T) {
	dump := `
# comment
01f0: 0f 0e 0d
0210: 0f0e 0d0c`
	lines := loadDump(t, dump)
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[0].off != 0x01f0 || !bytes.Equal(lines[0].bytes, []byte{0x0f, 0x0e, 0x0d}) {
		t.Errorf("line 0 = %+v", lines[0])
	}
	if lines[1].off != 0x0210 || !bytes.Equal(lines[1].bytes, []byte{0x0f, 0x0e, 0x0d, 0x0c}) {
		t.Errorf("line 1 = %+v", lines[1])
	}
}
