package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Akamitori/nes-emulator-sub000/emu/log"
)

// writeTestRom writes an NROM image with a 16KB PRG-ROM holding prog at
// $C000, which is also the reset vector.
func writeTestRom(tb testing.TB, name string, mapper uint8, prog ...byte) string {
	tb.Helper()

	hdr := []byte{'N', 'E', 'S', 0x1A, 1, 1, mapper<<4 | 0x01, mapper & 0xF0, 0, 0, 0, 0, 0, 0, 0, 0}
	prg := make([]byte, 0x4000)
	copy(prg, prog)
	prg[0x3FFC] = 0x00
	prg[0x3FFD] = 0xC0
	chr := make([]byte, 0x2000)

	path := filepath.Join(tb.TempDir(), name)
	buf := append(append(hdr, prg...), chr...)
	if err := os.WriteFile(path, buf, 0644); err != nil {
		tb.Fatal(err)
	}
	return path
}

func TestParseLogModules(t *testing.T) {
	tests := []struct {
		names    []string
		wantMask log.ModuleMask
		wantNone bool
		wantErr  bool
	}{
		{names: nil, wantMask: 0},
		{names: []string{"cpu"}, wantMask: log.ModCPU.Mask()},
		{names: []string{"cpu", "ppu"}, wantMask: log.ModCPU.Mask() | log.ModPPU.Mask()},
		{names: []string{"all"}, wantMask: log.ModuleMaskAll},
		{names: []string{"cpu", "all"}, wantMask: log.ModuleMaskAll},
		{names: []string{"no"}, wantNone: true},
		{names: []string{"no", "all"}, wantErr: true},
		{names: []string{"no", "cpu"}, wantErr: true},
		{names: []string{"bogus"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.names, ","), func(t *testing.T) {
			mask, none, err := parseLogModules(tt.names)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseLogModules(%q) error = %v, wantErr %t", tt.names, err, tt.wantErr)
			}
			if mask != tt.wantMask {
				t.Errorf("mask = %x, want %x", mask, tt.wantMask)
			}
			if none != tt.wantNone {
				t.Errorf("none = %t, want %t", none, tt.wantNone)
			}
		})
	}
}

func TestParseAddr(t *testing.T) {
	tests := []struct {
		s       string
		want    addr
		wantErr bool
	}{
		{s: "C000", want: 0xC000},
		{s: "$c000", want: 0xC000},
		{s: "0x8000", want: 0x8000},
		{s: "$0600", want: 0x0600},
		{s: "0", want: 0},
		{s: "FFFF", want: 0xFFFF},
		{s: "10000", wantErr: true},
		{s: "$", wantErr: true},
		{s: "zz", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.s, func(t *testing.T) {
			got, err := parseAddr(tt.s)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseAddr(%q) error = %v, wantErr %t", tt.s, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseAddr(%q) = %s, want %s", tt.s, got, tt.want)
			}
		})
	}
}

func TestAddrText(t *testing.T) {
	a := addr(0x0600)
	txt, err := a.MarshalText()
	if err != nil {
		t.Fatal(err)
	}
	if string(txt) != "$0600" {
		t.Errorf("MarshalText() = %q, want %q", txt, "$0600")
	}

	var b addr
	if err := b.UnmarshalText(txt); err != nil {
		t.Fatal(err)
	}
	if b != a {
		t.Errorf("UnmarshalText(%q) = %s, want %s", txt, b, a)
	}
}

func TestDisassemble(t *testing.T) {
	path := writeTestRom(t, "prog.nes", 0,
		0xA9, 0x42, // LDA #$42
		0xAA, // TAX
		0x00, // BRK
	)

	var buf bytes.Buffer
	if err := disasmMain(&buf, Disasm{RomPath: path, Count: 3}); err != nil {
		t.Fatal(err)
	}

	want := fmt.Sprintf("%-16s%s\n%-16s%s\n%-16s%s\n",
		"C000  A9 42", "LDA #$42",
		"C002  AA", "TAX",
		"C003  00", "BRK",
	)
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("disassembly mismatch (-want +got):\n%s", diff)
	}
}

func TestDisassembleFrom(t *testing.T) {
	path := writeTestRom(t, "prog.nes", 0, 0xEA, 0xEA, 0xE8)

	var buf bytes.Buffer
	from := addr(0xC002)
	if err := disasmMain(&buf, Disasm{RomPath: path, From: &from, Count: 1}); err != nil {
		t.Fatal(err)
	}

	want := fmt.Sprintf("%-16s%s\n", "C002  E8", "INX")
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("disassembly mismatch (-want +got):\n%s", diff)
	}
}

func TestRomInfos(t *testing.T) {
	nrom := writeTestRom(t, "nrom.nes", 0)
	mmc1 := writeTestRom(t, "mmc1.nes", 1)

	var buf bytes.Buffer
	if err := romInfosMain(&buf, RomInfos{RomPaths: []string{nrom, mmc1}}); err != nil {
		t.Fatal(err)
	}

	infos := func(path string, mapper int) string {
		return path + ":\n" +
			"PRG ROM:    1 x 16KB\n" +
			"CHR ROM:    1 x 8KB\n" +
			fmt.Sprintf("Mapper:     %d\n", mapper) +
			"Mirroring:  vertical\n" +
			"Trainer:    false\n" +
			"Persistent: false\n"
	}
	want := infos(nrom, 0) + "supported mapper: NROM\n" +
		infos(mmc1, 1) + "unsupported mapper: 1\n"

	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("rom infos mismatch (-want +got):\n%s", diff)
	}
}

func TestRomInfosMissingFile(t *testing.T) {
	nrom := writeTestRom(t, "nrom.nes", 0)
	missing := filepath.Join(t.TempDir(), "missing.nes")

	var buf bytes.Buffer
	err := romInfosMain(&buf, RomInfos{RomPaths: []string{nrom, missing}})
	if err == nil {
		t.Fatal("romInfosMain() succeeded with a missing file")
	}
	if !strings.Contains(err.Error(), missing) {
		t.Errorf("error %q does not name %s", err, missing)
	}
	if buf.Len() != 0 {
		t.Errorf("romInfosMain() wrote %q on error", buf.String())
	}
}

func TestRun(t *testing.T) {
	path := writeTestRom(t, "prog.nes", 0,
		0xA9, 0x42, // LDA #$42
		0xAA, // TAX
		0x00, // BRK
	)

	var trace bytes.Buffer
	args := Run{
		RomPath: path,
		Trace:   &outfile{w: &trace, name: "trace", close: func() error { return nil }},
	}
	cpu, err := runMain(args, defaultConfig)
	if err != nil {
		t.Fatal(err)
	}

	if cpu.A != 0x42 || cpu.X != 0x42 {
		t.Errorf("A=%02X X=%02X, want A=42 X=42", cpu.A, cpu.X)
	}
	if cpu.PC != 0xC003 {
		t.Errorf("PC=%04X, want C003", cpu.PC)
	}

	lines := strings.Split(strings.TrimSpace(trace.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d trace lines, want 3:\n%s", len(lines), trace.String())
	}
	for i, prefix := range []string{"C000", "C002", "C003"} {
		if !strings.HasPrefix(lines[i], prefix) {
			t.Errorf("trace line %d = %q, want prefix %s", i, lines[i], prefix)
		}
	}

	var state bytes.Buffer
	printCPUState(&state, cpu)
	if !strings.HasPrefix(state.String(), "A:42 X:42 Y:00 ") {
		t.Errorf("printCPUState() = %q", state.String())
	}
}

func TestRunSteps(t *testing.T) {
	path := writeTestRom(t, "loop.nes", 0,
		0x4C, 0x00, 0xC0, // JMP $C000
	)

	cpu, err := runMain(Run{RomPath: path, Steps: 10}, defaultConfig)
	if err != nil {
		t.Fatal(err)
	}
	if cpu.Cycles != 30 {
		t.Errorf("Cycles = %d, want 30", cpu.Cycles)
	}
	if cpu.PC != 0xC000 {
		t.Errorf("PC = %04X, want C000", cpu.PC)
	}
}

func TestRunStartPC(t *testing.T) {
	path := writeTestRom(t, "prog.nes", 0,
		0xA9, 0x01, // LDA #$01
		0xA2, 0x07, // LDX #$07
		0x00, // BRK
	)

	pc := addr(0xC002)
	cpu, err := runMain(Run{RomPath: path, PC: &pc}, defaultConfig)
	if err != nil {
		t.Fatal(err)
	}
	if cpu.A != 0 || cpu.X != 7 {
		t.Errorf("A=%02X X=%02X, want A=00 X=07", cpu.A, cpu.X)
	}
}

func TestRunFault(t *testing.T) {
	path := writeTestRom(t, "fault.nes", 0,
		0x8D, 0x00, 0x50, // STA $5000
	)

	_, err := runMain(Run{RomPath: path}, defaultConfig)
	if err == nil {
		t.Fatal("runMain() succeeded, want a bus fault")
	}
}

func TestRunUnsupportedMapper(t *testing.T) {
	path := writeTestRom(t, "mmc1.nes", 1)

	cpu, err := runMain(Run{RomPath: path}, defaultConfig)
	if err == nil {
		t.Fatal("runMain() succeeded with an unsupported mapper")
	}
	if cpu != nil {
		t.Errorf("runMain() returned a CPU on error")
	}
}

func TestLogModMaskApplyReplaces(t *testing.T) {
	t.Cleanup(func() { log.DisableDebugModules(log.ModuleMaskAll) })

	logModMask{mask: log.ModPPU.Mask()}.apply()
	logModMask{mask: log.ModCPU.Mask()}.apply()

	if !log.ModCPU.Enabled(log.DebugLevel) {
		t.Errorf("cpu debug logs disabled, want enabled")
	}
	if log.ModPPU.Enabled(log.DebugLevel) {
		t.Errorf("ppu debug logs still enabled after a new mask was applied")
	}
}
