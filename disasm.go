package main

import (
	"fmt"
	"io"

	"github.com/Akamitori/nes-emulator-sub000/hw"
	"github.com/Akamitori/nes-emulator-sub000/ines"
)

// disasmMain statically disassembles count instructions of a ROM.
func disasmMain(w io.Writer, args Disasm) error {
	rom, err := ines.Open(args.RomPath)
	if err != nil {
		return fmt.Errorf("error reading ROM: %w", err)
	}

	bus, err := hw.NewBus(rom)
	if err != nil {
		return err
	}
	cpu := hw.NewCPU(bus)
	if err := cpu.Reset(); err != nil {
		return err
	}

	pc := cpu.PC
	if args.From != nil {
		pc = uint16(*args.From)
	}
	disassemble(w, cpu, pc, args.Count)
	return nil
}

func disassemble(w io.Writer, cpu *hw.CPU, pc uint16, count int) {
	for range count {
		d := cpu.Disasm(pc)
		fmt.Fprintln(w, d.String())
		pc += uint16(len(d.Buf))
	}
}
