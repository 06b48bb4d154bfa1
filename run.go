package main

import (
	"fmt"
	"io"

	"github.com/Akamitori/nes-emulator-sub000/emu/log"
	"github.com/Akamitori/nes-emulator-sub000/hw"
	"github.com/Akamitori/nes-emulator-sub000/ines"
)

// runMain runs a ROM until BRK, a fatal error, or the instruction budget is
// exhausted. The returned CPU is nil if emulation could not start.
func runMain(args Run, cfg Config) (*hw.CPU, error) {
	rom, err := ines.Open(args.RomPath)
	if err != nil {
		return nil, fmt.Errorf("error reading ROM: %w", err)
	}

	bus, err := hw.NewBus(rom)
	if err != nil {
		return nil, fmt.Errorf("failed to start emulator: %w", err)
	}

	cpu := hw.NewCPU(bus)
	if err := cpu.Reset(); err != nil {
		return nil, err
	}
	if args.PC != nil {
		cpu.PC = uint16(*args.PC)
	}

	log.AddContext(cpu)
	defer log.RemoveContext(cpu)

	if args.Trace != nil {
		defer args.Trace.Close()

		fmtstr := cfg.Trace.Format
		if args.TraceFormat != "" {
			fmtstr = args.TraceFormat
		}
		format, err := hw.ParseTraceFormat(fmtstr)
		if err != nil {
			return nil, err
		}
		cpu.SetTrace(args.Trace, format)
	}

	return cpu, execute(cpu, args.Steps)
}

// execute runs cpu until BRK or for n instructions if n > 0.
func execute(cpu *hw.CPU, n int64) error {
	if n <= 0 {
		if err := cpu.Run(); err != nil {
			return fmt.Errorf("CPU stopped: %w", err)
		}
		log.ModEmu.InfoZ("BRK").Int64("cycles", cpu.Cycles).End()
		return nil
	}

	for i := int64(0); i < n; i++ {
		running, err := cpu.Step()
		if err != nil {
			return fmt.Errorf("CPU stopped after %d instructions: %w", i, err)
		}
		if !running {
			break
		}
	}
	return nil
}

func printCPUState(w io.Writer, cpu *hw.CPU) {
	fmt.Fprintf(w, "A:%02X X:%02X Y:%02X P:%02X(%s) SP:%02X PC:%04X cycles:%d\n",
		cpu.A, cpu.X, cpu.Y, uint8(cpu.P), cpu.P, cpu.SP, cpu.PC, cpu.Cycles)
}
