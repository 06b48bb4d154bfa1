package hw

import (
	"fmt"
	"io"

	"github.com/Akamitori/nes-emulator-sub000/emu/log"
	"github.com/Akamitori/nes-emulator-sub000/hw/hwio"
)

// ResetVector holds the power-on program counter.
const ResetVector = 0xFFFC

// DefaultLoadAddr is where Load places programs unless CPU.LoadAddr is set.
const DefaultLoadAddr = 0x0600

const opBRK = 0x00

type CPU struct {
	Bus hwio.BankIO8

	A  uint8  // accumulator
	X  uint8  // x register
	Y  uint8  // y register
	SP uint8  // stack pointer
	PC uint16 // program counter
	P  P      // processor status flags

	// Cycles accumulates the base cycle count of executed instructions.
	Cycles int64

	// LoadAddr is the address at which Load writes programs.
	LoadAddr uint16

	vector    uint16 // reset vector set by Load
	hasVector bool
	halted    bool

	tracer *tracer
}

// NewCPU creates a new CPU connected to bus.
func NewCPU(bus hwio.BankIO8) *CPU {
	return &CPU{
		Bus:      bus,
		SP:       0xFD,
		P:        IntDisable | Unused,
		LoadAddr: DefaultLoadAddr,
	}
}

// Reset sets the CPU in its power-on state and loads the program counter
// from the reset vector.
func (c *CPU) Reset() (err error) {
	defer catchFault(&err)

	c.A, c.X, c.Y = 0, 0, 0
	c.SP = 0xFD
	c.P = IntDisable | Unused
	c.halted = false

	if c.hasVector {
		c.PC = c.vector
	} else {
		c.PC = c.Read16(ResetVector)
	}
	return nil
}

// Load writes program at c.LoadAddr and points the reset vector at it.
func (c *CPU) Load(program []byte) (err error) {
	defer catchFault(&err)

	if int(c.LoadAddr)+len(program) > 0x10000 {
		return fmt.Errorf("program too big: %d bytes at $%04X", len(program), c.LoadAddr)
	}
	for i, b := range program {
		c.Write8(c.LoadAddr+uint16(i), b)
	}
	c.vector = c.LoadAddr
	c.hasVector = true
	return nil
}

// LoadAndRun loads program, resets the CPU and runs until BRK.
func (c *CPU) LoadAndRun(program []byte) error {
	if err := c.Load(program); err != nil {
		return err
	}
	if err := c.Reset(); err != nil {
		return err
	}
	return c.Run()
}

// Run executes instructions until BRK or a fatal error.
func (c *CPU) Run() error {
	return c.RunWithCallback(func(*CPU) {})
}

// RunWithCallback calls cb before each instruction, then executes it. It
// returns nil after a BRK, or the error that stopped the CPU.
func (c *CPU) RunWithCallback(cb func(*CPU)) error {
	for {
		cb(c)
		running, err := c.Step()
		if err != nil {
			return err
		}
		if !running {
			return nil
		}
	}
}

// Step executes a single instruction. It reports false once the CPU
// executed BRK or stopped on error. Memory effects of the instruction are
// complete when Step returns.
func (c *CPU) Step() (running bool, err error) {
	defer catchFault(&err)

	if c.halted {
		return false, &HaltError{PC: c.PC, Opcode: c.Bus.Read8(c.PC, true)}
	}

	if c.tracer != nil {
		c.tracer.write(c.state())
	}

	pc := c.PC
	code := c.Read8(pc)
	c.PC++

	op, ok := LookupOpcode(code)
	if !ok {
		return false, &OpcodeError{PC: pc, Opcode: code}
	}
	c.Cycles += int64(op.Cycles)

	if code == opBRK {
		return false, nil
	}

	op.exec(c, op)
	if c.halted {
		// stay on the jammed opcode
		c.PC = pc
		log.ModCPU.WarnZ("CPU halted").
			Hex16("PC", pc).
			Hex8("opcode", code).
			End()
		return false, &HaltError{PC: pc, Opcode: code}
	}
	if !op.flow {
		c.PC += uint16(op.Len) - 1
	}
	return true, nil
}

// SetTrace enables the execution trace of each instruction to w, before it
// executes. A nil writer disables tracing.
func (c *CPU) SetTrace(w io.Writer, format TraceFormat) {
	if w == nil {
		c.tracer = nil
		return
	}
	c.tracer = newTracer(c, w, format)
}

// AddLogContext adds the current program counter to log entries.
func (c *CPU) AddLogContext(z *log.EntryZ) {
	z.Hex16("pc", c.PC)
}

func (c *CPU) Read8(addr uint16) uint8 {
	return c.Bus.Read8(addr, false)
}

func (c *CPU) Write8(addr uint16, val uint8) {
	c.Bus.Write8(addr, val)
}

func (c *CPU) Read16(addr uint16) uint16 {
	return hwio.Read16(c.Bus, addr)
}

func (c *CPU) Write16(addr uint16, val uint16) {
	hwio.Write16(c.Bus, addr, val)
}

/* stack operations */

func (c *CPU) push8(val uint8) {
	c.Write8(0x0100+uint16(c.SP), val)
	c.SP--
}

func (c *CPU) push16(val uint16) {
	c.push8(uint8(val >> 8))
	c.push8(uint8(val))
}

func (c *CPU) pull8() uint8 {
	c.SP++
	return c.Read8(0x0100 + uint16(c.SP))
}

func (c *CPU) pull16() uint16 {
	lo := c.pull8()
	hi := c.pull8()
	return uint16(hi)<<8 | uint16(lo)
}
