package hw

import (
	"fmt"
	"sync"
)

// Opcode describes one of the 256 opcode bytes.
type Opcode struct {
	Code    uint8
	Name    string
	Len     uint8 // instruction length, in bytes (1-3)
	Cycles  uint8 // base cycle count
	Mode    AddrMode
	Illegal bool // undocumented opcode

	exec func(*CPU, *Opcode)
	flow bool // exec sets PC itself
}

func op(code uint8, name string, len, cycles uint8, mode AddrMode) Opcode {
	return Opcode{Code: code, Name: name, Len: len, Cycles: cycles, Mode: mode}
}

func illegal(code uint8, name string, len, cycles uint8, mode AddrMode) Opcode {
	o := op(code, name, len, cycles, mode)
	o.Illegal = true
	return o
}

var officialOpcodes = []Opcode{
	op(0x00, "BRK", 1, 7, NoneAddressing),
	op(0xEA, "NOP", 1, 2, NoneAddressing),

	// Arithmetic
	op(0x69, "ADC", 2, 2, Immediate),
	op(0x65, "ADC", 2, 3, ZeroPage),
	op(0x75, "ADC", 2, 4, ZeroPageX),
	op(0x6D, "ADC", 3, 4, Absolute),
	op(0x7D, "ADC", 3, 4, AbsoluteX),
	op(0x79, "ADC", 3, 4, AbsoluteY),
	op(0x61, "ADC", 2, 6, IndirectX),
	op(0x71, "ADC", 2, 5, IndirectY),

	op(0xE9, "SBC", 2, 2, Immediate),
	op(0xE5, "SBC", 2, 3, ZeroPage),
	op(0xF5, "SBC", 2, 4, ZeroPageX),
	op(0xED, "SBC", 3, 4, Absolute),
	op(0xFD, "SBC", 3, 4, AbsoluteX),
	op(0xF9, "SBC", 3, 4, AbsoluteY),
	op(0xE1, "SBC", 2, 6, IndirectX),
	op(0xF1, "SBC", 2, 5, IndirectY),

	op(0x29, "AND", 2, 2, Immediate),
	op(0x25, "AND", 2, 3, ZeroPage),
	op(0x35, "AND", 2, 4, ZeroPageX),
	op(0x2D, "AND", 3, 4, Absolute),
	op(0x3D, "AND", 3, 4, AbsoluteX),
	op(0x39, "AND", 3, 4, AbsoluteY),
	op(0x21, "AND", 2, 6, IndirectX),
	op(0x31, "AND", 2, 5, IndirectY),

	op(0x49, "EOR", 2, 2, Immediate),
	op(0x45, "EOR", 2, 3, ZeroPage),
	op(0x55, "EOR", 2, 4, ZeroPageX),
	op(0x4D, "EOR", 3, 4, Absolute),
	op(0x5D, "EOR", 3, 4, AbsoluteX),
	op(0x59, "EOR", 3, 4, AbsoluteY),
	op(0x41, "EOR", 2, 6, IndirectX),
	op(0x51, "EOR", 2, 5, IndirectY),

	op(0x09, "ORA", 2, 2, Immediate),
	op(0x05, "ORA", 2, 3, ZeroPage),
	op(0x15, "ORA", 2, 4, ZeroPageX),
	op(0x0D, "ORA", 3, 4, Absolute),
	op(0x1D, "ORA", 3, 4, AbsoluteX),
	op(0x19, "ORA", 3, 4, AbsoluteY),
	op(0x01, "ORA", 2, 6, IndirectX),
	op(0x11, "ORA", 2, 5, IndirectY),

	// Shifts
	op(0x0A, "ASL", 1, 2, NoneAddressing),
	op(0x06, "ASL", 2, 5, ZeroPage),
	op(0x16, "ASL", 2, 6, ZeroPageX),
	op(0x0E, "ASL", 3, 6, Absolute),
	op(0x1E, "ASL", 3, 7, AbsoluteX),

	op(0x4A, "LSR", 1, 2, NoneAddressing),
	op(0x46, "LSR", 2, 5, ZeroPage),
	op(0x56, "LSR", 2, 6, ZeroPageX),
	op(0x4E, "LSR", 3, 6, Absolute),
	op(0x5E, "LSR", 3, 7, AbsoluteX),

	op(0x2A, "ROL", 1, 2, NoneAddressing),
	op(0x26, "ROL", 2, 5, ZeroPage),
	op(0x36, "ROL", 2, 6, ZeroPageX),
	op(0x2E, "ROL", 3, 6, Absolute),
	op(0x3E, "ROL", 3, 7, AbsoluteX),

	op(0x6A, "ROR", 1, 2, NoneAddressing),
	op(0x66, "ROR", 2, 5, ZeroPage),
	op(0x76, "ROR", 2, 6, ZeroPageX),
	op(0x6E, "ROR", 3, 6, Absolute),
	op(0x7E, "ROR", 3, 7, AbsoluteX),

	op(0xE6, "INC", 2, 5, ZeroPage),
	op(0xF6, "INC", 2, 6, ZeroPageX),
	op(0xEE, "INC", 3, 6, Absolute),
	op(0xFE, "INC", 3, 7, AbsoluteX),
	op(0xE8, "INX", 1, 2, NoneAddressing),
	op(0xC8, "INY", 1, 2, NoneAddressing),

	op(0xC6, "DEC", 2, 5, ZeroPage),
	op(0xD6, "DEC", 2, 6, ZeroPageX),
	op(0xCE, "DEC", 3, 6, Absolute),
	op(0xDE, "DEC", 3, 7, AbsoluteX),
	op(0xCA, "DEX", 1, 2, NoneAddressing),
	op(0x88, "DEY", 1, 2, NoneAddressing),

	op(0xC9, "CMP", 2, 2, Immediate),
	op(0xC5, "CMP", 2, 3, ZeroPage),
	op(0xD5, "CMP", 2, 4, ZeroPageX),
	op(0xCD, "CMP", 3, 4, Absolute),
	op(0xDD, "CMP", 3, 4, AbsoluteX),
	op(0xD9, "CMP", 3, 4, AbsoluteY),
	op(0xC1, "CMP", 2, 6, IndirectX),
	op(0xD1, "CMP", 2, 5, IndirectY),

	op(0xC0, "CPY", 2, 2, Immediate),
	op(0xC4, "CPY", 2, 3, ZeroPage),
	op(0xCC, "CPY", 3, 4, Absolute),

	op(0xE0, "CPX", 2, 2, Immediate),
	op(0xE4, "CPX", 2, 3, ZeroPage),
	op(0xEC, "CPX", 3, 4, Absolute),

	// Branching
	op(0x4C, "JMP", 3, 3, Absolute),
	op(0x6C, "JMP", 3, 5, NoneAddressing), // indirect, with the page boundary bug
	op(0x20, "JSR", 3, 6, Absolute),
	op(0x60, "RTS", 1, 6, NoneAddressing),
	op(0x40, "RTI", 1, 6, NoneAddressing),

	op(0xD0, "BNE", 2, 2, NoneAddressing),
	op(0x70, "BVS", 2, 2, NoneAddressing),
	op(0x50, "BVC", 2, 2, NoneAddressing),
	op(0x30, "BMI", 2, 2, NoneAddressing),
	op(0xF0, "BEQ", 2, 2, NoneAddressing),
	op(0xB0, "BCS", 2, 2, NoneAddressing),
	op(0x90, "BCC", 2, 2, NoneAddressing),
	op(0x10, "BPL", 2, 2, NoneAddressing),

	op(0x24, "BIT", 2, 3, ZeroPage),
	op(0x2C, "BIT", 3, 4, Absolute),

	// Stores, loads
	op(0xA9, "LDA", 2, 2, Immediate),
	op(0xA5, "LDA", 2, 3, ZeroPage),
	op(0xB5, "LDA", 2, 4, ZeroPageX),
	op(0xAD, "LDA", 3, 4, Absolute),
	op(0xBD, "LDA", 3, 4, AbsoluteX),
	op(0xB9, "LDA", 3, 4, AbsoluteY),
	op(0xA1, "LDA", 2, 6, IndirectX),
	op(0xB1, "LDA", 2, 5, IndirectY),

	op(0xA2, "LDX", 2, 2, Immediate),
	op(0xA6, "LDX", 2, 3, ZeroPage),
	op(0xB6, "LDX", 2, 4, ZeroPageY),
	op(0xAE, "LDX", 3, 4, Absolute),
	op(0xBE, "LDX", 3, 4, AbsoluteY),

	op(0xA0, "LDY", 2, 2, Immediate),
	op(0xA4, "LDY", 2, 3, ZeroPage),
	op(0xB4, "LDY", 2, 4, ZeroPageX),
	op(0xAC, "LDY", 3, 4, Absolute),
	op(0xBC, "LDY", 3, 4, AbsoluteX),

	op(0x85, "STA", 2, 3, ZeroPage),
	op(0x95, "STA", 2, 4, ZeroPageX),
	op(0x8D, "STA", 3, 4, Absolute),
	op(0x9D, "STA", 3, 5, AbsoluteX),
	op(0x99, "STA", 3, 5, AbsoluteY),
	op(0x81, "STA", 2, 6, IndirectX),
	op(0x91, "STA", 2, 6, IndirectY),

	op(0x86, "STX", 2, 3, ZeroPage),
	op(0x96, "STX", 2, 4, ZeroPageY),
	op(0x8E, "STX", 3, 4, Absolute),

	op(0x84, "STY", 2, 3, ZeroPage),
	op(0x94, "STY", 2, 4, ZeroPageX),
	op(0x8C, "STY", 3, 4, Absolute),

	// Flags clear
	op(0xD8, "CLD", 1, 2, NoneAddressing),
	op(0x58, "CLI", 1, 2, NoneAddressing),
	op(0xB8, "CLV", 1, 2, NoneAddressing),
	op(0x18, "CLC", 1, 2, NoneAddressing),
	op(0x38, "SEC", 1, 2, NoneAddressing),
	op(0x78, "SEI", 1, 2, NoneAddressing),
	op(0xF8, "SED", 1, 2, NoneAddressing),

	op(0xAA, "TAX", 1, 2, NoneAddressing),
	op(0xA8, "TAY", 1, 2, NoneAddressing),
	op(0xBA, "TSX", 1, 2, NoneAddressing),
	op(0x8A, "TXA", 1, 2, NoneAddressing),
	op(0x9A, "TXS", 1, 2, NoneAddressing),
	op(0x98, "TYA", 1, 2, NoneAddressing),

	// Stack
	op(0x48, "PHA", 1, 3, NoneAddressing),
	op(0x68, "PLA", 1, 4, NoneAddressing),
	op(0x08, "PHP", 1, 3, NoneAddressing),
	op(0x28, "PLP", 1, 4, NoneAddressing),
}

// Undocumented opcodes. ISC is listed as ISB, and SKB/IGN as NOP, like in
// reference execution logs.
var illegalOpcodes = []Opcode{
	illegal(0xC7, "DCP", 2, 5, ZeroPage),
	illegal(0xD7, "DCP", 2, 6, ZeroPageX),
	illegal(0xCF, "DCP", 3, 6, Absolute),
	illegal(0xDF, "DCP", 3, 7, AbsoluteX),
	illegal(0xDB, "DCP", 3, 7, AbsoluteY),
	illegal(0xD3, "DCP", 2, 8, IndirectY),
	illegal(0xC3, "DCP", 2, 8, IndirectX),

	illegal(0x27, "RLA", 2, 5, ZeroPage),
	illegal(0x37, "RLA", 2, 6, ZeroPageX),
	illegal(0x2F, "RLA", 3, 6, Absolute),
	illegal(0x3F, "RLA", 3, 7, AbsoluteX),
	illegal(0x3B, "RLA", 3, 7, AbsoluteY),
	illegal(0x33, "RLA", 2, 8, IndirectY),
	illegal(0x23, "RLA", 2, 8, IndirectX),

	illegal(0x07, "SLO", 2, 5, ZeroPage),
	illegal(0x17, "SLO", 2, 6, ZeroPageX),
	illegal(0x0F, "SLO", 3, 6, Absolute),
	illegal(0x1F, "SLO", 3, 7, AbsoluteX),
	illegal(0x1B, "SLO", 3, 7, AbsoluteY),
	illegal(0x03, "SLO", 2, 8, IndirectX),
	illegal(0x13, "SLO", 2, 8, IndirectY),

	illegal(0x47, "SRE", 2, 5, ZeroPage),
	illegal(0x57, "SRE", 2, 6, ZeroPageX),
	illegal(0x4F, "SRE", 3, 6, Absolute),
	illegal(0x5F, "SRE", 3, 7, AbsoluteX),
	illegal(0x5B, "SRE", 3, 7, AbsoluteY),
	illegal(0x43, "SRE", 2, 8, IndirectX),
	illegal(0x53, "SRE", 2, 8, IndirectY),

	illegal(0x67, "RRA", 2, 5, ZeroPage),
	illegal(0x77, "RRA", 2, 6, ZeroPageX),
	illegal(0x6F, "RRA", 3, 6, Absolute),
	illegal(0x7F, "RRA", 3, 7, AbsoluteX),
	illegal(0x7B, "RRA", 3, 7, AbsoluteY),
	illegal(0x63, "RRA", 2, 8, IndirectX),
	illegal(0x73, "RRA", 2, 8, IndirectY),

	illegal(0xE7, "ISB", 2, 5, ZeroPage),
	illegal(0xF7, "ISB", 2, 6, ZeroPageX),
	illegal(0xEF, "ISB", 3, 6, Absolute),
	illegal(0xFF, "ISB", 3, 7, AbsoluteX),
	illegal(0xFB, "ISB", 3, 7, AbsoluteY),
	illegal(0xE3, "ISB", 2, 8, IndirectX),
	illegal(0xF3, "ISB", 2, 8, IndirectY),

	// SKB
	illegal(0x80, "NOP", 2, 2, Immediate),
	illegal(0x82, "NOP", 2, 2, Immediate),
	illegal(0x89, "NOP", 2, 2, Immediate),
	illegal(0xC2, "NOP", 2, 2, Immediate),
	illegal(0xE2, "NOP", 2, 2, Immediate),

	// IGN
	illegal(0x04, "NOP", 2, 3, ZeroPage),
	illegal(0x44, "NOP", 2, 3, ZeroPage),
	illegal(0x64, "NOP", 2, 3, ZeroPage),
	illegal(0x14, "NOP", 2, 4, ZeroPageX),
	illegal(0x34, "NOP", 2, 4, ZeroPageX),
	illegal(0x54, "NOP", 2, 4, ZeroPageX),
	illegal(0x74, "NOP", 2, 4, ZeroPageX),
	illegal(0xD4, "NOP", 2, 4, ZeroPageX),
	illegal(0xF4, "NOP", 2, 4, ZeroPageX),
	illegal(0x0C, "NOP", 3, 4, Absolute),
	illegal(0x1C, "NOP", 3, 4, AbsoluteX),
	illegal(0x3C, "NOP", 3, 4, AbsoluteX),
	illegal(0x5C, "NOP", 3, 4, AbsoluteX),
	illegal(0x7C, "NOP", 3, 4, AbsoluteX),
	illegal(0xDC, "NOP", 3, 4, AbsoluteX),
	illegal(0xFC, "NOP", 3, 4, AbsoluteX),

	illegal(0x1A, "NOP", 1, 2, NoneAddressing),
	illegal(0x3A, "NOP", 1, 2, NoneAddressing),
	illegal(0x5A, "NOP", 1, 2, NoneAddressing),
	illegal(0x7A, "NOP", 1, 2, NoneAddressing),
	illegal(0xDA, "NOP", 1, 2, NoneAddressing),
	illegal(0xFA, "NOP", 1, 2, NoneAddressing),

	illegal(0xCB, "AXS", 2, 2, Immediate),
	illegal(0x6B, "ARR", 2, 2, Immediate),
	illegal(0xEB, "SBC", 2, 2, Immediate),
	illegal(0x0B, "ANC", 2, 2, Immediate),
	illegal(0x2B, "ANC", 2, 2, Immediate),
	illegal(0x4B, "ALR", 2, 2, Immediate),
	illegal(0xAB, "LXA", 2, 2, Immediate),
	illegal(0x8B, "XAA", 2, 2, Immediate),

	illegal(0xA7, "LAX", 2, 3, ZeroPage),
	illegal(0xB7, "LAX", 2, 4, ZeroPageY),
	illegal(0xAF, "LAX", 3, 4, Absolute),
	illegal(0xBF, "LAX", 3, 4, AbsoluteY),
	illegal(0xA3, "LAX", 2, 6, IndirectX),
	illegal(0xB3, "LAX", 2, 5, IndirectY),

	illegal(0x87, "SAX", 2, 3, ZeroPage),
	illegal(0x97, "SAX", 2, 4, ZeroPageY),
	illegal(0x8F, "SAX", 3, 4, Absolute),
	illegal(0x83, "SAX", 2, 6, IndirectX),

	illegal(0xBB, "LAS", 3, 4, AbsoluteY),
	illegal(0x9B, "TAS", 3, 5, AbsoluteY),
	illegal(0x93, "AHX", 2, 6, IndirectY),
	illegal(0x9F, "AHX", 3, 5, AbsoluteY),
	illegal(0x9E, "SHX", 3, 5, AbsoluteY),
	illegal(0x9C, "SHY", 3, 5, AbsoluteX),

	illegal(0x02, "KIL", 1, 2, NoneAddressing),
	illegal(0x12, "KIL", 1, 2, NoneAddressing),
	illegal(0x22, "KIL", 1, 2, NoneAddressing),
	illegal(0x32, "KIL", 1, 2, NoneAddressing),
	illegal(0x42, "KIL", 1, 2, NoneAddressing),
	illegal(0x52, "KIL", 1, 2, NoneAddressing),
	illegal(0x62, "KIL", 1, 2, NoneAddressing),
	illegal(0x72, "KIL", 1, 2, NoneAddressing),
	illegal(0x92, "KIL", 1, 2, NoneAddressing),
	illegal(0xB2, "KIL", 1, 2, NoneAddressing),
	illegal(0xD2, "KIL", 1, 2, NoneAddressing),
	illegal(0xF2, "KIL", 1, 2, NoneAddressing),
}

// buildOpcodeTable indexes the given opcode lists by opcode byte and binds
// each descriptor to its instruction handler.
func buildOpcodeTable(lists ...[]Opcode) (*[256]*Opcode, error) {
	var tbl [256]*Opcode
	for _, list := range lists {
		for i := range list {
			o := list[i]
			if prev := tbl[o.Code]; prev != nil {
				return nil, fmt.Errorf("duplicate opcode $%02X: %s and %s", o.Code, prev.Name, o.Name)
			}
			if o.Len < 1 || o.Len > 3 {
				return nil, fmt.Errorf("opcode $%02X: invalid length %d", o.Code, o.Len)
			}
			o.exec = handlers[o.Name]
			if o.exec == nil {
				return nil, fmt.Errorf("opcode $%02X: no handler for %s", o.Code, o.Name)
			}
			o.flow = flowInstructions[o.Name]
			tbl[o.Code] = &o
		}
	}
	return &tbl, nil
}

var opcodes = sync.OnceValue(func() *[256]*Opcode {
	tbl, err := buildOpcodeTable(officialOpcodes, illegalOpcodes)
	if err != nil {
		panic(fmt.Sprintf("malformed opcode table: %s", err))
	}
	return tbl
})

// LookupOpcode returns the descriptor of an opcode byte, or false if the
// opcode is not recognized.
func LookupOpcode(code uint8) (*Opcode, bool) {
	o := opcodes()[code]
	return o, o != nil
}
