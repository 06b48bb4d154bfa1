package hw

import (
	"fmt"
)

type DisasmOp struct {
	Opcode string
	Oper   string
	Buf    []byte
	PC     uint16
}

func (d DisasmOp) String() string {
	return string(d.appendTo(nil, false))
}

// Bytes returns the string representation of a DisasmOp, padded to the
// register columns of the execution trace.
func (d DisasmOp) Bytes() []byte {
	return d.appendTo(make([]byte, 0, 80), true)
}

func (d DisasmOp) appendTo(buf []byte, pad bool) []byte {
	const (
		opcodeCol = 16
		totalLen  = 47
	)

	start := len(buf)
	buf = append(buf, 0, 0, 0, 0, ' ', ' ')
	hexEncode(buf[start:], byte(d.PC>>8))
	hexEncode(buf[start+2:], byte(d.PC))

	for _, b := range d.Buf {
		buf = append(buf, 0, 0, ' ')
		hexEncode(buf[len(buf)-3:], b)
	}

	// Undocumented opcodes are prefixed with a '*', which sits in the
	// column before the mnemonic.
	col := opcodeCol
	if len(d.Opcode) > 0 && d.Opcode[0] == '*' {
		col--
	}
	for len(buf)-start < col {
		buf = append(buf, ' ')
	}

	buf = append(buf, d.Opcode...)
	if d.Oper != "" {
		buf = append(buf, ' ')
		buf = append(buf, d.Oper...)
	}

	if pad {
		for len(buf)-start < totalLen {
			buf = append(buf, ' ')
		}
	}
	return buf
}

func hexEncode(dst []byte, v byte) {
	const hextable = "0123456789ABCDEF"
	dst[0] = hextable[v>>4]
	dst[1] = hextable[v&0x0f]
}

func isBranch(code uint8) bool {
	// BPL BMI BVC BVS BCC BCS BNE BEQ
	return code&0x1F == 0x10
}

func isAccumulator(code uint8) bool {
	switch code {
	case 0x0A, 0x4A, 0x2A, 0x6A:
		return true
	}
	return false
}

// Disasm disassembles the instruction at pc. Effective addresses and memory
// values shown alongside the operand are computed from the current register
// values. Disasm has no side effects.
func (c *CPU) Disasm(pc uint16) DisasmOp {
	peek := func(addr uint16) uint8 { return c.Bus.Read8(addr, true) }

	code := peek(pc)
	op, ok := LookupOpcode(code)
	if !ok {
		return DisasmOp{PC: pc, Buf: []byte{code}, Opcode: "???"}
	}

	d := DisasmOp{
		PC:     pc,
		Opcode: op.Name,
		Buf:    make([]byte, op.Len),
	}
	if op.Illegal {
		d.Opcode = "*" + op.Name
	}
	for i := range d.Buf {
		d.Buf[i] = peek(pc + uint16(i))
	}

	var ea uint16
	if op.Mode != NoneAddressing && op.Mode != Immediate {
		ea = resolveAddr(c.Bus, op.Mode, pc+1, c.X, c.Y, true)
	}

	switch op.Len {
	case 1:
		if isAccumulator(code) {
			d.Oper = "A"
		}
	case 2:
		nn := d.Buf[1]
		switch op.Mode {
		case Immediate:
			d.Oper = fmt.Sprintf("#$%02X", nn)
		case ZeroPage:
			d.Oper = fmt.Sprintf("$%02X = %02X", nn, peek(ea))
		case ZeroPageX:
			d.Oper = fmt.Sprintf("$%02X,X @ %02X = %02X", nn, ea, peek(ea))
		case ZeroPageY:
			d.Oper = fmt.Sprintf("$%02X,Y @ %02X = %02X", nn, ea, peek(ea))
		case IndirectX:
			d.Oper = fmt.Sprintf("($%02X,X) @ %02X = %04X = %02X", nn, nn+c.X, ea, peek(ea))
		case IndirectY:
			d.Oper = fmt.Sprintf("($%02X),Y = %04X @ %04X = %02X", nn, ea-uint16(c.Y), ea, peek(ea))
		case NoneAddressing:
			if isBranch(code) {
				d.Oper = fmt.Sprintf("$%04X", pc+2+uint16(int8(nn)))
			}
		}
	case 3:
		abs := uint16(d.Buf[2])<<8 | uint16(d.Buf[1])
		switch {
		case code == 0x4C || code == 0x20:
			d.Oper = fmt.Sprintf("$%04X", abs)
		case code == 0x6C:
			// the pointer high byte is read from the same page
			hi := abs&0xFF00 | uint16(uint8(abs)+1)
			target := uint16(peek(hi))<<8 | uint16(peek(abs))
			d.Oper = fmt.Sprintf("($%04X) = %04X", abs, target)
		case op.Mode == Absolute:
			d.Oper = fmt.Sprintf("$%04X = %02X", abs, peek(ea))
		case op.Mode == AbsoluteX:
			d.Oper = fmt.Sprintf("$%04X,X @ %04X = %02X", abs, ea, peek(ea))
		case op.Mode == AbsoluteY:
			d.Oper = fmt.Sprintf("$%04X,Y @ %04X = %02X", abs, ea, peek(ea))
		}
	}
	return d
}
