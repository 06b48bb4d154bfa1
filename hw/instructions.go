package hw

// handlers maps each mnemonic to its implementation. A handler executes with
// PC pointing at the first operand byte.
var handlers = map[string]func(*CPU, *Opcode){
	"ADC": adc, "AND": and, "ASL": asl, "BIT": bit,
	"BCC": branch(Carry, false), "BCS": branch(Carry, true),
	"BNE": branch(Zero, false), "BEQ": branch(Zero, true),
	"BPL": branch(Negative, false), "BMI": branch(Negative, true),
	"BVC": branch(Overflow, false), "BVS": branch(Overflow, true),
	"BRK": nop1,
	"CLC": clearFlag(Carry), "CLD": clearFlag(Decimal), "CLI": clearFlag(IntDisable), "CLV": clearFlag(Overflow),
	"SEC": setFlag(Carry), "SED": setFlag(Decimal), "SEI": setFlag(IntDisable),
	"CMP": cmpa, "CPX": cpx, "CPY": cpy,
	"DEC": dec, "DEX": dex, "DEY": dey,
	"INC": inc, "INX": inx, "INY": iny,
	"EOR": eor, "ORA": ora,
	"JMP": jmp, "JSR": jsr, "RTS": rts, "RTI": rti,
	"LDA": lda, "LDX": ldx, "LDY": ldy,
	"LSR": lsr, "ROL": rol, "ROR": ror,
	"NOP": nop,
	"PHA": pha, "PHP": php, "PLA": pla, "PLP": plp,
	"SBC": sbc,
	"STA": sta, "STX": stx, "STY": sty,
	"TAX": tax, "TAY": tay, "TSX": tsx, "TXA": txa, "TXS": txs, "TYA": tya,

	// undocumented
	"AHX": ahx, "ALR": alr, "ANC": anc, "ARR": arr, "AXS": axs,
	"DCP": dcp, "ISB": isb, "KIL": kil, "LAS": las, "LAX": lax,
	"LXA": lxa, "RLA": rla, "RRA": rra, "SAX": sax, "SHX": shx,
	"SHY": shy, "SLO": slo, "SRE": sre, "TAS": tas, "XAA": xaa,
}

// flowInstructions set PC themselves, the CPU does not skip their operands.
var flowInstructions = map[string]bool{
	"JMP": true, "JSR": true, "RTS": true, "RTI": true,
	"BCC": true, "BCS": true, "BNE": true, "BEQ": true,
	"BPL": true, "BMI": true, "BVC": true, "BVS": true,
}

// addr returns the effective address of the operand of op.
func (c *CPU) addr(op *Opcode) uint16 {
	return resolveAddr(c.Bus, op.Mode, c.PC, c.X, c.Y, false)
}

// operand returns the value of the operand of op.
func (c *CPU) operand(op *Opcode) uint8 {
	return c.Read8(c.addr(op))
}

// rmw applies f to the accumulator (implied mode) or to the memory operand.
func (c *CPU) rmw(op *Opcode, f func(uint8) uint8) uint8 {
	if op.Mode == NoneAddressing {
		c.A = f(c.A)
		return c.A
	}
	addr := c.addr(op)
	val := f(c.Read8(addr))
	c.Write8(addr, val)
	return val
}

/* arithmetic */

// add adds val and carry to the accumulator.
func (c *CPU) add(val uint8) {
	carry := uint16(c.P & Carry)
	sum := uint16(c.A) + uint16(val) + carry
	c.P.checkCV(c.A, val, sum)
	c.A = uint8(sum)
	c.P.checkNZ(c.A)
}

func (c *CPU) compare(reg, val uint8) {
	c.P.writeFlag(Carry, val <= reg)
	c.P.checkNZ(reg - val)
}

func adc(c *CPU, op *Opcode) { c.add(c.operand(op)) }

// SBC is ADC with the one's complement of the operand.
func sbc(c *CPU, op *Opcode) { c.add(^c.operand(op)) }

func and(c *CPU, op *Opcode) {
	c.A &= c.operand(op)
	c.P.checkNZ(c.A)
}

func eor(c *CPU, op *Opcode) {
	c.A ^= c.operand(op)
	c.P.checkNZ(c.A)
}

func ora(c *CPU, op *Opcode) {
	c.A |= c.operand(op)
	c.P.checkNZ(c.A)
}

func cmpa(c *CPU, op *Opcode) { c.compare(c.A, c.operand(op)) }
func cpx(c *CPU, op *Opcode) { c.compare(c.X, c.operand(op)) }
func cpy(c *CPU, op *Opcode) { c.compare(c.Y, c.operand(op)) }

func bit(c *CPU, op *Opcode) {
	val := c.operand(op)
	c.P.writeFlag(Zero, c.A&val == 0)
	c.P.writeFlag(Overflow, val&0x40 != 0)
	c.P.writeFlag(Negative, val&0x80 != 0)
}

func (c *CPU) incr(val uint8) uint8 {
	val++
	c.P.checkNZ(val)
	return val
}

func (c *CPU) decr(val uint8) uint8 {
	val--
	c.P.checkNZ(val)
	return val
}

func inc(c *CPU, op *Opcode) { c.rmw(op, c.incr) }
func dec(c *CPU, op *Opcode) { c.rmw(op, c.decr) }
func inx(c *CPU, _ *Opcode)  { c.X = c.incr(c.X) }
func iny(c *CPU, _ *Opcode)  { c.Y = c.incr(c.Y) }
func dex(c *CPU, _ *Opcode)  { c.X = c.decr(c.X) }
func dey(c *CPU, _ *Opcode)  { c.Y = c.decr(c.Y) }

/* shifts and rotates */

func (c *CPU) shl(val uint8) uint8 {
	c.P.writeFlag(Carry, val&0x80 != 0)
	val <<= 1
	c.P.checkNZ(val)
	return val
}

func (c *CPU) shr(val uint8) uint8 {
	c.P.writeFlag(Carry, val&0x01 != 0)
	val >>= 1
	c.P.checkNZ(val)
	return val
}

func (c *CPU) rotl(val uint8) uint8 {
	carry := uint8(c.P & Carry)
	c.P.writeFlag(Carry, val&0x80 != 0)
	val = val<<1 | carry
	c.P.checkNZ(val)
	return val
}

func (c *CPU) rotr(val uint8) uint8 {
	carry := uint8(c.P&Carry) << 7
	c.P.writeFlag(Carry, val&0x01 != 0)
	val = val>>1 | carry
	c.P.checkNZ(val)
	return val
}

func asl(c *CPU, op *Opcode) { c.rmw(op, c.shl) }
func lsr(c *CPU, op *Opcode) { c.rmw(op, c.shr) }
func rol(c *CPU, op *Opcode) { c.rmw(op, c.rotl) }
func ror(c *CPU, op *Opcode) { c.rmw(op, c.rotr) }

/* loads, stores and transfers */

func lda(c *CPU, op *Opcode) {
	c.A = c.operand(op)
	c.P.checkNZ(c.A)
}

func ldx(c *CPU, op *Opcode) {
	c.X = c.operand(op)
	c.P.checkNZ(c.X)
}

func ldy(c *CPU, op *Opcode) {
	c.Y = c.operand(op)
	c.P.checkNZ(c.Y)
}

func sta(c *CPU, op *Opcode) { c.Write8(c.addr(op), c.A) }
func stx(c *CPU, op *Opcode) { c.Write8(c.addr(op), c.X) }
func sty(c *CPU, op *Opcode) { c.Write8(c.addr(op), c.Y) }

func tax(c *CPU, _ *Opcode) {
	c.X = c.A
	c.P.checkNZ(c.X)
}

func tay(c *CPU, _ *Opcode) {
	c.Y = c.A
	c.P.checkNZ(c.Y)
}

func tsx(c *CPU, _ *Opcode) {
	c.X = c.SP
	c.P.checkNZ(c.X)
}

func txa(c *CPU, _ *Opcode) {
	c.A = c.X
	c.P.checkNZ(c.A)
}

func tya(c *CPU, _ *Opcode) {
	c.A = c.Y
	c.P.checkNZ(c.A)
}

// TXS is the only transfer not affecting flags.
func txs(c *CPU, _ *Opcode) { c.SP = c.X }

/* flags */

func clearFlag(flag P) func(*CPU, *Opcode) {
	return func(c *CPU, _ *Opcode) { c.P.clearFlags(flag) }
}

func setFlag(flag P) func(*CPU, *Opcode) {
	return func(c *CPU, _ *Opcode) { c.P.setFlags(flag) }
}

/* stack */

func pha(c *CPU, _ *Opcode) { c.push8(c.A) }

func php(c *CPU, _ *Opcode) { c.push8(uint8(c.P | Break | Unused)) }

func pla(c *CPU, _ *Opcode) {
	c.A = c.pull8()
	c.P.checkNZ(c.A)
}

// pullP pops the status register: B1 only exists on the stack, B2 always
// reads as set.
func (c *CPU) pullP() {
	c.P = P(c.pull8())&^Break | Unused
}

func plp(c *CPU, _ *Opcode) { c.pullP() }

/* control flow */

func branch(flag P, set bool) func(*CPU, *Opcode) {
	return func(c *CPU, _ *Opcode) {
		off := int8(c.Read8(c.PC))
		c.PC++
		if c.P.hasFlag(flag) == set {
			c.PC += uint16(off)
		}
	}
}

func jmp(c *CPU, op *Opcode) {
	if op.Mode == Absolute {
		c.PC = c.Read16(c.PC)
		return
	}

	// Indirect: the pointer high byte is fetched from the same page when
	// the pointer sits at the end of a page.
	ptr := c.Read16(c.PC)
	lo := c.Read8(ptr)
	hi := c.Read8(ptr&0xFF00 | uint16(uint8(ptr)+1))
	c.PC = uint16(hi)<<8 | uint16(lo)
}

// JSR pushes the address of its last byte, RTS adds 1 to the popped address.
func jsr(c *CPU, _ *Opcode) {
	target := c.Read16(c.PC)
	c.push16(c.PC + 1)
	c.PC = target
}

func rts(c *CPU, _ *Opcode) { c.PC = c.pull16() + 1 }

func rti(c *CPU, _ *Opcode) {
	c.pullP()
	c.PC = c.pull16()
}

func nop1(*CPU, *Opcode) {}

// NOP variants with an operand (SKB, IGN) read it and discard the value.
func nop(c *CPU, op *Opcode) {
	if op.Mode != NoneAddressing {
		c.operand(op)
	}
}

/* undocumented */

func kil(c *CPU, _ *Opcode) { c.halted = true }

func lax(c *CPU, op *Opcode) {
	c.A = c.operand(op)
	c.X = c.A
	c.P.checkNZ(c.A)
}

func sax(c *CPU, op *Opcode) { c.Write8(c.addr(op), c.A&c.X) }

func dcp(c *CPU, op *Opcode) {
	addr := c.addr(op)
	val := c.Read8(addr) - 1
	c.Write8(addr, val)
	c.compare(c.A, val)
}

func isb(c *CPU, op *Opcode) {
	addr := c.addr(op)
	val := c.Read8(addr) + 1
	c.Write8(addr, val)
	c.add(^val)
}

func slo(c *CPU, op *Opcode) {
	c.A |= c.rmw(op, c.shl)
	c.P.checkNZ(c.A)
}

func rla(c *CPU, op *Opcode) {
	c.A &= c.rmw(op, c.rotl)
	c.P.checkNZ(c.A)
}

func sre(c *CPU, op *Opcode) {
	c.A ^= c.rmw(op, c.shr)
	c.P.checkNZ(c.A)
}

func rra(c *CPU, op *Opcode) { c.add(c.rmw(op, c.rotr)) }

func anc(c *CPU, op *Opcode) {
	and(c, op)
	c.P.writeFlag(Carry, c.A&0x80 != 0)
}

func alr(c *CPU, op *Opcode) {
	c.A &= c.operand(op)
	c.A = c.shr(c.A)
}

func arr(c *CPU, op *Opcode) {
	c.A &= c.operand(op)
	c.A = c.rotr(c.A)

	b6 := c.A >> 6 & 1
	b5 := c.A >> 5 & 1
	c.P.writeFlag(Carry, b6 != 0)
	c.P.writeFlag(Overflow, b6^b5 != 0)
}

func axs(c *CPU, op *Opcode) {
	val := c.operand(op)
	ax := c.A & c.X
	c.X = ax - val
	c.P.writeFlag(Carry, ax >= val)
	c.P.checkNZ(c.X)
}

func lxa(c *CPU, op *Opcode) {
	c.A = c.operand(op)
	c.X = c.A
	c.P.checkNZ(c.A)
}

func xaa(c *CPU, op *Opcode) {
	c.A = c.X & c.operand(op)
	c.P.checkNZ(c.A)
}

func las(c *CPU, op *Opcode) {
	val := c.operand(op) & c.SP
	c.A, c.X, c.SP = val, val, val
	c.P.checkNZ(val)
}

// storeHigh stores val & (H+1) where H is the high byte of the effective
// address.
func (c *CPU) storeHigh(op *Opcode, val uint8) {
	addr := c.addr(op)
	c.Write8(addr, val&(uint8(addr>>8)+1))
}

func ahx(c *CPU, op *Opcode) { c.storeHigh(op, c.A&c.X) }
func shx(c *CPU, op *Opcode) { c.storeHigh(op, c.X) }
func shy(c *CPU, op *Opcode) { c.storeHigh(op, c.Y) }

func tas(c *CPU, op *Opcode) {
	c.SP = c.A & c.X
	c.storeHigh(op, c.SP)
}
