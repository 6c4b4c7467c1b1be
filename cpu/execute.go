package cpu

// executeOpcode dispatches a decoded opcode to its semantics (§4.4). opVal1
// is the byte already fetched at the shared cycle-2 read; PC still points
// at it on entry for every mnemonic except those (branches, JSR, BRK) that
// consume it explicitly below. It returns whether the operand fetch crossed
// a page boundary, so the caller can check the accumulated bus-cycle count
// against entry.Cycles/entry.PageCross (§9 "base cycles, page-cross-adds
// flag").
func (c *Chip) executeOpcode(step *stepBuilder, entry opEntry, opVal1 uint8) (pageCrossed bool) {
	switch entry.Mnemonic {
	case "JMP":
		r := c.resolveAddress(step, entry.Mode, kindStore, opVal1)
		c.PC = r.addr
		return false
	case "JSR":
		c.jsr(step, opVal1)
		return false
	case "RTS":
		c.rts(step)
		return false
	case "RTI":
		c.rti(step)
		return false
	case "BRK":
		c.brk(step)
		return false
	case "PHA":
		c.push(step, c.A)
		return false
	case "PHP":
		c.push(step, c.P.packForPHP())
		return false
	case "PLA":
		c.pla(step)
		return false
	case "PLP":
		c.plp(step)
		return false
	case "BPL":
		c.branch(step, !c.P.has(flagN), opVal1)
		return false
	case "BMI":
		c.branch(step, c.P.has(flagN), opVal1)
		return false
	case "BVC":
		c.branch(step, !c.P.has(flagV), opVal1)
		return false
	case "BVS":
		c.branch(step, c.P.has(flagV), opVal1)
		return false
	case "BCC":
		c.branch(step, !c.P.has(flagC), opVal1)
		return false
	case "BCS":
		c.branch(step, c.P.has(flagC), opVal1)
		return false
	case "BNE":
		c.branch(step, !c.P.has(flagZ), opVal1)
		return false
	case "BEQ":
		c.branch(step, c.P.has(flagZ), opVal1)
		return false
	case "CLC":
		c.P = c.P.with(flagC, false)
		return false
	case "SEC":
		c.P = c.P.with(flagC, true)
		return false
	case "CLI":
		c.P = c.P.with(flagI, false)
		return false
	case "SEI":
		c.P = c.P.with(flagI, true)
		return false
	case "CLD":
		c.P = c.P.with(flagD, false)
		return false
	case "SED":
		c.P = c.P.with(flagD, true)
		return false
	case "CLV":
		c.P = c.P.with(flagV, false)
		return false
	case "TAX":
		c.X = c.A
		c.P = c.P.setZN(c.X)
		return false
	case "TAY":
		c.Y = c.A
		c.P = c.P.setZN(c.Y)
		return false
	case "TXA":
		c.A = c.X
		c.P = c.P.setZN(c.A)
		return false
	case "TYA":
		c.A = c.Y
		c.P = c.P.setZN(c.A)
		return false
	case "TSX":
		c.X = c.S
		c.P = c.P.setZN(c.X)
		return false
	case "TXS":
		c.S = c.X // TXS does not touch flags (§4.4)
		return false
	case "INX":
		c.X++
		c.P = c.P.setZN(c.X)
		return false
	case "INY":
		c.Y++
		c.P = c.P.setZN(c.Y)
		return false
	case "DEX":
		c.X--
		c.P = c.P.setZN(c.X)
		return false
	case "DEY":
		c.Y--
		c.P = c.P.setZN(c.Y)
		return false
	case "NOP":
		return false
	}

	r := c.resolveAddress(step, entry.Mode, kindOf(entry.Mnemonic), opVal1)
	switch entry.Mnemonic {
	case "LDA":
		c.A = r.value
		c.P = c.P.setZN(c.A)
	case "LDX":
		c.X = r.value
		c.P = c.P.setZN(c.X)
	case "LDY":
		c.Y = r.value
		c.P = c.P.setZN(c.Y)
	case "STA":
		c.busWrite(step, r.addr, c.A)
	case "STX":
		c.busWrite(step, r.addr, c.X)
	case "STY":
		c.busWrite(step, r.addr, c.Y)
	case "AND":
		c.A &= r.value
		c.P = c.P.setZN(c.A)
	case "ORA":
		c.A |= r.value
		c.P = c.P.setZN(c.A)
	case "EOR":
		c.A ^= r.value
		c.P = c.P.setZN(c.A)
	case "ADC":
		c.adc(r.value)
	case "SBC":
		c.sbc(r.value)
	case "CMP":
		c.compare(c.A, r.value)
	case "CPX":
		c.compare(c.X, r.value)
	case "CPY":
		c.compare(c.Y, r.value)
	case "BIT":
		c.P = c.P.with(flagZ, c.A&r.value == 0)
		c.P = c.P.with(flagN, r.value&0x80 != 0)
		c.P = c.P.with(flagV, r.value&0x40 != 0)
	case "ASL", "LSR", "ROL", "ROR":
		nv := c.shiftRotate(entry.Mnemonic, r.value)
		if r.accumulator {
			c.A = nv
		} else {
			c.busWrite(step, r.addr, nv)
		}
		c.P = c.P.setZN(nv)
	case "INC":
		nv := r.value + 1
		c.busWrite(step, r.addr, nv)
		c.P = c.P.setZN(nv)
	case "DEC":
		nv := r.value - 1
		c.busWrite(step, r.addr, nv)
		c.P = c.P.setZN(nv)
	}
	return r.pageCrossed
}

// shiftRotate implements ASL/LSR/ROL/ROR (§4.4): C receives the bit shifted
// out, N and Z are set by the caller from the result.
func (c *Chip) shiftRotate(mnemonic string, v uint8) uint8 {
	switch mnemonic {
	case "ASL":
		out := v&0x80 != 0
		v <<= 1
		c.P = c.P.with(flagC, out)
	case "LSR":
		out := v&0x01 != 0
		v >>= 1
		c.P = c.P.with(flagC, out)
	case "ROL":
		in := c.P.has(flagC)
		out := v&0x80 != 0
		v <<= 1
		if in {
			v |= 0x01
		}
		c.P = c.P.with(flagC, out)
	case "ROR":
		in := c.P.has(flagC)
		out := v&0x01 != 0
		v >>= 1
		if in {
			v |= 0x80
		}
		c.P = c.P.with(flagC, out)
	}
	return v
}

// compare implements CMP/CPX/CPY (§4.4): reg - operand, no borrow-in, reg
// itself unaffected.
func (c *Chip) compare(reg, operand uint8) {
	result := reg - operand
	c.P = c.P.with(flagC, reg >= operand)
	c.P = c.P.with(flagZ, reg == operand)
	c.P = c.P.with(flagN, result&0x80 != 0)
}

// adc implements ADC (§4.4), dispatching to decimal mode when D is set.
func (c *Chip) adc(m uint8) {
	if c.P.has(flagD) {
		c.adcDecimal(m)
		return
	}
	a := c.A
	var carry uint16
	if c.P.has(flagC) {
		carry = 1
	}
	sum := uint16(a) + uint16(m) + carry
	result := uint8(sum)
	c.P = c.P.with(flagC, sum > 0xFF)
	c.P = c.P.with(flagV, (a^result)&(m^result)&0x80 != 0)
	c.A = result
	c.P = c.P.setZN(c.A)
}

// sbc implements SBC (§4.4): binary mode is ADC with the operand inverted,
// which reproduces the spec's "SBC equivalent with M replaced by ~M"
// overflow rule for free.
func (c *Chip) sbc(m uint8) {
	if c.P.has(flagD) {
		c.sbcDecimal(m)
		return
	}
	c.adc(^m)
}

// adcDecimal implements BCD addition for the NMOS 6502 (§4.4, §9 "not
// 65C02"): each nibble carries independently, and the overflow flag is
// still computed from the binary sum rather than the decimal one, matching
// documented NMOS behavior.
func (c *Chip) adcDecimal(m uint8) {
	a := c.A
	var carryIn uint16
	if c.P.has(flagC) {
		carryIn = 1
	}

	binSum := uint16(a) + uint16(m) + carryIn
	binResult := uint8(binSum)
	c.P = c.P.with(flagV, (a^binResult)&(m^binResult)&0x80 != 0)

	lo := int(a&0x0F) + int(m&0x0F) + int(carryIn)
	var carryMid int
	if lo > 9 {
		lo -= 10
		carryMid = 1
	}
	hi := int(a>>4) + int(m>>4) + carryMid
	carryOut := false
	if hi > 9 {
		hi -= 10
		carryOut = true
	}
	result := uint8(hi<<4) | uint8(lo&0x0F)
	c.A = result
	c.P = c.P.with(flagC, carryOut)
	c.P = c.P.setZN(c.A)
}

// sbcDecimal implements BCD subtraction for the NMOS 6502 (§4.4).
func (c *Chip) sbcDecimal(m uint8) {
	a := c.A
	var borrowIn int
	if !c.P.has(flagC) {
		borrowIn = 1
	}

	binResult := int16(a) - int16(m) - int16(borrowIn)
	c.P = c.P.with(flagC, binResult >= 0)
	invM := ^m
	c.P = c.P.with(flagV, (a^uint8(binResult))&(invM^uint8(binResult))&0x80 != 0)

	lo := int(a&0x0F) - int(m&0x0F) - borrowIn
	hi := int(a>>4) - int(m>>4)
	if lo < 0 {
		lo += 10
		hi--
	}
	if hi < 0 {
		hi += 10
	}
	result := uint8(hi<<4) | uint8(lo&0x0F)
	c.A = result
	c.P = c.P.setZN(c.A)
}

// branch implements the eight conditional branches (§4.4, §8 "Branch
// penalties"). offset is the signed displacement byte already fetched as
// opVal1; PC is advanced past it here regardless of whether the branch is
// taken.
func (c *Chip) branch(step *stepBuilder, taken bool, offset uint8) {
	c.PC++
	if !taken {
		return
	}
	signed := int8(offset)
	target := uint16(int32(c.PC) + int32(signed))
	provisionalLo := uint8(c.PC) + offset
	provisional := (c.PC & 0xFF00) | uint16(provisionalLo)
	c.busRead(step, provisional) // dummy read at the not-yet-page-corrected PC
	if provisional != target {
		c.busRead(step, target) // page crossed: one more dummy read
	}
	c.PC = target
}

// push writes v at the current stack address and decrements S (§3
// invariant 1: page 1 only).
func (c *Chip) push(step *stepBuilder, v uint8) {
	c.busWrite(step, stackBase|uint16(c.S), v)
	c.S--
}

// jsr implements JSR (§4.4): reads the low byte of the target (already
// fetched as opVal1), pushes the return address, then reads the high byte
// — in that exact order, per the spec's cycle-exact note.
func (c *Chip) jsr(step *stepBuilder, opVal1 uint8) {
	c.PC++
	c.busRead(step, stackBase|uint16(c.S)) // internal stack-read cycle before pushing
	ret := c.PC
	c.push(step, uint8(ret>>8))
	c.push(step, uint8(ret))
	hi := c.busRead(step, c.PC)
	c.PC = uint16(opVal1) | uint16(hi)<<8
}

// pla implements PLA (§4.4): a dummy pre-increment stack read, then the
// real pull, setting N,Z.
func (c *Chip) pla(step *stepBuilder) {
	c.busRead(step, stackBase|uint16(c.S))
	c.S++
	v := c.busRead(step, stackBase|uint16(c.S))
	c.A = v
	c.P = c.P.setZN(v)
}

// plp implements PLP (§4.4): B ignored, U forced to 1 on load.
func (c *Chip) plp(step *stepBuilder) {
	c.busRead(step, stackBase|uint16(c.S))
	c.S++
	v := c.busRead(step, stackBase|uint16(c.S))
	c.P = unpackStatus(v)
}

// rts implements RTS (§4.4): pulls PCL then PCH, then a final dummy read at
// the popped address that also performs the "+1" as a real bus cycle
// rather than pure arithmetic, matching the hardware's cycle breakdown.
func (c *Chip) rts(step *stepBuilder) {
	c.busRead(step, stackBase|uint16(c.S))
	c.S++
	lo := c.busRead(step, stackBase|uint16(c.S))
	c.S++
	hi := c.busRead(step, stackBase|uint16(c.S))
	pc := uint16(lo) | uint16(hi)<<8
	c.busRead(step, pc)
	c.PC = pc + 1
}

// rti implements RTI (§4.4): pulls P (ignoring B, forcing U=1), then PC,
// with no +1.
func (c *Chip) rti(step *stepBuilder) {
	c.busRead(step, stackBase|uint16(c.S))
	c.S++
	p := c.busRead(step, stackBase|uint16(c.S))
	c.S++
	lo := c.busRead(step, stackBase|uint16(c.S))
	c.S++
	hi := c.busRead(step, stackBase|uint16(c.S))
	c.P = unpackStatus(p)
	c.PC = uint16(lo) | uint16(hi)<<8
}

// brk implements BRK (§4.4, §4.5): a 2-byte instruction that pushes PC+2,
// pushes P with B=1 U=1, sets I, and loads PC from the IRQ/BRK vector.
func (c *Chip) brk(step *stepBuilder) {
	c.PC++ // BRK's second byte, already fetched as opVal1 and discarded
	c.push(step, uint8(c.PC>>8))
	c.push(step, uint8(c.PC))
	c.push(step, c.P.packForPHP())
	c.P = c.P.with(flagI, true)
	lo := c.busRead(step, vectorIRQ)
	hi := c.busRead(step, vectorIRQ+1)
	c.PC = uint16(lo) | uint16(hi)<<8
}
