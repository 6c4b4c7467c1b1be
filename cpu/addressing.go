package cpu

// resolved is what an addressing-mode resolution produces: an effective
// address (where applicable), the value already read from it (for load and
// read-modify-write kinds), whether a page was crossed, and whether the
// operand is the accumulator rather than memory.
type resolved struct {
	addr        uint16
	value       uint8
	pageCrossed bool
	accumulator bool
}

// resolveAddress implements §4.3's operand-byte widths and effective-address
// formulas, and (per kind) the load/store/read-modify-write bus-access
// pattern each real opcode issues (§5 "Ordering / bus contract", §9 open
// question 2). opVal1 is the byte already fetched at the common cycle-2
// read shared by every instruction; PC still points at that byte on entry.
func (c *Chip) resolveAddress(step *stepBuilder, mode Mode, kind instrKind, opVal1 uint8) resolved {
	switch mode {
	case ModeImplied:
		return resolved{}

	case ModeAccumulator:
		return resolved{value: c.A, accumulator: true}

	case ModeImmediate:
		c.PC++
		return resolved{value: opVal1}

	case ModeZeroPage:
		addr := uint16(opVal1)
		c.PC++
		return c.finishRMWOrLoad(step, addr, kind)

	case ModeZeroPageX:
		return c.resolveZeroPageIndexed(step, kind, opVal1, c.X)

	case ModeZeroPageY:
		return c.resolveZeroPageIndexed(step, kind, opVal1, c.Y)

	case ModeAbsolute:
		c.PC++
		hi := c.busRead(step, c.PC)
		c.PC++
		addr := uint16(opVal1) | uint16(hi)<<8
		return c.finishRMWOrLoad(step, addr, kind)

	case ModeAbsoluteX:
		return c.resolveAbsoluteIndexed(step, kind, opVal1, c.X)

	case ModeAbsoluteY:
		return c.resolveAbsoluteIndexed(step, kind, opVal1, c.Y)

	case ModeIndirect:
		c.PC++
		hi := c.busRead(step, c.PC)
		c.PC++
		ptr := uint16(opVal1) | uint16(hi)<<8
		lo2 := c.busRead(step, ptr)
		// §4.3: the hardware indirect-JMP bug. The high byte is read from
		// ptr with only its low byte incremented, never crossing a page.
		ptrHiBuggy := (ptr & 0xFF00) | ((ptr + 1) & 0x00FF)
		hi2 := c.busRead(step, ptrHiBuggy)
		return resolved{addr: uint16(lo2) | uint16(hi2)<<8}

	case ModeIndirectX:
		c.PC++
		c.busRead(step, uint16(opVal1)) // dummy read at the unindexed zp pointer
		zp := uint8(opVal1 + c.X)
		lo := c.busRead(step, uint16(zp))
		hi := c.busRead(step, uint16(zp+1)) // zero-page wrap, not zp+1 unmasked
		addr := uint16(lo) | uint16(hi)<<8
		return c.finishLoadOrStore(step, addr, kind)

	case ModeIndirectY:
		c.PC++
		lo := c.busRead(step, uint16(opVal1))
		hi := c.busRead(step, uint16(opVal1+1)) // zero-page wrap
		base := uint16(lo) | uint16(hi)<<8
		return c.finishIndexedY(step, kind, base, lo)

	default:
		return resolved{}
	}
}

// finishRMWOrLoad handles the shared tail of zero-page and absolute
// addressing once addr is known: stores write nothing here (the caller
// writes the register value), loads read once, RMW reads once then
// dummy-writes the same value back.
func (c *Chip) finishRMWOrLoad(step *stepBuilder, addr uint16, kind instrKind) resolved {
	if kind == kindStore {
		return resolved{addr: addr}
	}
	v := c.busRead(step, addr)
	if kind == kindRMW {
		c.busWrite(step, addr, v) // dummy write-back of the unmodified value
	}
	return resolved{addr: addr, value: v}
}

// finishLoadOrStore is finishRMWOrLoad without an RMW case: official
// opcodes never pair (d,X)/(d),Y addressing with a read-modify-write
// mnemonic.
func (c *Chip) finishLoadOrStore(step *stepBuilder, addr uint16, kind instrKind) resolved {
	if kind == kindStore {
		return resolved{addr: addr}
	}
	return resolved{addr: addr, value: c.busRead(step, addr)}
}

func (c *Chip) resolveZeroPageIndexed(step *stepBuilder, kind instrKind, opVal1, reg uint8) resolved {
	c.PC++
	c.busRead(step, uint16(opVal1)) // dummy read at the unindexed zp address
	addr := uint16(opVal1 + reg)
	return c.finishRMWOrLoad(step, addr, kind)
}

func (c *Chip) resolveAbsoluteIndexed(step *stepBuilder, kind instrKind, opVal1, reg uint8) resolved {
	c.PC++
	hi := c.busRead(step, c.PC)
	c.PC++
	base := uint16(opVal1) | uint16(hi)<<8
	full := base + uint16(reg)
	// Uncorrected: same page as base, low byte wraps within that page. Real
	// hardware always performs this read (or, for a store, this read is
	// simply thrown away); only loads get to skip the corrected re-read
	// when no page was actually crossed.
	uncorrected := (base & 0xFF00) | uint16(opVal1+reg)
	crossed := (base & 0xFF00) != (full & 0xFF00)

	switch kind {
	case kindStore:
		c.busRead(step, uncorrected) // dummy; store always takes the slow path
		return resolved{addr: full, pageCrossed: crossed}
	case kindRMW:
		c.busRead(step, uncorrected) // dummy
		v := c.busRead(step, full)   // real read, always, regardless of crossing
		c.busWrite(step, full, v)    // dummy write-back
		return resolved{addr: full, value: v, pageCrossed: crossed}
	default: // kindLoad
		v := c.busRead(step, uncorrected)
		if crossed {
			v = c.busRead(step, full)
		}
		return resolved{addr: full, value: v, pageCrossed: crossed}
	}
}

func (c *Chip) finishIndexedY(step *stepBuilder, kind instrKind, base uint16, baseLo uint8) resolved {
	full := base + uint16(c.Y)
	uncorrected := (base & 0xFF00) | uint16(baseLo+c.Y)
	crossed := (base & 0xFF00) != (full & 0xFF00)

	if kind == kindStore {
		c.busRead(step, uncorrected) // dummy; store always takes the slow path
		return resolved{addr: full, pageCrossed: crossed}
	}
	v := c.busRead(step, uncorrected)
	if crossed {
		v = c.busRead(step, full)
	}
	return resolved{addr: full, value: v, pageCrossed: crossed}
}
