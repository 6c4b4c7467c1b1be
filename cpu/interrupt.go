package cpu

// sampleInterrupt implements §4.5's priority rule (RESET is handled
// separately by the Reset method, never sampled here) and edge/level
// semantics: NMI latches on a rising edge and stays latched until
// serviced; IRQ is sampled live and masked by the I flag.
func (c *Chip) sampleInterrupt() (vector uint16, kind string, ok bool) {
	if c.nmiSource != nil {
		raised := c.nmiSource.Raised()
		if raised && !c.nmiEdge {
			c.pendingNMI = true
		}
		c.nmiEdge = raised
	}
	if c.pendingNMI {
		return vectorNMI, "NMI", true
	}

	level := c.irqLine
	if c.irqSource != nil {
		level = level || c.irqSource.Raised()
	}
	c.pendingIRQ = level
	if level && !c.P.has(flagI) {
		return vectorIRQ, "IRQ", true
	}
	return 0, "", false
}

// enterInterrupt implements the 7-cycle NMI/IRQ entry sequence (§4.5): a
// dummy read at PC with no advance, push PCH/PCL, push P with B=0 U=1, set
// I, then load PC from vector.
func (c *Chip) enterInterrupt(step *stepBuilder, vector uint16) {
	c.busRead(step, c.PC) // dummy fetch, PC not advanced
	c.busRead(step, c.PC) // second dummy fetch before the push sequence begins
	c.push(step, uint8(c.PC>>8))
	c.push(step, uint8(c.PC))
	c.push(step, c.P.packForIRQ())
	c.P = c.P.with(flagI, true)
	lo := c.busRead(step, vector)
	hi := c.busRead(step, vector+1)
	c.PC = uint16(lo) | uint16(hi)<<8
}
