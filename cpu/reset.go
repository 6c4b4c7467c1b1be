package cpu

// Reset implements §4.6: it is not a re-construction. It applies exactly 7
// cycles, subtracts 3 from S (wrapping), sets P=0x24, loads PC from the
// reset vector, and clears both pending interrupt states.
func (c *Chip) Reset() {
	step := &stepBuilder{}

	c.busRead(step, c.PC) // two dummy fetch-phase reads, mirroring NMI/IRQ entry
	c.busRead(step, c.PC)
	for i := 0; i < 3; i++ {
		c.busRead(step, stackBase|uint16(c.S)) // R/W held high during reset: reads, not writes
		c.S--
	}

	c.P = flagU | flagI // 0x24: I=1, U=1, rest 0

	lo := c.busRead(step, vectorReset)
	hi := c.busRead(step, vectorReset+1)
	c.PC = uint16(lo) | uint16(hi)<<8

	c.pendingNMI = false
	c.pendingIRQ = false
	c.irqLine = false
	c.nmiEdge = false

	c.deliverTicks(step.cycles)
}
