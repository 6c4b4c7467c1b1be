package cpu

import "fmt"

// StepResult describes the outcome of one StepInstruction/StepCycle unit of
// work: either one opcode (with the byte executed) or one interrupt entry
// sequence (§4.7: "Returns the opcode executed (or a synthetic marker for
// interrupt entry)").
type StepResult struct {
	Opcode        uint8
	IsInterrupt   bool
	InterruptKind string // "NMI" or "IRQ"; empty unless IsInterrupt
	Cycles        int
	Err           error
}

// runStep executes exactly one instruction or one interrupt entry
// atomically, accumulating its bus accesses and cycle cost into a
// stepBuilder without yet delivering any tick() calls to the bus (§9
// "Cycle accounting"). Interrupts are sampled first and, if pending,
// replace the fetch entirely (§4.5: "the interrupt microsequence replaces
// the next fetch").
func (c *Chip) runStep() StepResult {
	step := &stepBuilder{}

	if vector, kind, ok := c.sampleInterrupt(); ok {
		if kind == "NMI" {
			c.pendingNMI = false
		}
		c.enterInterrupt(step, vector)
		return StepResult{IsInterrupt: true, InterruptKind: kind, Cycles: step.cycles, Err: step.err}
	}

	opcodePC := c.PC
	opcode := c.busRead(step, c.PC)
	entry, ok := Lookup(opcode)
	if !ok {
		// §7.1: PC left pointing at the opcode byte, not advanced past it.
		return StepResult{Opcode: opcode, Cycles: step.cycles, Err: IllegalOpcode{Opcode: opcode, PC: opcodePC}}
	}
	c.PC++
	opVal1 := c.busRead(step, c.PC)
	crossed := c.executeOpcode(step, entry, opVal1)
	// Branches cost a dynamic 2/3/4 cycles (§8 "Branch penalties") that
	// entry.Cycles/PageCross don't model; every other opcode's bus-derived
	// total must match the table exactly, which is the checkable form of
	// §9's "every opcode covered, correct cost" property.
	if entry.Mode != ModeRelative && step.err == nil {
		want := entry.Cycles
		if entry.PageCross && crossed {
			want++
		}
		if step.cycles != want {
			step.err = InvalidState{Reason: fmt.Sprintf(
				"opcode 0x%02X (%s) cost %d bus cycles, table says %d", opcode, entry.Mnemonic, step.cycles, want)}
		}
	}
	return StepResult{Opcode: opcode, Cycles: step.cycles, Err: step.err}
}

// StepInstruction executes exactly one instruction (or one interrupt
// entry), advancing cycles by its full cost in one batch (§4.7).
func (c *Chip) StepInstruction() (StepResult, error) {
	if c.pendingTicks != 0 {
		return StepResult{}, InvalidState{Reason: "StepInstruction called while a StepCycle-driven step is still mid-flight"}
	}
	r := c.runStep()
	c.deliverTicks(r.Cycles)
	return r, r.Err
}

// StepCycle advances by one master cycle, per §4.7 and §9 "Cycle
// accounting": the whole instruction (or interrupt entry) is executed
// atomically the moment metering begins, and its tick() calls are then
// doled out to the bus one per call until its cost is exhausted, at which
// point done is true and result describes what just completed.
func (c *Chip) StepCycle() (done bool, result StepResult, err error) {
	if c.pendingTicks == 0 {
		c.lastResult = c.runStep()
		c.pendingTicks = c.lastResult.Cycles
		if c.pendingTicks == 0 {
			c.pendingTicks = 1 // every real step costs >=1 cycle; guards div-by-zero-shaped bugs
		}
	}
	c.bus.Tick()
	c.cycles++
	c.pendingTicks--
	if c.pendingTicks == 0 {
		return true, c.lastResult, c.lastResult.Err
	}
	return false, StepResult{}, nil
}
