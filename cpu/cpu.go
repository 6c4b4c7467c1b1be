// Package cpu implements a cycle-accurate MOS 6502 core: registers, status
// packing, addressing-mode resolution, instruction semantics, interrupts,
// and reset. It depends on nothing beyond the standard library and the
// bus.Bus contract it is handed at construction; formatting, logging, and
// I/O are the driving loop's concern, not the core's.
package cpu

import (
	"github.com/hatlock/sixfiveoh2/bus"
	"github.com/hatlock/sixfiveoh2/irq"
)

// Vector addresses the CPU loads PC from on NMI, RESET, and IRQ/BRK entry
// (§4.5).
const (
	vectorNMI   uint16 = 0xFFFA
	vectorReset uint16 = 0xFFFC
	vectorIRQ   uint16 = 0xFFFE
)

// stackBase is the fixed high byte of the hardware stack page (§3 invariant
// 1): all stack accesses are to page 1.
const stackBase uint16 = 0x0100

// Sender is the interrupt-source contract, sampled once per step in
// addition to the explicit RequestNMI/SetIRQ API (§6 "an NMI-request and
// IRQ-set/clear pair"). Optional: nil sources are simply never sampled.
type Sender = irq.Sender

// Chip is one MOS 6502 core. Zero value is not usable; construct with New.
type Chip struct {
	A, X, Y uint8
	S       uint8
	PC      uint16
	P       Status

	cycles uint64

	bus bus.Bus

	pendingNMI bool // latched edge (§3, §4.5)
	pendingIRQ bool // level, irqLine ORed with irqSource at each sample (§3, §4.5)
	irqLine    bool
	nmiEdge    bool // previous sampled NMI line state, for edge detection against nmiSource

	nmiSource Sender
	irqSource Sender

	// metering state for StepCycle (§4.7, §9 "Cycle accounting"): the most
	// recently executed step's total cost, doled out one tick() per call.
	pendingTicks int
	lastResult   StepResult
}

// Option configures a Chip at construction time.
type Option func(*Chip)

// WithNMISource attaches an edge-triggered interrupt source sampled once per
// step in addition to RequestNMI. A rising edge (false->true) latches
// pending_nmi exactly as RequestNMI would.
func WithNMISource(s Sender) Option {
	return func(c *Chip) { c.nmiSource = s }
}

// WithIRQSource attaches a level-triggered interrupt source sampled once per
// step in addition to SetIRQ. The line is ORed with the explicit SetIRQ
// state.
func WithIRQSource(s Sender) Option {
	return func(c *Chip) { c.irqSource = s }
}

// New constructs a Chip around b and applies Reset, matching the lifecycle
// described in §3: "A CPU is constructed around a bus; reset is applied."
func New(b bus.Bus, opts ...Option) *Chip {
	c := &Chip{bus: b}
	for _, opt := range opts {
		opt(c)
	}
	c.Reset()
	return c
}

// Cycles returns the monotonically increasing cycle counter (§3).
func (c *Chip) Cycles() uint64 { return c.cycles }

// StatusByte returns P as observed via the public accessor: U forced to 1,
// B masked off (§3 invariant 3, §8).
func (c *Chip) StatusByte() uint8 { return c.P.register() }

// StackAddress returns the current physical stack address (§3 invariant 1,
// §8: 0x0100 <= stack_address(S) <= 0x01FF).
func (c *Chip) StackAddress() uint16 { return stackBase | uint16(c.S) }

// RequestNMI latches a non-maskable interrupt. NMI is edge-triggered: once
// latched it remains pending until serviced, regardless of how many times
// RequestNMI is called meanwhile (§4.5).
func (c *Chip) RequestNMI() { c.pendingNMI = true }

// SetIRQ sets or clears the level-sensitive IRQ line (§4.5). Unlike NMI this
// is not latched: clearing the line before it is sampled cancels it.
func (c *Chip) SetIRQ(asserted bool) { c.irqLine = asserted }

// busRead performs one bus read and counts one cycle against the step
// currently being assembled. It does not call bus.Tick(); ticks are
// delivered in a batch once the step's total cycle cost is known (§9).
func (c *Chip) busRead(step *stepBuilder, addr uint16) uint8 {
	v := c.bus.Read(addr)
	step.cycles++
	step.checkFault(c.bus)
	return v
}

// busWrite performs one bus write and counts one cycle.
func (c *Chip) busWrite(step *stepBuilder, addr uint16, v uint8) {
	c.bus.Write(addr, v)
	step.cycles++
	step.checkFault(c.bus)
}

// stepBuilder accumulates the bus accesses and cycle count of a single
// step_instruction/step_cycle unit of work (one instruction, or one
// interrupt/reset entry) before ticks are delivered to the bus.
type stepBuilder struct {
	cycles int
	err    error
}

func (sb *stepBuilder) checkFault(b bus.Bus) {
	if sb.err != nil {
		return
	}
	if f, ok := b.(bus.Faulting); ok {
		if err := f.Fail(); err != nil {
			sb.err = err
		}
	}
}

// deliverTicks calls bus.Tick() once per accumulated cycle, folding each
// call into the running cycle counter. This is the batching step_instruction
// always performs; step_cycle performs it one call at a time instead (see
// step.go).
func (c *Chip) deliverTicks(n int) {
	for i := 0; i < n; i++ {
		c.bus.Tick()
		c.cycles++
	}
}
