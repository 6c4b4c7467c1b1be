package cpu_test

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/go-test/deep"

	"github.com/hatlock/sixfiveoh2/asm"
	"github.com/hatlock/sixfiveoh2/bus"
	"github.com/hatlock/sixfiveoh2/cpu"
)

// newMachine builds a fresh RAM bus with the reset vector pointed at
// resetTo, writes code at its load address, and returns a powered-on Chip.
func newMachine(t *testing.T, resetTo uint16, code []byte) (*cpu.Chip, *bus.RAM) {
	t.Helper()
	ram := bus.NewRAM()
	for i, b := range code {
		ram.Write(resetTo+uint16(i), b)
	}
	ram.Write(0xFFFC, byte(resetTo))
	ram.Write(0xFFFD, byte(resetTo>>8))
	c := cpu.New(ram)
	return c, ram
}

func mustBytes(t *testing.T, b *asm.Builder) []byte {
	t.Helper()
	bs, err := b.Bytes()
	if err != nil {
		t.Fatalf("assembling test program: %v", err)
	}
	return bs
}

func step(t *testing.T, c *cpu.Chip) cpu.StepResult {
	t.Helper()
	r, err := c.StepInstruction()
	if err != nil {
		t.Fatalf("StepInstruction: %v\n%s", err, spew.Sdump(r))
	}
	return r
}

func TestResetVector(t *testing.T) {
	c, _ := newMachine(t, 0x8000, []byte{0xEA})
	if got, want := c.PC, uint16(0x8000); got != want {
		t.Errorf("PC after reset = $%04X, want $%04X", got, want)
	}
	if got, want := c.Cycles(), uint64(7); got != want {
		t.Errorf("cycles after reset = %d, want 7 (§4.6)", got)
	}
	if got, want := c.StatusByte(), uint8(0x24); got != want {
		t.Errorf("P after reset = 0x%02X, want 0x24", got)
	}
}

// TestCountingToTen is scenario 1 of §8: A9 00 18 69 01 C9 0A D0 FA 00 at
// $8000 runs LDA #0 / CLC / loop: ADC #1, CMP #$0A, BNE loop / BRK.
func TestCountingToTen(t *testing.T) {
	code := []byte{0xA9, 0x00, 0x18, 0x69, 0x01, 0xC9, 0x0A, 0xD0, 0xFA, 0x00}
	c, ram := newMachine(t, 0x8000, code)
	ram.Write(0xFFFE, 0x34)
	ram.Write(0xFFFF, 0x12)

	for i := 0; i < 64; i++ {
		r, err := c.StepInstruction()
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if r.Opcode == 0x00 {
			break
		}
	}
	if got, want := c.A, uint8(0x0A); got != want {
		t.Errorf("A = 0x%02X, want 0x%02X", got, want)
	}
	p := c.StatusByte()
	if p&0x02 == 0 {
		t.Error("Z clear after the final CMP, want set")
	}
	if p&0x01 == 0 {
		t.Error("C clear after the final CMP, want set")
	}
	if got, want := c.PC, uint16(0x1234); got != want {
		t.Errorf("PC after BRK = $%04X, want $%04X", got, want)
	}
}

func TestBCDAdd(t *testing.T) {
	code := mustBytes(t, asm.New(0x8000).Imp("SED").Imm("LDA", 0x15).Imm("ADC", 0x27))
	c, _ := newMachine(t, 0x8000, code)
	step(t, c)
	step(t, c)
	step(t, c)
	if got, want := c.A, uint8(0x42); got != want {
		t.Errorf("A = 0x%02X, want 0x%02X", got, want)
	}
	p := c.StatusByte()
	if p&0x01 != 0 {
		t.Error("C set, want clear")
	}
	if p&0x02 != 0 {
		t.Error("Z set, want clear")
	}
	if p&0x80 != 0 {
		t.Error("N set, want clear")
	}
}

func TestBCDAddCarryOut(t *testing.T) {
	code := mustBytes(t, asm.New(0x8000).Imp("SED").Imm("LDA", 0x58).Imm("ADC", 0x46))
	c, _ := newMachine(t, 0x8000, code)
	step(t, c)
	step(t, c)
	step(t, c)
	if got, want := c.A, uint8(0x04); got != want {
		t.Errorf("A = 0x%02X, want 0x%02X", got, want)
	}
	if c.StatusByte()&0x01 == 0 {
		t.Error("C clear, want set")
	}
}

func TestOverflowFlag(t *testing.T) {
	code := mustBytes(t, asm.New(0x8000).Imm("LDA", 0x50).Imm("ADC", 0x50))
	c, _ := newMachine(t, 0x8000, code)
	step(t, c)
	step(t, c)
	if got, want := c.A, uint8(0xA0); got != want {
		t.Errorf("A = 0x%02X, want 0x%02X", got, want)
	}
	p := c.StatusByte()
	if p&0x40 == 0 {
		t.Error("V clear, want set")
	}
	if p&0x80 == 0 {
		t.Error("N clear, want set")
	}
	if p&0x01 != 0 {
		t.Error("C set, want clear")
	}
}

// TestIndirectJMPBug is scenario 5 of §8.
func TestIndirectJMPBug(t *testing.T) {
	code := mustBytes(t, asm.New(0x8000).Ind("JMP", 0x12FF))
	c, ram := newMachine(t, 0x8000, code)
	ram.Write(0x12FF, 0x34)
	ram.Write(0x1200, 0x12)
	ram.Write(0x1300, 0x56)

	r := step(t, c)
	if got, want := r.Cycles, 5; got != want {
		t.Errorf("JMP (ind) cost %d cycles, want 5", got)
	}
	if got, want := c.PC, uint16(0x1234); got != want {
		t.Errorf("PC after JMP (ind) = $%04X, want $%04X (must read high byte from $1200, not $1300)", got, want)
	}
}

func TestZeroPageIndirectYWrap(t *testing.T) {
	code := mustBytes(t, asm.New(0x8000).IndY("LDA", 0xFF))
	c, ram := newMachine(t, 0x8000, code)
	ram.Write(0x00FF, 0x00) // base low, from $00FF
	ram.Write(0x0000, 0x30) // base high, from $0000 (wrapped, not $0100)
	ram.Write(0x3000, 0x99)
	c.Y = 0
	r := step(t, c)
	if got, want := c.A, uint8(0x99); got != want {
		t.Errorf("A = 0x%02X, want 0x%02X", got, want)
	}
	if got, want := r.Cycles, 5; got != want {
		t.Errorf("LDA (zp),Y cost %d cycles, want 5 (no page cross)", got)
	}
}

func TestPageCrossPenalty(t *testing.T) {
	cases := []struct {
		name   string
		x      uint8
		cycles int
	}{
		{"no cross", 0x05, 4},
		{"cross", 0x20, 5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code := mustBytes(t, asm.New(0x8000).AbsX("LDA", 0x12F0))
			c, _ := newMachine(t, 0x8000, code)
			c.X = tc.x
			r := step(t, c)
			if r.Cycles != tc.cycles {
				t.Errorf("LDA $12F0,X with X=0x%02X cost %d cycles, want %d", tc.x, r.Cycles, tc.cycles)
			}
		})
	}
}

func TestBranchPenalties(t *testing.T) {
	t.Run("not taken", func(t *testing.T) {
		code := mustBytes(t, asm.New(0x8000).Rel("BEQ", 0x8010))
		c, _ := newMachine(t, 0x8000, code)
		c.P = cpu.Status(c.StatusByte() &^ 0x02) // ensure Z clear
		r := step(t, c)
		if r.Cycles != 2 {
			t.Errorf("not-taken branch cost %d cycles, want 2", r.Cycles)
		}
	})
	t.Run("taken same page", func(t *testing.T) {
		code := mustBytes(t, asm.New(0x8000).Imm("LDA", 0x00).Rel("BEQ", 0x8010))
		c, _ := newMachine(t, 0x8000, code)
		step(t, c)
		r := step(t, c)
		if r.Cycles != 3 {
			t.Errorf("taken same-page branch cost %d cycles, want 3", r.Cycles)
		}
	})
	t.Run("taken cross page", func(t *testing.T) {
		b := asm.New(0x80F0)
		b.Imm("LDA", 0x00)
		b.Rel("BEQ", 0x8120)
		code := mustBytes(t, b)
		c, _ := newMachine(t, 0x80F0, code)
		step(t, c)
		r := step(t, c)
		if r.Cycles != 4 {
			t.Errorf("taken cross-page branch cost %d cycles, want 4", r.Cycles)
		}
	})
}

func TestJSRRTS(t *testing.T) {
	b := asm.New(0x8000)
	b.Abs("JSR", 0x9000)
	b.Imp("NOP") // the byte immediately after the 3-byte JSR
	code := mustBytes(t, b)
	c, ram := newMachine(t, 0x8000, code)
	ram.Write(0x9000, 0x60) // RTS

	step(t, c) // JSR
	if got, want := c.PC, uint16(0x9000); got != want {
		t.Fatalf("PC after JSR = $%04X, want $%04X", got, want)
	}
	step(t, c) // RTS
	if got, want := c.PC, uint16(0x8003); got != want {
		t.Errorf("PC after RTS = $%04X, want $%04X (byte after the 3-byte JSR)", got, want)
	}
}

func TestPushPullRoundTrip(t *testing.T) {
	b := asm.New(0x8000)
	b.Imm("LDA", 0x7E)
	b.Imp("PHA")
	b.Imm("LDA", 0x00)
	b.Imp("PLA")
	code := mustBytes(t, b)
	c, _ := newMachine(t, 0x8000, code)
	for i := 0; i < 4; i++ {
		step(t, c)
	}
	if got, want := c.A, uint8(0x7E); got != want {
		t.Errorf("A after PHA/PLA round trip = 0x%02X, want 0x%02X", got, want)
	}
}

func TestPHPPLPPreservesFlagsExceptB(t *testing.T) {
	b := asm.New(0x8000)
	b.Imp("SEC")
	b.Imp("SED")
	b.Imp("PHP")
	b.Imp("CLC")
	b.Imp("CLD")
	b.Imp("PLP")
	code := mustBytes(t, b)
	c, _ := newMachine(t, 0x8000, code)
	for i := 0; i < 6; i++ {
		step(t, c)
	}
	if got := c.StatusByte(); got&0x01 == 0 || got&0x08 == 0 {
		t.Errorf("status after PLP = 0x%02X, want C and D restored", got)
	}
	if got := c.StatusByte(); got&0x20 == 0 {
		t.Error("U not observed as 1 after PLP")
	}
}

func TestCompareFlags(t *testing.T) {
	tests := []struct {
		a, m       uint8
		wantC      bool
		wantZ      bool
	}{
		{0x10, 0x10, true, true},
		{0x10, 0x05, true, false},
		{0x05, 0x10, false, false},
	}
	for _, tc := range tests {
		b := asm.New(0x8000)
		b.Imm("LDA", tc.a)
		b.Imm("CMP", tc.m)
		code := mustBytes(t, b)
		c, _ := newMachine(t, 0x8000, code)
		step(t, c)
		step(t, c)
		p := c.StatusByte()
		if (p&0x01 != 0) != tc.wantC {
			t.Errorf("CMP %#x,%#x: C=%v want %v", tc.a, tc.m, p&0x01 != 0, tc.wantC)
		}
		if (p&0x02 != 0) != tc.wantZ {
			t.Errorf("CMP %#x,%#x: Z=%v want %v", tc.a, tc.m, p&0x02 != 0, tc.wantZ)
		}
		if got, want := c.A, tc.a; got != want {
			t.Errorf("CMP modified A: got 0x%02X want 0x%02X", got, want)
		}
	}
}

// TestInterruptEntry is scenario 6 of §8.
func TestInterruptEntry(t *testing.T) {
	ram := bus.NewRAM()
	ram.Write(0xFFFC, 0x00)
	ram.Write(0xFFFD, 0x80)
	ram.Write(0xFFFA, 0x00)
	ram.Write(0xFFFB, 0x90)
	c := cpu.New(ram)
	c.P = 0x24
	c.S = 0xFD
	c.PC = 0x8000
	c.RequestNMI()

	r, err := c.StepInstruction()
	if err != nil {
		t.Fatalf("interrupt entry: %v", err)
	}
	if !r.IsInterrupt || r.InterruptKind != "NMI" {
		t.Fatalf("expected NMI interrupt result, got %+v", r)
	}
	if r.Cycles != 7 {
		t.Errorf("interrupt entry cost %d cycles, want 7", r.Cycles)
	}
	if got, want := ram.Read(0x01FD), uint8(0x80); got != want {
		t.Errorf("pushed PCH = 0x%02X, want 0x%02X", got, want)
	}
	if got, want := ram.Read(0x01FC), uint8(0x00); got != want {
		t.Errorf("pushed PCL = 0x%02X, want 0x%02X", got, want)
	}
	if got, want := ram.Read(0x01FB), uint8(0x24); got != want {
		t.Errorf("pushed P = 0x%02X, want 0x%02X (B=0 U=1)", got, want)
	}
	if got, want := c.S, uint8(0xFA); got != want {
		t.Errorf("S = 0x%02X, want 0x%02X", got, want)
	}
	if c.StatusByte()&0x04 == 0 {
		t.Error("I not set after interrupt entry")
	}
	if got, want := c.PC, uint16(0x9000); got != want {
		t.Errorf("PC = $%04X, want $%04X", got, want)
	}
}

func TestStepResultGolden(t *testing.T) {
	code := mustBytes(t, asm.New(0x8000).Imm("LDA", 0x05))
	c, _ := newMachine(t, 0x8000, code)
	r, err := c.StepInstruction()
	if err != nil {
		t.Fatal(err)
	}
	want := cpu.StepResult{Opcode: 0xA9, Cycles: 2}
	if diff := deep.Equal(r, want); diff != nil {
		t.Errorf("StepResult diff: %v", diff)
	}
}

func TestIllegalOpcode(t *testing.T) {
	c, _ := newMachine(t, 0x8000, []byte{0x02}) // unofficial on NMOS
	pcBefore := c.PC
	_, err := c.StepInstruction()
	if err == nil {
		t.Fatal("expected IllegalOpcode error")
	}
	if !isIllegalOpcode(err) {
		t.Fatalf("error is not cpu.IllegalOpcode: %v (%T)", err, err)
	}
	if got, want := c.PC, pcBefore; got != want {
		t.Errorf("PC advanced past illegal opcode: $%04X, want $%04X", got, want)
	}
}

func isIllegalOpcode(err error) bool {
	_, ok := err.(cpu.IllegalOpcode)
	return ok
}

func TestStepCycleMatchesStepInstructionTotals(t *testing.T) {
	code := mustBytes(t, asm.New(0x8000).Abs("LDA", 0x9000))
	c1, ram1 := newMachine(t, 0x8000, code)
	ram1.Write(0x9000, 0x42)
	r1, err := c1.StepInstruction()
	if err != nil {
		t.Fatal(err)
	}

	c2, ram2 := newMachine(t, 0x8000, code)
	ram2.Write(0x9000, 0x42)
	n := 0
	for {
		done, r2, err := c2.StepCycle()
		if err != nil {
			t.Fatal(err)
		}
		n++
		if done {
			if r2.Opcode != r1.Opcode {
				t.Errorf("StepCycle opcode = 0x%02X, want 0x%02X", r2.Opcode, r1.Opcode)
			}
			break
		}
	}
	if n != r1.Cycles {
		t.Errorf("StepCycle took %d calls to finish, want %d cycles", n, r1.Cycles)
	}
	if c1.A != c2.A || c1.PC != c2.PC {
		t.Errorf("StepInstruction and StepCycle diverged: %s vs %s", spew.Sdump(c1), spew.Sdump(c2))
	}
}
