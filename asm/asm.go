// Package asm is a tiny forward hand-assembler: one method per addressing
// mode, appending the matching opcode byte (looked up from cpu's dispatch
// table) plus operand bytes. It exists so tests can build short programs
// addressing-mode by addressing-mode without hand-encoding opcode values,
// generalizing the teacher's fixed-program hand_asm tool into a reusable
// mnemonic-to-bytes encoder.
package asm

import (
	"fmt"

	"github.com/hatlock/sixfiveoh2/cpu"
)

// Builder accumulates assembled bytes starting at a fixed load address,
// tracking the current address so relative branches can compute their own
// offsets.
type Builder struct {
	base  uint16
	bytes []byte
	err   error
}

// New starts a Builder whose first emitted byte lands at loadAddr.
func New(loadAddr uint16) *Builder {
	return &Builder{base: loadAddr}
}

// Addr returns the address the next emitted byte will occupy.
func (b *Builder) Addr() uint16 {
	return b.base + uint16(len(b.bytes))
}

// Bytes returns the assembled program so far. If any encoding failed, it
// returns the error instead.
func (b *Builder) Bytes() ([]byte, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.bytes, nil
}

func (b *Builder) emit(mnemonic string, mode cpu.Mode, operand ...byte) *Builder {
	if b.err != nil {
		return b
	}
	op, ok := cpu.OpcodeFor(mnemonic, mode)
	if !ok {
		b.err = fmt.Errorf("asm: %s has no encoding in mode %d", mnemonic, mode)
		return b
	}
	b.bytes = append(b.bytes, op)
	b.bytes = append(b.bytes, operand...)
	return b
}

// Byte appends a raw byte, for reset vectors, BRK padding, or deliberately
// illegal opcodes.
func (b *Builder) Byte(v byte) *Builder {
	b.bytes = append(b.bytes, v)
	return b
}

// Word appends a little-endian 16-bit value, for vector tables.
func (b *Builder) Word(v uint16) *Builder {
	b.bytes = append(b.bytes, byte(v), byte(v>>8))
	return b
}

// Pad appends zero bytes until Addr() reaches addr. Used to place a vector
// table at a fixed offset from the load address.
func (b *Builder) Pad(addr uint16) *Builder {
	for b.Addr() < addr {
		b.bytes = append(b.bytes, 0)
	}
	return b
}

func (b *Builder) Imp(mnemonic string) *Builder { return b.emit(mnemonic, cpu.ModeImplied) }
func (b *Builder) Acc(mnemonic string) *Builder { return b.emit(mnemonic, cpu.ModeAccumulator) }

func (b *Builder) Imm(mnemonic string, v byte) *Builder {
	return b.emit(mnemonic, cpu.ModeImmediate, v)
}

func (b *Builder) ZP(mnemonic string, addr byte) *Builder {
	return b.emit(mnemonic, cpu.ModeZeroPage, addr)
}

func (b *Builder) ZPX(mnemonic string, addr byte) *Builder {
	return b.emit(mnemonic, cpu.ModeZeroPageX, addr)
}

func (b *Builder) ZPY(mnemonic string, addr byte) *Builder {
	return b.emit(mnemonic, cpu.ModeZeroPageY, addr)
}

func (b *Builder) Abs(mnemonic string, addr uint16) *Builder {
	return b.emit(mnemonic, cpu.ModeAbsolute, byte(addr), byte(addr>>8))
}

func (b *Builder) AbsX(mnemonic string, addr uint16) *Builder {
	return b.emit(mnemonic, cpu.ModeAbsoluteX, byte(addr), byte(addr>>8))
}

func (b *Builder) AbsY(mnemonic string, addr uint16) *Builder {
	return b.emit(mnemonic, cpu.ModeAbsoluteY, byte(addr), byte(addr>>8))
}

func (b *Builder) Ind(mnemonic string, addr uint16) *Builder {
	return b.emit(mnemonic, cpu.ModeIndirect, byte(addr), byte(addr>>8))
}

func (b *Builder) IndX(mnemonic string, zp byte) *Builder {
	return b.emit(mnemonic, cpu.ModeIndirectX, zp)
}

func (b *Builder) IndY(mnemonic string, zp byte) *Builder {
	return b.emit(mnemonic, cpu.ModeIndirectY, zp)
}

// Rel appends a branch targeting target, computing the signed displacement
// from the address immediately after the two-byte branch instruction.
func (b *Builder) Rel(mnemonic string, target uint16) *Builder {
	if b.err != nil {
		return b
	}
	nextPC := b.Addr() + 2
	offset := int32(target) - int32(nextPC)
	if offset < -128 || offset > 127 {
		b.err = fmt.Errorf("asm: %s target $%04X out of branch range from $%04X", mnemonic, target, nextPC)
		return b
	}
	return b.emit(mnemonic, cpu.ModeRelative, byte(int8(offset)))
}
