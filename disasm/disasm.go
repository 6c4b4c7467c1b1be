// Package disasm renders one 6502 instruction at a time as text, restricted
// to the official opcode set (§4.4 of the core spec). It is a pure reader:
// given a Reader and an address, it never mutates anything.
package disasm

import (
	"fmt"

	"github.com/hatlock/sixfiveoh2/cpu"
)

// Reader is the minimal read-only view a disassembler needs. bus.Bus
// satisfies it; so does any []byte-backed reader.
type Reader interface {
	Read(addr uint16) uint8
}

// Instruction disassembles the instruction at addr, returning its text
// rendering and encoded length in bytes (1-3). Opcodes outside the
// official set render as "???" with length 1, mirroring the teacher's gap
// marker for undocumented opcodes rather than erroring — a static
// disassembly pass has no step to fail.
func Instruction(r Reader, addr uint16) (text string, length int) {
	opcode := r.Read(addr)
	entry, ok := cpu.Lookup(opcode)
	if !ok {
		return formatImplied(addr, opcode, "???"), 1
	}

	switch entry.Mode {
	case cpu.ModeImplied:
		return formatImplied(addr, opcode, entry.Mnemonic), 1
	case cpu.ModeAccumulator:
		return formatImplied(addr, opcode, entry.Mnemonic+" A"), 1

	case cpu.ModeImmediate:
		v := r.Read(addr + 1)
		return format1(addr, opcode, v, fmt.Sprintf("%s #$%02X", entry.Mnemonic, v)), 2
	case cpu.ModeZeroPage:
		v := r.Read(addr + 1)
		return format1(addr, opcode, v, fmt.Sprintf("%s $%02X", entry.Mnemonic, v)), 2
	case cpu.ModeZeroPageX:
		v := r.Read(addr + 1)
		return format1(addr, opcode, v, fmt.Sprintf("%s $%02X,X", entry.Mnemonic, v)), 2
	case cpu.ModeZeroPageY:
		v := r.Read(addr + 1)
		return format1(addr, opcode, v, fmt.Sprintf("%s $%02X,Y", entry.Mnemonic, v)), 2
	case cpu.ModeIndirectX:
		v := r.Read(addr + 1)
		return format1(addr, opcode, v, fmt.Sprintf("%s ($%02X,X)", entry.Mnemonic, v)), 2
	case cpu.ModeIndirectY:
		v := r.Read(addr + 1)
		return format1(addr, opcode, v, fmt.Sprintf("%s ($%02X),Y", entry.Mnemonic, v)), 2
	case cpu.ModeRelative:
		v := r.Read(addr + 1)
		target := uint16(int32(addr+2) + int32(int8(v)))
		return format1(addr, opcode, v, fmt.Sprintf("%s $%04X", entry.Mnemonic, target)), 2

	case cpu.ModeAbsolute:
		lo, hi := r.Read(addr+1), r.Read(addr+2)
		w := uint16(lo) | uint16(hi)<<8
		return format2(addr, opcode, lo, hi, fmt.Sprintf("%s $%04X", entry.Mnemonic, w)), 3
	case cpu.ModeAbsoluteX:
		lo, hi := r.Read(addr+1), r.Read(addr+2)
		w := uint16(lo) | uint16(hi)<<8
		return format2(addr, opcode, lo, hi, fmt.Sprintf("%s $%04X,X", entry.Mnemonic, w)), 3
	case cpu.ModeAbsoluteY:
		lo, hi := r.Read(addr+1), r.Read(addr+2)
		w := uint16(lo) | uint16(hi)<<8
		return format2(addr, opcode, lo, hi, fmt.Sprintf("%s $%04X,Y", entry.Mnemonic, w)), 3
	case cpu.ModeIndirect:
		lo, hi := r.Read(addr+1), r.Read(addr+2)
		w := uint16(lo) | uint16(hi)<<8
		return format2(addr, opcode, lo, hi, fmt.Sprintf("%s ($%04X)", entry.Mnemonic, w)), 3

	default:
		return formatImplied(addr, opcode, entry.Mnemonic), 1
	}
}

func formatImplied(addr uint16, opcode uint8, text string) string {
	return fmt.Sprintf("%04X  %02X        %s", addr, opcode, text)
}

func format1(addr uint16, opcode, b1 uint8, text string) string {
	return fmt.Sprintf("%04X  %02X %02X     %s", addr, opcode, b1, text)
}

func format2(addr uint16, opcode, b1, b2 uint8, text string) string {
	return fmt.Sprintf("%04X  %02X %02X %02X  %s", addr, opcode, b1, b2, text)
}
