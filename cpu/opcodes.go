package cpu

// Mode is an addressing mode tag (§4.3).
type Mode int

const (
	ModeImplied Mode = iota
	ModeAccumulator
	ModeImmediate
	ModeZeroPage
	ModeZeroPageX
	ModeZeroPageY
	ModeAbsolute
	ModeAbsoluteX
	ModeAbsoluteY
	ModeIndirect
	ModeIndirectX
	ModeIndirectY
	ModeRelative
)

// opEntry is one row of the 256-entry dispatch table (§4.4, §9): mnemonic,
// addressing mode, base cycle count, and whether a page crossing adds a
// cycle. An opEntry with an empty Mnemonic marks an opcode outside the
// official set (§4.4 last paragraph, §7.1).
type opEntry struct {
	Mnemonic  string
	Mode      Mode
	Cycles    int
	PageCross bool
}

// opcodeTable is indexed directly by opcode byte, built once at package
// init from the declarative rows below rather than a nested-conditional
// decoder (§9 "Dispatch").
var opcodeTable [256]opEntry

type opRow struct {
	op        uint8
	mnemonic  string
	mode      Mode
	cycles    int
	pageCross bool
}

var opRows = []opRow{
	{0x00, "BRK", ModeImplied, 7, false},
	{0x01, "ORA", ModeIndirectX, 6, false},
	{0x05, "ORA", ModeZeroPage, 3, false},
	{0x06, "ASL", ModeZeroPage, 5, false},
	{0x08, "PHP", ModeImplied, 3, false},
	{0x09, "ORA", ModeImmediate, 2, false},
	{0x0A, "ASL", ModeAccumulator, 2, false},
	{0x0D, "ORA", ModeAbsolute, 4, false},
	{0x0E, "ASL", ModeAbsolute, 6, false},

	{0x10, "BPL", ModeRelative, 2, false},
	{0x11, "ORA", ModeIndirectY, 5, true},
	{0x15, "ORA", ModeZeroPageX, 4, false},
	{0x16, "ASL", ModeZeroPageX, 6, false},
	{0x18, "CLC", ModeImplied, 2, false},
	{0x19, "ORA", ModeAbsoluteY, 4, true},
	{0x1D, "ORA", ModeAbsoluteX, 4, true},
	{0x1E, "ASL", ModeAbsoluteX, 7, false},

	{0x20, "JSR", ModeAbsolute, 6, false},
	{0x21, "AND", ModeIndirectX, 6, false},
	{0x24, "BIT", ModeZeroPage, 3, false},
	{0x25, "AND", ModeZeroPage, 3, false},
	{0x26, "ROL", ModeZeroPage, 5, false},
	{0x28, "PLP", ModeImplied, 4, false},
	{0x29, "AND", ModeImmediate, 2, false},
	{0x2A, "ROL", ModeAccumulator, 2, false},
	{0x2C, "BIT", ModeAbsolute, 4, false},
	{0x2D, "AND", ModeAbsolute, 4, false},
	{0x2E, "ROL", ModeAbsolute, 6, false},

	{0x30, "BMI", ModeRelative, 2, false},
	{0x31, "AND", ModeIndirectY, 5, true},
	{0x35, "AND", ModeZeroPageX, 4, false},
	{0x36, "ROL", ModeZeroPageX, 6, false},
	{0x38, "SEC", ModeImplied, 2, false},
	{0x39, "AND", ModeAbsoluteY, 4, true},
	{0x3D, "AND", ModeAbsoluteX, 4, true},
	{0x3E, "ROL", ModeAbsoluteX, 7, false},

	{0x40, "RTI", ModeImplied, 6, false},
	{0x41, "EOR", ModeIndirectX, 6, false},
	{0x45, "EOR", ModeZeroPage, 3, false},
	{0x46, "LSR", ModeZeroPage, 5, false},
	{0x48, "PHA", ModeImplied, 3, false},
	{0x49, "EOR", ModeImmediate, 2, false},
	{0x4A, "LSR", ModeAccumulator, 2, false},
	{0x4C, "JMP", ModeAbsolute, 3, false},
	{0x4D, "EOR", ModeAbsolute, 4, false},
	{0x4E, "LSR", ModeAbsolute, 6, false},

	{0x50, "BVC", ModeRelative, 2, false},
	{0x51, "EOR", ModeIndirectY, 5, true},
	{0x55, "EOR", ModeZeroPageX, 4, false},
	{0x56, "LSR", ModeZeroPageX, 6, false},
	{0x58, "CLI", ModeImplied, 2, false},
	{0x59, "EOR", ModeAbsoluteY, 4, true},
	{0x5D, "EOR", ModeAbsoluteX, 4, true},
	{0x5E, "LSR", ModeAbsoluteX, 7, false},

	{0x60, "RTS", ModeImplied, 6, false},
	{0x61, "ADC", ModeIndirectX, 6, false},
	{0x65, "ADC", ModeZeroPage, 3, false},
	{0x66, "ROR", ModeZeroPage, 5, false},
	{0x68, "PLA", ModeImplied, 4, false},
	{0x69, "ADC", ModeImmediate, 2, false},
	{0x6A, "ROR", ModeAccumulator, 2, false},
	{0x6C, "JMP", ModeIndirect, 5, false},
	{0x6D, "ADC", ModeAbsolute, 4, false},
	{0x6E, "ROR", ModeAbsolute, 6, false},

	{0x70, "BVS", ModeRelative, 2, false},
	{0x71, "ADC", ModeIndirectY, 5, true},
	{0x75, "ADC", ModeZeroPageX, 4, false},
	{0x76, "ROR", ModeZeroPageX, 6, false},
	{0x78, "SEI", ModeImplied, 2, false},
	{0x79, "ADC", ModeAbsoluteY, 4, true},
	{0x7D, "ADC", ModeAbsoluteX, 4, true},
	{0x7E, "ROR", ModeAbsoluteX, 7, false},

	{0x81, "STA", ModeIndirectX, 6, false},
	{0x84, "STY", ModeZeroPage, 3, false},
	{0x85, "STA", ModeZeroPage, 3, false},
	{0x86, "STX", ModeZeroPage, 3, false},
	{0x88, "DEY", ModeImplied, 2, false},
	{0x8A, "TXA", ModeImplied, 2, false},
	{0x8C, "STY", ModeAbsolute, 4, false},
	{0x8D, "STA", ModeAbsolute, 4, false},
	{0x8E, "STX", ModeAbsolute, 4, false},

	{0x90, "BCC", ModeRelative, 2, false},
	{0x91, "STA", ModeIndirectY, 6, false},
	{0x94, "STY", ModeZeroPageX, 4, false},
	{0x95, "STA", ModeZeroPageX, 4, false},
	{0x96, "STX", ModeZeroPageY, 4, false},
	{0x98, "TYA", ModeImplied, 2, false},
	{0x99, "STA", ModeAbsoluteY, 5, false},
	{0x9A, "TXS", ModeImplied, 2, false},
	{0x9D, "STA", ModeAbsoluteX, 5, false},

	{0xA0, "LDY", ModeImmediate, 2, false},
	{0xA1, "LDA", ModeIndirectX, 6, false},
	{0xA2, "LDX", ModeImmediate, 2, false},
	{0xA4, "LDY", ModeZeroPage, 3, false},
	{0xA5, "LDA", ModeZeroPage, 3, false},
	{0xA6, "LDX", ModeZeroPage, 3, false},
	{0xA8, "TAY", ModeImplied, 2, false},
	{0xA9, "LDA", ModeImmediate, 2, false},
	{0xAA, "TAX", ModeImplied, 2, false},
	{0xAC, "LDY", ModeAbsolute, 4, false},
	{0xAD, "LDA", ModeAbsolute, 4, false},
	{0xAE, "LDX", ModeAbsolute, 4, false},

	{0xB0, "BCS", ModeRelative, 2, false},
	{0xB1, "LDA", ModeIndirectY, 5, true},
	{0xB4, "LDY", ModeZeroPageX, 4, false},
	{0xB5, "LDA", ModeZeroPageX, 4, false},
	{0xB6, "LDX", ModeZeroPageY, 4, false},
	{0xB8, "CLV", ModeImplied, 2, false},
	{0xB9, "LDA", ModeAbsoluteY, 4, true},
	{0xBA, "TSX", ModeImplied, 2, false},
	{0xBC, "LDY", ModeAbsoluteX, 4, true},
	{0xBD, "LDA", ModeAbsoluteX, 4, true},
	{0xBE, "LDX", ModeAbsoluteY, 4, true},

	{0xC0, "CPY", ModeImmediate, 2, false},
	{0xC1, "CMP", ModeIndirectX, 6, false},
	{0xC4, "CPY", ModeZeroPage, 3, false},
	{0xC5, "CMP", ModeZeroPage, 3, false},
	{0xC6, "DEC", ModeZeroPage, 5, false},
	{0xC8, "INY", ModeImplied, 2, false},
	{0xC9, "CMP", ModeImmediate, 2, false},
	{0xCA, "DEX", ModeImplied, 2, false},
	{0xCC, "CPY", ModeAbsolute, 4, false},
	{0xCD, "CMP", ModeAbsolute, 4, false},
	{0xCE, "DEC", ModeAbsolute, 6, false},

	{0xD0, "BNE", ModeRelative, 2, false},
	{0xD1, "CMP", ModeIndirectY, 5, true},
	{0xD5, "CMP", ModeZeroPageX, 4, false},
	{0xD6, "DEC", ModeZeroPageX, 6, false},
	{0xD8, "CLD", ModeImplied, 2, false},
	{0xD9, "CMP", ModeAbsoluteY, 4, true},
	{0xDD, "CMP", ModeAbsoluteX, 4, true},
	{0xDE, "DEC", ModeAbsoluteX, 7, false},

	{0xE0, "CPX", ModeImmediate, 2, false},
	{0xE1, "SBC", ModeIndirectX, 6, false},
	{0xE4, "CPX", ModeZeroPage, 3, false},
	{0xE5, "SBC", ModeZeroPage, 3, false},
	{0xE6, "INC", ModeZeroPage, 5, false},
	{0xE8, "INX", ModeImplied, 2, false},
	{0xE9, "SBC", ModeImmediate, 2, false},
	{0xEA, "NOP", ModeImplied, 2, false},
	{0xEC, "CPX", ModeAbsolute, 4, false},
	{0xED, "SBC", ModeAbsolute, 4, false},
	{0xEE, "INC", ModeAbsolute, 6, false},

	{0xF0, "BEQ", ModeRelative, 2, false},
	{0xF1, "SBC", ModeIndirectY, 5, true},
	{0xF5, "SBC", ModeZeroPageX, 4, false},
	{0xF6, "INC", ModeZeroPageX, 6, false},
	{0xF8, "SED", ModeImplied, 2, false},
	{0xF9, "SBC", ModeAbsoluteY, 4, true},
	{0xFD, "SBC", ModeAbsoluteX, 4, true},
	{0xFE, "INC", ModeAbsoluteX, 7, false},
}

// reverseTable maps (mnemonic, mode) back to its opcode byte, used by the
// asm package to encode instructions instead of hand-writing byte literals.
var reverseTable = map[string]map[Mode]uint8{}

func init() {
	for _, r := range opRows {
		opcodeTable[r.op] = opEntry{
			Mnemonic:  r.mnemonic,
			Mode:      r.mode,
			Cycles:    r.cycles,
			PageCross: r.pageCross,
		}
		if reverseTable[r.mnemonic] == nil {
			reverseTable[r.mnemonic] = map[Mode]uint8{}
		}
		reverseTable[r.mnemonic][r.mode] = r.op
	}
}

// OpcodeFor returns the opcode byte encoding mnemonic in mode, and
// ok=false if that combination does not exist in the official set.
func OpcodeFor(mnemonic string, mode Mode) (uint8, bool) {
	m, ok := reverseTable[mnemonic]
	if !ok {
		return 0, false
	}
	op, ok := m[mode]
	return op, ok
}

// instrKind classifies a mnemonic by how its addressing mode is resolved
// (§9, §4.4): a load reads a value and never writes it back; a store
// computes an address and writes a register to it without reading the old
// value; a read-modify-write reads, dummy-writes the old value, then writes
// the new one.
type instrKind int

const (
	kindOther instrKind = iota
	kindLoad
	kindStore
	kindRMW
)

var rmwMnemonics = map[string]bool{
	"ASL": true, "LSR": true, "ROL": true, "ROR": true, "INC": true, "DEC": true,
}

var storeMnemonics = map[string]bool{
	"STA": true, "STX": true, "STY": true,
}

// kindOf returns how mnemonic's operand is resolved. Mnemonics not covered
// by storeMnemonics/rmwMnemonics, and not one of the special-cased control
// instructions (JMP/JSR/branches/stack ops/implied/flag ops, all handled
// directly in execute.go), fetch their operand as a plain load.
func kindOf(mnemonic string) instrKind {
	if storeMnemonics[mnemonic] {
		return kindStore
	}
	if rmwMnemonics[mnemonic] {
		return kindRMW
	}
	return kindLoad
}

// Lookup returns the decoded table entry for opcode, and ok=false if it
// falls outside the official set (§4.4, §7.1).
func Lookup(opcode uint8) (opEntry, bool) {
	e := opcodeTable[opcode]
	return e, e.Mnemonic != ""
}
