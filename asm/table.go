package asm

// addrMode is an operand addressing mode, with the values that get encoded
// into the mode fields of an instruction's first word.
type addrMode uint8

const (
	amImmediate addrMode = 0
	amDirect    addrMode = 1
	amRelative  addrMode = 2
	amRegister  addrMode = 3
)

var modeNames = map[addrMode]string{
	amImmediate: "immediate",
	amDirect:    "direct",
	amRelative:  "relative",
	amRegister:  "register",
}

func (m addrMode) String() string { return modeNames[m] }

// modeSet is the set of addressing modes one operand position accepts. The
// zero set means the position does not exist for that instruction.
type modeSet uint8

const noOperand modeSet = 0

func modes(ms ...addrMode) modeSet {
	var s modeSet
	for _, m := range ms {
		s |= 1 << m
	}
	return s
}

func (s modeSet) has(m addrMode) bool { return s&(1<<m) != 0 }

// opSpec describes one instruction of the machine.
type opSpec struct {
	mnemonic string
	opcode   uint32 // 6 bits
	funct    uint32 // 5 bits
	src      modeSet
	dst      modeSet
}

func (o *opSpec) hasSrc() bool { return o.src != noOperand }
func (o *opSpec) hasDst() bool { return o.dst != noOperand }

var opTable = []opSpec{
	{"mov", 0, 0, modes(amImmediate, amDirect, amRegister), modes(amDirect, amRegister)},
	{"cmp", 1, 0, modes(amImmediate, amDirect, amRegister), modes(amImmediate, amDirect, amRegister)},
	{"add", 2, 1, modes(amImmediate, amDirect, amRegister), modes(amDirect, amRegister)},
	{"sub", 2, 2, modes(amImmediate, amDirect, amRegister), modes(amDirect, amRegister)},
	{"lea", 4, 0, modes(amDirect), modes(amDirect, amRegister)},
	{"clr", 5, 1, noOperand, modes(amDirect, amRegister)},
	{"not", 5, 2, noOperand, modes(amDirect, amRegister)},
	{"inc", 5, 3, noOperand, modes(amDirect, amRegister)},
	{"dec", 5, 4, noOperand, modes(amDirect, amRegister)},
	{"jmp", 9, 1, noOperand, modes(amDirect, amRelative)},
	{"bne", 9, 2, noOperand, modes(amDirect, amRelative)},
	{"jsr", 9, 3, noOperand, modes(amDirect, amRelative)},
	{"red", 12, 0, noOperand, modes(amDirect, amRegister)},
	{"prn", 13, 0, noOperand, modes(amImmediate, amDirect, amRegister)},
	{"rts", 14, 0, noOperand, noOperand},
	{"stop", 15, 0, noOperand, noOperand},
}

var opByName = func() map[string]*opSpec {
	m := make(map[string]*opSpec, len(opTable))
	for i := range opTable {
		m[opTable[i].mnemonic] = &opTable[i]
	}
	return m
}()

// lookupOp returns the descriptor for a mnemonic, or nil.
func lookupOp(name string) *opSpec { return opByName[name] }

// The reserved words are every mnemonic, the register names, and the bare
// directive keywords. None of them may name a symbol or a macro.
var reservedWords = func() map[string]bool {
	m := make(map[string]bool)
	for i := range opTable {
		m[opTable[i].mnemonic] = true
	}
	for _, r := range []string{"r1", "r2", "r3", "r4", "r5", "r6", "r7"} {
		m[r] = true
	}
	for _, d := range []string{"data", "string", "entry", "extern"} {
		m[d] = true
	}
	return m
}()

func isReserved(name string) bool { return reservedWords[name] }
