package asm

import (
	"github.com/sirupsen/logrus"
)

// LoadBase is the absolute address of the first instruction word in every
// assembled image.
const LoadBase = 100

// ARE bits: every instruction word carries exactly one of these in its low
// three bits. Data words carry no ARE bits.
const (
	areE uint32 = 1
	areR uint32 = 2
	areA uint32 = 4
)

// Field offsets within an instruction's first word. Extra words carry their
// payload above the ARE bits (areShift).
const (
	areShift     = 3
	functShift   = 3
	dstRegShift  = 8
	dstModeShift = 11
	srcRegShift  = 13
	srcModeShift = 16
	opcodeShift  = 18
)

// Assembled is anything the first pass can lay out into the images.
// Statements mutate the pass state directly as they are visited.
type Assembled interface {
	assemble(s *state)
}

// operand is one decoded instruction operand. Exactly one of value, reg and
// sym is meaningful, depending on mode.
type operand struct {
	mode  addrMode
	value int64  // immediate literal
	reg   uint32 // register number, 1-7
	sym   string // direct/relative target
}

// needsExtra reports whether the operand occupies an extra machine word.
// Register operands live entirely in the first word.
func (o *operand) needsExtra() bool { return o.mode != amRegister }

// instruction is a single machine instruction with up to two operands.
// Single-operand instructions populate dst only.
type instruction struct {
	op  *opSpec
	src *operand
	dst *operand
}

// size is the word count of the instruction: the first word plus one extra
// per non-register operand. Both passes agree on this by construction.
func (i *instruction) size() uint32 {
	n := uint32(1)
	if i.src != nil && i.src.needsExtra() {
		n++
	}
	if i.dst != nil && i.dst.needsExtra() {
		n++
	}
	return n
}

// firstWord encodes the opcode, funct, addressing modes and register fields.
// The first word of an instruction is always absolute.
func (i *instruction) firstWord() uint32 {
	w := i.op.opcode<<opcodeShift | i.op.funct<<functShift | areA
	if i.src != nil {
		w |= uint32(i.src.mode) << srcModeShift
		if i.src.mode == amRegister {
			w |= i.src.reg << srcRegShift
		}
	}
	if i.dst != nil {
		w |= uint32(i.dst.mode) << dstModeShift
		if i.dst.mode == amRegister {
			w |= i.dst.reg << dstRegShift
		}
	}
	return w
}

func (i *instruction) assemble(s *state) {
	s.code.Push(i.firstWord())
	s.ic++

	// Extra words go source first, then destination. Immediates are final
	// here; direct and relative operands reserve their slot and leave a
	// fix-up for the second pass.
	for _, o := range []*operand{i.src, i.dst} {
		if o == nil || !o.needsExtra() {
			continue
		}
		switch o.mode {
		case amImmediate:
			s.code.Push(uint32(o.value)<<areShift | areA)
		default:
			s.code.Push(0)
			s.fixups = append(s.fixups, fixup{
				slot: int(s.ic),
				line: s.line,
				sym:  o.sym,
				mode: o.mode,
			})
		}
		s.ic++
	}
}

// dataStmt is a .data directive: a list of range-checked values.
type dataStmt struct {
	values []int64
}

func (d *dataStmt) assemble(s *state) {
	for _, v := range d.values {
		s.data.Push(uint32(v))
		s.dc++
	}
}

// stringStmt is a .string directive: the characters plus a terminating zero.
type stringStmt struct {
	text string
}

func (d *stringStmt) assemble(s *state) {
	for i := 0; i < len(d.text); i++ {
		s.data.Push(uint32(d.text[i]))
		s.dc++
	}
	s.data.Push(0)
	s.dc++
}

// entryStmt marks a symbol for export.
type entryStmt struct {
	name string
}

func (d *entryStmt) assemble(s *state) {
	s.symbols.AddKind(d.name, KindEntry, s.line, s.errs)
}

// externStmt declares a symbol defined in another file.
type externStmt struct {
	name string
}

func (d *externStmt) assemble(s *state) {
	s.symbols.Add(d.name, KindExternal, addrUndefined, s.line, s.errs)
}

// labeled binds a label to the statement that follows it. Labels on code take
// the current IC, labels on data the current DC; labels in front of .entry
// and .extern are meaningless and ignored with a warning.
type labeled struct {
	name string
	stmt Assembled
}

func (l *labeled) assemble(s *state) {
	switch l.stmt.(type) {
	case *dataStmt, *stringStmt:
		if !s.symbols.Add(l.name, KindData, int32(s.dc), s.line, s.errs) {
			return
		}
	case *instruction:
		if !s.symbols.Add(l.name, KindCode, int32(s.ic), s.line, s.errs) {
			return
		}
	case *entryStmt, *externStmt:
		logrus.Warnf("%s:%d: the label (%s) before a directive is meaningless; the assembler ignores it",
			s.errs.File(), s.line, l.name)
	}
	l.stmt.assemble(s)
}
