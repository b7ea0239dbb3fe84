package asm

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shepheb/asm24/core"
)

// assembleSource runs the full in-memory pipeline over one source text.
func assembleSource(t *testing.T, src string) (*state, uint32, uint32) {
	t.Helper()
	errs := core.NewErrorList("test")
	var am bytes.Buffer
	macros, err := Preprocess(strings.NewReader(src), &am, errs)
	require.NoError(t, err)

	s := newState(macros, errs)
	icf, dcf := runFirst(strings.NewReader(am.String()), s)
	runSecond(s)
	return s, icf, dcf
}

func requireClean(t *testing.T, s *state) {
	t.Helper()
	require.True(t, s.errs.OK(), "unexpected diagnostics: %v", s.errs.All())
}

func TestPureData(t *testing.T) {
	s, icf, dcf := assembleSource(t, "DATA1: .data 5, -3, 1000\n")
	requireClean(t, s)

	assert.Equal(t, uint32(0), icf)
	assert.Equal(t, uint32(3), dcf)
	assert.Equal(t, uint32(5), s.data.At(0))
	assert.Equal(t, uint32(0xFFFFFD), s.data.At(1), "negative values are two's complement")
	assert.Equal(t, uint32(1000), s.data.At(2))

	sym := s.symbols.Find("DATA1")
	require.NotNil(t, sym)
	assert.True(t, sym.Has(KindData))
	assert.Equal(t, int32(LoadBase), sym.Addr, "ICF is 0, so the data segment starts at the load base")
}

func TestRegisterPairSharesOneWord(t *testing.T) {
	s, icf, _ := assembleSource(t, "mov r1, r2\n")
	requireClean(t, s)

	require.Equal(t, uint32(1), icf)
	// opcode 0, source mode 3 reg 1, destination mode 3 reg 2, ARE=A.
	want := uint32(0<<18 | 3<<16 | 1<<13 | 3<<11 | 2<<8 | 0<<3 | 4)
	assert.Equal(t, want, s.code.At(0))
}

func TestImmediateIntoRegister(t *testing.T) {
	s, icf, _ := assembleSource(t, "mov #5, r3\n")
	requireClean(t, s)

	require.Equal(t, uint32(2), icf)
	want := uint32(0<<18 | 0<<16 | 3<<11 | 3<<8 | 0<<3 | 4)
	assert.Equal(t, want, s.code.At(0))
	assert.Equal(t, uint32(44), s.code.At(1), "(5<<3)|A")
}

func TestNegativeImmediate(t *testing.T) {
	s, _, _ := assembleSource(t, "prn #-1\n")
	requireClean(t, s)
	assert.Equal(t, uint32(0xFFFFFC), s.code.At(1), "(-1<<3)|A masked to 24 bits")
}

func TestRelativeJump(t *testing.T) {
	src := `mov r1, r2
mov #1, r3
LOOP: inc r4
mov #2, r5
mov #3, r6
inc r5
jmp &LOOP
`
	s, icf, _ := assembleSource(t, src)
	requireClean(t, s)

	// Layout: 0; 1-2; 3; 4-5; 6-7; 8; 9-10. LOOP is IC 3, address 103; the
	// jmp extra word sits at IC 10, address 110.
	require.Equal(t, uint32(11), icf)
	assert.Equal(t, int32(103), s.symbols.Find("LOOP").Addr)
	dist := int32(103 - 110 + 1)
	want := uint32(dist<<3|4) & core.Mask24
	assert.Equal(t, want, s.code.At(10))
	assert.Equal(t, uint32(0xFFFFD4), s.code.At(10))
}

func TestDirectReference(t *testing.T) {
	src := `MAIN: inc r1
jmp MAIN
`
	s, _, _ := assembleSource(t, src)
	requireClean(t, s)
	// MAIN is address 100; direct references relocate with the R bit.
	assert.Equal(t, uint32(100<<3|2), s.code.At(2))
}

func TestForwardReference(t *testing.T) {
	src := `jmp END
stop
END: stop
`
	s, icf, _ := assembleSource(t, src)
	requireClean(t, s)
	require.Equal(t, uint32(4), icf)
	assert.Equal(t, int32(103), s.symbols.Find("END").Addr)
	assert.Equal(t, uint32(103<<3|2), s.code.At(1))
}

func TestDataReference(t *testing.T) {
	src := `mov COUNT, r1
stop
COUNT: .data 9
`
	s, icf, dcf := assembleSource(t, src)
	requireClean(t, s)
	require.Equal(t, uint32(3), icf)
	require.Equal(t, uint32(1), dcf)
	// COUNT relocates past the code image: 100 + 3.
	assert.Equal(t, int32(103), s.symbols.Find("COUNT").Addr)
	assert.Equal(t, uint32(103<<3|2), s.code.At(1))
}

func TestExternalReference(t *testing.T) {
	src := `.extern X
cmp X, r1
`
	s, icf, _ := assembleSource(t, src)
	requireClean(t, s)

	require.Equal(t, uint32(2), icf)
	want := uint32(1<<18 | 1<<16 | 3<<11 | 1<<8 | 4)
	assert.Equal(t, want, s.code.At(0))
	assert.Equal(t, uint32(1), s.code.At(1), "external operand words carry only the E bit")

	sym := s.symbols.Find("X")
	require.NotNil(t, sym)
	assert.Equal(t, []int32{101}, sym.ExternRefs)
}

func TestEntrySymbol(t *testing.T) {
	src := `.entry LBL
LBL: .data 1
`
	s, icf, dcf := assembleSource(t, src)
	requireClean(t, s)

	assert.Equal(t, uint32(0), icf)
	assert.Equal(t, uint32(1), dcf)
	sym := s.symbols.Find("LBL")
	require.NotNil(t, sym)
	assert.True(t, sym.Has(KindEntry))
	assert.True(t, sym.Has(KindData))
	assert.Equal(t, int32(100), sym.Addr)
	assert.Equal(t, uint32(1), s.data.At(0))
}

func TestStringDirective(t *testing.T) {
	s, _, dcf := assembleSource(t, "STR: .string \"abcdef\"\n")
	requireClean(t, s)
	require.Equal(t, uint32(7), dcf)
	assert.Equal(t, uint32('a'), s.data.At(0))
	assert.Equal(t, uint32('f'), s.data.At(5))
	assert.Equal(t, uint32(0), s.data.At(6), "strings are zero terminated")
}

func TestMacroExpandsBeforeFirstPass(t *testing.T) {
	src := `mcro twice
inc r1
inc r1
mcroend
twice
stop
`
	s, icf, _ := assembleSource(t, src)
	requireClean(t, s)
	require.Equal(t, uint32(3), icf)
	assert.Equal(t, s.code.At(0), s.code.At(1))
}

func TestTwoPassConsistency(t *testing.T) {
	src := `MAIN: mov #5, r3
lea STR, r6
jmp &MAIN
stop
STR: .string "hi"
`
	s, icf, dcf := assembleSource(t, src)
	requireClean(t, s)
	assert.Equal(t, icf, uint32(s.code.Len()), "ICF equals the code image length")
	assert.Equal(t, dcf, uint32(s.data.Len()), "DCF equals the data image length")
}

func TestFirstWordsCarryA(t *testing.T) {
	src := `MAIN: mov #5, r3
lea STR, r6
jmp &MAIN
stop
STR: .string "hi"
`
	s, _, _ := assembleSource(t, src)
	requireClean(t, s)
	for _, slot := range []int{0, 2, 4, 6} {
		assert.Equal(t, uint32(4), s.code.At(slot)&7, "first word at %d must be absolute", slot)
	}
}

func TestUndefinedLabel(t *testing.T) {
	s, _, _ := assembleSource(t, "mov GHOST, r1\n")
	require.False(t, s.errs.OK())
	assert.Contains(t, s.errs.All()[0].Error(), "undefined label")
}

func TestRelativeToDataRejected(t *testing.T) {
	src := `jmp &D
D: .data 1
`
	s, _, _ := assembleSource(t, src)
	require.False(t, s.errs.OK())
	assert.Contains(t, s.errs.All()[0].Error(), "data symbol")
}

func TestRelativeToExternalRejected(t *testing.T) {
	src := `.extern X
jmp &X
`
	s, _, _ := assembleSource(t, src)
	require.False(t, s.errs.OK())
	assert.Contains(t, s.errs.All()[0].Error(), "external")
}

func TestDuplicateLabel(t *testing.T) {
	src := `X: .data 1
X: .data 2
`
	s, _, _ := assembleSource(t, src)
	require.False(t, s.errs.OK())
	assert.Contains(t, s.errs.All()[0].Error(), "already defined")
}

func TestEntryNeverDefined(t *testing.T) {
	s, _, _ := assembleSource(t, ".entry GHOST\n")
	require.False(t, s.errs.OK())
	assert.Contains(t, s.errs.All()[0].Error(), "entry symbol (GHOST)")
}

func TestEntryExternConflict(t *testing.T) {
	src := `.extern X
.entry X
`
	s, _, _ := assembleSource(t, src)
	require.False(t, s.errs.OK())
	assert.Contains(t, s.errs.All()[0].Error(), "both as entry and external")
}

func TestLabelBeforeEntryIgnored(t *testing.T) {
	src := `IGNORED: .entry MAIN
MAIN: stop
`
	s, _, _ := assembleSource(t, src)
	requireClean(t, s)
	assert.Nil(t, s.symbols.Find("IGNORED"), "the label is discarded, not defined")
	assert.True(t, s.symbols.Find("MAIN").Has(KindEntry))
}

func TestReservedLabelRejected(t *testing.T) {
	s, _, _ := assembleSource(t, "mov: .data 5\n")
	require.False(t, s.errs.OK())
	assert.Contains(t, s.errs.All()[0].Error(), "reserved word")
}

func TestLabelCollidingWithMacro(t *testing.T) {
	src := `mcro m
inc r1
mcroend
m: .data 1
`
	s, _, _ := assembleSource(t, src)
	require.False(t, s.errs.OK())
	assert.Contains(t, s.errs.All()[0].Error(), "macro")
}

func TestDiagnosticsAccumulate(t *testing.T) {
	src := `mov r1 r2
bogus r1
.data 99999999
stop
`
	s, _, _ := assembleSource(t, src)
	require.False(t, s.errs.OK())
	assert.Equal(t, 3, s.errs.Len(), "every bad line gets its own diagnostic: %v", s.errs.All())
}

func TestErrorLinesCarryNumbers(t *testing.T) {
	src := `stop
mov r1 r2
`
	s, _, _ := assembleSource(t, src)
	require.False(t, s.errs.OK())
	assert.Contains(t, s.errs.All()[0].Error(), "test:2:")
}
