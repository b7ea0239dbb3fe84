package asm

import (
	"bufio"
	"io"
	"strings"

	"github.com/shepheb/asm24/core"
)

// state carries everything the passes mutate for one file: the counters, the
// two images, the symbol table and the deferred operand fix-ups.
type state struct {
	ic, dc uint32

	code *core.Image
	data *core.Image

	symbols *Table
	fixups  []fixup

	errs *core.ErrorList
	line int // current source line, for diagnostics
}

// fixup is one operand whose word could not be emitted during the first pass
// because it depends on a symbol address.
type fixup struct {
	slot int // index into the code image
	line int
	sym  string
	mode addrMode // amDirect or amRelative
}

func newState(macros *MacroTable, errs *core.ErrorList) *state {
	return &state{
		code:    &core.Image{},
		data:    &core.Image{},
		symbols: NewTable(macros.IsMacro),
		errs:    errs,
	}
}

// The grammar is static; build it once.
var lineParser = buildLineParser()

// runFirst is the first pass: it classifies every line of the expanded
// source, lays out the code and data images, fills the symbol table and
// records fix-ups for the second pass. A bad line is one diagnostic and the
// pass moves on. It returns ICF and DCF, with the symbol table already
// relocated against them.
func runFirst(r io.Reader, s *state) (icf, dcf uint32) {
	in := bufio.NewReader(r)
	for n := 1; ; n++ {
		text, err := in.ReadString('\n')
		if text == "" && err != nil {
			break
		}
		last := err != nil

		text = strings.TrimRight(text, "\r\n")
		trimmed := strings.TrimSpace(text)
		if trimmed == "" || strings.HasPrefix(trimmed, ";") {
			if last {
				break
			}
			continue
		}

		s.line = n
		res, perr := lineParser.ParseString(s.errs.File(), text)
		if perr != nil {
			s.errs.ParseError(n, perr)
		} else {
			res.(Assembled).assemble(s)
		}

		if last {
			break
		}
	}

	icf, dcf = s.ic, s.dc
	s.symbols.Relocate(int32(icf), s.errs)
	return icf, dcf
}
