package asm

import (
	"github.com/shepheb/asm24/core"
)

// Kind classifies a symbol. A symbol may carry several kinds at once (a code
// label that is also exported as an entry, say); the one forbidden pairing is
// entry with external.
type Kind uint8

const (
	KindCode Kind = 1 << iota
	KindData
	KindEntry
	KindExternal
)

const addrUndefined int32 = -1

// Symbol is one row of the symbol table.
type Symbol struct {
	Name  string
	Addr  int32 // addrUndefined until a definition supplies one
	Kinds Kind

	// Absolute addresses of the words that reference this symbol, in
	// emission order. Populated during the second pass, external symbols
	// only.
	ExternRefs []int32
}

// Has reports whether the symbol carries any of the given kinds.
func (s *Symbol) Has(k Kind) bool { return s.Kinds&k != 0 }

// AddExternRef appends one reference site.
func (s *Symbol) AddExternRef(addr int32) {
	s.ExternRefs = append(s.ExternRefs, addr)
}

// Table is the symbol table for one file. Insertion order is preserved: the
// .ext and .ent artifacts list symbols in the order they first appeared.
type Table struct {
	syms    []*Symbol
	index   map[string]int
	isMacro func(string) bool
}

// NewTable returns an empty table. isMacro lets symbol validation reject
// names already taken by a macro; nil disables the check.
func NewTable(isMacro func(string) bool) *Table {
	return &Table{index: make(map[string]int), isMacro: isMacro}
}

func (t *Table) checkName(name string, line int, errs *core.ErrorList) bool {
	if name == "" {
		errs.Errorf(line, "missing a label name")
		return false
	}
	if len(name) > core.MaxIdentifier {
		errs.Errorf(line, "the symbol (%s) is too long", name)
		return false
	}
	if isReserved(name) {
		errs.Errorf(line, "the symbol (%s) is a reserved word", name)
		return false
	}
	if t.isMacro != nil && t.isMacro(name) {
		errs.Errorf(line, "the symbol (%s) is already a macro name", name)
		return false
	}
	if !isLetter(name[0]) {
		errs.Errorf(line, "the symbol (%s) must start with a letter", name)
		return false
	}
	for i := 1; i < len(name); i++ {
		if !isLetter(name[i]) && !isDigit(name[i]) {
			errs.Errorf(line, "the symbol (%s) must contain only letters and digits", name)
			return false
		}
	}
	return true
}

func isLetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

// Add defines or merges a symbol. A call with addr != addrUndefined is an
// address-bearing definition and may happen at most once per name; a call
// with addrUndefined only merges the kind (inserting the symbol if absent).
// Diagnostics go to errs; the return value reports success.
func (t *Table) Add(name string, kind Kind, addr int32, line int, errs *core.ErrorList) bool {
	if !t.checkName(name, line, errs) {
		return false
	}

	i, known := t.index[name]
	if !known {
		t.index[name] = len(t.syms)
		t.syms = append(t.syms, &Symbol{Name: name, Addr: addr, Kinds: kind})
		return true
	}

	s := t.syms[i]
	if (kind == KindEntry && s.Has(KindExternal)) ||
		(kind == KindExternal && s.Has(KindEntry)) {
		errs.Errorf(line, "the symbol (%s) has been defined both as entry and external", name)
		return false
	}
	if kind == KindExternal && s.Addr != addrUndefined {
		errs.Errorf(line, "the symbol (%s) is defined in this file and cannot be external", name)
		return false
	}
	if addr != addrUndefined {
		if s.Addr != addrUndefined {
			errs.Errorf(line, "the symbol (%s) is already defined", name)
			return false
		}
		if s.Has(KindExternal) {
			errs.Errorf(line, "the symbol (%s) is declared external and cannot be defined here", name)
			return false
		}
		s.Addr = addr
	}
	s.Kinds |= kind
	return true
}

// AddKind merges a kind without defining an address.
func (t *Table) AddKind(name string, kind Kind, line int, errs *core.ErrorList) bool {
	return t.Add(name, kind, addrUndefined, line, errs)
}

// Find returns the symbol for a name, or nil.
func (t *Table) Find(name string) *Symbol {
	if i, ok := t.index[name]; ok {
		return t.syms[i]
	}
	return nil
}

// Symbols returns the table rows in insertion order.
func (t *Table) Symbols() []*Symbol { return t.syms }

// Relocate finalizes addresses at the end of the first pass: data symbols
// move past the code image, code symbols move to the load base, and entry
// symbols must have been defined by now.
func (t *Table) Relocate(icf int32, errs *core.ErrorList) {
	for _, s := range t.syms {
		switch {
		case s.Has(KindData):
			s.Addr += icf + LoadBase
		case s.Has(KindCode):
			s.Addr += LoadBase
		case s.Has(KindEntry):
			if s.Addr == addrUndefined {
				errs.Errorf(0, "the address of the entry symbol (%s) is not defined", s.Name)
			}
		}
	}
}
