package asm

import (
	"fmt"
	"io"

	"github.com/shepheb/asm24/core"
)

// writeObject emits the .ob image: a header with the two final counters, then
// the instruction words and the data words at their absolute addresses.
func writeObject(w io.Writer, code, data *core.Image, icf, dcf uint32) error {
	if _, err := fmt.Fprintf(w, "     %d %d\n", icf, dcf); err != nil {
		return err
	}
	for i := 0; i < code.Len(); i++ {
		if _, err := fmt.Fprintf(w, "%07d %06X\n", i+LoadBase, code.At(i)); err != nil {
			return err
		}
	}
	for i := 0; i < data.Len(); i++ {
		if _, err := fmt.Fprintf(w, "%07d %06X\n", i+int(icf)+LoadBase, data.At(i)); err != nil {
			return err
		}
	}
	return nil
}

// hasExternals reports whether any external reference was recorded; only then
// is a .ext file written.
func hasExternals(t *Table) bool {
	for _, s := range t.Symbols() {
		if len(s.ExternRefs) > 0 {
			return true
		}
	}
	return false
}

// writeExternals lists every external reference site, symbols in table order
// and sites in recording order.
func writeExternals(w io.Writer, t *Table) error {
	for _, s := range t.Symbols() {
		for _, addr := range s.ExternRefs {
			if _, err := fmt.Fprintf(w, "%s %07d\n", s.Name, addr); err != nil {
				return err
			}
		}
	}
	return nil
}

// hasEntries reports whether the file exported any symbol.
func hasEntries(t *Table) bool {
	for _, s := range t.Symbols() {
		if s.Has(KindEntry) {
			return true
		}
	}
	return false
}

// writeEntries lists every entry symbol with its resolved address.
func writeEntries(w io.Writer, t *Table) error {
	for _, s := range t.Symbols() {
		if !s.Has(KindEntry) {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s %07d\n", s.Name, s.Addr); err != nil {
			return err
		}
	}
	return nil
}
