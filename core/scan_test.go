package core

import (
	"strings"
	"testing"

	"github.com/shepheb/psec"
)

func scanGrammar() *psec.Grammar {
	g := psec.NewGrammar()
	AddScanParsers(g)
	return g
}

var sg = scanGrammar()

func expectIdentifier(t *testing.T, input, exp string) {
	t.Helper()
	res, err := sg.ParseStringWith("test", input, "identifier")
	if err != nil {
		t.Errorf("unexpected error for %q: %v", input, err)
		return
	}
	if s, ok := res.(string); !ok || s != exp {
		t.Errorf("expected identifier %q, got %#v", exp, res)
	}
}

func expectInteger(t *testing.T, input string, exp int64) {
	t.Helper()
	res, err := sg.ParseStringWith("test", input, "integer")
	if err != nil {
		t.Errorf("unexpected error for %q: %v", input, err)
		return
	}
	if n, ok := res.(int64); !ok || n != exp {
		t.Errorf("expected integer %d, got %#v", exp, res)
	}
}

func expectScanError(t *testing.T, startSym, input, fragment string) {
	t.Helper()
	_, err := sg.ParseStringWith("test", input, startSym)
	if err == nil {
		t.Errorf("expected error for %q", input)
	} else if !strings.Contains(err.Error(), fragment) {
		t.Errorf("error mismatch for %q: got %v", input, err)
	}
}

func TestIdentifier(t *testing.T) {
	expectIdentifier(t, "a", "a")
	expectIdentifier(t, "LOOP", "LOOP")
	expectIdentifier(t, "Ab1c2", "Ab1c2")
	expectIdentifier(t, strings.Repeat("x", MaxIdentifier), strings.Repeat("x", MaxIdentifier))
}

func TestIdentifierTooLong(t *testing.T) {
	expectScanError(t, "identifier", strings.Repeat("x", MaxIdentifier+1), "too long")
}

func TestInteger(t *testing.T) {
	expectInteger(t, "0", 0)
	expectInteger(t, "42", 42)
	expectInteger(t, "+7", 7)
	expectInteger(t, "-13", -13)
	expectInteger(t, "1000000", 1000000)
}
