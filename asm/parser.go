package asm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shepheb/psec"

	"github.com/shepheb/asm24/core"
)

// Wrap the most common parser ops for brevity.
func lit(s string) psec.Parser {
	return psec.Literal(s)
}
func sym(s string) psec.Parser {
	return psec.Symbol(s)
}

// buildLineParser constructs the grammar for a single expanded source line.
// The pre-processor has already removed comments and blank lines, so a parse
// yields exactly one statement or an error. Comma discipline and addressing
// rules are enforced in the actions, which turns each violation into its own
// diagnostic message rather than a generic parse failure.
func buildLineParser() *psec.Grammar {
	g := psec.NewGrammar()
	core.AddScanParsers(g)

	addSeparatorParsers(g)
	addOperandParsers(g)
	addInstructionParsers(g)
	addDirectiveParsers(g)

	g.WithAction("labeled statement",
		psec.Seq(sym("identifier"), lit(":"), sym("ws1"), sym("statement")),
		func(r interface{}, loc *psec.Loc) (interface{}, error) {
			rs := r.([]interface{})
			return &labeled{name: rs[0].(string), stmt: rs[3].(Assembled)}, nil
		})

	g.AddSymbol("statement",
		psec.Alt(sym("directive"), sym("instruction")))

	// Label alternatives run before bare instructions so that a label whose
	// name extends a mnemonic ("stopper:") is not misread as the mnemonic.
	g.AddSymbol("content",
		psec.Alt(sym("directive"), sym("labeled statement"), sym("instruction")))

	g.WithAction("line",
		psec.Seq(sym("wsline"), sym("content"), sym("line end")),
		func(r interface{}, loc *psec.Loc) (interface{}, error) {
			return r.([]interface{})[1], nil
		})
	g.AddSymbol("START", sym("line"))
	return g
}

func addSeparatorParsers(g *psec.Grammar) {
	// The gap between a mnemonic and its first operand: plain whitespace, no
	// comma allowed.
	g.WithAction("operand gap", psec.Stringify(psec.Many1(psec.OneOf(" \t,"))),
		func(r interface{}, loc *psec.Loc) (interface{}, error) {
			if strings.Contains(r.(string), ",") {
				return nil, fmt.Errorf("invalid comma before the first operand")
			}
			return nil, nil
		})

	// Between two instruction operands: exactly one comma.
	g.WithAction("separator", psec.Stringify(psec.Many1(psec.OneOf(" \t,"))),
		func(r interface{}, loc *psec.Loc) (interface{}, error) {
			switch strings.Count(r.(string), ",") {
			case 0:
				return nil, fmt.Errorf("missing a comma")
			case 1:
				return nil, nil
			default:
				return nil, fmt.Errorf("invalid extra comma")
			}
		})

	// Whatever is left after the statement. Only blanks may follow; a comma
	// here is the trailing-comma case.
	g.WithAction("line end", psec.Stringify(psec.Many(psec.NoneOf("\n"))),
		func(r interface{}, loc *psec.Loc) (interface{}, error) {
			rest := strings.TrimSpace(r.(string))
			if rest == "" {
				return nil, nil
			}
			if strings.HasPrefix(rest, ",") {
				return nil, fmt.Errorf("invalid extra comma at the end of the line")
			}
			return nil, fmt.Errorf("illegal extra characters (%s) at the end of the line", rest)
		})
}

func addOperandParsers(g *psec.Grammar) {
	g.WithAction("immediate operand",
		psec.SeqAt(1, lit("#"), psec.Alt(sym("integer"), sym("bad immediate"))),
		func(r interface{}, loc *psec.Loc) (interface{}, error) {
			n := r.(int64)
			if n < -(1<<20) || n > (1<<20)-1 {
				return nil, fmt.Errorf("the immediate value (%d) is out of range", n)
			}
			return &operand{mode: amImmediate, value: n}, nil
		})

	g.WithAction("bad immediate",
		psec.Stringify(psec.Many(psec.NoneOf(" \t,\n"))),
		func(r interface{}, loc *psec.Loc) (interface{}, error) {
			s := r.(string)
			if s == "" {
				return nil, fmt.Errorf("missing a number after '#'")
			}
			return nil, fmt.Errorf("the immediate operand (%s) is not an integer", s)
		})

	g.WithAction("relative operand",
		psec.SeqAt(1, lit("&"), sym("identifier")),
		func(r interface{}, loc *psec.Loc) (interface{}, error) {
			return &operand{mode: amRelative, sym: r.(string)}, nil
		})

	// A bare identifier is a register when it matches r1..r7 and a direct
	// symbol reference otherwise. An r followed by nothing but digits is a
	// botched register, not a label.
	g.WithAction("plain operand", sym("identifier"),
		func(r interface{}, loc *psec.Loc) (interface{}, error) {
			name := r.(string)
			if reg, ok := registerNumber(name); ok {
				return &operand{mode: amRegister, reg: reg}, nil
			}
			if name[0] == 'r' && len(name) > 1 && allDigits(name[1:]) {
				return nil, fmt.Errorf("the register number (%s) is not valid", name[1:])
			}
			return &operand{mode: amDirect, sym: name}, nil
		})

	g.AddSymbol("operand", psec.Alt(
		sym("immediate operand"), sym("relative operand"), sym("plain operand")))
}

func registerNumber(name string) (uint32, bool) {
	if len(name) == 2 && name[0] == 'r' && '1' <= name[1] && name[1] <= '7' {
		return uint32(name[1] - '0'), true
	}
	return 0, false
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

func addInstructionParsers(g *psec.Grammar) {
	var two, one, zero []psec.Parser
	for i := range opTable {
		op := &opTable[i]
		switch {
		case op.hasSrc():
			two = append(two, lit(op.mnemonic))
		case op.hasDst():
			one = append(one, lit(op.mnemonic))
		default:
			zero = append(zero, lit(op.mnemonic))
		}
	}

	mnemonicAction := func(r interface{}, loc *psec.Loc) (interface{}, error) {
		return lookupOp(r.(string)), nil
	}
	g.WithAction("two-operand mnemonic", psec.Alt(two...), mnemonicAction)
	g.WithAction("one-operand mnemonic", psec.Alt(one...), mnemonicAction)
	g.WithAction("zero-operand mnemonic", psec.Alt(zero...), mnemonicAction)

	g.WithAction("two-operand instruction",
		psec.Seq(sym("two-operand mnemonic"), sym("operand gap"),
			sym("operand"), sym("separator"), sym("operand")),
		func(r interface{}, loc *psec.Loc) (interface{}, error) {
			rs := r.([]interface{})
			op := rs[0].(*opSpec)
			src := rs[2].(*operand)
			dst := rs[4].(*operand)
			if err := checkMode(op, src, true); err != nil {
				return nil, err
			}
			if err := checkMode(op, dst, false); err != nil {
				return nil, err
			}
			return &instruction{op: op, src: src, dst: dst}, nil
		})

	g.WithAction("one-operand instruction",
		psec.Seq(sym("one-operand mnemonic"), sym("operand gap"), sym("operand")),
		func(r interface{}, loc *psec.Loc) (interface{}, error) {
			rs := r.([]interface{})
			op := rs[0].(*opSpec)
			dst := rs[2].(*operand)
			if err := checkMode(op, dst, false); err != nil {
				return nil, err
			}
			return &instruction{op: op, dst: dst}, nil
		})

	g.WithAction("zero-operand instruction", sym("zero-operand mnemonic"),
		func(r interface{}, loc *psec.Loc) (interface{}, error) {
			return &instruction{op: r.(*opSpec)}, nil
		})

	g.AddSymbol("instruction", psec.Alt(
		sym("two-operand instruction"),
		sym("one-operand instruction"),
		sym("zero-operand instruction")))
}

func checkMode(op *opSpec, o *operand, isSrc bool) error {
	allowed, position := op.dst, "destination"
	if isSrc {
		allowed, position = op.src, "source"
	}
	if !allowed.has(o.mode) {
		return fmt.Errorf("the %s instruction does not support %s addressing for the %s operand",
			op.mnemonic, o.mode, position)
	}
	return nil
}

// Directives dispatch on their name once and validate the raw tail of the
// line with the scan helpers below, so every malformed tail gets a specific
// message instead of a generic parse failure.
func addDirectiveParsers(g *psec.Grammar) {
	g.WithAction("directive",
		psec.Seq(lit("."), sym("identifier"), sym("rest")),
		func(r interface{}, loc *psec.Loc) (interface{}, error) {
			rs := r.([]interface{})
			name := rs[1].(string)
			tail := rs[2].(string)

			switch name {
			case "entry":
				target, err := scanSymbolTail(name, tail)
				if err != nil {
					return nil, err
				}
				return &entryStmt{name: target}, nil
			case "extern":
				target, err := scanSymbolTail(name, tail)
				if err != nil {
					return nil, err
				}
				return &externStmt{name: target}, nil
			case "data":
				values, err := scanDataValues(tail)
				if err != nil {
					return nil, err
				}
				return &dataStmt{values: values}, nil
			case "string":
				text, err := scanStringTail(tail)
				if err != nil {
					return nil, err
				}
				return &stringStmt{text: text}, nil
			}
			return nil, fmt.Errorf("the directive (.%s) is not recognized", name)
		})
}

// splitCommaList splits a directive tail on blanks and commas, enforcing the
// comma discipline: no comma before the first item, exactly one between
// items, none after the last.
func splitCommaList(tail string) ([]string, error) {
	var items []string
	i, n := 0, len(tail)
	skip := func() int {
		commas := 0
		for i < n && (tail[i] == ' ' || tail[i] == '\t' || tail[i] == ',') {
			if tail[i] == ',' {
				commas++
			}
			i++
		}
		return commas
	}

	if skip() > 0 {
		return nil, fmt.Errorf("invalid comma before the first operand")
	}
	for i < n {
		start := i
		for i < n && tail[i] != ' ' && tail[i] != '\t' && tail[i] != ',' {
			i++
		}
		items = append(items, tail[start:i])

		commas := skip()
		if i >= n {
			if commas > 0 {
				return nil, fmt.Errorf("invalid extra comma at the end of the line")
			}
			break
		}
		switch {
		case commas == 0:
			return nil, fmt.Errorf("missing a comma")
		case commas > 1:
			return nil, fmt.Errorf("invalid extra comma")
		}
	}
	return items, nil
}

func scanDataValues(tail string) ([]int64, error) {
	items, err := splitCommaList(tail)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("no values in the .data declaration")
	}
	values := make([]int64, 0, len(items))
	for _, item := range items {
		n, err := strconv.ParseInt(item, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("one of the parameters (%s) is not an integer", item)
		}
		if n < -(1<<23) || n > (1<<23)-1 {
			return nil, fmt.Errorf("the value (%d) in the .data declaration is out of range", n)
		}
		values = append(values, n)
	}
	return values, nil
}

func scanSymbolTail(dir, tail string) (string, error) {
	rest := strings.TrimLeft(tail, " \t")
	if rest == "" {
		return "", fmt.Errorf("missing a label name after .%s", dir)
	}
	if rest[0] == ',' {
		return "", fmt.Errorf("invalid comma after .%s", dir)
	}
	name := rest
	if i := strings.IndexAny(rest, " \t,"); i >= 0 {
		name = rest[:i]
		trail := strings.TrimSpace(rest[i:])
		if trail != "" {
			if trail[0] == ',' {
				return "", fmt.Errorf("invalid extra comma at the end of the line")
			}
			return "", fmt.Errorf("illegal extra characters (%s) at the end of the line", trail)
		}
	}
	return name, nil
}

func scanStringTail(tail string) (string, error) {
	raw := strings.TrimLeft(tail, " \t")
	if raw == "" {
		return "", fmt.Errorf("missing the string in the .string declaration")
	}
	if raw[0] != '"' {
		return "", fmt.Errorf("missing a quotation mark at the start of the string")
	}
	end := strings.IndexByte(raw[1:], '"')
	if end < 0 {
		return "", fmt.Errorf("missing a quotation mark at the end of the string")
	}
	text := raw[1 : 1+end]
	if trail := strings.TrimSpace(raw[2+end:]); trail != "" {
		return "", fmt.Errorf("illegal extra characters (%s) after the closing quotation mark", trail)
	}
	return text, nil
}
