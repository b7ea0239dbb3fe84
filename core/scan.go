package core

import (
	"fmt"
	"strconv"

	"github.com/shepheb/psec"
)

// MaxLineLength is the longest source line the assembler accepts, excluding
// the terminator. Longer lines are diagnosed and truncated.
const MaxLineLength = 80

// MaxIdentifier bounds symbol and macro names.
const MaxIdentifier = 31

func sym(s string) psec.Parser {
	return psec.Symbol(s)
}

// AddScanParsers installs the lexical symbols shared by every grammar built
// on top of this package: same-line whitespace, identifiers and signed
// integers.
func AddScanParsers(g *psec.Grammar) {
	g.AddSymbol("wsline", psec.ManyDrop(psec.OneOf(" \t")))
	g.AddSymbol("ws1", psec.Many1(psec.OneOf(" \t")))

	g.AddSymbol("letter",
		psec.Alt(psec.Range('a', 'z'), psec.Range('A', 'Z')))

	g.WithAction("identifier",
		psec.Seq(sym("letter"), psec.Stringify(psec.Many(
			psec.Alt(psec.Range('0', '9'), sym("letter"))))),
		func(r interface{}, loc *psec.Loc) (interface{}, error) {
			rs := r.([]interface{})
			name := fmt.Sprintf("%c%s", rs[0].(byte), rs[1].(string))
			if len(name) > MaxIdentifier {
				return nil, fmt.Errorf("the identifier (%s) is too long", name)
			}
			return name, nil
		})

	g.WithAction("integer",
		psec.Seq(psec.Optional(psec.OneOf("+-")),
			psec.Stringify(psec.Many1(psec.Range('0', '9')))),
		func(r interface{}, loc *psec.Loc) (interface{}, error) {
			rs := r.([]interface{})
			digits := rs[1].(string)
			if sign, ok := rs[0].(byte); ok && sign == '-' {
				digits = "-" + digits
			}
			n, err := strconv.ParseInt(digits, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("bad numeric literal (%s)", digits)
			}
			return n, nil
		})

	// Everything up to the end of the line, for rules that do their own
	// validation on the raw text.
	g.AddSymbol("rest", psec.Stringify(psec.Many(psec.NoneOf("\n"))))
}
