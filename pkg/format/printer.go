// Package format renders AST nodes back to SQL text on a single line.
//
// The output is canonical: keywords are upper case, spacing is fixed and
// parentheses are kept exactly where the source had them, so two
// expressions that print the same are structurally equal. The binder uses
// this to match GROUP BY expressions.
package format

import (
	"strings"

	"github.com/truffle-sql/truffle/pkg/token"
)

// Printer accumulates SQL text.
type Printer struct {
	out strings.Builder
	// fold, when set, normalizes identifiers before they are written.
	fold func(string) string
}

func newPrinter(fold func(string) string) *Printer {
	return &Printer{fold: fold}
}

// String returns the text written so far.
func (p *Printer) String() string {
	return p.out.String()
}

func (p *Printer) write(s string) {
	p.out.WriteString(s)
}

func (p *Printer) ident(name string) {
	if p.fold != nil {
		name = p.fold(name)
	}
	p.write(name)
}

func (p *Printer) space() {
	p.out.WriteByte(' ')
}

// kw prints keywords separated by single spaces.
func (p *Printer) kw(tokens ...token.TokenType) {
	for i, t := range tokens {
		if i > 0 {
			p.space()
		}
		p.write(t.String())
	}
}

// formatList prints count items separated by sep.
func (p *Printer) formatList(count int, format func(i int), sep string) {
	for i := 0; i < count; i++ {
		if i > 0 {
			p.write(sep)
		}
		format(i)
	}
}
