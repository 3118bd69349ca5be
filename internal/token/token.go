package token

import "fmt"

// Token carries the source location the front-end attached to an AST node.
// The lowering stage never lexes; tokens exist so diagnostics can point at
// the offending function or call site.
type Token struct {
	Lexeme string // Original source text, when the front-end provides it
	Line   int
	Column int
	File   string
}

// Pos formats the location as file:line:column, omitting missing parts.
func (t Token) Pos() string {
	if t.Line == 0 {
		return t.File
	}
	if t.File == "" {
		return fmt.Sprintf("%d:%d", t.Line, t.Column)
	}
	return fmt.Sprintf("%s:%d:%d", t.File, t.Line, t.Column)
}
