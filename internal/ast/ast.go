package ast

import (
	"github.com/funvibe/liftc/internal/token"
	"github.com/funvibe/liftc/internal/typesystem"
)

// Node is the base interface for all AST nodes.
type Node interface {
	GetToken() token.Token
}

// Expression is a Node that produces a value. The front-end resolves every
// expression to a concrete, monomorphic type before handing the AST to us.
type Expression interface {
	Node
	expressionNode()
	Type() typesystem.Type
}

// Program is the root node of every module the front-end produces.
type Program struct {
	File      string // Source file path
	Functions []*FunctionDeclaration
	Main      Expression // Optional entry expression; nil for pure libraries
}

func (p *Program) GetToken() token.Token {
	if len(p.Functions) > 0 {
		return p.Functions[0].GetToken()
	}
	return token.Token{File: p.File}
}

// Param is one typed parameter of a function declaration or literal.
type Param struct {
	Name string
	Typ  typesystem.Type
}

// FunctionDeclaration is a named, module-level function.
// multiplyBy10(x) = x * 10
type FunctionDeclaration struct {
	Token      token.Token
	Name       string
	Params     []*Param
	ReturnType typesystem.Type
	Body       Expression
}

func (fd *FunctionDeclaration) GetToken() token.Token {
	if fd == nil {
		return token.Token{}
	}
	return fd.Token
}

// IntLiteral is a 64-bit integer constant.
type IntLiteral struct {
	Token token.Token
	Value int64
}

func (il *IntLiteral) expressionNode() {}
func (il *IntLiteral) Type() typesystem.Type  { return typesystem.I64 }
func (il *IntLiteral) GetToken() token.Token  { return il.Token }

// FloatLiteral is a 64-bit float constant.
type FloatLiteral struct {
	Token token.Token
	Value float64
}

func (fl *FloatLiteral) expressionNode() {}
func (fl *FloatLiteral) Type() typesystem.Type  { return typesystem.F64 }
func (fl *FloatLiteral) GetToken() token.Token  { return fl.Token }

// BoolLiteral is a boolean constant.
type BoolLiteral struct {
	Token token.Token
	Value bool
}

func (bl *BoolLiteral) expressionNode() {}
func (bl *BoolLiteral) Type() typesystem.Type  { return typesystem.Bool }
func (bl *BoolLiteral) GetToken() token.Token  { return bl.Token }

// Identifier is a reference to a parameter, a let binding, an enclosing-scope
// binding, or a module-level function.
type Identifier struct {
	Token token.Token
	Name  string
	Typ   typesystem.Type
}

func (id *Identifier) expressionNode() {}
func (id *Identifier) Type() typesystem.Type  { return id.Typ }
func (id *Identifier) GetToken() token.Token  { return id.Token }

// Binary is an arithmetic, comparison or logical operation over two scalars.
type Binary struct {
	Token token.Token
	Op    string // "+", "-", "*", "/", "%", "==", "!=", "<", "<=", ">", ">=", "&&", "||"
	Left  Expression
	Right Expression
	Typ   typesystem.Type
}

func (b *Binary) expressionNode() {}
func (b *Binary) Type() typesystem.Type  { return b.Typ }
func (b *Binary) GetToken() token.Token  { return b.Token }

// If is a conditional expression; both arms carry the same type.
type If struct {
	Token token.Token
	Cond  Expression
	Then  Expression
	Else  Expression
}

func (i *If) expressionNode() {}
func (i *If) Type() typesystem.Type { return i.Then.Type() }
func (i *If) GetToken() token.Token { return i.Token }

// Let introduces a local binding visible in In.
// { scalar = 10; body } desugars to Let{Name: "scalar", Value: 10, In: body}.
type Let struct {
	Token token.Token
	Name  string
	Value Expression
	In    Expression
}

func (l *Let) expressionNode() {}
func (l *Let) Type() typesystem.Type { return l.In.Type() }
func (l *Let) GetToken() token.Token { return l.Token }

// FunctionLiteral is a nested, anonymous function. This is the node lambda
// lifting relocates to module scope.
type FunctionLiteral struct {
	Token  token.Token
	Params []*Param
	Body   Expression
	Typ    typesystem.Function
}

func (fl *FunctionLiteral) expressionNode() {}
func (fl *FunctionLiteral) Type() typesystem.Type  { return fl.Typ }
func (fl *FunctionLiteral) GetToken() token.Token  { return fl.Token }

// Call applies a callee to arguments. The callee may be a statically known
// function name, a function literal, or any expression producing a function
// value; the call-site compiler decides which shape it lowers to.
type Call struct {
	Token  token.Token
	Callee Expression
	Args   []Expression
	Typ    typesystem.Type // Result type of this application
}

func (c *Call) expressionNode() {}
func (c *Call) Type() typesystem.Type  { return c.Typ }
func (c *Call) GetToken() token.Token  { return c.Token }
