package ast

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/funvibe/liftc/internal/typesystem"
)

func init() {
	// Register node and type implementations for gob serialization
	gob.Register(&Program{})
	gob.Register(&FunctionDeclaration{})
	gob.Register(&IntLiteral{})
	gob.Register(&FloatLiteral{})
	gob.Register(&BoolLiteral{})
	gob.Register(&Identifier{})
	gob.Register(&Binary{})
	gob.Register(&If{})
	gob.Register(&Let{})
	gob.Register(&FunctionLiteral{})
	gob.Register(&Call{})
	gob.Register(typesystem.I64)
	gob.Register(typesystem.Function{})
}

// EncodeProgram serializes a typed AST so a front-end running as a separate
// process can hand modules to the lowering CLI.
func EncodeProgram(p *Program) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(p); err != nil {
		return nil, fmt.Errorf("encoding program: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeProgram is the inverse of EncodeProgram.
func DecodeProgram(data []byte) (*Program, error) {
	var p Program
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&p); err != nil {
		return nil, fmt.Errorf("decoding program: %w", err)
	}
	return &p, nil
}
