package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/funvibe/liftc/internal/ast"
	"github.com/funvibe/liftc/internal/typesystem"
)

func writeBundle(t *testing.T, p *ast.Program) string {
	t.Helper()
	data, err := ast.EncodeProgram(p)
	if err != nil {
		t.Fatalf("encoding bundle: %v", err)
	}
	path := filepath.Join(t.TempDir(), "program.astb")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func sampleProgram() *ast.Program {
	fnType := typesystem.Function{
		Params: []typesystem.Type{typesystem.I64},
		Result: typesystem.I64,
	}
	return &ast.Program{
		File: "sample.fx",
		Functions: []*ast.FunctionDeclaration{
			{
				Name:       "multiplyBy10",
				Params:     []*ast.Param{{Name: "n", Typ: typesystem.I64}},
				ReturnType: typesystem.I64,
				Body: &ast.Binary{
					Op:    "*",
					Left:  &ast.Identifier{Name: "n", Typ: typesystem.I64},
					Right: &ast.IntLiteral{Value: 10},
					Typ:   typesystem.I64,
				},
			},
		},
		Main: &ast.Call{
			Callee: &ast.Identifier{Name: "multiplyBy10", Typ: fnType},
			Args:   []ast.Expression{&ast.IntLiteral{Value: 5}},
			Typ:    typesystem.I64,
		},
	}
}

func TestEntryWritesArtifact(t *testing.T) {
	bundle := writeBundle(t, sampleProgram())
	out := filepath.Join(t.TempDir(), "out.lftc")

	if code := Entry([]string{"-o", out, bundle}); code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}

	artifact, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("artifact not written: %v", err)
	}
	if !bytes.HasPrefix(artifact, []byte("LFTC")) {
		t.Fatalf("artifact missing magic: % x", artifact[:8])
	}
}

func TestEntryRequiresBundleArgument(t *testing.T) {
	if code := Entry(nil); code != 2 {
		t.Fatalf("expected usage exit code 2, got %d", code)
	}
}

func TestEntryRejectsMissingBundle(t *testing.T) {
	if code := Entry([]string{filepath.Join(t.TempDir(), "absent.astb")}); code != 1 {
		t.Fatalf("expected exit code 1 for a missing bundle")
	}
}

func TestEntryReportsLoweringErrors(t *testing.T) {
	// A free variable with no binding anywhere must fail the build.
	p := &ast.Program{
		Functions: []*ast.FunctionDeclaration{
			{
				Name:       "broken",
				Params:     []*ast.Param{{Name: "x", Typ: typesystem.I64}},
				ReturnType: typesystem.I64,
				Body:       &ast.Identifier{Name: "ghost", Typ: typesystem.I64},
			},
		},
	}
	bundle := writeBundle(t, p)

	if code := Entry([]string{bundle}); code != 1 {
		t.Fatalf("expected exit code 1 for diagnostics, got %d", code)
	}
}
