package compiler

import (
	"errors"
	"io"

	"github.com/nand2tetris-go/jackc/codegen"
	"github.com/nand2tetris-go/jackc/lexer"
)

// CompileUnit tokenizes src and compiles exactly one class from it,
// writing VM instruction text to w. It returns the compiled class's
// name and the per-subroutine symbol data recovered along the way. Any
// fatal error is a *CompileError; w may have already received partial
// output in that case, so callers that must guarantee no partial
// output reaches a persistent destination (service.Compile) write to
// an in-memory buffer and only copy it out on success.
func CompileUnit(src []byte, filename string, w io.Writer, opts Options) (*Unit, error) {
	lx, err := lexer.New(src, filename)
	if err != nil {
		return nil, newLexicalError(filename, err.Error())
	}

	em := codegen.New(w)
	eng := New(lx, filename, em, opts)

	if err := eng.CompileClass(); err != nil {
		return nil, err
	}
	if errs := eng.Errs(); len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if err := em.Close(); err != nil {
		return nil, newStructuralError(filename, "", "failed writing VM output: "+err.Error())
	}

	return &Unit{ClassName: eng.ClassName(), Subroutines: eng.Subroutines()}, nil
}

// Compile is CompileUnit for callers that only need the compiled
// class's name.
func Compile(src []byte, filename string, w io.Writer, opts Options) (string, error) {
	unit, err := CompileUnit(src, filename, w, opts)
	if err != nil {
		return "", err
	}
	return unit.ClassName, nil
}
