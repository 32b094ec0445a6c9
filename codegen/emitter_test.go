package codegen_test

import (
	"bytes"
	"testing"

	"github.com/nand2tetris-go/jackc/codegen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitter_InstructionTextShapes(t *testing.T) {
	var buf bytes.Buffer
	e := codegen.New(&buf)

	e.WritePush("constant", 7)
	e.WritePop("local", 2)
	e.WriteArithmetic(codegen.Add)
	e.WriteArithmetic(codegen.Not)
	e.WriteLabel("WHILE_EXP0")
	e.WriteGoto("WHILE_END0")
	e.WriteIf("IF_TRUE0")
	e.WriteCall("Memory.alloc", 1)
	e.WriteFunction("Point.new", 0)
	e.WriteReturn()

	require.NoError(t, e.Close())

	want := "push constant 7\n" +
		"pop local 2\n" +
		"add\n" +
		"not\n" +
		"label WHILE_EXP0\n" +
		"goto WHILE_END0\n" +
		"if-goto IF_TRUE0\n" +
		"call Memory.alloc 1\n" +
		"function Point.new 0\n" +
		"return\n"

	assert.Equal(t, want, buf.String())
}

type errWriter struct{}

func (errWriter) Write([]byte) (int, error) {
	return 0, bytes.ErrTooLarge
}

func TestEmitter_CloseSurfacesFirstWriteError(t *testing.T) {
	e := codegen.New(errWriter{})
	e.WritePush("constant", 1)
	assert.Error(t, e.Close())
}
