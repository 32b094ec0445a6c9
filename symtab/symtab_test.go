package symtab_test

import (
	"testing"

	"github.com/nand2tetris-go/jackc/symtab"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_ClassScopeSurvivesSubroutines(t *testing.T) {
	tbl := symtab.New()
	tbl.Define("x", "int", symtab.FIELD)
	tbl.Define("count", "int", symtab.STATIC)

	tbl.StartSubroutine()
	tbl.Define("this", "Point", symtab.ARGUMENT)
	tbl.Define("dx", "int", symtab.ARGUMENT)

	assert.Equal(t, symtab.FIELD, tbl.KindOf("x"))
	assert.Equal(t, "this", symtab.FIELD.Segment())
	assert.Equal(t, 0, tbl.IndexOf("x"))
	assert.Equal(t, symtab.STATIC, tbl.KindOf("count"))
	assert.Equal(t, symtab.ARGUMENT, tbl.KindOf("dx"))
	assert.Equal(t, 1, tbl.IndexOf("dx"))

	tbl.StartSubroutine()
	assert.Equal(t, symtab.NONE, tbl.KindOf("dx"))
	assert.Equal(t, symtab.FIELD, tbl.KindOf("x"), "class scope must outlive a subroutine reset")
	assert.Equal(t, 0, tbl.VarCount(symtab.ARGUMENT))
}

func TestTable_SubroutineScopeShadowsClassScope(t *testing.T) {
	tbl := symtab.New()
	tbl.Define("size", "int", symtab.FIELD)

	tbl.StartSubroutine()
	tbl.Define("size", "int", symtab.LOCAL)

	assert.Equal(t, symtab.LOCAL, tbl.KindOf("size"))
	assert.Equal(t, 0, tbl.IndexOf("size"))
}

func TestTable_VarCountPerKind(t *testing.T) {
	tbl := symtab.New()
	tbl.Define("a", "int", symtab.FIELD)
	tbl.Define("b", "int", symtab.FIELD)
	tbl.Define("c", "int", symtab.STATIC)

	assert.Equal(t, 2, tbl.VarCount(symtab.FIELD))
	assert.Equal(t, 1, tbl.VarCount(symtab.STATIC))
	assert.Equal(t, 0, tbl.VarCount(symtab.LOCAL))
}

func TestTable_UndefinedNameIsNone(t *testing.T) {
	tbl := symtab.New()
	assert.Equal(t, symtab.NONE, tbl.KindOf("nope"))
	assert.False(t, tbl.Defined("nope"))
}

func TestTable_EntriesSortedByKindThenIndex(t *testing.T) {
	tbl := symtab.New()
	tbl.Define("x", "int", symtab.FIELD)
	tbl.Define("y", "int", symtab.FIELD)
	tbl.Define("count", "int", symtab.STATIC)

	tbl.StartSubroutine()
	tbl.Define("this", "Point", symtab.ARGUMENT)
	tbl.Define("dx", "int", symtab.ARGUMENT)
	tbl.Define("sum", "int", symtab.LOCAL)

	entries := tbl.Entries()
	require.Len(t, entries, 6)

	var kinds []symtab.Kind
	for _, e := range entries {
		kinds = append(kinds, e.Kind)
	}
	assert.Equal(t, []symtab.Kind{
		symtab.STATIC,
		symtab.FIELD, symtab.FIELD,
		symtab.ARGUMENT, symtab.ARGUMENT,
		symtab.LOCAL,
	}, kinds)

	assert.Equal(t, "count", entries[0].Name)
	assert.Equal(t, "this", entries[3].Name)
	assert.Equal(t, 0, entries[3].Index)
}

func TestKind_Segment(t *testing.T) {
	assert.Equal(t, "static", symtab.STATIC.Segment())
	assert.Equal(t, "this", symtab.FIELD.Segment())
	assert.Equal(t, "argument", symtab.ARGUMENT.Segment())
	assert.Equal(t, "local", symtab.LOCAL.Segment())
	assert.Equal(t, "", symtab.NONE.Segment())
}
