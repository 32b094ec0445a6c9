package browser

import (
	"testing"

	"github.com/nand2tetris-go/jackc/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTUICreation(t *testing.T) {
	tu := NewTUI(sampleResults())
	require.NotNil(t, tu)
	assert.NotNil(t, tu.App)
	assert.NotNil(t, tu.Tree)
	assert.NotNil(t, tu.Detail)
	assert.NotNil(t, tu.MainLayout)
}

func TestTUI_TreeHasClassAndSubroutineNodes(t *testing.T) {
	tu := NewTUI(sampleResults())

	root := tu.Tree.GetRoot()
	require.NotNil(t, root)
	require.Len(t, root.GetChildren(), 1)

	classNode := root.GetChildren()[0]
	assert.Equal(t, "Main", classNode.GetText())
	require.Len(t, classNode.GetChildren(), 1)

	subNode := classNode.GetChildren()[0]
	assert.Equal(t, "Main.main", subNode.GetText())

	sub, ok := subNode.GetReference().(*service.SubroutineSummary)
	require.True(t, ok)
	assert.Equal(t, "function Main.main 0\npush constant 0\nreturn\n", sub.InstructionText)
}

func TestTUI_TogglePressSwitchesDetailBetweenListingAndSymbols(t *testing.T) {
	tu := NewTUI(sampleResults())

	subNode := tu.Tree.GetRoot().GetChildren()[0].GetChildren()[0]
	sub, ok := subNode.GetReference().(*service.SubroutineSummary)
	require.True(t, ok)

	tu.current = sub
	tu.render()
	assert.Contains(t, tu.Detail.GetText(true), "function Main.main 0")

	tu.showSymbols = true
	tu.render()
	assert.Contains(t, tu.Detail.GetText(true), "LOCAL")
	assert.Contains(t, tu.Detail.GetText(true), "x")
}
