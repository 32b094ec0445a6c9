package browser

import (
	"testing"

	"github.com/nand2tetris-go/jackc/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResults() []*service.Result {
	return []*service.Result{
		{
			ClassName: "Main",
			VM:        []byte("function Main.main 0\npush constant 0\nreturn\n"),
			Classes: []service.ClassSummary{
				{
					ClassName: "Main",
					Subroutines: []service.SubroutineSummary{
						{
							Name:            "Main.main",
							InstructionText: "function Main.main 0\npush constant 0\nreturn\n",
							Symbols: []service.SymbolSummary{
								{Name: "x", Type: "int", Kind: "LOCAL", Index: 0},
							},
						},
					},
				},
			},
		},
	}
}

func TestGUICreation(t *testing.T) {
	g := newGUI(sampleResults())
	require.NotNil(t, g)
	assert.NotNil(t, g.Tree)
	assert.NotNil(t, g.Detail)
	assert.NotNil(t, g.Toggle)
	assert.NotNil(t, g.Summary)
}

func TestBuildTreeData(t *testing.T) {
	g := newGUI(sampleResults())
	data := g.buildTreeData()

	assert.Contains(t, data.children[""], "Main")
	assert.Contains(t, data.children["Main"], "Main.main")
	assert.Contains(t, data.subs["Main.main"].InstructionText, "function Main.main 0")
}

func TestGUI_ToggleSwitchesBetweenListingAndSymbols(t *testing.T) {
	g := newGUI(sampleResults())

	g.Tree.OnSelected("Main.main")
	assert.Contains(t, g.Detail.Text(), "function Main.main 0")

	g.Toggle.OnTapped()
	assert.Contains(t, g.Detail.Text(), "LOCAL")
	assert.Contains(t, g.Detail.Text(), "x")

	g.Toggle.OnTapped()
	assert.Contains(t, g.Detail.Text(), "function Main.main 0")
}

func TestSummarize(t *testing.T) {
	text := summarize(sampleResults())
	assert.Contains(t, text, "classes compiled: 1")
	assert.Contains(t, text, "subroutines: 1")
}
