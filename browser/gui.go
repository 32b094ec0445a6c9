package browser

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/nand2tetris-go/jackc/service"
)

// GUI is the desktop browser: a tree of classes on the left and two
// text grids on the right, one for the selected subroutine's VM
// listing or symbol table (toggled by a button) and one for a short
// summary of all results: the number of classes and of subroutines.
type GUI struct {
	results []*service.Result

	App    fyne.App
	Window fyne.Window

	Tree    *widget.Tree
	Detail  *widget.TextGrid
	Toggle  *widget.Button
	Summary *widget.TextGrid

	data        treeData
	showSymbols bool
	currentID   widget.TreeNodeID
}

// RunGUI builds and runs a desktop browser over results. It blocks
// until the window is closed.
func RunGUI(results []*service.Result) error {
	g := newGUI(results)
	g.Window.ShowAndRun()
	return nil
}

func newGUI(results []*service.Result) *GUI {
	myApp := app.New()
	myWindow := myApp.NewWindow("jackc — compiled class browser")

	g := &GUI{
		results: results,
		App:     myApp,
		Window:  myWindow,
	}

	g.initializeViews()
	g.buildLayout()
	myWindow.Resize(fyne.NewSize(1100, 700))

	return g
}

// treeData maps a tree node ID to its children, and subroutine leaf IDs
// to the service.SubroutineSummary they should show on selection.
type treeData struct {
	children map[string][]string
	subs     map[string]service.SubroutineSummary
}

func (g *GUI) buildTreeData() treeData {
	data := treeData{children: map[string][]string{"": {}}, subs: map[string]service.SubroutineSummary{}}
	for _, result := range g.results {
		if result == nil {
			continue
		}
		data.children[""] = append(data.children[""], result.ClassName)
		var subIDs []string
		for _, class := range result.Classes {
			for _, sub := range class.Subroutines {
				subIDs = append(subIDs, sub.Name)
				data.subs[sub.Name] = sub
			}
		}
		data.children[result.ClassName] = subIDs
	}
	return data
}

func (g *GUI) initializeViews() {
	g.data = g.buildTreeData()

	g.Tree = widget.NewTree(
		func(id widget.TreeNodeID) []widget.TreeNodeID {
			return g.data.children[id]
		},
		func(id widget.TreeNodeID) bool {
			children, ok := g.data.children[id]
			return ok && len(children) > 0
		},
		func(branch bool) fyne.CanvasObject {
			return widget.NewLabel("placeholder")
		},
		func(id widget.TreeNodeID, branch bool, obj fyne.CanvasObject) {
			obj.(*widget.Label).SetText(id)
		},
	)
	g.Tree.OnSelected = func(id widget.TreeNodeID) {
		if _, ok := g.data.subs[id]; ok {
			g.currentID = id
			g.renderDetail()
		}
	}

	g.Detail = widget.NewTextGrid()
	g.Detail.SetText("Select a subroutine to view its VM listing.")

	g.Toggle = widget.NewButton("Show symbols", func() {
		g.showSymbols = !g.showSymbols
		if g.showSymbols {
			g.Toggle.SetText("Show VM listing")
		} else {
			g.Toggle.SetText("Show symbols")
		}
		g.renderDetail()
	})

	g.Summary = widget.NewTextGrid()
	g.Summary.SetText(summarize(g.results))
}

// renderDetail redraws Detail for the currently selected subroutine in
// the currently toggled mode. A no-op until a subroutine is selected.
func (g *GUI) renderDetail() {
	sub, ok := g.data.subs[g.currentID]
	if !ok {
		return
	}
	if g.showSymbols {
		g.Detail.SetText(formatSymbols(sub.Symbols))
		return
	}
	g.Detail.SetText(sub.InstructionText)
}

func (g *GUI) buildLayout() {
	treePanel := container.NewBorder(widget.NewLabel("Classes"), nil, nil, nil, container.NewScroll(g.Tree))
	detailPanel := container.NewBorder(g.Toggle, nil, nil, nil, container.NewScroll(g.Detail))
	summaryPanel := container.NewBorder(widget.NewLabel("Summary"), nil, nil, nil, container.NewScroll(g.Summary))

	right := container.NewVSplit(detailPanel, summaryPanel)
	right.SetOffset(0.7)

	split := container.NewHSplit(treePanel, right)
	split.SetOffset(0.3)

	g.Window.SetContent(split)
}

func summarize(results []*service.Result) string {
	total := 0
	for _, r := range results {
		if r == nil {
			continue
		}
		for _, c := range r.Classes {
			total += len(c.Subroutines)
		}
	}
	return fmt.Sprintf("classes compiled: %d\nsubroutines: %d", len(results), total)
}
