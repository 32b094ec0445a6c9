// Package browser provides read-only terminal and desktop viewers over
// already-compiled service.Result values. Neither viewer mutates a
// Result or re-invokes the compiler; both are pure presentation.
package browser

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/nand2tetris-go/jackc/service"
)

// TUI is a terminal browser: a tree of classes -> subroutines on the
// left, and a text view on the right showing either the selected
// subroutine's VM listing or its symbol table, toggled with 's'.
type TUI struct {
	results []*service.Result

	App        *tview.Application
	Tree       *tview.TreeView
	Detail     *tview.TextView
	MainLayout *tview.Flex

	showSymbols bool
	current     *service.SubroutineSummary
}

// NewTUI builds a TUI over results without starting it.
func NewTUI(results []*service.Result) *TUI {
	t := &TUI{
		results: results,
		App:     tview.NewApplication(),
	}
	t.initializeViews()
	t.buildLayout()
	t.setupKeyBindings()
	return t
}

func (t *TUI) initializeViews() {
	root := tview.NewTreeNode("classes").SetColor(tcell.ColorYellow)
	t.Tree = tview.NewTreeView().SetRoot(root).SetCurrentNode(root)
	t.Tree.SetBorder(true).SetTitle(" Classes ")

	for _, result := range t.results {
		if result == nil {
			continue
		}
		classNode := tview.NewTreeNode(result.ClassName).SetColor(tcell.ColorGreen)
		for _, class := range result.Classes {
			for _, sub := range class.Subroutines {
				sub := sub
				subNode := tview.NewTreeNode(sub.Name).
					SetReference(&sub).
					SetSelectable(true)
				classNode.AddChild(subNode)
			}
		}
		root.AddChild(classNode)
	}

	t.Detail = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	t.Detail.SetBorder(true).SetTitle(" VM Listing (press 's' to toggle symbols) ")

	t.Tree.SetSelectedFunc(func(node *tview.TreeNode) {
		ref := node.GetReference()
		sub, ok := ref.(*service.SubroutineSummary)
		if !ok {
			node.SetExpanded(!node.IsExpanded())
			return
		}
		t.current = sub
		t.render()
	})
}

func (t *TUI) buildLayout() {
	t.MainLayout = tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(t.Tree, 0, 1, true).
		AddItem(t.Detail, 0, 2, false)
}

func (t *TUI) setupKeyBindings() {
	t.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch {
		case event.Key() == tcell.KeyEsc:
			t.App.Stop()
			return nil
		case event.Rune() == 's':
			t.showSymbols = !t.showSymbols
			t.render()
			return nil
		}
		return event
	})
}

// render redraws Detail, and its title, for the currently selected
// subroutine in the currently toggled mode.
func (t *TUI) render() {
	if t.current == nil {
		return
	}
	if t.showSymbols {
		t.Detail.SetTitle(" Symbol Table (press 's' to toggle VM listing) ")
		t.Detail.SetText(formatSymbols(t.current.Symbols))
		return
	}
	t.Detail.SetTitle(" VM Listing (press 's' to toggle symbols) ")
	t.Detail.SetText(t.current.InstructionText)
}

// Run starts the TUI event loop and blocks until the user quits.
func (t *TUI) Run() error {
	return t.App.SetRoot(t.MainLayout, true).SetFocus(t.Tree).Run()
}

// RunTUI is the package-level entry point: build and run a TUI over
// results in one call.
func RunTUI(results []*service.Result) error {
	return NewTUI(results).Run()
}
