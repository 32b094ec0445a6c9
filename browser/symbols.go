package browser

import (
	"fmt"
	"strings"

	"github.com/nand2tetris-go/jackc/service"
)

// formatSymbols renders a subroutine's symbol table as a fixed-width
// text table, in the style of a symbol dump: one header row followed
// by one row per variable.
func formatSymbols(symbols []service.SymbolSummary) string {
	if len(symbols) == 0 {
		return "No symbols visible in this subroutine"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-20s %-12s %-10s %s\n", "NAME", "TYPE", "KIND", "INDEX")
	b.WriteString(strings.Repeat("-", 50))
	b.WriteString("\n")
	for _, sym := range symbols {
		fmt.Fprintf(&b, "%-20s %-12s %-10s %d\n", sym.Name, sym.Type, sym.Kind, sym.Index)
	}
	return b.String()
}
