// Package service orchestrates a single compilation unit end to end:
// read source, run the compiler, and hand back VM text and a class
// summary, without any caller (CLI, HTTP API, browser) needing to know
// how the core packages fit together.
package service

import (
	"bytes"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/nand2tetris-go/jackc/compiler"
	"github.com/nand2tetris-go/jackc/config"
	"github.com/nand2tetris-go/jackc/loader"
)

var debugLog *log.Logger

func init() {
	if os.Getenv("JACKC_DEBUG") == "" {
		debugLog = log.New(io.Discard, "", 0)
		return
	}
	path := filepath.Join(os.TempDir(), "jackc-service-debug.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600) // #nosec G304 -- fixed filename in temp dir
	if err != nil {
		debugLog = log.New(io.Discard, "", 0)
		return
	}
	debugLog = log.New(f, "", log.LstdFlags)
}

// ClassSummary is the browser-facing shape of one compiled class: its
// subroutines, each carrying both its VM listing and the locals/fields
// visible to it, enough to drive a tree view without re-parsing the
// VM text or re-running the compiler.
type ClassSummary struct {
	ClassName   string
	Subroutines []SubroutineSummary
}

// SubroutineSummary names one compiled subroutine, the VM text its
// body produced, and the symbol table visible inside it.
type SubroutineSummary struct {
	Name            string
	InstructionText string
	Symbols         []SymbolSummary
}

// SymbolSummary is one row of a subroutine's visible symbol table: a
// variable's name, declared type, kind (STATIC, FIELD, ARGUMENT, or
// LOCAL), and per-kind index.
type SymbolSummary struct {
	Name  string
	Type  string
	Kind  string
	Index int
}

// Result is everything a caller gets back from a successful compile.
type Result struct {
	ClassName string
	VM        []byte
	Classes   []ClassSummary
}

// Compile compiles src (the contents of one .jack file named filename)
// against cfg and returns the result. On any fatal error it returns a
// *compiler.CompileError (with FailFast off, an errors.Join of them)
// and a nil Result — never a half-written one.
func Compile(src []byte, filename string, cfg *config.Config) (*Result, error) {
	var buf bytes.Buffer

	opts := compiler.Options{OSClasses: cfg.OSClassSet(), FailFast: cfg.Compiler.FailFast}
	unit, err := compiler.CompileUnit(src, filename, &buf, opts)
	if err != nil {
		return nil, err
	}

	vm := buf.Bytes()
	subs := splitSubroutines(string(vm))
	attachSymbols(subs, unit.Subroutines)

	return &Result{
		ClassName: unit.ClassName,
		VM:        vm,
		Classes: []ClassSummary{
			{
				ClassName:   unit.ClassName,
				Subroutines: subs,
			},
		},
	}, nil
}

// splitSubroutines breaks one class's VM text into one entry per
// "function Name nLocals" block, the only delimiter the VM Emitter's
// sequential output carries.
func splitSubroutines(vm string) []SubroutineSummary {
	lines := strings.Split(vm, "\n")
	var subs []SubroutineSummary
	var name string
	var body strings.Builder

	flush := func() {
		if name != "" {
			subs = append(subs, SubroutineSummary{Name: name, InstructionText: body.String()})
		}
	}

	for _, line := range lines {
		if strings.HasPrefix(line, "function ") {
			flush()
			fields := strings.Fields(line)
			if len(fields) >= 2 {
				name = fields[1]
			}
			body.Reset()
		}
		if line == "" {
			continue
		}
		body.WriteString(line)
		body.WriteByte('\n')
	}
	flush()

	return subs
}

// attachSymbols pairs each text-derived SubroutineSummary with the
// symbol data the compiler captured for the subroutine of the same
// name, in order — splitSubroutines and compiler.Unit.Subroutines both
// list subroutines in the order they were declared.
func attachSymbols(subs []SubroutineSummary, infos []compiler.SubroutineInfo) {
	byName := make(map[string][]compiler.SymbolEntry, len(infos))
	for _, info := range infos {
		byName[info.Name] = info.Symbols
	}
	for i := range subs {
		entries, ok := byName[subs[i].Name]
		if !ok {
			continue
		}
		symbols := make([]SymbolSummary, len(entries))
		for j, e := range entries {
			symbols[j] = SymbolSummary{Name: e.Name, Type: e.Type, Kind: e.Kind, Index: e.Index}
		}
		subs[i].Symbols = symbols
	}
}

// CompileFile reads path, compiles it, and — only on success — writes
// the VM output to path's sibling with cfg's configured output
// extension. A failed compile leaves no new .vm file behind.
func CompileFile(path string, cfg *config.Config) (*Result, error) {
	lines, err := loader.ReadLines(path)
	if err != nil {
		return nil, err
	}
	src := []byte(joinLines(lines))

	result, err := Compile(src, path, cfg)
	if err != nil {
		return nil, err
	}

	outPath := loader.OutputPath(path, cfg.Compiler.OutputExt)
	if err := os.WriteFile(outPath, result.VM, 0o600); err != nil {
		return nil, err
	}

	debugLog.Printf("compiled %s -> %s (%d bytes)", path, outPath, len(result.VM))

	return result, nil
}

func joinLines(lines []string) string {
	out := make([]byte, 0, len(lines)*32)
	for i, l := range lines {
		if i > 0 {
			out = append(out, '\n')
		}
		out = append(out, l...)
	}
	return string(out)
}
