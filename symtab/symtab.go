// Package symtab implements the two-scope symbol table the compiler
// consults while resolving identifiers to VM memory segments: a class
// scope that lives for the whole class, and a subroutine scope that is
// discarded and rebuilt for every method, function, and constructor.
package symtab

import (
	"fmt"
	"sort"
)

// Kind classifies how a symbol table entry is stored and which VM
// segment it ultimately resolves to.
type Kind int

const (
	NONE Kind = iota
	STATIC
	FIELD
	ARGUMENT
	LOCAL
)

var kindNames = [...]string{"NONE", "STATIC", "FIELD", "ARGUMENT", "LOCAL"}

func (k Kind) String() string {
	if int(k) < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Segment returns the VM memory segment name a kind resolves to. FIELD
// is remapped to "this" here: a field is stored at the matching offset
// in the object the running method's ARGUMENT 0 points at, never in a
// segment literally called "field".
func (k Kind) Segment() string {
	switch k {
	case STATIC:
		return "static"
	case FIELD:
		return "this"
	case ARGUMENT:
		return "argument"
	case LOCAL:
		return "local"
	default:
		return ""
	}
}

// entry is one row of either scope.
type entry struct {
	varType string
	kind    Kind
	index   int
}

// Table holds both scopes for a single class. A fresh Table is created
// for every compiled class; nothing about it is shared across files or
// goroutines.
type Table struct {
	class    map[string]entry
	sub      map[string]entry
	counters [5]int // indexed by Kind; NONE's slot is unused
}

// New returns an empty Table with an empty class scope. Call
// StartSubroutine before compiling each subroutine body.
func New() *Table {
	return &Table{
		class: make(map[string]entry),
		sub:   make(map[string]entry),
	}
}

// StartSubroutine discards the subroutine scope and resets the
// ARGUMENT and LOCAL counters to zero. The class scope and its STATIC
// and FIELD counters are untouched.
func (t *Table) StartSubroutine() {
	t.sub = make(map[string]entry)
	t.counters[ARGUMENT] = 0
	t.counters[LOCAL] = 0
}

// Define adds name to the class scope (STATIC, FIELD) or the
// subroutine scope (ARGUMENT, LOCAL), assigning it the next unused
// index for its kind within that scope.
func (t *Table) Define(name, varType string, kind Kind) {
	idx := t.counters[kind]
	t.counters[kind]++
	e := entry{varType: varType, kind: kind, index: idx}

	switch kind {
	case STATIC, FIELD:
		t.class[name] = e
	case ARGUMENT, LOCAL:
		t.sub[name] = e
	}
}

// VarCount returns the number of variables defined so far for kind.
func (t *Table) VarCount(kind Kind) int {
	return t.counters[kind]
}

// lookup finds name, preferring the subroutine scope so a parameter or
// local shadows a same-named field or static.
func (t *Table) lookup(name string) (entry, bool) {
	if e, ok := t.sub[name]; ok {
		return e, true
	}
	e, ok := t.class[name]
	return e, ok
}

// KindOf returns the kind name resolves to, or NONE if it is undefined
// in either scope.
func (t *Table) KindOf(name string) Kind {
	e, ok := t.lookup(name)
	if !ok {
		return NONE
	}
	return e.kind
}

// TypeOf returns the declared type of name. The caller must have
// already confirmed name is defined via KindOf.
func (t *Table) TypeOf(name string) string {
	e, _ := t.lookup(name)
	return e.varType
}

// IndexOf returns the per-kind index assigned to name. The caller must
// have already confirmed name is defined via KindOf.
func (t *Table) IndexOf(name string) int {
	e, _ := t.lookup(name)
	return e.index
}

// Defined reports whether name is bound in either scope.
func (t *Table) Defined(name string) bool {
	_, ok := t.lookup(name)
	return ok
}

// Entry is one symbol visible at the point Entries is called: its
// declared type, the kind/segment it resolves to, and its per-kind
// index.
type Entry struct {
	Name  string
	Type  string
	Kind  Kind
	Index int
}

// Entries returns every symbol visible right now — both the class
// scope (STATIC, FIELD) and the current subroutine scope (ARGUMENT,
// LOCAL) — sorted by kind then index so the class/static/field/
// argument/local grouping reads in declaration order.
func (t *Table) Entries() []Entry {
	out := make([]Entry, 0, len(t.class)+len(t.sub))
	for name, e := range t.class {
		out = append(out, Entry{Name: name, Type: e.varType, Kind: e.kind, Index: e.index})
	}
	for name, e := range t.sub {
		out = append(out, Entry{Name: name, Type: e.varType, Kind: e.kind, Index: e.index})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		if out[i].Index != out[j].Index {
			return out[i].Index < out[j].Index
		}
		return out[i].Name < out[j].Name
	})
	return out
}
