// Package compiler implements the Compilation Engine: a recursive-descent
// parser over the token stream that emits VM instructions inline as it
// recognizes each grammar production. There is no intermediate parse
// tree — every production either consumes tokens, updates the symbol
// table, emits instructions, or some combination of the three, and then
// returns.
package compiler

import (
	"strconv"

	"github.com/nand2tetris-go/jackc/codegen"
	"github.com/nand2tetris-go/jackc/lexer"
	"github.com/nand2tetris-go/jackc/symtab"
	"github.com/nand2tetris-go/jackc/token"
)

// Options configures engine-wide behavior that doesn't belong in the
// language grammar itself.
type Options struct {
	// OSClasses overrides the default standard-library class allowlist
	// used to resolve a dotted call's qualifier when it isn't a
	// declared variable. A nil map uses token.OSClasses.
	OSClasses map[string]bool

	// FailFast, when true, stops the compile at the first semantic
	// error (undefined variable, bad call qualifier). When false, the
	// engine substitutes a placeholder at each semantic error and
	// keeps compiling the rest of the file, so a single run surfaces
	// every semantic problem in the file instead of just the first.
	// Lexical and structural errors always stop the compile regardless
	// of this setting — the token stream itself can no longer be
	// trusted past them.
	FailFast bool
}

// CallSite records the receiver-resolution decision for one subroutine
// call: which qualified name to call, whether a receiver was already
// pushed for it, and the final argument count including that receiver.
type CallSite struct {
	CalleeQName         string
	ReceiverPushEmitted bool
	Argc                uint16
}

// SymbolEntry is the browser-facing shape of one symtab.Entry: the
// variable's name, declared type, kind, and per-kind index.
type SymbolEntry struct {
	Name  string
	Type  string
	Kind  string
	Index int
}

// SubroutineInfo pairs one compiled subroutine's qualified name with
// the symbol table visible inside it (its class's statics/fields plus
// its own arguments/locals), captured at the point its body begins.
type SubroutineInfo struct {
	Name    string
	Symbols []SymbolEntry
}

// Unit is everything CompileUnit recovers from one compiled class
// besides the VM text itself.
type Unit struct {
	ClassName   string
	Subroutines []SubroutineInfo
}

// Engine compiles exactly one class from a token stream to VM text. A
// fresh Engine (with its own Lexer, symbol table, and Emitter) is
// created per compiled class; none of its state is shared across files.
type Engine struct {
	lex       *lexer.Lexer
	filename  string
	osClasses map[string]bool
	className string
	class     *symtab.Table
	em        *codegen.Emitter
	labelSeq  int
	subs      []SubroutineInfo

	failFast bool
	errs     []error
}

// New constructs an Engine over lex, writing to em and reporting
// filename in any CompileError it returns.
func New(lex *lexer.Lexer, filename string, em *codegen.Emitter, opts Options) *Engine {
	osClasses := opts.OSClasses
	if osClasses == nil {
		osClasses = token.OSClasses
	}
	return &Engine{
		lex:       lex,
		filename:  filename,
		osClasses: osClasses,
		class:     symtab.New(),
		em:        em,
		failFast:  opts.FailFast,
	}
}

// Errs returns every semantic error collected while FailFast was
// false. Empty unless a recoverable semantic error occurred.
func (e *Engine) Errs() []error { return e.errs }

// fail handles one recoverable semantic error. With FailFast set it
// returns err immediately, same as before this mode existed; otherwise
// it queues err and returns nil so the caller can substitute a
// placeholder and keep compiling.
func (e *Engine) fail(err error) error {
	if e.failFast {
		return err
	}
	e.errs = append(e.errs, err)
	return nil
}

// ClassName returns the name of the class just compiled (valid only
// after CompileClass returns nil).
func (e *Engine) ClassName() string { return e.className }

// Subroutines returns one SubroutineInfo per subroutine compiled so
// far, in declaration order.
func (e *Engine) Subroutines() []SubroutineInfo { return e.subs }

// CompileClass recognizes the single "class className { ... }"
// production the lexer's token stream must hold in its entirety.
func (e *Engine) CompileClass() error {
	if _, err := e.expectKeyword("class"); err != nil {
		return err
	}
	name, err := e.expectIdentifier()
	if err != nil {
		return err
	}
	e.className = name

	if err := e.expectSymbol("{"); err != nil {
		return err
	}

	for {
		tok, ok := e.peek()
		if !ok {
			return newStructuralError(e.filename, "", "unexpected end of input in class body")
		}
		if tok.Kind == token.SYMBOL && tok.Value == "}" {
			break
		}
		if tok.Kind == token.KEYWORD && token.ClassVarKinds[tok.Value] {
			if err := e.compileClassVarDec(); err != nil {
				return err
			}
			continue
		}
		if tok.Kind == token.KEYWORD && token.SubroutineKinds[tok.Value] {
			if err := e.compileSubroutineDec(); err != nil {
				return err
			}
			continue
		}
		return newStructuralError(e.filename, tok.Value, "expected a class variable or subroutine declaration")
	}

	return e.expectSymbol("}")
}

func (e *Engine) compileClassVarDec() error {
	kindTok, err := e.next()
	if err != nil {
		return err
	}
	kind := symtab.STATIC
	if kindTok.Value == "field" {
		kind = symtab.FIELD
	}

	varType, err := e.compileType()
	if err != nil {
		return err
	}

	for {
		name, err := e.expectIdentifier()
		if err != nil {
			return err
		}
		e.class.Define(name, varType, kind)

		tok, err := e.next()
		if err != nil {
			return err
		}
		if tok.Kind == token.SYMBOL && tok.Value == ";" {
			return nil
		}
		if !(tok.Kind == token.SYMBOL && tok.Value == ",") {
			return newStructuralError(e.filename, tok.Value, "expected ',' or ';'")
		}
	}
}

func (e *Engine) compileType() (string, error) {
	tok, err := e.next()
	if err != nil {
		return "", err
	}
	if tok.Kind == token.KEYWORD && token.VarTypes[tok.Value] {
		return tok.Value, nil
	}
	if tok.Kind == token.IDENTIFIER {
		return tok.Value, nil
	}
	return "", newStructuralError(e.filename, tok.Value, "expected a type")
}

func (e *Engine) compileSubroutineDec() error {
	kindTok, err := e.next()
	if err != nil {
		return err
	}
	kind := kindTok.Value

	if tok, ok := e.peek(); ok && tok.Kind == token.KEYWORD && tok.Value == "void" {
		e.next() //nolint:errcheck // already peeked as present
	} else if _, err := e.compileType(); err != nil {
		return err
	}

	name, err := e.expectIdentifier()
	if err != nil {
		return err
	}

	e.class.StartSubroutine()
	e.labelSeq = 0
	if kind == "method" {
		e.class.Define("this", e.className, symtab.ARGUMENT)
	}

	if err := e.expectSymbol("("); err != nil {
		return err
	}
	if err := e.compileParameterList(); err != nil {
		return err
	}
	if err := e.expectSymbol(")"); err != nil {
		return err
	}
	if err := e.expectSymbol("{"); err != nil {
		return err
	}

	nLocals := 0
	for {
		tok, ok := e.peek()
		if !ok || !(tok.Kind == token.KEYWORD && tok.Value == "var") {
			break
		}
		if err := e.compileVarDec(&nLocals); err != nil {
			return err
		}
	}

	qName := e.className + "." + name
	e.subs = append(e.subs, SubroutineInfo{Name: qName, Symbols: e.symbolEntries()})

	e.em.WriteFunction(qName, nLocals)

	switch kind {
	case "constructor":
		e.em.WritePush("constant", e.class.VarCount(symtab.FIELD))
		e.em.WriteCall("Memory.alloc", 1)
		e.em.WritePop("pointer", 0)
	case "method":
		e.em.WritePush("argument", 0)
		e.em.WritePop("pointer", 0)
	}

	if err := e.compileStatements(); err != nil {
		return err
	}

	return e.expectSymbol("}")
}

func (e *Engine) compileParameterList() error {
	if tok, ok := e.peek(); ok && tok.Kind == token.SYMBOL && tok.Value == ")" {
		return nil
	}
	for {
		varType, err := e.compileType()
		if err != nil {
			return err
		}
		name, err := e.expectIdentifier()
		if err != nil {
			return err
		}
		e.class.Define(name, varType, symtab.ARGUMENT)

		tok, ok := e.peek()
		if !ok {
			return newStructuralError(e.filename, "", "unexpected end of input in parameter list")
		}
		if tok.Kind == token.SYMBOL && tok.Value == "," {
			e.next() //nolint:errcheck // already peeked as present
			continue
		}
		return nil
	}
}

func (e *Engine) compileVarDec(nLocals *int) error {
	if _, err := e.next(); err != nil { // "var"
		return err
	}
	varType, err := e.compileType()
	if err != nil {
		return err
	}
	for {
		name, err := e.expectIdentifier()
		if err != nil {
			return err
		}
		e.class.Define(name, varType, symtab.LOCAL)
		*nLocals++

		tok, err := e.next()
		if err != nil {
			return err
		}
		if tok.Kind == token.SYMBOL && tok.Value == ";" {
			return nil
		}
		if !(tok.Kind == token.SYMBOL && tok.Value == ",") {
			return newStructuralError(e.filename, tok.Value, "expected ',' or ';'")
		}
	}
}

func (e *Engine) compileStatements() error {
	for {
		tok, ok := e.peek()
		if !ok || tok.Kind != token.KEYWORD || !token.Statements[tok.Value] {
			return nil
		}
		var err error
		switch tok.Value {
		case "let":
			err = e.compileLet()
		case "if":
			err = e.compileIf()
		case "while":
			err = e.compileWhile()
		case "do":
			err = e.compileDo()
		case "return":
			err = e.compileReturn()
		}
		if err != nil {
			return err
		}
	}
}

func (e *Engine) compileLet() error {
	if _, err := e.next(); err != nil { // "let"
		return err
	}
	name, err := e.expectIdentifier()
	if err != nil {
		return err
	}

	isArray := false
	if tok, ok := e.peek(); ok && tok.Kind == token.SYMBOL && tok.Value == "[" {
		isArray = true
		e.next() //nolint:errcheck // already peeked as present
		if err := e.pushVariable(name); err != nil {
			return err
		}
		if err := e.compileExpression(); err != nil {
			return err
		}
		e.em.WriteArithmetic(codegen.Add)
		if err := e.expectSymbol("]"); err != nil {
			return err
		}
	}

	if err := e.expectSymbol("="); err != nil {
		return err
	}
	if err := e.compileExpression(); err != nil {
		return err
	}
	if err := e.expectSymbol(";"); err != nil {
		return err
	}

	if isArray {
		e.em.WritePop("temp", 0)
		e.em.WritePop("pointer", 1)
		e.em.WritePush("temp", 0)
		e.em.WritePop("that", 0)
		return nil
	}

	kind := e.class.KindOf(name)
	if kind == symtab.NONE {
		if err := e.fail(newSemanticError(e.filename, name, "assignment to undefined variable")); err != nil {
			return err
		}
		e.em.WritePop("temp", 0) // discard the already-evaluated RHS, keep the stack balanced
		return nil
	}
	e.em.WritePop(kind.Segment(), e.class.IndexOf(name))
	return nil
}

// compileIf allocates its two labels as a pair, per the engine's
// per-subroutine monotonic label counter.
func (e *Engine) compileIf() error {
	if _, err := e.next(); err != nil { // "if"
		return err
	}
	if err := e.expectSymbol("("); err != nil {
		return err
	}
	if err := e.compileExpression(); err != nil {
		return err
	}
	if err := e.expectSymbol(")"); err != nil {
		return err
	}

	elseLabel, endLabel := e.nextLabelPair()
	e.em.WriteArithmetic(codegen.Not)
	e.em.WriteIf(elseLabel)

	if err := e.expectSymbol("{"); err != nil {
		return err
	}
	if err := e.compileStatements(); err != nil {
		return err
	}
	if err := e.expectSymbol("}"); err != nil {
		return err
	}
	e.em.WriteGoto(endLabel)
	e.em.WriteLabel(elseLabel)

	if tok, ok := e.peek(); ok && tok.Kind == token.KEYWORD && tok.Value == "else" {
		e.next() //nolint:errcheck // already peeked as present
		if err := e.expectSymbol("{"); err != nil {
			return err
		}
		if err := e.compileStatements(); err != nil {
			return err
		}
		if err := e.expectSymbol("}"); err != nil {
			return err
		}
	}
	e.em.WriteLabel(endLabel)
	return nil
}

func (e *Engine) compileWhile() error {
	if _, err := e.next(); err != nil { // "while"
		return err
	}
	topLabel, endLabel := e.nextLabelPair()
	e.em.WriteLabel(topLabel)

	if err := e.expectSymbol("("); err != nil {
		return err
	}
	if err := e.compileExpression(); err != nil {
		return err
	}
	if err := e.expectSymbol(")"); err != nil {
		return err
	}
	e.em.WriteArithmetic(codegen.Not)
	e.em.WriteIf(endLabel)

	if err := e.expectSymbol("{"); err != nil {
		return err
	}
	if err := e.compileStatements(); err != nil {
		return err
	}
	if err := e.expectSymbol("}"); err != nil {
		return err
	}
	e.em.WriteGoto(topLabel)
	e.em.WriteLabel(endLabel)
	return nil
}

func (e *Engine) compileDo() error {
	if _, err := e.next(); err != nil { // "do"
		return err
	}
	name, err := e.expectIdentifier()
	if err != nil {
		return err
	}
	if err := e.compileSubroutineCall(name); err != nil {
		return err
	}
	if err := e.expectSymbol(";"); err != nil {
		return err
	}
	e.em.WritePop("temp", 0)
	return nil
}

func (e *Engine) compileReturn() error {
	if _, err := e.next(); err != nil { // "return"
		return err
	}
	if tok, ok := e.peek(); ok && tok.Kind == token.SYMBOL && tok.Value == ";" {
		e.em.WritePush("constant", 0)
	} else if err := e.compileExpression(); err != nil {
		return err
	}
	if err := e.expectSymbol(";"); err != nil {
		return err
	}
	e.em.WriteReturn()
	return nil
}

func (e *Engine) compileExpressionList() (int, error) {
	if tok, ok := e.peek(); ok && tok.Kind == token.SYMBOL && tok.Value == ")" {
		return 0, nil
	}
	count := 0
	if err := e.compileExpression(); err != nil {
		return 0, err
	}
	count++
	for {
		tok, ok := e.peek()
		if !ok || !(tok.Kind == token.SYMBOL && tok.Value == ",") {
			return count, nil
		}
		e.next() //nolint:errcheck // already peeked as present
		if err := e.compileExpression(); err != nil {
			return 0, err
		}
		count++
	}
}

// compileExpression evaluates strictly left to right with no operator
// precedence, per the language's term/op/term/op/term... grammar.
func (e *Engine) compileExpression() error {
	if err := e.compileTerm(); err != nil {
		return err
	}
	for {
		tok, ok := e.peek()
		if !ok || tok.Kind != token.SYMBOL || !token.Ops[tok.Value] {
			return nil
		}
		e.next() //nolint:errcheck // already peeked as present
		if err := e.compileTerm(); err != nil {
			return err
		}
		e.emitOp(tok.Value)
	}
}

func (e *Engine) emitOp(op string) {
	switch op {
	case "+":
		e.em.WriteArithmetic(codegen.Add)
	case "-":
		e.em.WriteArithmetic(codegen.Sub)
	case "*":
		e.em.WriteCall("Math.multiply", 2)
	case "/":
		e.em.WriteCall("Math.divide", 2)
	case "&":
		e.em.WriteArithmetic(codegen.And)
	case "|":
		e.em.WriteArithmetic(codegen.Or)
	case "<":
		e.em.WriteArithmetic(codegen.Lt)
	case ">":
		e.em.WriteArithmetic(codegen.Gt)
	case "=":
		e.em.WriteArithmetic(codegen.Eq)
	}
}

func (e *Engine) compileTerm() error {
	tok, err := e.next()
	if err != nil {
		return err
	}

	switch tok.Kind {
	case token.INT_CONST:
		n, convErr := strconv.Atoi(tok.Value)
		if convErr != nil {
			return newSemanticError(e.filename, tok.Value, "malformed integer constant")
		}
		e.em.WritePush("constant", n)
		return nil

	case token.STR_CONST:
		e.compileStringConstant(tok.Value)
		return nil

	case token.KEYWORD:
		switch tok.Value {
		case "true":
			e.em.WritePush("constant", 0)
			e.em.WriteArithmetic(codegen.Not)
		case "false", "null":
			e.em.WritePush("constant", 0)
		case "this":
			e.em.WritePush("pointer", 0)
		default:
			return newStructuralError(e.filename, tok.Value, "unexpected keyword in expression")
		}
		return nil

	case token.IDENTIFIER:
		return e.compileIdentifierTerm(tok.Value)

	case token.SYMBOL:
		if tok.Value == "(" {
			if err := e.compileExpression(); err != nil {
				return err
			}
			return e.expectSymbol(")")
		}
		if token.Unary[tok.Value] {
			if err := e.compileTerm(); err != nil {
				return err
			}
			if tok.Value == "-" {
				e.em.WriteArithmetic(codegen.Neg)
			} else {
				e.em.WriteArithmetic(codegen.Not)
			}
			return nil
		}
		return newStructuralError(e.filename, tok.Value, "unexpected symbol in expression")

	default:
		return newStructuralError(e.filename, tok.Value, "unexpected token in expression")
	}
}

func (e *Engine) compileIdentifierTerm(name string) error {
	next, ok := e.peek()
	if ok && next.Kind == token.SYMBOL && next.Value == "[" {
		e.next() //nolint:errcheck // already peeked as present
		if err := e.pushVariable(name); err != nil {
			return err
		}
		if err := e.compileExpression(); err != nil {
			return err
		}
		e.em.WriteArithmetic(codegen.Add)
		if err := e.expectSymbol("]"); err != nil {
			return err
		}
		e.em.WritePop("pointer", 1)
		e.em.WritePush("that", 0)
		return nil
	}
	if ok && next.Kind == token.SYMBOL && (next.Value == "(" || next.Value == ".") {
		return e.compileSubroutineCall(name)
	}
	return e.pushVariable(name)
}

func (e *Engine) pushVariable(name string) error {
	kind := e.class.KindOf(name)
	if kind == symtab.NONE {
		if err := e.fail(newSemanticError(e.filename, name, "reference to undefined variable")); err != nil {
			return err
		}
		e.em.WritePush("constant", 0)
		return nil
	}
	e.em.WritePush(kind.Segment(), e.class.IndexOf(name))
	return nil
}

func (e *Engine) compileStringConstant(s string) {
	e.em.WritePush("constant", len(s))
	e.em.WriteCall("String.new", 1)
	for i := 0; i < len(s); i++ {
		e.em.WritePush("constant", int(s[i]))
		e.em.WriteCall("String.appendChar", 2)
	}
}

// compileSubroutineCall resolves and emits one subroutine call. first
// is the identifier already consumed by the caller: either the whole
// call target (a bare call) or the qualifier of a dotted call.
func (e *Engine) compileSubroutineCall(first string) error {
	tok, ok := e.peek()
	if ok && tok.Kind == token.SYMBOL && tok.Value == "." {
		e.next() //nolint:errcheck // already peeked as present
		sub, err := e.expectIdentifier()
		if err != nil {
			return err
		}
		site, err := e.resolveCallSite(first, sub)
		if err != nil {
			return err
		}
		if site.ReceiverPushEmitted {
			kind := e.class.KindOf(first)
			e.em.WritePush(kind.Segment(), e.class.IndexOf(first))
			site.Argc = 1
		}
		if err := e.expectSymbol("("); err != nil {
			return err
		}
		n, err := e.compileExpressionList()
		if err != nil {
			return err
		}
		if err := e.expectSymbol(")"); err != nil {
			return err
		}
		site.Argc += uint16(n)
		e.em.WriteCall(site.CalleeQName, int(site.Argc))
		return nil
	}

	// No qualifier: a self method call on the current object.
	e.em.WritePush("pointer", 0)
	if err := e.expectSymbol("("); err != nil {
		return err
	}
	n, err := e.compileExpressionList()
	if err != nil {
		return err
	}
	if err := e.expectSymbol(")"); err != nil {
		return err
	}
	e.em.WriteCall(e.className+"."+first, n+1)
	return nil
}

// resolveCallSite implements the qualifier-resolution rule: a qualifier
// bound in the symbol table is an object, so its method is called with
// the object pushed as the receiver; otherwise the qualifier must name
// a class (the standard library or a user class, both conventionally
// capitalized) and the call is static, with no receiver pushed.
func (e *Engine) resolveCallSite(qualifier, sub string) (CallSite, error) {
	if e.class.Defined(qualifier) {
		return CallSite{
			CalleeQName:         e.class.TypeOf(qualifier) + "." + sub,
			ReceiverPushEmitted: true,
		}, nil
	}
	if e.osClasses[qualifier] || isUpperFirst(qualifier) {
		return CallSite{CalleeQName: qualifier + "." + sub}, nil
	}
	err := e.fail(newSemanticError(e.filename, qualifier, "call qualifier is neither a declared variable nor a class name"))
	if err != nil {
		return CallSite{}, err
	}
	// Best-effort recovery: treat it as a static call so the caller can
	// still emit a well-formed Call instruction and keep compiling.
	return CallSite{CalleeQName: qualifier + "." + sub}, nil
}

func isUpperFirst(s string) bool {
	return s != "" && s[0] >= 'A' && s[0] <= 'Z'
}

// symbolEntries snapshots the symbol table visible right now into the
// browser-facing SymbolEntry shape.
func (e *Engine) symbolEntries() []SymbolEntry {
	entries := e.class.Entries()
	out := make([]SymbolEntry, len(entries))
	for i, en := range entries {
		out[i] = SymbolEntry{Name: en.Name, Type: en.Type, Kind: en.Kind.String(), Index: en.Index}
	}
	return out
}

func (e *Engine) nextLabelPair() (string, string) {
	a := "L" + strconv.Itoa(e.labelSeq)
	b := "L" + strconv.Itoa(e.labelSeq+1)
	e.labelSeq += 2
	return a, b
}

func (e *Engine) next() (token.Token, error) {
	tok, ok := e.lex.Next()
	if !ok {
		return token.Token{}, newStructuralError(e.filename, "", "unexpected end of input")
	}
	return tok, nil
}

func (e *Engine) peek() (token.Token, bool) {
	tok, ok := e.lex.Next()
	if ok {
		e.lex.Back()
	}
	return tok, ok
}

func (e *Engine) expectSymbol(s string) error {
	tok, err := e.next()
	if err != nil {
		return err
	}
	if tok.Kind != token.SYMBOL || tok.Value != s {
		return newStructuralError(e.filename, tok.Value, "expected '"+s+"'")
	}
	return nil
}

func (e *Engine) expectKeyword(kw string) (string, error) {
	tok, err := e.next()
	if err != nil {
		return "", err
	}
	if tok.Kind != token.KEYWORD || tok.Value != kw {
		return "", newStructuralError(e.filename, tok.Value, "expected '"+kw+"'")
	}
	return tok.Value, nil
}

func (e *Engine) expectIdentifier() (string, error) {
	tok, err := e.next()
	if err != nil {
		return "", err
	}
	if tok.Kind != token.IDENTIFIER {
		return "", newStructuralError(e.filename, tok.Value, "expected an identifier")
	}
	return tok.Value, nil
}
