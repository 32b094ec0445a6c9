package compiler

import "fmt"

// ErrorKind classifies a fatal compile error into one of the three
// kinds the compiler distinguishes: a malformed token stream, a token
// stream that doesn't fit the grammar, or a grammatically valid program
// that violates a semantic rule (undefined name, wrong call form, and
// so on).
type ErrorKind int

const (
	ErrorLexical ErrorKind = iota
	ErrorStructural
	ErrorSemantic
)

var errorKindNames = [...]string{"lexical", "structural", "semantic"}

func (k ErrorKind) String() string {
	if int(k) < 0 || int(k) >= len(errorKindNames) {
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
	return errorKindNames[k]
}

// CompileError is one fatal error a compile can produce. A lexical or
// structural error always stops the compile immediately: the token
// stream is malformed or no longer fits the grammar, so nothing past
// it can be trusted. A semantic error stops the compile immediately
// only when Options.FailFast is set; otherwise the engine substitutes
// a placeholder and keeps compiling the rest of the file, and every
// semantic error collected along the way is joined (via errors.Join)
// into the single error CompileUnit/Compile ultimately returns. Either
// way, no partial output survives a failed compile.
type CompileError struct {
	Kind     ErrorKind
	Filename string
	Token    string // offending token's text; may be empty (e.g. unexpected EOF)
	Message  string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s: %s error: %s (token: %s)", e.Filename, e.Kind, e.Message, e.Token)
}

func newLexicalError(filename, message string) *CompileError {
	return &CompileError{Kind: ErrorLexical, Filename: filename, Message: message}
}

func newStructuralError(filename, tok, message string) *CompileError {
	return &CompileError{Kind: ErrorStructural, Filename: filename, Token: tok, Message: message}
}

func newSemanticError(filename, tok, message string) *CompileError {
	return &CompileError{Kind: ErrorSemantic, Filename: filename, Token: tok, Message: message}
}
