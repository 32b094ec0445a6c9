// Package lexer tokenizes Jack source text into the token stream the
// compiler's recursive-descent engine consumes.
//
// Tokenization runs in two passes, mirroring how the reference
// implementation approaches comment/string handling: first comments are
// stripped and string-literal interiors are protected from whitespace
// splitting by encoding embedded spaces with a sentinel rune, then the
// protected text is split on whitespace and symbol boundaries and each
// resulting piece is classified into a token.Token.
package lexer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nand2tetris-go/jackc/token"
)

// sentinel stands in for a literal space inside a string constant during
// the whitespace-splitting pass; it is translated back to a space when
// the string constant's contents are classified.
const sentinel = '\x01'

// Lexer holds a fully classified token stream for one source file and a
// cursor over it. Per the single-pass, single-threaded design, a Lexer
// is never shared across files or goroutines.
type Lexer struct {
	filename string
	tokens   []token.Token
	pos      int
}

// New tokenizes src in full and returns a Lexer positioned before the
// first token. It returns an error on the first lexical problem found
// (unterminated string, unterminated comment, out-of-range integer
// constant, or a character sequence that forms no valid token) — the
// lexer never produces a partial token stream for a file it rejects.
func New(src []byte, filename string) (*Lexer, error) {
	protected, err := protectStrings(string(src))
	if err != nil {
		return nil, err
	}

	var tokens []token.Token
	for _, word := range strings.Fields(protected) {
		for _, piece := range splitWord(word) {
			tok, err := classify(piece)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
		}
	}

	return &Lexer{filename: filename, tokens: tokens}, nil
}

// Filename returns the name the Lexer was constructed with.
func (l *Lexer) Filename() string { return l.filename }

// HasMore reports whether at least one more token remains.
func (l *Lexer) HasMore() bool { return l.pos < len(l.tokens) }

// Next returns the next token and advances the cursor past it. The
// second return value is false once the stream is exhausted.
func (l *Lexer) Next() (token.Token, bool) {
	if !l.HasMore() {
		return token.Token{}, false
	}
	tok := l.tokens[l.pos]
	l.pos++
	return tok, true
}

// Back rewinds the cursor by one token, the single token of lookback the
// compiler's term/expression grammar needs to decide between alternative
// productions. Calling Back twice in a row without an intervening Next
// is a programming error and is a no-op past the start of the stream.
func (l *Lexer) Back() {
	if l.pos > 0 {
		l.pos--
	}
}

// protectStrings strips line comments (//), block comments (/* ... */
// and /** ... */), and rewrites embedded spaces inside string constants
// to sentinel so a later whitespace split leaves each constant intact.
func protectStrings(src string) (string, error) {
	var out strings.Builder
	runes := []rune(src)
	n := len(runes)
	i := 0

	for i < n {
		c := runes[i]

		switch {
		case c == '"':
			out.WriteRune('"')
			i++
			for i < n && runes[i] != '"' {
				if runes[i] == '\n' {
					return "", fmt.Errorf("unterminated string constant")
				}
				if runes[i] == ' ' {
					out.WriteRune(sentinel)
				} else {
					out.WriteRune(runes[i])
				}
				i++
			}
			if i >= n {
				return "", fmt.Errorf("unterminated string constant")
			}
			out.WriteRune('"')
			i++

		case c == '/' && i+1 < n && runes[i+1] == '/':
			for i < n && runes[i] != '\n' {
				i++
			}

		case c == '/' && i+1 < n && runes[i+1] == '*':
			i += 2
			closed := false
			for i < n {
				if runes[i] == '*' && i+1 < n && runes[i+1] == '/' {
					i += 2
					closed = true
					break
				}
				i++
			}
			if !closed {
				return "", fmt.Errorf("unterminated comment")
			}

		default:
			out.WriteRune(c)
			i++
		}
	}

	return out.String(), nil
}

// splitWord breaks one whitespace-delimited run into symbol-sized and
// identifier/keyword/number/string-sized pieces. A string constant
// (recognized by its opening quote) is kept whole, symbols included,
// since its contents were already sentinel-protected.
func splitWord(w string) []string {
	var pieces []string
	var cur strings.Builder
	runes := []rune(w)
	n := len(runes)
	i := 0

	for i < n {
		c := runes[i]

		if c == '"' {
			if cur.Len() > 0 {
				pieces = append(pieces, cur.String())
				cur.Reset()
			}
			var lit strings.Builder
			lit.WriteRune('"')
			i++
			for i < n && runes[i] != '"' {
				lit.WriteRune(runes[i])
				i++
			}
			lit.WriteRune('"')
			i++
			pieces = append(pieces, lit.String())
			continue
		}

		if c < 128 && token.IsSymbolRune(byte(c)) {
			if cur.Len() > 0 {
				pieces = append(pieces, cur.String())
				cur.Reset()
			}
			pieces = append(pieces, string(c))
			i++
			continue
		}

		cur.WriteRune(c)
		i++
	}

	if cur.Len() > 0 {
		pieces = append(pieces, cur.String())
	}
	return pieces
}

// classify assigns a Kind to one already-split piece of text, checking
// string const -> symbol -> int const -> keyword -> identifier in turn.
// No piece can match more than one of these, so the order does not
// change the result.
func classify(piece string) (token.Token, error) {
	if strings.HasPrefix(piece, `"`) {
		inner := piece[1 : len(piece)-1]
		inner = strings.ReplaceAll(inner, string(sentinel), " ")
		return token.Token{Kind: token.STR_CONST, Value: inner}, nil
	}

	if len(piece) == 1 && token.IsSymbolRune(piece[0]) {
		return token.Token{Kind: token.SYMBOL, Value: piece}, nil
	}

	if piece[0] >= '0' && piece[0] <= '9' {
		for _, ch := range piece {
			if ch < '0' || ch > '9' {
				return token.Token{}, fmt.Errorf("malformed integer constant %q", piece)
			}
		}
		n, err := strconv.Atoi(piece)
		if err != nil || n < token.IntLower || n > token.IntUpper {
			return token.Token{}, fmt.Errorf("integer constant %q out of range [%d,%d]", piece, token.IntLower, token.IntUpper)
		}
		return token.Token{Kind: token.INT_CONST, Value: piece}, nil
	}

	if token.IsKeyword(piece) {
		return token.Token{Kind: token.KEYWORD, Value: piece}, nil
	}

	if token.IsIdentifier(piece) {
		return token.Token{Kind: token.IDENTIFIER, Value: piece}, nil
	}

	return token.Token{}, fmt.Errorf("invalid token %q", piece)
}
