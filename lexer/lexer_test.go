package lexer_test

import (
	"testing"

	"github.com/nand2tetris-go/jackc/lexer"
	"github.com/nand2tetris-go/jackc/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allTokens(t *testing.T, src string) []token.Token {
	t.Helper()
	l, err := lexer.New([]byte(src), "test.jack")
	require.NoError(t, err)

	var toks []token.Token
	for l.HasMore() {
		tok, ok := l.Next()
		require.True(t, ok)
		toks = append(toks, tok)
	}
	return toks
}

func TestLexer_BasicTokens(t *testing.T) {
	toks := allTokens(t, "let x = 42;")

	want := []token.Token{
		{Kind: token.KEYWORD, Value: "let"},
		{Kind: token.IDENTIFIER, Value: "x"},
		{Kind: token.SYMBOL, Value: "="},
		{Kind: token.INT_CONST, Value: "42"},
		{Kind: token.SYMBOL, Value: ";"},
	}
	assert.Equal(t, want, toks)
}

func TestLexer_StringConstantPreservesEmbeddedSpaces(t *testing.T) {
	toks := allTokens(t, `do Output.printString("hello world");`)

	require.Len(t, toks, 8)
	assert.Equal(t, token.Token{Kind: token.STR_CONST, Value: "hello world"}, toks[5])
}

func TestLexer_StringConstantAdjacentToSymbols(t *testing.T) {
	toks := allTokens(t, `"a","b"`)
	want := []token.Token{
		{Kind: token.STR_CONST, Value: "a"},
		{Kind: token.SYMBOL, Value: ","},
		{Kind: token.STR_CONST, Value: "b"},
	}
	assert.Equal(t, want, toks)
}

func TestLexer_LineComment(t *testing.T) {
	toks := allTokens(t, "let x = 1; // trailing comment\nlet y = 2;")
	assert.Len(t, toks, 10)
}

func TestLexer_BlockAndDocComments(t *testing.T) {
	toks := allTokens(t, "/* block */ let x /** doc */ = 1;")
	want := []token.Token{
		{Kind: token.KEYWORD, Value: "let"},
		{Kind: token.IDENTIFIER, Value: "x"},
		{Kind: token.SYMBOL, Value: "="},
		{Kind: token.INT_CONST, Value: "1"},
		{Kind: token.SYMBOL, Value: ";"},
	}
	assert.Equal(t, want, toks)
}

func TestLexer_SymbolPaddingWithoutWhitespace(t *testing.T) {
	toks := allTokens(t, "do Memory.alloc(n+1);")
	var vals []string
	for _, tk := range toks {
		vals = append(vals, tk.Value)
	}
	assert.Equal(t, []string{"do", "Memory", ".", "alloc", "(", "n", "+", "1", ")", ";"}, vals)
}

func TestLexer_IntegerRange(t *testing.T) {
	_, err := lexer.New([]byte("let x = 32768;"), "test.jack")
	assert.Error(t, err)

	_, err = lexer.New([]byte("let x = 32767;"), "test.jack")
	assert.NoError(t, err)
}

func TestLexer_UnterminatedStringIsFatal(t *testing.T) {
	_, err := lexer.New([]byte(`let x = "oops;`), "test.jack")
	assert.Error(t, err)
}

func TestLexer_UnterminatedBlockCommentIsFatal(t *testing.T) {
	_, err := lexer.New([]byte("/* never closed"), "test.jack")
	assert.Error(t, err)
}

func TestLexer_BackRewindsOneToken(t *testing.T) {
	l, err := lexer.New([]byte("let x"), "test.jack")
	require.NoError(t, err)

	first, ok := l.Next()
	require.True(t, ok)
	assert.Equal(t, "let", first.Value)

	second, ok := l.Next()
	require.True(t, ok)
	assert.Equal(t, "x", second.Value)

	l.Back()
	replayed, ok := l.Next()
	require.True(t, ok)
	assert.Equal(t, second, replayed)
}

func TestLexer_HasMoreFalseAtEnd(t *testing.T) {
	l, err := lexer.New([]byte("let"), "test.jack")
	require.NoError(t, err)

	_, ok := l.Next()
	require.True(t, ok)
	assert.False(t, l.HasMore())

	_, ok = l.Next()
	assert.False(t, ok)
}
