package runeway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lexSource(t *testing.T, src string) ([]SpannedToken, *Diagnostic) {
	t.Helper()
	sm := NewSourceMap()
	id, err := sm.AddFile(NewSourceFile("test.rnw", []byte(src)))
	require.NoError(t, err)
	return NewLexer(id, sm).Lex()
}

func lexTypes(t *testing.T, src string) []TokenType {
	t.Helper()
	toks, diag := lexSource(t, src)
	require.Nil(t, diag)
	types := make([]TokenType, 0, len(toks))
	for _, tok := range toks {
		types = append(types, tok.Node.Type)
	}
	return types
}

func TestLexOperators(t *testing.T) {
	types := lexTypes(t, "== <<= ..= :: ** **= -> => ++ -- != <= >= << >> &&")
	assert.Equal(t, []TokenType{
		TokenType_EqEq, TokenType_ShlEq, TokenType_RangeInclusive, TokenType_DColon,
		TokenType_StarStar, TokenType_StarStarEq, TokenType_Arrow, TokenType_DArrow,
		TokenType_PlusPlus, TokenType_MinusMinus, TokenType_Ne, TokenType_Le,
		TokenType_Ge, TokenType_Shl, TokenType_Shr, TokenType_AndAnd,
		TokenType_EOF,
	}, types)
}

func TestLexKeywordsAndIdents(t *testing.T) {
	toks, diag := lexSource(t, "let mutable mut act action in is class")
	require.Nil(t, diag)

	assert.Equal(t, TokenType_Let, toks[0].Node.Type)
	assert.Equal(t, TokenType_Ident, toks[1].Node.Type)
	assert.Equal(t, "mutable", toks[1].Node.Text)
	assert.Equal(t, TokenType_Mut, toks[2].Node.Type)
	assert.Equal(t, TokenType_Act, toks[3].Node.Type)
	assert.Equal(t, "action", toks[4].Node.Text)
	assert.Equal(t, TokenType_In, toks[5].Node.Type)
	assert.Equal(t, TokenType_Is, toks[6].Node.Type)
	assert.Equal(t, TokenType_Class, toks[7].Node.Type)
}

func TestLexSpans(t *testing.T) {
	toks, diag := lexSource(t, "(){}")
	require.Nil(t, diag)

	expected := []Span{
		NewSpan(0, 1, 0),
		NewSpan(1, 2, 0),
		NewSpan(2, 3, 0),
		NewSpan(3, 4, 0),
	}
	for i, span := range expected {
		assert.Equal(t, span, toks[i].Span)
	}
}

func TestLexNumbers(t *testing.T) {
	tests := []struct {
		name string
		src  string
		tok  Token
	}{
		{"decimal int", "42", Token{Type: TokenType_IntLiteral, Int: 42}},
		{"underscores", "1_000_000", Token{Type: TokenType_IntLiteral, Int: 1000000}},
		{"hex", "0xFF", Token{Type: TokenType_IntLiteral, Int: 255}},
		{"octal", "0o17", Token{Type: TokenType_IntLiteral, Int: 15}},
		{"binary", "0b1010", Token{Type: TokenType_IntLiteral, Int: 10}},
		{"int suffix", "7i", Token{Type: TokenType_IntLiteral, Int: 7}},
		{"uint suffix", "7u", Token{Type: TokenType_UIntLiteral, UInt: 7}},
		{"float suffix", "7f", Token{Type: TokenType_FloatLiteral, Float: 7}},
		{"fraction", "3.25", Token{Type: TokenType_FloatLiteral, Float: 3.25}},
		{"exponent", "2e3", Token{Type: TokenType_FloatLiteral, Float: 2000}},
		{"signed exponent", "1.5e-2", Token{Type: TokenType_FloatLiteral, Float: 0.015}},
		{"hex uint", "0xFFu", Token{Type: TokenType_UIntLiteral, UInt: 255}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			toks, diag := lexSource(t, test.src)
			require.Nil(t, diag)
			got := toks[0].Node
			got.Text = ""
			assert.Equal(t, test.tok, got)
		})
	}
}

func TestLexNumberKeepsRawText(t *testing.T) {
	toks, diag := lexSource(t, "1_000")
	require.Nil(t, diag)
	assert.Equal(t, "1_000", toks[0].Node.Text)
}

func TestLexRangeIsNotAFloat(t *testing.T) {
	types := lexTypes(t, "0..5")
	assert.Equal(t, []TokenType{
		TokenType_IntLiteral, TokenType_Range, TokenType_IntLiteral, TokenType_EOF,
	}, types)
}

func TestLexStrings(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		expected string
		raw      bool
	}{
		{"plain", `"hello"`, "hello", true},
		{"empty", `""`, "", true},
		{"escapes", `"a\n\t\\\"b"`, "a\n\t\\\"b", false},
		{"null byte", `"a\0b"`, "a\x00b", false},
		{"hex escape", `"\x41"`, "A", false},
		{"unicode escape", `"\u{48}"`, "H", false},
		{"long unicode", `"\u{1F600}"`, "\U0001F600", false},
		{"raw keeps backslash", `r"a\nb"`, `a\nb`, true},
		{"line continuation", "\"a\\\nb\"", "ab", false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			toks, diag := lexSource(t, test.src)
			require.Nil(t, diag)
			tok := toks[0].Node
			if test.raw {
				assert.Equal(t, TokenType_RawStringLiteral, tok.Type)
			} else {
				assert.Equal(t, TokenType_StringLiteral, tok.Type)
			}
			assert.Equal(t, test.expected, tok.Text)
		})
	}
}

func TestLexStringErrors(t *testing.T) {
	tests := []struct {
		name      string
		src       string
		messageID string
	}{
		{"unterminated", `"unterminated`, "unterminated-string"},
		{"bad escape", `"\q"`, "invalid-escape-sequence"},
		{"hex out of range", `"\xFF"`, "out-of-range-hex-escape"},
		{"surrogate", `"\u{D800}"`, "invalid-unicode-escape"},
		{"too large scalar", `"\u{110000}"`, "invalid-unicode-escape"},
		{"duplicated prefix", `ff"x"`, "duplicated-string-literal-prefix"},
		{"double raw prefix", `rr"x"`, "duplicated-string-literal-prefix"},
		{"unterminated comment", "/* nope", "unterminated-comment"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, diag := lexSource(t, test.src)
			require.NotNil(t, diag)
			assert.Equal(t, DiagType_Error, diag.Type)
			assert.Equal(t, "SyntaxError", diag.Code)
			assert.Equal(t, test.messageID, diag.MessageID)
		})
	}
}

// the unterminated-string span covers the opening quote through EOF
func TestLexUnterminatedStringSpan(t *testing.T) {
	src := `"unterminated`
	_, diag := lexSource(t, src)
	require.NotNil(t, diag)
	require.Len(t, diag.Labels, 1)
	assert.Equal(t, NewSpan(0, BytePos(len(src)), 0), diag.Labels[0].Span)
}

func TestLexFormatString(t *testing.T) {
	types := lexTypes(t, `f"x={n}!"`)
	assert.Equal(t, []TokenType{
		TokenType_FormatStringStart,
		TokenType_StringLiteral, // "x="
		TokenType_FormatCodeBlockStart,
		TokenType_Ident,
		TokenType_FormatCodeBlockEnd,
		TokenType_StringLiteral, // "!"
		TokenType_FormatStringEnd,
		TokenType_EOF,
	}, types)
}

func TestLexFormatStringBraceEscape(t *testing.T) {
	toks, diag := lexSource(t, `f"{{literal}}"`)
	require.Nil(t, diag)
	assert.Equal(t, TokenType_FormatStringStart, toks[0].Node.Type)
	assert.Equal(t, TokenType_StringLiteral, toks[1].Node.Type)
	assert.Equal(t, "{literal}", toks[1].Node.Text)
	assert.Equal(t, TokenType_FormatStringEnd, toks[2].Node.Type)
}

func TestLexFormatStringNestedBraces(t *testing.T) {
	types := lexTypes(t, `f"{d["k"]}"`)
	assert.Equal(t, []TokenType{
		TokenType_FormatStringStart,
		TokenType_FormatCodeBlockStart,
		TokenType_Ident,
		TokenType_OpenBracket,
		TokenType_RawStringLiteral,
		TokenType_CloseBracket,
		TokenType_FormatCodeBlockEnd,
		TokenType_FormatStringEnd,
		TokenType_EOF,
	}, types)
}

func TestLexFormatStringEscapes(t *testing.T) {
	toks, diag := lexSource(t, `f"x=\u{48}{n}"`)
	require.Nil(t, diag)
	assert.Equal(t, "x=H", toks[1].Node.Text)
}

func TestLexRawFormatCombinations(t *testing.T) {
	for _, src := range []string{`rf"a\nb"`, `fr"a\nb"`} {
		toks, diag := lexSource(t, src)
		require.Nil(t, diag)
		assert.Equal(t, TokenType_FormatStringStart, toks[0].Node.Type)
		assert.Equal(t, `a\nb`, toks[1].Node.Text)
	}
}

func TestLexComments(t *testing.T) {
	types := lexTypes(t, "1 // line comment\n/* block\ncomment */ 2")
	assert.Equal(t, []TokenType{
		TokenType_IntLiteral, TokenType_IntLiteral, TokenType_EOF,
	}, types)
}

func TestLexCharLiteral(t *testing.T) {
	toks, diag := lexSource(t, `'a' '\n'`)
	require.Nil(t, diag)
	assert.Equal(t, 'a', toks[0].Node.Char)
	assert.Equal(t, '\n', toks[1].Node.Char)
}

func TestLexInvalidChar(t *testing.T) {
	_, diag := lexSource(t, "let @ = 1;")
	require.NotNil(t, diag)
	assert.Equal(t, "invalid-char", diag.MessageID)
}

// lexing the display of every token again yields the same stream
func TestLexDisplayRoundTrip(t *testing.T) {
	src := `act main() { let x = 1_0 + 2.5; return f(x, "s"); }`
	first, diag := lexSource(t, src)
	require.Nil(t, diag)

	var rebuilt []byte
	for _, tok := range first {
		if tok.Node.Type == TokenType_EOF {
			break
		}
		rebuilt = append(rebuilt, tok.Node.Display()...)
		rebuilt = append(rebuilt, ' ')
	}

	sm := NewSourceMap()
	id, err := sm.AddFile(NewSourceFile("rebuilt.rnw", rebuilt))
	require.NoError(t, err)
	second, diag := NewLexer(id, sm).Lex()
	require.Nil(t, diag)

	require.Equal(t, len(first), len(second))
	for i := range first {
		if first[i].Node.Type == TokenType_RawStringLiteral || first[i].Node.Type == TokenType_StringLiteral {
			// display quotes strings, the payload must survive
			assert.Equal(t, first[i].Node.Text, second[i].Node.Text)
			continue
		}
		assert.Equal(t, first[i].Node.Type, second[i].Node.Type)
	}
}
