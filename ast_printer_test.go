package runeway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parse -> print -> parse -> print is a fixed point for the
// expression subset
func TestExprStringRoundTrip(t *testing.T) {
	sources := []string{
		"1 + 2 * 3",
		"(1 + 2) * 3",
		"a and b or not c",
		"2 ** 3 ** 4",
		"-x + ~y",
		"f(a, b + 1, g(c))",
		"xs[i + 1].field",
		"a.b.c",
		"[1, 2.5, \"three\"]",
		"(1, 2, 3)",
		"{\"k\": v, \"n\": 1}",
		"0..10::2",
		"1..=5",
		"a < b + 1",
		"x++",
		"--y",
		"a | b ^ c & d",
		"1 << 2 >> 3",
		"f\"v={a + 1}\"",
		"a is b",
	}
	for _, src := range sources {
		t.Run(src, func(t *testing.T) {
			first := ExprString(parseExprFrom(t, src))
			second := ExprString(parseExprFrom(t, first))
			assert.Equal(t, first, second)
		})
	}
}

func TestExprStringLiterals(t *testing.T) {
	tests := []struct {
		src      string
		expected string
	}{
		{"null", "null"},
		{"true", "true"},
		{`"a\nb"`, `"a\nb"`},
		{"1_000", "1_000"},
		{"2.5", "2.5"},
	}
	for _, test := range tests {
		t.Run(test.src, func(t *testing.T) {
			expr := parseExprFrom(t, test.src)
			assert.Equal(t, test.expected, ExprString(expr))
		})
	}
}

func TestExprStringInsertsNeededParens(t *testing.T) {
	// (a + b) * c must not print as a + b * c
	expr := parseExprFrom(t, "(a + b) * c")
	printed := ExprString(expr)
	reparsed := parseExprFrom(t, printed)

	mul, ok := reparsed.(*BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, BinaryOp_Mul, mul.Op)
}
