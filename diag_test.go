package runeway

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnosticError(t *testing.T) {
	diag := NewRuntimeError("TypeError", "wrong thing")
	assert.Equal(t, "error[TypeError]: wrong thing", diag.Error())

	plain := NewRuntimeError("", "boom")
	assert.Equal(t, "error: boom", plain.Error())
}

func TestDefaultBundleFormatsNamedArgs(t *testing.T) {
	bundle := NewDefaultBundle()
	msg := bundle.Format("invalid-char", map[string]any{"char": "@"})
	assert.Equal(t, "invalid character `@`", msg)

	// unknown ids fall back to the id itself
	assert.Equal(t, "<no-such-id>", bundle.Format("no-such-id", nil))
}

func TestStubBundle(t *testing.T) {
	assert.Equal(t, "<some-id>", StubBundle{}.Format("some-id", nil))
}

func emitToString(t *testing.T, diag *Diagnostic, src string) string {
	t.Helper()
	sm := NewSourceMap()
	_, err := sm.AddFile(NewSourceFile("/home/user/main.rnw", []byte(src)))
	require.NoError(t, err)
	var out bytes.Buffer
	diag.Emit(sm, NewDefaultBundle(), &out, false)
	return out.String()
}

func TestEmitHeaderAndArrowLine(t *testing.T) {
	diag := NewSyntaxError("unterminated-string").
		WithLabel(NewSpan(0, 5, 0))
	output := emitToString(t, diag, "\"oops")

	assert.Contains(t, output, "error[SyntaxError]: unterminated string literal")
	assert.Contains(t, output, "--> /home/user/main.rnw")
}

func TestEmitGutterAndUnderline(t *testing.T) {
	src := "let x = 1;\nlet yy = oops;\n"
	// the span of `oops` on line 2
	lo := BytePos(strings.Index(src, "oops"))
	diag := NewRuntimeError("NameError", "Variable 'oops' not defined").
		WithLabel(NewSpan(lo, lo+4, 0))
	output := emitToString(t, diag, src)

	assert.Contains(t, output, "2 | let yy = oops;")
	// primary labels underline with dashes
	assert.Contains(t, output, "----")
	assert.NotContains(t, output, "^^^^")
}

func TestEmitSecondaryMarker(t *testing.T) {
	src := "abc\n"
	diag := NewRuntimeError("TypeError", "mismatch").
		WithSecondaryLabel(NewSpan(0, 3, 0))
	output := emitToString(t, diag, src)
	assert.Contains(t, output, "^^^")
}

// tabs expand to four columns when computing the underline offset
func TestEmitTabExpansion(t *testing.T) {
	src := "\tlet x = nope;\n"
	lo := BytePos(strings.Index(src, "nope"))
	diag := NewRuntimeError("NameError", "nope").
		WithLabel(NewSpan(lo, lo+4, 0))
	output := emitToString(t, diag, src)

	lines := strings.Split(output, "\n")
	var sourceLine, markerLine string
	for i, line := range lines {
		if strings.Contains(line, "let x = nope;") {
			sourceLine = line
			markerLine = lines[i+1]
		}
	}
	require.NotEmpty(t, sourceLine)
	marker := strings.Index(markerLine, "----")
	require.Greater(t, marker, 0)

	// offset of `nope` counting the tab as four columns, plus the
	// gutter prefix "  | "
	gutter := strings.Index(markerLine, "|") + 2
	assert.Equal(t, gutter+4+len("let x = "), marker)
}

func TestEmitHelpAndNote(t *testing.T) {
	diag := NewSyntaxError("invalid-unicode-escape").
		WithLabel(NewSpan(0, 1, 0)).
		WithHelp("unicode-escape-sequence-format").
		WithNoteText("extra context")
	output := emitToString(t, diag, "x")

	assert.Contains(t, output, "= help: unicode escapes are written \\u{XXXXXX}")
	assert.Contains(t, output, "= note: extra context")
}

func TestEmitMultiFileLabels(t *testing.T) {
	sm := NewSourceMap()
	a, err := sm.AddFile(NewSourceFile("a.rnw", []byte("first file\n")))
	require.NoError(t, err)
	b, err := sm.AddFile(NewSourceFile("b.rnw", []byte("second file\n")))
	require.NoError(t, err)

	diag := NewRuntimeError("NameError", "cross reference").
		WithLabel(NewSpan(0, 5, a)).
		WithSecondaryLabel(NewSpan(0, 6, b))

	var out bytes.Buffer
	diag.Emit(sm, StubBundle{}, &out, false)
	output := out.String()

	assert.Contains(t, output, "--> a.rnw")
	assert.Contains(t, output, "--> b.rnw")
}

func TestEmitNumericCode(t *testing.T) {
	diag := NewError("unterminated-string").WithNumCode(102).WithLabel(NewSpan(0, 1, 0))
	output := emitToString(t, diag, "x")
	assert.Contains(t, output, "error[E0102]")
}

func TestAsDiagnosticPassthrough(t *testing.T) {
	original := NewRuntimeError("KeyError", "missing")
	assert.Same(t, original, AsDiagnostic(original))
}
