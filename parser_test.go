package runeway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseStmts(t *testing.T, src string) ([]Stmt, []*Diagnostic) {
	t.Helper()
	sm := NewSourceMap()
	id, err := sm.AddFile(NewSourceFile("test.rnw", []byte(src)))
	require.NoError(t, err)
	return ParseSource(id, sm)
}

func parseExprFrom(t *testing.T, src string) Expr {
	t.Helper()
	stmts, diags := parseStmts(t, src+";")
	require.Empty(t, diags)
	require.Len(t, stmts, 1)
	exprStmt, ok := stmts[0].(*ExprStmt)
	require.True(t, ok)
	return exprStmt.Expr
}

func TestParsePrecedence(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		expected string
	}{
		{"mul before add", "2 + 3 * 4", "2 + 3 * 4"},
		{"parens survive", "(2 + 3) * 4", "(2 + 3) * 4"},
		{"pow right assoc", "2 ** 3 ** 2", "2 ** 3 ** 2"},
		{"unary binds tight", "-2 + 3", "-2 + 3"},
		{"and over or", "a or b and c", "a or b and c"},
		{"shift before add", "1 << 2 + 3", "1 << 2 + 3"},
		{"bitand over xor", "a ^ b & c", "a ^ b & c"},
		{"comparison", "a + 1 < b * 2", "a + 1 < b * 2"},
		{"call postfix", "f(1, 2) + 1", "f(1, 2) + 1"},
		{"attr chain", "a.b.c(1)", "a.b.c(1)"},
		{"index", "xs[0] + 1", "xs[0] + 1"},
		{"not keyword", "not a and b", "!a and b"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			expr := parseExprFrom(t, test.src)
			assert.Equal(t, test.expected, ExprString(expr))
		})
	}
}

func TestParseChainedComparisonFails(t *testing.T) {
	_, diags := parseStmts(t, "let x = a < b < c;")
	require.NotEmpty(t, diags)
	assert.Equal(t, "chained-comparison", diags[0].MessageID)
}

func TestParseRangeLiteral(t *testing.T) {
	expr := parseExprFrom(t, "0..5")
	rng, ok := expr.(*RangeLit)
	require.True(t, ok)
	assert.False(t, rng.Inclusive)
	assert.Nil(t, rng.Step)

	expr = parseExprFrom(t, "0..=10::2")
	rng, ok = expr.(*RangeLit)
	require.True(t, ok)
	assert.True(t, rng.Inclusive)
	require.NotNil(t, rng.Step)
	assert.Equal(t, int64(2), rng.Step.(*IntLit).Value)
}

func TestParseCollections(t *testing.T) {
	list, ok := parseExprFrom(t, "[1, 2, 3]").(*ListLit)
	require.True(t, ok)
	assert.Len(t, list.Items, 3)

	tuple, ok := parseExprFrom(t, "(1, 2)").(*TupleLit)
	require.True(t, ok)
	assert.Len(t, tuple.Items, 2)

	paren, ok := parseExprFrom(t, "(1)").(*ParenExpr)
	require.True(t, ok)
	assert.IsType(t, &IntLit{}, paren.Inner)

	dict, ok := parseExprFrom(t, `{"a": 1, "b": 2}`).(*DictLit)
	require.True(t, ok)
	assert.Len(t, dict.Keys, 2)
}

func TestParseFStringExpr(t *testing.T) {
	expr := parseExprFrom(t, `f"x={n + 1}!"`)
	fstr, ok := expr.(*FStringLit)
	require.True(t, ok)
	require.Len(t, fstr.Parts, 3)
	assert.Equal(t, "x=", fstr.Parts[0].Literal)
	assert.True(t, fstr.Parts[1].IsExpr)
	assert.Equal(t, "!", fstr.Parts[2].Literal)
}

func TestParseLetForms(t *testing.T) {
	stmts, diags := parseStmts(t, `
		let a = 1;
		let mut b: int = 2;
		let c;
		const D = 3;
	`)
	require.Empty(t, diags)
	require.Len(t, stmts, 4)

	a := stmts[0].(*LetStmt)
	assert.Equal(t, "a", a.Name)
	assert.False(t, a.Mutable)

	b := stmts[1].(*LetStmt)
	assert.True(t, b.Mutable)
	require.NotNil(t, b.Annotation)
	assert.Equal(t, "int", b.Annotation.Node)

	c := stmts[2].(*LetStmt)
	assert.Nil(t, c.Value)

	d := stmts[3].(*LetStmt)
	assert.True(t, d.Const)
}

func TestParseActWithAnnotations(t *testing.T) {
	stmts, diags := parseStmts(t, "act add(a: int, b: int) -> int { return a + b; }")
	require.Empty(t, diags)

	act := stmts[0].(*ActStmt)
	assert.Equal(t, "add", act.Name)
	require.Len(t, act.Params, 2)
	assert.Equal(t, "a", act.Params[0].Name)
	require.NotNil(t, act.Params[0].Annotation)
	assert.Equal(t, "int", act.Params[0].Annotation.Node)
	require.NotNil(t, act.ReturnAnnotation)
	assert.Equal(t, "int", act.ReturnAnnotation.Node)
	require.Len(t, act.Body, 1)
}

func TestParseElseIfDesugarsToNestedIf(t *testing.T) {
	stmts, diags := parseStmts(t, `
		act f(x) {
			if a { return 1; } else if b { return 2; } else { return 3; }
		}
	`)
	require.Empty(t, diags)

	act := stmts[0].(*ActStmt)
	outer := act.Body[0].(*IfStmt)
	require.Len(t, outer.Else, 1)
	inner, ok := outer.Else[0].(*IfStmt)
	require.True(t, ok)
	require.Len(t, inner.Else, 1)
}

func TestParseImportForms(t *testing.T) {
	stmts, diags := parseStmts(t, `
		import std::random;
		import lib as l;
		import lib get { greet, shout as s };
	`)
	require.Empty(t, diags)
	require.Len(t, stmts, 3)

	all := stmts[0].(*ImportStmt)
	assert.Equal(t, "std::random", all.Path)
	assert.Equal(t, ImportItemKind_All, all.Kind)

	alias := stmts[1].(*ImportStmt)
	assert.Equal(t, ImportItemKind_Alias, alias.Kind)
	assert.Equal(t, "l", alias.Alias)

	selective := stmts[2].(*ImportStmt)
	assert.Equal(t, ImportItemKind_Selective, selective.Kind)
	require.Len(t, selective.Symbols, 2)
	assert.Equal(t, "greet", selective.Symbols[0].Original)
	assert.Equal(t, "", selective.Symbols[0].Alias)
	assert.Equal(t, "shout", selective.Symbols[1].Original)
	assert.Equal(t, "s", selective.Symbols[1].Alias)
}

func TestParseAttributeWrite(t *testing.T) {
	stmts, diags := parseStmts(t, "a.b = 1;")
	require.Empty(t, diags)

	exprStmt := stmts[0].(*ExprStmt)
	write, ok := exprStmt.Expr.(*SetAttrExpr)
	require.True(t, ok)
	assert.Equal(t, "b", write.Field)
}

func TestParseAssignTargets(t *testing.T) {
	stmts, diags := parseStmts(t, "x = 1;")
	require.Empty(t, diags)
	assert.IsType(t, &AssignStmt{}, stmts[0])

	_, diags = parseStmts(t, "xs[0] = 1;")
	require.NotEmpty(t, diags)
	assert.Equal(t, "invalid-assignment-target", diags[0].MessageID)
}

// a statement-level error is recorded and parsing resumes at the next
// boundary, so several errors surface per run
func TestParseErrorRecovery(t *testing.T) {
	stmts, diags := parseStmts(t, `
		let = 1;
		let ok = 2;
		let 123;
		let also_ok = 3;
	`)
	assert.GreaterOrEqual(t, len(diags), 2)

	var names []string
	for _, stmt := range stmts {
		if let, ok := stmt.(*LetStmt); ok {
			names = append(names, let.Name)
		}
	}
	assert.Contains(t, names, "ok")
	assert.Contains(t, names, "also_ok")
}

func TestParseWhileForBreakContinue(t *testing.T) {
	stmts, diags := parseStmts(t, `
		act f() {
			while x < 10 { x = x + 1; if x == 5 { break; } else { continue; } }
			for i in 0..10 { s = s + i; }
		}
	`)
	require.Empty(t, diags)

	act := stmts[0].(*ActStmt)
	require.Len(t, act.Body, 2)
	assert.IsType(t, &WhileStmt{}, act.Body[0])
	forStmt := act.Body[1].(*ForStmt)
	assert.Equal(t, "i", forStmt.Var)
	assert.IsType(t, &RangeLit{}, forStmt.Iterable)
}
