package runeway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvDefineAndGet(t *testing.T) {
	root := NewGlobalEnv()
	root.Define("a", NewInt(1))

	child := NewEnclosedEnv(root)
	child.Define("b", NewInt(2))

	a, ok := child.Get("a")
	require.True(t, ok)
	assert.Equal(t, int64(1), a.(*IntObject).Value)

	_, ok = root.Get("b")
	assert.False(t, ok)
}

func TestEnvShadowing(t *testing.T) {
	root := NewGlobalEnv()
	root.Define("x", NewInt(1))

	child := NewEnclosedEnv(root)
	child.Define("x", NewInt(2))

	x, _ := child.Get("x")
	assert.Equal(t, int64(2), x.(*IntObject).Value)
	x, _ = root.Get("x")
	assert.Equal(t, int64(1), x.(*IntObject).Value)
}

// Assign walks to the declaring scope; Define stays local
func TestEnvAssignWalksParents(t *testing.T) {
	root := NewGlobalEnv()
	root.Define("counter", NewInt(0))
	child := NewEnclosedEnv(root)

	require.NoError(t, child.Assign("counter", NewInt(5)))

	counter, _ := root.Get("counter")
	assert.Equal(t, int64(5), counter.(*IntObject).Value)
	_, ok := child.Local("counter")
	assert.False(t, ok)
}

func TestEnvAssignUnbound(t *testing.T) {
	env := NewGlobalEnv()
	err := env.Assign("missing", NewInt(1))
	require.Error(t, err)
	assert.Equal(t, "NameError", AsDiagnostic(err).Code)
}

func TestEnvMerge(t *testing.T) {
	src := NewGlobalEnv()
	src.Define("a", NewInt(1))
	src.Define("b", NewInt(2))

	dst := NewGlobalEnv()
	dst.Define("b", NewInt(99))
	dst.Merge(src)

	a, _ := dst.Get("a")
	assert.Equal(t, int64(1), a.(*IntObject).Value)
	b, _ := dst.Get("b")
	assert.Equal(t, int64(2), b.(*IntObject).Value)
}

func TestEnvFindSimilar(t *testing.T) {
	root := NewGlobalEnv()
	root.Define("print", NewNull())
	child := NewEnclosedEnv(root)
	child.Define("point", NewNull())
	child.Define("unrelated", NewNull())

	similar := child.FindSimilar("prinz", 2)
	assert.Contains(t, similar, "print")
	assert.NotContains(t, similar, "unrelated")

	// reachable through the chain, closest first
	similar = child.FindSimilar("prin", 2)
	require.NotEmpty(t, similar)
	assert.Equal(t, "print", similar[0])
}

func TestNameErrorCarriesSuggestion(t *testing.T) {
	env := NewGlobalEnv()
	env.Define("total", NewInt(1))

	err := env.Assign("totl", NewInt(2))
	diag := AsDiagnostic(err)
	require.NotNil(t, diag.Help)
	assert.Contains(t, diag.Help.Message, "total")
}

func TestBuiltinsEnvSeedsTypesAndPrelude(t *testing.T) {
	env := NewBuiltinsEnv(nil)

	for _, name := range []string{"int", "uint", "float", "string", "bool",
		"list", "tuple", "dict", "iterator", "null", "type", "module",
		"function", "method"} {
		obj, ok := env.Get(name)
		require.True(t, ok, "missing type %s", name)
		assert.IsType(t, &TypeObject{}, obj)
	}

	for _, name := range []string{"print", "write", "cast", "id", "is_instance"} {
		obj, ok := env.Get(name)
		require.True(t, ok, "missing prelude function %s", name)
		assert.IsType(t, &FunctionObject{}, obj)
	}
}
