package runeway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStdlibModulesExposeVersion(t *testing.T) {
	rt, _ := testRuntime(MapFileLoader{})

	for _, name := range []string{"random", "json", "http", "itertools", "buffered", "dynbox"} {
		env, err := rt.LoadLibrary("std::" + name)
		require.NoError(t, err, "std::%s", name)
		version, ok := env.Local("VERSION")
		require.True(t, ok, "std::%s has no VERSION", name)
		assert.IsType(t, &StringObject{}, version)
	}
}

func TestStdlibLoaderIsCalledOnce(t *testing.T) {
	rt, _ := testRuntime(MapFileLoader{})

	first, err := rt.LoadLibrary("std::random")
	require.NoError(t, err)
	second, err := rt.LoadLibrary("std::random")
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestUnknownStdlibModule(t *testing.T) {
	rt, _ := testRuntime(MapFileLoader{})
	_, err := rt.LoadLibrary("std::nope")
	require.Error(t, err)
	assert.Equal(t, "FileSystemError", AsDiagnostic(err).Code)
}

func TestLoadFileLibraryAppendsExtension(t *testing.T) {
	rt, _ := testRuntime(MapFileLoader{
		"/lib.rnw": []byte(`act f() { return 1; }`),
	})

	env, err := rt.LoadLibrary("lib")
	require.NoError(t, err)
	_, ok := env.Local("f")
	assert.True(t, ok)

	// with or without the extension, the cache sees one module
	again, err := rt.LoadLibrary("lib.rnw")
	require.NoError(t, err)
	assert.Same(t, env, again)
}

func TestLoadLibraryParseError(t *testing.T) {
	rt, _ := testRuntime(MapFileLoader{
		"/broken.rnw": []byte(`act ] {`),
	})
	_, err := rt.LoadLibrary("broken")
	require.Error(t, err)
	assert.Equal(t, "SyntaxError", AsDiagnostic(err).Code)
}

// a module that is mid-load counts as loaded, so cycles observe the
// partially initialised environment instead of recursing forever
func TestImportCycle(t *testing.T) {
	rt, out := testRuntime(MapFileLoader{
		"/a.rnw": []byte(`
			import b;
			act from_a() { return "a"; }
		`),
		"/b.rnw": []byte(`
			import a;
			act from_b() { return "b"; }
		`),
	})
	code, err := rt.RunSource("main.rnw", []byte(`
		import a;
		act main() { print(from_a()); print(from_b()); return 0; }
	`), "main")
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "a\nb\n", out.String())
}

func TestStdRandomIsDeterministicAfterSeed(t *testing.T) {
	rt, _ := testRuntime(MapFileLoader{})
	env, err := rt.LoadLibrary("std::random")
	require.NoError(t, err)

	seed, _ := env.Local("seed")
	randint, _ := env.Local("randint")

	_, _, err = seed.Call([]Object{NewInt(7)})
	require.NoError(t, err)
	first, _, err := randint.Call([]Object{NewInt(0), NewInt(1000)})
	require.NoError(t, err)

	_, _, err = seed.Call([]Object{NewInt(7)})
	require.NoError(t, err)
	second, _, err := randint.Call([]Object{NewInt(0), NewInt(1000)})
	require.NoError(t, err)

	assert.Equal(t, first.(*IntObject).Value, second.(*IntObject).Value)
	assert.GreaterOrEqual(t, first.(*IntObject).Value, int64(0))
	assert.Less(t, first.(*IntObject).Value, int64(1000))
}

func TestStdJSONRoundTrip(t *testing.T) {
	rt, _ := testRuntime(MapFileLoader{})
	env, err := rt.LoadLibrary("std::json")
	require.NoError(t, err)

	parse, _ := env.Local("parse")
	dump, _ := env.Local("dump")

	parsed, _, err := parse.Call([]Object{NewString(`{"a": [1, 2], "b": "x"}`)})
	require.NoError(t, err)
	dict, ok := parsed.(*DictObject)
	require.True(t, ok)
	a, ok := dict.Lookup("a")
	require.True(t, ok)
	assert.Len(t, a.(*ListObject).Items, 2)

	encoded, _, err := dump.Call([]Object{parsed})
	require.NoError(t, err)
	reparsed, _, err := parse.Call([]Object{encoded})
	require.NoError(t, err)
	assert.Equal(t, 2, reparsed.(*DictObject).Len())
}

func TestStdItertools(t *testing.T) {
	rt, _ := testRuntime(MapFileLoader{})
	env, err := rt.LoadLibrary("std::itertools")
	require.NoError(t, err)

	rangeList, _ := env.Local("range_list")
	xs, _, err := rangeList.Call([]Object{NewInt(0), NewInt(3)})
	require.NoError(t, err)
	assert.Len(t, xs.(*ListObject).Items, 3)

	chain, _ := env.Local("chain")
	combined, _, err := chain.Call([]Object{xs, xs})
	require.NoError(t, err)
	assert.Len(t, combined.(*ListObject).Items, 6)

	take, _ := env.Local("take")
	taken, _, err := take.Call([]Object{NewRangeIterator(0, 100, 1, false), NewInt(5)})
	require.NoError(t, err)
	assert.Len(t, taken.(*ListObject).Items, 5)
}

func TestStdDynbox(t *testing.T) {
	rt, _ := testRuntime(MapFileLoader{})
	env, err := rt.LoadLibrary("std::dynbox")
	require.NoError(t, err)

	boxFn, _ := env.Local("box")
	box, _, err := boxFn.Call([]Object{NewInt(1)})
	require.NoError(t, err)

	set, ok := box.GetAttr("set")
	require.True(t, ok)
	_, _, err = set.Call([]Object{NewString("replaced")})
	require.NoError(t, err)

	get, ok := box.GetAttr("get")
	require.True(t, ok)
	value, _, err := get.Call(nil)
	require.NoError(t, err)
	assert.Equal(t, "replaced", value.(*StringObject).Value)
}

func TestStdModulesViaInterpreter(t *testing.T) {
	rt, out := testRuntime(MapFileLoader{})
	code, err := rt.RunSource("main.rnw", []byte(`
		import std::random as rnd;
		import std::itertools get { range_list };
		act main() {
			print(rnd.VERSION);
			return range_list(0, 4).len() - 4;
		}
	`), "main")
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "1.0.0\n", out.String())
}
