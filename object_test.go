package runeway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeIDsAreUniqueAndStable(t *testing.T) {
	ensureBuiltins()

	ids := []TypeID{
		IntTypeID(), UIntTypeID(), FloatTypeID(), BoolTypeID(), StringTypeID(),
		ListTypeID(), TupleTypeID(), DictTypeID(), IteratorTypeID(), NullTypeID(),
		TypeTypeID(), ModuleTypeID(), FunctionTypeID(), MethodTypeID(),
	}
	seen := map[TypeID]struct{}{}
	for _, id := range ids {
		assert.NotZero(t, id)
		_, dup := seen[id]
		assert.False(t, dup, "duplicate type id %d", id)
		seen[id] = struct{}{}
	}

	// stable across accesses
	assert.Equal(t, IntTypeID(), IntTypeID())
	assert.Equal(t, "int", TypeNameFromID(IntTypeID()))
	assert.Equal(t, "any", TypeNameFromID(0))
}

// arity mismatches raise ArgumentsError, type mismatches TypeError,
// and the wildcard 0 admits anything
func TestNativeFunctionChecks(t *testing.T) {
	ensureBuiltins()

	fn := NewNativeFunction("probe", func(args []Object) (Object, error) {
		return NewNull(), nil
	}, []TypeID{IntTypeID(), 0})

	_, err := fn.Call([]Object{NewInt(1)})
	require.Error(t, err)
	assert.Equal(t, "ArgumentsError", AsDiagnostic(err).Code)

	_, err = fn.Call([]Object{NewString("x"), NewInt(2)})
	require.Error(t, err)
	assert.Equal(t, "TypeError", AsDiagnostic(err).Code)

	_, err = fn.Call([]Object{NewInt(1), NewString("anything")})
	assert.NoError(t, err)

	_, err = fn.Call([]Object{NewInt(1), NewList(nil)})
	assert.NoError(t, err)
}

func TestVariadicFunctionChecks(t *testing.T) {
	ensureBuiltins()

	fn := NewVariadicFunction("probe", func(args []Object) (Object, error) {
		return NewInt(int64(len(args))), nil
	}, []TypeID{IntTypeID()})

	_, err := fn.Call(nil)
	require.Error(t, err)
	assert.Equal(t, "ArgumentsError", AsDiagnostic(err).Code)

	result, err := fn.Call([]Object{NewInt(1), NewInt(2), NewInt(3)})
	require.NoError(t, err)
	assert.Equal(t, int64(3), result.(*IntObject).Value)
}

func TestNativeFunctionReturnTypeCheck(t *testing.T) {
	ensureBuiltins()

	fn := NewNativeFunction("bad", func(args []Object) (Object, error) {
		return NewString("oops"), nil
	}, nil).WithReturnType(IntTypeID())

	_, err := fn.Call(nil)
	require.Error(t, err)
	assert.Equal(t, "TypeError", AsDiagnostic(err).Code)
}

func TestNativeMethodBindsReceiver(t *testing.T) {
	ensureBuiltins()

	list := NewList([]Object{NewInt(1)})
	appendMethod, ok := list.GetAttr("append")
	require.True(t, ok)

	_, callable, err := appendMethod.Call([]Object{NewInt(2)})
	require.NoError(t, err)
	require.True(t, callable)
	assert.Len(t, list.Items, 2)
}

func TestCastIdentityAndMiss(t *testing.T) {
	ensureBuiltins()

	five := NewInt(5)
	same, err := CastTo(five, IntTypeID())
	require.NoError(t, err)
	assert.Same(t, five, same.(*IntObject))

	_, err = CastTo(NewBool(true), IteratorTypeID())
	require.Error(t, err)
	assert.Equal(t, "CastError", AsDiagnostic(err).Code)
}

// int<->string round-trips for ASCII digits; list<->tuple preserves
// elements
func TestCastRoundTrips(t *testing.T) {
	ensureBuiltins()

	asString, err := CastTo(NewInt(42), StringTypeID())
	require.NoError(t, err)
	backToInt, err := CastTo(asString, IntTypeID())
	require.NoError(t, err)
	assert.Equal(t, int64(42), backToInt.(*IntObject).Value)

	list := NewList([]Object{NewInt(1), NewString("two")})
	asTuple, err := CastTo(list, TupleTypeID())
	require.NoError(t, err)
	backToList, err := CastTo(asTuple, ListTypeID())
	require.NoError(t, err)
	require.Len(t, backToList.(*ListObject).Items, 2)
	assert.Same(t, list.Items[0], backToList.(*ListObject).Items[0].(*IntObject))
}

func TestNumericOperatorSemantics(t *testing.T) {
	ensureBuiltins()

	// int / int promotes to float
	result, ok := NewInt(7).BinaryOp(BinaryOp_Div, NewInt(2))
	require.True(t, ok)
	assert.Equal(t, 3.5, result.(*FloatObject).Value)

	// ** stays integral when the result is whole
	result, ok = NewInt(2).BinaryOp(BinaryOp_Pow, NewInt(10))
	require.True(t, ok)
	assert.Equal(t, int64(1024), result.(*IntObject).Value)

	result, ok = NewInt(2).BinaryOp(BinaryOp_Pow, NewInt(-1))
	require.True(t, ok)
	assert.Equal(t, 0.5, result.(*FloatObject).Value)

	// mixed int/float promotes the int
	result, ok = NewInt(1).BinaryOp(BinaryOp_Add, NewFloat(0.5))
	require.True(t, ok)
	assert.Equal(t, 1.5, result.(*FloatObject).Value)

	// uint arithmetic wraps
	result, ok = NewUInt(^uint64(0)).BinaryOp(BinaryOp_Add, NewUInt(1))
	require.True(t, ok)
	assert.Equal(t, uint64(0), result.(*UIntObject).Value)

	// strings concatenate and compare
	result, ok = NewString("foo").BinaryOp(BinaryOp_Add, NewString("bar"))
	require.True(t, ok)
	assert.Equal(t, "foobar", result.(*StringObject).Value)
	result, ok = NewString("a").BinaryOp(BinaryOp_Eq, NewString("a"))
	require.True(t, ok)
	assert.True(t, result.(*BoolObject).Value)

	// booleans do not mix with ints
	_, ok = NewBool(true).BinaryOp(BinaryOp_And, NewInt(1))
	assert.False(t, ok)
}

func TestIteratorSequence(t *testing.T) {
	ensureBuiltins()

	iter := NewRangeIterator(0, 5, 1, false)
	var values []int64
	for {
		value := iter.Next()
		if IsNull(value) {
			break
		}
		values = append(values, value.(*IntObject).Value)
	}
	assert.Equal(t, []int64{0, 1, 2, 3, 4}, values)

	iter.Reset()
	assert.Equal(t, int64(0), iter.Next().(*IntObject).Value)

	inclusive := NewRangeIterator(1, 3, 1, true)
	var incValues []int64
	for {
		value := inclusive.Next()
		if IsNull(value) {
			break
		}
		incValues = append(incValues, value.(*IntObject).Value)
	}
	assert.Equal(t, []int64{1, 2, 3}, incValues)

	assert.True(t, NewRangeIterator(0, 1, 0, false).IsInfinite())

	listIter := NewListIterator([]Object{NewString("a"), NewString("b")})
	assert.Equal(t, "a", listIter.Next().(*StringObject).Value)
	assert.Equal(t, "b", listIter.Next().(*StringObject).Value)
	assert.True(t, IsNull(listIter.Next()))
}

func TestClassInstances(t *testing.T) {
	ensureBuiltins()

	outer := NewGlobalEnv()
	class := NewClass("Point", outer)
	class.Fields.Define("origin", NewBool(true))

	instance, callable, err := class.Call(nil)
	require.NoError(t, err)
	require.True(t, callable)

	point := instance.(*ClassObject)
	assert.True(t, point.IsInstance)
	assert.Equal(t, class.TypeID(), point.TypeID())

	// instance fields shadow class statics without mutating them
	require.NoError(t, point.SetAttr("x", NewInt(3)))
	x, ok := point.GetAttr("x")
	require.True(t, ok)
	assert.Equal(t, int64(3), x.(*IntObject).Value)

	_, ok = class.GetAttr("x")
	assert.False(t, ok)

	origin, ok := point.GetAttr("origin")
	require.True(t, ok)
	assert.True(t, origin.(*BoolObject).Value)
}
