package runeway

import (
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"
	"sync"
)

// Method tables of the built-in types.  Populated once by
// registerBuiltins and read-only afterwards.
var (
	intMethods      map[string]*NativeMethod
	uintMethods     map[string]*NativeMethod
	floatMethods    map[string]*NativeMethod
	boolMethods     map[string]*NativeMethod
	stringMethods   map[string]*NativeMethod
	listMethods     map[string]*NativeMethod
	tupleMethods    map[string]*NativeMethod
	dictMethods     map[string]*NativeMethod
	iteratorMethods map[string]*NativeMethod
	nullMethods     map[string]*NativeMethod
)

var builtinsOnce sync.Once

// ensureBuiltins makes the process-wide registries ready: type
// descriptors, the cast graph and the method tables.
func ensureBuiltins() {
	builtinsOnce.Do(registerBuiltins)
}

func method(name string, fn NativeMethodFn, params ...TypeID) *NativeMethod {
	return NewNativeMethod(name, fn, params)
}

func registerBuiltins() {
	registerBasicTypes()
	registerCasts()

	displayMethod := func(typeName string, recvType TypeID) *NativeMethod {
		return method(typeName+".to_string", func(this Object, _ []Object) (Object, error) {
			if s, ok := this.(*StringObject); ok {
				return s, nil
			}
			return NewString(this.Display()), nil
		}, recvType)
	}

	intMethods = map[string]*NativeMethod{
		"to_string": displayMethod("int", IntTypeID()),
		"to_float": method("int.to_float", func(this Object, _ []Object) (Object, error) {
			return NewFloat(float64(this.(*IntObject).Value)), nil
		}, IntTypeID()),
		"abs": method("int.abs", func(this Object, _ []Object) (Object, error) {
			v := this.(*IntObject).Value
			if v < 0 {
				v = -v
			}
			return NewInt(v), nil
		}, IntTypeID()),
	}

	uintMethods = map[string]*NativeMethod{
		"to_string": displayMethod("uint", UIntTypeID()),
		"to_int": method("uint.to_int", func(this Object, _ []Object) (Object, error) {
			return NewInt(int64(this.(*UIntObject).Value)), nil
		}, UIntTypeID()),
	}

	floatMethods = map[string]*NativeMethod{
		"to_string": displayMethod("float", FloatTypeID()),
		"to_int": method("float.to_int", func(this Object, _ []Object) (Object, error) {
			return NewInt(int64(this.(*FloatObject).Value)), nil
		}, FloatTypeID()),
		"round": method("float.round", func(this Object, _ []Object) (Object, error) {
			v := this.(*FloatObject).Value
			if v >= 0 {
				return NewInt(int64(v + 0.5)), nil
			}
			return NewInt(int64(v - 0.5)), nil
		}, FloatTypeID()),
	}

	boolMethods = map[string]*NativeMethod{
		"to_string": displayMethod("bool", BoolTypeID()),
	}

	nullMethods = map[string]*NativeMethod{
		"to_string": displayMethod("null", NullTypeID()),
	}

	stringMethods = map[string]*NativeMethod{
		"to_string": method("string.to_string", func(this Object, _ []Object) (Object, error) {
			return this, nil
		}, StringTypeID()),
		"to_int": method("string.to_int", func(this Object, _ []Object) (Object, error) {
			v, err := strconv.ParseInt(this.(*StringObject).Value, 10, 64)
			if err != nil {
				return nil, NewRuntimeErrorf("TypeError",
					"Cannot parse %q as <int>", this.(*StringObject).Value)
			}
			return NewInt(v), nil
		}, StringTypeID()),
		"to_float": method("string.to_float", func(this Object, _ []Object) (Object, error) {
			v, err := strconv.ParseFloat(this.(*StringObject).Value, 64)
			if err != nil {
				return nil, NewRuntimeErrorf("TypeError",
					"Cannot parse %q as <float>", this.(*StringObject).Value)
			}
			return NewFloat(v), nil
		}, StringTypeID()),
		"len": method("string.len", func(this Object, _ []Object) (Object, error) {
			return NewInt(int64(len(this.(*StringObject).Value))), nil
		}, StringTypeID()),
		"upper": method("string.upper", func(this Object, _ []Object) (Object, error) {
			return NewString(strings.ToUpper(this.(*StringObject).Value)), nil
		}, StringTypeID()),
		"lower": method("string.lower", func(this Object, _ []Object) (Object, error) {
			return NewString(strings.ToLower(this.(*StringObject).Value)), nil
		}, StringTypeID()),
		"split": method("string.split", func(this Object, args []Object) (Object, error) {
			parts := strings.Split(this.(*StringObject).Value, args[0].(*StringObject).Value)
			items := make([]Object, len(parts))
			for i, part := range parts {
				items[i] = NewString(part)
			}
			return NewList(items), nil
		}, StringTypeID(), StringTypeID()),
		"contains": method("string.contains", func(this Object, args []Object) (Object, error) {
			return NewBool(strings.Contains(
				this.(*StringObject).Value, args[0].(*StringObject).Value)), nil
		}, StringTypeID(), StringTypeID()),
	}

	listMethods = map[string]*NativeMethod{
		"to_string": displayMethod("list", ListTypeID()),
		"append": method("list.append", func(this Object, args []Object) (Object, error) {
			list := this.(*ListObject)
			list.Items = append(list.Items, args[0])
			return NewNull(), nil
		}, ListTypeID(), 0),
		"reverse": method("list.reverse", func(this Object, _ []Object) (Object, error) {
			items := this.(*ListObject).Items
			for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
				items[i], items[j] = items[j], items[i]
			}
			return NewNull(), nil
		}, ListTypeID()),
		"sort": method("list.sort", func(this Object, _ []Object) (Object, error) {
			this.(*ListObject).Sort()
			return NewNull(), nil
		}, ListTypeID()),
		"is_empty": method("list.is_empty", func(this Object, _ []Object) (Object, error) {
			return NewBool(len(this.(*ListObject).Items) == 0), nil
		}, ListTypeID()),
		"len": method("list.len", func(this Object, _ []Object) (Object, error) {
			return NewInt(int64(len(this.(*ListObject).Items))), nil
		}, ListTypeID()),
		"slice": method("list.slice", func(this Object, args []Object) (Object, error) {
			return this.(*ListObject).At(args[0].(*IntObject).Value)
		}, ListTypeID(), IntTypeID()),
		"iter": method("list.iter", func(this Object, _ []Object) (Object, error) {
			return NewListIterator(this.(*ListObject).Items), nil
		}, ListTypeID()),
	}

	tupleMethods = map[string]*NativeMethod{
		"to_string": displayMethod("tuple", TupleTypeID()),
		"len": method("tuple.len", func(this Object, _ []Object) (Object, error) {
			return NewInt(int64(len(this.(*TupleObject).Items))), nil
		}, TupleTypeID()),
		"slice": method("tuple.slice", func(this Object, args []Object) (Object, error) {
			return this.(*TupleObject).At(args[0].(*IntObject).Value)
		}, TupleTypeID(), IntTypeID()),
		"iter": method("tuple.iter", func(this Object, _ []Object) (Object, error) {
			return NewListIterator(this.(*TupleObject).Items), nil
		}, TupleTypeID()),
	}

	dictMethods = map[string]*NativeMethod{
		"to_string": displayMethod("dict", DictTypeID()),
		"get_": method("dict.get_", func(this Object, args []Object) (Object, error) {
			key, ok := args[0].(*StringObject)
			if !ok {
				return nil, NewRuntimeError("KeyError", "Key must be a string")
			}
			if value, ok := this.(*DictObject).Lookup(key.Value); ok {
				return value, nil
			}
			return NewNull(), nil
		}, DictTypeID(), 0),
		"slice": method("dict.slice", func(this Object, args []Object) (Object, error) {
			key := args[0].(*StringObject).Value
			if value, ok := this.(*DictObject).Lookup(key); ok {
				return value, nil
			}
			return nil, NewRuntimeErrorf("KeyError", "Key %q not found in dictionary", key)
		}, DictTypeID(), StringTypeID()),
		"keys": method("dict.keys", func(this Object, _ []Object) (Object, error) {
			keys := this.(*DictObject).Keys()
			items := make([]Object, len(keys))
			for i, key := range keys {
				items[i] = NewString(key)
			}
			return NewList(items), nil
		}, DictTypeID()),
		"values": method("dict.values", func(this Object, _ []Object) (Object, error) {
			dict := this.(*DictObject)
			items := make([]Object, 0, dict.Len())
			for _, key := range dict.Keys() {
				value, _ := dict.Lookup(key)
				items = append(items, value)
			}
			return NewList(items), nil
		}, DictTypeID()),
		"len": method("dict.len", func(this Object, _ []Object) (Object, error) {
			return NewInt(int64(this.(*DictObject).Len())), nil
		}, DictTypeID()),
		"insert": method("dict.insert", func(this Object, args []Object) (Object, error) {
			key, ok := args[0].(*StringObject)
			if !ok {
				return nil, NewRuntimeErrorf("TypeError",
					"Cannot cast type <%s> to string", args[0].TypeName())
			}
			this.(*DictObject).Insert(key.Value, args[1])
			return NewNull(), nil
		}, DictTypeID(), 0, 0),
	}

	iteratorMethods = map[string]*NativeMethod{
		"to_string": displayMethod("iterator", IteratorTypeID()),
		"next": method("iterator.next", func(this Object, _ []Object) (Object, error) {
			return this.(*IteratorObject).Next(), nil
		}, IteratorTypeID()),
		"reset": method("iterator.reset", func(this Object, _ []Object) (Object, error) {
			this.(*IteratorObject).Reset()
			return NewNull(), nil
		}, IteratorTypeID()),
		"is_infinite": method("iterator.is_infinite", func(this Object, _ []Object) (Object, error) {
			return NewBool(this.(*IteratorObject).IsInfinite()), nil
		}, IteratorTypeID()),
	}
}

func registerBasicTypes() {
	RegisterType(IntTypeID(), "int")
	RegisterType(UIntTypeID(), "uint")
	RegisterType(FloatTypeID(), "float")
	RegisterType(BoolTypeID(), "bool")
	RegisterType(StringTypeID(), "string")
	RegisterType(ListTypeID(), "list")
	RegisterType(TupleTypeID(), "tuple")
	RegisterType(DictTypeID(), "dict")
	RegisterType(IteratorTypeID(), "iterator")
	RegisterType(NullTypeID(), "null")
	RegisterType(TypeTypeID(), "type")
	RegisterType(ModuleTypeID(), "module")
	RegisterType(FunctionTypeID(), "function")
	RegisterType(MethodTypeID(), "method")
}

func registerCasts() {
	toString := func(obj Object) (Object, error) {
		return NewString(obj.Display()), nil
	}

	for _, id := range []TypeID{
		BoolTypeID(), FloatTypeID(), UIntTypeID(), ListTypeID(), TupleTypeID(),
		DictTypeID(), IteratorTypeID(), NullTypeID(), TypeTypeID(),
		ModuleTypeID(), FunctionTypeID(), MethodTypeID(),
	} {
		RegisterCast(id, StringTypeID(), toString)
	}

	RegisterCast(IntTypeID(), StringTypeID(), toString)
	RegisterCast(StringTypeID(), IntTypeID(), func(obj Object) (Object, error) {
		v, err := strconv.ParseInt(obj.(*StringObject).Value, 10, 64)
		if err != nil {
			return nil, NewRuntimeErrorf("CastError",
				"Cannot cast %q to <int>", obj.(*StringObject).Value)
		}
		return NewInt(v), nil
	})
	RegisterCast(StringTypeID(), FloatTypeID(), func(obj Object) (Object, error) {
		v, err := strconv.ParseFloat(obj.(*StringObject).Value, 64)
		if err != nil {
			return nil, NewRuntimeErrorf("CastError",
				"Cannot cast %q to <float>", obj.(*StringObject).Value)
		}
		return NewFloat(v), nil
	})

	RegisterCast(IntTypeID(), FloatTypeID(), func(obj Object) (Object, error) {
		return NewFloat(float64(obj.(*IntObject).Value)), nil
	})
	RegisterCast(FloatTypeID(), IntTypeID(), func(obj Object) (Object, error) {
		return NewInt(int64(obj.(*FloatObject).Value)), nil
	})
	RegisterCast(IntTypeID(), UIntTypeID(), func(obj Object) (Object, error) {
		return NewUInt(uint64(obj.(*IntObject).Value)), nil
	})
	RegisterCast(UIntTypeID(), IntTypeID(), func(obj Object) (Object, error) {
		return NewInt(int64(obj.(*UIntObject).Value)), nil
	})

	RegisterCast(ListTypeID(), TupleTypeID(), func(obj Object) (Object, error) {
		items := obj.(*ListObject).Items
		return NewTuple(append([]Object(nil), items...)), nil
	})
	RegisterCast(TupleTypeID(), ListTypeID(), func(obj Object) (Object, error) {
		items := obj.(*TupleObject).Items
		return NewList(append([]Object(nil), items...)), nil
	})

	RegisterCast(ListTypeID(), BoolTypeID(), func(obj Object) (Object, error) {
		return NewBool(len(obj.(*ListObject).Items) > 0), nil
	})
	RegisterCast(DictTypeID(), BoolTypeID(), func(obj Object) (Object, error) {
		return NewBool(obj.(*DictObject).Len() > 0), nil
	})

	RegisterCast(ListTypeID(), IteratorTypeID(), func(obj Object) (Object, error) {
		return NewListIterator(obj.(*ListObject).Items), nil
	})
	RegisterCast(TupleTypeID(), IteratorTypeID(), func(obj Object) (Object, error) {
		return NewListIterator(obj.(*TupleObject).Items), nil
	})
}

// NewBuiltinsEnv seeds a fresh root environment with every built-in
// type object and the prelude functions.  Printed output goes to out.
func NewBuiltinsEnv(out io.Writer) *Environment {
	ensureBuiltins()
	env := NewGlobalEnv()

	for _, desc := range typeRegistry {
		// user classes register a name-only descriptor
		if desc.Type != nil {
			env.Define(desc.Name, desc.Type)
		}
	}

	env.DefineFunction(NewNativeFunction("print", func(args []Object) (Object, error) {
		fmt.Fprintln(out, args[0].(*StringObject).Value)
		return NewNull(), nil
	}, []TypeID{StringTypeID()}))

	env.DefineFunction(NewNativeFunction("write", func(args []Object) (Object, error) {
		fmt.Fprint(out, args[0].(*StringObject).Value)
		return NewNull(), nil
	}, []TypeID{StringTypeID()}))

	env.DefineFunction(NewNativeFunction("cast", func(args []Object) (Object, error) {
		typeObj, ok := args[1].(*TypeObject)
		if !ok {
			return nil, NewRuntimeErrorf("TypeError",
				"Function <cast(...)> expects a <type> as second argument, got <%s>",
				args[1].TypeName())
		}
		return CastTo(args[0], typeObj.ID)
	}, []TypeID{0, TypeTypeID()}))

	env.DefineFunction(NewNativeFunction("id", func(args []Object) (Object, error) {
		return NewUInt(objectID(args[0])), nil
	}, []TypeID{0}))

	env.DefineFunction(NewNativeFunction("is_instance", func(args []Object) (Object, error) {
		return NewBool(isInstanceOf(args[0], args[1])), nil
	}, []TypeID{0, 0}))

	return env
}

// objectID derives a stable identity from the heap cell address.
func objectID(obj Object) uint64 {
	return uint64(reflect.ValueOf(obj).Pointer())
}

func isInstanceOf(obj, class Object) bool {
	var objID TypeID
	switch value := obj.(type) {
	case *TypeObject:
		objID = value.TypeID()
	case *ClassObject:
		if !value.IsInstance {
			return false
		}
		objID = value.TypeID()
	default:
		objID = obj.TypeID()
	}

	var classID TypeID
	switch value := class.(type) {
	case *TypeObject:
		classID = value.ID
	case *ClassObject:
		classID = value.TypeID()
	default:
		return false
	}

	return objID == classID || classID == TypeTypeID()
}

// compareObjects orders two objects when a natural ordering exists:
// numbers by value, strings lexicographically.
func compareObjects(a, b Object) (int, bool) {
	if as, ok := a.(*StringObject); ok {
		if bs, ok := b.(*StringObject); ok {
			return strings.Compare(as.Value, bs.Value), true
		}
		return 0, false
	}
	av, aok := toFloatValue(a)
	bv, bok := toFloatValue(b)
	if !aok || !bok {
		return 0, false
	}
	switch {
	case av < bv:
		return -1, true
	case av > bv:
		return 1, true
	default:
		return 0, true
	}
}

func toFloatValue(obj Object) (float64, bool) {
	switch value := obj.(type) {
	case *IntObject:
		return float64(value.Value), true
	case *UIntObject:
		return float64(value.Value), true
	case *FloatObject:
		return value.Value, true
	}
	return 0, false
}
