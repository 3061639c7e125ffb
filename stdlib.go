package runeway

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"strings"
)

// The standard library modules distributed with the runtime.  Each
// exposes at minimum a VERSION string.

func init() {
	RegisterStdlib("random", loadRandomModule)
	RegisterStdlib("json", loadJSONModule)
	RegisterStdlib("http", loadHTTPModule)
	RegisterStdlib("itertools", loadItertoolsModule)
	RegisterStdlib("buffered", loadBufferedModule)
	RegisterStdlib("dynbox", loadDynboxModule)
}

func newStdlibEnv(rt *Runtime, version string) *Environment {
	env := NewEnclosedEnv(rt.Builtins())
	env.Define("VERSION", NewString(version))
	return env
}

// std::random

func loadRandomModule(rt *Runtime) (*Environment, error) {
	env := newStdlibEnv(rt, "1.0.0")
	rng := rand.New(rand.NewSource(1))

	env.DefineFunction(NewNativeFunction("seed", func(args []Object) (Object, error) {
		rng = rand.New(rand.NewSource(args[0].(*IntObject).Value))
		return NewNull(), nil
	}, []TypeID{IntTypeID()}))

	env.DefineFunction(NewNativeFunction("randint", func(args []Object) (Object, error) {
		lo := args[0].(*IntObject).Value
		hi := args[1].(*IntObject).Value
		if hi <= lo {
			return nil, NewRuntimeErrorf("ArgumentsError",
				"randint bounds must satisfy low < high, got %d and %d", lo, hi)
		}
		return NewInt(lo + rng.Int63n(hi-lo)), nil
	}, []TypeID{IntTypeID(), IntTypeID()}))

	env.DefineFunction(NewNativeFunction("random", func(args []Object) (Object, error) {
		return NewFloat(rng.Float64()), nil
	}, nil))

	env.DefineFunction(NewNativeFunction("choice", func(args []Object) (Object, error) {
		items := args[0].(*ListObject).Items
		if len(items) == 0 {
			return nil, NewRuntimeError("IndexError", "Cannot choose from an empty list")
		}
		return items[rng.Intn(len(items))], nil
	}, []TypeID{ListTypeID()}))

	return env, nil
}

// std::json

func loadJSONModule(rt *Runtime) (*Environment, error) {
	env := newStdlibEnv(rt, "1.0.0")

	env.DefineFunction(NewNativeFunction("parse", func(args []Object) (Object, error) {
		var decoded any
		if err := json.Unmarshal([]byte(args[0].(*StringObject).Value), &decoded); err != nil {
			return nil, NewRuntimeErrorf("TypeError", "Invalid JSON: %s", err)
		}
		return jsonToObject(decoded), nil
	}, []TypeID{StringTypeID()}))

	env.DefineFunction(NewNativeFunction("dump", func(args []Object) (Object, error) {
		value, err := objectToJSON(args[0])
		if err != nil {
			return nil, err
		}
		encoded, marshalErr := json.Marshal(value)
		if marshalErr != nil {
			return nil, NewRuntimeErrorf("TypeError", "Cannot encode value: %s", marshalErr)
		}
		return NewString(string(encoded)), nil
	}, []TypeID{0}))

	return env, nil
}

func jsonToObject(value any) Object {
	switch v := value.(type) {
	case nil:
		return NewNull()
	case bool:
		return NewBool(v)
	case float64:
		if v == float64(int64(v)) {
			return NewInt(int64(v))
		}
		return NewFloat(v)
	case string:
		return NewString(v)
	case []any:
		items := make([]Object, len(v))
		for i, item := range v {
			items[i] = jsonToObject(item)
		}
		return NewList(items)
	case map[string]any:
		dict := NewDict()
		for key, item := range v {
			dict.Insert(key, jsonToObject(item))
		}
		return dict
	default:
		return NewString(fmt.Sprintf("%v", v))
	}
}

func objectToJSON(obj Object) (any, error) {
	switch v := obj.(type) {
	case *NullObject:
		return nil, nil
	case *BoolObject:
		return v.Value, nil
	case *IntObject:
		return v.Value, nil
	case *UIntObject:
		return v.Value, nil
	case *FloatObject:
		return v.Value, nil
	case *StringObject:
		return v.Value, nil
	case *ListObject:
		items := make([]any, len(v.Items))
		for i, item := range v.Items {
			value, err := objectToJSON(item)
			if err != nil {
				return nil, err
			}
			items[i] = value
		}
		return items, nil
	case *TupleObject:
		items := make([]any, len(v.Items))
		for i, item := range v.Items {
			value, err := objectToJSON(item)
			if err != nil {
				return nil, err
			}
			items[i] = value
		}
		return items, nil
	case *DictObject:
		entries := map[string]any{}
		for _, key := range v.Keys() {
			item, _ := v.Lookup(key)
			value, err := objectToJSON(item)
			if err != nil {
				return nil, err
			}
			entries[key] = value
		}
		return entries, nil
	default:
		return nil, NewRuntimeErrorf("TypeError",
			"Cannot encode <%s> as JSON", obj.TypeName())
	}
}

// std::http

func loadHTTPModule(rt *Runtime) (*Environment, error) {
	env := newStdlibEnv(rt, "1.0.0")

	env.DefineFunction(NewNativeFunction("get", func(args []Object) (Object, error) {
		resp, err := http.Get(args[0].(*StringObject).Value)
		if err != nil {
			return nil, NewRuntimeErrorf("FileSystemError", "HTTP request failed: %s", err)
		}
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, NewRuntimeErrorf("FileSystemError", "HTTP read failed: %s", err)
		}
		return NewString(string(body)), nil
	}, []TypeID{StringTypeID()}))

	env.DefineFunction(NewNativeFunction("status", func(args []Object) (Object, error) {
		resp, err := http.Get(args[0].(*StringObject).Value)
		if err != nil {
			return nil, NewRuntimeErrorf("FileSystemError", "HTTP request failed: %s", err)
		}
		resp.Body.Close()
		return NewInt(int64(resp.StatusCode)), nil
	}, []TypeID{StringTypeID()}))

	return env, nil
}

// std::itertools

func loadItertoolsModule(rt *Runtime) (*Environment, error) {
	env := newStdlibEnv(rt, "1.0.0")

	env.DefineFunction(NewNativeFunction("range_list", func(args []Object) (Object, error) {
		start := args[0].(*IntObject).Value
		end := args[1].(*IntObject).Value
		var items []Object
		for i := start; i < end; i++ {
			items = append(items, NewInt(i))
		}
		return NewList(items), nil
	}, []TypeID{IntTypeID(), IntTypeID()}))

	env.DefineFunction(NewNativeFunction("repeat", func(args []Object) (Object, error) {
		count := args[1].(*IntObject).Value
		items := make([]Object, 0, count)
		for i := int64(0); i < count; i++ {
			items = append(items, args[0])
		}
		return NewList(items), nil
	}, []TypeID{0, IntTypeID()}))

	env.DefineFunction(NewVariadicFunction("chain", func(args []Object) (Object, error) {
		var items []Object
		for _, arg := range args {
			list, ok := arg.(*ListObject)
			if !ok {
				return nil, NewRuntimeErrorf("TypeError",
					"Function <chain(...)> expects lists, got <%s>", arg.TypeName())
			}
			items = append(items, list.Items...)
		}
		return NewList(items), nil
	}, nil).WithReturnType(ListTypeID()))

	env.DefineFunction(NewNativeFunction("take", func(args []Object) (Object, error) {
		iter, err := CastTo(args[0], IteratorTypeID())
		if err != nil {
			return nil, err
		}
		count := args[1].(*IntObject).Value
		var items []Object
		iterator := iter.(*IteratorObject)
		for i := int64(0); i < count; i++ {
			value := iterator.Next()
			if IsNull(value) {
				break
			}
			items = append(items, value)
		}
		return NewList(items), nil
	}, []TypeID{0, IntTypeID()}))

	return env, nil
}

// std::buffered

func loadBufferedModule(rt *Runtime) (*Environment, error) {
	env := newStdlibEnv(rt, "1.0.0")
	reader := bufio.NewReader(os.Stdin)
	writer := bufio.NewWriter(rt.Stdout)

	env.DefineFunction(NewNativeFunction("read_line", func(args []Object) (Object, error) {
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return NewNull(), nil
		}
		return NewString(strings.TrimRight(line, "\r\n")), nil
	}, nil))

	env.DefineFunction(NewNativeFunction("write", func(args []Object) (Object, error) {
		if _, err := writer.WriteString(args[0].(*StringObject).Value); err != nil {
			return nil, NewRuntimeErrorf("FileSystemError", "Write failed: %s", err)
		}
		return NewNull(), nil
	}, []TypeID{StringTypeID()}))

	env.DefineFunction(NewNativeFunction("flush", func(args []Object) (Object, error) {
		if err := writer.Flush(); err != nil {
			return nil, NewRuntimeErrorf("FileSystemError", "Flush failed: %s", err)
		}
		return NewNull(), nil
	}, nil))

	return env, nil
}

// std::dynbox

var boxType lazyTypeID

// BoxTypeID returns the type id of `box`.
func BoxTypeID() TypeID { return boxType.get() }

// BoxObject is a mutable single-slot container.
type BoxObject struct {
	baseObject
	Value Object
}

func (o *BoxObject) TypeID() TypeID   { return BoxTypeID() }
func (o *BoxObject) TypeName() string { return "box" }
func (o *BoxObject) Raw() any         { return o.Value }

func (o *BoxObject) Display() string {
	return fmt.Sprintf("<box %s>", o.Value.Display())
}

func (o *BoxObject) GetAttr(name string) (Object, bool) {
	switch name {
	case "get":
		return NewBoundMethod(o, NewNativeMethod("box.get",
			func(this Object, _ []Object) (Object, error) {
				return this.(*BoxObject).Value, nil
			}, []TypeID{BoxTypeID()})), true
	case "set":
		return NewBoundMethod(o, NewNativeMethod("box.set",
			func(this Object, args []Object) (Object, error) {
				this.(*BoxObject).Value = args[0]
				return NewNull(), nil
			}, []TypeID{BoxTypeID(), 0})), true
	}
	return nil, false
}

func loadDynboxModule(rt *Runtime) (*Environment, error) {
	env := newStdlibEnv(rt, "1.0.0")
	ensureBuiltins()
	if _, ok := typeRegistry[BoxTypeID()]; !ok {
		RegisterType(BoxTypeID(), "box")
	}

	env.DefineFunction(NewNativeFunction("box", func(args []Object) (Object, error) {
		return &BoxObject{Value: args[0]}, nil
	}, []TypeID{0}))

	return env, nil
}
