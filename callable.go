package runeway

import (
	"fmt"
	"strings"
)

// NativeFn is the Go body of a registered function.
type NativeFn func(args []Object) (Object, error)

// NativeMethodFn is the Go body of a registered method; this is the
// receiver.
type NativeMethodFn func(this Object, args []Object) (Object, error)

// NativeFunction is a function descriptor: name, body, expected
// parameter type ids (0 matches anything), an optional fixed return
// type and a variadic flag.
type NativeFunction struct {
	Name          string
	Fn            NativeFn
	Params        []TypeID
	ReturnType    TypeID
	HasReturnType bool
	Variadic      bool
}

func NewNativeFunction(name string, fn NativeFn, params []TypeID) *NativeFunction {
	return &NativeFunction{Name: name, Fn: fn, Params: params}
}

func NewVariadicFunction(name string, fn NativeFn, params []TypeID) *NativeFunction {
	return &NativeFunction{Name: name, Fn: fn, Params: params, Variadic: true}
}

func (f *NativeFunction) WithReturnType(id TypeID) *NativeFunction {
	f.ReturnType = id
	f.HasReturnType = true
	return f
}

// Call checks arity and argument types, invokes the body, and
// asserts the declared return type.
func (f *NativeFunction) Call(args []Object) (Object, error) {
	argTypes := make([]TypeID, len(args))
	for i, arg := range args {
		argTypes[i] = arg.TypeID()
	}
	if err := checkParams(f.Params, argTypes, f.Name, f.Variadic); err != nil {
		return nil, err
	}
	result, err := f.Fn(args)
	if err != nil {
		return nil, err
	}
	if f.HasReturnType && result.TypeID() != f.ReturnType {
		return nil, NewRuntimeErrorf("TypeError",
			"Incorrect value type. Expected <%s>, but <%s> were provided",
			TypeNameFromID(f.ReturnType), result.TypeName())
	}
	return result, nil
}

// NativeMethod is a function descriptor with an implicit `this`
// parameter in front; Params[0] is the receiver type.
type NativeMethod struct {
	Name          string
	Fn            NativeMethodFn
	Params        []TypeID
	ReturnType    TypeID
	HasReturnType bool
	Variadic      bool
}

func NewNativeMethod(name string, fn NativeMethodFn, params []TypeID) *NativeMethod {
	return &NativeMethod{Name: name, Fn: fn, Params: params}
}

func (m *NativeMethod) Call(this Object, args []Object) (Object, error) {
	argTypes := make([]TypeID, 0, len(args)+1)
	argTypes = append(argTypes, this.TypeID())
	for _, arg := range args {
		argTypes = append(argTypes, arg.TypeID())
	}
	if err := checkParams(m.Params, argTypes, m.Name, m.Variadic); err != nil {
		return nil, err
	}
	result, err := m.Fn(this, args)
	if err != nil {
		return nil, err
	}
	if m.HasReturnType && result.TypeID() != m.ReturnType {
		return nil, NewRuntimeErrorf("TypeError",
			"Incorrect value type. Expected <%s>, but <%s> were provided",
			TypeNameFromID(m.ReturnType), result.TypeName())
	}
	return result, nil
}

func callableKind(name string) string {
	if strings.Contains(name, ".") {
		return "Method"
	}
	return "Function"
}

func checkParams(params, args []TypeID, name string, variadic bool) error {
	if (variadic && len(args) < len(params)) || (!variadic && len(params) != len(args)) {
		quantifier := ""
		if variadic {
			quantifier = "minimum "
		}
		return NewRuntimeErrorf("ArgumentsError",
			"%s <%s(...)> expects %s%d argument(s), but %d were provided.",
			callableKind(name), name, quantifier, len(params), len(args))
	}

	for i, param := range params {
		if param != 0 && param != args[i] {
			return NewRuntimeErrorf("TypeError",
				"%s <%s(...)> expects types: (%s), but (%s) were provided.",
				callableKind(name), name,
				typeNameList(params), typeNameList(args))
		}
	}
	return nil
}

func typeNameList(ids []TypeID) string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = TypeNameFromID(id)
	}
	return strings.Join(names, ", ")
}

func (f *NativeFunction) String() string {
	return fmt.Sprintf("act %s(%d)", f.Name, len(f.Params))
}
