package runeway

import "fmt"

var functionType lazyTypeID
var methodType lazyTypeID

// FunctionTypeID returns the type id of `function`.
func FunctionTypeID() TypeID { return functionType.get() }

// MethodTypeID returns the type id of `method`.
func MethodTypeID() TypeID { return methodType.get() }

// FunctionObject wraps a native function descriptor as a runtime
// value, making functions first class.
type FunctionObject struct {
	baseObject
	Fn *NativeFunction
}

func NewFunctionObject(fn *NativeFunction) *FunctionObject {
	return &FunctionObject{Fn: fn}
}

func (o *FunctionObject) TypeID() TypeID   { return FunctionTypeID() }
func (o *FunctionObject) TypeName() string { return "function" }
func (o *FunctionObject) Raw() any         { return o.Fn }

func (o *FunctionObject) Display() string {
	return fmt.Sprintf("<function %s(...)>", o.Fn.Name)
}

func (o *FunctionObject) Call(args []Object) (Object, bool, error) {
	result, err := o.Fn.Call(args)
	return result, true, err
}

// BoundMethod pairs a method descriptor with its receiver so the
// caller can treat it like any other callable.
type BoundMethod struct {
	baseObject
	Recv   Object
	Method *NativeMethod
}

func NewBoundMethod(recv Object, method *NativeMethod) *BoundMethod {
	return &BoundMethod{Recv: recv, Method: method}
}

func (o *BoundMethod) TypeID() TypeID   { return MethodTypeID() }
func (o *BoundMethod) TypeName() string { return "method" }
func (o *BoundMethod) Raw() any         { return o.Method }

func (o *BoundMethod) Display() string {
	return fmt.Sprintf("<method %s(...)>", o.Method.Name)
}

func (o *BoundMethod) Call(args []Object) (Object, bool, error) {
	result, err := o.Method.Call(o.Recv, args)
	return result, true, err
}

// bindMethod looks a method up in a table and binds it to recv.
func bindMethod(recv Object, table map[string]*NativeMethod, name string) (Object, bool) {
	method, ok := table[name]
	if !ok {
		return nil, false
	}
	return NewBoundMethod(recv, method), true
}
