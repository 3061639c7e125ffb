package runeway

import "fmt"

var stringType lazyTypeID

// StringTypeID returns the type id of `string`.
func StringTypeID() TypeID { return stringType.get() }

type StringObject struct {
	baseObject
	Value string
}

func NewString(value string) *StringObject {
	return &StringObject{Value: value}
}

func (o *StringObject) TypeID() TypeID   { return StringTypeID() }
func (o *StringObject) TypeName() string { return "string" }
func (o *StringObject) Raw() any         { return o.Value }

func (o *StringObject) Display() string {
	return fmt.Sprintf("%q", o.Value)
}

func (o *StringObject) GetAttr(name string) (Object, bool) {
	ensureBuiltins()
	return bindMethod(o, stringMethods, name)
}

// String `+` concatenates; `==`/`!=` compare.
func (o *StringObject) BinaryOp(op BinaryOp, rhs Object) (Object, bool) {
	other, ok := rhs.(*StringObject)
	if !ok {
		return nil, false
	}
	switch op {
	case BinaryOp_Add:
		return NewString(o.Value + other.Value), true
	case BinaryOp_Eq:
		return NewBool(o.Value == other.Value), true
	case BinaryOp_NotEq:
		return NewBool(o.Value != other.Value), true
	}
	return nil, false
}
