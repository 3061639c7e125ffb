package runeway

var nullType lazyTypeID

// NullTypeID returns the type id of `null`.
func NullTypeID() TypeID { return nullType.get() }

type NullObject struct {
	baseObject
}

func NewNull() *NullObject {
	return &NullObject{}
}

func (o *NullObject) TypeID() TypeID   { return NullTypeID() }
func (o *NullObject) TypeName() string { return "null" }
func (o *NullObject) Display() string  { return "null" }
func (o *NullObject) Raw() any         { return nil }

func (o *NullObject) GetAttr(name string) (Object, bool) {
	ensureBuiltins()
	return bindMethod(o, nullMethods, name)
}

func (o *NullObject) BinaryOp(op BinaryOp, rhs Object) (Object, bool) {
	_, isNull := rhs.(*NullObject)
	switch op {
	case BinaryOp_Eq:
		return NewBool(isNull), true
	case BinaryOp_NotEq:
		return NewBool(!isNull), true
	}
	return nil, false
}

// IsNull reports whether the object is the null value.
func IsNull(obj Object) bool {
	_, ok := obj.(*NullObject)
	return ok
}
