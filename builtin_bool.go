package runeway

var boolType lazyTypeID

// BoolTypeID returns the type id of `bool`.
func BoolTypeID() TypeID { return boolType.get() }

type BoolObject struct {
	baseObject
	Value bool
}

func NewBool(value bool) *BoolObject {
	return &BoolObject{Value: value}
}

func (o *BoolObject) TypeID() TypeID   { return BoolTypeID() }
func (o *BoolObject) TypeName() string { return "bool" }
func (o *BoolObject) Raw() any         { return o.Value }

func (o *BoolObject) Display() string {
	if o.Value {
		return "true"
	}
	return "false"
}

func (o *BoolObject) GetAttr(name string) (Object, bool) {
	ensureBuiltins()
	return bindMethod(o, boolMethods, name)
}

// Boolean and/or operate only on booleans.
func (o *BoolObject) BinaryOp(op BinaryOp, rhs Object) (Object, bool) {
	other, ok := rhs.(*BoolObject)
	if !ok {
		return nil, false
	}
	switch op {
	case BinaryOp_And:
		return NewBool(o.Value && other.Value), true
	case BinaryOp_Or:
		return NewBool(o.Value || other.Value), true
	case BinaryOp_Eq:
		return NewBool(o.Value == other.Value), true
	case BinaryOp_NotEq:
		return NewBool(o.Value != other.Value), true
	}
	return nil, false
}

func (o *BoolObject) UnaryOp(op UnaryOp) (Object, bool) {
	if op == UnaryOp_Not {
		return NewBool(!o.Value), true
	}
	return nil, false
}
