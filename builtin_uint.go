package runeway

import "strconv"

var uintType lazyTypeID

// UIntTypeID returns the type id of `uint`.
func UIntTypeID() TypeID { return uintType.get() }

// UIntObject is the unsigned 64-bit integer value.  Arithmetic wraps
// on overflow.
type UIntObject struct {
	baseObject
	Value uint64
}

func NewUInt(value uint64) *UIntObject {
	return &UIntObject{Value: value}
}

func (o *UIntObject) TypeID() TypeID   { return UIntTypeID() }
func (o *UIntObject) TypeName() string { return "uint" }
func (o *UIntObject) Display() string  { return strconv.FormatUint(o.Value, 10) }
func (o *UIntObject) Raw() any         { return o.Value }

func (o *UIntObject) GetAttr(name string) (Object, bool) {
	ensureBuiltins()
	return bindMethod(o, uintMethods, name)
}

func (o *UIntObject) BinaryOp(op BinaryOp, rhs Object) (Object, bool) {
	other, ok := rhs.(*UIntObject)
	if !ok {
		return nil, false
	}
	a, b := o.Value, other.Value
	switch op {
	case BinaryOp_Add:
		return NewUInt(a + b), true // wrapping
	case BinaryOp_Sub:
		return NewUInt(a - b), true // wrapping
	case BinaryOp_Mul:
		return NewUInt(a * b), true // wrapping
	case BinaryOp_Div:
		return NewFloat(float64(a) / float64(b)), true
	case BinaryOp_Mod:
		if b == 0 {
			return nil, false
		}
		return NewUInt(a % b), true
	case BinaryOp_Eq:
		return NewBool(a == b), true
	case BinaryOp_NotEq:
		return NewBool(a != b), true
	case BinaryOp_Lt:
		return NewBool(a < b), true
	case BinaryOp_LtEq:
		return NewBool(a <= b), true
	case BinaryOp_Gt:
		return NewBool(a > b), true
	case BinaryOp_GtEq:
		return NewBool(a >= b), true
	case BinaryOp_BitAnd:
		return NewUInt(a & b), true
	case BinaryOp_BitOr:
		return NewUInt(a | b), true
	case BinaryOp_BitXor:
		return NewUInt(a ^ b), true
	case BinaryOp_Shl:
		if b > 63 {
			return nil, false
		}
		return NewUInt(a << b), true
	case BinaryOp_Shr:
		if b > 63 {
			return nil, false
		}
		return NewUInt(a >> b), true
	}
	return nil, false
}

func (o *UIntObject) UnaryOp(op UnaryOp) (Object, bool) {
	switch op {
	case UnaryOp_BitNot:
		return NewUInt(^o.Value), true
	case UnaryOp_Inc:
		return NewUInt(o.Value + 1), true
	case UnaryOp_Dec:
		return NewUInt(o.Value - 1), true
	}
	return nil, false
}
