package runeway

import (
	"math"
	"strconv"
)

var intType lazyTypeID

// IntTypeID returns the type id of `int`, assigning it on first use.
func IntTypeID() TypeID { return intType.get() }

// IntObject is the signed 64-bit integer value.
type IntObject struct {
	baseObject
	Value int64
}

func NewInt(value int64) *IntObject {
	return &IntObject{Value: value}
}

func (o *IntObject) TypeID() TypeID   { return IntTypeID() }
func (o *IntObject) TypeName() string { return "int" }
func (o *IntObject) Display() string  { return strconv.FormatInt(o.Value, 10) }
func (o *IntObject) Raw() any         { return o.Value }

func (o *IntObject) GetAttr(name string) (Object, bool) {
	ensureBuiltins()
	return bindMethod(o, intMethods, name)
}

func (o *IntObject) BinaryOp(op BinaryOp, rhs Object) (Object, bool) {
	switch other := rhs.(type) {
	case *IntObject:
		return intBinary(o.Value, other.Value, op)
	case *FloatObject:
		return floatBinary(float64(o.Value), other.Value, op)
	}
	return nil, false
}

func (o *IntObject) UnaryOp(op UnaryOp) (Object, bool) {
	switch op {
	case UnaryOp_Neg:
		return NewInt(-o.Value), true
	case UnaryOp_BitNot:
		return NewInt(^o.Value), true
	case UnaryOp_Inc:
		return NewInt(o.Value + 1), true
	case UnaryOp_Dec:
		return NewInt(o.Value - 1), true
	}
	return nil, false
}

func intBinary(a, b int64, op BinaryOp) (Object, bool) {
	switch op {
	case BinaryOp_Add:
		return NewInt(a + b), true
	case BinaryOp_Sub:
		return NewInt(a - b), true
	case BinaryOp_Mul:
		return NewInt(a * b), true
	case BinaryOp_Div:
		// int / int always promotes to float
		return NewFloat(float64(a) / float64(b)), true
	case BinaryOp_Mod:
		if b == 0 {
			return nil, false
		}
		return NewInt(a % b), true
	case BinaryOp_Pow:
		value := math.Pow(float64(a), float64(b))
		if math.Mod(value, 1.0) == 0 && !math.IsInf(value, 0) {
			return NewInt(int64(value)), true
		}
		return NewFloat(value), true
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
		return NewInt(a & b), true
	case BinaryOp_BitOr:
		return NewInt(a | b), true
	case BinaryOp_BitXor:
		return NewInt(a ^ b), true
	case BinaryOp_Shl:
		if b < 0 || b > 63 {
			return nil, false
		}
		return NewInt(a << uint(b)), true
	case BinaryOp_Shr:
		if b < 0 || b > 63 {
			return nil, false
		}
		return NewInt(a >> uint(b)), true
	}
	return nil, false
}
