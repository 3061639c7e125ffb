package runeway

import (
	"math"
	"strconv"
)

var floatType lazyTypeID

// FloatTypeID returns the type id of `float`.
func FloatTypeID() TypeID { return floatType.get() }

// FloatObject is the 64-bit floating point value.
type FloatObject struct {
	baseObject
	Value float64
}

func NewFloat(value float64) *FloatObject {
	return &FloatObject{Value: value}
}

func (o *FloatObject) TypeID() TypeID   { return FloatTypeID() }
func (o *FloatObject) TypeName() string { return "float" }
func (o *FloatObject) Raw() any         { return o.Value }

func (o *FloatObject) Display() string {
	s := strconv.FormatFloat(o.Value, 'g', -1, 64)
	return s
}

func (o *FloatObject) GetAttr(name string) (Object, bool) {
	ensureBuiltins()
	return bindMethod(o, floatMethods, name)
}

func (o *FloatObject) BinaryOp(op BinaryOp, rhs Object) (Object, bool) {
	switch other := rhs.(type) {
	case *FloatObject:
		return floatBinary(o.Value, other.Value, op)
	case *IntObject:
		return floatBinary(o.Value, float64(other.Value), op)
	}
	return nil, false
}

func (o *FloatObject) UnaryOp(op UnaryOp) (Object, bool) {
	switch op {
	case UnaryOp_Neg:
		return NewFloat(-o.Value), true
	case UnaryOp_Inc:
		return NewFloat(o.Value + 1), true
	case UnaryOp_Dec:
		return NewFloat(o.Value - 1), true
	}
	return nil, false
}

func floatBinary(a, b float64, op BinaryOp) (Object, bool) {
	switch op {
	case BinaryOp_Add:
		return NewFloat(a + b), true
	case BinaryOp_Sub:
		return NewFloat(a - b), true
	case BinaryOp_Mul:
		return NewFloat(a * b), true
	case BinaryOp_Div:
		return NewFloat(a / b), true
	case BinaryOp_Mod:
		return NewFloat(math.Mod(a, b)), true
	case BinaryOp_Pow:
		return NewFloat(math.Pow(a, b)), true
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
	}
	return nil, false
}
