package runeway

import "fmt"

var typeType lazyTypeID

// TypeTypeID returns the type id of `type`.
func TypeTypeID() TypeID { return typeType.get() }

// TypeObject is the runtime value representing a registered type.
type TypeObject struct {
	baseObject
	ID   TypeID
	Name string
}

func (o *TypeObject) TypeID() TypeID   { return TypeTypeID() }
func (o *TypeObject) TypeName() string { return "type" }
func (o *TypeObject) Raw() any         { return o.ID }

func (o *TypeObject) Display() string {
	return fmt.Sprintf("<type %s>", o.Name)
}

// GetAttr exposes the static-field table of the described type.
func (o *TypeObject) GetAttr(name string) (Object, bool) {
	if desc, ok := typeRegistry[o.ID]; ok {
		value, ok := desc.Statics[name]
		return value, ok
	}
	return nil, false
}

func (o *TypeObject) BinaryOp(op BinaryOp, rhs Object) (Object, bool) {
	other, ok := rhs.(*TypeObject)
	if !ok {
		return nil, false
	}
	switch op {
	case BinaryOp_Eq:
		return NewBool(o.ID == other.ID), true
	case BinaryOp_NotEq:
		return NewBool(o.ID != other.ID), true
	}
	return nil, false
}

// Calling a type object with a value returns the value's type
// object.
func (o *TypeObject) Call(args []Object) (Object, bool, error) {
	if len(args) != 1 {
		return nil, true, NewRuntimeErrorf("ArgumentsError",
			"Function <type(...)> expects 1 argument(s), but %d were provided.", len(args))
	}
	if t, ok := TypeObjFromID(args[0].TypeID()); ok {
		return t, true, nil
	}
	if class, ok := args[0].(*ClassObject); ok {
		return class, true, nil
	}
	return nil, true, NewRuntimeErrorf("TypeError",
		"Type of <%s> is not registered", args[0].TypeName())
}
