package runeway

import "strings"

var tupleType lazyTypeID

// TupleTypeID returns the type id of `tuple`.
func TupleTypeID() TypeID { return tupleType.get() }

type TupleObject struct {
	baseObject
	Items []Object
}

func NewTuple(items []Object) *TupleObject {
	return &TupleObject{Items: items}
}

func (o *TupleObject) TypeID() TypeID   { return TupleTypeID() }
func (o *TupleObject) TypeName() string { return "tuple" }
func (o *TupleObject) Raw() any         { return o.Items }

func (o *TupleObject) Display() string {
	var s strings.Builder
	s.WriteString("(")
	for i, item := range o.Items {
		if i > 0 {
			s.WriteString(", ")
		}
		s.WriteString(item.Display())
	}
	if len(o.Items) == 1 {
		s.WriteString(",")
	}
	s.WriteString(")")
	return s.String()
}

func (o *TupleObject) GetAttr(name string) (Object, bool) {
	ensureBuiltins()
	return bindMethod(o, tupleMethods, name)
}

func (o *TupleObject) At(index int64) (Object, error) {
	if index < 0 || index >= int64(len(o.Items)) {
		return nil, NewRuntimeErrorf("IndexError",
			"Tuple index %d out of range for length %d", index, len(o.Items))
	}
	return o.Items[index], nil
}
