package runeway

import (
	"sort"
	"strings"
)

var listType lazyTypeID

// ListTypeID returns the type id of `list`.
func ListTypeID() TypeID { return listType.get() }

type ListObject struct {
	baseObject
	Items []Object
}

func NewList(items []Object) *ListObject {
	return &ListObject{Items: items}
}

func (o *ListObject) TypeID() TypeID   { return ListTypeID() }
func (o *ListObject) TypeName() string { return "list" }
func (o *ListObject) Raw() any         { return o.Items }

func (o *ListObject) Display() string {
	var s strings.Builder
	s.WriteString("[")
	for i, item := range o.Items {
		if i > 0 {
			s.WriteString(", ")
		}
		s.WriteString(item.Display())
	}
	s.WriteString("]")
	return s.String()
}

func (o *ListObject) GetAttr(name string) (Object, bool) {
	ensureBuiltins()
	return bindMethod(o, listMethods, name)
}

// At bounds-checks an index access.
func (o *ListObject) At(index int64) (Object, error) {
	if index < 0 || index >= int64(len(o.Items)) {
		return nil, NewRuntimeErrorf("IndexError",
			"List index %d out of range for length %d", index, len(o.Items))
	}
	return o.Items[index], nil
}

// Sort orders the items in place using the cross-type comparison.
func (o *ListObject) Sort() {
	sort.SliceStable(o.Items, func(i, j int) bool {
		cmp, ok := compareObjects(o.Items[i], o.Items[j])
		return ok && cmp < 0
	})
}
