package runeway

import (
	"fmt"
	"strings"
)

var dictType lazyTypeID

// DictTypeID returns the type id of `dict`.
func DictTypeID() TypeID { return dictType.get() }

// DictObject maps string keys to objects.  Insertion order is kept so
// display and keys() are deterministic.
type DictObject struct {
	baseObject
	entries map[string]Object
	order   []string
}

func NewDict() *DictObject {
	return &DictObject{entries: map[string]Object{}}
}

func (o *DictObject) TypeID() TypeID   { return DictTypeID() }
func (o *DictObject) TypeName() string { return "dict" }
func (o *DictObject) Raw() any         { return o.entries }

func (o *DictObject) Display() string {
	var s strings.Builder
	s.WriteString("{")
	for i, key := range o.order {
		if i > 0 {
			s.WriteString(", ")
		}
		fmt.Fprintf(&s, "%q: %s", key, o.entries[key].Display())
	}
	s.WriteString("}")
	return s.String()
}

func (o *DictObject) GetAttr(name string) (Object, bool) {
	ensureBuiltins()
	return bindMethod(o, dictMethods, name)
}

func (o *DictObject) Len() int {
	return len(o.entries)
}

func (o *DictObject) Insert(key string, value Object) {
	if _, exists := o.entries[key]; !exists {
		o.order = append(o.order, key)
	}
	o.entries[key] = value
}

func (o *DictObject) Lookup(key string) (Object, bool) {
	value, ok := o.entries[key]
	return value, ok
}

func (o *DictObject) Keys() []string {
	return o.order
}
