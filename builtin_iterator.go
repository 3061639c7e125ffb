package runeway

import "fmt"

var iteratorType lazyTypeID

// IteratorTypeID returns the type id of `iterator`.
func IteratorTypeID() TypeID { return iteratorType.get() }

type iteratorKind int

const (
	iteratorKind_Range iteratorKind = iota
	iteratorKind_List
)

// IteratorObject is an explicit state machine: next() yields
// successive values and null at exhaustion.  A range iterator with
// step 0 never exhausts; the surrounding loop owns termination.
type IteratorObject struct {
	baseObject
	kind iteratorKind

	// range state
	current   int64
	start     int64
	end       int64
	step      int64
	inclusive bool

	// list state
	items []Object
	index int
}

// NewRangeIterator builds the iterator for `start .. end [:: step]`.
func NewRangeIterator(start, end, step int64, inclusive bool) *IteratorObject {
	return &IteratorObject{
		kind:      iteratorKind_Range,
		current:   start,
		start:     start,
		end:       end,
		step:      step,
		inclusive: inclusive,
	}
}

// NewListIterator walks a snapshot of the given items.
func NewListIterator(items []Object) *IteratorObject {
	return &IteratorObject{kind: iteratorKind_List, items: items}
}

func (o *IteratorObject) TypeID() TypeID   { return IteratorTypeID() }
func (o *IteratorObject) TypeName() string { return "iterator" }
func (o *IteratorObject) Raw() any         { return o }

func (o *IteratorObject) Display() string {
	switch o.kind {
	case iteratorKind_Range:
		return fmt.Sprintf("<range iterator %d..%d::%d at %d>", o.start, o.end, o.step, o.current)
	default:
		return fmt.Sprintf("<list iterator at %d>", o.index)
	}
}

func (o *IteratorObject) GetAttr(name string) (Object, bool) {
	ensureBuiltins()
	return bindMethod(o, iteratorMethods, name)
}

// Next returns the next value, or null once the iterator is
// exhausted.
func (o *IteratorObject) Next() Object {
	switch o.kind {
	case iteratorKind_Range:
		if o.exhausted() {
			return NewNull()
		}
		value := o.current
		o.current += o.step
		return NewInt(value)
	default:
		if o.index >= len(o.items) {
			return NewNull()
		}
		value := o.items[o.index]
		o.index++
		return value
	}
}

func (o *IteratorObject) exhausted() bool {
	switch {
	case o.step > 0:
		if o.inclusive {
			return o.current > o.end
		}
		return o.current >= o.end
	case o.step < 0:
		if o.inclusive {
			return o.current < o.end
		}
		return o.current <= o.end
	default:
		// step 0 iterates forever
		return false
	}
}

// Reset rewinds the iterator to its first value.
func (o *IteratorObject) Reset() {
	o.current = o.start
	o.index = 0
}

func (o *IteratorObject) IsInfinite() bool {
	return o.kind == iteratorKind_Range && o.step == 0
}
