package runeway

// The type registry, the cast graph and the standard library registry
// are process-wide: written during initialisation, read-only after.

var typeIDCounter TypeID

// nextTypeID hands out a fresh non-zero type id.  Ids are unique and
// stable for the lifetime of the process.
func nextTypeID() TypeID {
	typeIDCounter++
	return typeIDCounter
}

// lazyTypeID assigns an id on first access, which keeps the id space
// dense no matter which type is touched first.
type lazyTypeID struct {
	id TypeID
}

func (l *lazyTypeID) get() TypeID {
	if l.id == 0 {
		l.id = nextTypeID()
	}
	return l.id
}

// TypeDesc describes one registered type: its display name, the type
// object handed to user code, and a static-field table.
type TypeDesc struct {
	Name    string
	Type    *TypeObject
	Statics map[string]Object
}

var typeRegistry = map[TypeID]*TypeDesc{}

// RegisterType records a type under its id and returns the type
// object that represents it at runtime.
func RegisterType(id TypeID, name string) *TypeObject {
	obj := &TypeObject{ID: id, Name: name}
	typeRegistry[id] = &TypeDesc{Name: name, Type: obj, Statics: map[string]Object{}}
	return obj
}

// TypeNameFromID resolves an id back to a display name.
func TypeNameFromID(id TypeID) string {
	if id == 0 {
		return "any"
	}
	if desc, ok := typeRegistry[id]; ok {
		return desc.Name
	}
	return "unknown_type"
}

// TypeObjFromID returns the runtime type object registered under id.
func TypeObjFromID(id TypeID) (*TypeObject, bool) {
	desc, ok := typeRegistry[id]
	if !ok || desc.Type == nil {
		return nil, false
	}
	return desc.Type, true
}

// CastFn converts an object into another type.
type CastFn func(Object) (Object, error)

var castRegistry = map[[2]TypeID]CastFn{}

// RegisterCast records a conversion edge in the cast graph.
func RegisterCast(from, to TypeID, fn CastFn) {
	castRegistry[[2]TypeID{from, to}] = fn
}

// CastTo converts obj to the target type.  A cast from T to T is
// identity; a missing edge is a CastError.
func CastTo(obj Object, to TypeID) (Object, error) {
	from := obj.TypeID()
	if from == to {
		return obj, nil
	}
	if fn, ok := castRegistry[[2]TypeID{from, to}]; ok {
		return fn(obj)
	}
	return nil, NewRuntimeErrorf("CastError", "Cannot cast <%s> to <%s>",
		obj.TypeName(), TypeNameFromID(to))
}
