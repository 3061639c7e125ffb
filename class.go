package runeway

import "fmt"

// ClassObject backs user-defined classes.  The declaration allocates
// a fresh type id and an environment of static fields; calling the
// class produces an instance whose environment nests inside the
// class's one.
type ClassObject struct {
	baseObject
	id         TypeID
	Name       string
	Fields     *Environment
	IsInstance bool

	// boundary marks where attribute lookups stop, so instance
	// fields and class statics resolve but the surrounding scope
	// does not leak through GetAttr.
	boundary *Environment
}

// NewClass allocates the class object for a `class` declaration.
// The static-field environment is enclosed in outer so method bodies
// and static initialisers see the surrounding scope; attribute reads
// stop at the class boundary.
func NewClass(name string, outer *Environment) *ClassObject {
	id := nextTypeID()
	// classes take part in type-name lookups like any built-in
	typeRegistry[id] = &TypeDesc{Name: name}
	return &ClassObject{
		id:       id,
		Name:     name,
		Fields:   NewEnclosedEnv(outer),
		boundary: outer,
	}
}

func (o *ClassObject) TypeID() TypeID   { return o.id }
func (o *ClassObject) TypeName() string { return o.Name }
func (o *ClassObject) Raw() any         { return o.Fields }

func (o *ClassObject) Display() string {
	if o.IsInstance {
		return fmt.Sprintf("<%s instance#%d>", o.Name, o.id)
	}
	return fmt.Sprintf("<%s#%d>", o.Name, o.id)
}

func (o *ClassObject) GetAttr(name string) (Object, bool) {
	for env := o.Fields; env != nil && env != o.boundary; env = env.parent {
		if value, ok := env.Local(name); ok {
			return value, true
		}
	}
	return nil, false
}

func (o *ClassObject) SetAttr(name string, value Object) error {
	o.Fields.Define(name, value)
	return nil
}

// Calling the class constructs an instance.
func (o *ClassObject) Call(args []Object) (Object, bool, error) {
	if o.IsInstance {
		return nil, false, nil
	}
	if len(args) != 0 {
		return nil, true, NewRuntimeErrorf("ArgumentsError",
			"Function <%s(...)> expects 0 argument(s), but %d were provided.", o.Name, len(args))
	}
	instance := &ClassObject{
		id:         o.id,
		Name:       o.Name,
		Fields:     NewEnclosedEnv(o.Fields),
		IsInstance: true,
		boundary:   o.boundary,
	}
	return instance, true, nil
}
