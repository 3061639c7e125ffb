package runeway

import "fmt"

var moduleType lazyTypeID

// ModuleTypeID returns the type id of `module`.
func ModuleTypeID() TypeID { return moduleType.get() }

// ModuleObject wraps a loaded library environment so `import p as m`
// can hand it to user code as a value.
type ModuleObject struct {
	baseObject
	Path string
	Env  *Environment
}

func NewModule(path string, env *Environment) *ModuleObject {
	return &ModuleObject{Path: path, Env: env}
}

func (o *ModuleObject) TypeID() TypeID   { return ModuleTypeID() }
func (o *ModuleObject) TypeName() string { return "module" }
func (o *ModuleObject) Raw() any         { return o.Env }

func (o *ModuleObject) Display() string {
	return fmt.Sprintf("<MODULE::%s>", o.Path)
}

func (o *ModuleObject) GetAttr(name string) (Object, bool) {
	return o.Env.Get(name)
}
