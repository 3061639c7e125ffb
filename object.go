package runeway

// TypeID is a process-wide 64-bit type identifier.  Id 0 is reserved
// as the "any" wildcard used in parameter lists.
type TypeID uint64

// Object is the capability implemented by every runtime value.
// Absent capabilities are signalled through the ok results instead of
// errors, so callers decide which diagnostic to raise.
type Object interface {
	// TypeID returns the stable type id of the value.
	TypeID() TypeID
	// TypeName is the human readable type name used in errors.
	TypeName() string
	// Display is the canonical rendering used by to_string,
	// f-strings and the REPL.
	Display() string
	// Raw exposes the underlying Go value for dynamic downcasts.
	Raw() any
	// GetAttr resolves a named field or method.
	GetAttr(name string) (Object, bool)
	// SetAttr writes a field; immutable receivers return an error.
	SetAttr(name string, value Object) error
	// BinaryOp applies a binary operator with this value on the
	// left; ok is false when the operation is not defined.
	BinaryOp(op BinaryOp, rhs Object) (Object, bool)
	// UnaryOp applies a unary operator.
	UnaryOp(op UnaryOp) (Object, bool)
	// Call invokes the value; ok is false for non-callables.
	Call(args []Object) (Object, bool, error)
}

// baseObject provides the absent defaults for the optional parts of
// the Object capability.  Concrete types embed it and override what
// they support.
type baseObject struct{}

func (baseObject) GetAttr(string) (Object, bool) { return nil, false }

func (baseObject) SetAttr(name string, _ Object) error {
	return NewRuntimeErrorf("AttributeError", "Cannot set attribute `%s`", name)
}

func (baseObject) BinaryOp(BinaryOp, Object) (Object, bool) { return nil, false }

func (baseObject) UnaryOp(UnaryOp) (Object, bool) { return nil, false }

func (baseObject) Call([]Object) (Object, bool, error) { return nil, false, nil }

// Identical reports whether two references point at the same heap
// cell.  Objects are always held behind pointers, so interface
// equality is identity.
func Identical(a, b Object) bool {
	return a == b
}
