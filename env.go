package runeway

import (
	"github.com/agnivade/levenshtein"
)

// Environment is a lexical scope node: a name table chained through
// an optional parent.  Functions share the namespace with variables
// since a function is just an object implementing the call hook.
type Environment struct {
	parent *Environment
	names  map[string]Object
}

// NewGlobalEnv creates a root scope with no parent.
func NewGlobalEnv() *Environment {
	return &Environment{names: map[string]Object{}}
}

// NewEnclosedEnv creates a scope nested inside parent.
func NewEnclosedEnv(parent *Environment) *Environment {
	return &Environment{parent: parent, names: map[string]Object{}}
}

// Define binds a name locally, shadowing any outer binding.
func (e *Environment) Define(name string, value Object) {
	e.names[name] = value
}

// DefineFunction binds a native function under its own name.
func (e *Environment) DefineFunction(fn *NativeFunction) {
	e.names[fn.Name] = NewFunctionObject(fn)
}

// Get resolves a name through the scope chain.
func (e *Environment) Get(name string) (Object, bool) {
	for env := e; env != nil; env = env.parent {
		if value, ok := env.names[name]; ok {
			return value, true
		}
	}
	return nil, false
}

// Assign overwrites the binding wherever it was declared.  Assigning
// an unbound name is a NameError enriched with similar names.
func (e *Environment) Assign(name string, value Object) error {
	for env := e; env != nil; env = env.parent {
		if _, ok := env.names[name]; ok {
			env.names[name] = value
			return nil
		}
	}
	return e.nameError(name)
}

func (e *Environment) nameError(name string) *Diagnostic {
	diag := NewRuntimeErrorf("NameError", "Variable '%s' not defined", name)
	if similar := e.FindSimilar(name, 2); len(similar) > 0 {
		diag = diag.WithHelpText("did you mean `" + similar[0] + "`?")
	}
	return diag
}

// Merge copies the other environment's local bindings into this one.
// Used by `import path;` with no alias.
func (e *Environment) Merge(other *Environment) {
	for name, value := range other.names {
		e.names[name] = value
	}
}

// Local returns the binding defined directly in this scope.
func (e *Environment) Local(name string) (Object, bool) {
	value, ok := e.names[name]
	return value, ok
}

// LocalNames lists the names bound directly in this scope.
func (e *Environment) LocalNames() []string {
	names := make([]string, 0, len(e.names))
	for name := range e.names {
		names = append(names, name)
	}
	return names
}

// CollectNames gathers every name reachable through the chain.
func (e *Environment) CollectNames() map[string]struct{} {
	names := map[string]struct{}{}
	for env := e; env != nil; env = env.parent {
		for name := range env.names {
			names[name] = struct{}{}
		}
	}
	return names
}

// FindSimilar returns reachable identifiers within the given
// Levenshtein distance, closest first.
func (e *Environment) FindSimilar(name string, threshold int) []string {
	type scored struct {
		name string
		dist int
	}
	var found []scored
	for candidate := range e.CollectNames() {
		if dist := levenshtein.ComputeDistance(candidate, name); dist <= threshold {
			found = append(found, scored{candidate, dist})
		}
	}
	// closest first, ties alphabetical so suggestions are stable
	for i := 1; i < len(found); i++ {
		for j := i; j > 0; j-- {
			a, b := found[j-1], found[j]
			if b.dist < a.dist || (b.dist == a.dist && b.name < a.name) {
				found[j-1], found[j] = b, a
			} else {
				break
			}
		}
	}
	names := make([]string, len(found))
	for i, f := range found {
		names[i] = f.name
	}
	return names
}
