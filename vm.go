package runeway

// VM executes a CompiledApplication on an evaluation stack of object
// references.  Module environments are created at load time, all
// enclosed in the builtins root; each call runs against a fresh
// environment enclosed in its module's one.
type VM struct {
	rt  *Runtime
	app *CompiledApplication

	moduleEnvs []*Environment
}

// NewVM loads every module of the application: standard modules go
// through the stdlib registry, user modules define their functions
// and resolve their imports in order.
func NewVM(rt *Runtime, app *CompiledApplication) (*VM, error) {
	vm := &VM{rt: rt, app: app}

	for i := range app.Modules {
		module := &app.Modules[i]
		if module.Standard {
			env, err := rt.LoadLibrary(module.Name)
			if err != nil {
				return nil, err
			}
			vm.moduleEnvs = append(vm.moduleEnvs, env)
			continue
		}
		vm.moduleEnvs = append(vm.moduleEnvs, NewEnclosedEnv(rt.Builtins()))
	}

	// two passes: every module's functions exist before any import
	// links against them
	for i := range app.Modules {
		if app.Modules[i].Standard {
			continue
		}
		env := vm.moduleEnvs[i]
		for _, item := range app.Modules[i].Items {
			if item.Kind == ItemKind_Function {
				env.DefineFunction(vm.loadFunction(item.Name, item.Function, env))
			}
		}
	}
	for i := range app.Modules {
		if app.Modules[i].Standard {
			continue
		}
		env := vm.moduleEnvs[i]
		for _, item := range app.Modules[i].Items {
			if item.Kind == ItemKind_Import {
				if err := vm.linkImport(env, item); err != nil {
					return nil, err
				}
			}
		}
	}
	return vm, nil
}

// linkImport binds another module's environment into env, mirroring
// the interpreter's import semantics.
func (vm *VM) linkImport(env *Environment, item CompiledItem) error {
	target := -1
	for i := range vm.app.Modules {
		if vm.app.Modules[i].Name == item.ImportPath {
			target = i
			break
		}
	}
	if target < 0 {
		return NewRuntimeErrorf("FileSystemError",
			"Cannot load the library '%s'", item.ImportPath)
	}
	library := vm.moduleEnvs[target]

	switch item.ImportKind {
	case ImportItemKind_Alias:
		env.Define(item.ImportAlias, NewModule(item.ImportPath, library))
	case ImportItemKind_All:
		env.Merge(library)
	case ImportItemKind_Selective:
		for _, sym := range item.Symbols {
			value, ok := library.Local(sym.Original)
			if !ok {
				return NewRuntimeErrorf("NameError",
					"Cannot import `%s` from `%s`", sym.Original, item.ImportPath)
			}
			name := sym.Original
			if sym.Alias != "" {
				name = sym.Alias
			}
			env.Define(name, value)
		}
	}
	return nil
}

// loadFunction wraps a compiled function as a native descriptor whose
// body runs the opcode stream.
func (vm *VM) loadFunction(name string, fn CompiledFunction, moduleEnv *Environment) *NativeFunction {
	params := make([]TypeID, len(fn.Parameters))

	return NewNativeFunction(name, func(args []Object) (Object, error) {
		env := NewEnclosedEnv(moduleEnv)
		for i, param := range fn.Parameters {
			env.Define(param, args[i])
		}
		return vm.execOps(fn.Ops, env)
	}, params)
}

// Run calls the entry function with no arguments and maps the result
// to an exit code.
func (vm *VM) Run() (int, error) {
	env := vm.moduleEnvs[vm.app.EntryModule]
	fn, ok := env.Get(vm.app.EntryFunction)
	if !ok {
		return 1, NewErrorWithCode("NameError", "entry-not-found").
			WithArg("name", vm.app.EntryFunction)
	}
	result, callable, err := fn.Call(nil)
	if err != nil {
		return 1, err
	}
	if !callable {
		return 1, NewRuntimeErrorf("TypeError", "<%s> is not callable", fn.TypeName())
	}
	if IsNull(result) {
		return 0, nil
	}
	if code, ok := result.(*IntObject); ok {
		return int(code.Value), nil
	}
	return 1, NewErrorWithCode("TypeError", "entry-bad-return").
		WithArg("name", vm.app.EntryFunction).
		WithArg("type", result.TypeName())
}

// execOps is the dispatch loop.  Errors from the object model
// propagate out and unwind the stack with the frame.
func (vm *VM) execOps(ops []Opcode, env *Environment) (Object, error) {
	var stack []Object

	push := func(obj Object) {
		stack = append(stack, obj)
	}
	pop := func() (Object, error) {
		if len(stack) == 0 {
			return nil, NewRuntimeError("", "stack underflow")
		}
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return top, nil
	}

	for pc := 0; pc < len(ops); {
		op := ops[pc]
		vm.rt.Log.WithField("pc", pc).Trace(op.String())

		switch op.Kind {
		case Opcode_NoOp:
			pc++

		case Opcode_Pop:
			if _, err := pop(); err != nil {
				return nil, err
			}
			pc++

		case Opcode_Dup:
			top, err := pop()
			if err != nil {
				return nil, err
			}
			push(top)
			push(top)
			pc++

		case Opcode_Halt:
			return NewNull(), nil

		case Opcode_PushInt:
			push(NewInt(op.Int))
			pc++
		case Opcode_PushUInt:
			push(NewUInt(op.UInt))
			pc++
		case Opcode_PushFloat:
			push(NewFloat(op.Float))
			pc++
		case Opcode_PushTrue:
			push(NewBool(true))
			pc++
		case Opcode_PushFalse:
			push(NewBool(false))
			pc++
		case Opcode_PushNull:
			push(NewNull())
			pc++

		case Opcode_LoadConst:
			if op.Idx < 0 || op.Idx >= len(vm.app.Consts) {
				return nil, NewRuntimeErrorf("", "constant index %d out of range", op.Idx)
			}
			value := vm.app.Consts[op.Idx]
			push(NewString(value.Str))
			pc++

		case Opcode_DefineFast:
			value, err := pop()
			if err != nil {
				return nil, err
			}
			env.Define(op.Str, value)
			pc++

		case Opcode_StoreFast:
			value, err := pop()
			if err != nil {
				return nil, err
			}
			if err := env.Assign(op.Str, value); err != nil {
				return nil, err
			}
			pc++

		case Opcode_LoadFast:
			value, ok := env.Get(op.Str)
			if !ok {
				return nil, env.nameError(op.Str)
			}
			push(value)
			pc++

		case Opcode_Neg:
			operand, err := pop()
			if err != nil {
				return nil, err
			}
			result, ok := operand.UnaryOp(UnaryOp_Neg)
			if !ok {
				return nil, NewRuntimeErrorf("OperationError",
					"Unary operation `-%s` is not supported", operand.TypeName())
			}
			push(result)
			pc++

		case Opcode_Not:
			operand, err := pop()
			if err != nil {
				return nil, err
			}
			result, ok := operand.UnaryOp(UnaryOp_Not)
			if !ok {
				return nil, NewRuntimeErrorf("OperationError",
					"Unary operation `!%s` is not supported", operand.TypeName())
			}
			push(result)
			pc++

		case Opcode_Add, Opcode_Sub, Opcode_Mul, Opcode_Div, Opcode_Mod, Opcode_Pow,
			Opcode_Eq, Opcode_NotEq, Opcode_Lt, Opcode_LtEq, Opcode_Gt, Opcode_GtEq:
			right, err := pop()
			if err != nil {
				return nil, err
			}
			left, err := pop()
			if err != nil {
				return nil, err
			}
			binOp, _ := opcodeBinaryOp(op.Kind)
			result, ok := left.BinaryOp(binOp, right)
			if !ok {
				return nil, NewRuntimeErrorf("OperationError",
					"Binary operation `%s %s %s` is not supported",
					left.TypeName(), binOp.Display(), right.TypeName())
			}
			push(result)
			pc++

		case Opcode_Call:
			// callee on top, arguments below in source order
			callee, err := pop()
			if err != nil {
				return nil, err
			}
			args := make([]Object, op.Idx)
			for i := op.Idx - 1; i >= 0; i-- {
				arg, err := pop()
				if err != nil {
					return nil, err
				}
				args[i] = arg
			}
			result, callable, err := callee.Call(args)
			if err != nil {
				return nil, err
			}
			if !callable {
				return nil, NewRuntimeErrorf("TypeError",
					"<%s> is not callable", callee.TypeName())
			}
			push(result)
			pc++

		case Opcode_Return:
			return pop()

		case Opcode_Jump:
			pc = op.Idx

		case Opcode_JumpIfTrue, Opcode_JumpIfFalse:
			cond, err := pop()
			if err != nil {
				return nil, err
			}
			boolean, ok := cond.(*BoolObject)
			if !ok {
				return nil, NewRuntimeErrorf("TypeError",
					"Condition must be a boolean, got <%s>", cond.TypeName())
			}
			if boolean.Value == (op.Kind == Opcode_JumpIfTrue) {
				pc = op.Idx
			} else {
				pc++
			}

		case Opcode_BuildList:
			items, err := popN(&stack, op.Idx)
			if err != nil {
				return nil, err
			}
			push(NewList(items))
			pc++

		case Opcode_BuildTuple:
			items, err := popN(&stack, op.Idx)
			if err != nil {
				return nil, err
			}
			push(NewTuple(items))
			pc++

		case Opcode_BuildDict:
			// 2*n values: key, value pairs in source order
			items, err := popN(&stack, op.Idx*2)
			if err != nil {
				return nil, err
			}
			dict := NewDict()
			for i := 0; i < len(items); i += 2 {
				key, ok := items[i].(*StringObject)
				if !ok {
					return nil, NewRuntimeErrorf("KeyError",
						"Dictionary keys must be strings, got <%s>", items[i].TypeName())
				}
				dict.Insert(key.Value, items[i+1])
			}
			push(dict)
			pc++

		default:
			return nil, NewRuntimeErrorf("", "opcode 0x%02x is not implemented", byte(op.Kind))
		}
	}

	// falling off the end of a function returns null
	return NewNull(), nil
}

// popN removes n values, restoring source order.
func popN(stack *[]Object, n int) ([]Object, error) {
	s := *stack
	if len(s) < n {
		return nil, NewRuntimeError("", "stack underflow")
	}
	items := make([]Object, n)
	copy(items, s[len(s)-n:])
	*stack = s[:len(s)-n]
	return items, nil
}
