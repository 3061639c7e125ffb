package runeway

// controlFlowKind is the token returned by statement execution.
type controlFlowKind int

const (
	controlFlow_Nothing controlFlowKind = iota
	controlFlow_Break
	controlFlow_Continue
	controlFlow_Return
)

type controlFlow struct {
	kind  controlFlowKind
	value Object
}

var flowNothing = controlFlow{kind: controlFlow_Nothing}

// Interp walks the AST directly.  It shares the runtime's source
// map, bundle and module loader with the bytecode path.
type Interp struct {
	rt *Runtime
}

func NewInterp(rt *Runtime) *Interp {
	return &Interp{rt: rt}
}

// ExecuteTopLevel runs a module body.  Only declarations, imports and
// asserts are allowed at module scope.
func (in *Interp) ExecuteTopLevel(env *Environment, stmts []Stmt) error {
	for _, stmt := range stmts {
		switch stmt.(type) {
		case *ActStmt, *ClassStmt, *ImportStmt, *LetStmt, *AssertStmt:
			if _, err := in.execute(env, stmt); err != nil {
				return err
			}
		default:
			return NewErrorWithCode("SyntaxError", "top-level-statement").
				WithArg("statement", StmtName(stmt)).
				WithLabel(stmt.Span())
		}
	}
	return nil
}

func (in *Interp) executeBlock(env *Environment, stmts []Stmt) (controlFlow, error) {
	for _, stmt := range stmts {
		cf, err := in.execute(env, stmt)
		if err != nil {
			return flowNothing, err
		}
		if cf.kind != controlFlow_Nothing {
			return cf, nil
		}
	}
	return flowNothing, nil
}

func (in *Interp) execute(env *Environment, stmt Stmt) (controlFlow, error) {
	switch s := stmt.(type) {
	case *ExprStmt:
		_, err := in.evaluate(env, s.Expr)
		return flowNothing, err

	case *LetStmt:
		var value Object = NewNull()
		if s.Value != nil {
			var err error
			value, err = in.evaluate(env, s.Value)
			if err != nil {
				return flowNothing, err
			}
		}
		env.Define(s.Name, value)
		return flowNothing, nil

	case *AssignStmt:
		value, err := in.evaluate(env, s.Value)
		if err != nil {
			return flowNothing, err
		}
		if err := env.Assign(s.Name, value); err != nil {
			return flowNothing, withSpan(err, s.Span())
		}
		return flowNothing, nil

	case *ReturnStmt:
		if s.Value == nil {
			return controlFlow{kind: controlFlow_Return, value: NewNull()}, nil
		}
		value, err := in.evaluate(env, s.Value)
		if err != nil {
			return flowNothing, err
		}
		return controlFlow{kind: controlFlow_Return, value: value}, nil

	case *BreakStmt:
		return controlFlow{kind: controlFlow_Break}, nil

	case *ContinueStmt:
		return controlFlow{kind: controlFlow_Continue}, nil

	case *IfStmt:
		cond, err := in.evalCondition(env, s.Cond)
		if err != nil {
			return flowNothing, err
		}
		branch := s.Then
		if !cond {
			branch = s.Else
		}
		if branch == nil {
			return flowNothing, nil
		}
		return in.executeBlock(NewEnclosedEnv(env), branch)

	case *WhileStmt:
	loop:
		for {
			cond, err := in.evalCondition(env, s.Cond)
			if err != nil {
				return flowNothing, err
			}
			if !cond {
				break
			}
			cf, err := in.executeBlock(NewEnclosedEnv(env), s.Body)
			if err != nil {
				return flowNothing, err
			}
			switch cf.kind {
			case controlFlow_Break:
				break loop
			case controlFlow_Return:
				return cf, nil
			}
		}
		return flowNothing, nil

	case *ForStmt:
		return in.executeFor(env, s)

	case *ActStmt:
		in.registerAct(env, s)
		return flowNothing, nil

	case *ClassStmt:
		class := NewClass(s.Name, env)
		if _, err := in.executeBlock(class.Fields, s.Body); err != nil {
			return flowNothing, err
		}
		env.Define(s.Name, class)
		return flowNothing, nil

	case *ImportStmt:
		return flowNothing, in.executeImport(env, s)

	case *AssertStmt:
		value, err := in.evaluate(env, s.Cond)
		if err != nil {
			return flowNothing, err
		}
		truthy, err := objectTruth(value)
		if err != nil {
			return flowNothing, withSpan(err, s.Cond.Span())
		}
		if !truthy {
			return flowNothing, NewErrorWithCode("AssertionError", "assertion-failed").
				WithLabel(s.Cond.Span())
		}
		return flowNothing, nil

	default:
		return flowNothing, NewRuntimeErrorf("", "statement %s is not implemented", StmtName(stmt))
	}
}

func (in *Interp) executeFor(env *Environment, s *ForStmt) (controlFlow, error) {
	iterable, err := in.evaluate(env, s.Iterable)
	if err != nil {
		return flowNothing, err
	}
	iterator, err := CastTo(iterable, IteratorTypeID())
	if err != nil {
		return flowNothing, withSpan(err, s.Iterable.Span())
	}
	next, ok := iterator.GetAttr("next")
	if !ok {
		return flowNothing, NewRuntimeErrorf("AttributeError",
			"Method `next` not found in type <%s>", iterator.TypeName()).
			WithLabel(s.Iterable.Span())
	}

loop:
	for {
		value, ok, err := next.Call(nil)
		if err != nil {
			return flowNothing, err
		}
		if !ok {
			return flowNothing, NewRuntimeErrorf("TypeError",
				"<%s> is not callable", next.TypeName())
		}
		if IsNull(value) {
			break
		}

		// a fresh scope per iteration, so closures capturing the
		// loop variable observe distinct bindings
		iterationEnv := NewEnclosedEnv(env)
		iterationEnv.Define(s.Var, value)

		cf, err := in.executeBlock(iterationEnv, s.Body)
		if err != nil {
			return flowNothing, err
		}
		switch cf.kind {
		case controlFlow_Break:
			break loop
		case controlFlow_Return:
			return cf, nil
		}
	}
	return flowNothing, nil
}

// registerAct turns an `act` declaration into a native function whose
// body closes over the defining environment.  Parameter annotations
// that resolve to type objects become argument type checks.
func (in *Interp) registerAct(env *Environment, s *ActStmt) {
	defEnv := env
	body := s.Body
	params := s.Params

	paramTypes := make([]TypeID, len(params))
	for i, param := range params {
		paramTypes[i] = in.resolveAnnotation(env, param.Annotation)
	}

	fn := NewNativeFunction(s.Name, func(args []Object) (Object, error) {
		callEnv := NewEnclosedEnv(defEnv)
		for i, param := range params {
			callEnv.Define(param.Name, args[i])
		}
		cf, err := in.executeBlock(callEnv, body)
		if err != nil {
			return nil, err
		}
		if cf.kind == controlFlow_Return {
			return cf.value, nil
		}
		return NewNull(), nil
	}, paramTypes)

	if returnType := in.resolveAnnotation(env, s.ReturnAnnotation); returnType != 0 {
		fn.WithReturnType(returnType)
	}

	env.DefineFunction(fn)
}

func (in *Interp) resolveAnnotation(env *Environment, annotation *Spanned[string]) TypeID {
	if annotation == nil {
		return 0
	}
	if obj, ok := env.Get(annotation.Node); ok {
		if typeObj, ok := obj.(*TypeObject); ok {
			return typeObj.ID
		}
	}
	return 0
}

func (in *Interp) executeImport(env *Environment, s *ImportStmt) error {
	library, err := in.rt.LoadLibrary(s.Path)
	if err != nil {
		return withSpan(err, s.PathSpan)
	}

	switch s.Kind {
	case ImportItemKind_Alias:
		env.Define(s.Alias, NewModule(s.Path, library))
	case ImportItemKind_All:
		env.Merge(library)
	case ImportItemKind_Selective:
		for _, sym := range s.Symbols {
			value, ok := library.Local(sym.Original)
			if !ok {
				return NewRuntimeErrorf("NameError",
					"Cannot import `%s` from `%s`", sym.Original, s.Path).
					WithLabel(sym.Span)
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

func (in *Interp) evalCondition(env *Environment, cond Expr) (bool, error) {
	value, err := in.evaluate(env, cond)
	if err != nil {
		return false, err
	}
	boolean, ok := value.(*BoolObject)
	if !ok {
		return false, NewErrorWithCode("TypeError", "condition-not-boolean").
			WithArg("type", value.TypeName()).
			WithLabel(cond.Span())
	}
	return boolean.Value, nil
}

func (in *Interp) evaluate(env *Environment, expr Expr) (Object, error) {
	switch e := expr.(type) {
	case *IntLit:
		return NewInt(e.Value), nil
	case *UIntLit:
		return NewUInt(e.Value), nil
	case *FloatLit:
		return NewFloat(e.Value), nil
	case *BoolLit:
		return NewBool(e.Value), nil
	case *StringLit:
		return NewString(e.Value), nil
	case *NullLit:
		return NewNull(), nil
	case *ParenExpr:
		return in.evaluate(env, e.Inner)

	case *VarExpr:
		if value, ok := env.Get(e.Name); ok {
			return value, nil
		}
		return nil, withSpan(env.nameError(e.Name), e.Span())

	case *ListLit:
		items, err := in.evaluateAll(env, e.Items)
		if err != nil {
			return nil, err
		}
		return NewList(items), nil

	case *TupleLit:
		items, err := in.evaluateAll(env, e.Items)
		if err != nil {
			return nil, err
		}
		return NewTuple(items), nil

	case *DictLit:
		dict := NewDict()
		for i := range e.Keys {
			key, err := in.evaluate(env, e.Keys[i])
			if err != nil {
				return nil, err
			}
			keyStr, ok := key.(*StringObject)
			if !ok {
				return nil, NewRuntimeErrorf("KeyError",
					"Dictionary keys must be strings, got <%s>", key.TypeName()).
					WithLabel(e.Keys[i].Span())
			}
			value, err := in.evaluate(env, e.Values[i])
			if err != nil {
				return nil, err
			}
			dict.Insert(keyStr.Value, value)
		}
		return dict, nil

	case *RangeLit:
		return in.evaluateRange(env, e)

	case *FStringLit:
		return in.evaluateFString(env, e)

	case *UnaryExpr:
		return in.evaluateUnary(env, e)

	case *BinaryExpr:
		return in.evaluateBinary(env, e)

	case *GetAttrExpr:
		obj, err := in.evaluate(env, e.Object)
		if err != nil {
			return nil, err
		}
		if value, ok := obj.GetAttr(e.Field); ok {
			return value, nil
		}
		return nil, NewRuntimeErrorf("AttributeError",
			"Attribute `%s` not found in <%s>", e.Field, obj.TypeName()).
			WithLabel(e.Span())

	case *SetAttrExpr:
		obj, err := in.evaluate(env, e.Object)
		if err != nil {
			return nil, err
		}
		value, err := in.evaluate(env, e.Value)
		if err != nil {
			return nil, err
		}
		if err := obj.SetAttr(e.Field, value); err != nil {
			return nil, withSpan(AsDiagnostic(err), e.Span())
		}
		return value, nil

	case *IndexExpr:
		obj, err := in.evaluate(env, e.Object)
		if err != nil {
			return nil, err
		}
		index, err := in.evaluate(env, e.Index)
		if err != nil {
			return nil, err
		}
		slice, ok := obj.GetAttr("slice")
		if !ok {
			return nil, NewRuntimeErrorf("AttributeError",
				"Method `slice` not found in type <%s>", obj.TypeName()).
				WithLabel(e.Span())
		}
		result, ok, err := slice.Call([]Object{index})
		if err != nil {
			return nil, withSpan(AsDiagnostic(err), e.Span())
		}
		if !ok {
			return nil, NewRuntimeErrorf("TypeError",
				"<%s> is not callable", slice.TypeName()).WithLabel(e.Span())
		}
		return result, nil

	case *CallExpr:
		callee, err := in.evaluate(env, e.Callee)
		if err != nil {
			return nil, err
		}
		args, err := in.evaluateAll(env, e.Args)
		if err != nil {
			return nil, err
		}
		result, ok, err := callee.Call(args)
		if err != nil {
			return nil, withSpan(AsDiagnostic(err), e.Span())
		}
		if !ok {
			return nil, NewRuntimeErrorf("TypeError",
				"<%s> is not callable", callee.TypeName()).WithLabel(e.Callee.Span())
		}
		return result, nil

	default:
		return nil, NewRuntimeErrorf("", "expression %T is not implemented", expr)
	}
}

func (in *Interp) evaluateAll(env *Environment, exprs []Expr) ([]Object, error) {
	items := make([]Object, len(exprs))
	for i, expr := range exprs {
		value, err := in.evaluate(env, expr)
		if err != nil {
			return nil, err
		}
		items[i] = value
	}
	return items, nil
}

func (in *Interp) evaluateRange(env *Environment, e *RangeLit) (Object, error) {
	intBound := func(expr Expr) (int64, error) {
		value, err := in.evaluate(env, expr)
		if err != nil {
			return 0, err
		}
		number, ok := value.(*IntObject)
		if !ok {
			return 0, NewRuntimeErrorf("TypeError",
				"Range bounds must be <int>, got <%s>", value.TypeName()).
				WithLabel(expr.Span())
		}
		return number.Value, nil
	}

	start, err := intBound(e.Start)
	if err != nil {
		return nil, err
	}
	end, err := intBound(e.End)
	if err != nil {
		return nil, err
	}
	step := int64(1)
	if e.Step != nil {
		step, err = intBound(e.Step)
		if err != nil {
			return nil, err
		}
	}
	return NewRangeIterator(start, end, step, e.Inclusive), nil
}

// evaluateFString renders each part in order.  Expression parts that
// already are strings pass through; everything else goes through its
// `to_string` method, which must return a string.
func (in *Interp) evaluateFString(env *Environment, e *FStringLit) (Object, error) {
	var out []byte
	for _, part := range e.Parts {
		if !part.IsExpr {
			out = append(out, part.Literal...)
			continue
		}
		value, err := in.evaluate(env, part.Expr)
		if err != nil {
			return nil, err
		}
		if raw, ok := value.Raw().(string); ok {
			out = append(out, raw...)
			continue
		}
		toString, ok := value.GetAttr("to_string")
		if !ok {
			return nil, NewRuntimeErrorf("AttributeError",
				"Method `to_string` not found in type <%s>", value.TypeName()).
				WithLabel(part.Expr.Span())
		}
		rendered, ok, err := toString.Call(nil)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, NewRuntimeErrorf("TypeError",
				"<%s> is not callable", toString.TypeName())
		}
		str, ok := rendered.(*StringObject)
		if !ok {
			return nil, NewRuntimeErrorf("TypeError",
				"`to_string` must return a string, got <%s>", rendered.TypeName()).
				WithLabel(part.Expr.Span())
		}
		out = append(out, str.Value...)
	}
	return NewString(string(out)), nil
}

func (in *Interp) evaluateUnary(env *Environment, e *UnaryExpr) (Object, error) {
	operand, err := in.evaluate(env, e.Operand)
	if err != nil {
		return nil, err
	}
	result, ok := operand.UnaryOp(e.Op)
	if !ok {
		return nil, NewRuntimeErrorf("OperationError",
			"Unary operation `%s%s` is not supported",
			e.Op.Display(), operand.TypeName()).
			WithLabel(e.Span())
	}

	// increment and decrement write back through variables
	if e.Op == UnaryOp_Inc || e.Op == UnaryOp_Dec {
		if variable, isVar := e.Operand.(*VarExpr); isVar {
			if err := env.Assign(variable.Name, result); err != nil {
				return nil, withSpan(AsDiagnostic(err), e.Span())
			}
		}
		if e.Postfix {
			return operand, nil
		}
	}
	return result, nil
}

func (in *Interp) evaluateBinary(env *Environment, e *BinaryExpr) (Object, error) {
	left, err := in.evaluate(env, e.Left)
	if err != nil {
		return nil, err
	}
	right, err := in.evaluate(env, e.Right)
	if err != nil {
		return nil, err
	}

	// `is` compares identity on class instances and falls back to
	// equality on primitives
	if e.Op == BinaryOp_Is {
		if isClassInstance(left) || isClassInstance(right) {
			return NewBool(Identical(left, right)), nil
		}
		if result, ok := left.BinaryOp(BinaryOp_Eq, right); ok {
			return result, nil
		}
		// values of unrelated types are never the same
		return NewBool(false), nil
	}

	if result, ok := left.BinaryOp(e.Op, right); ok {
		return result, nil
	}
	return nil, in.operationError(left, e.Op, right, e.Span())
}

func (in *Interp) operationError(left Object, op BinaryOp, right Object, span Span) error {
	return NewRuntimeErrorf("OperationError",
		"Binary operation `%s %s %s` is not supported",
		left.TypeName(), op.Display(), right.TypeName()).
		WithLabel(span)
}

func isClassInstance(obj Object) bool {
	class, ok := obj.(*ClassObject)
	return ok && class.IsInstance
}

// ExecuteRepl runs a single statement for the interactive loop.
// Expression statements come back rendered; everything else runs for
// its effect and returns an empty string.
func (in *Interp) ExecuteRepl(env *Environment, stmt Stmt) (string, error) {
	if es, ok := stmt.(*ExprStmt); ok {
		value, err := in.evaluate(env, es.Expr)
		if err != nil {
			return "", err
		}
		if IsNull(value) {
			return "", nil
		}
		return value.Display(), nil
	}
	_, err := in.execute(env, stmt)
	return "", err
}

// Entry calls the designated entry function with no arguments and
// maps the result to a process exit code.
func (in *Interp) Entry(env *Environment, name string) (int, error) {
	fn, ok := env.Get(name)
	if !ok {
		return 1, NewErrorWithCode("NameError", "entry-not-found").
			WithArg("name", name)
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
		WithArg("name", name).
		WithArg("type", result.TypeName())
}

// objectTruth maps an object onto a boolean, going through the cast
// graph for non-boolean values.
func objectTruth(obj Object) (bool, error) {
	if boolean, ok := obj.(*BoolObject); ok {
		return boolean.Value, nil
	}
	casted, err := CastTo(obj, BoolTypeID())
	if err != nil {
		return false, NewRuntimeErrorf("TypeError",
			"Expected a boolean condition, got <%s>", obj.TypeName())
	}
	return casted.(*BoolObject).Value, nil
}

// withSpan attaches a label to a diagnostic that has none yet.
func withSpan(err error, span Span) error {
	diag := AsDiagnostic(err)
	if len(diag.Labels) == 0 {
		diag.WithLabel(span)
	}
	return diag
}
