package runeway

import (
	"path/filepath"
	"strings"
)

// ConstKind tags entries of the application constant table.  Strings
// are the only kind so far.
type ConstKind byte

const (
	ConstKind_Str ConstKind = iota
)

type ConstValue struct {
	Kind ConstKind
	Str  string
}

func ConstStr(s string) ConstValue {
	return ConstValue{Kind: ConstKind_Str, Str: s}
}

// ItemKind tags the top-level items of a compiled user module.
type ItemKind byte

const (
	ItemKind_Function ItemKind = iota
	ItemKind_Import
)

// CompiledFunction is a parameter-name list plus an ordered opcode
// stream.
type CompiledFunction struct {
	Parameters []string
	Ops        []Opcode
}

// CompiledItem is one top-level item of a user module: a function
// definition or an import directive resolved at VM load time.
type CompiledItem struct {
	Kind     ItemKind
	Name     string
	Function CompiledFunction

	ImportPath  string
	ImportKind  ImportItemKind
	ImportAlias string
	Symbols     []ImportSymbol
}

// CompiledModule is either a stub referring to a host-provided
// standard library loader, or a sequence of compiled items.
type CompiledModule struct {
	Standard bool
	Name     string
	Items    []CompiledItem
}

// CompiledApplication is the bytecode container: entry point,
// deduplicated constants, and the ordered module list.
type CompiledApplication struct {
	EntryModule   int
	EntryFunction string
	Consts        []ConstValue
	Modules       []CompiledModule
}

// AddConst deduplicates on insertion; the table stays small enough
// for a linear scan.
func (a *CompiledApplication) AddConst(value ConstValue) int {
	for i, existing := range a.Consts {
		if existing == value {
			return i
		}
	}
	a.Consts = append(a.Consts, value)
	return len(a.Consts) - 1
}

// Compiler lowers parsed modules into a CompiledApplication.  Only
// the statement subset with a direct opcode mapping is accepted.
// Control flow emits forward jumps that are patched once the target
// position is known.
type Compiler struct {
	rt        *Runtime
	app       *CompiledApplication
	moduleIDs map[string]int

	// emission state of the function currently being compiled
	ops        []Opcode
	breakJumps [][]int
	loopStarts []int
}

// CompileApplication compiles the entry module and everything it
// imports.
func (rt *Runtime) CompileApplication(entryModule, entryFunction string) (*CompiledApplication, error) {
	c := &Compiler{
		rt:        rt,
		app:       &CompiledApplication{EntryFunction: entryFunction},
		moduleIDs: map[string]int{},
	}
	id, err := c.compileModule(entryModule)
	if err != nil {
		return nil, err
	}
	c.app.EntryModule = id
	return c.app, nil
}

func (c *Compiler) compileModule(path string) (int, error) {
	if strings.HasPrefix(path, "std::") {
		if id, ok := c.moduleIDs[path]; ok {
			return id, nil
		}
		id := len(c.app.Modules)
		c.moduleIDs[path] = id
		c.app.Modules = append(c.app.Modules, CompiledModule{Standard: true, Name: path})
		return id, nil
	}

	canonical, err := c.resolveModulePath(path)
	if err != nil {
		return 0, err
	}
	if id, ok := c.moduleIDs[canonical]; ok {
		return id, nil
	}

	src, err := c.rt.Files.Load(canonical)
	if err != nil {
		return 0, NewRuntimeErrorf("FileSystemError", "Cannot read file: %s", canonical)
	}
	srcID, err := c.rt.AddSource(canonical, src)
	if err != nil {
		return 0, err
	}
	stmts, diags := c.rt.Parse(srcID)
	if len(diags) > 0 {
		return 0, diags[0]
	}

	// reserve the slot first so import cycles terminate
	id := len(c.app.Modules)
	c.moduleIDs[canonical] = id
	c.app.Modules = append(c.app.Modules, CompiledModule{Name: canonical})

	var items []CompiledItem
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *ActStmt:
			fn, err := c.compileFunction(s)
			if err != nil {
				return 0, err
			}
			items = append(items, CompiledItem{
				Kind:     ItemKind_Function,
				Name:     s.Name,
				Function: fn,
			})
		case *ImportStmt:
			if _, err := c.compileModule(s.Path); err != nil {
				return 0, err
			}
			key := s.Path
			if !strings.HasPrefix(key, "std::") {
				key, _ = c.resolveModulePath(s.Path)
			}
			// spans are not persisted; keep only the symbol names
			symbols := make([]ImportSymbol, len(s.Symbols))
			for i, sym := range s.Symbols {
				symbols[i] = ImportSymbol{Original: sym.Original, Alias: sym.Alias}
			}
			if len(symbols) == 0 {
				symbols = nil
			}
			items = append(items, CompiledItem{
				Kind:        ItemKind_Import,
				ImportPath:  key,
				ImportKind:  s.Kind,
				ImportAlias: s.Alias,
				Symbols:     symbols,
			})
		default:
			return 0, NewRuntimeErrorf("SyntaxError",
				"statement %s is not supported by the bytecode compiler at module level",
				StmtName(stmt)).WithLabel(stmt.Span())
		}
	}
	c.app.Modules[id].Items = items
	return id, nil
}

// resolveModulePath appends the conventional extension, resolves
// against the working dir and canonicalises.
func (c *Compiler) resolveModulePath(path string) (string, error) {
	if !strings.HasSuffix(path, ".rnw") {
		path += ".rnw"
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(c.rt.WorkDir, path)
	}
	if !c.rt.Files.Exists(path) {
		return "", NewRuntimeErrorf("FileSystemError",
			"Path is not a file or it does not exists: %s", path)
	}
	canonical, err := canonicalPath(path)
	if err != nil {
		return "", NewRuntimeErrorf("FileSystemError",
			"Cannot canonicalize path: %s", path)
	}
	return canonical, nil
}

// emit appends one opcode and returns its position.
func (c *Compiler) emit(op Opcode) int {
	c.ops = append(c.ops, op)
	return len(c.ops) - 1
}

// patch retargets a previously emitted jump.
func (c *Compiler) patch(at, target int) {
	c.ops[at].Idx = target
}

func (c *Compiler) compileFunction(s *ActStmt) (CompiledFunction, error) {
	params := make([]string, len(s.Params))
	for i, param := range s.Params {
		params[i] = param.Name
	}

	saved := c.ops
	c.ops = nil
	err := c.compileStatements(s.Body)
	ops := c.ops
	c.ops = saved
	if err != nil {
		return CompiledFunction{}, err
	}
	return CompiledFunction{Parameters: params, Ops: ops}, nil
}

func (c *Compiler) compileStatements(stmts []Stmt) error {
	for _, stmt := range stmts {
		if err := c.compileStatement(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (c *Compiler) compileStatement(stmt Stmt) error {
	switch s := stmt.(type) {
	case *ExprStmt:
		if err := c.compileExpr(s.Expr); err != nil {
			return err
		}
		c.emit(Op(Opcode_Pop))
		return nil

	case *LetStmt:
		if s.Value != nil {
			if err := c.compileExpr(s.Value); err != nil {
				return err
			}
		} else {
			c.emit(Op(Opcode_PushNull))
		}
		c.emit(OpDefineFast(s.Name))
		return nil

	case *AssignStmt:
		if err := c.compileExpr(s.Value); err != nil {
			return err
		}
		c.emit(OpStoreFast(s.Name))
		return nil

	case *ReturnStmt:
		if s.Value != nil {
			if err := c.compileExpr(s.Value); err != nil {
				return err
			}
		} else {
			c.emit(Op(Opcode_PushNull))
		}
		c.emit(Op(Opcode_Return))
		return nil

	case *IfStmt:
		if err := c.compileExpr(s.Cond); err != nil {
			return err
		}
		jumpElse := c.emit(OpJumpIfFalse(0))
		if err := c.compileStatements(s.Then); err != nil {
			return err
		}
		if s.Else == nil {
			c.patch(jumpElse, len(c.ops))
			return nil
		}
		jumpEnd := c.emit(OpJump(0))
		c.patch(jumpElse, len(c.ops))
		if err := c.compileStatements(s.Else); err != nil {
			return err
		}
		c.patch(jumpEnd, len(c.ops))
		return nil

	case *WhileStmt:
		start := len(c.ops)
		if err := c.compileExpr(s.Cond); err != nil {
			return err
		}
		jumpEnd := c.emit(OpJumpIfFalse(0))

		c.breakJumps = append(c.breakJumps, nil)
		c.loopStart(start)
		err := c.compileStatements(s.Body)
		breaks := c.breakJumps[len(c.breakJumps)-1]
		c.breakJumps = c.breakJumps[:len(c.breakJumps)-1]
		c.loopEnd()
		if err != nil {
			return err
		}

		c.emit(OpJump(start))
		end := len(c.ops)
		c.patch(jumpEnd, end)
		for _, at := range breaks {
			c.patch(at, end)
		}
		return nil

	case *BreakStmt:
		if len(c.breakJumps) == 0 {
			return NewSyntaxError("unexpected-token").
				WithArg("token", "break").WithLabel(s.Span())
		}
		at := c.emit(OpJump(0))
		c.breakJumps[len(c.breakJumps)-1] = append(c.breakJumps[len(c.breakJumps)-1], at)
		return nil

	case *ContinueStmt:
		if len(c.loopStarts) == 0 {
			return NewSyntaxError("unexpected-token").
				WithArg("token", "continue").WithLabel(s.Span())
		}
		c.emit(OpJump(c.loopStarts[len(c.loopStarts)-1]))
		return nil

	default:
		return NewRuntimeErrorf("SyntaxError",
			"statement %s is not supported by the bytecode compiler", StmtName(stmt)).
			WithLabel(stmt.Span())
	}
}

func (c *Compiler) compileExpr(expr Expr) error {
	switch e := expr.(type) {
	case *IntLit:
		c.emit(OpPushInt(e.Value))
	case *UIntLit:
		c.emit(OpPushUInt(e.Value))
	case *FloatLit:
		c.emit(OpPushFloat(e.Value))
	case *BoolLit:
		if e.Value {
			c.emit(Op(Opcode_PushTrue))
		} else {
			c.emit(Op(Opcode_PushFalse))
		}
	case *NullLit:
		c.emit(Op(Opcode_PushNull))
	case *StringLit:
		c.emit(OpLoadConst(c.app.AddConst(ConstStr(e.Value))))
	case *VarExpr:
		c.emit(OpLoadFast(e.Name))
	case *ParenExpr:
		return c.compileExpr(e.Inner)

	case *UnaryExpr:
		if err := c.compileExpr(e.Operand); err != nil {
			return err
		}
		switch e.Op {
		case UnaryOp_Neg:
			c.emit(Op(Opcode_Neg))
		case UnaryOp_Not:
			c.emit(Op(Opcode_Not))
		default:
			return c.unsupportedExpr(expr)
		}

	case *BinaryExpr:
		if e.Op == BinaryOp_And || e.Op == BinaryOp_Or {
			return c.compileShortCircuit(e)
		}
		kind, ok := binaryOpcode(e.Op)
		if !ok {
			return c.unsupportedExpr(expr)
		}
		if err := c.compileExpr(e.Left); err != nil {
			return err
		}
		if err := c.compileExpr(e.Right); err != nil {
			return err
		}
		c.emit(Op(kind))

	case *CallExpr:
		// arguments in source order, then the callee on top
		for _, arg := range e.Args {
			if err := c.compileExpr(arg); err != nil {
				return err
			}
		}
		if err := c.compileExpr(e.Callee); err != nil {
			return err
		}
		c.emit(OpCall(len(e.Args)))

	case *ListLit:
		for _, item := range e.Items {
			if err := c.compileExpr(item); err != nil {
				return err
			}
		}
		c.emit(OpBuildList(len(e.Items)))

	case *TupleLit:
		for _, item := range e.Items {
			if err := c.compileExpr(item); err != nil {
				return err
			}
		}
		c.emit(OpBuildTuple(len(e.Items)))

	case *DictLit:
		for i := range e.Keys {
			if err := c.compileExpr(e.Keys[i]); err != nil {
				return err
			}
			if err := c.compileExpr(e.Values[i]); err != nil {
				return err
			}
		}
		c.emit(OpBuildDict(len(e.Keys)))

	default:
		return c.unsupportedExpr(expr)
	}
	return nil
}

// compileShortCircuit lowers `and`/`or` with Dup and a conditional
// jump over the right operand.
func (c *Compiler) compileShortCircuit(e *BinaryExpr) error {
	if err := c.compileExpr(e.Left); err != nil {
		return err
	}
	jump := OpJumpIfFalse(0)
	if e.Op == BinaryOp_Or {
		jump = OpJumpIfTrue(0)
	}
	c.emit(Op(Opcode_Dup))
	at := c.emit(jump)
	c.emit(Op(Opcode_Pop))
	if err := c.compileExpr(e.Right); err != nil {
		return err
	}
	c.patch(at, len(c.ops))
	return nil
}

func (c *Compiler) unsupportedExpr(expr Expr) *Diagnostic {
	return NewRuntimeErrorf("SyntaxError",
		"expression is not supported by the bytecode compiler").
		WithLabel(expr.Span())
}

func (c *Compiler) loopStart(start int) {
	c.loopStarts = append(c.loopStarts, start)
}

func (c *Compiler) loopEnd() {
	c.loopStarts = c.loopStarts[:len(c.loopStarts)-1]
}
