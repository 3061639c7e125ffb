package runeway

import "fmt"

// OpKind is the one-byte opcode tag.  Values are grouped by family;
// changing them breaks previously persisted bytecode.
type OpKind byte

const (
	// Group 0x0: general
	Opcode_NoOp OpKind = 0x00
	Opcode_Pop  OpKind = 0x01
	Opcode_Dup  OpKind = 0x02
	Opcode_Halt OpKind = 0x03

	// Group 0x1: literals and constants
	Opcode_PushInt   OpKind = 0x10
	Opcode_PushFloat OpKind = 0x11
	Opcode_PushTrue  OpKind = 0x12
	Opcode_PushFalse OpKind = 0x13
	Opcode_PushNull  OpKind = 0x14
	Opcode_LoadConst OpKind = 0x15
	Opcode_PushUInt  OpKind = 0x16

	// Group 0x2: variables
	Opcode_DefineFast OpKind = 0x20
	Opcode_StoreFast  OpKind = 0x21
	Opcode_LoadFast   OpKind = 0x22

	// Group 0x3: unary ops
	Opcode_Neg OpKind = 0x30
	Opcode_Not OpKind = 0x31

	// Group 0x4: binary ops
	Opcode_Add OpKind = 0x40
	Opcode_Sub OpKind = 0x41
	Opcode_Mul OpKind = 0x42
	Opcode_Div OpKind = 0x43
	Opcode_Mod OpKind = 0x44
	Opcode_Pow OpKind = 0x45

	// Group 0x5: compare ops
	Opcode_Eq    OpKind = 0x50
	Opcode_NotEq OpKind = 0x51
	Opcode_Lt    OpKind = 0x52
	Opcode_LtEq  OpKind = 0x53
	Opcode_Gt    OpKind = 0x54
	Opcode_GtEq  OpKind = 0x55

	// Group 0x6: functions
	Opcode_Call   OpKind = 0x60
	Opcode_Return OpKind = 0x61

	// Group 0x7: flow control
	Opcode_Jump        OpKind = 0x70
	Opcode_JumpIfTrue  OpKind = 0x71
	Opcode_JumpIfFalse OpKind = 0x72

	// Group 0x8: complex building
	Opcode_BuildList  OpKind = 0x80
	Opcode_BuildTuple OpKind = 0x81
	Opcode_BuildDict  OpKind = 0x82
)

var opKindNames = map[OpKind]string{
	Opcode_NoOp:        "NoOp",
	Opcode_Pop:         "Pop",
	Opcode_Dup:         "Dup",
	Opcode_Halt:        "Halt",
	Opcode_PushInt:     "PushInt",
	Opcode_PushUInt:    "PushUInt",
	Opcode_PushFloat:   "PushFloat",
	Opcode_PushTrue:    "PushTrue",
	Opcode_PushFalse:   "PushFalse",
	Opcode_PushNull:    "PushNull",
	Opcode_LoadConst:   "LoadConst",
	Opcode_DefineFast:  "DefineFast",
	Opcode_StoreFast:   "StoreFast",
	Opcode_LoadFast:    "LoadFast",
	Opcode_Neg:         "Neg",
	Opcode_Not:         "Not",
	Opcode_Add:         "Add",
	Opcode_Sub:         "Sub",
	Opcode_Mul:         "Mul",
	Opcode_Div:         "Div",
	Opcode_Mod:         "Mod",
	Opcode_Pow:         "Pow",
	Opcode_Eq:          "Eq",
	Opcode_NotEq:       "NotEq",
	Opcode_Lt:          "Lt",
	Opcode_LtEq:        "LtEq",
	Opcode_Gt:          "Gt",
	Opcode_GtEq:        "GtEq",
	Opcode_Call:        "Call",
	Opcode_Return:      "Return",
	Opcode_Jump:        "Jump",
	Opcode_JumpIfTrue:  "JumpIfTrue",
	Opcode_JumpIfFalse: "JumpIfFalse",
	Opcode_BuildList:   "BuildList",
	Opcode_BuildTuple:  "BuildTuple",
	Opcode_BuildDict:   "BuildDict",
}

// Opcode is one instruction of the stack VM.  Operand fields are
// meaningful per kind: Int/UInt/Float for pushes, Str for the *Fast
// family, Idx for constants, call arity, jump targets and build
// sizes.
type Opcode struct {
	Kind  OpKind
	Int   int64
	UInt  uint64
	Float float64
	Str   string
	Idx   int
}

func OpPushInt(v int64) Opcode    { return Opcode{Kind: Opcode_PushInt, Int: v} }
func OpPushUInt(v uint64) Opcode  { return Opcode{Kind: Opcode_PushUInt, UInt: v} }
func OpPushFloat(v float64) Opcode { return Opcode{Kind: Opcode_PushFloat, Float: v} }
func OpLoadConst(idx int) Opcode  { return Opcode{Kind: Opcode_LoadConst, Idx: idx} }
func OpDefineFast(name string) Opcode { return Opcode{Kind: Opcode_DefineFast, Str: name} }
func OpStoreFast(name string) Opcode  { return Opcode{Kind: Opcode_StoreFast, Str: name} }
func OpLoadFast(name string) Opcode   { return Opcode{Kind: Opcode_LoadFast, Str: name} }
func OpCall(argc int) Opcode      { return Opcode{Kind: Opcode_Call, Idx: argc} }
func OpJump(pc int) Opcode        { return Opcode{Kind: Opcode_Jump, Idx: pc} }
func OpJumpIfTrue(pc int) Opcode  { return Opcode{Kind: Opcode_JumpIfTrue, Idx: pc} }
func OpJumpIfFalse(pc int) Opcode { return Opcode{Kind: Opcode_JumpIfFalse, Idx: pc} }
func OpBuildList(n int) Opcode    { return Opcode{Kind: Opcode_BuildList, Idx: n} }
func OpBuildTuple(n int) Opcode   { return Opcode{Kind: Opcode_BuildTuple, Idx: n} }
func OpBuildDict(n int) Opcode    { return Opcode{Kind: Opcode_BuildDict, Idx: n} }
func Op(kind OpKind) Opcode       { return Opcode{Kind: kind} }

func (o Opcode) String() string {
	name := opKindNames[o.Kind]
	switch o.Kind {
	case Opcode_PushInt:
		return fmt.Sprintf("%s %d", name, o.Int)
	case Opcode_PushUInt:
		return fmt.Sprintf("%s %d", name, o.UInt)
	case Opcode_PushFloat:
		return fmt.Sprintf("%s %v", name, o.Float)
	case Opcode_LoadConst, Opcode_Call, Opcode_Jump, Opcode_JumpIfTrue,
		Opcode_JumpIfFalse, Opcode_BuildList, Opcode_BuildTuple, Opcode_BuildDict:
		return fmt.Sprintf("%s %d", name, o.Idx)
	case Opcode_DefineFast, Opcode_StoreFast, Opcode_LoadFast:
		return fmt.Sprintf("%s %s", name, o.Str)
	default:
		return name
	}
}

// binaryOpcode maps an AST binary operator to its opcode, when one
// exists.
func binaryOpcode(op BinaryOp) (OpKind, bool) {
	switch op {
	case BinaryOp_Add:
		return Opcode_Add, true
	case BinaryOp_Sub:
		return Opcode_Sub, true
	case BinaryOp_Mul:
		return Opcode_Mul, true
	case BinaryOp_Div:
		return Opcode_Div, true
	case BinaryOp_Mod:
		return Opcode_Mod, true
	case BinaryOp_Pow:
		return Opcode_Pow, true
	case BinaryOp_Eq:
		return Opcode_Eq, true
	case BinaryOp_NotEq:
		return Opcode_NotEq, true
	case BinaryOp_Lt:
		return Opcode_Lt, true
	case BinaryOp_LtEq:
		return Opcode_LtEq, true
	case BinaryOp_Gt:
		return Opcode_Gt, true
	case BinaryOp_GtEq:
		return Opcode_GtEq, true
	}
	return 0, false
}

// opcodeBinaryOp is the reverse mapping used by the VM dispatch.
func opcodeBinaryOp(kind OpKind) (BinaryOp, bool) {
	switch kind {
	case Opcode_Add:
		return BinaryOp_Add, true
	case Opcode_Sub:
		return BinaryOp_Sub, true
	case Opcode_Mul:
		return BinaryOp_Mul, true
	case Opcode_Div:
		return BinaryOp_Div, true
	case Opcode_Mod:
		return BinaryOp_Mod, true
	case Opcode_Pow:
		return BinaryOp_Pow, true
	case Opcode_Eq:
		return BinaryOp_Eq, true
	case Opcode_NotEq:
		return BinaryOp_NotEq, true
	case Opcode_Lt:
		return BinaryOp_Lt, true
	case Opcode_LtEq:
		return BinaryOp_LtEq, true
	case Opcode_Gt:
		return BinaryOp_Gt, true
	case Opcode_GtEq:
		return BinaryOp_GtEq, true
	}
	return 0, false
}
