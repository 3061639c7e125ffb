package runeway

// BinaryOp enumerates the binary operators of the language.
type BinaryOp int

const (
	// Arithmetic
	BinaryOp_Add BinaryOp = iota // +
	BinaryOp_Sub                 // -
	BinaryOp_Mul                 // *
	BinaryOp_Div                 // /
	BinaryOp_Mod                 // %
	BinaryOp_Pow                 // **

	// Comparison
	BinaryOp_Eq    // ==
	BinaryOp_NotEq // !=
	BinaryOp_Lt    // <
	BinaryOp_LtEq  // <=
	BinaryOp_Gt    // >
	BinaryOp_GtEq  // >=
	BinaryOp_Is    // is

	// Logic
	BinaryOp_And // and
	BinaryOp_Or  // or

	// Bitwise
	BinaryOp_BitAnd // &
	BinaryOp_BitOr  // |
	BinaryOp_BitXor // ^
	BinaryOp_Shl    // <<
	BinaryOp_Shr    // >>
)

func (op BinaryOp) Display() string {
	switch op {
	case BinaryOp_Add:
		return "+"
	case BinaryOp_Sub:
		return "-"
	case BinaryOp_Mul:
		return "*"
	case BinaryOp_Div:
		return "/"
	case BinaryOp_Mod:
		return "%"
	case BinaryOp_Pow:
		return "**"
	case BinaryOp_Eq:
		return "=="
	case BinaryOp_NotEq:
		return "!="
	case BinaryOp_Lt:
		return "<"
	case BinaryOp_LtEq:
		return "<="
	case BinaryOp_Gt:
		return ">"
	case BinaryOp_GtEq:
		return ">="
	case BinaryOp_Is:
		return "is"
	case BinaryOp_And:
		return "and"
	case BinaryOp_Or:
		return "or"
	case BinaryOp_BitAnd:
		return "&"
	case BinaryOp_BitOr:
		return "|"
	case BinaryOp_BitXor:
		return "^"
	case BinaryOp_Shl:
		return "<<"
	case BinaryOp_Shr:
		return ">>"
	default:
		return "?"
	}
}

// IsComparison reports whether the operator belongs to the
// non-associative comparison level.
func (op BinaryOp) IsComparison() bool {
	switch op {
	case BinaryOp_Eq, BinaryOp_NotEq, BinaryOp_Lt, BinaryOp_LtEq,
		BinaryOp_Gt, BinaryOp_GtEq, BinaryOp_Is:
		return true
	}
	return false
}

// UnaryOp enumerates the unary operators.
type UnaryOp int

const (
	UnaryOp_Neg    UnaryOp = iota // -a
	UnaryOp_Not                   // !a, not a
	UnaryOp_BitNot                // ~a
	UnaryOp_Inc                   // ++a, a++
	UnaryOp_Dec                   // --a, a--
)

func (op UnaryOp) Display() string {
	switch op {
	case UnaryOp_Neg:
		return "-"
	case UnaryOp_Not:
		return "!"
	case UnaryOp_BitNot:
		return "~"
	case UnaryOp_Inc:
		return "++"
	case UnaryOp_Dec:
		return "--"
	default:
		return "?"
	}
}

// Binding powers of the Pratt parser, low to high.  Comparison
// operators do not chain; ** is right-associative.
const (
	bpRange   = 5
	bpOr      = 10
	bpAnd     = 20
	bpCompare = 30
	bpBitOr   = 40
	bpBitXor  = 50
	bpBitAnd  = 60
	bpShift   = 70
	bpAdd     = 80
	bpMul     = 90
	bpPow     = 100
	bpUnary   = 110
	bpPostfix = 120
)

type binaryInfo struct {
	op         BinaryOp
	lbp        int
	rightAssoc bool
}

var binaryTokens = map[TokenType]binaryInfo{
	TokenType_Or:       {BinaryOp_Or, bpOr, false},
	TokenType_OrOr:     {BinaryOp_Or, bpOr, false},
	TokenType_And:      {BinaryOp_And, bpAnd, false},
	TokenType_AndAnd:   {BinaryOp_And, bpAnd, false},
	TokenType_EqEq:     {BinaryOp_Eq, bpCompare, false},
	TokenType_Ne:       {BinaryOp_NotEq, bpCompare, false},
	TokenType_Lt:       {BinaryOp_Lt, bpCompare, false},
	TokenType_Le:       {BinaryOp_LtEq, bpCompare, false},
	TokenType_Gt:       {BinaryOp_Gt, bpCompare, false},
	TokenType_Ge:       {BinaryOp_GtEq, bpCompare, false},
	TokenType_Is:       {BinaryOp_Is, bpCompare, false},
	TokenType_Pipe:     {BinaryOp_BitOr, bpBitOr, false},
	TokenType_Caret:    {BinaryOp_BitXor, bpBitXor, false},
	TokenType_Amp:      {BinaryOp_BitAnd, bpBitAnd, false},
	TokenType_Shl:      {BinaryOp_Shl, bpShift, false},
	TokenType_Shr:      {BinaryOp_Shr, bpShift, false},
	TokenType_Plus:     {BinaryOp_Add, bpAdd, false},
	TokenType_Minus:    {BinaryOp_Sub, bpAdd, false},
	TokenType_Star:     {BinaryOp_Mul, bpMul, false},
	TokenType_Slash:    {BinaryOp_Div, bpMul, false},
	TokenType_Percent:  {BinaryOp_Mod, bpMul, false},
	TokenType_StarStar: {BinaryOp_Pow, bpPow, true},
}

var prefixTokens = map[TokenType]UnaryOp{
	TokenType_Minus:      UnaryOp_Neg,
	TokenType_Bang:       UnaryOp_Not,
	TokenType_Not:        UnaryOp_Not,
	TokenType_Tilde:      UnaryOp_BitNot,
	TokenType_PlusPlus:   UnaryOp_Inc,
	TokenType_MinusMinus: UnaryOp_Dec,
}
