package runeway

import (
	"fmt"
	"strconv"
	"strings"
)

// ExprString renders an expression back into surface syntax.
// Parentheses are inserted only where precedence requires them, so
// parsing the output yields the same tree again.
func ExprString(e Expr) string {
	var s strings.Builder
	writeExpr(&s, e, 0)
	return s.String()
}

func writeExpr(s *strings.Builder, e Expr, minBP int) {
	switch n := e.(type) {
	case *IntLit:
		if n.Text != "" {
			s.WriteString(n.Text)
		} else {
			s.WriteString(strconv.FormatInt(n.Value, 10))
		}
	case *UIntLit:
		if n.Text != "" {
			s.WriteString(n.Text)
		} else {
			s.WriteString(strconv.FormatUint(n.Value, 10) + "u")
		}
	case *FloatLit:
		if n.Text != "" {
			s.WriteString(n.Text)
		} else {
			s.WriteString(strconv.FormatFloat(n.Value, 'g', -1, 64))
		}
	case *BoolLit:
		s.WriteString(strconv.FormatBool(n.Value))
	case *StringLit:
		s.WriteString(strconv.Quote(n.Value))
	case *NullLit:
		s.WriteString("null")
	case *VarExpr:
		s.WriteString(n.Name)
	case *ParenExpr:
		s.WriteString("(")
		writeExpr(s, n.Inner, 0)
		s.WriteString(")")
	case *ListLit:
		s.WriteString("[")
		writeExprList(s, n.Items)
		s.WriteString("]")
	case *TupleLit:
		s.WriteString("(")
		writeExprList(s, n.Items)
		if len(n.Items) == 1 {
			s.WriteString(",")
		}
		s.WriteString(")")
	case *DictLit:
		s.WriteString("{")
		for i := range n.Keys {
			if i > 0 {
				s.WriteString(", ")
			}
			writeExpr(s, n.Keys[i], 0)
			s.WriteString(": ")
			writeExpr(s, n.Values[i], 0)
		}
		s.WriteString("}")
	case *FStringLit:
		s.WriteString("f\"")
		for _, part := range n.Parts {
			if part.IsExpr {
				s.WriteString("{")
				writeExpr(s, part.Expr, 0)
				s.WriteString("}")
			} else {
				s.WriteString(escapeFStringLiteral(part.Literal))
			}
		}
		s.WriteString("\"")
	case *RangeLit:
		parenIf(s, minBP > bpRange, func() {
			writeExpr(s, n.Start, bpRange+1)
			if n.Inclusive {
				s.WriteString("..=")
			} else {
				s.WriteString("..")
			}
			writeExpr(s, n.End, bpRange+1)
			if n.Step != nil {
				s.WriteString("::")
				writeExpr(s, n.Step, bpRange+1)
			}
		})
	case *UnaryExpr:
		if n.Postfix {
			parenIf(s, minBP > bpPostfix, func() {
				writeExpr(s, n.Operand, bpPostfix)
				s.WriteString(n.Op.Display())
			})
		} else {
			parenIf(s, minBP > bpUnary, func() {
				s.WriteString(n.Op.Display())
				writeExpr(s, n.Operand, bpUnary)
			})
		}
	case *BinaryExpr:
		info := binaryOpInfo(n.Op)
		parenIf(s, minBP > info.lbp, func() {
			leftBP, rightBP := info.lbp, info.lbp+1
			if info.rightAssoc {
				leftBP, rightBP = info.lbp+1, info.lbp
			}
			writeExpr(s, n.Left, leftBP)
			s.WriteString(" " + n.Op.Display() + " ")
			writeExpr(s, n.Right, rightBP)
		})
	case *GetAttrExpr:
		parenIf(s, minBP > bpPostfix, func() {
			writeExpr(s, n.Object, bpPostfix)
			s.WriteString("." + n.Field)
		})
	case *SetAttrExpr:
		writeExpr(s, n.Object, bpPostfix)
		s.WriteString("." + n.Field + " = ")
		writeExpr(s, n.Value, 0)
	case *IndexExpr:
		parenIf(s, minBP > bpPostfix, func() {
			writeExpr(s, n.Object, bpPostfix)
			s.WriteString("[")
			writeExpr(s, n.Index, 0)
			s.WriteString("]")
		})
	case *CallExpr:
		parenIf(s, minBP > bpPostfix, func() {
			writeExpr(s, n.Callee, bpPostfix)
			s.WriteString("(")
			writeExprList(s, n.Args)
			s.WriteString(")")
		})
	default:
		fmt.Fprintf(s, "<unknown expr %T>", e)
	}
}

func writeExprList(s *strings.Builder, items []Expr) {
	for i, item := range items {
		if i > 0 {
			s.WriteString(", ")
		}
		writeExpr(s, item, 0)
	}
}

func parenIf(s *strings.Builder, cond bool, body func()) {
	if cond {
		s.WriteString("(")
	}
	body()
	if cond {
		s.WriteString(")")
	}
}

func binaryOpInfo(op BinaryOp) binaryInfo {
	for _, info := range binaryTokens {
		if info.op == op {
			return info
		}
	}
	return binaryInfo{op: op, lbp: bpCompare}
}

func escapeFStringLiteral(text string) string {
	var s strings.Builder
	for _, r := range text {
		switch r {
		case '{':
			s.WriteString("{{")
		case '}':
			s.WriteString("}}")
		case '"':
			s.WriteString("\\\"")
		case '\\':
			s.WriteString("\\\\")
		case '\n':
			s.WriteString("\\n")
		case '\r':
			s.WriteString("\\r")
		case '\t':
			s.WriteString("\\t")
		default:
			s.WriteRune(r)
		}
	}
	return s.String()
}
