package runeway

import (
	"fmt"
	"strings"

	"github.com/Voiris/runeway/ascii"
)

// FormatFunc styles one fragment of pretty-printed output.
type FormatFunc func(input string, token AsmFormatToken) string

// AsmFormatToken classifies fragments of a disassembly listing for
// theming.
type AsmFormatToken int

const (
	AsmFormatToken_None AsmFormatToken = iota
	AsmFormatToken_Comment
	AsmFormatToken_Label
	AsmFormatToken_Literal
	AsmFormatToken_Operator
	AsmFormatToken_Operand
)

// asmPrinterTheme maps disassembly tokens to colors that fair well on
// both dark and light terminal settings.
var asmPrinterTheme = map[AsmFormatToken]string{
	AsmFormatToken_None:     ascii.Reset,
	AsmFormatToken_Comment:  ascii.DefaultTheme.Comment,
	AsmFormatToken_Label:    ascii.DefaultTheme.Label,
	AsmFormatToken_Literal:  ascii.DefaultTheme.Literal,
	AsmFormatToken_Operator: ascii.DefaultTheme.Operator,
	AsmFormatToken_Operand:  ascii.DefaultTheme.Operand,
}

// PrettyString renders the application without colors.
func (a *CompiledApplication) PrettyString() string {
	return a.prettyString(func(input string, _ AsmFormatToken) string {
		return input
	})
}

// HighlightPrettyString renders the application with ANSI colors.
func (a *CompiledApplication) HighlightPrettyString() string {
	return a.prettyString(func(input string, token AsmFormatToken) string {
		return asmPrinterTheme[token] + input + asmPrinterTheme[AsmFormatToken_None]
	})
}

func (a *CompiledApplication) prettyString(format FormatFunc) string {
	var s strings.Builder

	writeComment := func(text string) {
		s.WriteString(format(text, AsmFormatToken_Comment))
	}

	writeComment(fmt.Sprintf(";; entry %s @ module %d\n", a.EntryFunction, a.EntryModule))

	if len(a.Consts) > 0 {
		writeComment("\n;; constants\n")
		for i, value := range a.Consts {
			s.WriteString(format(fmt.Sprintf("%06d  ", i), AsmFormatToken_Comment))
			s.WriteString(format(fmt.Sprintf("%q", value.Str), AsmFormatToken_Literal))
			s.WriteString("\n")
		}
	}

	for id, module := range a.Modules {
		writeComment(fmt.Sprintf("\n;; module %d: %s", id, module.Name))
		if module.Standard {
			writeComment(" (standard)\n")
			continue
		}
		s.WriteString("\n")

		for _, item := range module.Items {
			switch item.Kind {
			case ItemKind_Import:
				s.WriteString(format("import", AsmFormatToken_Operator))
				s.WriteString(" ")
				s.WriteString(format(item.ImportPath, AsmFormatToken_Literal))
				s.WriteString("\n")
			case ItemKind_Function:
				s.WriteString(format("\nact ", AsmFormatToken_Operator))
				s.WriteString(format(item.Name, AsmFormatToken_Label))
				s.WriteString(format(
					fmt.Sprintf("(%s)\n", strings.Join(item.Function.Parameters, ", ")),
					AsmFormatToken_Operand))
				for pc, op := range item.Function.Ops {
					s.WriteString(format(fmt.Sprintf("%06d  ", pc), AsmFormatToken_Comment))
					name, operand := splitOpcode(op)
					s.WriteString(format(name, AsmFormatToken_Operator))
					if operand != "" {
						s.WriteString(" ")
						s.WriteString(format(operand, AsmFormatToken_Literal))
					}
					s.WriteString("\n")
				}
			}
		}
	}
	return s.String()
}

func splitOpcode(op Opcode) (string, string) {
	text := op.String()
	if idx := strings.IndexByte(text, ' '); idx >= 0 {
		return text[:idx], text[idx+1:]
	}
	return text, ""
}
