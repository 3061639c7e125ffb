package runeway

import (
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

// Bundle resolves diagnostic message ids into human readable text.
// The default implementation formats named arguments with the go-i18n
// template syntax; tests can plug a StubBundle instead.
type Bundle interface {
	Format(id string, args map[string]any) string
}

// StubBundle echoes message ids back, wrapped in angle brackets.
type StubBundle struct{}

func (StubBundle) Format(id string, _ map[string]any) string {
	return "<" + id + ">"
}

type catalogBundle struct {
	localizer *i18n.Localizer
}

// NewDefaultBundle builds the english message catalogue used by the
// lexer, the parser and the runtime.
func NewDefaultBundle() Bundle {
	bundle := i18n.NewBundle(language.English)
	bundle.AddMessages(language.English, defaultMessages...)
	return &catalogBundle{
		localizer: i18n.NewLocalizer(bundle, language.English.String()),
	}
}

func (b *catalogBundle) Format(id string, args map[string]any) string {
	msg, err := b.localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    id,
		TemplateData: args,
	})
	if err != nil {
		return "<" + id + ">"
	}
	return msg
}

var defaultMessages = []*i18n.Message{
	// Lexer
	{ID: "invalid-char", Other: "invalid character `{{.char}}`"},
	{ID: "unterminated-string", Other: "unterminated string literal"},
	{ID: "unterminated-comment", Other: "unterminated block comment"},
	{ID: "unterminated-char", Other: "unterminated character literal"},
	{ID: "duplicated-string-literal-prefix", Other: "duplicated string literal prefix `{{.char}}`"},
	{ID: "invalid-escape-sequence", Other: "invalid escape sequence `{{.sequence}}`"},
	{ID: "unterminated-escape-sequence", Other: "unterminated escape sequence"},
	{ID: "out-of-range-hex-escape", Other: "hex escape out of range"},
	{ID: "out-of-range-hex-escape-label", Other: "must be at most \\x7F"},
	{ID: "invalid-unicode-escape", Other: "invalid unicode escape"},
	{ID: "unicode-escape-sequence-format", Other: "unicode escapes are written \\u{XXXXXX}"},
	{ID: "unicode-must-have-at-most-6-hex-digits", Other: "unicode escapes hold 1 to 6 hex digits"},
	{ID: "unicode-escape-must-not-be-surrogate", Other: "surrogate code points are not scalar values"},
	{ID: "unicode-escape-must-be-in-range", Other: "unicode scalar values end at 0x10FFFF"},
	{ID: "invalid-number-literal", Other: "invalid number literal `{{.literal}}`"},
	{ID: "unterminated-format-expression", Other: "unterminated format string expression"},

	// Parser
	{ID: "unexpected-token", Other: "unexpected token `{{.token}}`"},
	{ID: "unexpected-eof", Other: "unexpected end of file"},
	{ID: "expected-token", Other: "expected `{{.expected}}` but got `{{.got}}`"},
	{ID: "expected-identifier", Other: "expected an identifier but got `{{.got}}`"},
	{ID: "expected-expression", Other: "expected an expression but got `{{.got}}`"},
	{ID: "chained-comparison", Other: "comparison operators cannot be chained"},
	{ID: "chained-comparison-help", Other: "split the comparison with `and`"},
	{ID: "invalid-assignment-target", Other: "this expression cannot be assigned to"},
	{ID: "unsupported-char-expression", Other: "character literals cannot be used as expressions"},

	// Runtime
	{ID: "top-level-statement", Other: "statement `{{.statement}}` is forbidden at module top-level"},
	{ID: "condition-not-boolean", Other: "condition must be a boolean, got <{{.type}}>"},
	{ID: "assertion-failed", Other: "assertion failed"},
	{ID: "entry-not-found", Other: "entry function `{{.name}}` was not found"},
	{ID: "entry-bad-return", Other: "entry `{{.name}}` exit code must be <int> or <null>, got <{{.type}}>"},
}
