package runeway

import "fmt"

// DiagType is the severity of a diagnostic.
type DiagType int

const (
	DiagType_WeakWarning DiagType = iota
	DiagType_Warning
	DiagType_Error
)

func (t DiagType) String() string {
	switch t {
	case DiagType_WeakWarning:
		return "weak warning"
	case DiagType_Warning:
		return "warning"
	case DiagType_Error:
		return "error"
	default:
		return "unknown"
	}
}

// DiagLabelKind selects the underline marker drawn below a span.
type DiagLabelKind int

const (
	DiagLabelKind_Primary DiagLabelKind = iota
	DiagLabelKind_Secondary
)

func (k DiagLabelKind) Marker() string {
	if k == DiagLabelKind_Primary {
		return "-"
	}
	return "^"
}

// DiagLabel points a diagnostic at a span, optionally with its own
// message.
type DiagLabel struct {
	MessageID string
	Message   string
	Args      map[string]any
	Kind      DiagLabelKind
	Span      Span
}

// DiagSublabel is a trailing `help:` or `note:` line.
type DiagSublabel struct {
	MessageID string
	Message   string
	Args      map[string]any
}

// Diagnostic is a structured error.  Messages either carry a
// catalogue id resolved through a Bundle, or preformatted text; the
// short Code ("SyntaxError", "TypeError", ...) classifies the failure
// and NumCode is an optional numeric error code.
type Diagnostic struct {
	Type      DiagType
	Code      string
	NumCode   uint16
	MessageID string
	Message   string
	Args      map[string]any
	Labels    []DiagLabel
	Help      *DiagSublabel
	Note      *DiagSublabel
}

// NewError creates an error diagnostic whose message comes from the
// catalogue.
func NewError(messageID string) *Diagnostic {
	return &Diagnostic{Type: DiagType_Error, MessageID: messageID}
}

// NewErrorWithCode creates an error diagnostic with a short code.
func NewErrorWithCode(code, messageID string) *Diagnostic {
	return &Diagnostic{Type: DiagType_Error, Code: code, MessageID: messageID}
}

// NewSyntaxError is the constructor used by the lexer and the parser.
func NewSyntaxError(messageID string) *Diagnostic {
	return NewErrorWithCode("SyntaxError", messageID)
}

// NewRuntimeError creates an error with a short code and preformatted
// message text, the shape used by the object model and interpreter.
func NewRuntimeError(code, message string) *Diagnostic {
	return &Diagnostic{Type: DiagType_Error, Code: code, Message: message}
}

// NewRuntimeErrorf is NewRuntimeError with fmt formatting.
func NewRuntimeErrorf(code, format string, args ...any) *Diagnostic {
	return NewRuntimeError(code, fmt.Sprintf(format, args...))
}

func NewWarning(messageID string) *Diagnostic {
	return &Diagnostic{Type: DiagType_Warning, MessageID: messageID}
}

func (d *Diagnostic) WithMessage(message string) *Diagnostic {
	d.Message = message
	return d
}

func (d *Diagnostic) WithArg(name string, value any) *Diagnostic {
	if d.Args == nil {
		d.Args = map[string]any{}
	}
	d.Args[name] = value
	return d
}

func (d *Diagnostic) WithNumCode(code uint16) *Diagnostic {
	d.NumCode = code
	return d
}

// WithLabel attaches a silent primary label.
func (d *Diagnostic) WithLabel(span Span) *Diagnostic {
	d.Labels = append(d.Labels, DiagLabel{Kind: DiagLabelKind_Primary, Span: span})
	return d
}

// WithLabelMessage attaches a primary label carrying a catalogue
// message.
func (d *Diagnostic) WithLabelMessage(span Span, messageID string) *Diagnostic {
	d.Labels = append(d.Labels, DiagLabel{
		Kind:      DiagLabelKind_Primary,
		Span:      span,
		MessageID: messageID,
	})
	return d
}

func (d *Diagnostic) WithSecondaryLabel(span Span) *Diagnostic {
	d.Labels = append(d.Labels, DiagLabel{Kind: DiagLabelKind_Secondary, Span: span})
	return d
}

func (d *Diagnostic) WithHelp(messageID string) *Diagnostic {
	d.Help = &DiagSublabel{MessageID: messageID}
	return d
}

func (d *Diagnostic) WithHelpText(message string) *Diagnostic {
	d.Help = &DiagSublabel{Message: message}
	return d
}

func (d *Diagnostic) WithNote(messageID string) *Diagnostic {
	d.Note = &DiagSublabel{MessageID: messageID}
	return d
}

func (d *Diagnostic) WithNoteText(message string) *Diagnostic {
	d.Note = &DiagSublabel{Message: message}
	return d
}

// ResolveMessage renders the main message, preferring the catalogue
// id when both forms are present.
func (d *Diagnostic) ResolveMessage(bundle Bundle) string {
	if d.MessageID != "" && bundle != nil {
		return bundle.Format(d.MessageID, d.Args)
	}
	return d.Message
}

// Error implements the error interface so diagnostics can travel
// through regular Go error returns.
func (d *Diagnostic) Error() string {
	msg := d.Message
	if msg == "" {
		msg = d.MessageID
	}
	if d.Code != "" {
		return fmt.Sprintf("%s[%s]: %s", d.Type, d.Code, msg)
	}
	return fmt.Sprintf("%s: %s", d.Type, msg)
}

// AsDiagnostic unwraps err into a Diagnostic, wrapping foreign errors
// into a plain error diagnostic so every failure can be emitted the
// same way.
func AsDiagnostic(err error) *Diagnostic {
	if d, ok := err.(*Diagnostic); ok {
		return d
	}
	return NewRuntimeError("", err.Error())
}
