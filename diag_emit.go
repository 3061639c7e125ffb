package runeway

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Diagnostic formatting design inspired by the Rust compiler:
// https://github.com/rust-lang/rust

const tabWidth = 4

type emitStyle struct {
	severity map[DiagType]*color.Color
	code     *color.Color
	gutter   *color.Color
	primary  *color.Color
	second   *color.Color
	sublabel *color.Color
}

func newEmitStyle(colored bool) *emitStyle {
	s := &emitStyle{
		severity: map[DiagType]*color.Color{
			DiagType_WeakWarning: color.New(color.FgYellow),
			DiagType_Warning:     color.New(color.FgHiYellow, color.Bold),
			DiagType_Error:       color.New(color.FgHiRed, color.Bold),
		},
		code:     color.New(color.FgCyan, color.Bold),
		gutter:   color.New(color.FgHiCyan, color.Bold),
		primary:  color.New(color.FgHiCyan, color.Bold),
		second:   color.New(color.FgHiYellow, color.Bold),
		sublabel: color.New(color.FgHiWhite),
	}
	all := []*color.Color{s.code, s.gutter, s.primary, s.second, s.sublabel}
	for _, c := range s.severity {
		all = append(all, c)
	}
	for _, c := range all {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return s
}

func (s *emitStyle) labelColor(kind DiagLabelKind) *color.Color {
	if kind == DiagLabelKind_Primary {
		return s.primary
	}
	return s.second
}

// StderrIsTerminal reports whether standard error supports ANSI
// styling.
func StderrIsTerminal() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Emit renders the diagnostic into out, resolving message ids through
// bundle and looking up source lines in the source map.
func (d *Diagnostic) Emit(sm *SourceMap, bundle Bundle, out io.Writer, colored bool) {
	style := newEmitStyle(colored)

	d.emitHeader(style, bundle, out)

	grouped, order := groupLabelsBySource(d.Labels)
	gutter := gutterWidth(sm, d.Labels)

	for _, src := range order {
		emitSourceLabels(sm, bundle, style, gutter, src, grouped[src], out)
	}

	if d.Help != nil {
		emitSublabel(style, bundle, gutter, "help", d.Help, out)
	}
	if d.Note != nil {
		emitSublabel(style, bundle, gutter, "note", d.Note, out)
	}
	fmt.Fprintln(out)
}

func (d *Diagnostic) emitHeader(style *emitStyle, bundle Bundle, out io.Writer) {
	fmt.Fprint(out, style.severity[d.Type].Sprint(d.Type.String()))
	switch {
	case d.NumCode != 0:
		fmt.Fprint(out, style.code.Sprintf("[E%04d]", d.NumCode))
	case d.Code != "":
		fmt.Fprint(out, style.code.Sprintf("[%s]", d.Code))
	}
	fmt.Fprintf(out, ": %s", d.ResolveMessage(bundle))
}

func groupLabelsBySource(labels []DiagLabel) (map[SourceId][]DiagLabel, []SourceId) {
	grouped := map[SourceId][]DiagLabel{}
	var order []SourceId
	for _, label := range labels {
		if _, seen := grouped[label.Span.Src]; !seen {
			order = append(order, label.Span.Src)
		}
		grouped[label.Span.Src] = append(grouped[label.Span.Src], label)
	}
	return grouped, order
}

// gutterWidth sizes the line-number gutter so the widest referenced
// line number fits, plus one column of padding.
func gutterWidth(sm *SourceMap, labels []DiagLabel) int {
	max := 1
	for _, label := range labels {
		file := sm.File(label.Span.Src)
		if file == nil {
			continue
		}
		line, _ := file.LineSearch(label.Span.Lo)
		if line > max {
			max = line
		}
	}
	return len(strconv.Itoa(max)) + 1
}

func emitSourceLabels(sm *SourceMap, bundle Bundle, style *emitStyle, gutter int, src SourceId, labels []DiagLabel, out io.Writer) {
	file := sm.File(src)
	if file == nil {
		return
	}
	fmt.Fprintf(out, "\n%s%s %s",
		strings.Repeat(" ", gutter-1),
		style.gutter.Sprint("-->"),
		file.Name)
	fmt.Fprintf(out, "\n%s%s",
		strings.Repeat(" ", gutter),
		style.gutter.Sprint("|"))

	for _, label := range labels {
		line, lineStart := file.LineSearch(label.Span.Lo)
		lineText := file.LineText(line)

		// Tabs expand to a fixed width, so the underline offset
		// must count them as such.
		offset := 0
		for _, ch := range lineText[:clampInt(int(label.Span.Lo)-int(lineStart), 0, len(lineText))] {
			if ch == '\t' {
				offset += tabWidth
			} else {
				offset++
			}
		}

		width := label.Span.Len()
		if max := len(lineText) - (int(label.Span.Lo) - int(lineStart)); width > max {
			width = max
		}
		if width < 1 {
			width = 1
		}

		lineNum := strconv.Itoa(line)
		fmt.Fprintf(out, "\n%s%s%s %s",
			style.gutter.Sprint(lineNum),
			strings.Repeat(" ", gutter-len(lineNum)),
			style.gutter.Sprint("|"),
			lineText)
		fmt.Fprintf(out, "\n%s%s %s%s",
			strings.Repeat(" ", gutter),
			style.gutter.Sprint("|"),
			strings.Repeat(" ", offset),
			style.labelColor(label.Kind).Sprint(strings.Repeat(label.Kind.Marker(), width)))

		message := label.Message
		if label.MessageID != "" && bundle != nil {
			message = bundle.Format(label.MessageID, label.Args)
		}
		if message != "" {
			fmt.Fprintf(out, " %s", style.labelColor(label.Kind).Sprint(message))
		}
	}
}

func emitSublabel(style *emitStyle, bundle Bundle, gutter int, kind string, sub *DiagSublabel, out io.Writer) {
	message := sub.Message
	if sub.MessageID != "" && bundle != nil {
		message = bundle.Format(sub.MessageID, sub.Args)
	}
	fmt.Fprintf(out, "\n%s%s %s: %s",
		strings.Repeat(" ", gutter),
		style.gutter.Sprint("="),
		style.sublabel.Sprint(kind),
		message)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
