package runeway

import "fmt"

// BytePos is a byte offset into a single source file.  32 bits is
// enough for 4GiB of source code.
type BytePos uint32

const MaxBytePos = BytePos(^uint32(0))

// SourceId identifies a file inside a SourceMap.
type SourceId uint16

// Span is a contiguous byte range inside one source file.
//
// Invariant: Lo <= Hi and Hi <= len(source bytes).
type Span struct {
	Lo  BytePos
	Hi  BytePos
	Src SourceId
}

func NewSpan(lo, hi BytePos, src SourceId) Span {
	return Span{Lo: lo, Hi: hi, Src: src}
}

func (s Span) String() string {
	if s.Lo == s.Hi {
		return fmt.Sprintf("%d", s.Lo)
	}
	return fmt.Sprintf("%d..%d", s.Lo, s.Hi)
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int {
	return int(s.Hi) - int(s.Lo)
}

// Str returns the source text covered by the span.
func (s Span) Str(src []byte) string {
	return string(src[s.Lo:s.Hi])
}

// Merge returns the smallest span covering both s and other.  Both
// spans must belong to the same source file.
func (s Span) Merge(other Span) Span {
	lo := s.Lo
	if other.Lo < lo {
		lo = other.Lo
	}
	hi := s.Hi
	if other.Hi > hi {
		hi = other.Hi
	}
	return Span{Lo: lo, Hi: hi, Src: s.Src}
}

// Spanned carries a source span alongside a node.  Tokens, AST nodes
// and identifiers are all wrapped in it.
type Spanned[T any] struct {
	Node T
	Span Span
}

func NewSpanned[T any](node T, span Span) Spanned[T] {
	return Spanned[T]{Node: node, Span: span}
}
