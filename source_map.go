package runeway

import (
	"bytes"
	"fmt"
	"os"
	"sort"
)

// SourceFile holds the name, the UTF-8 bytes and the precomputed line
// starts of a single input file.
type SourceFile struct {
	Name string
	Src  []byte

	// lineStarts[0] is always 0 and the slice is strictly
	// increasing.  Computed once at construction.
	lineStarts []BytePos
}

func NewSourceFile(name string, src []byte) *SourceFile {
	return &SourceFile{
		Name:       name,
		Src:        src,
		lineStarts: computeLineStarts(src),
	}
}

func computeLineStarts(src []byte) []BytePos {
	starts := make([]BytePos, 1, 64)
	starts[0] = 0
	for off := 0; ; {
		idx := bytes.IndexByte(src[off:], '\n')
		if idx < 0 {
			break
		}
		off += idx + 1
		starts = append(starts, BytePos(off))
	}
	return starts
}

// LineStarts returns the start position of every line.
func (f *SourceFile) LineStarts() []BytePos {
	return f.lineStarts
}

// LineSearch finds the line containing pos via binary search.  It
// returns the 1-based line number and the byte offset of the line
// start.  A pos that matches a line start exactly belongs to that
// line; anything in between belongs to the previous one.
func (f *SourceFile) LineSearch(pos BytePos) (int, BytePos) {
	idx := sort.Search(len(f.lineStarts), func(i int) bool {
		return f.lineStarts[i] > pos
	}) - 1
	if idx < 0 {
		idx = 0
	}
	return idx + 1, f.lineStarts[idx]
}

// LastLine returns the 1-based number of the last line in the file.
func (f *SourceFile) LastLine() int {
	return len(f.lineStarts)
}

// LineText returns the text of the given 1-based line, without the
// trailing newline.
func (f *SourceFile) LineText(line int) string {
	if line < 1 || line > len(f.lineStarts) {
		return ""
	}
	start := int(f.lineStarts[line-1])
	end := len(f.Src)
	if line < len(f.lineStarts) {
		end = int(f.lineStarts[line]) - 1
	}
	if end < start {
		end = start
	}
	return string(f.Src[start:end])
}

// SourceMap is an append-only collection of source files.  Ids are
// stable for the lifetime of the map.
type SourceMap struct {
	files []*SourceFile
}

func NewSourceMap() *SourceMap {
	return &SourceMap{}
}

const maxSourceFiles = int(^uint16(0)) + 1

// AddFile appends a file and returns its id.
func (m *SourceMap) AddFile(f *SourceFile) (SourceId, error) {
	if len(m.files) >= maxSourceFiles {
		return 0, fmt.Errorf("source map is full: %d files", len(m.files))
	}
	if len(f.Src) > int(MaxBytePos) {
		return 0, fmt.Errorf("source file %s exceeds the %d byte limit", f.Name, MaxBytePos)
	}
	id := SourceId(len(m.files))
	m.files = append(m.files, f)
	return id, nil
}

// File returns the file registered under id, or nil.
func (m *SourceMap) File(id SourceId) *SourceFile {
	if int(id) >= len(m.files) {
		return nil
	}
	return m.files[id]
}

// FileLoader abstracts real file I/O away from the module loader so
// tests can feed sources from memory.
type FileLoader interface {
	Load(path string) ([]byte, error)
	Exists(path string) bool
}

type osFileLoader struct{}

// NewOSFileLoader returns the loader backed by the real filesystem.
func NewOSFileLoader() FileLoader {
	return osFileLoader{}
}

func (osFileLoader) Load(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (osFileLoader) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// MapFileLoader serves files from an in-memory map, keyed by path.
type MapFileLoader map[string][]byte

func (m MapFileLoader) Load(path string) ([]byte, error) {
	if src, ok := m[path]; ok {
		return src, nil
	}
	return nil, os.ErrNotExist
}

func (m MapFileLoader) Exists(path string) bool {
	_, ok := m[path]
	return ok
}
