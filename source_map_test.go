package runeway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeLineStarts(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		expected []BytePos
	}{
		{
			name:     "empty input",
			src:      "",
			expected: []BytePos{0},
		},
		{
			name:     "single line",
			src:      "hello",
			expected: []BytePos{0},
		},
		{
			name:     "trailing newline",
			src:      "hello\n",
			expected: []BytePos{0, 6},
		},
		{
			name:     "several lines",
			src:      "a\nbb\nccc\n",
			expected: []BytePos{0, 2, 5, 9},
		},
		{
			name:     "empty lines",
			src:      "\n\n",
			expected: []BytePos{0, 1, 2},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			file := NewSourceFile("test.rnw", []byte(test.src))
			assert.Equal(t, test.expected, file.LineStarts())
		})
	}
}

func TestLineSearch(t *testing.T) {
	file := NewSourceFile("test.rnw", nil)
	file.lineStarts = []BytePos{0, 10, 20, 30}

	// exact line starts
	for i, start := range file.lineStarts {
		line, lineStart := file.LineSearch(start)
		assert.Equal(t, i+1, line)
		assert.Equal(t, start, lineStart)
	}

	// positions in between belong to the previous line
	for i := 1; i < 10; i++ {
		for lineIdx, start := range file.lineStarts {
			line, lineStart := file.LineSearch(start + BytePos(i))
			assert.Equal(t, lineIdx+1, line)
			assert.Equal(t, start, lineStart)
		}
	}
}

// the line found for pos starts at or before pos, and the next line
// (if any) starts after it
func TestLineSearchProperty(t *testing.T) {
	src := []byte("act main() {\n\treturn 0;\n}\n\nlast")
	file := NewSourceFile("prop.rnw", src)

	for pos := 0; pos <= len(src); pos++ {
		line, start := file.LineSearch(BytePos(pos))
		require.LessOrEqual(t, int(start), pos)
		if line < file.LastLine() {
			next := file.LineStarts()[line]
			require.Greater(t, int(next), pos)
		}
	}
}

func TestLineText(t *testing.T) {
	file := NewSourceFile("test.rnw", []byte("first\nsecond\nthird"))
	assert.Equal(t, "first", file.LineText(1))
	assert.Equal(t, "second", file.LineText(2))
	assert.Equal(t, "third", file.LineText(3))
	assert.Equal(t, "", file.LineText(4))
}

func TestSourceMapIds(t *testing.T) {
	sm := NewSourceMap()

	a, err := sm.AddFile(NewSourceFile("a.rnw", []byte("let x = 1;")))
	require.NoError(t, err)
	b, err := sm.AddFile(NewSourceFile("b.rnw", []byte("let y = 2;")))
	require.NoError(t, err)

	assert.Equal(t, SourceId(0), a)
	assert.Equal(t, SourceId(1), b)
	assert.Equal(t, "a.rnw", sm.File(a).Name)
	assert.Equal(t, "b.rnw", sm.File(b).Name)
	assert.Nil(t, sm.File(SourceId(7)))
}

func TestSpanMerge(t *testing.T) {
	a := NewSpan(3, 8, 0)
	b := NewSpan(5, 12, 0)
	assert.Equal(t, NewSpan(3, 12, 0), a.Merge(b))
	assert.Equal(t, NewSpan(3, 12, 0), b.Merge(a))
}
