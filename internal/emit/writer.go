// Package emit implements the script emission backend: the indentation-aware
// writer, declaration selection and ordering, and module assembly.
package emit

import (
	"strings"
)

// DefaultIndentUnit is written once per indent level at the start of a line.
const DefaultIndentUnit = "\t"

// Writer is an indentation-tracking text sink. Indentation is deferred:
// after any line terminator a pending flag is set, and the next write of any
// kind first emits the current indent before its content. Blank lines
// therefore never carry trailing whitespace, and the indent level may change
// between a terminator and the next content without corrupting output.
type Writer struct {
	sink    *strings.Builder
	unit    string
	indent  int
	pending bool
	scratch *scratchState
}

// scratchState snapshots the writer state captured at BeginScratch.
type scratchState struct {
	sink    *strings.Builder
	indent  int
	pending bool
}

// NewWriter returns a writer emitting into an internal buffer, indented with
// unit (DefaultIndentUnit when empty).
func NewWriter(unit string) *Writer {
	if unit == "" {
		unit = DefaultIndentUnit
	}
	return &Writer{sink: &strings.Builder{}, unit: unit, pending: true}
}

// String returns everything written to the main buffer so far.
func (w *Writer) String() string {
	if w.scratch != nil {
		return w.scratch.sink.String()
	}
	return w.sink.String()
}

// Indent increases the indent level for subsequent lines.
func (w *Writer) Indent() {
	w.indent++
}

// Unindent decreases the indent level, clamping at zero.
func (w *Writer) Unindent() {
	if w.indent > 0 {
		w.indent--
	}
}

// Write emits text, expanding pending indentation before each non-empty line
// segment. Embedded line terminators behave exactly like WriteLine
// boundaries.
func (w *Writer) Write(text string) {
	for {
		i := strings.IndexByte(text, '\n')
		if i < 0 {
			w.writeSegment(text)
			return
		}
		w.writeSegment(text[:i])
		w.sink.WriteByte('\n')
		w.pending = true
		text = text[i+1:]
	}
}

// WriteLine emits text followed by a line terminator.
func (w *Writer) WriteLine(text string) {
	w.Write(text)
	w.sink.WriteByte('\n')
	w.pending = true
}

func (w *Writer) writeSegment(s string) {
	if s == "" {
		return
	}
	if w.pending {
		for i := 0; i < w.indent; i++ {
			w.sink.WriteString(w.unit)
		}
		w.pending = false
	}
	w.sink.WriteString(s)
}

// BeginScratch redirects all subsequent writes into sink, starting from a
// fresh zero indent. The previous sink and its indent state are restored by
// the matching EndScratch. Only one level of redirection exists; beginning a
// scratch while one is active is a programming error.
func (w *Writer) BeginScratch(sink *strings.Builder) {
	if w.scratch != nil {
		panic("emit: nested scratch buffer")
	}
	w.scratch = &scratchState{sink: w.sink, indent: w.indent, pending: w.pending}
	w.sink = sink
	w.indent = 0
	w.pending = true
}

// EndScratch restores the sink, indent level and pending-indent flag captured
// at the matching BeginScratch.
func (w *Writer) EndScratch() {
	if w.scratch == nil {
		panic("emit: EndScratch without BeginScratch")
	}
	w.sink = w.scratch.sink
	w.indent = w.scratch.indent
	w.pending = w.scratch.pending
	w.scratch = nil
}

// InScratch reports whether writes are currently redirected.
func (w *Writer) InScratch() bool {
	return w.scratch != nil
}
