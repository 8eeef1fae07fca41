package emit

import (
	"strings"
	"testing"
)

func TestWriterDeferredIndent(t *testing.T) {
	w := NewWriter("\t")
	w.WriteLine("function f() {")
	w.Indent()
	w.WriteLine("return 1;")
	w.Unindent()
	w.WriteLine("}")

	want := "function f() {\n\treturn 1;\n}\n"
	if got := w.String(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestWriterBlankLinesCarryNoIndent(t *testing.T) {
	w := NewWriter("  ")
	w.Indent()
	w.WriteLine("a;")
	w.WriteLine("")
	w.WriteLine("b;")

	want := "  a;\n\n  b;\n"
	if got := w.String(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestWriterIndentChangeBetweenLines(t *testing.T) {
	// Changing the indent level between a terminator and the next content
	// must affect only the next line.
	w := NewWriter("\t")
	w.WriteLine("{")
	w.Indent()
	w.Indent()
	w.Unindent()
	w.WriteLine("x;")
	if got, want := w.String(), "{\n\tx;\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestWriterEmbeddedNewlines(t *testing.T) {
	w := NewWriter("\t")
	w.Indent()
	w.Write("a;\n\nb;")
	if got, want := w.String(), "\ta;\n\n\tb;"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestWriterUnindentClampsAtZero(t *testing.T) {
	w := NewWriter("\t")
	w.Unindent()
	w.Unindent()
	w.WriteLine("x;")
	if got, want := w.String(), "x;\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestWriterScratchRestoresState(t *testing.T) {
	w := NewWriter("\t")
	w.Indent()
	w.Write("before ")

	var scratch strings.Builder
	w.BeginScratch(&scratch)
	if !w.InScratch() {
		t.Fatalf("expected scratch mode")
	}
	w.WriteLine("inner {")
	w.Indent()
	w.WriteLine("x;")
	w.Unindent()
	w.WriteLine("}")
	w.EndScratch()

	// The scratch starts from a fresh zero indent.
	if got, want := scratch.String(), "inner {\n\tx;\n}\n"; got != want {
		t.Fatalf("scratch: got %q, want %q", got, want)
	}

	// The outer writer resumes mid-line at its saved indent level.
	w.Write("after")
	w.WriteLine("")
	w.Write("next")
	if got, want := w.String(), "\tbefore after\n\tnext"; got != want {
		t.Fatalf("main: got %q, want %q", got, want)
	}
}

func TestWriterNestedScratchPanics(t *testing.T) {
	w := NewWriter("\t")
	var a, b strings.Builder
	w.BeginScratch(&a)
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on nested scratch")
		}
	}()
	w.BeginScratch(&b)
}

func TestWriterEndScratchWithoutBeginPanics(t *testing.T) {
	w := NewWriter("\t")
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on unmatched EndScratch")
		}
	}()
	w.EndScratch()
}
