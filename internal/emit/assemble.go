package emit

import (
	"fmt"
	"strings"

	"github.com/Geinome/dsharp/internal/diag"
	"github.com/Geinome/dsharp/internal/model"
)

// registerFunc is the module-registration entry point of the target runtime.
// The export wrapper calls it with the module name, the internal export table
// and the public export table, in that argument order.
const registerFunc = "MODULE_REGISTER"

// DeclarationEmitter produces the script form of one declaration. The real
// implementation lives upstream with the per-construct code generator; the
// backend only drives it in emission order.
type DeclarationEmitter interface {
	EmitDeclaration(w *Writer, d *model.Declaration) error
}

// BodyEmitter is the default declaration emitter: it splices the
// pre-generated implementation payloads attached to the model. Member
// payloads are rendered through the writer's scratch buffer first so that
// members whose generated form collapsed to nothing are dropped without
// leaving blank runs in the output.
type BodyEmitter struct{}

func (BodyEmitter) EmitDeclaration(w *Writer, d *model.Declaration) error {
	if d.Body == nil {
		return fmt.Errorf("%s: no implementation body", d.QualifiedName)
	}
	writeChunk(w, d.Body.Script)
	for _, m := range d.Members {
		if m.Body == nil {
			continue
		}
		var scratch strings.Builder
		w.BeginScratch(&scratch)
		writeChunk(w, m.Body.Script)
		w.EndScratch()
		if strings.TrimSpace(scratch.String()) == "" {
			continue
		}
		w.Write(scratch.String())
	}
	return nil
}

// writeChunk writes a payload and guarantees it ends on a fresh line.
func writeChunk(w *Writer, script string) {
	if script == "" {
		return
	}
	w.Write(script)
	if !strings.HasSuffix(script, "\n") {
		w.WriteLine("")
	}
}

// Assemble emits every ordered declaration followed by the export wrapper and
// returns the assembled script. Hard failures are reported through r; the
// returned text is only meaningful when no errors were reported.
func Assemble(graph *model.SymbolGraph, order OrderResult, em DeclarationEmitter, r diag.Reporter, indentUnit string) string {
	if em == nil {
		em = BodyEmitter{}
	}
	w := NewWriter(indentUnit)

	for i, d := range order.Ordered {
		if i > 0 {
			w.WriteLine("")
		}
		if err := em.EmitDeclaration(w, d); err != nil {
			diag.ReportError(r, diag.EmitDeclarationFailed,
				diag.Loc{Symbol: d.QualifiedName}, err.Error())
			return ""
		}
	}

	writeExportWrapper(w, graph.ModuleName, order)
	return w.String()
}

// writeExportWrapper emits the registration statement that makes the
// module's declarations discoverable at load time. An artifact with nothing
// public and nothing internal to register has no reason to call into the
// registration runtime, so the statement is omitted entirely in that case.
func writeExportWrapper(w *Writer, moduleName string, order OrderResult) {
	// Internal declarations that are all synthetic module containers need no
	// name-based discovery even though the internal list is non-empty.
	hasInternal := len(order.Internal) > 0 && order.HasNonModuleInternal
	hasPublic := len(order.Public) > 0
	if !hasInternal && !hasPublic {
		return
	}

	if len(order.Ordered) > 0 {
		w.WriteLine("")
	}
	w.Write(registerFunc + "('" + moduleName + "', ")
	if hasInternal {
		writeExportTable(w, order.Internal, internalExportable)
		w.Write(", ")
	} else {
		w.Write("null, ")
	}
	if hasPublic {
		writeExportTable(w, order.Public, publicExportable)
	} else {
		w.Write("null")
	}
	w.WriteLine(");")
}

// internalExportable filters the internal table: synthetic module containers
// are reached through the shared import binding, and records without a
// constructor are purely structural and erased at emission time.
func internalExportable(d *model.Declaration) bool {
	if d.IsModuleContainer() {
		return false
	}
	if d.Kind == model.DeclRecord && d.Constructor == nil {
		return false
	}
	return true
}

// publicExportable filters the public table: extension containers contribute
// only members reachable through the types they extend, never through their
// own name.
func publicExportable(d *model.Declaration) bool {
	return !d.IsExtensionContainer()
}

func writeExportTable(w *Writer, decls []*model.Declaration, keep func(*model.Declaration) bool) {
	w.WriteLine("{")
	w.Indent()
	first := true
	for _, d := range decls {
		if !keep(d) {
			continue
		}
		if !first {
			w.WriteLine(",")
		}
		first = false
		w.Write(d.Name + ": " + d.EmissionName)
	}
	if !first {
		w.WriteLine("")
	}
	w.Unindent()
	w.Write("}")
}
