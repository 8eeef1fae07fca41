// Package backend orchestrates the script backend pipeline: declaration
// ordering, identifier renaming, module assembly and packaging. The stages of
// one compilation are strictly sequential; the export wrapper depends on
// every declaration having already been renamed and ordered, so there is
// nothing to overlap. Independent compilation units may still run in
// parallel over separate graph and writer instances (see BuildAll).
package backend

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Geinome/dsharp/internal/diag"
	"github.com/Geinome/dsharp/internal/emit"
	"github.com/Geinome/dsharp/internal/graphio"
	"github.com/Geinome/dsharp/internal/model"
	"github.com/Geinome/dsharp/internal/pack"
	"github.com/Geinome/dsharp/internal/project"
	"github.com/Geinome/dsharp/internal/rename"
)

// ErrCompileFailed signals that diagnostics were reported and the pipeline
// stopped before producing an artifact. The diagnostics carry the detail.
var ErrCompileFailed = errors.New("compilation failed")

const defaultMaxDiagnostics = 100

// CompileRequest configures one backend run over an already-loaded model.
type CompileRequest struct {
	// Unit labels the compilation in progress events and diagnostics,
	// typically the model path or the module name.
	Unit  string
	Graph *model.SymbolGraph
	// Emitter produces each declaration's script form; nil selects the
	// default body-splicing emitter.
	Emitter      emit.DeclarationEmitter
	Minify       bool
	IncludeTests bool
	IndentUnit   string

	// Template, when non-empty, wraps the assembled script; Includes
	// resolves {include:<path>} tokens inside it.
	Template     string
	Includes     pack.IncludeResolver
	Dependencies []model.DependencyRef
	Tokens       pack.Tokens

	MaxDiagnostics int
	Progress       ProgressSink
}

// CompileResult carries the backend outputs and diagnostics.
type CompileResult struct {
	// Script is the assembled module script, before packaging.
	Script string
	// Artifact is the final packaged text.
	Artifact string
	Order    emit.OrderResult
	Bag      *diag.Bag
	Timings  Timings
}

// Compile runs order -> rename -> assemble -> package. A stage that reports
// an error stops the pipeline before the next stage runs; the caller decides
// how to render the bag.
func Compile(ctx context.Context, req *CompileRequest) (CompileResult, error) {
	var result CompileResult
	if req == nil || req.Graph == nil {
		return result, fmt.Errorf("missing compile request")
	}
	maxDiag := req.MaxDiagnostics
	if maxDiag <= 0 {
		maxDiag = defaultMaxDiagnostics
	}
	result.Bag = diag.NewBag(maxDiag)
	reporter := diag.BagReporter{Bag: result.Bag}

	tokens := req.Tokens
	if tokens.Name == "" {
		tokens.Name = req.Graph.ModuleName
	}

	// The transform must finish before the assembler reads any emission
	// name, and ordering feeds both, hence the fixed stage sequence.
	type stage struct {
		name Stage
		run  func() error
	}
	stages := []stage{
		{StageOrder, func() error {
			result.Order = emit.Select(req.Graph, emit.SelectOptions{IncludeTests: req.IncludeTests})
			return nil
		}},
		{StageRename, func() error {
			return rename.ForOptions(req.Minify).Transform(req.Graph, reporter)
		}},
		{StageAssemble, func() error {
			result.Script = emit.Assemble(req.Graph, result.Order, req.Emitter, reporter, req.IndentUnit)
			return nil
		}},
		{StagePackage, func() error {
			artifact, err := pack.Package(result.Script, req.Template, req.Dependencies, req.Includes, tokens, reporter)
			result.Artifact = artifact
			return err
		}},
	}

	for _, st := range stages {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		start := time.Now()
		emitEvent(req.Progress, req.Unit, st.name, StatusWorking, nil, 0)
		err := st.run()
		elapsed := time.Since(start)
		result.Timings.Set(st.name, elapsed)
		if err != nil || result.Bag.HasErrors() {
			emitEvent(req.Progress, req.Unit, st.name, StatusError, err, elapsed)
			return result, ErrCompileFailed
		}
		emitEvent(req.Progress, req.Unit, st.name, StatusDone, nil, elapsed)
	}
	return result, nil
}

// BuildRequest configures a full build of one unit: model file in, artifact
// file out.
type BuildRequest struct {
	// Unit labels the compilation in progress events; defaults to ModelPath.
	Unit         string
	ModelPath    string
	OutputPath   string
	TemplatePath string

	Minify       bool
	IncludeTests bool
	IndentUnit   string

	Dependencies []model.DependencyRef
	Tokens       pack.Tokens

	MaxDiagnostics int
	Progress       ProgressSink
}

// BuildResult captures build artifacts and timings.
type BuildResult struct {
	OutputPath  string
	ModelDigest project.Digest
	// InputDigest identifies the whole input set of the build: the model
	// combined with the template (when one is configured). Two builds with
	// equal input digests produce byte-identical artifacts.
	InputDigest project.Digest
	Bag         *diag.Bag
	Timings     Timings
}

// Build loads the model and template, compiles, and writes the artifact.
// A failed compilation produces no output file at all; environment errors
// are reported with the offending path and abort in the same way.
func Build(ctx context.Context, req *BuildRequest) (BuildResult, error) {
	var result BuildResult
	if req == nil {
		return result, fmt.Errorf("missing build request")
	}
	maxDiag := req.MaxDiagnostics
	if maxDiag <= 0 {
		maxDiag = defaultMaxDiagnostics
	}
	result.Bag = diag.NewBag(maxDiag)
	reporter := diag.BagReporter{Bag: result.Bag}
	unit := req.Unit
	if unit == "" {
		unit = req.ModelPath
	}

	graph, digest, err := graphio.Load(req.ModelPath)
	if err != nil {
		code := diag.BuildModelRead
		if !os.IsNotExist(err) {
			code = diag.BuildModelDecode
		}
		diag.ReportError(reporter, code, diag.Loc{Path: req.ModelPath}, err.Error())
		return result, ErrCompileFailed
	}
	result.ModelDigest = digest
	result.InputDigest = project.Combine(digest)

	var template string
	var includes pack.IncludeResolver
	if req.TemplatePath != "" {
		data, err := os.ReadFile(req.TemplatePath)
		if err != nil {
			diag.ReportError(reporter, diag.BuildTemplateRead, diag.Loc{Path: req.TemplatePath}, err.Error())
			return result, ErrCompileFailed
		}
		template = string(data)
		includes = pack.FileResolver{Root: filepath.Dir(req.TemplatePath)}
		result.InputDigest = project.Combine(digest, project.HashBytes(data))
	}

	compileRes, err := Compile(ctx, &CompileRequest{
		Unit:           unit,
		Graph:          graph,
		Minify:         req.Minify,
		IncludeTests:   req.IncludeTests,
		IndentUnit:     req.IndentUnit,
		Template:       template,
		Includes:       includes,
		Dependencies:   req.Dependencies,
		Tokens:         req.Tokens,
		MaxDiagnostics: maxDiag,
		Progress:       req.Progress,
	})
	result.Bag.Merge(compileRes.Bag)
	result.Timings = compileRes.Timings
	if err != nil {
		return result, err
	}

	outputPath := req.OutputPath
	if outputPath == "" {
		outputPath = defaultOutputPath(req.ModelPath)
	}
	start := time.Now()
	emitEvent(req.Progress, unit, StageWrite, StatusWorking, nil, 0)
	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			diag.ReportError(reporter, diag.BuildOutputWrite, diag.Loc{Path: outputPath}, err.Error())
			emitEvent(req.Progress, unit, StageWrite, StatusError, err, time.Since(start))
			return result, ErrCompileFailed
		}
	}
	if err := os.WriteFile(outputPath, []byte(compileRes.Artifact), 0o644); err != nil {
		diag.ReportError(reporter, diag.BuildOutputWrite, diag.Loc{Path: outputPath}, err.Error())
		emitEvent(req.Progress, unit, StageWrite, StatusError, err, time.Since(start))
		return result, ErrCompileFailed
	}
	elapsed := time.Since(start)
	result.Timings.Set(StageWrite, elapsed)
	emitEvent(req.Progress, unit, StageWrite, StatusDone, nil, elapsed)
	result.OutputPath = outputPath
	return result, nil
}

func defaultOutputPath(modelPath string) string {
	base := filepath.Base(modelPath)
	if ext := filepath.Ext(base); ext != "" {
		base = base[:len(base)-len(ext)]
	}
	return filepath.Join(filepath.Dir(modelPath), base+".js")
}
