package backend

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Geinome/dsharp/internal/diag"
	"github.com/Geinome/dsharp/internal/graphio"
	"github.com/Geinome/dsharp/internal/model"
	"github.com/Geinome/dsharp/internal/pack"
	"github.com/Geinome/dsharp/internal/project"
)

// sampleGraph builds a tiny but complete module: one public class, one
// internal helper referenced from its body.
func sampleGraph() *model.SymbolGraph {
	helper := &model.Declaration{
		Name:          "Helper",
		QualifiedName: "App.Helper",
		EmissionName:  "Helper",
		Kind:          model.DeclClass,
		Flags:         model.DeclFlagAppDefined,
		Body:          &model.Body{Script: "function Helper() {}"},
	}
	widget := &model.Declaration{
		Name:          "Widget",
		QualifiedName: "App.Widget",
		EmissionName:  "Widget",
		Kind:          model.DeclClass,
		Flags:         model.DeclFlagAppDefined | model.DeclFlagPublic,
		Body:          &model.Body{Script: "function Widget() { this.h = new Helper(); }"},
	}
	return &model.SymbolGraph{
		ModuleName: "app",
		Namespaces: []*model.Namespace{{Name: "App", Declarations: []*model.Declaration{helper, widget}}},
	}
}

func TestCompileProducesArtifact(t *testing.T) {
	res, err := Compile(context.Background(), &CompileRequest{
		Unit:  "app",
		Graph: sampleGraph(),
	})
	if err != nil {
		t.Fatalf("compile: %v (%v)", err, res.Bag.Items())
	}
	if res.Bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", res.Bag.Items())
	}
	if !strings.Contains(res.Script, "function Widget()") {
		t.Fatalf("script missing declaration:\n%s", res.Script)
	}
	if !strings.Contains(res.Script, "MODULE_REGISTER('app', ") {
		t.Fatalf("script missing export wrapper:\n%s", res.Script)
	}
	// No template: the artifact is the script itself.
	if res.Artifact != res.Script {
		t.Fatalf("artifact differs from script without a template")
	}
	for _, st := range []Stage{StageOrder, StageRename, StageAssemble, StagePackage} {
		if !res.Timings.Has(st) {
			t.Fatalf("missing timing for %s", st)
		}
	}
}

func TestCompileDeterministic(t *testing.T) {
	run := func() string {
		res, err := Compile(context.Background(), &CompileRequest{
			Unit:     "app",
			Graph:    sampleGraph(),
			Minify:   true,
			Template: "// {name} {compiler}\n{dependenciesLookup}\n{script}",
			Dependencies: []model.DependencyRef{
				{Name: "dsharp", Path: "dsharp", Identifier: "$ds"},
			},
			Tokens: pack.Tokens{Compiler: "0.0.0"},
		})
		if err != nil {
			t.Fatalf("compile: %v (%v)", err, res.Bag.Items())
		}
		return res.Artifact
	}
	first := run()
	for i := 0; i < 5; i++ {
		if again := run(); again != first {
			t.Fatalf("artifact not byte-identical across runs:\n--- first\n%s\n--- again\n%s", first, again)
		}
	}
	if !strings.Contains(first, "$ds = load('dsharp/kernel');") {
		t.Fatalf("dependency lookup missing:\n%s", first)
	}
}

func TestCompileMinifyRenamesInternal(t *testing.T) {
	res, err := Compile(context.Background(), &CompileRequest{
		Unit:   "app",
		Graph:  sampleGraph(),
		Minify: true,
	})
	if err != nil {
		t.Fatalf("compile: %v (%v)", err, res.Bag.Items())
	}
	if strings.Contains(res.Script, "new Helper()") {
		t.Fatalf("internal reference survived minification:\n%s", res.Script)
	}
	if !strings.Contains(res.Script, "new a()") {
		t.Fatalf("internal reference not rewritten:\n%s", res.Script)
	}
	if !strings.Contains(res.Script, "Helper: a") {
		t.Fatalf("internal export table must map the original name:\n%s", res.Script)
	}
}

func TestCompileStopsAfterFailedStage(t *testing.T) {
	g := sampleGraph()
	g.Namespaces[0].Declarations[0].Body = nil // assembly defect

	events := make([]Event, 0, 16)
	res, err := Compile(context.Background(), &CompileRequest{
		Unit:     "app",
		Graph:    g,
		Progress: sinkFunc(func(e Event) { events = append(events, e) }),
	})
	if !errors.Is(err, ErrCompileFailed) {
		t.Fatalf("err = %v, want ErrCompileFailed", err)
	}
	if !res.Bag.HasErrors() {
		t.Fatalf("expected diagnostics")
	}
	if res.Bag.Items()[0].Code != diag.EmitDeclarationFailed {
		t.Fatalf("code = %v", res.Bag.Items()[0].Code)
	}
	if res.Artifact != "" {
		t.Fatalf("failed compile must not produce an artifact")
	}
	for _, e := range events {
		if e.Stage == StagePackage {
			t.Fatalf("packaging ran after assembly failed")
		}
	}
	last := events[len(events)-1]
	if last.Stage != StageAssemble || last.Status != StatusError {
		t.Fatalf("last event = %+v", last)
	}
}

func TestCompileCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Compile(ctx, &CompileRequest{Unit: "app", Graph: sampleGraph()})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

// sinkFunc adapts a function to ProgressSink.
type sinkFunc func(Event)

func (f sinkFunc) OnEvent(e Event) { f(e) }

func TestBuildWritesArtifact(t *testing.T) {
	dir := t.TempDir()
	modelPath := filepath.Join(dir, "app.dsm")
	if err := graphio.Store(modelPath, sampleGraph()); err != nil {
		t.Fatalf("store: %v", err)
	}
	templatePath := filepath.Join(dir, "module.jst")
	if err := os.WriteFile(templatePath, []byte("{include:head.js}{script}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "head.js"), []byte("// head\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := Build(context.Background(), &BuildRequest{
		ModelPath:    modelPath,
		TemplatePath: templatePath,
	})
	if err != nil {
		t.Fatalf("build: %v (%v)", err, res.Bag.Items())
	}
	want := filepath.Join(dir, "app.js")
	if res.OutputPath != want {
		t.Fatalf("output path = %q, want %q", res.OutputPath, want)
	}
	data, err := os.ReadFile(res.OutputPath)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	text := string(data)
	if !strings.HasPrefix(text, "// head\n") {
		t.Fatalf("template include missing:\n%s", text)
	}
	if !strings.Contains(text, "MODULE_REGISTER('app', ") {
		t.Fatalf("export wrapper missing:\n%s", text)
	}
	if res.ModelDigest == (project.Digest{}) {
		t.Fatalf("model digest empty")
	}
	if res.InputDigest == (project.Digest{}) || res.InputDigest == res.ModelDigest {
		t.Fatalf("input digest must cover the template as well")
	}
	if !res.Timings.Has(StageWrite) {
		t.Fatalf("write stage timing missing")
	}
}

func TestBuildMissingModel(t *testing.T) {
	dir := t.TempDir()
	res, err := Build(context.Background(), &BuildRequest{
		ModelPath: filepath.Join(dir, "absent.dsm"),
	})
	if !errors.Is(err, ErrCompileFailed) {
		t.Fatalf("err = %v", err)
	}
	if res.Bag.Items()[0].Code != diag.BuildModelRead {
		t.Fatalf("code = %v", res.Bag.Items()[0].Code)
	}
}

func TestBuildFailureLeavesNoArtifact(t *testing.T) {
	dir := t.TempDir()
	g := sampleGraph()
	g.Namespaces[0].Declarations[0].Body = nil
	modelPath := filepath.Join(dir, "app.dsm")
	if err := graphio.Store(modelPath, g); err != nil {
		t.Fatalf("store: %v", err)
	}

	_, err := Build(context.Background(), &BuildRequest{ModelPath: modelPath})
	if !errors.Is(err, ErrCompileFailed) {
		t.Fatalf("err = %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "app.js")); !os.IsNotExist(statErr) {
		t.Fatalf("a failed build must not leave an output file")
	}
}

func TestBuildAll(t *testing.T) {
	dir := t.TempDir()
	reqs := make([]*BuildRequest, 0, 3)
	for _, name := range []string{"one", "two", "three"} {
		g := sampleGraph()
		g.ModuleName = name
		path := filepath.Join(dir, name+".dsm")
		if err := graphio.Store(path, g); err != nil {
			t.Fatalf("store %s: %v", name, err)
		}
		reqs = append(reqs, &BuildRequest{Unit: name, ModelPath: path})
	}
	results, err := BuildAll(context.Background(), reqs)
	if err != nil {
		t.Fatalf("build all: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("len(results) = %d", len(results))
	}
	for i, name := range []string{"one", "two", "three"} {
		want := filepath.Join(dir, name+".js")
		if results[i].OutputPath != want {
			t.Fatalf("results[%d].OutputPath = %q, want %q", i, results[i].OutputPath, want)
		}
	}
}

func TestDefaultOutputPath(t *testing.T) {
	cases := []struct{ in, want string }{
		{"app.dsm", "app.js"},
		{filepath.Join("out", "app.dsm"), filepath.Join("out", "app.js")},
		{"noext", "noext.js"},
	}
	for _, tc := range cases {
		if got := defaultOutputPath(tc.in); got != tc.want {
			t.Fatalf("defaultOutputPath(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTimings(t *testing.T) {
	var tm Timings
	if tm.Has(StageOrder) {
		t.Fatalf("fresh timings must be empty")
	}
	tm.Set(StageOrder, 10)
	tm.Set(StageRename, 20)
	if !tm.Has(StageOrder) || tm.Duration(StageRename) != 20 {
		t.Fatalf("timings not recorded")
	}
	if tm.Sum(StageOrder, StageRename, StageWrite) != 30 {
		t.Fatalf("sum = %d", tm.Sum(StageOrder, StageRename, StageWrite))
	}
}
