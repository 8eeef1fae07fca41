package emit

import (
	"strings"
	"testing"

	"github.com/Geinome/dsharp/internal/diag"
	"github.com/Geinome/dsharp/internal/model"
)

func assembleAll(t *testing.T, g *model.SymbolGraph, opts SelectOptions) (string, *diag.Bag) {
	t.Helper()
	bag := diag.NewBag(16)
	res := Select(g, opts)
	out := Assemble(g, res, nil, diag.BagReporter{Bag: bag}, "\t")
	return out, bag
}

func withBody(d *model.Declaration, script string) *model.Declaration {
	d.Body = &model.Body{Script: script}
	return d
}

func TestAssembleEmitsDeclarationsInOrder(t *testing.T) {
	foo := withBody(newDecl("Foo", model.DeclClass, model.DeclFlagPublic|model.DeclFlagAppDefined, 0), "var Foo = 1;")
	bar := withBody(newDecl("Bar", model.DeclClass, model.DeclFlagPublic|model.DeclFlagAppDefined, 1), "var Bar = 2;")
	bar.Base = foo

	out, bag := assembleAll(t, graphOf(bar, foo), SelectOptions{})
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	fooAt := strings.Index(out, "var Foo")
	barAt := strings.Index(out, "var Bar")
	if fooAt < 0 || barAt < 0 || fooAt > barAt {
		t.Fatalf("bodies out of order:\n%s", out)
	}
}

func TestAssembleExportWrapper(t *testing.T) {
	foo := withBody(newDecl("Foo", model.DeclClass, model.DeclFlagPublic|model.DeclFlagAppDefined, 0), "var Foo = 1;")
	bar := withBody(newDecl("Bar", model.DeclClass, model.DeclFlagPublic|model.DeclFlagAppDefined, 1), "var Bar = 2;")
	bar.Base = foo
	utils := withBody(newDecl("Utils", model.DeclClass, model.DeclFlagAppDefined|model.DeclFlagModuleContainer, 0), "var Utils = {};")

	out, bag := assembleAll(t, graphOf(foo, bar, utils), SelectOptions{})
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	// Only a module container is internal, so the internal table is null.
	if !strings.Contains(out, "MODULE_REGISTER('app', null, {") {
		t.Fatalf("wrapper missing or internal table not null:\n%s", out)
	}
	if !strings.Contains(out, "Foo: Foo") || !strings.Contains(out, "Bar: Bar") {
		t.Fatalf("public table incomplete:\n%s", out)
	}
	if strings.Contains(out, "Utils:") {
		t.Fatalf("module container leaked into an export table:\n%s", out)
	}
}

func TestAssembleWrapperUsesEmissionNames(t *testing.T) {
	foo := withBody(newDecl("Foo", model.DeclClass, model.DeclFlagPublic|model.DeclFlagAppDefined, 0), "var $x = 1;")
	foo.EmissionName = "$x"

	out, _ := assembleAll(t, graphOf(foo), SelectOptions{})
	if !strings.Contains(out, "Foo: $x") {
		t.Fatalf("registration must pair the public name with the emission name:\n%s", out)
	}
}

func TestAssembleInternalTable(t *testing.T) {
	helper := withBody(newDecl("Helper", model.DeclClass, model.DeclFlagAppDefined, 0), "var Helper = 1;")
	container := withBody(newDecl("Utils", model.DeclClass, model.DeclFlagAppDefined|model.DeclFlagModuleContainer, 0), "var Utils = {};")
	structural := withBody(newDecl("Shape", model.DeclRecord, model.DeclFlagAppDefined, 0), "var Shape = {};")

	out, bag := assembleAll(t, graphOf(helper, container, structural), SelectOptions{})
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	if !strings.Contains(out, "Helper: Helper") {
		t.Fatalf("internal table missing Helper:\n%s", out)
	}
	// Module containers and constructor-less records need no name lookup.
	if strings.Contains(out, "Utils:") || strings.Contains(out, "Shape:") {
		t.Fatalf("erased declarations leaked into the internal table:\n%s", out)
	}
	// No public declarations -> public table is null.
	if !strings.Contains(out, ", null);") {
		t.Fatalf("public table should be null:\n%s", out)
	}
}

func TestAssembleRecordWithConstructorIsRegistered(t *testing.T) {
	rec := withBody(newDecl("Pair", model.DeclRecord, model.DeclFlagAppDefined, 0), "var Pair = function(a, b) {};")
	ctor := &model.Member{Name: "ctor", EmissionName: "ctor"}
	rec.Members = []*model.Member{ctor}
	rec.Constructor = ctor

	out, _ := assembleAll(t, graphOf(rec), SelectOptions{})
	if !strings.Contains(out, "Pair: Pair") {
		t.Fatalf("record with constructor must be registered:\n%s", out)
	}
}

func TestAssembleExtensionContainerSkippedInPublicTable(t *testing.T) {
	ext := withBody(newDecl("StringExtensions", model.DeclClass,
		model.DeclFlagPublic|model.DeclFlagAppDefined|model.DeclFlagExtensionContainer, 0), "var StringExtensions = {};")
	foo := withBody(newDecl("Foo", model.DeclClass, model.DeclFlagPublic|model.DeclFlagAppDefined, 0), "var Foo = 1;")

	out, _ := assembleAll(t, graphOf(ext, foo), SelectOptions{})
	if strings.Contains(out, "StringExtensions:") {
		t.Fatalf("extension container leaked into the public table:\n%s", out)
	}
	if !strings.Contains(out, "Foo: Foo") {
		t.Fatalf("public table incomplete:\n%s", out)
	}
}

func TestAssembleOmitsWrapperWhenNothingToRegister(t *testing.T) {
	container := withBody(newDecl("Utils", model.DeclClass, model.DeclFlagAppDefined|model.DeclFlagModuleContainer, 0), "var Utils = {};")

	out, bag := assembleAll(t, graphOf(container), SelectOptions{})
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	if strings.Contains(out, "MODULE_REGISTER") {
		t.Fatalf("nothing needs registration, wrapper must be omitted:\n%s", out)
	}
	if !strings.Contains(out, "var Utils = {};") {
		t.Fatalf("declaration body missing:\n%s", out)
	}
}

func TestAssembleMissingBodyIsAnError(t *testing.T) {
	foo := newDecl("Foo", model.DeclClass, model.DeclFlagPublic|model.DeclFlagAppDefined, 0)
	foo.Body = nil

	_, bag := assembleAll(t, graphOf(foo), SelectOptions{})
	if !bag.HasErrors() {
		t.Fatalf("expected a declaration emitter error")
	}
}

func TestAssembleSkipsEmptyMemberBodies(t *testing.T) {
	foo := withBody(newDecl("Foo", model.DeclClass, model.DeclFlagPublic|model.DeclFlagAppDefined, 0), "var Foo = 1;")
	foo.Members = []*model.Member{
		{Name: "empty", EmissionName: "empty", Body: &model.Body{Script: "   \n"}},
		{Name: "real", EmissionName: "real", Body: &model.Body{Script: "Foo.prototype.real = function() {};"}},
	}

	out, _ := assembleAll(t, graphOf(foo), SelectOptions{})
	if !strings.Contains(out, "Foo.prototype.real") {
		t.Fatalf("non-empty member body missing:\n%s", out)
	}
	if strings.Contains(out, "   \n\n") {
		t.Fatalf("whitespace-only member body leaked:\n%s", out)
	}
}

func TestAssembleDeterministic(t *testing.T) {
	build := func() *model.SymbolGraph {
		foo := withBody(newDecl("Foo", model.DeclClass, model.DeclFlagPublic|model.DeclFlagAppDefined, 0), "var Foo = 1;")
		helper := withBody(newDecl("Helper", model.DeclClass, model.DeclFlagAppDefined, 0), "var Helper = 2;")
		return graphOf(foo, helper)
	}
	first, _ := assembleAll(t, build(), SelectOptions{})
	for i := 0; i < 5; i++ {
		next, _ := assembleAll(t, build(), SelectOptions{})
		if next != first {
			t.Fatalf("assembly is not deterministic:\n%s\nvs\n%s", first, next)
		}
	}
}
