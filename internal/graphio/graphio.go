// Package graphio serializes the resolved program model handed from the
// front-end to the backend as a .dsm file.
package graphio

import (
	"fmt"
	"os"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/Geinome/dsharp/internal/model"
	"github.com/Geinome/dsharp/internal/project"
)

// SchemaVersion is bumped whenever the payload format changes; a mismatch
// invalidates the file rather than being decoded on a best-effort basis.
const SchemaVersion uint16 = 1

const noRef int32 = -1

type filePayload struct {
	Schema     uint16
	Module     string
	Namespaces []namespacePayload
}

type namespacePayload struct {
	Name  string
	Decls []declPayload
}

type declPayload struct {
	Name          string
	QualifiedName string
	Kind          uint8
	Flags         uint16
	Depth         int32
	// Base and Canonical are global declaration indexes in file order,
	// noRef when absent. Constructor is a member index within this
	// declaration.
	Base        int32
	Canonical   int32
	Constructor int32
	Members     []memberPayload
	Body        *bodyPayload
}

type memberPayload struct {
	Name       string
	Flags      uint8
	OverrideOf string
	Body       *bodyPayload
}

type bodyPayload struct {
	Script string
	Scope  *scopePayload
}

type scopePayload struct {
	Bindings []string
	Children []*scopePayload
}

// Encode serializes a graph. Cross-references are written as global
// declaration indexes in file order, so the encoding is deterministic for a
// given graph.
func Encode(g *model.SymbolGraph) ([]byte, error) {
	index := make(map[*model.Declaration]int32)
	var n int32
	for _, ns := range g.Namespaces {
		for _, d := range ns.Declarations {
			index[d] = n
			n++
		}
	}
	ref := func(d *model.Declaration) (int32, error) {
		if d == nil {
			return noRef, nil
		}
		i, ok := index[d]
		if !ok {
			return 0, fmt.Errorf("graphio: reference to %s, which is not in the graph", d.QualifiedName)
		}
		return i, nil
	}

	payload := filePayload{Schema: SchemaVersion, Module: g.ModuleName}
	for _, ns := range g.Namespaces {
		nsp := namespacePayload{Name: ns.Name}
		for _, d := range ns.Declarations {
			base, err := ref(d.Base)
			if err != nil {
				return nil, err
			}
			canonical, err := ref(d.Canonical)
			if err != nil {
				return nil, err
			}
			ctor := noRef
			if d.Constructor != nil {
				ctor = noRef
				for i, m := range d.Members {
					if m == d.Constructor {
						ctor, err = safecast.Conv[int32](i)
						if err != nil {
							return nil, fmt.Errorf("graphio: member index overflow: %w", err)
						}
						break
					}
				}
				if ctor == noRef {
					return nil, fmt.Errorf("graphio: constructor of %s is not among its members", d.QualifiedName)
				}
			}
			dp := declPayload{
				Name:          d.Name,
				QualifiedName: d.QualifiedName,
				Kind:          uint8(d.Kind),
				Flags:         uint16(d.Flags),
				Base:          base,
				Canonical:     canonical,
				Constructor:   ctor,
				Body:          encodeBody(d.Body),
			}
			dp.Depth, err = safecast.Conv[int32](d.Depth)
			if err != nil {
				return nil, fmt.Errorf("graphio: depth overflow for %s: %w", d.QualifiedName, err)
			}
			for _, m := range d.Members {
				dp.Members = append(dp.Members, memberPayload{
					Name:       m.Name,
					Flags:      uint8(m.Flags),
					OverrideOf: m.OverrideOf,
					Body:       encodeBody(m.Body),
				})
			}
			nsp.Decls = append(nsp.Decls, dp)
		}
		payload.Namespaces = append(payload.Namespaces, nsp)
	}
	return msgpack.Marshal(payload)
}

func encodeBody(b *model.Body) *bodyPayload {
	if b == nil {
		return nil
	}
	return &bodyPayload{Script: b.Script, Scope: encodeScope(b.Scope)}
}

func encodeScope(s *model.Scope) *scopePayload {
	if s == nil {
		return nil
	}
	sp := &scopePayload{}
	for _, b := range s.Bindings {
		sp.Bindings = append(sp.Bindings, b.Name)
	}
	for _, child := range s.Children {
		sp.Children = append(sp.Children, encodeScope(child))
	}
	return sp
}

// Decode rebuilds a graph from serialized bytes.
func Decode(data []byte) (*model.SymbolGraph, error) {
	var payload filePayload
	if err := msgpack.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("graphio: %w", err)
	}
	if payload.Schema != SchemaVersion {
		return nil, fmt.Errorf("graphio: model schema %d, this compiler reads %d", payload.Schema, SchemaVersion)
	}

	g := &model.SymbolGraph{ModuleName: payload.Module}
	var flat []*model.Declaration
	var flatPayloads []*declPayload

	for i := range payload.Namespaces {
		nsp := &payload.Namespaces[i]
		ns := &model.Namespace{Name: nsp.Name}
		for j := range nsp.Decls {
			dp := &nsp.Decls[j]
			d := &model.Declaration{
				Name:          dp.Name,
				QualifiedName: dp.QualifiedName,
				EmissionName:  dp.Name,
				Kind:          model.DeclKind(dp.Kind),
				Flags:         model.DeclFlags(dp.Flags),
				Depth:         int(dp.Depth),
				Body:          decodeBody(dp.Body),
			}
			for k := range dp.Members {
				mp := &dp.Members[k]
				d.Members = append(d.Members, &model.Member{
					Name:         mp.Name,
					EmissionName: mp.Name,
					Flags:        model.MemberFlags(mp.Flags),
					OverrideOf:   mp.OverrideOf,
					Body:         decodeBody(mp.Body),
				})
			}
			ns.Declarations = append(ns.Declarations, d)
			flat = append(flat, d)
			flatPayloads = append(flatPayloads, dp)
		}
		g.Namespaces = append(g.Namespaces, ns)
	}

	declAt := func(i int32, what string, of string) (*model.Declaration, error) {
		if i == noRef {
			return nil, nil
		}
		if i < 0 || int(i) >= len(flat) {
			return nil, fmt.Errorf("graphio: %s reference %d of %s out of range", what, i, of)
		}
		return flat[i], nil
	}
	for i, d := range flat {
		dp := flatPayloads[i]
		var err error
		if d.Base, err = declAt(dp.Base, "base", d.QualifiedName); err != nil {
			return nil, err
		}
		if d.Canonical, err = declAt(dp.Canonical, "canonical", d.QualifiedName); err != nil {
			return nil, err
		}
		if dp.Constructor != noRef {
			if dp.Constructor < 0 || int(dp.Constructor) >= len(d.Members) {
				return nil, fmt.Errorf("graphio: constructor reference %d of %s out of range", dp.Constructor, d.QualifiedName)
			}
			d.Constructor = d.Members[dp.Constructor]
		}
	}
	return g, nil
}

func decodeBody(bp *bodyPayload) *model.Body {
	if bp == nil {
		return nil
	}
	return &model.Body{Script: bp.Script, Scope: decodeScope(bp.Scope, nil)}
}

func decodeScope(sp *scopePayload, parent *model.Scope) *model.Scope {
	if sp == nil {
		return nil
	}
	s := model.NewScope(parent)
	for _, name := range sp.Bindings {
		s.Bind(name)
	}
	for _, child := range sp.Children {
		decodeScope(child, s)
	}
	return s
}

// Load reads, hashes and decodes a model file.
func Load(path string) (*model.SymbolGraph, project.Digest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, project.Digest{}, err
	}
	g, err := Decode(data)
	if err != nil {
		return nil, project.Digest{}, fmt.Errorf("%s: %w", path, err)
	}
	return g, project.HashBytes(data), nil
}

// Store encodes a graph and writes it to path.
func Store(path string, g *model.SymbolGraph) error {
	data, err := Encode(g)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
