// Package abi exports the external interface of a resolved namespace as a
// JSON document, plus a metadata record identifying the build.
package abi

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/cespare/xxhash/v2"

	"silica/internal/ast"
	"silica/internal/sema"
)

// Parameter describes one input or output slot of an entry. Struct-typed
// slots carry their flattened field list in Components.
type Parameter struct {
	Name       string      `json:"name"`
	Type       string      `json:"type"`
	Indexed    bool        `json:"indexed,omitempty"`
	Components []Parameter `json:"components,omitempty"`
}

// Entry is one callable or observable surface of a contract: a function, a
// constructor, or an event.
type Entry struct {
	Type            string      `json:"type"`
	Name            string      `json:"name,omitempty"`
	Inputs          []Parameter `json:"inputs"`
	Outputs         []Parameter `json:"outputs,omitempty"`
	StateMutability string      `json:"stateMutability,omitempty"`
}

// ContractABI is the full external interface of one contract.
type ContractABI struct {
	Name      string  `json:"name"`
	ProgramID string  `json:"programId,omitempty"`
	Entries   []Entry `json:"abi"`
}

// Metadata identifies the inputs of a build well enough to reproduce it.
type Metadata struct {
	Compiler   string `json:"compiler"`
	Version    string `json:"version"`
	Target     string `json:"target"`
	SourceHash string `json:"sourceHash"`
}

// Document is the complete export for one source unit.
type Document struct {
	Contracts []ContractABI `json:"contracts"`
	Metadata  Metadata      `json:"metadata"`
}

const compilerName = "silica"

// Build assembles the ABI document for a resolved namespace. sources are the
// raw file contents that produced it; their order is fixed by the caller so
// the hash is stable.
func Build(ns *sema.Namespace, version string, sources ...string) *Document {
	doc := &Document{
		Metadata: Metadata{
			Compiler:   compilerName,
			Version:    version,
			Target:     ns.Target.String(),
			SourceHash: hashSources(sources),
		},
	}
	for _, c := range ns.Contracts {
		doc.Contracts = append(doc.Contracts, contractABI(c))
	}
	return doc
}

// Encode renders the document as indented JSON with a trailing newline.
func (d *Document) Encode() ([]byte, error) {
	out, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

// ContractNamed returns the ABI of one contract, or nil.
func (d *Document) ContractNamed(name string) *ContractABI {
	for i := range d.Contracts {
		if d.Contracts[i].Name == name {
			return &d.Contracts[i]
		}
	}
	return nil
}

func hashSources(sources []string) string {
	h := xxhash.New()
	for _, src := range sources {
		h.WriteString(src)
		h.Write([]byte{0})
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

func contractABI(c *sema.Contract) ContractABI {
	out := ContractABI{Name: c.Name, ProgramID: c.ProgramID}

	if c.Ctor != nil {
		out.Entries = append(out.Entries, Entry{
			Type:            "constructor",
			Inputs:          parameters(c.Ctor.Params),
			StateMutability: c.Ctor.Mutability.String(),
		})
	}
	for _, fn := range externalFunctions(c) {
		entry := Entry{
			Type:            "function",
			Name:            fn.Name,
			Inputs:          parameters(fn.Params),
			Outputs:         parameters(fn.Returns),
			StateMutability: fn.Mutability.String(),
		}
		out.Entries = append(out.Entries, entry)
	}
	for _, v := range publicVariables(c) {
		out.Entries = append(out.Entries, getterEntry(v))
	}
	for _, ev := range contractEvents(c) {
		entry := Entry{Type: "event", Name: ev.Name, Inputs: make([]Parameter, 0, len(ev.Fields))}
		for _, f := range ev.Fields {
			p := parameter(f.Name, f.Type)
			p.Indexed = f.Indexed
			entry.Inputs = append(entry.Inputs, p)
		}
		out.Entries = append(out.Entries, entry)
	}
	return out
}

// externalFunctions collects the callable surface of c including inherited
// functions, nearest declaration first, sorted by name for stable output.
func externalFunctions(c *sema.Contract) []*sema.Function {
	var out []*sema.Function
	seenNames := map[string]bool{}
	for cur := []*sema.Contract{c}; len(cur) > 0; {
		next := cur[0]
		cur = append(cur[1:], next.Bases...)
		for _, fn := range next.Functions {
			if !exported(fn.Visibility) || seenNames[fn.Name+signature(fn)] {
				continue
			}
			seenNames[fn.Name+signature(fn)] = true
			out = append(out, fn)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func exported(v ast.Visibility) bool {
	return v == ast.VisPublic || v == ast.VisExternal
}

func signature(fn *sema.Function) string {
	sig := "("
	for i, p := range fn.Params {
		if i > 0 {
			sig += ","
		}
		sig += typeName(p.Type)
	}
	return sig + ")"
}

func publicVariables(c *sema.Contract) []*sema.Variable {
	var out []*sema.Variable
	for _, v := range c.Variables {
		if v.Public {
			out = append(out, v)
		}
	}
	for _, base := range c.Bases {
		out = append(out, publicVariables(base)...)
	}
	return out
}

func contractEvents(c *sema.Contract) []*sema.Event {
	out := append([]*sema.Event(nil), c.Events...)
	for _, base := range c.Bases {
		out = append(out, contractEvents(base)...)
	}
	return out
}

// getterEntry synthesizes the read accessor a public state variable exposes.
// Mapping keys and array indices become inputs, innermost last.
func getterEntry(v *sema.Variable) Entry {
	entry := Entry{Type: "function", Name: v.Name, StateMutability: "view", Inputs: []Parameter{}}
	t := v.Type
	for {
		switch inner := t.(type) {
		case sema.MappingType:
			entry.Inputs = append(entry.Inputs, parameter("", inner.Key))
			t = inner.Value
			continue
		case sema.ArrayType:
			entry.Inputs = append(entry.Inputs, Parameter{Type: "uint256"})
			t = inner.Elem
			continue
		}
		break
	}
	entry.Outputs = []Parameter{parameter("", t)}
	return entry
}

func parameters(params []*sema.Param) []Parameter {
	out := make([]Parameter, 0, len(params))
	for _, p := range params {
		out = append(out, parameter(p.Name, p.Type))
	}
	return out
}

func parameter(name string, t sema.Type) Parameter {
	p := Parameter{Name: name, Type: typeName(t)}
	if s, ok := sema.Deref(t).(*sema.StructType); ok {
		for _, f := range s.Decl.Fields {
			p.Components = append(p.Components, parameter(f.Name, f.Type))
		}
	}
	return p
}

// typeName maps a resolved type to its wire name. Structs flatten to tuple,
// enums travel as their ordinal width, contract references as addresses.
func typeName(t sema.Type) string {
	switch t := sema.Deref(t).(type) {
	case sema.IntegerType:
		return t.String()
	case sema.BoolType:
		return "bool"
	case sema.AddressType:
		return "address"
	case sema.StringType:
		return "string"
	case sema.BytesType:
		return "bytes"
	case sema.FixedBytesType:
		return t.String()
	case sema.ArrayType:
		if t.Length == sema.DynamicLength {
			return typeName(t.Elem) + "[]"
		}
		return fmt.Sprintf("%s[%d]", typeName(t.Elem), t.Length)
	case *sema.StructType:
		return "tuple"
	case *sema.EnumType:
		return "uint8"
	case *sema.ContractType:
		return "address"
	case sema.MappingType:
		// Mappings never cross the external boundary directly; getters
		// unroll them before this point.
		return t.String()
	}
	return t.String()
}
