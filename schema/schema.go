// Package schema is the interface-declaration data model shared by
// codegen and version: an Interface's canonical text is what version.Digest
// hashes into the protocol-version string.
package schema

import (
	"fmt"
	"strings"
)

// Interface is a single jetstream service declaration: a name and an
// ordered list of methods. Method order determines message-type numbering
// (spec.md §3: "T=101+2i, R=101+2i+1" where i is the method's index).
type Interface struct {
	Name    string
	Semver  string
	Methods []Method
}

// Method is one RPC: a name, ordered parameters, and a result type. Result
// is the textual Go-ish type written in the service interface declaration,
// e.g. "Result<String>" becomes a <Method>Response struct with a string
// Value field in generated code; schema itself only needs the text for
// canonicalization and the codegen package's own type mapping (see
// codegen's resultType).
type Method struct {
	Name   string
	Params []Param
	Result string
	// Traced marks a method for the optional tracing hook (SUPPLEMENTED
	// FEATURES, jetstream_macros/src/service/tracing.rs). codegen.ParseFile
	// sets it from a "jetstream:traced" doc comment; the generator's
	// templates do not read it, so a traced method's generated code is the
	// same as an untraced one's.
	Traced bool
}

// Param is one method parameter: a name and its declared type text.
type Param struct {
	Name string
	Type string
}

// CanonicalText renders a deterministic textual form of the interface,
// independent of source formatting (whitespace, comment placement), for
// hashing into the protocol-version digest (version.Digest). Two
// interfaces with the same CanonicalText are wire-compatible; any change
// to a method's name, parameter list, or result type changes it.
func (i Interface) CanonicalText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "interface %s {\n", i.Name)
	for _, m := range i.Methods {
		fmt.Fprintf(&b, "  %s(", m.Name)
		for j, p := range m.Params {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s: %s", p.Name, p.Type)
		}
		fmt.Fprintf(&b, ") -> %s;\n", m.Result)
	}
	b.WriteString("}\n")
	return b.String()
}

// TMessageType returns the Tmessage discriminant for the method at index i
// within its interface, per spec.md §3's UserBase-offset scheme.
func TMessageType(userBase int, i int) uint8 { return uint8(userBase + 2*i) }

// RMessageType returns the Rmessage discriminant for the method at index i.
func RMessageType(userBase int, i int) uint8 { return uint8(userBase + 2*i + 1) }

// Validate checks the structural invariants spec.md §4.5 requires of a
// schema before codegen runs: non-empty interface name, unique method
// names, and a method count that keeps every message-type code within a
// single byte (the wire format's Frame.Type is u8).
func (i Interface) Validate() error {
	if i.Name == "" {
		return fmt.Errorf("schema: interface has no name")
	}
	seen := make(map[string]bool, len(i.Methods))
	for _, m := range i.Methods {
		if m.Name == "" {
			return fmt.Errorf("schema: interface %s has an unnamed method", i.Name)
		}
		if seen[m.Name] {
			return fmt.Errorf("schema: interface %s declares method %s more than once", i.Name, m.Name)
		}
		seen[m.Name] = true
	}
	const userBase = 101
	if userBase+2*len(i.Methods) > 255 {
		return fmt.Errorf("schema: interface %s has too many methods for a u8 message-type namespace", i.Name)
	}
	return nil
}
