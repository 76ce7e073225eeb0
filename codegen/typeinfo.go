package codegen

import (
	"fmt"
	"strings"
)

// paramGen is the template-ready rendering of one schema.Param: its Go
// field name/type plus the byte_size/encode/decode expressions the method
// templates splice in. This is generated expression text (one concrete
// snippet per field) rather than a runtime-generic helper, matching
// vmconfiger's approach of emitting one template instantiation per field
// type instead of a reflective encoder.
type paramGen struct {
	GoName string
	GoType string

	sizeExpr   func(path string) string
	encodeExpr func(path string) string
	decodeExpr string
}

func (p paramGen) ByteSizeExpr() string { return p.sizeExpr("r." + p.GoName) }
func (p paramGen) EncodeExpr() string   { return p.encodeExpr("r." + p.GoName) }
func (p paramGen) DecodeExpr() string   { return p.decodeExpr }

// resolveType maps one schema type name (a primitive, "String", "Bytes",
// or the name of another generated wire.Value type) onto its Go type and
// the three expression fragments needed to splice a byte_size/encode/decode
// call into the method templates.
func resolveType(schemaType string) (goType string, size func(string) string, encode func(string) string, decode string) {
	switch schemaType {
	case "String", "string":
		return "string",
			func(p string) string { return fmt.Sprintf("mustStringSize(%s)", p) },
			func(p string) string { return fmt.Sprintf("e.String(%s)", p) },
			"d.String()"
	case "Bytes", "[]byte":
		return "[]byte",
			func(p string) string { return fmt.Sprintf("wire.BytesByteSize(%s)", p) },
			func(p string) string { return fmt.Sprintf("e.Bytes(%s)", p) },
			"d.Bytes()"
	case "Bool", "bool":
		return "bool", constSize(1), callWith("e.Bool"), "d.Bool()"
	case "U8", "uint8":
		return "uint8", constSize(1), callWith("e.U8"), "d.U8()"
	case "I8", "int8":
		return "int8", constSize(1), callWith("e.I8"), "d.I8()"
	case "U16", "uint16":
		return "uint16", constSize(2), callWith("e.U16"), "d.U16()"
	case "I16", "int16":
		return "int16", constSize(2), callWith("e.I16"), "d.I16()"
	case "U32", "uint32":
		return "uint32", constSize(4), callWith("e.U32"), "d.U32()"
	case "I32", "int32":
		return "int32", constSize(4), callWith("e.I32"), "d.I32()"
	case "U64", "uint64":
		return "uint64", constSize(8), callWith("e.U64"), "d.U64()"
	case "I64", "int64":
		return "int64", constSize(8), callWith("e.I64"), "d.I64()"
	case "SystemTime":
		return "uint64", constSize(8), callWith("e.SystemTime"), "d.SystemTime()"
	case "()":
		return "struct{}",
			func(string) string { return "0" },
			func(string) string { return "nil" },
			"struct{}{}, error(nil)"
	default:
		// A reference to another generated wire.Value type: reuse its own
		// ByteSize/Encode/Decode methods directly.
		return schemaType,
			func(p string) string { return fmt.Sprintf("%s.ByteSize()", p) },
			func(p string) string { return fmt.Sprintf("%s.Encode(e)", p) },
			fmt.Sprintf("Decode%s(d)", schemaType)
	}
}

func constSize(n int) func(string) string {
	return func(string) string { return fmt.Sprintf("%d", n) }
}

func callWith(fn string) func(string) string {
	return func(p string) string { return fmt.Sprintf("%s(%s)", fn, p) }
}

func newParamGen(name, schemaType string) paramGen {
	goType, size, encode, decode := resolveType(schemaType)
	return paramGen{GoName: exportName(name), GoType: goType, sizeExpr: size, encodeExpr: encode, decodeExpr: decode}
}

// exportName capitalizes a parameter's first letter so it becomes an
// exported struct field, since request/response payloads are used across
// package boundaries (client stub vs. server implementation).
func exportName(s string) string {
	if s == "" || s == "_" {
		return "Value"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// resultType strips the "Result<...>" wrapper spec.md's method grammar
// uses and resolves the inner type the same way a parameter's type is
// resolved.
func resultType(resultText string) (goType string, size func(string) string, encode func(string) string, decode string) {
	inner := resultText
	if strings.HasPrefix(inner, "Result<") && strings.HasSuffix(inner, ">") {
		inner = inner[len("Result<") : len(inner)-1]
	}
	return resolveType(inner)
}
