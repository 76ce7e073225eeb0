// Package codegen implements the schema codegen driver of spec.md §4.5: it
// parses a Go source file declaring a service interface and emits the
// per-method request/response structs, message-type constants, tagged
// unions, server wrapper, and client stub for it. Its structure mirrors
// vmconfiger's Generator (parse with go/ast, accumulate into a buffer with
// Printf/Execute, gofmt with go/format.Source).
package codegen

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"strings"

	"github.com/sandia-minimega/jetstream/schema"
)

// Marker is the comment that flags an interface type declaration as a
// jetstream service for ParseFile to pick up, analogous to vmconfiger
// keying off `//go:generate` comments on the types it's told to process.
const Marker = "//jetstream:service"

// ParseFile parses the Go source file at path and returns every interface
// declaration immediately preceded by the Marker comment. A marked
// interface that fails schema.Interface.Validate is skipped without an
// error.
func ParseFile(path string) ([]schema.Interface, error) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, path, nil, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("codegen: parsing %s: %w", path, err)
	}

	var out []schema.Interface
	ast.Inspect(f, func(n ast.Node) bool {
		gd, ok := n.(*ast.GenDecl)
		if !ok || gd.Tok != token.TYPE || !hasMarker(gd.Doc) {
			return true
		}
		for _, spec := range gd.Specs {
			ts, ok := spec.(*ast.TypeSpec)
			if !ok {
				continue
			}
			it, ok := ts.Type.(*ast.InterfaceType)
			if !ok {
				continue
			}
			iface, err := parseInterface(ts.Name.Name, it)
			if err != nil {
				continue
			}
			out = append(out, iface)
		}
		return true
	})
	return out, nil
}

func hasMarker(doc *ast.CommentGroup) bool {
	if doc == nil {
		return false
	}
	for _, c := range doc.List {
		if strings.HasPrefix(strings.TrimSpace(c.Text), Marker) {
			return true
		}
	}
	return false
}

func parseInterface(name string, it *ast.InterfaceType) (schema.Interface, error) {
	iface := schema.Interface{Name: name, Semver: "0.1.0"}

	for _, m := range it.Methods.List {
		ft, ok := m.Type.(*ast.FuncType)
		if !ok || len(m.Names) == 0 {
			continue
		}
		method := schema.Method{Name: m.Names[0].Name}
		if m.Doc != nil {
			for _, c := range m.Doc.List {
				if strings.Contains(c.Text, "jetstream:traced") {
					method.Traced = true
				}
			}
		}

		if ft.Params != nil {
			for _, field := range ft.Params.List {
				typ := exprString(field.Type)
				if len(field.Names) == 0 {
					method.Params = append(method.Params, schema.Param{Name: "_", Type: typ})
					continue
				}
				for _, n := range field.Names {
					method.Params = append(method.Params, schema.Param{Name: n.Name, Type: typ})
				}
			}
		}

		method.Result = resultString(ft.Results)
		iface.Methods = append(iface.Methods, method)
	}

	return iface, iface.Validate()
}

func exprString(e ast.Expr) string {
	switch t := e.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.ArrayType:
		return "[]" + exprString(t.Elt)
	case *ast.StarExpr:
		return "*" + exprString(t.X)
	case *ast.SelectorExpr:
		return exprString(t.X) + "." + t.Sel.Name
	default:
		return fmt.Sprintf("%T", e)
	}
}

// resultString renders a method's result list as spec.md's "Result<T>"
// shorthand: a Go service method is declared `(T, error)`, which the
// generator treats identically to "Result<T>" in the distilled spec's
// method grammar.
func resultString(results *ast.FieldList) string {
	if results == nil || len(results.List) == 0 {
		return "Result<()>"
	}
	// the trailing `error` is implicit in every jetstream method; only the
	// first result field carries the payload type.
	return fmt.Sprintf("Result<%s>", exprString(results.List[0].Type))
}
