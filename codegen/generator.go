package codegen

import (
	"bytes"
	"fmt"
	"go/format"
	"text/template"

	log "github.com/sandia-minimega/jetstream/internal/log"
	"github.com/sandia-minimega/jetstream/schema"
	"github.com/sandia-minimega/jetstream/version"
)

// UserBase is the first message-type code available to generated
// interfaces, per spec.md §3.
const UserBase = 101

// Generator accumulates generated Go source into a buffer the way
// vmconfiger's Generator does (Printf/Execute against a bytes.Buffer,
// gofmt'd on Format).
type Generator struct {
	SourceFile string
	Package    string
	Interface  schema.Interface

	buf      bytes.Buffer
	template *template.Template
}

func (g *Generator) Printf(format string, args ...interface{}) {
	fmt.Fprintf(&g.buf, format, args...)
}

func (g *Generator) Execute(name string, data interface{}) error {
	return g.template.ExecuteTemplate(&g.buf, name, data)
}

// Format returns the gofmt-ed contents of the Generator's buffer.
func (g *Generator) Format() []byte {
	src, err := format.Source(g.buf.Bytes())
	if err != nil {
		log.Error("invalid Go generated for %s: %v", g.Interface.Name, err)
		return g.buf.Bytes()
	}
	return src
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"tType": func(i int) uint8 { return schema.TMessageType(UserBase, i) },
		"rType": func(i int) uint8 { return schema.RMessageType(UserBase, i) },
		"paramGoName": func(p schema.Param) string {
			return newParamGen(p.Name, p.Type).GoName
		},
		"paramGoType": func(p schema.Param) string {
			return newParamGen(p.Name, p.Type).GoType
		},
		"paramByteSize": func(p schema.Param) string {
			return newParamGen(p.Name, p.Type).ByteSizeExpr()
		},
		"paramEncode": func(p schema.Param) string {
			return newParamGen(p.Name, p.Type).EncodeExpr()
		},
		"paramDecode": func(p schema.Param) string {
			return newParamGen(p.Name, p.Type).DecodeExpr()
		},
		"resultGoType": func(m schema.Method) string {
			goType, _, _, _ := resultType(m.Result)
			return goType
		},
		"resultByteSize": func(m schema.Method) string {
			_, size, _, _ := resultType(m.Result)
			return size("r.Value")
		},
		"resultEncode": func(m schema.Method) string {
			_, _, encode, _ := resultType(m.Result)
			return encode("r.Value")
		},
		"resultDecode": func(m schema.Method) string {
			_, _, _, decode := resultType(m.Result)
			return decode
		},
	}
}

// Run executes the full template pipeline and leaves the generated source
// in g's buffer; Format returns it gofmt-ed.
func (g *Generator) Run() error {
	if err := g.Interface.Validate(); err != nil {
		return err
	}

	t := template.New("header").Funcs(funcMap())
	template.Must(t.Parse(headerTemplate))
	template.Must(t.New("methodTypes").Parse(methodTypesTemplate))
	template.Must(t.New("service").Parse(serviceTemplate))
	template.Must(t.New("client").Parse(clientTemplate))
	template.Must(t.New("footer").Parse(footerTemplate))
	g.template = t

	digest := version.Digest(g.Interface.CanonicalText())
	protocolVersion := version.ProtocolVersion(g.Interface.Name, g.Interface.Semver, digest)

	header := struct {
		SourceFile             string
		Package                string
		Interface              schema.Interface
		DigestLiteral          string
		ProtocolVersionLiteral string
	}{
		SourceFile:             g.SourceFile,
		Package:                g.Package,
		Interface:              g.Interface,
		DigestLiteral:          digest,
		ProtocolVersionLiteral: protocolVersion,
	}

	if err := g.Execute("header", header); err != nil {
		return err
	}
	if err := g.Execute("methodTypes", header); err != nil {
		return err
	}
	if err := g.Execute("service", header); err != nil {
		return err
	}
	if err := g.Execute("client", header); err != nil {
		return err
	}
	return g.Execute("footer", header)
}
