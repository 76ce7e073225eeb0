// Command jsgen is the codegen CLI front-end for spec.md §4.5: it parses a
// Go source file declaring one or more `//jetstream:service` interfaces and
// writes the generated request/response types, dispatcher, and client stub
// next to it. Its flag/usage shape mirrors cmd/vmconfiger.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sandia-minimega/jetstream/internal/log"
	"github.com/sandia-minimega/jetstream/codegen"
)

var (
	f_out     = flag.String("out", "", "output file (default: <lower-cased interface name>_generated.go next to the input)")
	f_package = flag.String("package", "", "package name for generated code (default: input file's directory name)")
)

func usage() {
	fmt.Printf("USAGE: %v [OPTIONS] <file.go>\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	log.Init()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}

	in := flag.Arg(0)

	ifaces, err := codegen.ParseFile(in)
	if err != nil {
		log.Fatalln(err)
	}
	if len(ifaces) == 0 {
		log.Fatal("no %s interfaces found in %s", codegen.Marker, in)
	}

	pkg := *f_package
	if pkg == "" {
		pkg = filepath.Base(filepath.Dir(in))
	}

	for _, iface := range ifaces {
		g := &codegen.Generator{SourceFile: in, Package: pkg, Interface: iface}
		if err := g.Run(); err != nil {
			log.Fatalln(err)
		}

		out := *f_out
		if out == "" {
			out = filepath.Join(filepath.Dir(in), strings.ToLower(iface.Name)+"_generated.go")
		}
		if err := os.WriteFile(out, g.Format(), 0644); err != nil {
			log.Fatalln(err)
		}
		log.Info("wrote %s", out)
	}
}
