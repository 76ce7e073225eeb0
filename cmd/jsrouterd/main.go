// Command jsrouterd is a minimal TCP-listening router host: it accepts
// connections, negotiates a version via router.Router, and hands each
// stream off to the matched service. Its flag/listener shape is grounded
// on minimega's own cmd/minimega/main.go (flag.String for the bind
// address, log.Init() before anything else runs).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	log "github.com/sandia-minimega/jetstream/internal/log"
	"github.com/sandia-minimega/jetstream/examples/echo"
	"github.com/sandia-minimega/jetstream/router"
	"github.com/sandia-minimega/jetstream/transport/tcp"
)

var (
	f_addr  = flag.String("addr", ":9001", "address to listen on")
	f_msize = flag.Uint("msize", 1<<20, "maximum in-band message size to advertise during version negotiation")
)

func usage() {
	fmt.Printf("USAGE: %v [OPTIONS]\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	log.Init()

	ln, err := tcp.Listen(*f_addr)
	if err != nil {
		log.Fatalln(err)
	}
	defer ln.Close()

	r := router.New(uint32(*f_msize))
	r.Register(echo.NewEchoIfaceService(echo.Server{}))

	log.Info("jsrouterd listening on %v", ln.Addr())

	for {
		stream, err := ln.Accept()
		if err != nil {
			log.Errorln(err)
			continue
		}

		go func() {
			defer stream.Close()
			if err := r.Accept(context.Background(), stream); err != nil {
				log.Info("connection closed: %v", err)
			}
		}()
	}
}
