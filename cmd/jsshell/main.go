// Command jsshell is an interactive REPL client for a jsrouterd instance.
// Its prompt loop is grounded on pkg/miniclient.Conn.Attach: a
// github.com/peterh/liner prompt with history, where ^D (io.EOF) ends the
// session rather than being reported as an error, ^C re-prompts, and
// blank lines are ignored.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"

	"github.com/sandia-minimega/jetstream/examples/echo"
	"github.com/sandia-minimega/jetstream/frame"
	log "github.com/sandia-minimega/jetstream/internal/log"
	"github.com/sandia-minimega/jetstream/rpc"
	"github.com/sandia-minimega/jetstream/transport/tcp"
	"github.com/sandia-minimega/jetstream/version"
	"github.com/sandia-minimega/jetstream/wire"
	"github.com/sandia-minimega/jetstream/wireerr"
)

var (
	f_addr  = flag.String("addr", "localhost:9001", "jsrouterd address to connect to")
	f_msize = flag.Uint("msize", 1<<20, "maximum in-band message size to propose during version negotiation")
)

func usage() {
	fmt.Printf("USAGE: %v [OPTIONS]\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	log.Init()

	stream, err := tcp.Dialer().Dial(*f_addr)
	if err != nil {
		log.Fatalln(err)
	}
	defer stream.Close()

	if err := negotiate(stream, echo.ProtocolVersion, uint32(*f_msize)); err != nil {
		log.Fatalln(err)
	}

	client := echo.NewEchoIfaceClient(rpc.NewSimpleCaller(stream))

	attach(*f_addr, client)
}

// negotiate sends a single Tversion frame proposing want at the given
// msize and confirms the server's Rversion echoes the same version
// string back, the client-side half of router.Router.Accept's exchange.
func negotiate(stream io.ReadWriter, want string, msize uint32) error {
	req := version.Payload{Msize: msize, Version: want}

	var buf bytes.Buffer
	if err := req.Encode(wire.NewEncoder(&buf)); err != nil {
		return err
	}
	if err := frame.WriteFrame(stream, frame.Frame{Type: frame.Tversion, Body: buf.Bytes()}); err != nil {
		return fmt.Errorf("writing Tversion: %w", err)
	}

	resp, err := frame.ReadFrame(stream)
	if err != nil {
		return fmt.Errorf("reading Rversion: %w", err)
	}
	if resp.Type != frame.Rversion {
		return fmt.Errorf("expected Rversion, got message type %d", resp.Type)
	}
	reply, err := version.DecodePayload(wire.NewDecoder(bytes.NewReader(resp.Body)))
	if err != nil {
		return err
	}
	if reply.Version != want {
		return fmt.Errorf("%w: server replied %q, wanted %q", wireerr.ErrVersionMismatch, reply.Version, want)
	}
	return nil
}

// attach runs the interactive prompt loop until EOF or "quit", sending
// each line as an EchoIface.Ping and printing the reply.
func attach(addr string, client *echo.EchoIfaceClient) {
	fmt.Println("connected to", addr)
	fmt.Println("enter any line to echo it off the server; ^d or 'quit' to exit")
	fmt.Println()

	input := liner.NewLiner()
	defer input.Close()

	input.SetCtrlCAborts(true)

	prompt := fmt.Sprintf("jsshell:%v$ ", addr)

	for {
		line, err := input.Prompt(prompt)
		if err == liner.ErrPromptAborted {
			continue
		} else if err == io.EOF {
			break
		} else if err != nil {
			log.Errorln(err)
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		input.AppendHistory(line)

		if line == "quit" || line == "disconnect" {
			break
		}

		resp, err := client.Ping(context.Background(), echo.PingRequest{Msg: line})
		if err != nil {
			log.Errorln(err)
			continue
		}
		fmt.Println(resp.Value)
	}
}
