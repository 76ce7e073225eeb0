package router

import (
	"bytes"

	"github.com/sandia-minimega/jetstream/version"
	"github.com/sandia-minimega/jetstream/wire"
)

func encodePayload(p version.Payload) ([]byte, error) {
	var buf bytes.Buffer
	if err := p.Encode(wire.NewEncoder(&buf)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
