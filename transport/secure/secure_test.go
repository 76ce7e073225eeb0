package secure

import (
	"bytes"
	"io"
	"testing"

	"github.com/sandia-minimega/jetstream/transport/pipe"
)

func TestConnRoundTrip(t *testing.T) {
	a, b := pipe.New()
	var key [KeySize]byte
	for i := range key {
		key[i] = byte(i)
	}

	ca := New(a, key)
	cb := New(b, key)

	msg := []byte("a rich error frame's worth of bytes, roughly")
	done := make(chan error, 1)
	go func() {
		_, err := ca.Write(msg)
		done <- err
	}()

	got := make([]byte, len(msg))
	if _, err := io.ReadFull(cb, got); err != nil {
		t.Fatal(err)
	}
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, msg) {
		t.Fatalf("got %q, want %q", got, msg)
	}
}

func TestConnRejectsWrongKey(t *testing.T) {
	a, b := pipe.New()
	var key1, key2 [KeySize]byte
	key2[0] = 1

	ca := New(a, key1)
	cb := New(b, key2)

	go ca.Write([]byte("hello"))

	buf := make([]byte, 5)
	if _, err := io.ReadFull(cb, buf); err == nil {
		t.Fatal("expected authentication failure with mismatched keys")
	}
}
