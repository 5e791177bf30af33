package ir

import (
	"bytes"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// SchemaVersion is bumped whenever the encoded layout changes.
const SchemaVersion uint16 = 1

type envelope struct {
	Schema uint16  `msgpack:"schema"`
	Module *Module `msgpack:"module"`
}

// Encode writes m in msgpack form.
func Encode(w io.Writer, m *Module) error {
	enc := msgpack.NewEncoder(w)
	return enc.Encode(envelope{Schema: SchemaVersion, Module: m})
}

// Decode reads a module written by Encode.
func Decode(r io.Reader) (*Module, error) {
	var env envelope
	dec := msgpack.NewDecoder(r)
	if err := dec.Decode(&env); err != nil {
		return nil, err
	}
	if env.Schema != SchemaVersion {
		return nil, fmt.Errorf("ir: schema %d, want %d", env.Schema, SchemaVersion)
	}
	if env.Module == nil {
		return nil, fmt.Errorf("ir: empty payload")
	}
	return env.Module, nil
}

// Marshal encodes m into a byte slice.
func Marshal(m *Module) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a module from data.
func Unmarshal(data []byte) (*Module, error) {
	return Decode(bytes.NewReader(data))
}
