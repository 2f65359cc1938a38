package rpc

import (
	"bytes"
	"encoding/gob"

	"google.golang.org/grpc/encoding"
)

// gobCodec is a minimal grpc encoding.Codec for the query service's plain Go
// structs, standing in for a protoc-generated codec since the wire messages
// here are a single pair of int64s and a bool — not worth a .proto file and
// code-gen step.
type gobCodec struct{}

func (gobCodec) Marshal(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (gobCodec) Unmarshal(data []byte, v interface{}) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}

func (gobCodec) Name() string { return codecName }

// codecName is the grpc content-subtype ("application/grpc+gob") both the
// client and server negotiate on.
const codecName = "gob"

func init() {
	encoding.RegisterCodec(gobCodec{})
}
