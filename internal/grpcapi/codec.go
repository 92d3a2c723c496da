package grpcapi

import (
	"encoding/json"
	"fmt"

	"google.golang.org/grpc/encoding"
)

// codecName is registered as the content-subtype every dispatch-router gRPC
// call uses. There is no .proto in this repo to generate wire-format
// messages from (see DESIGN.md), so the service is built directly on
// google.golang.org/grpc with a JSON codec standing in for protobuf — every
// hand-written request/response struct in this package is both the Go type
// and the wire message.
const codecName = "json"

type jsonCodec struct{}

func (jsonCodec) Name() string { return codecName }

func (jsonCodec) Marshal(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("grpcapi: marshal: %w", err)
	}
	return b, nil
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("grpcapi: unmarshal: %w", err)
	}
	return nil
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
