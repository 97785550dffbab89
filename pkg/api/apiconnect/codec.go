// Package apiconnect wires the messages of package api to Connect handlers and
// clients. Every procedure is served under /splitgroup.v1.<Service>/<Method>
// and speaks JSON through Codec.
package apiconnect

import (
	"encoding/json"
	"strings"

	"connectrpc.com/connect"
)

// jsonCodec marshals the plain Go messages of package api with encoding/json.
// It replaces Connect's default JSON codec, which only handles protobuf messages.
type jsonCodec struct {
	name string
}

var _ connect.Codec = jsonCodec{}

// Codec is the codec clients use.
var Codec connect.Codec = jsonCodec{name: "json"}

func (c jsonCodec) Name() string { return c.name }

func (jsonCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (jsonCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, msg)
}

// handlerOptions registers the JSON codec under both names Connect's defaults use.
func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{
		connect.WithCodec(Codec),
		connect.WithCodec(jsonCodec{name: "json; charset=utf-8"}),
	}, opts...)
}

func clientOptions(opts []connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{connect.WithCodec(Codec)}, opts...)
}

func procedure(service, method string) string {
	return "/" + service + "/" + method
}

func trimBase(baseURL string) string {
	return strings.TrimRight(baseURL, "/")
}
