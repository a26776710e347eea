// Package apiv1 defines the request and response messages of the eventsplit.v1
// RPC API and the JSON codec both sides speak.
package apiv1

import "encoding/json"

// CodecName is the connect codec name; requests use application/json.
const CodecName = "json"

// Codec marshals messages with encoding/json. The messages are plain Go
// structs, so the protobuf codecs connect installs by default cannot be used.
type Codec struct{}

// Name implements connect.Codec.
func (Codec) Name() string { return CodecName }

// Marshal implements connect.Codec.
func (Codec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

// Unmarshal implements connect.Codec. An empty body decodes to the zero message.
func (Codec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, msg)
}
