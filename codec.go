package stoma

import "encoding/json"

// Codec converts declared payload types to and from their wire encoding.
// It is an opaque collaborator: the core never inspects the bytes it
// produces. The default is JSONCodec.
type Codec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, v any) error
}

// JSONCodec is the default Codec, backed by encoding/json.
type JSONCodec struct{}

func (JSONCodec) Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONCodec) Decode(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
