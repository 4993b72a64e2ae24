package playerv1

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// CodecName is registered in place of connect's protobuf JSON codec, so
// requests use the application/json content type.
const CodecName = "json"

// JSONCodec marshals the plain message structs of this package.
type JSONCodec struct{}

// Name returns the codec name.
func (JSONCodec) Name() string {
	return CodecName
}

// Marshal encodes msg as JSON.
func (JSONCodec) Marshal(msg any) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal message")
	}
	return data, nil
}

// Unmarshal decodes JSON into msg. An empty body leaves msg zero.
func (JSONCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return errors.Wrap(err, "failed to unmarshal message")
	}
	return nil
}
