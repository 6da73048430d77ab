package codec

import (
	"encoding/json"
)

// JSON is the standard-library JSON codec.
//
// It exists for debuggability: JSON frames are human-readable, which helps
// when inspecting captured error frames. CBOR is the default because it
// carries raw digest bytes without base64 inflation.
type JSON struct{}

// Marshal encodes the value to JSON.
func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal decodes the JSON data into v.
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Name returns the unique name of the codec ("json").
func (JSON) Name() string { return "json" }
