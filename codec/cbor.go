package codec

import (
	"github.com/fxamacker/cbor/v2"
)

// CBOR encodes frames as deterministic CBOR (RFC 8949 core deterministic
// encoding). Byte slices round-trip without base64 inflation, which matters
// for digest payloads.
type CBOR struct{}

var (
	cborEncMode, _ = cbor.CoreDetEncOptions().EncMode()
	cborDecMode, _ = cbor.DecOptions{}.DecMode()
)

// Marshal encodes the value as deterministic CBOR.
func (CBOR) Marshal(v any) ([]byte, error) { return cborEncMode.Marshal(v) }

// Unmarshal decodes CBOR data into v.
func (CBOR) Unmarshal(data []byte, v any) error { return cborDecMode.Unmarshal(data, v) }

// Name returns the unique name of the codec ("cbor").
func (CBOR) Name() string { return "cbor" }
