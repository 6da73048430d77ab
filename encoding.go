package hashwork

import (
	"encoding/base32"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// Encoding selects the textual rendering of a digest.
type Encoding uint8

const (
	// EncodingHex renders lowercase hexadecimal (the default).
	EncodingHex Encoding = iota
	// EncodingBase64 renders standard base64 with padding.
	EncodingBase64
	// EncodingBase64URL renders URL-safe base64 without padding.
	EncodingBase64URL
	// EncodingBase32 renders standard base32 with padding.
	EncodingBase32
	// EncodingBuffer is the sentinel for "no text encoding": Encode returns
	// the raw digest bytes as an uninterpreted string.
	EncodingBuffer
)

// String returns the stable name of the encoding.
func (e Encoding) String() string {
	switch e {
	case EncodingHex:
		return "hex"
	case EncodingBase64:
		return "base64"
	case EncodingBase64URL:
		return "base64url"
	case EncodingBase32:
		return "base32"
	case EncodingBuffer:
		return "buffer"
	default:
		return fmt.Sprintf("Encoding(%d)", uint8(e))
	}
}

// ParseEncoding returns the encoding for its stable name.
func ParseEncoding(name string) (Encoding, error) {
	switch name {
	case "hex":
		return EncodingHex, nil
	case "base64":
		return EncodingBase64, nil
	case "base64url":
		return EncodingBase64URL, nil
	case "base32":
		return EncodingBase32, nil
	case "buffer":
		return EncodingBuffer, nil
	default:
		return 0, invalidInputf("unknown encoding %q", name)
	}
}

// Digest is the raw output of a hash algorithm.
type Digest []byte

// Bytes returns the raw digest bytes.
func (d Digest) Bytes() []byte { return d }

// Hex returns the lowercase hexadecimal rendering.
func (d Digest) Hex() string { return hex.EncodeToString(d) }

// Base64 returns the standard base64 rendering.
func (d Digest) Base64() string { return base64.StdEncoding.EncodeToString(d) }

// Base64URL returns the unpadded URL-safe base64 rendering.
func (d Digest) Base64URL() string { return base64.RawURLEncoding.EncodeToString(d) }

// Base32 returns the standard base32 rendering.
func (d Digest) Base32() string { return base32.StdEncoding.EncodeToString(d) }

// Encode renders the digest in the given encoding. EncodingBuffer returns
// the raw bytes as an uninterpreted string.
func (d Digest) Encode(e Encoding) string {
	switch e {
	case EncodingBase64:
		return d.Base64()
	case EncodingBase64URL:
		return d.Base64URL()
	case EncodingBase32:
		return d.Base32()
	case EncodingBuffer:
		return string(d)
	default:
		return d.Hex()
	}
}

// String returns the hex rendering.
func (d Digest) String() string { return d.Hex() }
