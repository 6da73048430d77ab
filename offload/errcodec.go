package offload

import (
	"errors"
	iofs "io/fs"
	"runtime/debug"

	"github.com/hashwork/hashwork/codec"
	"github.com/hashwork/hashwork/digest"
)

// Error kinds carried across the worker boundary. Decoding a known kind
// attaches the matching typed cause so errors.Is/As keep working on the
// caller side.
const (
	KindUnsupportedAlgorithm = "unsupported_algorithm"
	KindInvalidInput         = "invalid_input"
	KindIO                   = "io"
	KindGeneric              = "generic"
)

// Field is one scalar attribute of an encoded error. Exactly one of the
// value pointers is set; composite values cannot be represented, which is
// the point: nothing non-serializable can enter a frame.
type Field struct {
	Name  string   `cbor:"name" json:"name"`
	Str   *string  `cbor:"str,omitempty" json:"str,omitempty"`
	Int   *int64   `cbor:"int,omitempty" json:"int,omitempty"`
	Float *float64 `cbor:"float,omitempty" json:"float,omitempty"`
	Bool  *bool    `cbor:"bool,omitempty" json:"bool,omitempty"`
}

// StringField, IntField, FloatField and BoolField construct scalar fields.
func StringField(name, v string) Field { return Field{Name: name, Str: &v} }
func IntField(name string, v int64) Field {
	return Field{Name: name, Int: &v}
}
func FloatField(name string, v float64) Field {
	return Field{Name: name, Float: &v}
}
func BoolField(name string, v bool) Field { return Field{Name: name, Bool: &v} }

// Value returns the scalar as an any.
func (f Field) Value() any {
	switch {
	case f.Str != nil:
		return *f.Str
	case f.Int != nil:
		return *f.Int
	case f.Float != nil:
		return *f.Float
	case f.Bool != nil:
		return *f.Bool
	default:
		return nil
	}
}

// Fielder lets error types declare the scalar fields that should cross the
// worker boundary. Fields not declared here are dropped; that loss is part
// of the contract, not an accident.
type Fielder interface {
	ErrorFields() []Field
}

// EncodedError is the serializable form of an error raised inside the
// worker. Message and scalar fields survive the round trip; the stack is
// the worker-side stack, preserved verbatim in the decoded error.
type EncodedError struct {
	Kind    string  `cbor:"kind" json:"kind"`
	Message string  `cbor:"message" json:"message"`
	Stack   string  `cbor:"stack,omitempty" json:"stack,omitempty"`
	Fields  []Field `cbor:"fields,omitempty" json:"fields,omitempty"`
}

// Encode builds the serializable form of err, capturing the current
// (worker-side) stack. Known kinds are tagged so decoding can reattach a
// typed cause.
func Encode(err error) *EncodedError {
	enc := &EncodedError{
		Kind:    KindGeneric,
		Message: err.Error(),
		Stack:   string(debug.Stack()),
	}

	var ua *digest.UnsupportedAlgorithmError
	switch {
	case errors.As(err, &ua):
		enc.Kind = KindUnsupportedAlgorithm
		enc.Fields = append(enc.Fields, StringField("algorithm", ua.Algorithm))
	case isIOError(err):
		enc.Kind = KindIO
		var pe *iofs.PathError
		if errors.As(err, &pe) {
			enc.Fields = append(enc.Fields,
				StringField("op", pe.Op),
				StringField("path", pe.Path))
		}
		if errors.Is(err, iofs.ErrNotExist) {
			enc.Fields = append(enc.Fields, BoolField("not_exist", true))
		}
	}

	var fielder Fielder
	if errors.As(err, &fielder) {
		enc.Fields = append(enc.Fields, fielder.ErrorFields()...)
	}
	return enc
}

func isIOError(err error) bool {
	var pe *iofs.PathError
	return errors.As(err, &pe) ||
		errors.Is(err, iofs.ErrNotExist) ||
		errors.Is(err, iofs.ErrPermission) ||
		errors.Is(err, iofs.ErrClosed)
}

// Decode reconstructs a caller-side error from its encoded form. The result
// is always a *RemoteError; for known kinds it unwraps to the matching
// typed error so existing errors.Is/As checks hold across the boundary.
func Decode(enc *EncodedError) error {
	re := &RemoteError{
		Kind:    enc.Kind,
		Message: enc.Message,
		Stack:   enc.Stack,
		Fields:  enc.Fields,
	}
	switch enc.Kind {
	case KindUnsupportedAlgorithm:
		algo, _ := re.StringField("algorithm")
		re.cause = &digest.UnsupportedAlgorithmError{Algorithm: algo}
	case KindIO:
		if v, ok := re.BoolField("not_exist"); ok && v {
			re.cause = iofs.ErrNotExist
		}
	}
	return re
}

// EncodeFrame serializes err with c for transport in a response message.
func EncodeFrame(c codec.Codec, err error) ([]byte, error) {
	if c == nil {
		c = codec.Default
	}
	return c.Marshal(Encode(err))
}

// DecodeFrame deserializes a response error frame and reconstructs the
// error.
func DecodeFrame(c codec.Codec, frame []byte) (error, error) {
	if c == nil {
		c = codec.Default
	}
	var enc EncodedError
	if err := c.Unmarshal(frame, &enc); err != nil {
		return nil, err
	}
	return Decode(&enc), nil
}

// RemoteError is an error reconstructed from a worker-side failure. Message
// and scalar fields match the original; Stack is the worker-side stack.
type RemoteError struct {
	Kind    string
	Message string
	Stack   string
	Fields  []Field

	cause error
}

func (e *RemoteError) Error() string { return e.Message }

// Unwrap exposes the typed cause reattached for known kinds, or nil.
func (e *RemoteError) Unwrap() error { return e.cause }

// Field returns the named scalar field value.
func (e *RemoteError) Field(name string) (any, bool) {
	for _, f := range e.Fields {
		if f.Name == name {
			return f.Value(), true
		}
	}
	return nil, false
}

// StringField returns the named field if it carries a string.
func (e *RemoteError) StringField(name string) (string, bool) {
	for _, f := range e.Fields {
		if f.Name == name && f.Str != nil {
			return *f.Str, true
		}
	}
	return "", false
}

// IntField returns the named field if it carries an integer.
func (e *RemoteError) IntField(name string) (int64, bool) {
	for _, f := range e.Fields {
		if f.Name == name && f.Int != nil {
			return *f.Int, true
		}
	}
	return 0, false
}

// BoolField returns the named field if it carries a bool.
func (e *RemoteError) BoolField(name string) (bool, bool) {
	for _, f := range e.Fields {
		if f.Name == name && f.Bool != nil {
			return *f.Bool, true
		}
	}
	return false, false
}
