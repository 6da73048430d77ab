package digest

import (
	"errors"
	"hash"
	"io"
)

// ErrFinalized is returned by Update and UpdateString after Finalize has
// been called. The running digest state is consumed exactly once.
var ErrFinalized = errors.New("hasher already finalized")

// Hasher accumulates bytes into a running digest for a single algorithm.
//
// Hasher is not safe for concurrent use; each task or stream constructs its
// own. The algorithm is immutable once created.
type Hasher struct {
	algorithm string
	h         hash.Hash
	sum       []byte
	finalized bool
}

// New creates a Hasher for the named algorithm. Unknown names fail here,
// before any state exists, with *UnsupportedAlgorithmError.
func New(algorithm string) (*Hasher, error) {
	ctor, ok := registry[algorithm]
	if !ok {
		return nil, &UnsupportedAlgorithmError{Algorithm: algorithm}
	}
	return &Hasher{algorithm: algorithm, h: ctor()}, nil
}

// Algorithm returns the algorithm name the Hasher was created with.
func (h *Hasher) Algorithm() string { return h.algorithm }

// Size returns the digest length in bytes.
func (h *Hasher) Size() int { return h.h.Size() }

// Update feeds p into the running digest. Callable any number of times
// before Finalize; afterwards it fails with ErrFinalized.
func (h *Hasher) Update(p []byte) error {
	if h.finalized {
		return ErrFinalized
	}
	h.h.Write(p) // hash.Hash.Write never returns an error
	return nil
}

// UpdateString feeds the UTF-8 bytes of s into the running digest.
func (h *Hasher) UpdateString(s string) error {
	if h.finalized {
		return ErrFinalized
	}
	io.WriteString(h.h, s)
	return nil
}

// Finalize consumes the running state and returns the raw digest. Repeated
// calls return the same bytes; further updates are rejected.
func (h *Hasher) Finalize() []byte {
	if !h.finalized {
		h.sum = h.h.Sum(nil)
		h.finalized = true
	}
	return h.sum
}

// ReadFrom consumes r to end-of-input, feeding every chunk through the
// running digest. A read error aborts the operation and is returned as-is;
// the Hasher is left un-finalized and must not be reused.
func (h *Hasher) ReadFrom(r io.Reader) (int64, error) {
	if h.finalized {
		return 0, ErrFinalized
	}
	return io.Copy(h.h, r)
}

// Sum is a one-shot convenience: it hashes data with the named algorithm
// and returns the raw digest.
func Sum(algorithm string, data []byte) ([]byte, error) {
	h, err := New(algorithm)
	if err != nil {
		return nil, err
	}
	h.Update(data)
	return h.Finalize(), nil
}
