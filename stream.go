package hashwork

import (
	"io"

	"github.com/hashwork/hashwork/digest"
)

// HashStream exposes the streaming hasher as a writable sink: pipe bytes in
// with Write, io.Copy or io.TeeReader, then read the digest once the source
// is exhausted.
//
//	hs, _ := hashwork.NewHashStream(hashwork.WithAlgorithm("sha256"))
//	tee := io.TeeReader(upload, hs)
//	...consume tee...
//	fmt.Println(hs.Encoded())
//
// Digest and Encoded finalize the hasher; writes after that fail with
// digest.ErrFinalized.
type HashStream struct {
	hasher   *digest.Hasher
	encoding Encoding
	written  int64
}

// NewHashStream creates a HashStream. Algorithm validation happens here.
func NewHashStream(opts ...Option) (*HashStream, error) {
	return Default().NewHashStream(opts...)
}

// NewHashStream creates a HashStream using this instance's configuration.
func (h *Hashwork) NewHashStream(opts ...Option) (*HashStream, error) {
	cfg := h.cfg.apply(opts)
	hasher, err := digest.New(cfg.algorithm)
	if err != nil {
		return nil, err
	}
	return &HashStream{hasher: hasher, encoding: cfg.encoding}, nil
}

// Write feeds p into the running digest.
func (s *HashStream) Write(p []byte) (int, error) {
	if err := s.hasher.Update(p); err != nil {
		return 0, err
	}
	s.written += int64(len(p))
	return len(p), nil
}

// ReadFrom consumes r to end-of-input. A source read error aborts with that
// error and no digest.
func (s *HashStream) ReadFrom(r io.Reader) (int64, error) {
	n, err := s.hasher.ReadFrom(r)
	s.written += n
	return n, err
}

// Written returns the number of input bytes consumed so far.
func (s *HashStream) Written() int64 { return s.written }

// Algorithm returns the stream's algorithm name.
func (s *HashStream) Algorithm() string { return s.hasher.Algorithm() }

// Digest finalizes the hasher and returns the raw digest. Repeated calls
// return the same bytes.
func (s *HashStream) Digest() Digest { return Digest(s.hasher.Finalize()) }

// Encoded finalizes the hasher and renders the digest in the stream's
// configured encoding.
func (s *HashStream) Encoded() string { return s.Digest().Encode(s.encoding) }
