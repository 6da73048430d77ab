package offload

import (
	"context"
	"fmt"

	"github.com/hashwork/hashwork/digest"
	"github.com/hashwork/hashwork/internal/fs"
	"github.com/hashwork/hashwork/internal/mmap"
	"github.com/hashwork/hashwork/internal/source"
)

// Method names the operation a request carries. The worker's dispatch table
// is keyed by Method and fixed at worker start.
type Method string

const (
	// MethodHash digests an in-memory payload.
	MethodHash Method = "hash"
	// MethodHashFile digests the contents of a file by path.
	MethodHashFile Method = "hashFile"
)

// Request describes one unit of hashing work. The (Method, arguments) tuple
// is immutable after dispatch. Payload ownership moves with the request:
// the slice is handed to the worker without copying and the caller must not
// mutate it while the task is in flight.
type Request struct {
	Method    Method
	Algorithm string

	// Payload is the input for MethodHash.
	Payload []byte

	// Path is the input for MethodHashFile.
	Path string

	// ReadLimit throttles file reads to roughly this many bytes per
	// second. Zero means unlimited.
	ReadLimit int

	// Decompress transparently hashes the decompressed content of
	// gzip/zstd/lz4 files.
	Decompress bool
}

// env carries the collaborators the request handlers need. One env is
// shared by the worker and the synchronous executor; it is immutable after
// construction.
type env struct {
	fs            fs.FileSystem
	mmapThreshold int64
}

type handler func(ctx context.Context, req Request) ([]byte, error)

// dispatchTable builds the static method-to-handler mapping loaded into the
// worker at start.
func (e env) dispatchTable() map[Method]handler {
	return map[Method]handler{
		MethodHash:     e.hash,
		MethodHashFile: e.hashFile,
	}
}

func (e env) run(ctx context.Context, req Request) ([]byte, error) {
	h, ok := e.dispatchTable()[req.Method]
	if !ok {
		return nil, fmt.Errorf("unknown method: %q", req.Method)
	}
	return h(ctx, req)
}

func (e env) hash(_ context.Context, req Request) ([]byte, error) {
	h, err := digest.New(req.Algorithm)
	if err != nil {
		return nil, err
	}
	if err := h.Update(req.Payload); err != nil {
		return nil, err
	}
	return h.Finalize(), nil
}

func (e env) hashFile(ctx context.Context, req Request) ([]byte, error) {
	h, err := digest.New(req.Algorithm)
	if err != nil {
		return nil, err
	}

	// Plain large files are hashed through a read-only mapping so bytes are
	// never copied into read buffers. Decorated sources must stream.
	if req.ReadLimit == 0 && !req.Decompress && e.mmapThreshold > 0 {
		if fi, err := e.fs.Stat(req.Path); err == nil && fi.Size() >= e.mmapThreshold {
			if sum, err := e.hashMapped(h, req.Path); err != mmap.ErrUnsupported {
				return sum, err
			}
			// Fall through to streaming on unsupported platforms.
		}
	}

	f, err := e.fs.Open(req.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r = source.NewRateLimited(ctx, f, req.ReadLimit)
	if req.Decompress {
		if r, err = source.NewAutoDecompressor(r); err != nil {
			return nil, err
		}
	}
	if _, err := h.ReadFrom(r); err != nil {
		return nil, err
	}
	return h.Finalize(), nil
}

func (e env) hashMapped(h *digest.Hasher, path string) ([]byte, error) {
	m, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	defer m.Close()

	if err := h.Update(m.Data); err != nil {
		return nil, err
	}
	return h.Finalize(), nil
}
