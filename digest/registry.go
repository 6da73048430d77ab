package digest

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
	"hash/crc32"
	"sort"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/blake2s"
	"golang.org/x/crypto/sha3"
)

// UnsupportedAlgorithmError indicates an algorithm name that is not in the
// registry. It is returned by New before any hashing state is created.
type UnsupportedAlgorithmError struct {
	Algorithm string
}

func (e *UnsupportedAlgorithmError) Error() string {
	return fmt.Sprintf("unsupported hash algorithm: %q", e.Algorithm)
}

// crc32cTable is pre-computed for the CRC32-Castagnoli polynomial.
// Computing this once avoids repeated MakeTable calls.
var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

// registry maps algorithm names to constructors. Populated once at init;
// read-only afterwards, safe for concurrent use.
var registry = map[string]func() hash.Hash{
	"md5":    md5.New,
	"sha1":   sha1.New,
	"sha224": sha256.New224,
	"sha256": sha256.New,
	"sha384": sha512.New384,
	"sha512": sha512.New,

	"sha3-256": func() hash.Hash { return sha3.New256() },
	"sha3-512": func() hash.Hash { return sha3.New512() },

	// blake2 constructors only fail for oversized keys; unkeyed use is
	// infallible.
	"blake2b-256": func() hash.Hash { h, _ := blake2b.New256(nil); return h },
	"blake2b-512": func() hash.Hash { h, _ := blake2b.New512(nil); return h },
	"blake2s-256": func() hash.Hash { h, _ := blake2s.New256(nil); return h },

	"blake3": func() hash.Hash { return blake3.New() },

	// CRC32-Castagnoli is a checksum, not a cryptographic hash, but it is
	// cheap enough to be useful for integrity sweeps over large files.
	"crc32c": func() hash.Hash { return crc32.New(crc32cTable) },
}

// Supported reports whether name is a registered algorithm.
func Supported(name string) bool {
	_, ok := registry[name]
	return ok
}

// Algorithms returns the registered algorithm names in sorted order.
func Algorithms() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
