// Package hashwork computes cryptographic digests of in-memory data, files
// and byte streams, optionally offloading the computation to a single
// persistent background worker so the calling goroutine's latency-sensitive
// work is not blocked by large inputs.
//
// # Quick Start
//
//	sum, _ := hashwork.Hash([]byte("hello"))        // sha512, Digest bytes
//	fmt.Println(sum.Hex())
//
//	sum, _ = hashwork.Hash(data, hashwork.WithAlgorithm("blake3"))
//
// Offloaded hashing suspends only the calling goroutine; the computation
// runs on the background worker:
//
//	sum, err := hashwork.HashAsync(ctx, bigBuffer)
//
// Files and streams:
//
//	sum, err := hashwork.HashFile(ctx, "/data/blob")     // offloaded
//	sum, err = hashwork.HashFileSync("/data/blob")       // same goroutine
//	sum, err = hashwork.HashReader(ctx, resp.Body)
//
// # Instances
//
// The package-level functions use a process-wide default instance created
// on first use and kept for process lifetime; its background worker is
// started lazily and never torn down. Construct an instance with New to
// control the executor strategy, logging, metrics, or to disable offload
// entirely:
//
//	hw := hashwork.New(
//	    hashwork.WithAlgorithm("sha256"),
//	    hashwork.WithLogger(hashwork.NewTextLogger(slog.LevelDebug)),
//	)
//
// # Algorithms and encodings
//
// Algorithms are validated when a hasher is created; see digest.Algorithms
// for the supported set (sha2 family, sha3, blake2, blake3, md5, sha1,
// crc32c). Digests are raw bytes; render them with Digest.Hex, Base64,
// Base32 or Encode.
package hashwork
