// Package digest provides the streaming hasher shared by the synchronous
// and offloaded hashing paths.
//
// A Hasher wraps a registered algorithm and accumulates bytes into a running
// digest state:
//
//	h, err := digest.New("sha512")
//	if err != nil { ... }
//	h.Update(chunk1)
//	h.Update(chunk2)
//	sum := h.Finalize()
//
// Finalize is terminal: any Update afterwards fails with ErrFinalized. The
// algorithm set is fixed at init time; see Algorithms for the supported
// names. Algorithm validation happens at New, never later.
package digest
