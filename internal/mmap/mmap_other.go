//go:build !unix

package mmap

import "os"

func mapFile(_ *os.File, _ int) ([]byte, error) {
	return nil, ErrUnsupported
}

func unmapFile(_ []byte) error { return nil }
