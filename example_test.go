package hashwork_test

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/hashwork/hashwork"
)

func ExampleHash() {
	sum, _ := hashwork.Hash([]byte("hello"), hashwork.WithAlgorithm("sha256"))
	fmt.Println(sum.Hex())
	// Output: 2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824
}

func ExampleHashParts() {
	whole, _ := hashwork.Hash([]byte("ab"))
	parts, _ := hashwork.HashParts([][]byte{[]byte("a"), []byte("b")})
	fmt.Println(whole.Hex() == parts.Hex())
	// Output: true
}

func ExampleHashAsync() {
	sum, err := hashwork.HashAsync(context.Background(), []byte("hello"),
		hashwork.WithAlgorithm("sha256"))
	if err != nil {
		panic(err)
	}
	fmt.Println(sum.Hex())
	// Output: 2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824
}

func ExampleNewHashStream() {
	hs, _ := hashwork.NewHashStream(
		hashwork.WithAlgorithm("sha256"),
		hashwork.WithEncoding(hashwork.EncodingHex),
	)
	_, _ = io.Copy(io.Discard, io.TeeReader(strings.NewReader("hello"), hs))
	fmt.Println(hs.Encoded())
	// Output: 2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824
}
