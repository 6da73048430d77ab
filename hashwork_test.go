package hashwork_test

import (
	"bytes"
	"context"
	"crypto/sha512"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashwork/hashwork"
	"github.com/hashwork/hashwork/digest"
	"github.com/hashwork/hashwork/offload"
)

// SHA-512 of the empty input with default options, straight from the spec
// sheet of every SHA-512 implementation.
const sha512Empty = "cf83e1357eefb8bdf1542850d66d8007d620e4050b5715dc83f4a921d36ce9ce" +
	"47d0d13c5d85f2b0ff8318d2877eec2f63b931bd47417a81a538327af927da3e"

func TestHashEmptyDefaultOptions(t *testing.T) {
	sum, err := hashwork.Hash(nil)
	require.NoError(t, err)
	assert.Equal(t, sha512Empty, sum.Hex())

	sum, err = hashwork.HashString("")
	require.NoError(t, err)
	assert.Equal(t, sha512Empty, sum.Hex())
}

func TestHashPartsEqualsConcatenation(t *testing.T) {
	whole, err := hashwork.Hash([]byte("ab"))
	require.NoError(t, err)

	parts, err := hashwork.HashParts([][]byte{[]byte("a"), []byte("b")})
	require.NoError(t, err)
	assert.Equal(t, whole, parts)

	empty, err := hashwork.HashParts(nil)
	require.NoError(t, err)
	assert.Equal(t, sha512Empty, empty.Hex())
}

func TestHexRoundTrip(t *testing.T) {
	sum, err := hashwork.Hash([]byte("round trip"))
	require.NoError(t, err)

	raw, err := hex.DecodeString(sum.Hex())
	require.NoError(t, err)
	assert.Equal(t, sum.Hex(), hashwork.Digest(raw).Hex())
}

func TestHashUnsupportedAlgorithm(t *testing.T) {
	_, err := hashwork.Hash([]byte("x"), hashwork.WithAlgorithm("rot13"))
	var ua *hashwork.UnsupportedAlgorithmError
	require.ErrorAs(t, err, &ua)
	assert.Equal(t, "rot13", ua.Algorithm)
}

func TestHashAsyncMatchesSync(t *testing.T) {
	ctx := context.Background()
	data := bytes.Repeat([]byte("payload"), 999)

	for _, algorithm := range digest.Algorithms() {
		sync, err := hashwork.Hash(data, hashwork.WithAlgorithm(algorithm))
		require.NoError(t, err, algorithm)

		async, err := hashwork.HashAsync(ctx, data, hashwork.WithAlgorithm(algorithm))
		require.NoError(t, err, algorithm)
		assert.Equal(t, sync, async, algorithm)
	}
}

func TestHashReader(t *testing.T) {
	ctx := context.Background()

	sum, err := hashwork.HashReader(ctx, bytes.NewReader([]byte("hello")))
	require.NoError(t, err)
	want := sha512.Sum512([]byte("hello"))
	assert.Equal(t, want[:], sum.Bytes())
}

func TestHashReaderNilRejects(t *testing.T) {
	_, err := hashwork.HashReader(context.Background(), nil)
	assert.ErrorIs(t, err, hashwork.ErrInvalidInput)
}

func TestHashFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hello.txt")
	require.NoError(t, os.WriteFile(path, []byte{0x68, 0x65, 0x6c, 0x6c, 0x6f}, 0o644))

	want := sha512.Sum512([]byte("hello"))

	sum, err := hashwork.HashFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, hex.EncodeToString(want[:]), sum.Hex())

	sum, err = hashwork.HashFileSync(path)
	require.NoError(t, err)
	assert.Equal(t, hex.EncodeToString(want[:]), sum.Hex())
}

func TestHashFileNotFound(t *testing.T) {
	_, err := hashwork.HashFile(context.Background(), "/no/such/file")
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = hashwork.HashFileSync("/no/such/file")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestHashFiles(t *testing.T) {
	dir := t.TempDir()
	paths := make([]string, 0, 4)
	for _, name := range []string{"a", "b", "c", "d"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(name), 0o644))
		paths = append(paths, path)
	}

	sums, err := hashwork.HashFiles(context.Background(), paths,
		hashwork.WithAlgorithm("sha256"))
	require.NoError(t, err)
	require.Len(t, sums, 4)

	for _, path := range paths {
		want, err := hashwork.HashFileSync(path, hashwork.WithAlgorithm("sha256"))
		require.NoError(t, err)
		assert.Equal(t, want, sums[path])
	}
}

func TestHashFilesFirstErrorWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "only")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	_, err := hashwork.HashFiles(context.Background(), []string{path, "/no/such/file"})
	assert.Error(t, err)
}

func TestAutoDecompressOption(t *testing.T) {
	content := bytes.Repeat([]byte("squeeze me "), 512)

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write(content)
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	path := filepath.Join(t.TempDir(), "blob.gz")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	want, err := hashwork.Hash(content)
	require.NoError(t, err)

	sum, err := hashwork.HashFile(context.Background(), path, hashwork.WithAutoDecompress())
	require.NoError(t, err)
	assert.Equal(t, want, sum)

	sum, err = hashwork.HashReader(context.Background(), bytes.NewReader(buf.Bytes()),
		hashwork.WithAutoDecompress())
	require.NoError(t, err)
	assert.Equal(t, want, sum)
}

func TestOffloadDisabledInstance(t *testing.T) {
	hw := hashwork.New(hashwork.WithOffloadDisabled(), hashwork.WithAlgorithm("sha256"))

	sync, err := hw.Hash([]byte("same bytes"))
	require.NoError(t, err)

	async, err := hw.HashAsync(context.Background(), []byte("same bytes"))
	require.NoError(t, err)
	assert.Equal(t, sync, async)

	_, isDispatcher := hw.Executor().(*offload.Dispatcher)
	assert.False(t, isDispatcher, "disabled offload selects the synchronous strategy")
}

// recordingExecutor substitutes the executor seam and settles synchronously.
type recordingExecutor struct {
	requests []offload.Request
}

func (r *recordingExecutor) Execute(ctx context.Context, req offload.Request) ([]byte, error) {
	r.requests = append(r.requests, req)
	return offload.NewSyncExecutor(nil).Execute(ctx, req)
}

func TestWithExecutorSubstitution(t *testing.T) {
	rec := &recordingExecutor{}
	hw := hashwork.New(hashwork.WithExecutor(rec))

	sum, err := hw.HashAsync(context.Background(), []byte("seen"),
		hashwork.WithAlgorithm("blake3"))
	require.NoError(t, err)
	require.Len(t, rec.requests, 1)
	assert.Equal(t, offload.MethodHash, rec.requests[0].Method)
	assert.Equal(t, "blake3", rec.requests[0].Algorithm)

	want, err := hw.Hash([]byte("seen"), hashwork.WithAlgorithm("blake3"))
	require.NoError(t, err)
	assert.Equal(t, want, sum)
}

func TestMetricsCollection(t *testing.T) {
	metrics := &hashwork.BasicMetricsCollector{}
	hw := hashwork.New(hashwork.WithMetricsCollector(metrics))

	_, err := hw.Hash([]byte("counted"))
	require.NoError(t, err)
	_, err = hw.HashAsync(context.Background(), []byte("counted"))
	require.NoError(t, err)
	_, err = hw.Hash(nil, hashwork.WithAlgorithm("bogus"))
	require.Error(t, err)

	assert.Equal(t, int64(2), metrics.HashCount.Load())
	assert.Equal(t, int64(1), metrics.HashErrors.Load())
	assert.Equal(t, int64(1), metrics.OffloadCount.Load())
	assert.Equal(t, int64(7), metrics.HashBytes.Load())
}

func TestEncodings(t *testing.T) {
	sum, err := hashwork.Hash([]byte("encode me"), hashwork.WithAlgorithm("sha256"))
	require.NoError(t, err)

	tests := []struct {
		encoding hashwork.Encoding
		name     string
		want     string
	}{
		{hashwork.EncodingHex, "hex", sum.Hex()},
		{hashwork.EncodingBase64, "base64", sum.Base64()},
		{hashwork.EncodingBase64URL, "base64url", sum.Base64URL()},
		{hashwork.EncodingBase32, "base32", sum.Base32()},
		{hashwork.EncodingBuffer, "buffer", string(sum.Bytes())},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sum.Encode(tt.encoding))
			assert.Equal(t, tt.name, tt.encoding.String())

			parsed, err := hashwork.ParseEncoding(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.encoding, parsed)
		})
	}

	_, err = hashwork.ParseEncoding("base58")
	assert.ErrorIs(t, err, hashwork.ErrInvalidInput)
}
