package offload

import (
	"context"
	"crypto/sha512"
	"errors"
	"fmt"
	iofs "io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashwork/hashwork/codec"
	"github.com/hashwork/hashwork/digest"
	"github.com/hashwork/hashwork/internal/fs"
)

func writeTempFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestDispatcherMatchesSyncForAllAlgorithms(t *testing.T) {
	d := NewDispatcher(nil)
	s := NewSyncExecutor(nil)
	ctx := context.Background()

	inputs := [][]byte{nil, []byte(""), []byte("hello"), make([]byte, 1<<16)}
	for _, algorithm := range digest.Algorithms() {
		for i, input := range inputs {
			req := Request{Method: MethodHash, Algorithm: algorithm, Payload: input}

			offloaded, err := d.Execute(ctx, req)
			require.NoError(t, err, "%s input %d", algorithm, i)

			direct, err := s.Execute(ctx, req)
			require.NoError(t, err)
			assert.Equal(t, direct, offloaded, "%s input %d", algorithm, i)
		}
	}
}

func TestDispatchConcurrentTaskIsolation(t *testing.T) {
	d := NewDispatcher(nil)
	ctx := context.Background()

	const tasks = 16
	badIdx := 7

	errs := make([]error, tasks)
	sums := make([][]byte, tasks)

	var wg sync.WaitGroup
	for i := 0; i < tasks; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			algorithm := "sha256"
			if i == badIdx {
				algorithm = "bogus"
			}
			sums[i], errs[i] = d.Execute(ctx, Request{
				Method:    MethodHash,
				Algorithm: algorithm,
				Payload:   []byte(fmt.Sprintf("input-%d", i)),
			})
		}()
	}
	wg.Wait()

	for i := 0; i < tasks; i++ {
		if i == badIdx {
			var ua *digest.UnsupportedAlgorithmError
			assert.ErrorAs(t, errs[i], &ua, "only the bad task rejects")
			continue
		}
		require.NoError(t, errs[i], "task %d", i)
		assert.Len(t, sums[i], 32)
	}
}

func TestWorkerLazyStartAndDraining(t *testing.T) {
	d := NewDispatcher(nil)

	assert.False(t, d.Worker().Started(), "worker is created lazily")
	assert.False(t, d.Worker().Referenced())

	_, err := d.Execute(context.Background(), Request{
		Method: MethodHash, Algorithm: "sha512", Payload: []byte("x"),
	})
	require.NoError(t, err)
	assert.True(t, d.Worker().Started())

	// The settlement that drained the registry also unreferences the worker.
	assert.Eventually(t, func() bool {
		return !d.Worker().Referenced() && d.InFlight() == 0
	}, time.Second, time.Millisecond)

	// New work re-references it.
	slowFile := writeTempFile(t, "slow.bin", make([]byte, 300*1024))
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := d.Execute(context.Background(), Request{
			Method:    MethodHashFile,
			Algorithm: "sha512",
			Path:      slowFile,
			ReadLimit: 200 * 1024,
		})
		assert.NoError(t, err)
	}()

	assert.Eventually(t, func() bool { return d.Worker().Referenced() },
		time.Second, time.Millisecond)
	<-done
	assert.Eventually(t, func() bool { return !d.Worker().Referenced() },
		time.Second, time.Millisecond)
}

func TestDispatcherHashFile(t *testing.T) {
	path := writeTempFile(t, "hello.txt", []byte("hello"))

	d := NewDispatcher(nil)
	sum, err := d.Execute(context.Background(), Request{
		Method: MethodHashFile, Algorithm: "sha512", Path: path,
	})
	require.NoError(t, err)

	want := sha512.Sum512([]byte("hello"))
	assert.Equal(t, want[:], sum)
}

func TestDispatcherHashFileNotFound(t *testing.T) {
	d := NewDispatcher(nil)
	_, err := d.Execute(context.Background(), Request{
		Method: MethodHashFile, Algorithm: "sha512", Path: "/no/such/file",
	})
	require.Error(t, err)

	// The reconstructed error still matches fs.ErrNotExist.
	assert.ErrorIs(t, err, iofs.ErrNotExist)
	var re *RemoteError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, KindIO, re.Kind)
}

func TestDispatcherHashFileReadFault(t *testing.T) {
	path := writeTempFile(t, "faulted.bin", make([]byte, 64*1024))

	faulty := fs.NewFaultyFS(nil)
	faulty.SetFault(path, fs.Fault{FailAfterBytes: 4096})

	d := NewDispatcher(&Options{FS: faulty})
	_, err := d.Execute(context.Background(), Request{
		Method: MethodHashFile, Algorithm: "sha512", Path: path,
	})
	require.Error(t, err)

	var re *RemoteError
	require.ErrorAs(t, err, &re)
	assert.Contains(t, re.Message, "injected read fault")
}

func TestDispatcherMmapMatchesStreaming(t *testing.T) {
	data := make([]byte, 128*1024)
	for i := range data {
		data[i] = byte(i)
	}
	path := writeTempFile(t, "mapped.bin", data)

	mapped := NewDispatcher(&Options{MmapThreshold: 1})
	streamed := NewDispatcher(&Options{MmapThreshold: 0})

	req := Request{Method: MethodHashFile, Algorithm: "blake3", Path: path}

	a, err := mapped.Execute(context.Background(), req)
	require.NoError(t, err)
	b, err := streamed.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, b, a)
}

func TestDispatcherUnknownMethod(t *testing.T) {
	d := NewDispatcher(nil)
	_, err := d.Execute(context.Background(), Request{Method: "mine", Algorithm: "sha512"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown method")
}

// brokenCodec fails every marshal, so the first error frame the worker
// tries to produce cannot cross the boundary. That is a context-level
// fault, not a task error.
type brokenCodec struct{}

func (brokenCodec) Marshal(any) ([]byte, error) { return nil, errors.New("marshal broken") }
func (brokenCodec) Unmarshal([]byte, any) error { return errors.New("unmarshal broken") }
func (brokenCodec) Name() string                { return "broken" }

var _ codec.Codec = brokenCodec{}

func TestContextFaultPoisonsSubsystem(t *testing.T) {
	d := NewDispatcher(&Options{Codec: brokenCodec{}})
	ctx := context.Background()

	// Successful tasks never touch the codec.
	_, err := d.Execute(ctx, Request{Method: MethodHash, Algorithm: "sha512", Payload: []byte("ok")})
	require.NoError(t, err)

	// A failing task forces an error frame; encoding it faults the worker.
	_, err = d.Execute(ctx, Request{Method: MethodHash, Algorithm: "bogus"})
	require.Error(t, err)

	var cf *ContextFaultError
	require.ErrorAs(t, err, &cf)

	// The subsystem is poisoned: later dispatches fail fast with the fault.
	_, err = d.Execute(ctx, Request{Method: MethodHash, Algorithm: "sha512", Payload: []byte("more")})
	require.ErrorAs(t, err, &cf)
	assert.False(t, d.Worker().Referenced())
	assert.True(t, d.registry.Empty())
}

func TestSyncExecutorSharesRequestContract(t *testing.T) {
	s := NewSyncExecutor(nil)
	ctx := context.Background()

	_, err := s.Execute(ctx, Request{Method: MethodHash, Algorithm: "bogus"})
	var ua *digest.UnsupportedAlgorithmError
	require.ErrorAs(t, err, &ua)

	path := writeTempFile(t, "sync.txt", []byte("hello"))
	sum, err := s.Execute(ctx, Request{Method: MethodHashFile, Algorithm: "sha512", Path: path})
	require.NoError(t, err)
	want := sha512.Sum512([]byte("hello"))
	assert.Equal(t, want[:], sum)
}
