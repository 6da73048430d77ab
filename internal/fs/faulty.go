package fs

import (
	"errors"
	"os"
	"sync"
)

// ErrInjected is the default error returned by injected faults.
var ErrInjected = errors.New("injected read fault")

// Fault defines specific read-failure behavior for a file.
type Fault struct {
	FailAfterBytes int64 // Fail reads after this many bytes read from the file. -1 to disable.
	FailOnOpen     bool
	Err            error
}

// FaultyFS is a FileSystem wrapper that injects read errors. It exists for
// tests that need IOError propagation mid-stream, which real files rarely
// produce on demand.
type FaultyFS struct {
	FS FileSystem

	mu    sync.Mutex
	rules map[string]Fault
}

// NewFaultyFS creates a FaultyFS wrapping the provided FS (or Default if nil).
func NewFaultyFS(fsys FileSystem) *FaultyFS {
	if fsys == nil {
		fsys = Default
	}
	return &FaultyFS{FS: fsys, rules: make(map[string]Fault)}
}

// SetFault installs failure behavior for an exact file name.
func (f *FaultyFS) SetFault(name string, fault Fault) {
	if fault.Err == nil {
		fault.Err = ErrInjected
	}
	f.mu.Lock()
	f.rules[name] = fault
	f.mu.Unlock()
}

func (f *FaultyFS) fault(name string) (Fault, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rule, ok := f.rules[name]
	return rule, ok
}

func (f *FaultyFS) Open(name string) (File, error) {
	rule, ok := f.fault(name)
	if ok && rule.FailOnOpen {
		return nil, rule.Err
	}
	file, err := f.FS.Open(name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return file, nil
	}
	return &faultyFile{File: file, rule: rule}, nil
}

func (f *FaultyFS) Stat(name string) (os.FileInfo, error) { return f.FS.Stat(name) }

type faultyFile struct {
	File
	rule Fault
	read int64
}

func (f *faultyFile) Read(p []byte) (int, error) {
	if f.rule.FailAfterBytes >= 0 && f.read >= f.rule.FailAfterBytes {
		return 0, f.rule.Err
	}
	n, err := f.File.Read(p)
	f.read += int64(n)
	return n, err
}
