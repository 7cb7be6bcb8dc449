package testutil

import (
	"fmt"
	"path/filepath"
	"sync"

	"mcat-go/internal/inspect"
)

// FakeHeaderReader serves observation headers from memory, keyed by base name,
// so the same header is found wherever a file is copied.
type FakeHeaderReader struct {
	mu      sync.Mutex
	headers map[string]inspect.Header
	reads   int
}

func NewFakeHeaderReader() *FakeHeaderReader {
	return &FakeHeaderReader{headers: make(map[string]inspect.Header)}
}

// Set stores h for the base name of file.
func (r *FakeHeaderReader) Set(file string, h inspect.Header) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.headers[filepath.Base(file)] = h
}

// SetObservation stores a header with the given DATE-OBS and VSYS values.
func (r *FakeHeaderReader) SetObservation(file, dateObs string, vsys float64) {
	r.Set(file, inspect.Header{
		inspect.KeyObservationTime:  dateObs,
		inspect.KeySystemicVelocity: vsys,
	})
}

// Reads returns how many headers were read.
func (r *FakeHeaderReader) Reads() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reads
}

func (r *FakeHeaderReader) ReadHeader(path string) (inspect.Header, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reads++
	h, ok := r.headers[filepath.Base(path)]
	if !ok {
		return nil, fmt.Errorf("no header for %s", filepath.Base(path))
	}
	return h, nil
}

var _ inspect.HeaderReader = (*FakeHeaderReader)(nil)
