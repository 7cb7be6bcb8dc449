//go:build windows

package app

import (
	"fmt"
	"os"
)

// fileLock only creates the lock file; there is no advisory locking here.
type fileLock struct {
	f *os.File
}

func acquireLock(path string) (*fileLock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening lock file: %w", err)
	}
	return &fileLock{f: f}, nil
}

func (l *fileLock) Release() error {
	return l.f.Close()
}
