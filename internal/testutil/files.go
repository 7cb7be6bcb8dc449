package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteObservationFiles creates placeholder observation files in dir and
// returns their paths in the given order.
func WriteObservationFiles(t *testing.T, dir string, names ...string) []string {
	t.Helper()

	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("creating %s: %v", dir, err)
	}
	paths := make([]string, len(names))
	for i, name := range names {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte("observation "+name), 0644); err != nil {
			t.Fatalf("writing %s: %v", p, err)
		}
		paths[i] = p
	}
	return paths
}

// WriteFlagFile writes a flagged_obs.dat listing names into dir.
func WriteFlagFile(t *testing.T, dir string, names ...string) {
	t.Helper()

	content := "# flagged observations\n" + strings.Join(names, "\n") + "\n"
	if err := os.WriteFile(filepath.Join(dir, "flagged_obs.dat"), []byte(content), 0644); err != nil {
		t.Fatalf("writing flag file: %v", err)
	}
}

// WriteCatalog writes a reference catalog file from whole lines.
func WriteCatalog(t *testing.T, path string, lines ...string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("creating catalog directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644); err != nil {
		t.Fatalf("writing catalog: %v", err)
	}
}
