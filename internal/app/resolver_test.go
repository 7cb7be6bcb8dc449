package app

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptResolver(t *testing.T) {
	var out bytes.Buffer
	r := newScriptedResolver(strings.NewReader("  W51 \n\n"), &out)

	got, err := r.ResolveUnknownSource("w51x")
	require.NoError(t, err)
	assert.Equal(t, "W51", got)
	assert.Contains(t, out.String(), `"w51x"`, "prompt names the short code")

	got, err = r.ResolveUnknownSource("zz")
	require.NoError(t, err)
	assert.Empty(t, got, "blank answer skips")

	got, err = r.ResolveUnknownSource("eof")
	require.NoError(t, err)
	assert.Empty(t, got, "answer at EOF skips")
}

func TestPromptResolver_NotATerminal(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "answers"))
	require.NoError(t, err)
	defer f.Close()

	var out bytes.Buffer
	r := NewPromptResolver(f, &out)

	got, err := r.ResolveUnknownSource("w51")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, out.Len(), "prompted without a terminal")
}
