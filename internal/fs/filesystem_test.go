package fs

import (
	"archive/tar"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupIncoming(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, p := range []string{
		"w51_591000000.fits",
		"g10p62_591000000.fits",
		"notes.txt",
		".hidden.fits",
		"night2/w51_592000000.fits",
	} {
		full := filepath.Join(dir, p)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte(p), 0644))
	}
	return dir
}

func TestFindObservations(t *testing.T) {
	dir := setupIncoming(t)

	t.Run("directory, not recursive", func(t *testing.T) {
		files, err := FindObservations([]string{dir}, false)
		require.NoError(t, err)

		var got []string
		for _, f := range files {
			got = append(got, filepath.Base(f.Name()))
		}
		assert.Equal(t, []string{"g10p62_591000000.fits", "w51_591000000.fits"}, got)
	})

	t.Run("directory, recursive", func(t *testing.T) {
		files, err := FindObservations([]string{dir}, true)
		require.NoError(t, err)
		assert.Len(t, files, 3)
	})

	t.Run("explicit files are kept whatever their extension and deduplicated", func(t *testing.T) {
		files, err := FindObservations([]string{
			filepath.Join(dir, "notes.txt"),
			filepath.Join(dir, "w51_591000000.fits"),
			dir,
		}, false)
		require.NoError(t, err)
		assert.Len(t, files, 3)
	})

	t.Run("missing path", func(t *testing.T) {
		_, err := FindObservations([]string{filepath.Join(dir, "nope")}, false)
		assert.Error(t, err)
	})
}

func TestPathFile(t *testing.T) {
	dir := setupIncoming(t)
	f := NewPathFile(filepath.Join(dir, "w51_591000000.fits"))

	data, err := f.ReadBytes()
	require.NoError(t, err)
	assert.Equal(t, "w51_591000000.fits", string(data))

	_, err = NewPathFile(filepath.Join(dir, "gone.fits")).ReadBytes()
	assert.Error(t, err)
}

func TestReadTar(t *testing.T) {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	write := func(name string, typ byte, body string) {
		require.NoError(t, tw.WriteHeader(&tar.Header{Name: name, Typeflag: typ, Size: int64(len(body)), Mode: 0644}))
		if body != "" {
			_, err := tw.Write([]byte(body))
			require.NoError(t, err)
		}
	}
	write("upload/", tar.TypeDir, "")
	write("upload/w51_591000000.fits", tar.TypeReg, "spectrum one")
	write("upload/readme.txt", tar.TypeReg, "ignored")
	write("g10p62_591000000.fits", tar.TypeReg, "spectrum two")
	require.NoError(t, tw.Close())

	files, err := ReadTar(&buf)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "w51_591000000.fits", files[0].Name())
	data, err := files[1].ReadBytes()
	require.NoError(t, err)
	assert.Equal(t, "spectrum two", string(data))
}

func TestReadTar_Corrupt(t *testing.T) {
	_, err := ReadTar(bytes.NewReader(bytes.Repeat([]byte{'x'}, 1024)))
	assert.Error(t, err)
}
