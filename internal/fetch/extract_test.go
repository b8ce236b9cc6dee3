package fetch

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xxxsen/skinmgr/internal/apperr"
)

type entry struct {
	name string
	body string
}

func buildZip(t *testing.T, entries ...entry) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, e := range entries {
		f, err := w.Create(e.name)
		require.NoError(t, err)
		if e.body != "" {
			_, err = f.Write([]byte(e.body))
			require.NoError(t, err)
		}
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestExtract(t *testing.T) {
	dest := t.TempDir()
	data := buildZip(t,
		entry{name: "lol-skins-main/"},
		entry{name: "lol-skins-main/skins/Annie/Goth Annie.zip", body: "goth"},
		entry{name: "lol-skins-main/skins/Annie/chromas/Tibbers Annie/Tibbers Annie 1010.zip", body: "chroma"},
		entry{name: "lol-skins-main/empty/"},
	)

	require.NoError(t, Extract(context.Background(), data, dest, 2))

	body, err := os.ReadFile(filepath.Join(dest, "lol-skins-main", "skins", "Annie", "Goth Annie.zip"))
	require.NoError(t, err)
	assert.Equal(t, "goth", string(body))
	assert.FileExists(t, filepath.Join(dest, "lol-skins-main", "skins", "Annie", "chromas", "Tibbers Annie", "Tibbers Annie 1010.zip"))
	assert.DirExists(t, filepath.Join(dest, "lol-skins-main", "empty"))
}

func TestExtractFileBeforeItsDirectory(t *testing.T) {
	dest := t.TempDir()
	data := buildZip(t,
		entry{name: "a/b/f.zip", body: "file"},
		entry{name: "a/b/"},
		entry{name: "a/"},
	)

	require.NoError(t, Extract(context.Background(), data, dest, 1))

	body, err := os.ReadFile(filepath.Join(dest, "a", "b", "f.zip"))
	require.NoError(t, err)
	assert.Equal(t, "file", string(body))
	assert.DirExists(t, filepath.Join(dest, "a", "b"))
}

func TestExtractDirectoryFailureWaitsForWriters(t *testing.T) {
	dest := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dest, "blocked"), []byte("file"), 0o644))

	body := strings.Repeat("y", 256*1024)
	data := buildZip(t,
		entry{name: "one.bin", body: body},
		entry{name: "two.bin", body: body},
		entry{name: "blocked/sub/"},
		entry{name: "never.bin", body: "late"},
	)

	err := Extract(context.Background(), data, dest, 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrFileSystem)

	for _, name := range []string{"one.bin", "two.bin"} {
		info, err := os.Stat(filepath.Join(dest, name))
		require.NoError(t, err, name)
		assert.Equal(t, int64(len(body)), info.Size(), name)
	}
	assert.NoFileExists(t, filepath.Join(dest, "never.bin"))
}

func TestExtractOverwrites(t *testing.T) {
	dest := t.TempDir()
	target := filepath.Join(dest, "cslol-manager", "config.ini")
	require.NoError(t, os.MkdirAll(filepath.Dir(target), 0o755))
	require.NoError(t, os.WriteFile(target, []byte("old"), 0o644))

	data := buildZip(t, entry{name: "cslol-manager/config.ini", body: "new"})
	require.NoError(t, Extract(context.Background(), data, dest, 0))

	body, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "new", string(body))
}

func TestExtractRejectsEscapingEntries(t *testing.T) {
	for _, name := range []string{"../evil.txt", "a/../../evil.txt", "/etc/evil", `C:\evil.txt`, `..\evil.txt`} {
		dest := filepath.Join(t.TempDir(), "out")
		data := buildZip(t, entry{name: "safe.txt", body: "ok"}, entry{name: name, body: "bad"})

		err := Extract(context.Background(), data, dest, 1)
		require.Error(t, err, name)
		assert.ErrorIs(t, err, apperr.ErrFileSystem)
		assert.NoFileExists(t, filepath.Join(dest, "safe.txt"), name)
	}
}

func TestExtractRejectsCorruptArchive(t *testing.T) {
	err := Extract(context.Background(), []byte("not a zip"), t.TempDir(), 1)
	assert.ErrorIs(t, err, apperr.ErrFileSystem)
}

func TestValidateEntryPath(t *testing.T) {
	clean, err := validateEntryPath("a/./b/../c.txt")
	require.NoError(t, err)
	assert.Equal(t, "a/c.txt", clean)

	clean, err = validateEntryPath(`skins\Annie\x.zip`)
	require.NoError(t, err)
	assert.Equal(t, "skins/Annie/x.zip", clean)
}
