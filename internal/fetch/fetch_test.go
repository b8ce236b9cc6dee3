package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xxxsen/skinmgr/internal/apperr"
)

type fakeMirror struct {
	objects map[string][]byte
}

func (m *fakeMirror) ReadObject(_ context.Context, bucket, key string) ([]byte, error) {
	data, ok := m.objects[bucket+"/"+key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return data, nil
}

func (m *fakeMirror) DownloadToFile(ctx context.Context, bucket, key, destPath string) error {
	data, err := m.ReadObject(ctx, bucket, key)
	if err != nil {
		return err
	}
	return os.WriteFile(destPath, data, 0o644)
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("payload"))
	})
	mux.HandleFunc("/large", func(w http.ResponseWriter, _ *http.Request) {
		chunk := []byte(strings.Repeat("x", 64*1024))
		for i := 0; i < 16; i++ {
			_, _ = w.Write(chunk)
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		}
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetch(t *testing.T) {
	srv := newServer(t)
	client := New(WithTimeout(5 * time.Second))

	data, err := client.Fetch(context.Background(), srv.URL+"/ok")
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func TestFetchStatusError(t *testing.T) {
	srv := newServer(t)
	client := New()

	_, err := client.Fetch(context.Background(), srv.URL+"/missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrNetwork)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
}

func TestFetchUnreachable(t *testing.T) {
	srv := newServer(t)
	url := srv.URL + "/ok"
	srv.Close()

	_, err := New().Fetch(context.Background(), url)
	assert.ErrorIs(t, err, apperr.ErrNetwork)
}

func TestDownloadReplacesAtomically(t *testing.T) {
	srv := newServer(t)
	dest := filepath.Join(t.TempDir(), "nested", "feed.json")
	client := New()

	require.NoError(t, client.Download(context.Background(), srv.URL+"/ok", dest))
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	err = client.Download(context.Background(), srv.URL+"/missing", dest)
	assert.ErrorIs(t, err, apperr.ErrNetwork)
	data, err = os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
	entries, err := os.ReadDir(filepath.Dir(dest))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestDownloadConcurrentSameDest(t *testing.T) {
	srv := newServer(t)
	dest := filepath.Join(t.TempDir(), "skins_metadata.json")
	client := New()

	for round := 0; round < 10; round++ {
		var wg sync.WaitGroup
		errs := make([]error, 2)
		for i := range errs {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs[i] = client.Download(context.Background(), srv.URL+"/large", dest)
			}(i)
		}
		wg.Wait()
		for _, err := range errs {
			require.NoError(t, err)
		}
		info, err := os.Stat(dest)
		require.NoError(t, err)
		assert.Equal(t, int64(16*64*1024), info.Size())
	}

	entries, err := os.ReadDir(filepath.Dir(dest))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestMirrorLocations(t *testing.T) {
	mirror := &fakeMirror{objects: map[string][]byte{"cache/skins.json": []byte("{}")}}
	client := New(WithMirror(mirror))

	data, err := client.Fetch(context.Background(), "s3://cache/skins.json")
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))

	dest := filepath.Join(t.TempDir(), "skins.json")
	require.NoError(t, client.Download(context.Background(), "s3://cache/skins.json", dest))
	assert.True(t, Exists(dest))

	_, err = client.Fetch(context.Background(), "s3://cache/absent.zip")
	assert.ErrorIs(t, err, apperr.ErrNetwork)

	_, err = New().Fetch(context.Background(), "s3://cache/skins.json")
	assert.ErrorIs(t, err, apperr.ErrConfiguration)
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	assert.True(t, Exists(dir))
	assert.False(t, Exists(filepath.Join(dir, "nope")))
}
