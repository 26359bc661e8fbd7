package audio

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCapped(t *testing.T) {
	data, err := readCapped(strings.NewReader("clap"), 4)
	require.NoError(t, err)
	assert.Equal(t, "clap", string(data))

	data, err = readCapped(strings.NewReader("clapper"), 4)
	assert.ErrorIs(t, err, ErrCueTooLarge)
	assert.Nil(t, data, "an oversized source is never handed on clipped")
}

func TestHTTPFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("cue bytes"))
	}))
	defer srv.Close()

	var f HTTPFetcher
	data, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "cue bytes", string(data))

	path := filepath.Join(t.TempDir(), "cue.wav")
	require.NoError(t, os.WriteFile(path, []byte("from disk"), 0o644))
	for _, uri := range []string{path, "file://" + path} {
		data, err := f.Fetch(context.Background(), uri)
		require.NoError(t, err, uri)
		assert.Equal(t, "from disk", string(data))
	}

	_, err = f.Fetch(context.Background(), "ftp://example.com/cue.wav")
	assert.Error(t, err)
}
