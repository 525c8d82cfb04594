package download

import (
	"context"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/hack-pad/hackpadfs/mem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownloadSavesAndCaches(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "model/gltf-binary")
		_, _ = w.Write([]byte("glTF"))
	}))
	defer srv.Close()

	fsys, err := mem.NewFS()
	require.NoError(t, err)

	url := srv.URL + "/models/beefNoodle1.glb?v=2"
	p, err := Download(context.Background(), srv.Client(), url, fsys, "assets/cache")
	require.NoError(t, err)
	assert.Equal(t, "assets/cache/beefNoodle1.glb", p)

	data, err := fs.ReadFile(fsys, p)
	require.NoError(t, err)
	assert.Equal(t, "glTF", string(data))

	again, err := Download(context.Background(), srv.Client(), url, fsys, "assets/cache")
	require.NoError(t, err)
	assert.Equal(t, p, again)
	assert.Equal(t, int32(1), hits.Load())
}

func TestDownloadNameFromHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "model/gltf-binary")
		w.Header().Set("Content-Disposition", `attachment; filename="bowl model.glb"`)
		_, _ = w.Write([]byte("glTF"))
	}))
	defer srv.Close()

	fsys, err := mem.NewFS()
	require.NoError(t, err)
	p, err := Download(context.Background(), srv.Client(), srv.URL+"/get", fsys, "cache")
	require.NoError(t, err)
	assert.Equal(t, "cache/bowl_model.glb", p)
}

func TestDownloadHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	fsys, err := mem.NewFS()
	require.NoError(t, err)
	_, err = Download(context.Background(), srv.Client(), srv.URL+"/missing.glb", fsys, "cache")
	assert.ErrorContains(t, err, "HTTP 404")
}

func TestIsRemote(t *testing.T) {
	assert.True(t, IsRemote("https://example.com/a.glb"))
	assert.True(t, IsRemote("http://example.com/a.glb"))
	assert.False(t, IsRemote("assets/a.glb"))
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "a_b.glb", sanitizeFilename("a b.glb"))
	assert.Equal(t, "download", sanitizeFilename(""))
}
