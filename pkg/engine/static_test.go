package engine

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}

func startStaticServer(t *testing.T, cors bool) (*testEnv, string) {
	t.Helper()
	root := t.TempDir()
	images := filepath.Join(root, "images")
	require.NoError(t, os.MkdirAll(filepath.Join(images, "icons"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(images, "logo.png"), pngHeader, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(images, "noext"), []byte("<html><body>hi</body></html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(images, "icons", "a.svg"), []byte("<svg/>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "secret.txt"), []byte("top secret"), 0o644))

	cfg := testConfig()
	cfg.ImageDir = images
	cfg.CORSEnabled = cors
	return startTestServer(t, cfg), root
}

func TestStatic_ServesFiles(t *testing.T) {
	env, _ := startStaticServer(t, true)

	resp := doRequest(t, http.MethodGet, env.baseURL+"/images/logo.png", "")
	assert.Equal(t, http.StatusOK, resp.status)
	assert.Equal(t, "image/png", resp.header.Get("Content-Type"))
	assert.Equal(t, string(pngHeader), resp.body)
	assert.Equal(t, "*", resp.header.Get("Access-Control-Allow-Origin"))

	resp = doRequest(t, http.MethodGet, env.baseURL+"/images/icons/a.svg", "")
	assert.Equal(t, http.StatusOK, resp.status)
	assert.Equal(t, "<svg/>", resp.body)

	resp = doRequest(t, http.MethodGet, env.baseURL+"/images/noext", "")
	assert.Equal(t, http.StatusOK, resp.status)
	assert.Contains(t, resp.header.Get("Content-Type"), "text/html", "sniffed without an extension")
}

func TestStatic_NotFound(t *testing.T) {
	env, _ := startStaticServer(t, true)

	for _, path := range []string{"/images/missing.png", "/images/icons", "/images/"} {
		t.Run(path, func(t *testing.T) {
			resp := doRequest(t, http.MethodGet, env.baseURL+path, "")
			assert.Equal(t, http.StatusNotFound, resp.status)
		})
	}
}

func TestStatic_TraversalContained(t *testing.T) {
	env, _ := startStaticServer(t, true)

	for _, path := range []string{"/images/../secret.txt", "/images/%2e%2e/secret.txt", "/images/icons/../../secret.txt"} {
		t.Run(path, func(t *testing.T) {
			resp := doRequest(t, http.MethodGet, env.baseURL+path, "")
			assert.Equal(t, http.StatusNotFound, resp.status)
			assert.NotContains(t, resp.body, "top secret")
		})
	}
}

func TestStatic_Methods(t *testing.T) {
	env, _ := startStaticServer(t, true)

	resp := doRequest(t, http.MethodPost, env.baseURL+"/images/logo.png", "x")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.status)
	assert.Equal(t, "GET", resp.header.Get("Allow"))

	resp = doRequest(t, http.MethodOptions, env.baseURL+"/images/logo.png", "")
	assert.Equal(t, http.StatusNoContent, resp.status)
	assert.Equal(t, "86400", resp.header.Get("Access-Control-Max-Age"))

	noCORS, _ := startStaticServer(t, false)
	resp = doRequest(t, http.MethodOptions, noCORS.baseURL+"/images/logo.png", "")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.status)
}

func TestStatic_NoHistory(t *testing.T) {
	env, _ := startStaticServer(t, true)

	doRequest(t, http.MethodGet, env.baseURL+"/images/logo.png", "")
	doRequest(t, http.MethodGet, env.baseURL+"/images/missing.png", "")
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, env.history.Len())
}
