package verify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	_, err := ParseConfig("./images", "")
	assert.Error(t, err)

	_, err = ParseConfig("", "https://cdn.example.com")
	assert.Error(t, err)

	cfg, err := ParseConfig("./images", "https://cdn.example.com")
	require.NoError(t, err)
	assert.Equal(t, "./images", cfg.PhotosDir)
}

func TestExpectedURLs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.png", "a.heic", "b.jpg", "c.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
	}

	urls, err := ExpectedURLs(&Config{PhotosDir: dir, CDNBaseURL: "https://cdn.example.com/"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"https://cdn.example.com/a.html",
		"https://cdn.example.com/b.html",
		"https://cdn.example.com/index.html",
	}, urls)
	assert.Equal(t, "https://cdn.example.com/index.html", urls[len(urls)-1])
}

func TestRun(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/gone.html" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "here.png"), nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gone.png"), nil, 0644))

	cfg, err := ParseConfig(dir, srv.URL)
	require.NoError(t, err)

	results, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, results, 3)

	byURL := map[string]bool{}
	for _, r := range results {
		byURL[r.URL] = r.OK
	}
	assert.False(t, byURL[srv.URL+"/gone.html"])
	assert.True(t, byURL[srv.URL+"/here.html"])
	assert.True(t, byURL[srv.URL+"/index.html"])
}
