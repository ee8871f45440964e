package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbePage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.html" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("<html></html>"))
	}))
	defer srv.Close()

	ctx := context.Background()

	status, err := ProbePage(ctx, srv.URL+"/ANNA_LEE.html", 5*time.Second)
	require.NoError(t, err)
	assert.True(t, status.OK)
	assert.Equal(t, http.StatusOK, status.Code)

	status, err = ProbePage(ctx, srv.URL+"/missing.html", 5*time.Second)
	require.NoError(t, err)
	assert.False(t, status.OK)
	assert.Equal(t, http.StatusNotFound, status.Code)
}

func TestProbePage_InvalidURL(t *testing.T) {
	_, err := ProbePage(context.Background(), "not a url", time.Second)
	assert.Error(t, err)
}
