package storage

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal_PutOverwrites(t *testing.T) {
	l := NewLocal(t.TempDir(), "http://localhost:8080/")
	ctx := context.Background()

	require.NoError(t, l.Put(ctx, "pages", "a.html", strings.NewReader("one"), ContentTypeHTML))
	require.NoError(t, l.Put(ctx, "pages", "a.html", strings.NewReader("two"), ContentTypeHTML))

	data, err := os.ReadFile(l.ObjectPath("pages", "a.html"))
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))
}

func TestLocal_SignedURL(t *testing.T) {
	l := NewLocal(t.TempDir(), "http://localhost:8080/")
	l.now = func() time.Time { return time.Unix(1000, 0) }
	ctx := context.Background()

	require.NoError(t, l.Put(ctx, "imgs", ImageKey("ANNA LEE.jpg"), strings.NewReader("x"), ContentTypeJPEG))

	u, err := l.SignedURL(ctx, "imgs", ImageKey("ANNA LEE.jpg"), time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/imgs/images/ANNA%20LEE.jpg?expires=4600", u)
}

func TestLocal_SignedURLMissingObject(t *testing.T) {
	l := NewLocal(t.TempDir(), "http://localhost:8080")

	_, err := l.SignedURL(context.Background(), "imgs", "images/none.png", time.Hour)
	assert.ErrorIs(t, err, ErrStorage)
}

func TestKeysAndContentTypes(t *testing.T) {
	assert.Equal(t, "images/a.HEIC", ImageKey("a.HEIC"))
	assert.Equal(t, "Image MATTHEW_TIAN - x.html", PageKey("Image MATTHEW_TIAN - x"))
	assert.Equal(t, ContentTypeJPEG, ImageContentType("jpg"))
	assert.Equal(t, ContentTypeJPEG, ImageContentType("jpeg"))
	assert.Equal(t, ContentTypePNG, ImageContentType("png"))
	assert.Equal(t, ContentTypePNG, ImageContentType("heic"))
}
