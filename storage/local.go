package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Local stores objects as files under Root/<bucket>/<key>. It backs dry runs and the
// preview server, which serves Root at BaseURL.
type Local struct {
	Root    string
	BaseURL string
	now     func() time.Time
}

// NewLocal returns a Local store.
func NewLocal(root, baseURL string) *Local {
	return &Local{Root: root, BaseURL: strings.TrimRight(baseURL, "/"), now: time.Now}
}

// ObjectPath is the file holding bucket/key.
func (l *Local) ObjectPath(bucket, key string) string {
	return filepath.Join(l.Root, bucket, filepath.FromSlash(key))
}

func (l *Local) Put(_ context.Context, bucket, key string, body io.Reader, _ string) error {
	target := l.ObjectPath(bucket, key)
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("%w: create %s: %v", ErrStorage, filepath.Dir(target), err)
	}

	f, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("%w: create %s: %v", ErrStorage, target, err)
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		return fmt.Errorf("%w: write %s: %v", ErrStorage, target, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", ErrStorage, target, err)
	}
	return nil
}

// SignedURL returns BaseURL/<bucket>/<key>?expires=<unix>. The preview server ignores the
// query, it only mimics the shape of a real signed URL.
func (l *Local) SignedURL(_ context.Context, bucket, key string, ttl time.Duration) (string, error) {
	if _, err := os.Stat(l.ObjectPath(bucket, key)); err != nil {
		return "", fmt.Errorf("%w: sign %s/%s: %v", ErrStorage, bucket, key, err)
	}

	u := l.BaseURL + "/" + (&url.URL{Path: path.Join(bucket, key)}).EscapedPath()
	expires := l.now().Add(ttl).Unix()
	return u + "?expires=" + strconv.FormatInt(expires, 10), nil
}
